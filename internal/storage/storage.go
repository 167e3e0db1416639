// /internal/storage/storage.go
package storage

import (
	"fmt"
	"sync"
	"time"

	"runners-bot/datastore"

	"github.com/google/uuid"
)

const (
	commandHistoryLimit   int = 20
	promotionHistoryLimit int = 200
)

// Storage keeps one Record per guild in the datastore.
type Storage struct {
	ds *datastore.DataStore
	mu sync.Mutex // guards read-modify-write of records
}

type CommandHistoryRecord struct {
	ChannelID string    `json:"channel_id"`
	UserID    string    `json:"user_id"`
	Username  string    `json:"username"`
	Command   string    `json:"command"`
	Args      []string  `json:"args,omitempty"`
	Datetime  time.Time `json:"datetime"`
}

// PromotionRecord is the audit entry written for every successful promotion.
type PromotionRecord struct {
	ID               string    `json:"id"`
	GuildID          string    `json:"guild_id"`
	SubjectID        string    `json:"subject_id"`
	SubjectName      string    `json:"subject_name"`
	OldRank          string    `json:"old_rank"`
	NewRank          string    `json:"new_rank"`
	AuthorizedBy     string    `json:"authorized_by"`
	AuthorizedByName string    `json:"authorized_by_name"`
	Timestamp        time.Time `json:"timestamp"`
}

type Record struct {
	CommandsHistory []CommandHistoryRecord `json:"cmd_history"`
	Promotions      []PromotionRecord      `json:"promotions"`
}

func New(filePath string) (*Storage, error) {
	ds, err := datastore.New(filePath)
	if err != nil {
		return nil, err
	}
	return &Storage{ds: ds}, nil
}

// NewWithDataStore wraps an already opened datastore.
func NewWithDataStore(ds *datastore.DataStore) *Storage {
	return &Storage{ds: ds}
}

func (s *Storage) Close() error {
	return s.ds.Close()
}

// Guilds lists the guild IDs that have a record.
func (s *Storage) Guilds() []string {
	return s.ds.Keys()
}

// getOrCreateGuildRecord loads the guild record; callers hold s.mu.
func (s *Storage) getOrCreateGuildRecord(guildID string) (*Record, error) {
	var record Record
	if _, err := s.ds.Get(guildID, &record); err != nil {
		return nil, fmt.Errorf("error loading record for guild %s: %w", guildID, err)
	}
	return &record, nil
}

func (s *Storage) update(guildID string, fn func(*Record)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, err := s.getOrCreateGuildRecord(guildID)
	if err != nil {
		return err
	}
	fn(record)
	return s.ds.Put(guildID, record)
}

// AppendCommandToHistory appends a command history record for a guild
func (s *Storage) AppendCommandToHistory(guildID string, command CommandHistoryRecord) error {
	if command.Datetime.IsZero() {
		command.Datetime = time.Now()
	}
	return s.update(guildID, func(r *Record) {
		r.CommandsHistory = appendBounded(r.CommandsHistory, command, commandHistoryLimit)
	})
}

func (s *Storage) FetchCommandHistory(guildID string) ([]CommandHistoryRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, err := s.getOrCreateGuildRecord(guildID)
	if err != nil {
		return nil, err
	}
	return record.CommandsHistory, nil
}

// AppendPromotion stores a promotion record, assigning an ID and timestamp
// when missing. The stored record is returned.
func (s *Storage) AppendPromotion(guildID string, rec PromotionRecord) (PromotionRecord, error) {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.Timestamp.IsZero() {
		rec.Timestamp = time.Now().UTC()
	}
	rec.GuildID = guildID

	err := s.update(guildID, func(r *Record) {
		r.Promotions = appendBounded(r.Promotions, rec, promotionHistoryLimit)
	})
	return rec, err
}

// FetchPromotions returns the guild's promotion history, oldest first.
func (s *Storage) FetchPromotions(guildID string) ([]PromotionRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, err := s.getOrCreateGuildRecord(guildID)
	if err != nil {
		return nil, err
	}
	return record.Promotions, nil
}

func appendBounded[T any](list []T, item T, limit int) []T {
	list = append(list, item)
	if len(list) > limit {
		list = list[len(list)-limit:]
	}
	return list
}
