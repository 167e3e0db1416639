// Package platformtest provides an in-memory platform.Directory for tests.
package platformtest

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"runners-bot/internal/platform"

	"github.com/bwmarrin/discordgo"
)

// Sent is one outbound message recorded by Fake.
type Sent struct {
	ChannelID string
	ReplyTo   string
	Content   string
	Embed     *discordgo.MessageEmbed
}

// RoleOp is one recorded role mutation.
type RoleOp struct {
	Op     string // "add" or "remove"
	UserID string
	RoleID string
}

// Fake is a single-guild Directory. Role mutations update the stored member
// so consecutive commands see each other's effects.
type Fake struct {
	mu sync.Mutex

	guild   platform.Guild
	members map[string]*platform.Member

	Sent     []Sent
	Deleted  []string
	Slowmode map[string]int
	RoleOps  []RoleOp

	// Errors injected into the matching operation when set.
	AddRoleErr    error
	RemoveRoleErr error
	DeleteErr     error
	SlowmodeErr   error
	SendErr       error

	StatsValue platform.Stats
}

// New returns a Fake for guild holding members.
func New(guild platform.Guild, members ...platform.Member) *Fake {
	f := &Fake{
		guild:    guild,
		members:  make(map[string]*platform.Member),
		Slowmode: make(map[string]int),
	}
	for _, m := range members {
		f.PutMember(m)
	}
	return f
}

// PutMember adds or replaces a member.
func (f *Fake) PutMember(m platform.Member) {
	f.mu.Lock()
	defer f.mu.Unlock()
	m.RoleIDs = slices.Clone(m.RoleIDs)
	f.members[m.ID] = &m
}

func (f *Fake) Guild(guildID string) (*platform.Guild, error) {
	if guildID != f.guild.ID {
		return nil, fmt.Errorf("%w: %s", platform.ErrGuildNotFound, guildID)
	}
	g := f.guild
	g.Roles = slices.Clone(f.guild.Roles)
	return &g, nil
}

func (f *Fake) Member(guildID, userID string) (*platform.Member, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	m, ok := f.members[userID]
	if !ok || guildID != f.guild.ID {
		return nil, fmt.Errorf("%w: %s", platform.ErrMemberNotFound, userID)
	}
	out := *m
	out.RoleIDs = slices.Clone(m.RoleIDs)
	return &out, nil
}

func (f *Fake) AddRole(_ context.Context, _, userID, roleID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.AddRoleErr != nil {
		return f.AddRoleErr
	}
	f.RoleOps = append(f.RoleOps, RoleOp{Op: "add", UserID: userID, RoleID: roleID})
	if m, ok := f.members[userID]; ok && !slices.Contains(m.RoleIDs, roleID) {
		m.RoleIDs = append(m.RoleIDs, roleID)
	}
	return nil
}

func (f *Fake) RemoveRole(_ context.Context, _, userID, roleID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.RemoveRoleErr != nil {
		return f.RemoveRoleErr
	}
	f.RoleOps = append(f.RoleOps, RoleOp{Op: "remove", UserID: userID, RoleID: roleID})
	if m, ok := f.members[userID]; ok {
		m.RoleIDs = slices.DeleteFunc(m.RoleIDs, func(id string) bool { return id == roleID })
	}
	return nil
}

func (f *Fake) Send(channelID, content string) error {
	return f.record(Sent{ChannelID: channelID, Content: content})
}

func (f *Fake) SendEmbed(channelID string, e *discordgo.MessageEmbed) error {
	return f.record(Sent{ChannelID: channelID, Embed: e})
}

func (f *Fake) Reply(channelID, messageID, content string) error {
	return f.record(Sent{ChannelID: channelID, ReplyTo: messageID, Content: content})
}

func (f *Fake) ReplyEmbed(channelID, messageID string, e *discordgo.MessageEmbed) error {
	return f.record(Sent{ChannelID: channelID, ReplyTo: messageID, Embed: e})
}

func (f *Fake) DeleteMessage(channelID, messageID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.DeleteErr != nil {
		return f.DeleteErr
	}
	f.Deleted = append(f.Deleted, messageID)
	return nil
}

func (f *Fake) SetSlowmode(channelID string, seconds int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.SlowmodeErr != nil {
		return f.SlowmodeErr
	}
	f.Slowmode[channelID] = seconds
	return nil
}

func (f *Fake) Stats() platform.Stats { return f.StatsValue }

func (f *Fake) record(s Sent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.SendErr != nil {
		return f.SendErr
	}
	f.Sent = append(f.Sent, s)
	return nil
}

// Contents returns the text of every recorded message, in order.
func (f *Fake) Contents() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.Sent))
	for _, s := range f.Sent {
		out = append(out, s.Content)
	}
	return out
}

// Roles returns the member's current role IDs.
func (f *Fake) Roles(userID string) []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if m, ok := f.members[userID]; ok {
		return slices.Clone(m.RoleIDs)
	}
	return nil
}

var _ platform.Directory = (*Fake)(nil)
