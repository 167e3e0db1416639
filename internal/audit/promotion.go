// Package audit posts moderation records to log channels.
package audit

import (
	"context"
	"fmt"
	"log"
	"time"

	"runners-bot/internal/command"
	"runners-bot/internal/platform"
	"runners-bot/internal/storage"

	"github.com/bwmarrin/discordgo"
	embed "github.com/Clinet/discordgo-embed"
)

// PromotionEmbed renders a promotion for the promotion log channel.
func PromotionEmbed(rec storage.PromotionRecord) *discordgo.MessageEmbed {
	e := embed.NewEmbed().
		SetTitle("Rank Promotion").
		SetColor(command.EmbedColor).
		SetDescription(fmt.Sprintf("%s moved from %s to %s", rec.SubjectName, rec.OldRank, rec.NewRank)).
		SetFooter("Authorized by " + rec.AuthorizedByName)
	e.Timestamp = rec.Timestamp.Format(time.RFC3339)
	return e.MessageEmbed
}

// ChannelSink stores promotions and announces them in a channel. Either
// part is skipped when unset.
type ChannelSink struct {
	Dir       platform.Directory
	ChannelID string
	Store     *storage.Storage
}

func (s *ChannelSink) Promoted(ctx context.Context, rec storage.PromotionRecord) error {
	if rec.Timestamp.IsZero() {
		rec.Timestamp = time.Now().UTC()
	}

	var storeErr error
	if s.Store != nil {
		stored, err := s.Store.AppendPromotion(rec.GuildID, rec)
		if err != nil {
			storeErr = fmt.Errorf("failed to store promotion: %w", err)
		} else {
			rec = stored
		}
	}

	if s.ChannelID == "" {
		return storeErr
	}
	if err := s.Dir.SendEmbed(s.ChannelID, PromotionEmbed(rec)); err != nil {
		if storeErr != nil {
			log.Printf("[WARN] %v", storeErr)
		}
		return fmt.Errorf("failed to post promotion to %s: %w", s.ChannelID, err)
	}
	return storeErr
}
