package audit

import (
	"fmt"
	"time"

	"runners-bot/internal/command"
	"runners-bot/internal/platform"

	"github.com/bwmarrin/discordgo"
	embed "github.com/Clinet/discordgo-embed"
)

// Message is a cached chat message as far as the audit log needs it.
// AuthorID is empty when the author is unknown.
type Message struct {
	GuildID      string
	ChannelID    string
	AuthorID     string
	AuthorBot    bool
	AuthorAvatar string
	Content      string
}

// MessageLog posts deleted and edited messages to a log channel.
type MessageLog struct {
	Dir       platform.Directory
	ChannelID string
	Now       func() time.Time
}

// Deleted logs a deleted message. Messages from bots or outside a guild are
// skipped, and so is everything when no channel is configured.
func (l *MessageLog) Deleted(m Message) error {
	if l.ChannelID == "" || m.GuildID == "" || m.AuthorBot {
		return nil
	}

	id := m.AuthorID
	if id == "" {
		id = "Unknown ID"
	}
	e := embed.NewEmbed().
		SetAuthor("Message Deleted", m.AuthorAvatar).
		SetColor(command.EmbedColor).
		AddField("User", fmt.Sprintf("%s (%s)", mention(m.AuthorID), id)).
		AddField("Channel", "<#"+m.ChannelID+">").
		AddField("Content", orDefault(m.Content, "No text content"))
	e.Fields[0].Inline = true
	e.Fields[1].Inline = true

	return l.send(e)
}

// Edited logs an edit. Unchanged content (embed unfurls, pins) is skipped.
func (l *MessageLog) Edited(before, after Message) error {
	if l.ChannelID == "" || before.GuildID == "" || before.AuthorBot || before.Content == after.Content {
		return nil
	}

	e := embed.NewEmbed().
		SetAuthor("Message Edited", before.AuthorAvatar).
		SetColor(command.EmbedColor).
		AddField("User", mention(before.AuthorID)).
		AddField("Channel", "<#"+before.ChannelID+">").
		AddField("Original", orDefault(before.Content, "Empty")).
		AddField("Revised", orDefault(after.Content, "Empty"))
	e.Fields[0].Inline = true
	e.Fields[1].Inline = true

	return l.send(e)
}

func (l *MessageLog) send(e *embed.Embed) error {
	now := time.Now
	if l.Now != nil {
		now = l.Now
	}
	e.Timestamp = now().Format(time.RFC3339)
	if err := l.Dir.SendEmbed(l.ChannelID, e.MessageEmbed); err != nil {
		return fmt.Errorf("failed to post to log channel %s: %w", l.ChannelID, err)
	}
	return nil
}

func mention(userID string) string {
	if userID == "" {
		return "Unknown"
	}
	return "<@" + userID + ">"
}

func orDefault(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}

// FromDiscord converts a discordgo message. A nil message yields ok false.
func FromDiscord(m *discordgo.Message) (Message, bool) {
	if m == nil {
		return Message{}, false
	}
	out := Message{GuildID: m.GuildID, ChannelID: m.ChannelID, Content: m.Content}
	if m.Author != nil {
		out.AuthorID = m.Author.ID
		out.AuthorBot = m.Author.Bot
		out.AuthorAvatar = m.Author.AvatarURL("")
	}
	return out, true
}
