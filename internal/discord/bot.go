package discord

import (
	"context"
	"fmt"
	"log"
	"runtime/debug"
	"time"

	"runners-bot/internal/audit"
	"runners-bot/internal/command"
	"runners-bot/internal/config"
	"runners-bot/internal/platform"
	"runners-bot/internal/rank"
	"runners-bot/internal/storage"
	"runners-bot/pkg/cmd"

	"github.com/bwmarrin/discordgo"
)

// messageCacheSize is how many messages per channel the state keeps so
// edits and deletions can be logged with their previous content.
const messageCacheSize = 200

// Bot is a Discord bot
type Bot struct {
	cfg     *config.Config
	storage *storage.Storage
	ladder  *rank.Ladder
	started time.Time

	ctx      context.Context
	dg       *discordgo.Session
	dir      platform.Directory
	registry *cmd.Registry
	msgLog   *audit.MessageLog
}

// NewBot validates the rank configuration and returns an unconnected bot.
func NewBot(cfg *config.Config, store *storage.Storage) (*Bot, error) {
	ladder, err := cfg.Ladder()
	if err != nil {
		return nil, fmt.Errorf("invalid rank ladder: %w", err)
	}
	return &Bot{
		cfg:     cfg,
		storage: store,
		ladder:  ladder,
		started: time.Now(),
		ctx:     context.Background(),
	}, nil
}

// Run connects and serves events until ctx is cancelled.
func (b *Bot) Run(ctx context.Context) error {
	dg, err := discordgo.New("Bot " + b.cfg.DiscordToken)
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}

	b.dg = dg
	b.ctx = ctx
	b.wire(platform.NewDiscord(dg))

	b.configureIntents()
	dg.State.MaxMessageCount = messageCacheSize
	dg.AddHandler(b.onReady)
	dg.AddHandler(b.onMessageCreate)
	dg.AddHandler(b.onMessageUpdate)
	dg.AddHandler(b.onMessageDelete)

	if err := dg.Open(); err != nil {
		return fmt.Errorf("failed to open Discord session: %w", err)
	}
	defer dg.Close()

	<-ctx.Done()
	log.Println("[INFO] ❎ Shutdown signal received. Closing Discord session...")
	return nil
}

// wire builds everything that depends on the directory.
func (b *Bot) wire(dir platform.Directory) {
	b.dir = dir
	b.registry = BuildRegistry(b.cfg, dir, b.storage, b.ladder, b.started)
	b.msgLog = &audit.MessageLog{Dir: dir, ChannelID: b.cfg.LogChannelID}
}

func (b *Bot) configureIntents() {
	b.dg.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMembers |
		discordgo.IntentsGuildMessages |
		discordgo.IntentsMessageContent
}

func (b *Bot) onReady(s *discordgo.Session, r *discordgo.Ready) {
	log.Printf("[INFO] ✅ %s is operational in %d guild(s).", r.User.Username, len(r.Guilds))
}

func (b *Bot) onMessageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	defer recoverHandler("message create")

	if _, err := b.handleMessage(b.ctx, m.Message); err != nil {
		log.Println("[ERR] Error running command:", err)
	}
}

func (b *Bot) onMessageUpdate(s *discordgo.Session, u *discordgo.MessageUpdate) {
	defer recoverHandler("message update")

	before, ok := audit.FromDiscord(u.BeforeUpdate)
	if !ok {
		return
	}
	after, _ := audit.FromDiscord(u.Message)
	if err := b.msgLog.Edited(before, after); err != nil {
		log.Println("[ERR] Logging error (edit):", err)
	}
}

func (b *Bot) onMessageDelete(s *discordgo.Session, d *discordgo.MessageDelete) {
	defer recoverHandler("message delete")

	msg, ok := audit.FromDiscord(d.BeforeDelete)
	if !ok {
		msg = audit.Message{GuildID: d.GuildID, ChannelID: d.ChannelID}
	}
	if err := b.msgLog.Deleted(msg); err != nil {
		log.Println("[ERR] Logging error (delete):", err)
	}
}

// handleMessage parses and dispatches one message. Bots, direct messages and
// messages without the prefix are ignored as Unrecognized.
func (b *Bot) handleMessage(ctx context.Context, m *discordgo.Message) (command.Outcome, error) {
	if m == nil || m.Author == nil || m.Author.Bot || m.GuildID == "" {
		return command.Unrecognized, nil
	}
	name, args, ok := command.Parse(b.cfg.Prefix, m.Content)
	if !ok {
		return command.Unrecognized, nil
	}

	author := platform.Member{ID: m.Author.ID, Username: m.Author.Username}
	if m.Member != nil {
		author.RoleIDs = m.Member.Roles
	} else if fetched, err := b.dir.Member(m.GuildID, m.Author.ID); err == nil {
		author.RoleIDs = fetched.RoleIDs
	} else {
		log.Printf("[WARN] Failed to resolve roles of %s: %v", m.Author.ID, err)
	}

	mentions := make([]string, 0, len(m.Mentions))
	for _, u := range m.Mentions {
		mentions = append(mentions, u.ID)
	}
	mentions = platform.OrderMentions(m.Content, mentions)

	mc := &command.MessageContext{
		Dir:       b.dir,
		Storage:   b.storage,
		Prefix:    b.cfg.Prefix,
		GuildID:   m.GuildID,
		ChannelID: m.ChannelID,
		MessageID: m.ID,
		Author:    author,
		Mentions:  mentions,
		Args:      args,
	}

	outcome, err := command.Dispatch(ctx, b.registry, name, mc)
	if outcome == command.Denied {
		log.Printf("[DEBUG] !%s denied for %s in %s", name, m.Author.ID, m.GuildID)
	}
	return outcome, err
}

func recoverHandler(event string) {
	if r := recover(); r != nil {
		log.Printf("[ERR] Panic in %s handler: %v\n%s", event, r, debug.Stack())
	}
}
