package discord

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"runners-bot/internal/command"
	"runners-bot/internal/config"
	"runners-bot/internal/platform"
	"runners-bot/internal/platform/platformtest"
	"runners-bot/internal/storage"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	headRunner = "1447712026775392357"
	runnerID   = "200000000000000001"
	staffID    = "200000000000000002"
	outsiderID = "200000000000000003"
)

var rankNames = []string{
	"Entrance Runner", "Basic Runner", "Skilled Runner", "Master Runner",
	"Diligent Runner", "Lead Runner", "Archivist Runner",
}

func newTestBot(t *testing.T) (*Bot, *platformtest.Fake, *storage.Storage) {
	t.Helper()

	cfg := &config.Config{
		Prefix:            "!",
		StaffRoleIDs:      []string{headRunner},
		Ranks:             rankNames,
		PromoLogChannelID: "promo",
		LogChannelID:      "log",
	}
	store, err := storage.New(filepath.Join(t.TempDir(), "store.json"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	guild := platform.Guild{ID: "g1", OwnerID: "owner"}
	for i, name := range rankNames {
		guild.Roles = append(guild.Roles, platform.Role{ID: fmt.Sprintf("r%d", i), Name: name})
	}
	guild.Roles = append(guild.Roles, platform.Role{ID: headRunner, Name: "Head Runner"})

	dir := platformtest.New(guild,
		platform.Member{ID: runnerID, Username: "runner"},
		platform.Member{ID: staffID, Username: "head", RoleIDs: []string{headRunner}},
		platform.Member{ID: outsiderID, Username: "outsider"},
	)

	b, err := NewBot(cfg, store)
	require.NoError(t, err)
	b.wire(dir)
	return b, dir, store
}

func message(authorID string, roles []string, content string, mentions ...string) *discordgo.Message {
	m := &discordgo.Message{
		ID:        "m1",
		GuildID:   "g1",
		ChannelID: "c1",
		Content:   content,
		Author:    &discordgo.User{ID: authorID, Username: "author-" + authorID},
		Member:    &discordgo.Member{Roles: roles},
	}
	for _, id := range mentions {
		m.Mentions = append(m.Mentions, &discordgo.User{ID: id})
	}
	return m
}

func TestHandleMessage_StaffPromote(t *testing.T) {
	b, dir, store := newTestBot(t)

	out, err := b.handleMessage(context.Background(), message(staffID, []string{headRunner}, "!promote <@"+runnerID+">", runnerID))
	require.NoError(t, err)
	assert.Equal(t, command.Executed, out)

	assert.Equal(t, []string{"r0"}, dir.Roles(runnerID))
	require.Len(t, dir.Sent, 2)
	assert.Equal(t, "runner updated to Entrance Runner.", dir.Sent[0].Content)
	assert.Equal(t, "promo", dir.Sent[1].ChannelID)
	assert.Equal(t, "Rank Promotion", dir.Sent[1].Embed.Title)

	promos, err := store.FetchPromotions("g1")
	require.NoError(t, err)
	require.Len(t, promos, 1)
	assert.Equal(t, "author-"+staffID, promos[0].AuthorizedByName)

	history, err := store.FetchCommandHistory("g1")
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, "promote", history[0].Command)
}

func TestHandleMessage_PromotesFirstMentionInText(t *testing.T) {
	b, dir, _ := newTestBot(t)

	// Discord lists mentions in no particular order.
	content := "!promote <@" + runnerID + "> <@" + outsiderID + ">"
	out, err := b.handleMessage(context.Background(), message(staffID, []string{headRunner}, content, outsiderID, runnerID))
	require.NoError(t, err)
	assert.Equal(t, command.Executed, out)

	assert.Equal(t, []string{"r0"}, dir.Roles(runnerID))
	assert.Empty(t, dir.Roles(outsiderID))
	assert.Equal(t, "runner updated to Entrance Runner.", dir.Sent[0].Content)
}

func TestHandleMessage_NonStaffIsDeniedSilently(t *testing.T) {
	b, dir, store := newTestBot(t)

	out, err := b.handleMessage(context.Background(), message(outsiderID, nil, "!promote <@"+runnerID+">", runnerID))
	require.NoError(t, err)
	assert.Equal(t, command.Denied, out)

	assert.Empty(t, dir.Sent)
	assert.Empty(t, dir.RoleOps)
	history, err := store.FetchCommandHistory("g1")
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestHandleMessage_OwnerIsStaff(t *testing.T) {
	b, dir, _ := newTestBot(t)

	out, err := b.handleMessage(context.Background(), message("owner", nil, "!slow abc"))
	require.NoError(t, err)
	assert.Equal(t, command.Executed, out)
	assert.Equal(t, []string{"Usage: !slow <seconds>"}, dir.Contents())
	assert.Empty(t, dir.Slowmode)
}

func TestHandleMessage_Ignored(t *testing.T) {
	b, dir, _ := newTestBot(t)

	bot := message(staffID, []string{headRunner}, "!say hi")
	bot.Author.Bot = true

	dm := message(staffID, []string{headRunner}, "!say hi")
	dm.GuildID = ""

	for name, m := range map[string]*discordgo.Message{
		"bot author": bot,
		"direct":     dm,
		"no prefix":  message(staffID, []string{headRunner}, "say hi"),
		"unknown":    message(staffID, []string{headRunner}, "!dance"),
		"bare":       message(staffID, []string{headRunner}, "!"),
	} {
		out, err := b.handleMessage(context.Background(), m)
		require.NoError(t, err, name)
		assert.Equal(t, command.Unrecognized, out, name)
	}
	assert.Empty(t, dir.Sent)
	assert.Empty(t, dir.Deleted)
}

func TestHandleMessage_CaseInsensitiveCommand(t *testing.T) {
	b, dir, _ := newTestBot(t)

	out, err := b.handleMessage(context.Background(), message(staffID, []string{headRunner}, "!SAY Hello There"))
	require.NoError(t, err)
	assert.Equal(t, command.Executed, out)
	assert.Equal(t, []string{"Hello There"}, dir.Contents())
	assert.Equal(t, []string{"m1"}, dir.Deleted)
}

func TestHandleMessage_FetchesRolesWhenMemberMissing(t *testing.T) {
	b, dir, _ := newTestBot(t)

	m := message(staffID, nil, "!commands")
	m.Member = nil

	out, err := b.handleMessage(context.Background(), m)
	require.NoError(t, err)
	assert.Equal(t, command.Executed, out)
	require.Len(t, dir.Sent, 1)
	assert.Equal(t, "Runners Org Management", dir.Sent[0].Embed.Title)
	assert.Len(t, dir.Sent[0].Embed.Fields, 5)
}

func TestOnMessageDelete_LogsWithoutCache(t *testing.T) {
	b, dir, _ := newTestBot(t)

	b.onMessageDelete(nil, &discordgo.MessageDelete{Message: &discordgo.Message{ID: "m9", GuildID: "g1", ChannelID: "c1"}})

	require.Len(t, dir.Sent, 1)
	assert.Equal(t, "log", dir.Sent[0].ChannelID)
	assert.Equal(t, "Message Deleted", dir.Sent[0].Embed.Author.Name)
}

func TestOnMessageUpdate_RequiresCachedBefore(t *testing.T) {
	b, dir, _ := newTestBot(t)

	b.onMessageUpdate(nil, &discordgo.MessageUpdate{Message: &discordgo.Message{GuildID: "g1", Content: "new"}})
	assert.Empty(t, dir.Sent)

	b.onMessageUpdate(nil, &discordgo.MessageUpdate{
		Message:      &discordgo.Message{GuildID: "g1", ChannelID: "c1", Content: "new"},
		BeforeUpdate: &discordgo.Message{GuildID: "g1", ChannelID: "c1", Content: "old", Author: &discordgo.User{ID: runnerID}},
	})
	require.Len(t, dir.Sent, 1)
	assert.Equal(t, "Message Edited", dir.Sent[0].Embed.Author.Name)
}
