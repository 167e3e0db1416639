package audit

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"runners-bot/internal/platform"
	"runners-bot/internal/platform/platformtest"
	"runners-bot/internal/storage"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func fields(e *discordgo.MessageEmbed) map[string]string {
	out := map[string]string{}
	for _, f := range e.Fields {
		out[f.Name] = f.Value
	}
	return out
}

func TestPromotionEmbed(t *testing.T) {
	e := PromotionEmbed(storage.PromotionRecord{
		SubjectName:      "runner",
		OldRank:          "None",
		NewRank:          "Entrance Runner",
		AuthorizedByName: "headrunner",
		Timestamp:        fixedNow,
	})

	assert.Equal(t, "Rank Promotion", e.Title)
	assert.Equal(t, "runner moved from None to Entrance Runner", e.Description)
	require.NotNil(t, e.Footer)
	assert.Equal(t, "Authorized by headrunner", e.Footer.Text)
	assert.Equal(t, "2025-06-01T12:00:00Z", e.Timestamp)
	assert.Equal(t, 0x2b2d31, e.Color)
}

func TestChannelSink_StoresAndPosts(t *testing.T) {
	store, err := storage.New(filepath.Join(t.TempDir(), "store.json"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	dir := platformtest.New(platform.Guild{ID: "g1"})
	sink := &ChannelSink{Dir: dir, ChannelID: "promo", Store: store}

	err = sink.Promoted(context.Background(), storage.PromotionRecord{
		GuildID: "g1", SubjectID: "u1", SubjectName: "runner",
		OldRank: "None", NewRank: "Entrance Runner", AuthorizedByName: "boss",
	})
	require.NoError(t, err)

	require.Len(t, dir.Sent, 1)
	assert.Equal(t, "promo", dir.Sent[0].ChannelID)
	assert.Equal(t, "Rank Promotion", dir.Sent[0].Embed.Title)

	recs, err := store.FetchPromotions("g1")
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.NotEmpty(t, recs[0].ID)
	assert.Equal(t, "Entrance Runner", recs[0].NewRank)
}

func TestChannelSink_PostFailure(t *testing.T) {
	dir := platformtest.New(platform.Guild{ID: "g1"})
	dir.SendErr = errors.New("unknown channel")
	sink := &ChannelSink{Dir: dir, ChannelID: "promo"}

	err := sink.Promoted(context.Background(), storage.PromotionRecord{GuildID: "g1"})
	assert.ErrorContains(t, err, "unknown channel")
}

func TestMessageLog_Deleted(t *testing.T) {
	dir := platformtest.New(platform.Guild{ID: "g1"})
	l := &MessageLog{Dir: dir, ChannelID: "log", Now: func() time.Time { return fixedNow }}

	require.NoError(t, l.Deleted(Message{GuildID: "g1", ChannelID: "c1", AuthorID: "u1"}))

	require.Len(t, dir.Sent, 1)
	e := dir.Sent[0].Embed
	require.NotNil(t, e.Author)
	assert.Equal(t, "Message Deleted", e.Author.Name)
	assert.Equal(t, map[string]string{
		"User":    "<@u1> (u1)",
		"Channel": "<#c1>",
		"Content": "No text content",
	}, fields(e))
	assert.Equal(t, "2025-06-01T12:00:00Z", e.Timestamp)
}

func TestMessageLog_DeletedUnknownAuthor(t *testing.T) {
	dir := platformtest.New(platform.Guild{ID: "g1"})
	l := &MessageLog{Dir: dir, ChannelID: "log"}

	require.NoError(t, l.Deleted(Message{GuildID: "g1", ChannelID: "c1", Content: "hi"}))
	require.Len(t, dir.Sent, 1)
	assert.Equal(t, "Unknown (Unknown ID)", fields(dir.Sent[0].Embed)["User"])
}

func TestMessageLog_Skips(t *testing.T) {
	dir := platformtest.New(platform.Guild{ID: "g1"})
	l := &MessageLog{Dir: dir, ChannelID: "log"}

	require.NoError(t, l.Deleted(Message{GuildID: "g1", AuthorID: "b", AuthorBot: true}))
	require.NoError(t, l.Deleted(Message{AuthorID: "dm"}))
	require.NoError(t, l.Edited(Message{GuildID: "g1", Content: "same"}, Message{Content: "same"}))
	require.NoError(t, (&MessageLog{Dir: dir}).Deleted(Message{GuildID: "g1"}))

	assert.Empty(t, dir.Sent)
}

func TestMessageLog_Edited(t *testing.T) {
	dir := platformtest.New(platform.Guild{ID: "g1"})
	l := &MessageLog{Dir: dir, ChannelID: "log"}

	before := Message{GuildID: "g1", ChannelID: "c1", AuthorID: "u1", Content: "helo"}
	after := Message{GuildID: "g1", ChannelID: "c1", AuthorID: "u1", Content: ""}
	require.NoError(t, l.Edited(before, after))

	require.Len(t, dir.Sent, 1)
	e := dir.Sent[0].Embed
	assert.Equal(t, "Message Edited", e.Author.Name)
	assert.Equal(t, map[string]string{
		"User":     "<@u1>",
		"Channel":  "<#c1>",
		"Original": "helo",
		"Revised":  "Empty",
	}, fields(e))
}

func TestFromDiscord(t *testing.T) {
	_, ok := FromDiscord(nil)
	assert.False(t, ok)

	m, ok := FromDiscord(&discordgo.Message{
		GuildID: "g1", ChannelID: "c1", Content: "x",
		Author: &discordgo.User{ID: "u1", Bot: true},
	})
	require.True(t, ok)
	assert.Equal(t, "u1", m.AuthorID)
	assert.True(t, m.AuthorBot)
	assert.Equal(t, "x", m.Content)
}
