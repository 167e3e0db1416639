package core

import (
	"context"
	"fmt"
	"runtime"
	"strconv"
	"time"

	"runners-bot/internal/command"
	"runners-bot/pkg/util"

	embed "github.com/Clinet/discordgo-embed"
)

type BotInfoCommand struct {
	Started time.Time

	// HeapBytes reports heap in use; nil reads the runtime.
	HeapBytes func() uint64
	// Now defaults to time.Now.
	Now func() time.Time
}

func (c *BotInfoCommand) Name() string        { return "botinfo" }
func (c *BotInfoCommand) Description() string { return "Check bot diagnostics." }
func (c *BotInfoCommand) Usage() string       { return "botinfo" }

func (c *BotInfoCommand) Run(ctx context.Context, mc *command.MessageContext) error {
	stats := mc.Dir.Stats()

	now := time.Now
	if c.Now != nil {
		now = c.Now
	}
	heap := heapInUse
	if c.HeapBytes != nil {
		heap = c.HeapBytes
	}

	e := embed.NewEmbed().
		SetTitle("System Diagnostics").
		SetColor(command.EmbedColor).
		AddField("Latency", fmt.Sprintf("%dms", stats.Latency.Milliseconds())).
		AddField("Uptime", util.FormatUptime(now().Sub(c.Started))).
		AddField("Memory", fmt.Sprintf("%.2f MB", float64(heap())/1024/1024)).
		AddField("Servers", strconv.Itoa(stats.Guilds)).
		InlineAllFields().
		SetFooter("Runners Org Core System")
	e.Timestamp = now().Format(time.RFC3339)

	return mc.Dir.SendEmbed(mc.ChannelID, e.MessageEmbed)
}

func heapInUse() uint64 {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	return m.HeapAlloc
}
