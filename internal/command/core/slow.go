package core

import (
	"context"
	"fmt"
	"log"
	"strconv"

	"runners-bot/internal/command"
)

// Discord caps per-user rate limits at six hours.
const maxSlowmodeSeconds = 21600

type SlowCommand struct{}

func (c *SlowCommand) Name() string        { return "slow" }
func (c *SlowCommand) Description() string { return "Update slowmode." }
func (c *SlowCommand) Usage() string       { return "slow <seconds>" }

func (c *SlowCommand) Run(ctx context.Context, mc *command.MessageContext) error {
	seconds, ok := parseSeconds(mc.Args)
	if !ok {
		return mc.Reply("Usage: " + mc.Prefix + c.Usage())
	}

	if err := mc.Dir.SetSlowmode(mc.ChannelID, seconds); err != nil {
		log.Printf("[WARN] Failed to set slowmode in %s: %v", mc.ChannelID, err)
		return mc.Reply("Missing permissions.")
	}
	return mc.Reply(fmt.Sprintf("Slowmode set to %ds.", seconds))
}

func parseSeconds(args []string) (int, bool) {
	if len(args) == 0 {
		return 0, false
	}
	n, err := strconv.Atoi(args[0])
	if err != nil || n < 0 || n > maxSlowmodeSeconds {
		return 0, false
	}
	return n, true
}
