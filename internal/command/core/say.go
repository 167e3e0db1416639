package core

import (
	"context"
	"strings"

	"runners-bot/internal/command"
	"runners-bot/internal/platform"
)

type SayCommand struct{}

func (c *SayCommand) Name() string        { return "say" }
func (c *SayCommand) Description() string { return "Bot speaks & deletes command." }
func (c *SayCommand) Usage() string       { return "say <text>" }

func (c *SayCommand) Run(ctx context.Context, mc *command.MessageContext) error {
	text := strings.Join(mc.Args, " ")
	if text == "" {
		return nil
	}

	platform.BestEffort("delete say invocation", func() error {
		return mc.Dir.DeleteMessage(mc.ChannelID, mc.MessageID)
	})
	return mc.Dir.Send(mc.ChannelID, text)
}
