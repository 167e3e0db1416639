package middleware

import (
	"context"
	"errors"
	"log"
	"time"

	"runners-bot/internal/command"
	"runners-bot/internal/storage"
	"runners-bot/pkg/cmd"
)

// WithCommandLogger records every command that got past the gates in the
// guild's command history.
func WithCommandLogger() cmd.Middleware {
	return func(c cmd.Command) cmd.Command {
		return cmd.Wrap(c, func(ctx context.Context, inv *cmd.Invocation) error {
			err := c.Run(ctx, inv)
			if errors.Is(err, cmd.ErrDenied) {
				return err
			}

			mc, ok := command.FromInvocation(inv)
			if !ok || mc.Storage == nil {
				return err
			}
			rec := storage.CommandHistoryRecord{
				ChannelID: mc.ChannelID,
				UserID:    mc.Author.ID,
				Username:  mc.Author.Username,
				Command:   c.Name(),
				Args:      inv.Args,
				Datetime:  time.Now(),
			}
			if e := mc.Storage.AppendCommandToHistory(mc.GuildID, rec); e != nil {
				log.Printf("[WARN] Failed to log command !%s: %v", c.Name(), e)
			}
			return err
		})
	}
}
