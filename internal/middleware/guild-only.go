package middleware

import (
	"context"

	"runners-bot/internal/command"
	"runners-bot/pkg/cmd"
)

// WithGuildOnly denies commands sent outside a guild.
func WithGuildOnly() cmd.Middleware {
	return func(c cmd.Command) cmd.Command {
		return cmd.Wrap(c, func(ctx context.Context, inv *cmd.Invocation) error {
			if mc, ok := command.FromInvocation(inv); ok && mc.GuildID == "" {
				return cmd.ErrDenied
			}
			return c.Run(ctx, inv)
		})
	}
}
