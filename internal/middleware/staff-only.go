package middleware

import (
	"context"
	"log"

	"runners-bot/internal/access"
	"runners-bot/internal/command"
	"runners-bot/pkg/cmd"
)

// WithStaffOnly denies invokers that are neither the guild owner nor hold
// one of staffRoleIDs. Denial is silent.
func WithStaffOnly(staffRoleIDs []string) cmd.Middleware {
	return func(c cmd.Command) cmd.Command {
		return cmd.Wrap(c, func(ctx context.Context, inv *cmd.Invocation) error {
			mc, ok := command.FromInvocation(inv)
			if !ok {
				return cmd.ErrDenied
			}

			ownerID := ""
			if guild, err := mc.Dir.Guild(mc.GuildID); err != nil {
				log.Printf("[WARN] Owner lookup for guild %s failed, checking roles only: %v", mc.GuildID, err)
			} else {
				ownerID = guild.OwnerID
			}

			if !access.IsAuthorized(access.Context{
				InvokerID:      mc.Author.ID,
				InvokerRoleIDs: mc.Author.RoleIDs,
				OwnerID:        ownerID,
				StaffRoleIDs:   staffRoleIDs,
			}) {
				return cmd.ErrDenied
			}
			return c.Run(ctx, inv)
		})
	}
}
