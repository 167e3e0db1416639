package discord

import (
	"time"

	"runners-bot/internal/audit"
	"runners-bot/internal/command"
	"runners-bot/internal/command/core"
	"runners-bot/internal/command/ranks"
	"runners-bot/internal/config"
	"runners-bot/internal/middleware"
	"runners-bot/internal/platform"
	"runners-bot/internal/rank"
	"runners-bot/internal/storage"
	"runners-bot/pkg/cmd"
)

// BuildRegistry registers every prefix command behind the staff gate. dir may
// be nil when the registry is only listed, never run.
func BuildRegistry(cfg *config.Config, dir platform.Directory, store *storage.Storage, ladder *rank.Ladder, started time.Time) *cmd.Registry {
	reg := cmd.NewRegistry()

	mover := ranks.NewMover(ladder, &audit.ChannelSink{
		Dir:       dir,
		ChannelID: cfg.PromoLogChannelID,
		Store:     store,
	})

	commands := []command.MessageCommand{
		&core.SayCommand{},
		&core.BotInfoCommand{Started: started},
		&core.SlowCommand{},
		&core.ListCommand{Registry: reg},
		mover.Promote(),
		mover.Demote(),
	}
	for _, c := range commands {
		command.RegisterCommand(reg, c,
			middleware.WithStaffOnly(cfg.StaffRoleIDs),
			middleware.WithGuildOnly(),
			middleware.WithCommandLogger(),
			middleware.WithRecover(),
		)
	}
	return reg
}
