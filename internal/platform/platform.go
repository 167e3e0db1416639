// Package platform is the bot's view of the chat platform: guilds, members,
// roles and the message/channel operations commands are allowed to perform.
// Commands depend on Directory, never on the live session, so they can be
// exercised without a connection.
package platform

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/discordgo"
)

var (
	ErrMemberNotFound = errors.New("member not found")
	ErrGuildNotFound  = errors.New("guild not found")
	ErrRoleNotFound   = errors.New("role not found")
)

// Role is a guild role.
type Role struct {
	ID   string
	Name string
}

// Member is a guild member. RoleIDs keeps the platform's order.
type Member struct {
	ID       string
	Username string
	RoleIDs  []string
}

// Guild is the subset of guild data the bot reads.
type Guild struct {
	ID      string
	Name    string
	OwnerID string
	Roles   []Role
}

// Stats are process-wide session diagnostics.
type Stats struct {
	Latency time.Duration
	Guilds  int
}

// Directory is the capability injected into commands.
type Directory interface {
	Guild(guildID string) (*Guild, error)
	Member(guildID, userID string) (*Member, error)

	AddRole(ctx context.Context, guildID, userID, roleID string) error
	RemoveRole(ctx context.Context, guildID, userID, roleID string) error

	Send(channelID, content string) error
	SendEmbed(channelID string, e *discordgo.MessageEmbed) error
	Reply(channelID, messageID, content string) error
	ReplyEmbed(channelID, messageID string, e *discordgo.MessageEmbed) error
	DeleteMessage(channelID, messageID string) error
	SetSlowmode(channelID string, seconds int) error

	Stats() Stats
}
