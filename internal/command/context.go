package command

import (
	"context"
	"fmt"

	"runners-bot/internal/platform"
	"runners-bot/internal/storage"
	"runners-bot/pkg/cmd"
)

// EmbedColor is the neutral dark colour used by every embed the bot sends.
const EmbedColor = 0x2b2d31

// MessageContext is what a prefix command receives for one message.
type MessageContext struct {
	Dir       platform.Directory
	Storage   *storage.Storage // nil disables history
	Prefix    string
	GuildID   string
	ChannelID string
	MessageID string
	Author    platform.Member
	Mentions  []string // mentioned user IDs, in order of appearance in the content
	Args      []string
}

// Reply answers the invoking message.
func (mc *MessageContext) Reply(content string) error {
	if err := mc.Dir.Reply(mc.ChannelID, mc.MessageID, content); err != nil {
		return fmt.Errorf("failed to reply in %s: %w", mc.ChannelID, err)
	}
	return nil
}

// MessageCommand is implemented by every prefix command. Usage omits the
// prefix.
type MessageCommand interface {
	Name() string
	Description() string
	Usage() string
	Run(ctx context.Context, mc *MessageContext) error
}

// UsageProvider is exposed by adapted commands so listings can show usage
// through middleware wrappers.
type UsageProvider interface {
	Usage() string
}

// MessageAdapter lets a MessageCommand live in a cmd.Registry.
type MessageAdapter struct {
	Cmd MessageCommand
}

func (a *MessageAdapter) Name() string        { return a.Cmd.Name() }
func (a *MessageAdapter) Description() string { return a.Cmd.Description() }
func (a *MessageAdapter) Usage() string       { return a.Cmd.Usage() }

func (a *MessageAdapter) Run(ctx context.Context, inv *cmd.Invocation) error {
	mc, ok := inv.Data.(*MessageContext)
	if !ok {
		return fmt.Errorf("command %s: unexpected invocation data %T", a.Cmd.Name(), inv.Data)
	}
	return a.Cmd.Run(ctx, mc)
}

// RegisterCommand adapts c, applies middlewares and adds it to reg.
func RegisterCommand(reg *cmd.Registry, c MessageCommand, mws ...cmd.Middleware) {
	reg.Register(cmd.Apply(&MessageAdapter{Cmd: c}, mws...))
}

// FromInvocation extracts the MessageContext middleware works on.
func FromInvocation(inv *cmd.Invocation) (*MessageContext, bool) {
	mc, ok := inv.Data.(*MessageContext)
	return mc, ok
}
