package core

import (
	"context"

	"runners-bot/internal/command"
	"runners-bot/pkg/cmd"

	embed "github.com/Clinet/discordgo-embed"
)

// DefaultListOrder is the order commands are shown in.
var DefaultListOrder = []string{"promote", "demote", "say", "botinfo", "slow"}

// ListCommand replies with the usage of the listed commands.
type ListCommand struct {
	Registry *cmd.Registry
	Order    []string
}

func (c *ListCommand) Name() string        { return "commands" }
func (c *ListCommand) Description() string { return "List management commands." }
func (c *ListCommand) Usage() string       { return "commands" }

func (c *ListCommand) Run(ctx context.Context, mc *command.MessageContext) error {
	order := c.Order
	if len(order) == 0 {
		order = DefaultListOrder
	}

	e := embed.NewEmbed().
		SetTitle("Runners Org Management").
		SetColor(command.EmbedColor)
	for _, name := range order {
		registered, ok := c.Registry.Lookup(name)
		if !ok {
			continue
		}
		usage := registered.Name()
		if u, ok := cmd.Root(registered).(command.UsageProvider); ok {
			usage = u.Usage()
		}
		e.AddField(mc.Prefix+usage, registered.Description())
	}

	return mc.Dir.ReplyEmbed(mc.ChannelID, mc.MessageID, e.MessageEmbed)
}
