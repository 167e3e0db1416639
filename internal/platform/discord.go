package platform

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"runners-bot/pkg/retrylimit"

	"github.com/bwmarrin/discordgo"
)

// Discord implements Directory on top of a discordgo session. Reads go to the
// state cache first and fall back to REST; role mutations are rate limited
// and retried on 429/5xx.
type Discord struct {
	s     *discordgo.Session
	lim   *retrylimit.AdaptiveLimiter
	retry retrylimit.RetryConfig
}

// NewDiscord wraps a session.
func NewDiscord(s *discordgo.Session) *Discord {
	return &Discord{
		s:     s,
		lim:   retrylimit.NewAdaptiveLimiter(5, 1, 10, 1, 0.5),
		retry: retrylimit.DefaultRetryConfig(),
	}
}

func (d *Discord) Guild(guildID string) (*Guild, error) {
	g, err := d.s.State.Guild(guildID)
	if err != nil || g == nil {
		g, err = d.s.Guild(guildID)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrGuildNotFound, guildID, err)
		}
	}

	roles := g.Roles
	if len(roles) == 0 {
		if roles, err = d.s.GuildRoles(guildID); err != nil {
			return nil, fmt.Errorf("failed to fetch roles for guild %s: %w", guildID, err)
		}
	}

	out := &Guild{ID: g.ID, Name: g.Name, OwnerID: g.OwnerID}
	for _, r := range roles {
		out.Roles = append(out.Roles, Role{ID: r.ID, Name: r.Name})
	}
	return out, nil
}

func (d *Discord) Member(guildID, userID string) (*Member, error) {
	m, err := d.s.State.Member(guildID, userID)
	if err != nil || m == nil {
		m, err = d.s.GuildMember(guildID, userID)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrMemberNotFound, userID, err)
		}
	}
	return toMember(m, userID), nil
}

func (d *Discord) AddRole(ctx context.Context, guildID, userID, roleID string) error {
	return retrylimit.WithRetryConfig(ctx, func() error {
		return classify(d.s.GuildMemberRoleAdd(guildID, userID, roleID, discordgo.WithContext(ctx)))
	}, d.lim, d.retry)
}

func (d *Discord) RemoveRole(ctx context.Context, guildID, userID, roleID string) error {
	return retrylimit.WithRetryConfig(ctx, func() error {
		return classify(d.s.GuildMemberRoleRemove(guildID, userID, roleID, discordgo.WithContext(ctx)))
	}, d.lim, d.retry)
}

func (d *Discord) Send(channelID, content string) error {
	_, err := d.s.ChannelMessageSend(channelID, content)
	return err
}

func (d *Discord) SendEmbed(channelID string, e *discordgo.MessageEmbed) error {
	_, err := d.s.ChannelMessageSendEmbed(channelID, e)
	return err
}

func (d *Discord) Reply(channelID, messageID, content string) error {
	_, err := d.s.ChannelMessageSendReply(channelID, content, &discordgo.MessageReference{
		MessageID: messageID,
		ChannelID: channelID,
	})
	return err
}

func (d *Discord) ReplyEmbed(channelID, messageID string, e *discordgo.MessageEmbed) error {
	_, err := d.s.ChannelMessageSendComplex(channelID, &discordgo.MessageSend{
		Embeds: []*discordgo.MessageEmbed{e},
		Reference: &discordgo.MessageReference{
			MessageID: messageID,
			ChannelID: channelID,
		},
	})
	return err
}

func (d *Discord) DeleteMessage(channelID, messageID string) error {
	return d.s.ChannelMessageDelete(channelID, messageID)
}

func (d *Discord) SetSlowmode(channelID string, seconds int) error {
	_, err := d.s.ChannelEdit(channelID, &discordgo.ChannelEdit{RateLimitPerUser: &seconds})
	return err
}

func (d *Discord) Stats() Stats {
	d.s.State.RLock()
	guilds := len(d.s.State.Guilds)
	d.s.State.RUnlock()

	return Stats{
		Latency: d.s.HeartbeatLatency(),
		Guilds:  guilds,
	}
}

func toMember(m *discordgo.Member, fallbackID string) *Member {
	out := &Member{ID: fallbackID, RoleIDs: append([]string(nil), m.Roles...)}
	if m.User != nil {
		out.ID = m.User.ID
		out.Username = m.User.Username
	}
	return out
}

// classify tags REST errors with their status so retrylimit can decide;
// client errors other than 429 are not worth retrying.
func classify(err error) error {
	if err == nil {
		return nil
	}
	var rest *discordgo.RESTError
	if !errors.As(err, &rest) || rest.Response == nil {
		return err
	}
	code := rest.Response.StatusCode
	tagged := &retrylimit.StatusError{Code: code, Err: err}
	if code == http.StatusTooManyRequests || code >= 500 {
		return tagged
	}
	return retrylimit.Fatal(tagged)
}
