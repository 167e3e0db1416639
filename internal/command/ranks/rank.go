// Package ranks holds the promote and demote commands.
package ranks

import (
	"context"
	"errors"
	"fmt"
	"log"

	"runners-bot/internal/command"
	"runners-bot/internal/platform"
	"runners-bot/internal/rank"
	"runners-bot/internal/storage"
)

// Sink receives a record for every successful promotion.
type Sink interface {
	Promoted(ctx context.Context, rec storage.PromotionRecord) error
}

// Mover owns the ladder and the per-member lock shared by promote and demote.
type Mover struct {
	ladder *rank.Ladder
	sink   Sink
	locks  *keyedMutex
}

// NewMover returns a Mover. sink may be nil.
func NewMover(ladder *rank.Ladder, sink Sink) *Mover {
	return &Mover{ladder: ladder, sink: sink, locks: newKeyedMutex()}
}

func (m *Mover) Promote() *RankCommand { return &RankCommand{mover: m, dir: rank.Advance} }
func (m *Mover) Demote() *RankCommand  { return &RankCommand{mover: m, dir: rank.Revert} }

// RankCommand moves one member a step along the ladder.
type RankCommand struct {
	mover *Mover
	dir   rank.Direction
}

func (c *RankCommand) Name() string {
	if c.dir == rank.Revert {
		return "demote"
	}
	return "promote"
}

func (c *RankCommand) Description() string {
	if c.dir == rank.Revert {
		return "Rank reversion."
	}
	return "Rank advancement."
}

func (c *RankCommand) Usage() string { return c.Name() + " <@user>" }

func (c *RankCommand) Run(ctx context.Context, mc *command.MessageContext) error {
	targetID, ok := target(mc)
	if !ok {
		return mc.Reply("User not found.")
	}

	unlock := c.mover.locks.Lock(mc.GuildID + "/" + targetID)
	defer unlock()

	member, err := mc.Dir.Member(mc.GuildID, targetID)
	if err != nil {
		if !errors.Is(err, platform.ErrMemberNotFound) {
			log.Printf("[WARN] Failed to resolve member %s: %v", targetID, err)
		}
		return mc.Reply("User not found.")
	}

	guild, err := mc.Dir.Guild(mc.GuildID)
	if err != nil {
		log.Printf("[ERR] Failed to load guild %s for %s: %v", mc.GuildID, c.Name(), err)
		return mc.Reply("Failed to update roles.")
	}

	guildRoles := roleRefs(guild.Roles)
	held := heldRoles(member.RoleIDs, guildRoles)
	current := c.mover.ladder.Current(held)
	res := c.mover.ladder.Transition(current, c.dir)

	if !res.Mutates() {
		if res.Kind == rank.AtCeiling {
			return mc.Reply("Maximum rank reached.")
		}
		return mc.Reply("No rank to remove.")
	}

	var removed, added *rank.RoleRef
	if res.Removed != nil {
		if role, ok := c.mover.ladder.RoleFor(*res.Removed, held); ok {
			removed = &role
		}
	}
	if res.Added != nil {
		role, ok := c.mover.ladder.RoleFor(*res.Added, guildRoles)
		if !ok {
			log.Printf("[ERR] %v: %q in guild %s", platform.ErrRoleNotFound, res.Added.Name, mc.GuildID)
			return mc.Reply("Failed to update roles.")
		}
		added = &role
	}

	if err := apply(ctx, mc.Dir, mc.GuildID, member.ID, removed, added); err != nil {
		log.Printf("[ERR] Failed to %s %s: %v", c.Name(), member.ID, err)
		return mc.Reply("Failed to update roles.")
	}

	if res.Kind == rank.Cleared {
		return mc.Reply("Ranks cleared.")
	}

	replyErr := mc.Reply(fmt.Sprintf("%s updated to %s.", member.Username, res.Added.Name))

	if c.dir == rank.Advance && c.mover.sink != nil {
		oldRank := "None"
		if res.Removed != nil {
			oldRank = res.Removed.Name
		}
		rec := storage.PromotionRecord{
			GuildID:          mc.GuildID,
			SubjectID:        member.ID,
			SubjectName:      member.Username,
			OldRank:          oldRank,
			NewRank:          res.Added.Name,
			AuthorizedBy:     mc.Author.ID,
			AuthorizedByName: mc.Author.Username,
		}
		if err := c.mover.sink.Promoted(ctx, rec); err != nil {
			log.Printf("[WARN] Failed to record promotion of %s: %v", member.ID, err)
		}
	}
	return replyErr
}

// apply removes the old rank before adding the new one. A failed add leaves
// the member without a rank; nothing is rolled back.
func apply(ctx context.Context, dir platform.Directory, guildID, userID string, removed, added *rank.RoleRef) error {
	if removed != nil {
		if err := dir.RemoveRole(ctx, guildID, userID, removed.ID); err != nil {
			return fmt.Errorf("remove %q: %w", removed.Name, err)
		}
	}
	if added != nil {
		if err := dir.AddRole(ctx, guildID, userID, added.ID); err != nil {
			return fmt.Errorf("add %q: %w", added.Name, err)
		}
	}
	return nil
}

// target picks the first mentioned user, else a mention or raw ID in the
// first argument.
func target(mc *command.MessageContext) (string, bool) {
	if len(mc.Mentions) > 0 {
		return mc.Mentions[0], true
	}
	if len(mc.Args) == 0 {
		return "", false
	}
	return platform.ParseUserRef(mc.Args[0])
}

func roleRefs(roles []platform.Role) []rank.RoleRef {
	out := make([]rank.RoleRef, 0, len(roles))
	for _, r := range roles {
		out = append(out, rank.RoleRef{ID: r.ID, Name: r.Name})
	}
	return out
}

// heldRoles resolves the member's role IDs against the guild roles, keeping
// the member's order. Unknown IDs keep an empty name.
func heldRoles(ids []string, guildRoles []rank.RoleRef) []rank.RoleRef {
	byID := make(map[string]rank.RoleRef, len(guildRoles))
	for _, r := range guildRoles {
		byID[r.ID] = r
	}
	out := make([]rank.RoleRef, 0, len(ids))
	for _, id := range ids {
		if r, ok := byID[id]; ok {
			out = append(out, r)
			continue
		}
		out = append(out, rank.RoleRef{ID: id})
	}
	return out
}
