// Package rank holds the rank ladder and the promote/demote transition rules.
package rank

import (
	"fmt"
	"strings"
)

// Rank is one step of the ladder. ID is the platform role ID when it is
// known; otherwise the rank is matched against guild roles by Name.
type Rank struct {
	ID   string
	Name string
}

// RoleRef is a guild role as seen by the ladder.
type RoleRef struct {
	ID   string
	Name string
}

// Matches reports whether the role realizes this rank.
func (r Rank) Matches(role RoleRef) bool {
	if r.ID != "" {
		return r.ID == role.ID
	}
	return r.Name == role.Name
}

// Ladder is an ordered list of ranks, lowest first. It is immutable once built.
type Ladder struct {
	ranks []Rank
}

// NewLadder builds a ladder from rank names, lowest first. ids is optional;
// when given it must be the same length as names and pins each rank to a
// role ID.
func NewLadder(names []string, ids []string) (*Ladder, error) {
	if len(names) == 0 {
		return nil, fmt.Errorf("rank ladder is empty")
	}
	if len(ids) != 0 && len(ids) != len(names) {
		return nil, fmt.Errorf("rank ladder has %d names but %d role IDs", len(names), len(ids))
	}

	seen := make(map[string]bool, len(names))
	ranks := make([]Rank, 0, len(names))
	for i, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			return nil, fmt.Errorf("rank %d has an empty name", i)
		}
		if seen[name] {
			return nil, fmt.Errorf("duplicate rank %q", name)
		}
		seen[name] = true

		r := Rank{Name: name}
		if len(ids) != 0 {
			r.ID = strings.TrimSpace(ids[i])
		}
		ranks = append(ranks, r)
	}
	return &Ladder{ranks: ranks}, nil
}

// MustLadder is NewLadder that panics on error. Used for fixed ladders.
func MustLadder(names ...string) *Ladder {
	l, err := NewLadder(names, nil)
	if err != nil {
		panic(err)
	}
	return l
}

// Len returns the number of ranks.
func (l *Ladder) Len() int { return len(l.ranks) }

// At returns the rank at index i.
func (l *Ladder) At(i int) Rank { return l.ranks[i] }

// Ranks returns a copy of the ranks, lowest first.
func (l *Ladder) Ranks() []Rank {
	out := make([]Rank, len(l.ranks))
	copy(out, l.ranks)
	return out
}

// IndexOf returns the index of the rank with the given name, or -1.
func (l *Ladder) IndexOf(name string) int {
	for i, r := range l.ranks {
		if strings.EqualFold(r.Name, name) {
			return i
		}
	}
	return -1
}

// IndexOfRole returns the index of the rank realized by role, or -1.
func (l *Ladder) IndexOfRole(role RoleRef) int {
	for i, r := range l.ranks {
		if r.Matches(role) {
			return i
		}
	}
	return -1
}

// Current returns the ladder index of the first held role that is a rank,
// or -1. A member holding several ranks is not reconciled.
func (l *Ladder) Current(held []RoleRef) int {
	for _, role := range held {
		if i := l.IndexOfRole(role); i >= 0 {
			return i
		}
	}
	return -1
}

// RoleFor finds the guild role that realizes r.
func (l *Ladder) RoleFor(r Rank, roles []RoleRef) (RoleRef, bool) {
	for _, role := range roles {
		if r.Matches(role) {
			return role, true
		}
	}
	return RoleRef{}, false
}
