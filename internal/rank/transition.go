package rank

// Direction is the way a transition moves along the ladder.
type Direction int

const (
	Advance Direction = iota
	Revert
)

func (d Direction) String() string {
	if d == Revert {
		return "revert"
	}
	return "advance"
}

// Kind classifies a transition result.
type Kind int

const (
	// Applied means the member moves to Added, dropping Removed if set.
	Applied Kind = iota
	// Cleared means Removed is dropped and no rank is added.
	Cleared
	// AtCeiling means the member already holds the top rank.
	AtCeiling
	// AtFloor means the member holds no rank and cannot go lower.
	AtFloor
)

func (k Kind) String() string {
	switch k {
	case Applied:
		return "applied"
	case Cleared:
		return "cleared"
	case AtCeiling:
		return "at_ceiling"
	case AtFloor:
		return "at_floor"
	}
	return "unknown"
}

// Result is the outcome of Transition. Index is the member's ladder index
// after the transition (-1 for no rank).
type Result struct {
	Kind    Kind
	Removed *Rank
	Added   *Rank
	Index   int
}

// Mutates reports whether applying the result changes the member's roles.
func (r Result) Mutates() bool {
	return r.Kind == Applied || r.Kind == Cleared
}

// Transition computes the next state for a member at index current (-1 for
// no rank). It never fails; indices outside the ladder are treated as -1.
func (l *Ladder) Transition(current int, dir Direction) Result {
	if current < -1 || current >= len(l.ranks) {
		current = -1
	}

	next := current + 1
	if dir == Revert {
		next = current - 1
	}

	var held *Rank
	if current >= 0 {
		r := l.ranks[current]
		held = &r
	}

	switch {
	case current == -1 && dir == Revert:
		return Result{Kind: AtFloor, Index: -1}
	case next < 0:
		return Result{Kind: Cleared, Removed: held, Index: -1}
	case next >= len(l.ranks):
		return Result{Kind: AtCeiling, Index: current}
	}

	added := l.ranks[next]
	return Result{Kind: Applied, Removed: held, Added: &added, Index: next}
}
