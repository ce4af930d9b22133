package merge

import (
	"errors"
	"fmt"
)

// ErrIllegalAction is returned when an action does not apply to a chunk:
// apply_left without a left range, apply_right without a right range, or
// keep_base on a conflict.
var ErrIllegalAction = errors.New("illegal action for chunk")

type Kind string

const (
	KindInsert   Kind = "insert"
	KindDelete   Kind = "delete"
	KindChange   Kind = "change"
	KindConflict Kind = "conflict"
)

type Action string

const (
	ActionApplyLeft  Action = "apply_left"
	ActionApplyRight Action = "apply_right"
	ActionKeepBase   Action = "keep_base"
	ActionManual     Action = "manual"
)

func (a Action) Valid() bool {
	switch a {
	case ActionApplyLeft, ActionApplyRight, ActionKeepBase, ActionManual:
		return true
	}
	return false
}

// Side names one of the two divergent documents.
type Side int

const (
	SideLeft Side = iota
	SideRight
)

func (s Side) String() string {
	if s == SideRight {
		return "right"
	}
	return "left"
}

// Action returns the apply action that takes this side.
func (s Side) Action() Action {
	if s == SideRight {
		return ActionApplyRight
	}
	return ActionApplyLeft
}

// LineRange is an inclusive, 0-indexed line span of one document.
//
// An empty span is encoded as End == Start-1; Start is then the insertion
// point.
type LineRange struct {
	Start int
	End   int
}

func emptyAt(pos int) LineRange {
	return LineRange{Start: pos, End: pos - 1}
}

func halfOpen(start, end int) LineRange {
	return LineRange{Start: start, End: end - 1}
}

func (r LineRange) Len() int {
	if r.End < r.Start {
		return 0
	}
	return r.End - r.Start + 1
}

func (r LineRange) Empty() bool { return r.Len() == 0 }

// Limit is the exclusive end of the span.
func (r LineRange) Limit() int { return r.Start + r.Len() }

// Center is the midpoint of the span in line units. Empty spans center on
// their insertion point.
func (r LineRange) Center() float64 {
	return float64(r.Start) + float64(r.Len())/2
}

// Overlaps reports whether r intersects the inclusive line interval
// [first, last]. Empty spans count when their insertion point falls inside
// [first, last+1].
func (r LineRange) Overlaps(first, last int) bool {
	if r.Empty() {
		return r.Start >= first && r.Start <= last+1
	}
	return r.Start <= last && r.End >= first
}

func (r LineRange) String() string {
	if r.Empty() {
		return fmt.Sprintf("^%d", r.Start)
	}
	return fmt.Sprintf("%d-%d", r.Start, r.End)
}

// Chunk is a contiguous base region where at least one side diverges.
type Chunk struct {
	ID        string
	Kind      Kind
	BaseRange LineRange
	// LeftRange is nil when left matches base across the chunk.
	LeftRange *LineRange
	// RightRange is nil when right matches base across the chunk.
	RightRange *LineRange
	// Action is the suggested default, not a committed decision.
	Action Action
}

// Range returns the chunk's range on the given side, if present.
func (c Chunk) Range(side Side) (LineRange, bool) {
	r := c.LeftRange
	if side == SideRight {
		r = c.RightRange
	}
	if r == nil {
		return LineRange{}, false
	}
	return *r, true
}

func (c Chunk) IsConflict() bool { return c.Kind == KindConflict }

// Check validates an action against the chunk without applying it.
func (c Chunk) Check(action Action) error {
	switch action {
	case ActionApplyLeft:
		if c.LeftRange == nil {
			return fmt.Errorf("%w: %s has no left range", ErrIllegalAction, action)
		}
	case ActionApplyRight:
		if c.RightRange == nil {
			return fmt.Errorf("%w: %s has no right range", ErrIllegalAction, action)
		}
	case ActionKeepBase:
		if c.IsConflict() {
			return fmt.Errorf("%w: %s on conflict", ErrIllegalAction, action)
		}
	case ActionManual:
	default:
		return fmt.Errorf("%w: unknown action %q", ErrIllegalAction, action)
	}
	return nil
}
