package scrollsync

import (
	"fmt"

	"github.com/chojs23/mergepane/internal/merge"
)

// Pane identifies one of the three document viewports.
type Pane int

const (
	Base Pane = iota
	Left
	Right
)

var panes = [...]Pane{Base, Left, Right}

func (p Pane) String() string {
	switch p {
	case Base:
		return "base"
	case Left:
		return "left"
	case Right:
		return "right"
	default:
		return fmt.Sprintf("pane(%d)", int(p))
	}
}

// Span is a vertical extent in a pane's content coordinates.
type Span struct {
	Top, Bottom float64
}

func (s Span) Center() float64 { return (s.Top + s.Bottom) / 2 }

// Geometry is supplied by whatever renders the panes. Offsets and spans are
// in the renderer's units: pixels in a browser, rows in a terminal.
type Geometry interface {
	// Measure reports where a line range sits in the pane's content. An
	// empty range measures as a zero-height span at its insertion point.
	Measure(p Pane, r merge.LineRange) (Span, bool)
	ScrollTop(p Pane) float64
	ScrollTo(p Pane, offset float64)
	MaxScroll(p Pane) float64
	Height(p Pane) float64
	// LineAt returns the line rendered at a content offset.
	LineAt(p Pane, offset float64) int
}

// rangeOn returns the chunk's range in the given pane.
func rangeOn(c merge.Chunk, p Pane) (merge.LineRange, bool) {
	switch p {
	case Base:
		return c.BaseRange, true
	case Left:
		return c.Range(merge.SideLeft)
	case Right:
		return c.Range(merge.SideRight)
	}
	return merge.LineRange{}, false
}
