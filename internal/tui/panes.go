package tui

import (
	"math"

	"github.com/charmbracelet/bubbles/viewport"

	"github.com/chojs23/mergepane/internal/merge"
	"github.com/chojs23/mergepane/internal/scrollsync"
)

// panes holds the three viewports and implements scrollsync.Geometry over
// them. Every document line is one terminal row.
//
// It lives behind a pointer so the aligner and the navigation revealer see
// the same viewports as the bubbletea model copies.
type panes struct {
	vp    [3]viewport.Model
	lines [3]int

	aligner *scrollsync.Aligner
	// tickDue is set when the aligner asked for a frame.
	tickDue bool
	// reveal is a base line to center once content is refreshed, or -1.
	reveal int
}

func newPanes() *panes {
	p := &panes{reveal: -1}
	for i := range p.vp {
		p.vp[i] = viewport.New(0, 0)
		p.vp[i].MouseWheelEnabled = false
	}
	return p
}

func (p *panes) Measure(pane scrollsync.Pane, r merge.LineRange) (scrollsync.Span, bool) {
	if r.Start < 0 || r.Limit() > p.lines[pane] {
		return scrollsync.Span{}, false
	}
	return scrollsync.Span{Top: float64(r.Start), Bottom: float64(r.Limit())}, true
}

func (p *panes) ScrollTop(pane scrollsync.Pane) float64 {
	return float64(p.vp[pane].YOffset)
}

// ScrollTo moves a viewport. The terminal has no asynchronous scroll events,
// so the resulting event is reported to the aligner right away.
func (p *panes) ScrollTo(pane scrollsync.Pane, offset float64) {
	p.vp[pane].SetYOffset(int(math.Round(offset)))
	p.notify(pane)
}

func (p *panes) MaxScroll(pane scrollsync.Pane) float64 {
	return math.Max(0, float64(p.vp[pane].TotalLineCount()-p.vp[pane].Height))
}

func (p *panes) Height(pane scrollsync.Pane) float64 {
	return float64(p.vp[pane].Height)
}

func (p *panes) LineAt(pane scrollsync.Pane, offset float64) int {
	line := int(offset)
	if line >= p.lines[pane] {
		line = p.lines[pane] - 1
	}
	if line < 0 {
		line = 0
	}
	return line
}

func (p *panes) notify(pane scrollsync.Pane) {
	if p.aligner != nil && p.aligner.OnScroll(pane) {
		p.tickDue = true
	}
}

// scroll is a user scroll of delta rows.
func (p *panes) scroll(pane scrollsync.Pane, delta int) {
	before := p.vp[pane].YOffset
	if delta < 0 {
		p.vp[pane].LineUp(-delta)
	} else {
		p.vp[pane].LineDown(delta)
	}
	if p.vp[pane].YOffset != before {
		p.notify(pane)
	}
}

// Reveal implements navigate.Revealer. The scroll is applied by center after
// the next content refresh.
func (p *panes) Reveal(line int) { p.reveal = line }

// center scrolls base so line sits mid-viewport.
func (p *panes) center(line int) {
	vp := &p.vp[scrollsync.Base]
	target := line - vp.Height/2
	if target < 0 {
		target = 0
	}
	before := vp.YOffset
	vp.SetYOffset(target)
	if vp.YOffset != before {
		p.notify(scrollsync.Base)
	}
}

// setContent replaces a pane's text. Shorter content can clamp the offset,
// which the aligner must hear about as a move rather than a user scroll.
func (p *panes) setContent(pane scrollsync.Pane, content string, lines int) {
	p.lines[pane] = lines
	before := p.vp[pane].YOffset
	p.vp[pane].SetContent(content)
	if moved := p.vp[pane].YOffset - before; moved != 0 && p.aligner != nil {
		p.aligner.Moved(pane, float64(moved))
	}
}

func (p *panes) resize(width, height int) {
	for i := range p.vp {
		p.vp[i].Width = width
		p.vp[i].Height = height
	}
}

// takeTick reports and clears a pending frame request.
func (p *panes) takeTick() bool {
	due := p.tickDue
	p.tickDue = false
	return due
}
