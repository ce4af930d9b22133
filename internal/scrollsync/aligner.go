package scrollsync

import (
	"math"
	"slices"
	"time"

	"github.com/rs/zerolog"

	"github.com/chojs23/mergepane/internal/merge"
)

// Config holds the aligner tunables.
type Config struct {
	MaxVisibleChunks int     `toml:"max_visible_chunks"`
	Epsilon          float64 `toml:"epsilon_px"`
	FrameMS          int     `toml:"frame_ms"`
}

func DefaultConfig() Config {
	return Config{MaxVisibleChunks: 12, Epsilon: 0.5, FrameMS: 16}
}

// Frame is the coalescing interval for scroll passes.
func (c Config) Frame() time.Duration {
	if c.FrameMS <= 0 {
		return 16 * time.Millisecond
	}
	return time.Duration(c.FrameMS) * time.Millisecond
}

func (c Config) normalized() Config {
	def := DefaultConfig()
	if c.MaxVisibleChunks <= 0 {
		c.MaxVisibleChunks = def.MaxVisibleChunks
	}
	if c.Epsilon <= 0 {
		c.Epsilon = def.Epsilon
	}
	if c.FrameMS <= 0 {
		c.FrameMS = def.FrameMS
	}
	return c
}

// Aligner keeps the three panes scrolled to corresponding content.
//
// Scroll events are reported with OnScroll and coalesced into one pending
// cell per pane; Tick drains them once per frame. Writes the aligner makes
// itself are marked suppressed so the events they cause only update
// bookkeeping.
type Aligner struct {
	geo Geometry
	cfg Config
	log zerolog.Logger

	chunks     []merge.Chunk
	baseline   [3]float64
	pending    [3]bool
	suppressed [3]int
	scheduled  bool
	passes     int
}

func New(geo Geometry, cfg Config, log zerolog.Logger) *Aligner {
	a := &Aligner{geo: geo, cfg: cfg.normalized(), log: log}
	a.Reset()
	return a
}

// Reset re-reads every pane's scroll offset as the baseline and drops
// pending work. Call it after the panes are resized or reloaded.
func (a *Aligner) Reset() {
	for _, p := range panes {
		a.baseline[p] = a.geo.ScrollTop(p)
		a.pending[p] = false
		a.suppressed[p] = 0
	}
	a.scheduled = false
}

// SetChunks replaces the chunk set used for fine alignment.
func (a *Aligner) SetChunks(chunks []merge.Chunk) { a.chunks = chunks }

func (a *Aligner) Config() Config { return a.cfg }

// Passes counts alignment passes run so far.
func (a *Aligner) Passes() int { return a.passes }

// OnScroll reports that pane p scrolled. It returns true when the caller
// must schedule a Tick for the next frame.
func (a *Aligner) OnScroll(p Pane) bool {
	if a.suppressed[p] > 0 {
		a.suppressed[p]--
		a.baseline[p] = a.geo.ScrollTop(p)
		return false
	}
	a.pending[p] = true
	if a.scheduled {
		return false
	}
	a.scheduled = true
	return true
}

// Moved reports that p's offset changed by by without a scroll event, as
// when new content clamps it. The baseline moves along so the next pass only
// sees what the user scrolled.
func (a *Aligner) Moved(p Pane, by float64) {
	a.baseline[p] += by
}

// Tick runs one pass for every pane with a pending scroll.
func (a *Aligner) Tick() {
	a.scheduled = false
	for _, p := range panes {
		if !a.pending[p] {
			continue
		}
		a.pending[p] = false
		a.pass(p)
	}
}

func (a *Aligner) pass(source Pane) {
	saved := a.baseline
	defer func() {
		if r := recover(); r != nil {
			a.baseline = saved
			a.log.Error().
				Interface("panic", r).
				Stringer("source", source).
				Msg("scroll alignment failed, keeping previous offsets")
		}
	}()
	a.passes++

	delta := a.geo.ScrollTop(source) - a.baseline[source]
	if delta != 0 {
		for _, p := range panes {
			if p != source {
				a.write(p, a.geo.ScrollTop(p)+delta)
			}
		}
	}

	// base is the hub; left and right are never aligned to each other.
	if source == Base {
		a.align(Base, Left)
		a.align(Base, Right)
	} else {
		other := Left
		if source == Left {
			other = Right
		}
		a.align(source, Base)
		a.align(Base, other)
	}

	// A pane still waiting for its own pass keeps its baseline so that pass
	// sees the user's delta.
	for _, p := range panes {
		if !a.pending[p] {
			a.baseline[p] = a.geo.ScrollTop(p)
		}
	}
}

// align nudges target so chunks visible in ref line up with ref, using the
// median of the per-chunk residuals.
func (a *Aligner) align(ref, target Pane) {
	refTop := a.geo.ScrollTop(ref)
	targetTop := a.geo.ScrollTop(target)

	var residuals []float64
	for _, c := range a.visible(ref) {
		refRange, ok := rangeOn(c, ref)
		if !ok {
			continue
		}
		targetRange, ok := rangeOn(c, target)
		if !ok {
			continue
		}
		refSpan, ok := a.geo.Measure(ref, refRange)
		if !ok {
			continue
		}
		targetSpan, ok := a.geo.Measure(target, targetRange)
		if !ok {
			continue
		}
		residuals = append(residuals, (targetSpan.Center()-targetTop)-(refSpan.Center()-refTop))
	}
	if len(residuals) == 0 {
		return
	}

	shift := median(residuals)
	if math.Abs(shift) <= a.cfg.Epsilon {
		return
	}
	a.write(target, targetTop+shift)
}

// visible returns the chunks whose range in p intersects the viewport,
// trimmed to the ones nearest the viewport center when there are too many.
func (a *Aligner) visible(p Pane) []merge.Chunk {
	top := a.geo.ScrollTop(p)
	first := a.geo.LineAt(p, top)
	last := a.geo.LineAt(p, top+a.geo.Height(p))

	var out []merge.Chunk
	for _, c := range a.chunks {
		r, ok := rangeOn(c, p)
		if ok && r.Overlaps(first, last) {
			out = append(out, c)
		}
	}
	if len(out) <= a.cfg.MaxVisibleChunks {
		return out
	}

	center := float64(first+last) / 2
	slices.SortStableFunc(out, func(x, y merge.Chunk) int {
		rx, _ := rangeOn(x, p)
		ry, _ := rangeOn(y, p)
		dx := math.Abs(rx.Center() - center)
		dy := math.Abs(ry.Center() - center)
		switch {
		case dx < dy:
			return -1
		case dx > dy:
			return 1
		}
		return 0
	})
	return out[:a.cfg.MaxVisibleChunks]
}

// write scrolls p to offset, clamped, and marks the resulting event as
// suppressed. Writes that would not move the pane are skipped since they
// produce no event to consume the mark.
func (a *Aligner) write(p Pane, offset float64) {
	offset = math.Max(0, math.Min(offset, a.geo.MaxScroll(p)))
	if offset == a.geo.ScrollTop(p) {
		return
	}
	a.suppressed[p]++
	a.geo.ScrollTo(p, offset)
}

func median(xs []float64) float64 {
	sorted := slices.Clone(xs)
	slices.Sort(sorted)
	n := len(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}
