package merge

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/mitchellh/hashstructure/v2"
)

var ErrInvalidDocument = errors.New("invalid document")

type group struct {
	baseStart, baseEnd int
	edits              [2][]edit
}

func (g *group) add(side Side, e edit) {
	if len(g.edits[SideLeft]) == 0 && len(g.edits[SideRight]) == 0 {
		g.baseStart, g.baseEnd = e.baseStart, e.baseEnd
	}
	if e.baseEnd > g.baseEnd {
		g.baseEnd = e.baseEnd
	}
	g.edits[side] = append(g.edits[side], e)
}

// sideSpan maps the group's base span onto the side's coordinates. Lines
// outside the side's own edits are equal to base, so the offsets carry over.
func (g *group) sideSpan(side Side) (int, int, bool) {
	edits := g.edits[side]
	if len(edits) == 0 {
		return 0, 0, false
	}
	first, last := edits[0], edits[len(edits)-1]
	start := first.sideStart - (first.baseStart - g.baseStart)
	end := last.sideEnd + (g.baseEnd - last.baseEnd)
	return start, end, true
}

// Build computes the merge chunks for base against left and right, with base
// taken as the ancestor both sides were derived from.
func Build(base, left, right []string) ([]Chunk, error) {
	b, err := NewBuilder(base, left, right)
	if err != nil {
		return nil, err
	}
	return b.Build(base)
}

// Builder rebuilds chunks for a base that changes while left and right stay
// fixed. It remembers which lines each side changed relative to the ancestor,
// so a region a side never touched is not reported as that side diverging
// once base has taken the other side's text there.
type Builder struct {
	docs [2][]string
	// own holds each side's edits against the ancestor.
	own [2][]edit
}

func NewBuilder(ancestor, left, right []string) (*Builder, error) {
	if err := validateLines(ancestor); err != nil {
		return nil, fmt.Errorf("base: %w", err)
	}
	if err := validateLines(left); err != nil {
		return nil, fmt.Errorf("left: %w", err)
	}
	if err := validateLines(right); err != nil {
		return nil, fmt.Errorf("right: %w", err)
	}
	return &Builder{
		docs: [2][]string{SideLeft: left, SideRight: right},
		own:  [2][]edit{SideLeft: diffEdits(ancestor, left), SideRight: diffEdits(ancestor, right)},
	}, nil
}

// Build computes the full chunk set for base. Chunks are ordered by base
// start line and never overlap in base.
func (b *Builder) Build(base []string) ([]Chunk, error) {
	if err := validateLines(base); err != nil {
		return nil, fmt.Errorf("base: %w", err)
	}

	groups := groupEdits(diffEdits(base, b.docs[SideLeft]), diffEdits(base, b.docs[SideRight]))
	chunks := make([]Chunk, 0, len(groups))
	for _, g := range groups {
		if c, ok := b.chunkFromGroup(g); ok {
			chunks = append(chunks, c)
		}
	}

	if err := assignIDs(chunks, base, b.docs[SideLeft], b.docs[SideRight]); err != nil {
		return nil, err
	}
	return chunks, nil
}

// edited reports whether side changed anything inside r, or right at its
// edges when either is an insertion point.
func (b *Builder) edited(side Side, r LineRange) bool {
	edits := b.own[side]
	start, limit := r.Start, r.Limit()
	i := sort.Search(len(edits), func(i int) bool { return edits[i].sideEnd >= start })
	for ; i < len(edits) && edits[i].sideStart <= limit; i++ {
		e := edits[i]
		if e.sideStart == e.sideEnd || start == limit {
			return true
		}
		if e.sideStart < limit && start < e.sideEnd {
			return true
		}
	}
	return false
}

func validateLines(lines []string) error {
	for i, line := range lines {
		if strings.ContainsRune(line, '\n') {
			return fmt.Errorf("%w: line %d contains a newline", ErrInvalidDocument, i)
		}
	}
	return nil
}

// groupEdits walks both edit scripts in base order. Edits whose base spans
// overlap or touch land in the same group, so two groups are always
// separated by at least one line equal on both sides.
func groupEdits(leftEdits, rightEdits []edit) []group {
	var groups []group
	li, ri := 0, 0

	next := func() (Side, edit) {
		if ri >= len(rightEdits) || (li < len(leftEdits) && leftEdits[li].baseStart <= rightEdits[ri].baseStart) {
			li++
			return SideLeft, leftEdits[li-1]
		}
		ri++
		return SideRight, rightEdits[ri-1]
	}

	for li < len(leftEdits) || ri < len(rightEdits) {
		var g group
		g.add(next())
		for {
			if li < len(leftEdits) && leftEdits[li].baseStart <= g.baseEnd {
				g.add(SideLeft, leftEdits[li])
				li++
				continue
			}
			if ri < len(rightEdits) && rightEdits[ri].baseStart <= g.baseEnd {
				g.add(SideRight, rightEdits[ri])
				ri++
				continue
			}
			break
		}
		groups = append(groups, g)
	}
	return groups
}

func (b *Builder) chunkFromGroup(g group) (Chunk, bool) {
	chunk := Chunk{BaseRange: halfOpen(g.baseStart, g.baseEnd)}

	var spans [2]*LineRange
	for _, side := range []Side{SideLeft, SideRight} {
		start, end, ok := g.sideSpan(side)
		if !ok {
			continue
		}
		r := halfOpen(start, end)
		if b.edited(side, r) {
			spans[side] = &r
		}
	}
	chunk.LeftRange = spans[SideLeft]
	chunk.RightRange = spans[SideRight]

	switch {
	case chunk.LeftRange != nil && chunk.RightRange != nil:
		leftText := slice(b.docs[SideLeft], *chunk.LeftRange)
		rightText := slice(b.docs[SideRight], *chunk.RightRange)
		if equalLines(leftText, rightText) {
			chunk.Kind = classify(chunk.BaseRange, *chunk.LeftRange)
			chunk.Action = ActionApplyLeft
		} else {
			chunk.Kind = KindConflict
			chunk.Action = ActionManual
		}
	case chunk.LeftRange != nil:
		chunk.Kind = classify(chunk.BaseRange, *chunk.LeftRange)
		chunk.Action = ActionApplyLeft
	case chunk.RightRange != nil:
		chunk.Kind = classify(chunk.BaseRange, *chunk.RightRange)
		chunk.Action = ActionApplyRight
	default:
		return Chunk{}, false
	}
	return chunk, true
}

func classify(baseRange, sideRange LineRange) Kind {
	switch {
	case baseRange.Empty():
		return KindInsert
	case sideRange.Empty():
		return KindDelete
	default:
		return KindChange
	}
}

type signature struct {
	Kind      string
	Base      []string
	Left      []string
	Right     []string
	HasLeft   bool
	HasRight  bool
	Before    string
	After     string
	HasBefore bool
	HasAfter  bool
}

// assignIDs derives ids from chunk content and the equal lines around it.
// Positions are left out so that edits elsewhere in base, which shift line
// numbers, do not change the id of an untouched chunk.
func assignIDs(chunks []Chunk, base, left, right []string) error {
	seen := make(map[uint64]int, len(chunks))
	for i := range chunks {
		c := &chunks[i]
		sig := signature{
			Kind: string(c.Kind),
			Base: slice(base, c.BaseRange),
		}
		if c.LeftRange != nil {
			sig.HasLeft = true
			sig.Left = slice(left, *c.LeftRange)
		}
		if c.RightRange != nil {
			sig.HasRight = true
			sig.Right = slice(right, *c.RightRange)
		}
		if c.BaseRange.Start > 0 {
			sig.HasBefore = true
			sig.Before = base[c.BaseRange.Start-1]
		}
		if c.BaseRange.Limit() < len(base) {
			sig.HasAfter = true
			sig.After = base[c.BaseRange.Limit()]
		}

		hash, err := hashstructure.Hash(sig, hashstructure.FormatV2, nil)
		if err != nil {
			return fmt.Errorf("hash chunk %d: %w", i, err)
		}
		ordinal := seen[hash]
		seen[hash] = ordinal + 1
		c.ID = fmt.Sprintf("%016x", hash)
		if ordinal > 0 {
			c.ID = fmt.Sprintf("%s-%d", c.ID, ordinal)
		}
	}
	return nil
}

// Patch records one Splice made to base: the span replaced and the number
// of lines put in its place.
type Patch struct {
	Range LineRange
	Lines int
}

// CarryIDs gives the chunks in next that the patches left untouched the ids
// they had in prev. Identical chunks are numbered by position in Build, and
// a patch before them can renumber them.
func CarryIDs(prev, next []Chunk, patches []Patch) {
	type key struct {
		digest   string
		start, n int
	}
	carried := make(map[key]string, len(prev))
	for _, c := range prev {
		if start, ok := shifted(c.BaseRange, patches); ok {
			carried[key{digest(c.ID), start, c.BaseRange.Len()}] = c.ID
		}
	}

	used := make(map[string]bool, len(next))
	kept := make([]bool, len(next))
	for i := range next {
		c := &next[i]
		if id, ok := carried[key{digest(c.ID), c.BaseRange.Start, c.BaseRange.Len()}]; ok {
			c.ID = id
			used[id] = true
			kept[i] = true
		}
	}
	for i := range next {
		if kept[i] {
			continue
		}
		c := &next[i]
		if used[c.ID] {
			d := digest(c.ID)
			c.ID = d
			for n := 1; used[c.ID]; n++ {
				c.ID = fmt.Sprintf("%s-%d", d, n)
			}
		}
		used[c.ID] = true
	}
}

// shifted maps the start of r across the patches, which are given in the
// coordinates r was taken from. It fails for a range a patch replaced.
func shifted(r LineRange, patches []Patch) (int, bool) {
	start := r.Start
	for _, p := range patches {
		switch {
		case p.Range == r:
			return 0, false
		case p.Range.Limit() <= r.Start:
			start += p.Lines - p.Range.Len()
		case r.Limit() <= p.Range.Start:
		default:
			return 0, false
		}
	}
	return start, true
}

func digest(id string) string {
	d, _, _ := strings.Cut(id, "-")
	return d
}

func slice(lines []string, r LineRange) []string {
	if r.Empty() {
		return nil
	}
	return lines[r.Start:r.Limit()]
}

func equalLines(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// Lines returns the lines of doc covered by r.
func Lines(doc []string, r LineRange) []string {
	return append([]string(nil), slice(doc, r)...)
}

// Splice replaces the span r of doc with repl, returning a new document.
func Splice(doc []string, r LineRange, repl []string) []string {
	out := make([]string, 0, len(doc)-r.Len()+len(repl))
	out = append(out, doc[:r.Start]...)
	out = append(out, repl...)
	out = append(out, doc[r.Limit():]...)
	return out
}

// Find returns the chunk with the given id.
func Find(chunks []Chunk, id string) (Chunk, int, bool) {
	for i, c := range chunks {
		if c.ID == id {
			return c, i, true
		}
	}
	return Chunk{}, -1, false
}

// IndexAtLine returns the index of the first chunk whose base range starts
// at or after line, or len(chunks) if none does.
func IndexAtLine(chunks []Chunk, line int) int {
	return sort.Search(len(chunks), func(i int) bool {
		return chunks[i].BaseRange.Start >= line
	})
}
