package merge

import (
	"sort"

	"github.com/pmezard/go-difflib/difflib"
)

// maxMatcherCells bounds the gap handed to the exact sequence matcher, whose
// cost grows with the product of both lengths on repetitive input.
const maxMatcherCells = 1 << 16

// edit is one non-equal span of a base->side diff, in half-open
// coordinates.
type edit struct {
	baseStart, baseEnd int
	sideStart, sideEnd int
}

// diffEdits returns the edits turning base into side, ordered by position.
//
// Common ends are trimmed, lines occurring exactly once on both sides anchor
// the rest, and only the gaps between anchors reach the sequence matcher.
func diffEdits(base, side []string) []edit {
	d := differ{a: base, b: side}
	d.diff(0, len(base), 0, len(side))
	return d.edits
}

type differ struct {
	a, b  []string
	edits []edit
}

func (d *differ) diff(a0, a1, b0, b1 int) {
	for a0 < a1 && b0 < b1 && d.a[a0] == d.b[b0] {
		a0++
		b0++
	}
	for a0 < a1 && b0 < b1 && d.a[a1-1] == d.b[b1-1] {
		a1--
		b1--
	}

	switch {
	case a0 == a1 && b0 == b1:
		return
	case a0 == a1 || b0 == b1:
		d.emit(a0, a1, b0, b1)
		return
	case (a1-a0)*(b1-b0) <= maxMatcherCells:
		d.match(a0, a1, b0, b1, false)
		return
	}

	anchors := uniqueAnchors(d.a[a0:a1], d.b[b0:b1])
	if len(anchors) == 0 {
		d.match(a0, a1, b0, b1, true)
		return
	}
	i, j := a0, b0
	for _, m := range anchors {
		d.diff(i, a0+m.a, j, b0+m.b)
		i, j = a0+m.a+1, b0+m.b+1
	}
	d.diff(i, a1, j, b1)
}

// match runs the sequence matcher over one gap. Large gaps use the
// matcher's popular-line heuristic; the spans it leaves unmatched are diffed
// again when they are narrower than the gap.
func (d *differ) match(a0, a1, b0, b1 int, large bool) {
	m := difflib.NewMatcherWithJunk(d.a[a0:a1], d.b[b0:b1], large, nil)
	for _, op := range m.GetOpCodes() {
		if op.Tag == 'e' {
			continue
		}
		i1, i2, j1, j2 := a0+op.I1, a0+op.I2, b0+op.J1, b0+op.J2
		if large && (i2-i1 < a1-a0 || j2-j1 < b1-b0) {
			d.diff(i1, i2, j1, j2)
			continue
		}
		d.emit(i1, i2, j1, j2)
	}
}

func (d *differ) emit(a0, a1, b0, b1 int) {
	if n := len(d.edits); n > 0 {
		last := &d.edits[n-1]
		if last.baseEnd == a0 && last.sideEnd == b0 {
			last.baseEnd, last.sideEnd = a1, b1
			return
		}
	}
	d.edits = append(d.edits, edit{baseStart: a0, baseEnd: a1, sideStart: b0, sideEnd: b1})
}

type anchor struct{ a, b int }

// uniqueAnchors pairs the lines that occur exactly once in a and once in b,
// keeping the longest run whose positions increase on both sides.
func uniqueAnchors(a, b []string) []anchor {
	type count struct{ inA, inB, posB int }
	counts := make(map[string]*count, len(a))
	for _, line := range a {
		c := counts[line]
		if c == nil {
			c = &count{}
			counts[line] = c
		}
		c.inA++
	}
	for j, line := range b {
		if c := counts[line]; c != nil {
			c.inB++
			c.posB = j
		}
	}

	var pairs []anchor
	for i, line := range a {
		if c := counts[line]; c.inA == 1 && c.inB == 1 {
			pairs = append(pairs, anchor{a: i, b: c.posB})
		}
	}
	return longestIncreasing(pairs)
}

// longestIncreasing returns the longest subsequence of pairs (ordered by a)
// whose b positions strictly increase.
func longestIncreasing(pairs []anchor) []anchor {
	if len(pairs) == 0 {
		return nil
	}
	tails := make([]int, 0, len(pairs))
	prev := make([]int, len(pairs))
	for i, p := range pairs {
		k := sort.Search(len(tails), func(k int) bool { return pairs[tails[k]].b >= p.b })
		prev[i] = -1
		if k > 0 {
			prev[i] = tails[k-1]
		}
		if k == len(tails) {
			tails = append(tails, i)
		} else {
			tails[k] = i
		}
	}

	out := make([]anchor, len(tails))
	for i, k := len(tails)-1, tails[len(tails)-1]; i >= 0; i, k = i-1, prev[k] {
		out[i] = pairs[k]
	}
	return out
}
