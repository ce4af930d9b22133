package merge

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// applyEdits rebuilds side from base and the edits, so any edit script can
// be checked without pinning its exact shape.
func applyEdits(base, side []string, edits []edit) []string {
	var out []string
	at := 0
	for _, e := range edits {
		out = append(out, base[at:e.baseStart]...)
		out = append(out, side[e.sideStart:e.sideEnd]...)
		at = e.baseEnd
	}
	return append(out, base[at:]...)
}

func TestDiffEdits(t *testing.T) {
	tests := []struct {
		name       string
		base, side []string
		want       []edit
	}{
		{name: "equal", base: lines("a", "b"), side: lines("a", "b")},
		{name: "empty base", side: lines("a"), want: []edit{{0, 0, 0, 1}}},
		{name: "empty side", base: lines("a", "b"), want: []edit{{0, 2, 0, 0}}},
		{name: "replace", base: lines("a", "b", "c"), side: lines("a", "X", "c"), want: []edit{{1, 2, 1, 2}}},
		{name: "insert", base: lines("a", "c"), side: lines("a", "b", "c"), want: []edit{{1, 1, 1, 2}}},
		{name: "delete", base: lines("a", "b", "c"), side: lines("a", "c"), want: []edit{{1, 2, 1, 1}}},
		{
			name: "two edits",
			base: lines("a", "b", "c", "d", "e"),
			side: lines("A", "b", "c", "d", "E"),
			want: []edit{{0, 1, 0, 1}, {4, 5, 4, 5}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := diffEdits(tt.base, tt.side)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.side, applyEdits(tt.base, tt.side, got))
		})
	}
}

func TestLongestIncreasing(t *testing.T) {
	pairs := []anchor{{0, 3}, {1, 0}, {2, 1}, {3, 4}, {4, 2}, {5, 5}}
	assert.Equal(t, []anchor{{1, 0}, {2, 1}, {4, 2}, {5, 5}}, longestIncreasing(pairs))
	assert.Nil(t, longestIncreasing(nil))
}

func TestUniqueAnchorsSkipRepeatedLines(t *testing.T) {
	a := lines("}", "x", "}", "y", "z")
	b := lines("x", "}", "z", "}", "y")
	// "}" repeats and y moved past z, so only x and z anchor in order.
	assert.Equal(t, []anchor{{1, 0}, {4, 2}}, uniqueAnchors(a, b))
}

// goLike renders n lines of source with the heavy repetition of real code:
// a unique header every 8 lines and the same few body lines in between.
func goLike(n int) []string {
	body := []string{"\tif err != nil {", "\t\treturn nil", "\t}", "", "\treturn err", "}", ""}
	out := make([]string, n)
	for i := range out {
		if i%8 == 0 {
			out[i] = fmt.Sprintf("func f%d() error {", i)
			continue
		}
		out[i] = body[i%8-1]
	}
	return out
}

func TestBuildScalesOnRepetitiveInput(t *testing.T) {
	const n = 8000
	base := goLike(n)
	left := append([]string(nil), base...)
	right := append([]string(nil), base...)
	for i := 0; i < n; i += 40 {
		left[i] = fmt.Sprintf("// left %d", i)
		right[i+20] = fmt.Sprintf("// right %d", i+20)
	}

	start := time.Now()
	chunks, err := Build(base, left, right)
	elapsed := time.Since(start)
	require.NoError(t, err)
	assert.Less(t, elapsed, 5*time.Second)

	require.Len(t, chunks, 2*n/40)
	for _, c := range chunks {
		assert.NotEqual(t, KindConflict, c.Kind)
		assert.Equal(t, 1, c.BaseRange.Len())
	}
}

func TestDiffEditsScalesWithoutAnchors(t *testing.T) {
	const n = 8000
	base := make([]string, n)
	for i := range base {
		base[i] = []string{"}", ""}[i%2]
	}
	var side []string
	for i, line := range base {
		if i%100 != 50 {
			side = append(side, line)
		}
	}

	start := time.Now()
	edits := diffEdits(base, side)
	elapsed := time.Since(start)
	assert.Less(t, elapsed, 5*time.Second)
	assert.Equal(t, side, applyEdits(base, side, edits))
}
