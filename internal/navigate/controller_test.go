package navigate

import (
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chojs23/mergepane/internal/merge"
	"github.com/chojs23/mergepane/internal/resolve"
)

type recorder struct{ lines []int }

func (r *recorder) Reveal(line int) { r.lines = append(r.lines, line) }

func (r *recorder) last() int {
	if len(r.lines) == 0 {
		return -1
	}
	return r.lines[len(r.lines)-1]
}

// threeChunks has left-only changes at base lines 1, 3 and 5.
func threeChunks(t *testing.T) *resolve.Store {
	t.Helper()
	base := []string{"h", "a", "s1", "b", "s2", "c", "t"}
	left := []string{"h", "A1", "A2", "s1", "B", "s2", "C", "t"}
	s, err := resolve.New(base, left, base)
	require.NoError(t, err)
	require.Len(t, s.Chunks(), 3)
	return s
}

func TestNewSelectsFirstChunk(t *testing.T) {
	s := threeChunks(t)
	rec := &recorder{}
	c := New(s, rec)

	got, ok := c.Selected()
	require.True(t, ok)
	assert.Equal(t, s.Chunks()[0].ID, got.ID)
	assert.Equal(t, 0, c.Index())
	assert.Equal(t, []int{1}, rec.lines)
}

func TestNextPreviousClampAtEnds(t *testing.T) {
	s := threeChunks(t)
	rec := &recorder{}
	c := New(s, rec)

	assert.False(t, c.Previous())
	assert.True(t, c.Next())
	assert.True(t, c.Next())
	assert.False(t, c.Next())
	assert.Equal(t, 2, c.Index())
	assert.Equal(t, []int{1, 3, 5}, rec.lines)

	assert.True(t, c.Previous())
	assert.Equal(t, 1, c.Index())
	assert.Equal(t, 3, rec.last())
}

func TestActFallsForwardWhenSelectionVanishes(t *testing.T) {
	s := threeChunks(t)
	before := s.Chunks()
	rec := &recorder{}
	c := New(s, rec)
	c.Next()

	require.NoError(t, c.Act(merge.ActionApplyLeft))

	got, ok := c.Selected()
	require.True(t, ok)
	assert.Equal(t, before[2].ID, got.ID)
	assert.Equal(t, 1, c.Index())
	assert.Equal(t, got.BaseRange.Start, rec.last())
}

func TestActFallsBackToLastChunk(t *testing.T) {
	s := threeChunks(t)
	before := s.Chunks()
	c := New(s, nil)
	c.Next()
	c.Next()

	require.NoError(t, c.Act(merge.ActionApplyLeft))

	got, ok := c.Selected()
	require.True(t, ok)
	assert.Equal(t, before[1].ID, got.ID)
	assert.Equal(t, 1, c.Index())
}

func TestActClearsSelectionWhenNothingRemains(t *testing.T) {
	base := []string{"a", "b", "c"}
	left := []string{"a", "X", "c"}
	s, err := resolve.New(base, left, base)
	require.NoError(t, err)
	c := New(s, nil)

	require.NoError(t, c.Act(merge.ActionApplyLeft))

	_, ok := c.Selected()
	assert.False(t, ok)
	assert.Equal(t, -1, c.Index())
	assert.Equal(t, "", c.SelectedID())
	assert.ErrorIs(t, c.Act(merge.ActionApplyLeft), ErrNoSelection)
	assert.False(t, c.Next())
	assert.False(t, c.Previous())
}

func TestSyncKeepsSurvivingSelectionAndReveals(t *testing.T) {
	s := threeChunks(t)
	before := s.Chunks()
	rec := &recorder{}
	c := New(s, rec)
	c.Next()
	c.Next()

	// Resolving the first chunk grows base by one line.
	require.NoError(t, s.Apply(before[0].ID, merge.ActionApplyLeft))
	c.Sync(s.Chunks())

	got, ok := c.Selected()
	require.True(t, ok)
	assert.Equal(t, before[2].ID, got.ID)
	assert.Equal(t, 1, c.Index())
	assert.Equal(t, 6, rec.last())
}

func TestRecordOnlyActionKeepsSelection(t *testing.T) {
	s := threeChunks(t)
	rec := &recorder{}
	c := New(s, rec)
	c.Next()
	id := c.SelectedID()
	reveals := len(rec.lines)

	require.NoError(t, c.Act(merge.ActionKeepBase))

	assert.Equal(t, id, c.SelectedID())
	assert.Len(t, rec.lines, reveals)
	action, ok := s.Recorded(id)
	require.True(t, ok)
	assert.Equal(t, merge.ActionKeepBase, action)
}

type countingResolver struct {
	chunks []merge.Chunk
	calls  int
	err    error
}

func (r *countingResolver) Apply(string, merge.Action) error {
	r.calls++
	return r.err
}

func (r *countingResolver) Chunks() []merge.Chunk { return r.chunks }

func TestActRejectsIneligibleActionBeforeResolver(t *testing.T) {
	leftOnly := merge.Chunk{
		ID:        "c1",
		Kind:      merge.KindChange,
		BaseRange: merge.LineRange{Start: 0, End: 0},
		LeftRange: &merge.LineRange{Start: 0, End: 0},
		Action:    merge.ActionApplyLeft,
	}
	r := &countingResolver{chunks: []merge.Chunk{leftOnly}}
	c := New(r, nil)

	assert.ErrorIs(t, c.Act(merge.ActionApplyRight), merge.ErrIllegalAction)
	assert.Equal(t, 0, r.calls)
	assert.False(t, c.Can(merge.ActionApplyRight))
	assert.True(t, c.Can(merge.ActionApplyLeft))
}

func TestActPropagatesResolverError(t *testing.T) {
	chunk := merge.Chunk{
		ID:        "c1",
		Kind:      merge.KindChange,
		BaseRange: merge.LineRange{Start: 0, End: 0},
		LeftRange: &merge.LineRange{Start: 0, End: 0},
	}
	boom := errors.New("boom")
	r := &countingResolver{chunks: []merge.Chunk{chunk}, err: boom}
	c := New(r, nil)

	assert.ErrorIs(t, c.Act(merge.ActionApplyLeft), boom)
	assert.Equal(t, "c1", c.SelectedID())
}

func TestHandle(t *testing.T) {
	s := threeChunks(t)
	c := New(s, nil)

	handled, err := c.Handle(CmdNext)
	require.NoError(t, err)
	assert.True(t, handled)
	assert.Equal(t, 1, c.Index())

	handled, err = c.Handle(CmdQuit)
	require.NoError(t, err)
	assert.False(t, handled)

	handled, err = c.Handle(CmdApplyRight)
	assert.True(t, handled)
	assert.ErrorIs(t, err, merge.ErrIllegalAction)
}

func TestKeyMapCommand(t *testing.T) {
	runes := func(s string) tea.KeyMsg {
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
	}
	tests := []struct {
		name string
		msg  tea.KeyMsg
		want Command
	}{
		{"n", runes("n"), CmdNext},
		{"down", tea.KeyMsg{Type: tea.KeyDown}, CmdNext},
		{"up", tea.KeyMsg{Type: tea.KeyUp}, CmdPrevious},
		{"l", runes("l"), CmdApplyLeft},
		{"r", runes("r"), CmdApplyRight},
		{"i", runes("i"), CmdKeepBase},
		{"m", runes("m"), CmdManual},
		{"L", runes("L"), CmdApplyAllLeft},
		{"R", runes("R"), CmdApplyAllRight},
		{"u", runes("u"), CmdUndo},
		{"ctrl+r", tea.KeyMsg{Type: tea.KeyCtrlR}, CmdRedo},
		{"w", runes("w"), CmdWrite},
		{"tab", tea.KeyMsg{Type: tea.KeyTab}, CmdFocus},
		{"j", runes("j"), CmdScrollDown},
		{"k", runes("k"), CmdScrollUp},
		{"ctrl+c", tea.KeyMsg{Type: tea.KeyCtrlC}, CmdQuit},
		{"unbound", runes("z"), CmdNone},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DefaultKeyMap.Command(tt.msg))
		})
	}
}

func TestCommandAction(t *testing.T) {
	a, ok := CmdKeepBase.Action()
	assert.True(t, ok)
	assert.Equal(t, merge.ActionKeepBase, a)

	_, ok = CmdManual.Action()
	assert.False(t, ok)
}
