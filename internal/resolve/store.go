package resolve

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/chojs23/mergepane/internal/merge"
)

// ErrStaleChunk is returned when an action names a chunk id that is not part
// of the current chunk set, usually because a rebuild replaced it.
var ErrStaleChunk = errors.New("stale chunk reference")

var ErrNoHistory = errors.New("no history available")

// BuildFunc computes chunks for base against the store's fixed left and
// right documents.
type BuildFunc func(base []string) ([]merge.Chunk, error)

// Entry pairs a chunk with the action the user recorded for it.
type Entry struct {
	Chunk    merge.Chunk
	Recorded merge.Action
}

type snapshot struct {
	base    []string
	chunks  []merge.Chunk
	actions map[string]merge.Action
}

// Store holds the mutable base document, the current chunk set and the
// per-chunk recorded actions. left and right never change.
type Store struct {
	left, right []string
	base        []string
	chunks      []merge.Chunk
	actions     map[string]merge.Action

	build     BuildFunc
	log       zerolog.Logger
	undoStack []snapshot
	redoStack []snapshot
	maxUndo   int
}

type Option func(*Store)

func WithBuilder(build BuildFunc) Option {
	return func(s *Store) { s.build = build }
}

func WithLogger(log zerolog.Logger) Option {
	return func(s *Store) { s.log = log }
}

// WithUndoDepth bounds the undo and redo stacks. Values below 1 disable
// history.
func WithUndoDepth(n int) Option {
	return func(s *Store) { s.maxUndo = n }
}

// New builds the initial chunk set. base is also the common ancestor left
// and right are measured against unless WithBuilder replaces the builder.
// Unlike later rebuilds, a failure here is returned because there is no
// previous state to fall back to.
func New(base, left, right []string, opts ...Option) (*Store, error) {
	s := &Store{
		left:    clone(left),
		right:   clone(right),
		base:    clone(base),
		actions: map[string]merge.Action{},
		log:     zerolog.Nop(),
		maxUndo: 100,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.build == nil {
		b, err := merge.NewBuilder(s.base, s.left, s.right)
		if err != nil {
			return nil, fmt.Errorf("build chunks: %w", err)
		}
		s.build = b.Build
	}

	chunks, err := s.build(s.base)
	if err != nil {
		return nil, fmt.Errorf("build chunks: %w", err)
	}
	s.chunks = chunks
	return s, nil
}

// effect is what an action does to the store. Only takeSide carries the
// side needed to splice base, so record-only actions cannot reach it.
type effect interface{ isEffect() }

type takeSide struct{ side merge.Side }

type recordOnly struct{ action merge.Action }

func (takeSide) isEffect()   {}
func (recordOnly) isEffect() {}

func effectOf(action merge.Action) (effect, error) {
	switch action {
	case merge.ActionApplyLeft:
		return takeSide{side: merge.SideLeft}, nil
	case merge.ActionApplyRight:
		return takeSide{side: merge.SideRight}, nil
	case merge.ActionKeepBase, merge.ActionManual:
		return recordOnly{action: action}, nil
	default:
		return nil, fmt.Errorf("%w: unknown action %q", merge.ErrIllegalAction, action)
	}
}

// Apply performs action on the chunk with the given id.
//
// Illegal actions, stale ids and failed rebuilds all leave the store exactly
// as it was and report why through the returned error.
func (s *Store) Apply(id string, action merge.Action) error {
	chunk, _, ok := merge.Find(s.chunks, id)
	if !ok {
		return fmt.Errorf("%w: %s", ErrStaleChunk, id)
	}
	if err := chunk.Check(action); err != nil {
		return err
	}
	eff, err := effectOf(action)
	if err != nil {
		return err
	}

	switch e := eff.(type) {
	case takeSide:
		next, patch := s.spliceSide(s.base, chunk, e.side)
		return s.commit(next, []merge.Patch{patch}, chunk.ID, action)
	case recordOnly:
		s.beginMutation()
		s.actions[chunk.ID] = e.action
		return nil
	default:
		return fmt.Errorf("internal: unhandled effect %T", eff)
	}
}

// ApplyAll takes side for every chunk that carries a range on that side,
// as a single undo step.
func (s *Store) ApplyAll(side merge.Side) (int, error) {
	next := s.base
	var patches []merge.Patch
	// Walk backwards so earlier base ranges stay valid while splicing.
	for i := len(s.chunks) - 1; i >= 0; i-- {
		chunk := s.chunks[i]
		if _, ok := chunk.Range(side); !ok {
			continue
		}
		var patch merge.Patch
		next, patch = s.spliceSide(next, chunk, side)
		patches = append(patches, patch)
	}
	if len(patches) == 0 {
		return 0, nil
	}
	if err := s.commit(next, patches, "", side.Action()); err != nil {
		return 0, err
	}
	return len(patches), nil
}

// SetBase replaces base wholesale, for edits made outside the engine such as
// manual editing in an external editor.
func (s *Store) SetBase(base []string) error {
	return s.commit(clone(base), nil, "", merge.ActionManual)
}

func (s *Store) spliceSide(base []string, chunk merge.Chunk, side merge.Side) ([]string, merge.Patch) {
	r, _ := chunk.Range(side)
	doc := s.left
	if side == merge.SideRight {
		doc = s.right
	}
	patch := merge.Patch{Range: chunk.BaseRange, Lines: r.Len()}
	return merge.Splice(base, chunk.BaseRange, merge.Lines(doc, r)), patch
}

// commit rebuilds chunks for next and swaps state in only if the rebuild
// succeeded. Chunks outside the patches keep their ids; a nil patch list
// means base was replaced wholesale and nothing is carried.
func (s *Store) commit(next []string, patches []merge.Patch, chunkID string, action merge.Action) error {
	chunks, err := s.build(next)
	if err != nil {
		s.log.Warn().Err(err).
			Str("chunk", chunkID).
			Str("action", string(action)).
			Msg("rebuild failed, keeping previous chunks")
		return fmt.Errorf("rebuild chunks: %w", err)
	}
	if patches != nil {
		merge.CarryIDs(s.chunks, chunks, patches)
	}

	s.beginMutation()
	s.base = next
	s.chunks = chunks
	s.prune()

	s.log.Debug().
		Str("chunk", chunkID).
		Str("action", string(action)).
		Int("chunks", len(chunks)).
		Int("base_lines", len(next)).
		Msg("applied")
	return nil
}

// prune drops recorded actions whose chunk did not survive the rebuild.
func (s *Store) prune() {
	if len(s.actions) == 0 {
		return
	}
	live := make(map[string]struct{}, len(s.chunks))
	for _, c := range s.chunks {
		live[c.ID] = struct{}{}
	}
	for id := range s.actions {
		if _, ok := live[id]; !ok {
			delete(s.actions, id)
		}
	}
}

// Undo restores the previous base, chunks and recorded actions.
func (s *Store) Undo() error {
	return s.restore(&s.undoStack, &s.redoStack)
}

// Redo reapplies a previously undone state.
func (s *Store) Redo() error {
	return s.restore(&s.redoStack, &s.undoStack)
}

func (s *Store) restore(from, to *[]snapshot) error {
	if len(*from) == 0 {
		return ErrNoHistory
	}
	last := len(*from) - 1
	snap := (*from)[last]

	s.pushWithLimit(to, s.snapshot())
	*from = (*from)[:last]
	s.base = snap.base
	s.chunks = snap.chunks
	s.actions = snap.actions
	return nil
}

func (s *Store) snapshot() snapshot {
	actions := make(map[string]merge.Action, len(s.actions))
	for id, a := range s.actions {
		actions[id] = a
	}
	return snapshot{base: s.base, chunks: s.chunks, actions: actions}
}

// beginMutation saves the current state to undo and clears redo history.
func (s *Store) beginMutation() {
	s.pushWithLimit(&s.undoStack, s.snapshot())
	s.redoStack = s.redoStack[:0]
}

func (s *Store) pushWithLimit(stack *[]snapshot, snap snapshot) {
	if s.maxUndo < 1 {
		return
	}
	*stack = append(*stack, snap)
	if len(*stack) > s.maxUndo {
		*stack = (*stack)[1:]
	}
}

// Base returns a copy of the current base document.
func (s *Store) Base() []string { return clone(s.base) }

func (s *Store) Left() []string  { return s.left }
func (s *Store) Right() []string { return s.right }

// Chunks returns the current chunk set. Callers must not modify it.
func (s *Store) Chunks() []merge.Chunk { return s.chunks }

// Recorded returns the action recorded for a chunk id.
func (s *Store) Recorded(id string) (merge.Action, bool) {
	a, ok := s.actions[id]
	return a, ok
}

// Entries returns every current chunk with its recorded action, if any.
func (s *Store) Entries() []Entry {
	out := make([]Entry, len(s.chunks))
	for i, c := range s.chunks {
		out[i] = Entry{Chunk: c, Recorded: s.actions[c.ID]}
	}
	return out
}

// Unresolved counts conflict chunks still present.
func (s *Store) Unresolved() int {
	n := 0
	for _, c := range s.chunks {
		if c.IsConflict() {
			n++
		}
	}
	return n
}

func (s *Store) UndoDepth() int { return len(s.undoStack) }
func (s *Store) RedoDepth() int { return len(s.redoStack) }

func clone(lines []string) []string {
	if lines == nil {
		return nil
	}
	return append([]string(nil), lines...)
}
