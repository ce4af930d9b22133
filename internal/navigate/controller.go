package navigate

import (
	"errors"

	"github.com/chojs23/mergepane/internal/merge"
)

var ErrNoSelection = errors.New("no chunk selected")

// Resolver applies actions to chunks and exposes the rebuilt chunk set.
type Resolver interface {
	Apply(id string, action merge.Action) error
	Chunks() []merge.Chunk
}

// Revealer scrolls the base view so a line is centered.
type Revealer interface {
	Reveal(line int)
}

// RevealFunc adapts a plain function to Revealer.
type RevealFunc func(line int)

func (f RevealFunc) Reveal(line int) { f(line) }

// Controller tracks the selected chunk over an ordered chunk list that is
// replaced after every rebuild.
type Controller struct {
	resolver Resolver
	revealer Revealer

	chunks   []merge.Chunk
	selected string
	index    int
	// anchor is the base start line of the selection, kept so a successor can
	// be found after the selected chunk disappears.
	anchor int
}

func New(resolver Resolver, revealer Revealer) *Controller {
	c := &Controller{resolver: resolver, revealer: revealer, index: -1}
	c.Sync(resolver.Chunks())
	return c
}

// Sync adopts a freshly built chunk list. A selection that survived keeps its
// id; a vanished one falls back to the first chunk at or after its old base
// position, or to the last chunk.
func (c *Controller) Sync(chunks []merge.Chunk) {
	c.chunks = chunks
	if len(chunks) == 0 {
		c.selected = ""
		c.index = -1
		return
	}

	if c.selected != "" {
		if _, idx, ok := merge.Find(chunks, c.selected); ok {
			prevAnchor := c.anchor
			c.index = idx
			c.anchor = chunks[idx].BaseRange.Start
			if c.anchor != prevAnchor {
				c.reveal()
			}
			return
		}
		idx := merge.IndexAtLine(chunks, c.anchor)
		if idx >= len(chunks) {
			idx = len(chunks) - 1
		}
		c.selectIndex(idx)
		return
	}

	c.selectIndex(0)
}

func (c *Controller) selectIndex(idx int) {
	chunk := c.chunks[idx]
	c.selected = chunk.ID
	c.index = idx
	c.anchor = chunk.BaseRange.Start
	c.reveal()
}

func (c *Controller) reveal() {
	if c.revealer != nil {
		c.revealer.Reveal(c.anchor)
	}
}

// Next moves the selection forward one chunk. It does not wrap.
func (c *Controller) Next() bool {
	if c.index < 0 || c.index >= len(c.chunks)-1 {
		return false
	}
	c.selectIndex(c.index + 1)
	return true
}

// Previous moves the selection back one chunk. It does not wrap.
func (c *Controller) Previous() bool {
	if c.index <= 0 {
		return false
	}
	c.selectIndex(c.index - 1)
	return true
}

// Select focuses the chunk with the given id.
func (c *Controller) Select(id string) bool {
	_, idx, ok := merge.Find(c.chunks, id)
	if !ok {
		return false
	}
	c.selectIndex(idx)
	return true
}

func (c *Controller) Selected() (merge.Chunk, bool) {
	if c.index < 0 || c.index >= len(c.chunks) {
		return merge.Chunk{}, false
	}
	return c.chunks[c.index], true
}

func (c *Controller) SelectedID() string { return c.selected }

// Index is the position of the selection, or -1 with no chunks.
func (c *Controller) Index() int { return c.index }

func (c *Controller) Len() int { return len(c.chunks) }

// Act applies action to the selected chunk and resyncs with the rebuilt
// chunk list. Eligibility is checked here and again by the resolver.
func (c *Controller) Act(action merge.Action) error {
	chunk, ok := c.Selected()
	if !ok {
		return ErrNoSelection
	}
	if err := chunk.Check(action); err != nil {
		return err
	}
	if err := c.resolver.Apply(chunk.ID, action); err != nil {
		return err
	}
	c.Sync(c.resolver.Chunks())
	return nil
}

// Can reports whether action is currently legal for the selection, for
// hosts that disable controls up front.
func (c *Controller) Can(action merge.Action) bool {
	chunk, ok := c.Selected()
	if !ok {
		return false
	}
	return chunk.Check(action) == nil
}

// Handle runs the chunk-level commands. Other commands are left to the
// host and reported as unhandled.
func (c *Controller) Handle(cmd Command) (bool, error) {
	switch cmd {
	case CmdNext:
		c.Next()
		return true, nil
	case CmdPrevious:
		c.Previous()
		return true, nil
	}
	if action, ok := cmd.Action(); ok {
		return true, c.Act(action)
	}
	return false, nil
}
