package bt

import "github.com/zeusync/skirmish/pkg/generic"

// Cursor is the per-decision execution state of a tree: the active child
// index of every composite (and the verdict of every guard) on the active
// path, keyed by node identity. One cursor belongs to exactly one decision.
type Cursor struct {
	slots   map[uint64]int
	calls   int
	actions int
}

func NewCursor() *Cursor {
	return &Cursor{slots: make(map[uint64]int, 8)}
}

var cursors = generic.NewResetPool(NewCursor, func(c *Cursor) { c.reset() })

func (c *Cursor) reset() {
	clear(c.slots)
	c.calls = 0
	c.actions = 0
}

func (c *Cursor) get(id uint64) int { return c.slots[id] }

func (c *Cursor) set(id uint64, v int) { c.slots[id] = v }

// Index reports the active child index recorded for a composite node.
func (c *Cursor) Index(n Node) (int, bool) {
	v, ok := c.slots[n.base().id]
	return v, ok
}

// Calls is the number of process calls made on the root so far.
func (c *Cursor) Calls() int { return c.calls }

// Actions is the number of Action nodes that fired so far.
func (c *Cursor) Actions() int { return c.actions }
