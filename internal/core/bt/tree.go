package bt

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// MaxDepth bounds tree height. Real policies stay around six levels.
const MaxDepth = 16

// Tree is an immutable policy: a validated root node whose nodes carry stable
// identities. A tree may back any number of sequential decisions.
type Tree struct {
	name  string
	root  Node
	size  int
	depth int
}

// NewTree validates the topology under root and assigns node identities.
// Every node must be fresh: a node already owned by a tree, or reachable twice
// under root, is rejected.
func NewTree(name string, root Node) (*Tree, error) {
	if root == nil {
		return nil, fmt.Errorf("%w: %s: nil root", ErrMalformedTree, name)
	}
	t := &Tree{name: name, root: root}
	seen := make(map[Node]string)
	if err := t.check(root, name, 1, seen); err != nil {
		return nil, err
	}
	// identities are only assigned once the whole topology is known to be valid
	for n, path := range seen {
		n.base().id = xxhash.Sum64String(path)
	}
	t.size = len(seen)
	return t, nil
}

// MustTree is NewTree for statically composed policies.
func MustTree(name string, root Node) *Tree {
	t, err := NewTree(name, root)
	if err != nil {
		panic(err)
	}
	return t
}

func (t *Tree) check(n Node, path string, depth int, seen map[Node]string) error {
	if n == nil {
		return fmt.Errorf("%w: %s: nil node at %s", ErrMalformedTree, t.name, path)
	}
	if depth > MaxDepth {
		return fmt.Errorf("%w: %s: deeper than %d at %s", ErrMalformedTree, t.name, MaxDepth, path)
	}
	if _, dup := seen[n]; dup {
		return fmt.Errorf("%w: %s: node %q reached twice", ErrMalformedTree, t.name, n.Name())
	}
	if n.base().id != 0 {
		return fmt.Errorf("%w: %s: node %q already belongs to a tree", ErrMalformedTree, t.name, n.Name())
	}
	switch v := n.(type) {
	case *Action:
		if v.effect == nil {
			return fmt.Errorf("%w: %s: action %q has no effect", ErrMalformedTree, t.name, v.name)
		}
	case *Guard:
		if v.predicate == nil {
			return fmt.Errorf("%w: %s: guard %q has no predicate", ErrMalformedTree, t.name, v.name)
		}
	case *Task:
		if v.fn == nil {
			return fmt.Errorf("%w: %s: task %q has no body", ErrMalformedTree, t.name, v.name)
		}
	case *Sequence, *Selector:
		if len(n.Children()) == 0 {
			return fmt.Errorf("%w: %s: composite %q has no children", ErrMalformedTree, t.name, n.Name())
		}
	}
	seen[n] = path
	if depth > t.depth {
		t.depth = depth
	}
	for i, ch := range n.Children() {
		if err := t.check(ch, path+"/"+strconv.Itoa(i), depth+1, seen); err != nil {
			return err
		}
	}
	return nil
}

func (t *Tree) Name() string { return t.name }
func (t *Tree) Root() Node   { return t.root }

// Size is the number of nodes.
func (t *Tree) Size() int { return t.size }

// Depth is the number of levels, the root counting as one.
func (t *Tree) Depth() int { return t.depth }

// Walk visits nodes depth-first, pre-order. Returning false prunes the
// subtree below the visited node.
func (t *Tree) Walk(fn func(n Node, depth int) bool) {
	var walk func(n Node, depth int)
	walk = func(n Node, depth int) {
		if !fn(n, depth) {
			return
		}
		for _, ch := range n.Children() {
			walk(ch, depth+1)
		}
	}
	walk(t.root, 0)
}

// String renders an indented outline of the tree.
func (t *Tree) String() string {
	var sb strings.Builder
	sb.WriteString(t.name)
	sb.WriteByte('\n')
	t.Walk(func(n Node, depth int) bool {
		sb.WriteString(strings.Repeat("  ", depth+1))
		sb.WriteString(kindOf(n))
		sb.WriteByte(' ')
		sb.WriteString(n.Name())
		sb.WriteByte('\n')
		return true
	})
	return sb.String()
}

func kindOf(n Node) string {
	switch n.(type) {
	case *Action:
		return "action"
	case *Guard:
		return "guard"
	case *Sequence:
		return "sequence"
	case *Selector:
		return "selector"
	case *Task:
		return "task"
	default:
		return "node"
	}
}
