package policy

import (
	"errors"
	"fmt"
	"slices"

	"github.com/zeusync/skirmish/internal/core/battle"
	"github.com/zeusync/skirmish/internal/core/bt"
)

var (
	ErrUnknownArchetype = errors.New("no policy for archetype")
	ErrUnknownNode      = errors.New("unknown node")
	ErrUnknownFactory   = errors.New("unknown node factory")
)

// Book maps every archetype to its decision tree. Trees are built once and
// shared read-only by every battle that uses the book.
type Book struct {
	kit   *Kit
	trees map[battle.Archetype]*bt.Tree
}

type BookOption func(*bookBuilder) error

type bookBuilder struct {
	kit       *Kit
	overrides map[battle.Archetype]bt.Node
	configs   map[battle.Archetype]*Config
	registry  *Registry
}

// WithTree replaces the built-in policy of an archetype.
func WithTree(a battle.Archetype, root bt.Node) BookOption {
	return func(b *bookBuilder) error {
		b.overrides[a] = root
		return nil
	}
}

// WithConfig replaces the built-in policy of an archetype with a tree
// described by cfg and built through the book's registry.
func WithConfig(a battle.Archetype, cfg *Config) BookOption {
	return func(b *bookBuilder) error {
		if cfg == nil {
			return fmt.Errorf("%w: nil config for %s", ErrUnknownNode, a)
		}
		b.configs[a] = cfg
		return nil
	}
}

// WithRegistry sets the registry configs are built with. The default one
// holds the built-in predicates and actions of the book's kit.
func WithRegistry(r *Registry) BookOption {
	return func(b *bookBuilder) error {
		b.registry = r
		return nil
	}
}

// NewBook builds the tree of every archetype.
func NewBook(kit *Kit, opts ...BookOption) (*Book, error) {
	if kit == nil {
		kit = NewKit(nil)
	}
	b := &bookBuilder{
		kit:       kit,
		overrides: make(map[battle.Archetype]bt.Node),
		configs:   make(map[battle.Archetype]*Config),
	}
	for _, opt := range opts {
		if err := opt(b); err != nil {
			return nil, err
		}
	}
	if b.registry == nil {
		b.registry = NewRegistry(kit)
	}

	book := &Book{kit: kit, trees: make(map[battle.Archetype]*bt.Tree)}
	for _, a := range battle.Archetypes() {
		var (
			root bt.Node
			err  error
		)
		if cfg, ok := b.configs[a]; ok {
			root, err = cfg.Build(b.registry)
			if err != nil {
				return nil, fmt.Errorf("policy %s: %w", a, err)
			}
		} else if n, ok := b.overrides[a]; ok {
			root = n
		} else {
			root, _ = kit.Builtin(a)
		}
		tree, err := bt.NewTree(a.String(), root)
		if err != nil {
			return nil, fmt.Errorf("policy %s: %w", a, err)
		}
		book.trees[a] = tree
	}
	return book, nil
}

// MustBook is NewBook for the built-in policies.
func MustBook(kit *Kit, opts ...BookOption) *Book {
	b, err := NewBook(kit, opts...)
	if err != nil {
		panic(err)
	}
	return b
}

func (b *Book) Kit() *Kit { return b.kit }

// Tree returns the policy of archetype a.
func (b *Book) Tree(a battle.Archetype) (*bt.Tree, error) {
	t, ok := b.trees[a]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownArchetype, a)
	}
	return t, nil
}

// Archetypes lists the archetypes the book has a tree for, in declaration order.
func (b *Book) Archetypes() []battle.Archetype {
	out := make([]battle.Archetype, 0, len(b.trees))
	for a := range b.trees {
		out = append(out, a)
	}
	slices.Sort(out)
	return out
}
