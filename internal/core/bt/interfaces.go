package bt

import (
	"context"
	"errors"

	"github.com/zeusync/skirmish/internal/core/battle"
)

// Status represents the execution result of processing a node.
type Status int

const (
	StatusSuccess Status = iota
	StatusFailure
	StatusRunning
)

func (s Status) String() string {
	switch s {
	case StatusSuccess:
		return "success"
	case StatusFailure:
		return "failure"
	case StatusRunning:
		return "running"
	default:
		return "invalid"
	}
}

func (s Status) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

var (
	ErrMalformedTree = errors.New("malformed behavior tree")
	// ErrMalformedTreeTimeout is reported when a decision hits the iteration
	// cap without reaching Success or Failure. The turn is treated as a no-op.
	ErrMalformedTreeTimeout = errors.New("decision abandoned at iteration cap")
	ErrTreeBusy             = errors.New("tree already has an open decision")
	ErrDecisionClosed       = errors.New("decision is closed")
)

// Tick is passed to every node while a decision is processed.
type Tick struct {
	Ctx    context.Context
	Battle battle.Context
	Actor  battle.CombatantID

	cursor *Cursor
}

// Self returns the acting combatant's stats.
func (t Tick) Self() (battle.Stats, error) { return t.Battle.Stats(t.Actor) }

// Predicate decides whether a Guard lets execution into its child.
// Predicates must not mutate the battle.
type Predicate func(t Tick) (bool, error)

// Effect is the world mutation performed by an Action.
type Effect func(t Tick) error

// Node is one vertex of a behavior tree. The set of implementations is closed:
// Action, Guard, Sequence, Selector and Task.
//
// Nodes never hold decision state. Everything that changes while a decision
// runs lives in the Cursor carried by the Tick.
type Node interface {
	// Name returns a human-readable label for logs and tree dumps.
	Name() string
	// Children returns the fixed child list; leaves return nil.
	Children() []Node

	base() *baseNode
	init(t Tick)
	process(t Tick) (Status, error)
}
