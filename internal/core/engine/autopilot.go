package engine

import (
	"context"

	"github.com/zeusync/skirmish/internal/core/battle"
	"github.com/zeusync/skirmish/internal/core/bt"
	"github.com/zeusync/skirmish/internal/core/policy"
	"github.com/zeusync/skirmish/internal/core/schedule"
)

// Controller plays the turns of player-controlled combatants. It acts on the
// battle through bc and returns once the turn is over.
type Controller interface {
	PlayTurn(ctx context.Context, turn schedule.Turn, bc battle.Context) error
}

// ControllerFunc adapts a function to Controller.
type ControllerFunc func(ctx context.Context, turn schedule.Turn, bc battle.Context) error

func (f ControllerFunc) PlayTurn(ctx context.Context, turn schedule.Turn, bc battle.Context) error {
	return f(ctx, turn, bc)
}

// AutoPilot decides turns with the archetype trees of a policy book.
type AutoPilot struct {
	book   *policy.Book
	driver *bt.Driver
}

var _ Controller = (*AutoPilot)(nil)

func NewAutoPilot(book *policy.Book, driver *bt.Driver) *AutoPilot {
	if driver == nil {
		driver = bt.NewDriver()
	}
	return &AutoPilot{book: book, driver: driver}
}

// Decide runs the tree of the acting combatant's archetype.
func (a *AutoPilot) Decide(ctx context.Context, turn schedule.Turn, bc battle.Context) (bt.Result, error) {
	tree, err := a.book.Tree(turn.Archetype)
	if err != nil {
		return bt.Result{}, err
	}
	return a.driver.Decide(ctx, tree, turn.Combatant, bc)
}

func (a *AutoPilot) PlayTurn(ctx context.Context, turn schedule.Turn, bc battle.Context) error {
	_, err := a.Decide(ctx, turn, bc)
	return err
}

func (a *AutoPilot) Driver() *bt.Driver { return a.driver }
