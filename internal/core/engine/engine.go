package engine

import (
	"context"
	"errors"
	"fmt"

	"github.com/zeusync/skirmish/internal/core/battle"
	"github.com/zeusync/skirmish/internal/core/bt"
	"github.com/zeusync/skirmish/internal/core/events/bus"
	"github.com/zeusync/skirmish/internal/core/observability/log"
	"github.com/zeusync/skirmish/internal/core/observability/metrics"
	"github.com/zeusync/skirmish/internal/core/policy"
	"github.com/zeusync/skirmish/internal/core/schedule"
)

const (
	EventTurnFinished      = "turn.finished"
	EventDecisionAbandoned = "decision.abandoned"
	EventBattleOver        = "battle.over"

	eventSource = "engine"
)

// Battlefield is the battle state the engine owns: the decision context plus
// the bookkeeping that happens between turns.
type Battlefield interface {
	battle.Context
	// EndTurn ticks down the conditions of the combatant that just acted.
	EndTurn(id battle.CombatantID)
	// Alive counts the living combatants of a team.
	Alive(team battle.Team) int
}

var _ Battlefield = (*battle.World)(nil)

// TurnReport describes one played turn.
type TurnReport struct {
	Turn schedule.Turn `json:"turn"`
	// Decision is set when the turn was decided by a tree.
	Decision *bt.Result `json:"decision,omitempty"`
	// Abandoned turns hit the iteration cap and did nothing further.
	Abandoned bool     `json:"abandoned"`
	Changes   []Change `json:"changes,omitempty"`
}

// Outcome is how a battle ended.
type Outcome struct {
	Over      bool        `json:"over"`
	Winner    battle.Team `json:"winner"`
	Draw      bool        `json:"draw"`
	Turns     int         `json:"turns"`
	Rounds    int         `json:"rounds"`
	Abandoned int         `json:"abandoned"`
}

const (
	ResultDraw       = "draw"
	ResultUnfinished = "unfinished"
)

// Result names how the battle ended: the winning team, ResultDraw or
// ResultUnfinished.
func (o Outcome) Result() string {
	switch {
	case !o.Over:
		return ResultUnfinished
	case o.Draw:
		return ResultDraw
	default:
		return o.Winner.String()
	}
}

// Engine runs the battle loop: the scheduler picks who acts, the controller
// or the autopilot acts, then the actor's conditions tick down.
type Engine struct {
	field      Battlefield
	sched      *schedule.Scheduler
	pilot      *AutoPilot
	controller Controller
	bus        bus.EventBus
	logger     log.Log
	recorder   metrics.Recorder

	driver *bt.Driver

	turns     int
	abandoned int
}

type Option func(*Engine)

// WithController hands companion turns to c instead of the autopilot.
func WithController(c Controller) Option {
	return func(e *Engine) { e.controller = c }
}

func WithLogger(l log.Log) Option {
	return func(e *Engine) { e.logger = l }
}

func WithRecorder(r metrics.Recorder) Option {
	return func(e *Engine) { e.recorder = r }
}

func WithBus(b bus.EventBus) Option {
	return func(e *Engine) { e.bus = b }
}

func WithDriver(d *bt.Driver) Option {
	return func(e *Engine) { e.driver = d }
}

func New(field Battlefield, book *policy.Book, opts ...Option) *Engine {
	e := &Engine{
		field:    field,
		logger:   log.NewNop(),
		recorder: metrics.Nop{},
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.bus == nil {
		e.bus = bus.New()
	}
	if e.driver == nil {
		e.driver = bt.NewDriver(bt.WithLogger(e.logger), bt.WithRecorder(e.recorder))
	}
	e.pilot = NewAutoPilot(book, e.driver)
	e.sched = schedule.New(field, schedule.WithLogger(e.logger), schedule.WithRecorder(e.recorder))
	e.logger = e.logger.With(log.Component("engine"))
	return e
}

func (e *Engine) Bus() bus.EventBus              { return e.bus }
func (e *Engine) Scheduler() *schedule.Scheduler { return e.sched }
func (e *Engine) Driver() *bt.Driver             { return e.driver }
func (e *Engine) Turns() int                     { return e.turns }

// Turn plays the next turn. Scheduling errors, including
// schedule.ErrEmptyRoundPool, are returned untouched. A decision that hits the
// iteration cap is not an error: the turn is reported as abandoned.
func (e *Engine) Turn(ctx context.Context) (TurnReport, error) {
	turn, err := e.sched.NextTurn()
	if err != nil {
		return TurnReport{}, err
	}
	report := TurnReport{Turn: turn}
	tr := newTracker(e.field, turn.Combatant)

	if turn.Side == battle.Companions && e.controller != nil {
		err = e.controller.PlayTurn(ctx, turn, tr)
	} else {
		var res bt.Result
		res, err = e.pilot.Decide(ctx, turn, tr)
		if res.Tree != "" {
			report.Decision = &res
		}
	}
	report.Changes = tr.changes

	switch {
	case errors.Is(err, bt.ErrMalformedTreeTimeout):
		report.Abandoned = true
		e.abandoned++
		e.logger.Warn("turn abandoned",
			log.String("actor", turn.Combatant.Short()),
			log.Stringer("archetype", turn.Archetype),
			log.Error(err),
		)
		e.publish(EventDecisionAbandoned, report)
	case err != nil:
		return report, fmt.Errorf("turn of %s %s: %w", turn.Archetype, turn.Combatant.Short(), err)
	}

	e.field.EndTurn(turn.Combatant)
	e.turns++
	e.recorder.TurnTaken(turn.Side.String())
	e.logger.Debug("turn finished",
		log.String("actor", turn.Combatant.Short()),
		log.Stringer("side", turn.Side),
		log.Int("round", turn.Round),
		log.Int("changes", len(report.Changes)),
	)
	e.publish(EventTurnFinished, report)
	return report, nil
}

// Over reports whether the battle has ended. A side with no living
// combatant loses; when neither side has one the battle is a draw.
func (e *Engine) Over() (Outcome, bool) {
	companions, enemies := e.field.Alive(battle.Companions), e.field.Alive(battle.Enemies)
	switch {
	case companions == 0 && enemies == 0:
		return Outcome{Over: true, Draw: true}, true
	case companions == 0:
		return Outcome{Over: true, Winner: battle.Enemies}, true
	case enemies == 0:
		return Outcome{Over: true, Winner: battle.Companions}, true
	default:
		return Outcome{}, false
	}
}

// Run plays turns until one side is wiped out, maxTurns turns have been
// played or ctx is done. maxTurns <= 0 means no limit.
func (e *Engine) Run(ctx context.Context, maxTurns int) (Outcome, error) {
	for maxTurns <= 0 || e.turns < maxTurns {
		if o, over := e.Over(); over {
			return e.finish(o), nil
		}
		if err := ctx.Err(); err != nil {
			return e.outcome(Outcome{}), err
		}
		if _, err := e.Turn(ctx); err != nil {
			if errors.Is(err, schedule.ErrEmptyRoundPool) {
				return e.finish(Outcome{Over: true, Draw: true}), nil
			}
			return e.outcome(Outcome{}), err
		}
	}
	if o, over := e.Over(); over {
		return e.finish(o), nil
	}
	return e.outcome(Outcome{}), nil
}

func (e *Engine) outcome(o Outcome) Outcome {
	o.Turns = e.turns
	o.Rounds = e.sched.Round()
	o.Abandoned = e.abandoned
	return o
}

func (e *Engine) finish(o Outcome) Outcome {
	o = e.outcome(o)
	fields := []log.Field{log.Int("turns", o.Turns), log.Int("rounds", o.Rounds)}
	if o.Draw {
		fields = append(fields, log.Bool("draw", true))
	} else {
		fields = append(fields, log.Stringer("winner", o.Winner))
	}
	e.logger.Info("battle over", fields...)
	e.publish(EventBattleOver, o)
	return o
}

func (e *Engine) publish(typ string, data any) {
	if err := e.bus.Publish(bus.NewEvent(typ, eventSource, data)); err != nil {
		e.logger.Warn("event handler failed", log.String("event", typ), log.Error(err))
	}
}
