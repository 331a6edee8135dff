package bt

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/zeusync/skirmish/internal/core/battle"
	"github.com/zeusync/skirmish/internal/core/observability/log"
	"github.com/zeusync/skirmish/internal/core/observability/metrics"
)

// DefaultMaxIterations bounds the process calls of a single decision.
const DefaultMaxIterations = 100

// Result summarizes a finished decision.
type Result struct {
	Tree       string
	Actor      battle.CombatantID
	Status     Status
	Iterations int
	Actions    int
	// Abandoned is set when the iteration cap was reached; the decision then
	// counts as a turn where nothing happened.
	Abandoned bool
	// Cancelled is set when the context ended the decision early.
	Cancelled bool
	Duration  time.Duration
}

// Driver runs decision trees for acting combatants.
type Driver struct {
	maxIterations int
	logger        log.Log
	recorder      metrics.Recorder
	journal       *Journal
	clock         func() time.Time

	mu   sync.Mutex
	open map[*Tree]*Decision
}

type DriverOption func(*Driver)

func WithMaxIterations(n int) DriverOption {
	return func(d *Driver) {
		if n > 0 {
			d.maxIterations = n
		}
	}
}

func WithLogger(l log.Log) DriverOption {
	return func(d *Driver) { d.logger = l }
}

func WithRecorder(r metrics.Recorder) DriverOption {
	return func(d *Driver) { d.recorder = r }
}

func WithJournal(j *Journal) DriverOption {
	return func(d *Driver) { d.journal = j }
}

func WithClock(fn func() time.Time) DriverOption {
	return func(d *Driver) { d.clock = fn }
}

func NewDriver(opts ...DriverOption) *Driver {
	d := &Driver{
		maxIterations: DefaultMaxIterations,
		logger:        log.NewNop(),
		recorder:      metrics.Nop{},
		clock:         time.Now,
		open:          make(map[*Tree]*Decision),
	}
	for _, opt := range opts {
		opt(d)
	}
	d.logger = d.logger.With(log.Component("driver"))
	return d
}

func (d *Driver) MaxIterations() int { return d.maxIterations }

// Journal returns the decision journal, nil when none was configured.
func (d *Driver) Journal() *Journal { return d.journal }

// Begin initializes tree's root against a fresh cursor and returns the open
// decision. ctx is what init hooks see; Step takes its own. The caller
// advances the decision with Step and must Close it. A tree can only have one
// open decision per driver.
func (d *Driver) Begin(ctx context.Context, tree *Tree, actor battle.CombatantID, bc battle.Context) (*Decision, error) {
	if tree == nil {
		return nil, fmt.Errorf("%w: nil tree", ErrMalformedTree)
	}
	d.mu.Lock()
	if _, busy := d.open[tree]; busy {
		d.mu.Unlock()
		return nil, fmt.Errorf("%w: %s", ErrTreeBusy, tree.Name())
	}
	dec := &Decision{
		driver:  d,
		tree:    tree,
		cursor:  cursors.Get(),
		status:  StatusRunning,
		started: d.clock(),
	}
	d.open[tree] = dec
	d.mu.Unlock()

	dec.tick = Tick{Ctx: ctx, Battle: bc, Actor: actor, cursor: dec.cursor}
	tree.root.init(dec.tick)
	d.logger.Debug("decision started",
		log.String("tree", tree.Name()),
		log.String("actor", actor.Short()),
	)
	return dec, nil
}

// Decide runs a whole decision: Begin, then Step until the tree reaches a
// terminal state or the iteration cap. At the cap the decision is abandoned
// and ErrMalformedTreeTimeout is returned alongside the result.
func (d *Driver) Decide(ctx context.Context, tree *Tree, actor battle.CombatantID, bc battle.Context) (Result, error) {
	dec, err := d.Begin(ctx, tree, actor, bc)
	if err != nil {
		return Result{}, err
	}
	for {
		st, err := dec.Step(ctx)
		if err != nil {
			return dec.Close(), err
		}
		if st != StatusRunning {
			return dec.Close(), nil
		}
	}
}

func (d *Driver) release(dec *Decision) {
	d.mu.Lock()
	if d.open[dec.tree] == dec {
		delete(d.open, dec.tree)
	}
	d.mu.Unlock()
}

// Decision is an in-flight evaluation of one tree for one combatant. Between
// Step calls the caller is free to suspend, for example until an animation
// finishes; all progress lives in the decision's cursor.
type Decision struct {
	driver    *Driver
	tree      *Tree
	cursor    *Cursor
	tick      Tick
	status    Status
	abandoned bool
	cancelled bool
	closed    bool
	started   time.Time
	result    Result
}

// Step performs exactly one process call on the root. Once the decision is
// terminal it keeps returning the terminal status without touching the tree.
func (dec *Decision) Step(ctx context.Context) (Status, error) {
	if dec.closed {
		return dec.status, ErrDecisionClosed
	}
	if dec.status != StatusRunning || dec.abandoned {
		return dec.status, nil
	}
	if err := ctx.Err(); err != nil {
		dec.cancelled = true
		return dec.status, err
	}
	if dec.cursor.calls >= dec.driver.maxIterations {
		dec.abandoned = true
		dec.driver.logger.Warn("decision abandoned at iteration cap",
			log.String("tree", dec.tree.Name()),
			log.String("actor", dec.tick.Actor.Short()),
			log.Int("iterations", dec.cursor.calls),
			log.Int("actions", dec.cursor.actions),
		)
		return dec.status, fmt.Errorf("%w: %s after %d iterations", ErrMalformedTreeTimeout, dec.tree.Name(), dec.cursor.calls)
	}

	tick := dec.tick
	tick.Ctx = ctx
	dec.cursor.calls++
	st, err := dec.tree.root.process(tick)
	dec.status = st
	if err != nil {
		dec.status = StatusFailure
		return dec.status, fmt.Errorf("decision %s for %s: %w", dec.tree.Name(), dec.tick.Actor.Short(), err)
	}
	return st, nil
}

func (dec *Decision) Status() Status  { return dec.status }
func (dec *Decision) Tree() *Tree     { return dec.tree }
func (dec *Decision) Abandoned() bool { return dec.abandoned }

func (dec *Decision) Iterations() int {
	if dec.closed {
		return dec.result.Iterations
	}
	return dec.cursor.calls
}

// Cursor exposes the execution state. It is nil once the decision is closed.
func (dec *Decision) Cursor() *Cursor { return dec.cursor }

// Close ends the decision, releases the tree and reports the result. Closing
// a decision that is still running counts as abandoning it, unless its
// context was cancelled. Close is idempotent.
func (dec *Decision) Close() Result {
	if dec.closed {
		return dec.result
	}
	dec.closed = true
	if dec.status == StatusRunning && !dec.cancelled {
		dec.abandoned = true
	}
	d := dec.driver
	now := d.clock()
	dec.result = Result{
		Tree:       dec.tree.Name(),
		Actor:      dec.tick.Actor,
		Status:     dec.status,
		Iterations: dec.cursor.calls,
		Actions:    dec.cursor.actions,
		Abandoned:  dec.abandoned,
		Cancelled:  dec.cancelled,
		Duration:   now.Sub(dec.started),
	}
	d.release(dec)
	cursors.Put(dec.cursor)
	dec.cursor, dec.tick.cursor = nil, nil

	d.recorder.DecisionFinished(dec.result.Tree, dec.result.Status.String(), dec.result.Iterations, dec.result.Actions, dec.result.Abandoned)
	if d.journal != nil {
		d.journal.Append(Record{
			Tree:       dec.result.Tree,
			Actor:      dec.result.Actor,
			Status:     dec.result.Status,
			Iterations: dec.result.Iterations,
			Actions:    dec.result.Actions,
			Abandoned:  dec.result.Abandoned,
			Cancelled:  dec.result.Cancelled,
			Duration:   dec.result.Duration,
			Timestamp:  now,
		})
	}
	d.logger.Debug("decision finished",
		log.String("tree", dec.result.Tree),
		log.String("actor", dec.result.Actor.Short()),
		log.Stringer("status", dec.result.Status),
		log.Int("iterations", dec.result.Iterations),
		log.Int("actions", dec.result.Actions),
		log.Bool("abandoned", dec.result.Abandoned),
		log.Bool("cancelled", dec.result.Cancelled),
	)
	return dec.result
}
