package bt

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/skirmish/internal/core/battle"
)

type trace struct {
	events []string
}

func (tr *trace) action(name string) *Action {
	return NewAction(name, func(Tick) error {
		tr.events = append(tr.events, name)
		return nil
	})
}

func (tr *trace) task(name string, statuses ...Status) *Task {
	i := 0
	return NewTask(name, func(Tick) (Status, error) {
		tr.events = append(tr.events, "process:"+name)
		st := statuses[len(statuses)-1]
		if i < len(statuses) {
			st = statuses[i]
		}
		i++
		return st, nil
	}).OnInit(func(Tick) {
		i = 0
		tr.events = append(tr.events, "init:"+name)
	})
}

func always(v bool) Predicate {
	return func(Tick) (bool, error) { return v, nil }
}

type recorded struct {
	tree       string
	status     string
	iterations int
	actions    int
	abandoned  bool
}

type fakeRecorder struct {
	decisions []recorded
}

func (f *fakeRecorder) DecisionFinished(tree, status string, iterations, actions int, abandoned bool) {
	f.decisions = append(f.decisions, recorded{tree, status, iterations, actions, abandoned})
}
func (f *fakeRecorder) TurnTaken(string) {}
func (f *fakeRecorder) RoundBuilt(int)   {}
func (f *fakeRecorder) StaleSkipped()    {}

func newActor(t *testing.T) (*battle.World, battle.CombatantID) {
	t.Helper()
	w := battle.NewWorld(battle.WithSeed(1))
	id := w.MustAdd(battle.Stats{Team: battle.Enemies, Archetype: battle.Mage, Speed: 5, MaxHealth: 100})
	return w, id
}

func TestDecide_SequenceRunsActionsInOrder(t *testing.T) {
	tr := &trace{}
	tree := MustTree("seq", NewSequence("root", tr.action("first"), tr.action("second")))
	w, actor := newActor(t)

	res, err := NewDriver().Decide(context.Background(), tree, actor, w)
	require.NoError(t, err)

	assert.Equal(t, StatusSuccess, res.Status)
	assert.Equal(t, []string{"first", "second"}, tr.events)
	assert.Equal(t, 2, res.Iterations, "one child per process call")
	assert.Equal(t, 2, res.Actions)
	assert.False(t, res.Abandoned)
}

func TestDecide_FalseGuardSucceedsWithoutChild(t *testing.T) {
	tr := &trace{}
	tree := MustTree("guard", NewGuard("never", always(false), tr.action("fire")))
	w, actor := newActor(t)

	res, err := NewDriver().Decide(context.Background(), tree, actor, w)
	require.NoError(t, err)

	assert.Equal(t, StatusSuccess, res.Status)
	assert.Empty(t, tr.events)
	assert.Equal(t, 0, res.Actions)
	assert.Equal(t, 1, res.Iterations)
}

func TestDecide_SequenceStopsAtFirstFailure(t *testing.T) {
	tr := &trace{}
	tree := MustTree("fail", NewSequence("root",
		tr.task("broken", StatusFailure),
		tr.task("after", StatusSuccess),
	))
	w, actor := newActor(t)

	res, err := NewDriver().Decide(context.Background(), tree, actor, w)
	require.NoError(t, err)

	assert.Equal(t, StatusFailure, res.Status)
	assert.Equal(t, []string{"init:broken", "process:broken"}, tr.events, "the second child is never initialized or processed")
}

func TestDecide_SelectorFallsThroughFailures(t *testing.T) {
	tr := &trace{}
	tree := MustTree("sel", NewSelector("root",
		tr.task("a", StatusFailure),
		tr.task("b", StatusSuccess),
		tr.task("c", StatusSuccess),
	))
	w, actor := newActor(t)

	res, err := NewDriver().Decide(context.Background(), tree, actor, w)
	require.NoError(t, err)

	assert.Equal(t, StatusSuccess, res.Status)
	assert.Equal(t, 2, res.Iterations)
	assert.Equal(t, []string{"init:a", "process:a", "init:b", "process:b"}, tr.events)
}

func TestDecide_SelectorFailsWhenEveryChildFails(t *testing.T) {
	tr := &trace{}
	tree := MustTree("sel", NewSelector("root", tr.task("a", StatusFailure), tr.task("b", StatusFailure)))
	w, actor := newActor(t)

	res, err := NewDriver().Decide(context.Background(), tree, actor, w)
	require.NoError(t, err)
	assert.Equal(t, StatusFailure, res.Status)
	assert.Equal(t, 2, res.Iterations)
}

func TestDecide_GuardedSequenceTakesTwoCalls(t *testing.T) {
	tr := &trace{}
	tree := MustTree("policy", NewSequence("root",
		NewGuard("yes", always(true), tr.action("attack")),
		NewGuard("no", always(false), tr.action("heal")),
	))
	w, actor := newActor(t)

	res, err := NewDriver().Decide(context.Background(), tree, actor, w)
	require.NoError(t, err)

	assert.Equal(t, StatusSuccess, res.Status)
	assert.Equal(t, 2, res.Iterations)
	assert.Equal(t, 1, res.Actions)
	assert.Equal(t, []string{"attack"}, tr.events)
}

func TestDecide_IterationCapAbandonsDecision(t *testing.T) {
	tr := &trace{}
	tree := MustTree("spin", NewSequence("root", tr.task("forever", StatusRunning), tr.action("unreachable")))
	w, actor := newActor(t)
	rec := &fakeRecorder{}
	journal := NewJournal(4)

	d := NewDriver(WithMaxIterations(5), WithRecorder(rec), WithJournal(journal))
	res, err := d.Decide(context.Background(), tree, actor, w)

	require.ErrorIs(t, err, ErrMalformedTreeTimeout)
	assert.True(t, res.Abandoned)
	assert.Equal(t, 5, res.Iterations)
	assert.Equal(t, 0, res.Actions)
	assert.Equal(t, StatusRunning, res.Status)
	assert.NotContains(t, tr.events, "unreachable")

	require.Len(t, rec.decisions, 1)
	assert.Equal(t, recorded{"spin", "running", 5, 0, true}, rec.decisions[0])
	require.Equal(t, 1, journal.Len())
	assert.True(t, journal.Records()[0].Abandoned)
}

func TestDecide_DefaultCap(t *testing.T) {
	tree := MustTree("spin", NewTask("forever", func(Tick) (Status, error) { return StatusRunning, nil }))
	w, actor := newActor(t)

	res, err := NewDriver().Decide(context.Background(), tree, actor, w)
	require.ErrorIs(t, err, ErrMalformedTreeTimeout)
	assert.Equal(t, DefaultMaxIterations, res.Iterations)
}

func TestDecision_StepResumesRunningChild(t *testing.T) {
	tr := &trace{}
	seq := NewSequence("root", tr.task("wait", StatusRunning, StatusRunning, StatusSuccess), tr.action("after"))
	tree := MustTree("resume", seq)
	w, actor := newActor(t)

	dec, err := NewDriver().Begin(context.Background(), tree, actor, w)
	require.NoError(t, err)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		st, err := dec.Step(ctx)
		require.NoError(t, err)
		assert.Equal(t, StatusRunning, st)
		idx, ok := dec.Cursor().Index(seq)
		require.True(t, ok)
		assert.Equal(t, 0, idx, "the running child stays active")
	}

	st, err := dec.Step(ctx)
	require.NoError(t, err)
	assert.Equal(t, StatusRunning, st)
	idx, _ := dec.Cursor().Index(seq)
	assert.Equal(t, 1, idx)

	st, err = dec.Step(ctx)
	require.NoError(t, err)
	assert.Equal(t, StatusSuccess, st)

	// terminal decisions do not touch the tree again
	st, err = dec.Step(ctx)
	require.NoError(t, err)
	assert.Equal(t, StatusSuccess, st)

	res := dec.Close()
	assert.Equal(t, 4, res.Iterations)
	assert.Equal(t, []string{"init:wait", "process:wait", "process:wait", "process:wait", "after"}, tr.events)

	_, err = dec.Step(ctx)
	assert.ErrorIs(t, err, ErrDecisionClosed)
	assert.Equal(t, res, dec.Close(), "close is idempotent")
}

func TestDecision_GuardVerdictHoldsWhileChildRuns(t *testing.T) {
	calls := 0
	pred := func(Tick) (bool, error) {
		calls++
		return calls == 1, nil
	}
	tr := &trace{}
	tree := MustTree("cached", NewGuard("once", pred, tr.task("work", StatusRunning, StatusSuccess)))
	w, actor := newActor(t)

	res, err := NewDriver().Decide(context.Background(), tree, actor, w)
	require.NoError(t, err)
	assert.Equal(t, StatusSuccess, res.Status)
	assert.Equal(t, 1, calls)
	assert.Equal(t, []string{"init:work", "process:work", "process:work"}, tr.events)
}

func TestDriver_TreeBusyUntilClosed(t *testing.T) {
	tree := MustTree("busy", NewTask("wait", func(Tick) (Status, error) { return StatusRunning, nil }))
	w, actor := newActor(t)
	d := NewDriver()

	dec, err := d.Begin(context.Background(), tree, actor, w)
	require.NoError(t, err)

	_, err = d.Begin(context.Background(), tree, actor, w)
	assert.ErrorIs(t, err, ErrTreeBusy)

	res := dec.Close()
	assert.True(t, res.Abandoned, "closing a running decision abandons it")

	dec, err = d.Begin(context.Background(), tree, actor, w)
	require.NoError(t, err)
	dec.Close()
}

func TestDriver_IndependentTreesInterleave(t *testing.T) {
	run := func(Tick) (Status, error) { return StatusRunning, nil }
	a := MustTree("a", NewTask("wait", run))
	b := MustTree("b", NewTask("wait", run))
	w, actor := newActor(t)
	d := NewDriver()

	da, err := d.Begin(context.Background(), a, actor, w)
	require.NoError(t, err)
	db, err := d.Begin(context.Background(), b, actor, w)
	require.NoError(t, err)

	_, err = da.Step(context.Background())
	require.NoError(t, err)
	_, err = db.Step(context.Background())
	require.NoError(t, err)
	da.Close()
	db.Close()
}

func TestDecide_ActionErrorAbortsDecision(t *testing.T) {
	boom := errors.New("boom")
	tr := &trace{}
	tree := MustTree("err", NewSequence("root",
		NewAction("explode", func(Tick) error { return boom }),
		tr.action("after"),
	))
	w, actor := newActor(t)

	res, err := NewDriver().Decide(context.Background(), tree, actor, w)
	require.ErrorIs(t, err, boom)
	assert.Equal(t, StatusFailure, res.Status)
	assert.Equal(t, 0, res.Actions)
	assert.Empty(t, tr.events)
}

func TestDecide_PredicateErrorAbortsDecision(t *testing.T) {
	boom := errors.New("no stats")
	tree := MustTree("err", NewGuard("bad", func(Tick) (bool, error) { return false, boom }, NewAction("x", func(Tick) error { return nil })))
	w, actor := newActor(t)

	_, err := NewDriver().Decide(context.Background(), tree, actor, w)
	assert.ErrorIs(t, err, boom)
}

func TestDecide_CancelledContext(t *testing.T) {
	tr := &trace{}
	tree := MustTree("ctx", tr.action("fire"))
	w, actor := newActor(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	rec := &fakeRecorder{}
	journal := NewJournal(2)

	res, err := NewDriver(WithRecorder(rec), WithJournal(journal)).Decide(ctx, tree, actor, w)
	assert.ErrorIs(t, err, context.Canceled)
	assert.NotErrorIs(t, err, ErrMalformedTreeTimeout)
	assert.Empty(t, tr.events)
	assert.True(t, res.Cancelled)
	assert.False(t, res.Abandoned, "cancellation is not a timeout")

	require.Len(t, rec.decisions, 1)
	assert.False(t, rec.decisions[0].abandoned)
	require.Equal(t, 1, journal.Len())
	assert.True(t, journal.Records()[0].Cancelled)
	assert.False(t, journal.Records()[0].Abandoned)
}

func TestBegin_InitHooksSeeContext(t *testing.T) {
	type key struct{}
	ctx := context.WithValue(context.Background(), key{}, "battle-7")
	var seen any
	task := NewTask("wait", func(Tick) (Status, error) { return StatusSuccess, nil }).OnInit(func(tk Tick) {
		seen = tk.Ctx.Value(key{})
	})
	w, actor := newActor(t)

	dec, err := NewDriver().Begin(ctx, MustTree("init", task), actor, w)
	require.NoError(t, err)
	defer dec.Close()
	assert.Equal(t, "battle-7", seen)
}

func TestDecide_ActionsSeeActorAndBattle(t *testing.T) {
	w, actor := newActor(t)
	target := w.MustAdd(battle.Stats{Team: battle.Companions, Archetype: battle.Swordsman, MaxHealth: 50})

	tree := MustTree("hit", NewAction("hit", func(tk Tick) error {
		self, err := tk.Self()
		if err != nil {
			return err
		}
		_, err = tk.Battle.ApplyDamage(self.ID, target, 20, 0)
		return err
	}))

	_, err := NewDriver().Decide(context.Background(), tree, actor, w)
	require.NoError(t, err)

	st, err := w.Stats(target)
	require.NoError(t, err)
	assert.Equal(t, 30, st.Health)
}

func TestDecide_ResultDurationUsesClock(t *testing.T) {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	ticks := 0
	clock := func() time.Time {
		ticks++
		return base.Add(time.Duration(ticks) * time.Millisecond)
	}
	tree := MustTree("clock", NewAction("noop", func(Tick) error { return nil }))
	w, actor := newActor(t)

	res, err := NewDriver(WithClock(clock)).Decide(context.Background(), tree, actor, w)
	require.NoError(t, err)
	assert.Equal(t, time.Millisecond, res.Duration)
}

func TestDecision_CursorIsReleasedOnClose(t *testing.T) {
	tr := &trace{}
	seq := NewSequence("root", tr.action("a"), tr.action("b"))
	tree := MustTree("release", seq)
	w, actor := newActor(t)
	d := NewDriver()

	dec, err := d.Begin(context.Background(), tree, actor, w)
	require.NoError(t, err)
	_, err = dec.Step(context.Background())
	require.NoError(t, err)
	require.NotNil(t, dec.Cursor())

	res := dec.Close()
	assert.Nil(t, dec.Cursor())
	assert.Equal(t, res.Iterations, dec.Iterations())
	assert.True(t, res.Abandoned)

	// the next decision starts from a clean cursor
	next, err := d.Begin(context.Background(), tree, actor, w)
	require.NoError(t, err)
	assert.Equal(t, 0, next.Iterations())
	assert.Equal(t, 0, next.Cursor().Actions())
	_, ok := next.Cursor().Index(seq)
	assert.True(t, ok, "init records the first child")
	idx, _ := next.Cursor().Index(seq)
	assert.Equal(t, 0, idx)
	next.Close()
}
