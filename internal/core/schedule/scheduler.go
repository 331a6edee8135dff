package schedule

import (
	"cmp"
	"errors"
	"fmt"
	"sync"

	"github.com/zeusync/skirmish/internal/core/battle"
	"github.com/zeusync/skirmish/internal/core/observability/log"
	"github.com/zeusync/skirmish/internal/core/observability/metrics"
	"github.com/zeusync/skirmish/pkg/sequence"
)

// ErrEmptyRoundPool is returned when no combatant is alive to fill a round.
// Deciding whether that ends the battle is left to the caller.
var ErrEmptyRoundPool = errors.New("no living combatants to schedule")

// Turn names the combatant that acts next.
type Turn struct {
	Combatant battle.CombatantID
	Side      battle.Team
	Archetype battle.Archetype
	Round     int
}

// Queue is the acting order of one round.
type Queue struct {
	ids []battle.CombatantID
}

func (q *Queue) Len() int { return len(q.ids) }

func (q *Queue) Empty() bool { return q == nil || len(q.ids) == 0 }

// IDs returns a copy of the remaining order.
func (q *Queue) IDs() []battle.CombatantID {
	if q == nil {
		return nil
	}
	out := make([]battle.CombatantID, len(q.ids))
	copy(out, q.ids)
	return out
}

func (q *Queue) pop() battle.CombatantID {
	id := q.ids[0]
	q.ids = q.ids[1:]
	return id
}

// Scheduler hands out turns round by round. Every living combatant acts once
// per round, fastest first.
type Scheduler struct {
	battle   battle.Context
	logger   log.Log
	recorder metrics.Recorder

	mu    sync.Mutex
	queue *Queue
	round int
}

type Option func(*Scheduler)

func WithLogger(l log.Log) Option {
	return func(s *Scheduler) { s.logger = l }
}

func WithRecorder(r metrics.Recorder) Option {
	return func(s *Scheduler) { s.recorder = r }
}

func New(bc battle.Context, opts ...Option) *Scheduler {
	s := &Scheduler{
		battle:   bc,
		logger:   log.NewNop(),
		recorder: metrics.Nop{},
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With(log.Component("scheduler"))
	return s
}

// BuildRound replaces the current queue with a fresh round: living companions
// then living enemies, each in registration order, stably sorted by speed,
// highest first.
func (s *Scheduler) BuildRound() (*Queue, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buildLocked()
}

func (s *Scheduler) buildLocked() (*Queue, error) {
	ordered := sequence.Chain(
		battle.Snapshots(s.battle, battle.Companions),
		battle.Snapshots(s.battle, battle.Enemies),
	).SortStable(func(a, b battle.Stats) int { return cmp.Compare(b.Speed, a.Speed) })

	ids := sequence.Map(ordered, func(st battle.Stats) battle.CombatantID { return st.ID }).Collect()
	if len(ids) == 0 {
		s.queue = nil
		return nil, ErrEmptyRoundPool
	}

	s.round++
	s.queue = &Queue{ids: ids}
	s.recorder.RoundBuilt(len(ids))
	s.logger.Debug("round built", log.Int("round", s.round), log.Int("size", len(ids)))
	return &Queue{ids: s.queue.IDs()}, nil
}

// NextTurn pops the next combatant that is still alive, building a new round
// whenever the current one is exhausted. Combatants that died or left the
// battle since the round was built are skipped silently.
func (s *Scheduler) NextTurn() (Turn, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for {
		if s.queue.Empty() {
			if _, err := s.buildLocked(); err != nil {
				return Turn{}, err
			}
		}

		id := s.queue.pop()
		st, err := s.battle.Stats(id)
		switch {
		case errors.Is(err, battle.ErrUnknownCombatant):
			s.skip(id, "untracked")
			continue
		case err != nil:
			return Turn{}, fmt.Errorf("next turn: %w", err)
		case !st.Alive():
			s.skip(id, "dead")
			continue
		}

		return Turn{
			Combatant: id,
			Side:      st.Team,
			Archetype: st.Archetype,
			Round:     s.round,
		}, nil
	}
}

func (s *Scheduler) skip(id battle.CombatantID, reason string) {
	s.recorder.StaleSkipped()
	s.logger.Debug("stale turn skipped", log.String("combatant", id.Short()), log.String("reason", reason))
}

// Pending returns the combatants still waiting in the current round.
func (s *Scheduler) Pending() []battle.CombatantID {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.queue.IDs()
}

// Round is the number of rounds built so far.
func (s *Scheduler) Round() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.round
}

// Reset forgets the current round and the round counter.
func (s *Scheduler) Reset() {
	s.mu.Lock()
	s.queue = nil
	s.round = 0
	s.mu.Unlock()
}
