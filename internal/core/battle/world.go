package battle

import (
	"fmt"
	"math/rand"
	"sync"

	"github.com/google/uuid"

	"github.com/zeusync/skirmish/internal/core/observability/log"
)

var (
	_ Context    = (*World)(nil)
	_ Randomizer = (*World)(nil)
)

// EffectSpawner receives effect requests; it stands in for the renderer.
type EffectSpawner func(kind EffectKind, origin, target CombatantID)

// World is an in-memory Context. It is the battle state used by the engine,
// the CLI simulator and tests.
type World struct {
	mu        sync.RWMutex
	rng       *rand.Rand
	order     map[Team][]CombatantID
	stats     map[CombatantID]*Stats
	templates map[Archetype]Stats
	spawner   EffectSpawner
	logger    log.Log
}

type WorldOption func(*World)

// WithSeed makes damage rolls and generated ids reproducible.
func WithSeed(seed int64) WorldOption {
	return func(w *World) {
		if seed == 0 {
			seed = 1
		}
		w.rng = rand.New(rand.NewSource(seed))
	}
}

func WithSpawner(fn EffectSpawner) WorldOption {
	return func(w *World) { w.spawner = fn }
}

func WithLogger(l log.Log) WorldOption {
	return func(w *World) { w.logger = l }
}

// WithTemplate registers the stats a summoned combatant of archetype starts with.
func WithTemplate(a Archetype, st Stats) WorldOption {
	return func(w *World) { w.templates[a] = st }
}

func NewWorld(opts ...WorldOption) *World {
	w := &World{
		rng:       rand.New(rand.NewSource(1)),
		order:     make(map[Team][]CombatantID, 2),
		stats:     make(map[CombatantID]*Stats),
		templates: make(map[Archetype]Stats),
		logger:    log.NewNop(),
	}
	for _, opt := range opts {
		opt(w)
	}
	w.logger = w.logger.With(log.Component("world"))
	return w
}

// Add registers a combatant. Health defaults to MaxHealth when zero; use
// AddAt to register one at exactly zero health.
func (w *World) Add(st Stats) (CombatantID, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if st.Health == 0 {
		st.Health = st.MaxHealth
	}
	return w.addLocked(st)
}

// AddAt registers a combatant with the given health, taken as is. Zero or
// less registers a dead combatant.
func (w *World) AddAt(st Stats, health int) (CombatantID, error) {
	if health > st.MaxHealth {
		return NoCombatant, fmt.Errorf("%w: health %d above max %d", ErrInvalidStats, health, st.MaxHealth)
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	st.Health = health
	return w.addLocked(st)
}

func (w *World) addLocked(st Stats) (CombatantID, error) {
	if st.MaxHealth <= 0 {
		return NoCombatant, fmt.Errorf("%w: max health %d", ErrInvalidStats, st.MaxHealth)
	}
	if st.Team != Companions && st.Team != Enemies {
		return NoCombatant, fmt.Errorf("%w: team %d", ErrInvalidStats, st.Team)
	}
	raw, err := uuid.NewRandomFromReader(w.rng)
	if err != nil {
		return NoCombatant, err
	}
	id := CombatantID(raw)
	st.ID = id
	if st.Name == "" {
		st.Name = st.Archetype.String() + "-" + id.Short()
	}
	w.stats[id] = &st
	w.order[st.Team] = append(w.order[st.Team], id)
	return id, nil
}

// MustAdd is Add for fixtures; it panics on invalid stats.
func (w *World) MustAdd(st Stats) CombatantID {
	id, err := w.Add(st)
	if err != nil {
		panic(err)
	}
	return id
}

// Remove drops a combatant entirely, as when a corpse is cleared away.
func (w *World) Remove(id CombatantID) {
	w.mu.Lock()
	defer w.mu.Unlock()
	st, ok := w.stats[id]
	if !ok {
		return
	}
	delete(w.stats, id)
	ids := w.order[st.Team]
	for i, other := range ids {
		if other == id {
			w.order[st.Team] = append(ids[:i:i], ids[i+1:]...)
			break
		}
	}
}

func (w *World) Combatants(team Team) []CombatantID {
	w.mu.RLock()
	defer w.mu.RUnlock()
	ids := w.order[team]
	out := make([]CombatantID, len(ids))
	copy(out, ids)
	return out
}

func (w *World) Stats(id CombatantID) (Stats, error) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	st, ok := w.stats[id]
	if !ok {
		return Stats{}, fmt.Errorf("%w: %s", ErrUnknownCombatant, id)
	}
	return *st, nil
}

func (w *World) ApplyDamage(source, target CombatantID, base, variance int) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	st, ok := w.stats[target]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrUnknownCombatant, target)
	}
	if base < 0 {
		base = 0
	}
	dealt := base
	if variance > 0 {
		dealt += w.rng.Intn(variance)
	}
	if st.Status.Has(Shielded) {
		dealt /= 2
	}
	st.Health -= dealt
	w.logger.Debug("damage applied",
		log.String("source", source.Short()),
		log.String("target", st.Name),
		log.Int("dealt", dealt),
		log.Int("health", st.Health),
	)
	return dealt, nil
}

func (w *World) ApplyHeal(target CombatantID, amount int) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	st, ok := w.stats[target]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrUnknownCombatant, target)
	}
	if amount <= 0 {
		return 0, nil
	}
	before := st.Health
	st.Health += amount
	if st.Health > st.MaxHealth {
		st.Health = st.MaxHealth
	}
	return st.Health - before, nil
}

func (w *World) ApplyStatus(target CombatantID, kind StatusKind, turns int) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	st, ok := w.stats[target]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownCombatant, target)
	}
	if turns < 0 {
		turns = 0
	}
	st.Status.set(kind, turns)
	return nil
}

func (w *World) SpawnEffect(kind EffectKind, origin, target CombatantID) error {
	w.mu.RLock()
	spawner := w.spawner
	w.mu.RUnlock()
	if spawner != nil {
		spawner(kind, origin, target)
	}
	return nil
}

func (w *World) Summon(owner CombatantID, archetype Archetype) (CombatantID, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	parent, ok := w.stats[owner]
	if !ok {
		return NoCombatant, fmt.Errorf("%w: %s", ErrUnknownCombatant, owner)
	}
	tpl, ok := w.templates[archetype]
	if !ok {
		return NoCombatant, fmt.Errorf("%w: %s", ErrNoTemplate, archetype)
	}
	tpl.Team = parent.Team
	tpl.Archetype = archetype
	tpl.Owner = owner
	tpl.Health = tpl.MaxHealth
	tpl.Name = ""
	tpl.Status = Status{}
	return w.addLocked(tpl)
}

// Intn draws from the world's seeded source.
func (w *World) Intn(n int) int {
	if n <= 0 {
		return 0
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.rng.Intn(n)
}

// EndTurn consumes one turn of every condition on the combatant that just acted.
func (w *World) EndTurn(id CombatantID) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if st, ok := w.stats[id]; ok {
		st.Status.tick()
	}
}

// Alive counts the living combatants of a team.
func (w *World) Alive(team Team) int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	n := 0
	for _, id := range w.order[team] {
		if w.stats[id].Alive() {
			n++
		}
	}
	return n
}

// Snapshot returns every combatant, companions first, in registration order.
func (w *World) Snapshot() []Stats {
	w.mu.RLock()
	defer w.mu.RUnlock()
	out := make([]Stats, 0, len(w.stats))
	for _, team := range []Team{Companions, Enemies} {
		for _, id := range w.order[team] {
			out = append(out, *w.stats[id])
		}
	}
	return out
}
