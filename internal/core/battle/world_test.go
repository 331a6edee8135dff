package battle

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWorld_AddKeepsRegistrationOrder(t *testing.T) {
	w := NewWorld(WithSeed(7))

	a := w.MustAdd(Stats{Team: Companions, Archetype: Mage, Speed: 3, MaxHealth: 100})
	b := w.MustAdd(Stats{Team: Companions, Archetype: Swordsman, Speed: 9, MaxHealth: 100})
	e := w.MustAdd(Stats{Team: Enemies, Archetype: NecroMinion, Speed: 1, MaxHealth: 40})

	assert.Equal(t, []CombatantID{a, b}, w.Combatants(Companions))
	assert.Equal(t, []CombatantID{e}, w.Combatants(Enemies))

	st, err := w.Stats(e)
	require.NoError(t, err)
	assert.Equal(t, 40, st.Health, "health defaults to max health")
	assert.Equal(t, Enemies, st.Team)
	assert.NotEmpty(t, st.Name)
}

func TestWorld_AddRejectsInvalidStats(t *testing.T) {
	w := NewWorld()

	_, err := w.Add(Stats{Team: Companions, MaxHealth: 0})
	assert.ErrorIs(t, err, ErrInvalidStats)

	_, err = w.Add(Stats{Team: Team(9), MaxHealth: 10})
	assert.ErrorIs(t, err, ErrInvalidStats)
}

func TestWorld_AddAtRegistersExactHealth(t *testing.T) {
	w := NewWorld()
	dead, err := w.AddAt(Stats{Team: Enemies, Archetype: Mage, MaxHealth: 50}, 0)
	require.NoError(t, err)
	st, err := w.Stats(dead)
	require.NoError(t, err)
	assert.Equal(t, 0, st.Health)
	assert.False(t, st.Alive())
	assert.Equal(t, 0, w.Alive(Enemies))

	hurt, err := w.AddAt(Stats{Team: Enemies, Archetype: Mage, MaxHealth: 50}, 7)
	require.NoError(t, err)
	st, err = w.Stats(hurt)
	require.NoError(t, err)
	assert.Equal(t, 7, st.Health)

	_, err = w.AddAt(Stats{Team: Enemies, MaxHealth: 50}, 51)
	assert.ErrorIs(t, err, ErrInvalidStats)
}

func TestWorld_SeedMakesIDsReproducible(t *testing.T) {
	w1 := NewWorld(WithSeed(42))
	w2 := NewWorld(WithSeed(42))

	id1 := w1.MustAdd(Stats{Team: Enemies, MaxHealth: 10})
	id2 := w2.MustAdd(Stats{Team: Enemies, MaxHealth: 10})
	assert.Equal(t, id1, id2)
}

func TestWorld_UnknownCombatant(t *testing.T) {
	w := NewWorld()
	ghost := CombatantID{1}

	_, err := w.Stats(ghost)
	assert.ErrorIs(t, err, ErrUnknownCombatant)

	_, err = w.ApplyDamage(NoCombatant, ghost, 10, 0)
	assert.ErrorIs(t, err, ErrUnknownCombatant)

	_, err = w.ApplyHeal(ghost, 10)
	assert.ErrorIs(t, err, ErrUnknownCombatant)

	assert.ErrorIs(t, w.ApplyStatus(ghost, Taunted, 1), ErrUnknownCombatant)

	_, err = w.Summon(ghost, NecroMinion)
	assert.ErrorIs(t, err, ErrUnknownCombatant)
}

func TestWorld_DamageGoesBelowZero(t *testing.T) {
	w := NewWorld(WithSeed(3))
	src := w.MustAdd(Stats{Team: Enemies, MaxHealth: 100})
	dst := w.MustAdd(Stats{Team: Companions, MaxHealth: 100, Health: 5})

	dealt, err := w.ApplyDamage(src, dst, 12, 0)
	require.NoError(t, err)
	assert.Equal(t, 12, dealt)

	st, _ := w.Stats(dst)
	assert.Equal(t, -7, st.Health)
	assert.False(t, st.Alive())
	assert.Equal(t, 0, w.Alive(Companions))
}

func TestWorld_DamageVarianceStaysInRange(t *testing.T) {
	w := NewWorld(WithSeed(11))
	src := w.MustAdd(Stats{Team: Enemies, MaxHealth: 100})
	dst := w.MustAdd(Stats{Team: Companions, MaxHealth: 1_000_000})

	for i := 0; i < 200; i++ {
		dealt, err := w.ApplyDamage(src, dst, 10, 3)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, dealt, 10)
		assert.Less(t, dealt, 13)
	}
}

func TestWorld_ShieldHalvesDamage(t *testing.T) {
	w := NewWorld()
	dst := w.MustAdd(Stats{Team: Companions, MaxHealth: 100})
	require.NoError(t, w.ApplyStatus(dst, Shielded, 2))

	dealt, err := w.ApplyDamage(NoCombatant, dst, 20, 0)
	require.NoError(t, err)
	assert.Equal(t, 10, dealt)
}

func TestWorld_HealClampsAtMax(t *testing.T) {
	w := NewWorld()
	id := w.MustAdd(Stats{Team: Companions, MaxHealth: 100, Health: 90})

	healed, err := w.ApplyHeal(id, 25)
	require.NoError(t, err)
	assert.Equal(t, 10, healed)

	st, _ := w.Stats(id)
	assert.Equal(t, 100, st.Health)
}

func TestWorld_EndTurnTicksStatus(t *testing.T) {
	w := NewWorld()
	id := w.MustAdd(Stats{Team: Enemies, MaxHealth: 100})
	require.NoError(t, w.ApplyStatus(id, Taunted, 2))
	require.NoError(t, w.ApplyStatus(id, Silenced, 1))

	w.EndTurn(id)
	st, _ := w.Stats(id)
	assert.True(t, st.Status.Has(Taunted))
	assert.False(t, st.Status.Has(Silenced))

	w.EndTurn(id)
	st, _ = w.Stats(id)
	assert.False(t, st.Status.Has(Taunted))
	assert.Equal(t, 0, st.Status.Turns(Taunted), "counters never go negative")
}

func TestWorld_SummonJoinsOwnerTeam(t *testing.T) {
	w := NewWorld(WithTemplate(NecroMinion, Stats{Speed: 4, MaxHealth: 30}))
	owner := w.MustAdd(Stats{Team: Enemies, Archetype: NecromancerOne, MaxHealth: 200})

	minion, err := w.Summon(owner, NecroMinion)
	require.NoError(t, err)

	st, err := w.Stats(minion)
	require.NoError(t, err)
	assert.Equal(t, Enemies, st.Team)
	assert.Equal(t, owner, st.Owner)
	assert.Equal(t, 30, st.Health)
	assert.Equal(t, []CombatantID{owner, minion}, w.Combatants(Enemies))

	_, err = w.Summon(owner, Archer)
	assert.ErrorIs(t, err, ErrNoTemplate)
}

func TestWorld_SpawnEffectReachesSpawner(t *testing.T) {
	var got []EffectKind
	w := NewWorld(WithSpawner(func(kind EffectKind, _, _ CombatantID) { got = append(got, kind) }))

	require.NoError(t, w.SpawnEffect(EffectFireball, NoCombatant, NoCombatant))
	require.NoError(t, w.SpawnEffect(EffectHeal, NoCombatant, NoCombatant))
	assert.Equal(t, []EffectKind{EffectFireball, EffectHeal}, got)
}

func TestWorld_RemoveAndHelpers(t *testing.T) {
	w := NewWorld()
	a := w.MustAdd(Stats{Team: Companions, Archetype: Mage, MaxHealth: 100, Health: 30})
	b := w.MustAdd(Stats{Team: Companions, Archetype: Swordsman, MaxHealth: 100, Health: 80})
	c := w.MustAdd(Stats{Team: Companions, Archetype: Archer, MaxHealth: 100, Health: -2})

	assert.Equal(t, 2, Snapshots(w, Companions).Count(), "the dead archer is filtered out")

	weakest, ok := Weakest(w, Companions)
	require.True(t, ok)
	assert.Equal(t, a, weakest.ID, "dead combatants are never the weakest")

	found, ok := Find(w, Companions, func(s Stats) bool { return s.Archetype == Swordsman })
	require.True(t, ok)
	assert.Equal(t, b, found.ID)

	w.Remove(c)
	assert.Equal(t, []CombatantID{a, b}, w.Combatants(Companions))
	assert.Len(t, w.Snapshot(), 2)
}

func TestArchetype_ParseRoundTrip(t *testing.T) {
	for _, a := range Archetypes() {
		got, err := ParseArchetype(a.String())
		require.NoError(t, err)
		assert.Equal(t, a, got)
	}
	_, err := ParseArchetype("dragon")
	assert.Error(t, err)
}
