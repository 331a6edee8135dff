package battle

import (
	"errors"

	"github.com/zeusync/skirmish/pkg/sequence"
)

var (
	// ErrUnknownCombatant means the world was asked about a combatant it does
	// not track. Decisions are only requested for tracked combatants, so this
	// is a caller bug and aborts the current decision.
	ErrUnknownCombatant = errors.New("combatant is not tracked by the battle")
	ErrInvalidStats     = errors.New("invalid combatant stats")
	ErrNoTemplate       = errors.New("no stat template for archetype")
)

// Context is everything the decision core reads from or writes to the battle.
type Context interface {
	// Combatants lists every tracked combatant of a team, dead or alive, in
	// registration order.
	Combatants(team Team) []CombatantID
	// Stats returns a snapshot or ErrUnknownCombatant.
	Stats(id CombatantID) (Stats, error)
	// ApplyDamage deals base plus a random amount in [0, variance) and returns
	// what was dealt. Health is not clamped at zero.
	ApplyDamage(source, target CombatantID, base, variance int) (int, error)
	// ApplyHeal restores health up to MaxHealth and returns what was restored.
	ApplyHeal(target CombatantID, amount int) (int, error)
	// ApplyStatus sets a condition for the given number of turns.
	ApplyStatus(target CombatantID, kind StatusKind, turns int) error
	// SpawnEffect asks the renderer for a projectile or visual. Fire and forget.
	SpawnEffect(kind EffectKind, origin, target CombatantID) error
	// Summon adds a new combatant on the owner's team.
	Summon(owner CombatantID, archetype Archetype) (CombatantID, error)
}

// Randomizer is implemented by contexts that own a random source. Policies
// that pick random targets fall back to the first candidate without one.
type Randomizer interface {
	Intn(n int) int
}

// Snapshots iterates the stats of a team's living combatants in registration
// order. Combatants the context no longer tracks are skipped.
func Snapshots(ctx Context, team Team) *sequence.Iterator[Stats] {
	ids := ctx.Combatants(team)
	return sequence.FromSeq(func(yield func(Stats) bool) {
		for _, id := range ids {
			st, err := ctx.Stats(id)
			if err != nil {
				continue
			}
			if !yield(st) {
				return
			}
		}
	}).Filter(Stats.Alive)
}

// Find returns the first living combatant of a team matching fn.
func Find(ctx Context, team Team, fn func(Stats) bool) (Stats, bool) {
	return Snapshots(ctx, team).Find(fn)
}

// Weakest returns the living combatant of a team with the lowest health.
// Ties go to the earliest registered.
func Weakest(ctx Context, team Team) (Stats, bool) {
	return sequence.MinBy(Snapshots(ctx, team), func(st Stats) int { return st.Health })
}
