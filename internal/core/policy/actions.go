package policy

import (
	"fmt"
	"strings"

	"github.com/zeusync/skirmish/internal/core/battle"
	"github.com/zeusync/skirmish/internal/core/bt"
)

// Pick chooses one combatant out of a side.
type Pick uint8

const (
	PickWeakest Pick = iota
	PickFirst
	PickRandom
	PickSelf
	PickArchetype
)

var pickNames = map[Pick]string{
	PickWeakest:   "weakest",
	PickFirst:     "first",
	PickRandom:    "random",
	PickSelf:      "self",
	PickArchetype: "archetype",
}

func (p Pick) String() string { return pickNames[p] }

func (p *Pick) UnmarshalText(b []byte) error {
	s := strings.ToLower(strings.TrimSpace(string(b)))
	for k, n := range pickNames {
		if n == s {
			*p = k
			return nil
		}
	}
	return fmt.Errorf("unknown pick %q", b)
}

// Aim describes the target of an action relative to the actor.
type Aim struct {
	Side      Side             `mapstructure:"side"`
	Pick      Pick             `mapstructure:"pick"`
	Archetype battle.Archetype `mapstructure:"archetype"`
}

func WeakestOf(side Side) Aim { return Aim{Side: side, Pick: PickWeakest} }

func RandomOf(side Side) Aim { return Aim{Side: side, Pick: PickRandom} }

func Member(side Side, a battle.Archetype) Aim {
	return Aim{Side: side, Pick: PickArchetype, Archetype: a}
}

func Self() Aim { return Aim{Pick: PickSelf} }

// resolve returns false when nobody matches; the action then does nothing.
func (a Aim) resolve(t bt.Tick, me battle.Stats) (battle.Stats, bool) {
	if a.Pick == PickSelf {
		return me, true
	}
	team := a.Side.team(me)
	living := battle.Snapshots(t.Battle, team)
	switch a.Pick {
	case PickFirst:
		return living.Find(func(battle.Stats) bool { return true })
	case PickArchetype:
		return living.Find(func(st battle.Stats) bool { return st.Archetype == a.Archetype })
	case PickRandom:
		all := living.Collect()
		if len(all) == 0 {
			return battle.Stats{}, false
		}
		if r, ok := t.Battle.(battle.Randomizer); ok {
			return all[r.Intn(len(all))], true
		}
		return all[0], true
	default:
		return battle.Weakest(t.Battle, team)
	}
}

// Kit turns a Table into effects. A Kit is immutable and may back trees
// shared by concurrent battles.
type Kit struct {
	table *Table
}

func NewKit(t *Table) *Kit {
	if t == nil {
		t = DefaultTable()
	}
	return &Kit{table: t}
}

func (k *Kit) Table() *Table { return k.table }

// Strike launches a damaging effect at the aimed combatant.
func (k *Kit) Strike(kind battle.EffectKind, aim Aim) bt.Effect {
	roll := k.table.Roll(kind)
	return func(t bt.Tick) error {
		me, err := self(t)
		if err != nil {
			return err
		}
		target, ok := aim.resolve(t, me)
		if !ok {
			return nil
		}
		if err := t.Battle.SpawnEffect(kind, me.ID, target.ID); err != nil {
			return err
		}
		_, err = t.Battle.ApplyDamage(me.ID, target.ID, roll.Base, roll.Variance)
		return err
	}
}

var statusEffects = map[battle.StatusKind]battle.EffectKind{
	battle.Taunted:  battle.EffectTaunt,
	battle.Silenced: battle.EffectSilence,
	battle.Shielded: battle.EffectShield,
}

func (k *Kit) duration(kind battle.StatusKind) int {
	switch kind {
	case battle.Taunted:
		return k.table.Durations.Taunt
	case battle.Silenced:
		return k.table.Durations.Silence
	default:
		return k.table.Durations.Shield
	}
}

// Afflict puts a condition on the aimed combatant for the table's duration.
func (k *Kit) Afflict(kind battle.StatusKind, aim Aim) bt.Effect {
	turns := k.duration(kind)
	return func(t bt.Tick) error {
		me, err := self(t)
		if err != nil {
			return err
		}
		target, ok := aim.resolve(t, me)
		if !ok {
			return nil
		}
		if err := t.Battle.SpawnEffect(statusEffects[kind], me.ID, target.ID); err != nil {
			return err
		}
		return t.Battle.ApplyStatus(target.ID, kind, turns)
	}
}

// Heal restores the table's heal amount to the aimed combatant.
func (k *Kit) Heal(aim Aim) bt.Effect {
	amount := k.table.Heal
	return func(t bt.Tick) error {
		me, err := self(t)
		if err != nil {
			return err
		}
		target, ok := aim.resolve(t, me)
		if !ok {
			return nil
		}
		if err := t.Battle.SpawnEffect(battle.EffectHeal, me.ID, target.ID); err != nil {
			return err
		}
		_, err = t.Battle.ApplyHeal(target.ID, amount)
		return err
	}
}

// Summon brings a new combatant of archetype a onto the actor's side.
func (k *Kit) Summon(a battle.Archetype) bt.Effect {
	return func(t bt.Tick) error {
		me, err := self(t)
		if err != nil {
			return err
		}
		id, err := t.Battle.Summon(me.ID, a)
		if err != nil {
			return fmt.Errorf("summon %s: %w", a, err)
		}
		return t.Battle.SpawnEffect(battle.EffectSummon, me.ID, id)
	}
}

// DoNothing passes the turn.
func DoNothing() bt.Effect { return func(bt.Tick) error { return nil } }
