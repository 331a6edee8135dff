package engine

import (
	"github.com/zeusync/skirmish/internal/core/battle"
)

// ChangeKind classifies what a turn did to the battle.
type ChangeKind uint8

const (
	ChangeDamage ChangeKind = iota + 1
	ChangeHeal
	ChangeStatus
	ChangeSummon
	ChangeEffect
)

func (k ChangeKind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

func (k ChangeKind) String() string {
	switch k {
	case ChangeDamage:
		return "damage"
	case ChangeHeal:
		return "heal"
	case ChangeStatus:
		return "status"
	case ChangeSummon:
		return "summon"
	case ChangeEffect:
		return "effect"
	default:
		return "unknown"
	}
}

// Change is one mutation performed during a turn. Status is only meaningful
// for ChangeStatus and Effect for ChangeEffect.
type Change struct {
	Kind   ChangeKind         `json:"kind"`
	Source battle.CombatantID `json:"source"`
	Target battle.CombatantID `json:"target"`
	Amount int                `json:"amount,omitempty"`
	Status battle.StatusKind  `json:"status"`
	Effect battle.EffectKind  `json:"effect,omitempty"`
}

// tracker wraps the battle for the length of one turn and records every
// mutation that goes through it.
type tracker struct {
	battle.Context
	actor   battle.CombatantID
	changes []Change
}

var (
	_ battle.Context    = (*tracker)(nil)
	_ battle.Randomizer = (*tracker)(nil)
)

func newTracker(bc battle.Context, actor battle.CombatantID) *tracker {
	return &tracker{Context: bc, actor: actor}
}

func (t *tracker) ApplyDamage(source, target battle.CombatantID, base, variance int) (int, error) {
	dealt, err := t.Context.ApplyDamage(source, target, base, variance)
	if err == nil {
		t.changes = append(t.changes, Change{Kind: ChangeDamage, Source: source, Target: target, Amount: dealt})
	}
	return dealt, err
}

func (t *tracker) ApplyHeal(target battle.CombatantID, amount int) (int, error) {
	healed, err := t.Context.ApplyHeal(target, amount)
	if err == nil {
		t.changes = append(t.changes, Change{Kind: ChangeHeal, Source: t.actor, Target: target, Amount: healed})
	}
	return healed, err
}

func (t *tracker) ApplyStatus(target battle.CombatantID, kind battle.StatusKind, turns int) error {
	err := t.Context.ApplyStatus(target, kind, turns)
	if err == nil {
		t.changes = append(t.changes, Change{Kind: ChangeStatus, Source: t.actor, Target: target, Amount: turns, Status: kind})
	}
	return err
}

func (t *tracker) SpawnEffect(kind battle.EffectKind, origin, target battle.CombatantID) error {
	err := t.Context.SpawnEffect(kind, origin, target)
	if err == nil {
		t.changes = append(t.changes, Change{Kind: ChangeEffect, Source: origin, Target: target, Effect: kind})
	}
	return err
}

func (t *tracker) Summon(owner battle.CombatantID, archetype battle.Archetype) (battle.CombatantID, error) {
	id, err := t.Context.Summon(owner, archetype)
	if err == nil {
		t.changes = append(t.changes, Change{Kind: ChangeSummon, Source: owner, Target: id})
	}
	return id, err
}

func (t *tracker) Intn(n int) int {
	if r, ok := t.Context.(battle.Randomizer); ok {
		return r.Intn(n)
	}
	return 0
}
