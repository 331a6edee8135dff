package policy

import (
	"fmt"
	"strings"

	"github.com/zeusync/skirmish/internal/core/battle"
	"github.com/zeusync/skirmish/internal/core/bt"
)

// Side is a team seen from the acting combatant.
type Side uint8

const (
	Allies Side = iota
	Opponents
)

func (s Side) String() string {
	if s == Opponents {
		return "opponents"
	}
	return "allies"
}

func (s *Side) UnmarshalText(b []byte) error {
	switch strings.ToLower(strings.TrimSpace(string(b))) {
	case "allies", "ally", "own":
		*s = Allies
	case "opponents", "opponent", "enemy", "enemies":
		*s = Opponents
	default:
		return fmt.Errorf("unknown side %q", b)
	}
	return nil
}

// team resolves a side for the acting combatant.
func (s Side) team(me battle.Stats) battle.Team {
	if s == Opponents {
		return me.Team.Opponent()
	}
	return me.Team
}

func self(t bt.Tick) (battle.Stats, error) {
	st, err := t.Self()
	if err != nil {
		return battle.Stats{}, fmt.Errorf("acting combatant: %w", err)
	}
	return st, nil
}

// Not inverts a predicate.
func Not(p bt.Predicate) bt.Predicate {
	return func(t bt.Tick) (bool, error) {
		ok, err := p(t)
		return !ok, err
	}
}

// SideHas holds when a living member of archetype a fights on side.
func SideHas(side Side, a battle.Archetype) bt.Predicate {
	return func(t bt.Tick) (bool, error) {
		me, err := self(t)
		if err != nil {
			return false, err
		}
		_, ok := battle.Find(t.Battle, side.team(me), func(st battle.Stats) bool { return st.Archetype == a })
		return ok, nil
	}
}

// SideLacks is the negation of SideHas.
func SideLacks(side Side, a battle.Archetype) bt.Predicate { return Not(SideHas(side, a)) }

// SelfHas holds while the acting combatant carries the condition.
func SelfHas(kind battle.StatusKind) bt.Predicate {
	return func(t bt.Tick) (bool, error) {
		me, err := self(t)
		if err != nil {
			return false, err
		}
		return me.Status.Has(kind), nil
	}
}

// MemberHas holds when the first living member of archetype a on side
// carries the condition. It is false when no such member is alive.
func MemberHas(side Side, a battle.Archetype, kind battle.StatusKind) bt.Predicate {
	return func(t bt.Tick) (bool, error) {
		me, err := self(t)
		if err != nil {
			return false, err
		}
		st, ok := battle.Find(t.Battle, side.team(me), func(st battle.Stats) bool { return st.Archetype == a })
		return ok && st.Status.Has(kind), nil
	}
}

// MemberLacks holds when a living member of archetype a on side does not
// carry the condition.
func MemberLacks(side Side, a battle.Archetype, kind battle.StatusKind) bt.Predicate {
	return func(t bt.Tick) (bool, error) {
		me, err := self(t)
		if err != nil {
			return false, err
		}
		st, ok := battle.Find(t.Battle, side.team(me), func(st battle.Stats) bool { return st.Archetype == a })
		return ok && !st.Status.Has(kind), nil
	}
}

// AnyBelowHalf holds when a living member of side has lost more than half
// of its health.
func AnyBelowHalf(side Side) bt.Predicate {
	return func(t bt.Tick) (bool, error) {
		me, err := self(t)
		if err != nil {
			return false, err
		}
		return battle.Snapshots(t.Battle, side.team(me)).Any(battle.Stats.BelowHalf), nil
	}
}

// SelfBelowHalf holds when the acting combatant has lost more than half of
// its health.
func SelfBelowHalf() bt.Predicate {
	return func(t bt.Tick) (bool, error) {
		me, err := self(t)
		if err != nil {
			return false, err
		}
		return me.BelowHalf(), nil
	}
}

// Wiped holds when side has nobody left alive.
func Wiped(side Side) bt.Predicate {
	return func(t bt.Tick) (bool, error) {
		me, err := self(t)
		if err != nil {
			return false, err
		}
		return battle.Snapshots(t.Battle, side.team(me)).Count() == 0, nil
	}
}

// HasMinion holds while a living combatant summoned by the actor remains.
func HasMinion() bt.Predicate {
	return func(t bt.Tick) (bool, error) {
		me, err := self(t)
		if err != nil {
			return false, err
		}
		_, ok := battle.Find(t.Battle, me.Team, func(st battle.Stats) bool { return st.Owner == me.ID })
		return ok, nil
	}
}
