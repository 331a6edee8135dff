package policy

import (
	"github.com/zeusync/skirmish/internal/core/battle"
	"github.com/zeusync/skirmish/internal/core/bt"
)

// The built-in trees are sequences of guards. Because a false guard reports
// Success, every guard of a sequence is visited in turn; guards are ordered so
// that an action cannot flip the predicate of a later sibling into firing a
// second action in the same decision.

func (k *Kit) mageTree() bt.Node {
	return bt.NewSequence("mage",
		bt.NewGuard("if taunted", SelfHas(battle.Taunted), k.swordsmanCheck("taunted")),
		bt.NewGuard("if not taunted", Not(SelfHas(battle.Taunted)),
			bt.NewSequence("check health",
				bt.NewGuard("if nobody below half", Not(AnyBelowHalf(Allies)), k.swordsmanCheck("healthy")),
				bt.NewGuard("if someone below half", AnyBelowHalf(Allies),
					bt.NewSequence("check own health",
						bt.NewGuard("if self above half", Not(SelfBelowHalf()), bt.NewAction("heal weakest ally", k.Heal(WeakestOf(Allies)))),
						bt.NewGuard("if self below half", SelfBelowHalf(), bt.NewAction("heal self", k.Heal(Self()))),
					),
				),
			),
		),
	)
}

func (k *Kit) swordsmanCheck(label string) bt.Node {
	return bt.NewSequence("check swordsman ("+label+")",
		bt.NewGuard("if no swordsman", SideLacks(Opponents, battle.Swordsman), bt.NewAction("fireball", k.Strike(battle.EffectFireball, WeakestOf(Opponents)))),
		bt.NewGuard("if swordsman", SideHas(Opponents, battle.Swordsman), bt.NewAction("rock on swordsman", k.Strike(battle.EffectRock, Member(Opponents, battle.Swordsman)))),
	)
}

func (k *Kit) swordsmanTree() bt.Node {
	return bt.NewSequence("swordsman",
		bt.NewGuard("if no mage", SideLacks(Opponents, battle.Mage), bt.NewAction("melee attack", k.Strike(battle.EffectMelee, WeakestOf(Opponents)))),
		bt.NewGuard("if mage", SideHas(Opponents, battle.Mage),
			bt.NewSequence("check mage taunt",
				bt.NewGuard("if mage taunted", MemberHas(Opponents, battle.Mage, battle.Taunted), bt.NewAction("melee mage", k.Strike(battle.EffectMelee, Member(Opponents, battle.Mage)))),
				bt.NewGuard("if mage not taunted", MemberLacks(Opponents, battle.Mage, battle.Taunted), bt.NewAction("taunt mage", k.Afflict(battle.Taunted, Member(Opponents, battle.Mage)))),
			),
		),
	)
}

func (k *Kit) archerTree() bt.Node {
	return bt.NewSequence("archer",
		bt.NewGuard("if no necromancer", SideLacks(Opponents, battle.NecromancerTwo), bt.NewAction("shoot weakest", k.Strike(battle.EffectArrow, WeakestOf(Opponents)))),
		bt.NewGuard("if necromancer", SideHas(Opponents, battle.NecromancerTwo), bt.NewAction("shoot necromancer", k.Strike(battle.EffectArrow, Member(Opponents, battle.NecromancerTwo)))),
	)
}

func (k *Kit) healerTree() bt.Node {
	return bt.NewSequence("healer",
		bt.NewGuard("if nobody below half", Not(AnyBelowHalf(Allies)), bt.NewAction("shield weakest ally", k.Afflict(battle.Shielded, WeakestOf(Allies)))),
		bt.NewGuard("if someone below half", AnyBelowHalf(Allies), bt.NewAction("heal weakest ally", k.Heal(WeakestOf(Allies)))),
	)
}

func (k *Kit) necromancerOneTree() bt.Node {
	return bt.NewSequence("necromancer one",
		bt.NewGuard("if opponents wiped", Wiped(Opponents), bt.NewAction("do nothing", DoNothing())),
		bt.NewGuard("if opponents alive", Not(Wiped(Opponents)),
			bt.NewSequence("check minion",
				bt.NewGuard("if minion", HasMinion(), bt.NewAction("random lightning", k.Strike(battle.EffectLightning, RandomOf(Opponents)))),
				bt.NewGuard("if no minion", Not(HasMinion()), bt.NewAction("summon minion", k.Summon(battle.NecroMinion))),
			),
		),
	)
}

func (k *Kit) necromancerTwoTree() bt.Node {
	return bt.NewSequence("necromancer two",
		bt.NewGuard("if no mage", SideLacks(Opponents, battle.Mage), bt.NewAction("random lightning", k.Strike(battle.EffectLightning, RandomOf(Opponents)))),
		bt.NewGuard("if mage", SideHas(Opponents, battle.Mage),
			bt.NewSequence("check mage silence",
				bt.NewGuard("if mage silenced", MemberHas(Opponents, battle.Mage, battle.Silenced), bt.NewAction("ice shard", k.Strike(battle.EffectIceShard, WeakestOf(Opponents)))),
				bt.NewGuard("if mage not silenced", MemberLacks(Opponents, battle.Mage, battle.Silenced), bt.NewAction("silence mage", k.Afflict(battle.Silenced, Member(Opponents, battle.Mage)))),
			),
		),
	)
}

func (k *Kit) minionTree() bt.Node {
	return bt.NewSequence("necro minion",
		bt.NewGuard("if taunted", SelfHas(battle.Taunted),
			bt.NewSequence("check taunter",
				bt.NewGuard("if no swordsman", SideLacks(Opponents, battle.Swordsman), bt.NewAction("strike weakest", k.Strike(battle.EffectMelee, WeakestOf(Opponents)))),
				bt.NewGuard("if swordsman", SideHas(Opponents, battle.Swordsman), bt.NewAction("strike swordsman", k.Strike(battle.EffectMelee, Member(Opponents, battle.Swordsman)))),
			),
		),
		bt.NewGuard("if not taunted", Not(SelfHas(battle.Taunted)), bt.NewAction("strike weakest", k.Strike(battle.EffectMelee, WeakestOf(Opponents)))),
	)
}

// Builtin returns a fresh root for the built-in policy of archetype a.
func (k *Kit) Builtin(a battle.Archetype) (bt.Node, bool) {
	switch a {
	case battle.Mage:
		return k.mageTree(), true
	case battle.Swordsman:
		return k.swordsmanTree(), true
	case battle.Archer:
		return k.archerTree(), true
	case battle.Healer:
		return k.healerTree(), true
	case battle.NecromancerOne:
		return k.necromancerOneTree(), true
	case battle.NecromancerTwo:
		return k.necromancerTwoTree(), true
	case battle.NecroMinion:
		return k.minionTree(), true
	default:
		return nil, false
	}
}
