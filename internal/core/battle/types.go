package battle

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Team is the side a combatant fights on.
type Team uint8

const (
	Companions Team = iota
	Enemies
)

func (t Team) String() string {
	switch t {
	case Companions:
		return "companions"
	case Enemies:
		return "enemies"
	default:
		return "unknown"
	}
}

// Opponent returns the other side.
func (t Team) Opponent() Team {
	if t == Companions {
		return Enemies
	}
	return Companions
}

func (t *Team) UnmarshalText(b []byte) error {
	switch strings.ToLower(string(b)) {
	case "companions", "companion", "allies", "ally", "player":
		*t = Companions
	case "enemies", "enemy":
		*t = Enemies
	default:
		return fmt.Errorf("unknown team %q", string(b))
	}
	return nil
}

func (t Team) MarshalText() ([]byte, error) { return []byte(t.String()), nil }

// Archetype selects the decision tree that governs a combatant.
type Archetype uint8

const (
	ArchetypeUnknown Archetype = iota
	Mage
	Swordsman
	Archer
	Healer
	NecromancerOne
	NecromancerTwo
	NecroMinion
)

var archetypeNames = map[Archetype]string{
	Mage:           "mage",
	Swordsman:      "swordsman",
	Archer:         "archer",
	Healer:         "healer",
	NecromancerOne: "necromancer_one",
	NecromancerTwo: "necromancer_two",
	NecroMinion:    "necro_minion",
}

// Archetypes lists every known archetype in declaration order.
func Archetypes() []Archetype {
	return []Archetype{Mage, Swordsman, Archer, Healer, NecromancerOne, NecromancerTwo, NecroMinion}
}

func (a Archetype) String() string {
	if n, ok := archetypeNames[a]; ok {
		return n
	}
	return "unknown"
}

// ParseArchetype accepts the snake_case names produced by String.
func ParseArchetype(s string) (Archetype, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for a, n := range archetypeNames {
		if n == s {
			return a, nil
		}
	}
	return ArchetypeUnknown, fmt.Errorf("unknown archetype %q", s)
}

func (a *Archetype) UnmarshalText(b []byte) error {
	v, err := ParseArchetype(string(b))
	if err != nil {
		return err
	}
	*a = v
	return nil
}

func (a Archetype) MarshalText() ([]byte, error) { return []byte(a.String()), nil }

// CombatantID references a combatant owned by the battle world.
type CombatantID uuid.UUID

// NoCombatant is the zero reference, used for effects without an origin or target.
var NoCombatant CombatantID

func (id CombatantID) String() string { return uuid.UUID(id).String() }

// Short is the first block of the id, enough to tell combatants apart in logs.
func (id CombatantID) Short() string { return id.String()[:8] }

func (id CombatantID) IsZero() bool { return id == NoCombatant }

func (id CombatantID) MarshalText() ([]byte, error) { return uuid.UUID(id).MarshalText() }

// StatusKind names a timed condition.
type StatusKind uint8

const (
	Taunted StatusKind = iota
	Silenced
	Shielded
)

func (k StatusKind) String() string {
	switch k {
	case Taunted:
		return "taunted"
	case Silenced:
		return "silenced"
	case Shielded:
		return "shielded"
	default:
		return "unknown"
	}
}

func ParseStatusKind(s string) (StatusKind, error) {
	for _, k := range []StatusKind{Taunted, Silenced, Shielded} {
		if k.String() == strings.ToLower(strings.TrimSpace(s)) {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unknown status %q", s)
}

func (k *StatusKind) UnmarshalText(b []byte) error {
	v, err := ParseStatusKind(string(b))
	if err != nil {
		return err
	}
	*k = v
	return nil
}

func (k StatusKind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

// Status holds the remaining turns of each condition; zero means inactive.
type Status struct {
	Taunted  int `yaml:"taunted,omitempty"`
	Silenced int `yaml:"silenced,omitempty"`
	Shielded int `yaml:"shielded,omitempty"`
}

func (s Status) Has(k StatusKind) bool { return s.Turns(k) > 0 }

func (s Status) Turns(k StatusKind) int {
	switch k {
	case Taunted:
		return s.Taunted
	case Silenced:
		return s.Silenced
	case Shielded:
		return s.Shielded
	default:
		return 0
	}
}

func (s *Status) set(k StatusKind, turns int) {
	switch k {
	case Taunted:
		s.Taunted = turns
	case Silenced:
		s.Silenced = turns
	case Shielded:
		s.Shielded = turns
	}
}

// tick consumes one turn of every active condition.
func (s *Status) tick() {
	for _, k := range []StatusKind{Taunted, Silenced, Shielded} {
		if n := s.Turns(k); n > 0 {
			s.set(k, n-1)
		}
	}
}

// Stats is a snapshot of one combatant.
type Stats struct {
	ID        CombatantID `yaml:"-"`
	Name      string      `yaml:"name"`
	Team      Team        `yaml:"team"`
	Archetype Archetype   `yaml:"archetype"`
	Speed     int         `yaml:"speed"`
	Health    int         `yaml:"health"`
	MaxHealth int         `yaml:"max_health"`
	Status    Status      `yaml:"status"`
	// Owner is set for summoned combatants.
	Owner CombatantID `yaml:"-"`
}

// Alive reports health > 0. Health may legitimately be negative.
func (s Stats) Alive() bool { return s.Health > 0 }

// BelowHalf reports whether the combatant has lost more than half its health.
func (s Stats) BelowHalf() bool { return s.Health*2 < s.MaxHealth }

// EffectKind is the visual/projectile effect requested from the renderer.
type EffectKind uint8

const (
	EffectNone EffectKind = iota
	EffectFireball
	EffectIceShard
	EffectRock
	EffectLightning
	EffectMelee
	EffectArrow
	EffectTaunt
	EffectSilence
	EffectHeal
	EffectShield
	EffectSummon
)

func (k EffectKind) String() string {
	switch k {
	case EffectFireball:
		return "fireball"
	case EffectIceShard:
		return "ice_shard"
	case EffectRock:
		return "rock"
	case EffectLightning:
		return "lightning"
	case EffectMelee:
		return "melee"
	case EffectArrow:
		return "arrow"
	case EffectTaunt:
		return "taunt"
	case EffectSilence:
		return "silence"
	case EffectHeal:
		return "heal"
	case EffectShield:
		return "shield"
	case EffectSummon:
		return "summon"
	default:
		return "none"
	}
}

func ParseEffectKind(s string) (EffectKind, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for k := EffectFireball; k <= EffectSummon; k++ {
		if k.String() == s {
			return k, nil
		}
	}
	return EffectNone, fmt.Errorf("unknown effect %q", s)
}

func (k *EffectKind) UnmarshalText(b []byte) error {
	v, err := ParseEffectKind(string(b))
	if err != nil {
		return err
	}
	*k = v
	return nil
}

func (k EffectKind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }
