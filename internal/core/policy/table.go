package policy

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/zeusync/skirmish/internal/core/battle"
)

// Roll is a damage range: Base plus a random amount in [0, Variance).
type Roll struct {
	Base     int `yaml:"base"`
	Variance int `yaml:"variance"`
}

// Profile holds the default stats of an archetype.
type Profile struct {
	Speed     int `yaml:"speed"`
	MaxHealth int `yaml:"max_health"`
}

// Durations are the number of turns each condition lasts.
type Durations struct {
	Taunt   int `yaml:"taunt"`
	Silence int `yaml:"silence"`
	Shield  int `yaml:"shield"`
}

// Table is the numeric side of every policy: damage per effect, heal
// amount, condition durations and archetype stats.
type Table struct {
	Effects    map[battle.EffectKind]Roll
	Heal       int
	Durations  Durations
	Archetypes map[battle.Archetype]Profile
}

// DefaultTable returns the constants the built-in policies were balanced with.
func DefaultTable() *Table {
	return &Table{
		Effects: map[battle.EffectKind]Roll{
			battle.EffectFireball:  {Base: 10, Variance: 3},
			battle.EffectIceShard:  {Base: 8, Variance: 3},
			battle.EffectRock:      {Base: 12, Variance: 3},
			battle.EffectLightning: {Base: 14, Variance: 5},
			battle.EffectMelee:     {Base: 10, Variance: 3},
			battle.EffectArrow:     {Base: 9, Variance: 4},
		},
		Heal:      20,
		Durations: Durations{Taunt: 3, Silence: 1, Shield: 3},
		Archetypes: map[battle.Archetype]Profile{
			battle.Mage:           {Speed: 12, MaxHealth: 100},
			battle.Swordsman:      {Speed: 10, MaxHealth: 100},
			battle.Archer:         {Speed: 14, MaxHealth: 100},
			battle.Healer:         {Speed: 8, MaxHealth: 100},
			battle.NecromancerOne: {Speed: 9, MaxHealth: 150},
			battle.NecromancerTwo: {Speed: 11, MaxHealth: 200},
			battle.NecroMinion:    {Speed: 6, MaxHealth: 40},
		},
	}
}

// Roll returns the damage range of an effect; unknown effects deal nothing.
func (t *Table) Roll(kind battle.EffectKind) Roll { return t.Effects[kind] }

// Stats builds the starting stats of an archetype on a team.
func (t *Table) Stats(a battle.Archetype, team battle.Team) (battle.Stats, error) {
	p, ok := t.Archetypes[a]
	if !ok {
		return battle.Stats{}, fmt.Errorf("%w: %s", ErrUnknownArchetype, a)
	}
	return battle.Stats{
		Team:      team,
		Archetype: a,
		Speed:     p.Speed,
		MaxHealth: p.MaxHealth,
	}, nil
}

type tableFile struct {
	Effects    map[string]Roll    `yaml:"effects"`
	Heal       *int               `yaml:"heal"`
	Durations  *Durations         `yaml:"durations"`
	Archetypes map[string]Profile `yaml:"archetypes"`
}

// LoadTable reads a YAML document and applies it over DefaultTable. Keys
// that are absent keep their default.
func LoadTable(r io.Reader) (*Table, error) {
	var f tableFile
	if err := yaml.NewDecoder(r).Decode(&f); err != nil && err != io.EOF {
		return nil, fmt.Errorf("decode table: %w", err)
	}

	t := DefaultTable()
	for name, roll := range f.Effects {
		kind, err := battle.ParseEffectKind(name)
		if err != nil {
			return nil, fmt.Errorf("table effects: %w", err)
		}
		if roll.Base < 0 || roll.Variance < 0 {
			return nil, fmt.Errorf("table effects: %s: negative roll", name)
		}
		t.Effects[kind] = roll
	}
	if f.Heal != nil {
		t.Heal = *f.Heal
	}
	if f.Durations != nil {
		t.Durations = *f.Durations
	}
	for name, p := range f.Archetypes {
		a, err := battle.ParseArchetype(name)
		if err != nil {
			return nil, fmt.Errorf("table archetypes: %w", err)
		}
		if p.MaxHealth <= 0 {
			return nil, fmt.Errorf("table archetypes: %s: max_health must be positive", name)
		}
		t.Archetypes[a] = p
	}
	return t, nil
}

// ReadTableFile is LoadTable on a file.
func ReadTableFile(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return LoadTable(f)
}
