package engine

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/zeusync/skirmish/internal/core/battle"
	"github.com/zeusync/skirmish/internal/core/policy"
)

var ErrEmptyRoster = errors.New("roster needs at least one combatant per side")

// Member is one combatant line of a roster. Zero Speed or MaxHealth take the
// archetype profile from the table.
type Member struct {
	Name      string           `yaml:"name"`
	Archetype battle.Archetype `yaml:"archetype"`
	Speed     int              `yaml:"speed,omitempty"`
	MaxHealth int              `yaml:"max_health,omitempty"`
}

// Roster is the starting line-up of a battle.
type Roster struct {
	Seed       int64    `yaml:"seed"`
	MaxTurns   int      `yaml:"max_turns"`
	Companions []Member `yaml:"companions"`
	Enemies    []Member `yaml:"enemies"`
}

// DefaultRoster is the opening encounter: a mage and a swordsman on each side.
func DefaultRoster() *Roster {
	return &Roster{
		Seed:     1,
		MaxTurns: 500,
		Companions: []Member{
			{Name: "mage", Archetype: battle.Mage},
			{Name: "swordsman", Archetype: battle.Swordsman},
		},
		Enemies: []Member{
			{Name: "enemy mage", Archetype: battle.Mage},
			{Name: "enemy swordsman", Archetype: battle.Swordsman},
		},
	}
}

func LoadRoster(r io.Reader) (*Roster, error) {
	var ro Roster
	if err := yaml.NewDecoder(r).Decode(&ro); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decode roster: %w", err)
	}
	if err := ro.Validate(); err != nil {
		return nil, err
	}
	return &ro, nil
}

func ReadRosterFile(path string) (*Roster, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return LoadRoster(f)
}

func (r *Roster) Validate() error {
	if len(r.Companions) == 0 || len(r.Enemies) == 0 {
		return ErrEmptyRoster
	}
	for _, m := range append(append([]Member(nil), r.Companions...), r.Enemies...) {
		if m.Archetype == battle.ArchetypeUnknown {
			return fmt.Errorf("roster member %q: %w", m.Name, policy.ErrUnknownArchetype)
		}
		if m.Speed < 0 || m.MaxHealth < 0 {
			return fmt.Errorf("roster member %q: %w", m.Name, battle.ErrInvalidStats)
		}
	}
	return nil
}

// NewWorld creates a world that knows how to summon every archetype of table.
func NewWorld(table *policy.Table, opts ...battle.WorldOption) (*battle.World, error) {
	if table == nil {
		table = policy.DefaultTable()
	}
	all := make([]battle.WorldOption, 0, len(battle.Archetypes())+len(opts))
	for _, a := range battle.Archetypes() {
		st, err := table.Stats(a, battle.Enemies)
		if err != nil {
			return nil, err
		}
		all = append(all, battle.WithTemplate(a, st))
	}
	return battle.NewWorld(append(all, opts...)...), nil
}

// Populate creates the roster's world with the given seed.
func (r *Roster) Populate(table *policy.Table, seed int64, opts ...battle.WorldOption) (*battle.World, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}
	if table == nil {
		table = policy.DefaultTable()
	}
	w, err := NewWorld(table, append([]battle.WorldOption{battle.WithSeed(seed)}, opts...)...)
	if err != nil {
		return nil, err
	}
	add := func(team battle.Team, members []Member) error {
		for _, m := range members {
			st, err := table.Stats(m.Archetype, team)
			if err != nil {
				return err
			}
			st.Name = m.Name
			if m.Speed > 0 {
				st.Speed = m.Speed
			}
			if m.MaxHealth > 0 {
				st.MaxHealth = m.MaxHealth
			}
			if _, err := w.Add(st); err != nil {
				return fmt.Errorf("roster member %q: %w", m.Name, err)
			}
		}
		return nil
	}
	if err := add(battle.Companions, r.Companions); err != nil {
		return nil, err
	}
	if err := add(battle.Enemies, r.Enemies); err != nil {
		return nil, err
	}
	return w, nil
}
