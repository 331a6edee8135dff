package policy

import (
	"fmt"
	"slices"
	"sync"

	"github.com/mitchellh/mapstructure"

	"github.com/zeusync/skirmish/internal/core/battle"
	"github.com/zeusync/skirmish/internal/core/bt"
)

type PredicateFactory func(params map[string]any) (bt.Predicate, error)

type ActionFactory func(params map[string]any) (bt.Effect, error)

// Registry resolves the predicate and action names used by tree configs.
type Registry struct {
	mu    sync.RWMutex
	preds map[string]PredicateFactory
	acts  map[string]ActionFactory
}

// NewRegistry returns a registry holding the built-in predicates and the
// actions of kit. A nil kit yields an empty registry.
func NewRegistry(kit *Kit) *Registry {
	r := &Registry{
		preds: make(map[string]PredicateFactory),
		acts:  make(map[string]ActionFactory),
	}
	if kit != nil {
		registerPredicates(r)
		registerActions(r, kit)
	}
	return r
}

func (r *Registry) RegisterPredicate(name string, factory PredicateFactory) {
	r.mu.Lock()
	r.preds[name] = factory
	r.mu.Unlock()
}

func (r *Registry) RegisterAction(name string, factory ActionFactory) {
	r.mu.Lock()
	r.acts[name] = factory
	r.mu.Unlock()
}

func (r *Registry) Predicate(name string, params map[string]any) (bt.Predicate, error) {
	r.mu.RLock()
	f := r.preds[name]
	r.mu.RUnlock()
	if f == nil {
		return nil, fmt.Errorf("%w: condition %q", ErrUnknownFactory, name)
	}
	p, err := f(params)
	if err != nil {
		return nil, fmt.Errorf("condition %s: %w", name, err)
	}
	return p, nil
}

func (r *Registry) Action(name string, params map[string]any) (bt.Effect, error) {
	r.mu.RLock()
	f := r.acts[name]
	r.mu.RUnlock()
	if f == nil {
		return nil, fmt.Errorf("%w: action %q", ErrUnknownFactory, name)
	}
	e, err := f(params)
	if err != nil {
		return nil, fmt.Errorf("action %s: %w", name, err)
	}
	return e, nil
}

// Names lists registered conditions and actions, sorted.
func (r *Registry) Names() (conditions, actions []string) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for n := range r.preds {
		conditions = append(conditions, n)
	}
	for n := range r.acts {
		actions = append(actions, n)
	}
	slices.Sort(conditions)
	slices.Sort(actions)
	return conditions, actions
}

// decodeParams fills out from a config params map. Enum fields accept their
// text names and unknown keys are rejected.
func decodeParams(params map[string]any, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       mapstructure.TextUnmarshallerHookFunc(),
		ErrorUnused:      true,
		WeaklyTypedInput: true,
		Result:           out,
	})
	if err != nil {
		return err
	}
	if params == nil {
		return nil
	}
	return dec.Decode(params)
}

type sideParams struct {
	Side      Side             `mapstructure:"side"`
	Archetype battle.Archetype `mapstructure:"archetype"`
}

type memberParams struct {
	Side      Side              `mapstructure:"side"`
	Archetype battle.Archetype  `mapstructure:"archetype"`
	Status    battle.StatusKind `mapstructure:"status"`
}

type constParams struct {
	Value bool `mapstructure:"value"`
}

func registerPredicates(r *Registry) {
	r.RegisterPredicate("always", func(params map[string]any) (bt.Predicate, error) {
		p := constParams{Value: true}
		if err := decodeParams(params, &p); err != nil {
			return nil, err
		}
		return func(bt.Tick) (bool, error) { return p.Value, nil }, nil
	})
	r.RegisterPredicate("side_has", func(params map[string]any) (bt.Predicate, error) {
		p := sideParams{Side: Opponents}
		if err := decodeParams(params, &p); err != nil {
			return nil, err
		}
		return SideHas(p.Side, p.Archetype), nil
	})
	r.RegisterPredicate("self_has", func(params map[string]any) (bt.Predicate, error) {
		var p struct {
			Status battle.StatusKind `mapstructure:"status"`
		}
		if err := decodeParams(params, &p); err != nil {
			return nil, err
		}
		return SelfHas(p.Status), nil
	})
	r.RegisterPredicate("member_has", func(params map[string]any) (bt.Predicate, error) {
		p := memberParams{Side: Opponents}
		if err := decodeParams(params, &p); err != nil {
			return nil, err
		}
		return MemberHas(p.Side, p.Archetype, p.Status), nil
	})
	r.RegisterPredicate("member_lacks", func(params map[string]any) (bt.Predicate, error) {
		p := memberParams{Side: Opponents}
		if err := decodeParams(params, &p); err != nil {
			return nil, err
		}
		return MemberLacks(p.Side, p.Archetype, p.Status), nil
	})
	r.RegisterPredicate("any_below_half", func(params map[string]any) (bt.Predicate, error) {
		p := sideParams{Side: Allies}
		if err := decodeParams(params, &p); err != nil {
			return nil, err
		}
		return AnyBelowHalf(p.Side), nil
	})
	r.RegisterPredicate("self_below_half", func(params map[string]any) (bt.Predicate, error) {
		if err := decodeParams(params, &struct{}{}); err != nil {
			return nil, err
		}
		return SelfBelowHalf(), nil
	})
	r.RegisterPredicate("wiped", func(params map[string]any) (bt.Predicate, error) {
		p := sideParams{Side: Opponents}
		if err := decodeParams(params, &p); err != nil {
			return nil, err
		}
		return Wiped(p.Side), nil
	})
	r.RegisterPredicate("has_minion", func(params map[string]any) (bt.Predicate, error) {
		if err := decodeParams(params, &struct{}{}); err != nil {
			return nil, err
		}
		return HasMinion(), nil
	})
}

type strikeParams struct {
	Effect battle.EffectKind `mapstructure:"effect"`
	Aim    `mapstructure:",squash"`
}

type afflictParams struct {
	Status battle.StatusKind `mapstructure:"status"`
	Aim    `mapstructure:",squash"`
}

func registerActions(r *Registry, kit *Kit) {
	r.RegisterAction("strike", func(params map[string]any) (bt.Effect, error) {
		p := strikeParams{Effect: battle.EffectMelee, Aim: WeakestOf(Opponents)}
		if err := decodeParams(params, &p); err != nil {
			return nil, err
		}
		return kit.Strike(p.Effect, p.Aim), nil
	})
	r.RegisterAction("afflict", func(params map[string]any) (bt.Effect, error) {
		p := afflictParams{Aim: WeakestOf(Opponents)}
		if err := decodeParams(params, &p); err != nil {
			return nil, err
		}
		return kit.Afflict(p.Status, p.Aim), nil
	})
	r.RegisterAction("heal", func(params map[string]any) (bt.Effect, error) {
		p := WeakestOf(Allies)
		if err := decodeParams(params, &p); err != nil {
			return nil, err
		}
		return kit.Heal(p), nil
	})
	r.RegisterAction("summon", func(params map[string]any) (bt.Effect, error) {
		p := struct {
			Archetype battle.Archetype `mapstructure:"archetype"`
		}{Archetype: battle.NecroMinion}
		if err := decodeParams(params, &p); err != nil {
			return nil, err
		}
		return kit.Summon(p.Archetype), nil
	})
	r.RegisterAction("do_nothing", func(params map[string]any) (bt.Effect, error) {
		return DoNothing(), nil
	})
}
