package policy

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/zeusync/skirmish/internal/core/bt"
)

// Config describes a tree in JSON or YAML. Nodes are declared by name and
// reference each other through Children and Child; Root names the entry node.
type Config struct {
	Root  string                `json:"root" yaml:"root"`
	Nodes map[string]ConfigNode `json:"nodes" yaml:"nodes"`
}

type ConfigNode struct {
	Type      string         `json:"type" yaml:"type"`
	Children  []string       `json:"children,omitempty" yaml:"children,omitempty"`
	Child     string         `json:"child,omitempty" yaml:"child,omitempty"`
	Action    string         `json:"action,omitempty" yaml:"action,omitempty"`
	Condition string         `json:"condition,omitempty" yaml:"condition,omitempty"`
	Not       bool           `json:"not,omitempty" yaml:"not,omitempty"`
	Params    map[string]any `json:"params,omitempty" yaml:"params,omitempty"`
}

// LoadJSON loads config from JSON reader.
func LoadJSON(r io.Reader) (*Config, error) {
	var c Config
	if err := json.NewDecoder(r).Decode(&c); err != nil {
		return nil, fmt.Errorf("decode tree config: %w", err)
	}
	return &c, nil
}

// LoadYAML loads config from YAML reader.
func LoadYAML(r io.Reader) (*Config, error) {
	var c Config
	if err := yaml.NewDecoder(r).Decode(&c); err != nil {
		return nil, fmt.Errorf("decode tree config: %w", err)
	}
	return &c, nil
}

// ReadConfigFile picks the decoder from the file extension.
func ReadConfigFile(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return LoadJSON(f)
	}
	return LoadYAML(f)
}

// Build instantiates the node graph through reg. A node referenced from
// several places is instantiated once per reference, so every tree node stays
// unique; reference cycles are rejected.
func (c *Config) Build(reg *Registry) (bt.Node, error) {
	if c.Root == "" {
		return nil, fmt.Errorf("%w: config has no root", ErrUnknownNode)
	}
	visiting := make(map[string]bool)

	var build func(name string) (bt.Node, error)
	build = func(name string) (bt.Node, error) {
		nc, ok := c.Nodes[name]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownNode, name)
		}
		if visiting[name] {
			return nil, fmt.Errorf("%w: cycle through %q", bt.ErrMalformedTree, name)
		}
		visiting[name] = true
		defer delete(visiting, name)

		children := func() ([]bt.Node, error) {
			out := make([]bt.Node, 0, len(nc.Children))
			for _, ch := range nc.Children {
				n, err := build(ch)
				if err != nil {
					return nil, err
				}
				out = append(out, n)
			}
			return out, nil
		}

		switch strings.ToLower(nc.Type) {
		case "sequence":
			ch, err := children()
			if err != nil {
				return nil, err
			}
			return bt.NewSequence(name, ch...), nil
		case "selector":
			ch, err := children()
			if err != nil {
				return nil, err
			}
			return bt.NewSelector(name, ch...), nil
		case "guard":
			pred, err := c.predicate(reg, nc)
			if err != nil {
				return nil, fmt.Errorf("node %s: %w", name, err)
			}
			if nc.Child == "" {
				return nil, fmt.Errorf("%w: guard %s requires child", bt.ErrMalformedTree, name)
			}
			child, err := build(nc.Child)
			if err != nil {
				return nil, err
			}
			return bt.NewGuard(name, pred, child), nil
		case "condition":
			// a bare condition succeeds or fails, which is what selectors branch on
			pred, err := c.predicate(reg, nc)
			if err != nil {
				return nil, fmt.Errorf("node %s: %w", name, err)
			}
			return bt.NewTask(name, func(t bt.Tick) (bt.Status, error) {
				ok, err := pred(t)
				if err != nil {
					return bt.StatusFailure, err
				}
				if ok {
					return bt.StatusSuccess, nil
				}
				return bt.StatusFailure, nil
			}), nil
		case "action":
			eff, err := reg.Action(nc.Action, nc.Params)
			if err != nil {
				return nil, fmt.Errorf("node %s: %w", name, err)
			}
			return bt.NewAction(name, eff), nil
		default:
			return nil, fmt.Errorf("%w: node %s has unsupported type %q", ErrUnknownNode, name, nc.Type)
		}
	}
	return build(c.Root)
}

func (c *Config) predicate(reg *Registry, nc ConfigNode) (bt.Predicate, error) {
	pred, err := reg.Predicate(nc.Condition, nc.Params)
	if err != nil {
		return nil, err
	}
	if nc.Not {
		pred = Not(pred)
	}
	return pred, nil
}

// Tree builds and validates the config as a named tree.
func (c *Config) Tree(name string, reg *Registry) (*bt.Tree, error) {
	root, err := c.Build(reg)
	if err != nil {
		return nil, err
	}
	return bt.NewTree(name, root)
}
