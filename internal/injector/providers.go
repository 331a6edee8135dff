package injector

import (
	"fmt"

	"github.com/google/wire"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/zeusync/skirmish/internal/core/battle"
	"github.com/zeusync/skirmish/internal/core/observability/log"
	"github.com/zeusync/skirmish/internal/core/observability/metrics"
	"github.com/zeusync/skirmish/internal/core/policy"
)

// Settings is what the command line decides before anything is built.
type Settings struct {
	Level   string
	Verbose bool
	// TablePath overrides the built-in balance table when set.
	TablePath string
	// Trees maps archetype names to tree config files replacing the built-in
	// trees.
	Trees map[string]string
	// Registerer receives the Prometheus collectors. Nil disables metrics.
	Registerer prometheus.Registerer
}

// App holds the shared, read-only parts of a simulation.
type App struct {
	Logger   log.Log
	Table    *policy.Table
	Book     *policy.Book
	Recorder metrics.Recorder
}

var ProviderSet = wire.NewSet(
	ProvideLogger,
	ProvideTable,
	ProvideBook,
	ProvideRecorder,
	wire.Struct(new(App), "*"),
)

func ProvideLogger(s Settings) log.Log {
	level := log.ParseLevel(s.Level)
	if s.Verbose {
		return log.NewDevelopment(level)
	}
	return log.New(level)
}

func ProvideTable(s Settings) (*policy.Table, error) {
	if s.TablePath == "" {
		return policy.DefaultTable(), nil
	}
	return policy.ReadTableFile(s.TablePath)
}

func ProvideBook(s Settings, table *policy.Table) (*policy.Book, error) {
	opts := make([]policy.BookOption, 0, len(s.Trees))
	for name, path := range s.Trees {
		a, err := battle.ParseArchetype(name)
		if err != nil {
			return nil, fmt.Errorf("tree override: %w", err)
		}
		cfg, err := policy.ReadConfigFile(path)
		if err != nil {
			return nil, fmt.Errorf("tree override %s: %w", name, err)
		}
		opts = append(opts, policy.WithConfig(a, cfg))
	}
	return policy.NewBook(policy.NewKit(table), opts...)
}

func ProvideRecorder(s Settings) (metrics.Recorder, error) {
	if s.Registerer == nil {
		return metrics.Nop{}, nil
	}
	return metrics.NewPrometheus(s.Registerer)
}
