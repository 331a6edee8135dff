package engine

import (
	"context"
	"fmt"

	"github.com/zeusync/skirmish/internal/core/battle"
	"github.com/zeusync/skirmish/internal/core/policy"
	"github.com/zeusync/skirmish/pkg/concurrent"
	"github.com/zeusync/skirmish/pkg/sequence"
)

// Summary aggregates the outcomes of a batch of battles.
type Summary struct {
	Battles    int            `json:"battles" yaml:"battles"`
	Wins       map[string]int `json:"wins" yaml:"wins"`
	Draws      int            `json:"draws" yaml:"draws"`
	Unfinished int            `json:"unfinished" yaml:"unfinished"`
	Turns      int            `json:"turns" yaml:"turns"`
	Abandoned  int            `json:"abandoned" yaml:"abandoned"`
}

// WinRate is the share of battles won by team.
func (s Summary) WinRate(team battle.Team) float64 {
	if s.Battles == 0 {
		return 0
	}
	return float64(s.Wins[team.String()]) / float64(s.Battles)
}

// Simulate plays battles copies of roster on up to workers goroutines. Battle i
// is seeded with roster.Seed+i, so a batch is reproducible. Every battle gets
// its own world and engine; opts must not share a driver between them.
func Simulate(ctx context.Context, roster *Roster, table *policy.Table, book *policy.Book, battles, workers int, opts ...Option) (Summary, error) {
	if err := roster.Validate(); err != nil {
		return Summary{}, err
	}
	seeds := make([]int64, battles)
	for i := range seeds {
		seeds[i] = roster.Seed + int64(i)
	}

	outcomes, err := concurrent.ParallelMap(ctx, sequence.From(seeds), workers, func(ctx context.Context, seed int64) (Outcome, error) {
		w, err := roster.Populate(table, seed)
		if err != nil {
			return Outcome{}, err
		}
		o, err := New(w, book, opts...).Run(ctx, roster.MaxTurns)
		if err != nil {
			return o, fmt.Errorf("battle seed %d: %w", seed, err)
		}
		return o, nil
	})
	if err != nil {
		return Summary{}, err
	}

	sum := Summary{Battles: len(outcomes), Wins: make(map[string]int, 2)}
	for result, group := range sequence.GroupBy(sequence.From(outcomes), Outcome.Result) {
		switch result {
		case ResultUnfinished:
			sum.Unfinished = len(group)
		case ResultDraw:
			sum.Draws = len(group)
		default:
			sum.Wins[result] = len(group)
		}
	}
	for _, o := range outcomes {
		sum.Turns += o.Turns
		sum.Abandoned += o.Abandoned
	}
	return sum, nil
}
