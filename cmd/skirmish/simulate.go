package main

import (
	"fmt"
	"io"
	"runtime"
	"sort"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/zeusync/skirmish/internal/core/battle"
	"github.com/zeusync/skirmish/internal/core/engine"
	"github.com/zeusync/skirmish/internal/injector"
	"github.com/zeusync/skirmish/pkg/encoding"
)

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Play many seeded battles in parallel and report win rates",
	RunE:  runSimulate,
}

func init() {
	flags := simulateCmd.Flags()
	flags.String("roster", "", "Roster YAML; the opening encounter when empty")
	flags.Int("battles", 100, "Number of battles to play")
	flags.Int("workers", runtime.NumCPU(), "Battles played at the same time")
	flags.Int64("seed", 0, "First battle seed, overriding the roster")
	flags.Int("max-turns", 0, "Turn limit per battle, overriding the roster")
	flags.String("format", "text", "Summary format: text, json or yaml")
	flags.Bool("metrics", false, "Print the collected metrics")
	rootCmd.AddCommand(simulateCmd)
}

func loadRoster(cmd *cobra.Command) (*engine.Roster, error) {
	flags := cmd.Flags()
	path, _ := flags.GetString("roster")
	roster := engine.DefaultRoster()
	if path != "" {
		var err error
		if roster, err = engine.ReadRosterFile(path); err != nil {
			return nil, err
		}
	}
	if flags.Changed("seed") {
		roster.Seed, _ = flags.GetInt64("seed")
	}
	if flags.Changed("max-turns") {
		roster.MaxTurns, _ = flags.GetInt("max-turns")
	}
	return roster, nil
}

func runSimulate(cmd *cobra.Command, _ []string) error {
	s, err := settings(cmd)
	if err != nil {
		return err
	}
	reg := prometheus.NewRegistry()
	s.Registerer = reg
	app, err := injector.InitializeApp(s)
	if err != nil {
		return err
	}
	roster, err := loadRoster(cmd)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	battles, _ := flags.GetInt("battles")
	workers, _ := flags.GetInt("workers")
	name, _ := flags.GetString("format")
	format, err := encoding.ParseFormat(name)
	if err != nil {
		return err
	}
	sum, err := engine.Simulate(cmd.Context(), roster, app.Table, app.Book, battles, workers,
		engine.WithLogger(app.Logger),
		engine.WithRecorder(app.Recorder),
	)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if format.Structured() {
		return encoding.Write(out, format, sum)
	}
	fmt.Fprintf(out, "battles     %d\n", sum.Battles)
	for _, team := range []battle.Team{battle.Companions, battle.Enemies} {
		fmt.Fprintf(out, "%-11s %d (%.1f%%)\n", team, sum.Wins[team.String()], 100*sum.WinRate(team))
	}
	fmt.Fprintf(out, "draws       %d\n", sum.Draws)
	fmt.Fprintf(out, "unfinished  %d\n", sum.Unfinished)
	fmt.Fprintf(out, "turns       %d\n", sum.Turns)
	fmt.Fprintf(out, "abandoned   %d\n", sum.Abandoned)

	if show, _ := flags.GetBool("metrics"); show {
		return printMetrics(out, reg)
	}
	return nil
}

func printMetrics(out io.Writer, g prometheus.Gatherer) error {
	families, err := g.Gather()
	if err != nil {
		return err
	}
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			labels := make([]string, 0, len(m.GetLabel()))
			for _, lp := range m.GetLabel() {
				labels = append(labels, lp.GetName()+"="+lp.GetValue())
			}
			sort.Strings(labels)
			name := mf.GetName()
			if len(labels) > 0 {
				name += "{" + strings.Join(labels, ",") + "}"
			}
			switch {
			case m.GetCounter() != nil:
				fmt.Fprintf(out, "%s %g\n", name, m.GetCounter().GetValue())
			case m.GetHistogram() != nil:
				h := m.GetHistogram()
				fmt.Fprintf(out, "%s count=%d sum=%g\n", name, h.GetSampleCount(), h.GetSampleSum())
			}
		}
	}
	return nil
}
