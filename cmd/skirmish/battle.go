package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/zeusync/skirmish/internal/core/bt"
	"github.com/zeusync/skirmish/internal/core/engine"
	"github.com/zeusync/skirmish/internal/core/events/bus"
	"github.com/zeusync/skirmish/internal/injector"
	"github.com/zeusync/skirmish/pkg/encoding"
)

var battleCmd = &cobra.Command{
	Use:   "battle",
	Short: "Play one battle and print every turn",
	RunE: func(cmd *cobra.Command, _ []string) error {
		s, err := settings(cmd)
		if err != nil {
			return err
		}
		app, err := injector.InitializeApp(s)
		if err != nil {
			return err
		}
		roster, err := loadRoster(cmd)
		if err != nil {
			return err
		}
		w, err := roster.Populate(app.Table, roster.Seed)
		if err != nil {
			return err
		}

		names := make(map[string]string)
		for _, st := range w.Snapshot() {
			names[st.ID.String()] = st.Name
		}
		name := func(id fmt.Stringer) string {
			if n, ok := names[id.String()]; ok {
				return n
			}
			return id.String()[:8]
		}

		out := cmd.OutOrStdout()
		events := bus.New()
		_, err = events.Subscribe(engine.EventTurnFinished, func(ev bus.Event) error {
			rep := ev.Data().(engine.TurnReport)
			fmt.Fprintf(out, "round %d: %s (%s)", rep.Turn.Round, name(rep.Turn.Combatant), rep.Turn.Archetype)
			if rep.Abandoned {
				fmt.Fprint(out, " gave up")
			}
			for _, c := range rep.Changes {
				switch c.Kind {
				case engine.ChangeDamage:
					fmt.Fprintf(out, ", hits %s for %d", name(c.Target), c.Amount)
				case engine.ChangeHeal:
					fmt.Fprintf(out, ", heals %s for %d", name(c.Target), c.Amount)
				case engine.ChangeStatus:
					fmt.Fprintf(out, ", %s %s for %d turns", c.Status, name(c.Target), c.Amount)
				case engine.ChangeSummon:
					names[c.Target.String()] = "minion-" + c.Target.Short()
					fmt.Fprintf(out, ", summons %s", name(c.Target))
				}
			}
			fmt.Fprintln(out)
			return nil
		})
		if err != nil {
			return err
		}

		journalFormat, _ := cmd.Flags().GetString("journal")
		var format encoding.Format
		if journalFormat != "" {
			if format, err = encoding.ParseFormat(journalFormat); err != nil {
				return err
			}
		}

		journal := bt.NewJournal(roster.MaxTurns)
		driver := bt.NewDriver(
			bt.WithLogger(app.Logger),
			bt.WithRecorder(app.Recorder),
			bt.WithJournal(journal),
		)
		o, err := engine.New(w, app.Book,
			engine.WithBus(events),
			engine.WithDriver(driver),
			engine.WithLogger(app.Logger),
			engine.WithRecorder(app.Recorder),
		).Run(cmd.Context(), roster.MaxTurns)
		if err != nil {
			return err
		}
		switch {
		case !o.Over:
			fmt.Fprintf(out, "no winner after %d turns\n", o.Turns)
		case o.Draw:
			fmt.Fprintf(out, "draw after %d turns\n", o.Turns)
		default:
			fmt.Fprintf(out, "%s win after %d turns (%d rounds)\n", o.Winner, o.Turns, o.Rounds)
		}
		switch {
		case format.Structured():
			return encoding.Write(out, format, journal.Records())
		case format == encoding.Text:
			for _, r := range journal.Records() {
				fmt.Fprintf(out, "decision %s by %s: %s, %d iterations, %d actions",
					r.Tree, name(r.Actor), r.Status, r.Iterations, r.Actions)
				switch {
				case r.Abandoned:
					fmt.Fprint(out, ", abandoned")
				case r.Cancelled:
					fmt.Fprint(out, ", cancelled")
				}
				fmt.Fprintln(out)
			}
		}
		return nil
	},
}

func init() {
	flags := battleCmd.Flags()
	flags.String("roster", "", "Roster YAML; the opening encounter when empty")
	flags.Int64("seed", 0, "Battle seed, overriding the roster")
	flags.Int("max-turns", 0, "Turn limit, overriding the roster")
	flags.String("journal", "", "Also print every decision record as text, json or yaml")
	rootCmd.AddCommand(battleCmd)
}
