package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/zeusync/skirmish/internal/core/battle"
	"github.com/zeusync/skirmish/internal/injector"
)

var treesCmd = &cobra.Command{
	Use:   "trees [archetype...]",
	Short: "Print the decision tree of each archetype",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := settings(cmd)
		if err != nil {
			return err
		}
		app, err := injector.InitializeApp(s)
		if err != nil {
			return err
		}

		archetypes := app.Book.Archetypes()
		if len(args) > 0 {
			archetypes = archetypes[:0]
			for _, arg := range args {
				a, err := battle.ParseArchetype(arg)
				if err != nil {
					return err
				}
				archetypes = append(archetypes, a)
			}
		}

		out := cmd.OutOrStdout()
		for _, a := range archetypes {
			tree, err := app.Book.Tree(a)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "# %d nodes, depth %d\n%s\n", tree.Size(), tree.Depth(), tree)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(treesCmd)
}
