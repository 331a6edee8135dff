package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/zeusync/skirmish/internal/injector"
)

var rootCmd = &cobra.Command{
	Use:   "skirmish",
	Short: "Skirmish runs turn-based battles driven by behavior trees",
	Long: `Skirmish plays battles between companions and enemies whose turns are decided
by per-archetype behavior trees. Trees and balance numbers can be replaced with
YAML or JSON files.`,
	SilenceUsage: true,
}

// Execute runs the root command until it finishes or the process is interrupted.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.String("log-level", "warn", "Log level: debug, info, warn, error or silent")
	flags.BoolP("verbose", "v", false, "Human readable console logs")
	flags.String("table", "", "YAML file overriding damage, heal and archetype numbers")
	flags.StringToString("tree", nil, "Replace an archetype tree with a config file, e.g. --tree archer=archer.yaml")
}

func settings(cmd *cobra.Command) (injector.Settings, error) {
	flags := cmd.Flags()
	level, err := flags.GetString("log-level")
	if err != nil {
		return injector.Settings{}, err
	}
	verbose, err := flags.GetBool("verbose")
	if err != nil {
		return injector.Settings{}, err
	}
	table, err := flags.GetString("table")
	if err != nil {
		return injector.Settings{}, err
	}
	trees, err := flags.GetStringToString("tree")
	if err != nil {
		return injector.Settings{}, err
	}
	return injector.Settings{Level: level, Verbose: verbose, TablePath: table, Trees: trees}, nil
}
