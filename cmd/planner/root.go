package main

import (
	"github.com/spf13/cobra"

	"planner/internal/version"
)

var (
	// homeFlag is the --home flag value
	homeFlag string
	// verbosity counts -v flags
	verbosity int
	quietFlag bool
	// formatFlag selects human or json output
	formatFlag string
)

var rootCmd = &cobra.Command{
	Use:   "planner",
	Short: "planner - a personal day planner",
	Long: `planner keeps a local list of tasks and shows them grouped by date:
overdue, scheduled for the selected period, upcoming deadlines and backlog.

Tasks live in a local store under the planner home directory
(--home, $PLANNER_HOME or ~/.planner).`,
	Version:       version.Version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.SetVersionTemplate("planner version {{.Version}}\n")
	rootCmd.PersistentFlags().StringVar(&homeFlag, "home", "", "Planner home directory")
	rootCmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v", "Increase log verbosity (-v info, -vv debug)")
	rootCmd.PersistentFlags().BoolVarP(&quietFlag, "quiet", "q", false, "Suppress log output")
	rootCmd.PersistentFlags().StringVar(&formatFlag, "format", string(FormatHuman), "Output format (human, json)")
}
