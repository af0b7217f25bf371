package main

import (
	"github.com/spf13/cobra"

	"planner/internal/version"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		info := version.Current()
		return printResponse(cmd, &info)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
