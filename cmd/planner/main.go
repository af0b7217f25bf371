package main

import (
	"fmt"
	"os"

	"planner/internal/errors"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, renderError(err))
		os.Exit(errors.ExitCode(err))
	}
}
