package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"planner/internal/app"
	"planner/internal/config"
	"planner/internal/date"
	"planner/internal/errors"
	"planner/internal/repository"
	"planner/internal/slogutil"
	"planner/internal/task"
)

// now is the CLI clock; tests pin it.
var now = time.Now

// logConsole receives console log output; tests redirect it.
var logConsole io.Writer = os.Stderr

// openApp resolves the home directory and opens the planner.
func openApp() (*app.App, error) {
	home, err := config.ResolveHome(homeFlag)
	if err != nil {
		return nil, errors.New(errors.ConfigInvalid, "resolve home directory", err)
	}
	level := slogutil.LevelFromVerbosity(verbosity, quietFlag)
	return app.Open(app.Options{
		Home:         home,
		Console:      logConsole,
		ConsoleLevel: &level,
	})
}

// newContext creates a new context for command execution.
func newContext() context.Context {
	return context.Background()
}

// outputFormat validates the --format flag.
func outputFormat() (OutputFormat, error) {
	switch f := OutputFormat(strings.ToLower(formatFlag)); f {
	case FormatHuman, FormatJSON:
		return f, nil
	default:
		return "", errors.New(errors.InvalidInput, fmt.Sprintf("unsupported format: %s", formatFlag), nil)
	}
}

// printResponse formats resp with the --format flag and writes it to the
// command's output.
func printResponse(cmd *cobra.Command, resp interface{}) error {
	format, err := outputFormat()
	if err != nil {
		return err
	}
	out, err := FormatResponse(resp, format)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), strings.TrimRight(out, "\n"))
	return nil
}

// parseDay accepts today, tomorrow, yesterday or a YYYY-MM-DD key.
func parseDay(s string) (time.Time, error) {
	today := date.Today(now)
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "today":
		return today, nil
	case "tomorrow":
		return date.AddDays(today, 1), nil
	case "yesterday":
		return date.AddDays(today, -1), nil
	}
	d, err := date.Parse(s)
	if err != nil {
		return time.Time{}, errors.New(errors.InvalidDate, fmt.Sprintf("cannot parse date %q", s), err)
	}
	return d, nil
}

// parseDayKey is parseDay returning the YYYY-MM-DD form.
func parseDayKey(s string) (string, error) {
	d, err := parseDay(s)
	if err != nil {
		return "", err
	}
	return date.Key(d), nil
}

// resolveTask finds a task by full id or unique id prefix.
func resolveTask(ctx context.Context, repo *repository.Repository, ref string) (*task.Task, error) {
	t, err := repo.GetByID(ctx, ref)
	if err != nil {
		return nil, err
	}
	if t != nil {
		return t, nil
	}

	all, err := repo.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	var matches []*task.Task
	if ref != "" {
		for _, c := range all {
			if strings.HasPrefix(c.ID, ref) {
				matches = append(matches, c)
			}
		}
	}

	switch len(matches) {
	case 1:
		return matches[0], nil
	case 0:
		return nil, errors.New(errors.TaskNotFound, fmt.Sprintf("task %s not found", ref), repository.ErrNotFound).
			WithDetails(map[string]string{"id": ref})
	default:
		ids := make([]string, len(matches))
		for i, m := range matches {
			ids[i] = m.ID
		}
		return nil, errors.New(errors.InvalidInput, fmt.Sprintf("id prefix %q matches %d tasks", ref, len(matches)), nil).
			WithDetails(map[string][]string{"matches": ids})
	}
}

// shortID trims a task id for display.
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
