package main

import (
	"github.com/spf13/cobra"

	"planner/internal/agenda"
	"planner/internal/date"
)

var (
	showDay   bool
	showWeek  bool
	showMonth bool
	showDate  string
	showAll   bool
)

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Show tasks for a day, week or month",
	Long: `Show tasks grouped relative to the selected period:

  Overdue             a scheduled date or deadline before the period
  Scheduled           a scheduled date or deadline inside the period
  Upcoming deadlines  a deadline after the period
  Backlog             no dates at all

Done tasks are hidden unless --all is given.

Examples:
  planner show
  planner show --week --date 2024-06-12
  planner show --month --all --format json`,
	Args: cobra.NoArgs,
	RunE: runShow,
}

var todayCmd = &cobra.Command{
	Use:   "today",
	Short: "Show today's tasks",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return renderView(cmd, agenda.ModeDay, "")
	},
}

func init() {
	showCmd.Flags().BoolVar(&showDay, "day", false, "Show a single day (default)")
	showCmd.Flags().BoolVar(&showWeek, "week", false, "Show the week containing the date")
	showCmd.Flags().BoolVar(&showMonth, "month", false, "Show the month containing the date")
	showCmd.MarkFlagsMutuallyExclusive("day", "week", "month")
	showCmd.Flags().StringVar(&showDate, "date", "", "Selected date (default: today)")
	showCmd.Flags().BoolVar(&showAll, "all", false, "Include done tasks")
	todayCmd.Flags().BoolVar(&showAll, "all", false, "Include done tasks")

	rootCmd.AddCommand(showCmd, todayCmd)
}

func runShow(cmd *cobra.Command, args []string) error {
	mode := agenda.ModeDay
	switch {
	case showWeek:
		mode = agenda.ModeWeek
	case showMonth:
		mode = agenda.ModeMonth
	}
	return renderView(cmd, mode, showDate)
}

func renderView(cmd *cobra.Command, mode agenda.Mode, day string) error {
	selected, err := parseDay(day)
	if err != nil {
		return err
	}

	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	a.Agenda.SetMode(mode)
	a.Agenda.Select(selected)
	if showAll {
		a.Agenda.SetIncludeDone(true)
	}

	view, err := a.Agenda.Load(newContext())
	if err != nil {
		return err
	}
	return printResponse(cmd, &ViewResponseCLI{
		Mode:    view.Mode,
		Label:   view.Label,
		Start:   date.Key(view.Start),
		End:     date.Key(view.End),
		Buckets: view.Buckets,
	})
}
