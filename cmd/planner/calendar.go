package main

import (
	"github.com/spf13/cobra"

	"planner/internal/date"
)

var calendarDate string

var calendarCmd = &cobra.Command{
	Use:   "calendar",
	Short: "Show a month grid with task counts",
	Long: `Show the month containing --date (default: today) with the number of
scheduled tasks (•) and deadlines (!) on each day. Done tasks are counted.`,
	Args: cobra.NoArgs,
	RunE: runCalendar,
}

func init() {
	calendarCmd.Flags().StringVar(&calendarDate, "date", "", "Any day of the month to show")
	rootCmd.AddCommand(calendarCmd)
}

func runCalendar(cmd *cobra.Command, args []string) error {
	selected, err := parseDay(calendarDate)
	if err != nil {
		return err
	}

	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	counts, err := a.Repo.GetTasksForCalendar(newContext())
	if err != nil {
		return err
	}
	month := counts.Month(selected)
	weekStart := a.Config.WeekStartDay()
	today := date.Today(now)

	grid := date.MonthGrid(selected, weekStart)
	weeks := make([][]CalendarDayCLI, 0, len(grid))
	for _, row := range grid {
		cells := make([]CalendarDayCLI, 0, len(row))
		for _, d := range row {
			inMonth := d.Month() == selected.Month()
			cell := CalendarDayCLI{
				Date:    date.Key(d),
				InMonth: inMonth,
				Today:   date.Same(d, today),
			}
			if inMonth {
				cell.Scheduled = month.Scheduled.Get(d)
				cell.Deadlines = month.Deadlines.Get(d)
			}
			cells = append(cells, cell)
		}
		weeks = append(weeks, cells)
	}

	return printResponse(cmd, &CalendarResponseCLI{
		Month:     selected.Format("2006-01"),
		Label:     selected.Format("January 2006"),
		WeekStart: weekStart.String(),
		Weeks:     weeks,
		Scheduled: month.Scheduled,
		Deadlines: month.Deadlines,
	})
}
