package main

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"strings"

	"planner/internal/date"
	"planner/internal/errors"
	"planner/internal/task"
	"planner/internal/version"
)

// OutputFormat represents the output format type
type OutputFormat string

const (
	FormatJSON  OutputFormat = "json"
	FormatHuman OutputFormat = "human"
)

// FormatResponse formats a response according to the specified format
func FormatResponse(resp interface{}, format OutputFormat) (string, error) {
	switch format {
	case FormatJSON:
		return formatJSON(resp)
	case FormatHuman:
		return formatHuman(resp)
	default:
		return "", fmt.Errorf("unsupported format: %s", format)
	}
}

// formatJSON formats the response as JSON
func formatJSON(resp interface{}) (string, error) {
	data, err := json.MarshalIndent(resp, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal JSON: %w", err)
	}
	return string(data), nil
}

// formatHuman formats the response in human-readable format
func formatHuman(resp interface{}) (string, error) {
	switch v := resp.(type) {
	case *TaskResponseCLI:
		return formatTaskHuman(v), nil
	case *ViewResponseCLI:
		return formatViewHuman(v), nil
	case *CalendarResponseCLI:
		return formatCalendarHuman(v), nil
	case *TransferResponseCLI:
		return formatTransferHuman(v), nil
	case *version.BuildInfo:
		return fmt.Sprintf("planner version %s\nCommit: %s\nBuilt: %s\nGo: %s",
			v.Version, v.Commit, v.BuildDate, v.GoVersion), nil
	default:
		// For unknown types, fall back to JSON
		return formatJSON(resp)
	}
}

func formatTaskHuman(resp *TaskResponseCLI) string {
	var b strings.Builder
	switch resp.Action {
	case "removed":
		b.WriteString(fmt.Sprintf("Removed %s\n", shortID(resp.ID)))
		return b.String()
	case "done":
		b.WriteString("✓ Completed\n")
	case "reopened":
		b.WriteString("○ Reopened\n")
	case "added":
		b.WriteString("Added\n")
	default:
		b.WriteString("Updated\n")
	}
	if resp.Task != nil {
		b.WriteString(taskLine(resp.Task))
		b.WriteString("\n")
		if resp.Task.Notes != nil {
			for _, line := range strings.Split(*resp.Task.Notes, "\n") {
				b.WriteString("      " + styles.Muted.Render(line) + "\n")
			}
		}
	}
	return b.String()
}

func formatViewHuman(resp *ViewResponseCLI) string {
	var b strings.Builder

	b.WriteString(styles.Title.Render(resp.Label) + "\n")
	b.WriteString(strings.Repeat("─", 50) + "\n")

	if resp.Buckets.Len() == 0 {
		b.WriteString(styles.Muted.Render("Nothing planned") + "\n")
		return b.String()
	}

	section := func(title string, tasks []*task.Task) {
		if len(tasks) == 0 {
			return
		}
		b.WriteString(fmt.Sprintf("\n%s (%d)\n", styles.Section.Render(title), len(tasks)))
		for _, t := range tasks {
			b.WriteString(taskLine(t) + "\n")
		}
	}
	section("Overdue", resp.Buckets.Overdue)
	section("Scheduled", resp.Buckets.Scheduled)
	section("Upcoming deadlines", resp.Buckets.Deadlines)
	section("Backlog", resp.Buckets.Backlog)
	return b.String()
}

// taskLine renders "  ○ 1a2b3c4d  Title  Jun 15 09:00  due Jun 20 ⏰".
func taskLine(t *task.Task) string {
	mark, title := "○", t.Title
	if t.IsDone {
		mark, title = "✓", styles.Done.Render(t.Title)
	}
	if t.Title == "" {
		title = styles.Muted.Render("(untitled)")
	}

	parts := []string{fmt.Sprintf("  %s %s  %s", mark, styles.Muted.Render(shortID(t.ID)), title)}
	if t.ScheduledDate != nil {
		when := t.ScheduledDate.Format("Jan 2")
		if t.ScheduledTime != nil {
			when += " " + *t.ScheduledTime
		}
		parts = append(parts, when)
	}
	if t.DeadlineDate != nil {
		parts = append(parts, styles.Deadline.Render("due "+t.DeadlineDate.Format("Jan 2")))
	}
	if t.ReminderEnabled {
		parts = append(parts, "⏰")
	}
	return strings.Join(parts, "  ")
}

func formatCalendarHuman(resp *CalendarResponseCLI) string {
	var b strings.Builder

	b.WriteString(styles.Title.Render(resp.Label) + "\n")
	if len(resp.Weeks) > 0 {
		for _, d := range resp.Weeks[0] {
			day, _ := date.Parse(d.Date)
			b.WriteString(fmt.Sprintf("%-9s", day.Format("Mon")))
		}
		b.WriteString("\n")
	}

	for _, week := range resp.Weeks {
		for _, d := range week {
			day, _ := date.Parse(d.Date)
			num := fmt.Sprintf("%2d", day.Day())
			switch {
			case !d.InMonth:
				num = styles.Muted.Render(num)
			case d.Today:
				num = styles.Today.Render(num)
			}
			cell := num + " " + badge(d)
			b.WriteString(cell + strings.Repeat(" ", max(0, 9-visibleWidth(d))))
		}
		b.WriteString("\n")
	}

	b.WriteString(styles.Muted.Render("• scheduled  ! deadline") + "\n")
	return b.String()
}

func badge(d CalendarDayCLI) string {
	if !d.InMonth {
		return ""
	}
	var s string
	if d.Scheduled > 0 {
		s += fmt.Sprintf("•%d", d.Scheduled)
	}
	if d.Deadlines > 0 {
		s += styles.Deadline.Render(fmt.Sprintf("!%d", d.Deadlines))
	}
	return s
}

// visibleWidth is the printed width of a calendar cell without styling.
func visibleWidth(d CalendarDayCLI) int {
	w := 3
	if !d.InMonth {
		return w
	}
	if d.Scheduled > 0 {
		w += 1 + len(fmt.Sprint(d.Scheduled))
	}
	if d.Deadlines > 0 {
		w += 1 + len(fmt.Sprint(d.Deadlines))
	}
	return w
}

func formatTransferHuman(resp *TransferResponseCLI) string {
	target := resp.Path
	if target == "" {
		target = "stdout"
	}
	verb := "Exported"
	prep := "to"
	if resp.Action == "imported" {
		verb, prep = "Imported", "from"
	}
	s := fmt.Sprintf("%s %d tasks %s %s (%s", verb, resp.Tasks, prep, target, resp.Format)
	if resp.Compressed {
		s += ", zstd"
	}
	s += ")"
	if resp.Overwritten > 0 {
		s += fmt.Sprintf(", %d replaced existing tasks", resp.Overwritten)
	}
	return s
}

// renderError formats a command error for the terminal, including any
// suggested fixes.
func renderError(err error) string {
	var b strings.Builder
	b.WriteString(styles.Error.Render("Error:") + " " + err.Error())

	var pe *errors.PlannerError
	if stderrors.As(err, &pe) && len(pe.SuggestedFixes) > 0 {
		b.WriteString("\n  Suggested fixes:")
		for _, fix := range pe.SuggestedFixes {
			b.WriteString("\n    - " + fix.Description)
			if fix.Command != "" {
				b.WriteString("\n      $ " + fix.Command)
			}
		}
	}
	return b.String()
}
