package main

import (
	"strings"

	"github.com/spf13/cobra"

	"planner/internal/agenda"
	"planner/internal/errors"
)

var (
	taskDate          string
	taskTime          string
	taskDeadline      string
	taskNotes         string
	taskReminder      bool
	taskTitle         string
	taskClearDate     bool
	taskClearDeadline bool
	taskClearNotes    bool
)

var addCmd = &cobra.Command{
	Use:   "add TITLE...",
	Short: "Add a task",
	Long: `Add a new task. Without dates the task goes to the backlog.

Dates accept YYYY-MM-DD, today, tomorrow or yesterday.

Examples:
  planner add Buy milk
  planner add Dentist --date 2024-06-15 --time 09:30 --reminder
  planner add Tax return --deadline 2024-07-31`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAdd,
}

var editCmd = &cobra.Command{
	Use:   "edit ID",
	Short: "Edit a task",
	Long: `Change fields of an existing task. Only the given flags are applied.
ID may be any unique prefix of the task id.

Examples:
  planner edit 1a2b --title "Call the bank"
  planner edit 1a2b --deadline 2024-07-01
  planner edit 1a2b --clear-date --clear-notes`,
	Args: cobra.ExactArgs(1),
	RunE: runEdit,
}

var doneCmd = &cobra.Command{
	Use:   "done ID",
	Short: "Toggle a task between done and not done",
	Args:  cobra.ExactArgs(1),
	RunE:  runDone,
}

var rmCmd = &cobra.Command{
	Use:     "rm ID",
	Aliases: []string{"delete"},
	Short:   "Delete a task",
	Args:    cobra.ExactArgs(1),
	RunE:    runRm,
}

func init() {
	for _, cmd := range []*cobra.Command{addCmd, editCmd} {
		cmd.Flags().StringVar(&taskDate, "date", "", "Scheduled date")
		cmd.Flags().StringVar(&taskTime, "time", "", "Scheduled time (HH:MM)")
		cmd.Flags().StringVar(&taskDeadline, "deadline", "", "Deadline date")
		cmd.Flags().StringVar(&taskNotes, "notes", "", "Free-form notes")
		cmd.Flags().BoolVar(&taskReminder, "reminder", false, "Enable a reminder")
	}
	editCmd.Flags().StringVar(&taskTitle, "title", "", "New title")
	editCmd.Flags().BoolVar(&taskClearDate, "clear-date", false, "Remove the scheduled date and time")
	editCmd.Flags().BoolVar(&taskClearDeadline, "clear-deadline", false, "Remove the deadline")
	editCmd.Flags().BoolVar(&taskClearNotes, "clear-notes", false, "Remove the notes")

	rootCmd.AddCommand(addCmd, editCmd, doneCmd, rmCmd)
}

func runAdd(cmd *cobra.Command, args []string) error {
	form := agenda.Form{
		Title:           strings.Join(args, " "),
		ScheduledTime:   taskTime,
		ReminderEnabled: taskReminder,
		Notes:           taskNotes,
	}
	var err error
	if taskDate != "" {
		if form.ScheduledDate, err = parseDayKey(taskDate); err != nil {
			return err
		}
	}
	if taskDeadline != "" {
		if form.DeadlineDate, err = parseDayKey(taskDeadline); err != nil {
			return err
		}
	}

	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	saved, err := a.Agenda.Save(newContext(), "", form)
	if err != nil {
		return err
	}
	return printResponse(cmd, &TaskResponseCLI{Action: "added", ID: saved.ID, Task: saved})
}

func runEdit(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	ctx := newContext()
	current, err := resolveTask(ctx, a.Repo, args[0])
	if err != nil {
		return err
	}

	form := agenda.FormFromTask(current)
	flags := cmd.Flags()
	if flags.Changed("title") {
		form.Title = taskTitle
	}
	if flags.Changed("date") {
		if form.ScheduledDate, err = parseDayKey(taskDate); err != nil {
			return err
		}
	}
	if flags.Changed("time") {
		form.ScheduledTime = taskTime
	}
	if flags.Changed("deadline") {
		if form.DeadlineDate, err = parseDayKey(taskDeadline); err != nil {
			return err
		}
		// With exclusive dates the newly given deadline replaces the
		// existing scheduled date instead of being dropped.
		if a.Config.Agenda.ExclusiveDates && !flags.Changed("date") {
			form.ScheduledDate, form.ScheduledTime = "", ""
		}
	}
	if flags.Changed("notes") {
		form.Notes = taskNotes
	}
	if flags.Changed("reminder") {
		form.ReminderEnabled = taskReminder
	}
	if taskClearDate {
		form.ScheduledDate, form.ScheduledTime = "", ""
	}
	if taskClearDeadline {
		form.DeadlineDate = ""
	}
	if taskClearNotes {
		form.Notes = ""
	}

	saved, err := a.Agenda.Save(ctx, current.ID, form)
	if err != nil {
		return err
	}
	return printResponse(cmd, &TaskResponseCLI{Action: "updated", ID: saved.ID, Task: saved})
}

func runDone(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	ctx := newContext()
	current, err := resolveTask(ctx, a.Repo, args[0])
	if err != nil {
		return err
	}
	toggled, err := a.Agenda.Toggle(ctx, current.ID)
	if err != nil {
		return err
	}

	action := "reopened"
	if toggled.IsDone {
		action = "done"
	}
	return printResponse(cmd, &TaskResponseCLI{Action: action, ID: toggled.ID, Task: toggled})
}

func runRm(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	// Removing a task that is already gone succeeds.
	ctx := newContext()
	id := args[0]
	current, err := resolveTask(ctx, a.Repo, id)
	switch {
	case err == nil:
		id = current.ID
	case errors.CodeOf(err) != errors.TaskNotFound:
		return err
	}
	if err := a.Agenda.Delete(ctx, id); err != nil {
		return err
	}
	return printResponse(cmd, &TaskResponseCLI{Action: "removed", ID: id})
}
