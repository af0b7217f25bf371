package agenda

import (
	stderrors "errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"planner/internal/date"
	"planner/internal/errors"
	"planner/internal/task"
)

// TimeLayout is the layout of Form.ScheduledTime.
const TimeLayout = "15:04"

var formValidate *validator.Validate

func init() {
	formValidate = validator.New()
	_ = formValidate.RegisterValidation("notblank", validateNotBlank)
	_ = formValidate.RegisterValidation("daykey", validateDayKey)
}

func validateNotBlank(fl validator.FieldLevel) bool {
	return strings.TrimSpace(fl.Field().String()) != ""
}

func validateDayKey(fl validator.FieldLevel) bool {
	_, err := date.Parse(fl.Field().String())
	return err == nil
}

// Form is the create/edit input for a task. Dates are YYYY-MM-DD keys and
// the time is HH:mm; empty strings mean "not set".
type Form struct {
	Title           string `json:"title" validate:"notblank"`
	ScheduledDate   string `json:"scheduled_date,omitempty" validate:"omitempty,daykey"`
	ScheduledTime   string `json:"scheduled_time,omitempty" validate:"omitempty,datetime=15:04"`
	DeadlineDate    string `json:"deadline_date,omitempty" validate:"omitempty,daykey"`
	ReminderEnabled bool   `json:"reminder_enabled"`
	Notes           string `json:"notes,omitempty"`
}

// FormFromTask fills a form with the editable fields of t.
func FormFromTask(t *task.Task) Form {
	f := Form{Title: t.Title, ReminderEnabled: t.ReminderEnabled}
	if t.ScheduledDate != nil {
		f.ScheduledDate = date.Key(*t.ScheduledDate)
	}
	if t.ScheduledTime != nil {
		f.ScheduledTime = *t.ScheduledTime
	}
	if t.DeadlineDate != nil {
		f.DeadlineDate = date.Key(*t.DeadlineDate)
	}
	if t.Notes != nil {
		f.Notes = *t.Notes
	}
	return f
}

// Validate checks the form. Failures are INVALID_INPUT errors whose details
// map each offending field to the rule it broke.
func (f Form) Validate() error {
	err := formValidate.Struct(f)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !stderrors.As(err, &verrs) {
		return errors.New(errors.InvalidInput, "invalid task form", err)
	}
	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		fields[fe.Field()] = fe.Tag()
	}
	return errors.New(errors.InvalidInput, "invalid task form", err).WithDetails(fields)
}

// fields is the normalized, typed content of a validated form.
type fields struct {
	title     string
	scheduled *time.Time
	at        *string
	deadline  *time.Time
	reminder  bool
	notes     *string
}

// normalize validates f and converts it to typed values. Blank notes become
// absent. A time without a scheduled date is dropped. With exclusive set,
// a scheduled date clears the deadline.
func (f Form) normalize(exclusive bool) (fields, error) {
	if err := f.Validate(); err != nil {
		return fields{}, err
	}

	out := fields{title: strings.TrimSpace(f.Title), reminder: f.ReminderEnabled}
	if f.ScheduledDate != "" {
		d, _ := date.Parse(f.ScheduledDate)
		out.scheduled = &d
		if f.ScheduledTime != "" {
			out.at = task.Ptr(f.ScheduledTime)
		}
	}
	if f.DeadlineDate != "" {
		d, _ := date.Parse(f.DeadlineDate)
		out.deadline = &d
	}
	if exclusive && out.scheduled != nil {
		out.deadline = nil
	}
	if notes := strings.TrimSpace(f.Notes); notes != "" {
		out.notes = &notes
	}
	return out, nil
}

func (x fields) draft() task.Draft {
	return task.Draft{
		Title:           x.title,
		ScheduledDate:   x.scheduled,
		ScheduledTime:   x.at,
		DeadlineDate:    x.deadline,
		ReminderEnabled: x.reminder,
		Notes:           x.notes,
	}
}

// patch replaces every editable field and leaves IsDone alone.
func (x fields) patch() task.Patch {
	return task.Patch{
		Title:           task.Ptr(x.title),
		ScheduledDate:   task.SetPtr(x.scheduled),
		ScheduledTime:   task.SetPtr(x.at),
		DeadlineDate:    task.SetPtr(x.deadline),
		ReminderEnabled: task.Ptr(x.reminder),
		Notes:           task.SetPtr(x.notes),
	}
}
