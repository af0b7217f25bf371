package task

import "time"

// Change is an update to a nullable field. The zero value leaves the field
// untouched; Set overwrites it and Clear removes it.
type Change[T any] struct {
	set   bool
	value *T
}

// Set returns a change that overwrites the field with v.
func Set[T any](v T) Change[T] {
	return Change[T]{set: true, value: &v}
}

// Clear returns a change that removes the field's value.
func Clear[T any]() Change[T] {
	return Change[T]{set: true}
}

// SetPtr returns Set(*p) for a non-nil p and Clear otherwise.
func SetPtr[T any](p *T) Change[T] {
	if p == nil {
		return Clear[T]()
	}
	return Set(*p)
}

// IsSet reports whether the change touches the field.
func (c Change[T]) IsSet() bool { return c.set }

// Value returns the new value; nil means the field is cleared.
func (c Change[T]) Value() *T { return c.value }

func (c Change[T]) apply(dst **T) {
	if !c.set {
		return
	}
	*dst = clonePtr(c.value)
}

// Patch is a partial update. Nil pointers and zero Changes leave fields as
// they are; anything present overwrites, including an explicit Clear.
type Patch struct {
	Title           *string
	IsDone          *bool
	ScheduledDate   Change[time.Time]
	ScheduledTime   Change[string]
	DeadlineDate    Change[time.Time]
	ReminderEnabled *bool
	Notes           Change[string]
}

// Empty reports whether the patch touches no field.
func (p Patch) Empty() bool {
	return p.Title == nil && p.IsDone == nil && p.ReminderEnabled == nil &&
		!p.ScheduledDate.set && !p.ScheduledTime.set && !p.DeadlineDate.set && !p.Notes.set
}

// Apply merges the patch into t. Calendar dates are normalized to local
// midnight. Timestamps are left to the caller.
func (p Patch) Apply(t *Task) {
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.IsDone != nil {
		t.IsDone = *p.IsDone
	}
	if p.ReminderEnabled != nil {
		t.ReminderEnabled = *p.ReminderEnabled
	}
	p.ScheduledTime.apply(&t.ScheduledTime)
	p.Notes.apply(&t.Notes)

	if p.ScheduledDate.set {
		t.ScheduledDate = dayPtr(p.ScheduledDate.value)
	}
	if p.DeadlineDate.set {
		t.DeadlineDate = dayPtr(p.DeadlineDate.value)
	}
}
