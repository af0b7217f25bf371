package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"

	"planner/internal/task"
)

const taskColumns = `id, title, is_done, created_at, updated_at, scheduled_date,
	scheduled_time, deadline_date, reminder_enabled, notes`

// TaskStore is the SQLite Store. It owns its DB and closes it on Close.
type TaskStore struct {
	db     *DB
	closed atomic.Bool
}

var _ Store = (*TaskStore)(nil)

// NewTaskStore wraps an open database.
func NewTaskStore(db *DB) *TaskStore {
	return &TaskStore{db: db}
}

// OpenTaskStore opens the database at path and returns a store over it.
func OpenTaskStore(path string, logger *slog.Logger, opts ...DBOption) (*TaskStore, error) {
	db, err := Open(path, logger, opts...)
	if err != nil {
		return nil, err
	}
	return NewTaskStore(db), nil
}

// Put upserts r in a single statement.
func (s *TaskStore) Put(ctx context.Context, r task.Record) error {
	if s.closed.Load() {
		return ErrClosed
	}
	_, err := s.db.conn.ExecContext(ctx, `
		INSERT INTO tasks (`+taskColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			is_done = excluded.is_done,
			created_at = excluded.created_at,
			updated_at = excluded.updated_at,
			scheduled_date = excluded.scheduled_date,
			scheduled_time = excluded.scheduled_time,
			deadline_date = excluded.deadline_date,
			reminder_enabled = excluded.reminder_enabled,
			notes = excluded.notes
	`,
		r.ID, r.Title, r.IsDone, r.CreatedAt, r.UpdatedAt,
		nullString(r.ScheduledDate), nullString(r.ScheduledTime), nullString(r.DeadlineDate),
		r.ReminderEnabled, nullString(r.Notes),
	)
	if err != nil {
		return fmt.Errorf("failed to put task %s: %w", r.ID, err)
	}
	return nil
}

// Get returns the record with id, or (nil, nil) when there is none.
func (s *TaskStore) Get(ctx context.Context, id string) (*task.Record, error) {
	if s.closed.Load() {
		return nil, ErrClosed
	}
	row := s.db.conn.QueryRowContext(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id = ?`, id)
	r, err := scanTask(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get task %s: %w", id, err)
	}
	return r, nil
}

// Delete removes the record with id and reports whether it existed.
func (s *TaskStore) Delete(ctx context.Context, id string) (bool, error) {
	if s.closed.Load() {
		return false, ErrClosed
	}
	res, err := s.db.conn.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete task %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to delete task %s: %w", id, err)
	}
	return n > 0, nil
}

// Scan returns every record ordered by created_at.
func (s *TaskStore) Scan(ctx context.Context) ([]task.Record, error) {
	if s.closed.Load() {
		return nil, ErrClosed
	}
	rows, err := s.db.conn.QueryContext(ctx, `SELECT `+taskColumns+` FROM tasks ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to scan tasks: %w", err)
	}
	defer rows.Close()

	var out []task.Record
	for rows.Next() {
		r, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan tasks: %w", err)
		}
		out = append(out, *r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan tasks: %w", err)
	}
	return out, nil
}

// Close closes the underlying database. It is safe to call more than once.
func (s *TaskStore) Close() error {
	if s.closed.Swap(true) {
		return nil
	}
	return s.db.Close()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(row rowScanner) (*task.Record, error) {
	var (
		r                                      task.Record
		scheduledDate, scheduledTime, deadline sql.NullString
		notes                                  sql.NullString
	)
	err := row.Scan(
		&r.ID, &r.Title, &r.IsDone, &r.CreatedAt, &r.UpdatedAt,
		&scheduledDate, &scheduledTime, &deadline, &r.ReminderEnabled, &notes,
	)
	if err != nil {
		return nil, err
	}
	r.ScheduledDate = fromNull(scheduledDate)
	r.ScheduledTime = fromNull(scheduledTime)
	r.DeadlineDate = fromNull(deadline)
	r.Notes = fromNull(notes)
	return &r, nil
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func fromNull(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}
