// Package memstore is an in-memory storage.Store for tests and throwaway
// sessions. Nothing survives Close.
package memstore

import (
	"context"
	"sync"

	"planner/internal/storage"
	"planner/internal/task"
)

// Store keeps records in a map guarded by a RWMutex.
type Store struct {
	mu      sync.RWMutex
	records map[string]task.Record
	closed  bool
}

var _ storage.Store = (*Store)(nil)

// New creates an empty store.
func New() *Store {
	return &Store{records: make(map[string]task.Record)}
}

// Put stores a copy of r.
func (s *Store) Put(ctx context.Context, r task.Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return storage.ErrClosed
	}
	s.records[r.ID] = clone(r)
	return nil
}

// Get returns a copy of the record with id, or (nil, nil) when absent.
func (s *Store) Get(ctx context.Context, id string) (*task.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, storage.ErrClosed
	}
	r, ok := s.records[id]
	if !ok {
		return nil, nil
	}
	c := clone(r)
	return &c, nil
}

// Delete removes the record with id and reports whether it existed.
func (s *Store) Delete(ctx context.Context, id string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return false, storage.ErrClosed
	}
	if _, ok := s.records[id]; !ok {
		return false, nil
	}
	delete(s.records, id)
	return true, nil
}

// Scan returns copies of all records.
func (s *Store) Scan(ctx context.Context) ([]task.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, storage.ErrClosed
	}
	out := make([]task.Record, 0, len(s.records))
	for _, r := range s.records {
		out = append(out, clone(r))
	}
	return out, nil
}

// Close drops all records.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.closed = true
	s.records = nil
	return nil
}

func clone(r task.Record) task.Record {
	r.ScheduledDate = copyString(r.ScheduledDate)
	r.ScheduledTime = copyString(r.ScheduledTime)
	r.DeadlineDate = copyString(r.DeadlineDate)
	r.Notes = copyString(r.Notes)
	return r
}

func copyString(p *string) *string {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
