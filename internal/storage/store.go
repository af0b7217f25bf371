// Package storage persists task records. The default backend is a SQLite
// database; badgerstore and memstore provide the alternatives.
package storage

import (
	"context"
	"errors"

	"planner/internal/task"
)

// ErrClosed is returned by store operations after Close.
var ErrClosed = errors.New("storage: store is closed")

// Store is a keyed collection of task records. Each Put replaces the whole
// record atomically.
type Store interface {
	// Put inserts or replaces the record with r.ID.
	Put(ctx context.Context, r task.Record) error
	// Get returns (nil, nil) when no record has the id.
	Get(ctx context.Context, id string) (*task.Record, error)
	// Delete reports whether a record was removed. A missing id is not an
	// error.
	Delete(ctx context.Context, id string) (bool, error)
	// Scan returns every record in no particular order.
	Scan(ctx context.Context) ([]task.Record, error)
	Close() error
}
