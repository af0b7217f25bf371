// Package storetest holds the behaviour every storage.Store backend must
// share. Backends call Run from their own tests.
package storetest

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"planner/internal/storage"
	"planner/internal/task"
)

// Factory returns a fresh, empty store. Run closes it.
type Factory func(t *testing.T) storage.Store

func ptr(s string) *string { return &s }

// Record returns a fully populated record with the given id.
func Record(id string) task.Record {
	return task.Record{
		ID:              id,
		Title:           "Task " + id,
		IsDone:          false,
		CreatedAt:       "2024-06-01T08:00:00.000000001Z",
		UpdatedAt:       "2024-06-01T09:30:00Z",
		ScheduledDate:   ptr("2024-06-15"),
		ScheduledTime:   ptr("09:00"),
		DeadlineDate:    ptr("2024-06-20"),
		ReminderEnabled: true,
		Notes:           ptr("notes for " + id),
	}
}

// Run exercises the Store contract against stores built by newStore.
func Run(t *testing.T, newStore Factory) {
	ctx := context.Background()

	open := func(t *testing.T) storage.Store {
		t.Helper()
		s := newStore(t)
		t.Cleanup(func() { _ = s.Close() })
		return s
	}

	t.Run("get missing", func(t *testing.T) {
		s := open(t)
		got, err := s.Get(ctx, "nope")
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("put then get", func(t *testing.T) {
		s := open(t)
		want := Record("a")
		require.NoError(t, s.Put(ctx, want))

		got, err := s.Get(ctx, "a")
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, want, *got)
	})

	t.Run("optional fields stay absent", func(t *testing.T) {
		s := open(t)
		want := task.Record{
			ID:        "bare",
			Title:     "",
			IsDone:    true,
			CreatedAt: "2024-01-01T00:00:00Z",
			UpdatedAt: "2024-01-01T00:00:00Z",
		}
		require.NoError(t, s.Put(ctx, want))

		got, err := s.Get(ctx, "bare")
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, want, *got)
	})

	t.Run("put replaces whole record", func(t *testing.T) {
		s := open(t)
		require.NoError(t, s.Put(ctx, Record("a")))

		next := Record("a")
		next.Title = "renamed"
		next.IsDone = true
		next.DeadlineDate = nil
		next.Notes = nil
		require.NoError(t, s.Put(ctx, next))

		got, err := s.Get(ctx, "a")
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, next, *got)

		all, err := s.Scan(ctx)
		require.NoError(t, err)
		assert.Len(t, all, 1)
	})

	t.Run("returned records are copies", func(t *testing.T) {
		s := open(t)
		require.NoError(t, s.Put(ctx, Record("a")))

		got, err := s.Get(ctx, "a")
		require.NoError(t, err)
		*got.Notes = "scribbled"
		got.Title = "scribbled"

		again, err := s.Get(ctx, "a")
		require.NoError(t, err)
		assert.Equal(t, Record("a"), *again)
	})

	t.Run("delete", func(t *testing.T) {
		s := open(t)
		require.NoError(t, s.Put(ctx, Record("a")))
		require.NoError(t, s.Put(ctx, Record("b")))

		removed, err := s.Delete(ctx, "a")
		require.NoError(t, err)
		assert.True(t, removed)

		removed, err = s.Delete(ctx, "a")
		require.NoError(t, err)
		assert.False(t, removed)

		removed, err = s.Delete(ctx, "never")
		require.NoError(t, err)
		assert.False(t, removed)

		got, err := s.Get(ctx, "a")
		require.NoError(t, err)
		assert.Nil(t, got)

		all, err := s.Scan(ctx)
		require.NoError(t, err)
		require.Len(t, all, 1)
		assert.Equal(t, "b", all[0].ID)
	})

	t.Run("scan", func(t *testing.T) {
		s := open(t)
		all, err := s.Scan(ctx)
		require.NoError(t, err)
		assert.Empty(t, all)

		for _, id := range []string{"c", "a", "b"} {
			require.NoError(t, s.Put(ctx, Record(id)))
		}
		all, err = s.Scan(ctx)
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{"a", "b", "c"}, ids(all))
	})

	t.Run("concurrent puts", func(t *testing.T) {
		s := open(t)
		const n = 32

		var wg sync.WaitGroup
		errs := make(chan error, n)
		for i := 0; i < n; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				errs <- s.Put(ctx, Record(fmt.Sprintf("t%02d", i)))
			}(i)
		}
		wg.Wait()
		close(errs)
		for err := range errs {
			require.NoError(t, err)
		}

		all, err := s.Scan(ctx)
		require.NoError(t, err)
		assert.Len(t, all, n)
	})

	t.Run("closed", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.Put(ctx, Record("a")))
		require.NoError(t, s.Close())
		require.NoError(t, s.Close(), "second Close should be a no-op")

		assert.ErrorIs(t, s.Put(ctx, Record("b")), storage.ErrClosed)
		_, err := s.Get(ctx, "a")
		assert.ErrorIs(t, err, storage.ErrClosed)
		_, err = s.Delete(ctx, "a")
		assert.ErrorIs(t, err, storage.ErrClosed)
		_, err = s.Scan(ctx)
		assert.ErrorIs(t, err, storage.ErrClosed)
	})
}

func ids(records []task.Record) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.ID
	}
	sort.Strings(out)
	return out
}
