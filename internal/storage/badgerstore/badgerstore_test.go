package badgerstore

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"planner/internal/slogutil"
	"planner/internal/storage"
	"planner/internal/storage/storetest"
)

func TestConformanceInMemory(t *testing.T) {
	storetest.Run(t, func(t *testing.T) storage.Store {
		s, err := Open(InMemoryConfig())
		require.NoError(t, err)
		return s
	})
}

func TestConformancePersistent(t *testing.T) {
	storetest.Run(t, func(t *testing.T) storage.Store {
		cfg := DefaultConfig(t.TempDir())
		cfg.SyncWrites = false
		cfg.GCInterval = 0
		s, err := Open(cfg)
		require.NoError(t, err)
		return s
	})
}

func TestOpenRequiresPath(t *testing.T) {
	_, err := Open(Config{})
	assert.Error(t, err)
}

func TestReopenKeepsData(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	s, err := Open(DefaultConfig(dir))
	require.NoError(t, err)
	rec := storetest.Record("kept")
	require.NoError(t, s.Put(ctx, rec))
	require.NoError(t, s.Close())

	s, err = Open(DefaultConfig(dir))
	require.NoError(t, err)
	defer s.Close()

	got, err := s.Get(ctx, "kept")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, rec, *got)
}

func TestGCRunnerStopsOnClose(t *testing.T) {
	cfg := DefaultConfig(t.TempDir())
	cfg.GCInterval = 10 * time.Millisecond
	cfg.Logger = slogutil.NewDiscardLogger()

	s, err := Open(cfg)
	require.NoError(t, err)
	require.NotNil(t, s.gc)

	for i := 0; i < 20; i++ {
		require.NoError(t, s.Put(context.Background(), storetest.Record("r")))
	}
	time.Sleep(30 * time.Millisecond)

	done := make(chan struct{})
	go func() {
		_ = s.Close()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Close did not return; GC runner still running")
	}
}

func TestCancelledContext(t *testing.T) {
	s, err := Open(InMemoryConfig())
	require.NoError(t, err)
	defer s.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, s.Put(ctx, storetest.Record("a")), context.Canceled)
	_, err = s.Scan(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
