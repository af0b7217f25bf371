package storage

import (
	"context"
	"database/sql"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	_ "modernc.org/sqlite"

	"planner/internal/task"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func setupTestDB(t *testing.T) (*DB, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "nested", "planner.db")

	db, err := Open(path, testLogger())
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db, path
}

func TestDatabaseInitialization(t *testing.T) {
	db, path := setupTestDB(t)

	if _, err := os.Stat(path); err != nil {
		t.Fatalf("Database file was not created at %s: %v", path, err)
	}
	if db.Path() != path {
		t.Errorf("Path() = %q, want %q", db.Path(), path)
	}

	version, err := db.getSchemaVersion()
	if err != nil {
		t.Fatalf("Failed to get schema version: %v", err)
	}
	if version != currentSchemaVersion {
		t.Errorf("Expected schema version %d, got %d", currentSchemaVersion, version)
	}

	for _, idx := range []string{"idx_tasks_created_at", "idx_tasks_scheduled_date", "idx_tasks_deadline_date", "idx_tasks_is_done"} {
		var name string
		err := db.conn.QueryRow(`SELECT name FROM sqlite_master WHERE type='index' AND name=?`, idx).Scan(&name)
		if err != nil {
			t.Errorf("index %s missing: %v", idx, err)
		}
	}
}

func TestReopenKeepsData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "planner.db")
	ctx := context.Background()

	s, err := OpenTaskStore(path, testLogger(), WithSyncWrites(true))
	if err != nil {
		t.Fatalf("OpenTaskStore failed: %v", err)
	}
	rec := sampleRecord("persisted")
	if err := s.Put(ctx, rec); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	s, err = OpenTaskStore(path, testLogger())
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer s.Close()

	got, err := s.Get(ctx, "persisted")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got == nil || got.Title != rec.Title || *got.DeadlineDate != *rec.DeadlineDate {
		t.Errorf("Get after reopen = %+v, want %+v", got, rec)
	}
}

func TestMigrationFromV1(t *testing.T) {
	path := filepath.Join(t.TempDir(), "planner.db")

	// Build a v1 database by hand: tasks table, no indexes.
	raw, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatal(err)
	}
	tx, err := raw.Begin()
	if err != nil {
		t.Fatal(err)
	}
	if err := createSchemaVersionTable(tx); err != nil {
		t.Fatal(err)
	}
	if err := createTasksTable(tx); err != nil {
		t.Fatal(err)
	}
	if err := setSchemaVersion(tx, 1); err != nil {
		t.Fatal(err)
	}
	if _, err := tx.Exec(`INSERT INTO tasks (id, title, created_at, updated_at) VALUES ('old', 'legacy', '2024-01-01T00:00:00Z', '2024-01-01T00:00:00Z')`); err != nil {
		t.Fatal(err)
	}
	if err := tx.Commit(); err != nil {
		t.Fatal(err)
	}
	_ = raw.Close()

	db, err := Open(path, testLogger())
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer db.Close()

	version, err := db.getSchemaVersion()
	if err != nil {
		t.Fatal(err)
	}
	if version != currentSchemaVersion {
		t.Errorf("version after migration = %d, want %d", version, currentSchemaVersion)
	}

	got, err := NewTaskStore(db).Get(context.Background(), "old")
	if err != nil || got == nil {
		t.Fatalf("legacy row lost: %v, %v", got, err)
	}
	if got.IsDone || got.ScheduledDate != nil || got.Notes != nil {
		t.Errorf("legacy defaults wrong: %+v", got)
	}
}

func TestNewerSchemaRejected(t *testing.T) {
	db, path := setupTestDB(t)
	err := db.WithTx(context.Background(), func(tx *sql.Tx) error {
		return setSchemaVersion(tx, currentSchemaVersion+1)
	})
	if err != nil {
		t.Fatal(err)
	}
	_ = db.Close()

	_, err = Open(path, testLogger())
	if err == nil || !strings.Contains(err.Error(), "newer than supported") {
		t.Errorf("Open() error = %v, want newer-schema error", err)
	}
}

func TestWithTxRollback(t *testing.T) {
	db, _ := setupTestDB(t)
	ctx := context.Background()

	wantErr := io.ErrUnexpectedEOF
	err := db.WithTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.Exec(`INSERT INTO tasks (id, title, created_at, updated_at) VALUES ('x', 't', 'a', 'b')`); err != nil {
			return err
		}
		return wantErr
	})
	if err != wantErr {
		t.Fatalf("WithTx() error = %v, want %v", err, wantErr)
	}

	got, err := NewTaskStore(db).Get(ctx, "x")
	if err != nil {
		t.Fatal(err)
	}
	if got != nil {
		t.Error("rolled back insert should not be visible")
	}
}

func TestOpenFailsOnUnwritableDir(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "file")
	if err := os.WriteFile(blocker, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Open(filepath.Join(blocker, "planner.db"), testLogger()); err == nil {
		t.Error("Open() should fail when the parent is a file")
	}
}

func sampleRecord(id string) task.Record {
	deadline := "2024-06-20"
	return task.Record{
		ID:           id,
		Title:        "Task " + id,
		CreatedAt:    "2024-06-01T08:00:00Z",
		UpdatedAt:    "2024-06-01T08:00:00Z",
		DeadlineDate: &deadline,
	}
}
