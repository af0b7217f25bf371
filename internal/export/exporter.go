package export

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/klauspost/compress/zstd"
	"gopkg.in/yaml.v3"

	"planner/internal/errors"
	"planner/internal/storage"
	"planner/internal/task"
)

// Exporter moves records between a Store and a backup stream.
type Exporter struct {
	store    storage.Store
	logger   *slog.Logger
	now      func() time.Time
	imported func(t *task.Task, replaced bool)
}

// NewExporter creates an exporter over store.
func NewExporter(store storage.Store, logger *slog.Logger) *Exporter {
	return &Exporter{
		store:  store,
		logger: logger,
		now:    time.Now,
	}
}

// OnImport registers fn to run after each record Import writes. replaced
// reports whether a task with the same id existed before.
func (e *Exporter) OnImport(fn func(t *task.Task, replaced bool)) {
	e.imported = fn
}

// Export writes every stored record to w, oldest first.
func (e *Exporter) Export(ctx context.Context, w io.Writer, opts Options) (Summary, error) {
	records, err := e.store.Scan(ctx)
	if err != nil {
		return Summary{}, errors.New(errors.StorageFailure, "read tasks for export", err)
	}
	if records == nil {
		records = []task.Record{}
	}
	sortRecords(records)

	doc := Document{
		Version:   DocumentVersion,
		Generated: e.now().UTC().Format(time.RFC3339),
		Tasks:     records,
	}

	if err := write(w, doc, opts); err != nil {
		return Summary{}, err
	}

	e.logger.Info("Exported tasks", "count", len(records), "format", string(formatOf(opts)), "compressed", opts.Compress)
	return Summary{Tasks: len(records)}, nil
}

// Import reads a backup from r and stores its records with their original
// ids and timestamps. Existing tasks with the same id are overwritten.
// Every record is checked before the first write, so a bad document
// changes nothing. Writes go straight to the store; the OnImport hook is
// the only notification.
func (e *Exporter) Import(ctx context.Context, r io.Reader, opts Options) (Summary, error) {
	doc, err := read(r, opts)
	if err != nil {
		return Summary{}, err
	}
	if doc.Version > DocumentVersion {
		return Summary{}, errors.New(errors.InvalidInput,
			fmt.Sprintf("backup version %d is newer than supported version %d", doc.Version, DocumentVersion), nil)
	}

	seen := make(map[string]bool, len(doc.Tasks))
	decoded := make([]*task.Task, len(doc.Tasks))
	for i, rec := range doc.Tasks {
		t, err := task.Decode(rec)
		if err != nil {
			return Summary{}, errors.New(errors.InvalidInput, "invalid task in backup", err)
		}
		decoded[i] = t
		if seen[rec.ID] {
			return Summary{}, errors.New(errors.InvalidInput, fmt.Sprintf("duplicate task id %s in backup", rec.ID), nil)
		}
		seen[rec.ID] = true
	}

	var sum Summary
	for i, rec := range doc.Tasks {
		existing, err := e.store.Get(ctx, rec.ID)
		if err != nil {
			return sum, errors.New(errors.StorageFailure, "import task", err)
		}
		if err := e.store.Put(ctx, rec); err != nil {
			return sum, errors.New(errors.StorageFailure, "import task", err)
		}
		sum.Tasks++
		if existing != nil {
			sum.Overwritten++
		}
		if e.imported != nil {
			e.imported(decoded[i], existing != nil)
		}
	}

	e.logger.Info("Imported tasks", "count", sum.Tasks, "overwritten", sum.Overwritten)
	return sum, nil
}

func sortRecords(records []task.Record) {
	sort.SliceStable(records, func(i, j int) bool {
		a, b := records[i], records[j]
		ta, errA := time.Parse(task.TimestampLayout, a.CreatedAt)
		tb, errB := time.Parse(task.TimestampLayout, b.CreatedAt)
		if errA == nil && errB == nil && !ta.Equal(tb) {
			return ta.Before(tb)
		}
		return a.ID < b.ID
	})
}

func formatOf(opts Options) Format {
	if opts.Format == "" {
		return FormatJSON
	}
	return opts.Format
}

func write(w io.Writer, doc Document, opts Options) (err error) {
	var zw *zstd.Encoder
	if opts.Compress {
		zw, err = zstd.NewWriter(w)
		if err != nil {
			return errors.New(errors.InternalError, "create zstd writer", err)
		}
		w = zw
	}

	bw := bufio.NewWriter(w)
	if err := encode(bw, doc, formatOf(opts)); err != nil {
		if zw != nil {
			_ = zw.Close()
		}
		return err
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("write export: %w", err)
	}
	if zw != nil {
		if err := zw.Close(); err != nil {
			return fmt.Errorf("finish zstd stream: %w", err)
		}
	}
	return nil
}

func encode(w io.Writer, doc Document, f Format) error {
	var err error
	switch f {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		err = enc.Encode(doc)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err = enc.Encode(doc); err == nil {
			err = enc.Close()
		}
	case FormatTOML:
		err = toml.NewEncoder(w).Encode(doc)
	default:
		return errors.New(errors.InvalidInput, fmt.Sprintf("unsupported export format %q", f), nil)
	}
	if err != nil {
		return fmt.Errorf("encode %s export: %w", f, err)
	}
	return nil
}

func read(r io.Reader, opts Options) (*Document, error) {
	if opts.Compress {
		zr, err := zstd.NewReader(r)
		if err != nil {
			return nil, errors.New(errors.InvalidInput, "open zstd stream", err)
		}
		defer zr.Close()
		r = zr
	}

	var doc Document
	var err error
	switch f := formatOf(opts); f {
	case FormatJSON:
		err = json.NewDecoder(r).Decode(&doc)
	case FormatYAML:
		err = yaml.NewDecoder(r).Decode(&doc)
	case FormatTOML:
		_, err = toml.NewDecoder(r).Decode(&doc)
	default:
		return nil, errors.New(errors.InvalidInput, fmt.Sprintf("unsupported export format %q", f), nil)
	}
	if err != nil {
		return nil, errors.New(errors.InvalidInput, "decode backup", err)
	}
	return &doc, nil
}
