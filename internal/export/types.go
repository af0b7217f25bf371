// Package export writes and reads portable backups of the task store.
package export

import (
	"fmt"
	"path/filepath"
	"strings"

	"planner/internal/task"
)

// DocumentVersion is the backup schema version written by Export.
const DocumentVersion = 1

// Document is the on-disk backup layout.
type Document struct {
	Version   int           `json:"version" yaml:"version" toml:"version"`
	Generated string        `json:"generated" yaml:"generated" toml:"generated"` // ISO 8601 timestamp
	Tasks     []task.Record `json:"tasks" yaml:"tasks" toml:"tasks"`
}

// Format is a serialization of a Document.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
)

// ParseFormat accepts json, yaml/yml or toml.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	case "toml":
		return FormatTOML, nil
	default:
		return "", fmt.Errorf("unsupported export format %q", s)
	}
}

// Options configures Export and Import.
type Options struct {
	Format   Format // Serialization (default: json)
	Compress bool   // Wrap the stream in zstd
}

// DetectFormat derives options from a file name such as "backup.yaml.zst".
func DetectFormat(path string) (Options, error) {
	name := strings.ToLower(filepath.Base(path))
	opts := Options{}
	if strings.HasSuffix(name, ".zst") {
		opts.Compress = true
		name = strings.TrimSuffix(name, ".zst")
	}
	ext := strings.TrimPrefix(filepath.Ext(name), ".")
	if ext == "" {
		return Options{}, fmt.Errorf("cannot detect export format of %q", path)
	}
	f, err := ParseFormat(ext)
	if err != nil {
		return Options{}, err
	}
	opts.Format = f
	return opts, nil
}

// Extension returns the file extension matching opts, including the dot.
func (o Options) Extension() string {
	f := o.Format
	if f == "" {
		f = FormatJSON
	}
	ext := "." + string(f)
	if o.Compress {
		ext += ".zst"
	}
	return ext
}

// Summary reports what an Export or Import touched.
type Summary struct {
	Tasks       int `json:"tasks"`
	Overwritten int `json:"overwritten,omitempty"`
}
