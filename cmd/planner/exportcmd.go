package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"planner/internal/errors"
	"planner/internal/export"
)

var (
	transferFormat   string
	transferCompress bool
)

var exportCmd = &cobra.Command{
	Use:   "export [FILE]",
	Short: "Export all tasks to a backup file",
	Long: `Write every task to FILE, or to stdout when FILE is omitted.

The format is taken from --as or, failing that, from the file extension:
.json, .yaml/.yml or .toml, optionally followed by .zst for zstd compression.

Examples:
  planner export backup.json
  planner export backup.yaml.zst
  planner export --as toml > tasks.toml`,
	Args: cobra.MaximumNArgs(1),
	RunE: runExport,
}

var importCmd = &cobra.Command{
	Use:   "import FILE",
	Short: "Import tasks from a backup file",
	Long: `Read tasks from a backup written by export. Ids and timestamps are kept;
tasks that already exist are replaced. Nothing is written if any task in the
file is invalid. Use - to read from stdin.`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

func init() {
	for _, cmd := range []*cobra.Command{exportCmd, importCmd} {
		cmd.Flags().StringVar(&transferFormat, "as", "", "Backup format (json, yaml, toml)")
		cmd.Flags().BoolVar(&transferCompress, "compress", false, "zstd-compress the backup")
	}
	rootCmd.AddCommand(exportCmd, importCmd)
}

// transferOptions combines --as/--compress with the file extension.
func transferOptions(path string) (export.Options, error) {
	var opts export.Options
	if path != "" && path != "-" {
		detected, err := export.DetectFormat(path)
		if err == nil {
			opts = detected
		} else if transferFormat == "" {
			return opts, errors.New(errors.InvalidInput, "cannot tell backup format, use --as", err)
		}
	}
	if transferFormat != "" {
		f, err := export.ParseFormat(transferFormat)
		if err != nil {
			return opts, errors.New(errors.InvalidInput, err.Error(), nil)
		}
		opts.Format = f
	}
	if transferCompress {
		opts.Compress = true
	}
	if opts.Format == "" {
		opts.Format = export.FormatJSON
	}
	return opts, nil
}

func runExport(cmd *cobra.Command, args []string) error {
	path := ""
	if len(args) == 1 {
		path = args[0]
	}
	opts, err := transferOptions(path)
	if err != nil {
		return err
	}

	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	var w io.Writer = cmd.OutOrStdout()
	var f *os.File
	if path != "" && path != "-" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return fmt.Errorf("create backup directory: %w", err)
		}
		f, err = os.Create(path)
		if err != nil {
			return fmt.Errorf("create backup file: %w", err)
		}
		w = f
	}

	sum, err := a.Exporter.Export(newContext(), w, opts)
	if f != nil {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("close backup file: %w", cerr)
		}
	}
	if err != nil {
		return err
	}

	// The backup itself went to stdout; keep it clean.
	if f == nil {
		return nil
	}
	return printResponse(cmd, &TransferResponseCLI{
		Action:     "exported",
		Path:       path,
		Format:     string(opts.Format),
		Compressed: opts.Compress,
		Tasks:      sum.Tasks,
	})
}

func runImport(cmd *cobra.Command, args []string) error {
	path := args[0]
	opts, err := transferOptions(path)
	if err != nil {
		return err
	}

	var r io.Reader = cmd.InOrStdin()
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return errors.New(errors.InvalidInput, "open backup file", err)
		}
		defer f.Close()
		r = f
	}

	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	sum, err := a.Exporter.Import(newContext(), r, opts)
	if err != nil {
		return err
	}
	return printResponse(cmd, &TransferResponseCLI{
		Action:      "imported",
		Path:        path,
		Format:      string(opts.Format),
		Compressed:  opts.Compress,
		Tasks:       sum.Tasks,
		Overwritten: sum.Overwritten,
	})
}
