package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/parquet-go/parquet-go"
	"github.com/spf13/cobra"

	"github.com/roach88/mergers/internal/store"
)

// Export formats.
const (
	ExportJSONL   = "jsonl"
	ExportParquet = "parquet"
)

// ExportOptions holds flags for the export command.
type ExportOptions struct {
	*RootOptions
	Database string
	Output   string
	As       string
	SubSpec  uint32
}

// ExportResult describes a finished export.
type ExportResult struct {
	Output  string `json:"output"`
	Format  string `json:"format"`
	Records int    `json:"records"`
}

func (r ExportResult) String() string {
	return fmt.Sprintf("Exported %d publications to %s (%s)\n", r.Records, r.Output, r.Format)
}

// NewExportCommand creates the export command.
func NewExportCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ExportOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the publication log",
		Long: `Export stored publications, oldest first, as JSON lines or as a
Parquet file with one row per publication.

Examples:
  mergers export --db ./mergers.db --output pubs.jsonl
  mergers export --db ./mergers.db --output pubs.parquet --as parquet`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "output file (required)")
	cmd.Flags().StringVar(&opts.As, "as", ExportJSONL, "export format (jsonl|parquet)")
	cmd.Flags().Uint32Var(&opts.SubSpec, "sub-spec", 0, "only export this sub-spec")
	_ = cmd.MarkFlagRequired("db")
	_ = cmd.MarkFlagRequired("output")

	return cmd
}

func runExport(opts *ExportOptions, cmd *cobra.Command) error {
	var write func(io.Writer, []store.Record) error
	switch opts.As {
	case ExportJSONL:
		write = writeJSONL
	case ExportParquet:
		write = writeParquet
	default:
		return NewExitError(ExitCommandError, fmt.Sprintf("invalid export format %q: must be %s or %s", opts.As, ExportJSONL, ExportParquet))
	}

	st, err := openExistingStore(opts.Database)
	if err != nil {
		return err
	}
	defer st.Close()

	var filter store.Filter
	if cmd.Flags().Changed("sub-spec") {
		filter.SubSpec = &opts.SubSpec
	}
	records, err := st.ReadPublications(cmd.Context(), filter)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read publications", err)
	}

	f, err := os.Create(opts.Output)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to create output", err)
	}
	if err := write(f, records); err != nil {
		f.Close()
		return WrapExitError(ExitFailure, "export failed", err)
	}
	if err := f.Close(); err != nil {
		return WrapExitError(ExitFailure, "export failed", err)
	}

	formatter := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}
	return formatter.Success(ExportResult{Output: opts.Output, Format: opts.As, Records: len(records)})
}

func writeJSONL(w io.Writer, records []store.Record) error {
	enc := json.NewEncoder(w)
	for _, rec := range records {
		if err := enc.Encode(rec); err != nil {
			return fmt.Errorf("encode %s: %w", rec.ID, err)
		}
	}
	return nil
}

func writeParquet(w io.Writer, records []store.Record) error {
	pw := parquet.NewGenericWriter[store.Record](w)
	if _, err := pw.Write(records); err != nil {
		return errors.Join(fmt.Errorf("write parquet rows: %w", err), pw.Close())
	}
	if err := pw.Close(); err != nil {
		return fmt.Errorf("close parquet writer: %w", err)
	}
	return nil
}

// openExistingStore opens a database that "mergers run" already created.
// Read-only commands must not create an empty database by accident.
func openExistingStore(path string) (*store.Store, error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, NewExitError(ExitCommandError, fmt.Sprintf("database not found: %s", path))
		}
		return nil, WrapExitError(ExitCommandError, "failed to stat database", err)
	}
	st, err := store.Open(path)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to open database", err)
	}
	return st, nil
}
