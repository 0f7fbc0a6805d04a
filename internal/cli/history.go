package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/mergers/internal/store"
)

// HistoryOptions holds flags for the history command.
type HistoryOptions struct {
	*RootOptions
	Database string
	SubSpec  uint32
	AfterSeq int64
	Limit    int
}

// HistoryEntry is one publication as shown by the history command.
type HistoryEntry struct {
	ID               string          `json:"id"`
	Seq              int64           `json:"seq"`
	SubSpec          uint32          `json:"sub_spec"`
	Detector         string          `json:"detector"`
	Kind             string          `json:"kind"`
	Digest           string          `json:"digest"`
	Producers        int64           `json:"producers"`
	ObjectsMerged    int64           `json:"objects_merged"`
	UpdatesReceived  int64           `json:"updates_received"`
	CyclesSinceReset int64           `json:"cycles_since_reset"`
	Object           json.RawMessage `json:"object"`
}

// HistoryReport lists publications in sequence order.
type HistoryReport struct {
	Publications []HistoryEntry `json:"publications"`
}

func (r HistoryReport) String() string {
	if len(r.Publications) == 0 {
		return "No publications found.\n"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%-6s %-36s %-10s %-9s %-7s %-6s %-6s %s\n",
		"SEQ", "ID", "KIND", "PRODUCERS", "MERGED", "UPDATES", "CYCLE", "DIGEST")
	for _, p := range r.Publications {
		digest := p.Digest
		if len(digest) > 12 {
			digest = digest[:12]
		}
		fmt.Fprintf(&b, "%-6d %-36s %-10s %-9d %-7d %-6d %-6d %s\n",
			p.Seq, p.ID, p.Kind, p.Producers, p.ObjectsMerged, p.UpdatesReceived, p.CyclesSinceReset, digest)
	}
	return b.String()
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &HistoryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List stored publications",
		Long: `List the publications recorded by "mergers run", oldest first.

Examples:
  mergers history --db ./mergers.db
  mergers history --db ./mergers.db --sub-spec 3 --limit 10
  mergers history --db ./mergers.db --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	cmd.Flags().Uint32Var(&opts.SubSpec, "sub-spec", 0, "only show this sub-spec")
	cmd.Flags().Int64Var(&opts.AfterSeq, "after", 0, "only show publications with a greater sequence number")
	cmd.Flags().IntVar(&opts.Limit, "limit", 0, "maximum number of publications (0 = all)")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}

func runHistory(opts *HistoryOptions, cmd *cobra.Command) error {
	st, err := openExistingStore(opts.Database)
	if err != nil {
		return err
	}
	defer st.Close()

	filter := store.Filter{AfterSeq: opts.AfterSeq, Limit: opts.Limit}
	if cmd.Flags().Changed("sub-spec") {
		filter.SubSpec = &opts.SubSpec
	}

	records, err := st.ReadPublications(cmd.Context(), filter)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read publications", err)
	}

	report := HistoryReport{Publications: make([]HistoryEntry, 0, len(records))}
	for _, rec := range records {
		report.Publications = append(report.Publications, HistoryEntry{
			ID:               rec.ID,
			Seq:              rec.Seq,
			SubSpec:          rec.SubSpec,
			Detector:         rec.Detector,
			Kind:             rec.Kind,
			Digest:           rec.Digest,
			Producers:        rec.Producers,
			ObjectsMerged:    rec.ObjectsMerged,
			UpdatesReceived:  rec.UpdatesReceived,
			CyclesSinceReset: rec.CyclesSinceReset,
			Object:           json.RawMessage(rec.Body),
		})
	}

	formatter := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}
	return formatter.Success(report)
}
