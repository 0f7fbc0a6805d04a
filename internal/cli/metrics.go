package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/mergers/internal/store"
)

// MetricsOptions holds flags for the metrics command.
type MetricsOptions struct {
	*RootOptions
	Database string
}

// MetricsReport lists stored metric samples.
type MetricsReport struct {
	Samples []store.SampleRecord `json:"samples"`
}

func (r MetricsReport) String() string {
	if len(r.Samples) == 0 {
		return "No metric samples found.\n"
	}
	var b strings.Builder
	for _, s := range r.Samples {
		mode := ""
		if s.Mode != "" && s.Mode != "none" {
			mode = " (" + s.Mode + ")"
		}
		fmt.Fprintf(&b, "#%d %s = %d%s\n", s.ReportSeq, s.Name, s.Value, mode)
	}
	return b.String()
}

// NewMetricsCommand creates the metrics command.
func NewMetricsCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &MetricsOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "metrics [name]",
		Short: "List stored metric samples",
		Long: `List the metric samples reported on every publish step, optionally
restricted to one metric name.

Examples:
  mergers metrics --db ./mergers.db
  mergers metrics --db ./mergers.db total_objects_merged`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			name := ""
			if len(args) == 1 {
				name = args[0]
			}
			return runMetrics(opts, name, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}

func runMetrics(opts *MetricsOptions, name string, cmd *cobra.Command) error {
	st, err := openExistingStore(opts.Database)
	if err != nil {
		return err
	}
	defer st.Close()

	samples, err := st.ReadSamples(cmd.Context(), name)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read metrics", err)
	}

	formatter := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}
	return formatter.Success(MetricsReport{Samples: samples})
}
