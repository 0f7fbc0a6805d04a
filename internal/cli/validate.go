package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/mergers/internal/config"
)

// ValidationResult is the effective configuration of a valid file.
type ValidationResult struct {
	Valid     bool   `json:"valid"`
	Path      string `json:"path"`
	SubSpec   uint32 `json:"sub_spec"`
	Detector  string `json:"detector"`
	Retention string `json:"retention"`
	Cycles    int    `json:"cycles,omitempty"`
	Period    string `json:"period"`
	Database  string `json:"database,omitempty"`
	LogLevel  string `json:"log_level"`
}

func (r ValidationResult) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "✓ %s is valid\n", r.Path)
	fmt.Fprintf(&b, "  detector:  %s (sub-spec %d)\n", r.Detector, r.SubSpec)
	if r.Cycles > 0 {
		fmt.Fprintf(&b, "  retention: %s (%d cycles)\n", r.Retention, r.Cycles)
	} else {
		fmt.Fprintf(&b, "  retention: %s\n", r.Retention)
	}
	fmt.Fprintf(&b, "  period:    %s\n", r.Period)
	if r.Database != "" {
		fmt.Fprintf(&b, "  database:  %s\n", r.Database)
	}
	return b.String()
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <config>",
		Short: "Validate a configuration file",
		Long: `Validate a YAML, TOML or CUE configuration file against the
configuration schema and print the effective settings, defaults included.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, path string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(), // Verbose logs go to stderr to avoid corrupting JSON
		Verbose:   opts.Verbose,
	}

	formatter.VerboseLog("Validating %s", path)
	cfg, err := config.Load(path)
	if err == nil {
		_, err = cfg.ToMergerConfig()
	}
	if err != nil {
		code := ErrCodeConfigInvalid
		if errors.Is(err, config.ErrUnsupportedFormat) {
			code = ErrCodeConfigFormat
		}
		if outErr := formatter.Error(code, err.Error(), path); outErr != nil {
			return outErr
		}
		return WrapExitError(ExitFailure, "validation failed", err)
	}

	result := ValidationResult{
		Valid:     true,
		Path:      path,
		SubSpec:   cfg.Merger.SubSpec,
		Detector:  cfg.Merger.Detector,
		Retention: cfg.Merger.Retention,
		Period:    cfg.Merger.Period,
		Database:  cfg.Database,
		LogLevel:  cfg.Log.Level,
	}
	if cfg.Merger.Retention == "n_cycles" {
		result.Cycles = cfg.Merger.Cycles
	}
	return formatter.Success(result)
}
