package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/roach88/mergers/internal/config"
	"github.com/roach88/mergers/internal/engine"
	"github.com/roach88/mergers/internal/merger"
	"github.com/roach88/mergers/internal/store"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	Config   string
	Database string
	Input    string
	Period   time.Duration

	// IDGenerator allows overriding the publication ID generator (for testing).
	// If nil, defaults to UUIDv7Generator.
	IDGenerator merger.IDGenerator
}

// RunSummary is printed when the engine stops.
type RunSummary struct {
	Database  string `json:"database"`
	Lines     int    `json:"lines"`
	Payloads  int64  `json:"payloads"`
	Ticks     int64  `json:"ticks"`
	Batches   int64  `json:"batches"`
	Errors    int64  `json:"errors"`
	Published int64  `json:"published"`
	LastSeq   int64  `json:"last_seq"`
}

func (s RunSummary) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Read %d lines: %d payloads, %d ticks\n", s.Lines, s.Payloads, s.Ticks)
	fmt.Fprintf(&b, "Published %d objects (last seq %d) to %s\n", s.Published, s.LastSeq, s.Database)
	if s.Errors > 0 {
		fmt.Fprintf(&b, "%d processing errors (payloads skipped)\n", s.Errors)
	}
	return b.String()
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	return newRunCommand(&RunOptions{RootOptions: rootOpts})
}

func newRunCommand(opts *RunOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Merge a payload feed and publish periodically",
		Long: `Run the merge engine over a JSONL payload feed.

Each input line is either a producer payload:

  {"origin":"A","description":"CNT","kind":"single",
   "payload":{"type":"counter","object":{"title":"CNT","value":3}}}

or a control event: {"event":"start"}, {"event":"tick"} or
{"event":"end_of_stream"}. The publication timer fires every --period in
addition to explicit ticks; --period 0 disables it. When the feed ends,
the engine publishes a final time and exits.

Publications and metrics are written to the SQLite database.

Example:
  mergers run --db ./mergers.db --input feed.jsonl
  mergers run --config mergers.yaml --period 0 < feed.jsonl`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEngine(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Config, "config", "", "config file (.yaml, .toml or .cue)")
	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (overrides config)")
	cmd.Flags().StringVarP(&opts.Input, "input", "i", "-", "JSONL feed, - for stdin")
	cmd.Flags().DurationVar(&opts.Period, "period", 0, "publication period (overrides config, 0 disables the timer)")

	return cmd
}

func runEngine(opts *RunOptions, cmd *cobra.Command) error {
	cfg := config.Default()
	if opts.Config != "" {
		loaded, err := config.Load(opts.Config)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to load config", err)
		}
		cfg = loaded
	}
	mcfg, err := cfg.ToMergerConfig()
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid merger config", err)
	}
	if cmd.Flags().Changed("period") {
		mcfg.PublicationPeriod = opts.Period
	}

	dbPath := cfg.Database
	if opts.Database != "" {
		dbPath = opts.Database
	}
	if dbPath == "" {
		return NewExitError(ExitCommandError, "no database: set --db or database in the config file")
	}

	level := cfg.LogLevel()
	if opts.Verbose {
		level = slog.LevelDebug
	}
	logger := newLogger(cmd.ErrOrStderr(), opts.Format, level)
	slog.SetDefault(logger)

	input, closeInput, err := openInput(opts.Input, cmd)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open input", err)
	}
	defer closeInput()

	logger.Info("opening database", "path", dbPath)
	st, err := store.Open(dbPath)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer func() {
		if closeErr := st.Close(); closeErr != nil {
			logger.Error("error closing database", "error", closeErr)
		}
	}()

	// Use command's context if available (for testing), otherwise create one
	parentCtx := cmd.Context()
	if parentCtx == nil {
		parentCtx = context.Background()
	}
	ctx, stop := signal.NotifyContext(parentCtx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	// resume the sequence so publications from earlier runs keep their order
	lastSeq, err := st.LastSeq(ctx)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read database", err)
	}

	idGen := opts.IDGenerator
	if idGen == nil {
		idGen = merger.UUIDv7Generator{}
	}
	m, err := merger.New(mcfg, store.Publisher{Store: st},
		merger.WithClock(merger.NewClockAt(lastSeq)),
		merger.WithIDGenerator(idGen),
		merger.WithReporter(merger.MultiReporter{
			store.Reporter{Store: st},
			merger.SlogReporter{Logger: logger, Level: slog.LevelDebug},
		}),
		merger.WithLogger(logger),
	)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to create merger", err)
	}
	eng := engine.New(m, engine.WithPeriod(mcfg.PublicationPeriod), engine.WithLogger(logger))
	eng.Enqueue(engine.Event{Type: engine.EventTypeStart})

	var fs feedStats
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		fs, err = feed(gctx, input, eng)
		if err != nil {
			eng.Stop()
		}
		return err
	})
	g.Go(func() error {
		return eng.Run(gctx)
	})
	runErr := g.Wait()

	stats := eng.Stats()
	summary := RunSummary{
		Database:  dbPath,
		Lines:     fs.Lines,
		Payloads:  stats.Payloads,
		Ticks:     stats.Ticks,
		Batches:   stats.Batches,
		Errors:    stats.Errors,
		Published: m.LastSeq() - lastSeq,
		LastSeq:   m.LastSeq(),
	}

	formatter := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}
	switch {
	case runErr == nil:
	case errors.Is(runErr, context.Canceled) && ctx.Err() != nil:
		logger.Info("engine stopped by signal")
	case merger.IsFatal(runErr) && isRuntimeError(runErr):
		return formatter.MergeFailure(runErr)
	default:
		return WrapExitError(ExitCommandError, "feed error", runErr)
	}

	logger.Info("engine stopped gracefully", "published", summary.Published)
	return formatter.Success(summary)
}

func isRuntimeError(err error) bool {
	var re *merger.RuntimeError
	return errors.As(err, &re)
}

// openInput returns the feed reader and an idempotent close function.
// Standard input is closed too when it can be, which unblocks a pending read.
func openInput(path string, cmd *cobra.Command) (io.Reader, func(), error) {
	var r io.Reader
	if path == "" || path == "-" {
		r = cmd.InOrStdin()
	} else {
		f, err := os.Open(path)
		if err != nil {
			return nil, nil, err
		}
		r = f
	}
	var once sync.Once
	return r, func() {
		once.Do(func() {
			if c, ok := r.(io.Closer); ok {
				_ = c.Close()
			}
		})
	}, nil
}
