package merger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/roach88/mergers/internal/ir"
	"github.com/roach88/mergers/internal/object"
)

// State is the merger's position in its lifecycle.
type State int

const (
	// StateIdle means no seed is held.
	StateIdle State = iota
	// StateAccumulating means a seed is held and payloads are being cached.
	StateAccumulating
	// StatePublishing is held while a merge cycle runs, publisher call
	// included.
	StatePublishing
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateAccumulating:
		return "accumulating"
	case StatePublishing:
		return "publishing"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Input is one processing invocation: the payloads that arrived since the
// previous invocation and whether the publication timer fired.
type Input struct {
	Refs  []ir.DataRef
	Timer bool
}

// Merger folds producer payloads into one object per publication cycle.
//
// CRITICAL: Merger is single-writer. See the package documentation.
type Merger struct {
	cfg      Config
	decoder  Deserializer
	pub      Publisher
	reporter Reporter
	clock    *Clock
	ids      IDGenerator
	log      *slog.Logger

	seed       SeedBuffer
	cache      *Cache
	merged     object.Representation
	counters   Counters
	publishing bool
}

// Option configures a Merger.
type Option func(*Merger)

// WithDeserializer replaces the default object.Codec.
func WithDeserializer(d Deserializer) Option {
	return func(m *Merger) {
		m.decoder = d
	}
}

// WithReporter sets the metrics reporter. Without one, metrics go to the log
// at debug level.
func WithReporter(r Reporter) Option {
	return func(m *Merger) {
		m.reporter = r
	}
}

// WithClock sets the publication sequence clock.
func WithClock(c *Clock) Option {
	return func(m *Merger) {
		m.clock = c
	}
}

// WithIDGenerator sets the publication ID generator.
func WithIDGenerator(g IDGenerator) Option {
	return func(m *Merger) {
		m.ids = g
	}
}

// WithLogger sets the base logger. The detector name is added to it.
func WithLogger(l *slog.Logger) Option {
	return func(m *Merger) {
		m.log = l
	}
}

// New creates a Merger publishing to pub.
func New(cfg Config, pub Publisher, opts ...Option) (*Merger, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid merger config: %w", err)
	}
	if pub == nil {
		return nil, errors.New("merger requires a publisher")
	}

	m := &Merger{
		cfg:     cfg,
		decoder: object.Codec{},
		pub:     pub,
		clock:   NewClock(),
		ids:     UUIDv7Generator{},
		log:     slog.Default(),
		cache:   NewCache(),
		merged:  object.Empty{},
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.reporter == nil {
		m.reporter = SlogReporter{Logger: m.log, Level: slog.LevelDebug}
	}
	m.log = m.log.With("detector", cfg.DetectorName, "sub_spec", cfg.SubSpec)

	return m, nil
}

// Start prepares the merger for a new run. State from a previous run is
// always discarded, so a stop/start sequence on the same Merger behaves
// like a fresh instance.
func (m *Merger) Start() {
	m.Clear()
	m.log.Info("merger started", "retention", m.cfg.Retention.String())
}

// Clear discards the seed, the cache, the accumulator and every counter,
// cumulative totals included.
func (m *Merger) Clear() {
	m.reset()
	m.counters = Counters{}
}

// reset is the retention-policy clear: like Clear, but cumulative totals
// survive.
func (m *Merger) reset() {
	m.seed.Clear()
	m.cache.Clear()
	m.merged = object.Empty{}
	m.counters.CyclesSinceReset = 0
	m.counters.ObjectsMerged = 0
	m.counters.UpdatesReceived = 0
}

// Process runs one processing invocation. Every payload in in.Refs is
// folded into the seed or cache before the timer is evaluated, so a merge
// triggered by this invocation sees this invocation's payloads.
//
// Every payload counts as an update, including one that fails to decode.
// Such payloads are skipped and reported in the returned error (see
// IsDecodeError); the other payloads and the merge still run. Merge and
// publish failures are returned first and are fatal for the cycle.
func (m *Merger) Process(ctx context.Context, in Input) error {
	var decodeErrs []error
	for _, ref := range in.Refs {
		m.counters.UpdatesReceived++
		if err := m.UpdateCache(ref); err != nil {
			m.log.Warn("payload dropped", "error", err)
			decodeErrs = append(decodeErrs, err)
		}
	}

	if !in.Timer {
		return errors.Join(decodeErrs...)
	}
	if m.seed.IsEmpty() {
		m.log.Debug("publication timer fired before any object arrived")
		return errors.Join(decodeErrs...)
	}

	if err := m.MergeCycle(ctx); err != nil {
		return errors.Join(append([]error{err}, decodeErrs...)...)
	}
	return errors.Join(decodeErrs...)
}

// MergeCycle merges, publishes and applies the retention policy. It is a
// no-op when no seed is held.
func (m *Merger) MergeCycle(ctx context.Context) error {
	if m.seed.IsEmpty() {
		return nil
	}

	m.publishing = true
	defer func() { m.publishing = false }()

	m.counters.CyclesSinceReset++
	if err := m.mergeCache(); err != nil {
		return err
	}
	if err := m.publish(ctx); err != nil {
		return err
	}

	if m.shouldReset() {
		m.log.Debug("retention policy reset", "retention", m.cfg.Retention.String())
		m.reset()
	}
	return nil
}

// EndOfStream merges and publishes one last time regardless of the timer.
// State is not cleared, whatever the retention policy.
func (m *Merger) EndOfStream(ctx context.Context) error {
	m.publishing = true
	defer func() { m.publishing = false }()

	if err := m.mergeCache(); err != nil {
		return err
	}
	return m.publish(ctx)
}

// UpdateCache routes one payload to the seed buffer or the cache.
func (m *Merger) UpdateCache(ref ir.DataRef) error {
	h, err := ref.DataHeader()
	if err != nil {
		return newDecodeError("", err)
	}
	source := ir.Identify(h)

	if m.seed.Offer(source, ref) {
		m.log.Debug("received the seed object", "source", source, "kind", h.Kind.String())
		return nil
	}

	rep, err := m.decoder.Deserialize(ref)
	if err != nil {
		return newDecodeError(source, err)
	}
	m.cache.Put(source, rep)
	return nil
}

func (m *Merger) shouldReset() bool {
	switch m.cfg.Retention.Mode {
	case LastDifference:
		return true
	case NCycles:
		return m.counters.CyclesSinceReset == int64(m.cfg.Retention.Cycles)
	default:
		return false
	}
}

// mergeCache materializes the seed and folds the cache into it. With no
// seed the accumulator is left empty.
func (m *Merger) mergeCache() error {
	m.log.Debug("merging objects", "count", m.cache.Len()+1)

	if m.seed.IsEmpty() {
		m.merged = object.Empty{}
		return nil
	}

	acc, err := m.seed.Materialize(m.decoder)
	if err != nil {
		e := newInvariantError(m.seed.Source(), "seed could not be materialized")
		e.Err = err
		return e
	}
	if object.IsEmpty(acc) {
		return newInvariantError(m.seed.Source(), "seed materialized into an empty object")
	}
	m.counters.ObjectsMerged = 1

	err = m.cache.ForEach(func(source ir.SourceID, entry object.Representation) error {
		n, err := object.Fold(acc, entry)
		if err != nil {
			return foldError(source, err)
		}
		m.counters.ObjectsMerged += int64(n)
		return nil
	})
	if err != nil {
		return err
	}

	m.merged = acc
	return nil
}

func foldError(source ir.SourceID, err error) error {
	code := ErrCodeMerge
	switch {
	case errors.Is(err, object.ErrKindMismatch):
		code = ErrCodeKindMismatch
	case errors.Is(err, object.ErrLengthMismatch):
		code = ErrCodeLengthMismatch
	}
	return &RuntimeError{Code: code, Message: "merge failed", Source: source, Err: err}
}

// publish hands the accumulator to the publisher, then rolls the cycle
// counters into the totals and reports them.
func (m *Merger) publish(ctx context.Context) error {
	if object.IsEmpty(m.merged) {
		m.log.Info("no objects received since start or reset, nothing to publish")
	} else {
		pub := Publication{
			ID:               m.ids.Generate(),
			Seq:              m.clock.Next(),
			SubSpec:          m.cfg.SubSpec,
			Detector:         m.cfg.DetectorName,
			Object:           m.merged,
			Producers:        m.cache.Len() + 1,
			ObjectsMerged:    m.counters.ObjectsMerged,
			UpdatesReceived:  m.counters.UpdatesReceived,
			CyclesSinceReset: m.counters.CyclesSinceReset,
		}
		if err := m.pub.Publish(ctx, pub); err != nil {
			return newPublishError(m.cfg.SubSpec, err)
		}
		m.log.Info("published the merged object",
			"incomplete_objects", pub.Producers,
			"updates_last_cycle", m.counters.UpdatesReceived,
			"seq", pub.Seq,
		)
		// the publisher owns it now
		m.merged = object.Empty{}
	}

	m.counters.TotalObjectsMerged += m.counters.ObjectsMerged
	m.counters.TotalUpdatesReceived += m.counters.UpdatesReceived
	if err := m.reporter.Report(ctx, m.counters.Samples()); err != nil {
		m.log.Warn("metrics report failed", "error", err)
	}
	m.counters.ObjectsMerged = 0
	m.counters.UpdatesReceived = 0
	return nil
}

// State returns the current lifecycle state.
func (m *Merger) State() State {
	switch {
	case m.publishing:
		return StatePublishing
	case m.seed.IsEmpty():
		return StateIdle
	default:
		return StateAccumulating
	}
}

// Counters returns a copy of the counters.
func (m *Merger) Counters() Counters {
	return m.counters
}

// SeedSource returns the seed producer, or "" when no seed is held.
func (m *Merger) SeedSource() ir.SourceID {
	return m.seed.Source()
}

// CachedSources returns the non-seed producers currently cached, sorted.
func (m *Merger) CachedSources() []ir.SourceID {
	return m.cache.Sources()
}

// Config returns the merger configuration.
func (m *Merger) Config() Config {
	return m.cfg
}

// LastSeq returns the sequence number of the latest publication.
func (m *Merger) LastSeq() int64 {
	return m.clock.Current()
}
