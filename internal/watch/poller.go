package watch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"lukechampine.com/blake3"

	"github.com/Gitoffthelawn/jsonwatch/internal/jsondiff"
	"github.com/Gitoffthelawn/jsonwatch/internal/jsonvalue"
	"github.com/Gitoffthelawn/jsonwatch/internal/source"
)

// State is the lifecycle state of a Poller.
type State int32

// Poller states.
const (
	StateIdle State = iota
	StateRunning
	StateStopping
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StateStopping:
		return "stopping"
	case StateStopped:
		return "stopped"
	default:
		return fmt.Sprintf("State(%d)", int32(s))
	}
}

// Outcome is how a run ended.
type Outcome int

const (
	// OutcomeNormal means the loop was cancelled or reached its change limit.
	OutcomeNormal Outcome = iota
	// OutcomeFatal means the loop could not continue, e.g. the sink failed.
	OutcomeFatal
)

func (o Outcome) String() string {
	if o == OutcomeFatal {
		return "fatal"
	}

	return "normal"
}

// ParseFunc turns raw source output into a document.
type ParseFunc func(data []byte) (jsonvalue.Value, error)

// Cycle describes one completed poll cycle.
type Cycle struct {
	// Seq counts cycles from 1.
	Seq int
	// Initial is set on the cycle that stored the first snapshot.
	Initial bool
	// Changes holds the differences against the previous snapshot.
	Changes []jsondiff.Change
	// Err is the fetch or parse failure of a skipped cycle.
	Err error
}

// Options configures the poll loop.
type Options struct {
	// Interval is the period between cycle starts. Must be positive.
	Interval time.Duration

	// Formatter renders changes. Defaults to text output.
	Formatter jsondiff.Formatter

	// Parse decodes source output. Defaults to jsonvalue.Parse.
	Parse ParseFunc

	// Out is the sink for change reports and diagnostics.
	Out io.Writer

	// Logger is used for structured logging.
	Logger *slog.Logger

	// Trigger wakes the loop for an extra cycle before the next tick.
	Trigger <-chan struct{}

	// MaxChanges stops the loop after that many cycles reported changes.
	// Zero means no limit.
	MaxChanges int

	// PrintDate prefixes reports with a timestamp.
	PrintDate bool

	// PrintInitial prints the first document before any changes.
	PrintInitial bool

	// OnCycle, if set, is called after every cycle from the loop goroutine.
	OnCycle func(Cycle)

	// Now returns the current time for timestamps.
	Now func() time.Time
}

// DefaultOptions returns sensible default poll options.
func DefaultOptions() Options {
	return Options{
		Interval:     2 * time.Second,
		Formatter:    jsondiff.TextFormatter{},
		Parse:        jsonvalue.Parse,
		Out:          os.Stdout,
		Logger:       slog.Default(),
		PrintDate:    true,
		PrintInitial: true,
		Now:          time.Now,
	}
}

// Poller runs the poll loop for a single source. A Poller runs once.
type Poller struct {
	src    source.Source
	opts   Options
	report *reporter
	state  atomic.Int32

	// Owned by the loop goroutine.
	snapshot *jsonvalue.Value
	digest   [32]byte // of the raw input behind snapshot
	seq      int
	changed  int
}

// New creates a Poller. Unset options take their defaults.
func New(src source.Source, opts Options) *Poller {
	def := DefaultOptions()

	if opts.Formatter == nil {
		opts.Formatter = def.Formatter
	}

	if opts.Parse == nil {
		opts.Parse = def.Parse
	}

	if opts.Out == nil {
		opts.Out = io.Discard
	}

	if opts.Logger == nil {
		opts.Logger = def.Logger
	}

	if opts.Now == nil {
		opts.Now = def.Now
	}

	return &Poller{
		src:    src,
		opts:   opts,
		report: &reporter{w: opts.Out, now: opts.Now, date: opts.PrintDate},
	}
}

// Run creates a Poller for src and runs it until ctx is cancelled.
func Run(ctx context.Context, src source.Source, opts Options) (Outcome, error) {
	return New(src, opts).Run(ctx)
}

// State returns the current lifecycle state.
func (p *Poller) State() State { return State(p.state.Load()) }

// Snapshot returns the last successfully parsed document. It must not be
// called while Run is executing, except from OnCycle.
func (p *Poller) Snapshot() (jsonvalue.Value, bool) {
	if p.snapshot == nil {
		return jsonvalue.Value{}, false
	}

	return *p.snapshot, true
}

// Run polls until ctx is cancelled, a SIGINT/SIGTERM is received, the change
// limit is reached, or the sink fails. Fetch and parse failures are reported
// on the sink and never end the loop.
func (p *Poller) Run(ctx context.Context) (Outcome, error) {
	if p.opts.Interval <= 0 {
		return OutcomeFatal, fmt.Errorf("interval must be positive, got %s", p.opts.Interval)
	}

	if !p.state.CompareAndSwap(int32(StateIdle), int32(StateRunning)) {
		return OutcomeFatal, errors.New("poller already started")
	}
	defer p.state.Store(int32(StateStopped))

	sigCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger := p.opts.Logger.With(slog.String("source", p.src.String()))
	logger.Debug("poll loop started", slog.Duration("interval", p.opts.Interval))

	ticker := time.NewTicker(p.opts.Interval)
	defer ticker.Stop()

	err := p.cycle(sigCtx, logger)

	for err == nil && sigCtx.Err() == nil && !p.limitReached() {
		select {
		case <-sigCtx.Done():
			continue
		case <-ticker.C:
		case <-p.opts.Trigger:
			logger.Debug("triggered cycle")
		}

		// A tick and a cancellation can be ready together.
		if sigCtx.Err() != nil {
			break
		}

		err = p.cycle(sigCtx, logger)
	}

	p.state.Store(int32(StateStopping))

	if err != nil {
		logger.Error("poll loop aborted", slog.String("error", err.Error()))
		return OutcomeFatal, err
	}

	logger.Debug("poll loop stopped", slog.Int("cycles", p.seq), slog.Int("changes", p.changed))

	return OutcomeNormal, nil
}

func (p *Poller) limitReached() bool {
	return p.opts.MaxChanges > 0 && p.changed >= p.opts.MaxChanges
}

// cycle performs one fetch/parse/diff/report pass. Only sink failures are
// returned.
func (p *Poller) cycle(ctx context.Context, logger *slog.Logger) error {
	p.seq++
	c := Cycle{Seq: p.seq}

	err := p.step(ctx, logger, &c)

	if p.opts.OnCycle != nil && ctx.Err() == nil {
		p.opts.OnCycle(c)
	}

	return err
}

func (p *Poller) step(ctx context.Context, logger *slog.Logger, c *Cycle) error {
	data, err := p.src.Fetch(ctx)
	if err != nil {
		// Cancellation is a normal stop, not a failed cycle.
		if ctx.Err() != nil {
			return nil
		}

		c.Err = err
		logger.Debug("fetch failed", slog.String("error", err.Error()))

		return p.report.diagnostic(err)
	}

	if logger.Enabled(ctx, slog.LevelDebug) {
		logger.Debug("input data", slog.String("data", escapeForTerminal(string(data))))
	}

	// Identical bytes parse to an identical document. Only the digest is
	// kept, so the raw input (up to 128 MiB for URLs) is not retained
	// alongside the snapshot for comparison.
	sum := blake3.Sum256(data)
	if p.snapshot != nil && sum == p.digest {
		return nil
	}

	curr, err := p.opts.Parse(data)
	if err != nil {
		c.Err = fmt.Errorf("parsing output of %s: %w", p.src, err)
		logger.Debug("parse failed", slog.String("error", err.Error()))

		return p.report.diagnostic(c.Err)
	}

	p.digest = sum

	if p.snapshot == nil {
		p.snapshot = &curr
		c.Initial = true

		if p.opts.PrintInitial {
			return p.report.initial(curr)
		}

		return nil
	}

	prev := *p.snapshot
	c.Changes = jsondiff.Diff(prev, curr)
	p.snapshot = &curr

	if len(c.Changes) == 0 {
		return nil
	}

	p.changed++
	logger.Info("changes detected", slog.String("summary", jsondiff.Summary(c.Changes)))

	lines, err := p.opts.Formatter.Format(prev, curr, c.Changes)
	if err != nil {
		return p.report.diagnostic(err)
	}

	return p.report.changes(lines)
}
