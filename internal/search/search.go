package search

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	apperrors "github.com/agbru/parsearch/internal/errors"
	"github.com/agbru/parsearch/internal/logging"
)

const tracerName = "github.com/agbru/parsearch/internal/search"

// Report is the detailed outcome of one search.
type Report struct {
	// Found is true iff some element equals the target.
	Found bool
	// Length is the sequence length that was searched.
	Length int
	// Workers is the number of workers (and segments) used.
	Workers int
	// Winner is the index of the segment whose worker found the match, or -1.
	Winner int
	// Segments holds per-worker statistics, indexed by segment.
	Segments []SegmentStats
	// Duration is the wall time from the first spawn to the end of the join.
	Duration time.Duration
}

// Scanned returns the total number of comparisons performed by all workers.
func (r Report) Scanned() int {
	total := 0
	for _, s := range r.Segments {
		total += s.Scanned
	}
	return total
}

// EarlyExits returns how many workers stopped because another worker matched.
func (r Report) EarlyExits() int {
	n := 0
	for _, s := range r.Segments {
		if s.Outcome == OutcomeEarlyExit {
			n++
		}
	}
	return n
}

// Searcher runs searches and reports them to its observer, logger and tracer.
// A Searcher holds no per-search state and is safe for concurrent use.
type Searcher struct {
	logger   logging.Logger
	observer Observer
	tracer   trace.Tracer
}

// Option configures a Searcher.
type Option func(*Searcher)

// WithLogger sets the logger used for per-search debug entries.
func WithLogger(l logging.Logger) Option {
	return func(s *Searcher) { s.logger = l }
}

// WithObserver adds an observer notified after every search. Observers
// given in several options are notified in the order they were added.
func WithObserver(o Observer) Option {
	return func(s *Searcher) {
		switch cur := s.observer.(type) {
		case nil:
			s.observer = o
		case Observers:
			s.observer = append(cur, o)
		default:
			s.observer = Observers{cur, o}
		}
	}
}

// WithTracer overrides the OpenTelemetry tracer. By default the global
// tracer provider is used.
func WithTracer(t trace.Tracer) Option {
	return func(s *Searcher) { s.tracer = t }
}

// New creates a Searcher.
func New(opts ...Option) *Searcher {
	s := &Searcher{}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logging.NewNopLogger()
	}
	if s.observer == nil {
		s.observer = NopObserver{}
	}
	if s.tracer == nil {
		s.tracer = otel.Tracer(tracerName)
	}
	return s
}

// Search reports whether target occurs in seq, using workers goroutines and
// value equality. It is a shorthand for Run with a default Searcher.
func Search[T comparable](ctx context.Context, target T, seq Sequence[T], workers int, opts ...Option) (bool, error) {
	report, err := Run(ctx, New(opts...), target, seq, workers, Equal[T])
	return report.Found, err
}

// SearchFunc is like Search but compares elements with equal.
func SearchFunc[T any](ctx context.Context, target T, seq Sequence[T], workers int, equal EqualFunc[T], opts ...Option) (bool, error) {
	report, err := Run(ctx, New(opts...), target, seq, workers, equal)
	return report.Found, err
}

// Run performs one parallel search and returns its detailed report.
//
// It partitions seq into workers segments, starts one goroutine per segment
// and waits for all of them, even after one has found a match. Only then is
// the shared flag read, once, to produce the result.
//
// Errors:
//   - ConfigError: workers is not positive, does not divide seq.Len(), or
//     seq/equal is nil. No worker is started.
//   - WorkerFault: a worker panicked. All workers are joined first; the
//     first fault is returned and the boolean result is discarded.
//   - InterruptedError: ctx was done before or while waiting for the
//     workers. Running workers are not interrupted; they are joined before
//     Run returns.
func Run[T any](ctx context.Context, s *Searcher, target T, seq Sequence[T], workers int, equal EqualFunc[T]) (Report, error) {
	if s == nil {
		s = New()
	}
	report := Report{Workers: workers, Winner: -1}

	if seq == nil || equal == nil {
		err := apperrors.NewConfigError("search requires a sequence and an equality function")
		s.observer.SearchCompleted(report, err)
		return report, err
	}
	report.Length = seq.Len()

	segments, err := Partition(report.Length, workers)
	if err != nil {
		s.observer.SearchCompleted(report, err)
		return report, err
	}
	if err := ctx.Err(); err != nil {
		err = apperrors.InterruptedError{Cause: err}
		s.observer.SearchCompleted(report, err)
		return report, err
	}

	ctx, span := s.tracer.Start(ctx, "search.Run", trace.WithAttributes(
		attribute.Int("search.length", report.Length),
		attribute.Int("search.workers", workers),
	))
	defer span.End()

	flag := &FoundFlag{}
	stats := make([]SegmentStats, len(segments))

	start := time.Now()
	var g errgroup.Group
	for i, seg := range segments {
		t := task[T]{target: target, seq: seq, segment: seg, flag: flag, equal: equal}
		g.Go(func() error {
			st, err := t.scan()
			stats[i] = st
			return err
		})
	}

	var faultErr error
	joined := make(chan struct{})
	go func() {
		faultErr = g.Wait()
		close(joined)
	}()

	var interrupted error
	select {
	case <-joined:
	case <-ctx.Done():
		interrupted = ctx.Err()
		<-joined
	}
	report.Duration = time.Since(start)
	report.Segments = stats

	switch {
	case faultErr != nil:
		err = faultErr
	case interrupted != nil:
		err = apperrors.InterruptedError{Cause: interrupted}
	default:
		report.Found = flag.Load()
		report.Winner = flag.Winner()
	}

	span.SetAttributes(
		attribute.Bool("search.found", report.Found),
		attribute.Int("search.winner", report.Winner),
		attribute.Int("search.scanned", report.Scanned()),
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		s.logger.Error("search failed", err,
			logging.Int("length", report.Length), logging.Int("workers", workers))
	} else {
		s.logger.Debug("search completed",
			logging.Int("length", report.Length),
			logging.Int("workers", workers),
			logging.Bool("found", report.Found),
			logging.Int("winner", report.Winner),
			logging.Int("scanned", report.Scanned()),
			logging.String("duration", report.Duration.String()))
	}

	s.observer.SearchCompleted(report, err)
	return report, err
}
