// Package sweep runs both measurement phases over a list of dimensions.
//
// Phase 1 samples a batch of unit vectors per dimension and summarizes their
// pairwise angles next to the bound estimate. Phase 2 grows a near-orthogonal
// set per dimension. Dimensions are independent and may run concurrently;
// every work unit owns its own sampler.
package sweep

import (
	"context"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/caiodallaqua/orthosphere/internal/angle"
	"github.com/caiodallaqua/orthosphere/internal/bound"
	"github.com/caiodallaqua/orthosphere/internal/config"
	"github.com/caiodallaqua/orthosphere/internal/orthoset"
	"github.com/caiodallaqua/orthosphere/internal/progress"
	"github.com/caiodallaqua/orthosphere/internal/sphere"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

type phase uint64

const (
	ANGLES phase = iota
	SEARCH
)

type AngleRow struct {
	Dim     uint32
	Summary angle.Summary
	Bound   string
	Elapsed time.Duration
}

type SearchRow struct {
	Dim       uint32
	Count     int
	Samples   uint64
	Truncated bool

	// BoundLog2 is log2 of the estimated ceiling, for comparison with Count.
	BoundLog2 float64
	Elapsed   time.Duration
}

type Sweeper struct {
	cfg      *config.Config
	policy   bound.Policy
	runID    string
	logger   *slog.Logger
	progress progress.Reporter

	// Keeps track of option functions called in New to avoid duplication
	called map[string]bool
}

type Options func(*Sweeper) error

func WithLogger(logger *slog.Logger) Options {
	return func(s *Sweeper) error {
		if _, ok := s.called["WithLogger"]; ok {
			return new(withLoggerDuplicationError)
		}
		s.called["WithLogger"] = true

		s.logger = logger

		return nil
	}
}

// WithProgress attaches a Phase 2 reporter. It is only driven when the sweep
// runs on a single worker.
func WithProgress(reporter progress.Reporter) Options {
	return func(s *Sweeper) error {
		if _, ok := s.called["WithProgress"]; ok {
			return new(withProgressDuplicationError)
		}
		s.called["WithProgress"] = true

		s.progress = reporter

		return nil
	}
}

func New(cfg *config.Config, opts ...Options) (*Sweeper, error) {
	if cfg == nil {
		err := new(nilConfigError)
		logErr(err, "New")
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		logErr(err, "New")
		return nil, err
	}

	s := &Sweeper{
		cfg:    cfg,
		policy: cfg.BoundPolicy(),
		runID:  uuid.NewString(),
		called: make(map[string]bool),
	}

	for _, opt := range opts {
		if err := opt(s); err != nil {
			logErr(err, "New")
			return nil, err
		}
	}

	if s.logger == nil {
		s.logger = slog.Default()
	}
	s.logger = s.logger.With("run_id", s.runID)

	return s, nil
}

func (s *Sweeper) RunID() string {
	return s.runID
}

// Angles runs Phase 1. Rows come back in the configured dimension order.
func (s *Sweeper) Angles(ctx context.Context) ([]AngleRow, error) {
	rows := make([]AngleRow, len(s.cfg.Dimensions))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.Workers)

	for i, dim := range s.cfg.Dimensions {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			row, err := s.angleRow(dim)
			if err != nil {
				return err
			}

			rows[i] = row
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		logErr(err, "Angles")
		return nil, err
	}

	return rows, nil
}

func (s *Sweeper) angleRow(dim uint32) (AngleRow, error) {
	start := time.Now()

	vectors, err := s.sampler(dim, ANGLES).Sample(dim, s.cfg.Angles.NumVectors)
	if err != nil {
		return AngleRow{}, err
	}

	samples, err := angle.Pairwise(vectors, s.cfg.Angles.FoldReflection)
	if err != nil {
		return AngleRow{}, err
	}

	summary, err := angle.Summarize(samples)
	if err != nil {
		return AngleRow{}, err
	}

	elapsed := time.Since(start)

	est, err := bound.Estimate(dim, s.policy)
	if err != nil {
		return AngleRow{}, err
	}

	s.logger.Debug("angles measured", "dim", dim, "pairs", len(samples), "elapsed", elapsed)

	return AngleRow{
		Dim:     dim,
		Summary: summary,
		Bound:   est,
		Elapsed: elapsed,
	}, nil
}

// Search runs Phase 2. Rows come back in the configured dimension order.
// Cancelling ctx stops every outstanding search.
func (s *Sweeper) Search(ctx context.Context) ([]SearchRow, error) {
	rows := make([]SearchRow, len(s.cfg.Dimensions))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.Workers)

	for i, dim := range s.cfg.Dimensions {
		g.Go(func() error {
			row, err := s.searchRow(ctx, dim)
			if err != nil {
				return err
			}

			rows[i] = row
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		logErr(err, "Search")
		return nil, err
	}

	return rows, nil
}

func (s *Sweeper) searchRow(ctx context.Context, dim uint32) (SearchRow, error) {
	reporter := s.reporter()
	every := s.cfg.Search.ProgressEvery

	onAccept := func(size int) {
		reporter.Update(size)
		if every > 0 && size%every == 0 {
			s.logger.Info("search progress", "dim", dim, "size", size)
		}
	}

	search, err := orthoset.New(
		s.sampler(dim, SEARCH),
		dim,
		s.cfg.Search.Tolerance,
		s.cfg.Search.MaxAttempts,
		orthoset.WithMaxSamples(s.cfg.Search.MaxSamples),
		orthoset.WithOnAccept(onAccept),
	)
	if err != nil {
		return SearchRow{}, err
	}

	start := time.Now()

	reporter.Start(dim)
	set, err := search.Run(ctx)
	reporter.Finish()

	if err != nil {
		return SearchRow{}, err
	}

	log2, err := bound.Log2(dim, s.policy)
	if err != nil {
		return SearchRow{}, err
	}

	if search.Truncated() {
		s.logger.Warn("search stopped on sample cap", "dim", dim, "size", len(set), "samples", search.Samples())
	}

	return SearchRow{
		Dim:       dim,
		Count:     len(set),
		Samples:   search.Samples(),
		Truncated: search.Truncated(),
		BoundLog2: log2,
		Elapsed:   time.Since(start),
	}, nil
}

func (s *Sweeper) reporter() progress.Reporter {
	if s.progress == nil || s.cfg.Workers > 1 {
		return new(progress.SearchProgress)
	}

	return s.progress
}

// sampler returns a fresh sampler for one work unit. With a configured seed the
// stream depends only on the seed, dimension and phase, not on scheduling.
func (s *Sweeper) sampler(dim uint32, p phase) *sphere.Sampler {
	if s.cfg.Seed == nil {
		return sphere.New(nil)
	}

	return sphere.New(rand.NewPCG(*s.cfg.Seed, uint64(dim)<<1|uint64(p)))
}

func logErr(err error, trace string) {
	slog.LogAttrs(
		context.TODO(),
		slog.LevelError,
		err.Error(),
		slog.String("trace", "orthosphere:internal:sweep:"+trace),
	)
}
