// Package orthosphere measures the geometry of random directions in
// high-dimensional Euclidean space: the distribution of angles between random
// unit vectors, and how many pairwise near-orthogonal unit vectors a greedy
// rejection sampler can accumulate.
package orthosphere

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/caiodallaqua/orthosphere/internal/angle"
	"github.com/caiodallaqua/orthosphere/internal/bound"
	"github.com/caiodallaqua/orthosphere/internal/orthoset"
	"github.com/caiodallaqua/orthosphere/internal/sphere"
)

type Summary = angle.Summary

type Policy = bound.Policy

const (
	DOUBLING = bound.DOUBLING
	RANKIN   = bound.RANKIN
)

// Search is the stepwise near-orthogonal set search. See Lab.NewSearch.
type Search = orthoset.Search

type SearchOptions = orthoset.Options

var (
	SearchWithMaxSamples = orthoset.WithMaxSamples
	SearchWithOnAccept   = orthoset.WithOnAccept
)

const (
	SEARCHING = orthoset.SEARCHING
	DONE      = orthoset.DONE
)

// Lab bundles a random source with the measurement operations. It is safe for
// concurrent use; calls are serialized on the shared source.
type Lab struct {
	log bool

	mu      sync.Mutex
	sampler *sphere.Sampler
	seed    *uint64

	// Keeps track of option functions called in New to avoid duplication
	called map[string]bool
}

type Options func(*Lab) error

func newLab() *Lab {
	return &Lab{
		called: make(map[string]bool),
	}
}

// =================================== API ===================================

func New(opts ...Options) (*Lab, error) {
	lab := newLab()

	for _, opt := range opts {
		if err := opt(lab); err != nil {
			return nil, err
		}
	}

	if lab.seed != nil {
		lab.sampler = sphere.NewWithSeed(*lab.seed)
	} else {
		lab.sampler = sphere.New(nil)
	}

	return lab, nil
}

// WithSeed makes the lab's random stream reproducible.
func WithSeed(seed uint64) Options {
	return func(lab *Lab) error {
		if _, ok := lab.called["WithSeed"]; ok {
			return new(withSeedDuplicationError)
		}
		lab.called["WithSeed"] = true

		lab.seed = &seed

		return nil
	}
}

// WithLog logs each completed orthogonal set search at info level.
func WithLog() Options {
	return func(lab *Lab) error {
		if _, ok := lab.called["WithLog"]; ok {
			return new(withLogDuplicationError)
		}
		lab.called["WithLog"] = true

		lab.log = true

		return nil
	}
}

func (lab *Lab) SampleUnitVectors(dim, count uint32) ([][]float64, error) {
	lab.mu.Lock()
	defer lab.mu.Unlock()

	return lab.sampler.Sample(dim, count)
}

func (lab *Lab) BuildOrthogonalSet(ctx context.Context, dim uint32, toleranceDegrees float64, maxAttempts uint32) ([][]float64, error) {
	lab.mu.Lock()
	defer lab.mu.Unlock()

	set, err := orthoset.Build(ctx, lab.sampler, dim, toleranceDegrees, maxAttempts)
	if err != nil {
		return nil, err
	}

	if lab.log {
		slog.Info("orthogonal set built", "dim", dim, "tolerance", toleranceDegrees, "maxAttempts", maxAttempts, "size", len(set))
	}

	return set, nil
}

// NewSearch returns a search that draws from its own sampler, forked from the
// lab's seed when one is set, so it can be stepped without holding the lab.
func (lab *Lab) NewSearch(dim uint32, toleranceDegrees float64, maxAttempts uint32, opts ...SearchOptions) (*Search, error) {
	lab.mu.Lock()
	var sampler *sphere.Sampler
	if lab.seed != nil {
		sampler = sphere.NewWithSeed(*lab.seed ^ uint64(dim))
	} else {
		sampler = sphere.New(nil)
	}
	lab.mu.Unlock()

	return orthoset.New(sampler, dim, toleranceDegrees, maxAttempts, opts...)
}

// SampleUnitVectors draws count unit vectors uniformly from the sphere in R^dim.
func SampleUnitVectors(dim, count uint32) ([][]float64, error) {
	return sphere.New(nil).Sample(dim, count)
}

// ComputePairwiseAngles returns count*(count-1)/2 angles in degrees, folded
// into [0, 90] when foldReflection is set.
func ComputePairwiseAngles(vectors [][]float64, foldReflection bool) ([]float64, error) {
	return angle.Pairwise(vectors, foldReflection)
}

func SummarizeAngles(samples []float64) (Summary, error) {
	return angle.Summarize(samples)
}

func EstimateOrthogonalBound(dim uint32, policy Policy) (string, error) {
	return bound.Estimate(dim, policy)
}

// BuildOrthogonalSet greedily accumulates unit vectors whose pairwise angles
// all lie within toleranceDegrees of 90°, stopping after maxAttempts
// consecutive rejections.
func BuildOrthogonalSet(dim uint32, toleranceDegrees float64, maxAttempts uint32) ([][]float64, error) {
	return orthoset.Build(context.Background(), sphere.New(nil), dim, toleranceDegrees, maxAttempts)
}

// IsInvalidArgument reports whether err was caused by a bad input, such as a
// non-positive dimension, count or tolerance.
func IsInvalidArgument(err error) bool {
	var target interface{ InvalidArgument() bool }

	return errors.As(err, &target) && target.InvalidArgument()
}

// =================================== ERRORS ===================================

type withLogDuplicationError struct{}

func (e *withLogDuplicationError) Error() string {
	return "WithLog() duplication."
}

type withSeedDuplicationError struct{}

func (e *withSeedDuplicationError) Error() string {
	return "WithSeed() duplication."
}
