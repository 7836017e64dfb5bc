// Package orthoset greedily accumulates pairwise near-orthogonal unit vectors
// by rejection sampling.
//
// A Search starts SEARCHING with an empty set. Each candidate is accepted
// only if its angle to every member lies within the tolerance of 90°.
// Acceptance resets the rejection counter, rejection increments it, and the
// search is DONE once maxAttempts consecutive candidates were rejected.
package orthoset

import (
	"context"
	"log/slog"
	"math"
	"slices"

	"github.com/caiodallaqua/orthosphere/internal/angle"
	"github.com/caiodallaqua/orthosphere/internal/sphere"
)

type State int

const (
	SEARCHING State = iota
	DONE
)

const (
	MIN_DIM uint32 = 1

	MIN_MAX_ATTEMPTS uint32 = 1

	// At 90° every direction qualifies and the search never ends.
	MAX_TOLERANCE float64 = angle.RIGHT_ANGLE
)

func (s State) String() string {
	if s == DONE {
		return "done"
	}

	return "searching"
}

type Search struct {
	sampler sphere.Contract

	dim         uint32
	tolerance   float64
	maxAttempts uint32

	set      [][]float64
	attempts uint32
	state    State

	// samples counts every candidate offered, accepted or not.
	samples    uint64
	maxSamples uint64
	truncated  bool

	onAccept func(size int)

	// Keeps track of option functions called in New to avoid duplication
	called map[string]bool
}

type Options func(*Search) error

// WithMaxSamples caps the total number of candidates. maxAttempts only bounds
// consecutive rejections, so without a cap a run has no fixed upper bound.
// Zero means no cap.
func WithMaxSamples(n uint64) Options {
	return func(s *Search) error {
		if _, ok := s.called["WithMaxSamples"]; ok {
			return new(withMaxSamplesDuplicationError)
		}
		s.called["WithMaxSamples"] = true

		s.maxSamples = n

		return nil
	}
}

// WithOnAccept registers fn to be called with the new set size after each
// acceptance.
func WithOnAccept(fn func(size int)) Options {
	return func(s *Search) error {
		if _, ok := s.called["WithOnAccept"]; ok {
			return new(withOnAcceptDuplicationError)
		}
		s.called["WithOnAccept"] = true

		s.onAccept = fn

		return nil
	}
}

func New(sampler sphere.Contract, dim uint32, tolerance float64, maxAttempts uint32, opts ...Options) (*Search, error) {
	if err := validate(sampler, dim, tolerance, maxAttempts); err != nil {
		logErr(err, "New")
		return nil, err
	}

	s := &Search{
		sampler:     sampler,
		dim:         dim,
		tolerance:   tolerance,
		maxAttempts: maxAttempts,
		set:         make([][]float64, 0),
		state:       SEARCHING,
		called:      make(map[string]bool),
	}

	for _, opt := range opts {
		if err := opt(s); err != nil {
			logErr(err, "New")
			return nil, err
		}
	}

	return s, nil
}

// Build runs a fresh search to completion and returns the accumulated set.
func Build(ctx context.Context, sampler sphere.Contract, dim uint32, tolerance float64, maxAttempts uint32, opts ...Options) ([][]float64, error) {
	s, err := New(sampler, dim, tolerance, maxAttempts, opts...)
	if err != nil {
		logErr(err, "Build")
		return nil, err
	}

	return s.Run(ctx)
}

// Run steps until the search is done. On cancellation it returns the set
// accumulated so far together with the context error.
func (s *Search) Run(ctx context.Context) ([][]float64, error) {
	for s.state == SEARCHING {
		if err := ctx.Err(); err != nil {
			return s.Set(), err
		}

		if _, err := s.Step(); err != nil {
			logErr(err, "Run")
			return s.Set(), err
		}
	}

	return s.Set(), nil
}

// Step draws one candidate from the sampler and offers it.
func (s *Search) Step() (bool, error) {
	if s.state == DONE {
		err := new(searchDoneError)
		logErr(err, "Step")
		return false, err
	}

	candidate, err := s.sampler.SampleOne(s.dim)
	if err != nil {
		logErr(err, "Step")
		return false, err
	}

	return s.Offer(candidate)
}

// Offer applies one transition with the given candidate and reports whether
// it was accepted.
func (s *Search) Offer(candidate []float64) (bool, error) {
	if s.state == DONE {
		err := new(searchDoneError)
		logErr(err, "Offer")
		return false, err
	}

	if uint32(len(candidate)) != s.dim {
		err := &vectorLenError{s.dim, len(candidate)}
		logErr(err, "Offer")
		return false, err
	}

	if i := slices.IndexFunc(candidate, notFinite); i >= 0 {
		err := &nonFiniteComponentError{i, candidate[i]}
		logErr(err, "Offer")
		return false, err
	}

	s.samples++

	accepted, err := s.nearlyOrthogonalToAll(candidate)
	if err != nil {
		logErr(err, "Offer")
		return false, err
	}

	if accepted {
		s.set = append(s.set, slices.Clone(candidate))
		s.attempts = 0

		if s.onAccept != nil {
			s.onAccept(len(s.set))
		}
	} else {
		s.attempts++
		if s.attempts >= s.maxAttempts {
			s.state = DONE
		}
	}

	if s.state == SEARCHING && s.maxSamples > 0 && s.samples >= s.maxSamples {
		s.state = DONE
		s.truncated = true
	}

	return accepted, nil
}

func (s *Search) nearlyOrthogonalToAll(candidate []float64) (bool, error) {
	for _, member := range s.set {
		deg, err := angle.Between(candidate, member)
		if err != nil {
			return false, err
		}

		if math.Abs(deg-angle.RIGHT_ANGLE) > s.tolerance {
			return false, nil
		}
	}

	return true, nil
}

// NaN compares false against the tolerance and would slip into the set.
func notFinite(val float64) bool {
	return math.IsNaN(val) || math.IsInf(val, 0)
}

func (s *Search) State() State {
	return s.state
}

// Attempts is the current run of consecutive rejections.
func (s *Search) Attempts() uint32 {
	return s.attempts
}

// Samples is the total number of candidates offered so far.
func (s *Search) Samples() uint64 {
	return s.samples
}

func (s *Search) Len() int {
	return len(s.set)
}

// Truncated reports whether the search stopped on the sample cap rather than
// on maxAttempts consecutive rejections.
func (s *Search) Truncated() bool {
	return s.truncated
}

// Set returns a copy of the accepted vectors, in acceptance order.
func (s *Search) Set() [][]float64 {
	set := make([][]float64, len(s.set))
	for i, vec := range s.set {
		set[i] = slices.Clone(vec)
	}

	return set
}

func (s *Search) Info() map[string]any {
	return map[string]any{
		"dim":         s.dim,
		"tolerance":   s.tolerance,
		"maxAttempts": s.maxAttempts,
		"maxSamples":  s.maxSamples,
		"size":        len(s.set),
		"samples":     s.samples,
		"state":       s.state.String(),
	}
}

func validate(sampler sphere.Contract, dim uint32, tolerance float64, maxAttempts uint32) error {
	if sampler == nil {
		return new(nilSamplerError)
	}

	if dim < MIN_DIM {
		return &invalidDimError{dim}
	}

	if !(tolerance > 0 && tolerance < MAX_TOLERANCE) {
		return &invalidToleranceError{tolerance}
	}

	if maxAttempts < MIN_MAX_ATTEMPTS {
		return &invalidMaxAttemptsError{maxAttempts}
	}

	return nil
}

func logErr(err error, trace string) {
	slog.LogAttrs(
		context.TODO(),
		slog.LevelError,
		err.Error(),
		slog.String("trace", "orthosphere:internal:orthoset:"+trace),
	)
}
