// Package sphere draws random unit vectors uniformly distributed on the
// surface of the unit sphere in R^dim.
package sphere

import (
	"context"
	"log/slog"
	"math"
	"math/rand/v2"
)

const (
	MIN_DIM uint32 = 1

	MIN_COUNT uint32 = 1
)

type Contract interface {
	SampleOne(dim uint32) ([]float64, error)
	Sample(dim, count uint32) ([][]float64, error)
}

// Sampler is not safe for concurrent use. Give each goroutine its own.
type Sampler struct {
	// draw returns one standard normal variate.
	draw func() float64

	// resampled counts degenerate draws that had to be redone.
	resampled uint64
}

// New returns a sampler reading from src. A nil src gets a randomly seeded PCG.
func New(src rand.Source) *Sampler {
	if src == nil {
		src = rand.NewPCG(rand.Uint64(), rand.Uint64())
	}

	rng := rand.New(src)

	return &Sampler{
		draw: rng.NormFloat64,
	}
}

func NewWithSeed(seed uint64) *Sampler {
	return New(rand.NewPCG(seed, seed))
}

func (s *Sampler) SampleOne(dim uint32) ([]float64, error) {
	if dim < MIN_DIM {
		err := &invalidDimError{dim}
		logErr(err, "SampleOne")
		return nil, err
	}

	return s.unitVector(dim), nil
}

func (s *Sampler) Sample(dim, count uint32) ([][]float64, error) {
	if dim < MIN_DIM {
		err := &invalidDimError{dim}
		logErr(err, "Sample")
		return nil, err
	}

	if count < MIN_COUNT {
		err := &invalidCountError{count}
		logErr(err, "Sample")
		return nil, err
	}

	vectors := make([][]float64, count)
	for i := range vectors {
		vectors[i] = s.unitVector(dim)
	}

	return vectors, nil
}

// Resampled reports how many draws were discarded for having zero norm.
func (s *Sampler) Resampled() uint64 {
	return s.resampled
}

func (s *Sampler) unitVector(dim uint32) []float64 {
	vec := make([]float64, dim)

	for {
		for i := range vec {
			vec[i] = s.draw()
		}

		if err := normalize(vec); err == nil {
			return vec
		}

		s.resampled++
		slog.LogAttrs(
			context.TODO(),
			slog.LevelDebug,
			"degenerate draw, resampling",
			slog.String("trace", "orthosphere:internal:sphere:unitVector"),
			slog.Uint64("dim", uint64(dim)),
		)
	}
}

func normalize(vec []float64) error {
	norm := Norm(vec)
	if norm == 0 || math.IsInf(norm, 0) || math.IsNaN(norm) {
		return new(zeroNormError)
	}

	for i := range vec {
		vec[i] /= norm
	}

	return nil
}

// Norm returns the Euclidean norm of vec.
func Norm(vec []float64) float64 {
	var squared float64

	for _, val := range vec {
		squared += val * val
	}

	return math.Sqrt(squared)
}

func logErr(err error, trace string) {
	slog.LogAttrs(
		context.TODO(),
		slog.LevelError,
		err.Error(),
		slog.String("trace", "orthosphere:internal:sphere:"+trace),
	)
}
