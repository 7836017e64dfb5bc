// Package angle computes angular separations between unit vectors and the
// summary statistics of their distribution.
package angle

import (
	"context"
	"log/slog"
	"math"
	"slices"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

const (
	RIGHT_ANGLE    float64 = 90
	STRAIGHT_ANGLE float64 = 180

	DEGREES_PER_RADIAN float64 = 180 / math.Pi
)

// Summary holds the descriptive statistics of an angle distribution, in degrees.
type Summary struct {
	Min    float64
	Max    float64
	Mean   float64
	Std    float64
	Median float64
}

// Between returns the angle in degrees between two unit vectors.
// The dot product is clamped to [-1, 1] before taking the arccosine.
func Between(vecA, vecB []float64) (float64, error) {
	dp, err := dotProduct(vecA, vecB)
	if err != nil {
		logErr(err, "Between")
		return 0, err
	}

	return math.Acos(clamp(dp, -1, 1)) * DEGREES_PER_RADIAN, nil
}

// Fold identifies a direction with its antipode, mapping [0, 180] onto [0, 90].
func Fold(deg float64) float64 {
	return min(deg, STRAIGHT_ANGLE-deg)
}

// Pairwise returns one angle per unordered pair (i < j) of vectors, in
// lexicographic pair order. Fewer than two vectors yield no samples.
func Pairwise(vectors [][]float64, fold bool) ([]float64, error) {
	n := len(vectors)
	samples := make([]float64, 0, NumPairs(n))

	for i := 0; i < n-1; i++ {
		for j := i + 1; j < n; j++ {
			deg, err := Between(vectors[i], vectors[j])
			if err != nil {
				logErr(err, "Pairwise")
				return nil, err
			}

			if fold {
				deg = Fold(deg)
			}

			samples = append(samples, deg)
		}
	}

	return samples, nil
}

// NumPairs is the number of unordered pairs among n items.
func NumPairs(n int) int {
	if n < 2 {
		return 0
	}

	return n * (n - 1) / 2
}

// Summarize computes min, max, mean, population standard deviation and
// median. samples is left untouched.
func Summarize(samples []float64) (Summary, error) {
	if len(samples) == 0 {
		err := new(emptySamplesError)
		logErr(err, "Summarize")
		return Summary{}, err
	}

	sorted := slices.Clone(samples)
	slices.Sort(sorted)

	mean, std := stat.PopMeanStdDev(sorted, nil)

	return Summary{
		Min:    floats.Min(sorted),
		Max:    floats.Max(sorted),
		Mean:   mean,
		Std:    std,
		Median: median(sorted),
	}, nil
}

// median averages the two middle values for an even count. stat.Quantile with
// stat.Empirical would return the lower one instead.
func median(sorted []float64) float64 {
	mid := len(sorted) / 2

	if len(sorted)%2 == 1 {
		return sorted[mid]
	}

	return (sorted[mid-1] + sorted[mid]) / 2
}

func clamp(val, lo, hi float64) float64 {
	return max(lo, min(val, hi))
}

func dotProduct(vecA, vecB []float64) (res float64, err error) {
	if len(vecA) != len(vecB) {
		err = new(vectorsNotSameLenError)
		logErr(err, "dotProduct")
		return 0, err
	}

	for i := range vecA {
		res += vecA[i] * vecB[i]
	}

	return res, nil
}

func logErr(err error, trace string) {
	slog.LogAttrs(
		context.TODO(),
		slog.LevelError,
		err.Error(),
		slog.String("trace", "orthosphere:internal:angle:"+trace),
	)
}
