// Package bound estimates how many mutually near-orthogonal unit vectors can
// exist in a given dimension. Both policies are rough heuristics, not tight
// bounds, and they disagree with each other.
package bound

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"strings"
)

type Policy int

const (
	// 2^(dim-1)
	DOUBLING Policy = iota

	// 2^floor(0.401 * dim), after Rankin's bound for spherical codes near 90°.
	RANKIN
)

const (
	MIN_DIM uint32 = 1

	// Doubling bounds at or above this value are reported as powers of ten.
	EXACT_LIMIT uint64 = 1_000_000

	RANKIN_COEFFICIENT float64 = 0.401

	// Rankin exponents at or above this value are reported as powers of ten.
	RANKIN_EXACT_MAX_EXPONENT uint64 = 6
)

func (p Policy) String() string {
	switch p {
	case DOUBLING:
		return "doubling"
	case RANKIN:
		return "rankin"
	default:
		return "unknown(" + strconv.Itoa(int(p)) + ")"
	}
}

func ParsePolicy(name string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "doubling", "":
		return DOUBLING, nil
	case "rankin":
		return RANKIN, nil
	}

	err := &unknownPolicyError{name}
	logErr(err, "ParsePolicy")
	return 0, err
}

// Estimate returns the bound for dim as a decimal integer, or as "~10^<power>"
// once the value is too large for exact digits to mean anything.
func Estimate(dim uint32, policy Policy) (string, error) {
	if dim < MIN_DIM {
		err := &invalidDimError{dim}
		logErr(err, "Estimate")
		return "", err
	}

	switch policy {
	case DOUBLING:
		return doubling(dim), nil
	case RANKIN:
		return rankin(dim), nil
	}

	err := &unknownPolicyError{policy.String()}
	logErr(err, "Estimate")
	return "", err
}

// Log2 returns the base-2 logarithm of the bound for dim.
func Log2(dim uint32, policy Policy) (float64, error) {
	if dim < MIN_DIM {
		err := &invalidDimError{dim}
		logErr(err, "Log2")
		return 0, err
	}

	switch policy {
	case DOUBLING:
		if dim <= 1 {
			return math.Log2(float64(dim)), nil
		}
		return float64(dim - 1), nil
	case RANKIN:
		return float64(rankinExponent(dim)), nil
	}

	err := &unknownPolicyError{policy.String()}
	logErr(err, "Log2")
	return 0, err
}

func doubling(dim uint32) string {
	if dim <= 1 {
		return strconv.FormatUint(uint64(dim), 10)
	}

	exp := uint64(dim - 1)
	if exp < 64 && uint64(1)<<exp < EXACT_LIMIT {
		return strconv.FormatUint(uint64(1)<<exp, 10)
	}

	return approx(exp)
}

func rankin(dim uint32) string {
	exp := rankinExponent(dim)
	if exp < RANKIN_EXACT_MAX_EXPONENT {
		return strconv.FormatUint(uint64(1)<<exp, 10)
	}

	return approx(exp)
}

func rankinExponent(dim uint32) uint64 {
	return uint64(math.Floor(RANKIN_COEFFICIENT * float64(dim)))
}

// approx renders 2^exp as an order of magnitude.
func approx(exp uint64) string {
	power := int64(math.Floor(float64(exp) * math.Log10(2)))
	return fmt.Sprintf("~10^%d", power)
}

func logErr(err error, trace string) {
	slog.LogAttrs(
		context.TODO(),
		slog.LevelError,
		err.Error(),
		slog.String("trace", "orthosphere:internal:bound:"+trace),
	)
}
