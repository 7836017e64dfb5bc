package orthoset

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"testing"

	"github.com/caiodallaqua/orthosphere/internal/angle"
	"github.com/caiodallaqua/orthosphere/internal/sphere"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	// Overwrites the logger to keep tests outputs clean
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	slog.SetDefault(logger)

	os.Exit(m.Run())
}

// scripted hands out a fixed sequence of vectors, then repeats the last one.
type scripted struct {
	vectors [][]float64
	next    int
}

func (s *scripted) SampleOne(dim uint32) ([]float64, error) {
	vec := s.vectors[min(s.next, len(s.vectors)-1)]
	s.next++

	return vec, nil
}

func (s *scripted) Sample(dim, count uint32) ([][]float64, error) {
	vectors := make([][]float64, count)
	for i := range vectors {
		vectors[i], _ = s.SampleOne(dim)
	}

	return vectors, nil
}

func TestNew(t *testing.T) {
	testCases := []struct {
		name        string
		sampler     sphere.Contract
		dim         uint32
		tolerance   float64
		maxAttempts uint32
		err         error
	}{
		{
			name:        "valid",
			sampler:     sphere.New(nil),
			dim:         3,
			tolerance:   2,
			maxAttempts: 3,
			err:         nil,
		},
		{
			name:        "nil sampler",
			sampler:     nil,
			dim:         3,
			tolerance:   2,
			maxAttempts: 3,
			err:         new(nilSamplerError),
		},
		{
			name:        "zero dim",
			sampler:     sphere.New(nil),
			dim:         0,
			tolerance:   2,
			maxAttempts: 3,
			err:         &invalidDimError{0},
		},
		{
			name:        "zero tolerance",
			sampler:     sphere.New(nil),
			dim:         3,
			tolerance:   0,
			maxAttempts: 3,
			err:         &invalidToleranceError{0},
		},
		{
			name:        "negative tolerance",
			sampler:     sphere.New(nil),
			dim:         3,
			tolerance:   -1,
			maxAttempts: 3,
			err:         &invalidToleranceError{-1},
		},
		{
			name:        "right angle tolerance",
			sampler:     sphere.New(nil),
			dim:         3,
			tolerance:   90,
			maxAttempts: 3,
			err:         &invalidToleranceError{90},
		},
		{
			name:        "zero max attempts",
			sampler:     sphere.New(nil),
			dim:         3,
			tolerance:   2,
			maxAttempts: 0,
			err:         &invalidMaxAttemptsError{0},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			s, err := New(tc.sampler, tc.dim, tc.tolerance, tc.maxAttempts)
			assert.Equal(t, tc.err, err)

			if tc.err != nil {
				assert.Nil(t, s)
				return
			}

			assert.Equal(t, SEARCHING, s.State())
			assert.Zero(t, s.Attempts())
			assert.Zero(t, s.Len())
		})
	}
}

func TestNew_OptionDuplication(t *testing.T) {
	testCases := []struct {
		name string
		opts []Options
		err  error
	}{
		{
			name: "max samples twice",
			opts: []Options{WithMaxSamples(1), WithMaxSamples(2)},
			err:  new(withMaxSamplesDuplicationError),
		},
		{
			name: "on accept twice",
			opts: []Options{WithOnAccept(func(int) {}), WithOnAccept(func(int) {})},
			err:  new(withOnAcceptDuplicationError),
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			s, err := New(sphere.New(nil), 3, 2, 3, tc.opts...)
			assert.Equal(t, tc.err, err)
			assert.Nil(t, s)
		})
	}
}

func TestOffer_StateMachine(t *testing.T) {
	s := setup(t, 3, 2, 2)

	// empty set accepts anything
	accepted, err := s.Offer([]float64{1, 0, 0})
	assert.NoError(t, err)
	assert.True(t, accepted)
	assert.Equal(t, 1, s.Len())
	assert.Zero(t, s.Attempts())

	// parallel to a member
	accepted, err = s.Offer([]float64{1, 0, 0})
	assert.NoError(t, err)
	assert.False(t, accepted)
	assert.Equal(t, uint32(1), s.Attempts())
	assert.Equal(t, SEARCHING, s.State())

	// orthogonal, resets attempts
	accepted, err = s.Offer([]float64{0, 1, 0})
	assert.NoError(t, err)
	assert.True(t, accepted)
	assert.Equal(t, 2, s.Len())
	assert.Zero(t, s.Attempts())

	// orthogonal to the first member only, one violation is enough
	accepted, err = s.Offer([]float64{0, 1, 0})
	assert.NoError(t, err)
	assert.False(t, accepted)
	assert.Equal(t, uint32(1), s.Attempts())

	accepted, err = s.Offer([]float64{0, -1, 0})
	assert.NoError(t, err)
	assert.False(t, accepted)
	assert.Equal(t, uint32(2), s.Attempts())
	assert.Equal(t, DONE, s.State())

	accepted, err = s.Offer([]float64{0, 0, 1})
	assert.Equal(t, new(searchDoneError), err)
	assert.False(t, accepted)
	assert.Equal(t, 2, s.Len())
	assert.Equal(t, uint64(5), s.Samples())

	_, err = s.Step()
	assert.Equal(t, new(searchDoneError), err)
}

func TestOffer_ToleranceBoundary(t *testing.T) {
	rad := func(deg float64) float64 { return deg * math.Pi / 180 }

	testCases := []struct {
		name      string
		deg       float64
		tolerance float64
		accepted  bool
	}{
		{"exactly orthogonal", 90, 2, true},
		{"inside tolerance below", 88.5, 2, true},
		{"inside tolerance above", 91.5, 2, true},
		{"outside tolerance below", 87.5, 2, false},
		{"outside tolerance above", 92.5, 2, false},
		{"wide tolerance", 60, 45, true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			s := setup(t, 2, tc.tolerance, 5)

			_, err := s.Offer([]float64{1, 0})
			require.NoError(t, err)

			accepted, err := s.Offer([]float64{math.Cos(rad(tc.deg)), math.Sin(rad(tc.deg))})
			assert.NoError(t, err)
			assert.Equal(t, tc.accepted, accepted)
		})
	}
}

func TestOffer_VectorLen(t *testing.T) {
	s := setup(t, 3, 2, 2)

	accepted, err := s.Offer([]float64{1, 0})
	assert.Equal(t, &vectorLenError{3, 2}, err)
	assert.False(t, accepted)
	assert.Zero(t, s.Samples())
}

func TestOffer_NonFinite(t *testing.T) {
	testCases := []struct {
		name      string
		candidate []float64
		index     int
	}{
		{"NaN", []float64{math.NaN(), 0}, 0},
		{"positive infinity", []float64{0, math.Inf(1)}, 1},
		{"negative infinity", []float64{math.Inf(-1), math.Inf(-1)}, 0},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			s := setup(t, 2, 2, 2)

			_, err := s.Offer([]float64{1, 0})
			require.NoError(t, err)

			accepted, err := s.Offer(tc.candidate)
			assert.False(t, accepted)

			var target *nonFiniteComponentError
			require.ErrorAs(t, err, &target)
			assert.Equal(t, tc.index, target.index)
			assert.True(t, target.InvalidArgument())

			assert.Equal(t, [][]float64{{1, 0}}, s.Set())
			assert.Equal(t, uint64(1), s.Samples())
			assert.Zero(t, s.Attempts())
			assert.Equal(t, SEARCHING, s.State())
		})
	}
}

func TestOffer_CopiesCandidate(t *testing.T) {
	s := setup(t, 2, 2, 2)

	candidate := []float64{1, 0}
	_, err := s.Offer(candidate)
	require.NoError(t, err)

	candidate[0] = 42
	assert.Equal(t, [][]float64{{1, 0}}, s.Set())

	set := s.Set()
	set[0][1] = 42
	assert.Equal(t, [][]float64{{1, 0}}, s.Set())
}

func TestStep_Scripted(t *testing.T) {
	sampler := &scripted{vectors: [][]float64{
		{1, 0, 0},
		{0, 0, 1},
		{0, 0, 1},
		{0, 1, 0},
		{1, 0, 0},
	}}

	s, err := New(sampler, 3, 1, 3)
	require.NoError(t, err)

	set, err := s.Run(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, [][]float64{{1, 0, 0}, {0, 0, 1}, {0, 1, 0}}, set)
	assert.Equal(t, DONE, s.State())
	assert.False(t, s.Truncated())
	// three accepted, four rejected
	assert.Equal(t, uint64(7), s.Samples())
}

func TestBuild_OneDimension(t *testing.T) {
	maxAttempts := uint32(10)

	s, err := New(sphere.New(nil), 1, 1.0, maxAttempts)
	require.NoError(t, err)

	set, err := s.Run(context.Background())
	assert.NoError(t, err)
	assert.Len(t, set, 1)
	assert.Equal(t, DONE, s.State())
	assert.Equal(t, maxAttempts, s.Attempts())
	assert.Equal(t, uint64(maxAttempts)+1, s.Samples())
}

func TestBuild_PairwiseNearlyOrthogonal(t *testing.T) {
	testCases := []struct {
		dim         uint32
		tolerance   float64
		maxAttempts uint32
	}{
		{2, 5, 20},
		{3, 10, 20},
		{16, 10, 5},
		{64, 5, 5},
		{256, 2, 3},
	}

	for _, tc := range testCases {
		t.Run(fmt.Sprintf("dim=%d_tolerance=%v", tc.dim, tc.tolerance), func(t *testing.T) {
			set, err := Build(context.Background(), sphere.New(nil), tc.dim, tc.tolerance, tc.maxAttempts)
			require.NoError(t, err)
			assert.NotEmpty(t, set)

			for i := 0; i < len(set)-1; i++ {
				for j := i + 1; j < len(set); j++ {
					deg, err := angle.Between(set[i], set[j])
					require.NoError(t, err)
					assert.LessOrEqual(t, math.Abs(deg-90), tc.tolerance)
				}
			}
		})
	}
}

func TestBuild_InvalidArgs(t *testing.T) {
	set, err := Build(context.Background(), sphere.New(nil), 0, 2, 3)
	assert.Equal(t, &invalidDimError{0}, err)
	assert.Nil(t, set)
}

func TestRun_MaxSamples(t *testing.T) {
	sampler := &scripted{vectors: [][]float64{{1, 0}, {0, 1}, {1, 0}}}

	s, err := New(sampler, 2, 2, 100, WithMaxSamples(2))
	require.NoError(t, err)

	set, err := s.Run(context.Background())
	assert.NoError(t, err)
	assert.Len(t, set, 2)
	assert.Equal(t, DONE, s.State())
	assert.True(t, s.Truncated())
	assert.Equal(t, uint64(2), s.Samples())
}

func TestRun_Cancelled(t *testing.T) {
	s := setup(t, 8, 2, 3)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	set, err := s.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, set)
	assert.Equal(t, SEARCHING, s.State())
}

func TestWithOnAccept(t *testing.T) {
	var sizes []int

	sampler := &scripted{vectors: [][]float64{{1, 0}, {0, 1}, {1, 0}}}

	s, err := New(sampler, 2, 2, 1, WithOnAccept(func(size int) {
		sizes = append(sizes, size)
	}))
	require.NoError(t, err)

	_, err = s.Run(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, []int{1, 2}, sizes)
}

func TestInfo(t *testing.T) {
	s := setup(t, 4, 2, 3)

	info := s.Info()
	assert.Equal(t, uint32(4), info["dim"])
	assert.Equal(t, 2.0, info["tolerance"])
	assert.Equal(t, uint32(3), info["maxAttempts"])
	assert.Equal(t, "searching", info["state"])
}

func setup(t *testing.T, dim uint32, tolerance float64, maxAttempts uint32) *Search {
	s, err := New(sphere.New(nil), dim, tolerance, maxAttempts)
	require.NoError(t, err)
	require.NotNil(t, s)

	return s
}
