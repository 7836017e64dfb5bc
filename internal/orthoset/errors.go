package orthoset

import "fmt"

type invalidDimError struct {
	got uint32
}

func (e *invalidDimError) Error() string {
	return fmt.Sprintf("dimension must be at least %d, but got: %d", MIN_DIM, e.got)
}

func (e *invalidDimError) InvalidArgument() bool { return true }

type invalidToleranceError struct {
	got float64
}

func (e *invalidToleranceError) Error() string {
	return fmt.Sprintf("expected tolerance to be in (0, %v) degrees, but got: %v", MAX_TOLERANCE, e.got)
}

func (e *invalidToleranceError) InvalidArgument() bool { return true }

type invalidMaxAttemptsError struct {
	got uint32
}

func (e *invalidMaxAttemptsError) Error() string {
	return fmt.Sprintf("max attempts must be at least %d, but got: %d", MIN_MAX_ATTEMPTS, e.got)
}

func (e *invalidMaxAttemptsError) InvalidArgument() bool { return true }

type vectorLenError struct {
	expected uint32
	got      int
}

func (e *vectorLenError) Error() string {
	return fmt.Sprintf("vector length must match dimension (expected: %v, got: %v)", e.expected, e.got)
}

func (e *vectorLenError) InvalidArgument() bool { return true }

type nonFiniteComponentError struct {
	index int
	got   float64
}

func (e *nonFiniteComponentError) Error() string {
	return fmt.Sprintf("vector components must be finite, but got %v at index %d", e.got, e.index)
}

func (e *nonFiniteComponentError) InvalidArgument() bool { return true }

type nilSamplerError struct{}

func (e *nilSamplerError) Error() string {
	return "sampler cannot be nil"
}

func (e *nilSamplerError) InvalidArgument() bool { return true }

type searchDoneError struct{}

func (e *searchDoneError) Error() string {
	return "search is done and accepts no more candidates"
}

type withMaxSamplesDuplicationError struct{}

func (e *withMaxSamplesDuplicationError) Error() string {
	return "WithMaxSamples() duplication."
}

type withOnAcceptDuplicationError struct{}

func (e *withOnAcceptDuplicationError) Error() string {
	return "WithOnAccept() duplication."
}
