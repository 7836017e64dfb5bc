package sphere

import "fmt"

type invalidDimError struct {
	got uint32
}

func (e *invalidDimError) Error() string {
	return fmt.Sprintf("dimension must be at least %d, but got: %d", MIN_DIM, e.got)
}

func (e *invalidDimError) InvalidArgument() bool { return true }

type invalidCountError struct {
	got uint32
}

func (e *invalidCountError) Error() string {
	return fmt.Sprintf("vector count must be at least %d, but got: %d", MIN_COUNT, e.got)
}

func (e *invalidCountError) InvalidArgument() bool { return true }

type zeroNormError struct{}

func (e *zeroNormError) Error() string {
	return "vector has zero norm and cannot be normalized"
}
