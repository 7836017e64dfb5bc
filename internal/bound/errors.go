package bound

import "fmt"

type invalidDimError struct {
	got uint32
}

func (e *invalidDimError) Error() string {
	return fmt.Sprintf("dimension must be at least %d, but got: %d", MIN_DIM, e.got)
}

func (e *invalidDimError) InvalidArgument() bool { return true }

type unknownPolicyError struct {
	got string
}

func (e *unknownPolicyError) Error() string {
	return fmt.Sprintf("unknown bound policy: %q", e.got)
}

func (e *unknownPolicyError) InvalidArgument() bool { return true }
