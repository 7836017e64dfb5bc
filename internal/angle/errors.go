package angle

type vectorsNotSameLenError struct{}

func (e *vectorsNotSameLenError) Error() string {
	return "vectors must have the same length"
}

func (e *vectorsNotSameLenError) InvalidArgument() bool { return true }

type emptySamplesError struct{}

func (e *emptySamplesError) Error() string {
	return "cannot summarize an empty sample set"
}

func (e *emptySamplesError) InvalidArgument() bool { return true }
