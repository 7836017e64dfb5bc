package sweep

type nilConfigError struct{}

func (e *nilConfigError) Error() string {
	return "config cannot be nil"
}

func (e *nilConfigError) InvalidArgument() bool { return true }

type withLoggerDuplicationError struct{}

func (e *withLoggerDuplicationError) Error() string {
	return "WithLogger() duplication."
}

type withProgressDuplicationError struct{}

func (e *withProgressDuplicationError) Error() string {
	return "WithProgress() duplication."
}
