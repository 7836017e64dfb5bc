package config

import "fmt"

// ConfigNotFoundError is returned when the requested config file does not exist.
type ConfigNotFoundError struct {
	RequestedPath string
}

func (e *ConfigNotFoundError) Error() string {
	return fmt.Sprintf("config file not found: %s", e.RequestedPath)
}

type invalidFieldError struct {
	field  string
	reason string
}

func (e *invalidFieldError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.field, e.reason)
}

func (e *invalidFieldError) InvalidArgument() bool { return true }
