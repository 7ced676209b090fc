package trajectory

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinels for errors.Is checks against the typed errors below.
var (
	ErrConfiguration  = errors.New("invalid configuration")
	ErrMissingColumn  = errors.New("missing column")
	ErrMalformedValue = errors.New("malformed value")
)

// ConfigurationError reports options that cannot be used together or are
// out of range. It is raised before any data is processed.
type ConfigurationError struct {
	Option string
	Reason string
}

// NewConfigurationError builds a ConfigurationError for option.
func NewConfigurationError(option, format string, args ...interface{}) *ConfigurationError {
	return &ConfigurationError{Option: option, Reason: fmt.Sprintf(format, args...)}
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("invalid configuration: %s: %s", e.Option, e.Reason)
}

func (e *ConfigurationError) Is(target error) bool { return target == ErrConfiguration }

// MissingColumnError names a required column absent from a table header.
type MissingColumnError struct {
	Column    string
	Available []string
}

func (e *MissingColumnError) Error() string {
	return fmt.Sprintf("column %s not found in data file; possible columns are: %s",
		e.Column, strings.Join(e.Available, ", "))
}

func (e *MissingColumnError) Is(target error) bool { return target == ErrMissingColumn }

// MalformedValueError reports a bound column value that cannot be used,
// usually because it is not a number. Row is the 1-based data row index
// within its table.
type MalformedValueError struct {
	Column string
	Value  string
	Row    int
	Reason string
}

func (e *MalformedValueError) Error() string {
	reason := e.Reason
	if reason == "" {
		reason = "not a number"
	}
	return fmt.Sprintf("row %d: column %s: malformed value %q: %s", e.Row, e.Column, e.Value, reason)
}

func (e *MalformedValueError) Is(target error) bool { return target == ErrMalformedValue }
