package calendar

import (
	"errors"
	"fmt"
)

// ConfigurationError reports a malformed interval or recurrence rule.
// It is surfaced synchronously at registration time.
type ConfigurationError struct {
	CalendarID string
	Rule       string
	Reason     string
}

func (e *ConfigurationError) Error() string {
	if e.Rule != "" {
		return fmt.Sprintf("calendar configuration error: rule %q: %s", e.Rule, e.Reason)
	}
	return fmt.Sprintf("calendar configuration error: %s", e.Reason)
}

// IsConfigurationError reports whether err is a *ConfigurationError,
// unwrapping as needed.
func IsConfigurationError(err error) bool {
	var ce *ConfigurationError
	return errors.As(err, &ce)
}

// ExhaustedError reports that a working-time walk hit its iteration
// budget without terminating. This happens when a calendar classifies
// an unbounded span as non-working (e.g. a calendar with no working
// time at all) and a caller asks to skip across it.
type ExhaustedError struct {
	Op    string
	Since string
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("calendar %s: no working time found within search budget (from %s)", e.Op, e.Since)
}

// IsExhaustedError reports whether err is an *ExhaustedError.
func IsExhaustedError(err error) bool {
	var ee *ExhaustedError
	return errors.As(err, &ee)
}
