package provider

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnavailable indicates a backend is not installed or enabled in this
// deployment. For fallback purposes it is treated like any call failure.
var ErrUnavailable = errors.New("provider unavailable")

// ConfigError reports a missing or invalid backend setup (credential,
// unknown backend name). Configuration problems are never retried.
type ConfigError struct {
	Provider string
	Reason   string
}

func (e *ConfigError) Error() string {
	if e.Provider != "" {
		return fmt.Sprintf("provider %s: %s", e.Provider, e.Reason)
	}
	return e.Reason
}

// IsConfigError reports whether err is (or wraps) a ConfigError.
func IsConfigError(err error) bool {
	var ce *ConfigError
	return errors.As(err, &ce)
}

// Failure records one backend's failure inside a fallback chain.
type Failure struct {
	Provider string `json:"provider"`
	Message  string `json:"message"`
}

// CallError aggregates the per-backend failures after every backend in a
// fallback chain has failed.
type CallError struct {
	Op       string
	Failures []Failure
	cause    error
}

func (e *CallError) Error() string {
	parts := make([]string, 0, len(e.Failures))
	for _, f := range e.Failures {
		parts = append(parts, fmt.Sprintf("%s: %s", f.Provider, f.Message))
	}
	return fmt.Sprintf("all providers failed for %s: [%s]", e.Op, strings.Join(parts, "; "))
}

// Unwrap exposes the last backend's error for errors.Is/As.
func (e *CallError) Unwrap() error {
	return e.cause
}
