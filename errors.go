package adapter

import (
	"errors"
	"fmt"
)

// ConfigError represents a configuration problem found while loading the
// project set: a missing project path, an unreadable tool config, a missing
// required plugin. Discovery of the affected project aborts; the process
// does not crash.
type ConfigError struct {
	Err error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("configuration error: %v", e.Err)
}

// Unwrap implements the errors.Unwrap interface
func (e *ConfigError) Unwrap() error {
	return e.Err
}

// NewConfigError creates a new ConfigError
func NewConfigError(err error) *ConfigError {
	return &ConfigError{Err: err}
}

// IsConfigError checks if the error is or wraps a ConfigError
func IsConfigError(err error) bool {
	var cfgErr *ConfigError
	return err != nil && errors.As(err, &cfgErr)
}

// RuntimeError represents an operational error that should lead to exit
// code 2, such as the build tool being unreachable.
type RuntimeError struct {
	Err error
}

func (e *RuntimeError) Error() string {
	return fmt.Sprintf("runtime error: %v", e.Err)
}

// Unwrap implements the errors.Unwrap interface
func (e *RuntimeError) Unwrap() error {
	return e.Err
}

// NewRuntimeError creates a new RuntimeError
func NewRuntimeError(err error) *RuntimeError {
	return &RuntimeError{Err: err}
}

// IsRuntimeError checks if the error is or wraps a RuntimeError
func IsRuntimeError(err error) bool {
	var runtimeErr *RuntimeError
	return err != nil && errors.As(err, &runtimeErr)
}

// TestFailureError represents test failures within an otherwise successful
// run (exit code 1).
type TestFailureError struct {
	Message string
}

func (e *TestFailureError) Error() string {
	return fmt.Sprintf("test failure: %s", e.Message)
}

// NewTestFailureError creates a new TestFailureError
func NewTestFailureError(message string) *TestFailureError {
	return &TestFailureError{Message: message}
}

// IsTestFailureError checks if the error is or wraps a TestFailureError
func IsTestFailureError(err error) bool {
	var testErr *TestFailureError
	return err != nil && errors.As(err, &testErr)
}
