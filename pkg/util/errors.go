// Package util provides utility functions and common error types.
package util

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for trace and inventory failures
var (
	ErrLoad                = errors.New("inventory load failed")
	ErrNotFound            = errors.New("resource not found")
	ErrCredentialsNotFound = errors.New("credentials not found")
	ErrConnectTimeout      = errors.New("connect timeout")
	ErrAuthFailed          = errors.New("authentication failed")
	ErrParse               = errors.New("unparseable device output")
	ErrContextNotFound     = errors.New("logical context not found")
	ErrValidationFailed    = errors.New("validation failed")
)

// LoadError represents a structurally invalid inventory or credentials source.
type LoadError struct {
	Source string
	Reason string
}

func (e *LoadError) Error() string {
	if e.Source == "" {
		return "load failed: " + e.Reason
	}
	return fmt.Sprintf("load failed for %s: %s", e.Source, e.Reason)
}

func (e *LoadError) Unwrap() error {
	return ErrLoad
}

// NewLoadError creates a load error for a named source.
func NewLoadError(source, reason string) *LoadError {
	return &LoadError{Source: source, Reason: reason}
}

// ParseError represents vendor output that the matching parser could not
// recognize. A successfully opened session with unparseable output must be
// distinguishable from a session that found no route, so this is never
// collapsed into a nil result.
type ParseError struct {
	Vendor  string
	Command string
	Snippet string
}

func (e *ParseError) Error() string {
	msg := fmt.Sprintf("cannot parse %s output", e.Vendor)
	if e.Command != "" {
		msg += " of '" + e.Command + "'"
	}
	if e.Snippet != "" {
		msg += ": " + e.Snippet
	}
	return msg
}

func (e *ParseError) Unwrap() error {
	return ErrParse
}

// NewParseError creates a parse error, truncating the offending text to a
// short snippet for log and error-message use.
func NewParseError(vendor, command, raw string) *ParseError {
	snippet := strings.TrimSpace(raw)
	if i := strings.IndexByte(snippet, '\n'); i >= 0 {
		snippet = snippet[:i]
	}
	if len(snippet) > 80 {
		snippet = snippet[:80]
	}
	return &ParseError{Vendor: vendor, Command: command, Snippet: snippet}
}

// ConnectError represents a failed session open against one device.
type ConnectError struct {
	Device string
	Addr   string
	Reason error
}

func (e *ConnectError) Error() string {
	return fmt.Sprintf("connect to %s (%s): %v", e.Device, e.Addr, e.Reason)
}

func (e *ConnectError) Unwrap() error {
	return e.Reason
}

// ValidationError represents one or more validation failures
type ValidationError struct {
	Errors []string
}

func (e *ValidationError) Error() string {
	if len(e.Errors) == 1 {
		return "validation failed: " + e.Errors[0]
	}
	return fmt.Sprintf("validation failed:\n  - %s", strings.Join(e.Errors, "\n  - "))
}

func (e *ValidationError) Unwrap() error {
	return ErrValidationFailed
}

// NewValidationError creates a validation error from messages
func NewValidationError(messages ...string) *ValidationError {
	return &ValidationError{Errors: messages}
}

// ValidationBuilder helps accumulate validation errors
type ValidationBuilder struct {
	errors []string
}

// Add adds an error message if condition is false
func (v *ValidationBuilder) Add(condition bool, message string) *ValidationBuilder {
	if !condition {
		v.errors = append(v.errors, message)
	}
	return v
}

// AddError adds an error message unconditionally
func (v *ValidationBuilder) AddError(message string) *ValidationBuilder {
	v.errors = append(v.errors, message)
	return v
}

// AddErrorf adds a formatted error message
func (v *ValidationBuilder) AddErrorf(format string, args ...interface{}) *ValidationBuilder {
	v.errors = append(v.errors, fmt.Sprintf(format, args...))
	return v
}

// HasErrors returns true if there are validation errors
func (v *ValidationBuilder) HasErrors() bool {
	return len(v.errors) > 0
}

// Build returns the validation error or nil if no errors
func (v *ValidationBuilder) Build() error {
	if len(v.errors) == 0 {
		return nil
	}
	return &ValidationError{Errors: v.errors}
}
