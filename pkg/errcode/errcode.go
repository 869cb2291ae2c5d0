// Package errcode defines the closed error taxonomy surfaced by yami.
//
// Every failure shown to a user carries exactly one Code. Backend faults
// that cannot be classified are wrapped as CONNECTION_ERROR with the
// original message preserved verbatim. Hints are attached only to codes
// with a known common remedy.
package errcode

import (
	"errors"
	"fmt"
)

// Code identifies one bucket of the error taxonomy.
type Code string

const (
	ConnectionError     Code = "CONNECTION_ERROR"
	NotFound            Code = "NOT_FOUND"
	ValidationError     Code = "VALIDATION_ERROR"
	AlreadyExists       Code = "ALREADY_EXISTS"
	AuthenticationError Code = "AUTHENTICATION_ERROR"
	FileNotFound        Code = "FILE_NOT_FOUND"
	InvalidFormat       Code = "INVALID_FORMAT"
	MissingArgument     Code = "MISSING_ARGUMENT"
)

// hints maps codes to remedies worth suggesting. Codes absent from this
// map never carry a hint; CONNECTION_ERROR doubles as the fallback bucket
// for unclassified faults and stays hintless so the original message is
// the whole story.
var hints = map[Code]string{
	NotFound:            "Use the matching 'list' command to see available resources",
	AuthenticationError: "Verify your token with 'yami connect <uri> --token <token>'",
	AlreadyExists:       "Use a different name or drop the existing resource first",
	FileNotFound:        "Check that the file path is correct and the file exists",
	MissingArgument:     "Use 'yami <command> --help' to see required arguments",
	InvalidFormat:       "Check that the JSON syntax is valid",
}

// Hint returns the suggested remedy for a code, or "" if none is known.
func Hint(c Code) string { return hints[c] }

// Error is a classified, user-facing failure.
type Error struct {
	Code    Code   `json:"code" yaml:"code"`
	Message string `json:"message" yaml:"message"`
	Hint    string `json:"hint,omitempty" yaml:"hint,omitempty"`
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// New creates an Error with the standard hint for the code.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message, Hint: hints[code]}
}

// Newf creates an Error with a formatted message and the standard hint.
func Newf(code Code, format string, args ...any) *Error {
	return New(code, fmt.Sprintf(format, args...))
}

// Bare creates an Error without a hint, regardless of the code. Used for
// the fallback bucket where the verbatim backend message must stand alone.
func Bare(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// From extracts an *Error if err carries one.
func From(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// ErrAborted is returned when a destructive operation is declined or
// cannot be confirmed (no terminal and no --force). It is distinguishable
// with errors.Is while still mapping onto the closed taxonomy.
var ErrAborted = &Error{
	Code:    ValidationError,
	Message: "aborted: destructive operation requires confirmation (use --force to skip)",
}
