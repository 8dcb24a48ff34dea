package apperrors

import (
	"errors"
	"fmt"
	"os"

	"chunkwise/internal/logger"
)

// Kind categorizes an operation failure. Every mutating operation either fully
// commits or fails with exactly one of these kinds; nothing is retried
// automatically and nothing is partially applied.
type Kind string

const (
	// KindAuthorization: no identity, or a referenced entity is owned by
	// someone else.
	KindAuthorization Kind = "authorization"

	// KindValidation: a range/cardinality/shape check failed. Safe to retry
	// after the caller fixes the input.
	KindValidation Kind = "validation"

	// KindNotFound: a referenced entity does not exist.
	KindNotFound Kind = "not_found"

	// KindConflict: the request is well-formed but collides with current
	// state (duplicate plan date, chunk already planned, intention cap). A
	// client can offer a corrective action.
	KindConflict Kind = "conflict"

	// KindOracleViolation: a suggestion payload failed post-hoc validation.
	// The whole proposal is rejected; the caller should regenerate.
	KindOracleViolation Kind = "oracle_violation"
)

// Error is a kind-tagged error surfaced by the guard and the engine.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func Authorizationf(format string, args ...interface{}) *Error {
	return &Error{Kind: KindAuthorization, Message: fmt.Sprintf(format, args...)}
}

func Validationf(format string, args ...interface{}) *Error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

func NotFoundf(format string, args ...interface{}) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

func Conflictf(format string, args ...interface{}) *Error {
	return &Error{Kind: KindConflict, Message: fmt.Sprintf(format, args...)}
}

func OracleViolationf(format string, args ...interface{}) *Error {
	return &Error{Kind: KindOracleViolation, Message: fmt.Sprintf(format, args...)}
}

// KindOf returns the kind of err, unwrapping as needed. Errors that are not
// kind-tagged report an empty kind.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

func IsAuthorization(err error) bool { return KindOf(err) == KindAuthorization }
func IsValidation(err error) bool    { return KindOf(err) == KindValidation }
func IsNotFound(err error) bool      { return KindOf(err) == KindNotFound }
func IsConflict(err error) bool      { return KindOf(err) == KindConflict }
func IsOracleViolation(err error) bool {
	return KindOf(err) == KindOracleViolation
}

// Format formats an error message with a consistent "Error: " prefix
func Format(err error) string {
	if err == nil {
		return ""
	}
	return fmt.Sprintf("Error: %v", err)
}

// Fatal logs an error and exits the program with exit code 1
func Fatal(err error) {
	if err != nil {
		logger.Error("Command execution failed", "error", err)
		fmt.Fprintf(os.Stderr, "%s\n", Format(err))
		os.Exit(1)
	}
}
