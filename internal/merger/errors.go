package merger

import (
	"errors"
	"fmt"

	"github.com/roach88/mergers/internal/ir"
)

// RuntimeError represents a failure of one processing invocation.
//
// Runtime errors include:
//   - Invariant violation: the seed materialized into nothing
//   - Kind mismatch: producers disagree on the representation kind
//   - Length mismatch: collections of different lengths
//   - Merge failure: objects of one kind that still cannot be merged
//   - Publish failure: the publisher rejected the merged object
//   - Decode failure: a payload could not be deserialized
type RuntimeError struct {
	// Code identifies the error category.
	Code RuntimeErrorCode

	// Message is a human-readable description.
	Message string

	// Source identifies the producer involved, if any.
	Source ir.SourceID

	// Err is the underlying error.
	Err error
}

// RuntimeErrorCode categorizes runtime errors.
type RuntimeErrorCode string

const (
	ErrCodeInvariant      RuntimeErrorCode = "INVARIANT_VIOLATION"
	ErrCodeKindMismatch   RuntimeErrorCode = "KIND_MISMATCH"
	ErrCodeLengthMismatch RuntimeErrorCode = "LENGTH_MISMATCH"
	ErrCodeMerge          RuntimeErrorCode = "MERGE_FAILED"
	ErrCodePublish        RuntimeErrorCode = "PUBLISH_FAILED"
	ErrCodeDecode         RuntimeErrorCode = "DECODE_FAILED"
)

// Error implements the error interface.
func (e *RuntimeError) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Code, e.Message)
	if e.Source != "" {
		msg += fmt.Sprintf(" (source=%s)", e.Source)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the underlying error.
func (e *RuntimeError) Unwrap() error {
	return e.Err
}

func codeOf(err error) (RuntimeErrorCode, bool) {
	var re *RuntimeError
	if errors.As(err, &re) {
		return re.Code, true
	}
	return "", false
}

// IsInvariantError reports whether err is an internal invariant breach.
// These must never be swallowed.
func IsInvariantError(err error) bool {
	code, ok := codeOf(err)
	return ok && code == ErrCodeInvariant
}

// IsKindMismatch reports whether err comes from producers using different
// representation kinds.
func IsKindMismatch(err error) bool {
	code, ok := codeOf(err)
	return ok && code == ErrCodeKindMismatch
}

// IsPublishError reports whether err comes from the publisher.
func IsPublishError(err error) bool {
	code, ok := codeOf(err)
	return ok && code == ErrCodePublish
}

// IsDecodeError reports whether err comes from deserializing a payload.
func IsDecodeError(err error) bool {
	code, ok := codeOf(err)
	return ok && code == ErrCodeDecode
}

// IsFatal reports whether err must abort processing rather than be logged.
// Decode failures concern one payload and are not fatal.
func IsFatal(err error) bool {
	if err == nil {
		return false
	}
	return !IsDecodeError(err)
}

func newInvariantError(source ir.SourceID, msg string) *RuntimeError {
	return &RuntimeError{Code: ErrCodeInvariant, Message: msg, Source: source}
}

func newDecodeError(source ir.SourceID, err error) *RuntimeError {
	return &RuntimeError{Code: ErrCodeDecode, Message: "could not deserialize payload", Source: source, Err: err}
}

func newPublishError(subSpec uint32, err error) *RuntimeError {
	return &RuntimeError{Code: ErrCodePublish, Message: fmt.Sprintf("publishing sub-spec %d failed", subSpec), Err: err}
}
