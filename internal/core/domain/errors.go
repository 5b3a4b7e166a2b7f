package domain

import (
	"errors"
	"fmt"
)

// Generic domain errors usable outside the ProcessingError taxonomy below,
// e.g. by the index's point lookups.
var (
	ErrNotFound     = errors.New("not found")
	ErrInvalidInput = errors.New("invalid input")
)

// ErrorCode classifies a ProcessingError per the error taxonomy: whether the
// worker should skip, fail, retry, or silently re-enqueue the task that
// produced it.
type ErrorCode string

const (
	// CodeInputNotFound: the physical path was missing when processing
	// began. The task becomes Skipped and is not retried until the next
	// change notification.
	CodeInputNotFound ErrorCode = "InputNotFound"

	// CodeUnsupportedType: no extractor matches the content type. The
	// source is marked Failed and not retried.
	CodeUnsupportedType ErrorCode = "UnsupportedType"

	// CodeExtractionError, CodeEmbeddingError, CodeArchiveWriteError and
	// CodeIndexError are transient: the task is requeued with an
	// incremented retry_count up to max_retries.
	CodeExtractionError   ErrorCode = "ExtractionError"
	CodeEmbeddingError    ErrorCode = "EmbeddingError"
	CodeArchiveWriteError ErrorCode = "ArchiveWriteError"
	CodeIndexError        ErrorCode = "IndexError"

	// CodeVersionMismatch is synthesised when the post-process rehash
	// diverges from the task's hash. Not a failure: it triggers a direct
	// re-enqueue with the new hash.
	CodeVersionMismatch ErrorCode = "VersionMismatch"

	// CodeWatcherOverflow is logged; the watcher is re-armed.
	CodeWatcherOverflow ErrorCode = "WatcherOverflow"

	// CodeCancelled is a cooperative exit, never logged as an error.
	CodeCancelled ErrorCode = "Cancelled"
)

// ProcessingError carries the error taxonomy across the worker/queue/
// notifier boundary so callers branch on Code instead of matching strings.
type ProcessingError struct {
	Code    ErrorCode
	Message string
	Cause   error
}

func (e *ProcessingError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *ProcessingError) Unwrap() error {
	return e.Cause
}

// NewProcessingError wraps cause under code with a human-readable message.
func NewProcessingError(code ErrorCode, message string, cause error) *ProcessingError {
	return &ProcessingError{Code: code, Message: message, Cause: cause}
}

// Retryable reports whether the worker should requeue the task that
// produced this error rather than skip or fail it outright.
func (e *ProcessingError) Retryable() bool {
	switch e.Code {
	case CodeExtractionError, CodeEmbeddingError, CodeArchiveWriteError, CodeIndexError:
		return true
	default:
		return false
	}
}

// CodeOf extracts the ErrorCode from err if it is (or wraps) a
// *ProcessingError, returning ok=false otherwise.
func CodeOf(err error) (ErrorCode, bool) {
	var pe *ProcessingError
	if errors.As(err, &pe) {
		return pe.Code, true
	}
	return "", false
}
