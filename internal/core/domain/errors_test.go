package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProcessingError_Error(t *testing.T) {
	cause := errors.New("disk full")
	err := NewProcessingError(CodeArchiveWriteError, "writing archive", cause)

	assert.Equal(t, "ArchiveWriteError: writing archive: disk full", err.Error())
	assert.ErrorIs(t, err, cause)
}

func TestProcessingError_ErrorWithoutCause(t *testing.T) {
	err := NewProcessingError(CodeUnsupportedType, "no extractor for .bin", nil)
	assert.Equal(t, "UnsupportedType: no extractor for .bin", err.Error())
}

func TestProcessingError_Retryable(t *testing.T) {
	tests := []struct {
		code ErrorCode
		want bool
	}{
		{CodeExtractionError, true},
		{CodeEmbeddingError, true},
		{CodeArchiveWriteError, true},
		{CodeIndexError, true},
		{CodeInputNotFound, false},
		{CodeUnsupportedType, false},
		{CodeVersionMismatch, false},
		{CodeWatcherOverflow, false},
		{CodeCancelled, false},
	}
	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			err := NewProcessingError(tt.code, "x", nil)
			assert.Equal(t, tt.want, err.Retryable())
		})
	}
}

func TestCodeOf(t *testing.T) {
	pe := NewProcessingError(CodeIndexError, "upsert failed", errors.New("locked"))
	wrapped := fmt.Errorf("worker: %w", pe)

	code, ok := CodeOf(wrapped)
	assert.True(t, ok)
	assert.Equal(t, CodeIndexError, code)

	_, ok = CodeOf(errors.New("plain error"))
	assert.False(t, ok)
}
