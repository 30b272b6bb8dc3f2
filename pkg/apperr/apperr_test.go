package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewValidationKeepsMessageVerbatim(t *testing.T) {
	err := NewValidation("file exceeds 100% of budget")
	require.Error(t, err)
	assert.Equal(t, "file exceeds 100% of budget", err.Error())
	assert.True(t, IsValidation(err))
}

func TestNewValidationfFormats(t *testing.T) {
	err := NewValidationf("unknown source '%s'", "report.pdf")
	require.Error(t, err)
	assert.Equal(t, "unknown source 'report.pdf'", err.Error())
	assert.True(t, IsValidation(err))
}

func TestUpstreamWrapsCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := Upstream("vector.search", cause)

	assert.True(t, IsUpstream(err))
	assert.False(t, IsValidation(err))
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "upstream vector.search: connection refused", err.Error())
}

func TestIsValidationSeesWrappedErrors(t *testing.T) {
	wrapped := fmt.Errorf("ingest: %w", NewValidation("file is required"))
	assert.True(t, IsValidation(wrapped))
	assert.False(t, IsUpstream(wrapped))
}
