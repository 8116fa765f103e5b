package errors

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorFormatting(t *testing.T) {
	err := NewUnknownKind("trivia")
	assert.Contains(t, err.Error(), "UNKNOWN_KIND")
	assert.Contains(t, err.Error(), "trivia")
	assert.False(t, err.Timestamp.IsZero())

	bare := NewInvalidResponse("selection is empty")
	assert.Equal(t, "INVALID_RESPONSE: selection is empty", bare.Error())
}

func TestInvalidTransitionCarriesTargets(t *testing.T) {
	err := NewInvalidTransition("draft", "expired", []string{"published"})
	assert.Equal(t, CodeInvalidTransition, err.Code)
	assert.Equal(t, []string{"published"}, err.ValidTransitions)
	assert.Contains(t, err.Message, "draft -> expired")
}

func TestCodeOfUnwrapsChains(t *testing.T) {
	inner := NewNotFound("activity", "a1")
	wrapped := fmt.Errorf("loading activity: %w", inner)

	assert.Equal(t, CodeNotFound, CodeOf(wrapped))
	assert.True(t, IsCode(wrapped, CodeNotFound))
	assert.False(t, IsCode(wrapped, CodeUnknownKind))
	assert.Equal(t, Code(""), CodeOf(fmt.Errorf("plain error")))
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{NewUnknownKind("x"), http.StatusNotFound},
		{NewNotFound("activity", "x"), http.StatusNotFound},
		{NewDuplicateKind("x"), http.StatusConflict},
		{NewInvalidKind("x", "bad"), http.StatusBadRequest},
		{NewInvalidConfig("x", []string{"bad"}), http.StatusBadRequest},
		{NewInvalidResponse("bad"), http.StatusBadRequest},
		{NewInvalidTransition("a", "b", nil), http.StatusBadRequest},
		{fmt.Errorf("unexpected"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, HTTPStatus(tt.err))
	}
}

func TestInvalidConfigJoinsValidationErrors(t *testing.T) {
	err := NewInvalidConfig("poll", []string{"question is required", "options too short"})
	require.Equal(t, CodeInvalidConfig, err.Code)
	assert.Contains(t, err.Details, "question is required; options too short")
}
