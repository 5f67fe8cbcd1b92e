package httpdto

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCodeForStatus(t *testing.T) {
	assert.Equal(t, "INVALID_REQUEST", CodeForStatus(http.StatusBadRequest))
	assert.Equal(t, "UNAUTHORIZED", CodeForStatus(http.StatusUnauthorized))
	assert.Equal(t, "FORBIDDEN", CodeForStatus(http.StatusForbidden))
	assert.Equal(t, "NOT_FOUND", CodeForStatus(http.StatusNotFound))
	assert.Equal(t, "CONFLICT", CodeForStatus(http.StatusConflict))
	assert.Equal(t, "RATE_LIMITED", CodeForStatus(http.StatusTooManyRequests))
	// Anything unmapped collapses to the internal class.
	assert.Equal(t, "INTERNAL_ERROR", CodeForStatus(http.StatusInternalServerError))
	assert.Equal(t, "INTERNAL_ERROR", CodeForStatus(http.StatusTeapot))
}

func TestNewStatusErrorResponse(t *testing.T) {
	res := NewStatusErrorResponse(http.StatusNotFound, "not found")
	assert.False(t, res.Success)
	assert.Equal(t, "not found", res.Error)
	assert.Equal(t, "NOT_FOUND", res.Code)
}
