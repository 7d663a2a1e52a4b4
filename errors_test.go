package msdrive

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifyStatus(t *testing.T) {
	tests := []struct {
		status   int
		sentinel error
	}{
		{http.StatusBadRequest, ErrBadRequest},
		{http.StatusUnauthorized, ErrUnauthorized},
		{http.StatusForbidden, ErrForbidden},
		{http.StatusNotFound, ErrNotFound},
		{http.StatusConflict, ErrConflict},
		{http.StatusGone, ErrGone},
		{http.StatusPreconditionFailed, ErrPreconditionFailed},
		{http.StatusRequestedRangeNotSatisfiable, ErrRangeNotSatisfiable},
		{http.StatusTooManyRequests, ErrThrottled},
		{http.StatusLocked, ErrLocked},
		{http.StatusInternalServerError, ErrServerError},
		{http.StatusServiceUnavailable, ErrServerError},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.sentinel, classifyStatus(tt.status), "status %d", tt.status)
	}

	assert.Nil(t, classifyStatus(http.StatusOK))
	assert.Nil(t, classifyStatus(http.StatusNotModified))
}

func TestNewAPIError_Envelope(t *testing.T) {
	resp := &http.Response{
		StatusCode: http.StatusTooManyRequests,
		Header: http.Header{
			"Request-Id":  {"req-7"},
			"Retry-After": {"30"},
		},
	}
	body := []byte(`{"error":{"code":"activityLimitReached","message":"Throttled."}}`)

	apiErr := newAPIError(resp, body)
	assert.Equal(t, http.StatusTooManyRequests, apiErr.StatusCode)
	assert.Equal(t, "activityLimitReached", apiErr.Code)
	assert.Equal(t, "Throttled.", apiErr.Message)
	assert.Equal(t, "req-7", apiErr.RequestID)
	assert.Equal(t, 30*time.Second, apiErr.RetryAfter)
	require.ErrorIs(t, apiErr, ErrThrottled)
}

func TestNewAPIError_NonJSONBody(t *testing.T) {
	resp := &http.Response{
		StatusCode: http.StatusBadGateway,
		Header:     http.Header{},
	}

	apiErr := newAPIError(resp, []byte("<html>Bad Gateway</html>"))
	assert.Empty(t, apiErr.Code)
	assert.Equal(t, "<html>Bad Gateway</html>", apiErr.Message)
	assert.ErrorIs(t, apiErr, ErrServerError)
}

func TestParseRetryAfter(t *testing.T) {
	tests := []struct {
		name  string
		value string
		want  time.Duration
	}{
		{"absent", "", 0},
		{"seconds", "15", 15 * time.Second},
		{"zero", "0", 0},
		{"malformed", "soon", 0},
		{"negative", "-3", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := http.Header{}
			if tt.value != "" {
				h.Set("Retry-After", tt.value)
			}

			assert.Equal(t, tt.want, parseRetryAfter(h))
		})
	}
}

func TestAPIError_Message(t *testing.T) {
	withID := &APIError{StatusCode: 404, Code: "itemNotFound", Message: "gone", RequestID: "r-1", Err: ErrNotFound}
	assert.Contains(t, withID.Error(), "r-1")
	assert.Contains(t, withID.Error(), "itemNotFound")

	withoutID := &APIError{StatusCode: 500, Code: "generalException", Message: "boom", Err: ErrServerError}
	assert.NotContains(t, withoutID.Error(), "request-id")
}
