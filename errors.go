package msdrive

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"
)

// Sentinel errors for HTTP status code classification.
// Use errors.Is(err, msdrive.ErrNotFound) to check.
var (
	ErrBadRequest          = errors.New("msdrive: bad request")
	ErrUnauthorized        = errors.New("msdrive: unauthorized")
	ErrForbidden           = errors.New("msdrive: forbidden")
	ErrNotFound            = errors.New("msdrive: not found")
	ErrConflict            = errors.New("msdrive: conflict")
	ErrGone                = errors.New("msdrive: resource gone")
	ErrPreconditionFailed  = errors.New("msdrive: precondition failed")
	ErrRangeNotSatisfiable = errors.New("msdrive: range not satisfiable")
	ErrThrottled           = errors.New("msdrive: throttled")
	ErrLocked              = errors.New("msdrive: resource locked")
	ErrServerError         = errors.New("msdrive: server error")
)

// ErrNoDownloadURL is returned when a drive item has no pre-authenticated
// download URL. This can happen for folders, packages, or zero-byte files.
var ErrNoDownloadURL = errors.New("msdrive: item has no download URL")

// RequestError reports that a call never produced an HTTP response
// (DNS, TLS, connect, or serialization failure).
type RequestError struct {
	Op  string
	Err error
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("msdrive: %s: %v", e.Op, e.Err)
}

func (e *RequestError) Unwrap() error {
	return e.Err
}

// UnexpectedResponseError reports that HTTP succeeded but the payload
// violates an invariant the caller depends on, such as a token response
// that omits the refresh token despite offline access being requested.
type UnexpectedResponseError struct {
	Reason string
}

func (e *UnexpectedResponseError) Error() string {
	return "msdrive: unexpected response: " + e.Reason
}

// APIError wraps a non-success response from a resource endpoint with the
// HTTP status code, the server's machine-readable error code and message,
// the request ID for support diagnosis, and the parsed Retry-After hint
// (zero when the header is absent). It unwraps to a sentinel error, so
// errors.Is(err, msdrive.ErrNotFound) works.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
	RequestID  string
	RetryAfter time.Duration
	Err        error // sentinel, for errors.Is()
}

func (e *APIError) Error() string {
	if e.RequestID != "" {
		return fmt.Sprintf("msdrive: HTTP %d %s (request-id: %s): %s", e.StatusCode, e.Code, e.RequestID, e.Message)
	}

	return fmt.Sprintf("msdrive: HTTP %d %s: %s", e.StatusCode, e.Code, e.Message)
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// OAuth2Error is the token endpoint's counterpart of APIError. The token
// endpoint uses a distinct error envelope ("error"/"error_description")
// rather than the resource endpoints' nested "error" object.
type OAuth2Error struct {
	StatusCode  int
	Code        string
	Description string
	RetryAfter  time.Duration
}

func (e *OAuth2Error) Error() string {
	return fmt.Sprintf("msdrive: OAuth2 HTTP %d %s: %s", e.StatusCode, e.Code, e.Description)
}

// errorEnvelope mirrors the JSON error body of resource endpoints:
// {"error": {"code": "...", "message": "..."}}.
type errorEnvelope struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// newAPIError classifies a non-success response body into an APIError.
// Bodies that are not the documented JSON envelope are kept verbatim in
// Message so nothing is lost for diagnosis.
func newAPIError(resp *http.Response, body []byte) *APIError {
	apiErr := &APIError{
		StatusCode: resp.StatusCode,
		RequestID:  resp.Header.Get("request-id"),
		RetryAfter: parseRetryAfter(resp.Header),
		Err:        classifyStatus(resp.StatusCode),
	}

	var env errorEnvelope
	if err := json.Unmarshal(body, &env); err == nil && env.Error.Code != "" {
		apiErr.Code = env.Error.Code
		apiErr.Message = env.Error.Message
	} else {
		apiErr.Message = string(body)
	}

	return apiErr
}

// classifyStatus maps an HTTP status code to a sentinel error.
// Returns nil for success codes.
func classifyStatus(code int) error {
	switch code {
	case http.StatusBadRequest:
		return ErrBadRequest
	case http.StatusUnauthorized:
		return ErrUnauthorized
	case http.StatusForbidden:
		return ErrForbidden
	case http.StatusNotFound:
		return ErrNotFound
	case http.StatusConflict:
		return ErrConflict
	case http.StatusGone:
		return ErrGone
	case http.StatusPreconditionFailed:
		return ErrPreconditionFailed
	case http.StatusRequestedRangeNotSatisfiable:
		return ErrRangeNotSatisfiable
	case http.StatusTooManyRequests:
		return ErrThrottled
	case http.StatusLocked:
		return ErrLocked
	default:
		if code >= http.StatusInternalServerError {
			return ErrServerError
		}

		return nil
	}
}

// parseRetryAfter reads a Retry-After header given in seconds.
// Returns zero when absent or malformed. The library never acts on the
// value itself; it is reported for the caller's backoff policy.
func parseRetryAfter(h http.Header) time.Duration {
	ra := h.Get("Retry-After")
	if ra == "" {
		return 0
	}

	seconds, err := strconv.Atoi(ra)
	if err != nil || seconds < 0 {
		return 0
	}

	return time.Duration(seconds) * time.Second
}
