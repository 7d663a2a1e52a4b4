package msdrive

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/google/uuid"
)

// DefaultBaseURL is the production Microsoft Graph endpoint.
const DefaultBaseURL = "https://graph.microsoft.com/v1.0"

const userAgent = "msdrive/0.1"

// Doer executes a single HTTP request. *http.Client satisfies it; tests and
// callers with custom transports inject their own. The library never
// retries, backs off or times out on its own: deadlines and retry policy
// belong to the injected Doer and the caller's context.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client holds the HTTP backend, base URL and logger shared by all
// operations. Safe for concurrent use.
type Client struct {
	baseURL    string
	httpClient Doer
	logger     *slog.Logger
}

// NewClient builds a Client. Empty baseURL means DefaultBaseURL, nil
// httpClient means http.DefaultClient, nil logger discards.
func NewClient(baseURL string, httpClient Doer, logger *slog.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	return &Client{baseURL: baseURL, httpClient: httpClient, logger: logger}
}

// requestBuilder accumulates a request then materializes it exactly once.
// It carries the first error internally so call sites can chain without
// checking until build.
type requestBuilder struct {
	method      string
	url         string
	query       url.Values
	headers     http.Header
	body        []byte
	contentType string
	err         error
	built       bool
}

func newRequest(method, rawURL string) *requestBuilder {
	return &requestBuilder{
		method:  method,
		url:     rawURL,
		query:   url.Values{},
		headers: http.Header{},
	}
}

func (b *requestBuilder) bearerAuth(token string) *requestBuilder {
	return b.header("Authorization", "Bearer "+token)
}

func (b *requestBuilder) header(key, value string) *requestBuilder {
	b.headers.Set(key, value)
	return b
}

func (b *requestBuilder) queryParam(key, value string) *requestBuilder {
	b.query.Set(key, value)
	return b
}

func (b *requestBuilder) jsonBody(v any) *requestBuilder {
	data, err := json.Marshal(v)
	if err != nil {
		b.err = fmt.Errorf("marshaling request body: %w", err)
		return b
	}

	b.body = data
	b.contentType = "application/json"

	return b
}

func (b *requestBuilder) bytesBody(data []byte, contentType string) *requestBuilder {
	b.body = data
	b.contentType = contentType

	return b
}

// build materializes the request. Panics if called twice: a builder is
// single-use because its body is consumed.
func (b *requestBuilder) build(ctx context.Context) (*http.Request, error) {
	if b.built {
		panic("msdrive: request builder used twice")
	}
	b.built = true

	if b.err != nil {
		return nil, b.err
	}

	rawURL := b.url
	if len(b.query) > 0 {
		sep := "?"
		if u, err := url.Parse(rawURL); err == nil && u.RawQuery != "" {
			sep = "&"
		}

		rawURL += sep + b.query.Encode()
	}

	var body io.Reader
	if b.body != nil {
		body = bytes.NewReader(b.body)
	}

	req, err := http.NewRequestWithContext(ctx, b.method, rawURL, body)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}

	for key, values := range b.headers {
		req.Header[key] = values
	}

	if b.contentType != "" {
		req.Header.Set("Content-Type", b.contentType)
	}

	return req, nil
}

// do builds and executes the request, returning the raw status and body.
// Transport failures come back as RequestError; HTTP status codes of 400 and
// above become APIError. The caller interprets the remaining statuses.
func (c *Client) do(ctx context.Context, b *requestBuilder) (int, http.Header, []byte, error) {
	req, err := b.build(ctx)
	if err != nil {
		return 0, nil, nil, err
	}

	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("client-request-id", uuid.NewString())

	c.logger.Debug("api request", "method", req.Method, "url", req.URL.Redacted())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, nil, &RequestError{
			Op:  req.Method + " " + req.URL.Path,
			Err: err,
		}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, nil, &RequestError{
			Op:  req.Method + " " + req.URL.Path,
			Err: err,
		}
	}

	c.logger.Debug("api response", "method", req.Method, "url", req.URL.Redacted(),
		"status", resp.StatusCode, "request_id", resp.Header.Get("request-id"))

	if resp.StatusCode >= http.StatusBadRequest {
		return resp.StatusCode, resp.Header, body, newAPIError(resp, body)
	}

	return resp.StatusCode, resp.Header, body, nil
}

// parseJSON decodes a successful response body into T.
func parseJSON[T any](body []byte) (*T, error) {
	var v T
	if err := json.Unmarshal(body, &v); err != nil {
		return nil, &UnexpectedResponseError{
			Reason: fmt.Sprintf("malformed response body: %v", err),
		}
	}

	return &v, nil
}

// parseOptionalJSON decodes a response that may legitimately carry no
// payload: 304 Not Modified for conditional reads, 202 Accepted for
// in-progress uploads. Those yield (nil, nil).
func parseOptionalJSON[T any](status int, body []byte) (*T, error) {
	if status == http.StatusNotModified || status == http.StatusAccepted {
		return nil, nil
	}

	return parseJSON[T](body)
}
