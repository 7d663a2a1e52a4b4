package msdrive

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"
)

const (
	// UploadSmallLimit is the largest payload UploadSmall accepts.
	UploadSmallLimit = 4_000_000

	// UploadPartLimit is the largest chunk UploadToSession accepts.
	UploadPartLimit = 60 << 20

	// uploadChunkAlignment is the boundary every non-final chunk must end
	// on for the service to accept it.
	uploadChunkAlignment = 320 * 1024
)

// ExpectedRange is a byte range the upload session still needs. End is
// exclusive; -1 means open-ended (everything from Start on).
type ExpectedRange struct {
	Start int64
	End   int64
}

// UnmarshalJSON parses the service's "start-end" / "start-" range strings.
// The service's end bound is inclusive; we store exclusive.
func (r *ExpectedRange) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}

	start, end, found := strings.Cut(s, "-")
	if !found {
		return fmt.Errorf("malformed expected range %q", s)
	}

	startN, err := strconv.ParseInt(start, 10, 64)
	if err != nil {
		return fmt.Errorf("malformed expected range %q: %w", s, err)
	}

	endN := int64(-1)
	if end != "" {
		incl, err := strconv.ParseInt(end, 10, 64)
		if err != nil {
			return fmt.Errorf("malformed expected range %q: %w", s, err)
		}

		endN = incl + 1
	}

	r.Start = startN
	r.End = endN

	return nil
}

func (r ExpectedRange) String() string {
	if r.End < 0 {
		return fmt.Sprintf("%d-", r.Start)
	}

	return fmt.Sprintf("%d-%d", r.Start, r.End-1)
}

// UploadSession is the server-side state of a resumable upload. The upload
// URL embeds its own authorization; keep it secret and do not send a bearer
// token with it. Serializable, so an interrupted upload can resume in a
// later process via GetUploadSession.
type UploadSession struct {
	UploadURL          string          `json:"uploadUrl"`
	ExpirationDateTime time.Time       `json:"expirationDateTime,omitzero"`
	NextExpectedRanges []ExpectedRange `json:"nextExpectedRanges,omitempty"`
}

// CreateUploadSession opens a resumable upload for the given item. The
// option's conflict behavior and If-Match apply to the eventual completion.
func (od *OneDrive) CreateUploadSession(ctx context.Context, item ItemLocation, opt *PutOption) (*UploadSession, error) {
	itemProps := map[string]any{}
	if cb := opt.conflict(); cb != nil {
		itemProps["@microsoft.graph.conflictBehavior"] = *cb
	}

	b := newRequest(http.MethodPost, od.itemURL(item)+"/createUploadSession").
		bearerAuth(od.token).
		jsonBody(map[string]any{"item": itemProps})
	opt.apply(b)

	_, _, body, err := od.client.do(ctx, b)
	if err != nil {
		return nil, err
	}

	return parseJSON[UploadSession](body)
}

// GetUploadSession re-reads a session's state from its upload URL, which is
// how an interrupted upload discovers what the server already has.
func (c *Client) GetUploadSession(ctx context.Context, uploadURL string) (*UploadSession, error) {
	b := newRequest(http.MethodGet, uploadURL)

	_, _, body, err := c.do(ctx, b)
	if err != nil {
		return nil, err
	}

	sess, err := parseJSON[UploadSession](body)
	if err != nil {
		return nil, err
	}

	// The session response omits its own URL.
	sess.UploadURL = uploadURL

	return sess, nil
}

// DeleteUploadSession cancels a session, discarding partial data. A session
// the server no longer knows counts as already cancelled.
func (c *Client) DeleteUploadSession(ctx context.Context, uploadURL string) error {
	b := newRequest(http.MethodDelete, uploadURL)

	status, _, _, err := c.do(ctx, b)
	if err != nil {
		if status == http.StatusNotFound {
			return nil
		}

		return err
	}

	return nil
}

// UploadToSession sends the chunk data covering [start, end) of a file of
// total bytes. Chunks must arrive in order, each at most UploadPartLimit
// bytes, and every non-final chunk must end on a 320 KiB boundary. An
// accepted intermediate chunk yields (nil, nil); the final chunk yields the
// completed item. Malformed ranges are caller bugs and panic.
func (c *Client) UploadToSession(ctx context.Context, sess *UploadSession, data []byte, start, end, total int64) (*DriveItem, error) {
	switch {
	case len(data) == 0:
		panic("msdrive: upload chunk must not be empty")
	case int64(len(data)) > UploadPartLimit:
		panic(fmt.Sprintf("msdrive: upload chunk of %d bytes exceeds the %d byte limit", len(data), int64(UploadPartLimit)))
	case !(0 <= start && start < end && end <= total):
		panic(fmt.Sprintf("msdrive: invalid upload range %d-%d of %d", start, end, total))
	case int64(len(data)) != end-start:
		panic(fmt.Sprintf("msdrive: upload chunk is %d bytes but the range covers %d", len(data), end-start))
	}

	b := newRequest(http.MethodPut, sess.UploadURL).
		bytesBody(data, "application/octet-stream").
		header("Content-Range", fmt.Sprintf("bytes %d-%d/%d", start, end-1, total))

	status, _, body, err := c.do(ctx, b)
	if err != nil {
		return nil, err
	}

	return parseOptionalJSON[DriveItem](status, body)
}

// UploadFile drives a whole session: it reads data in aligned chunks of
// chunkSize bytes (0 means a default of 10 MiB) and uploads them in order.
// Panics on empty data or a misaligned chunk size.
func (od *OneDrive) UploadFile(ctx context.Context, item ItemLocation, data []byte, chunkSize int64, opt *PutOption) (*DriveItem, error) {
	if len(data) == 0 {
		panic("msdrive: cannot session-upload empty content")
	}

	if chunkSize == 0 {
		chunkSize = 10 << 20
	}

	if chunkSize%uploadChunkAlignment != 0 || chunkSize > UploadPartLimit {
		panic(fmt.Sprintf("msdrive: chunk size %d is not a multiple of %d at most %d", chunkSize, uploadChunkAlignment, int64(UploadPartLimit)))
	}

	sess, err := od.CreateUploadSession(ctx, item, opt)
	if err != nil {
		return nil, err
	}

	total := int64(len(data))

	for start := int64(0); start < total; start += chunkSize {
		end := min(start+chunkSize, total)

		completed, err := od.client.UploadToSession(ctx, sess, data[start:end], start, end, total)
		if err != nil {
			return nil, err
		}

		if end == total {
			if completed == nil {
				return nil, &UnexpectedResponseError{Reason: "final upload chunk accepted without a completed item"}
			}

			return completed, nil
		}
	}

	// Unreachable: the loop always hits end == total.
	return nil, &UnexpectedResponseError{Reason: "upload loop ended without completion"}
}
