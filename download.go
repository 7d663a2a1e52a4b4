package msdrive

import (
	"context"
	"io"
	"net/http"
)

// Download streams an item's content into w, following the item's
// pre-authenticated download URL. The item must have been fetched without a
// projection that drops the URL; ErrNoDownloadURL otherwise. Returns the
// number of bytes written.
func (od *OneDrive) Download(ctx context.Context, item *DriveItem, w io.Writer) (int64, error) {
	if item.DownloadURL == "" {
		return 0, ErrNoDownloadURL
	}

	// The download URL embeds its own authorization and the body can be
	// huge, so this bypasses Client.do and streams directly.
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, item.DownloadURL, nil)
	if err != nil {
		return 0, err
	}

	req.Header.Set("User-Agent", userAgent)

	resp, err := od.client.httpClient.Do(req)
	if err != nil {
		return 0, &RequestError{Op: "GET " + req.URL.Path, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
		return 0, newAPIError(resp, body)
	}

	n, err := io.Copy(w, resp.Body)
	if err != nil {
		return n, &RequestError{Op: "GET " + req.URL.Path, Err: err}
	}

	return n, nil
}
