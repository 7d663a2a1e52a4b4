package msdrive

import (
	"context"
	"net/http"
)

// CopyStatus is the lifecycle state of a server-side copy.
type CopyStatus string

const (
	CopyStatusNotStarted    CopyStatus = "notStarted"
	CopyStatusInProgress    CopyStatus = "inProgress"
	CopyStatusCompleted     CopyStatus = "completed"
	CopyStatusUpdating      CopyStatus = "updating"
	CopyStatusFailed        CopyStatus = "failed"
	CopyStatusDeletePending CopyStatus = "deletePending"
	CopyStatusDeleteFailed  CopyStatus = "deleteFailed"
	CopyStatusWaiting       CopyStatus = "waiting"
)

// CopyProgress is one snapshot of an asynchronous copy.
type CopyProgress struct {
	PercentageComplete float64    `json:"percentageComplete"`
	Status             CopyStatus `json:"status"`
}

// CopyProgressMonitor polls the progress of a server-side copy. Its URL can
// be saved and revived with CopyMonitorFromURL.
type CopyProgressMonitor struct {
	client *Client
	url    string
}

// CopyMonitorFromURL rebuilds a monitor from a saved URL.
func CopyMonitorFromURL(client *Client, url string) *CopyProgressMonitor {
	return &CopyProgressMonitor{client: client, url: url}
}

// URL returns the monitor's poll URL for later revival.
func (m *CopyProgressMonitor) URL() string {
	return m.url
}

// FetchProgress polls the copy once. The monitor URL embeds its own
// authorization, so no bearer token is sent.
func (m *CopyProgressMonitor) FetchProgress(ctx context.Context) (*CopyProgress, error) {
	b := newRequest(http.MethodGet, m.url)

	_, _, body, err := m.client.do(ctx, b)
	if err != nil {
		return nil, err
	}

	return parseJSON[CopyProgress](body)
}

// Copy starts a server-side copy of an item into destFolder under destName.
// The copy runs asynchronously; poll the returned monitor to observe it.
func (od *OneDrive) Copy(ctx context.Context, source ItemLocation, destFolder ItemLocation, destName FileName) (*CopyProgressMonitor, error) {
	payload := map[string]any{
		"parentReference": map[string]any{"path": destFolder.apiPath()},
		"name":            destName.String(),
	}

	b := newRequest(http.MethodPost, od.itemURL(source)+"/copy").
		bearerAuth(od.token).
		jsonBody(payload)

	_, headers, _, err := od.client.do(ctx, b)
	if err != nil {
		return nil, err
	}

	monitorURL := headers.Get("Location")
	if monitorURL == "" {
		return nil, &UnexpectedResponseError{Reason: "copy accepted without a monitor location"}
	}

	return &CopyProgressMonitor{client: od.client, url: monitorURL}, nil
}
