package msdrive

import (
	"context"
	"fmt"
	"net/http"
)

// OneDrive is an authorized session against one drive: an access token, a
// drive location and a Client. Cheap to copy, safe for concurrent use. The
// token is used as-is; refreshing it is the caller's business (see
// Authentication and TokenSource).
type OneDrive struct {
	token  string
	drive  DriveLocation
	client *Client
}

// New builds a OneDrive session with default transport and logging.
func New(accessToken string, drive DriveLocation) *OneDrive {
	return NewWithClient(accessToken, drive, NewClient("", nil, nil))
}

// NewWithClient builds a OneDrive session on an explicit Client.
func NewWithClient(accessToken string, drive DriveLocation, client *Client) *OneDrive {
	if client == nil {
		client = NewClient("", nil, nil)
	}

	return &OneDrive{token: accessToken, drive: drive, client: client}
}

// Client returns the underlying Client, for building monitors and sessions
// that outlive this value.
func (od *OneDrive) Client() *Client {
	return od.client
}

func (od *OneDrive) driveURL() string {
	return od.client.baseURL + od.drive.urlPath()
}

func (od *OneDrive) itemURL(item ItemLocation) string {
	return od.driveURL() + item.urlPath()
}

// GetDrive fetches the drive's metadata. With an IfNoneMatch option a
// matching tag yields (nil, nil).
func (od *OneDrive) GetDrive(ctx context.Context, opt *ObjectOption[DriveField]) (*Drive, error) {
	b := newRequest(http.MethodGet, od.driveURL()).bearerAuth(od.token)
	opt.apply(b)

	status, _, body, err := od.client.do(ctx, b)
	if err != nil {
		return nil, err
	}

	return parseOptionalJSON[Drive](status, body)
}

// GetItem fetches one item's metadata. With an IfNoneMatch option a matching
// tag yields (nil, nil).
func (od *OneDrive) GetItem(ctx context.Context, item ItemLocation, opt *ObjectOption[DriveItemField]) (*DriveItem, error) {
	b := newRequest(http.MethodGet, od.itemURL(item)).bearerAuth(od.token)
	opt.apply(b)

	status, _, body, err := od.client.do(ctx, b)
	if err != nil {
		return nil, err
	}

	return parseOptionalJSON[DriveItem](status, body)
}

// ListChildren starts listing a folder's children, returning a fetcher
// holding the first page. With an IfNoneMatch option a matching tag yields
// (nil, nil).
func (od *OneDrive) ListChildren(ctx context.Context, folder ItemLocation, opt *CollectionOption[DriveItemField]) (*ListChildrenFetcher, error) {
	b := newRequest(http.MethodGet, od.itemURL(folder)+"/children").bearerAuth(od.token)
	opt.apply(b)

	status, _, body, err := od.client.do(ctx, b)
	if err != nil {
		return nil, err
	}

	page, err := parseOptionalJSON[collectionResponse](status, body)
	if err != nil || page == nil {
		return nil, err
	}

	return &ListChildrenFetcher{fetcher: newItemFetcherWithPage(od, *page)}, nil
}

// ResumeListChildren continues an interrupted listing from a pagination URL
// previously obtained from ListChildrenFetcher.NextURL.
func (od *OneDrive) ResumeListChildren(nextURL string) *ListChildrenFetcher {
	return &ListChildrenFetcher{fetcher: newItemFetcherFromURL(od, nextURL)}
}

// CreateFolder creates a folder under the given parent. Without an explicit
// conflict behavior an existing name fails with ErrConflict.
func (od *OneDrive) CreateFolder(ctx context.Context, parent ItemLocation, name FileName, opt *PutOption) (*DriveItem, error) {
	conflict := ConflictFail
	if cb := opt.conflict(); cb != nil {
		conflict = *cb
	}

	payload := map[string]any{
		"name":                              name.String(),
		"folder":                            map[string]any{},
		"@microsoft.graph.conflictBehavior": conflict,
	}

	b := newRequest(http.MethodPost, od.itemURL(parent)+"/children").
		bearerAuth(od.token).
		jsonBody(payload)
	opt.apply(b)

	_, _, body, err := od.client.do(ctx, b)
	if err != nil {
		return nil, err
	}

	return parseJSON[DriveItem](body)
}

// UpdateItem patches item metadata. Only the set fields of patch are sent;
// renaming, timestamp updates and re-parenting are all expressed this way.
func (od *OneDrive) UpdateItem(ctx context.Context, item ItemLocation, patch *DriveItem, opt *ObjectOption[DriveItemField]) (*DriveItem, error) {
	b := newRequest(http.MethodPatch, od.itemURL(item)).
		bearerAuth(od.token).
		jsonBody(patch)
	opt.apply(b)

	_, _, body, err := od.client.do(ctx, b)
	if err != nil {
		return nil, err
	}

	return parseJSON[DriveItem](body)
}

// UploadSmall uploads file content in a single PUT. Panics if the payload
// exceeds UploadSmallLimit; use an upload session for anything larger.
func (od *OneDrive) UploadSmall(ctx context.Context, item ItemLocation, data []byte) (*DriveItem, error) {
	if len(data) > UploadSmallLimit {
		panic(fmt.Sprintf("msdrive: small upload of %d bytes exceeds the %d byte limit", len(data), UploadSmallLimit))
	}

	b := newRequest(http.MethodPut, od.itemURL(item)+"/content").
		bearerAuth(od.token).
		bytesBody(data, "application/octet-stream")

	_, _, body, err := od.client.do(ctx, b)
	if err != nil {
		return nil, err
	}

	return parseJSON[DriveItem](body)
}

// Move re-parents an item into destFolder. A nil destName keeps the current
// name. An If-Match option makes the move conditional; a conflict behavior
// controls what happens when the destination name is taken.
func (od *OneDrive) Move(ctx context.Context, item ItemLocation, destFolder ItemLocation, destName *FileName, opt *PutOption) (*DriveItem, error) {
	payload := map[string]any{
		"parentReference": map[string]any{"path": destFolder.apiPath()},
	}
	if destName != nil {
		payload["name"] = destName.String()
	}
	if cb := opt.conflict(); cb != nil {
		payload["@microsoft.graph.conflictBehavior"] = *cb
	}

	b := newRequest(http.MethodPatch, od.itemURL(item)).
		bearerAuth(od.token).
		jsonBody(payload)
	opt.apply(b)

	_, _, body, err := od.client.do(ctx, b)
	if err != nil {
		return nil, err
	}

	return parseJSON[DriveItem](body)
}

// Delete removes an item (and, for folders, everything beneath it). An
// If-Match option makes the delete conditional. Panics if the option carries
// a conflict behavior, which is meaningless for deletion.
func (od *OneDrive) Delete(ctx context.Context, item ItemLocation, opt *PutOption) error {
	if opt.conflict() != nil {
		panic("msdrive: conflict behavior is not applicable to delete")
	}

	b := newRequest(http.MethodDelete, od.itemURL(item)).bearerAuth(od.token)
	opt.apply(b)

	_, _, _, err := od.client.do(ctx, b)

	return err
}

// TrackChangesFromInitial starts change tracking on a folder from the
// beginning of time: the fetcher replays the folder's current state as a
// sequence of change pages, finishing with a delta URL for the next round.
// Panics if the option requests a count, which the delta endpoint rejects.
func (od *OneDrive) TrackChangesFromInitial(ctx context.Context, folder ItemLocation, opt *CollectionOption[DriveItemField]) (*TrackChangeFetcher, error) {
	if opt.hasGetCount() {
		panic("msdrive: count is not supported on change tracking")
	}

	b := newRequest(http.MethodGet, od.itemURL(folder)+"/delta").bearerAuth(od.token)
	opt.apply(b)

	status, _, body, err := od.client.do(ctx, b)
	if err != nil {
		return nil, err
	}

	page, err := parseOptionalJSON[collectionResponse](status, body)
	if err != nil || page == nil {
		return nil, err
	}

	return &TrackChangeFetcher{fetcher: newItemFetcherWithPage(od, *page)}, nil
}

// TrackChangesFromDeltaURL resumes change tracking from a delta URL obtained
// at the end of a previous round.
func (od *OneDrive) TrackChangesFromDeltaURL(ctx context.Context, deltaURL string) (*TrackChangeFetcher, error) {
	fetcher := newItemFetcherFromURL(od, deltaURL)
	if err := fetcher.prime(ctx); err != nil {
		return nil, err
	}

	return &TrackChangeFetcher{fetcher: fetcher}, nil
}

// ResumeTrackChanges continues an interrupted change-tracking round from a
// pagination URL previously obtained from TrackChangeFetcher.NextURL.
func (od *OneDrive) ResumeTrackChanges(nextURL string) *TrackChangeFetcher {
	return &TrackChangeFetcher{fetcher: newItemFetcherFromURL(od, nextURL)}
}

// GetLatestDeltaURL returns a delta URL representing the folder's current
// state, skipping the initial enumeration entirely.
func (od *OneDrive) GetLatestDeltaURL(ctx context.Context, folder ItemLocation) (string, error) {
	b := newRequest(http.MethodGet, od.itemURL(folder)+"/delta").
		bearerAuth(od.token).
		queryParam("token", "latest")

	_, _, body, err := od.client.do(ctx, b)
	if err != nil {
		return "", err
	}

	page, err := parseJSON[collectionResponse](body)
	if err != nil {
		return "", err
	}

	if page.DeltaLink == "" {
		return "", &UnexpectedResponseError{Reason: "latest delta response carries no delta link"}
	}

	return page.DeltaLink, nil
}
