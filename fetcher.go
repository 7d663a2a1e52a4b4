package msdrive

import (
	"context"
	"net/http"
)

// collectionResponse is one page of a paged item collection. Exactly one of
// NextLink and DeltaLink is set on a non-final / final change-tracking page;
// plain listings carry no DeltaLink at all.
type collectionResponse struct {
	Value     []DriveItem `json:"value"`
	NextLink  string      `json:"@odata.nextLink"`
	DeltaLink string      `json:"@odata.deltaLink"`
}

// itemFetcher walks a paged collection. It holds at most one cached page
// (the one the starting request already returned) plus the URL of the next
// page. Not safe for concurrent use.
type itemFetcher struct {
	od       *OneDrive
	page     []DriveItem
	hasPage  bool
	nextURL  string
	deltaURL string
}

func newItemFetcherWithPage(od *OneDrive, page collectionResponse) *itemFetcher {
	return &itemFetcher{
		od:       od,
		page:     page.Value,
		hasPage:  true,
		nextURL:  page.NextLink,
		deltaURL: page.DeltaLink,
	}
}

func newItemFetcherFromURL(od *OneDrive, nextURL string) *itemFetcher {
	return &itemFetcher{od: od, nextURL: nextURL}
}

// fetchNextPage returns the next page of items. The cached starting page
// comes back without network I/O; subsequent calls fetch. ok is false once
// the collection is exhausted; a fetched page is returned with ok true even
// when it is empty.
func (f *itemFetcher) fetchNextPage(ctx context.Context) ([]DriveItem, bool, error) {
	if f.hasPage {
		page := f.page
		f.page = nil
		f.hasPage = false

		return page, true, nil
	}

	if f.nextURL == "" {
		return nil, false, nil
	}

	b := newRequest(http.MethodGet, f.nextURL).bearerAuth(f.od.token)

	_, _, body, err := f.od.client.do(ctx, b)
	if err != nil {
		return nil, false, err
	}

	page, err := parseJSON[collectionResponse](body)
	if err != nil {
		return nil, false, err
	}

	f.nextURL = page.NextLink
	f.deltaURL = page.DeltaLink

	return page.Value, true, nil
}

// prime fetches the first page eagerly and caches it, so construction-time
// errors surface immediately instead of on the first FetchNextPage call.
func (f *itemFetcher) prime(ctx context.Context) error {
	page, ok, err := f.fetchNextPage(ctx)
	if err != nil {
		return err
	}

	if ok {
		f.page = page
		f.hasPage = true
	}

	return nil
}

// currentNextURL exposes the pagination URL for later resumption. It is
// empty while the first page is still cached unconsumed, because resuming
// from it would silently skip that page.
func (f *itemFetcher) currentNextURL() string {
	if f.hasPage {
		return ""
	}

	return f.nextURL
}

// fetchAll drains the remaining pages into one slice. On error the fetcher's
// position is spent; restart from the original request or a saved URL.
func (f *itemFetcher) fetchAll(ctx context.Context) ([]DriveItem, error) {
	var all []DriveItem

	for {
		page, ok, err := f.fetchNextPage(ctx)
		if err != nil {
			return nil, err
		}

		if !ok {
			return all, nil
		}

		all = append(all, page...)
	}
}

// ListChildrenFetcher pages through a folder listing. Not safe for
// concurrent use.
type ListChildrenFetcher struct {
	fetcher *itemFetcher
}

// FetchNextPage returns the next page of children, with ok false once the
// listing is exhausted.
func (f *ListChildrenFetcher) FetchNextPage(ctx context.Context) ([]DriveItem, bool, error) {
	return f.fetcher.fetchNextPage(ctx)
}

// FetchAll drains all remaining pages.
func (f *ListChildrenFetcher) FetchAll(ctx context.Context) ([]DriveItem, error) {
	return f.fetcher.fetchAll(ctx)
}

// NextURL returns a URL from which ResumeListChildren can continue this
// listing, or "" while the cached first page has not been consumed yet.
func (f *ListChildrenFetcher) NextURL() string {
	return f.fetcher.currentNextURL()
}

// TrackChangeFetcher pages through one round of change tracking. The same
// item can appear on multiple pages when it changes mid-enumeration; later
// occurrences supersede earlier ones and the caller deduplicates by ID.
// Not safe for concurrent use.
type TrackChangeFetcher struct {
	fetcher *itemFetcher
}

// FetchNextPage returns the next page of changes, with ok false once the
// round is exhausted.
func (f *TrackChangeFetcher) FetchNextPage(ctx context.Context) ([]DriveItem, bool, error) {
	return f.fetcher.fetchNextPage(ctx)
}

// FetchAll drains the round and returns the delta URL for the next one.
// A final page without a delta link is an UnexpectedResponseError.
func (f *TrackChangeFetcher) FetchAll(ctx context.Context) ([]DriveItem, string, error) {
	items, err := f.fetcher.fetchAll(ctx)
	if err != nil {
		return nil, "", err
	}

	deltaURL, err := f.DeltaURL()
	if err != nil {
		return nil, "", err
	}

	return items, deltaURL, nil
}

// DeltaURL returns the URL that starts the next change-tracking round. Only
// valid once the final page has been fetched.
func (f *TrackChangeFetcher) DeltaURL() (string, error) {
	if f.fetcher.deltaURL == "" {
		return "", &UnexpectedResponseError{Reason: "change tracking finished without a delta link"}
	}

	return f.fetcher.deltaURL, nil
}

// NextURL returns a URL from which ResumeTrackChanges can continue this
// round, or "" while the cached first page has not been consumed yet.
func (f *TrackChangeFetcher) NextURL() string {
	return f.fetcher.currentNextURL()
}
