// Package msdrive is a client library for the Microsoft Graph drive/item
// API (OneDrive and SharePoint document libraries).
//
// The entry point is [OneDrive], which couples a bearer token with a
// [DriveLocation] and exposes typed operations on drive items: conditional
// reads, paginated listing, change tracking via delta links, and small or
// resumable chunked uploads. [Authentication] implements the OAuth2 code and
// refresh-token flows that produce bearer tokens.
//
// The library performs no retries and applies no timeouts of its own. Rate
// limiting responses (429/503) surface their Retry-After hint through
// [APIError]; acting on it is the caller's decision. The HTTP backend is an
// injected [Doer], so connection pooling, proxies, and timeouts are entirely
// under the caller's control.
package msdrive
