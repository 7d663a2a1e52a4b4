package msdrive

import "time"

// Drive is the top-level container resource.
type Drive struct {
	ID                   DriveID      `json:"id,omitempty"`
	CreatedDateTime      time.Time    `json:"createdDateTime,omitzero"`
	Description          string       `json:"description,omitempty"`
	DriveType            string       `json:"driveType,omitempty"`
	LastModifiedDateTime time.Time    `json:"lastModifiedDateTime,omitzero"`
	Name                 string       `json:"name,omitempty"`
	Owner                *IdentitySet `json:"owner,omitempty"`
	Quota                *Quota       `json:"quota,omitempty"`
	WebURL               string       `json:"webUrl,omitempty"`
}

// DriveItem is a file, folder, package or deleted tombstone within a drive.
// Exactly which fields are populated depends on the request's projection and
// on the item's type: File and Folder are mutually exclusive facets, Deleted
// only appears on change-tracking tombstones.
type DriveItem struct {
	ID                   ItemID          `json:"id,omitempty"`
	Name                 string          `json:"name,omitempty"`
	Size                 int64           `json:"size,omitempty"`
	ETag                 Tag             `json:"eTag,omitempty"`
	CTag                 Tag             `json:"cTag,omitempty"`
	CreatedDateTime      time.Time       `json:"createdDateTime,omitzero"`
	LastModifiedDateTime time.Time       `json:"lastModifiedDateTime,omitzero"`
	WebURL               string          `json:"webUrl,omitempty"`
	File                 *FileFacet      `json:"file,omitempty"`
	Folder               *FolderFacet    `json:"folder,omitempty"`
	Package              *PackageFacet   `json:"package,omitempty"`
	Deleted              *DeletedFacet   `json:"deleted,omitempty"`
	Root                 *struct{}       `json:"root,omitempty"`
	ParentReference      *ItemReference  `json:"parentReference,omitempty"`
	FileSystemInfo       *FileSystemInfo `json:"fileSystemInfo,omitempty"`

	// DownloadURL is a short-lived, pre-authenticated content URL. Not a
	// selectable field; the service includes it on full item reads.
	DownloadURL string `json:"@microsoft.graph.downloadUrl,omitempty"`
}

// IsFolder reports whether the item carries the folder facet.
func (i *DriveItem) IsFolder() bool {
	return i.Folder != nil
}

// IsDeleted reports whether the item is a change-tracking tombstone.
func (i *DriveItem) IsDeleted() bool {
	return i.Deleted != nil
}

// ItemReference points at an item or folder, by ID and/or API path.
type ItemReference struct {
	DriveID   DriveID `json:"driveId,omitempty"`
	DriveType string  `json:"driveType,omitempty"`
	ID        ItemID  `json:"id,omitempty"`
	Name      string  `json:"name,omitempty"`
	Path      string  `json:"path,omitempty"`
}

// FileFacet marks an item as a file.
type FileFacet struct {
	MimeType string  `json:"mimeType,omitempty"`
	Hashes   *Hashes `json:"hashes,omitempty"`
}

// Hashes carries the content hashes the service computed. QuickXorHash is
// base64-encoded and present on both personal and business drives; SHA1 and
// CRC32 only on personal.
type Hashes struct {
	QuickXorHash string `json:"quickXorHash,omitempty"`
	SHA1Hash     string `json:"sha1Hash,omitempty"`
	SHA256Hash   string `json:"sha256Hash,omitempty"`
	CRC32Hash    string `json:"crc32Hash,omitempty"`
}

// FolderFacet marks an item as a folder.
type FolderFacet struct {
	ChildCount int64 `json:"childCount,omitempty"`
}

// PackageFacet marks an item as an opaque bundle (a OneNote notebook, for
// one) that should be treated as a unit despite containing children.
type PackageFacet struct {
	Type string `json:"type,omitempty"`
}

// DeletedFacet marks a change-tracking tombstone.
type DeletedFacet struct {
	State string `json:"state,omitempty"`
}

// FileSystemInfo carries client-visible filesystem timestamps, settable on
// upload and update.
type FileSystemInfo struct {
	CreatedDateTime      time.Time `json:"createdDateTime,omitzero"`
	LastModifiedDateTime time.Time `json:"lastModifiedDateTime,omitzero"`
}

// IdentitySet groups the identities that performed an action.
type IdentitySet struct {
	User        *Identity `json:"user,omitempty"`
	Application *Identity `json:"application,omitempty"`
	Device      *Identity `json:"device,omitempty"`
}

// Identity is a single actor.
type Identity struct {
	ID          string `json:"id,omitempty"`
	DisplayName string `json:"displayName,omitempty"`
}

// Quota describes a drive's storage allocation.
type Quota struct {
	Total     int64  `json:"total,omitempty"`
	Used      int64  `json:"used,omitempty"`
	Remaining int64  `json:"remaining,omitempty"`
	Deleted   int64  `json:"deleted,omitempty"`
	State     string `json:"state,omitempty"`
}
