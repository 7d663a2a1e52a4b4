package msdrive

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// DriveID is the unique identifier of a drive.
type DriveID string

// ItemID is the unique identifier of a drive item.
type ItemID string

// Tag is an opaque server-assigned version token (ETag or CTag) used in
// conditional requests. Equality-comparable, otherwise opaque.
type Tag string

// invalidNameChars are the characters the service forbids in file and
// folder names.
const invalidNameChars = `"*:<>?/\|`

var (
	// ErrInvalidFileName is returned for empty names or names containing
	// any of: " * : < > ? / \ |
	ErrInvalidFileName = errors.New("msdrive: invalid file name")

	// ErrInvalidItemPath is returned for paths that are not /-rooted or
	// contain a segment that is not a valid file name.
	ErrInvalidItemPath = errors.New("msdrive: invalid item path")
)

// FileName is a file or folder name validated against the service's
// forbidden-character rules. The zero value is invalid; construct through
// NewFileName.
//
// Windows device names like CON or NUL pass the check (the API accepts
// them) but may still misbehave elsewhere; avoid them.
type FileName struct {
	name string
}

// NewFileName validates and wraps a file or folder name.
func NewFileName(name string) (FileName, error) {
	if !validFileName(name) {
		return FileName{}, fmt.Errorf("%w: %q", ErrInvalidFileName, name)
	}

	return FileName{name: name}, nil
}

// MustFileName is NewFileName for constant names; panics on invalid input.
func MustFileName(name string) FileName {
	fn, err := NewFileName(name)
	if err != nil {
		panic(err)
	}

	return fn
}

func (f FileName) String() string {
	return f.name
}

func validFileName(name string) bool {
	return name != "" && !strings.ContainsAny(name, invalidNameChars)
}

// DriveLocation addresses a drive: the current user's, a user's, a group's,
// a site's, or one by ID. Immutable and cheap to copy.
type DriveLocation struct {
	kind driveLocationKind
	id   string
}

type driveLocationKind int

const (
	driveMe driveLocationKind = iota
	driveUser
	driveGroup
	driveSite
	driveByID
)

// Me addresses the signed-in user's drive.
func Me() DriveLocation {
	return DriveLocation{kind: driveMe}
}

// UserDrive addresses the drive of a user by ID or principal name.
func UserDrive(idOrPrincipalName string) DriveLocation {
	return DriveLocation{kind: driveUser, id: idOrPrincipalName}
}

// GroupDrive addresses the document library associated with a group.
func GroupDrive(groupID string) DriveLocation {
	return DriveLocation{kind: driveGroup, id: groupID}
}

// SiteDrive addresses the document library of a site.
func SiteDrive(siteID string) DriveLocation {
	return DriveLocation{kind: driveSite, id: siteID}
}

// DriveByID addresses a drive directly by its ID.
func DriveByID(id DriveID) DriveLocation {
	return DriveLocation{kind: driveByID, id: string(id)}
}

// urlPath encodes the drive location as URL path segments.
// Pure function; never fails.
func (l DriveLocation) urlPath() string {
	switch l.kind {
	case driveUser:
		return "/users/" + url.PathEscape(l.id) + "/drive"
	case driveGroup:
		return "/groups/" + url.PathEscape(l.id) + "/drive"
	case driveSite:
		return "/sites/" + url.PathEscape(l.id) + "/drive"
	case driveByID:
		return "/drives/" + url.PathEscape(l.id)
	default:
		return "/me/drive"
	}
}

// ItemLocation addresses an item within a drive: by absolute path, by item
// ID, or as a named child of a parent ID. Path and ID addressing are
// mutually exclusive by construction. Immutable and cheap to copy.
type ItemLocation struct {
	kind      itemLocationKind
	path      string
	id        string
	parentID  string
	childName string
}

type itemLocationKind int

const (
	itemByPath itemLocationKind = iota
	itemByID
	itemChildOfID
)

// Root addresses the drive's root folder.
func Root() ItemLocation {
	return ItemLocation{kind: itemByPath, path: "/"}
}

// ItemPath addresses an item by a UNIX-like /-rooted absolute path.
// Every path segment must be a valid file name; the trailing slash is
// optional. Returns ErrInvalidItemPath otherwise.
func ItemPath(path string) (ItemLocation, error) {
	if path == "/" {
		return Root(), nil
	}

	if !strings.HasPrefix(path, "/") {
		return ItemLocation{}, fmt.Errorf("%w: %q", ErrInvalidItemPath, path)
	}

	for _, seg := range strings.Split(strings.TrimSuffix(path[1:], "/"), "/") {
		if !validFileName(seg) {
			return ItemLocation{}, fmt.Errorf("%w: %q", ErrInvalidItemPath, path)
		}
	}

	return ItemLocation{kind: itemByPath, path: path}, nil
}

// ItemByID addresses an item by the ID another API call returned.
func ItemByID(id ItemID) ItemLocation {
	return ItemLocation{kind: itemByID, id: string(id)}
}

// ChildOf addresses the named child of a parent item given by ID.
func ChildOf(parentID ItemID, childName FileName) ItemLocation {
	return ItemLocation{
		kind:      itemChildOfID,
		parentID:  string(parentID),
		childName: childName.String(),
	}
}

// urlPath encodes the item location as URL path segments. A non-root path
// becomes a single colon-wrapped segment with the whole path percent-encoded,
// so decoding the segment and stripping the "root:"/":" wrapper recovers the
// original path exactly.
func (l ItemLocation) urlPath() string {
	switch l.kind {
	case itemByID:
		return "/items/" + url.PathEscape(l.id)
	case itemChildOfID:
		return "/items/" + url.PathEscape(l.parentID) + "/children/" + url.PathEscape(l.childName)
	default:
		if l.path == "/" {
			return "/root"
		}

		return "/root:" + url.PathEscape(l.path) + ":"
	}
}

// apiPath encodes the item location as an API-relative "/drive/..." path,
// the form used when a location is embedded as a JSON string value (the
// parentReference of a move or copy). Kept consistent with urlPath.
func (l ItemLocation) apiPath() string {
	return "/drive" + l.urlPath()
}
