package msdrive

// Field is a selectable or expandable resource field. The two concrete
// implementations are DriveField and DriveItemField; the unexported method
// keeps the set closed so options stay type-safe per resource.
type Field interface {
	wireName() string
}

// DriveField is a field of the Drive resource usable in select/expand.
type DriveField int

const (
	DriveFieldID DriveField = iota
	DriveFieldCreatedDateTime
	DriveFieldDescription
	DriveFieldDriveType
	DriveFieldLastModifiedDateTime
	DriveFieldName
	DriveFieldOwner
	DriveFieldQuota
	DriveFieldWebURL
)

var driveFieldNames = [...]string{
	DriveFieldID:                   "id",
	DriveFieldCreatedDateTime:      "createdDateTime",
	DriveFieldDescription:          "description",
	DriveFieldDriveType:            "driveType",
	DriveFieldLastModifiedDateTime: "lastModifiedDateTime",
	DriveFieldName:                 "name",
	DriveFieldOwner:                "owner",
	DriveFieldQuota:                "quota",
	DriveFieldWebURL:               "webUrl",
}

func (f DriveField) wireName() string {
	return driveFieldNames[f]
}

// DriveItemField is a field of the DriveItem resource usable in
// select/expand/orderby.
type DriveItemField int

const (
	DriveItemFieldID DriveItemField = iota
	DriveItemFieldCreatedDateTime
	DriveItemFieldCTag
	DriveItemFieldDeleted
	DriveItemFieldETag
	DriveItemFieldFile
	DriveItemFieldFileSystemInfo
	DriveItemFieldFolder
	DriveItemFieldLastModifiedDateTime
	DriveItemFieldName
	DriveItemFieldPackage
	DriveItemFieldParentReference
	DriveItemFieldRoot
	DriveItemFieldSize
	DriveItemFieldWebURL
)

var driveItemFieldNames = [...]string{
	DriveItemFieldID:                   "id",
	DriveItemFieldCreatedDateTime:      "createdDateTime",
	DriveItemFieldCTag:                 "cTag",
	DriveItemFieldDeleted:              "deleted",
	DriveItemFieldETag:                 "eTag",
	DriveItemFieldFile:                 "file",
	DriveItemFieldFileSystemInfo:       "fileSystemInfo",
	DriveItemFieldFolder:               "folder",
	DriveItemFieldLastModifiedDateTime: "lastModifiedDateTime",
	DriveItemFieldName:                 "name",
	DriveItemFieldPackage:              "package",
	DriveItemFieldParentReference:      "parentReference",
	DriveItemFieldRoot:                 "root",
	DriveItemFieldSize:                 "size",
	DriveItemFieldWebURL:               "webUrl",
}

func (f DriveItemField) wireName() string {
	return driveItemFieldNames[f]
}
