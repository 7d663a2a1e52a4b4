package msdrive

import (
	"strconv"
	"strings"
)

// ConflictBehavior controls what the service does when a create or upload
// collides with an existing item.
type ConflictBehavior string

const (
	// ConflictFail aborts the operation with a conflict error.
	ConflictFail ConflictBehavior = "fail"
	// ConflictReplace overwrites the existing item.
	ConflictReplace ConflictBehavior = "replace"
	// ConflictRename keeps both, giving the new item a derived name.
	ConflictRename ConflictBehavior = "rename"
)

// Order is the sort direction for collection ordering.
type Order int

const (
	Ascending Order = iota
	Descending
)

func (o Order) queryValue() string {
	if o == Descending {
		return "desc"
	}

	return "asc"
}

// ObjectOption customizes a single-object request: conditional headers and
// select/expand projection. The zero value and a nil pointer both mean "no
// options"; all chain methods mutate and return the receiver.
//
// Select and Expand accumulate across calls; If-Match and If-None-Match are
// last-write-wins.
type ObjectOption[F Field] struct {
	ifMatch     *Tag
	ifNoneMatch *Tag
	selects     []string
	expands     []string
}

// NewObjectOption returns an empty option set for chaining.
func NewObjectOption[F Field]() *ObjectOption[F] {
	return &ObjectOption[F]{}
}

// IfMatch makes the request conditional: it only succeeds if the item's
// current tag matches.
func (o *ObjectOption[F]) IfMatch(tag Tag) *ObjectOption[F] {
	o.ifMatch = &tag
	return o
}

// IfNoneMatch makes the request conditional: a matching tag yields the
// not-modified outcome instead of a payload.
func (o *ObjectOption[F]) IfNoneMatch(tag Tag) *ObjectOption[F] {
	o.ifNoneMatch = &tag
	return o
}

// Select restricts the response to the named fields.
func (o *ObjectOption[F]) Select(fields ...F) *ObjectOption[F] {
	for _, f := range fields {
		o.selects = append(o.selects, f.wireName())
	}

	return o
}

// Expand includes the named relation inline, optionally projected to the
// given child fields. Child field names are passed through verbatim.
func (o *ObjectOption[F]) Expand(field F, selectChildren []string) *ObjectOption[F] {
	expr := field.wireName()
	if len(selectChildren) > 0 {
		expr += "($select=" + strings.Join(selectChildren, ",") + ")"
	}

	o.expands = append(o.expands, expr)

	return o
}

func (o *ObjectOption[F]) apply(b *requestBuilder) {
	if o == nil {
		return
	}

	if o.ifMatch != nil {
		b.header("If-Match", string(*o.ifMatch))
	}

	if o.ifNoneMatch != nil {
		b.header("If-None-Match", string(*o.ifNoneMatch))
	}

	if len(o.selects) > 0 {
		b.queryParam("$select", strings.Join(o.selects, ","))
	}

	if len(o.expands) > 0 {
		b.queryParam("$expand", strings.Join(o.expands, ","))
	}
}

// CollectionOption customizes a collection request: everything ObjectOption
// offers plus ordering, page size and count. Page size, order and count are
// last-write-wins.
type CollectionOption[F Field] struct {
	obj      ObjectOption[F]
	orderBy  string
	pageSize int
	getCount *bool
}

// NewCollectionOption returns an empty option set for chaining.
func NewCollectionOption[F Field]() *CollectionOption[F] {
	return &CollectionOption[F]{}
}

// IfNoneMatch makes the request conditional on the collection's tag.
func (o *CollectionOption[F]) IfNoneMatch(tag Tag) *CollectionOption[F] {
	o.obj.IfNoneMatch(tag)
	return o
}

// Select restricts each returned item to the named fields.
func (o *CollectionOption[F]) Select(fields ...F) *CollectionOption[F] {
	o.obj.Select(fields...)
	return o
}

// Expand includes the named relation inline for each returned item.
func (o *CollectionOption[F]) Expand(field F, selectChildren []string) *CollectionOption[F] {
	o.obj.Expand(field, selectChildren)
	return o
}

// OrderBy sorts the collection by the given field and direction.
func (o *CollectionOption[F]) OrderBy(field F, order Order) *CollectionOption[F] {
	o.orderBy = field.wireName() + " " + order.queryValue()
	return o
}

// PageSize caps the number of items returned per page.
func (o *CollectionOption[F]) PageSize(n int) *CollectionOption[F] {
	o.pageSize = n
	return o
}

// GetCount asks the service to include a total item count.
func (o *CollectionOption[F]) GetCount(count bool) *CollectionOption[F] {
	o.getCount = &count
	return o
}

func (o *CollectionOption[F]) hasGetCount() bool {
	return o != nil && o.getCount != nil && *o.getCount
}

func (o *CollectionOption[F]) apply(b *requestBuilder) {
	if o == nil {
		return
	}

	o.obj.apply(b)

	if o.orderBy != "" {
		b.queryParam("$orderby", o.orderBy)
	}

	if o.pageSize > 0 {
		b.queryParam("$top", strconv.Itoa(o.pageSize))
	}

	if o.getCount != nil {
		b.queryParam("$count", strconv.FormatBool(*o.getCount))
	}
}

// PutOption customizes item creation and upload-session creation: a
// conditional If-Match tag and the conflict behavior. The default conflict
// behavior is the service's (fail for folder creation, rename for upload
// sessions unless set).
type PutOption struct {
	ifMatch          *Tag
	conflictBehavior *ConflictBehavior
}

// NewPutOption returns an empty option set for chaining.
func NewPutOption() *PutOption {
	return &PutOption{}
}

// IfMatch makes the write conditional on the item's current tag.
func (o *PutOption) IfMatch(tag Tag) *PutOption {
	o.ifMatch = &tag
	return o
}

// ConflictBehavior sets what happens when the target name already exists.
func (o *PutOption) ConflictBehavior(b ConflictBehavior) *PutOption {
	o.conflictBehavior = &b
	return o
}

func (o *PutOption) conflict() *ConflictBehavior {
	if o == nil {
		return nil
	}

	return o.conflictBehavior
}

func (o *PutOption) apply(b *requestBuilder) {
	if o == nil {
		return
	}

	if o.ifMatch != nil {
		b.header("If-Match", string(*o.ifMatch))
	}
}
