// Package qname decomposes catalog qualified names.
//
// A qualified name is a "/"-delimited hierarchical identifier of the form
//
//	tenant/vendor/connection/database/schema/table/column
//
// where trailing segments are only present down to the entity's depth.
// The first segment identifies the cluster (tenant) the entity belongs to.
package qname

import "strings"

const Delimiter = "/"

// Indexes of the well-known segments of a qualified name.
const (
	IdxTenant = iota
	IdxVendor
	IdxConnection
	IdxDatabase
	IdxSchema
	IdxTable
	IdxColumn
)

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}

// ResourcePath returns qualifiedName without its trailing segment.
// If qualifiedName contains no delimiter, it is returned unchanged.
// The second return value is false if qualifiedName is blank.
func ResourcePath(qualifiedName string) (string, bool) {
	if isBlank(qualifiedName) {
		return "", false
	}
	if idx := strings.LastIndex(qualifiedName, Delimiter); idx != -1 {
		return qualifiedName[:idx], true
	}
	return qualifiedName, true
}

// ClusterName returns the first segment of qualifiedName.
// The second return value is false if qualifiedName is blank
// or its first segment is blank (e.g. "/foo" or "  /foo").
func ClusterName(qualifiedName string) (string, bool) {
	if isBlank(qualifiedName) {
		return "", false
	}
	first, _, _ := strings.Cut(qualifiedName, Delimiter)
	if isBlank(first) {
		return "", false
	}
	return first, true
}

// Segments splits qualifiedName into its ordered segments.
func Segments(qualifiedName string) []string {
	if qualifiedName == "" {
		return nil
	}
	return strings.Split(qualifiedName, Delimiter)
}

// Segment returns segs[i], or "" if i is out of range.
func Segment(segs []string, i int) string {
	if i < 0 || i >= len(segs) {
		return ""
	}
	return segs[i]
}
