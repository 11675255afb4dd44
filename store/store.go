// Package store provides read-only access to nested group/dataset containers
// and the metadata-frame reconstruction built on top of it.
//
// The Store interface is the minimal contract the ingestion layer needs:
// path existence, attribute lookup, dataset reads and child enumeration.
// Two implementations exist: H5Store backed by an HDF5 file, and MemStore,
// an in-memory tree used for fixtures and tests.
package store

import "fmt"

// Store is a read-only handle into a hierarchical container.
//
// Paths are slash-delimited ("obs/__categories/cell_type"); the empty string
// or "/" addresses the root group. A Store is scoped to one load operation:
// it is opened immediately before use and must be closed on every exit path.
// Implementations are not safe for concurrent use.
type Store interface {
	// Exists reports whether the full path resolves, checking segment by
	// segment and short-circuiting at the first missing one.
	Exists(path string) bool

	// IsGroup reports whether path resolves to a group (not a dataset).
	IsGroup(path string) bool

	// Children returns the names of the direct children of a group, in the
	// container's natural enumeration order.
	Children(path string) ([]string, error)

	// Attr returns the named attribute of the object at path, or false if
	// the object or attribute does not exist.
	Attr(path, name string) (any, bool)

	// Dims returns the dimensions of a dataset.
	Dims(path string) ([]int, error)

	// ReadStrings reads a 1-D string dataset.
	ReadStrings(path string) ([]string, error)

	// ReadFloats reads a 1-D numeric dataset as float64.
	ReadFloats(path string) ([]float64, error)

	// ReadInts reads a 1-D integer dataset as int64.
	ReadInts(path string) ([]int64, error)

	// Close releases the underlying resource. Close is idempotent.
	Close() error
}

// ErrStoreAccess indicates the underlying resource is missing, closed or
// corrupt. It is fatal for the enclosing load and never retried.
type ErrStoreAccess struct {
	Path  string
	cause error
}

func (e *ErrStoreAccess) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("store access failed: %v", e.cause)
	}
	return fmt.Sprintf("store access failed at %q: %v", e.Path, e.cause)
}

func (e *ErrStoreAccess) Unwrap() error { return e.cause }

// NewAccessError wraps cause as an ErrStoreAccess for path.
func NewAccessError(path string, cause error) *ErrStoreAccess {
	return &ErrStoreAccess{Path: path, cause: cause}
}

// ErrSchema indicates a well-formed container that violates a structural
// expectation (wrong node kind, missing required group, length mismatch).
type ErrSchema struct {
	Path   string
	Reason string
}

func (e *ErrSchema) Error() string {
	return fmt.Sprintf("schema violation at %q: %s", e.Path, e.Reason)
}

// ErrMissingIndex indicates that no index dataset could be resolved for a
// group. Fatal for the enclosing load.
type ErrMissingIndex struct {
	Group string
}

func (e *ErrMissingIndex) Error() string {
	return fmt.Sprintf("no index dataset in group %q", e.Group)
}

// AttrString coerces an attribute value to a string. HDF5 scalar string
// attributes may surface as string or as a single-element slice.
func AttrString(v any) (string, bool) {
	switch s := v.(type) {
	case string:
		return s, true
	case []string:
		if len(s) == 1 {
			return s[0], true
		}
	}
	return "", false
}

// AttrStrings coerces an attribute value to a string slice.
func AttrStrings(v any) ([]string, bool) {
	switch s := v.(type) {
	case []string:
		return s, true
	case string:
		return []string{s}, true
	}
	return nil, false
}

// AttrInts coerces an attribute value to an int slice. Used for shape-like
// attributes which may be stored with varying integer widths.
func AttrInts(v any) ([]int, bool) {
	switch s := v.(type) {
	case []int:
		return s, true
	case []int64:
		out := make([]int, len(s))
		for i, x := range s {
			out[i] = int(x)
		}
		return out, true
	case []int32:
		out := make([]int, len(s))
		for i, x := range s {
			out[i] = int(x)
		}
		return out, true
	case []uint64:
		out := make([]int, len(s))
		for i, x := range s {
			out[i] = int(x)
		}
		return out, true
	case int64:
		return []int{int(s)}, true
	case int32:
		return []int{int(s)}, true
	}
	return nil, false
}
