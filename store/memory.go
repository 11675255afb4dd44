package store

import (
	"fmt"
	"strings"
)

var _ Store = (*MemStore)(nil)

// MemStore is an in-memory Store used for fixtures and tests. Groups keep
// children in insertion order so enumeration is deterministic.
//
// Dataset values are []string, []float64 or []int64.
type MemStore struct {
	root   *memGroup
	closed bool
}

type memGroup struct {
	order    []string
	children map[string]any // *memGroup or *memDataset
	attrs    map[string]any
}

type memDataset struct {
	values any
	dims   []int
	attrs  map[string]any
}

func newMemGroup() *memGroup {
	return &memGroup{
		children: make(map[string]any),
		attrs:    make(map[string]any),
	}
}

// NewMemStore creates an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{root: newMemGroup()}
}

// PutGroup creates a group at path, creating intermediate groups as needed.
func (s *MemStore) PutGroup(path string) *MemStore {
	s.ensureGroup(path)
	return s
}

// PutDataset creates a dataset at path with the given values. Values must be
// []string, []float64 or []int64; intermediate groups are created as needed.
func (s *MemStore) PutDataset(path string, values any) *MemStore {
	switch values.(type) {
	case []string, []float64, []int64:
	default:
		panic(fmt.Sprintf("memstore: unsupported dataset type %T at %q", values, path))
	}
	segs := splitPath(path)
	if len(segs) == 0 {
		panic("memstore: dataset path is empty")
	}
	parent := s.ensureGroup(strings.Join(segs[:len(segs)-1], "/"))
	name := segs[len(segs)-1]
	if _, exists := parent.children[name]; !exists {
		parent.order = append(parent.order, name)
	}
	parent.children[name] = &memDataset{values: values, attrs: make(map[string]any)}
	return s
}

// PutMatrix creates a 2-D row-major float64 dataset at path.
func (s *MemStore) PutMatrix(path string, rows, cols int, values []float64) *MemStore {
	if len(values) != rows*cols {
		panic(fmt.Sprintf("memstore: %d values for %dx%d matrix at %q", len(values), rows, cols, path))
	}
	s.PutDataset(path, values)
	s.lookup(path).(*memDataset).dims = []int{rows, cols}
	return s
}

// SetAttr sets an attribute on the group or dataset at path.
func (s *MemStore) SetAttr(path, name string, value any) *MemStore {
	node := s.lookup(path)
	switch n := node.(type) {
	case *memGroup:
		n.attrs[name] = value
	case *memDataset:
		n.attrs[name] = value
	default:
		panic(fmt.Sprintf("memstore: no object at %q", path))
	}
	return s
}

func (s *MemStore) ensureGroup(path string) *memGroup {
	g := s.root
	for _, seg := range splitPath(path) {
		child, ok := g.children[seg]
		if !ok {
			next := newMemGroup()
			g.children[seg] = next
			g.order = append(g.order, seg)
			g = next
			continue
		}
		next, ok := child.(*memGroup)
		if !ok {
			panic(fmt.Sprintf("memstore: %q is a dataset, not a group", seg))
		}
		g = next
	}
	return g
}

func (s *MemStore) lookup(path string) any {
	var cur any = s.root
	for _, seg := range splitPath(path) {
		g, ok := cur.(*memGroup)
		if !ok {
			return nil
		}
		cur, ok = g.children[seg]
		if !ok {
			return nil
		}
	}
	return cur
}

// Exists reports whether path resolves, segment by segment.
func (s *MemStore) Exists(path string) bool {
	if s.closed {
		return false
	}
	return s.lookup(path) != nil
}

// IsGroup reports whether path resolves to a group.
func (s *MemStore) IsGroup(path string) bool {
	if s.closed {
		return false
	}
	_, ok := s.lookup(path).(*memGroup)
	return ok
}

// Children returns direct child names in insertion order.
func (s *MemStore) Children(path string) ([]string, error) {
	if s.closed {
		return nil, &ErrStoreAccess{Path: path, cause: errClosed}
	}
	g, ok := s.lookup(path).(*memGroup)
	if !ok {
		return nil, &ErrStoreAccess{Path: path, cause: fmt.Errorf("not a group")}
	}
	out := make([]string, len(g.order))
	copy(out, g.order)
	return out, nil
}

// Attr returns an attribute of the object at path.
func (s *MemStore) Attr(path, name string) (any, bool) {
	if s.closed {
		return nil, false
	}
	switch n := s.lookup(path).(type) {
	case *memGroup:
		v, ok := n.attrs[name]
		return v, ok
	case *memDataset:
		v, ok := n.attrs[name]
		return v, ok
	}
	return nil, false
}

// Dims returns a dataset's dimensions. Datasets built with PutDataset are
// one-dimensional; PutMatrix records an explicit shape.
func (s *MemStore) Dims(path string) ([]int, error) {
	ds, err := s.dataset(path)
	if err != nil {
		return nil, err
	}
	if ds.dims != nil {
		return ds.dims, nil
	}
	switch v := ds.values.(type) {
	case []string:
		return []int{len(v)}, nil
	case []float64:
		return []int{len(v)}, nil
	case []int64:
		return []int{len(v)}, nil
	}
	return nil, &ErrStoreAccess{Path: path, cause: fmt.Errorf("dataset is %T", ds.values)}
}

// ReadStrings reads a string dataset.
func (s *MemStore) ReadStrings(path string) ([]string, error) {
	ds, err := s.dataset(path)
	if err != nil {
		return nil, err
	}
	v, ok := ds.values.([]string)
	if !ok {
		return nil, &ErrStoreAccess{Path: path, cause: fmt.Errorf("dataset is %T, not []string", ds.values)}
	}
	return v, nil
}

// ReadFloats reads a numeric dataset as float64.
func (s *MemStore) ReadFloats(path string) ([]float64, error) {
	ds, err := s.dataset(path)
	if err != nil {
		return nil, err
	}
	switch v := ds.values.(type) {
	case []float64:
		return v, nil
	case []int64:
		out := make([]float64, len(v))
		for i, x := range v {
			out[i] = float64(x)
		}
		return out, nil
	}
	return nil, &ErrStoreAccess{Path: path, cause: fmt.Errorf("dataset is %T, not numeric", ds.values)}
}

// ReadInts reads an integer dataset as int64.
func (s *MemStore) ReadInts(path string) ([]int64, error) {
	ds, err := s.dataset(path)
	if err != nil {
		return nil, err
	}
	v, ok := ds.values.([]int64)
	if !ok {
		return nil, &ErrStoreAccess{Path: path, cause: fmt.Errorf("dataset is %T, not []int64", ds.values)}
	}
	return v, nil
}

// Close marks the store closed; further access fails.
func (s *MemStore) Close() error {
	s.closed = true
	return nil
}

func (s *MemStore) dataset(path string) (*memDataset, error) {
	if s.closed {
		return nil, &ErrStoreAccess{Path: path, cause: errClosed}
	}
	ds, ok := s.lookup(path).(*memDataset)
	if !ok {
		return nil, &ErrStoreAccess{Path: path, cause: fmt.Errorf("no dataset at path")}
	}
	return ds, nil
}
