package store

import (
	"errors"
	"strings"

	"github.com/robert-malhotra/go-hdf5/hdf5"
)

var errClosed = errors.New("store is closed")

var _ Store = (*H5Store)(nil)

// H5Store is a Store backed by an HDF5 file via the pure-Go reader.
type H5Store struct {
	f      *hdf5.File
	closed bool
}

// OpenH5 opens an HDF5 container for reading. The caller owns the handle and
// must Close it on every exit path.
func OpenH5(path string) (*H5Store, error) {
	f, err := hdf5.Open(path)
	if err != nil {
		return nil, &ErrStoreAccess{Path: path, cause: err}
	}
	return &H5Store{f: f}, nil
}

// Close releases the file handle. Safe to call more than once.
func (s *H5Store) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	return s.f.Close()
}

func splitPath(path string) []string {
	path = strings.Trim(path, "/")
	if path == "" {
		return nil
	}
	return strings.Split(path, "/")
}

// Exists walks the path one segment at a time, short-circuiting at the first
// segment that is not a child of the group above it.
func (s *H5Store) Exists(path string) bool {
	if s.closed {
		return false
	}
	segs := splitPath(path)
	if len(segs) == 0 {
		return true
	}
	g := s.f.Root()
	for i, seg := range segs {
		members, err := g.Members()
		if err != nil {
			return false
		}
		if !contains(members, seg) {
			return false
		}
		if i == len(segs)-1 {
			return true
		}
		next, err := g.OpenGroup(seg)
		if err != nil {
			// Intermediate segment is a dataset; the full path cannot exist.
			return false
		}
		g = next
	}
	return true
}

// IsGroup reports whether path resolves to a group.
func (s *H5Store) IsGroup(path string) bool {
	if s.closed {
		return false
	}
	if len(splitPath(path)) == 0 {
		return true
	}
	_, err := s.f.Root().OpenGroup(path)
	return err == nil
}

// Children returns the member names of a group in file order.
func (s *H5Store) Children(path string) ([]string, error) {
	g, err := s.openGroup(path)
	if err != nil {
		return nil, err
	}
	members, err := g.Members()
	if err != nil {
		return nil, &ErrStoreAccess{Path: path, cause: err}
	}
	return members, nil
}

// Attr returns an attribute of the group or dataset at path.
func (s *H5Store) Attr(path, name string) (any, bool) {
	if s.closed {
		return nil, false
	}
	var attr *hdf5.Attribute
	if s.IsGroup(path) {
		g, err := s.openGroup(path)
		if err != nil {
			return nil, false
		}
		attr = g.Attr(name)
	} else {
		ds, err := s.openDataset(path)
		if err != nil {
			return nil, false
		}
		attr = ds.Attr(name)
	}
	if attr == nil {
		return nil, false
	}
	v, err := attr.Value()
	if err != nil {
		return nil, false
	}
	return v, true
}

// Dims returns a dataset's dimensions.
func (s *H5Store) Dims(path string) ([]int, error) {
	ds, err := s.openDataset(path)
	if err != nil {
		return nil, err
	}
	shape := ds.Shape()
	out := make([]int, len(shape))
	for i, d := range shape {
		out[i] = int(d)
	}
	return out, nil
}

// ReadStrings reads a 1-D string dataset.
func (s *H5Store) ReadStrings(path string) ([]string, error) {
	ds, err := s.openDataset(path)
	if err != nil {
		return nil, err
	}
	out, err := ds.ReadString()
	if err != nil {
		return nil, &ErrStoreAccess{Path: path, cause: err}
	}
	return out, nil
}

// ReadFloats reads a 1-D numeric dataset, widening to float64.
func (s *H5Store) ReadFloats(path string) ([]float64, error) {
	ds, err := s.openDataset(path)
	if err != nil {
		return nil, err
	}
	if out, err := ds.ReadFloat64(); err == nil {
		return out, nil
	}
	if f32, err := ds.ReadFloat32(); err == nil {
		out := make([]float64, len(f32))
		for i, v := range f32 {
			out[i] = float64(v)
		}
		return out, nil
	}
	ints, err := s.ReadInts(path)
	if err != nil {
		return nil, err
	}
	out := make([]float64, len(ints))
	for i, v := range ints {
		out[i] = float64(v)
	}
	return out, nil
}

// ReadInts reads a 1-D integer dataset, widening to int64. Integer widths in
// the wild vary per writer, so every width is tried.
func (s *H5Store) ReadInts(path string) ([]int64, error) {
	ds, err := s.openDataset(path)
	if err != nil {
		return nil, err
	}
	if out, err := ds.ReadInt64(); err == nil {
		return out, nil
	}
	if v, err := ds.ReadInt32(); err == nil {
		return widen(v), nil
	}
	if v, err := ds.ReadInt16(); err == nil {
		return widen(v), nil
	}
	if v, err := ds.ReadInt8(); err == nil {
		return widen(v), nil
	}
	if v, err := ds.ReadUint8(); err == nil {
		return widen(v), nil
	}
	if v, err := ds.ReadUint16(); err == nil {
		return widen(v), nil
	}
	if v, err := ds.ReadUint32(); err == nil {
		return widen(v), nil
	}
	if v, err := ds.ReadUint64(); err == nil {
		out := make([]int64, len(v))
		for i, x := range v {
			out[i] = int64(x)
		}
		return out, nil
	}
	return nil, &ErrStoreAccess{Path: path, cause: errors.New("dataset is not integer-typed")}
}

func (s *H5Store) openGroup(path string) (*hdf5.Group, error) {
	if s.closed {
		return nil, &ErrStoreAccess{Path: path, cause: errClosed}
	}
	if len(splitPath(path)) == 0 {
		return s.f.Root(), nil
	}
	g, err := s.f.Root().OpenGroup(path)
	if err != nil {
		return nil, &ErrStoreAccess{Path: path, cause: err}
	}
	return g, nil
}

func (s *H5Store) openDataset(path string) (*hdf5.Dataset, error) {
	if s.closed {
		return nil, &ErrStoreAccess{Path: path, cause: errClosed}
	}
	ds, err := s.f.Root().OpenDataset(path)
	if err != nil {
		return nil, &ErrStoreAccess{Path: path, cause: err}
	}
	return ds, nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func widen[T int8 | int16 | int32 | uint8 | uint16 | uint32](in []T) []int64 {
	out := make([]int64, len(in))
	for i, v := range in {
		out[i] = int64(v)
	}
	return out
}
