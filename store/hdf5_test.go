package store

import (
	"path/filepath"
	"testing"

	"github.com/robert-malhotra/go-hdf5/hdf5"
	"github.com/stretchr/testify/require"
)

// writeH5 builds a small HDF5 file:
//
//	/meta/           (group)
//	/meta/counts     int32 dataset, attr "unit"="reads"
//	/meta/weights    float64 dataset
//	/flat            int32 dataset
func writeH5(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "fixture.h5")

	f, err := hdf5.Create(path)
	require.NoError(t, err)

	meta, err := f.Root().CreateGroup("meta")
	require.NoError(t, err)
	_, err = meta.CreateDataset("counts", []int32{1, 2, 3},
		hdf5.WithAttribute("unit", "reads"))
	require.NoError(t, err)
	_, err = meta.CreateDataset("weights", []float64{0.5, 1.5})
	require.NoError(t, err)
	_, err = f.Root().CreateDataset("flat", []int32{9})
	require.NoError(t, err)

	require.NoError(t, f.Close())
	return path
}

func TestH5Store_ExistsShortCircuit(t *testing.T) {
	s, err := OpenH5(writeH5(t))
	require.NoError(t, err)
	defer s.Close()

	require.True(t, s.Exists(""))
	require.True(t, s.Exists("meta"))
	require.True(t, s.Exists("meta/counts"))
	require.False(t, s.Exists("meta/missing"))
	require.False(t, s.Exists("missing/counts"), "missing prefix short-circuits")
	// A prefix existing does not imply the full path exists, and a dataset
	// cannot have children.
	require.False(t, s.Exists("flat/child"))
}

func TestH5Store_IsGroupAndChildren(t *testing.T) {
	s, err := OpenH5(writeH5(t))
	require.NoError(t, err)
	defer s.Close()

	require.True(t, s.IsGroup(""))
	require.True(t, s.IsGroup("meta"))
	require.False(t, s.IsGroup("meta/counts"))
	require.False(t, s.IsGroup("nope"))

	children, err := s.Children("meta")
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"counts", "weights"}, children)

	_, err = s.Children("meta/counts")
	var access *ErrStoreAccess
	require.ErrorAs(t, err, &access)
}

func TestH5Store_Reads(t *testing.T) {
	s, err := OpenH5(writeH5(t))
	require.NoError(t, err)
	defer s.Close()

	ints, err := s.ReadInts("meta/counts")
	require.NoError(t, err)
	require.Equal(t, []int64{1, 2, 3}, ints)

	// Integer datasets widen through ReadFloats too.
	floats, err := s.ReadFloats("meta/counts")
	require.NoError(t, err)
	require.Equal(t, []float64{1, 2, 3}, floats)

	floats, err = s.ReadFloats("meta/weights")
	require.NoError(t, err)
	require.Equal(t, []float64{0.5, 1.5}, floats)

	_, err = s.ReadInts("does/not/exist")
	var access *ErrStoreAccess
	require.ErrorAs(t, err, &access)
}

func TestH5Store_Attr(t *testing.T) {
	s, err := OpenH5(writeH5(t))
	require.NoError(t, err)
	defer s.Close()

	v, ok := s.Attr("meta/counts", "unit")
	require.True(t, ok)
	unit, ok := AttrString(v)
	require.True(t, ok)
	require.Equal(t, "reads", unit)

	_, ok = s.Attr("meta/counts", "missing")
	require.False(t, ok)
	_, ok = s.Attr("nope", "unit")
	require.False(t, ok)
}

func TestH5Store_ClosedAccess(t *testing.T) {
	s, err := OpenH5(writeH5(t))
	require.NoError(t, err)
	require.NoError(t, s.Close())
	require.NoError(t, s.Close(), "close is idempotent")

	require.False(t, s.Exists("meta"))
	_, err = s.ReadInts("meta/counts")
	var access *ErrStoreAccess
	require.ErrorAs(t, err, &access)
}

func TestOpenH5_MissingFile(t *testing.T) {
	_, err := OpenH5(filepath.Join(t.TempDir(), "nope.h5"))
	var access *ErrStoreAccess
	require.ErrorAs(t, err, &access)
}
