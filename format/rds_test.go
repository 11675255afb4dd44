package format

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/croghan-lab/scbridge/testutil"
	"github.com/stretchr/testify/require"
)

func writeRDS(t *testing.T, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "obj.rds")
	require.NoError(t, os.WriteFile(path, data, 0o600))
	return path
}

// seuratObject wraps counts into the slot layout a saved Seurat object has.
func seuratObject(counts testutil.RV) testutil.RV {
	return testutil.RS4("Seurat",
		testutil.Slot("assays", testutil.RList(
			testutil.RS4("Assay", testutil.Slot("counts", counts)),
		).WithNames("RNA")),
		testutil.Slot("active.assay", testutil.RStrs("RNA")),
		testutil.Slot("meta.data", testutil.RList(testutil.RStrs("a", "b", "b")).
			WithAttr("names", testutil.RStrs("group")).
			WithAttr("row.names", testutil.RStrs("C1", "C2", "C3")).
			WithAttr("class", testutil.RStrs("data.frame"))),
	)
}

func fixtureDgC() testutil.RV {
	return testutil.RDgCMatrix(2, 3,
		[]int32{0, 1, 0, 1},
		[]int32{0, 1, 2, 4},
		[]float64{1, 2, 3, 4},
		[]string{"G1", "G2"},
		[]string{"C1", "C2", "C3"},
	)
}

func TestLoadRDSSeuratSparse(t *testing.T) {
	path := writeRDS(t, testutil.EncodeRDSGzip(seuratObject(fixtureDgC())))

	m, err := Load(path, Options{})
	require.NoError(t, err)
	requireFixtureValues(t, m)
	require.Equal(t, []string{"G1", "G2"}, m.RowNames())
	require.Equal(t, []string{"C1", "C2", "C3"}, m.ColNames())

	obs := m.Obs()
	require.NotNil(t, obs)
	group, ok := obs.Column("group")
	require.True(t, ok)
	require.Equal(t, []string{"a", "b", "b"}, group)
}

func TestLoadRDSSeuratDenseCounts(t *testing.T) {
	counts := testutil.RMatrix(2, 3,
		[]float64{1, 0, 0, 2, 3, 4},
		[]string{"G1", "G2"},
		[]string{"C1", "C2", "C3"},
	)
	path := writeRDS(t, testutil.EncodeRDS(seuratObject(counts)))

	m, err := Load(path, Options{})
	require.NoError(t, err)
	requireFixtureValues(t, m)
}

func TestLoadRDSMatrix(t *testing.T) {
	v := testutil.RMatrix(2, 3,
		[]float64{1, 0, 0, 2, 3, 4},
		[]string{"G1", "G2"},
		[]string{"C1", "C2", "C3"},
	)
	path := writeRDS(t, testutil.EncodeRDS(v))

	m, err := Load(path, Options{})
	require.NoError(t, err)
	requireFixtureValues(t, m)
	require.Equal(t, []string{"G1", "G2"}, m.RowNames())
}

func TestLoadRDSDataFrame(t *testing.T) {
	v := testutil.RList(
		testutil.RReals(1, 0),
		testutil.RReals(0, 2),
		testutil.RReals(3, 4),
		testutil.RStrs("ignored", "ignored"),
	).
		WithAttr("names", testutil.RStrs("C1", "C2", "C3", "note")).
		WithAttr("row.names", testutil.RStrs("G1", "G2")).
		WithAttr("class", testutil.RStrs("data.frame"))
	path := writeRDS(t, testutil.EncodeRDS(v))

	m, err := Load(path, Options{})
	require.NoError(t, err)
	requireFixtureValues(t, m)
	require.Equal(t, []string{"G1", "G2"}, m.RowNames())
	require.Equal(t, []string{"C1", "C2", "C3"}, m.ColNames())
}

func TestLoadRDSUnsupportedPayload(t *testing.T) {
	path := writeRDS(t, testutil.EncodeRDS(testutil.RStrs("just", "strings")))

	_, err := Load(path, Options{})
	var up *ErrUnsupportedPayload
	require.ErrorAs(t, err, &up)
	require.Equal(t, "character", up.Type)
}

func TestLoadRDSMissingAssay(t *testing.T) {
	obj := testutil.RS4("Seurat",
		testutil.Slot("assays", testutil.RList(
			testutil.RS4("Assay", testutil.Slot("counts", fixtureDgC())),
		).WithNames("ADT")),
		testutil.Slot("active.assay", testutil.RStrs("RNA")),
	)
	path := writeRDS(t, testutil.EncodeRDS(obj))

	_, err := Load(path, Options{})
	var ma *ErrMissingAssay
	require.ErrorAs(t, err, &ma)
	require.Equal(t, "RNA", ma.Assay)
}

func TestLoadRDSSeuratEmptySparseCounts(t *testing.T) {
	empty := testutil.RDgCMatrix(0, 0, nil, []int32{0}, nil, nil, nil)
	path := writeRDS(t, testutil.EncodeRDS(seuratObject(empty)))

	_, err := Load(path, Options{})
	var ma *ErrMissingAssay
	require.ErrorAs(t, err, &ma)
	require.Equal(t, "RNA", ma.Assay)
}

func TestLoadRDSMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.rds"), Options{})
	require.Error(t, err)
}
