package format

import (
	"testing"

	"github.com/croghan-lab/scbridge/store"
	"github.com/stretchr/testify/require"
)

func h5seuratFixture() *store.MemStore {
	s := store.NewMemStore().
		PutDataset("cell.names", []string{"C1", "C2", "C3"}).
		PutDataset("assays/RNA/features", []string{"G1", "G2"}).
		PutDataset("assays/RNA/counts/data", []float64{1, 2, 3, 4}).
		PutDataset("assays/RNA/counts/indices", []int64{0, 1, 0, 1}).
		PutDataset("assays/RNA/counts/indptr", []int64{0, 1, 2, 4})
	s.SetAttr("assays/RNA/counts", "dims", []int64{2, 3})
	return s
}

func TestExtractH5SeuratSparse(t *testing.T) {
	m, err := ExtractH5Seurat(h5seuratFixture())
	require.NoError(t, err)
	requireFixtureValues(t, m)
	require.Equal(t, []string{"G1", "G2"}, m.RowNames())
	require.Equal(t, []string{"C1", "C2", "C3"}, m.ColNames())
}

func TestExtractH5SeuratDense(t *testing.T) {
	s := store.NewMemStore().
		PutDataset("cell.names", []string{"C1", "C2", "C3"}).
		PutDataset("assays/RNA/features", []string{"G1", "G2"})
	s.PutMatrix("assays/RNA/counts", 2, 3, []float64{1, 0, 3, 0, 2, 4})

	m, err := ExtractH5Seurat(s)
	require.NoError(t, err)
	requireFixtureValues(t, m)
}

func TestExtractH5SeuratActiveAssayAttr(t *testing.T) {
	s := store.NewMemStore().
		PutDataset("cell.names", []string{"C1"}).
		PutDataset("assays/SCT/features", []string{"G1"}).
		PutDataset("assays/SCT/counts/data", []float64{5}).
		PutDataset("assays/SCT/counts/indices", []int64{0}).
		PutDataset("assays/SCT/counts/indptr", []int64{0, 1})
	s.SetAttr("assays/SCT/counts", "dims", []int64{1, 1})
	s.SetAttr("", "active.assay", "SCT")

	m, err := ExtractH5Seurat(s)
	require.NoError(t, err)
	require.Equal(t, 5.0, m.At(0, 0))
}

func TestExtractH5SeuratMetaData(t *testing.T) {
	s := h5seuratFixture().
		PutDataset("meta.data/nCount", []float64{1, 2, 7}).
		PutDataset("meta.data/cell_type/levels", []string{"B", "T"}).
		PutDataset("meta.data/cell_type/values", []int64{1, 2, 2})
	s.SetAttr("meta.data", "colnames", []string{"cell_type", "nCount"})

	m, err := ExtractH5Seurat(s)
	require.NoError(t, err)
	obs := m.Obs()
	require.NotNil(t, obs)
	require.Equal(t, []string{"cell_type", "nCount"}, obs.Names())
	ct, _ := obs.Column("cell_type")
	require.Equal(t, []string{"B", "T", "T"}, ct)
	nc, _ := obs.Column("nCount")
	require.Equal(t, []string{"1", "2", "7"}, nc)
}

func TestExtractH5SeuratFactorMissingCode(t *testing.T) {
	s := h5seuratFixture().
		PutDataset("meta.data/cell_type/levels", []string{"B"}).
		PutDataset("meta.data/cell_type/values", []int64{1, 0, 1})

	m, err := ExtractH5Seurat(s)
	require.NoError(t, err)
	ct, _ := m.Obs().Column("cell_type")
	require.Equal(t, []string{"B", "", "B"}, ct)
}

func TestExtractH5SeuratMissingAssay(t *testing.T) {
	s := store.NewMemStore().PutDataset("cell.names", []string{"C1"})
	_, err := ExtractH5Seurat(s)
	var ma *ErrMissingAssay
	require.ErrorAs(t, err, &ma)
	require.Equal(t, "RNA", ma.Assay)
}

func TestExtractH5SeuratEmptyCounts(t *testing.T) {
	s := store.NewMemStore().
		PutDataset("cell.names", []string{"C1"}).
		PutDataset("assays/RNA/features", []string{"G1"})
	s.PutMatrix("assays/RNA/counts", 1, 1, []float64{0})

	_, err := ExtractH5Seurat(s)
	var ma *ErrMissingAssay
	require.ErrorAs(t, err, &ma)
}

func TestExtractH5SeuratBadFactorCode(t *testing.T) {
	s := h5seuratFixture().
		PutDataset("meta.data/cell_type/levels", []string{"B"}).
		PutDataset("meta.data/cell_type/values", []int64{1, 2, 1})

	_, err := ExtractH5Seurat(s)
	var se *store.ErrSchema
	require.ErrorAs(t, err, &se)
}
