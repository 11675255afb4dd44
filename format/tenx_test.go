package format

import (
	"testing"

	"github.com/croghan-lab/scbridge/store"
	"github.com/stretchr/testify/require"
)

func tenXFixtureV3() *store.MemStore {
	return store.NewMemStore().
		PutDataset("matrix/shape", []int64{2, 3}).
		PutDataset("matrix/data", []float64{1, 2, 3, 4}).
		PutDataset("matrix/indices", []int64{0, 1, 0, 1}).
		PutDataset("matrix/indptr", []int64{0, 1, 2, 4}).
		PutDataset("matrix/features/name", []string{"G1", "G2"}).
		PutDataset("matrix/features/id", []string{"ENSG01", "ENSG02"}).
		PutDataset("matrix/barcodes", []string{"C1", "C2", "C3"})
}

func TestExtractTenXV3(t *testing.T) {
	m, err := ExtractTenX(tenXFixtureV3(), Options{}.withDefaults())
	require.NoError(t, err)
	requireFixtureValues(t, m)
	require.Equal(t, []string{"G1", "G2"}, m.RowNames())
	require.Equal(t, []string{"C1", "C2", "C3"}, m.ColNames())
}

func TestExtractTenXFeatureIDFallback(t *testing.T) {
	s := store.NewMemStore().
		PutDataset("matrix/shape", []int64{2, 3}).
		PutDataset("matrix/data", []float64{1, 2, 3, 4}).
		PutDataset("matrix/indices", []int64{0, 1, 0, 1}).
		PutDataset("matrix/indptr", []int64{0, 1, 2, 4}).
		PutDataset("matrix/features/id", []string{"ENSG01", "ENSG02"}).
		PutDataset("matrix/barcodes", []string{"C1", "C2", "C3"})

	m, err := ExtractTenX(s, Options{}.withDefaults())
	require.NoError(t, err)
	require.Equal(t, []string{"ENSG01", "ENSG02"}, m.RowNames())
}

func TestExtractTenXLegacyFirstGenome(t *testing.T) {
	s := store.NewMemStore().
		PutDataset("GRCh38/shape", []int64{2, 3}).
		PutDataset("GRCh38/data", []float64{1, 2, 3, 4}).
		PutDataset("GRCh38/indices", []int64{0, 1, 0, 1}).
		PutDataset("GRCh38/indptr", []int64{0, 1, 2, 4}).
		PutDataset("GRCh38/gene_names", []string{"G1", "G2"}).
		PutDataset("GRCh38/barcodes", []string{"C1", "C2", "C3"}).
		PutDataset("mm10/shape", []int64{1, 1}).
		PutDataset("mm10/data", []float64{9}).
		PutDataset("mm10/indices", []int64{0}).
		PutDataset("mm10/indptr", []int64{0, 1}).
		PutDataset("mm10/gene_names", []string{"other"}).
		PutDataset("mm10/barcodes", []string{"X1"})

	m, err := ExtractTenX(s, Options{}.withDefaults())
	require.NoError(t, err)
	requireFixtureValues(t, m)
	require.Equal(t, []string{"G1", "G2"}, m.RowNames())
}

func TestExtractTenXMinPresenceFilter(t *testing.T) {
	// Three features, four observations; G3 is never detected and C4
	// detects nothing.
	s := store.NewMemStore().
		PutDataset("matrix/shape", []int64{3, 4}).
		PutDataset("matrix/data", []float64{1, 2, 3, 4}).
		PutDataset("matrix/indices", []int64{0, 1, 0, 1}).
		PutDataset("matrix/indptr", []int64{0, 1, 2, 4, 4}).
		PutDataset("matrix/features/name", []string{"G1", "G2", "G3"}).
		PutDataset("matrix/barcodes", []string{"C1", "C2", "C3", "C4"})

	m, err := ExtractTenX(s, Options{}.withDefaults())
	require.NoError(t, err)
	require.Equal(t, []string{"G1", "G2"}, m.RowNames())
	require.Equal(t, []string{"C1", "C2", "C3"}, m.ColNames())
	requireFixtureValues(t, m)
}

func TestExtractTenXMinCellsThreshold(t *testing.T) {
	// G1 is detected in two observations, G2 in one.
	s := store.NewMemStore().
		PutDataset("matrix/shape", []int64{2, 2}).
		PutDataset("matrix/data", []float64{1, 2, 3}).
		PutDataset("matrix/indices", []int64{0, 1, 0}).
		PutDataset("matrix/indptr", []int64{0, 2, 3}).
		PutDataset("matrix/features/name", []string{"G1", "G2"}).
		PutDataset("matrix/barcodes", []string{"C1", "C2"})

	m, err := ExtractTenX(s, Options{MinCells: 2}.withDefaults())
	require.NoError(t, err)
	require.Equal(t, []string{"G1"}, m.RowNames())
	require.Equal(t, []string{"C1", "C2"}, m.ColNames())
}

func TestExtractTenXNoGenomeGroup(t *testing.T) {
	s := store.NewMemStore().PutDataset("stray", []float64{1})
	_, err := ExtractTenX(s, Options{}.withDefaults())
	var mm *ErrMissingMatrix
	require.ErrorAs(t, err, &mm)
}
