package store

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func obsFixture() *MemStore {
	return NewMemStore().
		PutDataset("obs/_index", []string{"c1", "c2", "c3"}).
		PutDataset("obs/__categories/cell_type", []string{"B", "T"}).
		PutDataset("obs/cell_type", []int64{1, 0, 1}).
		PutDataset("obs/n_genes", []int64{120, 80, 95}).
		PutDataset("obs/score", []float64{0.5, 1.25, 2})
}

func TestReconstructFrame_Categorical(t *testing.T) {
	table, err := ReconstructFrame(obsFixture(), "obs")
	require.NoError(t, err)

	require.Equal(t, []string{"c1", "c2", "c3"}, table.Index())
	require.Equal(t, []string{"cell_type", "n_genes", "score"}, table.Names())

	ct, ok := table.Column("cell_type")
	require.True(t, ok)
	require.Equal(t, []string{"T", "B", "T"}, ct)

	ng, _ := table.Column("n_genes")
	require.Equal(t, []string{"120", "80", "95"}, ng)

	sc, _ := table.Column("score")
	require.Equal(t, []string{"0.5", "1.25", "2"}, sc)
}

func TestReconstructFrame_CategoricalRoundTrip(t *testing.T) {
	// Encoding a string column as levels+codes and reconstructing must
	// reproduce the original values exactly.
	original := []string{"naive", "memory", "naive", "effector", "memory"}
	levels := []string{"effector", "memory", "naive"}
	codes := []int64{2, 1, 2, 0, 1}

	s := NewMemStore().
		PutDataset("obs/_index", []string{"c1", "c2", "c3", "c4", "c5"}).
		PutDataset("obs/__categories/state", levels).
		PutDataset("obs/state", codes)

	table, err := ReconstructFrame(s, "obs")
	require.NoError(t, err)
	got, _ := table.Column("state")
	require.Equal(t, original, got)
}

func TestReconstructFrame_MissingCode(t *testing.T) {
	s := NewMemStore().
		PutDataset("obs/_index", []string{"c1", "c2"}).
		PutDataset("obs/__categories/state", []string{"a"}).
		PutDataset("obs/state", []int64{0, -1})

	table, err := ReconstructFrame(s, "obs")
	require.NoError(t, err)
	got, _ := table.Column("state")
	require.Equal(t, []string{"a", ""}, got, "negative codes decode to empty")
}

func TestReconstructFrame_CodeOutOfRange(t *testing.T) {
	s := NewMemStore().
		PutDataset("obs/_index", []string{"c1"}).
		PutDataset("obs/__categories/state", []string{"a"}).
		PutDataset("obs/state", []int64{3})

	_, err := ReconstructFrame(s, "obs")
	var schema *ErrSchema
	require.ErrorAs(t, err, &schema)
}

func TestReconstructFrame_ColumnOrder(t *testing.T) {
	s := obsFixture().SetAttr("obs", "column-order", []string{"score", "cell_type", "ghost"})

	table, err := ReconstructFrame(s, "obs")
	require.NoError(t, err)

	// Declared order first (unknown names dropped), then remaining
	// discovered columns in natural order.
	require.Equal(t, []string{"score", "cell_type", "n_genes"}, table.Names())
}

func TestReconstructFrame_ColumnOrderFallback(t *testing.T) {
	// An unparsable attribute falls back to natural enumeration order.
	s := obsFixture().SetAttr("obs", "column-order", int64(42))

	table, err := ReconstructFrame(s, "obs")
	require.NoError(t, err)
	require.Equal(t, []string{"cell_type", "n_genes", "score"}, table.Names())
}

func TestReconstructFrame_LengthMismatch(t *testing.T) {
	s := NewMemStore().
		PutDataset("obs/_index", []string{"c1", "c2"}).
		PutDataset("obs/bad", []int64{1, 2, 3})

	_, err := ReconstructFrame(s, "obs")
	var schema *ErrSchema
	require.ErrorAs(t, err, &schema)
}

func TestReconstructFrame_ExcludesIndexAndCategories(t *testing.T) {
	table, err := ReconstructFrame(obsFixture(), "obs")
	require.NoError(t, err)
	for _, name := range table.Names() {
		require.NotEqual(t, "_index", name)
		require.NotEqual(t, "__categories", name)
	}
}
