package homology

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

func detectTable(t *testing.T) *Table {
	t.Helper()
	tbl := NewTable()
	require.NoError(t, tbl.AddColumn("gene.human", []string{"TP53", "ACTB", "GAPDH"}))
	require.NoError(t, tbl.AddColumn("gene.mouse", []string{"Trp53", "Actb", "Gapdh"}))
	require.NoError(t, tbl.AddColumn("accession.human", []string{"ENSG01", "ENSG02", "ENSG03"}))
	return tbl
}

func TestDetectHuman(t *testing.T) {
	d := Detect([]string{"TP53", "GAPDH", "NOVEL"}, detectTable(t), 0, nil)
	require.Equal(t, "gene.human", d.Column)
	require.Equal(t, "gene", d.IDType)
	require.Equal(t, SpeciesHuman, d.Species)
	require.Equal(t, 2, d.Overlap)
	require.Equal(t, 3, d.Sampled)
}

func TestDetectMouse(t *testing.T) {
	d := Detect([]string{"Trp53", "Actb"}, detectTable(t), 0, nil)
	require.Equal(t, SpeciesMouse, d.Species)
	require.Equal(t, "gene", d.IDType)
}

func TestDetectStripsAccessionVersions(t *testing.T) {
	d := Detect([]string{"ENSG01.4", "ENSG02.12", ""}, detectTable(t), 0, nil)
	require.Equal(t, "accession.human", d.Column)
	require.Equal(t, 2, d.Overlap)
	require.Equal(t, 2, d.Sampled)
}

func TestDetectTieBreaksToFirstColumn(t *testing.T) {
	tbl := NewTable()
	require.NoError(t, tbl.AddColumn("sym", []string{"A", "B"}))
	require.NoError(t, tbl.AddColumn("alias", []string{"A", "B"}))

	d := Detect([]string{"A", "B"}, tbl, 0, nil)
	require.Equal(t, "sym", d.Column)
}

func TestDetectDeterministicUnsampled(t *testing.T) {
	names := []string{"TP53", "ACTB", "Gapdh"}
	first := Detect(names, detectTable(t), 0, nil)
	second := Detect(names, detectTable(t), 0, nil)
	require.Equal(t, first, second)
}

func TestDetectSamplingIsSeeded(t *testing.T) {
	var names []string
	for i := 0; i < 100; i++ {
		names = append(names, fmt.Sprintf("FAKE%d", i))
	}
	names = append(names, "TP53", "ACTB", "GAPDH")

	first := Detect(names, detectTable(t), 10, rand.NewSource(42))
	second := Detect(names, detectTable(t), 10, rand.NewSource(42))
	require.Equal(t, first, second)
	require.Equal(t, 10, first.Sampled)
}

func TestDetectEmptyTable(t *testing.T) {
	d := Detect([]string{"TP53"}, NewTable(), 0, nil)
	require.Equal(t, "", d.Column)
	require.Equal(t, 0, d.Overlap)
}

func TestColumnFor(t *testing.T) {
	tbl := detectTable(t)
	col, ok := tbl.ColumnFor("gene", SpeciesMouse)
	require.True(t, ok)
	require.Equal(t, "gene.mouse", col)

	_, ok = tbl.ColumnFor("accession", SpeciesMouse)
	require.False(t, ok)
}
