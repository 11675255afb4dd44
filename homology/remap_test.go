package homology

import (
	"testing"

	"github.com/croghan-lab/scbridge/matrix"
	"github.com/stretchr/testify/require"
)

func queryMatrix(t *testing.T, rowNames []string) *matrix.Matrix {
	t.Helper()
	rows := len(rowNames)
	values := make([]float64, rows*2)
	for i := range values {
		values[i] = float64(i + 1)
	}
	m, err := matrix.FromDense(rows, 2, values)
	require.NoError(t, err)
	require.NoError(t, m.SetRowNames(rowNames))
	require.NoError(t, m.SetColNames([]string{"C1", "C2"}))
	return m
}

func TestRemapCrossSpecies(t *testing.T) {
	tbl := NewTable()
	require.NoError(t, tbl.AddColumn("gene.human", []string{"A1", "A2", "A3"}))
	require.NoError(t, tbl.AddColumn("gene.mouse", []string{"a1", "a2", "a3"}))

	m := queryMatrix(t, []string{"a1", "a2", "a4"})
	out, rep, err := Remap(m, tbl, "gene.mouse", "gene.human")
	require.NoError(t, err)
	require.Equal(t, []string{"A1", "A2"}, out.RowNames())
	require.Equal(t, Report{Found: 2, Attempted: 3}, rep)

	// a4 had values 5 and 6; they must be gone, the rest untouched.
	require.Equal(t, 1.0, out.At(0, 0))
	require.Equal(t, 4.0, out.At(1, 1))
	require.Equal(t, []string{"C1", "C2"}, out.ColNames())
}

func TestRemapSameColumnNoOp(t *testing.T) {
	tbl := NewTable()
	require.NoError(t, tbl.AddColumn("gene.human", []string{"A1"}))

	m := queryMatrix(t, []string{"A1", "ZZ"})
	out, rep, err := Remap(m, tbl, "gene.human", "gene.human")
	require.NoError(t, err)
	require.Same(t, m, out)
	require.Equal(t, Report{Found: 2, Attempted: 2}, rep)
}

func TestRemapDuplicateTargetsFirstWins(t *testing.T) {
	tbl := NewTable()
	require.NoError(t, tbl.AddColumn("sym", []string{"x1", "x2"}))
	require.NoError(t, tbl.AddColumn("target", []string{"Y", "Y"}))

	m := queryMatrix(t, []string{"x1", "x2"})
	out, rep, err := Remap(m, tbl, "sym", "target")
	require.NoError(t, err)
	require.Equal(t, []string{"Y"}, out.RowNames())
	require.Equal(t, Report{Found: 1, Attempted: 2}, rep)
	// x1's values survive, x2's do not.
	require.Equal(t, 1.0, out.At(0, 0))
}

func TestRemapDuplicateSourceFirstWins(t *testing.T) {
	tbl := NewTable()
	require.NoError(t, tbl.AddColumn("sym", []string{"x1", "x1"}))
	require.NoError(t, tbl.AddColumn("target", []string{"Y1", "Y2"}))

	m := queryMatrix(t, []string{"x1"})
	out, _, err := Remap(m, tbl, "sym", "target")
	require.NoError(t, err)
	require.Equal(t, []string{"Y1"}, out.RowNames())
}

func TestRemapKeepsObservationMetadata(t *testing.T) {
	tbl := NewTable()
	require.NoError(t, tbl.AddColumn("sym", []string{"x1", "x2"}))
	require.NoError(t, tbl.AddColumn("target", []string{"Y1", "Y2"}))

	m := queryMatrix(t, []string{"x1", "x2"})
	obs := matrix.NewTable([]string{"C1", "C2"})
	require.NoError(t, obs.AppendColumn("group", []string{"a", "b"}))
	require.NoError(t, m.SetObs(obs))

	out, _, err := Remap(m, tbl, "sym", "target")
	require.NoError(t, err)
	require.NotNil(t, out.Obs())
	group, _ := out.Obs().Column("group")
	require.Equal(t, []string{"a", "b"}, group)
}

func TestRemapUnknownColumn(t *testing.T) {
	tbl := NewTable()
	require.NoError(t, tbl.AddColumn("sym", []string{"x1"}))

	_, _, err := Remap(queryMatrix(t, []string{"x1"}), tbl, "sym", "nope")
	require.Error(t, err)
}
