package format

import (
	"fmt"
	"os"
	"strings"

	"github.com/croghan-lab/scbridge/internal/rds"
	"github.com/croghan-lab/scbridge/matrix"
	"github.com/croghan-lab/scbridge/store"
)

// loadRDS decodes an R serialized object and converts it to a matrix. The
// accepted payload shapes are checked structurally: a Seurat object (an S4
// value carrying an assays slot), a numeric matrix, or a data frame.
func loadRDS(path string) (*matrix.Matrix, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, store.NewAccessError(path, err)
	}
	defer f.Close()

	x, err := rds.Decode(f)
	if err != nil {
		return nil, store.NewAccessError(path, err)
	}
	return matrixFromSEXP(x)
}

func matrixFromSEXP(x *rds.SEXP) (*matrix.Matrix, error) {
	switch {
	case x.Kind == rds.KindS4 && x.Slot("assays") != nil:
		return seuratMatrix(x)
	case len(x.Dim()) == 2:
		return denseRMatrix(x)
	case x.HasClass("data.frame"):
		return frameMatrix(x)
	}
	return nil, &ErrUnsupportedPayload{Type: payloadType(x)}
}

// seuratMatrix pulls the counts of the active assay (default "RNA") out of a
// Seurat object together with cell metadata from the meta.data slot.
func seuratMatrix(x *rds.SEXP) (*matrix.Matrix, error) {
	assay := defaultAssay
	if names, ok := x.Slot("active.assay").AsStrings(); ok && len(names) > 0 && names[0] != "" {
		assay = names[0]
	}
	a := x.Slot("assays").Named(assay)
	if a == nil {
		return nil, &ErrMissingAssay{Assay: assay}
	}
	// Length is zero for S4 values; emptiness of a sparse counts layer is
	// checked after conversion via its dimensions.
	counts := a.Slot("counts")
	if counts == nil || (counts.Kind != rds.KindS4 && counts.Length() == 0) {
		return nil, &ErrMissingAssay{Assay: assay}
	}

	var (
		m   *matrix.Matrix
		err error
	)
	switch {
	case counts.Kind == rds.KindS4 && counts.Slot("p") != nil:
		m, err = dgcMatrix(counts)
	case len(counts.Dim()) == 2:
		m, err = denseRMatrix(counts)
	default:
		return nil, &ErrUnsupportedPayload{Type: payloadType(counts)}
	}
	if err != nil {
		return nil, err
	}
	rows, cols := m.Dims()
	if rows == 0 || cols == 0 {
		return nil, &ErrMissingAssay{Assay: assay}
	}

	if md := x.Slot("meta.data"); md.HasClass("data.frame") && len(md.Names()) > 0 {
		t := matrix.NewTable(md.RowNames())
		for i, name := range md.Names() {
			if err := t.AppendColumn(name, md.List[i].StringColumn()); err != nil {
				return nil, fmt.Errorf("meta.data column %q: %w", name, err)
			}
		}
		if err := m.SetObs(t); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// dgcMatrix converts a dgCMatrix (compressed-sparse-column) S4 value.
func dgcMatrix(x *rds.SEXP) (*matrix.Matrix, error) {
	dim := intSlot(x, "Dim")
	if len(dim) != 2 {
		return nil, &ErrUnsupportedPayload{Type: "sparse matrix without a 2-D Dim slot"}
	}
	vals, ok := x.Slot("x").AsReals()
	if !ok {
		return nil, &ErrUnsupportedPayload{Type: "sparse matrix with non-numeric values"}
	}
	m, err := matrix.FromCSC(dim[0], dim[1], intSlot(x, "p"), intSlot(x, "i"), vals)
	if err != nil {
		return nil, err
	}
	if dn := x.Slot("Dimnames"); dn != nil && dn.Kind == rds.KindList && len(dn.List) == 2 {
		if rn, ok := dn.List[0].AsStrings(); ok {
			if err := m.SetRowNames(makeUnique(rn)); err != nil {
				return nil, err
			}
		}
		if cn, ok := dn.List[1].AsStrings(); ok {
			if err := m.SetColNames(cn); err != nil {
				return nil, err
			}
		}
	}
	return m, nil
}

// denseRMatrix converts a numeric matrix. R stores matrices column-major;
// the values are transposed into the row-major layout used here.
func denseRMatrix(x *rds.SEXP) (*matrix.Matrix, error) {
	vals, ok := x.AsReals()
	if !ok {
		return nil, &ErrUnsupportedPayload{Type: payloadType(x)}
	}
	dim := x.Dim()
	rows, cols := dim[0], dim[1]
	m, err := matrix.FromDense(rows, cols, transpose(vals, cols, rows))
	if err != nil {
		return nil, err
	}
	if dn := x.DimNames(); len(dn) == 2 {
		if len(dn[0]) == rows {
			if err := m.SetRowNames(makeUnique(dn[0])); err != nil {
				return nil, err
			}
		}
		if len(dn[1]) == cols {
			if err := m.SetColNames(dn[1]); err != nil {
				return nil, err
			}
		}
	}
	return m, nil
}

// frameMatrix converts a data frame: its numeric columns become the matrix
// columns and its row names the feature labels.
func frameMatrix(x *rds.SEXP) (*matrix.Matrix, error) {
	rowNames := x.RowNames()
	nRows := len(rowNames)

	var (
		colNames []string
		columns  [][]float64
	)
	for i, name := range x.Names() {
		col := x.List[i]
		if col.HasClass("factor") {
			continue
		}
		vals, ok := col.AsReals()
		if !ok || len(vals) != nRows {
			continue
		}
		colNames = append(colNames, name)
		columns = append(columns, vals)
	}
	if len(columns) == 0 {
		return nil, &ErrUnsupportedPayload{Type: "data.frame without numeric columns"}
	}

	values := make([]float64, nRows*len(columns))
	for j, col := range columns {
		for i, v := range col {
			values[i*len(columns)+j] = v
		}
	}
	m, err := matrix.FromDense(nRows, len(columns), values)
	if err != nil {
		return nil, err
	}
	if err := m.SetRowNames(makeUnique(rowNames)); err != nil {
		return nil, err
	}
	if err := m.SetColNames(colNames); err != nil {
		return nil, err
	}
	return m, nil
}

func intSlot(x *rds.SEXP, name string) []int {
	s := x.Slot(name)
	if s == nil {
		return nil
	}
	out := make([]int, len(s.Ints))
	for i, v := range s.Ints {
		out[i] = int(v)
	}
	return out
}

// payloadType names a value for diagnostics: its S4 class, its class
// attribute, or its base type.
func payloadType(x *rds.SEXP) string {
	if x.Kind == rds.KindS4 {
		if c := x.S4Class(); c != "" {
			return c
		}
		return "S4"
	}
	if c := x.Class(); len(c) > 0 {
		return strings.Join(c, "/")
	}
	return x.Kind.String()
}
