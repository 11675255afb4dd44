package matrix

import (
	"fmt"
)

// Matrix is a sparse feature-by-observation matrix in CSR form.
//
// Rows are features (genes/transcripts), columns are observations (cells).
// Row and column names are unique. The zero value is not usable; construct
// with NewCSR, FromCSC or FromDense.
type Matrix struct {
	rows int
	cols int

	rowNames []string
	colNames []string

	// CSR storage: indptr has rows+1 entries, indices/data hold one entry
	// per stored value, column indices strictly increasing within a row.
	indptr  []int
	indices []int
	data    []float64

	obs *Table
}

// NewCSR constructs a Matrix from compressed-sparse-row components.
// The slices are retained, not copied.
func NewCSR(rows, cols int, indptr, indices []int, data []float64) (*Matrix, error) {
	if rows < 0 || cols < 0 {
		return nil, fmt.Errorf("matrix: negative dimensions %dx%d", rows, cols)
	}
	if len(indptr) != rows+1 {
		return nil, fmt.Errorf("matrix: indptr length %d, want %d", len(indptr), rows+1)
	}
	if len(indices) != len(data) {
		return nil, fmt.Errorf("matrix: indices length %d does not match data length %d", len(indices), len(data))
	}
	if nnz := indptr[rows]; nnz != len(data) {
		return nil, fmt.Errorf("matrix: indptr reports %d stored values, have %d", nnz, len(data))
	}
	for i := 0; i < rows; i++ {
		if indptr[i] > indptr[i+1] {
			return nil, fmt.Errorf("matrix: indptr not monotonic at row %d", i)
		}
	}
	for _, j := range indices {
		if j < 0 || j >= cols {
			return nil, fmt.Errorf("matrix: column index %d out of range [0,%d)", j, cols)
		}
	}
	return &Matrix{
		rows:    rows,
		cols:    cols,
		indptr:  indptr,
		indices: indices,
		data:    data,
	}, nil
}

// FromCSC constructs a Matrix from compressed-sparse-column components, i.e.
// indptr spans the cols axis. The data is transposed into CSR form.
func FromCSC(rows, cols int, indptr, indices []int, data []float64) (*Matrix, error) {
	if len(indptr) != cols+1 {
		return nil, fmt.Errorf("matrix: csc indptr length %d, want %d", len(indptr), cols+1)
	}
	if len(indices) != len(data) {
		return nil, fmt.Errorf("matrix: indices length %d does not match data length %d", len(indices), len(data))
	}

	// Count entries per row, then bucket-place each csc entry.
	counts := make([]int, rows+1)
	for _, i := range indices {
		if i < 0 || i >= rows {
			return nil, fmt.Errorf("matrix: row index %d out of range [0,%d)", i, rows)
		}
		counts[i+1]++
	}
	outPtr := make([]int, rows+1)
	for i := 0; i < rows; i++ {
		outPtr[i+1] = outPtr[i] + counts[i+1]
	}
	outIdx := make([]int, len(data))
	outData := make([]float64, len(data))
	next := make([]int, rows)
	copy(next, outPtr[:rows])
	for j := 0; j < cols; j++ {
		for k := indptr[j]; k < indptr[j+1]; k++ {
			i := indices[k]
			pos := next[i]
			outIdx[pos] = j
			outData[pos] = data[k]
			next[i]++
		}
	}
	return NewCSR(rows, cols, outPtr, outIdx, outData)
}

// FromDense constructs a Matrix from a row-major dense slice of length
// rows*cols, dropping exact zeros.
func FromDense(rows, cols int, values []float64) (*Matrix, error) {
	if len(values) != rows*cols {
		return nil, fmt.Errorf("matrix: dense length %d, want %d", len(values), rows*cols)
	}
	indptr := make([]int, rows+1)
	var indices []int
	var data []float64
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			if v := values[i*cols+j]; v != 0 {
				indices = append(indices, j)
				data = append(data, v)
			}
		}
		indptr[i+1] = len(data)
	}
	return NewCSR(rows, cols, indptr, indices, data)
}

// Dims returns (rows, cols).
func (m *Matrix) Dims() (int, int) { return m.rows, m.cols }

// NNZ returns the number of stored values.
func (m *Matrix) NNZ() int { return len(m.data) }

// RowNames returns the feature identifiers, or nil if unset.
func (m *Matrix) RowNames() []string { return m.rowNames }

// ColNames returns the observation identifiers, or nil if unset.
func (m *Matrix) ColNames() []string { return m.colNames }

// Obs returns the per-observation metadata table, or nil.
func (m *Matrix) Obs() *Table { return m.obs }

// SetRowNames assigns feature identifiers. Names must match the row count
// and be unique.
func (m *Matrix) SetRowNames(names []string) error {
	if len(names) != m.rows {
		return fmt.Errorf("matrix: %d row names for %d rows", len(names), m.rows)
	}
	if err := checkUnique(names, "row"); err != nil {
		return err
	}
	m.rowNames = names
	return nil
}

// SetColNames assigns observation identifiers. Names must match the column
// count and be unique.
func (m *Matrix) SetColNames(names []string) error {
	if len(names) != m.cols {
		return fmt.Errorf("matrix: %d column names for %d columns", len(names), m.cols)
	}
	if err := checkUnique(names, "column"); err != nil {
		return err
	}
	m.colNames = names
	return nil
}

// SetObs attaches a per-observation metadata table. The table's index must
// match the matrix's column names exactly, in order.
func (m *Matrix) SetObs(t *Table) error {
	if t == nil {
		m.obs = nil
		return nil
	}
	if t.NumRows() != m.cols {
		return fmt.Errorf("matrix: metadata has %d rows, matrix has %d columns", t.NumRows(), m.cols)
	}
	if m.colNames != nil {
		for i, id := range t.Index() {
			if id != m.colNames[i] {
				return fmt.Errorf("matrix: metadata index %q at %d does not match column %q", id, i, m.colNames[i])
			}
		}
	}
	m.obs = t
	return nil
}

// At returns the value at (i, j). Out-of-range indices panic.
func (m *Matrix) At(i, j int) float64 {
	if i < 0 || i >= m.rows || j < 0 || j >= m.cols {
		panic(fmt.Sprintf("matrix: At(%d, %d) out of range %dx%d", i, j, m.rows, m.cols))
	}
	for k := m.indptr[i]; k < m.indptr[i+1]; k++ {
		if m.indices[k] == j {
			return m.data[k]
		}
	}
	return 0
}

// Row returns the stored column indices and values of row i.
// The returned slices alias internal storage and must not be modified.
func (m *Matrix) Row(i int) ([]int, []float64) {
	s, e := m.indptr[i], m.indptr[i+1]
	return m.indices[s:e], m.data[s:e]
}

// RowNNZ returns the number of stored values in row i.
func (m *Matrix) RowNNZ(i int) int { return m.indptr[i+1] - m.indptr[i] }

// SubsetRows returns a new Matrix containing the rows in keep, in the given
// order. Column names and the metadata table are carried over unchanged:
// feature subsetting never touches observations.
func (m *Matrix) SubsetRows(keep []int) (*Matrix, error) {
	indptr := make([]int, len(keep)+1)
	var nnz int
	for _, i := range keep {
		if i < 0 || i >= m.rows {
			return nil, fmt.Errorf("matrix: row %d out of range [0,%d)", i, m.rows)
		}
		nnz += m.RowNNZ(i)
	}
	indices := make([]int, 0, nnz)
	data := make([]float64, 0, nnz)
	for n, i := range keep {
		s, e := m.indptr[i], m.indptr[i+1]
		indices = append(indices, m.indices[s:e]...)
		data = append(data, m.data[s:e]...)
		indptr[n+1] = len(data)
	}
	out, err := NewCSR(len(keep), m.cols, indptr, indices, data)
	if err != nil {
		return nil, err
	}
	if m.rowNames != nil {
		names := make([]string, len(keep))
		for n, i := range keep {
			names[n] = m.rowNames[i]
		}
		if err := out.SetRowNames(names); err != nil {
			return nil, err
		}
	}
	out.colNames = m.colNames
	out.obs = m.obs
	return out, nil
}

// SubsetCols returns a new Matrix containing the columns in keep, in the
// given order. The metadata table, if present, is subset identically so that
// it stays row-for-row consistent with the new column order.
func (m *Matrix) SubsetCols(keep []int) (*Matrix, error) {
	remap := make(map[int]int, len(keep))
	for n, j := range keep {
		if j < 0 || j >= m.cols {
			return nil, fmt.Errorf("matrix: column %d out of range [0,%d)", j, m.cols)
		}
		remap[j] = n
	}
	indptr := make([]int, m.rows+1)
	var indices []int
	var data []float64
	for i := 0; i < m.rows; i++ {
		s, e := m.indptr[i], m.indptr[i+1]
		for k := s; k < e; k++ {
			if n, ok := remap[m.indices[k]]; ok {
				indices = append(indices, n)
				data = append(data, m.data[k])
			}
		}
		// Entries within a row must stay sorted by column; remapping by an
		// arbitrary keep order can break that.
		sortRowSegment(indices[indptr[i]:], data[indptr[i]:])
		indptr[i+1] = len(data)
	}
	out, err := NewCSR(m.rows, len(keep), indptr, indices, data)
	if err != nil {
		return nil, err
	}
	out.rowNames = m.rowNames
	if m.colNames != nil {
		names := make([]string, len(keep))
		for n, j := range keep {
			names[n] = m.colNames[j]
		}
		if err := out.SetColNames(names); err != nil {
			return nil, err
		}
	}
	if m.obs != nil {
		out.obs = m.obs.SubsetRows(keep)
	}
	return out, nil
}

// RenameRows replaces the feature identifiers. Unlike SetRowNames it is a
// pure rename and requires names to already be attached.
func (m *Matrix) RenameRows(names []string) error {
	if m.rowNames == nil {
		return fmt.Errorf("matrix: rename on a matrix without row names")
	}
	return m.SetRowNames(names)
}

func checkUnique(names []string, axis string) error {
	seen := make(map[string]struct{}, len(names))
	for _, n := range names {
		if _, dup := seen[n]; dup {
			return fmt.Errorf("matrix: duplicate %s name %q", axis, n)
		}
		seen[n] = struct{}{}
	}
	return nil
}

// sortRowSegment insertion-sorts a row's (indices, data) pair in tandem.
// Row segments are short; anything fancier is not worth it.
func sortRowSegment(indices []int, data []float64) {
	for i := 1; i < len(indices); i++ {
		for j := i; j > 0 && indices[j-1] > indices[j]; j-- {
			indices[j-1], indices[j] = indices[j], indices[j-1]
			data[j-1], data[j] = data[j], data[j-1]
		}
	}
}
