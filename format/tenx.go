package format

import (
	"fmt"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/croghan-lab/scbridge/matrix"
	"github.com/croghan-lab/scbridge/store"
)

// ExtractTenX reads a 10x Genomics columnar container.
//
// Both layouts are handled: the v3 layout with a single "matrix" group and a
// "features" subgroup, and the legacy layout with one group per genome. When
// several genome groups exist only the first in enumeration order is read.
// The result passes through the minimum-presence filter before returning.
func ExtractTenX(s store.Store, opts Options) (*matrix.Matrix, error) {
	var (
		m   *matrix.Matrix
		err error
	)
	if s.IsGroup("matrix") {
		m, err = readTenXGroup(s, "matrix", "features/name", "features/id")
	} else {
		m, err = readTenXLegacy(s)
	}
	if err != nil {
		return nil, err
	}
	return minPresenceFilter(m, opts.MinCells, opts.MinFeatures)
}

func readTenXLegacy(s store.Store) (*matrix.Matrix, error) {
	children, err := s.Children("")
	if err != nil {
		return nil, err
	}
	for _, name := range children {
		if s.IsGroup(name) {
			return readTenXGroup(s, name, "gene_names", "genes")
		}
	}
	return nil, &ErrMissingMatrix{Tried: []string{"matrix"}}
}

// readTenXGroup decodes one genome group. Features come from namePath with a
// fallback to idPath; the stored matrix is features by observations in
// compressed-sparse-column form.
func readTenXGroup(s store.Store, group, namePath, idPath string) (*matrix.Matrix, error) {
	shape, err := readIntSlice(s, group+"/shape")
	if err != nil {
		return nil, err
	}
	if len(shape) != 2 {
		return nil, &store.ErrSchema{Path: group + "/shape", Reason: fmt.Sprintf("shape %v is not 2-D", shape)}
	}
	nFeatures, nCells := shape[0], shape[1]

	data, err := s.ReadFloats(group + "/data")
	if err != nil {
		return nil, err
	}
	indices, err := readIntSlice(s, group+"/indices")
	if err != nil {
		return nil, err
	}
	indptr, err := readIntSlice(s, group+"/indptr")
	if err != nil {
		return nil, err
	}
	m, err := matrix.FromCSC(nFeatures, nCells, indptr, indices, data)
	if err != nil {
		return nil, err
	}

	features, err := store.ReadColumn(s, group+"/"+namePath)
	if err != nil {
		features, err = store.ReadColumn(s, group+"/"+idPath)
		if err != nil {
			return nil, err
		}
	}
	barcodes, err := store.ReadColumn(s, group+"/barcodes")
	if err != nil {
		return nil, err
	}
	if err := m.SetRowNames(makeUnique(features)); err != nil {
		return nil, err
	}
	if err := m.SetColNames(barcodes); err != nil {
		return nil, err
	}
	return m, nil
}

// minPresenceFilter drops features detected in fewer than minCells
// observations and observations with fewer than minFeatures detected
// features. Both counts are taken over the unfiltered matrix.
func minPresenceFilter(m *matrix.Matrix, minCells, minFeatures int) (*matrix.Matrix, error) {
	rows, cols := m.Dims()

	keepRows := roaring.New()
	colCounts := make([]int, cols)
	for i := 0; i < rows; i++ {
		idx, vals := m.Row(i)
		detected := 0
		for k, v := range vals {
			if v != 0 {
				detected++
				colCounts[idx[k]]++
			}
		}
		if detected >= minCells {
			keepRows.Add(uint32(i))
		}
	}
	keepCols := roaring.New()
	for j, n := range colCounts {
		if n >= minFeatures {
			keepCols.Add(uint32(j))
		}
	}

	if int(keepRows.GetCardinality()) == rows && int(keepCols.GetCardinality()) == cols {
		return m, nil
	}
	m, err := m.SubsetRows(toInts(keepRows))
	if err != nil {
		return nil, err
	}
	return m.SubsetCols(toInts(keepCols))
}

func toInts(b *roaring.Bitmap) []int {
	out := make([]int, 0, b.GetCardinality())
	it := b.Iterator()
	for it.HasNext() {
		out = append(out, int(it.Next()))
	}
	return out
}
