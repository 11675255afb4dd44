package format

import (
	"fmt"

	"github.com/croghan-lab/scbridge/matrix"
	"github.com/croghan-lab/scbridge/store"
)

// defaultAssay is the assay read when the container does not name one.
const defaultAssay = "RNA"

// ExtractH5Seurat reads an h5Seurat container.
//
// The assay named by the root "active.assay" attribute (default "RNA") must
// carry a non-empty counts matrix. Cell names come from the root
// "cell.names" dataset and per-cell metadata from the "meta.data" group,
// where factor columns are stored as levels plus 1-based value codes.
// Graphs, reductions and images in the container are ignored.
func ExtractH5Seurat(s store.Store) (*matrix.Matrix, error) {
	assay := defaultAssay
	if v, ok := s.Attr("", "active.assay"); ok {
		if name, ok := store.AttrString(v); ok && name != "" {
			assay = name
		}
	}
	assayGroup := "assays/" + assay
	countsPath := assayGroup + "/counts"
	if !s.Exists(countsPath) {
		return nil, &ErrMissingAssay{Assay: assay}
	}

	cells, err := store.ReadColumn(s, "cell.names")
	if err != nil {
		return nil, err
	}
	features, err := store.ReadColumn(s, assayGroup+"/features")
	if err != nil {
		return nil, err
	}

	m, err := readSeuratCounts(s, countsPath, len(features), len(cells))
	if err != nil {
		return nil, err
	}
	if m.NNZ() == 0 {
		return nil, &ErrMissingAssay{Assay: assay}
	}
	if err := m.SetRowNames(makeUnique(features)); err != nil {
		return nil, err
	}
	if err := m.SetColNames(cells); err != nil {
		return nil, err
	}

	if s.IsGroup("meta.data") {
		obs, err := readSeuratMeta(s, cells)
		if err != nil {
			return nil, err
		}
		if obs.NumCols() > 0 {
			if err := m.SetObs(obs); err != nil {
				return nil, err
			}
		}
	}
	return m, nil
}

// readSeuratCounts decodes the counts matrix, either a sparse group with a
// "dims" attribute in compressed-sparse-column form, or a dense dataset.
func readSeuratCounts(s store.Store, path string, nFeatures, nCells int) (*matrix.Matrix, error) {
	if !s.IsGroup(path) {
		dims, err := s.Dims(path)
		if err != nil {
			return nil, err
		}
		if len(dims) != 2 || dims[0] != nFeatures || dims[1] != nCells {
			return nil, &store.ErrSchema{
				Path:   path,
				Reason: fmt.Sprintf("dense counts shape %v, want [%d %d]", dims, nFeatures, nCells),
			}
		}
		values, err := s.ReadFloats(path)
		if err != nil {
			return nil, err
		}
		return matrix.FromDense(nFeatures, nCells, values)
	}

	v, ok := s.Attr(path, "dims")
	if !ok {
		return nil, &store.ErrSchema{Path: path, Reason: "sparse counts group has no dims attribute"}
	}
	dims, ok := store.AttrInts(v)
	if !ok || len(dims) != 2 {
		return nil, &store.ErrSchema{Path: path, Reason: "dims attribute is not a pair of integers"}
	}
	if dims[0] != nFeatures || dims[1] != nCells {
		return nil, &store.ErrSchema{
			Path:   path,
			Reason: fmt.Sprintf("sparse counts shape %v, want [%d %d]", dims, nFeatures, nCells),
		}
	}

	data, err := s.ReadFloats(path + "/data")
	if err != nil {
		return nil, err
	}
	indices, err := readIntSlice(s, path+"/indices")
	if err != nil {
		return nil, err
	}
	indptr, err := readIntSlice(s, path+"/indptr")
	if err != nil {
		return nil, err
	}
	return matrix.FromCSC(dims[0], dims[1], indptr, indices, data)
}

// readSeuratMeta rebuilds the per-cell metadata table. Plain columns are
// datasets; factor columns are subgroups holding "levels" and 1-based
// "values" codes. Column order follows the group's "colnames" attribute when
// it is readable, natural enumeration order otherwise.
func readSeuratMeta(s store.Store, cells []string) (*matrix.Table, error) {
	const group = "meta.data"
	discovered, err := s.Children(group)
	if err != nil {
		return nil, err
	}

	ordered := discovered
	if v, ok := s.Attr(group, "colnames"); ok {
		if declared, ok := store.AttrStrings(v); ok {
			ordered = intersectOrder(declared, discovered)
		}
	}

	t := matrix.NewTable(cells)
	for _, name := range ordered {
		path := group + "/" + name
		var col []string
		if s.IsGroup(path) {
			col, err = decodeFactor(s, path)
		} else {
			col, err = store.ReadColumn(s, path)
		}
		if err != nil {
			return nil, err
		}
		if err := t.AppendColumn(name, col); err != nil {
			return nil, &store.ErrSchema{Path: path, Reason: err.Error()}
		}
	}
	return t, nil
}

// decodeFactor maps 1-based level codes onto the level vector. Codes below 1
// are missing values and decode to the empty string.
func decodeFactor(s store.Store, path string) ([]string, error) {
	levels, err := s.ReadStrings(path + "/levels")
	if err != nil {
		return nil, err
	}
	codes, err := s.ReadInts(path + "/values")
	if err != nil {
		return nil, err
	}
	out := make([]string, len(codes))
	for i, c := range codes {
		if c < 1 {
			out[i] = ""
			continue
		}
		if int(c) > len(levels) {
			return nil, &store.ErrSchema{
				Path:   path,
				Reason: fmt.Sprintf("factor code %d exceeds %d levels", c, len(levels)),
			}
		}
		out[i] = levels[c-1]
	}
	return out, nil
}

// intersectOrder keeps declared names that were discovered, then appends the
// remainder in discovery order.
func intersectOrder(declared, discovered []string) []string {
	present := make(map[string]bool, len(discovered))
	for _, name := range discovered {
		present[name] = true
	}
	out := make([]string, 0, len(discovered))
	taken := make(map[string]bool, len(discovered))
	for _, name := range declared {
		if present[name] && !taken[name] {
			out = append(out, name)
			taken[name] = true
		}
	}
	for _, name := range discovered {
		if !taken[name] {
			out = append(out, name)
		}
	}
	return out
}
