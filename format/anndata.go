package format

import (
	"fmt"

	"github.com/croghan-lab/scbridge/matrix"
	"github.com/croghan-lab/scbridge/store"
)

// ExtractAnnData reads an annotated-data container into a features by
// observations matrix.
//
// The raw matrix at "raw/X" is preferred over the processed "X"; whichever
// is used, its companion feature group ("raw/var" or "var") supplies the row
// names and "obs" the column names and per-observation metadata. The stored
// matrix is observations by features and is transposed on the way out.
func ExtractAnnData(s store.Store) (*matrix.Matrix, error) {
	xPath, varGroup, err := locateAnnData(s)
	if err != nil {
		return nil, err
	}

	features, err := store.IndexStrings(s, varGroup)
	if err != nil {
		return nil, err
	}
	obsNames, err := store.IndexStrings(s, "obs")
	if err != nil {
		return nil, err
	}

	m, err := readAnnDataX(s, xPath, len(obsNames), len(features))
	if err != nil {
		return nil, err
	}
	if err := m.SetRowNames(makeUnique(features)); err != nil {
		return nil, err
	}
	if err := m.SetColNames(obsNames); err != nil {
		return nil, err
	}

	obs, err := store.ReconstructFrame(s, "obs")
	if err != nil {
		return nil, err
	}
	if obs.NumCols() > 0 {
		if err := m.SetObs(obs); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func locateAnnData(s store.Store) (xPath, varGroup string, err error) {
	for _, c := range []struct{ x, v string }{{"raw/X", "raw/var"}, {"X", "var"}} {
		if !s.Exists(c.x) {
			continue
		}
		// The companion feature group is fixed per matrix location: the raw
		// matrix annotates against raw/var, never the processed var.
		varGroup = c.v
		if !s.IsGroup(varGroup) {
			return "", "", &store.ErrSchema{Path: varGroup, Reason: "feature annotation missing or not a group"}
		}
		if !s.IsGroup("obs") {
			return "", "", &store.ErrSchema{Path: "obs", Reason: "observation annotation is not a group"}
		}
		return c.x, varGroup, nil
	}
	return "", "", &ErrMissingMatrix{Tried: []string{"raw/X", "X"}}
}

// readAnnDataX decodes the stored observations-by-features matrix at xPath
// and returns it transposed to features by observations.
func readAnnDataX(s store.Store, xPath string, nObs, nVar int) (*matrix.Matrix, error) {
	if s.IsGroup(xPath) {
		return readSparseX(s, xPath, nObs, nVar)
	}

	dims, err := s.Dims(xPath)
	if err != nil {
		return nil, err
	}
	if len(dims) != 2 || dims[0] != nObs || dims[1] != nVar {
		return nil, &store.ErrSchema{
			Path:   xPath,
			Reason: fmt.Sprintf("dense matrix shape %v, want [%d %d]", dims, nObs, nVar),
		}
	}
	values, err := s.ReadFloats(xPath)
	if err != nil {
		return nil, err
	}
	return matrix.FromDense(nVar, nObs, transpose(values, nObs, nVar))
}

func readSparseX(s store.Store, xPath string, nObs, nVar int) (*matrix.Matrix, error) {
	rows, cols := nObs, nVar
	if shape, ok := sparseShape(s, xPath); ok {
		if len(shape) != 2 {
			return nil, &store.ErrSchema{Path: xPath, Reason: fmt.Sprintf("sparse shape %v is not 2-D", shape)}
		}
		rows, cols = shape[0], shape[1]
	}
	if rows != nObs || cols != nVar {
		return nil, &store.ErrSchema{
			Path:   xPath,
			Reason: fmt.Sprintf("sparse matrix shape [%d %d], want [%d %d]", rows, cols, nObs, nVar),
		}
	}

	data, err := s.ReadFloats(xPath + "/data")
	if err != nil {
		return nil, err
	}
	indices, err := readIntSlice(s, xPath+"/indices")
	if err != nil {
		return nil, err
	}
	indptr, err := readIntSlice(s, xPath+"/indptr")
	if err != nil {
		return nil, err
	}

	// The container holds observations by features. Its CSR form is, read
	// transposed, exactly the CSC form of the features-by-observations
	// matrix wanted here, and vice versa.
	if sparseOrientation(s, xPath) == "csc" {
		return matrix.NewCSR(cols, rows, indptr, indices, data)
	}
	return matrix.FromCSC(cols, rows, indptr, indices, data)
}

// sparseShape reads the matrix shape attribute, trying the modern and the
// legacy h5sparse spellings.
func sparseShape(s store.Store, path string) ([]int, bool) {
	for _, name := range []string{"shape", "h5sparse_shape"} {
		if v, ok := s.Attr(path, name); ok {
			if dims, ok := store.AttrInts(v); ok {
				return dims, true
			}
		}
	}
	return nil, false
}

// sparseOrientation returns "csr" or "csc", defaulting to csr.
func sparseOrientation(s store.Store, path string) string {
	for _, name := range []string{"encoding-type", "h5sparse_format"} {
		v, ok := s.Attr(path, name)
		if !ok {
			continue
		}
		enc, ok := store.AttrString(v)
		if !ok {
			continue
		}
		if len(enc) >= 3 {
			switch enc[:3] {
			case "csc":
				return "csc"
			case "csr":
				return "csr"
			}
		}
	}
	return "csr"
}

func readIntSlice(s store.Store, path string) ([]int, error) {
	v, err := s.ReadInts(path)
	if err != nil {
		return nil, err
	}
	out := make([]int, len(v))
	for i, x := range v {
		out[i] = int(x)
	}
	return out, nil
}

// transpose converts a row-major rows-by-cols slice into its row-major
// cols-by-rows transpose.
func transpose(values []float64, rows, cols int) []float64 {
	out := make([]float64, len(values))
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			out[j*rows+i] = values[i*cols+j]
		}
	}
	return out
}
