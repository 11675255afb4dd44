package homology

import (
	"fmt"

	"github.com/croghan-lab/scbridge/matrix"
)

// Report counts remapping coverage. Unmatched identifiers and duplicate
// targets are dropped data, not errors; partial coverage is expected when
// crossing vocabularies.
type Report struct {
	// Found is the number of features present in the result.
	Found int
	// Attempted is the number of features in the query.
	Attempted int
}

// Remap translates a matrix's feature names from one table column to
// another.
//
// When from and to name the same column the matrix is returned unchanged.
// Otherwise a first-wins lookup is built from the from column: features
// absent from it are dropped, and of several features mapping to the same
// target only the first in row order is kept. Per-observation metadata
// passes through untouched.
func Remap(m *matrix.Matrix, t *Table, from, to string) (*matrix.Matrix, Report, error) {
	rows, _ := m.Dims()
	if from == to {
		return m, Report{Found: rows, Attempted: rows}, nil
	}
	src, ok := t.Column(from)
	if !ok {
		return nil, Report{}, fmt.Errorf("homology: table has no column %q", from)
	}
	dst, ok := t.Column(to)
	if !ok {
		return nil, Report{}, fmt.Errorf("homology: table has no column %q", to)
	}

	lookup := make(map[string]string, len(src))
	for i, id := range src {
		if id == "" || dst[i] == "" {
			continue
		}
		if _, taken := lookup[id]; !taken {
			lookup[id] = dst[i]
		}
	}

	var (
		keep    []int
		renamed []string
	)
	seen := make(map[string]bool, rows)
	for i, name := range m.RowNames() {
		target, ok := lookup[name]
		if !ok || seen[target] {
			continue
		}
		seen[target] = true
		keep = append(keep, i)
		renamed = append(renamed, target)
	}

	out, err := m.SubsetRows(keep)
	if err != nil {
		return nil, Report{}, err
	}
	if err := out.RenameRows(renamed); err != nil {
		return nil, Report{}, err
	}
	return out, Report{Found: len(keep), Attempted: rows}, nil
}
