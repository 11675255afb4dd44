package matrix

import (
	"fmt"
)

// Table is an ordered collection of named string columns with row labels.
//
// It is the normalized form of a per-observation metadata frame. Values are
// kept as strings: the source containers mix categorical, boolean and numeric
// columns, and downstream consumers treat metadata as labels, not numbers.
type Table struct {
	index []string
	names []string
	cols  map[string][]string
}

// NewTable creates a Table with the given row labels.
func NewTable(index []string) *Table {
	return &Table{
		index: index,
		cols:  make(map[string][]string),
	}
}

// AppendColumn adds a column at the end of the column order. The value count
// must match the row count; duplicate names are rejected.
func (t *Table) AppendColumn(name string, values []string) error {
	if _, dup := t.cols[name]; dup {
		return fmt.Errorf("table: duplicate column %q", name)
	}
	if len(values) != len(t.index) {
		return fmt.Errorf("table: column %q has %d values, table has %d rows", name, len(values), len(t.index))
	}
	t.names = append(t.names, name)
	t.cols[name] = values
	return nil
}

// Column returns the values of the named column.
func (t *Table) Column(name string) ([]string, bool) {
	v, ok := t.cols[name]
	return v, ok
}

// Names returns the column names in order. The slice must not be modified.
func (t *Table) Names() []string { return t.names }

// Index returns the row labels. The slice must not be modified.
func (t *Table) Index() []string { return t.index }

// NumRows returns the row count.
func (t *Table) NumRows() int { return len(t.index) }

// NumCols returns the column count.
func (t *Table) NumCols() int { return len(t.names) }

// SubsetRows returns a new Table with the rows in keep, in the given order.
// Indices are assumed valid; callers subset through Matrix.SubsetCols.
func (t *Table) SubsetRows(keep []int) *Table {
	out := NewTable(pick(t.index, keep))
	for _, name := range t.names {
		out.names = append(out.names, name)
		out.cols[name] = pick(t.cols[name], keep)
	}
	return out
}

func pick(values []string, keep []int) []string {
	out := make([]string, len(keep))
	for n, i := range keep {
		out[n] = values[i]
	}
	return out
}
