// Package homology detects the identifier vocabulary and species of a gene
// list against a reference homology table and remaps matrices across
// vocabularies and species.
//
// A homology table is a set of aligned identifier columns: row i holds the
// same gene under every vocabulary. Column names encode the vocabulary and
// species by suffix, "gene.mouse" marking the mouse side of the "gene"
// vocabulary and an unsuffixed or ".human" name marking the human side.
package homology

import (
	"fmt"
	"strings"
)

// Species of a gene identifier list.
type Species int

const (
	SpeciesHuman Species = iota
	SpeciesMouse
)

func (s Species) String() string {
	if s == SpeciesMouse {
		return "mouse"
	}
	return "human"
}

// Table is a reference homology table: aligned identifier columns in a fixed
// order.
type Table struct {
	names   []string
	columns map[string][]string
}

// NewTable creates an empty table.
func NewTable() *Table {
	return &Table{columns: make(map[string][]string)}
}

// AddColumn appends an identifier column. All columns must have the same
// length and distinct names.
func (t *Table) AddColumn(name string, ids []string) error {
	if _, exists := t.columns[name]; exists {
		return fmt.Errorf("homology: duplicate column %q", name)
	}
	if len(t.names) > 0 && len(ids) != len(t.columns[t.names[0]]) {
		return fmt.Errorf("homology: column %q has %d rows, want %d",
			name, len(ids), len(t.columns[t.names[0]]))
	}
	t.names = append(t.names, name)
	t.columns[name] = ids
	return nil
}

// Names returns the column names in table order.
func (t *Table) Names() []string { return t.names }

// Column returns the identifiers of a column.
func (t *Table) Column(name string) ([]string, bool) {
	ids, ok := t.columns[name]
	return ids, ok
}

// NumRows returns the number of aligned rows.
func (t *Table) NumRows() int {
	if len(t.names) == 0 {
		return 0
	}
	return len(t.columns[t.names[0]])
}

// SpeciesOf reports the species a column name encodes.
func SpeciesOf(column string) Species {
	if strings.HasSuffix(column, ".mouse") {
		return SpeciesMouse
	}
	return SpeciesHuman
}

// IDTypeOf strips the species suffix from a column name, leaving the
// identifier vocabulary.
func IDTypeOf(column string) string {
	column = strings.TrimSuffix(column, ".mouse")
	return strings.TrimSuffix(column, ".human")
}

// ColumnFor returns the table column carrying the given vocabulary for the
// given species.
func (t *Table) ColumnFor(idtype string, species Species) (string, bool) {
	for _, name := range t.names {
		if IDTypeOf(name) == idtype && SpeciesOf(name) == species {
			return name, true
		}
	}
	return "", false
}
