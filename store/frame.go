package store

import (
	"fmt"
	"strconv"

	"github.com/croghan-lab/scbridge/matrix"
)

// categoriesGroup is the child group holding categorical level vectors.
const categoriesGroup = "__categories"

// ReconstructFrame rebuilds a metadata table from a group of per-column
// datasets.
//
// Columns whose name matches a dataset inside the "__categories" child group
// are decoded as categoricals: the column's integer codes are looked up
// against the matching levels vector. Column order honors the group's
// "column-order" attribute when it parses, intersected with the discovered
// columns first and the remainder appended in natural enumeration order;
// otherwise natural order is used. The "__categories" group and the resolved
// index dataset are excluded from the column set.
func ReconstructFrame(s Store, group string) (*matrix.Table, error) {
	children, err := s.Children(group)
	if err != nil {
		return nil, err
	}

	indexName, err := ResolveIndex(s, group)
	if err != nil {
		return nil, err
	}
	index, err := readColumnStrings(s, join(group, indexName))
	if err != nil {
		return nil, err
	}

	levels, err := categoryLevels(s, group)
	if err != nil {
		return nil, err
	}

	var discovered []string
	for _, name := range children {
		if name == categoriesGroup || name == indexName {
			continue
		}
		// Sub-groups are not representable as columns; only the categorical
		// levels group is meaningful here.
		if s.IsGroup(join(group, name)) {
			continue
		}
		discovered = append(discovered, name)
	}

	ordered := discovered
	if declared, ok := declaredOrder(s, group); ok {
		ordered = applyOrder(declared, discovered)
	}

	table := matrix.NewTable(index)
	for _, name := range ordered {
		var values []string
		if lv, isCat := levels[name]; isCat {
			values, err = decodeCategorical(s, join(group, name), lv)
		} else {
			values, err = readColumnStrings(s, join(group, name))
		}
		if err != nil {
			return nil, err
		}
		if len(values) != len(index) {
			return nil, &ErrSchema{
				Path:   join(group, name),
				Reason: fmt.Sprintf("column has %d values, index has %d", len(values), len(index)),
			}
		}
		if err := table.AppendColumn(name, values); err != nil {
			return nil, &ErrSchema{Path: join(group, name), Reason: err.Error()}
		}
	}
	return table, nil
}

// categoryLevels reads every dataset inside __categories as a levels vector.
func categoryLevels(s Store, group string) (map[string][]string, error) {
	catPath := join(group, categoriesGroup)
	if !s.Exists(catPath) || !s.IsGroup(catPath) {
		return nil, nil
	}
	names, err := s.Children(catPath)
	if err != nil {
		return nil, err
	}
	levels := make(map[string][]string, len(names))
	for _, name := range names {
		lv, err := readColumnStrings(s, join(catPath, name))
		if err != nil {
			return nil, err
		}
		levels[name] = lv
	}
	return levels, nil
}

// declaredOrder returns the parsed "column-order" attribute, or ok=false to
// fall back to natural enumeration order. Any read or parse failure takes the
// fallback branch rather than failing the load.
func declaredOrder(s Store, group string) ([]string, bool) {
	v, ok := s.Attr(group, "column-order")
	if !ok {
		return nil, false
	}
	order, ok := AttrStrings(v)
	if !ok {
		return nil, false
	}
	return order, true
}

// applyOrder intersects the declared order with the discovered columns, then
// appends discovered columns the declaration does not mention.
func applyOrder(declared, discovered []string) []string {
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

// decodeCategorical maps a column of integer codes onto its levels vector.
// Negative codes are missing values and decode to the empty string.
func decodeCategorical(s Store, path string, levels []string) ([]string, error) {
	codes, err := s.ReadInts(path)
	if err != nil {
		return nil, err
	}
	out := make([]string, len(codes))
	for i, c := range codes {
		if c < 0 {
			out[i] = ""
			continue
		}
		if int(c) >= len(levels) {
			return nil, &ErrSchema{
				Path:   path,
				Reason: fmt.Sprintf("categorical code %d exceeds %d levels", c, len(levels)),
			}
		}
		out[i] = levels[c]
	}
	return out, nil
}

// ReadColumn reads a dataset as a string column, rendering numeric datasets
// through strconv. Exported for metadata layouts that are not full frames.
func ReadColumn(s Store, path string) ([]string, error) {
	return readColumnStrings(s, path)
}

// readColumnStrings reads a dataset as strings, rendering numeric datasets
// through strconv. Metadata frames are stringly typed on purpose: the source
// containers mix categorical, boolean and numeric columns.
func readColumnStrings(s Store, path string) ([]string, error) {
	if v, err := s.ReadStrings(path); err == nil {
		return v, nil
	}
	// Floats before ints: integer datasets format identically through the
	// float path, while the reverse truncates decimals.
	if v, err := s.ReadFloats(path); err == nil {
		out := make([]string, len(v))
		for i, x := range v {
			out[i] = strconv.FormatFloat(x, 'g', -1, 64)
		}
		return out, nil
	}
	v, err := s.ReadInts(path)
	if err != nil {
		return nil, err
	}
	out := make([]string, len(v))
	for i, x := range v {
		out[i] = strconv.FormatInt(x, 10)
	}
	return out, nil
}
