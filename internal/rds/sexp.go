// Package rds decodes the R serialization format (RDS) far enough to load
// the payloads the ingestion layer accepts: S4 objects, numeric matrices and
// data frames, plus the vector/list/attribute machinery they are built from.
//
// Only the XDR ("X\n") wire format is handled, optionally gzip- or
// bzip2-compressed. Language objects, closures and environments are skipped
// structurally but carry no decoded value.
package rds

import (
	"math"
	"strconv"
)

// Kind discriminates decoded SEXP values.
type Kind int

const (
	KindNull Kind = iota
	KindSymbol
	KindPairlist
	KindLogical
	KindInt
	KindReal
	KindString
	KindList
	KindS4
	KindOther // decoded structurally, value not retained
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "NULL"
	case KindSymbol:
		return "symbol"
	case KindPairlist:
		return "pairlist"
	case KindLogical:
		return "logical"
	case KindInt:
		return "integer"
	case KindReal:
		return "double"
	case KindString:
		return "character"
	case KindList:
		return "list"
	case KindS4:
		return "S4"
	}
	return "other"
}

// NAInt is R's integer NA.
const NAInt = math.MinInt32

// SEXP is one decoded R value. Exactly the fields relevant to its Kind are
// populated.
type SEXP struct {
	Kind Kind

	Chars string // KindSymbol: the symbol name

	Ints  []int32   // KindInt, KindLogical (0/1/NAInt)
	Reals []float64 // KindReal
	Strs  []string  // KindString; NA decodes to ""

	List []*SEXP  // KindList items, KindPairlist values
	Tags []string // KindPairlist tags, "" when untagged

	attrs     map[string]*SEXP
	attrOrder []string
}

// Attr returns the named attribute, or nil.
func (x *SEXP) Attr(name string) *SEXP {
	if x == nil || x.attrs == nil {
		return nil
	}
	return x.attrs[name]
}

// AttrNames returns attribute names in serialization order.
func (x *SEXP) AttrNames() []string {
	if x == nil {
		return nil
	}
	return x.attrOrder
}

func (x *SEXP) setAttr(name string, value *SEXP) {
	if x.attrs == nil {
		x.attrs = make(map[string]*SEXP)
	}
	if _, exists := x.attrs[name]; !exists {
		x.attrOrder = append(x.attrOrder, name)
	}
	x.attrs[name] = value
}

// Length returns the element count for vector-like kinds.
func (x *SEXP) Length() int {
	if x == nil {
		return 0
	}
	switch x.Kind {
	case KindInt, KindLogical:
		return len(x.Ints)
	case KindReal:
		return len(x.Reals)
	case KindString:
		return len(x.Strs)
	case KindList, KindPairlist:
		return len(x.List)
	}
	return 0
}

// Class returns the "class" attribute as strings, or nil.
func (x *SEXP) Class() []string {
	c := x.Attr("class")
	if c == nil || c.Kind != KindString {
		return nil
	}
	return c.Strs
}

// HasClass reports whether name appears in the class attribute.
func (x *SEXP) HasClass(name string) bool {
	for _, c := range x.Class() {
		if c == name {
			return true
		}
	}
	return false
}

// Names returns the "names" attribute as strings, or nil.
func (x *SEXP) Names() []string {
	n := x.Attr("names")
	if n == nil || n.Kind != KindString {
		return nil
	}
	return n.Strs
}

// Named returns the list element with the given name, for a KindList with a
// names attribute or a KindPairlist with tags.
func (x *SEXP) Named(name string) *SEXP {
	if x == nil {
		return nil
	}
	switch x.Kind {
	case KindList:
		for i, n := range x.Names() {
			if n == name && i < len(x.List) {
				return x.List[i]
			}
		}
	case KindPairlist:
		for i, t := range x.Tags {
			if t == name {
				return x.List[i]
			}
		}
	}
	return nil
}

// Slot returns an S4 slot. Slots are carried as attributes on the wire.
func (x *SEXP) Slot(name string) *SEXP {
	if x == nil || x.Kind != KindS4 {
		return nil
	}
	return x.Attr(name)
}

// S4Class returns the class name of an S4 object, or "".
func (x *SEXP) S4Class() string {
	c := x.Attr("class")
	if c == nil || c.Kind != KindString || len(c.Strs) == 0 {
		return ""
	}
	return c.Strs[0]
}

// AsReals coerces a numeric vector (real, integer or logical) to float64.
// Integer NA maps to NaN.
func (x *SEXP) AsReals() ([]float64, bool) {
	if x == nil {
		return nil, false
	}
	switch x.Kind {
	case KindReal:
		return x.Reals, true
	case KindInt, KindLogical:
		out := make([]float64, len(x.Ints))
		for i, v := range x.Ints {
			if v == NAInt {
				out[i] = math.NaN()
			} else {
				out[i] = float64(v)
			}
		}
		return out, true
	}
	return nil, false
}

// AsStrings returns the string values of a character vector.
func (x *SEXP) AsStrings() ([]string, bool) {
	if x == nil || x.Kind != KindString {
		return nil, false
	}
	return x.Strs, true
}

// Dim returns the "dim" attribute as ints, or nil.
func (x *SEXP) Dim() []int {
	d := x.Attr("dim")
	if d == nil || d.Kind != KindInt {
		return nil
	}
	out := make([]int, len(d.Ints))
	for i, v := range d.Ints {
		out[i] = int(v)
	}
	return out
}

// DimNames returns the "dimnames" attribute's components; absent components
// come back nil.
func (x *SEXP) DimNames() [][]string {
	dn := x.Attr("dimnames")
	if dn == nil || dn.Kind != KindList {
		return nil
	}
	out := make([][]string, len(dn.List))
	for i, c := range dn.List {
		if c != nil && c.Kind == KindString {
			out[i] = c.Strs
		}
	}
	return out
}

// RowNames returns data-frame row names. R's compact form c(NA, -n) and
// ALTREP compact sequences both surface as an integer vector here and are
// rendered as 1..n strings.
func (x *SEXP) RowNames() []string {
	rn := x.Attr("row.names")
	if rn == nil {
		return nil
	}
	if s, ok := rn.AsStrings(); ok {
		return s
	}
	if rn.Kind == KindInt {
		if len(rn.Ints) == 2 && rn.Ints[0] == NAInt {
			n := int(rn.Ints[1])
			if n < 0 {
				n = -n
			}
			return seqNames(n)
		}
		out := make([]string, len(rn.Ints))
		for i, v := range rn.Ints {
			out[i] = strconv.Itoa(int(v))
		}
		return out
	}
	return nil
}

// StringColumn renders a vector the way a data-frame column prints: factor
// codes decode against their levels, numeric values format through strconv,
// and missing values become the empty string.
func (x *SEXP) StringColumn() []string {
	if x == nil {
		return nil
	}
	if x.HasClass("factor") {
		levels, _ := x.Attr("levels").AsStrings()
		out := make([]string, len(x.Ints))
		for i, c := range x.Ints {
			if c >= 1 && int(c) <= len(levels) {
				out[i] = levels[c-1]
			}
		}
		return out
	}
	if s, ok := x.AsStrings(); ok {
		return s
	}
	if vals, ok := x.AsReals(); ok {
		out := make([]string, len(vals))
		for i, v := range vals {
			if math.IsNaN(v) {
				out[i] = ""
				continue
			}
			out[i] = strconv.FormatFloat(v, 'g', -1, 64)
		}
		return out
	}
	return make([]string, x.Length())
}

func seqNames(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = strconv.Itoa(i + 1)
	}
	return out
}
