package testutil

import (
	"bytes"
	"encoding/binary"
	"math"

	"github.com/klauspost/compress/gzip"
)

// RV describes one R value for fixture encoding. Build values with the R*
// constructors and WithAttr, then serialize with EncodeRDS or EncodeRDSGzip.
//
// The encoder emits the XDR ("X\n") wire format, version 2, the way R's
// saveRDS does. Symbols are written in full each time rather than through
// the reference table; readers accept both.
type RV struct {
	kind  byte // 'n' null, 'i' int, 'L' logical, 'r' real, 's' string, 'l' list, '4' S4
	ints  []int32
	reals []float64
	strs  []string
	items []RV
	attrs []rattr
}

type rattr struct {
	name  string
	value RV
}

// RNull returns the R NULL value.
func RNull() RV { return RV{kind: 'n'} }

// RInts returns an integer vector.
func RInts(v ...int32) RV { return RV{kind: 'i', ints: v} }

// RLogicals returns a logical vector; use 0, 1 or math.MinInt32 for NA.
func RLogicals(v ...int32) RV { return RV{kind: 'L', ints: v} }

// RReals returns a double vector.
func RReals(v ...float64) RV { return RV{kind: 'r', reals: v} }

// RStrs returns a character vector.
func RStrs(v ...string) RV { return RV{kind: 's', strs: v} }

// RList returns a generic vector (VECSXP).
func RList(items ...RV) RV { return RV{kind: 'l', items: items} }

// RS4 returns an S4 object of the given class with named slots. Slot order
// follows the call order; the class attribute is appended last, as R does.
func RS4(class string, slots ...rattr) RV {
	v := RV{kind: '4'}
	v.attrs = append(v.attrs, slots...)
	v.attrs = append(v.attrs, rattr{name: "class", value: RStrs(class).WithAttr("package", RStrs(".GlobalEnv"))})
	return v
}

// Slot names an S4 slot for RS4.
func Slot(name string, value RV) rattr { return rattr{name: name, value: value} }

// WithAttr returns a copy of v with the named attribute attached.
func (v RV) WithAttr(name string, value RV) RV {
	v.attrs = append(append([]rattr(nil), v.attrs...), rattr{name: name, value: value})
	return v
}

// WithNames attaches a "names" attribute.
func (v RV) WithNames(names ...string) RV {
	return v.WithAttr("names", RStrs(names...))
}

// RDataFrame builds a data.frame from parallel name/column slices with
// compact 1..n row names.
func RDataFrame(n int, names []string, cols []RV) RV {
	return RList(cols...).
		WithAttr("names", RStrs(names...)).
		WithAttr("row.names", RInts(math.MinInt32, int32(-n))).
		WithAttr("class", RStrs("data.frame"))
}

// RMatrix builds a numeric matrix (column-major data, as R stores it) with
// optional dimnames.
func RMatrix(rows, cols int, data []float64, rowNames, colNames []string) RV {
	v := RReals(data...).WithAttr("dim", RInts(int32(rows), int32(cols)))
	if rowNames != nil || colNames != nil {
		v = v.WithAttr("dimnames", RList(RStrs(rowNames...), RStrs(colNames...)))
	}
	return v
}

// RDgCMatrix builds a Matrix-package dgCMatrix (sparse, column-compressed).
func RDgCMatrix(rows, cols int, i, p []int32, x []float64, rowNames, colNames []string) RV {
	return RS4("dgCMatrix",
		Slot("i", RInts(i...)),
		Slot("p", RInts(p...)),
		Slot("Dim", RInts(int32(rows), int32(cols))),
		Slot("Dimnames", RList(RStrs(rowNames...), RStrs(colNames...))),
		Slot("x", RReals(x...)),
		Slot("factors", RList()),
	)
}

// EncodeRDS serializes v as an uncompressed RDS stream.
func EncodeRDS(v RV) []byte {
	var buf bytes.Buffer
	buf.WriteString("X\n")
	putU32(&buf, 2)        // serialization version
	putU32(&buf, 0x030603) // writer version
	putU32(&buf, 0x020300) // minimum reader version
	encodeRV(&buf, v)
	return buf.Bytes()
}

// EncodeRDSGzip serializes v gzip-wrapped, the saveRDS default.
func EncodeRDSGzip(v RV) []byte {
	var out bytes.Buffer
	gz := gzip.NewWriter(&out)
	_, _ = gz.Write(EncodeRDS(v))
	_ = gz.Close()
	return out.Bytes()
}

const (
	sexpSymbol   = 1
	sexpPairlist = 2
	sexpChar     = 9
	sexpLogical  = 10
	sexpInt      = 13
	sexpReal     = 14
	sexpString   = 16
	sexpList     = 19
	sexpS4       = 25
	sexpNilValue = 254

	encFlagObject = 1 << 8
	encFlagAttr   = 1 << 9
	encFlagTag    = 1 << 10
)

func encodeRV(buf *bytes.Buffer, v RV) {
	hasAttr := len(v.attrs) > 0
	attrBit := uint32(0)
	if hasAttr {
		attrBit = encFlagAttr
	}

	switch v.kind {
	case 'n':
		putU32(buf, sexpNilValue)
		return
	case 'i', 'L':
		ty := uint32(sexpInt)
		if v.kind == 'L' {
			ty = sexpLogical
		}
		putU32(buf, ty|attrBit)
		putU32(buf, uint32(len(v.ints)))
		for _, x := range v.ints {
			putU32(buf, uint32(x))
		}
	case 'r':
		putU32(buf, sexpReal|attrBit)
		putU32(buf, uint32(len(v.reals)))
		for _, x := range v.reals {
			var b [8]byte
			binary.BigEndian.PutUint64(b[:], math.Float64bits(x))
			buf.Write(b[:])
		}
	case 's':
		putU32(buf, sexpString|attrBit)
		putU32(buf, uint32(len(v.strs)))
		for _, s := range v.strs {
			encodeChar(buf, s)
		}
	case 'l':
		putU32(buf, sexpList|attrBit)
		putU32(buf, uint32(len(v.items)))
		for _, item := range v.items {
			encodeRV(buf, item)
		}
	case '4':
		// S4 objects always carry the object and attribute bits; slots are
		// the attribute pairlist.
		putU32(buf, sexpS4|encFlagObject|encFlagAttr)
		encodeAttrs(buf, v.attrs)
		return
	default:
		panic("testutil: unknown RV kind")
	}

	if hasAttr {
		encodeAttrs(buf, v.attrs)
	}
}

func encodeAttrs(buf *bytes.Buffer, attrs []rattr) {
	for _, a := range attrs {
		putU32(buf, sexpPairlist|encFlagTag)
		encodeSymbol(buf, a.name)
		encodeRV(buf, a.value)
	}
	putU32(buf, sexpNilValue)
}

func encodeSymbol(buf *bytes.Buffer, name string) {
	putU32(buf, sexpSymbol)
	encodeChar(buf, name)
}

func encodeChar(buf *bytes.Buffer, s string) {
	// levels field carries the UTF-8 charset bit, as R writes it.
	putU32(buf, sexpChar|0x8<<12)
	putU32(buf, uint32(len(s)))
	buf.WriteString(s)
}

func putU32(buf *bytes.Buffer, v uint32) {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], v)
	buf.Write(b[:])
}
