package rds

import (
	"bufio"
	"compress/bzip2"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/klauspost/compress/gzip"
)

// Serialization type codes. Only the ones the decoder distinguishes are
// named; see R's serialize.c for the full set.
const (
	tNil      = 0
	tSymbol   = 1
	tPairlist = 2
	tClosure  = 3
	tEnv      = 4
	tPromise  = 5
	tLang     = 6
	tChar     = 9
	tLogical  = 10
	tInt      = 13
	tReal     = 14
	tComplex  = 15
	tString   = 16
	tDots     = 17
	tList     = 19
	tExpr     = 20
	tRaw      = 24
	tS4       = 25

	tAltrep     = 238
	tAttrList   = 239
	tAttrLang   = 240
	tBaseEnv    = 241
	tEmptyEnv   = 242
	tGenericRef = 245
	tClassRef   = 246
	tPersist    = 247
	tPackage    = 248
	tNamespace  = 249
	tBaseNS     = 250
	tMissingArg = 251
	tUnboundVal = 252
	tGlobalEnv  = 253
	tNilValue   = 254
	tRef        = 255
)

const (
	flagObject = 1 << 8
	flagAttr   = 1 << 9
	flagTag    = 1 << 10
)

// Decode reads one serialized R object. The stream may be raw XDR or wrapped
// in gzip or bzip2 (R's default saveRDS compression is gzip).
func Decode(r io.Reader) (*SEXP, error) {
	br := bufio.NewReader(r)
	magic, err := br.Peek(3)
	if err != nil {
		return nil, fmt.Errorf("rds: reading magic: %w", err)
	}
	var body io.Reader = br
	switch {
	case magic[0] == 0x1f && magic[1] == 0x8b:
		gz, err := gzip.NewReader(br)
		if err != nil {
			return nil, fmt.Errorf("rds: opening gzip stream: %w", err)
		}
		defer gz.Close()
		body = gz
	case magic[0] == 'B' && magic[1] == 'Z' && magic[2] == 'h':
		body = bzip2.NewReader(br)
	case magic[0] == 0xfd && magic[1] == '7' && magic[2] == 'z':
		return nil, fmt.Errorf("rds: xz-compressed streams are not supported")
	}
	d := &decoder{r: bufio.NewReader(body)}
	if err := d.header(); err != nil {
		return nil, err
	}
	return d.item()
}

type decoder struct {
	r    *bufio.Reader
	refs []*SEXP
}

func (d *decoder) header() error {
	var m [2]byte
	if _, err := io.ReadFull(d.r, m[:]); err != nil {
		return fmt.Errorf("rds: reading format header: %w", err)
	}
	switch {
	case m[0] == 'X' && m[1] == '\n':
	case m[0] == 'A' || m[0] == 'B':
		return fmt.Errorf("rds: %q serialization format is not supported, only XDR", string(m[0]))
	default:
		return fmt.Errorf("rds: not a serialized R object")
	}
	version, err := d.u32()
	if err != nil {
		return err
	}
	if version != 2 && version != 3 {
		return fmt.Errorf("rds: unsupported serialization version %d", version)
	}
	if _, err := d.u32(); err != nil { // writer version
		return err
	}
	if _, err := d.u32(); err != nil { // minimum reader version
		return err
	}
	if version == 3 {
		n, err := d.u32()
		if err != nil {
			return err
		}
		if _, err := d.bytes(int(n)); err != nil { // native encoding name
			return err
		}
	}
	return nil
}

func (d *decoder) item() (*SEXP, error) {
	flags, err := d.u32()
	if err != nil {
		return nil, err
	}
	ty := flags & 255

	switch ty {
	case tRef:
		idx := int(flags >> 8)
		if idx == 0 {
			n, err := d.u32()
			if err != nil {
				return nil, err
			}
			idx = int(n)
		}
		if idx < 1 || idx > len(d.refs) {
			return nil, fmt.Errorf("rds: dangling reference %d", idx)
		}
		return d.refs[idx-1], nil

	case tNil, tNilValue:
		return &SEXP{Kind: KindNull}, nil

	case tGlobalEnv, tBaseEnv, tEmptyEnv, tBaseNS, tMissingArg, tUnboundVal:
		return &SEXP{Kind: KindOther}, nil

	case tSymbol:
		c, err := d.item()
		if err != nil {
			return nil, err
		}
		sym := &SEXP{Kind: KindSymbol, Chars: c.Chars}
		d.refs = append(d.refs, sym)
		return sym, nil

	case tChar:
		n, err := d.u32()
		if err != nil {
			return nil, err
		}
		// Length -1 is the NA string.
		if int32(n) < 0 {
			return &SEXP{Kind: KindOther}, nil
		}
		b, err := d.bytes(int(n))
		if err != nil {
			return nil, err
		}
		return &SEXP{Kind: KindOther, Chars: string(b)}, nil

	case tPairlist, tLang, tDots, tAttrList, tAttrLang:
		return d.pairlist(flags)

	case tClosure:
		return d.closure(flags)

	case tEnv:
		return d.environment()

	case tPromise:
		return nil, fmt.Errorf("rds: promise objects are not supported")

	case tLogical, tInt:
		n, err := d.length()
		if err != nil {
			return nil, err
		}
		ints := make([]int32, n)
		for i := range ints {
			v, err := d.u32()
			if err != nil {
				return nil, err
			}
			ints[i] = int32(v)
		}
		kind := KindInt
		if ty == tLogical {
			kind = KindLogical
		}
		x := &SEXP{Kind: kind, Ints: ints}
		return x, d.trailingAttrs(x, flags)

	case tReal:
		n, err := d.length()
		if err != nil {
			return nil, err
		}
		reals := make([]float64, n)
		if err := binary.Read(d.r, binary.BigEndian, reals); err != nil {
			return nil, fmt.Errorf("rds: reading doubles: %w", err)
		}
		x := &SEXP{Kind: KindReal, Reals: reals}
		return x, d.trailingAttrs(x, flags)

	case tComplex:
		n, err := d.length()
		if err != nil {
			return nil, err
		}
		if _, err := d.bytes(16 * n); err != nil {
			return nil, err
		}
		x := &SEXP{Kind: KindOther}
		return x, d.trailingAttrs(x, flags)

	case tString:
		n, err := d.length()
		if err != nil {
			return nil, err
		}
		strs := make([]string, n)
		for i := range strs {
			c, err := d.item()
			if err != nil {
				return nil, err
			}
			strs[i] = c.Chars
		}
		x := &SEXP{Kind: KindString, Strs: strs}
		return x, d.trailingAttrs(x, flags)

	case tList, tExpr:
		n, err := d.length()
		if err != nil {
			return nil, err
		}
		items := make([]*SEXP, n)
		for i := range items {
			v, err := d.item()
			if err != nil {
				return nil, err
			}
			items[i] = v
		}
		x := &SEXP{Kind: KindList, List: items}
		return x, d.trailingAttrs(x, flags)

	case tRaw:
		n, err := d.length()
		if err != nil {
			return nil, err
		}
		if _, err := d.bytes(n); err != nil {
			return nil, err
		}
		x := &SEXP{Kind: KindOther}
		return x, d.trailingAttrs(x, flags)

	case tS4:
		x := &SEXP{Kind: KindS4}
		if flags&flagAttr == 0 {
			return x, fmt.Errorf("rds: S4 object without slots")
		}
		return x, d.readAttrs(x)

	case tAltrep:
		return d.altrep()

	case tNamespace, tPackage, tPersist:
		if err := d.stringVec(); err != nil {
			return nil, err
		}
		x := &SEXP{Kind: KindOther}
		d.refs = append(d.refs, x)
		return x, nil

	case tClassRef, tGenericRef:
		if _, err := d.u32(); err != nil {
			return nil, err
		}
		return &SEXP{Kind: KindOther}, nil

	default:
		return nil, fmt.Errorf("rds: unsupported SEXP type %d", ty)
	}
}

// pairlist reads a CONS chain. For pairlists attributes precede the tag and
// CAR, unlike vectors where they trail the data.
func (d *decoder) pairlist(flags uint32) (*SEXP, error) {
	out := &SEXP{Kind: KindPairlist}
	for {
		if flags&flagAttr != 0 {
			if err := d.readAttrs(out); err != nil {
				return nil, err
			}
		}
		tag := ""
		if flags&flagTag != 0 {
			t, err := d.item()
			if err != nil {
				return nil, err
			}
			tag = t.Chars
		}
		car, err := d.item()
		if err != nil {
			return nil, err
		}
		out.Tags = append(out.Tags, tag)
		out.List = append(out.List, car)

		flags, err = d.u32()
		if err != nil {
			return nil, err
		}
		switch flags & 255 {
		case tPairlist, tLang, tDots, tAttrList, tAttrLang:
			continue
		case tNil, tNilValue:
			return out, nil
		default:
			// Improper list; decode the terminating CDR and drop it.
			if _, err := d.itemWithFlags(flags); err != nil {
				return nil, err
			}
			return out, nil
		}
	}
}

// itemWithFlags re-dispatches an already-consumed flags word.
func (d *decoder) itemWithFlags(flags uint32) (*SEXP, error) {
	// Only reachable for improper pairlist tails, which are rare; handle the
	// simple scalar kinds by delegating through a one-item re-read is not
	// possible, so decode inline for the supported set.
	switch flags & 255 {
	case tNil, tNilValue:
		return &SEXP{Kind: KindNull}, nil
	case tSymbol:
		c, err := d.item()
		if err != nil {
			return nil, err
		}
		sym := &SEXP{Kind: KindSymbol, Chars: c.Chars}
		d.refs = append(d.refs, sym)
		return sym, nil
	case tRef:
		idx := int(flags >> 8)
		if idx == 0 {
			n, err := d.u32()
			if err != nil {
				return nil, err
			}
			idx = int(n)
		}
		if idx < 1 || idx > len(d.refs) {
			return nil, fmt.Errorf("rds: dangling reference %d", idx)
		}
		return d.refs[idx-1], nil
	}
	return nil, fmt.Errorf("rds: unsupported pairlist tail type %d", flags&255)
}

// readAttrs consumes an attribute pairlist and attaches it to x.
func (d *decoder) readAttrs(x *SEXP) error {
	attrs, err := d.item()
	if err != nil {
		return err
	}
	if attrs.Kind == KindNull {
		return nil
	}
	if attrs.Kind != KindPairlist {
		return fmt.Errorf("rds: attributes are %v, not a pairlist", attrs.Kind)
	}
	for i, tag := range attrs.Tags {
		if tag != "" {
			x.setAttr(tag, attrs.List[i])
		}
	}
	return nil
}

func (d *decoder) trailingAttrs(x *SEXP, flags uint32) error {
	if flags&flagAttr == 0 {
		return nil
	}
	return d.readAttrs(x)
}

// closure decodes CLOSXP structurally: environment, formals, body.
func (d *decoder) closure(flags uint32) (*SEXP, error) {
	x := &SEXP{Kind: KindOther}
	if flags&flagAttr != 0 {
		if err := d.readAttrs(x); err != nil {
			return nil, err
		}
	}
	for i := 0; i < 3; i++ {
		if _, err := d.item(); err != nil {
			return nil, err
		}
	}
	return x, nil
}

// environment decodes ENVSXP structurally. Environments enter the reference
// table before their contents, matching the serializer.
func (d *decoder) environment() (*SEXP, error) {
	x := &SEXP{Kind: KindOther}
	d.refs = append(d.refs, x)
	if _, err := d.u32(); err != nil { // locked flag
		return nil, err
	}
	// enclosure, frame, hash table, attributes
	for i := 0; i < 4; i++ {
		if _, err := d.item(); err != nil {
			return nil, err
		}
	}
	return x, nil
}

// altrep materializes the ALTREP forms R commonly writes: compact integer
// and real sequences, and the wrap_* views whose payload is the first state
// element.
func (d *decoder) altrep() (*SEXP, error) {
	info, err := d.item()
	if err != nil {
		return nil, err
	}
	state, err := d.item()
	if err != nil {
		return nil, err
	}
	attr, err := d.item()
	if err != nil {
		return nil, err
	}

	class := ""
	if info.Kind == KindPairlist && len(info.List) > 0 {
		class = info.List[0].Chars
	}

	var out *SEXP
	switch class {
	case "compact_intseq":
		out, err = expandCompactSeq(state, true)
	case "compact_realseq":
		out, err = expandCompactSeq(state, false)
	case "wrap_integer", "wrap_real", "wrap_logical", "wrap_string", "wrap_raw", "wrap_complex":
		if state.Kind == KindPairlist && len(state.List) > 0 {
			out = state.List[0]
		} else {
			out = state
		}
	case "deferred_string":
		// State holds the un-deferred source; nothing usable without
		// re-running R's coercion.
		return nil, fmt.Errorf("rds: deferred_string ALTREP is not supported")
	default:
		return nil, fmt.Errorf("rds: unsupported ALTREP class %q", class)
	}
	if err != nil {
		return nil, err
	}
	if attr.Kind == KindPairlist {
		for i, tag := range attr.Tags {
			if tag != "" {
				out.setAttr(tag, attr.List[i])
			}
		}
	}
	return out, nil
}

func expandCompactSeq(state *SEXP, asInt bool) (*SEXP, error) {
	if state.Kind != KindReal || len(state.Reals) != 3 {
		return nil, fmt.Errorf("rds: malformed compact sequence state")
	}
	n := int(state.Reals[0])
	start := state.Reals[1]
	step := state.Reals[2]
	if n < 0 {
		return nil, fmt.Errorf("rds: negative compact sequence length")
	}
	if asInt {
		ints := make([]int32, n)
		for i := range ints {
			ints[i] = int32(start + float64(i)*step)
		}
		return &SEXP{Kind: KindInt, Ints: ints}, nil
	}
	reals := make([]float64, n)
	for i := range reals {
		reals[i] = start + float64(i)*step
	}
	return &SEXP{Kind: KindReal, Reals: reals}, nil
}

// stringVec consumes the persistent-name string vector used by namespace,
// package and persist records.
func (d *decoder) stringVec() error {
	marker, err := d.u32()
	if err != nil {
		return err
	}
	if marker != 0 {
		return fmt.Errorf("rds: malformed persistent string vector")
	}
	n, err := d.u32()
	if err != nil {
		return err
	}
	for i := 0; i < int(n); i++ {
		if _, err := d.item(); err != nil {
			return err
		}
	}
	return nil
}

func (d *decoder) length() (int, error) {
	n, err := d.u32()
	if err != nil {
		return 0, err
	}
	if n == 0xFFFFFFFF {
		// Long vector: two more words.
		hi, err := d.u32()
		if err != nil {
			return 0, err
		}
		lo, err := d.u32()
		if err != nil {
			return 0, err
		}
		return int(uint64(hi)<<32 | uint64(lo)), nil
	}
	return int(n), nil
}

func (d *decoder) u32() (uint32, error) {
	var b [4]byte
	if _, err := io.ReadFull(d.r, b[:]); err != nil {
		return 0, fmt.Errorf("rds: short read: %w", err)
	}
	return binary.BigEndian.Uint32(b[:]), nil
}

func (d *decoder) bytes(n int) ([]byte, error) {
	b := make([]byte, n)
	if _, err := io.ReadFull(d.r, b); err != nil {
		return nil, fmt.Errorf("rds: short read: %w", err)
	}
	return b, nil
}
