package hissp

import (
	"bytes"
	"fmt"
	"math/big"
	"reflect"
	"strconv"
	"strings"
)

// Pickle encodes form using CPython's pickle protocol 0, the "human
// readable" text protocol, like the original compiler's atom fallback
// (pickle.dumps(form, 0, fix_imports=False)), without the optimize pass and
// without comparing against a higher protocol.
// It's the last resort for an atom whose pretty-printed literal doesn't
// round-trip through Python's own literal evaluator: reference cycles,
// objects pickle distinguishes by identity, float/complex values whose repr
// doesn't parse back to an equal value (e.g. nan).
//
// Protocol 0 encodes everything as opcodes followed by ASCII text and a
// newline, which is why pickletools.optimize (stripping unreachable PUTs)
// is cosmetic only; this encoder skips that optimization pass and always
// memoizes containers, matching pickle.py's own unconditional memoize()
// call rather than trying to predict which objects need it.
func Pickle(form any) []byte {
	p := &pickler{memo: map[uintptr]int{}}
	p.save(form)
	p.buf.WriteByte('.') // STOP
	return p.buf.Bytes()
}

type pickler struct {
	buf  bytes.Buffer
	memo map[uintptr]int
}

func (p *pickler) save(form any) {
	switch v := form.(type) {
	case nil:
		p.buf.WriteString("N")
	case ellipsisT:
		p.buf.WriteString("cbuiltins\nEllipsis\n")
	case bool:
		if v {
			p.buf.WriteString("I01\n")
		} else {
			p.buf.WriteString("I00\n")
		}
	case int64:
		p.saveInt(big.NewInt(v))
	case int:
		p.saveInt(big.NewInt(int64(v)))
	case *big.Int:
		p.saveInt(v)
	case float64:
		p.saveFloat(v)
	case complex128:
		p.saveComplex(v)
	case string:
		p.saveUnicode(v)
	case []byte:
		p.saveBytes(v)
	case Tuple:
		p.saveTuple(v)
	case PyList:
		p.saveList(v)
	case PyDict:
		p.saveDict(&v)
	case *PyDict:
		p.saveDict(v)
	case PySet:
		p.saveSet(v)
	case *Pickled:
		p.save(v.Value)
	default:
		panic(fmt.Sprintf("hissp: pickle: unsupported atom type %T", form))
	}
}

func (p *pickler) saveInt(n *big.Int) {
	if n.IsInt64() {
		v := n.Int64()
		if v >= -2147483648 && v <= 2147483647 {
			fmt.Fprintf(&p.buf, "I%d\n", v)
			return
		}
	}
	fmt.Fprintf(&p.buf, "L%sL\n", n.String())
}

// saveFloat mirrors pickle's FLOAT opcode: 'F' + repr(x) + '\n'. Go's
// shortest round-trip formatting (strconv's -1 precision) produces the same
// digit sequence as Python's repr for any value that survives the emitter's
// round-trip check in the first place; values that land here specifically
// because repr doesn't round-trip (e.g. nan, inf) are given Python's
// spellings directly.
func (p *pickler) saveFloat(f float64) {
	var s string
	switch {
	case f != f: // NaN
		s = "nan"
	case f > 1.7976931348623157e+308:
		s = "inf"
	case f < -1.7976931348623157e+308:
		s = "-inf"
	default:
		s = strconv.FormatFloat(f, 'g', -1, 64)
		if !strings.ContainsAny(s, ".eE") {
			s += ".0"
		}
	}
	fmt.Fprintf(&p.buf, "F%s\n", s)
}

// saveComplex has no dedicated protocol-0 opcode; CPython reduces it to a
// call of the builtin constructor: c builtins\ncomplex\n, then a
// (real, imag) tuple, then REDUCE.
func (p *pickler) saveComplex(c complex128) {
	p.buf.WriteString("cbuiltins\ncomplex\n(")
	p.saveFloat(real(c))
	p.saveFloat(imag(c))
	p.buf.WriteString("tR")
}

// saveUnicode mirrors the UNICODE opcode: backslash and newline are escaped
// first so they can't collide with the \u escapes below, then every
// non-ASCII rune is escaped \uXXXX (or \UXXXXXXXX outside the BMP).
func (p *pickler) saveUnicode(s string) {
	s = strings.ReplaceAll(s, "\\", "\\u005c")
	s = strings.ReplaceAll(s, "\n", "\\u000a")
	var sb strings.Builder
	for _, r := range s {
		switch {
		case r < 0x80:
			sb.WriteRune(r)
		case r <= 0xFFFF:
			fmt.Fprintf(&sb, "\\u%04x", r)
		default:
			fmt.Fprintf(&sb, "\\U%08x", r)
		}
	}
	p.buf.WriteString("V")
	p.buf.WriteString(sb.String())
	p.buf.WriteString("\n")
}

// saveBytes mirrors the STRING opcode: a Python 2 str-repr-quoted byte
// string. Only printable ASCII survives unescaped; everything else is a
// \xXX escape, matching repr's own fallback for bytes objects.
func (p *pickler) saveBytes(b []byte) {
	var sb strings.Builder
	sb.WriteByte('\'')
	for _, c := range b {
		switch {
		case c == '\\' || c == '\'':
			sb.WriteByte('\\')
			sb.WriteByte(c)
		case c >= 0x20 && c < 0x7f:
			sb.WriteByte(c)
		default:
			fmt.Fprintf(&sb, "\\x%02x", c)
		}
	}
	sb.WriteByte('\'')
	fmt.Fprintf(&p.buf, "S%s\n", sb.String())
}

func (p *pickler) saveTuple(t Tuple) {
	if len(t) == 0 {
		// The empty tuple is a CPython singleton; pickle never memoizes it.
		p.buf.WriteString("(t")
		return
	}
	p.buf.WriteString("(")
	for _, item := range t {
		p.save(item)
	}
	p.buf.WriteString("t")
	p.memoize(t)
}

func (p *pickler) saveList(l PyList) {
	if idx, ok := p.refOf(l); ok {
		fmt.Fprintf(&p.buf, "g%d\n", idx)
		return
	}
	p.buf.WriteString("(l")
	p.memoize(l)
	for _, item := range l {
		p.save(item)
		p.buf.WriteString("a")
	}
}

func (p *pickler) saveDict(d *PyDict) {
	if idx, ok := p.refOf(d); ok {
		fmt.Fprintf(&p.buf, "g%d\n", idx)
		return
	}
	p.buf.WriteString("(d")
	p.memoize(d)
	for i, k := range d.Keys {
		p.save(k)
		p.save(d.Values[i])
		p.buf.WriteString("s")
	}
}

// saveSet has no protocol-0 opcode either; CPython reduces a set through
// its constructor called on a list of members, which is what's emitted
// here. This is an approximation of real pickle's exact bytes (which route
// through copyreg's __newobj__ machinery). The emitter's collection path
// pickles every set it emits, for its byte comparison, so this method runs
// for each set literal, not only for a set holding an atom that needs the
// pickle fallback.
func (p *pickler) saveSet(s PySet) {
	p.buf.WriteString("cbuiltins\nset\n(")
	p.buf.WriteString("(l")
	for _, item := range s {
		p.save(item)
		p.buf.WriteString("a")
	}
	p.buf.WriteString("tR")
}

// memoize records form's identity (its backing array/struct pointer) and
// always emits a PUT opcode, mirroring pickle.py's Pickler.memoize, which
// can't know in advance whether a later object will reference this one.
func (p *pickler) memoize(form any) {
	ptr, ok := identity(form)
	if !ok {
		return
	}
	idx := len(p.memo)
	p.memo[ptr] = idx
	fmt.Fprintf(&p.buf, "p%d\n", idx)
}

func (p *pickler) refOf(form any) (int, bool) {
	ptr, ok := identity(form)
	if !ok {
		return 0, false
	}
	idx, seen := p.memo[ptr]
	return idx, seen
}

// identity returns a stable pointer for slice/map-backed forms, used as a
// memo key so pickle can detect the same Go value appearing twice (shared
// references or reference cycles), the same way CPython's pickler keys its
// memo on id(obj).
func identity(form any) (uintptr, bool) {
	v := reflect.ValueOf(form)
	switch v.Kind() {
	case reflect.Slice:
		if v.Len() == 0 {
			return 0, false // empty slices don't reliably share a backing array
		}
		return v.Pointer(), true
	case reflect.Ptr:
		if v.IsNil() {
			return 0, false
		}
		return v.Pointer(), true
	}
	return 0, false
}
