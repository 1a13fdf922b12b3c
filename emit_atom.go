package hissp

import (
	"fmt"
	"math"
	"math/big"
	"strconv"
	"strings"
)

// atom compiles a form that represents itself: a literal if one round-trips
// back to an equal value through pyLiteralEval, otherwise the pickle
// fallback. Mirrors Compiler.atom.
func (em *Emitter) atom(form any) (string, error) {
	if _, ok := form.(ellipsisT); ok {
		return "...", nil
	}
	switch v := form.(type) {
	case Tuple:
		if len(v) > 0 {
			return em.lispNormalForm(v)
		}
	case PyList:
		return em.collection(v)
	case PyDict:
		return em.collection(v)
	case *PyDict:
		return em.collection(*v)
	case PySet:
		return em.collection(v)
	case *Pickled:
		return em.pickleAtom(v.Value)
	}
	literal := formatRepr(form)
	if evaled, ok := pyLiteralEval(literal); ok && pyValueEqual(evaled, form) {
		return literal, nil
	}
	return em.pickleAtom(form)
}

// lispNormalForm compiles a quoted (data) tuple: each element individually
// through atom, joined with a trailing comma so a single-element tuple
// still parses as one. Mirrors Compiler._lisp_normal_form.
func (em *Emitter) lispNormalForm(form Tuple) (string, error) {
	parts := make([]string, len(form))
	for i, item := range form {
		s, err := em.atom(item)
		if err != nil {
			return "", err
		}
		parts[i] = s
	}
	joined := strings.Join(parts, ",\n")
	joined = strings.ReplaceAll(joined, "\n", "\n ")
	return fmt.Sprintf("(%s,)", joined), nil
}

// collection compiles a list/dict/set atom: a pretty-printed literal if it
// reproduces the same object graph pickle would (no shared references, no
// cycles), otherwise the pickle fallback. Mirrors Compiler._collection.
//
// The empty set is special-cased ahead of the round-trip check: `set()`
// is never emitted by name (it could be locally shadowed), and pyLiteralEval
// has no call-expression support to round-trip it through anyway, so it
// would otherwise fall all the way through to the pickle fallback.
func (em *Emitter) collection(form any) (string, error) {
	if s, ok := form.(PySet); ok && len(s) == 0 {
		return emptySetLiteral, nil
	}
	pickled := Pickle(form)
	pretty := pyReprValue(form)
	evaled, ok := pyLiteralEval(pretty)
	if ok && pyValueEqual(evaled, form) && string(Pickle(evaled)) == string(pickled) {
		return pretty, nil
	}
	return em.pickleAtom(form)
}

// emptySetLiteral constructs an empty set via unpacking an empty string
// into a set display, since `set()` could be shadowed by a local binding.
const emptySetLiteral = "{*''}"

// pickleAtom compiles form to pickle.loads of its protocol-0 bytes, broken
// into one Python byte-string literal per pickled line, with form's repr
// as a leading comment. Mirrors Compiler.pickle.
func (em *Emitter) pickleAtom(form any) (string, error) {
	dumped := Pickle(form)
	lines := splitKeepEnds(dumped)
	var lits []string
	for _, l := range lines {
		lits = append(lits, pyBytesRepr(l))
	}
	r := strings.ReplaceAll(pyReprValue(form), "\n", "\n  # ")
	nl := ""
	if strings.Contains(r, "\n") {
		nl = "\n"
	}
	return fmt.Sprintf("__import__('pickle').loads(%s  # %s\n    %s\n)", nl, r, strings.Join(lits, "\n    ")), nil
}

func splitKeepEnds(b []byte) [][]byte {
	var out [][]byte
	start := 0
	for i, c := range b {
		if c == '\n' {
			out = append(out, b[start:i+1])
			start = i + 1
		}
	}
	if start < len(b) {
		out = append(out, b[start:])
	}
	return out
}

// formatRepr renders a non-container atom's literal form: int/float/complex
// get a defensive extra parenthesization (so e.g. `(1).real` parses),
// everything else just gets its plain repr. Mirrors Compiler._format_repr.
func formatRepr(form any) string {
	switch v := form.(type) {
	case nil:
		return "None"
	case bool:
		if v {
			return "True"
		}
		return "False"
	case int64:
		return fmt.Sprintf("(%d)", v)
	case int:
		return fmt.Sprintf("(%d)", v)
	case *big.Int:
		return fmt.Sprintf("(%s)", v.String())
	case float64:
		return fmt.Sprintf("(%s)", pyFloatPlainRepr(v))
	case complex128:
		return fmt.Sprintf("(%s)", pyComplexRepr(v))
	default:
		return pyReprValue(form)
	}
}

// pyReprValue is Python's plain recursive repr() for a Hissp atom value —
// unlike formatRepr, numbers are never extra-parenthesized, since this is
// used for values nested inside a list/dict/set/tuple display, where
// Python's own repr already handles precedence.
func pyReprValue(form any) string {
	switch v := form.(type) {
	case nil:
		return "None"
	case ellipsisT:
		return "Ellipsis"
	case bool:
		if v {
			return "True"
		}
		return "False"
	case int64:
		return strconv.FormatInt(v, 10)
	case int:
		return strconv.Itoa(v)
	case *big.Int:
		return v.String()
	case float64:
		return pyFloatPlainRepr(v)
	case complex128:
		return pyComplexRepr(v)
	case string:
		return pyStrRepr(v)
	case []byte:
		return pyBytesRepr(v)
	case Tuple:
		return pyTupleRepr(v)
	case PyList:
		parts := make([]string, len(v))
		for i, item := range v {
			parts[i] = pyReprValue(item)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case PyDict:
		return pyDictRepr(&v)
	case *PyDict:
		return pyDictRepr(v)
	case PySet:
		if len(v) == 0 {
			return emptySetLiteral
		}
		parts := make([]string, len(v))
		for i, item := range v {
			parts[i] = pyReprValue(item)
		}
		return "{" + strings.Join(parts, ", ") + "}"
	case *Pickled:
		return pyReprValue(v.Value)
	default:
		return fmt.Sprintf("%v", v)
	}
}

func pyTupleRepr(t Tuple) string {
	if len(t) == 0 {
		return "()"
	}
	parts := make([]string, len(t))
	for i, item := range t {
		parts[i] = pyReprValue(item)
	}
	if len(t) == 1 {
		return "(" + parts[0] + ",)"
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

func pyDictRepr(d *PyDict) string {
	parts := make([]string, len(d.Keys))
	for i, k := range d.Keys {
		parts[i] = pyReprValue(k) + ": " + pyReprValue(d.Values[i])
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

// pyFloatPlainRepr is CPython's float.__repr__: shortest round-tripping
// decimal, "nan"/"inf"/"-inf" spelled out, and a trailing ".0" forced onto
// any value whose shortest form would otherwise look like an integer.
func pyFloatPlainRepr(f float64) string {
	switch {
	case math.IsNaN(f):
		return "nan"
	case math.IsInf(f, 1):
		return "inf"
	case math.IsInf(f, -1):
		return "-inf"
	}
	s := strconv.FormatFloat(f, 'g', -1, 64)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s
}

// pyComplexRepr is CPython's complex.__repr__: a real part of positive
// zero is omitted entirely (just "<imag>j"), otherwise both parts are
// shown parenthesized, each formatted the same shortest-round-trip way as
// a float but without the float repr's forced ".0" (so 1+2j, not
// 1.0+2.0j).
func pyComplexRepr(c complex128) string {
	re, im := real(c), imag(c)
	if re == 0 && !math.Signbit(re) {
		return pyComplexComponentRepr(im) + "j"
	}
	sign := "+"
	imRepr := pyComplexComponentRepr(im)
	if math.Signbit(im) {
		sign = "-"
		imRepr = pyComplexComponentRepr(-im)
	}
	return fmt.Sprintf("(%s%s%sj)", pyComplexComponentRepr(re), sign, imRepr)
}

func pyComplexComponentRepr(f float64) string {
	switch {
	case math.IsNaN(f):
		return "nan"
	case math.IsInf(f, 1):
		return "inf"
	case math.IsInf(f, -1):
		return "-inf"
	}
	return strconv.FormatFloat(f, 'g', -1, 64)
}

// pyBytesRepr is CPython's bytes.__repr__: quote-character selection
// between ' and " exactly like pyStrRepr, backslash/quote/tab/newline/
// return escaped, everything else outside printable ASCII as \xHH.
func pyBytesRepr(b []byte) string {
	quote := byte('\'')
	if bytesContain(b, '\'') && !bytesContain(b, '"') {
		quote = '"'
	}
	var sb strings.Builder
	sb.WriteByte('b')
	sb.WriteByte(quote)
	for _, c := range b {
		switch {
		case c == '\\' || c == quote:
			sb.WriteByte('\\')
			sb.WriteByte(c)
		case c == '\n':
			sb.WriteString(`\n`)
		case c == '\r':
			sb.WriteString(`\r`)
		case c == '\t':
			sb.WriteString(`\t`)
		case c >= 0x20 && c < 0x7f:
			sb.WriteByte(c)
		default:
			fmt.Fprintf(&sb, `\x%02x`, c)
		}
	}
	sb.WriteByte(quote)
	return sb.String()
}

func bytesContain(b []byte, c byte) bool {
	for _, x := range b {
		if x == c {
			return true
		}
	}
	return false
}

// pyValueEqual compares a value parsed back out of a candidate literal
// against the original atom it was rendered from, the way atom()'s
// `self._try_eval(literal) == form` round-trip check does: numeric types
// that Go represents distinctly (int64 vs *big.Int) but Python would not
// compare as anything but equal, a NaN float never equal to anything
// (matching IEEE/Python semantics), and containers compared structurally.
func pyValueEqual(a, b any) bool {
	an, aIsNum := asBigRat(a)
	bn, bIsNum := asBigRat(b)
	if aIsNum && bIsNum {
		return an == bn
	}
	switch av := a.(type) {
	case float64:
		bv, ok := b.(float64)
		return ok && av == bv
	case complex128:
		bv, ok := b.(complex128)
		return ok && av == bv
	case string:
		bv, ok := b.(string)
		return ok && av == bv
	case []byte:
		bv, ok := b.([]byte)
		return ok && string(av) == string(bv)
	case bool:
		bv, ok := b.(bool)
		return ok && av == bv
	case nil:
		return b == nil
	case ellipsisT:
		_, ok := b.(ellipsisT)
		return ok
	case Tuple:
		bv, ok := b.(Tuple)
		return ok && tupleEqual(av, bv)
	case PyList:
		bv, ok := b.(PyList)
		return ok && listEqual(av, bv)
	case PyDict:
		bv, ok := asPyDict(b)
		return ok && dictEqual(&av, bv)
	case *PyDict:
		bv, ok := asPyDict(b)
		return ok && dictEqual(av, bv)
	case PySet:
		bv, ok := b.(PySet)
		return ok && setEqual(av, bv)
	}
	return false
}

// asBigRat normalizes any of the integer-like atom representations (int,
// int64, *big.Int) to its canonical decimal string, so values of different
// Go integer types but equal magnitude compare equal, the way Python's int
// does regardless of internal representation. Floats are excluded (handled
// separately above) since a whole-valued float and an int are distinct
// objects, but atom()'s round-trip check always compares same-shaped
// literals, so that distinction never needs crossing.
func asBigRat(v any) (string, bool) {
	switch n := v.(type) {
	case int:
		return big.NewInt(int64(n)).String(), true
	case int64:
		return big.NewInt(n).String(), true
	case *big.Int:
		if n == nil {
			return "", false
		}
		return n.String(), true
	}
	return "", false
}

func asPyDict(v any) (*PyDict, bool) {
	switch d := v.(type) {
	case PyDict:
		return &d, true
	case *PyDict:
		return d, true
	}
	return nil, false
}

func tupleEqual(a, b Tuple) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !pyValueEqual(a[i], b[i]) {
			return false
		}
	}
	return true
}

func listEqual(a, b PyList) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !pyValueEqual(a[i], b[i]) {
			return false
		}
	}
	return true
}

func dictEqual(a, b *PyDict) bool {
	if len(a.Keys) != len(b.Keys) {
		return false
	}
	for i, k := range a.Keys {
		found := false
		for j, k2 := range b.Keys {
			if pyValueEqual(k, k2) && pyValueEqual(a.Values[i], b.Values[j]) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

func setEqual(a, b PySet) bool {
	if len(a) != len(b) {
		return false
	}
	for _, x := range a {
		found := false
		for _, y := range b {
			if pyValueEqual(x, y) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}
