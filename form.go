// Package hissp implements the Lissp reader, the Hissp intermediate
// representation, and the emitter that lowers Hissp to Python source text.
package hissp

import (
	"math/big"
	"strings"
)

// Tuple is a Hissp node: a non-empty sequence of Hissp values. An empty
// Tuple is itself an atom (it represents Python's `()`); it is a Tuple
// value here only so callers don't need a separate "empty tuple" type,
// but the emitter treats len(t) == 0 as an atom, never as a form to
// dispatch on head.
type Tuple []any

// ellipsisT is the sentinel type for Python's Ellipsis (`...`).
type ellipsisT struct{}

// Ellipsis is Hissp's representation of Python's `...`.
var Ellipsis ellipsisT

func (ellipsisT) String() string { return "..." }

// PyList, PyDict and PySet wrap Go slices/maps so the emitter can tell a
// Python list/dict/set atom apart from a Hissp Tuple (a plain []any would
// be ambiguous with Tuple).
type PyList []any

// PyDict preserves insertion order, which Python dict literals (and pickle
// byte-for-byte fallback) are sensitive to; a plain Go map would not.
type PyDict struct {
	Keys   []any
	Values []any
}

// NewPyDict builds an empty PyDict; add pairs with Set.
func NewPyDict() *PyDict { return &PyDict{} }

// Set appends a key/value pair, preserving the order it was added in.
func (d *PyDict) Set(k, v any) {
	d.Keys = append(d.Keys, k)
	d.Values = append(d.Values, v)
}

type PySet []any

// Pickled wraps a value that can only be reconstructed through the pickle
// fallback (§4.3.1) — reference cycles, duplicated references, or any
// object whose pretty-printed literal doesn't round-trip to something
// pickle-equal to the original. The emitter's normal atom path never
// produces this; callers who already have opaque host data (from a reader
// inject form, `.#`) may wrap it directly to force the pickle path.
type Pickled struct {
	Value any
}

// IsControlWord reports whether s is a Hissp control word: a string atom
// beginning with ':'. Control words never undergo identifier lowering,
// qualification, munging, or import rewriting (§3 invariants).
func IsControlWord(s string) bool {
	return strings.HasPrefix(s, ":")
}

// IsNode reports whether form is a Hissp node: a non-empty Tuple.
func IsNode(form any) bool {
	t, ok := form.(Tuple)
	return ok && len(t) > 0
}

// IsStr reports whether form is a code-fragment-or-control-word string atom
// (as opposed to any other Go value).
func IsStr(form any) bool {
	_, ok := form.(string)
	return ok
}

// IsHisspString determines if form would directly represent a string in
// Hissp: either the readerless-mode quote form ('quote', "literal") or any
// string-literal fragment (a code fragment atom that Python's literal
// evaluator would read back as a str). Macros often produce strings in one
// of these two shapes, via `quote` or a `repr` of a Go string.
func IsHisspString(form any) bool {
	if t, ok := form.(Tuple); ok && len(t) == 2 {
		if head, ok := t[0].(string); ok && head == "quote" {
			if _, ok := t[1].(string); ok {
				return true
			}
		}
	}
	return IsStringLiteral(form)
}

// IsLisspUnicode determines whether form could have been read from a Lissp
// double-quoted string token: it must be a code-fragment string that is
// itself a parenthesized Python string literal (the shape the reader
// produces for a Unicode token), not a control word or symbol.
func IsLisspUnicode(form any) bool {
	s, ok := form.(string)
	if !ok || !strings.HasPrefix(s, "(") {
		return false
	}
	return IsStringLiteral(form)
}

// IsStringLiteral determines whether Python's ast.literal_eval on form
// (treated as Python source text) would produce a str. Used to distinguish
// data atoms (already Go-native) from code-fragment atoms that merely look
// like strings once emitted.
func IsStringLiteral(form any) bool {
	s, ok := form.(string)
	if !ok {
		return false
	}
	v, ok := pyLiteralEval(s)
	if !ok {
		return false
	}
	_, isStr := v.(string)
	return isStr
}

// bigIntEqual compares two big.Int-backed atoms by value rather than by
// pointer; two nils are equal, a nil and a non-nil are not.
func bigIntEqual(a, b *big.Int) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Cmp(b) == 0
}
