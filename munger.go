package hissp

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Munge encodes a Lissp symbol token into a valid, human-readable (if
// unpythonic) Python identifier, using NFKC normalization and Quotez.
// E.g. *FOO-BAR* becomes QzSTAR_FOOQzH_BARQzSTAR_. Full stops are handled
// separately by splitting on them first, since they're meaningful to Hissp
// as module/attribute separators, not part of an identifier.
func Munge(s string) string {
	s = norm.NFKC.String(s)
	if isPyIdentifier(s) {
		return s
	}
	parts := strings.Split(s, ".")
	for i, part := range parts {
		parts[i] = mungePart(part)
	}
	return strings.Join(parts, ".")
}

func mungePart(part string) string {
	if part == "" {
		return part
	}
	var sb strings.Builder
	for _, r := range part {
		sb.WriteString(qzEncode(r))
	}
	out := sb.String()
	if !isPyIdentifier(out) {
		runes := []rune(out)
		first := forceQzEncode(runes[0])
		out = first + string(runes[1:])
	}
	return out
}

// quotez is the wrapper format: Qz<NAME>_.
const quotezFmt = "Qz%s_"

// findQuotez recognizes a Quotez span for decoding: Qz, then a digit or
// upper-case letter, then any run of digits/upper-case letters/h/x, then _.
var findQuotez = regexp.MustCompile(`Qz([0-9A-Z][0-9A-Zhx]*?)_`)

// toName gives short, readable Quotez names for ASCII punctuation that
// doesn't otherwise munge cleanly into a Python identifier.
var toName = map[rune]string{
	'!':  "BANG",
	'"':  "QUOT",
	'#':  "HASH",
	'$':  "DOLR",
	'%':  "PCENT",
	'&':  "ET",
	'\'': "APOS",
	'(':  "LPAR",
	')':  "RPAR",
	'*':  "STAR",
	'+':  "PLUS",
	'-':  "H",
	'.':  "DOT",
	'/':  "SOL",
	';':  "SEMI",
	'<':  "LT",
	'=':  "EQ",
	'>':  "GT",
	'?':  "QUERY",
	'@':  "AT",
	'[':  "LSQB",
	'\\': "BSOL",
	']':  "RSQB",
	'^':  "HAT",
	'`':  "GRAVE",
	'{':  "LCUB",
	'|':  "VERT",
	'}':  "RCUB",
}

var lookupName = inverseRuneString(toName)

// qzEncode converts a rune to its Quotez encoding, unless prefixing it with
// "x" would already make a valid Python identifier (i.e. it's already safe
// to use, just not as a leading character).
func qzEncode(c rune) string {
	if isPyIdentifier("x" + string(c)) {
		return string(c)
	}
	return forceQzEncode(c)
}

// forceQzEncode converts a rune to its Quotez encoding even if it's already
// valid in a Python identifier (used for a token's leading character, where
// e.g. a leading digit needs escaping even though digits are fine elsewhere).
//
// The original encoder falls back through three tiers: a short-name table,
// the Unicode character name (from unicodedata.name), then a hex ordinal.
// Go's standard library and the rest of this project's dependency pack carry
// no Unicode name database (no analogue of CPython's unicodedata.name/
// lookup), so the middle tier is dropped here; munge falls straight from
// short names to ordinals. demunge is unaffected for anything munge itself
// produces, and still decodes short-name and ordinal Quotez written by hand.
func forceQzEncode(c rune) string {
	if name, ok := toName[c]; ok {
		return fmt.Sprintf(quotezFmt, name)
	}
	return fmt.Sprintf(quotezFmt, fmt.Sprintf("0X%X", c))
}

// Demunge is the inverse of Munge: it decodes any Quotez span back into the
// characters it encodes, leaving everything else (including invalid Quotez
// spans) untouched.
func Demunge(s string) string {
	return findQuotez.ReplaceAllStringFunc(s, qzDecode)
}

func qzDecode(match string) string {
	sub := findQuotez.FindStringSubmatch(match)
	name := sub[1]
	if c, ok := lookupName[name]; ok {
		return string(c)
	}
	if strings.HasPrefix(name, "0X") {
		var n int64
		if _, err := fmt.Sscanf(name, "0X%X", &n); err == nil {
			return string(rune(n))
		}
	}
	return match
}

func inverseRuneString(m map[rune]string) map[string]rune {
	out := make(map[string]rune, len(m))
	for k, v := range m {
		if _, dup := out[v]; dup {
			panic("munger: TO_NAME is not 1-to-1")
		}
		out[v] = k
	}
	return out
}

// isPyIdentifier reports whether s is a valid Python identifier: it is
// non-empty, its first rune is a letter or underscore (XID_Start, plus '_'),
// and every subsequent rune is a letter, digit, or underscore (XID_Continue).
// Go's unicode tables don't expose XID_Start/XID_Continue directly, so this
// approximates with the Letter/Digit/Mark categories Python's real-world
// identifiers actually use; full Unicode XID conformance is not required for
// Quotez round-tripping, only for the munge-skip fast path.
func isPyIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		if r == '_' {
			continue
		}
		if i == 0 {
			if !isIdentStart(r) {
				return false
			}
			continue
		}
		if !isIdentContinue(r) {
			return false
		}
	}
	return true
}

func isIdentStart(r rune) bool {
	return unicode.IsLetter(r)
}

func isIdentContinue(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsMark(r)
}
