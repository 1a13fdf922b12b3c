package hissp

import (
	"fmt"
	"strings"
)

// pyStrRepr formats s the way CPython's str.__repr__ does: single-quoted
// unless s contains a single quote but no double quote (then double-quoted),
// with backslash, the chosen quote character, and the common control
// characters escaped. Used both by the reader (a Unicode token's value is
// pretty-printed back into a string-literal fragment atom) and the emitter
// (string atoms fall back to their repr when they're not already a code
// fragment).
func pyStrRepr(s string) string {
	quote := byte('\'')
	if strings.ContainsRune(s, '\'') && !strings.ContainsRune(s, '"') {
		quote = '"'
	}
	var sb strings.Builder
	sb.WriteByte(quote)
	for _, r := range s {
		switch r {
		case '\\':
			sb.WriteString(`\\`)
		case rune(quote):
			sb.WriteByte('\\')
			sb.WriteByte(quote)
		case '\n':
			sb.WriteString(`\n`)
		case '\r':
			sb.WriteString(`\r`)
		case '\t':
			sb.WriteString(`\t`)
		default:
			if r < 0x20 || r == 0x7f {
				fmt.Fprintf(&sb, `\x%02x`, r)
			} else {
				sb.WriteRune(r)
			}
		}
	}
	sb.WriteByte(quote)
	return sb.String()
}
