package hissp

import (
	"encoding/base32"
	"errors"
	"math/bits"
	"strings"

	"golang.org/x/crypto/blake2s"
)

// GensymBytes is the digest size of a gensym hash: enough to make accidental
// collisions between gensyms in the same read vanishingly unlikely, without
// making the rendered Python source embarrassingly long.
const GensymBytes = 5

// GensymMarker is munge("$"), the character sequence a gensym tag's bare
// token is re-munged around: "$#foo" becomes a prefix before "foo", but
// "$#foo$bar" replaces the embedded "$"s with the hash instead.
var GensymMarker = Munge("$")

// gensymState tracks everything _gensym needs that depends on read position:
// a hash seeded once per read (on the source text and the module's
// qualname, exactly as reader.py seeds hashlib.blake2s in Parser.__init__),
// plus the template/unquote nesting stacks that pick which counter value a
// given "$#" uses. Unlike Python's hashlib objects, Go's hash.Hash has no
// cheap Copy(), so instead of cloning pre-seeded state per call, the digest
// is recomputed from the seed bytes plus the counter on every gensym call;
// the result is identical, just without that one allocation-saving trick.
type gensymState struct {
	seed     []byte // source code bytes + qualname bytes, hashed first every time
	counters []int  // one push per enclosing template, popped on template exit
	context  []byte // '`' for template, ',' for unquote, innermost last
}

// newGensymState seeds a gensym generator the way Parser.__init__ seeds
// self.blake: the full source text being read, then the reading module's
// qualname (its "__name__").
func newGensymState(code, qualname string) *gensymState {
	seed := make([]byte, 0, len(code)+len(qualname))
	seed = append(seed, []byte(code)...)
	seed = append(seed, []byte(qualname)...)
	return &gensymState{seed: seed}
}

// pushTemplate opens a new gensym/unquote context for one template form,
// called when entering a `...` (quasiquote), mirroring gensym_context.
func (g *gensymState) pushTemplate(templateCount int) {
	g.counters = append(g.counters, templateCount)
	g.context = append(g.context, '`')
}

func (g *gensymState) popTemplate() {
	g.counters = g.counters[:len(g.counters)-1]
	g.context = g.context[:len(g.context)-1]
}

var errUnquoteOutsideTemplate = errors.New("unquote outside of template")

// pushUnquote opens an unquote context, mirroring unquote_context; it's an
// error for unquotes to outnumber enclosing templates.
func (g *gensymState) pushUnquote() error {
	g.context = append(g.context, ',')
	if countByte(g.context, ',') > countByte(g.context, '`') {
		g.context = g.context[:len(g.context)-1]
		return errUnquoteOutsideTemplate
	}
	return nil
}

func (g *gensymState) popUnquote() {
	g.context = g.context[:len(g.context)-1]
}

func countByte(s []byte, b byte) int {
	n := 0
	for _, c := range s {
		if c == b {
			n++
		}
	}
	return n
}

var errGensymOutsideTemplate = errors.New("gensym outside of template")

// counter picks which enclosing template's counter value this gensym call
// uses, per _get_counter: the innermost template if we're directly inside
// it, or the template index steps back from the innermost unquote nesting.
func (g *gensymState) counter() (int, error) {
	index := countByte(g.context, '`') - countByte(g.context, ',')
	if len(g.context) == 0 || index < 0 {
		return 0, errGensymOutsideTemplate
	}
	if g.context[len(g.context)-1] == '`' {
		return g.counters[len(g.counters)-1], nil
	}
	return g.counters[index], nil
}

// gensym re-munges form's embedded gensym markers (munge("$")) into a hash
// unique to this template instantiation, or prefixes form with the hash if
// it has no marker at all. Mirrors Parser._gensym exactly, including the
// original's own unresolved question about escaping a literal "$" — there's
// presently no way to write a "$#" tagged symbol containing a literal
// GensymMarker substring that survives un-replaced.
func (g *gensymState) gensym(form string) (string, error) {
	c, err := g.counter()
	if err != nil {
		return "", err
	}
	h, _ := blake2s.New(GensymBytes, nil)
	_, _ = h.Write(g.seed)
	_, _ = h.Write(counterBytes(c))
	digest := h.Sum(nil)
	prefix := "_Qz" + strings.ToLower(strings.TrimRight(base32.StdEncoding.EncodeToString(digest), "=")) + "__"
	if !strings.Contains(form, GensymMarker) {
		return prefix + form, nil
	}
	// TODO: escape literal GensymMarker occurrences somehow ($$? \$?).
	return strings.ReplaceAll(form, GensymMarker, prefix), nil
}

// counterBytes mirrors c.to_bytes(1 + c.bit_length() // 8, "big"): the
// smallest big-endian encoding with at least one byte of headroom above the
// value's bit length, so successive counters don't collide on a shared
// prefix.
func counterBytes(c int) []byte {
	n := 1 + bits.Len(uint(c))/8
	out := make([]byte, n)
	for i := n - 1; i >= 0 && c > 0; i-- {
		out[i] = byte(c & 0xff)
		c >>= 8
	}
	return out
}
