package hissp

import "strings"

// rawSignal distinguishes an ordinary yielded form from the two ways a
// token stream can end a sub-read early: a matching close-paren, or the
// stream simply running out. Mirrors the two ways next(self._parse()) can
// raise StopIteration in the original: a `return` from _close, or genuine
// exhaustion of the underlying Lexer iterator.
type rawSignal int

const (
	rawNone rawSignal = iota
	rawClose
	rawEOF
)

// Reader turns Lissp source text into a sequence of top-level Hissp forms.
// It wraps a Lexer with tree-building (_open/_close), the quasiquote engine
// (template.go), reader-tag dispatch (readertag.go), and gensym allocation
// (gensym.go) — the combined role of the original's Lissp + Parser classes.
type Reader struct {
	Code    string
	File    string
	Env     *Env
	Modules *ModuleSet

	lexer         *Lexer
	gensym        *gensymState
	depth         []int // byte offsets of unclosed '(' tokens, for SoftSyntaxError
	templateCount int
	evaluator     func(form any, env *Env) (any, error) // backs the .# inject tag
}

// NewReader prepares env's qualname-seeded gensym hasher and wraps code for
// reading. evaluator backs the `.#` inject tag (read-time eval); pass nil to
// make inject tags always error (acceptable for a pure read/parse use, not
// for a real compile).
func NewReader(code, file string, env *Env, modules *ModuleSet, evaluator func(any, *Env) (any, error)) *Reader {
	return &Reader{
		Code:      code,
		File:      file,
		Env:       env,
		Modules:   modules,
		lexer:     NewLexer(code, file),
		gensym:    newGensymState(code, env.Name),
		evaluator: evaluator,
	}
}

// ReadAll reads every top-level form in Code, erroring (softly, if the
// source merely looks incomplete) on an unclosed form at end of input.
// Mirrors Lissp.reads driven to exhaustion plus Parser._check_depth.
func (r *Reader) ReadAll() ([]any, error) {
	var forms []any
	for {
		v, sig, err := r.raw()
		if err != nil {
			return nil, err
		}
		if sig == rawEOF {
			break
		}
		if sig == rawClose {
			return nil, r.errAtPos(r.lexer.Pos(), false, "too many `)`s")
		}
		forms = append(forms, v)
	}
	if len(r.depth) > 0 {
		return nil, r.errAtPos(r.depth[len(r.depth)-1], true, "form missing a `)`")
	}
	return forms, nil
}

func (r *Reader) nextTemplateCount() int {
	r.templateCount++
	return r.templateCount
}

// raw pulls the next logical unit off the token stream: a fully-built form,
// a close signal (a `)` was consumed, popping depth), or EOF. Discard tags
// and dropped comment tokens are absorbed internally and never surface as a
// signal, matching the original generator's behavior of simply not
// yielding for those token kinds.
func (r *Reader) raw() (any, rawSignal, error) {
	for {
		tok, has := r.lexer.Next()
		if !has {
			return nil, rawEOF, nil
		}
		switch tok.Typ {
		case TokenWhitespace, TokenComment:
			continue
		case TokenBadspace:
			return nil, rawNone, r.errAt(tok, false, "%q is not whitespace in Lissp. Indent with spaces only.", tok.Val)
		case TokenOpen:
			r.depth = append(r.depth, tok.Pos)
			items, err := r.collectTuple()
			if err != nil {
				return nil, rawNone, err
			}
			return items, rawNone, nil
		case TokenClose:
			if len(r.depth) == 0 {
				return nil, rawNone, r.errAt(tok, false, "too many `)`s")
			}
			r.depth = r.depth[:len(r.depth)-1]
			return nil, rawClose, nil
		case TokenTemplate:
			return r.readTemplate(tok)
		case TokenUnquote:
			return r.readUnquote(tok)
		case TokenQuote:
			v, err := r.pull(tok)
			if err != nil {
				return nil, rawNone, err
			}
			return Tuple{"quote", v}, rawNone, nil
		case TokenInject:
			v, err := r.pull(tok)
			if err != nil {
				return nil, rawNone, err
			}
			if r.evaluator == nil {
				return nil, rawNone, r.errAt(tok, false, "inject tag used with no read-time evaluator configured")
			}
			result, err := r.evaluator(v, r.Env)
			if err != nil {
				return nil, rawNone, err
			}
			return result, rawNone, nil
		case TokenDiscard:
			if _, err := r.pull(tok); err != nil {
				return nil, rawNone, err
			}
			continue
		case TokenGensym:
			v, err := r.pull(tok)
			if err != nil {
				return nil, rawNone, err
			}
			s, ok := v.(string)
			if !ok {
				return nil, rawNone, r.errAt(tok, false, "gensym tag requires a symbol argument")
			}
			g, err := r.gensym.gensym(s)
			if err != nil {
				return nil, rawNone, r.errAt(tok, false, "%s", err)
			}
			return g, rawNone, nil
		case TokenStararg, TokenKwarg:
			k := strings.TrimSuffix(tok.Val, "=")
			v, err := r.pull(tok)
			if err != nil {
				return nil, rawNone, err
			}
			return Kwarg{K: k, V: v}, rawNone, nil
		case TokenTag:
			return r.readTag(tok)
		case TokenUnicode:
			v, err := r.unicode(tok.Val)
			if err != nil {
				return nil, rawNone, r.errAt(tok, false, "%s", err)
			}
			return v, rawNone, nil
		case TokenFragment:
			return r.fragment(tok.Val), rawNone, nil
		case TokenContinue:
			return nil, rawNone, r.errAt(tok, true, "incomplete token")
		case TokenBadfrag:
			return nil, rawNone, r.errAt(tok, false, "unpaired |")
		case TokenControl:
			return escapeAtom(tok.Val), rawNone, nil
		case TokenBare:
			v, err := r.bare(tok.Val)
			if err != nil {
				return nil, rawNone, r.errAt(tok, false, "%s", err)
			}
			return v, rawNone, nil
		default:
			return nil, rawNone, r.errAt(tok, false, "can't read this")
		}
	}
}

func (r *Reader) collectTuple() (Tuple, error) {
	var items Tuple
	for {
		v, sig, err := r.raw()
		if err != nil {
			return nil, err
		}
		switch sig {
		case rawClose, rawEOF:
			return items, nil
		default:
			items = append(items, v)
		}
	}
}

// pull reads exactly one more logical form, for a tag/quote/unquote/gensym
// that requires an argument; a close or EOF in that position is an error,
// soft only if depth is unchanged from before the pull (meaning the input
// just ran out, rather than a stray `)` popping an enclosing form).
func (r *Reader) pull(tok Token) (any, error) {
	depthAtCall := len(r.depth)
	v, sig, err := r.raw()
	if err != nil {
		return nil, err
	}
	if sig == rawNone {
		return v, nil
	}
	soft := len(r.depth) == depthAtCall
	return nil, r.errAt(tok, soft, "tag %q missing argument", tok.Val)
}

func (r *Reader) readTemplate(tok Token) (any, rawSignal, error) {
	r.gensym.pushTemplate(r.nextTemplateCount())
	v, err := r.pull(tok)
	r.gensym.popTemplate()
	if err != nil {
		return nil, rawNone, err
	}
	tf, err := templateForm(v, r.Env)
	if err != nil {
		return nil, rawNone, r.errAt(tok, false, "%s", err)
	}
	return tf, rawNone, nil
}

func (r *Reader) readUnquote(tok Token) (any, rawSignal, error) {
	target := unquotePlain
	if strings.HasPrefix(tok.Val, ",@") {
		target = unquoteSplice
	}
	if err := r.gensym.pushUnquote(); err != nil {
		return nil, rawNone, r.errAt(tok, false, "%s", err)
	}
	v, err := r.pull(tok)
	r.gensym.popUnquote()
	if err != nil {
		return nil, rawNone, err
	}
	return unquoteForm{target: target, value: v}, rawNone, nil
}

func (r *Reader) readTag(tok Token) (any, rawSignal, error) {
	arity := tagArity(tok.Val)
	label := tagLabel(tok.Val, arity)
	var args []any
	kwargs := map[string]any{}
	for i := 0; i < arity; i++ {
		x, err := r.pull(tok)
		if err != nil {
			return nil, rawNone, err
		}
		collectTagArg(&args, kwargs, x)
	}
	fn, err := resolveTag(label, r.Env, r.Modules)
	if err != nil {
		return nil, rawNone, r.errAt(tok, false, "%s", err)
	}
	result, err := fn(args, kwargs)
	if err != nil {
		return nil, rawNone, err
	}
	return result, rawNone, nil
}

// bare preprocesses a bare token: escapes are applied first, and if the
// result reads as a non-container Python literal (a number, None, a bool,
// Ellipsis), that literal value is returned directly instead of as a munged
// symbol; a bare token that reads as a string, bytes, list, dict, set, or
// tuple literal (such as "[1,2]") is munged as a symbol instead. Mirrors
// Parser.bare.
func (r *Reader) bare(v string) (any, error) {
	if !strings.HasPrefix(v, `\`) {
		escaped := escapeAtom(v)
		if val, ok := pyLiteralEval(escaped); ok && !hasPyContains(val) {
			return val, nil
		}
	}
	return Munge(escapeAtom(v)), nil
}

func hasPyContains(v any) bool {
	switch v.(type) {
	case string, []byte, Tuple, PyList, PyDict, *PyDict, PySet:
		return true
	}
	return false
}

// unicode turns a double-quoted string token's raw text into a string
// literal fragment atom: backslash-newline continuations are removed, any
// remaining literal newline is escaped, the result is evaluated as a Python
// string literal, then pretty-printed back into a parenthesized fragment —
// matching is_lissp_unicode's expectation that a Lissp Unicode token always
// reads as `"(" + repr + ")"`. Mirrors Parser._unicode.
func (r *Reader) unicode(v string) (string, error) {
	v = strings.ReplaceAll(v, "\\\n", "")
	v = strings.ReplaceAll(v, "\n", `\n`)
	val, ok := pyLiteralEval(v)
	if !ok {
		return "", &SyntaxError{Msg: "malformed string token"}
	}
	s, ok := val.(string)
	if !ok {
		return "", &SyntaxError{Msg: "string token did not evaluate to a string"}
	}
	result := pyStrRepr(s)
	if strings.HasPrefix(result, "(") {
		return result, nil
	}
	return "(" + result + ")", nil
}

// fragment turns a |...| token's raw text into its raw-code-string value:
// the surrounding pipes are stripped and a doubled pipe unescapes to one.
func (r *Reader) fragment(v string) string {
	return strings.ReplaceAll(v[1:len(v)-1], "||", "|")
}

func (r *Reader) errAt(tok Token, soft bool, format string, args ...any) *SyntaxError {
	return r.errAtPos(tok.Pos, soft, format, args...)
}

func (r *Reader) errAtPos(pos int, soft bool, format string, args ...any) *SyntaxError {
	return newSyntaxError(r.Code, r.File, pos, soft, format, args...)
}
