package hissp

import (
	"fmt"
	"strings"
)

// Emitter lowers Hissp forms to Python source text, playing the role the
// original gives its Compiler class. Unlike the original, it never
// exec()s the result — there is no embedded Python runtime to hand it to
// — so there is no evaluate-mode, no ns-mutation-as-it-goes, and no
// PostCompileWarning machinery; Compile always behaves like the original's
// readerless (evaluate=False) mode, compiling every form in one pass
// against a single Env.
type Emitter struct {
	Env     *Env
	Modules *ModuleSet
}

// NewEmitter lowers Hissp against env, resolving cross-module macro/tag
// references (if any survive to emit time) through modules.
func NewEmitter(env *Env, modules *ModuleSet) *Emitter {
	return &Emitter{Env: env, Modules: modules}
}

// Compile lowers every form in forms to Python source, joining each form's
// emitted text with a blank line, mirroring Compiler.compile's join but
// without the per-form eval/abort step.
func (em *Emitter) Compile(forms []any) (string, error) {
	parts := make([]string, 0, len(forms))
	for _, form := range forms {
		expanded, err := MacroExpandAll(form, em.Env, em.Modules)
		if err != nil {
			return "", err
		}
		s, err := em.Form(expanded)
		if err != nil {
			return "", err
		}
		parts = append(parts, s)
	}
	return strings.Join(parts, "\n\n"), nil
}

// Form compiles one already-macroexpanded Hissp form to Python code.
// Tuples and non-control-word strings have special evaluation rules;
// everything else (including control words) is an atom that represents
// itself. Mirrors Compiler.form.
func (em *Emitter) Form(form any) (string, error) {
	if t, ok := form.(Tuple); ok && len(t) > 0 {
		return em.tuple(t)
	}
	if s, ok := form.(string); ok && !IsControlWord(s) {
		return em.str(s)
	}
	return em.atom(form)
}

// tuple compiles a call, macro, or special form. Mirrors Compiler.tuple.
func (em *Emitter) tuple(form Tuple) (string, error) {
	if _, ok := form[0].(string); ok {
		return em.special(form)
	}
	return em.call(form)
}

// special tries quote and lambda, the only two special forms, falling
// back to invocation (which itself falls back further to an ordinary
// call). Mirrors Compiler.special.
func (em *Emitter) special(form Tuple) (string, error) {
	head, _ := form[0].(string)
	switch head {
	case "quote":
		if len(form) < 2 {
			return "", fmt.Errorf("hissp: quote requires exactly one argument, got %d", len(form)-1)
		}
		return em.atom(form[1])
	case "lambda":
		return em.function(form)
	default:
		return em.invocation(form)
	}
}

// str compiles a code-fragment string: a triple-dot escape hatch passes
// through untouched, a qualified identifier (one ".." separator) expands
// to an import-and-attribute expression, a trailing "." names a bare
// module import, and anything else (a plain identifier chain, or raw code
// that isn't identifier-shaped at all) passes through as-is. Mirrors
// Compiler.str.
func (em *Emitter) str(code string) (string, error) {
	if strings.Contains(code, "...") {
		return code, nil
	}
	if !allDottedPartsIdentifiers(code) {
		return code, nil
	}
	if strings.Contains(code, "..") {
		return em.qualifiedIdentifier(code), nil
	}
	if strings.HasSuffix(code, ".") {
		return em.moduleIdentifier(code), nil
	}
	return code, nil
}

func allDottedPartsIdentifiers(code string) bool {
	for _, part := range splitDots(code) {
		if part == "" {
			continue
		}
		if !isPyIdentifier(part) {
			return false
		}
	}
	return true
}

// qualifiedIdentifier compiles "module..attr.chain" into an import
// expression, or (if module is this very module) a globals() lookup that
// avoids local shadowing. Mirrors Compiler.qualified_identifier.
func (em *Emitter) qualifiedIdentifier(code string) string {
	parts := strings.SplitN(code, "..", 2)
	module, rest := parts[0], parts[1]
	if module == em.Env.Name {
		chain := strings.SplitN(rest, ".", 2)
		head := fmt.Sprintf("__import__('builtins').globals()[%s]", pyStrRepr(chain[0]))
		if len(chain) > 1 {
			return head + "." + chain[1]
		}
		return head
	}
	fromlist := ""
	if strings.Contains(module, ".") {
		fromlist = ",fromlist='?'"
	}
	return fmt.Sprintf("__import__(%s%s).%s", pyStrRepr(module), fromlist, rest)
}

// moduleIdentifier compiles "pkg.mod." (a trailing-dot module handle) into
// a bare import expression. Mirrors Compiler.module_identifier.
func (em *Emitter) moduleIdentifier(code string) string {
	module := strings.TrimSuffix(code, ".")
	fromlist := ""
	if strings.Contains(module, ".") {
		fromlist = ",fromlist='?'"
	}
	return fmt.Sprintf("__import__(%s%s)", pyStrRepr(module), fromlist)
}
