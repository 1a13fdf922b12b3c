package hissp

import (
	"fmt"
	"strings"
)

// TagFunc is a read-time reader tag: called with the positional and keyword
// arguments collected from the forms following it in the token stream,
// returning the form that replaces the tag and its arguments in the read
// tree. Mirrors a Python callable bound under a `_macro_` namespace
// attribute suffixed with munge("#").
type TagFunc func(args []any, kwargs map[string]any) (any, error)

// Kwarg is a read-time keyword or star argument collected for a tag
// (produced by a kwarg token or a stararg token), or emitted directly by a
// tag function that wants to pass one on.
type Kwarg struct {
	K string
	V any
}

// collectTagArg folds one more read form into args/kwargs per the arity
// loop in Parser._tag: a Kwarg with K=="*" splices V (expected to be a
// slice) into args, K=="**" merges V (expected to be a map) into kwargs,
// and any other Kwarg sets kwargs[munge(escape(K))]; anything else is
// appended positionally. Mirrors Parser._collect.
func collectTagArg(args *[]any, kwargs map[string]any, x any) {
	if kw, ok := x.(Kwarg); ok {
		switch kw.K {
		case "*":
			switch items := kw.V.(type) {
			case []any:
				*args = append(*args, items...)
			case Tuple:
				*args = append(*args, items...)
			case PyList:
				*args = append(*args, items...)
			}
		case "**":
			if m, ok := kw.V.(map[string]any); ok {
				for k, v := range m {
					kwargs[k] = v
				}
			}
		default:
			kwargs[Munge(escapeAtom(kw.K))] = kw.V
		}
		return
	}
	*args = append(*args, x)
}

// tagLabel computes the attribute/qualified name a tag's text resolves to:
// the tag text with its trailing '#' run (arity many of them) stripped,
// escaped and munged, with a leading literal '.' force-encoded so it can
// never be mistaken for a fully-qualified separator. Mirrors Parser._label.
func tagLabel(tag string, arity int) string {
	label := Munge(escapeAtom(tag[:len(tag)-arity]))
	if strings.HasPrefix(label, ".") {
		label = forceQzEncode('.') + label[1:]
	}
	return label
}

// tagArity counts the trailing (unescaped) '#' characters on a tag token,
// i.e. how many argument forms it consumes.
func tagArity(tag string) int {
	n := 0
	for i := len(tag) - 1; i >= 0; i-- {
		if tag[i] != '#' {
			break
		}
		n++
	}
	bs := 0
	for j := len(tag) - n - 1; j >= 0 && tag[j] == '\\'; j-- {
		bs++
	}
	if bs%2 == 1 {
		n--
	}
	return n
}

// resolveTag looks up the TagFunc a label names: fully-qualified
// ("module..name") goes through the ModuleSet registry (this process's
// stand-in for `import_module` + attribute chasing); otherwise it's an
// attribute of env's own `_macro_` namespace, suffixed with munge("#").
func resolveTag(label string, env *Env, modules *ModuleSet) (TagFunc, error) {
	if idx := strings.Index(label, ".."); idx >= 0 {
		module, function := label[:idx], label[idx+2:]
		if strings.HasPrefix(function, MacrosAttr+".") && !strings.Contains(function[len(MacrosAttr)+1:], ".") {
			function += Munge("#")
		}
		return resolveFullyQualifiedTag(module, function, modules)
	}
	return resolveLocalTag(label, env)
}

// resolveFullyQualifiedTag looks up a `module..name#` (or the equivalent
// `module.._macro_.name#` spelling resolveTag already normalized to the
// same shape) reader tag in module's registered tag namespace. The
// original also supports a fully-qualified tag naming an arbitrary
// top-level callable elsewhere in the target module (no `_macro_` infix,
// any attribute chain) by dynamically importing that module and chasing
// getattr — there is no Go equivalent of that (no dynamic module-attribute
// resolution), so only a tag explicitly registered under the target
// module's own tag namespace can be found this way.
func resolveFullyQualifiedTag(module, function string, modules *ModuleSet) (TagFunc, error) {
	env, ok := modules.Lookup(module)
	if !ok {
		return nil, fmt.Errorf("hissp: module %q is not registered in this compilation", module)
	}
	name := strings.TrimSuffix(function, Munge("#"))
	name = strings.TrimPrefix(name, MacrosAttr+".")
	fn, ok := env.Tags[name]
	if !ok {
		return nil, fmt.Errorf("hissp: module %q has no tag %q", module, name)
	}
	return fn, nil
}

func resolveLocalTag(tag string, env *Env) (TagFunc, error) {
	tag = strings.ReplaceAll(tag, ".", forceQzEncode('.'))
	fn, ok := env.Tags[tag]
	if !ok {
		return nil, fmt.Errorf("hissp: unknown tag %q", tag)
	}
	return fn, nil
}

// escapeAtom processes backslash escapes in a raw token: "\." and "\:" force
// their Quotez encoding (since those characters are meaningful to the
// reader), any other "\x" becomes a literal "x". Mirrors Parser.escape.
func escapeAtom(atom string) string {
	var sb strings.Builder
	runes := []rune(atom)
	for i := 0; i < len(runes); i++ {
		if runes[i] == '\\' && i+1 < len(runes) {
			i++
			c := runes[i]
			if c == '.' || c == ':' {
				sb.WriteString(forceQzEncode(c))
			} else {
				sb.WriteRune(c)
			}
			continue
		}
		sb.WriteRune(runes[i])
	}
	return sb.String()
}
