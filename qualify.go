package hissp

import "regexp"

// MacrosAttr is the namespace attribute Hissp modules use to hold their
// macros, exactly as the original reserves `_macro_`.
const MacrosAttr = "_macro_"

// MacroSuffix and MaybeSuffix are the two ways an invocation head gets
// qualified into a macro reference: a known macro's definite `_macro_`
// namespace, or a tentative "maybe a recursive macro" reference that's
// resolved for real at call time.
const (
	MacroSuffix = ".." + MacrosAttr + "."
	MaybeSuffix = "..QzMaybe_."
)

var gensymPrefixPattern = regexp.MustCompile(`^_Qz[a-z2-7]+__`)

// pyKeywords are Python's reserved words, which can never be qualified
// because they're never valid identifiers to begin with.
var pyKeywords = map[string]bool{
	"False": true, "None": true, "True": true, "and": true, "as": true,
	"assert": true, "async": true, "await": true, "break": true, "class": true,
	"continue": true, "def": true, "del": true, "elif": true, "else": true,
	"except": true, "finally": true, "for": true, "from": true, "global": true,
	"if": true, "import": true, "in": true, "is": true, "lambda": true,
	"nonlocal": true, "not": true, "or": true, "pass": true, "raise": true,
	"return": true, "try": true, "while": true, "with": true, "yield": true,
}

// IsQualifiable reports whether symbol can be prefixed with a module
// qualname: it can't already be dotted-qualified-looking in a way that
// isn't a plain identifier chain, can't be quote/__import__ (special
// forms the emitter recognizes unqualified), can't be a Python keyword,
// can't be a gensym hash's own prefix, and every dot-separated part must
// be a valid Python identifier.
func IsQualifiable(symbol string) bool {
	if symbol == "quote" || symbol == "__import__" {
		return false
	}
	if pyKeywords[symbol] {
		return false
	}
	if gensymPrefixPattern.MatchString(symbol) {
		return false
	}
	for _, part := range splitDots(symbol) {
		if !isPyIdentifier(part) {
			return false
		}
	}
	return true
}

func splitDots(s string) []string {
	var parts []string
	start := 0
	for i, r := range s {
		if r == '.' {
			parts = append(parts, s[start:i])
			start = i + 1
		}
	}
	parts = append(parts, s[start:])
	return parts
}

// Qualify resolves symbol against env's current module namespace, per the
// reader's qualify policy used when instantiating a template: a known
// macro (only when symbol heads an invocation), a known unshadowed
// builtin, a tentative recursive-macro reference, or the plain qualified
// attribute form, in that precedence order.
func Qualify(symbol string, invocation bool, env *Env) string {
	if !IsQualifiable(symbol) {
		return symbol
	}
	if invocation && env.HasMacro(symbol) {
		return env.Name + MacroSuffix + symbol
	}
	if isBuiltin(symbol) && !env.Globals[firstDotPart(symbol)] {
		return "builtins.." + symbol
	}
	if invocation && !containsDot(symbol) {
		return env.Name + MaybeSuffix + symbol
	}
	return env.Name + ".." + symbol
}

func firstDotPart(s string) string {
	for i, r := range s {
		if r == '.' {
			return s[:i]
		}
	}
	return s
}

func containsDot(s string) bool {
	for _, r := range s {
		if r == '.' {
			return true
		}
	}
	return false
}
