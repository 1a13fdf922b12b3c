package hissp

import (
	"fmt"
	"strings"
)

// pair is one (key, value) association from a tuple's kwargs section (the
// part after a bare ":"), used by both call and parameters.
type pair struct {
	k string
	v any
}

// splitSinglesPairs divides a tuple's tail into its positional singles and
// its (key, value) pairs, split on the first bare ":" control word.
// Mirrors the takewhile/_pairs split every tuple-consuming method performs.
func splitSinglesPairs(tail []any) ([]any, []pair, error) {
	i := 0
	for ; i < len(tail); i++ {
		if s, ok := tail[i].(string); ok && s == ":" {
			break
		}
	}
	singles := tail[:i]
	var pairs []pair
	rest := tail[i:]
	if len(rest) > 0 {
		rest = rest[1:] // drop the ":" itself
	}
	for j := 0; j < len(rest); j += 2 {
		if j+1 >= len(rest) {
			return nil, nil, fmt.Errorf("hissp: incomplete pair")
		}
		k, _ := rest[j].(string)
		pairs = append(pairs, pair{k: k, v: rest[j+1]})
	}
	return singles, pairs, nil
}

// invocation tries macro expansion, then falls back to an ordinary call.
// Macro expansion itself is performed up front, over the whole form tree,
// by MacroExpandAll (expand.go) rather than lazily here as the original
// does — so by the time a tuple reaches special/invocation its head has
// already been expanded if it named a macro. invocation's remaining job is
// the one thing that still needs doing post-expansion: resolving a
// tentative "..QzMaybe_." reference that turned out to be an ordinary call
// back to a plain qualified identifier. Mirrors the tail of
// Compiler.invocation, after its macro attempt.
func (em *Emitter) invocation(form Tuple) (string, error) {
	head, _ := form[0].(string)
	resolved := strings.Replace(head, MaybeSuffix, "..", 1)
	newForm := make(Tuple, len(form))
	copy(newForm, form)
	newForm[0] = resolved
	return em.call(newForm)
}

// call compiles an ordinary call form: (<callable> <args> : <kwargs>), or
// a method call (.<method name> <self> <args> : <kwargs>) when the head is
// a string starting with ".". Mirrors Compiler.call.
func (em *Emitter) call(form Tuple) (string, error) {
	head := form[0]
	singles, pairs, err := splitSinglesPairs(form[1:])
	if err != nil {
		return "", err
	}
	argsFormed := make([]string, 0, len(singles)+len(pairs))
	for _, s := range singles {
		v, err := em.Form(s)
		if err != nil {
			return "", err
		}
		argsFormed = append(argsFormed, v)
	}
	for _, p := range pairs {
		v, err := em.pairArg(p.k, p.v)
		if err != nil {
			return "", err
		}
		argsFormed = append(argsFormed, v)
	}
	if headStr, ok := head.(string); ok && strings.HasPrefix(headStr, ".") {
		selfFromPair := len(pairs) > 0 && pairs[0].k == ":?"
		if len(singles) > 0 || selfFromPair {
			self := argsFormed[0]
			rest := argsFormed[1:]
			return fmt.Sprintf("%s.%s(%s)", self, headStr[1:], joinArgs(rest)), nil
		}
		return "", fmt.Errorf("hissp: self must be paired with :?")
	}
	headFormed, err := em.Form(head)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s(%s)", headFormed, joinArgs(argsFormed)), nil
}

// pairArg compiles one kwargs-section pair: ":*"/"**" unpack, ":?" passes
// the value through as a bare positional, anything else becomes a k=v
// keyword argument. A key containing ".." (a qualified kwarg name, rare
// but possible via a macro-generated form) is reduced to its last
// dot-separated segment, since Python keyword names can't be dotted.
// Mirrors Compiler._pair_arg.
func (em *Emitter) pairArg(k string, v any) (string, error) {
	var kk string
	switch k {
	case ":*":
		kk = "*"
	case ":**":
		kk = "**"
	case ":?":
		kk = ""
	default:
		kk = k + "="
	}
	if strings.Contains(kk, "..") {
		parts := strings.Split(kk, ".")
		kk = parts[len(parts)-1]
	}
	formed, err := em.Form(v)
	if err != nil {
		return "", err
	}
	indent := strings.Repeat(" ", len(kk))
	formed = strings.ReplaceAll(formed, "\n", "\n"+indent)
	return kk + formed, nil
}

// joinArgs lays out a call's argument list: each argument on its own
// (indented) line if there are any, an empty parameter list otherwise.
// Mirrors the module-level _join_args helper.
func joinArgs(args []string) string {
	if len(args) == 0 {
		return ""
	}
	s := "\n" + strings.Join(args, ",\n")
	return strings.ReplaceAll(s, "\n", "\n  ")
}
