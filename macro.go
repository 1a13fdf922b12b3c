package hissp

import (
	"fmt"
	"strings"
)

// resolveMacro finds the MacroFunc an invocation head names, in this order:
// a head already qualified against this env's own qualname wins outright;
// any other `<module>.._macro_.<name>` is resolved through the module
// registry (mirroring `eval`ing a qualified identifier); a tentative
// `<module>..QzMaybe_.<name>` is tried against env's own `_macro_`
// namespace and is an ordinary call on a miss; finally a bare, unqualified
// name is tried directly against env's own `_macro_` namespace (a macro may
// recursively invoke itself, or a sibling defined earlier in the same
// file, without qualification). Returns (nil, false) when head isn't a
// macro invocation at all — an ordinary call.
func resolveMacro(head string, env *Env, modules *ModuleSet) (MacroFunc, bool, error) {
	if qualname, name, ok := splitMacroRef(head); ok {
		if qualname == env.Name {
			if fn, ok := env.Macros[name]; ok {
				return fn, true, nil
			}
			// A firm qualified reference to this very module names a
			// macro that must exist; unlike the tentative "..QzMaybe_."
			// form below, a miss here is an error, not a fallback to an
			// ordinary call.
			return nil, true, fmt.Errorf("hissp: module %q has no macro %q", qualname, name)
		}
		fn, err := modules.ResolveMacro(qualname, name)
		if err != nil {
			return nil, true, err
		}
		return fn, true, nil
	}
	if maybeName, ok := splitMaybeRef(head); ok {
		if fn, ok := env.Macros[maybeName]; ok {
			return fn, true, nil
		}
		return nil, false, nil // tentative reference that didn't pan out: ordinary call
	}
	if !strings.Contains(head, ".") {
		if fn, ok := env.Macros[head]; ok {
			return fn, true, nil
		}
	}
	return nil, false, nil
}

// splitMacroRef splits a head of the exact shape "<qualname>.._macro_.<name>".
func splitMacroRef(head string) (qualname, name string, ok bool) {
	idx := strings.Index(head, MacroSuffix)
	if idx < 0 {
		return "", "", false
	}
	return head[:idx], head[idx+len(MacroSuffix):], true
}

// splitMaybeRef splits a head of the exact shape "<qualname>..QzMaybe_.<name>",
// returning just name (qualname is always this env's own, by construction
// of the qualify step that produced this reference).
func splitMaybeRef(head string) (name string, ok bool) {
	idx := strings.Index(head, MaybeSuffix)
	if idx < 0 {
		return "", false
	}
	return head[idx+len(MaybeSuffix):], true
}
