package hissp

import "maps"

// MacroFunc is a compile-time macro: given the unevaluated tail of its
// invocation form, it returns the Hissp form to substitute in its place.
// Unlike a runtime function, it never sees evaluated values, only syntax.
type MacroFunc func(tail []any) (any, error)

// Env is the compile-time namespace threaded explicitly through the reader
// and emitter, playing the role the original gives its module's __dict__:
// qualname, the `_macro_` namespace, and enough of a "globals" view to
// decide whether a builtin name is shadowed. It's passed by parameter
// rather than carried in a goroutine-local or context.Context, following
// the teacher's ExecutionContext-by-parameter idiom (see DESIGN.md).
type Env struct {
	// Name is the qualname (module dotted path) forms are qualified
	// against, e.g. "__main__" or "mypkg.mymod".
	Name string

	// Package is the dotted parent package, or "" for a top-level module.
	Package string

	// File is the source path; TranspileFile sets it. Nothing in the
	// package reads it: no __file__ is emitted from it, and syntax errors
	// take their file name from the Reader.
	File string

	// Globals is the set of names treated as bound in the compiled module,
	// used to check whether a builtin name has been shadowed. Only Bind adds
	// to it; compiling a top-level form does not, so a builtin is treated as
	// shadowed only after its name has been passed to Bind.
	Globals map[string]bool

	// Macros is the module's `_macro_` namespace: every macro defined so
	// far, keyed by its (unqualified, munged) name.
	Macros map[string]MacroFunc

	// Tags is the module's reader-tag namespace: every `_macro_` attribute
	// ending in munge("#"), keyed here without that suffix.
	Tags map[string]TagFunc

	// Annotations mirrors __annotations__, forms that used a ": type"
	// association. It is created and copied by Clone; the emitter does not
	// read it.
	Annotations map[string]string
}

// NewEnv creates an Env for a fresh module named name (defaulting to
// "__main__"), with empty Globals/Macros/Annotations, mirroring
// Compiler.new_ns.
func NewEnv(name string) *Env {
	if name == "" {
		name = "__main__"
	}
	return &Env{
		Name:        name,
		Globals:     map[string]bool{},
		Macros:      map[string]MacroFunc{},
		Tags:        map[string]TagFunc{},
		Annotations: map[string]string{},
	}
}

// Child returns a new Env for a nested qualname (e.g. during recursive
// transpilation of a package), inheriting no state — mirrors new_ns being
// called fresh per module, the way NewChildExecutionContext starts a new
// Private scope instead of mutating the parent's.
func (e *Env) Child(name string) *Env {
	return NewEnv(name)
}

// Bind records that name is now a global in this module, shadowing any
// builtin of the same name for future qualification decisions.
func (e *Env) Bind(name string) {
	e.Globals[name] = true
}

// HasMacro reports whether name is defined in this module's `_macro_`
// namespace.
func (e *Env) HasMacro(name string) bool {
	_, ok := e.Macros[name]
	return ok
}

// DefMacro installs fn as name in this module's `_macro_` namespace.
func (e *Env) DefMacro(name string, fn MacroFunc) {
	e.Macros[name] = fn
}

// HasTag reports whether name is defined as a reader tag in this module.
func (e *Env) HasTag(name string) bool {
	_, ok := e.Tags[name]
	return ok
}

// DefTag installs fn as name in this module's reader-tag namespace.
func (e *Env) DefTag(name string, fn TagFunc) {
	e.Tags[name] = fn
}

// Clone makes a shallow copy of e's maps, used when a sub-compilation
// (e.g. transpiling a package of modules) must not let a later module's
// bindings leak back into an earlier one's Env.
func (e *Env) Clone() *Env {
	c := &Env{Name: e.Name, Package: e.Package, File: e.File}
	c.Globals = maps.Clone(e.Globals)
	c.Macros = maps.Clone(e.Macros)
	c.Tags = maps.Clone(e.Tags)
	c.Annotations = maps.Clone(e.Annotations)
	return c
}
