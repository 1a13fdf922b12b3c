package hissp

import (
	"bufio"
	"io"
	"path/filepath"
	"strings"

	"github.com/juju/errors"
	"github.com/spf13/afero"
)

// Compiler drives one module's worth of Lissp source through read, macro
// expansion, and emission against a single Env, registering the finished
// Env in Modules so later files in the same build can resolve qualified
// references into it. It plays the combined role the original gives its
// Lissp class (a Reader bound to a Compiler) — except there is no embedded
// Python runtime here to exec the compiled-so-far code against, so unlike
// transpile_file, a macro defined earlier in a file does not retroactively
// change how later forms in the *same pass* see it purely from source text:
// callers that need a macro available mid-file must register its MacroFunc
// into Env.Macros directly (see DESIGN.md).
type Compiler struct {
	Env       *Env
	Modules   *ModuleSet
	Evaluator func(form any, env *Env) (any, error) // backs the reader's `.#` inject tag
}

// NewCompiler compiles against env, registering qualified lookups through
// modules.
func NewCompiler(env *Env, modules *ModuleSet) *Compiler {
	return &Compiler{Env: env, Modules: modules}
}

// CompileSource reads, expands, and emits every top-level form in code
// (file is used only for error messages), returning the Python source text.
// A leading shebang line is stripped first, mirroring transpile_file's own
// `re.sub(r"^#!.*\n", "", ...)`.
func (c *Compiler) CompileSource(code, file string) (string, error) {
	code = stripShebang(code)
	r := NewReader(code, file, c.Env, c.Modules, c.Evaluator)
	forms, err := r.ReadAll()
	if err != nil {
		// Left unannotated (unlike the emit-stage error below): callers
		// like REPL.tryCompile need to recover the concrete *SyntaxError
		// to check its Soft flag, and this version of juju/errors predates
		// Go's errors.Unwrap support, so a wrapped error isn't recoverable
		// via errors.As.
		return "", err
	}
	em := NewEmitter(c.Env, c.Modules)
	python, err := em.Compile(forms)
	if err != nil {
		return "", errors.Annotate(err, "hissp: compile")
	}
	c.Modules.Register(c.Env)
	return python, nil
}

func stripShebang(code string) string {
	if !strings.HasPrefix(code, "#!") {
		return code
	}
	if idx := strings.IndexByte(code, '\n'); idx >= 0 {
		return code[idx+1:]
	}
	return ""
}

// TranspileFile compiles the .lissp file at path (on fs) to a sibling .py
// file with the same stem, under the dotted package prefix pkg (""  for an
// unpackaged, top-level module). Returns the qualname the module was
// compiled under and the Python text written. Mirrors transpile_file,
// minus the post-compile exec (this process has no Python to hand the
// result to) and the __file__ bookkeeping that exec would have done.
func TranspileFile(fs afero.Fs, path, pkg string, modules *ModuleSet, evaluator func(any, *Env) (any, error)) (qualname, python string, err error) {
	f, err := fs.Open(path)
	if err != nil {
		return "", "", errors.Annotatef(err, "hissp: open %s", path)
	}
	defer f.Close()
	src, err := io.ReadAll(bufio.NewReader(f))
	if err != nil {
		return "", "", errors.Annotatef(err, "hissp: read %s", path)
	}
	qualname = qualnameFromPath(path, pkg)
	env := NewEnv(qualname)
	env.Package = pkg
	env.File = path
	c := &Compiler{Env: env, Modules: modules, Evaluator: evaluator}
	python, err = c.CompileSource(string(src), path)
	if err != nil {
		return qualname, "", err
	}
	pyPath := strings.TrimSuffix(path, filepath.Ext(path)) + ".py"
	out, err := fs.Create(pyPath)
	if err != nil {
		return qualname, python, errors.Annotatef(err, "hissp: write %s", pyPath)
	}
	defer out.Close()
	if _, err := out.Write([]byte(python)); err != nil {
		return qualname, python, errors.Annotatef(err, "hissp: write %s", pyPath)
	}
	return qualname, python, nil
}
