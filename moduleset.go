package hissp

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/spf13/afero"
)

// SourceLoader resolves a module qualname to its .lissp source, standing in
// for the original's `importlib.import_module` + `resources.path` pair.
// ModuleSet holds one, but nothing in this package calls it: fully-qualified
// reader tags and macros resolve only through the registered Envs.
// Mirrors pongo2's TemplateLoader interface (Abs/Get) adapted from template
// paths to module qualnames.
type SourceLoader interface {
	// Abs resolves name (possibly relative to base) to a filesystem path.
	Abs(base, name string) string
	// Get opens the .lissp source at path.
	Get(path string) (afero.File, error)
}

// FsLoader is the default SourceLoader, reading .lissp files directly off
// an afero.Fs (the real OS filesystem in production, an in-memory one in
// tests), mirroring pongo2's LocalFileSystemLoader.
type FsLoader struct {
	Fs   afero.Fs
	Root string
}

// NewFsLoader wraps the OS filesystem rooted at root ("" for the working
// directory).
func NewFsLoader(root string) *FsLoader {
	return &FsLoader{Fs: afero.NewOsFs(), Root: root}
}

func (l *FsLoader) Abs(base, name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	dir := l.Root
	if base != "" {
		dir = filepath.Dir(base)
	}
	return filepath.Join(dir, name)
}

func (l *FsLoader) Get(path string) (afero.File, error) {
	return l.Fs.Open(path)
}

// ModuleSet is a registry of compile-time environments, one per module
// qualname compiled so far in this process, used for cross-module qualified
// macro/tag lookup (`module..name` or `module..name#`) — the Go analogue of
// registering dynamically-created modules in sys.modules. Mirrors
// pongo2's TemplateSet: a registry keyed by name, a debug-gated logger, and
// a Loader field (which no lookup here uses).
type ModuleSet struct {
	Loader SourceLoader
	Debug  bool

	modules map[string]*Env
	mu      sync.Mutex
	logger  *log.Logger
}

// NewModuleSet creates a registry backed by loader (nil selects the working
// directory on the OS filesystem, via FsLoader). A "builtins" Env is always
// present, empty until RegisterBuiltinTag populates it, so a
// fully-qualified `builtins..name#` tag resolves the same way any other
// module-qualified reference does.
func NewModuleSet(loader SourceLoader) *ModuleSet {
	if loader == nil {
		loader = NewFsLoader("")
	}
	return &ModuleSet{
		Loader:  loader,
		modules: map[string]*Env{"builtins": NewEnv("builtins")},
		logger:  log.New(os.Stdout, "[hissp] ", log.LstdFlags),
	}
}

// RegisterBuiltinTag installs fn as a `builtins..name#` reader tag, for the
// handful of standard tags (e.g. float#) that don't belong to any one
// user module.
func (ms *ModuleSet) RegisterBuiltinTag(name string, fn TagFunc) {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	ms.modules["builtins"].DefTag(name, fn)
}

// Register installs env under its own Name, so later qualified lookups
// (`env.Name..foo`) can find it. Called once a module finishes compiling.
func (ms *ModuleSet) Register(env *Env) {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	ms.modules[env.Name] = env
}

// Lookup finds the Env registered under qualname, if any.
func (ms *ModuleSet) Lookup(qualname string) (*Env, bool) {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	e, ok := ms.modules[qualname]
	return e, ok
}

// ResolveMacro finds a qualified macro `module.._macro_.name` by splitting
// on the separator and looking the module up in the registry — this
// process's analogue of `reduce(getattr, ..., import_module(module))`,
// since Go binaries can't dynamically import an arbitrary Python module.
func (ms *ModuleSet) ResolveMacro(qualname, name string) (MacroFunc, error) {
	env, ok := ms.Lookup(qualname)
	if !ok {
		return nil, fmt.Errorf("hissp: module %q is not registered in this compilation", qualname)
	}
	fn, ok := env.Macros[name]
	if !ok {
		return nil, fmt.Errorf("hissp: module %q has no macro %q", qualname, name)
	}
	return fn, nil
}

func (ms *ModuleSet) logf(format string, args ...any) {
	if ms.Debug {
		ms.logger.Printf(format, args...)
	}
}

// qualnameFromPath derives a module qualname from a .lissp file path and an
// optional dotted package prefix, mirroring transpile_file's
// f"{package}.{stem}" construction.
func qualnameFromPath(path, pkg string) string {
	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	if pkg == "" {
		return stem
	}
	return pkg + "." + stem
}
