// Command hissp transpiles Lissp source to Python.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/afero"
	"github.com/spf13/pflag"

	hissp "github.com/gilch/hissp"
)

// Version identifies the version of this build. Set by CI during release.
var Version = "dev"

func main() {
	os.Exit(run(os.Args))
}

func run(argv []string) int {
	flags := pflag.NewFlagSet("hissp", pflag.ContinueOnError)
	cmd := flags.StringP("cmd", "c", "", "compile and run this string as the main script")
	interact := flags.BoolP("interact", "i", false, "drop into a REPL after the script, sharing its environment")
	out := flags.StringP("output", "o", "", "write compiled Python here instead of stdout")
	pkg := flags.String("package", "", "dotted package prefix for qualname/import rewriting")
	version := flags.Bool("version", false, "print the version and exit")
	if err := flags.Parse(argv[1:]); err != nil {
		if err == pflag.ErrHelp {
			return 0
		}
		fmt.Fprintln(os.Stderr, err)
		return 2
	}
	if *version {
		fmt.Printf("hissp %s\n", Version)
		return 0
	}

	modules := hissp.NewModuleSet(nil)
	env := hissp.NewEnv("__main__")
	env.Package = *pkg

	var python string
	var err error
	var pyArgv []string
	switch {
	case *cmd != "":
		c := hissp.NewCompiler(env, modules)
		python, err = c.CompileSource(*cmd, "<cmd>")
		pyArgv = append([]string{"-c"}, flags.Args()...)
	case flags.NArg() > 0:
		file := flags.Arg(0)
		src, rerr := readSource(file)
		if rerr != nil {
			fmt.Fprintln(os.Stderr, rerr)
			return 1
		}
		c := hissp.NewCompiler(env, modules)
		python, err = c.CompileSource(src, file)
		pyArgv = append([]string{file}, flags.Args()[1:]...)
	default:
		repl := hissp.NewREPL(env, modules, os.Stdout, os.Stderr)
		executor, eerr := hissp.NewPythonExecutor(os.Stdout, os.Stderr, []string{""})
		if eerr != nil {
			fmt.Fprintln(os.Stderr, eerr)
			return 1
		}
		repl.Executor = executor
		repl.Run(os.Stdin)
		executor.Close()
		return 0
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	// "Compile and run" (spec.md §6): actually exec the compiled Python
	// against a real interpreter, not just print/write its source.
	executor, eerr := hissp.NewPythonExecutor(os.Stdout, os.Stderr, pyArgv)
	if eerr != nil {
		fmt.Fprintln(os.Stderr, eerr)
		return 1
	}
	if eerr := executor.Exec(python); eerr != nil {
		fmt.Fprintln(os.Stderr, eerr)
	}
	if *interact {
		repl := hissp.NewREPL(env, modules, os.Stdout, os.Stderr)
		repl.Executor = executor
		repl.Run(os.Stdin)
	}
	executor.Close()

	if *out == "" {
		fmt.Println(python)
		return 0
	}
	if err := afero.WriteFile(afero.NewOsFs(), *out, []byte(python), 0o644); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

func readSource(path string) (string, error) {
	if path == "-" {
		b, err := io.ReadAll(os.Stdin)
		return string(b), err
	}
	b, err := afero.ReadFile(afero.NewOsFs(), path)
	return string(b), err
}
