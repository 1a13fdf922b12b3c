package hissp

import (
	"bufio"
	"errors"
	"fmt"
	"io"
)

// Prompt strings, matching the original's ps1/ps2 REPL prompts.
const (
	Ps1 = "#> "
	Ps2 = "#.."
)

// REPL is a line-buffering read-compile-execute-print loop, the analogue of
// LisspREPL.runsource/interact. A soft syntax error (an unclosed form,
// string, or comment) re-prompts for another line instead of reporting
// failure, exactly as the original's SoftSyntaxError handling does. Per
// spec.md §6, prompts and echoed compiled Python go to Err (stderr);
// program output goes to Out (stdout) — but only Executor, not REPL
// itself, ever writes to Out, since Out is wired straight into the
// subprocess Executor drives.
type REPL struct {
	Env     *Env
	Modules *ModuleSet
	Out     io.Writer
	Err     io.Writer

	// Executor, if non-nil, receives each successfully compiled form's
	// Python to actually run, sharing one namespace across the session.
	// A nil Executor keeps the REPL compile-only, e.g. in tests that don't
	// want to spawn a real interpreter.
	Executor *PythonExecutor

	buffer string
}

// NewREPL starts a REPL against env, echoing compiled Python and prompts to
// errw (program output, if an Executor is later attached, streams to out).
func NewREPL(env *Env, modules *ModuleSet, out, errw io.Writer) *REPL {
	return &REPL{Env: env, Modules: modules, Out: out, Err: errw}
}

// Run drives the loop over in, reading lines until EOF.
func (r *REPL) Run(in io.Reader) {
	scanner := bufio.NewScanner(in)
	prompt := Ps1
	fmt.Fprint(r.Err, prompt)
	for scanner.Scan() {
		r.buffer += scanner.Text() + "\n"
		python, soft, err := r.tryCompile()
		switch {
		case err != nil && soft:
			prompt = Ps2
		case err != nil:
			fmt.Fprintln(r.Err, err)
			r.buffer = ""
			prompt = Ps1
		default:
			if python != "" {
				fmt.Fprintf(r.Err, "%s%s\n", Ps1, indentPrompt(python))
				if r.Executor != nil {
					if err := r.Executor.Exec(python); err != nil {
						fmt.Fprintln(r.Err, err)
					}
				}
			}
			r.buffer = ""
			prompt = Ps1
		}
		fmt.Fprint(r.Err, prompt)
	}
}

func (r *REPL) tryCompile() (python string, soft bool, err error) {
	c := &Compiler{Env: r.Env, Modules: r.Modules}
	python, err = c.CompileSource(r.buffer, "<repl>")
	if err != nil {
		var se *SyntaxError
		if errors.As(err, &se) && se.Soft {
			return "", true, err
		}
		return "", false, err
	}
	return python, false, nil
}

func indentPrompt(s string) string {
	out := ""
	for i := 0; i < len(s); i++ {
		if s[i] == '\n' {
			out += "\n" + Ps2
		} else {
			out += string(s[i])
		}
	}
	return out
}
