package hissp

import (
	"fmt"
	"io"
	"os/exec"
	"strings"
	"sync"

	"github.com/juju/errors"
)

// execSentinel marks the end of one chunk of compiled Python sent down the
// subprocess's stdin, so pythonDriverTemplate below knows when to stop
// buffering and exec the accumulated chunk. Chosen unlikely to collide with
// a line of real program output or source.
const execSentinel = "#--hissp:exec-chunk-7f3a9c--#"

// pythonDriverTemplate is fed to the interpreter's `-c` so one persistent
// subprocess execs successive chunks of compiled Python against a single
// shared namespace — the out-of-process analogue of the original's
// in-process `exec(code, env)`, which is how both a one-shot run and a
// following `-i` REPL session observe each other's top-level bindings.
const pythonDriverTemplate = `import sys, traceback
sys.argv = sys.argv[1:]
g = {"__name__": "__main__"}
buf = []
for line in sys.stdin:
    if line.rstrip("\n") == %q:
        code = "".join(buf)
        buf = []
        try:
            exec(compile(code, "<hissp>", "exec"), g)
        except SystemExit:
            raise
        except BaseException:
            traceback.print_exc()
        sys.stdout.flush()
        sys.stderr.flush()
    else:
        buf.append(line)
`

// PythonExecutor drives a persistent python3 subprocess that execs
// successive chunks of compiled Python against one shared module
// namespace, standing in for the embedded `exec()` the original runs
// in-process. There is no such runtime inside this Go binary, so "compile
// and run" (spec.md §6) has to mean shelling out.
type PythonExecutor struct {
	cmd   *exec.Cmd
	stdin io.WriteCloser
	mu    sync.Mutex
}

// NewPythonExecutor spawns the interpreter with out/errw wired directly to
// its stdout/stderr, so program output streams through live rather than
// being buffered and replayed. argv becomes the subprocess's sys.argv
// (argv[0] first), mirroring _cmd/_with_args's sys.argv bookkeeping.
func NewPythonExecutor(out, errw io.Writer, argv []string) (*PythonExecutor, error) {
	interp, err := pythonInterpreter()
	if err != nil {
		return nil, errors.Annotate(err, "hissp: locate python interpreter")
	}
	driver := fmt.Sprintf(pythonDriverTemplate, execSentinel)
	args := append([]string{"-u", "-c", driver}, argv...)
	cmd := exec.Command(interp, args...)
	cmd.Stdout = out
	cmd.Stderr = errw
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, errors.Annotate(err, "hissp: open python stdin")
	}
	if err := cmd.Start(); err != nil {
		return nil, errors.Annotate(err, "hissp: start python")
	}
	return &PythonExecutor{cmd: cmd, stdin: stdin}, nil
}

// Exec hands code to the subprocess to compile and exec against its
// persistent namespace. A raised exception prints its own traceback on the
// subprocess's stderr and the driver goes on to the next chunk; the
// exception is not reported back to the caller, so a failing form in
// __main__ neither stops the run nor changes the exit status. Exec's error
// return is reserved for failing to deliver code to the subprocess at all.
func (p *PythonExecutor) Exec(code string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !strings.HasSuffix(code, "\n") {
		code += "\n"
	}
	if _, err := io.WriteString(p.stdin, code); err != nil {
		return errors.Annotate(err, "hissp: write to python")
	}
	if _, err := io.WriteString(p.stdin, execSentinel+"\n"); err != nil {
		return errors.Annotate(err, "hissp: write to python")
	}
	return nil
}

// Close ends the subprocess's stdin and waits for it to exit.
func (p *PythonExecutor) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.stdin.Close(); err != nil {
		return err
	}
	return p.cmd.Wait()
}

// pythonInterpreter finds a python3, falling back to python, on PATH.
func pythonInterpreter() (string, error) {
	for _, name := range []string{"python3", "python"} {
		if path, err := exec.LookPath(name); err == nil {
			return path, nil
		}
	}
	return "", fmt.Errorf("hissp: no python3 or python interpreter found on PATH")
}
