package hissp

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestREPLCompletesSingleLineForm(t *testing.T) {
	var out, errw bytes.Buffer
	r := NewREPL(NewEnv("__main__"), NewModuleSet(nil), &out, &errw)
	r.Run(strings.NewReader("(print 'hi)\n"))
	require.Empty(t, out.String(), "program output only ever comes from an attached Executor")
	require.Contains(t, errw.String(), "print(")
	require.Contains(t, errw.String(), "'hi'")
}

func TestREPLContinuesOnUnclosedForm(t *testing.T) {
	var out, errw bytes.Buffer
	r := NewREPL(NewEnv("__main__"), NewModuleSet(nil), &out, &errw)
	r.Run(strings.NewReader("(print\n'hi)\n"))
	require.Empty(t, out.String())
	require.Contains(t, errw.String(), Ps2)
	require.Contains(t, errw.String(), "print(")
}

func TestREPLWithNilExecutorStaysCompileOnly(t *testing.T) {
	var out, errw bytes.Buffer
	r := NewREPL(NewEnv("__main__"), NewModuleSet(nil), &out, &errw)
	require.Nil(t, r.Executor)
	r.Run(strings.NewReader("(print 'hi)\n"))
	require.Empty(t, out.String())
}

func TestREPLReportsHardError(t *testing.T) {
	var out, errw bytes.Buffer
	r := NewREPL(NewEnv("__main__"), NewModuleSet(nil), &out, &errw)
	r.Run(strings.NewReader(")\n"))
	require.NotEmpty(t, errw.String())
}
