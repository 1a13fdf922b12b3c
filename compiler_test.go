package hissp

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
)

func TestCompileSourceSimpleCall(t *testing.T) {
	env := NewEnv("mymod")
	c := NewCompiler(env, NewModuleSet(nil))
	out, err := c.CompileSource("(print 'hello)", "mymod.lissp")
	require.NoError(t, err)
	require.Equal(t, "print(\n  'hello')", out)
}

func TestCompileSourceStripsShebang(t *testing.T) {
	env := NewEnv("mymod")
	c := NewCompiler(env, NewModuleSet(nil))
	out, err := c.CompileSource("#!/usr/bin/env hissp\n(print 'hi)", "mymod.lissp")
	require.NoError(t, err)
	require.Equal(t, "print(\n  'hi')", out)
}

func TestCompileSourceRegistersEnvForQualifiedLookup(t *testing.T) {
	env := NewEnv("mymod")
	env.DefMacro("double", doubleMacro)
	modules := NewModuleSet(nil)
	c := NewCompiler(env, modules)
	_, err := c.CompileSource("(print 'hi)", "mymod.lissp")
	require.NoError(t, err)
	got, ok := modules.Lookup("mymod")
	require.True(t, ok)
	require.Same(t, env, got)
}

func TestCompileSourcePropagatesReadError(t *testing.T) {
	env := NewEnv("mymod")
	c := NewCompiler(env, NewModuleSet(nil))
	_, err := c.CompileSource("(print", "mymod.lissp")
	require.Error(t, err)
}

func TestTranspileFileWritesSiblingPythonFile(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "pkg/mymod.lissp", []byte("(print 'hi)"), 0644))
	modules := NewModuleSet(nil)
	qualname, python, err := TranspileFile(fs, "pkg/mymod.lissp", "pkg", modules, nil)
	require.NoError(t, err)
	require.Equal(t, "pkg.mymod", qualname)
	require.Equal(t, "print(\n  'hi')", python)
	written, err := afero.ReadFile(fs, "pkg/mymod.py")
	require.NoError(t, err)
	require.Equal(t, python, string(written))
}
