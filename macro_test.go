package hissp

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestResolveMacroOwnModule(t *testing.T) {
	env := NewEnv("mymod")
	env.DefMacro("double", doubleMacro)
	modules := NewModuleSet(nil)
	fn, isMacro, err := resolveMacro("mymod.._macro_.double", env, modules)
	require.NoError(t, err)
	require.True(t, isMacro)
	require.NotNil(t, fn)
}

func TestResolveMacroForeignModule(t *testing.T) {
	other := NewEnv("othermod")
	other.DefMacro("double", doubleMacro)
	modules := NewModuleSet(nil)
	modules.Register(other)

	env := NewEnv("mymod")
	fn, isMacro, err := resolveMacro("othermod.._macro_.double", env, modules)
	require.NoError(t, err)
	require.True(t, isMacro)
	require.NotNil(t, fn)
}

func TestResolveMacroOwnModuleFirmReferenceMissingErrors(t *testing.T) {
	env := NewEnv("mymod")
	modules := NewModuleSet(nil)
	_, isMacro, err := resolveMacro("mymod.._macro_.nosuch", env, modules)
	require.Error(t, err, "a firm qualified reference to this module must not silently fall back to an ordinary call")
	require.True(t, isMacro)
}

func TestResolveMacroForeignModuleNotRegistered(t *testing.T) {
	env := NewEnv("mymod")
	modules := NewModuleSet(nil)
	_, isMacro, err := resolveMacro("othermod.._macro_.double", env, modules)
	require.Error(t, err)
	require.True(t, isMacro)
}

func TestResolveMacroTentativeMaybeResolvesLocally(t *testing.T) {
	env := NewEnv("mymod")
	env.DefMacro("double", doubleMacro)
	modules := NewModuleSet(nil)
	fn, isMacro, err := resolveMacro("mymod..QzMaybe_.double", env, modules)
	require.NoError(t, err)
	require.True(t, isMacro)
	require.NotNil(t, fn)
}

func TestResolveMacroTentativeMaybeFallsBackToOrdinaryCall(t *testing.T) {
	env := NewEnv("mymod")
	modules := NewModuleSet(nil)
	_, isMacro, err := resolveMacro("mymod..QzMaybe_.notamacro", env, modules)
	require.NoError(t, err)
	require.False(t, isMacro)
}

func TestResolveMacroUnqualifiedLocal(t *testing.T) {
	env := NewEnv("mymod")
	env.DefMacro("double", doubleMacro)
	modules := NewModuleSet(nil)
	fn, isMacro, err := resolveMacro("double", env, modules)
	require.NoError(t, err)
	require.True(t, isMacro)
	require.NotNil(t, fn)
}

func TestResolveMacroUnqualifiedNonMacroIsOrdinaryCall(t *testing.T) {
	env := NewEnv("mymod")
	modules := NewModuleSet(nil)
	_, isMacro, err := resolveMacro("print", env, modules)
	require.NoError(t, err)
	require.False(t, isMacro)
}
