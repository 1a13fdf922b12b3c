package hissp

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFormAtomRoundTripsPlainInt(t *testing.T) {
	em := NewEmitter(NewEnv("mymod"), NewModuleSet(nil))
	out, err := em.Form(int64(42))
	require.NoError(t, err)
	require.Equal(t, "(42)", out)
}

func TestFormQuoteCompilesToAtom(t *testing.T) {
	em := NewEmitter(NewEnv("mymod"), NewModuleSet(nil))
	out, err := em.Form(Tuple{"quote", Tuple{"a", "b"}})
	require.NoError(t, err)
	require.Equal(t, "('a',\n 'b',)", out)
}

func TestFormQuoteRequiresOneArgument(t *testing.T) {
	em := NewEmitter(NewEnv("mymod"), NewModuleSet(nil))
	_, err := em.Form(Tuple{"quote"})
	require.Error(t, err)
}

func TestFormOrdinaryCall(t *testing.T) {
	em := NewEmitter(NewEnv("mymod"), NewModuleSet(nil))
	out, err := em.Form(Tuple{"print", "x", "y"})
	require.NoError(t, err)
	require.Equal(t, "print(\n  x,\n  y)", out)
}

func TestFormMethodCall(t *testing.T) {
	em := NewEmitter(NewEnv("mymod"), NewModuleSet(nil))
	out, err := em.Form(Tuple{".upper", "x"})
	require.NoError(t, err)
	require.Equal(t, "x.upper()", out)
}

func TestFormMethodCallRequiresSelf(t *testing.T) {
	em := NewEmitter(NewEnv("mymod"), NewModuleSet(nil))
	_, err := em.Form(Tuple{".upper"})
	require.Error(t, err)
}

func TestFormCallWithKwargs(t *testing.T) {
	em := NewEmitter(NewEnv("mymod"), NewModuleSet(nil))
	out, err := em.Form(Tuple{"f", ":", "k", "v"})
	require.NoError(t, err)
	require.Equal(t, "f(\n  k=v)", out)
}

func TestFormControlWordPassesThroughAsAtom(t *testing.T) {
	em := NewEmitter(NewEnv("mymod"), NewModuleSet(nil))
	out, err := em.Form(":?")
	require.NoError(t, err)
	require.Equal(t, "':?'", out)
}

func TestStrTripleDotPassesThroughUntouched(t *testing.T) {
	em := NewEmitter(NewEnv("mymod"), NewModuleSet(nil))
	out, err := em.str("x...y")
	require.NoError(t, err)
	require.Equal(t, "x...y", out)
}

func TestStrPlainIdentifierPassesThrough(t *testing.T) {
	em := NewEmitter(NewEnv("mymod"), NewModuleSet(nil))
	out, err := em.str("x")
	require.NoError(t, err)
	require.Equal(t, "x", out)
}

func TestStrNonIdentifierCodePassesThrough(t *testing.T) {
	em := NewEmitter(NewEnv("mymod"), NewModuleSet(nil))
	out, err := em.str("x + 1")
	require.NoError(t, err)
	require.Equal(t, "x + 1", out)
}

func TestQualifiedIdentifierForeignModule(t *testing.T) {
	em := NewEmitter(NewEnv("mymod"), NewModuleSet(nil))
	out := em.qualifiedIdentifier("math..floor")
	require.Equal(t, "__import__('math').floor", out)
}

func TestQualifiedIdentifierDottedModuleUsesFromlist(t *testing.T) {
	em := NewEmitter(NewEnv("mymod"), NewModuleSet(nil))
	out := em.qualifiedIdentifier("pkg.sub..attr")
	require.Equal(t, "__import__('pkg.sub',fromlist='?').attr", out)
}

func TestQualifiedIdentifierOwnModuleUsesGlobals(t *testing.T) {
	em := NewEmitter(NewEnv("mymod"), NewModuleSet(nil))
	out := em.qualifiedIdentifier("mymod..foo")
	require.Equal(t, "__import__('builtins').globals()['foo']", out)
}

func TestModuleIdentifier(t *testing.T) {
	em := NewEmitter(NewEnv("mymod"), NewModuleSet(nil))
	out := em.moduleIdentifier("pkg.sub.")
	require.Equal(t, "__import__('pkg.sub',fromlist='?')", out)
}

func TestFunctionNoParametersEmptyBody(t *testing.T) {
	em := NewEmitter(NewEnv("mymod"), NewModuleSet(nil))
	out, err := em.Form(Tuple{"lambda", Tuple{}})
	require.NoError(t, err)
	require.Equal(t, "(lambda :())", out)
}

func TestFunctionSingleBodyForm(t *testing.T) {
	em := NewEmitter(NewEnv("mymod"), NewModuleSet(nil))
	out, err := em.Form(Tuple{"lambda", Tuple{"x"}, "x"})
	require.NoError(t, err)
	require.Equal(t, "(lambda x:x)", out)
}

func TestFunctionMultipleBodyFormsSubscriptsLast(t *testing.T) {
	em := NewEmitter(NewEnv("mymod"), NewModuleSet(nil))
	out, err := em.Form(Tuple{"lambda", Tuple{}, "a", "b"})
	require.NoError(t, err)
	require.Equal(t, "(lambda :(\n  a,\n  b)[-1])", out)
}

func TestParametersSlashAndStar(t *testing.T) {
	em := NewEmitter(NewEnv("mymod"), NewModuleSet(nil))
	params := Tuple{"a", ":", ":/", ":?", ":*", "args"}
	out, err := em.parameters(params)
	require.NoError(t, err)
	require.Equal(t, "a,/,*args", out)
}

func TestParametersDefaultValuePair(t *testing.T) {
	em := NewEmitter(NewEnv("mymod"), NewModuleSet(nil))
	params := Tuple{":", "a", int64(1)}
	out, err := em.parameters(params)
	require.NoError(t, err)
	require.Equal(t, "a=(1)", out)
}

func TestParametersBareNameViaQuestionMark(t *testing.T) {
	em := NewEmitter(NewEnv("mymod"), NewModuleSet(nil))
	params := Tuple{":", "a", ":?"}
	out, err := em.parameters(params)
	require.NoError(t, err)
	require.Equal(t, "a", out)
}

func TestParametersStarArgsAndKwargs(t *testing.T) {
	em := NewEmitter(NewEnv("mymod"), NewModuleSet(nil))
	params := Tuple{":", ":*", "args", ":**", "kwargs"}
	out, err := em.parameters(params)
	require.NoError(t, err)
	require.Equal(t, "*args,**kwargs", out)
}

func TestParametersBareStarNoRestName(t *testing.T) {
	em := NewEmitter(NewEnv("mymod"), NewModuleSet(nil))
	params := Tuple{":", ":*", ":?"}
	out, err := em.parameters(params)
	require.NoError(t, err)
	require.Equal(t, "*", out)
}

func TestAtomStringRoundTrips(t *testing.T) {
	em := NewEmitter(NewEnv("mymod"), NewModuleSet(nil))
	out, err := em.atom("hello")
	require.NoError(t, err)
	require.Equal(t, "'hello'", out)
}

func TestAtomNoneTrueFalse(t *testing.T) {
	em := NewEmitter(NewEnv("mymod"), NewModuleSet(nil))
	n, err := em.atom(nil)
	require.NoError(t, err)
	require.Equal(t, "None", n)
	tr, err := em.atom(true)
	require.NoError(t, err)
	require.Equal(t, "True", tr)
}

func TestAtomEllipsis(t *testing.T) {
	em := NewEmitter(NewEnv("mymod"), NewModuleSet(nil))
	out, err := em.atom(Ellipsis)
	require.NoError(t, err)
	require.Equal(t, "...", out)
}

func TestAtomFloatRoundTrips(t *testing.T) {
	em := NewEmitter(NewEnv("mymod"), NewModuleSet(nil))
	out, err := em.atom(3.5)
	require.NoError(t, err)
	require.Equal(t, "(3.5)", out)
}

func TestAtomListRoundTrips(t *testing.T) {
	em := NewEmitter(NewEnv("mymod"), NewModuleSet(nil))
	out, err := em.atom(PyList{int64(1), int64(2)})
	require.NoError(t, err)
	require.Equal(t, "[1, 2]", out)
}

func TestAtomEmptySetEmitsStarredEmptyStringLiteral(t *testing.T) {
	em := NewEmitter(NewEnv("mymod"), NewModuleSet(nil))
	out, err := em.atom(PySet{})
	require.NoError(t, err)
	require.Equal(t, "{*''}", out, "set() is never emitted by name since it could be shadowed")
}

func TestAtomNonEmptySetRoundTrips(t *testing.T) {
	em := NewEmitter(NewEnv("mymod"), NewModuleSet(nil))
	out, err := em.atom(PySet{int64(1)})
	require.NoError(t, err)
	require.Equal(t, "{1}", out)
}

func TestCompileJoinsFormsWithBlankLine(t *testing.T) {
	env := NewEnv("mymod")
	em := NewEmitter(env, NewModuleSet(nil))
	out, err := em.Compile([]any{Tuple{"print", "x"}, Tuple{"print", "y"}})
	require.NoError(t, err)
	require.Equal(t, "print(\n  x)\n\nprint(\n  y)", out)
}

func TestCompileMacroExpandsBeforeEmitting(t *testing.T) {
	env := NewEnv("mymod")
	env.DefMacro("double", doubleMacro)
	em := NewEmitter(env, NewModuleSet(nil))
	out, err := em.Compile([]any{Tuple{"double", "x"}})
	require.NoError(t, err)
	require.Equal(t, "'doubled'", out)
}
