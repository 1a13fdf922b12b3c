package hissp

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTemplateFormQualifiesBareSymbol(t *testing.T) {
	env := NewEnv("mymod")
	out, err := templateForm("foo", env)
	require.NoError(t, err)
	require.Equal(t, Tuple{"quote", "mymod..foo"}, out)
}

func TestTemplateFormPassesAtomsThrough(t *testing.T) {
	env := NewEnv("mymod")
	out, err := templateForm(int64(42), env)
	require.NoError(t, err)
	require.Equal(t, int64(42), out)
}

func TestTemplateFormUnquotePlainSubstitutesValue(t *testing.T) {
	env := NewEnv("mymod")
	out, err := templateForm(unquoteForm{target: unquotePlain, value: "x"}, env)
	require.NoError(t, err)
	require.Equal(t, "x", out)
}

func TestTemplateFormSpliceOutsideTupleErrors(t *testing.T) {
	env := NewEnv("mymod")
	_, err := templateForm(unquoteForm{target: unquoteSplice, value: "x"}, env)
	require.Error(t, err)
}

func TestTemplateFormNodeBuildsEntupleSpine(t *testing.T) {
	env := NewEnv("mymod")
	out, err := templateForm(Tuple{"a", "b"}, env)
	require.NoError(t, err)
	tup, ok := out.(Tuple)
	require.True(t, ok)
	require.Equal(t, "", tup[0])
	require.Equal(t, ":", tup[1])
	require.Equal(t, ":?", tup[len(tup)-2])
	require.Equal(t, "", tup[len(tup)-1])
}

func TestTemplateFormsQualifiesOnlyHeadAsInvocation(t *testing.T) {
	env := NewEnv("mymod")
	env.DefMacro("a", func(tail []any) (any, error) { return nil, nil })
	env.DefMacro("b", func(tail []any) (any, error) { return nil, nil })
	out, err := templateForms(Tuple{"a", "b"}, env)
	require.NoError(t, err)
	// "a" is the invocation head: qualifies against its macro namespace.
	require.Equal(t, Tuple{"quote", "mymod.._macro_.a"}, out[1])
	// "b" is a plain argument: never treated as invocation-position, even
	// though it is itself a known macro name.
	require.Equal(t, Tuple{"quote", "mymod..b"}, out[3])
}

func TestTemplateFormsSpliceEmitsStarTag(t *testing.T) {
	env := NewEnv("mymod")
	out, err := templateForms(Tuple{unquoteForm{target: unquoteSplice, value: "xs"}}, env)
	require.NoError(t, err)
	require.Equal(t, []any{":*", "xs"}, out)
}
