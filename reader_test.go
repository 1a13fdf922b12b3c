package hissp

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func readAll(t *testing.T, code string) []any {
	t.Helper()
	env := NewEnv("__main__")
	modules := NewModuleSet(nil)
	r := NewReader(code, "<test>", env, modules, nil)
	forms, err := r.ReadAll()
	require.NoError(t, err)
	return forms
}

func TestReaderBareSymbol(t *testing.T) {
	forms := readAll(t, "foo")
	require.Equal(t, []any{"foo"}, forms)
}

func TestReaderBareNumberLiteral(t *testing.T) {
	forms := readAll(t, "42")
	require.Equal(t, []any{int64(42)}, forms)
}

func TestReaderMungesSymbol(t *testing.T) {
	forms := readAll(t, "*foo-bar*")
	require.Equal(t, []any{Munge("*foo-bar*")}, forms)
}

func TestReaderTupleNesting(t *testing.T) {
	forms := readAll(t, "(a (b c))")
	require.Equal(t, []any{Tuple{"a", Tuple{"b", "c"}}}, forms)
}

func TestReaderQuote(t *testing.T) {
	forms := readAll(t, "'a")
	require.Equal(t, []any{Tuple{"quote", "a"}}, forms)
}

func TestReaderUnclosedFormIsSoftError(t *testing.T) {
	env := NewEnv("__main__")
	modules := NewModuleSet(nil)
	r := NewReader("(a b", "<test>", env, modules, nil)
	_, err := r.ReadAll()
	require.Error(t, err)
	se, ok := err.(*SyntaxError)
	require.True(t, ok)
	require.True(t, se.Soft)
}

func TestReaderTooManyClosesIsHardError(t *testing.T) {
	env := NewEnv("__main__")
	modules := NewModuleSet(nil)
	r := NewReader("(a b))", "<test>", env, modules, nil)
	_, err := r.ReadAll()
	require.Error(t, err)
	se, ok := err.(*SyntaxError)
	require.True(t, ok)
	require.False(t, se.Soft)
}

func TestReaderUnicodeToken(t *testing.T) {
	forms := readAll(t, `"hello"`)
	require.Equal(t, []any{`('hello')`}, forms)
	require.True(t, IsLisspUnicode(forms[0]))
}

func TestReaderFragmentToken(t *testing.T) {
	forms := readAll(t, "|x + y|")
	require.Equal(t, []any{"x + y"}, forms)
}

func TestReaderFragmentDoubledPipeEscapes(t *testing.T) {
	forms := readAll(t, "|a||b|")
	require.Equal(t, []any{"a|b"}, forms)
}

func TestReaderDiscardTag(t *testing.T) {
	forms := readAll(t, "(a _#b c)")
	require.Equal(t, []any{Tuple{"a", "c"}}, forms)
}

func TestReaderKwargAndStarargTokens(t *testing.T) {
	forms := readAll(t, "(f x=1 *=args)")
	require.Len(t, forms, 1)
	tup := forms[0].(Tuple)
	require.Equal(t, "f", tup[0])
	require.Equal(t, Kwarg{K: "x", V: int64(1)}, tup[1])
	require.Equal(t, Kwarg{K: "*", V: "args"}, tup[2])
}
