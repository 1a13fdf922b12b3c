package hissp

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGensymDeterministicForSameSeedAndCounter(t *testing.T) {
	g1 := newGensymState("(a b c)", "__main__")
	g1.pushTemplate(1)
	s1, err := g1.gensym("x")
	require.NoError(t, err)

	g2 := newGensymState("(a b c)", "__main__")
	g2.pushTemplate(1)
	s2, err := g2.gensym("x")
	require.NoError(t, err)

	require.Equal(t, s1, s2)
}

func TestGensymDiffersByTemplateCount(t *testing.T) {
	g1 := newGensymState("(a b c)", "__main__")
	g1.pushTemplate(1)
	s1, err := g1.gensym("x")
	require.NoError(t, err)

	g2 := newGensymState("(a b c)", "__main__")
	g2.pushTemplate(2)
	s2, err := g2.gensym("x")
	require.NoError(t, err)

	require.NotEqual(t, s1, s2)
}

func TestGensymPrefixesBareSymbol(t *testing.T) {
	g := newGensymState("code", "mod")
	g.pushTemplate(1)
	s, err := g.gensym("x")
	require.NoError(t, err)
	require.Regexp(t, `^_Qz[a-z2-7]+__x$`, s)
}

func TestGensymReplacesMarkerOccurrences(t *testing.T) {
	g := newGensymState("code", "mod")
	g.pushTemplate(1)
	form := GensymMarker + "x" + GensymMarker + "y"
	s, err := g.gensym(form)
	require.NoError(t, err)
	require.NotContains(t, s, GensymMarker)
	require.Contains(t, s, "x")
	require.Contains(t, s, "y")
}

func TestGensymOutsideTemplateErrors(t *testing.T) {
	g := newGensymState("code", "mod")
	_, err := g.gensym("x")
	require.ErrorIs(t, err, errGensymOutsideTemplate)
}

func TestUnquoteOutsideTemplateErrors(t *testing.T) {
	g := newGensymState("code", "mod")
	err := g.pushUnquote()
	require.ErrorIs(t, err, errUnquoteOutsideTemplate)
	// A failed push must roll back so the context stack isn't left unbalanced.
	require.Equal(t, 0, len(g.context))
}

func TestCounterBytesMinimalWidth(t *testing.T) {
	require.Equal(t, []byte{0}, counterBytes(0))
	require.Equal(t, []byte{1}, counterBytes(1))
	require.Equal(t, []byte{0, 0xff}, counterBytes(0xff))
}
