package hissp

import (
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMungeBasic(t *testing.T) {
	require.Equal(t, "QzSTAR_FOOQzH_BARQzSTAR_", Munge("*FOO-BAR*"))
}

func TestMungeIdentifierPassthrough(t *testing.T) {
	require.Equal(t, "foo_bar", Munge("foo_bar"))
	require.Equal(t, "_private", Munge("_private"))
}

func TestMungeDotsSplitSeparately(t *testing.T) {
	require.Equal(t, "QzSTAR_x.foo", Munge("*x.foo"))
}

func TestMungePunctuationTable(t *testing.T) {
	cases := map[string]string{
		"!": "QzBANG_",
		"#": "QzHASH_",
		"$": "QzDOLR_",
		"?": "QzQUERY_",
		"->": "QzH_QzGT_",
	}
	for in, want := range cases {
		assert.Equal(t, want, Munge(in), "munge(%q)", in)
	}
}

func TestDemungeInverse(t *testing.T) {
	x := Munge("*FOO-BAR*")
	require.Equal(t, "*FOO-BAR*", Demunge(x))
}

func TestDemungeRoundTripIsStable(t *testing.T) {
	for _, s := range []string{"foo", "*bar*", "a->b", "x!y?z", "café"} {
		x := Munge(s)
		require.Equal(t, x, Munge(Demunge(x)), "munge(demunge(munge(%q))) should be idempotent", s)
	}
}

func TestDemungeLeavesUnrecognizedTextAlone(t *testing.T) {
	require.Equal(t, "not a quotez QzNOPE", Demunge("not a quotez QzNOPE"))
}

func TestMungeLeadingDigitEscaped(t *testing.T) {
	m := Munge("1x")
	require.True(t, isPyIdentifier(m))
	require.True(t, utf8.ValidString(m))
}
