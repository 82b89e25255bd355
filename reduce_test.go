package gosolve

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// reduceSides runs the reducer the way a solve does: groups first, deepest
// first, then both sides.
func reduceSides(t *testing.T, in string) (lhs, rhs Value, r *reducer) {
	t.Helper()
	text := Normalize(in)
	br, err := resolveBrackets(text)
	require.NoError(t, err)
	p, err := parseText(text, br)
	require.NoError(t, err)

	r = newReducer()
	roots := []Expr{p.lhs}
	if p.hasEq {
		roots = append(roots, p.rhs)
	}
	require.NoError(t, r.primeGroups(roots, br))
	lhs, err = r.reduce(p.lhs)
	require.NoError(t, err)
	if p.hasEq {
		rhs, err = r.reduce(p.rhs)
		require.NoError(t, err)
	}
	return lhs, rhs, r
}

func TestValue(t *testing.T) {
	v := Resolved(2.5)
	assert.True(t, v.IsResolved())
	assert.Equal(t, 2.5, v.Number())
	assert.Equal(t, "2.5", v.String())

	u := Unresolved(NewSym("x"))
	assert.False(t, u.IsResolved())
	assert.Equal(t, "x", u.Expr().String())
}

func TestReduce_FoldsNumericSubtrees(t *testing.T) {
	lhs, rhs, _ := reduceSides(t, "2+3*4=sqrt(16)^2")
	require.True(t, lhs.IsResolved())
	assert.Equal(t, 14.0, lhs.Number())
	assert.Equal(t, 16.0, rhs.Number())
}

func TestReduce_MemoizesEqualGroups(t *testing.T) {
	lhs, rhs, r := reduceSides(t, "(1+2)*(1+2)+x=9")

	assert.Equal(t, "9+x", lhs.String())
	assert.Equal(t, 9.0, rhs.Number())
	// One miss while priming, then every later lookup hits.
	assert.Equal(t, 3, r.hits)
}

func TestReduce_KeepsGroupAroundUnknown(t *testing.T) {
	lhs, _, _ := reduceSides(t, "2*(x+(1+1))=8")
	assert.Equal(t, "2*(x+2)", lhs.String())

	g := lhs.Expr().(*BinOp).Right().(*Group)
	assert.Equal(t, "(x+(1+1))", g.Source())
}

func TestReduce_DomainError(t *testing.T) {
	text := Normalize("x+ln(0)=1")
	br, err := resolveBrackets(text)
	require.NoError(t, err)
	p, err := parseText(text, br)
	require.NoError(t, err)

	r := newReducer()
	require.NoError(t, r.primeGroups([]Expr{p.lhs, p.rhs}, br))
	_, err = r.reduce(p.lhs)
	assert.ErrorIs(t, err, ErrArithmeticDomain)
}

func TestMergeAdditive(t *testing.T) {
	cases := map[string]string{
		"2+3+c+2-3=0": "5+c-1",
		"c+2-2=0":     "c",
		"2-3+c=0":     "-1+c",
		"c-1-1=0":     "c-2",
		"-c+1+1=0":    "-c+2",
		"c*2+1=0":     "c*2+1",
	}
	for in, want := range cases {
		lhs, _, _ := reduceSides(t, in)
		assert.Equal(t, want, lhs.String(), in)
	}
}

func TestFlattenAdditive_StopsAtBrackets(t *testing.T) {
	p := mustParse(t, "a-(b+c)-d")
	terms := flattenAdditive(p.lhs, false, nil)
	require.Len(t, terms, 3)
	assert.False(t, terms[0].neg)
	assert.True(t, terms[1].neg)
	assert.IsType(t, &Group{}, terms[1].e)
	assert.True(t, terms[2].neg)
}
