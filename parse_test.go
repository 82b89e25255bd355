package gosolve

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustParse(t *testing.T, in string) *parsed {
	t.Helper()
	text := Normalize(in)
	br, err := resolveBrackets(text)
	require.NoError(t, err)
	p, err := parseText(text, br)
	require.NoError(t, err)
	return p
}

func TestParseText_Associativity(t *testing.T) {
	sub := mustParse(t, "1-2-3").lhs.(*BinOp)
	assert.Equal(t, OpSub, sub.Op())
	assert.Equal(t, "1-2", sub.Left().String())

	pow := mustParse(t, "2^3^2").lhs.(*BinOp)
	assert.Equal(t, OpPow, pow.Op())
	assert.Equal(t, "3^2", pow.Right().String())
}

func TestParseText_UnarySign(t *testing.T) {
	neg, ok := mustParse(t, "-x^2").lhs.(*Neg)
	require.True(t, ok)
	assert.IsType(t, &BinOp{}, neg.Arg())

	pow := mustParse(t, "2^-x").lhs.(*BinOp)
	assert.IsType(t, &Neg{}, pow.Right())

	mul := mustParse(t, "-2*x").lhs.(*BinOp)
	assert.Equal(t, OpMul, mul.Op())
	assert.IsType(t, &Neg{}, mul.Left())
}

func TestParseText_Groups(t *testing.T) {
	p := mustParse(t, "((x+1))*2=4")
	require.True(t, p.hasEq)

	outer := p.lhs.(*BinOp).Left().(*Group)
	assert.Equal(t, "((x+1))", outer.Source())
	assert.Equal(t, 1, outer.Depth())
	assert.Equal(t, 0, outer.Offset())

	inner := outer.Inner().(*Group)
	assert.Equal(t, "(x+1)", inner.Source())
	assert.Equal(t, 2, inner.Depth())
}

func TestParseText_ConstantsBecomeLiterals(t *testing.T) {
	p := mustParse(t, "exp(x)=exp")
	call := p.lhs.(*Call)
	assert.Equal(t, FnExp, call.Func())
	assert.IsType(t, &Num{}, p.rhs)
}

func TestParseText_Malformed(t *testing.T) {
	for _, in := range []string{"x+", "x=", "=x", "x*()", "2**x", "x=1)(", "sin"} {
		text := Normalize(in)
		br, err := resolveBrackets(text)
		if err != nil {
			continue
		}
		_, err = parseText(text, br)
		assert.Error(t, err, in)
	}
}

func TestExpr_StringAddsBrackets(t *testing.T) {
	a, b, c := NewSym("a"), NewSym("b"), NewSym("c")
	cases := []struct {
		e    Expr
		want string
	}{
		{&BinOp{op: OpSub, left: &BinOp{op: OpSub, left: a, right: b}, right: c}, "a-b-c"},
		{&BinOp{op: OpSub, left: a, right: &BinOp{op: OpSub, left: b, right: c}}, "a-(b-c)"},
		{&BinOp{op: OpPow, left: &BinOp{op: OpPow, left: a, right: b}, right: c}, "(a^b)^c"},
		{&BinOp{op: OpPow, left: a, right: &BinOp{op: OpPow, left: b, right: c}}, "a^b^c"},
		{&Neg{arg: &BinOp{op: OpAdd, left: a, right: b}}, "-(a+b)"},
		{&Neg{arg: &BinOp{op: OpPow, left: a, right: NewNum(2)}}, "-a^2"},
		{&BinOp{op: OpPow, left: NewNum(-2), right: NewNum(2)}, "(-2)^2"},
		{&BinOp{op: OpMul, left: NewNum(-2), right: a}, "-2*a"},
		{&Call{fn: FnSin, arg: &BinOp{op: OpDiv, left: a, right: NewNum(2)}}, "sin(a/2)"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, tc.e.String())
	}
}

func TestExpr_EqualAndSize(t *testing.T) {
	x := mustParse(t, "2*(x+1)").lhs
	y := mustParse(t, "2*[x+1]").lhs
	assert.True(t, x.Equal(y))
	assert.Equal(t, 6, x.Size())
	assert.True(t, x.HasUnknown())
	assert.False(t, mustParse(t, "2*(3+1)").lhs.HasUnknown())
}

func TestUnwrap(t *testing.T) {
	g := mustParse(t, "((x))").lhs
	assert.Equal(t, NewSym("x"), unwrap(g))
}
