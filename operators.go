package gosolve

import (
	"math"
	"strconv"
)

// ============================================================
// Operator table
// ============================================================
//
// The table is built once at package init and only read afterwards, so it is
// safe to share between concurrent solves.

// Op is a primary (binary) operator.
type Op int

const (
	OpAdd Op = iota
	OpSub
	OpMul
	OpDiv
	OpPow
	numOps
)

// Precedence ranks. Unary sign binds tighter than * and / but looser than ^,
// so -x^2 is -(x^2) and 2^-3 is 2^(-3).
const (
	precAdditive = 1
	precMultiply = 2
	precUnary    = 3
	precPower    = 4
	precAtom     = 5
)

type opEntry struct {
	symbol     byte
	prec       int
	rightAssoc bool
	apply      func(a, b float64) (float64, error)
}

var opTable [numOps]opEntry

// Func is a named unary function.
type Func int

const (
	FnSin Func = iota
	FnCos
	FnTan
	FnAsin
	FnAcos
	FnAtan
	FnSqrt
	FnLog10
	FnLn
	FnExp
	numFuncs
)

type funcEntry struct {
	name    string
	apply   func(float64) (float64, error)
	inverse func(float64) (float64, error)
}

var (
	funcTable  [numFuncs]funcEntry
	funcByName map[string]Func
	opBySymbol map[byte]Op
)

// Named constants substituted as literals.
var constants = map[string]float64{
	"pi":  math.Pi,
	"exp": math.E,
}

func init() {
	opTable = [numOps]opEntry{
		OpAdd: {symbol: '+', prec: precAdditive, apply: func(a, b float64) (float64, error) { return checked(a+b, "%s + %s", a, b) }},
		OpSub: {symbol: '-', prec: precAdditive, apply: func(a, b float64) (float64, error) { return checked(a-b, "%s - %s", a, b) }},
		OpMul: {symbol: '*', prec: precMultiply, apply: func(a, b float64) (float64, error) { return checked(a*b, "%s * %s", a, b) }},
		OpDiv: {symbol: '/', prec: precMultiply, apply: divide},
		OpPow: {symbol: '^', prec: precPower, rightAssoc: true, apply: power},
	}
	funcTable = [numFuncs]funcEntry{
		FnSin:   {name: "sin", apply: unary("sin", math.Sin), inverse: inverseWithin("asin", -1, 1, math.Asin)},
		FnCos:   {name: "cos", apply: unary("cos", math.Cos), inverse: inverseWithin("acos", -1, 1, math.Acos)},
		FnTan:   {name: "tan", apply: unary("tan", math.Tan), inverse: unary("atan", math.Atan)},
		FnAsin:  {name: "asin", apply: inverseWithin("asin", -1, 1, math.Asin), inverse: inverseWithin("sin", -math.Pi/2, math.Pi/2, math.Sin)},
		FnAcos:  {name: "acos", apply: inverseWithin("acos", -1, 1, math.Acos), inverse: inverseWithin("cos", 0, math.Pi, math.Cos)},
		FnAtan:  {name: "atan", apply: unary("atan", math.Atan), inverse: openWithin("tan", -math.Pi/2, math.Pi/2, math.Tan)},
		FnSqrt:  {name: "sqrt", apply: inverseWithin("sqrt", 0, math.Inf(1), math.Sqrt), inverse: inverseWithin("square", 0, math.Inf(1), func(v float64) float64 { return v * v })},
		FnLog10: {name: "log10", apply: positive("log10", math.Log10), inverse: unary("10^", func(v float64) float64 { return math.Pow(10, v) })},
		FnLn:    {name: "ln", apply: positive("ln", math.Log), inverse: unary("exp", math.Exp)},
		FnExp:   {name: "exp", apply: unary("exp", math.Exp), inverse: positive("ln", math.Log)},
	}

	funcByName = make(map[string]Func, numFuncs)
	for f := Func(0); f < numFuncs; f++ {
		funcByName[funcTable[f].name] = f
	}
	opBySymbol = make(map[byte]Op, numOps)
	for o := Op(0); o < numOps; o++ {
		opBySymbol[opTable[o].symbol] = o
	}
}

func (o Op) String() string       { return string(opTable[o].symbol) }
func (o Op) Precedence() int      { return opTable[o].prec }
func (o Op) rightAssoc() bool     { return opTable[o].rightAssoc }
func (f Func) String() string     { return funcTable[f].name }
func isOperator(c byte) bool      { _, ok := opBySymbol[c]; return ok }
func lookupFunc(name string) bool { _, ok := funcByName[name]; return ok }

// Apply evaluates a op b.
func (o Op) Apply(a, b float64) (float64, error) { return opTable[o].apply(a, b) }

// Apply evaluates f(v).
func (f Func) Apply(v float64) (float64, error) { return funcTable[f].apply(v) }

// Invert returns the principal x with f(x) = v.
func (f Func) Invert(v float64) (float64, error) { return funcTable[f].inverse(v) }

// ============================================================
// Forward helpers
// ============================================================

func checked(r float64, format string, a, b float64) (float64, error) {
	if math.IsNaN(r) || math.IsInf(r, 0) {
		return 0, domainError(format, detailNumber(a), detailNumber(b))
	}
	return r, nil
}

func divide(a, b float64) (float64, error) {
	if b == 0 {
		return 0, domainError("division by zero: %s / 0", detailNumber(a))
	}
	return checked(a/b, "%s / %s", a, b)
}

func power(a, b float64) (float64, error) {
	if a == 0 && b < 0 {
		return 0, domainError("zero raised to negative power %s", detailNumber(b))
	}
	return checked(math.Pow(a, b), "%s ^ %s", a, b)
}

func unary(name string, fn func(float64) float64) func(float64) (float64, error) {
	return func(v float64) (float64, error) {
		r := fn(v)
		if math.IsNaN(r) || math.IsInf(r, 0) {
			return 0, domainError("%s(%s) is undefined", name, detailNumber(v))
		}
		return r, nil
	}
}

func positive(name string, fn func(float64) float64) func(float64) (float64, error) {
	inner := unary(name, fn)
	return func(v float64) (float64, error) {
		if v <= 0 {
			return 0, domainError("%s(%s) requires a positive argument", name, detailNumber(v))
		}
		return inner(v)
	}
}

// inverseWithin restricts fn to the closed interval [lo, hi].
func inverseWithin(name string, lo, hi float64, fn func(float64) float64) func(float64) (float64, error) {
	inner := unary(name, fn)
	return func(v float64) (float64, error) {
		if v < lo || v > hi {
			return 0, domainError("%s(%s) is outside [%s, %s]", name, detailNumber(v), detailNumber(lo), detailNumber(hi))
		}
		return inner(v)
	}
}

// openWithin restricts fn to the open interval (lo, hi).
func openWithin(name string, lo, hi float64, fn func(float64) float64) func(float64) (float64, error) {
	inner := unary(name, fn)
	return func(v float64) (float64, error) {
		if v <= lo || v >= hi {
			return 0, domainError("%s(%s) is outside (%s, %s)", name, detailNumber(v), detailNumber(lo), detailNumber(hi))
		}
		return inner(v)
	}
}

// ============================================================
// Inverse table for primary operators
// ============================================================

// invertOp solves (x op term) = value when before is false, or
// (term op x) = value when before is true.
func invertOp(op Op, term, value float64, before bool) (float64, error) {
	switch op {
	case OpAdd:
		return OpSub.Apply(value, term)
	case OpSub:
		if before {
			return OpSub.Apply(term, value)
		}
		return OpAdd.Apply(value, term)
	case OpMul:
		if term == 0 {
			return 0, domainError("cannot divide out a zero factor")
		}
		return OpDiv.Apply(value, term)
	case OpDiv:
		if before {
			if value == 0 {
				return 0, domainError("%s / x = 0 has no solution", detailNumber(term))
			}
			return OpDiv.Apply(term, value)
		}
		if term == 0 {
			return 0, domainError("division by zero")
		}
		return OpMul.Apply(value, term)
	case OpPow:
		if before {
			return logBase(term, value)
		}
		return root(value, term)
	}
	panic("gosolve: unknown operator " + strconv.Itoa(int(op)))
}

// root returns the principal real solution of x^n = v.
func root(v, n float64) (float64, error) {
	if n == 0 {
		return 0, domainError("x^0 = %s cannot be inverted", detailNumber(v))
	}
	if v < 0 {
		// Only odd integer powers have a real preimage of a negative value.
		if n == math.Trunc(n) && math.Mod(math.Abs(n), 2) == 1 {
			return checked(-math.Pow(-v, 1/n), "root(%s, %s)", v, n)
		}
		return 0, domainError("no real root of %s for exponent %s", detailNumber(v), detailNumber(n))
	}
	if v == 0 && n < 0 {
		return 0, domainError("x^%s = 0 has no solution", detailNumber(n))
	}
	return checked(math.Pow(v, 1/n), "root(%s, %s)", v, n)
}

// logBase returns x with base^x = v.
func logBase(base, v float64) (float64, error) {
	if base <= 0 || base == 1 {
		return 0, domainError("logarithm base %s is invalid", detailNumber(base))
	}
	if v <= 0 {
		return 0, domainError("%s^x = %s has no real solution", detailNumber(base), detailNumber(v))
	}
	return checked(math.Log(v)/math.Log(base), "log(%s, %s)", base, v)
}

// ============================================================
// Literal rendering
// ============================================================

// detailNumber renders v for error messages, in the shortest form.
func detailNumber(v float64) string { return strconv.FormatFloat(v, 'g', -1, 64) }

// FormatNumber renders v without scientific notation and without
// insignificant trailing zeros, so equal values always produce equal text.
func FormatNumber(v float64) string {
	if v == 0 {
		return "0"
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
