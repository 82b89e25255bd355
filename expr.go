package gosolve

import "encoding/json"

// ============================================================
// Core Interface
// ============================================================

// Expr is a node of a parsed expression. Trees are built once per solve and
// treated as immutable; reduction and inversion build new nodes.
type Expr interface {
	String() string
	Equal(other Expr) bool
	HasUnknown() bool
	Size() int
	prec() int
	exprType() string
	toJSON() map[string]interface{}
}

// ============================================================
// Num: numeric literal
// ============================================================

type Num struct{ val float64 }

func NewNum(v float64) *Num { return &Num{val: v} }

func (n *Num) Value() float64        { return n.val }
func (n *Num) String() string        { return FormatNumber(n.val) }
func (n *Num) Equal(other Expr) bool { o, ok := other.(*Num); return ok && n.val == o.val }
func (n *Num) HasUnknown() bool      { return false }
func (n *Num) Size() int             { return 1 }
func (n *Num) exprType() string      { return "num" }
func (n *Num) prec() int {
	if n.val < 0 {
		return precUnary
	}
	return precAtom
}
func (n *Num) toJSON() map[string]interface{} {
	return map[string]interface{}{"type": "num", "value": n.val}
}

// ============================================================
// Sym: the unknown
// ============================================================

type Sym struct{ name string }

func NewSym(name string) *Sym { return &Sym{name: name} }

func (s *Sym) Name() string          { return s.name }
func (s *Sym) String() string        { return s.name }
func (s *Sym) Equal(other Expr) bool { o, ok := other.(*Sym); return ok && s.name == o.name }
func (s *Sym) HasUnknown() bool      { return true }
func (s *Sym) Size() int             { return 1 }
func (s *Sym) prec() int             { return precAtom }
func (s *Sym) exprType() string      { return "sym" }
func (s *Sym) toJSON() map[string]interface{} {
	return map[string]interface{}{"type": "sym", "name": s.name}
}

// ============================================================
// Neg: unary minus
// ============================================================

type Neg struct{ arg Expr }

func (n *Neg) Arg() Expr { return n.arg }
func (n *Neg) String() string {
	if n.arg.prec() <= precUnary {
		return "-(" + n.arg.String() + ")"
	}
	return "-" + n.arg.String()
}
func (n *Neg) Equal(other Expr) bool { o, ok := other.(*Neg); return ok && n.arg.Equal(o.arg) }
func (n *Neg) HasUnknown() bool      { return n.arg.HasUnknown() }
func (n *Neg) Size() int             { return 1 + n.arg.Size() }
func (n *Neg) prec() int             { return precUnary }
func (n *Neg) exprType() string      { return "neg" }
func (n *Neg) toJSON() map[string]interface{} {
	return map[string]interface{}{"type": "neg", "arg": n.arg.toJSON()}
}

// ============================================================
// BinOp: primary operator application
// ============================================================

type BinOp struct {
	op          Op
	left, right Expr
}

func (b *BinOp) Op() Op      { return b.op }
func (b *BinOp) Left() Expr  { return b.left }
func (b *BinOp) Right() Expr { return b.right }
func (b *BinOp) prec() int   { return b.op.Precedence() }
func (b *BinOp) Size() int   { return 1 + b.left.Size() + b.right.Size() }
func (b *BinOp) HasUnknown() bool {
	return b.left.HasUnknown() || b.right.HasUnknown()
}

func (b *BinOp) String() string {
	left, right := b.left.String(), b.right.String()
	p := b.prec()
	if lp := b.left.prec(); lp < p || (lp == p && b.op.rightAssoc()) {
		left = "(" + left + ")"
	}
	if rp := b.right.prec(); rp < p || (rp == p && !b.op.rightAssoc()) {
		right = "(" + right + ")"
	}
	return left + b.op.String() + right
}

func (b *BinOp) Equal(other Expr) bool {
	o, ok := other.(*BinOp)
	return ok && b.op == o.op && b.left.Equal(o.left) && b.right.Equal(o.right)
}

func (b *BinOp) exprType() string { return "binop" }
func (b *BinOp) toJSON() map[string]interface{} {
	return map[string]interface{}{"type": "binop", "op": b.op.String(), "left": b.left.toJSON(), "right": b.right.toJSON()}
}

// ============================================================
// Call: special function application
// ============================================================

type Call struct {
	fn  Func
	arg Expr
}

func (c *Call) Func() Func { return c.fn }
func (c *Call) Arg() Expr  { return c.arg }
func (c *Call) String() string {
	if _, ok := c.arg.(*Group); ok {
		return c.fn.String() + c.arg.String()
	}
	return c.fn.String() + "(" + c.arg.String() + ")"
}
func (c *Call) Equal(other Expr) bool {
	o, ok := other.(*Call)
	return ok && c.fn == o.fn && c.arg.Equal(o.arg)
}
func (c *Call) HasUnknown() bool { return c.arg.HasUnknown() }
func (c *Call) Size() int        { return 1 + c.arg.Size() }
func (c *Call) prec() int        { return precAtom }
func (c *Call) exprType() string { return "call" }
func (c *Call) toJSON() map[string]interface{} {
	return map[string]interface{}{"type": "call", "func": c.fn.String(), "arg": c.arg.toJSON()}
}

// ============================================================
// Group: explicit bracket pair
// ============================================================

// Group keeps the source text and depth of a bracket pair so reductions can
// be memoized by exact text.
type Group struct {
	inner Expr
	src   string
	open  int
	depth int
}

func (g *Group) Inner() Expr      { return g.inner }
func (g *Group) Source() string   { return g.src }
func (g *Group) Depth() int       { return g.depth }
func (g *Group) Offset() int      { return g.open }
func (g *Group) String() string   { return "(" + g.inner.String() + ")" }
func (g *Group) HasUnknown() bool { return g.inner.HasUnknown() }
func (g *Group) Size() int        { return 1 + g.inner.Size() }
func (g *Group) prec() int        { return precAtom }
func (g *Group) exprType() string { return "group" }
func (g *Group) Equal(other Expr) bool {
	o, ok := other.(*Group)
	return ok && g.inner.Equal(o.inner)
}
func (g *Group) toJSON() map[string]interface{} {
	return map[string]interface{}{
		"type":   "group",
		"inner":  g.inner.toJSON(),
		"source": g.Source(),
		"depth":  g.Depth(),
		"offset": g.Offset(),
	}
}

// unwrap strips any number of redundant enclosing brackets.
func unwrap(e Expr) Expr {
	for {
		g, ok := e.(*Group)
		if !ok {
			return e
		}
		e = g.inner
	}
}

// ============================================================
// Equation
// ============================================================

// Equation is a parsed input. RHS is nil for a lone expression.
type Equation struct{ LHS, RHS Expr }

func (e *Equation) String() string {
	if e.RHS == nil {
		return e.LHS.String()
	}
	return e.LHS.String() + "=" + e.RHS.String()
}

// ============================================================
// JSON
// ============================================================

func ToJSON(e Expr) (string, error) {
	b, err := json.Marshal(e.toJSON())
	return string(b), err
}

// Symbols returns the distinct identifiers of e in order of first
// appearance.
func (e *Equation) Symbols() []string {
	var out []string
	seen := map[string]bool{}
	var walk func(Expr)
	walk = func(x Expr) {
		switch n := x.(type) {
		case *Sym:
			if !seen[n.name] {
				seen[n.name] = true
				out = append(out, n.name)
			}
		case *Neg:
			walk(n.arg)
		case *BinOp:
			walk(n.left)
			walk(n.right)
		case *Call:
			walk(n.arg)
		case *Group:
			walk(n.inner)
		}
	}
	walk(e.LHS)
	if e.RHS != nil {
		walk(e.RHS)
	}
	return out
}
