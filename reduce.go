package gosolve

// ============================================================
// Value: Resolved(number) or Unresolved(node)
// ============================================================

// Value is the outcome of reducing a subtree: either a number, or the
// remaining structure around the unknown.
type Value struct {
	resolved bool
	num      float64
	node     Expr
}

func Resolved(v float64) Value   { return Value{resolved: true, num: v} }
func Unresolved(e Expr) Value    { return Value{node: e} }
func (v Value) IsResolved() bool { return v.resolved }
func (v Value) Number() float64  { return v.num }

// Expr returns the node form of v; a resolved value becomes a literal.
func (v Value) Expr() Expr {
	if v.resolved {
		return &Num{val: v.num}
	}
	return v.node
}

func (v Value) String() string { return v.Expr().String() }

// ============================================================
// Reducer
// ============================================================

// reducer folds trees bottom-up. Bracket groups are memoized by their exact
// source text for the lifetime of one solve.
type reducer struct {
	memo map[string]Value
	hits int
}

func newReducer() *reducer { return &reducer{memo: map[string]Value{}} }

// primeGroups reduces every bracket pair deepest first, so each outer group
// finds its inner groups already in the memo.
func (r *reducer) primeGroups(roots []Expr, br *Brackets) error {
	byOffset := map[int]*Group{}
	for _, root := range roots {
		collectGroups(root, byOffset)
	}
	for _, pair := range br.Innermost() {
		g, ok := byOffset[pair.Open]
		if !ok {
			continue
		}
		if _, err := r.reduce(g); err != nil {
			return err
		}
	}
	return nil
}

func collectGroups(e Expr, out map[int]*Group) {
	switch n := e.(type) {
	case *Group:
		out[n.open] = n
		collectGroups(n.inner, out)
	case *Neg:
		collectGroups(n.arg, out)
	case *BinOp:
		collectGroups(n.left, out)
		collectGroups(n.right, out)
	case *Call:
		collectGroups(n.arg, out)
	}
}

func (r *reducer) reduce(e Expr) (Value, error) {
	switch n := e.(type) {
	case *Num:
		return Resolved(n.val), nil
	case *Sym:
		return Unresolved(n), nil
	case *Neg:
		a, err := r.reduce(n.arg)
		if err != nil {
			return Value{}, err
		}
		if a.resolved {
			return Resolved(-a.num), nil
		}
		return Unresolved(&Neg{arg: a.node}), nil
	case *BinOp:
		return r.reduceBinOp(n)
	case *Call:
		a, err := r.reduce(n.arg)
		if err != nil {
			return Value{}, err
		}
		if a.resolved {
			v, err := n.fn.Apply(a.num)
			if err != nil {
				return Value{}, err
			}
			return Resolved(v), nil
		}
		return Unresolved(&Call{fn: n.fn, arg: a.node}), nil
	case *Group:
		if v, ok := r.memo[n.src]; ok {
			r.hits++
			return v, nil
		}
		inner, err := r.reduce(n.inner)
		if err != nil {
			return Value{}, err
		}
		v := inner
		if !inner.resolved {
			v = Unresolved(&Group{inner: inner.node, src: n.src, open: n.open, depth: n.depth})
		}
		r.memo[n.src] = v
		return v, nil
	}
	panic("gosolve: unknown node type " + e.exprType())
}

func (r *reducer) reduceBinOp(n *BinOp) (Value, error) {
	l, err := r.reduce(n.left)
	if err != nil {
		return Value{}, err
	}
	rt, err := r.reduce(n.right)
	if err != nil {
		return Value{}, err
	}
	if l.resolved && rt.resolved {
		v, err := n.op.Apply(l.num, rt.num)
		if err != nil {
			return Value{}, err
		}
		return Resolved(v), nil
	}
	var node Expr = &BinOp{op: n.op, left: l.Expr(), right: rt.Expr()}
	if n.op == OpAdd || n.op == OpSub {
		node, err = mergeAdditive(node)
		if err != nil {
			return Value{}, err
		}
	}
	return Unresolved(node), nil
}

// ============================================================
// Additive chains
// ============================================================

type signedTerm struct {
	neg bool
	e   Expr
}

// flattenAdditive lists the terms of a +/- chain with their effective sign.
// Brackets are not entered.
func flattenAdditive(e Expr, neg bool, out []signedTerm) []signedTerm {
	if b, ok := e.(*BinOp); ok && (b.op == OpAdd || b.op == OpSub) {
		out = flattenAdditive(b.left, neg, out)
		return flattenAdditive(b.right, neg != (b.op == OpSub), out)
	}
	return append(out, signedTerm{neg: neg, e: e})
}

func buildChain(terms []signedTerm) Expr {
	var out Expr
	for i, t := range terms {
		if i == 0 {
			out = t.e
			if t.neg {
				out = &Neg{arg: t.e}
			}
			continue
		}
		op := OpAdd
		if t.neg {
			op = OpSub
		}
		out = &BinOp{op: op, left: out, right: t.e}
	}
	return out
}

// mergeAdditive combines consecutive numeric terms of a chain that still
// holds the unknown, so 2+3+c+2-3 becomes 5+c-1.
func mergeAdditive(e Expr) (Expr, error) {
	terms := flattenAdditive(e, false, nil)
	merged := make([]signedTerm, 0, len(terms))
	changed := false
	for i := 0; i < len(terms); {
		if _, ok := terms[i].e.(*Num); !ok {
			merged = append(merged, terms[i])
			i++
			continue
		}
		j, sum := i, 0.0
		var err error
		for ; j < len(terms); j++ {
			num, ok := terms[j].e.(*Num)
			if !ok {
				break
			}
			v := num.val
			if terms[j].neg {
				v = -v
			}
			if sum, err = OpAdd.Apply(sum, v); err != nil {
				return nil, err
			}
		}
		if j-i > 1 {
			changed = true
		}
		switch {
		case len(merged) == 0:
			merged = append(merged, signedTerm{e: &Num{val: sum}})
		case sum == 0:
			changed = true
		default:
			merged = append(merged, signedTerm{neg: sum < 0, e: &Num{val: abs(sum)}})
		}
		i = j
	}
	if !changed {
		return e, nil
	}
	return buildChain(merged), nil
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
