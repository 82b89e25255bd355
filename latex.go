package gosolve

// LaTeX renders e for display.
func LaTeX(e Expr) string {
	switch n := e.(type) {
	case *Num:
		return n.String()
	case *Sym:
		return n.name
	case *Neg:
		if n.arg.prec() <= precUnary {
			return "-\\left(" + LaTeX(n.arg) + "\\right)"
		}
		return "-" + LaTeX(n.arg)
	case *Group:
		return "\\left(" + LaTeX(n.inner) + "\\right)"
	case *Call:
		return funcLaTeX(n.fn, LaTeX(unwrap(n.arg)))
	case *BinOp:
		return binOpLaTeX(n)
	}
	return e.String()
}

func binOpLaTeX(b *BinOp) string {
	switch b.op {
	case OpDiv:
		return "\\frac{" + LaTeX(unwrap(b.left)) + "}{" + LaTeX(unwrap(b.right)) + "}"
	case OpPow:
		base := LaTeX(b.left)
		if b.left.prec() <= precPower {
			if _, ok := b.left.(*Group); !ok {
				base = "\\left(" + base + "\\right)"
			}
		}
		return base + "^{" + LaTeX(unwrap(b.right)) + "}"
	}
	left, right := LaTeX(b.left), LaTeX(b.right)
	p := b.prec()
	if lp := b.left.prec(); lp < p {
		left = "\\left(" + left + "\\right)"
	}
	if rp := b.right.prec(); rp < p || (rp == p && b.op == OpSub) {
		right = "\\left(" + right + "\\right)"
	}
	if b.op == OpMul {
		return left + " \\cdot " + right
	}
	return left + " " + b.op.String() + " " + right
}

func funcLaTeX(fn Func, arg string) string {
	switch fn {
	case FnSin, FnCos, FnTan, FnExp, FnLn:
		return "\\" + fn.String() + "\\left(" + arg + "\\right)"
	case FnAsin:
		return "\\arcsin\\left(" + arg + "\\right)"
	case FnAcos:
		return "\\arccos\\left(" + arg + "\\right)"
	case FnAtan:
		return "\\arctan\\left(" + arg + "\\right)"
	case FnSqrt:
		return "\\sqrt{" + arg + "}"
	case FnLog10:
		return "\\log_{10}\\left(" + arg + "\\right)"
	}
	return "\\operatorname{" + fn.String() + "}\\left(" + arg + "\\right)"
}

// EquationLaTeX renders a parsed input.
func EquationLaTeX(eq *Equation) string {
	if eq.RHS == nil {
		return LaTeX(eq.LHS)
	}
	return LaTeX(eq.LHS) + " = " + LaTeX(eq.RHS)
}
