package gosolve

// sides is a split equation: the side holding the unknown and the numeric
// side it must equal.
type sides struct {
	Variable Expr
	Value    float64
	// Swapped is true when the unknown was found on the right of "=".
	Swapped bool
}

// splitEquation takes both reduced sides of an equation and decides which
// one carries the unknown. Exactly one side may.
func splitEquation(lhs, rhs Value) (*sides, error) {
	switch {
	case !lhs.IsResolved() && rhs.IsResolved():
		return &sides{Variable: lhs.Expr(), Value: rhs.Number()}, nil
	case lhs.IsResolved() && !rhs.IsResolved():
		return &sides{Variable: rhs.Expr(), Value: lhs.Number(), Swapped: true}, nil
	case lhs.IsResolved():
		return nil, newError(ErrMalformedEquation, StageSplit, -1, "neither side contains the unknown")
	}
	return nil, newError(ErrMalformedEquation, StageSplit, -1, "both sides contain the unknown")
}

func (s *sides) String() string {
	return s.Variable.String() + "=" + FormatNumber(s.Value)
}
