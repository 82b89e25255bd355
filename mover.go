package gosolve

// moveTerms moves every top-level additive term that does not hold the
// unknown across "=", flipping its sign. What is left of the variable side
// is the single term connected to the unknown; a leading minus on it is
// folded into the value as well.
//
// moved reports whether anything changed.
func moveTerms(variable Expr, value float64) (rest Expr, out float64, moved bool, err error) {
	variable = unwrap(variable)
	terms := flattenAdditive(variable, false, nil)
	if len(terms) == 1 {
		return variable, value, false, nil
	}

	var keep *signedTerm
	for i := range terms {
		t := terms[i]
		if t.e.HasUnknown() {
			keep = &terms[i]
			continue
		}
		v, err := evalNumeric(t.e)
		if err != nil {
			return nil, 0, false, err
		}
		if t.neg {
			value, err = OpAdd.Apply(value, v)
		} else {
			value, err = OpSub.Apply(value, v)
		}
		if err != nil {
			return nil, 0, false, err
		}
	}
	if keep == nil {
		return nil, 0, false, newError(ErrMalformedEquation, StageMove, -1, "variable side lost the unknown")
	}
	if keep.neg {
		value = -value
	}
	return keep.e, value, true, nil
}

// evalNumeric folds a subtree that is known not to hold the unknown.
func evalNumeric(e Expr) (float64, error) {
	if n, ok := e.(*Num); ok {
		return n.val, nil
	}
	v, err := newReducer().reduce(e)
	if err != nil {
		return 0, err
	}
	if !v.IsResolved() {
		return 0, newError(ErrMalformedEquation, StageMove, -1, "term %s does not reduce to a number", e)
	}
	return v.Number(), nil
}
