package gosolve

import "sort"

// Validation is what the scanner/validator hands to the rest of the
// pipeline.
type Validation struct {
	// Unknown is the identifier to solve for; empty when the text is fully
	// determined.
	Unknown string
	// Identifiers maps the source offset of every non-literal run to its text.
	Identifiers map[int]string
	Warnings    []error
}

// Determined reports whether no unknown remains.
func (v *Validation) Determined() bool { return v.Unknown == "" }

// validate applies the fail-fast rules in order: brackets, syntax, unknown
// count, repeated unknown. Redundant bindings only produce a warning.
// With bound set, every identifier must be resolved even when "=" is present.
func validate(sc *Scan, bindings map[string]float64, bound bool) (*Validation, error) {
	if err := checkBrackets(sc.Text); err != nil {
		return nil, err
	}
	if len(sc.Tokens) == 0 || sc.Tokens[0].Kind == TokEnd {
		return nil, newError(ErrMalformedEquation, StageValidate, 0, "empty input")
	}
	if len(sc.Equals) > 1 {
		return nil, newError(ErrMalformedEquation, StageValidate, sc.Equals[1], "more than one '='")
	}

	v := &Validation{Identifiers: make(map[int]string)}
	occurrences := map[string][]int{}
	var order []string
	used := map[string]bool{}
	for _, t := range sc.Terms {
		switch t.Class {
		case TermLiteral:
			continue
		case TermFunction:
			if t.Offset+len(t.Text) >= len(sc.Text) || sc.Text[t.Offset+len(t.Text)] != '(' {
				return nil, newError(ErrMalformedEquation, StageValidate, t.Offset, "function %q without argument", t.Text)
			}
			continue
		case TermBound:
			used[t.Text] = true
		case TermUnknown:
			if _, seen := occurrences[t.Text]; !seen {
				order = append(order, t.Text)
			}
			occurrences[t.Text] = append(occurrences[t.Text], t.Offset)
		}
		v.Identifiers[t.Offset] = t.Text
	}

	want := 0
	if len(sc.Equals) == 1 && !bound {
		want = 1
	}
	if len(order) != want {
		sort.Strings(order)
		if want == 0 {
			return nil, newError(ErrUnderOrOverDetermined, StageValidate, -1, "unresolved identifiers %v", order)
		}
		return nil, newError(ErrUnderOrOverDetermined, StageValidate, -1, "need exactly one unknown, found %d %v", len(order), order)
	}
	if want == 1 {
		v.Unknown = order[0]
		if offs := occurrences[v.Unknown]; len(offs) > 1 {
			return nil, newError(ErrRepeatedUnknown, StageValidate, offs[1], "%q occurs %d times", v.Unknown, len(offs))
		}
	}

	var redundant []string
	for name := range bindings {
		if !used[name] {
			redundant = append(redundant, name)
		}
	}
	if len(redundant) > 0 {
		v.Warnings = append(v.Warnings, newRedundantBindingWarning(redundant))
	}
	return v, nil
}

// checkBrackets requires equal counts and a depth that never goes negative.
func checkBrackets(text string) error {
	depth := 0
	for i := 0; i < len(text); i++ {
		switch text[i] {
		case '(':
			depth++
		case ')':
			depth--
			if depth < 0 {
				return newError(ErrUnbalancedBrackets, StageValidate, i, "unexpected ')'")
			}
		}
	}
	if depth != 0 {
		return newError(ErrUnbalancedBrackets, StageValidate, -1, "%d unclosed '('", depth)
	}
	return nil
}
