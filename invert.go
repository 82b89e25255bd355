package gosolve

import (
	"context"
	"fmt"
)

// inversion is the state of the inversion engine: the side still wrapped
// around the unknown and the number it must equal.
type inversion struct {
	variable Expr
	value    float64
	steps    int
	limit    int
	record   func(stage, note string, variable Expr, value float64)
}

// run undoes one operation per iteration, outermost first, until the
// variable side is the bare unknown. Each iteration removes at least one
// node, so the variable side's initial size bounds the loop.
func (in *inversion) run(ctx context.Context) (float64, error) {
	for {
		if err := ctx.Err(); err != nil {
			return 0, err
		}

		rest, value, moved, err := moveTerms(in.variable, in.value)
		if err != nil {
			return 0, atStage(err, StageMove)
		}
		in.variable, in.value = rest, value
		if moved {
			in.record(StageMove, "moved unassociated terms", in.variable, in.value)
		}

		if _, ok := in.variable.(*Sym); ok {
			return in.value, nil
		}
		if in.steps >= in.limit {
			return 0, newError(ErrUnsolvable, StageInvert, -1, "no progress after %d steps on %s", in.steps, in.variable)
		}

		cls, err := classify(in.variable)
		if err != nil {
			return 0, atStage(err, StageInvert)
		}
		entry, ok := cls.Nearest()
		if !ok {
			return 0, newError(ErrArithmeticDomain, StageInvert, -1, "nothing to invert in %s", in.variable)
		}
		v, err := entry.Invert(in.value)
		if err != nil {
			return 0, atStage(err, StageInvert)
		}
		in.variable, in.value = unwrap(entry.child), v
		in.steps++
		in.record(StageInvert, fmt.Sprintf("undo %s; unknown at L%d", entry, cls.Target), in.variable, in.value)
	}
}
