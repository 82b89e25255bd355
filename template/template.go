// Package template holds reusable equation templates and composes them
// into sets that can be solved together.
package template

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/njchilds90/gosolve"
	"github.com/njchilds90/gosolve/sigfig"
)

// GasConstant is the molar gas constant in J/(mol*K) used by IdealGas.
const GasConstant = 8.3145

// ConsistencySigFigs is the agreement Consistent requires by default.
const ConsistencySigFigs = 3

// Equation is a template equation held as its two sides.
type Equation struct {
	LHS string `json:"lhs" yaml:"lhs"`
	RHS string `json:"rhs" yaml:"rhs"`
}

func (e Equation) String() string { return e.LHS + " = " + e.RHS }

// Text is the input handed to the solver.
func (e Equation) Text() string { return e.LHS + "=" + e.RHS }

// Symbols lists the identifiers the equation uses, lowercased.
func (e Equation) Symbols() ([]string, error) {
	parsed, err := gosolve.Parse(e.Text())
	if err != nil {
		return nil, err
	}
	return parsed.Symbols(), nil
}

// Solve solves the equation for its one unbound symbol.
func (e Equation) Solve(bindings map[string]float64) (float64, error) {
	res, err := e.SolveWith(context.Background(), gosolve.New(gosolve.WithRecordSteps(false)), bindings)
	if err != nil {
		return 0, err
	}
	return res.Value, nil
}

// SolveWith solves with a caller-supplied Solver. Bindings the equation does
// not use are dropped first, so sets of equations can share one binding map.
func (e Equation) SolveWith(ctx context.Context, s *gosolve.Solver, bindings map[string]float64) (*gosolve.Result, error) {
	used, err := e.relevant(bindings)
	if err != nil {
		return nil, err
	}
	return s.Solve(ctx, e.Text(), used)
}

// Consistent reports whether fully bound sides agree to sigFigs
// significant figures.
func (e Equation) Consistent(bindings map[string]float64, sigFigs int) (bool, error) {
	used, err := e.relevant(bindings)
	if err != nil {
		return false, err
	}
	res, err := gosolve.New(gosolve.WithRecordSteps(false)).Check(context.Background(), e.Text(), used)
	if err != nil {
		return false, err
	}
	return sigfig.Equal(res.Value, res.Value-res.Residual, sigFigs), nil
}

func (e Equation) relevant(bindings map[string]float64) (map[string]float64, error) {
	names, err := e.Symbols()
	if err != nil {
		return nil, err
	}
	lower := make(map[string]float64, len(bindings))
	for k, v := range bindings {
		lower[strings.ToLower(k)] = v
	}
	out := make(map[string]float64, len(names))
	for _, name := range names {
		if v, ok := lower[name]; ok {
			out[name] = v
		}
	}
	return out, nil
}

// ============================================================
// Ideal gas
// ============================================================

type idealGas struct {
	pressure, volume, moles, temperature string
	constant                             float64
}

type IdealGasOption func(*idealGas)

func WithPressure(name string) IdealGasOption    { return func(g *idealGas) { g.pressure = name } }
func WithVolume(name string) IdealGasOption      { return func(g *idealGas) { g.volume = name } }
func WithMoles(name string) IdealGasOption       { return func(g *idealGas) { g.moles = name } }
func WithTemperature(name string) IdealGasOption { return func(g *idealGas) { g.temperature = name } }
func WithGasConstant(r float64) IdealGasOption   { return func(g *idealGas) { g.constant = r } }

// IdealGas returns P*V = n*R*T with R = GasConstant. Options rename the
// symbols or change the constant.
func IdealGas(opts ...IdealGasOption) Equation {
	g := &idealGas{pressure: "P", volume: "V", moles: "n", temperature: "T", constant: GasConstant}
	for _, opt := range opts {
		opt(g)
	}
	return Equation{
		LHS: g.pressure + "*" + g.volume,
		RHS: g.moles + "*" + gosolve.FormatNumber(g.constant) + "*" + g.temperature,
	}
}

// ============================================================
// Sets
// ============================================================

// Set is an ordered list of equations describing one system.
type Set []Equation

// Assumption adds the equations an assumption implies to a set.
type Assumption func(Set) Set

// IdealGasAssumption appends IdealGas(opts...) to a set.
func IdealGasAssumption(opts ...IdealGasOption) Assumption {
	eq := IdealGas(opts...)
	return func(s Set) Set { return s.With(eq) }
}

// With returns a new set with eqs appended; s is not modified.
func (s Set) With(eqs ...Equation) Set {
	out := make(Set, 0, len(s)+len(eqs))
	out = append(out, s...)
	return append(out, eqs...)
}

// Apply applies assumptions in order.
func (s Set) Apply(assumptions ...Assumption) Set {
	out := s.With()
	for _, a := range assumptions {
		out = a(out)
	}
	return out
}

// ErrStalled is returned by Solve when unsolved equations remain but none
// has exactly one unbound symbol.
var ErrStalled = errors.New("no equation with exactly one unknown")

// Solve repeatedly solves any equation left with exactly one unbound symbol,
// adding each answer to the bindings, until every symbol is bound. It
// returns all bindings, given and solved.
func (s Set) Solve(ctx context.Context, solver *gosolve.Solver, bindings map[string]float64) (map[string]float64, error) {
	known := make(map[string]float64, len(bindings))
	for k, v := range bindings {
		known[strings.ToLower(k)] = v
	}
	pending := make([]bool, len(s))
	for i := range pending {
		pending[i] = true
	}
	for {
		progressed, remaining := false, 0
		for i, eq := range s {
			if !pending[i] {
				continue
			}
			names, err := eq.Symbols()
			if err != nil {
				return known, fmt.Errorf("equation %d (%s): %w", i, eq, err)
			}
			var free []string
			for _, n := range names {
				if _, ok := known[n]; !ok {
					free = append(free, n)
				}
			}
			switch len(free) {
			case 0:
				pending[i] = false
				continue
			case 1:
				res, err := eq.SolveWith(ctx, solver, known)
				if err != nil {
					return known, fmt.Errorf("equation %d (%s): %w", i, eq, err)
				}
				known[free[0]] = res.Value
				pending[i] = false
				progressed = true
			default:
				remaining++
			}
		}
		if remaining == 0 {
			return known, nil
		}
		if !progressed {
			return known, ErrStalled
		}
	}
}
