package gosolve

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	modeSolve    = "solve"
	modeEvaluate = "evaluate"
	modeCheck    = "check"
)

// DefaultTolerance is the relative tolerance used to compare two sides.
const DefaultTolerance = 1e-9

// ============================================================
// Results
// ============================================================

// Step is one entry of the per-solve log: the state of the equation after
// a pipeline stage.
type Step struct {
	Stage    string `json:"stage"`
	Equation string `json:"equation"`
	Note     string `json:"note,omitempty"`
}

// Result is everything one call produced.
type Result struct {
	// Equation is the normalized input.
	Equation string
	// Unknown is empty when the input was fully determined.
	Unknown    string
	Value      float64
	Determined bool

	// Holds and Residual are set by Check: Residual is LHS minus RHS.
	Holds    bool
	Residual float64

	// Bindings holds the caller's bindings, lowercased, plus the solved
	// unknown.
	Bindings map[string]float64
	// Warnings are non-fatal; currently only *RedundantBindingWarning.
	Warnings []error
	Steps    []Step
}

// Log renders the step log one stage per line.
func (r *Result) Log() string {
	var b strings.Builder
	for i, st := range r.Steps {
		fmt.Fprintf(&b, "%2d %-10s %s", i+1, st.Stage, st.Equation)
		if st.Note != "" {
			b.WriteString("  ; " + st.Note)
		}
		b.WriteByte('\n')
	}
	return b.String()
}

// ============================================================
// Solver
// ============================================================

// Solver runs the pipeline. A Solver holds only configuration, so one value
// can serve concurrent calls.
type Solver struct {
	logger         *slog.Logger
	tolerance      float64
	recordSteps    bool
	maxStepsFactor int
}

type Option func(*Solver)

// WithLogger sets the logger; the default is slog.Default().
func WithLogger(l *slog.Logger) Option { return func(s *Solver) { s.logger = l } }

// WithTolerance sets the relative tolerance used by Check.
func WithTolerance(tol float64) Option {
	return func(s *Solver) {
		if tol > 0 {
			s.tolerance = tol
		}
	}
}

// WithRecordSteps turns the per-solve step log on or off.
func WithRecordSteps(on bool) Option { return func(s *Solver) { s.recordSteps = on } }

// WithMaxStepsFactor scales the inversion iteration bound, which is the
// node count of the variable side.
func WithMaxStepsFactor(n int) Option {
	return func(s *Solver) {
		if n > 0 {
			s.maxStepsFactor = n
		}
	}
}

func New(opts ...Option) *Solver {
	s := &Solver{tolerance: DefaultTolerance, recordSteps: true, maxStepsFactor: 1}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Solver) log() *slog.Logger {
	if s.logger != nil {
		return s.logger
	}
	return slog.Default()
}

// Solve solves equation for its single unknown. Input without "=" is
// evaluated instead.
func (s *Solver) Solve(ctx context.Context, equation string, bindings map[string]float64) (*Result, error) {
	return s.run(ctx, modeSolve, equation, bindings)
}

// Evaluate reduces an expression without "=" to a number.
func (s *Solver) Evaluate(ctx context.Context, expression string, bindings map[string]float64) (*Result, error) {
	return s.run(ctx, modeEvaluate, expression, bindings)
}

// Check reduces both sides of a fully bound equation and reports whether
// they agree within the tolerance.
func (s *Solver) Check(ctx context.Context, equation string, bindings map[string]float64) (*Result, error) {
	return s.run(ctx, modeCheck, equation, bindings)
}

func (s *Solver) run(ctx context.Context, mode, input string, bindings map[string]float64) (res *Result, err error) {
	start := time.Now()
	ctx, span := getTracer().Start(ctx, "gosolve.Solver.Solve",
		trace.WithAttributes(
			attribute.String("mode", mode),
			attribute.String("equation", input),
			attribute.Int("bindings", len(bindings)),
		),
	)
	defer span.End()
	defer func() {
		solvesTotal.WithLabelValues(mode, errorLabel(err)).Inc()
		solveDuration.Observe(time.Since(start).Seconds())
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, errorLabel(err))
			s.log().Debug("solve failed",
				slog.String("mode", mode),
				slog.String("equation", input),
				slog.String("error", err.Error()))
		}
	}()

	bound, err := lowerBindings(bindings)
	if err != nil {
		return nil, err
	}
	text := Normalize(input)
	res = &Result{Equation: strings.TrimSuffix(text, string(Sentinel)), Bindings: bound}
	record := func(stage, equation, note string) {
		s.log().Debug("stage", slog.String("stage", stage), slog.String("equation", equation))
		if s.recordSteps {
			res.Steps = append(res.Steps, Step{Stage: stage, Equation: equation, Note: note})
		}
	}
	record(StageNormalize, res.Equation, "")

	sc := ScanText(text, bound)
	v, err := validate(sc, bound, mode != modeSolve)
	if err != nil {
		return nil, err
	}
	switch {
	case mode == modeEvaluate && len(sc.Equals) > 0:
		return nil, newError(ErrMalformedEquation, StageValidate, sc.Equals[0], "expression must not contain '='")
	case mode == modeCheck && len(sc.Equals) == 0:
		return nil, newError(ErrMalformedEquation, StageValidate, -1, "check needs an equation")
	}
	for _, w := range v.Warnings {
		s.log().Debug("ignoring bindings", slog.String("equation", res.Equation), slog.String("warning", w.Error()))
	}
	res.Warnings = v.Warnings
	res.Unknown = v.Unknown
	res.Determined = v.Determined()

	sub := substitute(text, v.Identifiers, bound)
	record(StageSubstitute, strings.TrimSuffix(sub, string(Sentinel)), "")
	br, err := resolveBrackets(sub)
	if err != nil {
		return nil, err
	}
	p, err := parseText(sub, br)
	if err != nil {
		return nil, err
	}

	r := newReducer()
	defer func() { memoHits.Add(float64(r.hits)) }()
	roots := []Expr{p.lhs}
	if p.hasEq {
		roots = append(roots, p.rhs)
	}
	if err := r.primeGroups(roots, br); err != nil {
		return nil, atStage(err, StageReduce)
	}
	lhs, err := r.reduce(p.lhs)
	if err != nil {
		return nil, atStage(err, StageReduce)
	}
	if !p.hasEq {
		res.Value = lhs.Number()
		record(StageResult, FormatNumber(res.Value), "")
		return res, nil
	}
	rhs, err := r.reduce(p.rhs)
	if err != nil {
		return nil, atStage(err, StageReduce)
	}
	record(StageReduce, lhs.String()+"="+rhs.String(), "")

	if mode == modeCheck {
		res.Value = lhs.Number()
		res.Residual = lhs.Number() - rhs.Number()
		res.Holds = s.close(lhs.Number(), rhs.Number())
		record(StageResult, fmt.Sprintf("residual=%s", FormatNumber(res.Residual)), "")
		return res, nil
	}

	sd, err := splitEquation(lhs, rhs)
	if err != nil {
		return nil, err
	}
	record(StageSplit, sd.String(), "")

	in := &inversion{
		variable: unwrap(sd.Variable),
		value:    sd.Value,
		limit:    sd.Variable.Size() * s.maxStepsFactor,
		record: func(stage, note string, variable Expr, value float64) {
			record(stage, variable.String()+"="+FormatNumber(value), note)
		},
	}
	x, err := in.run(ctx)
	inversionSteps.Observe(float64(in.steps))
	if err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.String("unknown", v.Unknown), attribute.Int("steps", in.steps))
	res.Value = x
	res.Bindings[v.Unknown] = x
	record(StageResult, v.Unknown+"="+FormatNumber(x), "")
	return res, nil
}

// close compares relatively, and absolutely for values below one.
func (s *Solver) close(a, b float64) bool {
	if a == b {
		return true
	}
	scale := math.Max(1, math.Max(math.Abs(a), math.Abs(b)))
	return math.Abs(a-b) <= s.tolerance*scale
}

// lowerBindings copies bindings with lowercased names, matching the
// case-insensitive identifiers of normalized text.
func lowerBindings(bindings map[string]float64) (map[string]float64, error) {
	out := make(map[string]float64, len(bindings)+1)
	for name, v := range bindings {
		key := strings.ToLower(strings.TrimSpace(name))
		if key == "" {
			return nil, newError(ErrMalformedEquation, StageInput, -1, "empty binding name")
		}
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, newError(ErrMalformedEquation, StageInput, -1, "binding %q is not finite", name)
		}
		if prev, dup := out[key]; dup && prev != v {
			return nil, newError(ErrMalformedEquation, StageInput, -1, "binding %q given twice with different values", key)
		}
		out[key] = v
	}
	return out, nil
}

// ============================================================
// Package-level API
// ============================================================

var defaultSolver = New(WithRecordSteps(false))

// Solve returns the value of the single unknown in equation, or the value
// of the expression when there is no "=".
func Solve(equation string, bindings map[string]float64) (float64, error) {
	res, err := defaultSolver.Solve(context.Background(), equation, bindings)
	if err != nil {
		return 0, err
	}
	return res.Value, nil
}

// Evaluate returns the value of an expression without "=".
func Evaluate(expression string, bindings map[string]float64) (float64, error) {
	res, err := defaultSolver.Evaluate(context.Background(), expression, bindings)
	if err != nil {
		return 0, err
	}
	return res.Value, nil
}

// Check reports whether both sides of a fully bound equation agree within
// DefaultTolerance.
func Check(equation string, bindings map[string]float64) (bool, error) {
	res, err := defaultSolver.Check(context.Background(), equation, bindings)
	if err != nil {
		return false, err
	}
	return res.Holds, nil
}

// Parse normalizes input and returns its tree without binding or solving.
// RHS is nil when input has no "=".
func Parse(input string) (*Equation, error) {
	text := Normalize(input)
	sc := ScanText(text, nil)
	if err := checkBrackets(text); err != nil {
		return nil, err
	}
	if len(sc.Equals) > 1 {
		return nil, newError(ErrMalformedEquation, StageValidate, sc.Equals[1], "more than one '='")
	}
	br, err := resolveBrackets(text)
	if err != nil {
		return nil, err
	}
	p, err := parseText(text, br)
	if err != nil {
		return nil, err
	}
	return &Equation{LHS: p.lhs, RHS: p.rhs}, nil
}
