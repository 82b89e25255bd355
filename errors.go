package gosolve

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Sentinel errors. Every failure returned by the solver wraps exactly one of
// these, so callers branch with errors.Is.
var (
	// ErrUnbalancedBrackets is returned when opening and closing brackets do
	// not pair up.
	ErrUnbalancedBrackets = errors.New("unbalanced brackets")

	// ErrUnderOrOverDetermined is returned when an equation does not leave
	// exactly one unknown after bindings are applied, or an expression without
	// "=" leaves any.
	ErrUnderOrOverDetermined = errors.New("equation is under- or over-determined")

	// ErrRepeatedUnknown is returned when the unknown occurs more than once.
	ErrRepeatedUnknown = errors.New("unknown occurs more than once")

	// ErrMalformedEquation covers syntax problems: stray operators, empty
	// sides, several "=" signs, function names without an argument.
	ErrMalformedEquation = errors.New("malformed equation")

	// ErrArithmeticDomain is returned when a forward or inverse operation is
	// evaluated outside its domain, or the unknown sits inside a construct
	// with no inverse.
	ErrArithmeticDomain = errors.New("arithmetic domain error")

	// ErrUnsolvable is returned when inversion exceeds its iteration bound.
	ErrUnsolvable = errors.New("unsolvable equation")
)

// Stage names used in errors and in the step log.
const (
	StageInput      = "input"
	StageNormalize  = "normalize"
	StageValidate   = "validate"
	StageSubstitute = "substitute"
	StageParse      = "parse"
	StageReduce     = "reduce"
	StageSplit      = "split"
	StageMove       = "move"
	StageInvert     = "invert"
	StageResult     = "result"
)

// SolveError carries the failing stage and, when known, the offset in the
// normalized text.
type SolveError struct {
	Kind   error
	Stage  string
	Offset int
	Detail string
}

func (e *SolveError) Error() string {
	var b strings.Builder
	b.WriteString(e.Kind.Error())
	if e.Stage != "" {
		b.WriteString(" [" + e.Stage + "]")
	}
	if e.Detail != "" {
		b.WriteString(": " + e.Detail)
	}
	if e.Offset >= 0 {
		fmt.Fprintf(&b, " (offset %d)", e.Offset)
	}
	return b.String()
}

func (e *SolveError) Unwrap() error { return e.Kind }

func newError(kind error, stage string, offset int, format string, args ...interface{}) *SolveError {
	return &SolveError{Kind: kind, Stage: stage, Offset: offset, Detail: fmt.Sprintf(format, args...)}
}

func domainError(format string, args ...interface{}) *SolveError {
	return newError(ErrArithmeticDomain, "", -1, format, args...)
}

// RedundantBindingWarning lists bindings the equation never references.
// It is reported in Result.Warnings and never aborts a solve.
type RedundantBindingWarning struct {
	Names []string
}

func newRedundantBindingWarning(names []string) *RedundantBindingWarning {
	sorted := append([]string(nil), names...)
	sort.Strings(sorted)
	return &RedundantBindingWarning{Names: sorted}
}

func (w *RedundantBindingWarning) Error() string {
	return "redundant bindings ignored: " + strings.Join(w.Names, ", ")
}

// atStage stamps a stage onto a SolveError that was raised without one.
func atStage(err error, stage string) error {
	var se *SolveError
	if errors.As(err, &se) && se.Stage == "" {
		se.Stage = stage
	}
	return err
}
