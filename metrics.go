package gosolve

import (
	"context"
	"errors"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Labels: mode = "solve", "evaluate", "check"; result = "ok" or an
	// error label from errorLabel.
	solvesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gosolve_solves_total",
		Help: "Total solver calls by mode and result",
	}, []string{"mode", "result"})

	solveDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "gosolve_solve_duration_seconds",
		Help:    "Solver call duration",
		Buckets: []float64{0.00001, 0.0001, 0.001, 0.01, 0.1},
	})

	inversionSteps = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "gosolve_inversion_steps",
		Help:    "Operations undone per solved equation",
		Buckets: []float64{0, 1, 2, 5, 10, 20, 50},
	})

	memoHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "gosolve_memo_hits_total",
		Help: "Bracket groups served from the per-solve memo",
	})
)

// errorLabel maps an error to a bounded metric label.
func errorLabel(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrUnbalancedBrackets):
		return "unbalanced_brackets"
	case errors.Is(err, ErrUnderOrOverDetermined):
		return "under_or_over_determined"
	case errors.Is(err, ErrRepeatedUnknown):
		return "repeated_unknown"
	case errors.Is(err, ErrMalformedEquation):
		return "malformed"
	case errors.Is(err, ErrArithmeticDomain):
		return "domain"
	case errors.Is(err, ErrUnsolvable):
		return "unsolvable"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	}
	return "other"
}
