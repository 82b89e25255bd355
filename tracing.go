package gosolve

import (
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

var (
	tracerOnce  sync.Once
	solveTracer trace.Tracer
)

// getTracer returns the OTel tracer, initializing it lazily so the package
// works whether or not a provider is installed.
func getTracer() trace.Tracer {
	tracerOnce.Do(func() {
		solveTracer = otel.Tracer("github.com/njchilds90/gosolve")
	})
	return solveTracer
}
