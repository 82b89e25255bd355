package template_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/njchilds90/gosolve"
	"github.com/njchilds90/gosolve/template"
)

func TestIdealGas_Default(t *testing.T) {
	eq := template.IdealGas()
	assert.Equal(t, template.Equation{LHS: "P*V", RHS: "n*8.3145*T"}, eq)
	assert.Equal(t, "P*V = n*8.3145*T", eq.String())
}

func TestIdealGas_Options(t *testing.T) {
	eq := template.IdealGas(
		template.WithPressure("p1"),
		template.WithVolume("v1"),
		template.WithMoles("m"),
		template.WithTemperature("t1"),
		template.WithGasConstant(8.314),
	)
	assert.Equal(t, "p1*v1", eq.LHS)
	assert.Equal(t, "m*8.314*t1", eq.RHS)
}

func TestEquation_Symbols(t *testing.T) {
	names, err := template.IdealGas().Symbols()
	require.NoError(t, err)
	assert.Equal(t, []string{"p", "v", "n", "t"}, names)
}

func TestEquation_Solve_Temperature(t *testing.T) {
	got, err := template.IdealGas().Solve(map[string]float64{"P": 101325, "V": 0.0224, "n": 1})
	require.NoError(t, err)
	assert.InDelta(t, 273.15, got, 0.5)
}

func TestEquation_Solve_IgnoresUnrelatedBindings(t *testing.T) {
	got, err := template.IdealGas().Solve(map[string]float64{"P": 101325, "V": 0.0224, "T": 273.15, "rho": 1.2})
	require.NoError(t, err)
	assert.InDelta(t, 1.0, got, 0.01)
}

func TestEquation_Consistent(t *testing.T) {
	eq := template.IdealGas()
	ok, err := eq.Consistent(map[string]float64{"P": 101325, "V": 0.0224, "n": 1, "T": 273}, template.ConsistencySigFigs)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = eq.Consistent(map[string]float64{"P": 101325, "V": 0.0224, "n": 1, "T": 300}, template.ConsistencySigFigs)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSet_With_DoesNotAlias(t *testing.T) {
	base := template.Set{template.IdealGas()}
	a := base.With(template.Equation{LHS: "a", RHS: "1"})
	b := base.With(template.Equation{LHS: "b", RHS: "2"})
	assert.Len(t, base, 1)
	assert.Equal(t, "a", a[1].LHS)
	assert.Equal(t, "b", b[1].LHS)
}

func TestSet_Apply_Stacks(t *testing.T) {
	set := template.Set{}.Apply(template.IdealGasAssumption(), template.IdealGasAssumption())
	assert.Equal(t, template.Set{template.IdealGas(), template.IdealGas()}, set)
}

func TestSet_Solve_Chains(t *testing.T) {
	set := template.Set{
		{LHS: "m", RHS: "n*0.028"},
	}.Apply(template.IdealGasAssumption())

	got, err := set.Solve(context.Background(), gosolve.New(), map[string]float64{"m": 0.028, "P": 101325, "V": 0.0224})
	require.NoError(t, err)
	assert.InDelta(t, 1.0, got["n"], 1e-9)
	assert.InDelta(t, 273.15, got["t"], 0.5)
}

func TestSet_Solve_Stalls(t *testing.T) {
	set := template.Set{template.IdealGas()}
	_, err := set.Solve(context.Background(), gosolve.New(), map[string]float64{"P": 1})
	assert.ErrorIs(t, err, template.ErrStalled)
}
