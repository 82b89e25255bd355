package main

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/njchilds90/gosolve"
)

// execute runs the root command once. Flag values persist on the package
// level commands, so each test drives a different subcommand.
func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	t.Setenv("GOSOLVE_CONFIG", "")
	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), errOut.String(), err
}

func TestParseSets(t *testing.T) {
	got, err := parseSets([]string{"P=101325", " v = 0.0224 ", "n=1e0"})
	require.NoError(t, err)
	assert.Equal(t, map[string]float64{"P": 101325, "v": 0.0224, "n": 1}, got)

	_, err = parseSets([]string{"P"})
	assert.Error(t, err)
	_, err = parseSets([]string{"=3"})
	assert.Error(t, err)
	_, err = parseSets([]string{"P=abc"})
	assert.Error(t, err)
}

func TestSolveCommand(t *testing.T) {
	out, _, err := execute(t, "solve", "p*v = n*8.3145*t", "--set", "p=101325", "--set", "v=0.0224", "--set", "n=1", "--sig", "3")
	require.NoError(t, err)
	assert.Equal(t, "t = 273\n", out)
}

func TestEvalCommand(t *testing.T) {
	out, _, err := execute(t, "eval", "2+3*4")
	require.NoError(t, err)
	assert.Equal(t, "14\n", out)
}

func TestCheckCommand_ReportsFailure(t *testing.T) {
	out, _, err := execute(t, "check", "2+3*4=20")
	require.Error(t, err)
	assert.Contains(t, out, "false")
}

func TestNormalizeCommand(t *testing.T) {
	out, _, err := execute(t, "normalize", "2 ** X + [y]")
	require.NoError(t, err)
	assert.Equal(t, "2^x+(y)\n", out)
}

func TestParseCommand(t *testing.T) {
	out, _, err := execute(t, "parse", "sqrt(x)=2")
	require.NoError(t, err)
	assert.Contains(t, out, `"func":"sqrt"`)
	assert.Contains(t, out, `latex: \sqrt{x} = 2`)
}

func TestIdealGasCommand(t *testing.T) {
	out, _, err := execute(t, "ideal-gas", "--set", "P=101325", "--set", "V=0.0224", "--set", "T=273.15", "--sig", "3")
	require.NoError(t, err)
	assert.Contains(t, out, "P*V = n*8.3145*T")
	assert.Contains(t, out, "n = 0.999")
}

func TestPrinter_FailMarksReported(t *testing.T) {
	var out, errOut bytes.Buffer
	p := newPrinter(&out, &errOut, "never", 0)
	err := p.fail(gosolve.ErrUnsolvable)
	var r reported
	assert.True(t, errors.As(err, &r))
	assert.ErrorIs(t, err, gosolve.ErrUnsolvable)
	assert.Equal(t, "error: unsolvable equation\n", errOut.String())
}

func TestPrinter_Number(t *testing.T) {
	p := newPrinter(&bytes.Buffer{}, &bytes.Buffer{}, "never", 0)
	assert.Equal(t, "0.1", p.number(0.1))
	p.sigFigs = 2
	assert.Equal(t, "0.33", p.number(1.0/3))
}
