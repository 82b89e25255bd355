package config

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "gosolve.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestDefault_IsValid(t *testing.T) {
	require.NoError(t, Default().Validate())
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	t.Setenv(EnvConfigPath, "")
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
solver:
  tolerance: 0.000001
  max_steps_factor: 2
server:
  addr: "127.0.0.1:9000"
  solve_timeout: 500ms
log:
  level: debug
  format: json
output:
  sig_figs: 3
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 1e-6, cfg.Solver.Tolerance)
	assert.Equal(t, 2, cfg.Solver.MaxStepsFactor)
	assert.Equal(t, "127.0.0.1:9000", cfg.Server.Addr)
	assert.Equal(t, 500*time.Millisecond, cfg.Server.SolveTimeout)
	assert.Equal(t, 3, cfg.Output.SigFigs)
	assert.Equal(t, "json", cfg.Log.Format)
	// Untouched fields keep their defaults.
	assert.Equal(t, Default().Server.Burst, cfg.Server.Burst)
}

func TestLoad_PathFromEnvironment(t *testing.T) {
	path := writeConfig(t, "log:\n  level: warn\n")
	t.Setenv(EnvConfigPath, path)
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeConfig(t, "server:\n  addr: \":1\"\n")
	t.Setenv("GOSOLVE_ADDR", ":2")
	t.Setenv("GOSOLVE_SIG_FIGS", "4")
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":2", cfg.Server.Addr)
	assert.Equal(t, 4, cfg.Output.SigFigs)
}

func TestLoad_RejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"zero tolerance", "solver:\n  tolerance: 0\n"},
		{"bad log level", "log:\n  level: loud\n"},
		{"bad color", "output:\n  color: sometimes\n"},
		{"tiny body limit", "server:\n  max_body_bytes: 10\n"},
		{"not yaml", "solver: [\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			assert.Error(t, err)
		})
	}
}

func TestLogConfig_NewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := LogConfig{Level: "warn", Format: "json"}.NewLogger(&buf)
	logger.Info("hidden")
	logger.Warn("shown")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), `"msg":"shown"`)
}
