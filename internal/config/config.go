// Package config loads gosolve settings shared by the CLI and the tool
// server.
package config

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// EnvConfigPath names the config file when no path is given explicitly.
const EnvConfigPath = "GOSOLVE_CONFIG"

// Config contains all gosolve configuration.
//
// Thread Safety: Safe to read concurrently. Not safe to modify after creation.
type Config struct {
	Solver SolverConfig `json:"solver" yaml:"solver"`
	Server ServerConfig `json:"server" yaml:"server"`
	Log    LogConfig    `json:"log" yaml:"log"`
	Output OutputConfig `json:"output" yaml:"output"`
}

// SolverConfig maps onto gosolve.Solver options.
type SolverConfig struct {
	Tolerance      float64 `json:"tolerance" yaml:"tolerance" validate:"gt=0,lt=1"`
	MaxStepsFactor int     `json:"max_steps_factor" yaml:"max_steps_factor" validate:"gte=1,lte=100"`
	RecordSteps    bool    `json:"record_steps" yaml:"record_steps"`
}

// ServerConfig contains the tool server settings.
type ServerConfig struct {
	Addr         string        `json:"addr" yaml:"addr" validate:"required"`
	ReadTimeout  time.Duration `json:"read_timeout" yaml:"read_timeout" validate:"gt=0"`
	WriteTimeout time.Duration `json:"write_timeout" yaml:"write_timeout" validate:"gt=0"`
	SolveTimeout time.Duration `json:"solve_timeout" yaml:"solve_timeout" validate:"gt=0"`
	// RateLimit is requests per second; zero disables limiting.
	RateLimit    float64 `json:"rate_limit" yaml:"rate_limit" validate:"gte=0"`
	Burst        int     `json:"burst" yaml:"burst" validate:"gte=1"`
	MaxBodyBytes int64   `json:"max_body_bytes" yaml:"max_body_bytes" validate:"gte=1024"`
}

type LogConfig struct {
	Level  string `json:"level" yaml:"level" validate:"oneof=debug info warn error"`
	Format string `json:"format" yaml:"format" validate:"oneof=text json"`
}

// OutputConfig controls how the CLI prints answers.
type OutputConfig struct {
	// SigFigs rounds printed answers; zero prints them exactly.
	SigFigs int    `json:"sig_figs" yaml:"sig_figs" validate:"gte=0,lte=17"`
	Color   string `json:"color" yaml:"color" validate:"oneof=auto always never"`
}

// Default returns the default configuration.
func Default() Config {
	return Config{
		Solver: SolverConfig{
			Tolerance:      1e-9,
			MaxStepsFactor: 1,
			RecordSteps:    true,
		},
		Server: ServerConfig{
			Addr:         ":8080",
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			SolveTimeout: 2 * time.Second,
			RateLimit:    50,
			Burst:        100,
			MaxBodyBytes: 64 << 10,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Output: OutputConfig{
			SigFigs: 0,
			Color:   "auto",
		},
	}
}

// Load loads configuration with priority: env > file > defaults.
//
// Inputs:
//   - path: YAML file. Empty means $GOSOLVE_CONFIG, and a missing file means
//     defaults.
//
// Outputs:
//   - Config: Merged configuration.
//   - error: Non-nil if the file exists but is invalid, or validation fails.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		path = os.Getenv(EnvConfigPath)
	}
	if path != "" {
		if err := loadFile(path, &cfg); err != nil {
			return cfg, fmt.Errorf("load config file: %w", err)
		}
	}
	loadEnv(&cfg)
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func loadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

func loadEnv(cfg *Config) {
	if v := os.Getenv("GOSOLVE_LOG_LEVEL"); v != "" {
		cfg.Log.Level = strings.ToLower(v)
	}
	if v := os.Getenv("GOSOLVE_LOG_FORMAT"); v != "" {
		cfg.Log.Format = strings.ToLower(v)
	}
	if v := os.Getenv("GOSOLVE_ADDR"); v != "" {
		cfg.Server.Addr = v
	}
	if v := os.Getenv("GOSOLVE_RATE_LIMIT"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Server.RateLimit = f
		}
	}
	if v := os.Getenv("GOSOLVE_SIG_FIGS"); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			cfg.Output.SigFigs = i
		}
	}
}

var validate = validator.New()

// Validate checks every field against its constraints.
func (c Config) Validate() error {
	return validate.Struct(c)
}

// NewLogger builds the slog logger described by c.
func (c LogConfig) NewLogger(w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: c.level()}
	if c.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

func (c LogConfig) level() slog.Level {
	switch c.Level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}
