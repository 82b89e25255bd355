// Command mcp-server serves the gosolve tool interface over HTTP.
//
// Exposes the solver's tools as an HTTP endpoint for AI agent frameworks.
//
// Usage:
//
//	go run ./cmd/mcp-server --addr :8080 --config gosolve.yaml
//
// Tool call endpoint: POST /tool
// Typed solve:        POST /v1/solve
// Schema endpoint:    GET  /schema
// Health endpoint:    GET  /health
// Metrics:            GET  /metrics
package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/njchilds90/gosolve/internal/config"
	"github.com/njchilds90/gosolve/internal/server"
)

func main() {
	var configPath, addr string
	cmd := &cobra.Command{
		Use:          "mcp-server",
		Short:        "Serve gosolve tools over HTTP",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Server.Addr = addr
			}
			logger := cfg.Log.NewLogger(os.Stderr)
			logger.Info("routes",
				"tool", "POST /tool",
				"solve", "POST /v1/solve",
				"schema", "GET /schema",
				"health", "GET /health",
				"metrics", "GET /metrics")

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return server.New(cfg, logger).Run(ctx)
		},
	}
	cmd.Flags().StringVar(&configPath, "config", "", "YAML config file (default $"+config.EnvConfigPath+")")
	cmd.Flags().StringVar(&addr, "addr", "", "Listen address, overrides server.addr")

	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
