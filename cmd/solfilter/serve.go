package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/cubelab/solfilter/domain"
	"github.com/cubelab/solfilter/internal/config"
	"github.com/cubelab/solfilter/server"
	"github.com/cubelab/solfilter/service"
	"github.com/cubelab/solfilter/transport"
)

// ServeCommand represents the serve command
type ServeCommand struct {
	addr       string
	configFile string
}

// NewServeCommand creates a new serve command
func NewServeCommand() *ServeCommand {
	return &ServeCommand{}
}

// CreateCobraCommand creates the cobra command for the HTTP worker
func (c *ServeCommand) CreateCobraCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve labeling requests over HTTP",
		Long: `Run an HTTP worker that labels batches posted as JSON.

Endpoints:
  POST /v1/label   {"solutions": [...], "config": {...}}
  GET  /healthz    liveness and build information
  GET  /metrics    Prometheus metrics

Request config keys overlay the [filter] section of the configuration file.

Examples:
  # Listen on the configured address (default :8080)
  solfilter serve

  # Listen on another port
  solfilter serve --addr 127.0.0.1:9000`,
		Args: cobra.NoArgs,
		RunE: c.runServe,
	}

	cmd.Flags().StringVar(&c.addr, "addr", "", "Listen address (overrides server.addr)")
	cmd.Flags().StringVarP(&c.configFile, "config", "c", "", "Configuration file path")

	return cmd
}

func (c *ServeCommand) runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfig(c.configFile)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	serverConfig := server.Config{
		Addr:            cfg.Server.Addr,
		RequestTimeout:  time.Duration(cfg.Server.RequestTimeoutSeconds) * time.Second,
		ShutdownTimeout: time.Duration(domain.DefaultShutdownTimeoutSeconds) * time.Second,
	}
	if c.addr != "" {
		serverConfig.Addr = c.addr
	}

	logger, err := zap.NewProduction()
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	worker := transport.NewWorker(
		service.NewFilterService(logger.Named("service"), nil),
		transport.WithLogger(logger.Named("worker")),
		transport.WithMaxBatchSize(cfg.Server.MaxBatchSize),
		transport.WithBaseConfig(cfg.Filter.ToFilterConfig()),
	)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Fprintf(cmd.ErrOrStderr(), "🚀 solfilter worker listening on %s\n", serverConfig.Addr)
	return server.New(serverConfig, worker, logger.Named("http")).Run(ctx)
}

// NewServeCmd creates and returns the serve cobra command
func NewServeCmd() *cobra.Command {
	return NewServeCommand().CreateCobraCommand()
}
