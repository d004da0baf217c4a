package main

import (
	"flag"
	"fmt"
	"os"

	mcpserver "github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/cubelab/solfilter/internal/config"
	"github.com/cubelab/solfilter/internal/version"
	"github.com/cubelab/solfilter/mcp"
)

const serverName = "solfilter"

func main() {
	configPath := flag.String("config", "", "Configuration file path")
	flag.Parse()

	// MCP uses stdout for JSON-RPC, so logs go to stderr
	logger, err := zap.NewProduction()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		logger.Fatal("configuration error", zap.Error(err))
	}

	server := mcpserver.NewMCPServer(
		serverName,
		version.Short(),
		mcpserver.WithToolCapabilities(true),
		mcpserver.WithLogging(),
	)

	deps := mcp.NewDependencies(cfg, *configPath, mcp.WithLogger(logger))
	mcp.RegisterTools(server, mcp.NewHandlerSet(deps))

	logger.Info("starting MCP server",
		zap.String("name", serverName),
		zap.String("version", version.Short()),
		zap.Strings("tools", []string{"label_solutions", "label_file"}),
	)

	// Blocks until the client disconnects
	if err := mcpserver.ServeStdio(server); err != nil {
		logger.Error("server error", zap.Error(err))
		os.Exit(1)
	}
}
