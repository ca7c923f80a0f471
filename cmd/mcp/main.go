package main

import (
	"context"
	"errors"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/povarna/generative-ai-agents/proposal-agent/internal/api"
	"github.com/povarna/generative-ai-agents/proposal-agent/internal/mcpadapter"
	"github.com/povarna/generative-ai-agents/proposal-agent/internal/setup"
	"github.com/povarna/generative-ai-agents/proposal-agent/internal/tracing"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	// Setup logging; stdout belongs to the MCP transport
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	logger := log.Logger

	// Load env
	_ = godotenv.Load()

	// Graceful shutdown on SIGINT/SIGTERM
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := setup.LoadConfig()

	// stdout spans go to stderr so they never mix with the stdio transport
	shutdownTracing, err := tracing.Init(ctx, cfg.TracingOptions(api.Version))
	if err != nil {
		logger.Error().Err(err).Msg("Unable to initialise tracing")
		os.Exit(1)
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(flushCtx); err != nil {
			logger.Warn().Err(err).Msg("Failed to flush traces")
		}
	}()

	deps, err := setup.Wire(ctx, cfg, &logger)
	if err != nil {
		logger.Error().Err(err).Msg("Unable to load dependencies")
		os.Exit(1)
	}
	defer deps.Close()

	server := createMCPServer(deps)

	// Run over stdio
	if err := server.Run(ctx, &mcp.StdioTransport{}); err != nil {
		// EOF / "server is closing" is expected when stdin closes
		if errors.Is(err, io.EOF) || strings.Contains(err.Error(), "server is closing") {
			logger.Debug().Err(err).Msg("MCP server stopped")
			return
		}
		logger.Error().Err(err).Msg("Failed to run mcp server")
		os.Exit(1)
	}
}

func createMCPServer(deps *setup.Dependencies) *mcp.Server {
	server := mcp.NewServer(
		&mcp.Implementation{
			Name:    "proposal-agent",
			Version: api.Version,
		}, nil,
	)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "run_workflow",
		Description: "Run the guarded proposal workflow on a message, optionally uploading a local document first. Evaluation keywords (evaluate, review, audit...) route to the document evaluator; anything else goes to web search.",
	}, mcpadapter.NewRunWorkflowHandler(deps.Dispatcher, deps.Orchestrator))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "ingest_file",
		Description: "Upload a local document and add it to the search index used by the evaluator",
	}, mcpadapter.NewIngestFileHandler(deps.Orchestrator))

	return server
}
