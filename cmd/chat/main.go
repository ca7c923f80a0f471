package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/povarna/generative-ai-agents/proposal-agent/internal/api"
	"github.com/povarna/generative-ai-agents/proposal-agent/internal/models"
	"github.com/povarna/generative-ai-agents/proposal-agent/internal/setup"
	"github.com/povarna/generative-ai-agents/proposal-agent/internal/tracing"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	message := flag.String("message", api.DefaultMessage, "message to send")
	filePath := flag.String("file", "", "optional document to upload first")
	flag.Parse()

	// Setup logging
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	logger := log.Logger

	if err := godotenv.Load(); err != nil {
		log.Warn().Msg("No .env file found")
	}

	ctx := context.Background()
	cfg := setup.LoadConfig()

	shutdownTracing, err := tracing.Init(ctx, cfg.TracingOptions(api.Version))
	if err != nil {
		log.Fatal().Err(err).Msg("Unable to initialise tracing")
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(flushCtx); err != nil {
			log.Warn().Err(err).Msg("Failed to flush traces")
		}
	}()

	deps, err := setup.Wire(ctx, cfg, &logger)
	if err != nil {
		log.Fatal().Err(err).Msg("Unable to load dependencies")
	}
	defer deps.Close()

	response := api.ChatResponse{RequestID: uuid.NewString()}

	if *filePath != "" {
		data, err := os.ReadFile(*filePath)
		if err != nil {
			log.Fatal().Err(err).Str("file", *filePath).Msg("Failed to read file")
		}
		name := filepath.Base(*filePath)
		response.File, err = deps.Orchestrator.Ingest(ctx, data, name, mime.TypeByExtension(filepath.Ext(name)))
		if err != nil {
			log.Fatal().Err(err).Msg("Upload failed")
		}
	}

	result, err := deps.Dispatcher.Run(ctx, &models.WorkflowInput{InputAsText: *message})
	if err != nil {
		log.Fatal().Err(err).Msg("Workflow failed")
	}

	response.Success = true
	response.Output = result.Output()
	response.Raw = result.Raw()
	response.Timestamp = time.Now().UTC().Format(time.RFC3339Nano)

	out, err := json.MarshalIndent(response, "", "  ")
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to encode result")
	}
	fmt.Println(string(out))
}
