package setup

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/povarna/generative-ai-agents/proposal-agent/internal/agents"
	"github.com/povarna/generative-ai-agents/proposal-agent/internal/config"
	"github.com/povarna/generative-ai-agents/proposal-agent/internal/events"
	"github.com/povarna/generative-ai-agents/proposal-agent/internal/guardrails"
	"github.com/povarna/generative-ai-agents/proposal-agent/internal/llm"
	"github.com/povarna/generative-ai-agents/proposal-agent/internal/llm/bedrock"
	"github.com/povarna/generative-ai-agents/proposal-agent/internal/llm/gpt"
	"github.com/povarna/generative-ai-agents/proposal-agent/internal/redis"
	"github.com/povarna/generative-ai-agents/proposal-agent/internal/tracing"
	"github.com/povarna/generative-ai-agents/proposal-agent/internal/upload"
	"github.com/povarna/generative-ai-agents/proposal-agent/internal/workflow"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

type Config struct {
	OpenAIKey          string
	VectorStoreID      string
	Port               string
	GuardrailProvider  string
	GuardrailModelID   string
	AWSRegion          string
	ClaudeModelID      string
	PollInterval       time.Duration
	PollTimeout        time.Duration
	MaxUploadBytes     int64
	RedisAddr          string
	RedisPassword      string
	RedisMaxRetries    int
	EventsStream       string
	LogLevel           string
	LogFormat          string
	ServiceName        string
	TracingExporter    string
	TracingEndpoint    string
	TracingInsecure    bool
	TracingSampleRatio float64
}

type Dependencies struct {
	Dispatcher   *workflow.Dispatcher
	Orchestrator *upload.Orchestrator
	Publisher    events.Publisher
	Redis        *goredis.Client
	Logger       *zerolog.Logger
}

// Close releases the Redis connection, if one was opened.
func (d *Dependencies) Close() error {
	if d.Redis == nil {
		return nil
	}
	return d.Redis.Close()
}

func LoadConfig() *Config {
	return &Config{
		OpenAIKey:          getEnv("OPENAI_API_KEY", ""),
		VectorStoreID:      getEnv("VECTOR_STORE_ID", ""),
		Port:               getEnv("CHAT_API_PORT", "8080"),
		GuardrailProvider:  getEnv("GUARDRAIL_LLM_PROVIDER", "openai"),
		GuardrailModelID:   getEnv("GUARDRAIL_MODEL_ID", "gpt-4.1-mini"),
		AWSRegion:          getEnv("AWS_REGION", "us-east-1"),
		ClaudeModelID:      getEnv("CLAUDE_MODEL_ID", ""),
		PollInterval:       getEnvDuration("UPLOAD_POLL_INTERVAL", upload.DefaultPollInterval),
		PollTimeout:        getEnvDuration("UPLOAD_POLL_TIMEOUT", upload.DefaultPollTimeout),
		MaxUploadBytes:     int64(getEnvInt("MAX_UPLOAD_BYTES", 32<<20)),
		RedisAddr:          getEnv("REDIS_ADDR", ""),
		RedisPassword:      getEnv("REDIS_PASSWORD", ""),
		RedisMaxRetries:    getEnvInt("REDIS_MAX_RETRIES", 3),
		EventsStream:       getEnv("EVENTS_STREAM", events.DefaultStream),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		LogFormat:          getEnv("LOG_FORMAT", "console"),
		ServiceName:        getEnv("OTEL_SERVICE_NAME", tracing.DefaultServiceName),
		TracingExporter:    getEnv("TRACING_EXPORTER", string(tracing.ExporterNone)),
		TracingEndpoint:    getEnv("TRACING_ENDPOINT", ""),
		TracingInsecure:    getEnvBool("TRACING_INSECURE", false),
		TracingSampleRatio: getEnvFloat("TRACING_SAMPLE_RATIO", 1),
	}
}

// TracingOptions maps the TRACING_* settings onto tracing.Init options.
func (c *Config) TracingOptions(version string) tracing.Options {
	return tracing.Options{
		ServiceName: c.ServiceName,
		Version:     version,
		Exporter:    tracing.Exporter(c.TracingExporter),
		Endpoint:    c.TracingEndpoint,
		Insecure:    c.TracingInsecure,
		SampleRatio: c.TracingSampleRatio,
	}
}

func Wire(ctx context.Context, cfg *Config, logger *zerolog.Logger) (*Dependencies, error) {
	openAIClient, err := gpt.NewClient(cfg.OpenAIKey, cfg.GuardrailModelID)
	if err != nil {
		return nil, fmt.Errorf("failed to create OpenAI client: %w", err)
	}

	guardrailLLM, err := createLLMClient(ctx, cfg.GuardrailProvider, cfg, openAIClient)
	if err != nil {
		return nil, fmt.Errorf("failed to create guardrail LLM client: %w", err)
	}

	// Load guardrail and agent configuration from YAML
	guardrailsCfg, err := config.LoadGuardrailsConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load guardrails config: %w", err)
	}
	agentsCfg, err := config.LoadAgentsConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load agents config: %w", err)
	}

	// Guardrails
	llmChecks, err := guardrails.NewLLMChecks(guardrailLLM, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to build LLM checks: %w", err)
	}
	checks := append([]guardrails.Check{
		guardrails.NewPIICheck(),
		guardrails.NewModerationCheck(openAIClient),
		guardrails.NewURLFilterCheck(),
	}, llmChecks...)
	guard := guardrails.NewGuard(guardrails.NewRunner(logger, checks...), guardrailsCfg, logger)

	// Agents
	if cfg.VectorStoreID == "" {
		logger.Warn().Msg("VECTOR_STORE_ID not set, file search and uploads are not indexed")
	}
	agentRunner := agents.NewResponsesRunner(openAIClient.Client, cfg.VectorStoreID, agentsCfg.Model, logger)
	dispatcher := workflow.NewDispatcher(guard, agentRunner, agentsCfg, logger)

	// Uploads
	orchestrator := upload.NewOrchestrator(upload.NewOpenAIStorage(openAIClient.Client), upload.Options{
		IndexID:      cfg.VectorStoreID,
		PollInterval: cfg.PollInterval,
		PollTimeout:  cfg.PollTimeout,
		MaxBytes:     cfg.MaxUploadBytes,
	}, logger)

	deps := &Dependencies{
		Dispatcher:   dispatcher,
		Orchestrator: orchestrator,
		Publisher:    events.NopPublisher{},
		Logger:       logger,
	}

	// Workflow events
	if cfg.RedisAddr == "" {
		logger.Info().Msg("REDIS_ADDR not set, workflow events are discarded")
		return deps, nil
	}
	redisClient, err := ConnectRedis(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	deps.Redis = redisClient
	deps.Publisher = events.NewStreamPublisher(redisClient, cfg.EventsStream, logger)

	return deps, nil
}

func ConnectRedis(ctx context.Context, cfg *Config, logger *zerolog.Logger) (*goredis.Client, error) {
	client, err := redis.Connect(ctx, redis.Options{
		Addr:       cfg.RedisAddr,
		Password:   cfg.RedisPassword,
		MaxRetries: cfg.RedisMaxRetries,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return client, nil
}

func getEnv(key string, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		value = defaultValue
	}

	return value
}

func getEnvInt(key string, defaultValue int) int {
	value, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvBool(key string, defaultValue bool) bool {
	value, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvFloat(key string, defaultValue float64) float64 {
	value, err := strconv.ParseFloat(os.Getenv(key), 64)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value, err := time.ParseDuration(os.Getenv(key))
	if err != nil || value <= 0 {
		return defaultValue
	}

	return value
}

func createLLMClient(ctx context.Context, provider string, cfg *Config, openAIClient *gpt.Client) (llm.LLMClient, error) {
	switch provider {
	case "bedrock":
		return bedrock.NewClient(ctx, cfg.AWSRegion, cfg.ClaudeModelID)
	case "openai":
		return openAIClient, nil
	default:
		return nil, fmt.Errorf("unknown LLM provider %q", provider)
	}
}
