package config

import (
	"log/slog"
	"os"
	"strings"
)

// Provider selects the model backend the oracle talks to.
type Provider string

const (
	ProviderOllama    Provider = "ollama"
	ProviderOpenAI    Provider = "openai"
	ProviderAnthropic Provider = "anthropic"
	ProviderBedrock   Provider = "bedrock"
)

// Config holds all configuration values.
type Config struct {
	// SurrealDB connection
	SurrealDBURL       string
	SurrealDBNamespace string
	SurrealDBDatabase  string
	SurrealDBUser      string
	SurrealDBPass      string
	SurrealDBAuthLevel string

	// Oracle model backend
	LLMProvider     Provider
	LLMModel        string
	OllamaHost      string
	OpenAIAPIKey    string
	AnthropicAPIKey string
	BedrockRegion   string

	// Machine profile and DRO feed
	ProfilePath string
	FeedURL     string

	// Logging
	LogFile  string
	LogLevel slog.Level
}

// Load reads configuration from environment variables.
func Load() Config {
	return Config{
		SurrealDBURL:       getEnv("SURREALDB_URL", "ws://localhost:8000/rpc"),
		SurrealDBNamespace: getEnv("SURREALDB_NAMESPACE", "millwright"),
		SurrealDBDatabase:  getEnv("SURREALDB_DATABASE", "shop"),
		SurrealDBUser:      getEnv("SURREALDB_USER", "root"),
		SurrealDBPass:      getEnv("SURREALDB_PASS", "root"),
		SurrealDBAuthLevel: getEnv("SURREALDB_AUTH_LEVEL", "root"),

		LLMProvider:     Provider(getEnv("MILLWRIGHT_LLM_PROVIDER", "ollama")),
		LLMModel:        getEnv("MILLWRIGHT_LLM_MODEL", "qwen2.5:14b"),
		OllamaHost:      getEnv("OLLAMA_HOST", "http://localhost:11434"),
		OpenAIAPIKey:    getEnv("OPENAI_API_KEY", ""),
		AnthropicAPIKey: getEnv("ANTHROPIC_API_KEY", ""),
		BedrockRegion:   getEnv("MILLWRIGHT_BEDROCK_REGION", ""),

		ProfilePath: getEnv("MILLWRIGHT_PROFILE", ""),
		FeedURL:     getEnv("MILLWRIGHT_FEED_URL", "ws://localhost:8181/dro"),

		LogFile:  getEnv("MILLWRIGHT_LOG_FILE", "/tmp/millwright.log"),
		LogLevel: parseLogLevel(getEnv("MILLWRIGHT_LOG_LEVEL", "INFO")),
	}
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func parseLogLevel(s string) slog.Level {
	switch strings.ToUpper(s) {
	case "DEBUG":
		return slog.LevelDebug
	case "INFO":
		return slog.LevelInfo
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
