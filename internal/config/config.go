package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	LogLevel string

	DiscordToken      string
	AllowedChannelIDs []string

	OllamaURL   string
	OllamaModel string

	TavilyAPIKey string
	WhisperURL   string

	MemoryCapacity   int
	MaxIterations    int
	OracleTimeout    time.Duration
	ToolTimeout      time.Duration
	BashTimeout      time.Duration
	FetchTimeout     time.Duration

	NATSURL     string
	NATSSubject string

	MetricsPort string

	ChannelRatePerMinute int
}

// Load reads configuration from the environment, after sourcing a local
// .env file when present.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		LogLevel: mustEnv("LOG_LEVEL", "info"),

		DiscordToken:      mustEnv("DISCORD_TOKEN", ""),
		AllowedChannelIDs: splitList(mustEnv("ALLOWED_CHANNEL_IDS", "")),

		OllamaURL:   mustEnv("OLLAMA_URL", "http://localhost:11434"),
		OllamaModel: mustEnv("OLLAMA_MODEL", "llama3.1:8b"),

		TavilyAPIKey: mustEnv("TAVILY_API_KEY", ""),
		WhisperURL:   mustEnv("WHISPER_URL", "http://localhost:9000"),

		MemoryCapacity: mustEnvInt("MEMORY_CAPACITY", 20),
		MaxIterations:  mustEnvInt("AGENT_MAX_ITERATIONS", 5),
		OracleTimeout:  mustEnvDuration("ORACLE_TIMEOUT", 60*time.Second),
		ToolTimeout:    mustEnvDuration("TOOL_TIMEOUT", 30*time.Second),
		BashTimeout:    mustEnvDuration("BASH_TIMEOUT", 30*time.Second),
		FetchTimeout:   mustEnvDuration("FETCH_TIMEOUT", 30*time.Second),

		NATSURL:     mustEnv("NATS_URL", ""),
		NATSSubject: mustEnv("NATS_SUBJECT", "agent.runs"),

		MetricsPort: mustEnv("METRICS_PORT", "9090"),

		ChannelRatePerMinute: mustEnvInt("CHANNEL_RATE_PER_MINUTE", 6),
	}
}

func mustEnv(key, fallback string) string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	return v
}

func mustEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func mustEnvDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}

func splitList(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
