// Package config builds runtime configuration from the environment so main
// stays lean.
package config

import (
	"os"
	"strconv"
	"time"
)

// Config captures everything the explainer needs at startup.
type Config struct {
	// Addr is the HTTP listen address.
	Addr string

	// EnginePath locates the UCI engine binary.
	EnginePath string
	// EngineDepth is the search depth used for every evaluation.
	EngineDepth int
	// EnginePoolSize is the number of engine processes; 1 serializes all
	// searches through a single connection.
	EnginePoolSize int
	// SearchTimeout bounds one engine search.
	SearchTimeout time.Duration

	// LLMProvider selects the explanation backend: "ollama" or "groq".
	LLMProvider string
	// OllamaURL and OllamaModel configure the ollama provider.
	OllamaURL   string
	OllamaModel string
	// GroqAPIKey and GroqModel configure the groq provider.
	GroqAPIKey string
	GroqModel  string
	// ExplainTimeout bounds one explanation call including retries.
	ExplainTimeout time.Duration
	// ExplainRetries is the number of retries after the first attempt.
	ExplainRetries uint64
}

// FromEnv reads configuration from environment variables, falling back to
// development defaults.
func FromEnv() Config {
	return Config{
		Addr:           envString("MOVEXPLAINER_ADDR", ":8080"),
		EnginePath:     envString("STOCKFISH_PATH", "stockfish"),
		EngineDepth:    envInt("ENGINE_DEPTH", 15),
		EnginePoolSize: envInt("ENGINE_POOL_SIZE", 1),
		SearchTimeout:  envDuration("ENGINE_SEARCH_TIMEOUT", 30*time.Second),
		LLMProvider:    envString("LLM_PROVIDER", "ollama"),
		OllamaURL:      envString("OLLAMA_URL", "http://localhost:11434"),
		OllamaModel:    envString("OLLAMA_MODEL", "mistral"),
		GroqAPIKey:     os.Getenv("GROQ_API_KEY"),
		GroqModel:      envString("GROQ_MODEL", "llama-3.1-8b-instant"),
		ExplainTimeout: envDuration("EXPLAIN_TIMEOUT", 30*time.Second),
		ExplainRetries: uint64(envInt("EXPLAIN_RETRIES", 3)),
	}
}

func envString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
