package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Supported model backend providers.
const (
	ProviderGemini = "gemini"
	ProviderGroq   = "groq"
	ProviderOllama = "ollama"
)

// Config holds the configuration for the application.
type Config struct {
	// Model backend selection. One of gemini, groq, ollama.
	LLMProvider string

	GeminiAPIKey string
	GeminiModel  string

	GroqAPIKey string
	GroqModel  string

	OllamaBaseURL string
	OllamaModel   string

	// Per-backend-call timeout for the generation pipeline.
	GenerateTimeout time.Duration

	// Data locations.
	DataDir         string
	PreferencesPath string
	DatabasePath    string

	// Policy: the ingredient injected when a plan has no oily fish day.
	// A configured default, not a taste inference.
	OilyFishIngredient string

	// Restores the original pantry-staple filter on shopping lists.
	ExcludePantryStaples bool

	// Cart submission collaborator.
	CartAPIURL string
	CartAPIKey string // id:secret
	CartUserID string

	// Telegram config (optional for the CLI, required for the bot).
	TelegramBotToken       string
	TelegramWebhookURL     string
	TelegramAllowedUserIDs []int64
	ListenAddr             string
}

// NewFromEnv creates a new Config object from environment variables.
func NewFromEnv() (*Config, error) {
	provider := strings.ToLower(os.Getenv("LLM_PROVIDER"))
	if provider == "" {
		provider = ProviderGemini
	}

	cfg := &Config{
		LLMProvider:        provider,
		GeminiAPIKey:       os.Getenv("GEMINI_API_KEY"),
		GeminiModel:        envOr("GEMINI_MODEL", "gemini-1.5-flash"),
		GroqAPIKey:         os.Getenv("GROQ_API_KEY"),
		GroqModel:          envOr("GROQ_MODEL", "llama-3.3-70b-versatile"),
		OllamaBaseURL:      envOr("OLLAMA_BASE_URL", "http://localhost:11434"),
		OllamaModel:        envOr("OLLAMA_MODEL", "llama3"),
		DataDir:            envOr("DATA_DIR", "data"),
		OilyFishIngredient: envOr("OILY_FISH_INGREDIENT", "salmon fillet"),
		CartAPIURL:         os.Getenv("CART_API_URL"),
		CartAPIKey:         os.Getenv("CART_API_KEY"),
		CartUserID:         os.Getenv("CART_USER_ID"),
		TelegramBotToken:   os.Getenv("TELEGRAM_BOT_TOKEN"),
		TelegramWebhookURL: os.Getenv("TELEGRAM_WEBHOOK_URL"),
		ListenAddr:         envOr("LISTEN_ADDR", ":8080"),
	}

	cfg.PreferencesPath = envOr("PREFERENCES_PATH", cfg.DataDir+"/preferences.json")
	cfg.DatabasePath = envOr("DATABASE_PATH", cfg.DataDir+"/mealplanner.db")

	switch provider {
	case ProviderGemini:
		if cfg.GeminiAPIKey == "" {
			return nil, fmt.Errorf("GEMINI_API_KEY environment variable not set")
		}
	case ProviderGroq:
		if cfg.GroqAPIKey == "" {
			return nil, fmt.Errorf("GROQ_API_KEY environment variable not set")
		}
	case ProviderOllama:
		// Local server, no credentials required.
	default:
		return nil, fmt.Errorf("unknown LLM_PROVIDER %q: expected gemini, groq or ollama", provider)
	}

	cfg.GenerateTimeout = 60 * time.Second
	if v := os.Getenv("GENERATE_TIMEOUT_SECONDS"); v != "" {
		secs, err := strconv.Atoi(v)
		if err != nil || secs <= 0 {
			return nil, fmt.Errorf("invalid GENERATE_TIMEOUT_SECONDS %q", v)
		}
		cfg.GenerateTimeout = time.Duration(secs) * time.Second
	}

	if v := os.Getenv("EXCLUDE_PANTRY_STAPLES"); v != "" {
		cfg.ExcludePantryStaples = v == "1" || strings.EqualFold(v, "true")
	}

	if v := os.Getenv("TELEGRAM_ALLOWED_USER_IDS"); v != "" {
		for _, part := range strings.Split(v, ",") {
			id, err := strconv.ParseInt(strings.TrimSpace(part), 10, 64)
			if err != nil {
				return nil, fmt.Errorf("invalid TELEGRAM_ALLOWED_USER_IDS entry %q", part)
			}
			cfg.TelegramAllowedUserIDs = append(cfg.TelegramAllowedUserIDs, id)
		}
	}

	return cfg, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
