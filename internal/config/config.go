package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	ProviderGemini = "gemini"
	ProviderGroq   = "groq"

	defaultGeminiModel    = "gemini-2.5-flash"
	defaultGroqModel      = "llama-3.3-70b-versatile"
	defaultGroqAPIURL     = "https://api.groq.com/openai/v1/chat/completions"
	defaultDatabasePath   = "data/todays-meal.db"
	defaultRequestTimeout = 90 * time.Second
)

// Config holds the configuration for the application.
type Config struct {
	Env      string
	LogLevel string

	LLMProvider  string
	GeminiAPIKey string
	GeminiModel  string
	GroqAPIKey   string
	GroqModel    string
	GroqAPIURL   string

	DatabasePath string

	// RequestTimeout bounds a single generation started by a front end.
	// The generation client itself never imposes one.
	RequestTimeout time.Duration

	Port string

	// Telegram Config
	TelegramBotToken       string
	TelegramWebhookURL     string
	TelegramAllowedUserIDs []int64
	AdminTelegramID        int64
}

// fileConfig is the optional YAML overlay. Environment variables win over it.
type fileConfig struct {
	LLM struct {
		Provider    string `yaml:"provider"`
		GeminiModel string `yaml:"gemini_model"`
		GroqModel   string `yaml:"groq_model"`
	} `yaml:"llm"`
	DatabasePath   string `yaml:"database_path"`
	RequestTimeout string `yaml:"request_timeout"`
}

// NewFromEnv creates a new Config object from environment variables, layered on
// top of the YAML file named by CONFIG_FILE (default config.yaml) when present.
//
// The model credential is deliberately not checked here: a missing key only
// surfaces as a failed generation.
func NewFromEnv() (*Config, error) {
	cfg := &Config{
		Env:            "development",
		LLMProvider:    ProviderGemini,
		GeminiModel:    defaultGeminiModel,
		GroqModel:      defaultGroqModel,
		GroqAPIURL:     defaultGroqAPIURL,
		DatabasePath:   defaultDatabasePath,
		RequestTimeout: defaultRequestTimeout,
		Port:           "8080",
	}

	path := os.Getenv("CONFIG_FILE")
	if path == "" {
		path = "config.yaml"
	}
	if err := cfg.LoadFromYAML(path); err != nil {
		return nil, err
	}

	setString(&cfg.Env, "ENV")
	setString(&cfg.LogLevel, "LOG_LEVEL")
	setString(&cfg.LLMProvider, "LLM_PROVIDER")
	setString(&cfg.GeminiModel, "GEMINI_MODEL")
	setString(&cfg.GroqModel, "GROQ_MODEL")
	setString(&cfg.GroqAPIURL, "GROQ_API_URL")
	setString(&cfg.DatabasePath, "DATABASE_PATH")
	setString(&cfg.Port, "PORT")

	cfg.GeminiAPIKey = os.Getenv("GEMINI_API_KEY")
	if cfg.GeminiAPIKey == "" {
		cfg.GeminiAPIKey = os.Getenv("API_KEY")
	}
	cfg.GroqAPIKey = os.Getenv("GROQ_API_KEY")

	if v := os.Getenv("REQUEST_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("invalid REQUEST_TIMEOUT %q: %w", v, err)
		}
		cfg.RequestTimeout = d
	}

	// Telegram Config (Optional for CLI, required for Bot)
	cfg.TelegramBotToken = os.Getenv("TELEGRAM_BOT_TOKEN")
	cfg.TelegramWebhookURL = os.Getenv("TELEGRAM_WEBHOOK_URL")

	ids, err := parseIDList(os.Getenv("TELEGRAM_ALLOWED_USER_IDS"))
	if err != nil {
		return nil, fmt.Errorf("invalid TELEGRAM_ALLOWED_USER_IDS: %w", err)
	}
	cfg.TelegramAllowedUserIDs = ids

	if v := os.Getenv("ADMIN_TELEGRAM_ID"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid ADMIN_TELEGRAM_ID %q: %w", v, err)
		}
		cfg.AdminTelegramID = id
	}

	cfg.LLMProvider = strings.ToLower(cfg.LLMProvider)
	if cfg.LLMProvider != ProviderGemini && cfg.LLMProvider != ProviderGroq {
		return nil, fmt.Errorf("unsupported LLM_PROVIDER %q", cfg.LLMProvider)
	}

	return cfg, nil
}

// LoadFromYAML applies the YAML overlay at path. A missing file is not an error.
func (c *Config) LoadFromYAML(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read config file: %w", err)
	}

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	if fc.LLM.Provider != "" {
		c.LLMProvider = fc.LLM.Provider
	}
	if fc.LLM.GeminiModel != "" {
		c.GeminiModel = fc.LLM.GeminiModel
	}
	if fc.LLM.GroqModel != "" {
		c.GroqModel = fc.LLM.GroqModel
	}
	if fc.DatabasePath != "" {
		c.DatabasePath = fc.DatabasePath
	}
	if fc.RequestTimeout != "" {
		d, err := time.ParseDuration(fc.RequestTimeout)
		if err != nil {
			return fmt.Errorf("invalid request_timeout %q: %w", fc.RequestTimeout, err)
		}
		c.RequestTimeout = d
	}
	return nil
}

// RequireTelegram reports missing settings the bot cannot start without.
func (c *Config) RequireTelegram() error {
	if c.TelegramBotToken == "" {
		return fmt.Errorf("TELEGRAM_BOT_TOKEN environment variable not set")
	}
	if c.TelegramWebhookURL == "" {
		return fmt.Errorf("TELEGRAM_WEBHOOK_URL environment variable not set")
	}
	return nil
}

// IsAllowed reports whether a Telegram user may talk to the bot.
// An empty allow list admits everyone.
func (c *Config) IsAllowed(userID int64) bool {
	if len(c.TelegramAllowedUserIDs) == 0 {
		return true
	}
	for _, id := range c.TelegramAllowedUserIDs {
		if id == userID {
			return true
		}
	}
	return false
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func parseIDList(s string) ([]int64, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	var ids []int64
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%q is not a user id", part)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
