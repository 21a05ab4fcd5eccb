package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestNewFromEnv(t *testing.T) {
	// Helper function to set environment variables for a test
	setEnv := func(key, value string) {
		t.Helper()
		t.Setenv(key, value)
	}

	// Point at a file that does not exist so a stray config.yaml cannot leak in.
	setEnv("CONFIG_FILE", filepath.Join(t.TempDir(), "absent.yaml"))

	t.Run("Defaults", func(t *testing.T) {
		for _, key := range []string{"LLM_PROVIDER", "GEMINI_API_KEY", "API_KEY", "GEMINI_MODEL", "REQUEST_TIMEOUT", "TELEGRAM_ALLOWED_USER_IDS", "ADMIN_TELEGRAM_ID"} {
			setEnv(key, "")
		}

		cfg, err := NewFromEnv()
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if cfg.LLMProvider != ProviderGemini {
			t.Errorf("Expected provider '%s', got '%s'", ProviderGemini, cfg.LLMProvider)
		}
		if cfg.GeminiModel != "gemini-2.5-flash" {
			t.Errorf("Expected GeminiModel 'gemini-2.5-flash', got '%s'", cfg.GeminiModel)
		}
		if cfg.RequestTimeout != 90*time.Second {
			t.Errorf("Expected RequestTimeout 90s, got %v", cfg.RequestTimeout)
		}
	})

	t.Run("MissingGeminiAPIKeyIsNotAnError", func(t *testing.T) {
		setEnv("GEMINI_API_KEY", "")
		setEnv("API_KEY", "")

		cfg, err := NewFromEnv()
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if cfg.GeminiAPIKey != "" {
			t.Errorf("Expected empty GeminiAPIKey, got '%s'", cfg.GeminiAPIKey)
		}
	})

	t.Run("APIKeyFallback", func(t *testing.T) {
		setEnv("GEMINI_API_KEY", "")
		setEnv("API_KEY", "legacy_key")

		cfg, err := NewFromEnv()
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if cfg.GeminiAPIKey != "legacy_key" {
			t.Errorf("Expected GeminiAPIKey to be 'legacy_key', got '%s'", cfg.GeminiAPIKey)
		}
	})

	t.Run("UnknownProvider", func(t *testing.T) {
		setEnv("LLM_PROVIDER", "openai")
		defer os.Unsetenv("LLM_PROVIDER")

		_, err := NewFromEnv()
		if err == nil {
			t.Fatal("Expected an error for an unknown provider, got nil")
		}
		expectedError := `unsupported LLM_PROVIDER "openai"`
		if err.Error() != expectedError {
			t.Errorf("Expected error '%s', got '%s'", expectedError, err.Error())
		}
	})

	t.Run("AllowedUserIDs", func(t *testing.T) {
		setEnv("LLM_PROVIDER", "")
		setEnv("TELEGRAM_ALLOWED_USER_IDS", "42, 7")
		setEnv("ADMIN_TELEGRAM_ID", "42")

		cfg, err := NewFromEnv()
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if len(cfg.TelegramAllowedUserIDs) != 2 {
			t.Fatalf("Expected 2 allowed ids, got %d", len(cfg.TelegramAllowedUserIDs))
		}
		if !cfg.IsAllowed(7) || cfg.IsAllowed(8) {
			t.Errorf("Allow list not applied: %v", cfg.TelegramAllowedUserIDs)
		}
		if cfg.AdminTelegramID != 42 {
			t.Errorf("Expected AdminTelegramID 42, got %d", cfg.AdminTelegramID)
		}
	})

	t.Run("InvalidAllowedUserIDs", func(t *testing.T) {
		setEnv("TELEGRAM_ALLOWED_USER_IDS", "42,abc")

		_, err := NewFromEnv()
		if err == nil {
			t.Fatal("Expected an error for a malformed id list, got nil")
		}
	})

	t.Run("InvalidRequestTimeout", func(t *testing.T) {
		setEnv("TELEGRAM_ALLOWED_USER_IDS", "")
		setEnv("REQUEST_TIMEOUT", "soon")

		_, err := NewFromEnv()
		if err == nil {
			t.Fatal("Expected an error for REQUEST_TIMEOUT, got nil")
		}
	})
}

func TestLoadFromYAML(t *testing.T) {
	configContent := `llm:
  provider: groq
  groq_model: llama-3.1-8b-instant
database_path: /tmp/meals.db
request_timeout: 45s`

	configPath := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("Failed to create test config file: %v", err)
	}

	cfg := &Config{GeminiModel: "gemini-2.5-flash"}
	if err := cfg.LoadFromYAML(configPath); err != nil {
		t.Fatalf("Failed to load YAML config: %v", err)
	}

	if cfg.LLMProvider != ProviderGroq {
		t.Errorf("Expected provider 'groq', got '%s'", cfg.LLMProvider)
	}
	if cfg.GroqModel != "llama-3.1-8b-instant" {
		t.Errorf("Expected groq model override, got '%s'", cfg.GroqModel)
	}
	if cfg.GeminiModel != "gemini-2.5-flash" {
		t.Errorf("Expected GeminiModel to keep its default, got '%s'", cfg.GeminiModel)
	}
	if cfg.DatabasePath != "/tmp/meals.db" {
		t.Errorf("Expected DatabasePath '/tmp/meals.db', got '%s'", cfg.DatabasePath)
	}
	if cfg.RequestTimeout != 45*time.Second {
		t.Errorf("Expected RequestTimeout 45s, got %v", cfg.RequestTimeout)
	}

	t.Run("MissingFile", func(t *testing.T) {
		cfg := &Config{}
		if err := cfg.LoadFromYAML(filepath.Join(t.TempDir(), "nope.yaml")); err != nil {
			t.Errorf("Expected missing file to be ignored, got %v", err)
		}
	})
}

func TestRequireTelegram(t *testing.T) {
	cfg := &Config{}
	err := cfg.RequireTelegram()
	if err == nil || err.Error() != "TELEGRAM_BOT_TOKEN environment variable not set" {
		t.Errorf("Expected missing token error, got %v", err)
	}

	cfg.TelegramBotToken = "token"
	err = cfg.RequireTelegram()
	if err == nil || err.Error() != "TELEGRAM_WEBHOOK_URL environment variable not set" {
		t.Errorf("Expected missing webhook error, got %v", err)
	}

	cfg.TelegramWebhookURL = "https://example.test/webhook"
	if err := cfg.RequireTelegram(); err != nil {
		t.Errorf("Expected no error, got %v", err)
	}
}
