package config

import (
	"reflect"
	"testing"
	"time"
)

// clearEnv blanks every variable NewFromEnv reads so the host environment
// cannot leak into a test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"LLM_PROVIDER", "OPENAI_API_KEY", "OPENAI_BASE_URL", "OPENAI_MODEL",
		"GEMINI_API_KEY", "GEMINI_MODEL", "LLM_TEMPERATURE", "GENERATION_TIMEOUT",
		"PORT", "DATABASE_PATH", "STATIC_DIR", "CORS_ALLOWED_ORIGINS",
		"GHOST_API_URL", "GHOST_ADMIN_API_KEY",
		"TELEGRAM_BOT_TOKEN", "TELEGRAM_WEBHOOK_URL", "TELEGRAM_ALLOWED_USER_IDS", "TELEGRAM_ADMIN_ID",
	} {
		t.Setenv(key, "")
	}
}

func TestNewFromEnv(t *testing.T) {
	t.Run("Defaults", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("OPENAI_API_KEY", "openai_key")

		cfg, err := NewFromEnv()
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if cfg.LLMProvider != ProviderOpenAI {
			t.Errorf("Expected provider 'openai', got '%s'", cfg.LLMProvider)
		}
		if cfg.OpenAIModel != "gpt-4o-mini" {
			t.Errorf("Expected model 'gpt-4o-mini', got '%s'", cfg.OpenAIModel)
		}
		if cfg.Port != "5000" {
			t.Errorf("Expected port '5000', got '%s'", cfg.Port)
		}
		if cfg.LLMTemperature != 0.7 {
			t.Errorf("Expected temperature 0.7, got %v", cfg.LLMTemperature)
		}
		if cfg.GenerationTimeout != 60*time.Second {
			t.Errorf("Expected timeout 60s, got %v", cfg.GenerationTimeout)
		}
		if !reflect.DeepEqual(cfg.CORSAllowedOrigins, []string{"*"}) {
			t.Errorf("Expected CORS origins [*], got %v", cfg.CORSAllowedOrigins)
		}
		if cfg.GhostEnabled() {
			t.Error("Expected Ghost publishing to be disabled")
		}
	})

	t.Run("Overrides", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("LLM_PROVIDER", "Gemini")
		t.Setenv("GEMINI_API_KEY", "gemini_key")
		t.Setenv("OPENAI_BASE_URL", "https://api.groq.com/openai/v1/")
		t.Setenv("GENERATION_TIMEOUT", "15s")
		t.Setenv("CORS_ALLOWED_ORIGINS", "http://localhost:5173, https://dietmind.app")
		t.Setenv("GHOST_API_URL", "https://blog.test/")
		t.Setenv("GHOST_ADMIN_API_KEY", "id:abcd")
		t.Setenv("TELEGRAM_ALLOWED_USER_IDS", "1, 2")
		t.Setenv("TELEGRAM_ADMIN_ID", "2")

		cfg, err := NewFromEnv()
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if cfg.LLMProvider != ProviderGemini {
			t.Errorf("Expected provider 'gemini', got '%s'", cfg.LLMProvider)
		}
		if cfg.OpenAIBaseURL != "https://api.groq.com/openai/v1" {
			t.Errorf("Expected trailing slash to be trimmed, got '%s'", cfg.OpenAIBaseURL)
		}
		if cfg.GenerationTimeout != 15*time.Second {
			t.Errorf("Expected timeout 15s, got %v", cfg.GenerationTimeout)
		}
		if len(cfg.CORSAllowedOrigins) != 2 || cfg.CORSAllowedOrigins[1] != "https://dietmind.app" {
			t.Errorf("Unexpected CORS origins %v", cfg.CORSAllowedOrigins)
		}
		if !cfg.GhostEnabled() || cfg.GhostURL != "https://blog.test" {
			t.Errorf("Expected Ghost publishing at 'https://blog.test', got '%s'", cfg.GhostURL)
		}
		if !reflect.DeepEqual(cfg.TelegramAllowedUserIDs, []int64{1, 2}) {
			t.Errorf("Expected allowed IDs [1 2], got %v", cfg.TelegramAllowedUserIDs)
		}
		if cfg.TelegramAdminID != 2 {
			t.Errorf("Expected admin ID 2, got %d", cfg.TelegramAdminID)
		}
	})

	t.Run("MissingOpenAIAPIKey", func(t *testing.T) {
		clearEnv(t)

		_, err := NewFromEnv()
		if err == nil {
			t.Fatal("Expected an error for missing OPENAI_API_KEY, got nil")
		}
		expectedError := "OPENAI_API_KEY environment variable not set"
		if err.Error() != expectedError {
			t.Errorf("Expected error '%s', got '%s'", expectedError, err.Error())
		}
	})

	t.Run("MissingGeminiAPIKey", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("LLM_PROVIDER", "gemini")
		t.Setenv("OPENAI_API_KEY", "openai_key")

		_, err := NewFromEnv()
		if err == nil {
			t.Fatal("Expected an error for missing GEMINI_API_KEY, got nil")
		}
		expectedError := "GEMINI_API_KEY environment variable not set"
		if err.Error() != expectedError {
			t.Errorf("Expected error '%s', got '%s'", expectedError, err.Error())
		}
	})

	t.Run("UnknownProvider", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("LLM_PROVIDER", "llama")

		if _, err := NewFromEnv(); err == nil {
			t.Fatal("Expected an error for unsupported provider, got nil")
		}
	})

	t.Run("InvalidValues", func(t *testing.T) {
		for key, value := range map[string]string{
			"LLM_TEMPERATURE":           "warm",
			"GENERATION_TIMEOUT":        "soon",
			"TELEGRAM_ALLOWED_USER_IDS": "1,abc",
			"TELEGRAM_ADMIN_ID":         "admin",
		} {
			clearEnv(t)
			t.Setenv("OPENAI_API_KEY", "openai_key")
			t.Setenv(key, value)

			if _, err := NewFromEnv(); err == nil {
				t.Errorf("Expected an error for %s=%q, got nil", key, value)
			}
		}
	})
}
