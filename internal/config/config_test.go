package config

import (
	"testing"
	"time"
)

func TestGetEnv(t *testing.T) {
	tests := []struct {
		name         string
		key          string
		defaultValue string
		envValue     string
		shouldSet    bool
		want         string
	}{
		{
			name:         "returns environment variable when set",
			key:          "TEST_VAR",
			defaultValue: "default",
			envValue:     "custom",
			shouldSet:    true,
			want:         "custom",
		},
		{
			name:         "returns default when environment variable not set",
			key:          "TEST_VAR_MISSING",
			defaultValue: "default",
			envValue:     "",
			shouldSet:    false,
			want:         "default",
		},
		{
			name:         "returns default when environment variable is empty string",
			key:          "TEST_VAR_EMPTY",
			defaultValue: "default",
			envValue:     "",
			shouldSet:    true,
			want:         "default",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.shouldSet {
				t.Setenv(tt.key, tt.envValue)
			}

			got := getEnv(tt.key, tt.defaultValue)
			if got != tt.want {
				t.Errorf("getEnv() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestGetEnvAsInt(t *testing.T) {
	tests := []struct {
		name         string
		key          string
		defaultValue int
		envValue     string
		shouldSet    bool
		want         int
	}{
		{
			name:         "returns environment variable as int when set with valid integer",
			key:          "TEST_INT_VAR",
			defaultValue: 100,
			envValue:     "200",
			shouldSet:    true,
			want:         200,
		},
		{
			name:         "returns default when not set",
			key:          "TEST_INT_MISSING",
			defaultValue: 100,
			envValue:     "",
			shouldSet:    false,
			want:         100,
		},
		{
			name:         "returns default when value is not an integer",
			key:          "TEST_INT_INVALID",
			defaultValue: 100,
			envValue:     "not-a-number",
			shouldSet:    true,
			want:         100,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.shouldSet {
				t.Setenv(tt.key, tt.envValue)
			}

			got := getEnvAsInt(tt.key, tt.defaultValue)
			if got != tt.want {
				t.Errorf("getEnvAsInt() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestGetEnvAsDuration(t *testing.T) {
	t.Run("parses valid duration", func(t *testing.T) {
		t.Setenv("TEST_DUR_VAR", "90s")

		got := getEnvAsDuration("TEST_DUR_VAR", time.Second)
		if got != 90*time.Second {
			t.Errorf("getEnvAsDuration() = %v, want 90s", got)
		}
	})

	t.Run("returns default on invalid duration", func(t *testing.T) {
		t.Setenv("TEST_DUR_INVALID", "soon")

		got := getEnvAsDuration("TEST_DUR_INVALID", 15*time.Second)
		if got != 15*time.Second {
			t.Errorf("getEnvAsDuration() = %v, want 15s", got)
		}
	})
}

func TestLoad_RequiredKeys(t *testing.T) {
	t.Setenv("API_KEY", "test-key")
	t.Setenv("GEMINI_API_KEY", "gm-key")
	t.Setenv("MONGO_URI", "mongodb://localhost:27017")
	t.Setenv("DATABASE_URL", "postgres://localhost:5432/test?sslmode=disable")

	t.Run("loads with defaults", func(t *testing.T) {
		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load() error = %v", err)
		}

		if cfg.Port != "8080" {
			t.Errorf("Port = %v, want 8080", cfg.Port)
		}
		if cfg.MatchTopK != 10 {
			t.Errorf("MatchTopK = %v, want 10", cfg.MatchTopK)
		}
		if cfg.EmbeddingModel != "gemini-embedding-001" {
			t.Errorf("EmbeddingModel = %v, want gemini-embedding-001", cfg.EmbeddingModel)
		}
	})

	t.Run("fails without gemini key", func(t *testing.T) {
		t.Setenv("GEMINI_API_KEY", "")

		if _, err := Load(); err == nil {
			t.Error("Load() expected error when GEMINI_API_KEY unset")
		}
	})

	t.Run("fails without database url", func(t *testing.T) {
		t.Setenv("DATABASE_URL", "")

		if _, err := Load(); err == nil {
			t.Error("Load() expected error when DATABASE_URL unset")
		}
	})

	t.Run("rejects non-positive top k", func(t *testing.T) {
		t.Setenv("MATCH_TOP_K", "0")

		if _, err := Load(); err == nil {
			t.Error("Load() expected error when MATCH_TOP_K is 0")
		}
	})
}
