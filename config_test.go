package shortcodes

import (
	"os"
	"testing"
	"time"
)

// clearConfigEnv unsets every variable Config reads for the duration of the test.
func clearConfigEnv(t *testing.T) {
	for _, key := range []string{
		"SHORTCODES_ADDR",
		"SHORTCODES_BASE_URL",
		"SHORTCODES_STORAGE_DSN",
		"SHORTCODES_CODE_LENGTH",
		"SHORTCODES_MAX_ATTEMPTS",
		"SHORTCODES_STRICT_URLS",
		"SHORTCODES_CACHE_TTL",
		"SHORTCODES_LOG_LEVEL",
		"SHORTCODES_LOG_FILE",
		"SHORTCODES_SHUTDOWN_TIMEOUT",
	} {
		t.Setenv(key, "") // restores the previous value after the test
		os.Unsetenv(key)
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	clearConfigEnv(t)

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatal(err)
	}

	if cfg.CodeLength != DefaultCodeLength {
		t.Errorf("expected default code length %d, got %d", DefaultCodeLength, cfg.CodeLength)
	}
	if cfg.MaxAttempts != 5 {
		t.Errorf("expected 5 attempts by default, got %d", cfg.MaxAttempts)
	}
	if cfg.BaseURL != "http://localhost:5656/" {
		t.Errorf("unexpected default base URL %s", cfg.BaseURL)
	}
	if cfg.CacheTTL != 10*time.Minute {
		t.Errorf("unexpected default cache TTL %v", cfg.CacheTTL)
	}
	if cfg.StrictURLs {
		t.Error("strict URL checking should be off by default")
	}
}

func TestLoadConfigFromEnvironment(t *testing.T) {
	clearConfigEnv(t)
	t.Setenv("SHORTCODES_BASE_URL", "https://sho.rt/x")
	t.Setenv("SHORTCODES_STORAGE_DSN", "memory:")
	t.Setenv("SHORTCODES_CODE_LENGTH", "8")
	t.Setenv("SHORTCODES_MAX_ATTEMPTS", "2")
	t.Setenv("SHORTCODES_STRICT_URLS", "true")
	t.Setenv("SHORTCODES_CACHE_TTL", "0s")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatal(err)
	}

	if cfg.BaseURL != "https://sho.rt/x" || cfg.StorageDSN != "memory:" || cfg.CodeLength != 8 ||
		cfg.MaxAttempts != 2 || !cfg.StrictURLs || cfg.CacheTTL != 0 {
		t.Errorf("environment not applied: %+v", cfg)
	}
}

func TestLoadConfigRejectsInvalidSettings(t *testing.T) {
	tests := []struct {
		key, value string
	}{
		{"SHORTCODES_CODE_LENGTH", "0"},
		{"SHORTCODES_CODE_LENGTH", "six"},
		{"SHORTCODES_MAX_ATTEMPTS", "-1"},
		{"SHORTCODES_BASE_URL", "/relative/only"},
		{"SHORTCODES_BASE_URL", "http://[::1"},
	}

	for _, test := range tests {
		t.Run(test.key+"="+test.value, func(t *testing.T) {
			clearConfigEnv(t)
			t.Setenv(test.key, test.value)

			if _, err := LoadConfig(); err == nil {
				t.Errorf("expected error for %s=%s", test.key, test.value)
			}
		})
	}
}
