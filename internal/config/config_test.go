package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("SESSION_SECRET", "secret")

	config, err := Load()
	if err != nil {
		t.Fatalf("loading config: %v", err)
	}
	if config.DatabasePath != "./data/visit-scheduler.db" {
		t.Errorf("unexpected database path %q", config.DatabasePath)
	}
	if config.WriteRetryAttempts != 3 || config.WriteRetryDelay != 100*time.Millisecond {
		t.Errorf("unexpected retry defaults %d %s", config.WriteRetryAttempts, config.WriteRetryDelay)
	}
	if config.RequestTimeout != 10*time.Second {
		t.Errorf("unexpected request timeout %s", config.RequestTimeout)
	}
	if config.StrictTimeMatching {
		t.Error("expected loose time matching by default")
	}
}

func TestLoad_RequiresSessionSecret(t *testing.T) {
	t.Setenv("SESSION_SECRET", "")

	if _, err := Load(); err == nil {
		t.Error("expected error without SESSION_SECRET")
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("SESSION_SECRET", "secret")
	t.Setenv("WRITE_RETRY_ATTEMPTS", "5")
	t.Setenv("WRITE_RETRY_DELAY", "250ms")
	t.Setenv("STRICT_TIME_MATCHING", "true")

	config, err := Load()
	if err != nil {
		t.Fatalf("loading config: %v", err)
	}
	if config.WriteRetryAttempts != 5 || config.WriteRetryDelay != 250*time.Millisecond {
		t.Errorf("unexpected retry settings %d %s", config.WriteRetryAttempts, config.WriteRetryDelay)
	}
	if !config.StrictTimeMatching {
		t.Error("expected strict time matching")
	}
}

func TestLoad_RejectsInvalidNumbers(t *testing.T) {
	cases := map[string]string{
		"WRITE_RETRY_ATTEMPTS": "three",
		"WRITE_RETRY_DELAY":    "soon",
		"REQUEST_TIMEOUT":      "10",
		"STRICT_TIME_MATCHING": "maybe",
	}
	for key, value := range cases {
		t.Run(key, func(t *testing.T) {
			t.Setenv("SESSION_SECRET", "secret")
			t.Setenv(key, value)

			if _, err := Load(); err == nil {
				t.Errorf("expected error for %s=%q", key, value)
			}
		})
	}
}
