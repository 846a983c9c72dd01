package config

import (
	"os"
	"testing"

	"pgregory.net/rapid"
)

var validLogLevels = []string{"debug", "info", "warn", "error"}

// allEnvKeys is every config-related env var key.
var allEnvKeys = []string{
	"CONFIG_FILE",
	"LOG_LEVEL",
	"BALANCE_POLICY",
	"MATCHING_PRIORITY",
	"INSTRUMENTS",
	"PRICE_WINDOW",
	"SETTLE_INTERVAL",
}

// unsetAllConfigEnv clears all config env vars.
func unsetAllConfigEnv() {
	for _, key := range allEnvKeys {
		os.Unsetenv(key)
	}
}

func TestProperty_ValidConfigParsing(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		unsetAllConfigEnv()
		defer unsetAllConfigEnv()

		logLevel := rapid.OneOf(rapid.Just(""), rapid.SampledFrom(validLogLevels)).Draw(t, "logLevel")
		policy := rapid.OneOf(rapid.Just(""), rapid.SampledFrom([]string{"permissive", "strict"})).Draw(t, "policy")
		priority := rapid.OneOf(rapid.Just(""), rapid.SampledFrom([]string{"price_time", "arrival"})).Draw(t, "priority")

		setIfNotEmpty("LOG_LEVEL", logLevel)
		setIfNotEmpty("BALANCE_POLICY", policy)
		setIfNotEmpty("MATCHING_PRIORITY", priority)

		cfg, err := Load("")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		def := Default()
		if want := orDefault(logLevel, def.LogLevel); cfg.LogLevel != want {
			t.Fatalf("LogLevel = %q, want %q", cfg.LogLevel, want)
		}
		if want := orDefault(policy, def.BalancePolicy); cfg.BalancePolicy != want {
			t.Fatalf("BalancePolicy = %q, want %q", cfg.BalancePolicy, want)
		}
		if want := orDefault(priority, def.MatchingPriority); cfg.MatchingPriority != want {
			t.Fatalf("MatchingPriority = %q, want %q", cfg.MatchingPriority, want)
		}
	})
}

func TestProperty_InvalidLogLevelRejected(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		unsetAllConfigEnv()
		defer unsetAllConfigEnv()

		level := rapid.StringMatching(`[a-z]{1,10}`).Filter(func(s string) bool {
			return !isValidLogLevel(s)
		}).Draw(t, "level")
		os.Setenv("LOG_LEVEL", level)

		if _, err := Load(""); err == nil {
			t.Fatalf("expected error for LOG_LEVEL=%q", level)
		}
	})
}

func setIfNotEmpty(key, val string) {
	if val != "" {
		os.Setenv(key, val)
	}
}

func orDefault(val, def string) string {
	if val == "" {
		return def
	}
	return val
}
