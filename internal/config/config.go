package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all runtime configuration for the exchange.
type Config struct {
	LogLevel         string        `yaml:"log_level"`
	BalancePolicy    string        `yaml:"balance_policy"`
	MatchingPriority string        `yaml:"matching_priority"`
	Instruments      []string      `yaml:"instruments"`
	PriceWindow      time.Duration `yaml:"price_window"`
	SettleInterval   time.Duration `yaml:"settle_interval"` // periodic batch settlement when positive
}

// Default returns the configuration used when nothing is overridden.
func Default() *Config {
	return &Config{
		LogLevel:         "info",
		BalancePolicy:    "permissive",
		MatchingPriority: "price_time",
		PriceWindow:      5 * time.Minute,
	}
}

// Load builds the configuration from defaults, then the YAML file at path
// (or $CONFIG_FILE when path is empty; ${VAR} references in the file are
// expanded), then environment variables. It returns an error for any
// invalid value.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		path = os.Getenv("CONFIG_FILE")
	}
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		raw = []byte(os.ExpandEnv(string(raw)))
		if err := yaml.Unmarshal(raw, cfg); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}

	cfg.LogLevel = getStr("LOG_LEVEL", cfg.LogLevel)
	cfg.BalancePolicy = getStr("BALANCE_POLICY", cfg.BalancePolicy)
	cfg.MatchingPriority = getStr("MATCHING_PRIORITY", cfg.MatchingPriority)
	cfg.Instruments = getList("INSTRUMENTS", cfg.Instruments)

	priceWindow, err := getDuration("PRICE_WINDOW", cfg.PriceWindow)
	if err != nil {
		return nil, fmt.Errorf("invalid PRICE_WINDOW: %w", err)
	}
	cfg.PriceWindow = priceWindow

	settleInterval, err := getDuration("SETTLE_INTERVAL", cfg.SettleInterval)
	if err != nil {
		return nil, fmt.Errorf("invalid SETTLE_INTERVAL: %w", err)
	}
	cfg.SettleInterval = settleInterval

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks every field against its accepted values.
func (c *Config) Validate() error {
	if !isValidLogLevel(c.LogLevel) {
		return fmt.Errorf("invalid LOG_LEVEL: %q, must be one of: debug, info, warn, error", c.LogLevel)
	}
	switch c.BalancePolicy {
	case "permissive", "strict":
	default:
		return fmt.Errorf("invalid BALANCE_POLICY: %q, must be one of: permissive, strict", c.BalancePolicy)
	}
	switch c.MatchingPriority {
	case "price_time", "arrival":
	default:
		return fmt.Errorf("invalid MATCHING_PRIORITY: %q, must be one of: price_time, arrival", c.MatchingPriority)
	}
	if c.PriceWindow <= 0 {
		return fmt.Errorf("invalid PRICE_WINDOW: %v, must be positive", c.PriceWindow)
	}
	if c.SettleInterval < 0 {
		return fmt.Errorf("invalid SETTLE_INTERVAL: %v, must not be negative", c.SettleInterval)
	}
	for _, name := range c.Instruments {
		if name == "" {
			return fmt.Errorf("invalid INSTRUMENTS: empty instrument name")
		}
	}
	return nil
}

func getStr(key, defaultVal string) string {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	return v
}

func getDuration(key string, defaultVal time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal, nil
	}
	return time.ParseDuration(v)
}

// getList parses a comma-separated variable, trimming blanks.
func getList(key string, defaultVal []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func isValidLogLevel(level string) bool {
	switch level {
	case "debug", "info", "warn", "error":
		return true
	}
	return false
}
