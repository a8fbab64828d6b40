// Package config provides configuration management for the loading bot.
//
// This package handles loading configuration from environment variables,
// validating required settings, and providing defaults for optional
// parameters. Configuration is loaded once at startup and is not changed
// afterwards.
//
// Configuration sources (in order of precedence):
//  1. Environment variables (highest priority)
//  2. External .env file in the working directory
//  3. Embedded .env file (fallback, included in binary)
//  4. Hard-coded defaults (lowest priority)
package config

import (
	_ "embed"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// embeddedEnv contains the .env file embedded at build time.
//
// The embedded file only carries template values; the bot token must come
// from the environment or an external .env.
//
//go:embed .env
var embeddedEnv string

// journalDisabled is the JOURNAL_FILE value that turns the journal off.
const journalDisabled = "none"

// Config holds all application configuration.
type Config struct {
	// Telegram transport
	TelegramBotToken string        // Bot API token (required)
	SendRatePerSec   int           // Outbound message rate limit
	PollTimeout      time.Duration // Long-poll timeout for getUpdates

	// Command recognition
	GroupName     string // Only groups with exactly this title are served
	TriggerPhrase string // Case-insensitive command phrase

	// Downstream processor
	ProcessorURL     string        // POST endpoint receiving loading requests
	ProcessorTimeout time.Duration // Upper bound for one processor call

	// Queue and reply context
	QueuePacing          time.Duration // Pause between consecutive dispatches
	ContextTTL           time.Duration // Reply context lifetime
	ContextSweepInterval time.Duration // How often stale contexts are removed

	// Control server
	ControlPort string // Port for the control and health HTTP server

	// Optional outputs
	SummaryRecipientChatID string // Chat that receives receipt cards ("" disables)
	JournalFile            string // Dispatch journal CSV path ("" when disabled)

	// Debug mode - logs outbound messages instead of sending them
	DebugMode bool
}

// LoadConfig loads configuration from environment variables with defaults.
//
// Loading process:
//  1. Parse the embedded .env file and set it as fallback environment
//  2. Load an external .env file if present (never overrides the environment)
//  3. Build the config from the environment, applying defaults
//  4. Validate
//
// Returns:
//   - *Config: Fully populated configuration struct
//   - error: Validation error if required fields are missing or invalid
func LoadConfig() (*Config, error) {
	envMap, err := godotenv.Unmarshal(embeddedEnv)
	if err == nil {
		for k, v := range envMap {
			if os.Getenv(k) == "" {
				os.Setenv(k, v)
			}
		}
	}

	_ = godotenv.Load()

	cfg := &Config{
		TelegramBotToken: os.Getenv("TELEGRAM_BOT_TOKEN"),
		SendRatePerSec:   getEnvInt("SEND_RATE_PER_SEC", 20),
		PollTimeout:      getEnvDuration("POLL_TIMEOUT", 30*time.Second),

		GroupName:     getEnvOrDefault("GROUP_NAME", "Test"),
		TriggerPhrase: getEnvOrDefault("TRIGGER_PHRASE", "ap kara"),

		ProcessorURL:     getEnvOrDefault("PROCESSOR_URL", "http://localhost:5000/process-data"),
		ProcessorTimeout: getEnvDuration("PROCESSOR_TIMEOUT", 5*time.Minute),

		QueuePacing:          getEnvDuration("QUEUE_PACING", 10*time.Second),
		ContextTTL:           getEnvDuration("CONTEXT_TTL", 24*time.Hour),
		ContextSweepInterval: getEnvDuration("CONTEXT_SWEEP_INTERVAL", 6*time.Hour),

		ControlPort: getEnvOrDefault("CONTROL_PORT", "3000"),

		SummaryRecipientChatID: os.Getenv("SUMMARY_RECIPIENT_CHAT_ID"),
		JournalFile:            getEnvOrDefault("JOURNAL_FILE", "dispatches.csv"),

		DebugMode: getEnvBool("DEBUG_MODE", false),
	}

	if strings.EqualFold(cfg.JournalFile, journalDisabled) {
		cfg.JournalFile = ""
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks that required configuration is present and values are sensible.
//
// Validation rules:
//   - TELEGRAM_BOT_TOKEN must be set
//   - GROUP_NAME and TRIGGER_PHRASE must be non-empty
//   - PROCESSOR_URL must be an absolute http(s) URL
//   - Timeouts, TTL and sweep interval must be positive; pacing may be zero
//   - CONTROL_PORT must be numeric
func (c *Config) Validate() error {
	if c.TelegramBotToken == "" {
		return fmt.Errorf("TELEGRAM_BOT_TOKEN environment variable is required")
	}
	if strings.TrimSpace(c.GroupName) == "" {
		return fmt.Errorf("GROUP_NAME cannot be empty")
	}
	if strings.TrimSpace(c.TriggerPhrase) == "" {
		return fmt.Errorf("TRIGGER_PHRASE cannot be empty")
	}

	u, err := url.Parse(c.ProcessorURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("PROCESSOR_URL must be an http(s) URL, got %q", c.ProcessorURL)
	}

	if c.ProcessorTimeout <= 0 {
		return fmt.Errorf("PROCESSOR_TIMEOUT must be positive, got %v", c.ProcessorTimeout)
	}
	if c.QueuePacing < 0 {
		return fmt.Errorf("QUEUE_PACING cannot be negative, got %v", c.QueuePacing)
	}
	if c.ContextTTL <= 0 {
		return fmt.Errorf("CONTEXT_TTL must be positive, got %v", c.ContextTTL)
	}
	if c.ContextSweepInterval <= 0 {
		return fmt.Errorf("CONTEXT_SWEEP_INTERVAL must be positive, got %v", c.ContextSweepInterval)
	}
	if c.SendRatePerSec < 1 {
		return fmt.Errorf("SEND_RATE_PER_SEC must be at least 1, got %d", c.SendRatePerSec)
	}
	if _, err := strconv.Atoi(c.ControlPort); err != nil {
		return fmt.Errorf("CONTROL_PORT must be numeric, got %q", c.ControlPort)
	}

	return nil
}

// getEnvOrDefault returns the environment variable value or a default if not set
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt returns the environment variable as an integer or a default if not set/invalid
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// getEnvDuration returns the environment variable as a duration or a default if not set/invalid.
//
// Accepts standard Go duration strings like "5s", "10m", "1h30m"
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// getEnvBool accepts anything strconv.ParseBool does ("true", "1", "false", ...)
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}
