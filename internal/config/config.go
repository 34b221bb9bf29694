// Package config loads runtime settings for the signal bot binaries from
// the environment, with optional .env file support for local development.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	apperrors "github.com/tradeoracle/signal-bot/internal/errors"
	"github.com/tradeoracle/signal-bot/internal/format"
)

// Default values applied when the environment leaves a setting unset.
const (
	DefaultPort          = 5000
	DefaultMetricsPort   = 9090
	DefaultWebhookSecret = "your-secret-key"
	DefaultRulesPath     = "config/rules.json"
	DefaultJournalPath   = "data/signals.xlsx"
	DefaultLogDir        = "logs"
)

// Config holds every setting the bot, webhook server and CLI share.
type Config struct {
	Telegram TelegramConfig `json:"telegram"`
	Webhook  WebhookConfig  `json:"webhook"`

	RulesPath   string `json:"rules_path"`
	JournalPath string `json:"journal_path"`

	MessageStyle string `json:"message_style"`
	Signature    string `json:"signature"`

	LogDir      string `json:"log_dir"`
	Debug       bool   `json:"debug"`
	MetricsPort int    `json:"metrics_port"`
}

// TelegramConfig holds bot API credentials and the broadcast target.
type TelegramConfig struct {
	BotToken  string `json:"bot_token"`
	ChannelID string `json:"channel_id"`
}

// WebhookConfig holds the inbound webhook server settings and the
// optional outbound forwarding URL.
type WebhookConfig struct {
	Secret string `json:"secret"`
	URL    string `json:"url"`
	Port   int    `json:"port"`
}

// Load reads configuration from the environment. When envFile names an
// existing file it is loaded first; a missing file is not an error so
// deployments can rely on real environment variables alone.
func Load(envFile string) (*Config, error) {
	if envFile == "" {
		envFile = ".env"
	}
	if _, err := os.Stat(envFile); err == nil {
		if err := godotenv.Load(envFile); err != nil {
			return nil, apperrors.NewConfigurationError("config", "load_env",
				fmt.Sprintf("could not load %s: %v", envFile, err))
		}
	}

	cfg := &Config{
		Telegram: TelegramConfig{
			BotToken:  os.Getenv("TELEGRAM_BOT_TOKEN"),
			ChannelID: os.Getenv("TELEGRAM_CHANNEL_ID"),
		},
		Webhook: WebhookConfig{
			Secret: getEnv("WEBHOOK_SECRET", DefaultWebhookSecret),
			URL:    os.Getenv("WEBHOOK_URL"),
			Port:   getEnvInt("PORT", DefaultPort),
		},
		RulesPath:    getEnv("RULES_PATH", DefaultRulesPath),
		JournalPath:  getEnv("JOURNAL_PATH", DefaultJournalPath),
		MessageStyle: getEnv("MESSAGE_STYLE", format.StyleStandard),
		Signature:    getEnv("SIGNATURE", format.DefaultSignature),
		LogDir:       getEnv("LOG_DIR", DefaultLogDir),
		Debug:        getEnvBool("DEBUG", false),
		MetricsPort:  getEnvInt("METRICS_PORT", DefaultMetricsPort),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks settings every binary depends on. Credentials are
// checked by the components that need them, not here, so the CLI can
// run without a bot token.
func (c *Config) Validate() error {
	if c.Webhook.Port <= 0 || c.Webhook.Port > 65535 {
		return apperrors.NewConfigurationError("config", "validate",
			fmt.Sprintf("port must be between 1 and 65535, got: %d", c.Webhook.Port))
	}
	if c.MetricsPort <= 0 || c.MetricsPort > 65535 {
		return apperrors.NewConfigurationError("config", "validate",
			fmt.Sprintf("metrics port must be between 1 and 65535, got: %d", c.MetricsPort))
	}

	styles := format.Styles()
	valid := false
	for _, s := range styles {
		if c.MessageStyle == s {
			valid = true
			break
		}
	}
	if !valid {
		return apperrors.NewConfigurationError("config", "validate",
			fmt.Sprintf("message style must be one of %s, got: %s",
				strings.Join(styles, ", "), c.MessageStyle))
	}
	return nil
}

// RequireTelegram returns an error unless a bot token is configured.
func (c *Config) RequireTelegram() error {
	if c.Telegram.BotToken == "" {
		return apperrors.NewCredentialsError("config", "require_telegram",
			"TELEGRAM_BOT_TOKEN is not set")
	}
	return nil
}

// TelegramConfigured reports whether a bot token is present.
func (c *Config) TelegramConfigured() bool {
	return c.Telegram.BotToken != ""
}

// ChannelConfigured reports whether a broadcast channel is present.
func (c *Config) ChannelConfigured() bool {
	return c.Telegram.ChannelID != ""
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return n
}

func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return strings.EqualFold(value, "true") || value == "1"
}
