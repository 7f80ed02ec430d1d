// Package config provides configuration for the agent API server.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the server configuration.
type Config struct {
	// Server settings
	HTTPPort int `yaml:"http_port"`

	// Worker settings
	Provider        string `yaml:"provider"` // anthropic, openai, mock
	Model           string `yaml:"model"`
	MaxTokens       int64  `yaml:"max_tokens"`
	AnthropicAPIKey string `yaml:"anthropic_api_key"`
	OpenAIAPIKey    string `yaml:"openai_api_key"`

	// Session lifecycle
	SessionTimeout  time.Duration `yaml:"session_timeout"`
	CleanupInterval time.Duration `yaml:"cleanup_interval"`
	MaxSessionAge   time.Duration `yaml:"max_session_age"`

	// Policy
	AllowBypassPermissions bool `yaml:"allow_bypass_permissions"`

	// Logging
	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"` // text or json
}

// Load builds configuration from environment variables with defaults.
func Load() *Config {
	return &Config{
		HTTPPort:               getEnvInt("HTTP_PORT", 8000),
		Provider:               getEnv("AGENT_PROVIDER", "anthropic"),
		Model:                  getEnv("AGENT_MODEL", ""),
		MaxTokens:              int64(getEnvInt("AGENT_MAX_TOKENS", 4096)),
		AnthropicAPIKey:        getEnv("ANTHROPIC_API_KEY", ""),
		OpenAIAPIKey:           getEnv("OPENAI_API_KEY", ""),
		SessionTimeout:         time.Duration(getEnvInt("SESSION_TIMEOUT_MS", 0)) * time.Millisecond,
		CleanupInterval:        time.Duration(getEnvInt("CLEANUP_INTERVAL_MS", 3600000)) * time.Millisecond,
		MaxSessionAge:          time.Duration(getEnvInt("MAX_SESSION_AGE_HOURS", 24)) * time.Hour,
		AllowBypassPermissions: getEnvBool("ALLOW_BYPASS_PERMISSIONS", false),
		LogLevel:               getEnv("LOG_LEVEL", "info"),
		LogFormat:              getEnv("LOG_FORMAT", "text"),
	}
}

// LoadFile returns the environment configuration overlaid with values
// from a YAML file. Zero-valued fields in the file keep their defaults.
func LoadFile(path string) (*Config, error) {
	cfg := Load()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}
	return cfg, nil
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if intVal, err := strconv.Atoi(val); err == nil {
			return intVal
		}
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	if val := os.Getenv(key); val != "" {
		if boolVal, err := strconv.ParseBool(val); err == nil {
			return boolVal
		}
	}
	return defaultVal
}
