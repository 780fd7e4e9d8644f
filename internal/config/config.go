package config

import (
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"
)

type Config struct {
	// Backend services
	AuthURL        string
	TransactionURL string

	// Client-local state
	StateDBPath string

	// Background sync
	SyncInterval time.Duration

	// Fraud alert fan-out (optional)
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Metrics endpoint (empty disables it)
	MetricsAddr string

	// Headless login credentials
	Username string
	Password string
}

func Load() *Config {
	return &Config{
		AuthURL:        getEnv("AUTH_URL", "http://localhost:8000/api"),
		TransactionURL: getEnv("TRANSACTION_URL", "http://localhost:8001"),

		StateDBPath: getEnv("STATE_DB_PATH", "./data/fraudwatch.db"),

		SyncInterval: getEnvDuration("SYNC_INTERVAL", 30*time.Second),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "fraudwatch"),
		AMQPQueue:    getEnv("AMQP_QUEUE", "fraud_alerts"),

		MetricsAddr: getEnv("METRICS_ADDR", ""),

		Username: getEnv("FRAUDWATCH_USERNAME", ""),
		Password: getEnv("FRAUDWATCH_PASSWORD", ""),
	}
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errors []string

	for name, raw := range map[string]string{
		"auth service URL":        c.AuthURL,
		"transaction service URL": c.TransactionURL,
	} {
		parsed, err := url.Parse(raw)
		if err != nil || parsed.Host == "" {
			errors = append(errors, fmt.Sprintf("invalid %s '%s'", name, raw))
			continue
		}
		if parsed.Scheme != "http" && parsed.Scheme != "https" {
			errors = append(errors, fmt.Sprintf("invalid %s scheme '%s': must be 'http' or 'https'", name, parsed.Scheme))
		}
	}

	if c.StateDBPath == "" {
		errors = append(errors, "state database path cannot be empty")
	}

	if c.SyncInterval < time.Second {
		errors = append(errors, fmt.Sprintf("invalid sync interval %v: must be at least 1 second", c.SyncInterval))
	} else if c.SyncInterval > 24*time.Hour {
		errors = append(errors, fmt.Sprintf("invalid sync interval %v: must be at most 24 hours", c.SyncInterval))
	}

	if c.AMQPURL != "" {
		if parsedURL, err := url.Parse(c.AMQPURL); err != nil {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsedURL.Scheme != "amqp" && parsedURL.Scheme != "amqps" {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsedURL.Scheme))
		}
		if c.AMQPExchange == "" {
			errors = append(errors, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
		if c.AMQPQueue == "" {
			errors = append(errors, "AMQP queue name cannot be empty when AMQP URL is provided")
		}
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}

	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
