package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds the settings of the mtax server and CLI.
type Config struct {
	// HTTP Server
	Port            string
	GinMode         string
	ShutdownTimeout time.Duration

	// Database
	DBPath string

	LogLevel string

	// AMQP (optional; declaration events are skipped when AMQPURL is empty)
	AMQPURL        string
	AMQPExchange   string
	AMQPRoutingKey string
}

var validLogLevels = []string{"debug", "info", "warn", "error"}
var validGinModes = []string{"debug", "release", "test"}

func newViper() *viper.Viper {
	v := viper.New()

	v.SetConfigName("mtax")
	v.AddConfigPath("/etc/mtax")
	v.AddConfigPath(".")

	v.SetEnvPrefix("MTAX")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("port", "8081")
	v.SetDefault("gin_mode", "release")
	v.SetDefault("shutdown_timeout", 10*time.Second)
	v.SetDefault("db_path", "./data/mtax.db")
	v.SetDefault("log_level", "info")
	v.SetDefault("amqp_url", "")
	v.SetDefault("amqp_exchange", "mtax")
	v.SetDefault("amqp_routing_key", "declaration.saved")
	return v
}

// Load reads .env (if present), then mtax.yaml (if present) and MTAX_* environment
// variables. Environment variables win over the file.
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := newViper()
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	return &Config{
		Port:            v.GetString("port"),
		GinMode:         v.GetString("gin_mode"),
		ShutdownTimeout: v.GetDuration("shutdown_timeout"),
		DBPath:          v.GetString("db_path"),
		LogLevel:        strings.ToLower(v.GetString("log_level")),
		AMQPURL:         v.GetString("amqp_url"),
		AMQPExchange:    v.GetString("amqp_exchange"),
		AMQPRoutingKey:  v.GetString("amqp_routing_key"),
	}, nil
}

// Addr is the listen address for the HTTP server.
func (c *Config) Addr() string {
	return ":" + c.Port
}

// Validate validates the configuration and returns an error if invalid. It does
// not touch the filesystem beyond a stat; storage.Open creates the database directory.
func (c *Config) Validate() error {
	var problems []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		problems = append(problems, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		problems = append(problems, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	if !contains(validGinModes, c.GinMode) {
		problems = append(problems, fmt.Sprintf("invalid gin mode '%s': must be one of %v", c.GinMode, validGinModes))
	}
	if !contains(validLogLevels, c.LogLevel) {
		problems = append(problems, fmt.Sprintf("invalid log level '%s': must be one of %v", c.LogLevel, validLogLevels))
	}
	if c.ShutdownTimeout < time.Second {
		problems = append(problems, fmt.Sprintf("invalid shutdown timeout %v: must be at least 1 second", c.ShutdownTimeout))
	}

	if c.DBPath == "" {
		problems = append(problems, "database path cannot be empty")
	} else if fi, err := os.Stat(filepath.Dir(c.DBPath)); err == nil && !fi.IsDir() {
		problems = append(problems, fmt.Sprintf("database directory '%s' is not a directory", filepath.Dir(c.DBPath)))
	}

	if c.AMQPURL != "" {
		if parsedURL, err := url.Parse(c.AMQPURL); err != nil {
			problems = append(problems, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsedURL.Scheme != "amqp" && parsedURL.Scheme != "amqps" {
			problems = append(problems, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsedURL.Scheme))
		}
		if c.AMQPExchange == "" {
			problems = append(problems, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
		if c.AMQPRoutingKey == "" {
			problems = append(problems, "AMQP routing key cannot be empty when AMQP URL is provided")
		}
	}

	if len(problems) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(problems, "\n- "))
	}
	return nil
}

func contains(values []string, v string) bool {
	for _, candidate := range values {
		if candidate == v {
			return true
		}
	}
	return false
}
