// Package config loads the server configuration from the environment and an
// optional .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"time"

	"github.com/caarlos0/env/v9"
	"github.com/casualjim/hoot/pkg/slogx"
	"github.com/joho/godotenv"
)

// DefaultEnvFile is read by Load when present.
const DefaultEnvFile = ".env"

type Config struct {
	Agent     Agent
	Server    Server
	Log       Log
	Telemetry Telemetry
	Broker    Broker
}

// Agent configures the upstream chat completion endpoint.
type Agent struct {
	APIKey  string `env:"OPENAI_API_KEY,required,notEmpty"`
	BaseURL string `env:"OPENAI_BASE_URL" envDefault:"https://dashscope.aliyuncs.com/compatible-mode/v1"`
	Model   string `env:"OPENAI_MODEL" envDefault:"qwen-max-latest"`
}

type Server struct {
	Port            int           `env:"PORT" envDefault:"8000"`
	ShutdownTimeout time.Duration `env:"HOOT_SHUTDOWN_TIMEOUT" envDefault:"5s"`
	MaxBodyBytes    int64         `env:"HOOT_MAX_BODY_BYTES" envDefault:"4194304"`
	CORSOrigins     []string      `env:"HOOT_CORS_ORIGINS" envDefault:"*" envSeparator:","`
}

type Log struct {
	Level  string `env:"HOOT_LOG_LEVEL" envDefault:"info"`
	Format string `env:"HOOT_LOG_FORMAT" envDefault:"console"`
}

type Telemetry struct {
	Enabled bool `env:"HOOT_TRACING" envDefault:"false"`
	// Endpoint selects the OTLP gRPC exporter. Spans go to stdout when it is empty.
	Endpoint string `env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
}

// Broker configures the event mirror. Runs are mirrored over NATS when NATS_URL is
// set and in process otherwise.
type Broker struct {
	NATSURL string `env:"NATS_URL"`
	Subject string `env:"HOOT_MIRROR_SUBJECT" envDefault:"agui.runs"`
	// SlowSubscriberTimeout bounds how long the in-process mirror waits on a full
	// subscriber before dropping it.
	SlowSubscriberTimeout time.Duration `env:"HOOT_MIRROR_SLOW_SUBSCRIBER_TIMEOUT" envDefault:"100ms"`
}

// Load reads DefaultEnvFile, if it exists, and parses the environment.
func Load() (Config, error) {
	return LoadFiles(DefaultEnvFile)
}

// LoadFiles loads the given env files, skipping missing ones, then parses the
// environment. Variables already set in the process win over file values.
func LoadFiles(files ...string) (Config, error) {
	for _, file := range files {
		if err := godotenv.Load(file); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", file, err)
		}
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks values the environment parser cannot.
func (c Config) Validate() error {
	var errs []error
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("PORT out of range: %d", c.Server.Port))
	}
	if c.Server.ShutdownTimeout < 0 {
		errs = append(errs, fmt.Errorf("HOOT_SHUTDOWN_TIMEOUT must not be negative"))
	}
	if c.Server.MaxBodyBytes <= 0 {
		errs = append(errs, fmt.Errorf("HOOT_MAX_BODY_BYTES must be positive"))
	}
	if c.Broker.SlowSubscriberTimeout < 0 {
		errs = append(errs, fmt.Errorf("HOOT_MIRROR_SLOW_SUBSCRIBER_TIMEOUT must not be negative"))
	}
	if _, err := slogx.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, fmt.Errorf("HOOT_LOG_LEVEL: %w", err))
	}
	if _, err := slogx.ParseFormat(c.Log.Format); err != nil {
		errs = append(errs, fmt.Errorf("HOOT_LOG_FORMAT: %w", err))
	}
	return errors.Join(errs...)
}

// SlogLevel is the parsed log level. Invalid values fall back to info.
func (l Log) SlogLevel() slog.Level {
	level, _ := slogx.ParseLevel(l.Level)
	return level
}

// SlogFormat is the parsed log format. Invalid values fall back to console.
func (l Log) SlogFormat() slogx.Format {
	format, _ := slogx.ParseFormat(l.Format)
	return format
}

// Addr is the listen address for the configured port.
func (s Server) Addr() string {
	return fmt.Sprintf(":%d", s.Port)
}
