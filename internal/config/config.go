// Package config reads service settings from the environment, loading a
// .env file first when one is present.
package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
)

type Config struct {
	ListenAddr      string
	DatabaseURL     string
	KafkaBrokers    []string
	KafkaTopic      string
	LogLevel        zerolog.Level
	LogFormat       string
	DefaultLocale   string
	DefaultCurrency string
}

const (
	defaultListenAddr = ":8080"
	defaultKafkaTopic = "simulation_completed"
	defaultLogFormat  = "json"
	defaultLocale     = "en-US"
	defaultCurrency   = "USD"
)

// Load reads the given .env files (".env" when none are named), ignoring
// missing ones, then builds a Config from the environment.
func Load(files ...string) (Config, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", f, err)
		}
	}
	return FromEnv(os.LookupEnv)
}

// FromEnv builds a Config from a lookup function such as os.LookupEnv.
func FromEnv(lookup func(string) (string, bool)) (Config, error) {
	get := func(key, fallback string) string {
		if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
		return fallback
	}

	level, err := zerolog.ParseLevel(strings.ToLower(get("LOG_LEVEL", "info")))
	if err != nil {
		return Config{}, fmt.Errorf("LOG_LEVEL: %w", err)
	}
	format := strings.ToLower(get("LOG_FORMAT", defaultLogFormat))
	if format != "json" && format != "console" {
		return Config{}, fmt.Errorf("LOG_FORMAT: want json or console, got %q", format)
	}

	var brokers []string
	for _, b := range strings.Split(get("KAFKA_BROKERS", ""), ",") {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}

	return Config{
		ListenAddr:      get("LISTEN_ADDR", defaultListenAddr),
		DatabaseURL:     get("DATABASE_URL", ""),
		KafkaBrokers:    brokers,
		KafkaTopic:      get("KAFKA_TOPIC", defaultKafkaTopic),
		LogLevel:        level,
		LogFormat:       format,
		DefaultLocale:   get("DEFAULT_LOCALE", defaultLocale),
		DefaultCurrency: get("DEFAULT_CURRENCY", defaultCurrency),
	}, nil
}

// NewLogger builds the service logger writing to w.
func (c Config) NewLogger(w io.Writer) zerolog.Logger {
	zerolog.TimeFieldFormat = time.RFC3339
	if c.LogFormat == "console" {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen}
	}
	return zerolog.New(w).Level(c.LogLevel).With().Timestamp().Logger()
}
