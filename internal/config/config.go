// SPDX-License-Identifier: EPL-2.0

// Package config loads runtime settings for the ambiencectl tool from
// environment variables.
package config

import (
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all runtime configuration, loaded from environment variables.
type Config struct {
	// Output
	SampleRate   int
	Channels     int
	BufferFrames int // frames per audio callback

	// Engine
	TickInterval        time.Duration
	GlobalVolume        float64
	DecodeWorkers       int
	OneShotTimeoutTicks int
	Seed                uint64 // 0 seeds randomly

	AssetDir string
	LogLevel string
}

// Load reads configuration from environment variables with sane defaults.
// Unparsable values fall back to the default.
func Load() Config {
	return Config{
		SampleRate:   envInt("AMBIENCE_SAMPLE_RATE", 48000),
		Channels:     envInt("AMBIENCE_CHANNELS", 2),
		BufferFrames: envInt("AMBIENCE_BUFFER_FRAMES", 1024),

		TickInterval:        envDuration("AMBIENCE_TICK_INTERVAL", 20*time.Millisecond),
		GlobalVolume:        envFloat("AMBIENCE_GLOBAL_VOLUME", 1.0),
		DecodeWorkers:       envInt("AMBIENCE_DECODE_WORKERS", 4),
		OneShotTimeoutTicks: envInt("AMBIENCE_ONESHOT_TIMEOUT_TICKS", 250),
		Seed:                envUint("AMBIENCE_SEED", 0),

		AssetDir: envStr("AMBIENCE_ASSET_DIR", "."),
		LogLevel: envStr("AMBIENCE_LOG_LEVEL", "info"),
	}
}

// Level maps LogLevel to a slog level; unknown names mean info.
func (c Config) Level() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Logger returns a text logger writing to w at the configured level.
func (c Config) Logger(w io.Writer) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: c.Level()}))
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envUint(key string, fallback uint64) uint64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseUint(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

// envDuration accepts Go durations ("20ms") or bare milliseconds ("20").
func envDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	if n, err := strconv.Atoi(v); err == nil {
		return time.Duration(n) * time.Millisecond
	}
	return fallback
}
