// SPDX-License-Identifier: EPL-2.0

package config

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
	"time"
)

var envVars = []string{
	"AMBIENCE_SAMPLE_RATE", "AMBIENCE_CHANNELS", "AMBIENCE_BUFFER_FRAMES",
	"AMBIENCE_TICK_INTERVAL", "AMBIENCE_GLOBAL_VOLUME", "AMBIENCE_DECODE_WORKERS",
	"AMBIENCE_ONESHOT_TIMEOUT_TICKS", "AMBIENCE_SEED", "AMBIENCE_ASSET_DIR",
	"AMBIENCE_LOG_LEVEL",
}

func TestLoadDefaults(t *testing.T) {
	for _, k := range envVars {
		t.Setenv(k, "")
	}

	cfg := Load()

	if cfg.SampleRate != 48000 {
		t.Errorf("SampleRate = %d, want 48000", cfg.SampleRate)
	}
	if cfg.Channels != 2 {
		t.Errorf("Channels = %d, want 2", cfg.Channels)
	}
	if cfg.BufferFrames != 1024 {
		t.Errorf("BufferFrames = %d, want 1024", cfg.BufferFrames)
	}
	if cfg.TickInterval != 20*time.Millisecond {
		t.Errorf("TickInterval = %v, want 20ms", cfg.TickInterval)
	}
	if cfg.GlobalVolume != 1.0 {
		t.Errorf("GlobalVolume = %f, want 1.0", cfg.GlobalVolume)
	}
	if cfg.DecodeWorkers != 4 {
		t.Errorf("DecodeWorkers = %d, want 4", cfg.DecodeWorkers)
	}
	if cfg.OneShotTimeoutTicks != 250 {
		t.Errorf("OneShotTimeoutTicks = %d, want 250", cfg.OneShotTimeoutTicks)
	}
	if cfg.Seed != 0 {
		t.Errorf("Seed = %d, want 0", cfg.Seed)
	}
	if cfg.AssetDir != "." {
		t.Errorf("AssetDir = %q, want '.'", cfg.AssetDir)
	}
	if cfg.Level() != slog.LevelInfo {
		t.Errorf("Level = %v, want info", cfg.Level())
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("AMBIENCE_SAMPLE_RATE", "44100")
	t.Setenv("AMBIENCE_CHANNELS", "1")
	t.Setenv("AMBIENCE_BUFFER_FRAMES", "512")
	t.Setenv("AMBIENCE_TICK_INTERVAL", "50ms")
	t.Setenv("AMBIENCE_GLOBAL_VOLUME", "0.5")
	t.Setenv("AMBIENCE_DECODE_WORKERS", "8")
	t.Setenv("AMBIENCE_ONESHOT_TIMEOUT_TICKS", "10")
	t.Setenv("AMBIENCE_SEED", "42")
	t.Setenv("AMBIENCE_ASSET_DIR", "/srv/sounds")
	t.Setenv("AMBIENCE_LOG_LEVEL", "DEBUG")

	cfg := Load()

	if cfg.SampleRate != 44100 {
		t.Errorf("SampleRate = %d, want 44100", cfg.SampleRate)
	}
	if cfg.Channels != 1 {
		t.Errorf("Channels = %d, want 1", cfg.Channels)
	}
	if cfg.BufferFrames != 512 {
		t.Errorf("BufferFrames = %d, want 512", cfg.BufferFrames)
	}
	if cfg.TickInterval != 50*time.Millisecond {
		t.Errorf("TickInterval = %v, want 50ms", cfg.TickInterval)
	}
	if cfg.GlobalVolume != 0.5 {
		t.Errorf("GlobalVolume = %f, want 0.5", cfg.GlobalVolume)
	}
	if cfg.DecodeWorkers != 8 {
		t.Errorf("DecodeWorkers = %d, want 8", cfg.DecodeWorkers)
	}
	if cfg.OneShotTimeoutTicks != 10 {
		t.Errorf("OneShotTimeoutTicks = %d, want 10", cfg.OneShotTimeoutTicks)
	}
	if cfg.Seed != 42 {
		t.Errorf("Seed = %d, want 42", cfg.Seed)
	}
	if cfg.AssetDir != "/srv/sounds" {
		t.Errorf("AssetDir = %q, want /srv/sounds", cfg.AssetDir)
	}
	if cfg.Level() != slog.LevelDebug {
		t.Errorf("Level = %v, want debug", cfg.Level())
	}
}

func TestLoadInvalidFallsBack(t *testing.T) {
	t.Setenv("AMBIENCE_SAMPLE_RATE", "fast")
	t.Setenv("AMBIENCE_GLOBAL_VOLUME", "loud")
	t.Setenv("AMBIENCE_SEED", "-1")
	t.Setenv("AMBIENCE_TICK_INTERVAL", "soon")

	cfg := Load()

	if cfg.SampleRate != 48000 {
		t.Errorf("SampleRate = %d, want default 48000", cfg.SampleRate)
	}
	if cfg.GlobalVolume != 1.0 {
		t.Errorf("GlobalVolume = %f, want default 1.0", cfg.GlobalVolume)
	}
	if cfg.Seed != 0 {
		t.Errorf("Seed = %d, want default 0", cfg.Seed)
	}
	if cfg.TickInterval != 20*time.Millisecond {
		t.Errorf("TickInterval = %v, want default 20ms", cfg.TickInterval)
	}
}

func TestTickIntervalMilliseconds(t *testing.T) {
	t.Setenv("AMBIENCE_TICK_INTERVAL", "40")

	if got := Load().TickInterval; got != 40*time.Millisecond {
		t.Errorf("TickInterval = %v, want 40ms", got)
	}
}

func TestLevel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"Warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"chatty", slog.LevelInfo},
	}
	for _, tt := range tests {
		if got := (Config{LogLevel: tt.in}).Level(); got != tt.want {
			t.Errorf("Level(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestLoggerHonoursLevel(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := Config{LogLevel: "warn"}.Logger(&buf)
	log.Info("hidden")
	log.Warn("shown", "zone", "forest")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("info line logged at warn level: %q", out)
	}
	if !strings.Contains(out, "shown") || !strings.Contains(out, "zone=forest") {
		t.Errorf("warn line missing: %q", out)
	}
}
