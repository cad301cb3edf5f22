package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func TestFromEnv(t *testing.T) {
	tests := []struct {
		name      string
		level     string
		format    string
		wantLevel slog.Level
		wantJSON  bool
	}{
		{name: "defaults", wantLevel: slog.LevelInfo},
		{name: "debug", level: "debug", wantLevel: slog.LevelDebug},
		{name: "warn uppercase", level: "WARN", wantLevel: slog.LevelWarn},
		{name: "warning alias", level: "warning", wantLevel: slog.LevelWarn},
		{name: "error", level: "error", wantLevel: slog.LevelError},
		{name: "unknown level falls back", level: "loud", wantLevel: slog.LevelInfo},
		{name: "json format", format: "JSON", wantLevel: slog.LevelInfo, wantJSON: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv("LOG_LEVEL", tc.level)
			t.Setenv("LOG_FORMAT", tc.format)

			cfg := FromEnv()
			if cfg.Level != tc.wantLevel {
				t.Errorf("level: got %v, want %v", cfg.Level, tc.wantLevel)
			}
			if cfg.JSON != tc.wantJSON {
				t.Errorf("json: got %v, want %v", cfg.JSON, tc.wantJSON)
			}
		})
	}
}

func TestSetupHandlers(t *testing.T) {
	var buf bytes.Buffer
	logger := Setup(Config{Level: slog.LevelInfo, JSON: true, Output: &buf})

	logger.Info("hello", "answer", 42)

	var record map[string]any
	if err := json.Unmarshal(buf.Bytes(), &record); err != nil {
		t.Fatalf("JSON handler output is not JSON: %v (%s)", err, buf.String())
	}
	if record["msg"] != "hello" {
		t.Errorf("msg: got %v, want hello", record["msg"])
	}

	buf.Reset()
	logger = Setup(Config{Level: slog.LevelWarn, Output: &buf})

	logger.Info("dropped")
	if buf.Len() != 0 {
		t.Errorf("info record emitted below warn level: %s", buf.String())
	}

	logger.Warn("kept")
	if !strings.Contains(buf.String(), "kept") {
		t.Errorf("warn record missing: %s", buf.String())
	}
}
