package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"yt-subtitles-loader/infrastructure/config"
)

func TestNew_Formats(t *testing.T) {
	tests := []struct {
		name     string
		format   string
		wantJSON bool
	}{
		{name: "json", format: "json", wantJSON: true},
		{name: "text", format: "text", wantJSON: false},
		{name: "auto on a buffer is json", format: "auto", wantJSON: true},
		{name: "empty means auto", format: "", wantJSON: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger, err := New(Options{Level: "info", Format: tt.format, Writer: &buf})
			if err != nil {
				t.Fatalf("New() error: %v", err)
			}
			logger.Info("listing subtitles", "link", "https://youtu.be/dQw4w9WgXcQ")

			var entry map[string]any
			isJSON := json.Unmarshal(buf.Bytes(), &entry) == nil
			if isJSON != tt.wantJSON {
				t.Errorf("json output = %v, want %v: %s", isJSON, tt.wantJSON, buf.String())
			}
			if !strings.Contains(buf.String(), "listing subtitles") {
				t.Errorf("message missing from %q", buf.String())
			}
		})
	}
}

func TestNew_UnsupportedFormat(t *testing.T) {
	if _, err := New(Options{Format: "xml"}); err == nil {
		t.Error("expected error for unsupported format")
	}
}

func TestNew_Level(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Options{Level: "warn", Format: "text", Writer: &buf})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}

	logger.Info("hidden")
	logger.Warn("shown")

	if strings.Contains(buf.String(), "hidden") {
		t.Error("info message should be filtered at warn level")
	}
	if !strings.Contains(buf.String(), "shown") {
		t.Error("warn message missing")
	}
}

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		" INFO ":  slog.LevelInfo,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"verbose": slog.LevelInfo,
	}
	for in, want := range tests {
		if got := parseLevel(in); got != want {
			t.Errorf("parseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestNewFromConfig(t *testing.T) {
	var buf bytes.Buffer
	cfg := config.Defaults()
	cfg.Log.Format = "json"
	cfg.Log.Level = "debug"

	logger, err := NewFromConfig(cfg, &buf)
	if err != nil {
		t.Fatalf("NewFromConfig() error: %v", err)
	}
	logger.Debug("debug message")
	if !strings.Contains(buf.String(), "debug message") {
		t.Errorf("debug message missing from %q", buf.String())
	}

	if _, err := NewFromConfig(nil, &buf); err != nil {
		t.Errorf("NewFromConfig(nil) error: %v", err)
	}
}
