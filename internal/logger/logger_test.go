package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap/zapcore"

	"StockPanel/internal/config"
)

func TestNewInvalidLevel(t *testing.T) {
	if _, err := New(config.LogConfig{Level: "loud"}, true); err == nil {
		t.Fatal("expected error for invalid level")
	}
}

func TestNewFileOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "panel.log")
	l, err := New(config.LogConfig{Level: "info", Format: "console", File: path, MaxSizeMB: 1, MaxBackups: 1, MaxAgeDays: 1}, false)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	l.Info("quote fetched")
	NewCronLogger(l).Error(errors.New("boom"), "job failed")
	_ = l.Sync()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	out := string(data)
	if !strings.Contains(out, "quote fetched") {
		t.Errorf("log missing message: %s", out)
	}
	if !strings.Contains(out, "boom") {
		t.Errorf("cron error not logged: %s", out)
	}
}

func TestNewQuietWithoutFile(t *testing.T) {
	l, err := New(config.LogConfig{Level: "debug"}, false)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if l.Core().Enabled(0) {
		t.Error("expected no-op logger")
	}
}

func TestConsoleFormat(t *testing.T) {
	tests := []struct {
		format   string
		wantJSON bool
	}{
		{"json", true},
		{"console", false},
	}
	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			var buf bytes.Buffer
			l, err := build(config.LogConfig{Level: "info", Format: tt.format}, zapcore.AddSync(&buf))
			if err != nil {
				t.Fatalf("build: %v", err)
			}
			l.Info("quote fetched")
			_ = l.Sync()

			line := strings.TrimSpace(buf.String())
			if !strings.Contains(line, "quote fetched") {
				t.Fatalf("log missing message: %q", line)
			}
			var entry map[string]any
			isJSON := json.Unmarshal([]byte(line), &entry) == nil
			if isJSON != tt.wantJSON {
				t.Errorf("json output = %v, want %v: %q", isJSON, tt.wantJSON, line)
			}
			if tt.wantJSON && entry["msg"] != "quote fetched" {
				t.Errorf("msg = %v", entry["msg"])
			}
		})
	}
}
