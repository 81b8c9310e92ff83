package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"mercator-hq/conduit/pkg/config"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		cfg     config.LoggingConfig
		wantErr bool
	}{
		{name: "defaults", cfg: config.LoggingConfig{}},
		{name: "json debug", cfg: config.LoggingConfig{Level: "debug", Format: "json"}},
		{name: "text warn", cfg: config.LoggingConfig{Level: "warn", Format: "text"}},
		{name: "invalid level", cfg: config.LoggingConfig{Level: "trace"}, wantErr: true},
		{name: "invalid format", cfg: config.LoggingConfig{Format: "xml"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, err := New(tt.cfg, &bytes.Buffer{})
			if (err != nil) != tt.wantErr {
				t.Fatalf("New() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && logger == nil {
				t.Fatal("New() returned nil logger")
			}
		})
	}
}

func TestNew_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(config.LoggingConfig{Level: "warn", Format: "json"}, &buf)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	logger.Info("dropped")
	logger.Warn("kept")

	out := buf.String()
	if strings.Contains(out, "dropped") {
		t.Error("info record written at warn level")
	}
	if !strings.Contains(out, "kept") {
		t.Error("warn record missing")
	}
}

func TestNew_RedactsKeys(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(config.LoggingConfig{Format: "json"}, &buf)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	logger.Info("request",
		"api_key", "sk-abcdef1234567890",
		"header", "Bearer abc.def.ghi",
		"has_api_key", true,
		"max_tokens", 256,
	)

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("failed to decode log line %q: %v", buf.String(), err)
	}

	if got := entry["api_key"]; got != "sk-a***" {
		t.Errorf("api_key = %v, want sk-a***", got)
	}
	if got := entry["header"]; got != "Bearer ***" {
		t.Errorf("header = %v, want Bearer ***", got)
	}
	if got := entry["has_api_key"]; got != true {
		t.Errorf("has_api_key = %v, want true", got)
	}
	if got := entry["max_tokens"]; got != float64(256) {
		t.Errorf("max_tokens = %v, want 256", got)
	}
	if strings.Contains(buf.String(), "1234567890") {
		t.Error("log output contains the raw key")
	}
}

func TestNew_RedactionDisabled(t *testing.T) {
	var buf bytes.Buffer
	off := false
	logger, err := New(config.LoggingConfig{Format: "json", RedactKeys: &off}, &buf)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	logger.Info("request", "api_key", "sk-abcdef1234567890")
	if !strings.Contains(buf.String(), "sk-abcdef1234567890") {
		t.Errorf("key redacted with redaction disabled: %s", buf.String())
	}
}

func TestNew_ContextFields(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(config.LoggingConfig{Format: "json"}, &buf)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	ctx := WithRequestID(context.Background(), "req-123")
	ctx = WithProvider(ctx, "anthropic")
	logger.With("component", "test").InfoContext(ctx, "hello")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("failed to decode log line: %v", err)
	}
	if entry["request_id"] != "req-123" {
		t.Errorf("request_id = %v, want req-123", entry["request_id"])
	}
	if entry["provider"] != "anthropic" {
		t.Errorf("provider = %v, want anthropic", entry["provider"])
	}
	if entry["component"] != "test" {
		t.Errorf("component = %v, want test", entry["component"])
	}
}

func TestSetup(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	var buf bytes.Buffer
	if _, err := Setup(config.LoggingConfig{Format: "text"}, &buf); err != nil {
		t.Fatalf("Setup() error = %v", err)
	}
	slog.Info("via default")
	if !strings.Contains(buf.String(), "via default") {
		t.Errorf("default logger not installed, output %q", buf.String())
	}
}
