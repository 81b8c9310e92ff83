package replay

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
)

func TestNewCapture(t *testing.T) {
	body := []byte(`{"model":"gpt-4","prompt":"hi"}`)
	c := NewCapture("openai", "gpt-4", "https://api.openai.com/v1/completions", false, body, 0)

	if c.ID == "" {
		t.Fatal("expected capture ID")
	}
	if c.RequestBody != string(body) {
		t.Errorf("RequestBody = %q, want %q", c.RequestBody, body)
	}
	if len(c.RequestHash) != 64 {
		t.Errorf("RequestHash length = %d, want 64", len(c.RequestHash))
	}
	if c.Truncated {
		t.Error("expected no truncation")
	}

	other := NewCapture("openai", "gpt-4", "", false, body, 0)
	if other.ID == c.ID {
		t.Error("expected unique capture IDs")
	}
	if other.RequestHash != c.RequestHash {
		t.Error("expected identical bodies to hash identically")
	}
}

func TestCaptureTruncation(t *testing.T) {
	body := []byte(strings.Repeat("a", 100))
	c := NewCapture("local", "m", "", true, body, 10)

	if len(c.RequestBody) != 10 {
		t.Errorf("RequestBody length = %d, want 10", len(c.RequestBody))
	}
	if !c.Truncated {
		t.Error("expected Truncated")
	}

	full := NewCapture("local", "m", "", true, body, 0)
	if c.RequestHash != full.RequestHash {
		t.Error("hash must cover the full body")
	}

	c.AddPayload([]byte("data: short"), 64)
	c.AddPayload([]byte(strings.Repeat("b", 100)), 64)
	if len(c.Payloads) != 2 {
		t.Fatalf("got %d payloads, want 2", len(c.Payloads))
	}
	if c.Payloads[0] != "data: short" {
		t.Errorf("Payloads[0] = %q", c.Payloads[0])
	}
	if len(c.Payloads[1]) != 64 {
		t.Errorf("Payloads[1] length = %d, want 64", len(c.Payloads[1]))
	}
}

func TestCaptureFinish(t *testing.T) {
	c := NewCapture("openai", "gpt-4", "", false, nil, 0)
	if c.Duration() != 0 {
		t.Error("expected zero duration before Finish")
	}

	c.Finish(errors.New("boom"))
	if c.Error != "boom" {
		t.Errorf("Error = %q, want boom", c.Error)
	}
	if c.FinishedAt.Before(c.StartedAt) {
		t.Error("FinishedAt before StartedAt")
	}
}

func TestLogRecorder(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	r := NewLogRecorder(logger)

	c := NewCapture("anthropic", "claude", "http://x", true, []byte(`{}`), 0)
	c.AddPayload([]byte("data: {}"), 0)
	c.StatusCode = 200
	c.Finish(nil)

	if err := r.Record(context.Background(), c); err != nil {
		t.Fatalf("Record: %v", err)
	}

	out := buf.String()
	for _, want := range []string{c.ID, `"provider":"anthropic"`, `"component":"replay"`, `"status_code":200`} {
		if !strings.Contains(out, want) {
			t.Errorf("log output missing %s: %s", want, out)
		}
	}
}
