package providers

import (
	"errors"
	"testing"
	"time"

	"mercator-hq/conduit/pkg/providers"
)

// TestConfig returns a test adapter configuration pointing at baseURL.
func TestConfig(name, providerType, baseURL string) providers.ProviderConfig {
	return providers.ProviderConfig{
		Name:    name,
		Type:    providerType,
		BaseURL: baseURL,
		APIKey:  "test-key",
		Quality: providers.QualityHigh,
	}
}

// TestMessage creates a test message.
func TestMessage(role, content string) providers.Message {
	return providers.Message{
		Role:    role,
		Content: content,
	}
}

// TestRequest creates a request carrying a prompt and optional history.
func TestRequest(prompt string, messages ...providers.Message) *providers.RequestOptions {
	return &providers.RequestOptions{
		Prompt:   prompt,
		Messages: messages,
	}
}

// TestStreamingRequest creates a streaming test request.
func TestStreamingRequest(prompt string, messages ...providers.Message) *providers.RequestOptions {
	req := TestRequest(prompt, messages...)
	req.Stream = true
	return req
}

// AssertNoError fails the test if err is not nil.
func AssertNoError(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// AssertErrorAs fails the test unless err matches target's type via
// errors.As. target must be a non-nil pointer to an error type.
func AssertErrorAs(t *testing.T, err error, target interface{}) {
	t.Helper()
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if !errors.As(err, target) {
		t.Fatalf("expected %T, got %T: %v", target, err, err)
	}
}

// WaitForCondition waits for a condition to become true within a timeout.
func WaitForCondition(t *testing.T, timeout time.Duration, condition func() bool, message string) {
	t.Helper()

	deadline := time.Now().Add(timeout)
	ticker := time.NewTicker(10 * time.Millisecond)
	defer ticker.Stop()

	for {
		if condition() {
			return
		}

		if time.Now().After(deadline) {
			t.Fatalf("condition not met within %s: %s", timeout, message)
		}

		<-ticker.C
	}
}
