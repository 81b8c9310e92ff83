package providers

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"time"
)

// MockServer is a mock HTTP server for testing provider adapters.
// It simulates batch responses, server-sent event streams and error statuses,
// and records every request it receives.
type MockServer struct {
	server    *httptest.Server
	responses map[string]MockResponse
	requests  []RecordedRequest
	mu        sync.Mutex
}

// MockResponse defines a mock response configuration.
type MockResponse struct {
	StatusCode int
	Body       interface{}
	Delay      time.Duration
	Headers    map[string]string

	// StreamLines are written verbatim, one per line, as a text/event-stream
	// body. No terminator is added: omit it to simulate a truncated stream.
	StreamLines []string
}

// RecordedRequest is a request received by the mock server.
type RecordedRequest struct {
	Path   string
	Header http.Header
	Body   []byte
}

// JSON decodes the recorded body.
func (r RecordedRequest) JSON() (map[string]interface{}, error) {
	var out map[string]interface{}
	if err := json.Unmarshal(r.Body, &out); err != nil {
		return nil, fmt.Errorf("failed to decode request body: %w", err)
	}
	return out, nil
}

// NewMockServer creates a new mock server.
func NewMockServer() *MockServer {
	ms := &MockServer{
		responses: make(map[string]MockResponse),
	}

	// Create HTTP server
	ms.server = httptest.NewServer(http.HandlerFunc(ms.handler))

	return ms
}

// URL returns the mock server's base URL.
func (ms *MockServer) URL() string {
	return ms.server.URL
}

// Close closes the mock server.
func (ms *MockServer) Close() {
	ms.server.Close()
}

// SetResponse sets a mock response for a specific endpoint.
func (ms *MockServer) SetResponse(path string, response MockResponse) {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	ms.responses[path] = response
}

// GetRequestCount returns the number of requests received.
func (ms *MockServer) GetRequestCount() int {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	return len(ms.requests)
}

// Requests returns a copy of the recorded requests in arrival order.
func (ms *MockServer) Requests() []RecordedRequest {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	out := make([]RecordedRequest, len(ms.requests))
	copy(out, ms.requests)
	return out
}

// LastRequest returns the most recent request, or false when none arrived.
func (ms *MockServer) LastRequest() (RecordedRequest, bool) {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	if len(ms.requests) == 0 {
		return RecordedRequest{}, false
	}
	return ms.requests[len(ms.requests)-1], true
}

// handler handles incoming HTTP requests.
func (ms *MockServer) handler(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)

	ms.mu.Lock()
	ms.requests = append(ms.requests, RecordedRequest{
		Path:   r.URL.Path,
		Header: r.Header.Clone(),
		Body:   body,
	})
	response, ok := ms.responses[r.URL.Path]
	ms.mu.Unlock()

	if !ok {
		// Default 404 response
		http.NotFound(w, r)
		return
	}

	// Apply delay if specified
	if response.Delay > 0 {
		select {
		case <-time.After(response.Delay):
		case <-r.Context().Done():
			return
		}
	}

	// Set headers
	for key, value := range response.Headers {
		w.Header().Set(key, value)
	}

	// Handle streaming responses
	if len(response.StreamLines) > 0 {
		ms.handleStream(w, response)
		return
	}

	status := response.StatusCode
	if status == 0 {
		status = http.StatusOK
	}
	w.WriteHeader(status)

	// Write response body
	if response.Body != nil {
		switch v := response.Body.(type) {
		case string:
			_, _ = w.Write([]byte(v)) // Write to response, ignore error
		case []byte:
			_, _ = w.Write(v) // Write to response, ignore error
		default:
			_ = json.NewEncoder(w).Encode(response.Body) // Write to response, ignore error
		}
	}
}

// handleStream handles Server-Sent Events streaming responses.
func (ms *MockServer) handleStream(w http.ResponseWriter, response MockResponse) {
	// Set SSE headers
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming not supported", http.StatusInternalServerError)
		return
	}

	status := response.StatusCode
	if status == 0 {
		status = http.StatusOK
	}
	w.WriteHeader(status)

	for _, line := range response.StreamLines {
		fmt.Fprintf(w, "%s\n", line)
		flusher.Flush()
	}
}

// MockOpenAIResponse creates a mock OpenAI chat completion response with one
// choice per content string.
func MockOpenAIResponse(model string, contents ...string) map[string]interface{} {
	choices := make([]map[string]interface{}, len(contents))
	for i, content := range contents {
		choices[i] = map[string]interface{}{
			"index": i,
			"message": map[string]interface{}{
				"role":    "assistant",
				"content": content,
			},
			"finish_reason": "stop",
		}
	}
	return map[string]interface{}{
		"id":      "chatcmpl-123",
		"object":  "chat.completion",
		"created": time.Now().Unix(),
		"model":   model,
		"choices": choices,
		"usage": map[string]interface{}{
			"prompt_tokens":     10,
			"completion_tokens": 20,
			"total_tokens":      30,
		},
	}
}

// MockCompletionResponse creates a mock legacy completion response.
func MockCompletionResponse(model string, texts ...string) map[string]interface{} {
	choices := make([]map[string]interface{}, len(texts))
	for i, text := range texts {
		choices[i] = map[string]interface{}{
			"index":         i,
			"text":          text,
			"finish_reason": "stop",
		}
	}
	return map[string]interface{}{
		"id":      "cmpl-123",
		"object":  "text_completion",
		"model":   model,
		"choices": choices,
	}
}

// MockOpenAIStreamChunk creates a mock OpenAI streaming chunk for one slot.
func MockOpenAIStreamChunk(index int, delta string) string {
	chunk := map[string]interface{}{
		"id":      "chatcmpl-123",
		"object":  "chat.completion.chunk",
		"created": time.Now().Unix(),
		"model":   "gpt-4",
		"choices": []map[string]interface{}{
			{
				"index": index,
				"delta": map[string]interface{}{
					"content": delta,
				},
			},
		},
	}

	bytes, _ := json.Marshal(chunk)
	return string(bytes)
}

// MockOpenAIStream returns the event-stream lines of a single-slot chat
// stream: a role announcement, one chunk per delta and the [DONE] sentinel.
func MockOpenAIStream(deltas ...string) []string {
	lines := []string{
		`data: {"choices":[{"index":0,"delta":{"role":"assistant"}}]}`,
		"",
	}
	for _, d := range deltas {
		lines = append(lines, "data: "+MockOpenAIStreamChunk(0, d), "")
	}
	return append(lines, "data: [DONE]", "")
}

// MockAnthropicResponse creates a mock Anthropic messages response.
func MockAnthropicResponse(content string, model string) map[string]interface{} {
	return map[string]interface{}{
		"id":   "msg_123",
		"type": "message",
		"role": "assistant",
		"content": []map[string]interface{}{
			{
				"type": "text",
				"text": content,
			},
		},
		"model":       model,
		"stop_reason": "end_turn",
		"usage": map[string]interface{}{
			"input_tokens":  10,
			"output_tokens": 20,
		},
	}
}

// MockAnthropicStreamEvent returns the event and data lines of one
// Anthropic stream event, followed by the blank separator.
func MockAnthropicStreamEvent(eventType string, data interface{}) []string {
	payload, _ := json.Marshal(data)
	return []string{"event: " + eventType, "data: " + string(payload), ""}
}

// MockAnthropicStream returns a complete Anthropic stream with one text
// delta per argument, ending with message_stop.
func MockAnthropicStream(texts ...string) []string {
	var lines []string
	lines = append(lines, MockAnthropicStreamEvent("message_start", map[string]interface{}{
		"type":    "message_start",
		"message": map[string]interface{}{"id": "msg_123", "role": "assistant"},
	})...)
	lines = append(lines, MockAnthropicStreamEvent("content_block_start", map[string]interface{}{
		"type":          "content_block_start",
		"index":         0,
		"content_block": map[string]interface{}{"type": "text", "text": ""},
	})...)
	lines = append(lines, "event: ping", `data: {"type":"ping"}`, "")
	for _, text := range texts {
		lines = append(lines, MockAnthropicStreamEvent("content_block_delta", map[string]interface{}{
			"type":  "content_block_delta",
			"index": 0,
			"delta": map[string]interface{}{"type": "text_delta", "text": text},
		})...)
	}
	lines = append(lines, MockAnthropicStreamEvent("content_block_stop", map[string]interface{}{
		"type": "content_block_stop", "index": 0,
	})...)
	return append(lines, MockAnthropicStreamEvent("message_stop", map[string]interface{}{
		"type": "message_stop",
	})...)
}

// MockErrorResponse creates a mock error response.
func MockErrorResponse(statusCode int, message string) MockResponse {
	body := map[string]interface{}{
		"error": map[string]interface{}{
			"message": message,
			"type":    "invalid_request_error",
			"code":    statusCode,
		},
	}

	return MockResponse{
		StatusCode: statusCode,
		Body:       body,
	}
}

// MockAuthError creates a 401 authentication error response.
func MockAuthError() MockResponse {
	return MockErrorResponse(http.StatusUnauthorized, "Invalid API key")
}

// MockRateLimitError creates a 429 rate limit error response.
func MockRateLimitError(retryAfter int) MockResponse {
	response := MockErrorResponse(http.StatusTooManyRequests, "Rate limit exceeded")
	response.Headers = map[string]string{
		"Retry-After": fmt.Sprintf("%d", retryAfter),
	}
	return response
}

// MockServerError creates a 500 internal server error response.
func MockServerError() MockResponse {
	return MockErrorResponse(http.StatusInternalServerError, "Internal server error")
}
