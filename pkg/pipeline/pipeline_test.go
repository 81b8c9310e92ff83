package pipeline

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	mock "mercator-hq/conduit/internal/providers"
	"mercator-hq/conduit/pkg/config"
	"mercator-hq/conduit/pkg/providers"
	"mercator-hq/conduit/pkg/providers/anthropic"
	"mercator-hq/conduit/pkg/providers/generic"
	"mercator-hq/conduit/pkg/providers/openai"
	"mercator-hq/conduit/pkg/replay"
	"mercator-hq/conduit/pkg/telemetry/metrics"
)

// memoryCache is a map-backed cache hook pair.
type memoryCache struct {
	mu      sync.Mutex
	entries map[string][]string
	getErr  error
	sets    int
}

func newMemoryCache() *memoryCache {
	return &memoryCache{entries: make(map[string][]string)}
}

func (c *memoryCache) hooks() providers.CacheHooks {
	return providers.CacheHooks{
		Get: func(_ context.Context, key string) ([]string, bool, error) {
			c.mu.Lock()
			defer c.mu.Unlock()
			if c.getErr != nil {
				return nil, false, c.getErr
			}
			g, ok := c.entries[key]
			return g, ok, nil
		},
		Set: func(_ context.Context, key string, generations []string) error {
			c.mu.Lock()
			defer c.mu.Unlock()
			c.entries[key] = generations
			c.sets++
			return nil
		},
	}
}

func (c *memoryCache) setCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sets
}

// captureRecorder keeps captures in memory.
type captureRecorder struct {
	mu       sync.Mutex
	captures []*replay.Capture
	err      error
}

func (r *captureRecorder) Record(_ context.Context, c *replay.Capture) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.captures = append(r.captures, c)
	return r.err
}

func (r *captureRecorder) all() []*replay.Capture {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*replay.Capture(nil), r.captures...)
}

func newChat(t *testing.T, baseURL string, cache providers.CacheHooks, debug bool) *openai.ChatAdapter {
	t.Helper()
	cfg := mock.TestConfig("openai", "openai", baseURL)
	cfg.Debug = debug
	a, err := openai.NewChat(cfg, cache)
	mock.AssertNoError(t, err)
	return a
}

func TestRun_Batch(t *testing.T) {
	server := mock.NewMockServer()
	defer server.Close()
	server.SetResponse("/chat/completions", mock.MockResponse{
		StatusCode: http.StatusOK,
		Body:       mock.MockOpenAIResponse("gpt-4", "Hello!"),
	})

	p := New(Options{})
	adapter := newChat(t, server.URL(), providers.CacheHooks{}, false)

	res, err := p.Run(context.Background(), adapter, mock.TestRequest("Hi"), providers.RequestMeta{})
	mock.AssertNoError(t, err)

	if res.Stream != nil {
		t.Fatal("expected a materialized result")
	}
	if len(res.Generations) != 1 || res.Generations[0] != "Hello!" {
		t.Errorf("Generations = %v", res.Generations)
	}
	if res.Cached {
		t.Error("expected uncached result")
	}

	req, ok := server.LastRequest()
	if !ok {
		t.Fatal("no request recorded")
	}
	body, err := req.JSON()
	mock.AssertNoError(t, err)
	if body["model"] != "gpt-4" {
		t.Errorf("model = %v, want gpt-4", body["model"])
	}
	if _, ok := body["stream"]; ok {
		t.Error("batch request must not carry stream")
	}
	if _, ok := body["stop"]; ok {
		t.Error("empty stop sequences must be absent")
	}
	if got := req.Header.Get("Authorization"); got != "Bearer test-key" {
		t.Errorf("Authorization = %q", got)
	}
	if got := req.Header.Get("Content-Type"); got != "application/json" {
		t.Errorf("Content-Type = %q", got)
	}
}

func TestRun_BatchMultipleGenerations(t *testing.T) {
	server := mock.NewMockServer()
	defer server.Close()
	server.SetResponse("/completions", mock.MockResponse{
		Body: mock.MockCompletionResponse("text-davinci-003", "one", "two"),
	})

	adapter, err := openai.NewCompletion(mock.TestConfig("openai-completion", "openai-completion", server.URL()), providers.CacheHooks{})
	mock.AssertNoError(t, err)

	req := mock.TestRequest("count")
	req.NumGenerations = 3
	got, err := New(Options{}).Complete(context.Background(), adapter, req, providers.RequestMeta{})
	mock.AssertNoError(t, err)

	// Fewer choices than requested are returned as-is.
	if len(got) != 2 || got[0] != "one" || got[1] != "two" {
		t.Errorf("Complete = %v", got)
	}

	last, _ := server.LastRequest()
	body, _ := last.JSON()
	if body["n"] != float64(3) {
		t.Errorf("n = %v, want 3", body["n"])
	}
}

func TestRun_ProviderError(t *testing.T) {
	tests := []struct {
		name     string
		response mock.MockResponse
		status   int
		class    string
	}{
		{"rate limit", mock.MockRateLimitError(7), http.StatusTooManyRequests, errTypeRateLimit},
		{"auth", mock.MockAuthError(), http.StatusUnauthorized, errTypeAuth},
		{"server", mock.MockServerError(), http.StatusInternalServerError, errTypeServer},
		{"bad request", mock.MockErrorResponse(http.StatusBadRequest, "bad"), http.StatusBadRequest, errTypeClient},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := mock.NewMockServer()
			defer server.Close()
			server.SetResponse("/chat/completions", tt.response)

			_, err := New(Options{}).Run(context.Background(), newChat(t, server.URL(), providers.CacheHooks{}, false),
				mock.TestRequest("Hi"), providers.RequestMeta{})

			var perr *providers.ProviderError
			mock.AssertErrorAs(t, err, &perr)
			if perr.StatusCode != tt.status {
				t.Errorf("StatusCode = %d, want %d", perr.StatusCode, tt.status)
			}
			if !strings.Contains(perr.Body, "error") {
				t.Errorf("Body = %q, want raw provider body", perr.Body)
			}
			if got := classify(err); got != tt.class {
				t.Errorf("classify = %q, want %q", got, tt.class)
			}
			if server.GetRequestCount() != 1 {
				t.Errorf("requests = %d, want exactly 1 (no retries)", server.GetRequestCount())
			}
		})
	}
}

func TestRun_RetryAfter(t *testing.T) {
	server := mock.NewMockServer()
	defer server.Close()
	server.SetResponse("/chat/completions", mock.MockRateLimitError(7))

	_, err := New(Options{}).Run(context.Background(), newChat(t, server.URL(), providers.CacheHooks{}, false),
		mock.TestRequest("Hi"), providers.RequestMeta{})

	var perr *providers.ProviderError
	mock.AssertErrorAs(t, err, &perr)
	if perr.RetryAfter != 7*time.Second {
		t.Errorf("RetryAfter = %v, want 7s", perr.RetryAfter)
	}
}

func TestRun_TransportError(t *testing.T) {
	server := mock.NewMockServer()
	url := server.URL()
	server.Close()

	_, err := New(Options{}).Run(context.Background(), newChat(t, url, providers.CacheHooks{}, false),
		mock.TestRequest("Hi"), providers.RequestMeta{})

	var terr *providers.TransportError
	mock.AssertErrorAs(t, err, &terr)
	if got := classify(err); got != errTypeNetwork {
		t.Errorf("classify = %q, want %q", got, errTypeNetwork)
	}
}

func TestRun_DecodeError(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"not json", "<html>oops</html>"},
		{"no choices", `{"id":"x"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := mock.NewMockServer()
			defer server.Close()
			server.SetResponse("/chat/completions", mock.MockResponse{Body: tt.body})

			_, err := New(Options{}).Run(context.Background(), newChat(t, server.URL(), providers.CacheHooks{}, false),
				mock.TestRequest("Hi"), providers.RequestMeta{})

			var derr *providers.DecodeError
			mock.AssertErrorAs(t, err, &derr)
		})
	}
}

func TestRun_EmptyChoicesNotCached(t *testing.T) {
	server := mock.NewMockServer()
	defer server.Close()
	server.SetResponse("/chat/completions", mock.MockResponse{Body: `{"choices":[]}`})

	cache := newMemoryCache()
	req := mock.TestRequest("Hi")
	req.NumGenerations = 2

	res, err := New(Options{}).Run(context.Background(), newChat(t, server.URL(), cache.hooks(), false),
		req, providers.RequestMeta{})

	var derr *providers.DecodeError
	mock.AssertErrorAs(t, err, &derr)
	if res != nil {
		t.Errorf("expected no result, got %+v", res)
	}
	if n := cache.setCount(); n != 0 {
		t.Errorf("cache writes = %d, want 0", n)
	}
}

func TestRun_Validation(t *testing.T) {
	adapter := newChat(t, "http://localhost:1", providers.CacheHooks{}, false)

	tests := []struct {
		name  string
		opts  *providers.RequestOptions
		field string
	}{
		{"nil options", nil, "options"},
		{"empty request", &providers.RequestOptions{}, "messages"},
		{"negative generations", &providers.RequestOptions{Prompt: "x", NumGenerations: -1}, "num_generations"},
		{"bad role", &providers.RequestOptions{Messages: []providers.Message{{Role: "tool", Content: "x"}}}, "messages[0].role"},
		{"unencodable params", &providers.RequestOptions{Prompt: "x", Params: map[string]any{"bad": make(chan int)}}, "params"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(Options{}).Run(context.Background(), adapter, tt.opts, providers.RequestMeta{})
			var verr *providers.ValidationError
			mock.AssertErrorAs(t, err, &verr)
			if verr.Field != tt.field {
				t.Errorf("Field = %q, want %q", verr.Field, tt.field)
			}
		})
	}
}

func TestRun_EmptyModel(t *testing.T) {
	adapter, err := generic.New(mock.TestConfig("local", "generic", "http://localhost:1"), providers.CacheHooks{})
	mock.AssertNoError(t, err)

	_, err = New(Options{}).Run(context.Background(), adapter, mock.TestRequest("Hi"), providers.RequestMeta{})
	var verr *providers.ValidationError
	mock.AssertErrorAs(t, err, &verr)
	if verr.Field != "modelId" {
		t.Errorf("Field = %q, want modelId", verr.Field)
	}
}

func TestRun_ProviderMismatchPanics(t *testing.T) {
	adapter := newChat(t, "http://localhost:1", providers.CacheHooks{}, false)
	req := mock.TestRequest("Hi")
	req.ModelProvider = "anthropic"

	defer func() {
		if recover() == nil {
			t.Fatal("expected panic for mismatched provider")
		}
	}()
	_, _ = New(Options{}).Run(context.Background(), adapter, req, providers.RequestMeta{})
}

func TestRun_StreamTwoFragments(t *testing.T) {
	server := mock.NewMockServer()
	defer server.Close()
	server.SetResponse("/chat/completions", mock.MockResponse{
		StreamLines: mock.MockOpenAIStream("Hel", "lo"),
	})

	cache := newMemoryCache()
	adapter := newChat(t, server.URL(), cache.hooks(), false)

	res, err := New(Options{}).Run(context.Background(), adapter, mock.TestStreamingRequest("Hi"), providers.RequestMeta{})
	mock.AssertNoError(t, err)
	if res.Stream == nil {
		t.Fatal("expected a stream")
	}

	var frags []providers.Fragment
	for f, err := range res.Stream.All() {
		mock.AssertNoError(t, err)
		frags = append(frags, f)
	}

	want := []providers.Fragment{{Index: 0, Text: "Hel"}, {Index: 0, Text: "lo"}}
	if len(frags) != len(want) {
		t.Fatalf("got %d fragments, want %d: %v", len(frags), len(want), frags)
	}
	for i := range want {
		if frags[i] != want[i] {
			t.Errorf("fragment %d = %+v, want %+v", i, frags[i], want[i])
		}
	}

	if cache.setCount() != 1 {
		t.Errorf("cache sets = %d, want 1 after full drain", cache.setCount())
	}

	last, _ := server.LastRequest()
	body, _ := last.JSON()
	if body["stream"] != true {
		t.Errorf("stream = %v, want true", body["stream"])
	}
	if got := last.Header.Get("Accept"); got != "text/event-stream" {
		t.Errorf("Accept = %q", got)
	}
}

func TestStream_SecondIteration(t *testing.T) {
	server := mock.NewMockServer()
	defer server.Close()
	server.SetResponse("/chat/completions", mock.MockResponse{
		StreamLines: mock.MockOpenAIStream("a", "b"),
	})

	res, err := New(Options{}).Run(context.Background(), newChat(t, server.URL(), providers.CacheHooks{}, false),
		mock.TestStreamingRequest("Hi"), providers.RequestMeta{})
	mock.AssertNoError(t, err)

	got, err := Collect(res.Stream, 1)
	mock.AssertNoError(t, err)
	if got[0] != "ab" {
		t.Errorf("Collect = %v", got)
	}

	for _, err := range res.Stream.All() {
		if !errors.Is(err, providers.ErrStreamConsumed) {
			t.Errorf("second iteration error = %v, want ErrStreamConsumed", err)
		}
	}
	if _, err := res.Stream.Recv(); !errors.Is(err, providers.ErrStreamConsumed) {
		t.Errorf("Recv after end = %v, want ErrStreamConsumed", err)
	}
}

func TestStream_Recv(t *testing.T) {
	server := mock.NewMockServer()
	defer server.Close()
	server.SetResponse("/chat/completions", mock.MockResponse{
		StreamLines: mock.MockOpenAIStream("x"),
	})

	res, err := New(Options{}).Run(context.Background(), newChat(t, server.URL(), providers.CacheHooks{}, false),
		mock.TestStreamingRequest("Hi"), providers.RequestMeta{})
	mock.AssertNoError(t, err)

	f, err := res.Stream.Recv()
	mock.AssertNoError(t, err)
	if f.Text != "x" {
		t.Errorf("Text = %q, want x", f.Text)
	}
	if _, err := res.Stream.Recv(); err != io.EOF {
		t.Errorf("Recv at end = %v, want io.EOF", err)
	}
}

func TestStream_AbandonedIsNotCached(t *testing.T) {
	server := mock.NewMockServer()
	defer server.Close()
	server.SetResponse("/chat/completions", mock.MockResponse{
		StreamLines: mock.MockOpenAIStream("a", "b", "c"),
	})

	cache := newMemoryCache()
	res, err := New(Options{}).Run(context.Background(), newChat(t, server.URL(), cache.hooks(), false),
		mock.TestStreamingRequest("Hi"), providers.RequestMeta{})
	mock.AssertNoError(t, err)

	for f, err := range res.Stream.All() {
		mock.AssertNoError(t, err)
		if f.Text == "a" {
			break
		}
	}

	if cache.setCount() != 0 {
		t.Errorf("cache sets = %d, want 0 for abandoned stream", cache.setCount())
	}
	if _, err := res.Stream.Recv(); !errors.Is(err, providers.ErrStreamClosed) {
		t.Errorf("Recv after break = %v, want ErrStreamClosed", err)
	}
}

func TestStream_Truncated(t *testing.T) {
	server := mock.NewMockServer()
	defer server.Close()

	lines := mock.MockOpenAIStream("partial")
	server.SetResponse("/chat/completions", mock.MockResponse{
		StreamLines: lines[:len(lines)-2], // drop [DONE]
	})

	cache := newMemoryCache()
	res, err := New(Options{}).Run(context.Background(), newChat(t, server.URL(), cache.hooks(), false),
		mock.TestStreamingRequest("Hi"), providers.RequestMeta{})
	mock.AssertNoError(t, err)

	_, err = Collect(res.Stream, 1)
	var terr *providers.TransportError
	mock.AssertErrorAs(t, err, &terr)
	if !errors.Is(err, providers.ErrStreamTruncated) {
		t.Errorf("error = %v, want ErrStreamTruncated", err)
	}
	if cache.setCount() != 0 {
		t.Error("truncated stream must not be cached")
	}
}

func TestStream_AnthropicMessageStop(t *testing.T) {
	server := mock.NewMockServer()
	defer server.Close()
	server.SetResponse("/messages", mock.MockResponse{
		StreamLines: mock.MockAnthropicStream("Bon", "jour"),
	})

	cache := newMemoryCache()
	adapter, err := anthropic.New(mock.TestConfig("anthropic", "anthropic", server.URL()), cache.hooks())
	mock.AssertNoError(t, err)

	got, err := New(Options{}).Complete(context.Background(), adapter, mock.TestStreamingRequest("Hi"), providers.RequestMeta{})
	mock.AssertNoError(t, err)
	if len(got) != 1 || got[0] != "Bonjour" {
		t.Errorf("Complete = %v", got)
	}
	if cache.setCount() != 1 {
		t.Errorf("cache sets = %d, want 1", cache.setCount())
	}

	last, _ := server.LastRequest()
	if got := last.Header.Get("x-api-key"); got != "test-key" {
		t.Errorf("x-api-key = %q", got)
	}
}

func TestRun_CacheHit(t *testing.T) {
	server := mock.NewMockServer()
	defer server.Close()
	server.SetResponse("/chat/completions", mock.MockResponse{
		Body: mock.MockOpenAIResponse("gpt-4", "fresh"),
	})

	cache := newMemoryCache()
	adapter := newChat(t, server.URL(), cache.hooks(), false)
	p := New(Options{})

	first, err := p.Run(context.Background(), adapter, mock.TestRequest("Hi"), providers.RequestMeta{UserIdentifier: "u1"})
	mock.AssertNoError(t, err)
	if first.Cached {
		t.Error("first run should miss")
	}

	// RequestMeta is not part of the key.
	second, err := p.Run(context.Background(), adapter, mock.TestRequest("Hi"), providers.RequestMeta{UserIdentifier: "u2"})
	mock.AssertNoError(t, err)
	if !second.Cached {
		t.Error("second run should hit")
	}
	if second.Generations[0] != "fresh" {
		t.Errorf("Generations = %v", second.Generations)
	}
	if server.GetRequestCount() != 1 {
		t.Errorf("requests = %d, want 1", server.GetRequestCount())
	}
}

func TestRun_CacheHitStreamed(t *testing.T) {
	server := mock.NewMockServer()
	defer server.Close()

	cache := newMemoryCache()
	adapter := newChat(t, server.URL(), cache.hooks(), false)

	key, err := providers.CacheKey(adapter, mock.TestStreamingRequest("Hi"))
	mock.AssertNoError(t, err)
	cache.entries[key] = []string{"cached", "", "third"}

	res, err := New(Options{}).Run(context.Background(), adapter, mock.TestStreamingRequest("Hi"), providers.RequestMeta{})
	mock.AssertNoError(t, err)
	if !res.Cached || res.Stream == nil {
		t.Fatalf("expected cached stream, got %+v", res)
	}

	got, err := Collect(res.Stream, 3)
	mock.AssertNoError(t, err)
	if strings.Join(got, "|") != "cached||third" {
		t.Errorf("Collect = %q", got)
	}
	if server.GetRequestCount() != 0 {
		t.Errorf("requests = %d, want 0", server.GetRequestCount())
	}
}

func TestRun_CacheErrorIsMiss(t *testing.T) {
	server := mock.NewMockServer()
	defer server.Close()
	server.SetResponse("/chat/completions", mock.MockResponse{
		Body: mock.MockOpenAIResponse("gpt-4", "ok"),
	})

	cache := newMemoryCache()
	cache.getErr = errors.New("disk full")

	got, err := New(Options{}).Complete(context.Background(), newChat(t, server.URL(), cache.hooks(), false),
		mock.TestRequest("Hi"), providers.RequestMeta{})
	mock.AssertNoError(t, err)
	if got[0] != "ok" {
		t.Errorf("Complete = %v", got)
	}
}

func TestRun_WriteOnlyCache(t *testing.T) {
	server := mock.NewMockServer()
	defer server.Close()
	server.SetResponse("/chat/completions", mock.MockResponse{
		Body: mock.MockOpenAIResponse("gpt-4", "ok"),
	})

	cache := newMemoryCache()
	hooks := cache.hooks()
	hooks.Get = nil
	adapter := newChat(t, server.URL(), hooks, false)
	p := New(Options{})

	for i := 0; i < 2; i++ {
		res, err := p.Run(context.Background(), adapter, mock.TestRequest("Hi"), providers.RequestMeta{})
		mock.AssertNoError(t, err)
		if res.Cached {
			t.Error("write-only cache must never serve hits")
		}
	}
	if server.GetRequestCount() != 2 || cache.setCount() != 2 {
		t.Errorf("requests = %d sets = %d, want 2 and 2", server.GetRequestCount(), cache.setCount())
	}
}

func TestRun_DebugCapture(t *testing.T) {
	server := mock.NewMockServer()
	defer server.Close()
	server.SetResponse("/chat/completions", mock.MockResponse{
		StreamLines: mock.MockOpenAIStream("a"),
	})

	rec := &captureRecorder{err: errors.New("recorder down")}
	p := New(Options{Recorder: rec})

	got, err := p.Complete(context.Background(), newChat(t, server.URL(), providers.CacheHooks{}, true),
		mock.TestStreamingRequest("Hi"), providers.RequestMeta{})
	mock.AssertNoError(t, err)
	if got[0] != "a" {
		t.Errorf("Complete = %v", got)
	}

	captures := rec.all()
	if len(captures) != 1 {
		t.Fatalf("captures = %d, want 1", len(captures))
	}
	c := captures[0]
	if !strings.Contains(c.RequestBody, `"stream":true`) {
		t.Errorf("RequestBody = %s", c.RequestBody)
	}
	if c.StatusCode != http.StatusOK {
		t.Errorf("StatusCode = %d", c.StatusCode)
	}
	if n := len(c.Payloads); n != 3 {
		t.Errorf("payloads = %d, want 3 raw lines: %v", n, c.Payloads)
	}
	if c.Payloads[len(c.Payloads)-1] != "data: [DONE]" {
		t.Errorf("last payload = %q", c.Payloads[len(c.Payloads)-1])
	}
}

func TestRun_DebugDisabled(t *testing.T) {
	server := mock.NewMockServer()
	defer server.Close()
	server.SetResponse("/chat/completions", mock.MockResponse{
		Body: mock.MockOpenAIResponse("gpt-4", "ok"),
	})

	rec := &captureRecorder{}
	_, err := New(Options{Recorder: rec}).Run(context.Background(), newChat(t, server.URL(), providers.CacheHooks{}, false),
		mock.TestRequest("Hi"), providers.RequestMeta{})
	mock.AssertNoError(t, err)
	if len(rec.all()) != 0 {
		t.Error("expected no capture without debug")
	}
}

func TestRun_ContextCancelled(t *testing.T) {
	server := mock.NewMockServer()
	defer server.Close()
	server.SetResponse("/chat/completions", mock.MockResponse{
		Body:  mock.MockOpenAIResponse("gpt-4", "late"),
		Delay: 2 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := New(Options{}).Run(ctx, newChat(t, server.URL(), providers.CacheHooks{}, false),
		mock.TestRequest("Hi"), providers.RequestMeta{})
	var terr *providers.TransportError
	mock.AssertErrorAs(t, err, &terr)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("error = %v, want deadline exceeded", err)
	}
}

func TestRun_Metrics(t *testing.T) {
	server := mock.NewMockServer()
	defer server.Close()
	server.SetResponse("/chat/completions", mock.MockResponse{
		StreamLines: mock.MockOpenAIStream("a", "b"),
	})

	registry := prometheus.NewRegistry()
	collector := metrics.NewCollector(&config.MetricsConfig{Enabled: true}, registry)
	p := New(Options{Metrics: collector})

	_, err := p.Complete(context.Background(), newChat(t, server.URL(), providers.CacheHooks{}, false),
		mock.TestStreamingRequest("Hi"), providers.RequestMeta{})
	mock.AssertNoError(t, err)

	n, err := testutil.GatherAndCount(registry,
		"conduit_pipeline_runs_total",
		"conduit_pipeline_stream_fragments_total",
		"conduit_pipeline_provider_requests_total",
	)
	mock.AssertNoError(t, err)
	if n != 3 {
		t.Errorf("series = %d, want 3", n)
	}
}
