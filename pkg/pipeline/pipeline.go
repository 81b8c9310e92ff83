package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"mercator-hq/conduit/pkg/providers"
	"mercator-hq/conduit/pkg/replay"
	"mercator-hq/conduit/pkg/telemetry/logging"
	"mercator-hq/conduit/pkg/telemetry/metrics"
	"mercator-hq/conduit/pkg/telemetry/tracing"
)

// Run modes and outcomes used as metric labels.
const (
	modeBatch  = "batch"
	modeStream = "stream"

	statusSuccess   = "success"
	statusCacheHit  = "cache_hit"
	statusError     = "error"
	statusAbandoned = "abandoned"
)

// spanName is the name of the span wrapping one Run.
const spanName = "conduit.run"

// Options configures a Pipeline. Every field is optional.
type Options struct {
	// HTTPClient sends provider requests. Defaults to a pooled client
	// without a timeout.
	HTTPClient *http.Client

	// Logger receives pipeline logs. Defaults to slog.Default().
	Logger *slog.Logger

	// Metrics records run, provider and stream metrics. Nil disables them.
	Metrics *metrics.Collector

	// Tracer wraps each run in a span. Nil disables tracing.
	Tracer *tracing.Tracer

	// Recorder receives raw traffic for adapters configured with Debug.
	// Nil disables capture.
	Recorder replay.Recorder

	// MaxCapturePayload truncates captured payloads (0 = no limit).
	MaxCapturePayload int
}

// Pipeline drives an Adapter end to end: validation, cache lookup, dispatch,
// decoding and cache store. It holds no per-request state and is safe for
// concurrent use.
type Pipeline struct {
	client     *http.Client
	logger     *slog.Logger
	metrics    *metrics.Collector
	tracer     *tracing.Tracer
	recorder   replay.Recorder
	maxCapture int
}

// New creates a pipeline.
func New(opts Options) *Pipeline {
	if opts.HTTPClient == nil {
		opts.HTTPClient = providers.NewHTTPClient(providers.TransportConfig{})
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Pipeline{
		client:     opts.HTTPClient,
		logger:     opts.Logger.With("component", "pipeline"),
		metrics:    opts.Metrics,
		tracer:     opts.Tracer,
		recorder:   opts.Recorder,
		maxCapture: opts.MaxCapturePayload,
	}
}

// Result is the normalized outcome of a run. Exactly one of Generations and
// Stream is set.
type Result struct {
	// Generations holds one text per generation slot.
	Generations []string

	// Stream yields fragments incrementally. The caller must drain or Close it.
	Stream *Stream

	// Cached reports that the result was served from the adapter's cache.
	Cached bool
}

// Run executes one request through adapter. It sends at most one HTTP
// request and never retries.
//
// A request whose ModelProvider names a different adapter is a programming
// error and panics.
func (p *Pipeline) Run(ctx context.Context, adapter providers.Adapter, opts *providers.RequestOptions, meta providers.RequestMeta) (*Result, error) {
	cfg := adapter.Config()
	if opts != nil && opts.ModelProvider != "" && opts.ModelProvider != cfg.ModelProvider {
		panic(fmt.Sprintf("pipeline: request for provider %q handed to adapter %q",
			opts.ModelProvider, cfg.ModelProvider))
	}

	r := &run{
		p:         p,
		adapter:   adapter,
		opts:      opts,
		provider:  cfg.ModelProvider,
		streaming: opts != nil && cfg.IsStreamable && opts.Stream,
		start:     time.Now(),
	}
	if opts != nil {
		r.model = adapter.ModelID(opts)
	}

	ctx = logging.WithProvider(ctx, r.provider)
	ctx, r.span = p.tracer.Start(ctx, spanName, trace.WithSpanKind(trace.SpanKindClient))
	r.ctx = ctx
	tracing.SetProviderAttributes(r.span, r.provider, r.model)
	r.span.SetAttributes(attribute.Bool(tracing.AttrStream, r.streaming))

	if err := validate(adapter, opts); err != nil {
		r.finish(err, 0)
		return nil, err
	}
	r.span.SetAttributes(attribute.Int(tracing.AttrGenerations, opts.Generations()))

	if res, ok := r.lookup(cfg.Cache); ok {
		return res, nil
	}

	return r.dispatch(meta)
}

// Complete runs the request and drains the result into one text per
// generation slot, whether or not it was streamed.
func (p *Pipeline) Complete(ctx context.Context, adapter providers.Adapter, opts *providers.RequestOptions, meta providers.RequestMeta) ([]string, error) {
	res, err := p.Run(ctx, adapter, opts, meta)
	if err != nil {
		return nil, err
	}
	if res.Stream == nil {
		return res.Generations, nil
	}
	return Collect(res.Stream, opts.Generations())
}

// run is the state of a single Run call.
type run struct {
	p         *Pipeline
	ctx       context.Context
	adapter   providers.Adapter
	opts      *providers.RequestOptions
	provider  string
	model     string
	streaming bool
	start     time.Time
	span      trace.Span

	key     string
	cached  bool
	capture *replay.Capture
}

func (r *run) mode() string {
	if r.streaming {
		return modeStream
	}
	return modeBatch
}

// lookup consults the cache. Backend failures are logged and treated as a
// miss.
func (r *run) lookup(hooks providers.CacheHooks) (*Result, bool) {
	mode := string(hooks.Mode())
	if hooks.Get == nil && hooks.Set == nil {
		tracing.SetCacheAttributes(r.span, false, mode)
		return nil, false
	}

	key, err := providers.CacheKey(r.adapter, r.opts)
	if err != nil {
		r.p.logger.WarnContext(r.ctx, "cache key derivation failed", "error", err)
		tracing.SetCacheAttributes(r.span, false, mode)
		return nil, false
	}
	r.key = key

	if hooks.Get == nil {
		tracing.SetCacheAttributes(r.span, false, mode)
		return nil, false
	}

	generations, ok, err := hooks.Get(r.ctx, key)
	if err != nil {
		r.p.logger.WarnContext(r.ctx, "cache lookup failed", "error", err)
		ok = false
	}
	tracing.SetCacheAttributes(r.span, ok, mode)
	if !ok {
		return nil, false
	}

	r.cached = true
	r.p.logger.DebugContext(r.ctx, "serving cached result",
		"model", r.model,
		"generations", len(generations),
	)

	if r.streaming {
		return &Result{Stream: newReplayStream(generations, r.finish), Cached: true}, true
	}
	r.finish(nil, 0)
	return &Result{Generations: generations, Cached: true}, true
}

// dispatch sends the wire request and decodes the response.
func (r *run) dispatch(meta providers.RequestMeta) (*Result, error) {
	cfg := r.adapter.Config()

	wire, err := r.adapter.TransformForRequest(r.opts, meta)
	if err != nil {
		r.finish(err, 0)
		return nil, err
	}
	wire["model"] = r.model
	if r.streaming {
		wire["stream"] = true
	} else {
		delete(wire, "stream")
	}

	body, err := json.Marshal(wire)
	if err != nil {
		err = &providers.ValidationError{Field: "params", Message: err.Error()}
		r.finish(err, 0)
		return nil, err
	}

	url := strings.TrimRight(cfg.BaseURL, "/") + r.adapter.Path(r.opts)
	if cfg.Debug && r.p.recorder != nil {
		r.capture = replay.NewCapture(r.provider, r.model, url, r.streaming, body, r.p.maxCapture)
	}

	req, err := http.NewRequestWithContext(r.ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		err = &providers.TransportError{Provider: r.provider, Cause: err}
		r.finish(err, 0)
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if r.streaming {
		req.Header.Set("Accept", "text/event-stream")
	} else {
		req.Header.Set("Accept", "application/json")
	}
	if hs, ok := r.adapter.(providers.HeaderSetter); ok {
		hs.SetHeaders(req.Header)
	}
	tracing.Inject(r.ctx, req.Header)

	r.p.logger.DebugContext(r.ctx, "sending request to provider",
		"model", r.model,
		"url", url,
		"stream", r.streaming,
	)

	sent := time.Now()
	resp, err := r.p.client.Do(req)
	if err != nil {
		err = &providers.TransportError{Provider: r.provider, Cause: err}
		r.finish(err, 0)
		return nil, err
	}
	r.p.metrics.RecordProviderRequest(r.provider, r.model, time.Since(sent))
	r.span.SetAttributes(attribute.Int(tracing.AttrHTTPStatus, resp.StatusCode))
	if r.capture != nil {
		r.capture.StatusCode = resp.StatusCode
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		perr := providers.NewProviderError(r.provider, resp)
		resp.Body.Close()
		if r.capture != nil {
			r.capture.AddPayload([]byte(perr.Body), r.p.maxCapture)
		}
		r.finish(perr, 0)
		return nil, perr
	}

	if r.streaming {
		return &Result{Stream: r.newHTTPStream(resp.Body)}, nil
	}

	data, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		err = &providers.TransportError{Provider: r.provider, Cause: err}
		r.finish(err, 0)
		return nil, err
	}
	if r.capture != nil {
		r.capture.AddPayload(data, r.p.maxCapture)
	}

	generations, err := r.adapter.TransformResponse(data)
	if err == nil && len(generations) == 0 {
		err = &providers.DecodeError{
			Provider: r.provider,
			Raw:      string(data),
			Cause:    errors.New("response carries no generations"),
		}
	}
	if err != nil {
		r.finish(err, 0)
		return nil, err
	}

	r.store(generations)
	r.finish(nil, 0)
	return &Result{Generations: generations}, nil
}

// store writes generations to the cache. Failures are logged only.
func (r *run) store(generations []string) {
	set := r.adapter.Config().Cache.Set
	if set == nil || r.key == "" {
		return
	}
	if err := set(r.ctx, r.key, generations); err != nil {
		r.p.logger.WarnContext(r.ctx, "cache store failed", "error", err)
	}
}

// finish records the outcome of the run exactly once: metrics, span status,
// debug capture.
func (r *run) finish(err error, fragments int) {
	status := statusSuccess
	switch {
	case errors.Is(err, providers.ErrStreamClosed):
		status = statusAbandoned
		tracing.AddEvent(r.span, "stream abandoned", attribute.Int(tracing.AttrFragments, fragments))
	case err != nil:
		status = statusError
		errType := classify(err)
		if providerAttributable(errType) {
			r.p.metrics.RecordProviderError(r.provider, errType)
		}
		tracing.SetErrorAttributes(r.span, err, errType)
		r.p.logger.WarnContext(r.ctx, "run failed",
			"model", r.model,
			"error_type", errType,
			"error", err,
		)
	case r.cached:
		status = statusCacheHit
		tracing.SetStatus(r.span, nil)
	default:
		tracing.SetStatus(r.span, nil)
	}

	if r.streaming {
		r.span.SetAttributes(attribute.Int(tracing.AttrFragments, fragments))
		r.p.metrics.RecordFragments(r.provider, fragments)
	}
	r.p.metrics.RecordRun(r.provider, r.model, r.mode(), status, time.Since(r.start))

	if r.capture != nil {
		r.capture.Finish(err)
		if rerr := r.p.recorder.Record(context.WithoutCancel(r.ctx), r.capture); rerr != nil {
			r.p.logger.WarnContext(r.ctx, "failed to record capture",
				"capture_id", r.capture.ID,
				"error", rerr,
			)
		}
	}

	r.span.End()
}
