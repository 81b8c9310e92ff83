package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"

	"mercator-hq/conduit/pkg/cache"
	"mercator-hq/conduit/pkg/config"
	"mercator-hq/conduit/pkg/modelfactory"
	"mercator-hq/conduit/pkg/pipeline"
	"mercator-hq/conduit/pkg/providers"
	"mercator-hq/conduit/pkg/replay"
	"mercator-hq/conduit/pkg/secrets"
	"mercator-hq/conduit/pkg/telemetry/metrics"
	"mercator-hq/conduit/pkg/telemetry/tracing"
)

// app holds everything a command needs to run requests.
type app struct {
	cfg      *config.Config
	metrics  *metrics.Collector
	tracer   *tracing.Tracer
	store    cache.Store
	recorder replay.Recorder
	pipeline *pipeline.Pipeline
	adapters *modelfactory.Manager

	closers []func() error
}

// newApp wires the pipeline from the loaded configuration.
func newApp() (*app, error) {
	cfg := configs.Config()
	a := &app{cfg: cfg}

	if cfg.Telemetry.Metrics.Enabled {
		a.metrics = metrics.NewCollector(&cfg.Telemetry.Metrics, prometheus.NewRegistry())
	}

	tracer, err := tracing.New(&cfg.Telemetry.Tracing, Version)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize tracing: %w", err)
	}
	a.tracer = tracer

	var hooks providers.CacheHooks
	if cfg.Cache.Enabled {
		store, err := cache.Open(cfg.Cache)
		if err != nil {
			a.close(context.Background())
			return nil, fmt.Errorf("failed to open cache: %w", err)
		}
		a.store = store
		a.closers = append(a.closers, store.Close)
		hooks = cache.Hooks(store, cfg.Cache.Mode, a.metrics)
	}

	recorder, closeRecorder, err := replay.Open(cfg.Replay, slog.Default())
	if err != nil {
		a.close(context.Background())
		return nil, fmt.Errorf("failed to open replay recorder: %w", err)
	}
	a.recorder = recorder
	a.closers = append(a.closers, closeRecorder)

	a.pipeline = pipeline.New(pipeline.Options{
		HTTPClient: providers.NewHTTPClient(providers.TransportConfig{
			MaxIdleConns:        cfg.Transport.MaxIdleConns,
			MaxIdleConnsPerHost: cfg.Transport.MaxIdleConnsPerHost,
			IdleConnTimeout:     cfg.Transport.IdleConnTimeout,
		}),
		Logger:            slog.Default(),
		Metrics:           a.metrics,
		Tracer:            a.tracer,
		Recorder:          recorder,
		MaxCapturePayload: cfg.Replay.MaxPayloadBytes,
	})
	a.adapters = modelfactory.NewManager(configs, hooks)

	resolver, err := secrets.Open(cfg.Secrets)
	if err != nil {
		a.close(context.Background())
		return nil, fmt.Errorf("failed to open secrets: %w", err)
	}
	a.closers = append(a.closers, resolver.Close)
	a.adapters.UseSecrets(resolver)

	return a, nil
}

// close flushes telemetry and releases stores. Errors are logged and joined.
func (a *app) close(ctx context.Context) error {
	var errs []error

	if err := writeTextfile(a.metrics); err != nil {
		errs = append(errs, err)
	}
	if err := a.tracer.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("failed to flush traces: %w", err))
	}
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}

	err := errors.Join(errs...)
	if err != nil {
		slog.Warn("shutdown incomplete", "error", err)
	}
	return err
}
