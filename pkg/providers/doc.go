// Package providers defines the normalized request/response contract shared by
// every LLM provider adapter.
//
// # Overview
//
// Heterogeneous LLM HTTP APIs (completion-style and chat-style, streaming and
// batch, different response envelopes) are covered by one Adapter interface.
// The pipeline package drives an Adapter end-to-end; this package holds only
// the contract, the normalized types and the error taxonomy.
//
// # Architecture
//
//  1. RequestOptions / RequestMeta - the normalized request and per-call metadata
//  2. Adapter - model resolution, path, request and response transforms
//  3. ModelConfig - static facts (base URL, streamability, sentinel, cache hooks)
//  4. Adapter implementations - openai, anthropic and generic subpackages
//
// # Basic Usage
//
//	adapter, err := openai.NewChat(providers.ProviderConfig{
//	    Name:    "openai",
//	    BaseURL: "https://api.openai.com/v1",
//	    APIKey:  os.Getenv("OPENAI_API_KEY"),
//	    Quality: providers.QualityHigh,
//	}, providers.CacheHooks{})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	req := &providers.RequestOptions{
//	    Messages: []providers.Message{
//	        {Role: providers.RoleSystem, Content: "Be brief."},
//	    },
//	    Prompt: "Hello!",
//	}
//
//	wire, err := adapter.TransformForRequest(req, providers.RequestMeta{})
//
// # Error Handling
//
// Four error classes surface to callers and are matched with errors.As:
//
//   - ValidationError: malformed RequestOptions
//   - TransportError: network failure, including a stream that dropped before
//     its end-of-stream marker
//   - ProviderError: non-2xx HTTP status, with the raw body
//   - DecodeError: a response shape the adapter cannot interpret
//
// None are retried by this module. ProviderError carries the Retry-After
// hint so callers can implement their own policy.
//
// # Caching
//
// CacheHooks carries optional get/set functions. Either may be nil; partial
// wiring makes the cache read-only or write-only and is logged when the
// adapter is constructed. Keys come from CacheKey and never include
// RequestMeta.
package providers
