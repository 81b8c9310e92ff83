// Package generic implements a generic OpenAI-compatible adapter.
//
// It targets any server that implements the OpenAI chat completions format:
//
//   - Ollama (http://localhost:11434/v1)
//   - LM Studio (http://localhost:1234/v1)
//   - vLLM (http://localhost:8000/v1)
//   - LocalAI (http://localhost:8080/v1)
//
// # Basic Usage
//
//	adapter, err := generic.New(providers.ProviderConfig{
//	    Name:    "local",
//	    BaseURL: "http://localhost:11434/v1",
//	    Model:   "llama3",
//	    // API key is optional for local providers
//	}, providers.CacheHooks{})
//
// When no model is configured the request's ModelID is sent as-is. A request
// that resolves to no model at all fails validation in the pipeline.
package generic
