// Package anthropic implements the Anthropic Messages API adapter.
//
// Differences from the OpenAI-style adapters:
//
//   - system messages are hoisted into the top-level "system" field
//   - stop sequences are sent as "stop_sequences"
//   - max_tokens is required and defaults to DefaultMaxTokens
//   - only one generation per request is supported
//   - the stream has no sentinel line and ends with a message_stop event,
//     reported through EndOfStream
//
// # Basic Usage
//
//	adapter, err := anthropic.New(providers.ProviderConfig{
//	    Name:    "anthropic",
//	    APIKey:  os.Getenv("ANTHROPIC_API_KEY"),
//	    Quality: providers.QualityHigh,
//	}, providers.CacheHooks{})
package anthropic
