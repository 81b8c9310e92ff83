// Package openai implements the OpenAI provider adapters.
//
// Two adapters are provided:
//
//   - ChatAdapter: /chat/completions, gpt-3.5-turbo for the low quality tier
//     and gpt-4 otherwise
//   - CompletionAdapter: /completions, text-curie-001 for the low quality tier
//     and text-davinci-003 otherwise
//
// Both stream Server-Sent Events terminated by a "data: [DONE]" line.
//
// # Basic Usage
//
//	adapter, err := openai.NewChat(providers.ProviderConfig{
//	    Name:    "openai",
//	    APIKey:  os.Getenv("OPENAI_API_KEY"),
//	    Quality: providers.QualityLow,
//	}, providers.CacheHooks{})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	res, err := pipeline.New(pipeline.Options{}).Run(ctx, adapter, &providers.RequestOptions{
//	    Prompt: "Hello!",
//	    Stream: true,
//	}, providers.RequestMeta{})
//
// # Response Envelopes
//
// DecodeChoices detects the envelope of each choice by field presence:
// "text" for completions, "delta" for chat stream chunks and "message" for
// chat batch responses. A choice without content decodes to "" so every
// generation slot is always represented. A payload without "choices" is a
// *providers.DecodeError.
package openai
