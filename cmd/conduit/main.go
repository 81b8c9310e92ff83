// Conduit sends prompts to LLM providers through one normalized pipeline.
//
// It drives OpenAI (chat and legacy completions), Anthropic and any
// OpenAI-compatible local server through the same request contract, with
// optional streaming, response caching and raw traffic capture.
//
// Usage:
//
//	# Ask the default provider
//	conduit complete "Summarize RFC 2616 in one line"
//
//	# Stream two generations from Anthropic
//	conduit complete --provider anthropic --stream --n 1 "Write a haiku"
//
//	# Configure providers
//	conduit config set-key openai sk-...
//	conduit config set-default local
//
//	# Inspect captured traffic of providers with debug: true
//	conduit replay list
//
//	# Prune caches and captures on their schedules
//	conduit maintain
package main

func main() {
	Execute()
}
