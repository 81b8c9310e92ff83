package providers

import (
	"slices"
	"time"
)

// Message represents a single message in a conversation.
// It is provider-agnostic and will be transformed to provider-specific formats.
type Message struct {
	// Role identifies the message sender (system, user, assistant)
	Role string `json:"role"`

	// Content is the message text content
	Content string `json:"content"`
}

// RequestOptions is the normalized request handed to the pipeline.
// It is constructed by the caller per call and never mutated by the pipeline.
type RequestOptions struct {
	// ModelID is the abstract model identifier. Adapters resolve the concrete
	// provider model through Adapter.ModelID and may ignore this value.
	ModelID string `json:"modelId,omitempty"`

	// Prompt is optional raw text. When present it is sent as the trailing user turn.
	Prompt string `json:"prompt,omitempty"`

	// Messages is the conversation history in conversational order.
	Messages []Message `json:"messages,omitempty"`

	// StopSequences halt generation early. Empty means no early stop.
	StopSequences []string `json:"stop_sequences,omitempty"`

	// NumGenerations is the number of parallel generations to request.
	// Zero is treated as 1.
	NumGenerations int `json:"num_generations,omitempty"`

	// ModelProvider is the tag of the adapter that owns this request.
	// Empty means the adapter's own tag.
	ModelProvider string `json:"modelProvider,omitempty"`

	// Stream asks for an incremental result when the adapter supports it.
	Stream bool `json:"-"`

	// Params holds passthrough generation parameters (temperature, max_tokens, ...)
	// forwarded to the provider unchanged unless the adapter intercepts them.
	Params map[string]any `json:"params,omitempty"`
}

// Generations returns the effective number of generations requested.
func (r *RequestOptions) Generations() int {
	if r.NumGenerations == 0 {
		return 1
	}
	return r.NumGenerations
}

// ConversationWithPrompt returns a copy of Messages with Prompt appended as a
// trailing user turn. The receiver's slice is never modified.
func (r *RequestOptions) ConversationWithPrompt() []Message {
	msgs := slices.Clone(r.Messages)
	if r.Prompt != "" {
		msgs = append(msgs, Message{Role: RoleUser, Content: r.Prompt})
	}
	return msgs
}

// RequestMeta is per-call metadata that is not part of the request identity.
type RequestMeta struct {
	// UserIdentifier is forwarded to the provider for abuse tracing when set.
	UserIdentifier string

	// Timestamp is when the caller issued the request.
	Timestamp time.Time
}

// WireRequest is the provider-specific JSON body before the resolved model id
// (and stream flag) are embedded by the pipeline.
type WireRequest map[string]any

// Fragment is one incremental piece of text for a generation slot.
type Fragment struct {
	// Index is the generation slot this text belongs to
	Index int

	// Text is the appended text
	Text string
}

// Quality selects the model tier an adapter resolves to.
type Quality string

// Quality tiers
const (
	QualityLow  Quality = "low"
	QualityHigh Quality = "high"
)

// Message role constants
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ValidRole reports whether role is one of the supported conversation roles.
func ValidRole(role string) bool {
	switch role {
	case RoleSystem, RoleUser, RoleAssistant:
		return true
	}
	return false
}

// ProviderConfig contains configuration for a single adapter instance.
// This is a subset of config.ProviderConfig with only the fields needed by adapters.
type ProviderConfig struct {
	// Name is the provider tag (e.g., "openai", "local")
	Name string

	// Type is the adapter type (openai, openai-completion, anthropic, generic)
	Type string

	// BaseURL is the API endpoint base URL (also used as a proxy override)
	BaseURL string

	// APIKey is the authentication key
	APIKey string

	// Quality is the model tier
	Quality Quality

	// Model overrides the resolved model identifier when set
	Model string

	// Debug enables raw request/response capture
	Debug bool
}
