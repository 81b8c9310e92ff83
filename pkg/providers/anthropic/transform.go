package anthropic

import (
	"encoding/json"
	"errors"
	"maps"
	"strings"

	"mercator-hq/conduit/pkg/providers"
)

// Anthropic API request/response types

// AnthropicMessage represents a message in Anthropic format.
type AnthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ContentBlock represents a content block in Anthropic format.
type ContentBlock struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}

// ContentBlockDelta represents incremental content in Anthropic format.
type ContentBlockDelta struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}

// AnthropicEvent covers both a full messages response and every event of
// Anthropic's SSE stream. Type discriminates.
type AnthropicEvent struct {
	Type    string             `json:"type"`
	Content []ContentBlock     `json:"content,omitempty"`
	Delta   *ContentBlockDelta `json:"delta,omitempty"`
	Error   *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// Anthropic event types
const (
	EventMessage           = "message"
	EventMessageStart      = "message_start"
	EventContentBlockStart = "content_block_start"
	EventContentBlockDelta = "content_block_delta"
	EventContentBlockStop  = "content_block_stop"
	EventMessageDelta      = "message_delta"
	EventMessageStop       = "message_stop"
	EventPing              = "ping"
	EventError             = "error"
)

// internalFields never reach the wire, even when present in Params.
var internalFields = []string{
	"modelId",
	"stop_sequences",
	"num_generations",
	"modelProvider",
	"prompt",
	"n",
	"stop",
	"user",
}

// Transformation functions

// transformRequest maps a normalized request to the Messages API schema.
// System messages are hoisted into the system field.
func transformRequest(req *providers.RequestOptions, meta providers.RequestMeta) (providers.WireRequest, error) {
	if req.Generations() > 1 {
		return nil, &providers.ValidationError{
			Field:   "num_generations",
			Message: "anthropic returns a single generation per request",
		}
	}

	wire := providers.WireRequest{}
	maps.Copy(wire, req.Params)
	for _, f := range internalFields {
		delete(wire, f)
	}

	// Set default max_tokens if not provided (required by Anthropic)
	if _, ok := wire["max_tokens"]; !ok {
		wire["max_tokens"] = DefaultMaxTokens
	}

	var system []string
	msgs := make([]AnthropicMessage, 0, len(req.Messages)+1)
	for _, m := range req.ConversationWithPrompt() {
		if m.Role == providers.RoleSystem {
			system = append(system, m.Content)
			continue
		}
		msgs = append(msgs, AnthropicMessage{Role: m.Role, Content: m.Content})
	}
	wire["messages"] = msgs
	if len(system) > 0 {
		wire["system"] = strings.Join(system, "\n\n")
	}

	if len(req.StopSequences) > 0 {
		wire["stop_sequences"] = req.StopSequences
	}

	if meta.UserIdentifier != "" {
		wire["metadata"] = map[string]string{"user_id": meta.UserIdentifier}
	}

	return wire, nil
}

// transformResponse maps a full response or one stream event to text.
// Events that carry no text yield no fragments.
func transformResponse(provider string, payload []byte) ([]string, error) {
	var ev AnthropicEvent
	if err := json.Unmarshal(payload, &ev); err != nil {
		return nil, &providers.DecodeError{Provider: provider, Raw: string(payload), Cause: err}
	}

	switch ev.Type {
	case EventMessage:
		var b strings.Builder
		for _, block := range ev.Content {
			if block.Type == "text" {
				b.WriteString(block.Text)
			}
		}
		return []string{b.String()}, nil

	case EventContentBlockDelta:
		if ev.Delta == nil {
			return []string{""}, nil
		}
		return []string{ev.Delta.Text}, nil

	case EventMessageStart, EventContentBlockStart, EventContentBlockStop,
		EventMessageDelta, EventMessageStop, EventPing:
		return nil, nil

	case EventError:
		msg := "stream error event"
		if ev.Error != nil {
			msg = ev.Error.Type + ": " + ev.Error.Message
		}
		return nil, &providers.DecodeError{Provider: provider, Raw: string(payload), Cause: errors.New(msg)}

	default:
		return nil, &providers.DecodeError{
			Provider: provider,
			Raw:      string(payload),
			Cause:    errors.New("unrecognised response type " + `"` + ev.Type + `"`),
		}
	}
}

// isMessageStop reports whether a stream payload is the terminal event.
func isMessageStop(payload []byte) bool {
	var ev struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(payload, &ev); err != nil {
		return false
	}
	return ev.Type == EventMessageStop
}
