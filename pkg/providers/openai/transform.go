package openai

import (
	"encoding/json"
	"errors"
	"fmt"
	"maps"

	"mercator-hq/conduit/pkg/providers"
)

// OpenAI API request/response types

// OpenAIMessage represents a message in OpenAI format.
type OpenAIMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// OpenAIResponse is the envelope shared by chat responses, chat stream chunks
// and legacy completion responses. Each choice carries exactly one of Text,
// Delta or Message.
type OpenAIResponse struct {
	ID      string          `json:"id,omitempty"`
	Object  string          `json:"object,omitempty"`
	Model   string          `json:"model,omitempty"`
	Choices *[]OpenAIChoice `json:"choices"`
}

// OpenAIChoice represents one generation slot in a response or chunk.
type OpenAIChoice struct {
	Index        *int           `json:"index,omitempty"`
	Text         *string        `json:"text,omitempty"`
	Delta        *OpenAIContent `json:"delta,omitempty"`
	Message      *OpenAIContent `json:"message,omitempty"`
	FinishReason *string        `json:"finish_reason,omitempty"`
}

// OpenAIContent is the role/content pair found in delta and message objects.
type OpenAIContent struct {
	Role    string  `json:"role,omitempty"`
	Content *string `json:"content,omitempty"`
}

// internalFields never reach the wire, even when present in Params.
var internalFields = []string{
	"modelId",
	"stop_sequences",
	"num_generations",
	"modelProvider",
	"prompt",
}

// Transformation functions

// baseWireRequest copies the passthrough parameters, drops the internal fields
// and applies the normalized stop, n and user fields.
func baseWireRequest(req *providers.RequestOptions, meta providers.RequestMeta) providers.WireRequest {
	wire := providers.WireRequest{}
	maps.Copy(wire, req.Params)
	for _, f := range internalFields {
		delete(wire, f)
	}

	// An empty-but-present stop field is rejected by some providers.
	if len(req.StopSequences) > 0 {
		wire["stop"] = req.StopSequences
	} else {
		delete(wire, "stop")
	}

	wire["n"] = req.Generations()

	if meta.UserIdentifier != "" {
		wire["user"] = meta.UserIdentifier
	} else {
		delete(wire, "user")
	}

	return wire
}

// transformMessages maps normalized messages (prompt included) to OpenAI format.
func transformMessages(req *providers.RequestOptions) []OpenAIMessage {
	msgs := req.ConversationWithPrompt()
	out := make([]OpenAIMessage, len(msgs))
	for i, m := range msgs {
		out[i] = OpenAIMessage{Role: m.Role, Content: m.Content}
	}
	return out
}

// MaxChoices bounds the choice index accepted from a provider. OpenAI caps n
// at 128.
const MaxChoices = 128

// DecodeChoices maps one OpenAI-style payload into per-slot text. It detects
// the envelope by field presence: text (completion), then delta (chat
// stream), then message (chat batch). Absent content becomes "".
//
// Multiple choices are returned in payload order. A single choice is placed
// at its index, which routes stream deltas to their generation slot. An
// empty choice list yields no slots; usage-only stream chunks look like that.
func DecodeChoices(provider string, payload []byte) ([]string, error) {
	var resp OpenAIResponse
	if err := json.Unmarshal(payload, &resp); err != nil {
		return nil, &providers.DecodeError{
			Provider: provider,
			Raw:      string(payload),
			Cause:    err,
		}
	}
	if resp.Choices == nil {
		return nil, &providers.DecodeError{
			Provider: provider,
			Raw:      string(payload),
			Cause:    errors.New("response has no choices"),
		}
	}

	choices := *resp.Choices
	if len(choices) != 1 {
		out := make([]string, len(choices))
		for i, c := range choices {
			out[i] = choiceText(c)
		}
		return out, nil
	}

	// A lone choice is a stream delta for the slot named by its index.
	slot := 0
	if idx := choices[0].Index; idx != nil {
		if *idx < 0 || *idx >= MaxChoices {
			return nil, &providers.DecodeError{
				Provider: provider,
				Raw:      string(payload),
				Cause:    fmt.Errorf("choice index %d out of range [0, %d)", *idx, MaxChoices),
			}
		}
		slot = *idx
	}
	out := make([]string, slot+1)
	out[slot] = choiceText(choices[0])
	return out, nil
}

// choiceText returns the text carried by a choice, or "" when it has none.
// The first chat stream chunk announces only the role.
func choiceText(c OpenAIChoice) string {
	switch {
	case c.Text != nil:
		return *c.Text
	case c.Delta != nil:
		if c.Delta.Content != nil {
			return *c.Delta.Content
		}
		return ""
	case c.Message != nil:
		if c.Message.Content != nil {
			return *c.Message.Content
		}
		return ""
	default:
		return ""
	}
}
