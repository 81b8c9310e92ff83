package providers

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// identity is the canonical form of the request fields that make up a cache key.
// encoding/json emits map keys in sorted order, so Params hash stably.
type identity struct {
	Provider       string         `json:"provider"`
	Model          string         `json:"model"`
	Prompt         string         `json:"prompt"`
	Messages       []Message      `json:"messages"`
	Stop           []string       `json:"stop"`
	NumGenerations int            `json:"n"`
	Params         map[string]any `json:"params"`
}

// CacheKey derives the cache key for a request from its identity fields:
// the resolved model, provider, prompt, messages, stop
// sequences, generation count and passthrough parameters. RequestMeta never
// contributes.
func CacheKey(a Adapter, req *RequestOptions) (string, error) {
	id := identity{
		Provider:       a.Config().ModelProvider,
		Model:          a.ModelID(req),
		Prompt:         req.Prompt,
		Messages:       req.Messages,
		Stop:           req.StopSequences,
		NumGenerations: req.Generations(),
		Params:         req.Params,
	}
	if id.Messages == nil {
		id.Messages = []Message{}
	}
	if len(id.Stop) == 0 {
		id.Stop = nil
	}

	data, err := json.Marshal(id)
	if err != nil {
		return "", fmt.Errorf("failed to encode cache identity: %w", err)
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}
