package replay

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/google/uuid"
)

// Capture is one provider exchange as it went over the wire: the outbound
// request body and every raw inbound payload before any transform.
type Capture struct {
	ID       string `json:"id"`
	Provider string `json:"provider"`
	Model    string `json:"model"`
	URL      string `json:"url"`
	Stream   bool   `json:"stream"`

	// RequestBody is the JSON sent to the provider.
	RequestBody string `json:"request_body"`

	// RequestHash is the SHA-256 of the full request body.
	RequestHash string `json:"request_hash"`

	// StatusCode is the HTTP status, 0 when no response was received.
	StatusCode int `json:"status_code"`

	// Payloads holds the batch body, or every raw stream line in order.
	Payloads []string `json:"payloads"`

	// Error is the error the run ended with, if any.
	Error string `json:"error,omitempty"`

	// Truncated reports that a payload was cut to the size limit.
	Truncated bool `json:"truncated,omitempty"`

	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
}

// NewCapture starts a capture for an outbound request. The body is hashed
// before it is truncated to maxBytes (0 = no limit).
func NewCapture(provider, model, url string, stream bool, body []byte, maxBytes int) *Capture {
	sum := sha256.Sum256(body)
	c := &Capture{
		ID:          uuid.New().String(),
		Provider:    provider,
		Model:       model,
		URL:         url,
		Stream:      stream,
		RequestHash: hex.EncodeToString(sum[:]),
		StartedAt:   time.Now().UTC(),
	}
	c.RequestBody = c.limit(string(body), maxBytes)
	return c
}

// AddPayload appends a raw inbound payload, truncated to maxBytes.
func (c *Capture) AddPayload(payload []byte, maxBytes int) {
	c.Payloads = append(c.Payloads, c.limit(string(payload), maxBytes))
}

// Finish stamps the end time and the terminating error.
func (c *Capture) Finish(err error) {
	c.FinishedAt = time.Now().UTC()
	if err != nil {
		c.Error = err.Error()
	}
}

// Duration returns how long the exchange took.
func (c *Capture) Duration() time.Duration {
	if c.FinishedAt.IsZero() {
		return 0
	}
	return c.FinishedAt.Sub(c.StartedAt)
}

func (c *Capture) limit(s string, maxBytes int) string {
	if maxBytes <= 0 || len(s) <= maxBytes {
		return s
	}
	c.Truncated = true
	return s[:maxBytes]
}

// Recorder receives finished captures. Implementations must be safe for
// concurrent use. A recording failure never affects the run it describes.
type Recorder interface {
	Record(ctx context.Context, c *Capture) error
}
