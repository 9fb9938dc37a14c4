package domain

import (
	"context"
	"encoding/json"
)

// Message is one turn of a chat exchange forwarded to the oracle.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Extractor defines the structured-extraction oracle: given instructions and
// input, it returns a JSON object conforming to the instructed schema.
// Malformed JSON from the oracle is a hard failure for that call.
type Extractor interface {
	// ExtractJSON sends a text-only extraction request.
	ExtractJSON(ctx context.Context, system, user string) (json.RawMessage, error)
	// ExtractJSONVision sends an extraction request with an image data URL.
	ExtractJSONVision(ctx context.Context, system, prompt, imageDataURL string) (json.RawMessage, error)
	// Chat forwards free-form messages and returns the assistant text.
	Chat(ctx context.Context, messages []Message) (string, error)
	// Model returns the identifier of the wrapped extraction model.
	Model() string
}
