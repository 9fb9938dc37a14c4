package oracle

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"appraisal-orchestrator/internal/domain"
)

const extractionTemperature = 0.2

type contentPart struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	ImageURL *imageURL `json:"image_url,omitempty"`
}

type imageURL struct {
	URL string `json:"url"`
}

type chatMessage struct {
	Role    string      `json:"role"`
	Content interface{} `json:"content"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatRequest struct {
	Model          string          `json:"model"`
	Messages       []chatMessage   `json:"messages"`
	Temperature    float64         `json:"temperature"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Client calls the OpenAI chat-completions endpoint for structured JSON
// extraction (text or vision) and plain chat forwarding.
type Client struct {
	BaseURL   string
	APIKey    string
	model     string
	chatModel string
	client    *http.Client
	logger    *slog.Logger
}

// NewClient constructs an extraction client. model drives the JSON
// extraction calls, chatModel the cheaper plain-chat forwarding.
func NewClient(baseURL, apiKey, model, chatModel string, httpClient *http.Client, logger *slog.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 60 * time.Second}
	}
	return &Client{
		BaseURL:   strings.TrimRight(baseURL, "/"),
		APIKey:    apiKey,
		model:     model,
		chatModel: chatModel,
		client:    httpClient,
		logger:    logger,
	}
}

// ExtractJSON sends a text-only extraction request in JSON mode and returns
// the raw object the model produced. Non-JSON output is a hard failure.
func (c *Client) ExtractJSON(ctx context.Context, system, user string) (json.RawMessage, error) {
	messages := []chatMessage{
		{Role: "system", Content: system},
		{Role: "user", Content: user},
	}
	return c.completeJSON(ctx, messages)
}

// ExtractJSONVision sends an extraction request carrying an image data URL.
func (c *Client) ExtractJSONVision(ctx context.Context, system, prompt, imageDataURL string) (json.RawMessage, error) {
	messages := []chatMessage{
		{Role: "system", Content: system},
		{Role: "user", Content: []contentPart{
			{Type: "text", Text: prompt},
			{Type: "image_url", ImageURL: &imageURL{URL: imageDataURL}},
		}},
	}
	return c.completeJSON(ctx, messages)
}

// Chat forwards messages verbatim and returns the assistant text.
func (c *Client) Chat(ctx context.Context, messages []domain.Message) (string, error) {
	converted := make([]chatMessage, 0, len(messages))
	for _, m := range messages {
		converted = append(converted, chatMessage{Role: m.Role, Content: m.Content})
	}
	content, err := c.complete(ctx, c.chatModel, converted, nil)
	if err != nil {
		return "", err
	}
	return content, nil
}

// Model returns the identifier used for extraction calls.
func (c *Client) Model() string {
	return c.model
}

func (c *Client) completeJSON(ctx context.Context, messages []chatMessage) (json.RawMessage, error) {
	content, err := c.complete(ctx, c.model, messages, &responseFormat{Type: "json_object"})
	if err != nil {
		return nil, err
	}
	trimmed := strings.TrimSpace(content)
	if !json.Valid([]byte(trimmed)) {
		return nil, &domain.UpstreamError{Source: "openai", Detail: "model returned malformed JSON"}
	}
	return json.RawMessage(trimmed), nil
}

func (c *Client) complete(ctx context.Context, model string, messages []chatMessage, format *responseFormat) (string, error) {
	reqBody := chatRequest{
		Model:          model,
		Messages:       messages,
		Temperature:    extractionTemperature,
		ResponseFormat: format,
	}
	payload, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal completion request: %w", err)
	}

	url := fmt.Sprintf("%s/chat/completions", c.BaseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to create completion request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.APIKey)

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to call completion endpoint: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", &domain.UpstreamError{Source: "openai", Status: resp.StatusCode, Detail: truncate(string(body), 500)}
	}

	var chatResp chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&chatResp); err != nil {
		return "", fmt.Errorf("failed to decode completion response: %w", err)
	}
	if len(chatResp.Choices) == 0 {
		return "", &domain.UpstreamError{Source: "openai", Detail: "completion returned no choices"}
	}

	c.logger.Debug("completion_finished",
		slog.String("model", model),
		slog.Int64("elapsed_ms", time.Since(start).Milliseconds()))

	return chatResp.Choices[0].Message.Content, nil
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}

var _ domain.Extractor = (*Client)(nil)
