package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"backend/config"
	"backend/models"
	"backend/utils"
)

const (
	anthropicBaseURL = "https://api.anthropic.com"
	anthropicVersion = "2023-06-01"
	defaultModel     = "claude-sonnet-4-20250514"
)

// AnthropicService wraps the vision/language model messages API: auth
// headers, timeouts and first-content-block extraction live here so callers
// only deal in prompt text.
type AnthropicService struct {
	apiKey  string
	model   string
	baseURL string
	client  *http.Client
}

func NewAnthropicService(cfg *config.Config) *AnthropicService {
	model := cfg.AnthropicModel
	if model == "" {
		model = defaultModel
	}
	return &AnthropicService{
		apiKey:  cfg.AnthropicAPIKey,
		model:   model,
		baseURL: anthropicBaseURL,
		client:  &http.Client{Timeout: 90 * time.Second},
	}
}

// Configured reports whether an API key was supplied at startup.
func (s *AnthropicService) Configured() bool { return s.apiKey != "" }

type contentBlock struct {
	Type   string       `json:"type"`
	Source *imageSource `json:"source,omitempty"`
	Text   string       `json:"text,omitempty"`
}

type imageSource struct {
	Type      string `json:"type"`
	MediaType string `json:"media_type"`
	Data      string `json:"data"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content any    `json:"content"`
}

type messagesRequest struct {
	Model     string        `json:"model"`
	MaxTokens int           `json:"max_tokens"`
	Messages  []chatMessage `json:"messages"`
}

type messagesResponse struct {
	Content []struct {
		Text string `json:"text"`
	} `json:"content"`
}

// Complete sends a text-only instruction and returns the reply text. service
// names the calling stage for error attribution.
func (s *AnthropicService) Complete(ctx context.Context, service, prompt string, maxTokens int) (string, error) {
	return s.send(ctx, service, messagesRequest{
		Model:     s.model,
		MaxTokens: maxTokens,
		Messages:  []chatMessage{{Role: "user", Content: prompt}},
	})
}

// CompleteWithImage sends one message holding an image block followed by a
// text instruction.
func (s *AnthropicService) CompleteWithImage(ctx context.Context, service string, img models.ImagePayload, prompt string, maxTokens int) (string, error) {
	content := []contentBlock{
		{Type: "image", Source: &imageSource{Type: "base64", MediaType: img.MediaType, Data: img.Data}},
		{Type: "text", Text: prompt},
	}
	return s.send(ctx, service, messagesRequest{
		Model:     s.model,
		MaxTokens: maxTokens,
		Messages:  []chatMessage{{Role: "user", Content: content}},
	})
}

func (s *AnthropicService) send(ctx context.Context, service string, body messagesRequest) (string, error) {
	if s.apiKey == "" {
		return "", models.Unconfigured(service)
	}

	b, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("failed to marshal model request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/v1/messages", bytes.NewReader(b))
	if err != nil {
		return "", fmt.Errorf("failed to create model request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", s.apiKey)
	req.Header.Set("anthropic-version", anthropicVersion)

	resp, err := s.client.Do(req)
	if err != nil {
		return "", models.Unavailable(service, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", models.Unavailable(service, err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", models.Unavailable(service, fmt.Errorf("model API error %d: %s", resp.StatusCode, utils.Snippet(string(raw))))
	}

	var mr messagesResponse
	if err := json.Unmarshal(raw, &mr); err != nil {
		return "", models.Malformed(service, string(raw), err)
	}
	if len(mr.Content) == 0 {
		return "", models.Malformed(service, string(raw), fmt.Errorf("empty content in model reply"))
	}
	return mr.Content[0].Text, nil
}
