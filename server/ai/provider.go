package ai

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"time"

	"github.com/sashabaranov/go-openai"

	pipeerrors "github.com/snapcal/snapcal/internal/errors"
)

// Config holds the AI provider configuration.
type Config struct {
	BaseURL     string
	APIKey      string
	ChatModel   string
	VisionModel string
	Timeout     time.Duration
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		BaseURL:     "https://api.openai.com/v1",
		APIKey:      "",
		ChatModel:   "gpt-4o-mini",
		VisionModel: "gpt-4o",
		Timeout:     30 * time.Second,
	}
}

// Provider wraps an OpenAI-compatible endpoint for text and vision event
// extraction. A failed call is never retried; the caller degrades to its
// fallback heuristic immediately.
type Provider struct {
	client *openai.Client
	config *Config
}

// NewProvider creates a new AI provider.
func NewProvider(cfg *Config) (*Provider, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	// Apply defaults for unset values
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.ChatModel == "" {
		cfg.ChatModel = "gpt-4o-mini"
	}
	if cfg.VisionModel == "" {
		cfg.VisionModel = cfg.ChatModel
	}

	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}
	clientConfig.HTTPClient = &http.Client{Timeout: cfg.Timeout}

	client := openai.NewClientWithConfig(clientConfig)

	return &Provider{
		client: client,
		config: cfg,
	}, nil
}

// ChatModel returns the configured text model name.
func (p *Provider) ChatModel() string {
	return p.config.ChatModel
}

// VisionModel returns the configured vision model name.
func (p *Provider) VisionModel() string {
	return p.config.VisionModel
}

// Message represents a chat message.
type Message struct {
	Role    string
	Content string
}

// Chat performs a single chat completion against the text model.
func (p *Provider) Chat(ctx context.Context, messages []Message) (string, error) {
	llmMessages := make([]openai.ChatCompletionMessage, len(messages))
	for i, msg := range messages {
		llmMessages[i] = openai.ChatCompletionMessage{
			Role:    msg.Role,
			Content: msg.Content,
		}
	}

	req := openai.ChatCompletionRequest{
		Model:    p.config.ChatModel,
		Messages: llmMessages,
	}

	resp, err := p.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", pipeerrors.ServiceUnavailable("chat completion failed", err)
	}
	if len(resp.Choices) == 0 {
		return "", pipeerrors.ServiceUnavailable("chat completion failed", fmt.Errorf("empty chat response"))
	}

	return resp.Choices[0].Message.Content, nil
}

// ChatVision sends a prompt plus an image to the vision model. The image is
// embedded inline as a base64 data URL, so no public hosting is required.
func (p *Provider) ChatVision(ctx context.Context, prompt string, image []byte, mimeType string) (string, error) {
	if mimeType == "" {
		mimeType = "image/jpeg"
	}
	dataURL := fmt.Sprintf("data:%s;base64,%s", mimeType, base64.StdEncoding.EncodeToString(image))

	req := openai.ChatCompletionRequest{
		Model: p.config.VisionModel,
		Messages: []openai.ChatCompletionMessage{
			{
				Role: openai.ChatMessageRoleUser,
				MultiContent: []openai.ChatMessagePart{
					{
						Type: openai.ChatMessagePartTypeText,
						Text: prompt,
					},
					{
						Type: openai.ChatMessagePartTypeImageURL,
						ImageURL: &openai.ChatMessageImageURL{
							URL:    dataURL,
							Detail: openai.ImageURLDetailAuto,
						},
					},
				},
			},
		},
	}

	resp, err := p.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", pipeerrors.ServiceUnavailable("vision completion failed", err)
	}
	if len(resp.Choices) == 0 {
		return "", pipeerrors.ServiceUnavailable("vision completion failed", fmt.Errorf("empty vision response"))
	}

	return resp.Choices[0].Message.Content, nil
}
