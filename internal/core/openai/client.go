package openai

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	goopenai "github.com/sashabaranov/go-openai"
)

type Client struct {
	c      *goopenai.Client
	model  string
	logger *slog.Logger
}

// New returns a chat-completions client. baseURL overrides the public endpoint when set.
func New(apiKey, model, baseURL string, timeout time.Duration, logger *slog.Logger) *Client {
	cfg := goopenai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	cfg.HTTPClient = &http.Client{Timeout: timeout}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{c: goopenai.NewClientWithConfig(cfg), model: model, logger: logger}
}

func (o *Client) Complete(ctx context.Context, prompt string) (string, error) {
	resp, err := o.c.CreateChatCompletion(ctx, goopenai.ChatCompletionRequest{
		Model: o.model,
		Messages: []goopenai.ChatCompletionMessage{
			{Role: goopenai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		return "", fmt.Errorf("openai chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("openai: no choices in response")
	}
	o.logger.Debug("openai response",
		"model", o.model,
		"tokens_used", resp.Usage.TotalTokens,
		"response_length", len(resp.Choices[0].Message.Content))
	return resp.Choices[0].Message.Content, nil
}
