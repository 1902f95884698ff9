// Package openai is the model provider for OpenAI and API-compatible servers.
package openai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	goopenai "github.com/sashabaranov/go-openai"

	"github.com/deusflow/newsflash/internal/prompt"
	"github.com/deusflow/newsflash/internal/ratelimit"
)

const (
	Provider     = "openai"
	DefaultModel = goopenai.GPT4oMini
)

var errEmptyResponse = errors.New("no response from OpenAI")

type Client struct {
	client  *goopenai.Client
	model   string
	limiter *ratelimit.AIRateLimiter
}

// NewClient builds a client. An empty baseURL uses api.openai.com; limiter may be nil.
func NewClient(apiKey, baseURL, model string, limiter *ratelimit.AIRateLimiter) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY is empty")
	}
	cfg := goopenai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = strings.TrimRight(baseURL, "/")
	}
	if model == "" {
		model = DefaultModel
	}
	return &Client{client: goopenai.NewClientWithConfig(cfg), model: model, limiter: limiter}, nil
}

func (c *Client) Name() string { return Provider }

func (c *Client) Keywords(ctx context.Context, title, content string) ([]string, error) {
	text, err := c.complete(ctx, prompt.Keywords(title, content), 0.2, 200)
	if err != nil {
		return nil, err
	}
	return prompt.ParseKeywords(text)
}

func (c *Client) Summarize(ctx context.Context, topic string, titles []string) (string, error) {
	text, err := c.complete(ctx, prompt.Summary(topic, titles), 0.7, 400)
	if err != nil {
		return "", err
	}
	return prompt.SanitizeModelText(text), nil
}

func (c *Client) complete(ctx context.Context, p string, temperature float32, maxTokens int) (string, error) {
	if c.limiter != nil {
		if err := c.limiter.Use(Provider); err != nil {
			return "", err
		}
	}

	resp, err := c.client.CreateChatCompletion(ctx, goopenai.ChatCompletionRequest{
		Model: c.model,
		Messages: []goopenai.ChatCompletionMessage{
			{
				Role:    goopenai.ChatMessageRoleUser,
				Content: p,
			},
		},
		Temperature:         temperature,
		MaxCompletionTokens: maxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", errEmptyResponse
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
