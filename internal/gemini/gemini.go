package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/deusflow/newsflash/internal/prompt"
	"github.com/deusflow/newsflash/internal/ratelimit"
)

const (
	Provider     = "gemini"
	DefaultModel = "gemini-2.0-flash"
)

var errEmptyResponse = errors.New("no response from Gemini")

type Client struct {
	client  *genai.Client
	model   string
	limiter *ratelimit.AIRateLimiter
}

// NewClient connects to the Gemini API. limiter may be nil.
func NewClient(ctx context.Context, apiKey, model string, limiter *ratelimit.AIRateLimiter) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY is empty")
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	if model == "" {
		model = DefaultModel
	}
	return &Client{client: client, model: model, limiter: limiter}, nil
}

func (c *Client) Close() {
	if c.client != nil {
		c.client.Close()
	}
}

func (c *Client) Name() string { return Provider }

// Keywords asks the model for the most specific keywords of an article.
func (c *Client) Keywords(ctx context.Context, title, content string) ([]string, error) {
	text, err := c.generate(ctx, prompt.Keywords(title, content), 0.2)
	if err != nil {
		return nil, err
	}
	return prompt.ParseKeywords(text)
}

// Summarize writes a short overview of the given headlines.
func (c *Client) Summarize(ctx context.Context, topic string, titles []string) (string, error) {
	text, err := c.generate(ctx, prompt.Summary(topic, titles), 0.7)
	if err != nil {
		return "", err
	}
	return prompt.SanitizeModelText(text), nil
}

func (c *Client) generate(ctx context.Context, p string, temperature float32) (string, error) {
	if c.limiter != nil {
		if err := c.limiter.Use(Provider); err != nil {
			return "", err
		}
	}

	model := c.client.GenerativeModel(c.model)
	model.SetTemperature(temperature)

	resp, err := model.GenerateContent(ctx, genai.Text(p))
	if err != nil {
		return "", fmt.Errorf("failed to generate content: %w", err)
	}
	return responseText(resp)
}

// responseText joins the text parts of the first candidate.
func responseText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", errEmptyResponse
	}

	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if t, ok := part.(genai.Text); ok {
			b.WriteString(string(t))
		}
	}
	return strings.TrimSpace(b.String()), nil
}
