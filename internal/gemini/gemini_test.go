package gemini

import (
	"context"
	"errors"
	"testing"

	"github.com/google/generative-ai-go/genai"

	"github.com/deusflow/newsflash/internal/ratelimit"
)

func TestResponseText(t *testing.T) {
	resp := &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{Parts: []genai.Part{
				genai.Text("[\"NASA\", "),
				genai.Text("\"Mars\"]\n"),
			}},
		}},
	}
	got, err := responseText(resp)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != `["NASA", "Mars"]` {
		t.Errorf("unexpected text: %q", got)
	}
}

func TestResponseText_Empty(t *testing.T) {
	for _, resp := range []*genai.GenerateContentResponse{
		nil,
		{},
		{Candidates: []*genai.Candidate{{}}},
	} {
		if _, err := responseText(resp); err == nil {
			t.Errorf("expected error for %+v", resp)
		}
	}
}

func TestNewClient_RequiresKey(t *testing.T) {
	if _, err := NewClient(context.Background(), "", "", nil); err == nil {
		t.Error("expected error for empty key")
	}
}

func TestGenerate_QuotaExhausted(t *testing.T) {
	rl := ratelimit.NewAIRateLimiter(0)
	rl.SetLimit(Provider, 1)
	if err := rl.Use(Provider); err != nil {
		t.Fatal(err)
	}

	// the limiter is consulted before the SDK client is touched
	c := &Client{model: DefaultModel, limiter: rl}
	_, err := c.Keywords(context.Background(), "title", "content")
	if !errors.Is(err, ratelimit.ErrQuotaExceeded) {
		t.Errorf("expected ErrQuotaExceeded, got %v", err)
	}
}
