package keywords

import (
	"context"
	"fmt"
	"strings"

	"github.com/deusflow/newsflash/internal/logger"
	"github.com/deusflow/newsflash/internal/metrics"
)

// Provider suggests related keywords for an article.
type Provider interface {
	Keywords(ctx context.Context, title, content string) ([]string, error)
}

// Frequency is the heuristic provider backed by Extract. It never fails.
type Frequency struct{}

func (Frequency) Keywords(_ context.Context, title, content string) ([]string, error) {
	return Extract(title, content), nil
}

// TitleWords returns the first two words of the title as they appear.
type TitleWords struct{}

func (TitleWords) Keywords(_ context.Context, title, _ string) ([]string, error) {
	words := strings.Fields(title)
	if len(words) > MaxKeywords {
		words = words[:MaxKeywords]
	}
	return words, nil
}

// Named providers report a short name recorded with cached results.
type Named interface {
	Name() string
}

// Name returns the provider's name, or "" when it has none.
func Name(p Provider) string {
	if n, ok := p.(Named); ok {
		return n.Name()
	}
	return ""
}

func (Frequency) Name() string  { return "frequency" }
func (TitleWords) Name() string { return "title" }

// Answer is a keyword result and the stage that produced it. Degraded is
// set when the primary provider failed and the fallback answered.
type Answer struct {
	Keywords []string
	Provider string
	Degraded bool
}

// Resolver is implemented by providers that can report an Answer.
type Resolver interface {
	Resolve(ctx context.Context, title, content string) (Answer, error)
}

// Chain asks Primary first and falls back to Fallback only when Primary
// returns an error.
type Chain struct {
	Primary  Provider
	Fallback Provider
}

func (c Chain) Keywords(ctx context.Context, title, content string) ([]string, error) {
	a, err := c.Resolve(ctx, title, content)
	if err != nil {
		return nil, err
	}
	return a.Keywords, nil
}

func (c Chain) Resolve(ctx context.Context, title, content string) (Answer, error) {
	metrics.Global.IncrementKeywordRequests()

	degraded := false
	if c.Primary != nil {
		kws, err := c.Primary.Keywords(ctx, title, content)
		if err == nil {
			metrics.Global.IncrementModelKeywords()
			logger.Debug("keywords suggested", "keywords", strings.Join(kws, ", "))
			return Answer{Keywords: kws, Provider: Name(c.Primary)}, nil
		}
		metrics.Global.IncrementModelKeywordFailures()
		logger.Warn("primary keyword provider failed, using fallback", "error", err)
		degraded = true
	}

	if c.Fallback == nil {
		return Answer{}, fmt.Errorf("no keyword provider available")
	}
	metrics.Global.IncrementFallbackKeywords()
	kws, err := c.Fallback.Keywords(ctx, title, content)
	if err != nil {
		return Answer{}, err
	}
	return Answer{Keywords: kws, Provider: Name(c.Fallback), Degraded: degraded}, nil
}

// NewFallback returns the fallback provider named by kind ("frequency" or
// "title").
func NewFallback(kind string) (Provider, error) {
	switch kind {
	case "", "frequency":
		return Frequency{}, nil
	case "title":
		return TitleWords{}, nil
	default:
		return nil, fmt.Errorf("unknown keyword fallback %q", kind)
	}
}
