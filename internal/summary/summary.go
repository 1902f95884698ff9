package summary

import (
	"bytes"
	"context"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"

	"github.com/deusflow/newsflash/internal/logger"
	"github.com/deusflow/newsflash/internal/metrics"
	"github.com/deusflow/newsflash/internal/prompt"
)

// Model is a text model that can summarize headlines.
type Model interface {
	Summarize(ctx context.Context, topic string, titles []string) (string, error)
}

// Summary is a topic overview. Both fields are empty when no summary
// could be produced.
type Summary struct {
	Text string `json:"text"`
	HTML string `json:"html"`
}

type Summarizer struct {
	model Model
	md    goldmark.Markdown
}

// New returns a Summarizer. A nil model yields empty summaries.
func New(model Model) *Summarizer {
	return &Summarizer{
		model: model,
		md: goldmark.New(
			goldmark.WithExtensions(extension.Typographer),
			goldmark.WithRendererOptions(html.WithHardWraps()),
		),
	}
}

// Name reports the model provider, or "" without a named model.
func (s *Summarizer) Name() string {
	if n, ok := s.model.(interface{ Name() string }); ok {
		return n.Name()
	}
	return ""
}

// Summarize never fails; model errors degrade to an empty summary.
func (s *Summarizer) Summarize(ctx context.Context, topic string, titles []string) Summary {
	titles = nonEmpty(titles)
	if len(titles) == 0 || s.model == nil {
		return Summary{}
	}

	text, err := s.model.Summarize(ctx, topic, titles)
	if err != nil {
		metrics.Global.IncrementSummaryFailures()
		logger.Warn("Summary generation failed", "topic", topic, "error", err)
		return Summary{}
	}

	text = strings.TrimSpace(text)
	if text == "" {
		text = prompt.SummaryFallback
	}
	metrics.Global.IncrementSummariesGenerated()

	return Summary{Text: text, HTML: s.render(text)}
}

func (s *Summarizer) render(text string) string {
	var buf bytes.Buffer
	if err := s.md.Convert([]byte(text), &buf); err != nil {
		logger.Debug("Markdown render failed", "error", err)
		return ""
	}
	return strings.TrimSpace(buf.String())
}

func nonEmpty(titles []string) []string {
	out := make([]string, 0, len(titles))
	for _, t := range titles {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}
