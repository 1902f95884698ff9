// Package prompt builds model prompts and cleans model replies.
package prompt

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"text/template"
	"unicode/utf8"

	"github.com/tailscale/hujson"
)

// SummaryFallback is returned when the model answers with nothing.
const SummaryFallback = "Stay updated with the latest headlines on this topic."

var keywordTmpl = template.Must(template.New("keywords").Parse(
	`From the following article title and content, extract the 2 or 3 most relevant and specific keywords or short phrases. Focus on named entities, specific topics, or key subjects. Avoid generic terms.

Title: {{.Title}}
Content: {{.Content}}

Return only a JSON array of strings.`))

var summaryTmpl = template.Must(template.New("summary").Parse(
	`You are a helpful news assistant. Based on the topic "{{.Topic}}", write a short, engaging summary (2-3 sentences) of the following list of article headlines. This summary should provide a high-level overview of the current events in that topic.

Article Headlines:
{{range .Titles}}- {{.}}
{{end}}
Generate the summary only.`))

// maxContentRunes bounds the article text placed in a prompt.
const maxContentRunes = 6000

// Keywords returns the keyword extraction prompt.
func Keywords(title, content string) string {
	content = Clip(content, maxContentRunes)
	var buf bytes.Buffer
	// Execute can only fail on writer errors, which bytes.Buffer never returns.
	_ = keywordTmpl.Execute(&buf, struct{ Title, Content string }{title, content})
	return buf.String()
}

// Summary returns the topic summary prompt.
func Summary(topic string, titles []string) string {
	var buf bytes.Buffer
	_ = summaryTmpl.Execute(&buf, struct {
		Topic  string
		Titles []string
	}{topic, titles})
	return buf.String()
}

// Clip collapses whitespace and cuts text to max runes, preferring to end
// on a sentence boundary.
func Clip(text string, max int) string {
	text = strings.Join(strings.Fields(text), " ")
	if utf8.RuneCountInString(text) <= max {
		return text
	}
	trimmed := string([]rune(text)[:max])
	if idx := strings.LastIndex(trimmed, ". "); idx > max/5 {
		trimmed = trimmed[:idx+1]
	}
	return trimmed
}

var (
	fenceRe       = regexp.MustCompile("(?s)```[a-zA-Z]*\\s*(.*?)\\s*```")
	noteLineRe    = regexp.MustCompile(`(?im)^\s*(note|disclaimer)\s*:.*$`)
	noteParenRe   = regexp.MustCompile(`(?is)\(\s*(note|disclaimer)\s*:[^)]*\)`)
	noteBracketRe = regexp.MustCompile(`(?is)\[\s*(note|disclaimer)\s*:[^\]]*\]`)
	blankLinesRe  = regexp.MustCompile(`\n{3,}`)
	spaceRunRe    = regexp.MustCompile(`[ \t]{2,}`)
	errNoArray    = errors.New("no JSON array in model reply")
)

// stripFences returns the contents of the first fenced block, or text unchanged.
func stripFences(text string) string {
	if m := fenceRe.FindStringSubmatch(text); m != nil {
		return m[1]
	}
	return strings.ReplaceAll(text, "```", "")
}

// SanitizeModelText removes code fences and "Note:" style disclaimers.
func SanitizeModelText(text string) string {
	text = stripFences(text)
	text = noteParenRe.ReplaceAllString(text, "")
	text = noteBracketRe.ReplaceAllString(text, "")
	text = noteLineRe.ReplaceAllString(text, "")

	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(spaceRunRe.ReplaceAllString(line, " "))
	}
	text = strings.Join(lines, "\n")
	text = blankLinesRe.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}

// ParseKeywords reads a JSON array of strings from a model reply. Code
// fences, surrounding prose, comments and trailing commas are tolerated.
func ParseKeywords(text string) ([]string, error) {
	text = stripFences(text)

	start := strings.Index(text, "[")
	end := strings.LastIndex(text, "]")
	if start < 0 || end <= start {
		return nil, errNoArray
	}
	raw := []byte(text[start : end+1])

	v, err := hujson.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("parse keywords: %w", err)
	}
	v.Standardize()

	var items []any
	if err := json.Unmarshal(v.Pack(), &items); err != nil {
		return nil, fmt.Errorf("decode keywords: %w", err)
	}

	out := make([]string, 0, len(items))
	for _, item := range items {
		s, ok := item.(string)
		if !ok {
			continue
		}
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out, nil
}
