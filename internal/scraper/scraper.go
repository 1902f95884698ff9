package scraper

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-shiori/go-readability"

	"github.com/deusflow/newsflash/internal/logger"
)

const (
	maxPageBytes   = 5 << 20
	maxContentLen  = 4000
	minReadableLen = 200
)

// truncatedRe matches the "[+1234 chars]" suffix NewsAPI appends to content.
var truncatedRe = regexp.MustCompile(`\s*…?\s*\[\+\d+ chars\]\s*$`)

// IsTruncated reports whether content carries the NewsAPI truncation marker.
func IsTruncated(content string) bool {
	return truncatedRe.MatchString(content)
}

// TrimTruncation removes the truncation marker.
func TrimTruncation(content string) string {
	return strings.TrimSpace(truncatedRe.ReplaceAllString(content, ""))
}

// Scraper fetches article pages and extracts their readable text.
type Scraper struct {
	client    *http.Client
	userAgent string
}

func New(timeout time.Duration) *Scraper {
	return &Scraper{
		client:    &http.Client{Timeout: timeout},
		userAgent: "Mozilla/5.0 (compatible; NewsFlash/1.0)",
	}
}

// Extract returns the main text of the page at pageURL. Readability is
// tried first; paragraph selectors are used when it finds too little.
func (s *Scraper) Extract(ctx context.Context, pageURL string) (string, error) {
	parsedURL, err := url.Parse(pageURL)
	if err != nil || parsedURL.Host == "" {
		return "", fmt.Errorf("invalid url %q", pageURL)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", s.userAgent)

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("error loading page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("HTTP error: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPageBytes))
	if err != nil {
		return "", fmt.Errorf("error reading page: %w", err)
	}

	text := ""
	if article, err := readability.FromReader(bytes.NewReader(body), parsedURL); err == nil {
		text = cleanContent(article.TextContent)
	} else {
		logger.Debug("Readability failed", "url", pageURL, "error", err)
	}

	if len(text) < minReadableLen {
		doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
		if err != nil {
			return "", fmt.Errorf("error parsing HTML: %w", err)
		}
		if fallback := cleanContent(extractParagraphs(doc)); len(fallback) > len(text) {
			text = fallback
		}
	}

	if text == "" {
		return "", fmt.Errorf("can't get content")
	}
	return limit(text, maxContentLen), nil
}

// extractParagraphs is a generic selector based parser for any site
func extractParagraphs(doc *goquery.Document) string {
	var paragraphs []string

	selectors := []string{
		"article p",
		".article-body p",
		".article p",
		".content p",
		".post-content p",
		".entry-content p",
		"main p",
		"#content p",
		"p",
	}

	for _, selector := range selectors {
		doc.Find(selector).Each(func(i int, s *goquery.Selection) {
			text := strings.TrimSpace(s.Text())
			if len(text) > 20 {
				paragraphs = append(paragraphs, text)
			}
		})
		if len(paragraphs) >= 3 {
			break
		}
	}

	return strings.Join(paragraphs, "\n\n")
}

var junkIndicators = []string{
	"cookie", "subscribe", "sign up for", "newsletter", "advertisement",
	"read more", "click here", "follow us", "share this", "all rights reserved",
}

// cleanContent drops junk lines and collapses whitespace, keeping paragraphs.
func cleanContent(content string) string {
	var kept []string
	for _, para := range strings.Split(content, "\n") {
		para = strings.Join(strings.Fields(para), " ")
		if len(para) < 8 {
			continue
		}
		lower := strings.ToLower(para)
		junk := false
		for _, indicator := range junkIndicators {
			if strings.Contains(lower, indicator) {
				junk = true
				break
			}
		}
		if !junk {
			kept = append(kept, para)
		}
	}
	return strings.Join(kept, "\n\n")
}

// limit keeps whole paragraphs up to max bytes, cutting the first one if needed.
func limit(text string, max int) string {
	if len(text) <= max {
		return text
	}
	var out []string
	total := 0
	for _, p := range strings.Split(text, "\n\n") {
		if total+len(p) > max {
			break
		}
		out = append(out, p)
		total += len(p) + 2
	}
	if len(out) == 0 {
		cut := text[:max]
		if i := strings.LastIndex(cut, " "); i > 0 {
			cut = cut[:i]
		}
		return cut
	}
	return strings.Join(out, "\n\n")
}
