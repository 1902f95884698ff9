package rss

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"

	"github.com/deusflow/newsflash/internal/logger"
	"github.com/deusflow/newsflash/internal/newsapi"
)

// Fetcher reads publisher RSS/Atom feeds as a stand-in for NewsAPI.
type Fetcher struct {
	parser *gofeed.Parser
}

func NewFetcher(timeout time.Duration) *Fetcher {
	p := gofeed.NewParser()
	p.Client = &http.Client{Timeout: timeout}
	return &Fetcher{parser: p}
}

// FetchArticles downloads a feed and converts its items into articles
// attributed to the given source, newest first as the feed lists them.
func (f *Fetcher) FetchArticles(ctx context.Context, feedURL, sourceID, sourceName string) ([]newsapi.Article, error) {
	feed, err := f.parser.ParseURLWithContext(feedURL, ctx)
	if err != nil {
		return nil, fmt.Errorf("parse feed %s: %w", feedURL, err)
	}

	if sourceName == "" {
		sourceName = feed.Title
	}

	articles := make([]newsapi.Article, 0, len(feed.Items))
	for _, item := range feed.Items {
		if item == nil || strings.TrimSpace(item.Title) == "" || item.Link == "" {
			continue
		}
		articles = append(articles, toArticle(item, sourceID, sourceName))
	}

	logger.Debug("Loaded feed", "url", feedURL, "items", len(feed.Items), "articles", len(articles))
	return articles, nil
}

func toArticle(item *gofeed.Item, sourceID, sourceName string) newsapi.Article {
	a := newsapi.Article{
		Source:      newsapi.Source{ID: newsapi.StringPtr(sourceID), Name: sourceName},
		Title:       strings.TrimSpace(item.Title),
		URL:         item.Link,
		Description: newsapi.StringPtr(StripHTML(item.Description)),
		Content:     newsapi.StringPtr(StripHTML(item.Content)),
	}

	if len(item.Authors) > 0 && item.Authors[0] != nil {
		a.Author = newsapi.StringPtr(item.Authors[0].Name)
	}
	if item.Image != nil {
		a.URLToImage = newsapi.StringPtr(item.Image.URL)
	} else {
		for _, enc := range item.Enclosures {
			if enc != nil && strings.HasPrefix(enc.Type, "image/") {
				a.URLToImage = newsapi.StringPtr(enc.URL)
				break
			}
		}
	}

	switch {
	case item.PublishedParsed != nil:
		a.PublishedAt = item.PublishedParsed.UTC().Format(time.RFC3339)
	case item.UpdatedParsed != nil:
		a.PublishedAt = item.UpdatedParsed.UTC().Format(time.RFC3339)
	}
	return a
}

// StripHTML returns the visible text of an HTML fragment with collapsed whitespace.
func StripHTML(s string) string {
	if !strings.ContainsAny(s, "<&") {
		return strings.Join(strings.Fields(s), " ")
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return strings.Join(strings.Fields(s), " ")
	}
	return strings.Join(strings.Fields(doc.Text()), " ")
}
