// Package news serves headlines, search results, related articles and
// topic summaries on top of NewsAPI, publisher feeds and the model providers.
package news

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/deusflow/newsflash/internal/config"
	"github.com/deusflow/newsflash/internal/keywords"
	"github.com/deusflow/newsflash/internal/logger"
	"github.com/deusflow/newsflash/internal/metrics"
	"github.com/deusflow/newsflash/internal/newsapi"
	"github.com/deusflow/newsflash/internal/scraper"
	"github.com/deusflow/newsflash/internal/storage"
	"github.com/deusflow/newsflash/internal/summary"
)

var (
	ErrUnknownCategory = errors.New("unknown category")
	ErrUnknownCountry  = errors.New("unknown country")
	ErrUnknownSource   = errors.New("unknown source")
)

// Fetcher is the NewsAPI surface the service needs.
type Fetcher interface {
	TopHeadlines(ctx context.Context, country string, page, pageSize int) (*newsapi.Page, error)
	CategoryHeadlines(ctx context.Context, category, country string, page, pageSize int) (*newsapi.Page, error)
	Search(ctx context.Context, query string, page, pageSize int) (*newsapi.Page, error)
	SourceHeadlines(ctx context.Context, sources string, page, pageSize int) (*newsapi.Page, error)
	Related(ctx context.Context, query string, pageSize int) (*newsapi.Page, error)
}

// FeedFetcher reads a publisher feed as articles.
type FeedFetcher interface {
	FetchArticles(ctx context.Context, feedURL, sourceID, sourceName string) ([]newsapi.Article, error)
}

// ContentScraper returns the readable text of an article page.
type ContentScraper interface {
	Extract(ctx context.Context, url string) (string, error)
}

// Summarizer produces topic summaries and never fails.
type Summarizer interface {
	Summarize(ctx context.Context, topic string, titles []string) summary.Summary
}

// Result is one page of articles.
type Result struct {
	Articles     []newsapi.Article `json:"articles"`
	TotalResults int               `json:"totalResults"`
	Pagination   *Pagination       `json:"pagination,omitempty"`
	FromFeed     bool              `json:"fromFeed,omitempty"`
}

type Options struct {
	API        Fetcher
	Feeds      FeedFetcher    // optional
	Scraper    ContentScraper // optional, enriches truncated content
	Keywords   keywords.Provider
	Summarizer Summarizer
	Store      storage.Store
	Catalog    *config.Catalog
	Country    string
	PageSize   int
	AICacheTTL time.Duration
}

type Service struct {
	api        Fetcher
	feeds      FeedFetcher
	scraper    ContentScraper
	keywords   keywords.Provider
	summarizer Summarizer
	store      storage.Store
	catalog    *config.Catalog
	country    string
	pageSize   int
	aiTTL      time.Duration
	log        *slog.Logger
}

func NewService(opts Options) *Service {
	s := &Service{
		api:        opts.API,
		feeds:      opts.Feeds,
		scraper:    opts.Scraper,
		keywords:   opts.Keywords,
		summarizer: opts.Summarizer,
		store:      opts.Store,
		catalog:    opts.Catalog,
		country:    opts.Country,
		pageSize:   opts.PageSize,
		aiTTL:      opts.AICacheTTL,
		log:        logger.With("news"),
	}
	if s.keywords == nil {
		s.keywords = keywords.Frequency{}
	}
	if s.summarizer == nil {
		s.summarizer = summary.New(nil)
	}
	if s.store == nil {
		s.store = storage.NewMemoryStore()
	}
	if s.catalog == nil {
		s.catalog = config.DefaultCatalog()
	}
	if s.country == "" {
		s.country = newsapi.DefaultCountry
	}
	if s.pageSize < 1 {
		s.pageSize = newsapi.DefaultPageSize
	}
	return s
}

func (s *Service) Catalog() *config.Catalog { return s.catalog }

// Headlines returns top headlines for a country ("" = default country).
func (s *Service) Headlines(ctx context.Context, country string, page int) (*Result, error) {
	country = strings.ToLower(strings.TrimSpace(country))
	if country == "" {
		country = s.country
	}
	if !s.catalog.HasCountry(country) {
		return nil, fmt.Errorf("%w: %s", ErrUnknownCountry, country)
	}
	p, err := s.api.TopHeadlines(ctx, country, page, s.pageSize)
	if err != nil {
		return nil, err
	}
	return s.result(p, page), nil
}

// Category returns top headlines for a category in the default country.
func (s *Service) Category(ctx context.Context, category string, page int) (*Result, error) {
	category = strings.ToLower(strings.TrimSpace(category))
	if !s.catalog.HasCategory(category) {
		return nil, fmt.Errorf("%w: %s", ErrUnknownCategory, category)
	}
	p, err := s.api.CategoryHeadlines(ctx, category, s.country, page, s.pageSize)
	if err != nil {
		return nil, err
	}
	return s.result(p, page), nil
}

// Search finds articles by popularity. An empty query is an empty result.
func (s *Service) Search(ctx context.Context, query string, page int) (*Result, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return &Result{Articles: []newsapi.Article{}, Pagination: paginationPtr(NewPagination(page, s.pageSize, 0))}, nil
	}
	p, err := s.api.Search(ctx, query, page, s.pageSize)
	if err != nil {
		return nil, err
	}
	return s.result(p, page), nil
}

// Source returns headlines of one publisher, reading its feed when NewsAPI fails.
func (s *Service) Source(ctx context.Context, id string, page int) (*Result, error) {
	src, ok := s.catalog.Source(strings.TrimSpace(id))
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownSource, id)
	}

	p, err := s.api.SourceHeadlines(ctx, src.ID, page, s.pageSize)
	if err == nil {
		return s.result(p, page), nil
	}

	if s.feeds == nil || src.Feed == "" {
		return nil, err
	}

	s.log.Warn("NewsAPI failed, reading publisher feed", "source", src.ID, "error", err)
	articles, feedErr := s.feeds.FetchArticles(ctx, src.Feed, src.ID, src.Name)
	if feedErr != nil {
		s.log.Error("Feed fallback failed", "source", src.ID, "error", feedErr)
		return nil, err
	}
	metrics.Global.IncrementFeedFallbacks()

	articles = dedupe(articles)
	res := paginateLocal(articles, page, s.pageSize)
	res.FromFeed = true
	return res, nil
}

// Related finds up to newsapi.RelatedLimit articles sharing the keywords of
// the given one, never including the article itself.
func (s *Service) Related(ctx context.Context, title, content, articleURL string) (*Result, error) {
	content = s.fullContent(ctx, content, articleURL)

	kws, err := s.Keywords(ctx, title, content)
	if err != nil {
		return nil, err
	}
	if len(kws) == 0 {
		return &Result{Articles: []newsapi.Article{}}, nil
	}

	p, err := s.api.Related(ctx, strings.Join(kws, " OR "), newsapi.RelatedFetchSize)
	if err != nil {
		return nil, err
	}

	related := make([]newsapi.Article, 0, newsapi.RelatedLimit)
	for _, a := range dedupe(p.Articles) {
		if a.URL == articleURL {
			continue
		}
		related = append(related, a)
		if len(related) == newsapi.RelatedLimit {
			break
		}
	}
	return &Result{Articles: related, TotalResults: len(related)}, nil
}

// Keywords returns the keywords of an article, cached in the AI store.
func (s *Service) Keywords(ctx context.Context, title, content string) ([]string, error) {
	key := storage.Key(storage.KindKeywords, title, content)

	var cached []string
	if s.lookup(key, &cached) {
		return cached, nil
	}

	var ans keywords.Answer
	if r, ok := s.keywords.(keywords.Resolver); ok {
		a, err := r.Resolve(ctx, title, content)
		if err != nil {
			return nil, err
		}
		ans = a
	} else {
		kws, err := s.keywords.Keywords(ctx, title, content)
		if err != nil {
			return nil, err
		}
		ans = keywords.Answer{Keywords: kws, Provider: keywords.Name(s.keywords)}
	}

	// a fallback answer after a model failure is served but not kept, so the
	// model is asked again next time
	if len(ans.Keywords) > 0 && !ans.Degraded {
		s.remember(key, storage.KindKeywords, ans.Provider, ans.Keywords)
	}
	return ans.Keywords, nil
}

// TopicSummary summarizes the titles of the given articles, cached in the AI store.
func (s *Service) TopicSummary(ctx context.Context, topic string, articles []newsapi.Article) summary.Summary {
	titles := make([]string, 0, len(articles))
	for _, a := range articles {
		if t := strings.TrimSpace(a.Title); t != "" {
			titles = append(titles, t)
		}
	}
	if len(titles) == 0 {
		return summary.Summary{}
	}

	key := storage.Key(storage.KindSummary, append([]string{topic}, titles...)...)

	var cached summary.Summary
	if s.lookup(key, &cached) {
		return cached
	}

	sum := s.summarizer.Summarize(ctx, topic, titles)
	if sum.Text != "" {
		s.remember(key, storage.KindSummary, providerName(s.summarizer), sum)
	}
	return sum
}

// fullContent replaces NewsAPI's truncated content with the scraped page
// text when a scraper is configured.
func (s *Service) fullContent(ctx context.Context, content, articleURL string) string {
	if s.scraper == nil || articleURL == "" || (content != "" && !scraper.IsTruncated(content)) {
		return scraper.TrimTruncation(content)
	}

	text, err := s.scraper.Extract(ctx, articleURL)
	if err != nil || len(text) <= len(content) {
		if err != nil {
			s.log.Debug("Scrape failed, using NewsAPI content", "url", articleURL, "error", err)
		}
		return scraper.TrimTruncation(content)
	}
	return text
}

func (s *Service) lookup(key string, out any) bool {
	e, ok := s.store.Get(key)
	if !ok {
		return false
	}
	if s.aiTTL > 0 && time.Since(e.CreatedAt) > s.aiTTL {
		return false
	}
	if err := json.Unmarshal([]byte(e.Value), out); err != nil {
		s.log.Warn("Discarding unreadable AI cache entry", "key", key, "error", err)
		return false
	}
	metrics.Global.IncrementAIStoreHits()
	return true
}

func (s *Service) remember(key, kind, provider string, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		return
	}
	if err := s.store.Put(storage.Entry{Key: key, Kind: kind, Value: string(data), Provider: provider}); err != nil {
		s.log.Warn("Failed to store AI result", "kind", kind, "error", err)
	}
}

func providerName(v any) string {
	if n, ok := v.(interface{ Name() string }); ok {
		return n.Name()
	}
	return ""
}

func (s *Service) result(p *newsapi.Page, page int) *Result {
	pg := NewPagination(page, s.pageSize, p.TotalResults)
	return &Result{
		Articles:     dedupe(p.Articles),
		TotalResults: p.TotalResults,
		Pagination:   &pg,
	}
}

func paginationPtr(p Pagination) *Pagination { return &p }

// paginateLocal slices a complete article list into one page.
func paginateLocal(articles []newsapi.Article, page, pageSize int) *Result {
	pg := NewPagination(page, pageSize, len(articles))
	// compare page numbers before multiplying so huge pages cannot overflow
	if pg.Page > pg.TotalPages {
		return &Result{Articles: []newsapi.Article{}, TotalResults: len(articles), Pagination: &pg}
	}
	start := (pg.Page - 1) * pg.PageSize
	end := start + pg.PageSize
	if end > len(articles) {
		end = len(articles)
	}
	out := make([]newsapi.Article, end-start)
	copy(out, articles[start:end])
	return &Result{Articles: out, TotalResults: len(articles), Pagination: &pg}
}

// dedupe drops removed placeholders and repeated stories, keeping the first.
func dedupe(articles []newsapi.Article) []newsapi.Article {
	seen := make(map[string]bool, len(articles))
	out := make([]newsapi.Article, 0, len(articles))
	for _, a := range articles {
		if a.Removed() {
			continue
		}
		key := makeNewsKey(a)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, a)
	}
	return out
}

// makeNewsKey identifies a story by its URL, or by normalized title when
// the URL is missing.
func makeNewsKey(a newsapi.Article) string {
	if a.URL != "" {
		return strings.TrimSuffix(strings.ToLower(a.URL), "/")
	}
	return strings.Join(strings.Fields(strings.ToLower(a.Title)), " ")
}
