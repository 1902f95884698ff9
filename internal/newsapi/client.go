package newsapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/deusflow/newsflash/internal/cache"
	"github.com/deusflow/newsflash/internal/logger"
	"github.com/deusflow/newsflash/internal/metrics"
	"github.com/deusflow/newsflash/internal/retry"
)

const (
	DefaultBaseURL  = "https://newsapi.org/v2"
	DefaultCountry  = "us"
	DefaultPageSize = 12

	// RelatedFetchSize is one more than RelatedLimit so the current article can be dropped.
	RelatedFetchSize = 6
	RelatedLimit     = 5

	maxBodyBytes = 4 << 20
)

// Client talks to the NewsAPI v2 REST endpoints.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	cache      *cache.Cache
	cacheTTL   time.Duration
	retry      retry.RetryConfig
	log        *slog.Logger
}

type Option func(*Client)

func WithBaseURL(u string) Option {
	return func(c *Client) {
		if u != "" {
			c.baseURL = strings.TrimRight(u, "/")
		}
	}
}

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithCache stores successful responses for ttl.
func WithCache(cc *cache.Cache, ttl time.Duration) Option {
	return func(c *Client) {
		c.cache = cc
		c.cacheTTL = ttl
	}
}

func WithRetry(cfg retry.RetryConfig) Option {
	return func(c *Client) { c.retry = cfg }
}

func NewClient(apiKey string, opts ...Option) *Client {
	c := &Client{
		apiKey:     apiKey,
		baseURL:    DefaultBaseURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		retry:      retry.RetryConfig{MaxAttempts: 1},
		log:        logger.With("newsapi"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Fetch calls endpoint with params. Every failure is returned as *APIError.
func (c *Client) Fetch(ctx context.Context, endpoint string, params url.Values) (*Page, error) {
	query := params.Encode()
	key := cache.GenerateKey(c.baseURL, endpoint, query)

	if c.cache != nil {
		if v, ok := c.cache.Get(key); ok {
			metrics.Global.IncrementResponseCacheHits()
			return clonePage(v.(*Page)), nil
		}
	}

	metrics.Global.IncrementNewsRequests()
	start := time.Now()
	reqURL := fmt.Sprintf("%s/%s?%s", c.baseURL, endpoint, query)

	var page *Page
	err := retry.WithRetry(ctx, c.retry, func() error {
		p, err := c.do(ctx, reqURL)
		if err != nil {
			if !retryable(err) {
				return retry.Permanent(err)
			}
			return err
		}
		page = p
		return nil
	})
	metrics.Global.RecordRequestTime(time.Since(start))

	if err != nil {
		metrics.Global.IncrementUpstreamErrors()
		var apiErr *APIError
		if !errors.As(err, &apiErr) {
			apiErr = &APIError{Message: err.Error()}
		}
		if retryable(apiErr) {
			metrics.Global.SetError(apiErr.Error())
		}
		c.log.Error("NewsAPI request failed", "endpoint", endpoint, "status", apiErr.Status, "code", apiErr.Code, "message", apiErr.Message)
		return nil, apiErr
	}

	metrics.Global.SetSuccess()

	if c.cache != nil && c.cacheTTL > 0 {
		c.cache.Set(key, clonePage(page), c.cacheTTL)
	}
	return page, nil
}

func (c *Client) do(ctx context.Context, reqURL string) (*Page, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, &APIError{Message: err.Error()}
	}
	req.Header.Set("X-Api-Key", c.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &APIError{Message: err.Error()}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, &APIError{Status: resp.StatusCode, Message: err.Error()}
	}

	var data response
	decodeErr := json.Unmarshal(body, &data)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{
			Status:  resp.StatusCode,
			Code:    data.Code,
			Message: data.Message,
		}
		if apiErr.Code == "" {
			apiErr.Code = strconv.Itoa(resp.StatusCode)
		}
		if apiErr.Message == "" {
			apiErr.Message = "An error occurred: " + http.StatusText(resp.StatusCode)
		}
		return nil, apiErr
	}

	if decodeErr != nil {
		return nil, &APIError{Status: resp.StatusCode, Message: "invalid response: " + decodeErr.Error()}
	}
	if data.Status == "error" {
		return nil, &APIError{Status: resp.StatusCode, Code: data.Code, Message: data.Message}
	}

	articles := data.Articles
	if articles == nil {
		articles = []Article{}
	}
	return &Page{Articles: articles, TotalResults: data.TotalResults}, nil
}

// retryable is true for transport failures and 5xx responses.
func retryable(err error) bool {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return true
	}
	return apiErr.Status == 0 || apiErr.Status >= 500
}

func clonePage(p *Page) *Page {
	out := &Page{TotalResults: p.TotalResults, Articles: make([]Article, len(p.Articles))}
	copy(out.Articles, p.Articles)
	return out
}

func normalize(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	return page, pageSize
}

func paging(v url.Values, page, pageSize int) url.Values {
	page, pageSize = normalize(page, pageSize)
	v.Set("page", strconv.Itoa(page))
	v.Set("pageSize", strconv.Itoa(pageSize))
	return v
}

func (c *Client) TopHeadlines(ctx context.Context, country string, page, pageSize int) (*Page, error) {
	if country == "" {
		country = DefaultCountry
	}
	return c.Fetch(ctx, "top-headlines", paging(url.Values{"country": {country}}, page, pageSize))
}

func (c *Client) CategoryHeadlines(ctx context.Context, category, country string, page, pageSize int) (*Page, error) {
	if country == "" {
		country = DefaultCountry
	}
	return c.Fetch(ctx, "top-headlines", paging(url.Values{"category": {category}, "country": {country}}, page, pageSize))
}

// Search queries the everything endpoint sorted by popularity. An empty
// query fails without contacting NewsAPI.
func (c *Client) Search(ctx context.Context, query string, page, pageSize int) (*Page, error) {
	if strings.TrimSpace(query) == "" {
		return nil, &APIError{Status: http.StatusBadRequest, Message: "Search query cannot be empty."}
	}
	return c.Fetch(ctx, "everything", paging(url.Values{"q": {query}, "sortBy": {"popularity"}}, page, pageSize))
}

func (c *Client) SourceHeadlines(ctx context.Context, sources string, page, pageSize int) (*Page, error) {
	return c.Fetch(ctx, "top-headlines", paging(url.Values{"sources": {sources}}, page, pageSize))
}

// Related queries the everything endpoint sorted by relevancy.
func (c *Client) Related(ctx context.Context, query string, pageSize int) (*Page, error) {
	if pageSize < 1 {
		pageSize = RelatedFetchSize
	}
	return c.Fetch(ctx, "everything", url.Values{
		"q":        {query},
		"sortBy":   {"relevancy"},
		"pageSize": {strconv.Itoa(pageSize)},
	})
}
