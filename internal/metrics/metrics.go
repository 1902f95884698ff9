package metrics

import (
	"sync"
	"time"
)

type Metrics struct {
	mu sync.RWMutex

	// Counters
	NewsRequests         int64
	UpstreamErrors       int64
	FeedFallbacks        int64
	ResponseCacheHits    int64
	KeywordRequests      int64
	ModelKeywords        int64
	ModelKeywordFailures int64
	FallbackKeywords     int64
	SummariesGenerated   int64
	SummaryFailures      int64
	AIStoreHits          int64

	// Timings
	LastRequestTime    time.Duration
	AverageRequestTime time.Duration
	TotalRequestTime   time.Duration
	RequestCount       int64

	// Status
	LastSuccessTime time.Time
	LastErrorTime   time.Time
	LastError       string
	IsHealthy       bool
}

var Global = &Metrics{IsHealthy: true}

func (m *Metrics) add(counter *int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	*counter++
}

func (m *Metrics) IncrementNewsRequests()         { m.add(&m.NewsRequests) }
func (m *Metrics) IncrementUpstreamErrors()       { m.add(&m.UpstreamErrors) }
func (m *Metrics) IncrementFeedFallbacks()        { m.add(&m.FeedFallbacks) }
func (m *Metrics) IncrementResponseCacheHits()    { m.add(&m.ResponseCacheHits) }
func (m *Metrics) IncrementKeywordRequests()      { m.add(&m.KeywordRequests) }
func (m *Metrics) IncrementModelKeywords()        { m.add(&m.ModelKeywords) }
func (m *Metrics) IncrementModelKeywordFailures() { m.add(&m.ModelKeywordFailures) }
func (m *Metrics) IncrementFallbackKeywords()     { m.add(&m.FallbackKeywords) }
func (m *Metrics) IncrementSummariesGenerated()   { m.add(&m.SummariesGenerated) }
func (m *Metrics) IncrementSummaryFailures()      { m.add(&m.SummaryFailures) }
func (m *Metrics) IncrementAIStoreHits()          { m.add(&m.AIStoreHits) }

func (m *Metrics) RecordRequestTime(duration time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.LastRequestTime = duration
	m.TotalRequestTime += duration
	m.RequestCount++

	if m.RequestCount > 0 {
		m.AverageRequestTime = m.TotalRequestTime / time.Duration(m.RequestCount)
	}
}

// SetSuccess marks the last upstream call as successful and clears the
// unhealthy flag.
func (m *Metrics) SetSuccess() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.LastSuccessTime = time.Now()
	m.IsHealthy = true
}

func (m *Metrics) SetError(err string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.LastError = err
	m.LastErrorTime = time.Now()
	m.IsHealthy = false
}

// Healthy reports the health flag without building the whole stats map.
func (m *Metrics) Healthy() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.IsHealthy
}

func (m *Metrics) GetStats() map[string]interface{} {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return map[string]interface{}{
		"news_requests":           m.NewsRequests,
		"upstream_errors":         m.UpstreamErrors,
		"feed_fallbacks":          m.FeedFallbacks,
		"response_cache_hits":     m.ResponseCacheHits,
		"keyword_requests":        m.KeywordRequests,
		"model_keywords":          m.ModelKeywords,
		"model_keyword_failures":  m.ModelKeywordFailures,
		"fallback_keywords":       m.FallbackKeywords,
		"summaries_generated":     m.SummariesGenerated,
		"summary_failures":        m.SummaryFailures,
		"ai_store_hits":           m.AIStoreHits,
		"last_request_time_ms":    m.LastRequestTime.Milliseconds(),
		"average_request_time_ms": m.AverageRequestTime.Milliseconds(),
		"last_success_time":       m.LastSuccessTime.Format(time.RFC3339),
		"last_error_time":         m.LastErrorTime.Format(time.RFC3339),
		"last_error":              m.LastError,
		"is_healthy":              m.IsHealthy,
	}
}
