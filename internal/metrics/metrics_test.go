package metrics

import (
	"sync"
	"testing"
	"time"
)

func TestCountersAreConcurrencySafe(t *testing.T) {
	m := &Metrics{IsHealthy: true}

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			m.IncrementKeywordRequests()
			m.IncrementFallbackKeywords()
		}()
	}
	wg.Wait()

	stats := m.GetStats()
	if stats["keyword_requests"].(int64) != 50 {
		t.Errorf("expected 50 keyword requests, got %v", stats["keyword_requests"])
	}
	if stats["fallback_keywords"].(int64) != 50 {
		t.Errorf("expected 50 fallback keywords, got %v", stats["fallback_keywords"])
	}
}

func TestHealthTransitions(t *testing.T) {
	m := &Metrics{IsHealthy: true}

	m.SetError("newsapi down")
	if m.Healthy() {
		t.Error("expected unhealthy after SetError")
	}
	if m.GetStats()["last_error"] != "newsapi down" {
		t.Errorf("unexpected last_error: %v", m.GetStats()["last_error"])
	}

	m.SetSuccess()
	if !m.Healthy() {
		t.Error("expected healthy after SetSuccess")
	}
}

func TestRecordRequestTime(t *testing.T) {
	m := &Metrics{}
	m.RecordRequestTime(100 * time.Millisecond)
	m.RecordRequestTime(300 * time.Millisecond)

	if m.AverageRequestTime != 200*time.Millisecond {
		t.Errorf("expected 200ms average, got %v", m.AverageRequestTime)
	}
	if m.LastRequestTime != 300*time.Millisecond {
		t.Errorf("expected 300ms last, got %v", m.LastRequestTime)
	}
}
