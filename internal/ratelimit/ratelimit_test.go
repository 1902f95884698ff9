package ratelimit

import (
	"errors"
	"testing"
	"time"
)

func TestProviderLimit(t *testing.T) {
	rl := NewAIRateLimiter(0)
	rl.SetLimit("gemini", 2)

	for i := 0; i < 2; i++ {
		if err := rl.Use("gemini"); err != nil {
			t.Fatalf("call %d: unexpected error: %v", i, err)
		}
	}
	err := rl.Use("gemini")
	if !errors.Is(err, ErrQuotaExceeded) {
		t.Errorf("expected ErrQuotaExceeded, got %v", err)
	}
	if !rl.CanUse("openai") {
		t.Error("expected other provider to be unaffected")
	}
}

func TestTotalLimit(t *testing.T) {
	rl := NewAIRateLimiter(1)
	if err := rl.Use("openai"); err != nil {
		t.Fatal(err)
	}
	if rl.CanUse("gemini") {
		t.Error("expected total cap to block every provider")
	}
}

func TestUnlimited(t *testing.T) {
	rl := NewAIRateLimiter(0)
	for i := 0; i < 100; i++ {
		if err := rl.Use("gemini"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
}

func TestDailyReset(t *testing.T) {
	now := time.Now()
	rl := NewAIRateLimiter(1)
	rl.now = func() time.Time { return now }

	if err := rl.Use("gemini"); err != nil {
		t.Fatal(err)
	}
	if rl.CanUse("gemini") {
		t.Fatal("expected quota to be spent")
	}

	now = now.Add(25 * time.Hour)
	if !rl.CanUse("gemini") {
		t.Error("expected counters to reset after a day")
	}
	if got := rl.GetStats()["total_used"]; got != 0 {
		t.Errorf("expected total_used=0 after reset, got %v", got)
	}
}
