package cache

import (
	"testing"
	"time"
)

func TestSetGet(t *testing.T) {
	c := New(0)
	defer c.Close()

	c.Set("k", "v", time.Minute)
	v, ok := c.Get("k")
	if !ok || v.(string) != "v" {
		t.Errorf("expected cached value, got %v %v", v, ok)
	}
}

func TestExpiredItemIsDropped(t *testing.T) {
	c := New(0)
	defer c.Close()

	c.Set("k", "v", -time.Second)
	if _, ok := c.Get("k"); ok {
		t.Error("expected expired item to miss")
	}
	if c.Len() != 0 {
		t.Errorf("expected expired item to be removed, len=%d", c.Len())
	}
}

func TestCleanupSweepsExpired(t *testing.T) {
	c := New(0)
	defer c.Close()

	c.Set("old", 1, -time.Second)
	c.Set("new", 2, time.Minute)
	c.cleanup()

	if c.Len() != 1 {
		t.Errorf("expected 1 item after cleanup, got %d", c.Len())
	}
}

func TestGenerateKey(t *testing.T) {
	a := GenerateKey("top-headlines", "country=us")
	b := GenerateKey("top-headlines", "country=us")
	c := GenerateKey("top-headlinescountry=us")
	if a != b {
		t.Error("expected stable keys")
	}
	if a == c {
		t.Error("expected part boundaries to matter")
	}
}

func TestCloseTwice(t *testing.T) {
	c := New(time.Hour)
	c.Close()
	c.Close()
}
