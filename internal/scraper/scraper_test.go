package scraper

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

const articlePage = `<!DOCTYPE html>
<html><head><title>Rover lands</title></head>
<body>
<nav><a href="/">Home</a> <a href="/world">World</a></nav>
<article>
<h1>Rover lands on Mars after seven month journey</h1>
<p>The rover touched down in Jezero crater on Thursday afternoon, mission controllers confirmed after a tense wait for the signal.</p>
<p>Engineers said the descent stage performed flawlessly and the rover had already returned its first black and white images of the surface.</p>
<p>Scientists hope the mission will find signs of ancient microbial life preserved in the sediment of the long vanished lake.</p>
<p>Subscribe to our newsletter for more space stories.</p>
</article>
<footer>All rights reserved</footer>
</body></html>`

func TestExtract(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, articlePage)
	}))
	defer srv.Close()

	text, err := New(5*time.Second).Extract(context.Background(), srv.URL+"/rover")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(text, "Jezero crater") || !strings.Contains(text, "microbial life") {
		t.Errorf("expected article paragraphs, got %q", text)
	}
	if strings.Contains(strings.ToLower(text), "newsletter") {
		t.Errorf("expected junk line to be dropped, got %q", text)
	}
}

func TestExtract_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	if _, err := New(time.Second).Extract(context.Background(), srv.URL); err == nil {
		t.Error("expected error for 403")
	}
}

func TestExtract_InvalidURL(t *testing.T) {
	if _, err := New(time.Second).Extract(context.Background(), "not a url"); err == nil {
		t.Error("expected error for invalid url")
	}
}

func TestTruncationMarker(t *testing.T) {
	content := "The rover touched down in Jezero crater… [+2381 chars]"
	if !IsTruncated(content) {
		t.Error("expected marker to be detected")
	}
	if got := TrimTruncation(content); got != "The rover touched down in Jezero crater" {
		t.Errorf("unexpected trimmed content: %q", got)
	}
	if IsTruncated("Complete text.") {
		t.Error("expected plain text not to be truncated")
	}
}

func TestLimit(t *testing.T) {
	text := strings.Repeat("a", 10) + "\n\n" + strings.Repeat("b", 10)
	if got := limit(text, 15); got != strings.Repeat("a", 10) {
		t.Errorf("expected first paragraph only, got %q", got)
	}
	if got := limit("one two three four", 9); got != "one two" {
		t.Errorf("expected word boundary cut, got %q", got)
	}
}
