package rss

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

const sampleFeed = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0" xmlns:dc="http://purl.org/dc/elements/1.1/">
<channel>
  <title>Example Wire</title>
  <link>https://wire.example</link>
  <description>Example</description>
  <item>
    <title>Rover lands on Mars</title>
    <link>https://wire.example/rover</link>
    <description>&lt;p&gt;The &lt;b&gt;rover&lt;/b&gt; touched down.&lt;/p&gt;</description>
    <dc:creator>Jane Reporter</dc:creator>
    <pubDate>Wed, 01 May 2024 10:00:00 GMT</pubDate>
    <enclosure url="https://wire.example/rover.jpg" type="image/jpeg" length="100"/>
  </item>
  <item>
    <title></title>
    <link>https://wire.example/untitled</link>
  </item>
  <item>
    <title>Markets close higher</title>
    <link>https://wire.example/markets</link>
  </item>
</channel>
</rss>`

func TestFetchArticles(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		fmt.Fprint(w, sampleFeed)
	}))
	defer srv.Close()

	f := NewFetcher(5 * time.Second)
	articles, err := f.FetchArticles(context.Background(), srv.URL, "wire", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(articles) != 2 {
		t.Fatalf("expected 2 articles (untitled skipped), got %d", len(articles))
	}

	a := articles[0]
	if a.Title != "Rover lands on Mars" || a.URL != "https://wire.example/rover" {
		t.Errorf("unexpected article: %+v", a)
	}
	if a.Source.Name != "Example Wire" || a.Source.IDText() != "wire" {
		t.Errorf("unexpected source: %+v", a.Source)
	}
	if a.DescriptionText() != "The rover touched down." {
		t.Errorf("expected stripped description, got %q", a.DescriptionText())
	}
	if a.AuthorText() != "Jane Reporter" {
		t.Errorf("unexpected author: %q", a.AuthorText())
	}
	if a.ImageURL() != "https://wire.example/rover.jpg" {
		t.Errorf("unexpected image: %q", a.ImageURL())
	}
	if a.PublishedAt != "2024-05-01T10:00:00Z" {
		t.Errorf("unexpected publishedAt: %q", a.PublishedAt)
	}
	if articles[1].Description != nil {
		t.Error("expected missing description to stay null")
	}
}

func TestFetchArticles_BadFeed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "not a feed")
	}))
	defer srv.Close()

	if _, err := NewFetcher(time.Second).FetchArticles(context.Background(), srv.URL, "x", "X"); err == nil {
		t.Error("expected parse error")
	}
}

func TestStripHTML(t *testing.T) {
	tests := map[string]string{
		"plain   text\n here":       "plain text here",
		"<p>Hello <i>world</i></p>": "Hello world",
		"Fish &amp; chips":          "Fish & chips",
		"":                          "",
	}
	for in, want := range tests {
		if got := StripHTML(in); got != want {
			t.Errorf("StripHTML(%q) = %q, want %q", in, got, want)
		}
	}
}
