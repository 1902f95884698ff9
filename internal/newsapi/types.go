package newsapi

import (
	"fmt"
	"strings"
)

// Source identifies the publisher of an article. ID is null for many
// sources returned by the everything endpoint.
type Source struct {
	ID   *string `json:"id"`
	Name string  `json:"name"`
}

// Article mirrors a NewsAPI article. Nullable fields are pointers so they
// round-trip as null; use the accessors to read them.
type Article struct {
	Source      Source  `json:"source"`
	Author      *string `json:"author"`
	Title       string  `json:"title"`
	Description *string `json:"description"`
	URL         string  `json:"url"`
	URLToImage  *string `json:"urlToImage"`
	PublishedAt string  `json:"publishedAt"`
	Content     *string `json:"content"`
}

// Page is a successful response.
type Page struct {
	Articles     []Article `json:"articles"`
	TotalResults int       `json:"totalResults"`
}

// APIError is a failed response. Status is the HTTP status, or 0 when no
// response was received.
type APIError struct {
	Status  int    `json:"-"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message"`
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("newsapi %s: %s", e.Code, e.Message)
	}
	return "newsapi: " + e.Message
}

// response is the raw wire envelope.
type response struct {
	Status       string    `json:"status"`
	TotalResults int       `json:"totalResults"`
	Articles     []Article `json:"articles"`
	Code         string    `json:"code"`
	Message      string    `json:"message"`
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// StringPtr returns nil for an empty string.
func StringPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func (a Article) AuthorText() string      { return deref(a.Author) }
func (a Article) DescriptionText() string { return deref(a.Description) }
func (a Article) ImageURL() string        { return deref(a.URLToImage) }
func (a Article) ContentText() string     { return deref(a.Content) }
func (s Source) IDText() string           { return deref(s.ID) }

// Removed reports NewsAPI placeholders for articles taken down by the publisher.
func (a Article) Removed() bool {
	return strings.TrimSpace(a.Title) == "[Removed]" || a.URL == "https://removed.com"
}
