package app

import (
	"encoding/xml"
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/gorilla/feeds"

	"github.com/deusflow/newsflash/internal/newsapi"
)

// PublishXML renders articles as an RSS 2.0 document.
func PublishXML(title, link, description string, articles []newsapi.Article) ([]byte, error) {
	feed := &feeds.Feed{
		Title:       title,
		Link:        &feeds.Link{Href: link},
		Description: description,
		Author:      &feeds.Author{Name: "NewsFlash"},
		Created:     time.Now(),
	}

	var items []*feeds.Item
	for _, a := range articles {
		if a.Title == "" || a.URL == "" || a.Removed() {
			continue
		}

		item := &feeds.Item{
			Id:          a.URL,
			Title:       a.Title,
			Link:        &feeds.Link{Href: a.URL},
			Description: a.DescriptionText(),
			Content:     formatItemContent(a),
			Created:     publishedAt(a),
		}
		if author := a.AuthorText(); author != "" {
			item.Author = &feeds.Author{Name: author}
		}
		items = append(items, item)
	}
	feed.Items = items

	rssFeed := (&feeds.Rss{Feed: feed}).RssFeed()
	return xml.MarshalIndent(rssFeed.FeedXml(), "", "  ")
}

// formatItemContent builds the HTML body of one feed item.
func formatItemContent(a newsapi.Article) string {
	var b strings.Builder
	if img := a.ImageURL(); img != "" {
		fmt.Fprintf(&b, `<img src="%s" alt=""><br>`, html.EscapeString(img))
	}
	if desc := a.DescriptionText(); desc != "" {
		b.WriteString("<p>" + html.EscapeString(desc) + "</p>")
	}
	fmt.Fprintf(&b, `<p>Source: <a href="%s">%s</a></p>`, html.EscapeString(a.URL), html.EscapeString(a.Source.Name))
	return b.String()
}

func publishedAt(a newsapi.Article) time.Time {
	if t, err := time.Parse(time.RFC3339, a.PublishedAt); err == nil {
		return t
	}
	return time.Now()
}
