package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

// Source is a NewsAPI source id with an optional RSS feed used when
// NewsAPI cannot serve it.
type Source struct {
	ID   string `yaml:"id" json:"id"`
	Name string `yaml:"name" json:"name"`
	Feed string `yaml:"feed,omitempty" json:"-"`
}

// Catalog lists what the front end offers.
// categories:
//   - business
// countries:
//   - us
// sources:
//   - id: bbc-news
//     name: BBC News
//     feed: https://...
type Catalog struct {
	Categories []string `yaml:"categories" json:"categories"`
	Countries  []string `yaml:"countries" json:"countries"`
	Sources    []Source `yaml:"sources" json:"sources"`
}

func DefaultCatalog() *Catalog {
	return &Catalog{
		Categories: []string{"business", "technology", "sports", "health", "science", "entertainment", "general"},
		Countries:  []string{"us", "gb", "de", "ca", "au", "in", "jp"},
		Sources: []Source{
			{ID: "bbc-news", Name: "BBC News", Feed: "https://feeds.bbci.co.uk/news/rss.xml"},
			{ID: "cnn", Name: "CNN", Feed: "http://rss.cnn.com/rss/edition.rss"},
			{ID: "fox-news", Name: "Fox News", Feed: "https://moxie.foxnews.com/google-publisher/latest.xml"},
			{ID: "associated-press", Name: "Associated Press"},
			{ID: "reuters", Name: "Reuters"},
			{ID: "the-verge", Name: "The Verge", Feed: "https://www.theverge.com/rss/index.xml"},
			{ID: "techcrunch", Name: "TechCrunch", Feed: "https://techcrunch.com/feed/"},
			{ID: "espn", Name: "ESPN", Feed: "https://www.espn.com/espn/rss/news"},
		},
	}
}

// LoadCatalog reads the catalog YAML. A missing file yields the defaults,
// and empty sections in the file keep their default values.
func LoadCatalog(path string) (*Catalog, error) {
	cat := DefaultCatalog()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cat, nil
		}
		return nil, err
	}

	var fromFile Catalog
	if err := yaml.Unmarshal(data, &fromFile); err != nil {
		return nil, err
	}

	if len(fromFile.Categories) > 0 {
		cat.Categories = fromFile.Categories
	}
	if len(fromFile.Countries) > 0 {
		cat.Countries = fromFile.Countries
	}
	if len(fromFile.Sources) > 0 {
		cat.Sources = fromFile.Sources
	}
	return cat, nil
}

func (c *Catalog) HasCategory(name string) bool {
	for _, v := range c.Categories {
		if v == name {
			return true
		}
	}
	return false
}

func (c *Catalog) HasCountry(code string) bool {
	for _, v := range c.Countries {
		if v == code {
			return true
		}
	}
	return false
}

func (c *Catalog) Source(id string) (Source, bool) {
	for _, s := range c.Sources {
		if s.ID == id {
			return s, true
		}
	}
	return Source{}, false
}
