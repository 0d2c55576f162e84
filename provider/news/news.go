// Package news collects recent economy and currency coverage from a
// set of RSS feeds, filtered down to articles relevant to the
// Venezuelan exchange-rate picture.
package news

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/paralelo-ve/paralelo/storage/types"
)

var noopLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

// Feed is a single RSS source
type Feed struct {
	Name string
	URL  string
}

// DefaultFeeds covers the main Venezuelan economy outlets
var DefaultFeeds = []Feed{
	{Name: "Banca y Negocios", URL: "https://www.bancaynegocios.com/feed/"},
	{Name: "Finanzas Digital", URL: "https://www.finanzasdigital.com/feed/"},
	{Name: "El Nacional Economía", URL: "https://www.elnacional.com/economia/feed/"},
}

// relevanceKeywords marks an article as exchange-rate coverage when
// any of them appears in the title or summary
var relevanceKeywords = []string{
	"dólar", "dolar", "divisa", "tasa", "cambiario", "cambiaria",
	"bcv", "bolívar", "bolivar", "inflación", "inflacion",
	"usdt", "cripto", "paralelo", "devaluación", "devaluacion",
}

// maxArticleAge drops stale feed entries
const maxArticleAge = 24 * time.Hour

// maxSummaryLength keeps stored summaries headline-sized
const maxSummaryLength = 280

// Collector fetches and filters articles across the configured feeds
type Collector struct {
	parser *gofeed.Parser
	feeds  []Feed
	logger *slog.Logger
}

// NewCollector creates a new instance of the news collector
func NewCollector(feeds []Feed, options ...func(*Collector)) *Collector {
	c := &Collector{
		parser: gofeed.NewParser(),
		feeds:  feeds,
		logger: noopLogger,
	}

	for _, opt := range options {
		opt(c)
	}

	return c
}

// WithLogger sets the logger for the collector
func WithLogger(logger *slog.Logger) func(*Collector) {
	return func(c *Collector) {
		c.logger = logger
	}
}

// Collect fetches all feeds and returns the relevant recent articles,
// newest first. A feed failure is logged and skipped; the call fails
// only when every feed is unreachable
func (c *Collector) Collect(ctx context.Context) ([]*types.NewsItem, error) {
	var (
		items  []*types.NewsItem
		failed int
		cutoff = time.Now().Add(-maxArticleAge)
	)

	for _, feed := range c.feeds {
		parsed, err := c.parser.ParseURLWithContext(feed.URL, ctx)
		if err != nil {
			failed++

			c.logger.Warn("unable to fetch feed",
				"feed", feed.Name,
				"err", err,
			)

			continue
		}

		for _, entry := range parsed.Items {
			item := normalizeEntry(feed, entry)
			if item == nil {
				continue
			}

			if item.PublishedAt.Before(cutoff) {
				continue
			}

			if !isRelevant(item) {
				continue
			}

			items = append(items, item)
		}
	}

	if failed == len(c.feeds) {
		return nil, fmt.Errorf("unable to fetch any of %d feeds", failed)
	}

	sort.Slice(items, func(i, j int) bool {
		return items[i].PublishedAt.After(items[j].PublishedAt)
	})

	return items, nil
}

// normalizeEntry maps a feed entry to a news item, nil when the entry
// has no usable link or title
func normalizeEntry(feed Feed, entry *gofeed.Item) *types.NewsItem {
	if entry.Link == "" || entry.Title == "" {
		return nil
	}

	published := time.Now()
	if entry.PublishedParsed != nil {
		published = *entry.PublishedParsed
	}

	// Truncate on rune boundaries, feed text is rarely plain ASCII
	summary := strings.TrimSpace(stripTags(entry.Description))
	if runes := []rune(summary); len(runes) > maxSummaryLength {
		summary = string(runes[:maxSummaryLength])
	}

	return &types.NewsItem{
		URL:         entry.Link,
		Title:       strings.TrimSpace(entry.Title),
		Source:      feed.Name,
		Summary:     summary,
		PublishedAt: published,
	}
}

// isRelevant reports whether the article mentions any exchange-rate
// keyword in its title or summary
func isRelevant(item *types.NewsItem) bool {
	haystack := strings.ToLower(item.Title + " " + item.Summary)

	for _, keyword := range relevanceKeywords {
		if strings.Contains(haystack, keyword) {
			return true
		}
	}

	return false
}

// stripTags removes HTML markup that feeds commonly embed in
// description fields
func stripTags(value string) string {
	var (
		b      strings.Builder
		inside bool
	)

	for _, r := range value {
		switch {
		case r == '<':
			inside = true
		case r == '>':
			inside = false
		case !inside:
			b.WriteRune(r)
		}
	}

	return b.String()
}
