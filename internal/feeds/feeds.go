// Package feeds is the article source: it polls the configured RSS feeds,
// applies the keyword prefilter and freshness window, pulls full article
// text through the scraper, and dedupes by URL.
package feeds

import (
	"context"
	"log/slog"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/technewsbot/technews/internal/article"
	"github.com/technewsbot/technews/internal/metrics"
	"github.com/technewsbot/technews/internal/scraper"
	"github.com/technewsbot/technews/internal/storage"
	"github.com/technewsbot/technews/internal/textmatch"
)

// scrapePause spaces out full-content fetches so source sites are not
// hammered within one run.
const scrapePause = 300 * time.Millisecond

type Fetcher struct {
	cfg       *Config
	parser    *gofeed.Parser
	scraper   *scraper.Scraper
	delivered *storage.FileCache // optional cross-run dedup
	hoursBack int
}

// NewFetcher builds the article source. delivered may be nil, in which
// case no cross-run deduplication is applied.
func NewFetcher(cfg *Config, sc *scraper.Scraper, delivered *storage.FileCache, hoursBack int) *Fetcher {
	if hoursBack <= 0 {
		hoursBack = 24
	}
	return &Fetcher{
		cfg:       cfg,
		parser:    gofeed.NewParser(),
		scraper:   sc,
		delivered: delivered,
		hoursBack: hoursBack,
	}
}

// FetchArticles polls every feed and returns the deduplicated candidate
// set. A failing feed is logged and skipped; it never aborts the batch.
func (f *Fetcher) FetchArticles(ctx context.Context) []article.Article {
	cutoff := time.Now().Add(-time.Duration(f.hoursBack) * time.Hour)

	var all []article.Article
	okFeeds := 0
	for _, feedURL := range f.cfg.Feeds {
		items, err := f.fetchFeed(ctx, feedURL, cutoff)
		if err != nil {
			slog.Error("feed fetch failed, skipping", "feed", feedURL, "error", err)
			continue
		}
		okFeeds++
		slog.Info("feed fetched", "feed", feedURL, "articles", len(items))
		all = append(all, items...)
	}
	slog.Info("feed polling done", "ok", okFeeds, "total", len(f.cfg.Feeds))

	return dedupeByURL(all)
}

func (f *Fetcher) fetchFeed(ctx context.Context, feedURL string, cutoff time.Time) ([]article.Article, error) {
	feed, err := f.parser.ParseURLWithContext(feedURL, ctx)
	if err != nil {
		return nil, err
	}

	var out []article.Article
	for _, item := range feed.Items {
		metrics.Global.IncrementArticlesProcessed()

		if item.PublishedParsed != nil && item.PublishedParsed.Before(cutoff) {
			continue
		}
		if !textmatch.ContainsAny(item.Title+" "+item.Description, f.cfg.Keywords) {
			continue
		}
		if f.delivered != nil && f.delivered.IsDelivered(storage.Hash(item.Title, item.Link)) {
			metrics.Global.IncrementDuplicatesFiltered()
			slog.Debug("already delivered, skipping", "title", item.Title)
			continue
		}

		a := article.Article{
			Title:   item.Title,
			URL:     item.Link,
			Content: item.Description,
			Source:  feedURL,
			Tags:    item.Categories,
		}
		if item.PublishedParsed != nil {
			a.PublishedAt = *item.PublishedParsed
		}
		if item.Author != nil {
			a.Author = item.Author.Name
		}

		if f.scraper != nil && item.Link != "" {
			if full, err := f.scraper.ExtractContent(item.Link); err != nil {
				slog.Warn("content extraction failed, using feed description", "url", item.Link, "error", err)
			} else if full != "" {
				a.Content = full
			}
			time.Sleep(scrapePause)
		}

		out = append(out, a)
	}
	return out, nil
}

// dedupeByURL keeps the first occurrence of each URL. Articles with an
// empty URL cannot be deduplicated safely and are always kept.
func dedupeByURL(articles []article.Article) []article.Article {
	seen := make(map[string]struct{}, len(articles))
	out := make([]article.Article, 0, len(articles))
	for _, a := range articles {
		if a.URL != "" {
			if _, dup := seen[a.URL]; dup {
				metrics.Global.IncrementDuplicatesFiltered()
				continue
			}
			seen[a.URL] = struct{}{}
		}
		out = append(out, a)
	}
	return out
}
