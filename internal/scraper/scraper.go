// Package scraper extracts the main article text from a web page.
package scraper

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
)

// Content selectors tried in order; the first one yielding enough text
// wins.
var contentSelectors = []string{
	"article",
	".article-content",
	".entry-content",
	".post-content",
	".content",
	"main",
	".main-content",
}

const (
	minContentRunes = 200
	maxContentRunes = 2000
	userAgent       = "Mozilla/5.0 (compatible; technews-bot/1.0)"
)

type Scraper struct {
	client *http.Client
}

func New(timeout time.Duration) *Scraper {
	return &Scraper{client: &http.Client{Timeout: timeout}}
}

// ExtractContent fetches the page and returns its main text, capped at
// 2000 runes. It returns an error only for transport problems; a page
// with no extractable content yields an empty string so the caller can
// fall back to the feed description.
func (s *Scraper) ExtractContent(url string) (string, error) {
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fetch page: status %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return "", fmt.Errorf("parse html: %w", err)
	}

	for _, selector := range contentSelectors {
		sel := doc.Find(selector).First()
		if sel.Length() == 0 {
			continue
		}
		sel.Find("script, style, noscript").Remove()

		text := normalize(sel.Text())
		if utf8.RuneCountInString(text) > minContentRunes {
			return truncateRunes(text, maxContentRunes), nil
		}
	}

	slog.Debug("no extractable content", "url", url)
	return "", nil
}

func normalize(text string) string {
	return strings.Join(strings.Fields(text), " ")
}

func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
