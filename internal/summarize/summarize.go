// Package summarize produces short article summaries. Strategies are
// interchangeable behind the Summarizer interface: the deterministic
// extractive strategy is the canonical baseline, and the model-backed
// strategies (Gemini, OpenAI) layer on top of it, always falling back to
// it on quota exhaustion or API failure.
package summarize

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/technewsbot/technews/internal/article"
)

// Target summary sizes in runes. maxSummaryRunes is the extractive cap;
// model output is allowed up to maxModelSummaryRunes before truncation.
const (
	maxSummaryRunes      = 300
	maxModelSummaryRunes = 500
	minSummaryRunes      = 50
)

// Summarizer adds a summary for one article without mutating any
// existing field.
type Summarizer interface {
	Summarize(ctx context.Context, a article.Article) (string, error)
}

// Closer is implemented by strategies holding client connections.
type Closer interface {
	Close() error
}

func truncateRunes(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit-3]) + "..."
}

// clipPrompt bounds the content passed to a model, preferring to cut at a
// sentence boundary.
func clipPrompt(content string, limit int) string {
	content = strings.Join(strings.Fields(content), " ")
	if utf8.RuneCountInString(content) <= limit {
		return content
	}
	runes := []rune(content)
	clipped := string(runes[:limit])
	for _, sep := range []string{"。", ". "} {
		if idx := strings.LastIndex(clipped, sep); idx > limit/4 {
			return clipped[:idx+len(sep)]
		}
	}
	return clipped
}

func buildPrompt(a article.Article) string {
	return fmt.Sprintf(
		"以下の技術記事を日本語で3文以内、300文字以内に要約してください。要約本文のみを出力してください。\n\nタイトル: %s\n\n本文:\n%s",
		a.Title, clipPrompt(a.Content, 6000))
}
