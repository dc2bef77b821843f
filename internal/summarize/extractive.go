package summarize

import (
	"context"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/technewsbot/technews/internal/article"
)

// Extractive is the deterministic baseline: it ranks sentences by shared
// rune-bigram frequency and emits the top three in their original order.
// It needs no network, no key, and no quota, so it is also the fallback
// for every model-backed strategy.
type Extractive struct{}

func NewExtractive() *Extractive {
	return &Extractive{}
}

func (e *Extractive) Summarize(_ context.Context, a article.Article) (string, error) {
	content := strings.TrimSpace(a.Content)
	if content == "" {
		return "", nil
	}
	if utf8.RuneCountInString(content) < minContentForExtraction {
		return truncateRunes(content, maxSummaryRunes), nil
	}

	sentences := splitSentences(content)
	if len(sentences) <= topSentences {
		return truncateRunes(content, maxSummaryRunes), nil
	}

	freq := bigramFrequencies(content)

	type ranked struct {
		index int
		score float64
	}
	scores := make([]ranked, len(sentences))
	for i, s := range sentences {
		scores[i] = ranked{index: i, score: sentenceScore(s, freq)}
	}
	sort.SliceStable(scores, func(i, j int) bool {
		return scores[i].score > scores[j].score
	})

	picked := scores[:topSentences]
	sort.Slice(picked, func(i, j int) bool {
		return picked[i].index < picked[j].index
	})

	parts := make([]string, 0, topSentences)
	for _, r := range picked {
		parts = append(parts, sentences[r.index])
	}
	summary := strings.Join(parts, " ")

	if utf8.RuneCountInString(summary) < minSummaryRunes {
		return truncateRunes(content, maxSummaryRunes), nil
	}
	return truncateRunes(summary, maxSummaryRunes), nil
}

const (
	minContentForExtraction = 200
	topSentences            = 3
)

var sentenceEnders = []string{"。", "！", "？", ". ", "! ", "? "}

func splitSentences(text string) []string {
	var sentences []string
	var b strings.Builder

	flush := func() {
		s := strings.TrimSpace(b.String())
		if s != "" {
			sentences = append(sentences, s)
		}
		b.Reset()
	}

	runes := []rune(text)
	for i := 0; i < len(runes); i++ {
		b.WriteRune(runes[i])
		switch runes[i] {
		case '。', '！', '？':
			flush()
		case '.', '!', '?':
			// ASCII enders only terminate at a following space so that
			// versions like "1.5" stay intact.
			if i+1 < len(runes) && runes[i+1] == ' ' {
				flush()
			}
		case '\n':
			flush()
		}
	}
	flush()
	return sentences
}

// bigramFrequencies counts adjacent rune pairs across the whole text.
// Bigrams work for Japanese, where word boundaries are not whitespace.
func bigramFrequencies(text string) map[string]int {
	freq := make(map[string]int)
	runes := []rune(strings.ToLower(text))
	for i := 0; i+1 < len(runes); i++ {
		if runes[i] == ' ' || runes[i+1] == ' ' {
			continue
		}
		freq[string(runes[i:i+2])]++
	}
	return freq
}

func sentenceScore(sentence string, freq map[string]int) float64 {
	runes := []rune(strings.ToLower(sentence))
	if len(runes) < 2 {
		return 0
	}
	total := 0
	for i := 0; i+1 < len(runes); i++ {
		total += freq[string(runes[i:i+2])]
	}
	// Normalize by length so long sentences do not win by volume alone.
	return float64(total) / float64(len(runes))
}
