// Package trust assigns every article a reproducible trust score in
// [1,10] summarizing source reliability and content quality.
package trust

import (
	"math"
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/technewsbot/technews/internal/article"
	"github.com/technewsbot/technews/internal/textmatch"
)

// DomainTrust ranks one known host. The table is ordered: the first entry
// whose domain is a substring of the article's host wins, so overlapping
// entries must be listed most-specific first.
type DomainTrust struct {
	Domain string `yaml:"domain"`
	Score  int    `yaml:"score"`
}

// Sub-score weights. Domain reputation dominates; length matters least.
const (
	weightDomain    = 0.40
	weightQuality   = 0.20
	weightTechnical = 0.20
	weightOfficial  = 0.10
	weightLength    = 0.10
)

const defaultDomainScore = 5

func defaultDomainTable() []DomainTrust {
	return []DomainTrust{
		// Official docs and vendor blogs
		{"aws.amazon.com", 10},
		{"cloud.google.com", 10},
		{"azure.microsoft.com", 10},
		{"kubernetes.io", 10},
		{"docker.com", 9},
		{"openai.com", 10},
		{"ai.googleblog.com", 10},
		{"blog.research.google", 10},

		// Large-company engineering blogs
		{"dev.classmethod.jp", 9},
		{"tech.mercari.com", 9},
		{"engineering.linecorp.com", 9},
		{"techblog.yahoo.co.jp", 9},
		{"developers.cyberagent.co.jp", 9},
		{"tech.recruit-mp.co.jp", 9},
		{"blog.cloudflare.com", 9},

		// Tech media
		{"zenn.dev", 7},
		{"qiita.com", 6},
		{"dev.to", 6},
		{"medium.com", 5},
		{"hackernoon.com", 6},
		{"towards-ai.net", 6},
		{"towardsdatascience.com", 7},

		// Personal hosting
		{"github.io", 5},
		{"herokuapp.com", 4},
		{"netlify.app", 4},
		{"vercel.app", 4},
	}
}

var genericTrustedSuffixes = []string{"github.io", "googleapis.com", "microsoft.com"}

var officialDomains = []string{
	"aws.amazon.com", "cloud.google.com", "azure.microsoft.com",
	"kubernetes.io", "docker.com", "openai.com",
}

var authorIndicators = []string{
	"author", "by", "著者", "執筆者", "written by", "posted by",
}

var technicalIndicators = []string{
	"github", "api", "sdk", "terraform", "yaml", "json", "code",
	"implementation", "実装", "サンプル", "example", "tutorial",
}

var reliabilityIndicators = []string{
	"official", "documentation", "guide", "best practices",
	"公式", "ドキュメント", "ガイド", "ベストプラクティス",
}

// Scorer computes trust scores. Zero-value is not usable; construct with
// NewScorer.
type Scorer struct {
	domains []DomainTrust
}

// NewScorer builds a Scorer. A nil or empty table selects the built-in
// domain ranking.
func NewScorer(table []DomainTrust) *Scorer {
	if len(table) == 0 {
		table = defaultDomainTable()
	}
	return &Scorer{domains: table}
}

// DomainTable exposes the active ranking, mainly for health checks.
func (s *Scorer) DomainTable() []DomainTrust { return s.domains }

// Score returns the trust score in [1,10] and its level label. It is a
// pure function of URL, title, and content: malformed URLs and empty
// content degrade to neutral sub-scores, never to an error.
func (s *Scorer) Score(a article.Article) (int, string) {
	title := strings.ToLower(a.Title)
	content := strings.ToLower(a.Content)

	total := float64(s.domainScore(a.URL))*weightDomain +
		float64(qualityScore(content))*weightQuality +
		float64(technicalDepthScore(content))*weightTechnical +
		float64(officialScore(title, a.URL))*weightOfficial +
		float64(lengthScore(a.Content))*weightLength

	score := int(math.Round(total))
	if score < 1 {
		score = 1
	}
	if score > 10 {
		score = 10
	}
	return score, Level(score)
}

func (s *Scorer) domainScore(rawURL string) int {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return defaultDomainScore
	}
	host := strings.ToLower(u.Host)

	for _, d := range s.domains {
		if strings.Contains(host, d.Domain) {
			return d.Score
		}
	}
	for _, suffix := range genericTrustedSuffixes {
		if strings.Contains(host, suffix) {
			return 7
		}
	}
	return defaultDomainScore
}

func qualityScore(content string) int {
	score := 5

	if textmatch.ContainsAny(content, authorIndicators) {
		score++
	}
	score += min(2, textmatch.CountAny(content, technicalIndicators)/2)
	score += min(2, textmatch.CountAny(content, reliabilityIndicators))

	return min(10, score)
}

func technicalDepthScore(content string) int {
	score := 5

	if strings.Contains(content, "```") || strings.Contains(content, "<code>") ||
		strings.Contains(content, "github.com") {
		score += 2
	}
	if textmatch.ContainsAny(content, []string{"api", "sdk", "cli", "terraform"}) {
		score++
	}
	if textmatch.ContainsAny(content, []string{"implementation", "実装", "configure", "設定"}) {
		score++
	}
	if textmatch.ContainsAny(content, []string{"tutorial", "hands-on", "step-by-step", "ハンズオン"}) {
		score++
	}

	return min(10, score)
}

func officialScore(title, rawURL string) int {
	score := 5

	lowerURL := strings.ToLower(rawURL)
	if u, err := url.Parse(rawURL); err == nil {
		host := strings.ToLower(u.Host)
		for _, od := range officialDomains {
			if strings.Contains(host, od) {
				score += 3
				break
			}
		}
	}
	if strings.Contains(lowerURL, "blog") || strings.Contains(lowerURL, "docs") ||
		strings.Contains(lowerURL, "documentation") {
		score++
	}
	if textmatch.ContainsAny(title, []string{"announcing", "release", "リリース", "発表"}) {
		score++
	}

	return min(10, score)
}

// lengthScore buckets the raw content length in runes. Boundaries are
// lower-exclusive: exactly 200 runes is not "< 200" and lands in the next
// bucket up.
func lengthScore(content string) int {
	length := utf8.RuneCountInString(content)

	switch {
	case length < 200:
		return 3
	case length < 500:
		return 5
	case length < 1500:
		return 7
	case length < 3000:
		return 9
	default:
		return 10
	}
}

// Level maps a trust score to its display label. This is the single
// mapping used everywhere trust is surfaced, including the notifier emoji.
func Level(score int) string {
	switch {
	case score >= 9:
		return "very high"
	case score >= 7:
		return "high"
	case score >= 5:
		return "normal"
	case score >= 3:
		return "low"
	default:
		return "very low"
	}
}

// Emoji maps a trust score to the digest star rating, on the same tiers
// as Level.
func Emoji(score int) string {
	switch {
	case score >= 9:
		return "⭐⭐⭐"
	case score >= 7:
		return "⭐⭐"
	case score >= 5:
		return "⭐"
	default:
		return "❓"
	}
}
