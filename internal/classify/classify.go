// Package classify implements the keyword-rule category classifier. It is
// the canonical, deterministic variant: model-backed enrichment lives
// behind the summarizer interface, never here.
package classify

import (
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/technewsbot/technews/internal/article"
	"github.com/technewsbot/technews/internal/textmatch"
)

const (
	CategoryCloud = "Cloud"
	CategoryAI    = "AI"
	CategoryOther = "Other"
)

// Category is one topical bucket. Strong lists the subset of Keywords
// whose title hits weigh triple instead of double. Indicators are the
// terms that, when found near another category's keyword hit, suppress
// that hit's contribution.
type Category struct {
	Name       string   `yaml:"name"`
	Keywords   []string `yaml:"keywords"`
	Strong     []string `yaml:"strong"`
	Indicators []string `yaml:"indicators"`
}

type Config struct {
	Categories []Category `yaml:"categories"`
	Exclusions []string   `yaml:"exclusions"`

	// MinScore is the floor below which an article is "Other" (dropped).
	// StrongScore is the level at which the AI-over-Cloud priority rule
	// engages when both categories clear it.
	MinScore    float64 `yaml:"min_score"`
	StrongScore float64 `yaml:"strong_score"`

	// SuppressionWindow is the rune radius around a keyword hit searched
	// for rival-category indicators; SuppressionFactor scales a hit whose
	// window contains one.
	SuppressionWindow int     `yaml:"suppression_window"`
	SuppressionFactor float64 `yaml:"suppression_factor"`
}

// DefaultConfig returns the reference Cloud/AI policy.
func DefaultConfig() Config {
	return Config{
		Categories: []Category{
			{
				Name: CategoryCloud,
				Keywords: []string{
					"aws", "gcp", "azure", "kubernetes", "docker", "terraform",
					"lambda", "serverless", "クラウド", "インフラ", "ec2", "s3",
					"devops", "ci/cd", "コンテナ", "cloudformation", "eks", "fargate",
				},
				Strong: []string{
					"kubernetes", "terraform", "serverless", "クラウド", "cloudformation",
				},
				Indicators: []string{"aws", "gcp", "azure", "クラウド", "cloud"},
			},
			{
				Name: CategoryAI,
				Keywords: []string{
					"ai", "人工知能", "機械学習", "machine learning", "deep learning",
					"llm", "gpt", "生成ai", "chatgpt", "gemini", "claude",
					"transformer", "ニューラルネットワーク", "rag", "fine-tuning",
					"プロンプト", "embedding",
				},
				Strong: []string{
					"llm", "生成ai", "機械学習", "machine learning", "deep learning",
				},
				Indicators: []string{"ai", "llm", "gpt", "機械学習", "生成ai"},
			},
		},
		Exclusions: []string{
			"採用", "求人", "募集要項", "hiring", "recruiting", "we are hiring",
			"webinar", "ウェビナー", "セミナー開催", "イベント開催", "meetup",
			"press release", "プレスリリース", "キャンペーン",
		},
		MinScore:          2,
		StrongScore:       6,
		SuppressionWindow: 50,
		SuppressionFactor: 0.3,
	}
}

type Classifier struct {
	cfg Config
}

// New builds a classifier, filling unset policy knobs from the defaults.
func New(cfg Config) *Classifier {
	def := DefaultConfig()
	if len(cfg.Categories) == 0 {
		cfg.Categories = def.Categories
	}
	if len(cfg.Exclusions) == 0 {
		cfg.Exclusions = def.Exclusions
	}
	if cfg.MinScore <= 0 {
		cfg.MinScore = def.MinScore
	}
	if cfg.StrongScore <= 0 {
		cfg.StrongScore = def.StrongScore
	}
	if cfg.SuppressionWindow <= 0 {
		cfg.SuppressionWindow = def.SuppressionWindow
	}
	if cfg.SuppressionFactor <= 0 {
		cfg.SuppressionFactor = def.SuppressionFactor
	}
	return &Classifier{cfg: cfg}
}

// Classify annotates each article with a category and confidence, drops
// articles that are excluded or score below the floor, and keeps at most
// one entry per distinct URL. Which duplicate survives is decided by the
// sort key (trust score desc, best category score desc); an empty URL is
// treated as always unique and never collides.
func (c *Classifier) Classify(articles []article.Article) []article.Article {
	type candidate struct {
		art   article.Article
		score float64
	}

	var candidates []candidate
	for _, a := range articles {
		category, score, confidence := c.classifyOne(a)
		if category == CategoryOther {
			continue
		}
		a.Category = category
		a.Confidence = confidence
		candidates = append(candidates, candidate{art: a, score: score})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].art.TrustScore != candidates[j].art.TrustScore {
			return candidates[i].art.TrustScore > candidates[j].art.TrustScore
		}
		return candidates[i].score > candidates[j].score
	})

	seen := make(map[string]struct{}, len(candidates))
	out := make([]article.Article, 0, len(candidates))
	for _, cand := range candidates {
		if cand.art.URL != "" {
			if _, dup := seen[cand.art.URL]; dup {
				continue
			}
			seen[cand.art.URL] = struct{}{}
		}
		out = append(out, cand.art)
	}
	return out
}

// Scores returns the raw per-category keyword scores for one article,
// used by the quality report and tests. Exclusion patterns are not
// applied here.
func (c *Classifier) Scores(a article.Article) map[string]float64 {
	title := strings.ToLower(a.Title)
	body := strings.ToLower(a.Content)

	scores := make(map[string]float64, len(c.cfg.Categories))
	for _, cat := range c.cfg.Categories {
		scores[cat.Name] = c.scoreCategory(cat, title, body)
	}
	return scores
}

func (c *Classifier) classifyOne(a article.Article) (string, float64, float64) {
	title := strings.ToLower(a.Title)
	body := strings.ToLower(a.Content)

	if textmatch.ContainsAny(title+"\n"+body, c.cfg.Exclusions) {
		return CategoryOther, 0, 0
	}

	best, second := "", 0.0
	bestScore := 0.0
	scores := make(map[string]float64, len(c.cfg.Categories))
	for _, cat := range c.cfg.Categories {
		s := c.scoreCategory(cat, title, body)
		scores[cat.Name] = s
		// Strictly greater, so ties resolve to the first configured
		// category before the priority rule below is applied.
		if best == "" || s > bestScore {
			if best != "" && bestScore > second {
				second = bestScore
			}
			best, bestScore = cat.Name, s
		} else if s > second {
			second = s
		}
	}

	if best == "" || bestScore < c.cfg.MinScore {
		return CategoryOther, 0, 0
	}

	// Hybrid cloud-AI stories: when both clear the strong threshold the
	// AI label wins by documented policy, not by score accident.
	if scores[CategoryAI] >= c.cfg.StrongScore && scores[CategoryCloud] >= c.cfg.StrongScore {
		best = CategoryAI
		bestScore = scores[CategoryAI]
		second = scores[CategoryCloud]
		for name, s := range scores {
			if name != CategoryAI && name != CategoryCloud && s > second {
				second = s
			}
		}
	}

	confidence := 1.0
	if len(c.cfg.Categories) >= 2 {
		confidence = (bestScore - second) / maxFloat(bestScore, 1)
		if confidence < 0 {
			confidence = 0
		}
		if confidence > 1 {
			confidence = 1
		}
	}
	return best, bestScore, confidence
}

// scoreCategory sums weighted keyword hits. Title hits count double
// (triple for strong-signal keywords); body hits count once, scaled down
// when a rival category's indicator term sits within the suppression
// window around the hit.
func (c *Classifier) scoreCategory(cat Category, title, body string) float64 {
	strong := make(map[string]struct{}, len(cat.Strong))
	for _, k := range cat.Strong {
		strong[strings.ToLower(k)] = struct{}{}
	}

	var score float64
	for _, kw := range cat.Keywords {
		titleWeight := 2.0
		if _, ok := strong[strings.ToLower(kw)]; ok {
			titleWeight = 3.0
		}

		score += float64(len(textmatch.Indexes(title, kw))) * titleWeight

		for _, pos := range textmatch.Indexes(body, kw) {
			hit := 1.0
			if c.nearRivalIndicator(cat.Name, body, pos[0], pos[1]) {
				hit *= c.cfg.SuppressionFactor
			}
			score += hit
		}
	}
	return score
}

func (c *Classifier) nearRivalIndicator(categoryName, body string, start, end int) bool {
	win := runeWindow(body, start, end, c.cfg.SuppressionWindow)
	for _, other := range c.cfg.Categories {
		if other.Name == categoryName {
			continue
		}
		if textmatch.ContainsAny(win, other.Indicators) {
			return true
		}
	}
	return false
}

// runeWindow widens the byte span [start,end) by radius runes on each
// side, staying on rune boundaries.
func runeWindow(text string, start, end, radius int) string {
	if start < 0 {
		start = 0
	}
	if end > len(text) {
		end = len(text)
	}
	s := start
	for i := 0; i < radius && s > 0; i++ {
		_, size := utf8.DecodeLastRuneInString(text[:s])
		if size == 0 {
			break
		}
		s -= size
	}
	e := end
	for i := 0; i < radius && e < len(text); i++ {
		_, size := utf8.DecodeRuneInString(text[e:])
		if size == 0 {
			break
		}
		e += size
	}
	return text[s:e]
}

func maxFloat(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
