package trust

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/technewsbot/technews/internal/article"
)

func TestScoreDeterministic(t *testing.T) {
	s := NewScorer(nil)
	a := article.Article{
		Title:   "Announcing AWS Lambda improvements",
		URL:     "https://aws.amazon.com/blogs/compute/lambda",
		Content: strings.Repeat("Lambda の実装と設定を見直すチュートリアルです。", 20),
	}

	first, firstLevel := s.Score(a)
	for i := 0; i < 10; i++ {
		score, level := s.Score(a)
		assert.Equal(t, first, score)
		assert.Equal(t, firstLevel, level)
	}
}

func TestScoreBounds(t *testing.T) {
	s := NewScorer(nil)

	cases := []article.Article{
		{},
		{Title: "x", URL: "://not a url", Content: ""},
		{Title: "記事", URL: "https://unknown.example.com/post", Content: "短い"},
		{
			Title:   "Announcing the official release",
			URL:     "https://aws.amazon.com/blogs/docs/announcing",
			Content: strings.Repeat("official documentation guide 公式 ドキュメント api sdk terraform 実装 tutorial github.com ``` ", 100),
		},
	}
	for _, a := range cases {
		score, level := s.Score(a)
		assert.GreaterOrEqual(t, score, 1)
		assert.LessOrEqual(t, score, 10)
		assert.NotEmpty(t, level)
	}
}

func TestScoreAWSLambdaArticle(t *testing.T) {
	s := NewScorer(nil)

	// 210 runes of real-looking content from an official vendor domain.
	content := "AWS Lambda の新機能を利用した実装例を紹介します。" + strings.Repeat("サーバーレス構成の設計指針を整理し、コスト面の注意点をまとめました。", 6)
	a := article.Article{
		Title:   "AWS Lambda の新機能で実装を簡素化する",
		URL:     "https://aws.amazon.com/jp/blogs/x",
		Content: content,
	}

	score, level := s.Score(a)
	assert.GreaterOrEqual(t, score, 8)
	assert.LessOrEqual(t, score, 10)
	assert.Contains(t, []string{"high", "very high"}, level)
}

func TestDomainScoreFirstMatchWins(t *testing.T) {
	s := NewScorer([]DomainTrust{
		{Domain: "blog.example.com", Score: 9},
		{Domain: "example.com", Score: 3},
	})
	assert.Equal(t, 9, s.domainScore("https://blog.example.com/post"))
	assert.Equal(t, 3, s.domainScore("https://www.example.com/post"))
}

func TestDomainScoreFallbacks(t *testing.T) {
	s := NewScorer(nil)
	assert.Equal(t, defaultDomainScore, s.domainScore("https://totally-unknown.dev/x"))
	assert.Equal(t, defaultDomainScore, s.domainScore("not a url at all"))
	assert.Equal(t, 7, s.domainScore("https://someuser.googleapis.com/x"))
}

func TestLengthScoreBuckets(t *testing.T) {
	cases := []struct {
		runes int
		want  int
	}{
		{0, 3},
		{199, 3},
		{200, 5},
		{499, 5},
		{500, 7},
		{1499, 7},
		{1500, 9},
		{2999, 9},
		{3000, 10},
	}
	for _, tc := range cases {
		content := strings.Repeat("あ", tc.runes)
		assert.Equal(t, tc.want, lengthScore(content), "runes=%d", tc.runes)
	}
}

func TestLengthScoreCountsRunesNotBytes(t *testing.T) {
	// 250 three-byte runes: 750 bytes but only 250 runes.
	content := strings.Repeat("学", 250)
	require.Equal(t, 750, len(content))
	assert.Equal(t, 5, lengthScore(content))
}

func TestLevelTiers(t *testing.T) {
	assert.Equal(t, "very high", Level(10))
	assert.Equal(t, "very high", Level(9))
	assert.Equal(t, "high", Level(8))
	assert.Equal(t, "high", Level(7))
	assert.Equal(t, "normal", Level(6))
	assert.Equal(t, "normal", Level(5))
	assert.Equal(t, "low", Level(4))
	assert.Equal(t, "low", Level(3))
	assert.Equal(t, "very low", Level(2))
	assert.Equal(t, "very low", Level(1))
}

func TestEmojiMatchesLevelTiers(t *testing.T) {
	for score := 1; score <= 10; score++ {
		switch Level(score) {
		case "very high":
			assert.Equal(t, "⭐⭐⭐", Emoji(score))
		case "high":
			assert.Equal(t, "⭐⭐", Emoji(score))
		case "normal":
			assert.Equal(t, "⭐", Emoji(score))
		default:
			assert.Equal(t, "❓", Emoji(score))
		}
	}
}

func TestQualityScoreDistinctIndicators(t *testing.T) {
	// Repeating one technical indicator does not raise the score further.
	once := qualityScore("the api is stable")
	repeated := qualityScore("api api api api api api")
	assert.Equal(t, once, repeated)
}

func TestLoadDomainTable(t *testing.T) {
	domains, err := LoadDomainTable("testdata/keywords.yaml")
	require.NoError(t, err)
	require.NotEmpty(t, domains)
	assert.Equal(t, "aws.amazon.com", domains[0].Domain)
	assert.Equal(t, 10, domains[0].Score)
}
