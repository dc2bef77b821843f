package app

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/technewsbot/technews/internal/article"
	"github.com/technewsbot/technews/internal/classify"
	"github.com/technewsbot/technews/internal/config"
	"github.com/technewsbot/technews/internal/storage"
	"github.com/technewsbot/technews/internal/summarize"
	"github.com/technewsbot/technews/internal/trust"
)

type stubSource struct {
	articles []article.Article
}

func (s *stubSource) FetchArticles(context.Context) []article.Article {
	return s.articles
}

type stubNotifier struct {
	digests   [][]article.Article
	summaries [][]article.Article
	errors    []error
	failSend  bool
}

func (s *stubNotifier) SendDigest(_ context.Context, articles []article.Article) error {
	if s.failSend {
		return errors.New("webhook down")
	}
	s.digests = append(s.digests, articles)
	return nil
}

func (s *stubNotifier) SendError(_ context.Context, err error) error {
	s.errors = append(s.errors, err)
	return nil
}

func (s *stubNotifier) SendDailySummary(_ context.Context, articles []article.Article) error {
	s.summaries = append(s.summaries, articles)
	return nil
}

func fixtureArticles() []article.Article {
	longBody := strings.Repeat("サーバーレス構成の設計指針を整理し、運用面の注意点をまとめました。", 8)
	return []article.Article{
		{
			Title:   "AWS Lambda の新機能で実装を簡素化する",
			URL:     "https://aws.amazon.com/jp/blogs/x",
			Content: "AWS Lambda の新機能を利用した実装例を紹介します。" + longBody,
			Source:  "https://aws.amazon.com/jp/blogs/news/feed/",
		},
		{
			Title:   "LLM を使った生成AIアプリケーションの構築",
			URL:     "https://cloud.google.com/blog/llm",
			Content: "GPT ベースの LLM で機械学習パイプラインを拡張する方法を解説します。" + longBody,
			Source:  "https://cloudblog.withgoogle.com/ja/rss/",
		},
		{
			Title:   "今週の料理レシピまとめ",
			URL:     "https://food.example.com/recipes",
			Content: "おすすめの献立を紹介します。",
			Source:  "https://food.example.com/feed",
		},
	}
}

func testApp(t *testing.T, src source, n notifier) *App {
	t.Helper()
	cfg := &config.Config{
		MinTrustScore:          5,
		MaxArticlesPerCategory: 10,
		SummarizerStrategy:     config.SummarizerExtractive,
		CacheTTLHours:          48,
	}
	delivered := storage.NewFileCache(filepath.Join(t.TempDir(), "delivered.json"), cfg.CacheTTLHours)
	require.NoError(t, delivered.Load())

	return &App{
		cfg:        cfg,
		source:     src,
		scorer:     trust.NewScorer(nil),
		classifier: classify.New(classify.DefaultConfig()),
		summarizer: summarize.NewExtractive(),
		notifier:   n,
		delivered:  delivered,
	}
}

func TestProcessArticles(t *testing.T) {
	a := testApp(t, nil, nil)

	out := a.processArticles(context.Background(), fixtureArticles())
	require.Len(t, out, 2)

	// Cloud section first, then AI; the off-topic article is gone.
	assert.Equal(t, "Cloud", out[0].Category)
	assert.Equal(t, "AI", out[1].Category)
	for _, art := range out {
		assert.GreaterOrEqual(t, art.TrustScore, a.cfg.MinTrustScore)
		assert.NotEmpty(t, art.TrustLevel)
		assert.NotEmpty(t, art.Summary)
	}
}

func TestProcessArticlesRespectsTrustFloor(t *testing.T) {
	a := testApp(t, nil, nil)
	a.cfg.MinTrustScore = 10

	out := a.processArticles(context.Background(), fixtureArticles())
	assert.Empty(t, out)
}

func TestRunDeliversDigest(t *testing.T) {
	n := &stubNotifier{}
	a := testApp(t, &stubSource{articles: fixtureArticles()}, n)

	assert.True(t, a.Run(context.Background()))
	require.Len(t, n.digests, 1)
	assert.Len(t, n.digests[0], 2)
	assert.Equal(t, 2, a.delivered.Len())
}

func TestRunEmptyFetchIsSuccess(t *testing.T) {
	n := &stubNotifier{}
	a := testApp(t, &stubSource{}, n)

	assert.True(t, a.Run(context.Background()))
	assert.Empty(t, n.digests)
}

func TestRunDeliveryFailure(t *testing.T) {
	n := &stubNotifier{failSend: true}
	a := testApp(t, &stubSource{articles: fixtureArticles()}, n)

	assert.False(t, a.Run(context.Background()))
	require.Len(t, n.errors, 1)
	assert.Zero(t, a.delivered.Len())
}

func TestQualityReport(t *testing.T) {
	n := &stubNotifier{}
	a := testApp(t, &stubSource{articles: fixtureArticles()}, n)

	assert.True(t, a.QualityReport(context.Background()))
	require.Len(t, n.summaries, 1)
	assert.Len(t, n.summaries[0], 3)
}
