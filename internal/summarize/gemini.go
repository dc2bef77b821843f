package summarize

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/technewsbot/technews/internal/article"
	"github.com/technewsbot/technews/internal/cache"
	"github.com/technewsbot/technews/internal/metrics"
	"github.com/technewsbot/technews/internal/quota"
)

const (
	geminiModel     = "gemini-1.5-flash"
	summaryCacheTTL = 24 * time.Hour
)

// Gemini summarizes through the Gemini API. Every call is guarded by the
// request quota and memoized by article content, and any failure falls
// back to the extractive baseline so the pipeline never loses an article
// to a summarizer problem.
type Gemini struct {
	client   *genai.Client
	model    *genai.GenerativeModel
	guard    *quota.Guard
	cache    *cache.Cache
	fallback *Extractive
}

func NewGemini(ctx context.Context, apiKey string, guard *quota.Guard, c *cache.Cache) (*Gemini, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}

	model := client.GenerativeModel(geminiModel)
	model.SetTemperature(0.3)

	return &Gemini{
		client:   client,
		model:    model,
		guard:    guard,
		cache:    c,
		fallback: NewExtractive(),
	}, nil
}

func (g *Gemini) Close() error {
	return g.client.Close()
}

func (g *Gemini) Summarize(ctx context.Context, a article.Article) (string, error) {
	key := cache.Key(a.Title, a.Content)
	if cached, ok := g.cache.Get(key); ok {
		slog.Debug("summary cache hit", "title", a.Title)
		return cached, nil
	}

	if !g.guard.CanMakeRequest() {
		metrics.Global.IncrementQuotaDenials()
		slog.Warn("gemini quota exhausted, using extractive summary",
			"title", a.Title, "used", g.guard.Used())
		metrics.Global.IncrementSummaryFallbacks()
		return g.fallback.Summarize(ctx, a)
	}

	summary, err := g.generate(ctx, a)
	g.guard.RecordRequest()
	if err != nil {
		slog.Warn("gemini request failed, using extractive summary",
			"title", a.Title, "error", err)
		metrics.Global.IncrementSummaryFallbacks()
		return g.fallback.Summarize(ctx, a)
	}

	metrics.Global.IncrementSummariesGenerated()
	g.cache.Set(key, summary, summaryCacheTTL)
	return summary, nil
}

func (g *Gemini) generate(ctx context.Context, a article.Article) (string, error) {
	resp, err := g.model.GenerateContent(ctx, genai.Text(buildPrompt(a)))
	if err != nil {
		return "", err
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("empty response from gemini")
	}

	summary := strings.TrimSpace(fmt.Sprintf("%v", resp.Candidates[0].Content.Parts[0]))
	if summary == "" {
		return "", fmt.Errorf("blank summary from gemini")
	}
	return truncateRunes(summary, maxModelSummaryRunes), nil
}
