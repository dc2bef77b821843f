// Package app wires the pipeline together and runs it end to end:
// fetch, score, classify, gate, summarize, deliver.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"time"

	"github.com/technewsbot/technews/internal/article"
	"github.com/technewsbot/technews/internal/cache"
	"github.com/technewsbot/technews/internal/classify"
	"github.com/technewsbot/technews/internal/config"
	"github.com/technewsbot/technews/internal/feeds"
	"github.com/technewsbot/technews/internal/gate"
	"github.com/technewsbot/technews/internal/metrics"
	"github.com/technewsbot/technews/internal/quota"
	"github.com/technewsbot/technews/internal/scraper"
	"github.com/technewsbot/technews/internal/slack"
	"github.com/technewsbot/technews/internal/storage"
	"github.com/technewsbot/technews/internal/summarize"
	"github.com/technewsbot/technews/internal/trust"
)

// source yields candidate articles. Satisfied by feeds.Fetcher; swapped
// for a fixture in tests.
type source interface {
	FetchArticles(ctx context.Context) []article.Article
}

// notifier is the delivery side. Satisfied by slack.Notifier.
type notifier interface {
	SendDigest(ctx context.Context, articles []article.Article) error
	SendError(ctx context.Context, runErr error) error
	SendDailySummary(ctx context.Context, articles []article.Article) error
}

type App struct {
	cfg        *config.Config
	source     source
	scorer     *trust.Scorer
	classifier *classify.Classifier
	summarizer summarize.Summarizer
	notifier   notifier
	delivered  *storage.FileCache
}

// New builds the production pipeline from configuration. Config files
// that are missing fall back to the built-in policy with a warning;
// a file that exists but cannot be parsed is a startup error.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	delivered := storage.NewFileCache(cfg.CacheFilePath, cfg.CacheTTLHours)
	if err := delivered.Load(); err != nil {
		slog.Warn("delivered cache unreadable, starting empty", "path", cfg.CacheFilePath, "error", err)
	}

	feedCfg, err := feeds.LoadConfig(cfg.FeedsConfigPath)
	if err != nil {
		return nil, fmt.Errorf("load feeds config: %w", err)
	}

	scorer, classifier, err := loadPolicy(cfg.KeywordsConfigPath)
	if err != nil {
		return nil, err
	}

	summarizer, err := buildSummarizer(ctx, cfg)
	if err != nil {
		return nil, err
	}

	sc := scraper.New(cfg.RequestTimeout)
	fetcher := feeds.NewFetcher(feedCfg, sc, delivered, cfg.FetchHoursBack)

	slackNotifier := slack.NewNotifier(cfg.SlackWebhookURL)
	slackNotifier.RetryAttempts = cfg.RetryAttempts
	slackNotifier.RetryDelay = cfg.RetryDelay

	return &App{
		cfg:        cfg,
		source:     fetcher,
		scorer:     scorer,
		classifier: classifier,
		summarizer: summarizer,
		notifier:   slackNotifier,
		delivered:  delivered,
	}, nil
}

// loadPolicy reads the scoring and classification policy from the
// keywords config file, falling back to the built-in defaults when the
// file does not exist.
func loadPolicy(path string) (*trust.Scorer, *classify.Classifier, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		slog.Warn("keywords config not found, using built-in policy", "path", path)
		return trust.NewScorer(nil), classify.New(classify.DefaultConfig()), nil
	}

	domains, err := trust.LoadDomainTable(path)
	if err != nil {
		return nil, nil, fmt.Errorf("load domain table: %w", err)
	}
	classifyCfg, err := classify.LoadConfig(path)
	if err != nil {
		return nil, nil, fmt.Errorf("load classifier config: %w", err)
	}
	return trust.NewScorer(domains), classify.New(classifyCfg), nil
}

func buildSummarizer(ctx context.Context, cfg *config.Config) (summarize.Summarizer, error) {
	switch cfg.SummarizerStrategy {
	case config.SummarizerGemini:
		guard := quota.NewGuard(cfg.LLMMaxRequests)
		g, err := summarize.NewGemini(ctx, cfg.GeminiAPIKey, guard, cache.New())
		if err != nil {
			return nil, fmt.Errorf("build gemini summarizer: %w", err)
		}
		return g, nil
	case config.SummarizerOpenAI:
		guard := quota.NewGuard(cfg.LLMMaxRequests)
		return summarize.NewOpenAI(cfg.OpenAIAPIKey, guard, cache.New()), nil
	default:
		return summarize.NewExtractive(), nil
	}
}

// Run executes one full pipeline pass. It returns false only when the
// digest could not be delivered; an empty result at any stage is a
// successful no-op run.
func (a *App) Run(ctx context.Context) bool {
	started := time.Now()
	slog.Info("pipeline starting",
		"min_trust", a.cfg.MinTrustScore,
		"max_per_category", a.cfg.MaxArticlesPerCategory,
		"summarizer", a.cfg.SummarizerStrategy)

	fetched := a.source.FetchArticles(ctx)
	if len(fetched) == 0 {
		slog.Info("no fresh articles found")
		metrics.Global.SetLastRun()
		return true
	}

	selected := a.processArticles(ctx, fetched)
	if len(selected) == 0 {
		slog.Info("no articles passed quality gates")
		metrics.Global.SetLastRun()
		return true
	}

	a.logTrustAnalysis(selected)

	if err := a.notifier.SendDigest(ctx, selected); err != nil {
		slog.Error("digest delivery failed", "error", err)
		metrics.Global.SetError(err.Error())
		if nerr := a.notifier.SendError(ctx, err); nerr != nil {
			slog.Error("failure notice delivery failed", "error", nerr)
		}
		return false
	}

	for _, art := range selected {
		a.delivered.MarkDelivered(storage.Hash(art.Title, art.URL), art.Title, art.URL, art.Category, art.Source)
	}
	a.delivered.Cleanup()
	if err := a.delivered.Save(); err != nil {
		slog.Warn("delivered cache save failed", "error", err)
	}

	metrics.Global.RecordProcessingTime(time.Since(started))
	metrics.Global.SetLastRun()
	slog.Info("pipeline finished", "delivered", len(selected), "elapsed", time.Since(started))
	return true
}

// processArticles runs the scoring, classification, gating and
// summarization stages over an already-fetched candidate set.
func (a *App) processArticles(ctx context.Context, fetched []article.Article) []article.Article {
	scored := make([]article.Article, 0, len(fetched))
	for _, art := range fetched {
		art.TrustScore, art.TrustLevel = a.scorer.Score(art)
		scored = append(scored, art)
	}
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].TrustScore > scored[j].TrustScore
	})

	kept := scored[:0]
	for _, art := range scored {
		if art.TrustScore < a.cfg.MinTrustScore {
			metrics.Global.IncrementArticlesExcluded()
			slog.Debug("excluded by trust score",
				"title", art.Title, "score", art.TrustScore, "min", a.cfg.MinTrustScore)
			continue
		}
		kept = append(kept, art)
	}
	slog.Info("trust filter applied", "kept", len(kept), "fetched", len(fetched))

	classified := a.classifier.Classify(kept)
	slog.Info("classification done", "classified", len(classified))

	selected := gate.Select(classified, a.cfg.MinTrustScore, a.cfg.MaxArticlesPerCategory)
	slog.Info("quality gate applied", "selected", len(selected))

	for i := range selected {
		summary, err := a.summarizer.Summarize(ctx, selected[i])
		if err != nil {
			slog.Warn("summarization failed, using lead text", "title", selected[i].Title, "error", err)
			metrics.Global.IncrementSummaryFallbacks()
			summary, _ = summarize.NewExtractive().Summarize(ctx, selected[i])
		}
		selected[i].Summary = summary
	}
	return selected
}

func (a *App) logTrustAnalysis(articles []article.Article) {
	byLevel := make(map[string]int)
	total := 0
	for _, art := range articles {
		byLevel[art.TrustLevel]++
		total += art.TrustScore
	}
	slog.Info("trust analysis",
		"articles", len(articles),
		"average", float64(total)/float64(len(articles)),
		"by_level", byLevel)
}

// HealthCheck verifies the pieces a scheduled run depends on without
// touching the network.
func (a *App) HealthCheck() bool {
	healthy := true

	if _, err := os.Stat(a.cfg.FeedsConfigPath); err != nil {
		slog.Error("feeds config missing", "path", a.cfg.FeedsConfigPath)
		healthy = false
	}
	if len(a.scorer.DomainTable()) == 0 {
		slog.Error("domain trust table is empty")
		healthy = false
	}
	if healthy {
		slog.Info("health check passed")
	}
	return healthy
}

// QualityReport fetches and scores the current candidate set and posts
// aggregate statistics instead of a digest.
func (a *App) QualityReport(ctx context.Context) bool {
	fetched := a.source.FetchArticles(ctx)

	scored := make([]article.Article, 0, len(fetched))
	bySource := make(map[string][]int)
	for _, art := range fetched {
		art.TrustScore, art.TrustLevel = a.scorer.Score(art)
		scored = append(scored, art)
		bySource[art.Source] = append(bySource[art.Source], art.TrustScore)
	}

	for src, scores := range bySource {
		total := 0
		for _, s := range scores {
			total += s
		}
		slog.Info("source quality",
			"source", src,
			"articles", len(scores),
			"average_trust", float64(total)/float64(len(scores)))
	}

	if err := a.notifier.SendDailySummary(ctx, scored); err != nil {
		slog.Error("quality report delivery failed", "error", err)
		return false
	}
	return true
}

// Close releases summarizer client connections, if any.
func (a *App) Close() {
	if c, ok := a.summarizer.(summarize.Closer); ok {
		if err := c.Close(); err != nil {
			slog.Warn("summarizer close failed", "error", err)
		}
	}
}
