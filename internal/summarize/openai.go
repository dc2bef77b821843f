package summarize

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/technewsbot/technews/internal/article"
	"github.com/technewsbot/technews/internal/cache"
	"github.com/technewsbot/technews/internal/metrics"
	"github.com/technewsbot/technews/internal/quota"
)

// OpenAI is the alternative model-backed strategy, behaviorally identical
// to Gemini: quota-guarded, cached, extractive fallback on any failure.
type OpenAI struct {
	client   *openai.Client
	model    string
	guard    *quota.Guard
	cache    *cache.Cache
	fallback *Extractive
}

func NewOpenAI(apiKey string, guard *quota.Guard, c *cache.Cache) *OpenAI {
	return &OpenAI{
		client:   openai.NewClient(apiKey),
		model:    openai.GPT4oMini,
		guard:    guard,
		cache:    c,
		fallback: NewExtractive(),
	}
}

func (o *OpenAI) Summarize(ctx context.Context, a article.Article) (string, error) {
	key := cache.Key(a.Title, a.Content)
	if cached, ok := o.cache.Get(key); ok {
		slog.Debug("summary cache hit", "title", a.Title)
		return cached, nil
	}

	if !o.guard.CanMakeRequest() {
		metrics.Global.IncrementQuotaDenials()
		slog.Warn("openai quota exhausted, using extractive summary",
			"title", a.Title, "used", o.guard.Used())
		metrics.Global.IncrementSummaryFallbacks()
		return o.fallback.Summarize(ctx, a)
	}

	summary, err := o.generate(ctx, a)
	o.guard.RecordRequest()
	if err != nil {
		slog.Warn("openai request failed, using extractive summary",
			"title", a.Title, "error", err)
		metrics.Global.IncrementSummaryFallbacks()
		return o.fallback.Summarize(ctx, a)
	}

	metrics.Global.IncrementSummariesGenerated()
	o.cache.Set(key, summary, summaryCacheTTL)
	return summary, nil
}

func (o *OpenAI) generate(ctx context.Context, a article.Article) (string, error) {
	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       o.model,
		Temperature: 0.3,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleUser,
				Content: buildPrompt(a),
			},
		},
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("empty response from openai")
	}

	summary := strings.TrimSpace(resp.Choices[0].Message.Content)
	if summary == "" {
		return "", fmt.Errorf("blank summary from openai")
	}
	return truncateRunes(summary, maxModelSummaryRunes), nil
}
