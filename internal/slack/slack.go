// Package slack delivers the classified digest to a Slack incoming
// webhook as a Block Kit message.
package slack

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/technewsbot/technews/internal/article"
	"github.com/technewsbot/technews/internal/gate"
	"github.com/technewsbot/technews/internal/metrics"
	"github.com/technewsbot/technews/internal/retry"
	"github.com/technewsbot/technews/internal/trust"
)

const (
	maxPerSection   = 5
	maxEntrySummary = 600
	requestTimeout  = 15 * time.Second
	botUsername     = "NewsBot"
	botIconEmoji    = ":newspaper:"
)

var categoryLabels = map[string]string{
	"Cloud": "クラウド",
	"AI":    "AI",
}

type Notifier struct {
	webhookURL    string
	client        *http.Client
	RetryAttempts int
	RetryDelay    time.Duration
}

func NewNotifier(webhookURL string) *Notifier {
	return &Notifier{
		webhookURL:    webhookURL,
		client:        &http.Client{Timeout: requestTimeout},
		RetryAttempts: 3,
		RetryDelay:    2 * time.Second,
	}
}

type payload struct {
	Username  string  `json:"username,omitempty"`
	IconEmoji string  `json:"icon_emoji,omitempty"`
	Text      string  `json:"text,omitempty"`
	Blocks    []block `json:"blocks,omitempty"`
}

type block struct {
	Type string `json:"type"`
	Text *text  `json:"text,omitempty"`
}

type text struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

func section(markdown string) block {
	return block{Type: "section", Text: &text{Type: "mrkdwn", Text: markdown}}
}

// SendDigest posts the digest message. The article set is grouped by
// category in the fixed display order, trust descending inside each
// section. An empty set sends nothing and is not an error.
func (n *Notifier) SendDigest(ctx context.Context, articles []article.Article) error {
	if len(articles) == 0 {
		slog.Info("no articles to deliver, skipping digest")
		return nil
	}

	blocks := []block{
		section(fmt.Sprintf("*■今日のクラウド & AI記事まとめ（%s）*", time.Now().Format("2006-01-02"))),
		{Type: "divider"},
	}

	for _, category := range digestCategories(articles) {
		items := articlesInCategory(articles, category)
		if len(items) > maxPerSection {
			items = items[:maxPerSection]
		}

		label := categoryLabels[category]
		if label == "" {
			label = category
		}
		blocks = append(blocks, section(fmt.Sprintf("*■%s関連記事*", label)))

		for i, a := range items {
			summary := sanitize(a.Summary)
			if utf8.RuneCountInString(summary) > maxEntrySummary {
				summary = string([]rune(summary)[:maxEntrySummary-3]) + "..."
			}
			entry := fmt.Sprintf("%d. %s *<%s|%s>* (信頼度: %d)\n　・%s",
				i+1, trust.Emoji(a.TrustScore), a.URL, sanitize(a.Title), a.TrustScore, summary)
			blocks = append(blocks, section(entry))
		}
		blocks = append(blocks, block{Type: "divider"})
	}

	blocks = append(blocks, section(
		"*■信頼度スコア*\n⭐⭐⭐ 10-9: 公式・企業公式\n⭐⭐ 8-7: 信頼性の高い技術メディア\n⭐ 6-5: 一般的な技術ブログ"))

	if err := n.post(ctx, payload{
		Username:  botUsername,
		IconEmoji: botIconEmoji,
		Blocks:    blocks,
	}); err != nil {
		return err
	}

	metrics.Global.IncrementNotificationsSent()
	slog.Info("digest delivered", "articles", len(articles))
	return nil
}

// SendError posts a short failure notice so a broken run is visible in
// the channel, not only in the logs.
func (n *Notifier) SendError(ctx context.Context, runErr error) error {
	return n.post(ctx, payload{
		Username:  botUsername,
		IconEmoji: botIconEmoji,
		Text:      fmt.Sprintf(":warning: ニュース配信に失敗しました: %s", sanitize(runErr.Error())),
	})
}

// SendDailySummary posts aggregate trust statistics, used by the quality
// report mode.
func (n *Notifier) SendDailySummary(ctx context.Context, articles []article.Article) error {
	if len(articles) == 0 {
		return n.post(ctx, payload{
			Username:  botUsername,
			IconEmoji: botIconEmoji,
			Text:      "本日の対象記事はありませんでした。",
		})
	}

	total := 0
	high := 0
	for _, a := range articles {
		total += a.TrustScore
		if a.TrustScore >= 7 {
			high++
		}
	}
	avg := float64(total) / float64(len(articles))

	return n.post(ctx, payload{
		Username:  botUsername,
		IconEmoji: botIconEmoji,
		Text: fmt.Sprintf("*■本日の品質レポート*\n記事数: %d\n平均信頼度: %.1f\n高信頼記事 (7以上): %d",
			len(articles), avg, high),
	})
}

// TestWebhook sends a minimal message to verify the webhook is reachable.
func (n *Notifier) TestWebhook(ctx context.Context) error {
	return n.post(ctx, payload{
		Username:  botUsername,
		IconEmoji: botIconEmoji,
		Text:      "webhook connectivity test",
	})
}

func (n *Notifier) post(ctx context.Context, p payload) error {
	body, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal slack payload: %w", err)
	}

	return retry.WithRetry(ctx, retry.Config{
		MaxAttempts: n.RetryAttempts,
		Delay:       n.RetryDelay,
		Backoff:     true,
	}, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.webhookURL, bytes.NewReader(body))
		if err != nil {
			return fmt.Errorf("build slack request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := n.client.Do(req)
		if err != nil {
			return fmt.Errorf("post to slack: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
			return fmt.Errorf("slack webhook status %d: %s", resp.StatusCode, string(respBody))
		}
		return nil
	})
}

// digestCategories returns the categories present in the set, fixed
// display order first, anything else in first-seen order.
func digestCategories(articles []article.Article) []string {
	present := make(map[string]bool, len(articles))
	var firstSeen []string
	for _, a := range articles {
		if !present[a.Category] {
			present[a.Category] = true
			firstSeen = append(firstSeen, a.Category)
		}
	}

	var out []string
	listed := make(map[string]bool)
	for _, c := range gate.CategoryOrder {
		if present[c] {
			out = append(out, c)
			listed[c] = true
		}
	}
	for _, c := range firstSeen {
		if !listed[c] {
			out = append(out, c)
		}
	}
	return out
}

func articlesInCategory(articles []article.Article, category string) []article.Article {
	var out []article.Article
	for _, a := range articles {
		if a.Category == category {
			out = append(out, a)
		}
	}
	return out
}

// sanitize escapes the characters Slack mrkdwn reserves and strips
// control characters that break Block Kit rendering.
func sanitize(s string) string {
	s = strings.ReplaceAll(s, "&", "&amp;")
	s = strings.ReplaceAll(s, "<", "&lt;")
	s = strings.ReplaceAll(s, ">", "&gt;")
	return strings.Map(func(r rune) rune {
		if r < 0x20 && r != '\n' {
			return -1
		}
		return r
	}, s)
}
