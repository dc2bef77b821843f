package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("SLACK_WEBHOOK_URL", "https://hooks.slack.com/services/T/B/x")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 5, cfg.MinTrustScore)
	assert.Equal(t, 10, cfg.MaxArticlesPerCategory)
	assert.Equal(t, SummarizerExtractive, cfg.SummarizerStrategy)
	assert.Equal(t, 50, cfg.LLMMaxRequests)
	assert.Equal(t, 24, cfg.FetchHoursBack)
	assert.Equal(t, 30*time.Second, cfg.RequestTimeout)
	assert.Equal(t, "configs/feeds.yaml", cfg.FeedsConfigPath)
	assert.Equal(t, 48, cfg.CacheTTLHours)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("SLACK_WEBHOOK_URL", "https://hooks.slack.com/services/T/B/x")
	t.Setenv("MIN_TRUST_SCORE", "7")
	t.Setenv("MAX_ARTICLES_PER_CATEGORY", "3")
	t.Setenv("FETCH_HOURS_BACK", "48")
	t.Setenv("REQUEST_TIMEOUT_SECONDS", "10")
	t.Setenv("FEEDS_CONFIG", "/etc/technews/feeds.yaml")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 7, cfg.MinTrustScore)
	assert.Equal(t, 3, cfg.MaxArticlesPerCategory)
	assert.Equal(t, 48, cfg.FetchHoursBack)
	assert.Equal(t, 10*time.Second, cfg.RequestTimeout)
	assert.Equal(t, "/etc/technews/feeds.yaml", cfg.FeedsConfigPath)
}

func TestLoadRequiresWebhookURL(t *testing.T) {
	t.Setenv("SLACK_WEBHOOK_URL", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SLACK_WEBHOOK_URL")
}

func TestValidateTrustScoreRange(t *testing.T) {
	t.Setenv("SLACK_WEBHOOK_URL", "https://hooks.slack.com/services/T/B/x")

	for _, bad := range []string{"0", "11", "-1"} {
		t.Setenv("MIN_TRUST_SCORE", bad)
		_, err := Load()
		assert.Error(t, err, "MIN_TRUST_SCORE=%s", bad)
	}

	t.Setenv("MIN_TRUST_SCORE", "1")
	_, err := Load()
	assert.NoError(t, err)
}

func TestValidateSummarizerNeedsKey(t *testing.T) {
	t.Setenv("SLACK_WEBHOOK_URL", "https://hooks.slack.com/services/T/B/x")

	t.Setenv("SUMMARIZER", "gemini")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "GEMINI_API_KEY")

	t.Setenv("GEMINI_API_KEY", "k")
	_, err = Load()
	assert.NoError(t, err)

	t.Setenv("SUMMARIZER", "openai")
	_, err = Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "OPENAI_API_KEY")

	t.Setenv("SUMMARIZER", "nonsense")
	_, err = Load()
	assert.Error(t, err)
}
