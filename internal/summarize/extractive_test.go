package summarize

import (
	"context"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/technewsbot/technews/internal/article"
)

func TestExtractiveEmptyContent(t *testing.T) {
	e := NewExtractive()

	summary, err := e.Summarize(context.Background(), article.Article{Title: "x"})
	require.NoError(t, err)
	assert.Empty(t, summary)

	summary, err = e.Summarize(context.Background(), article.Article{Content: "   "})
	require.NoError(t, err)
	assert.Empty(t, summary)
}

func TestExtractiveShortContentPassesThrough(t *testing.T) {
	e := NewExtractive()
	content := "AWS Lambda の新機能が発表されました。設定手順も公開されています。"

	summary, err := e.Summarize(context.Background(), article.Article{Content: content})
	require.NoError(t, err)
	assert.Equal(t, content, summary)
}

func TestExtractiveCapsAt300Runes(t *testing.T) {
	e := NewExtractive()
	content := strings.Repeat("クラウドの運用コストを削減するための具体的な手法を紹介します。", 40)

	summary, err := e.Summarize(context.Background(), article.Article{Content: content})
	require.NoError(t, err)
	assert.LessOrEqual(t, utf8.RuneCountInString(summary), 300)
	assert.NotEmpty(t, summary)
}

func TestExtractiveDeterministic(t *testing.T) {
	e := NewExtractive()
	a := article.Article{
		Title: "Kubernetes 運用",
		Content: "Kubernetes クラスタの運用には監視が欠かせません。" +
			"本記事ではメトリクス収集の構成例を紹介します。" +
			"まずノードレベルの監視から始めます。" +
			"次にポッドレベルのリソース使用量を見ます。" +
			"最後にアラートルールの設計指針をまとめます。" +
			strings.Repeat("補足として運用時の注意点も記載しています。", 10),
	}

	first, err := e.Summarize(context.Background(), a)
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		again, err := e.Summarize(context.Background(), a)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestExtractivePreservesSentenceOrder(t *testing.T) {
	e := NewExtractive()

	// Distinct markers let us check the picked sentences appear in their
	// original relative order.
	var b strings.Builder
	markers := []string{"ALPHA", "BRAVO", "CHARLIE", "DELTA", "ECHO"}
	for _, m := range markers {
		b.WriteString(m + " クラウド基盤の設計と運用の考え方を整理して解説します。")
	}

	summary, err := e.Summarize(context.Background(), article.Article{Content: b.String()})
	require.NoError(t, err)

	last := -1
	for _, m := range markers {
		idx := strings.Index(summary, m)
		if idx == -1 {
			continue
		}
		assert.Greater(t, idx, last)
		last = idx
	}
}

func TestSplitSentences(t *testing.T) {
	sentences := splitSentences("一文目です。二文目です。Third sentence. 最後です")
	require.Len(t, sentences, 4)
	assert.Equal(t, "一文目です。", sentences[0])
	assert.Equal(t, "Third sentence.", sentences[2])
	assert.Equal(t, "最後です", sentences[3])
}

func TestSplitSentencesKeepsDecimalNumbers(t *testing.T) {
	sentences := splitSentences("Gemini 1.5 Flash を使います。以上です。")
	require.Len(t, sentences, 2)
	assert.Contains(t, sentences[0], "1.5")
}

func TestTruncateRunes(t *testing.T) {
	assert.Equal(t, "short", truncateRunes("short", 300))

	long := strings.Repeat("あ", 400)
	got := truncateRunes(long, 300)
	assert.Equal(t, 300, utf8.RuneCountInString(got))
	assert.True(t, strings.HasSuffix(got, "..."))
}

func TestClipPromptCutsAtSentenceBoundary(t *testing.T) {
	content := strings.Repeat("この記事ではクラウド環境の構築手順について説明します。", 400)
	clipped := clipPrompt(content, 6000)
	assert.LessOrEqual(t, utf8.RuneCountInString(clipped), 6000)
	assert.True(t, strings.HasSuffix(clipped, "。"))
}
