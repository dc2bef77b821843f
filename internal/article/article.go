// Package article defines the record that flows through the pipeline.
package article

import "time"

// Article is the unit of work. It is created by the feed source, then
// enriched stage by stage: the trust scorer sets TrustScore/TrustLevel, the
// classifier sets Category/Confidence, the summarizer sets Summary. An
// annotation is never cleared once set.
//
// URL is the deduplication identity within one run. An empty URL cannot be
// deduplicated safely, so it is treated as always unique and always kept.
type Article struct {
	Title       string
	URL         string
	Content     string
	PublishedAt time.Time
	Source      string
	Author      string
	Tags        []string

	TrustScore int     // 1..10
	TrustLevel string  // derived from TrustScore, see trust.Level
	Category   string  // "Cloud", "AI"; empty until classified
	Confidence float64 // 0..1
	Summary    string
}
