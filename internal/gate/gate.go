// Package gate turns a scored, classified article set into the bounded,
// ranked set that is actually published.
package gate

import (
	"sort"

	"github.com/technewsbot/technews/internal/article"
)

// CategoryOrder fixes the order in which per-category partitions are
// concatenated and displayed. The notifier must render sections in this
// same order.
var CategoryOrder = []string{"Cloud", "AI"}

// Select drops articles below minTrust, partitions the rest by category,
// stable-sorts each partition by trust score descending, and keeps the
// top maxPerCategory of each. An empty result at any step propagates as
// an empty slice, never an error.
func Select(articles []article.Article, minTrust, maxPerCategory int) []article.Article {
	if maxPerCategory < 0 {
		maxPerCategory = 0
	}

	kept := make([]article.Article, 0, len(articles))
	for _, a := range articles {
		if a.TrustScore >= minTrust {
			kept = append(kept, a)
		}
	}

	partitions := make(map[string][]article.Article)
	var order []string
	for _, a := range kept {
		if _, ok := partitions[a.Category]; !ok {
			order = append(order, a.Category)
		}
		partitions[a.Category] = append(partitions[a.Category], a)
	}

	// Fixed categories first, anything else in first-seen order after.
	var categories []string
	seen := map[string]bool{}
	for _, c := range CategoryOrder {
		if _, ok := partitions[c]; ok {
			categories = append(categories, c)
			seen[c] = true
		}
	}
	for _, c := range order {
		if !seen[c] {
			categories = append(categories, c)
		}
	}

	out := make([]article.Article, 0, len(kept))
	for _, c := range categories {
		part := partitions[c]
		sort.SliceStable(part, func(i, j int) bool {
			return part[i].TrustScore > part[j].TrustScore
		})
		if len(part) > maxPerCategory {
			part = part[:maxPerCategory]
		}
		out = append(out, part...)
	}
	return out
}
