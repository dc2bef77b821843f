// Package textmatch implements the keyword matching rules shared by the
// trust scorer and the classifier: matching is case-insensitive, phrases
// and longer keywords match by substring, and short ASCII tokens (three
// bytes or fewer) match on word boundaries so that "ai" does not hit
// "said" or "api" hit "rapid".
package textmatch

import (
	"regexp"
	"strings"
	"sync"
	"unicode/utf8"
)

var (
	mu       sync.Mutex
	patterns = map[string]*regexp.Regexp{}
)

func pattern(keyword string) *regexp.Regexp {
	k := strings.ToLower(strings.TrimSpace(keyword))

	mu.Lock()
	defer mu.Unlock()
	if re, ok := patterns[k]; ok {
		return re
	}

	expr := regexp.QuoteMeta(k)
	if isShortASCIIToken(k) {
		expr = `\b` + expr + `\b`
	}
	re := regexp.MustCompile(expr)
	patterns[k] = re
	return re
}

func isShortASCIIToken(k string) bool {
	if len(k) == 0 || len(k) > 3 || strings.Contains(k, " ") {
		return false
	}
	for i := 0; i < len(k); i++ {
		if k[i] >= utf8.RuneSelf {
			return false
		}
	}
	return true
}

// Contains reports whether text contains keyword under the package rules.
// An empty keyword never matches.
func Contains(text, keyword string) bool {
	k := strings.TrimSpace(keyword)
	if k == "" {
		return false
	}
	return pattern(k).MatchString(strings.ToLower(text))
}

// ContainsAny reports whether any of the keywords is present in text.
func ContainsAny(text string, keywords []string) bool {
	lower := strings.ToLower(text)
	for _, k := range keywords {
		k = strings.TrimSpace(k)
		if k == "" {
			continue
		}
		if pattern(k).MatchString(lower) {
			return true
		}
	}
	return false
}

// CountAny returns how many of the keywords are present in text. Each
// keyword counts at most once regardless of how often it occurs.
func CountAny(text string, keywords []string) int {
	lower := strings.ToLower(text)
	n := 0
	for _, k := range keywords {
		k = strings.TrimSpace(k)
		if k == "" {
			continue
		}
		if pattern(k).MatchString(lower) {
			n++
		}
	}
	return n
}

// Indexes returns the byte offsets of every occurrence of keyword in text,
// as [start, end) pairs against the lowercased text. Byte offsets in the
// lowercased form line up with the original for ASCII input; callers that
// slice the original around an offset should use a boundary-safe slice.
func Indexes(text, keyword string) [][]int {
	k := strings.TrimSpace(keyword)
	if k == "" {
		return nil
	}
	return pattern(k).FindAllStringIndex(strings.ToLower(text), -1)
}
