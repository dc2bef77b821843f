// Package storage keeps a small JSON file of already-delivered articles so
// scheduled reruns do not post the same story twice. This is source-side,
// cross-run deduplication; within one run the classifier dedupes by URL.
package storage

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"strings"
	"sync"
	"time"
)

// DeliveredItem is one article that was already posted to the webhook.
type DeliveredItem struct {
	Hash     string    `json:"hash"`
	Title    string    `json:"title"`
	URL      string    `json:"url"`
	Category string    `json:"category"`
	Source   string    `json:"source"`
	SentAt   time.Time `json:"sent_at"`
}

// FileCache manages delivered items in a JSON file with a TTL.
type FileCache struct {
	filePath string
	ttl      time.Duration
	items    map[string]DeliveredItem
	mu       sync.RWMutex
}

func NewFileCache(filePath string, ttlHours int) *FileCache {
	return &FileCache{
		filePath: filePath,
		ttl:      time.Duration(ttlHours) * time.Hour,
		items:    make(map[string]DeliveredItem),
	}
}

// Load reads the cache file, dropping entries past their TTL. A missing
// file is not an error; the cache starts empty.
func (fc *FileCache) Load() error {
	fc.mu.Lock()
	defer fc.mu.Unlock()

	data, err := os.ReadFile(fc.filePath)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read cache file: %w", err)
	}
	if len(data) == 0 {
		return nil
	}

	var items []DeliveredItem
	if err := json.Unmarshal(data, &items); err != nil {
		return fmt.Errorf("unmarshal cache: %w", err)
	}

	cutoff := time.Now().Add(-fc.ttl)
	for _, item := range items {
		if item.SentAt.After(cutoff) {
			fc.items[item.Hash] = item
		}
	}
	return nil
}

// Save writes the current cache back to disk.
func (fc *FileCache) Save() error {
	fc.mu.RLock()
	items := make([]DeliveredItem, 0, len(fc.items))
	for _, item := range fc.items {
		items = append(items, item)
	}
	fc.mu.RUnlock()

	data, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal cache: %w", err)
	}
	if err := os.WriteFile(fc.filePath, data, 0o644); err != nil {
		return fmt.Errorf("write cache file: %w", err)
	}
	return nil
}

// Hash derives a stable identity for an article from its normalized title
// and host, so the same story syndicated under tracking-parameter URL
// variants still collides.
func Hash(title, link string) string {
	normalized := strings.Join(strings.Fields(strings.ToLower(strings.TrimSpace(title))), " ")

	host := "unknown"
	if u, err := url.Parse(link); err == nil && u.Host != "" {
		host = strings.TrimPrefix(strings.ToLower(u.Host), "www.")
	}

	h := sha256.New()
	h.Write([]byte(normalized + "|" + host))
	return hex.EncodeToString(h.Sum(nil))[:16]
}

// IsDelivered reports whether the hash is present and within TTL.
func (fc *FileCache) IsDelivered(hash string) bool {
	fc.mu.RLock()
	defer fc.mu.RUnlock()

	item, ok := fc.items[hash]
	if !ok {
		return false
	}
	return item.SentAt.After(time.Now().Add(-fc.ttl))
}

// MarkDelivered records a posted article.
func (fc *FileCache) MarkDelivered(hash, title, link, category, source string) {
	fc.mu.Lock()
	defer fc.mu.Unlock()

	fc.items[hash] = DeliveredItem{
		Hash:     hash,
		Title:    title,
		URL:      link,
		Category: category,
		Source:   source,
		SentAt:   time.Now(),
	}
}

// Cleanup drops expired entries from memory.
func (fc *FileCache) Cleanup() {
	fc.mu.Lock()
	defer fc.mu.Unlock()

	cutoff := time.Now().Add(-fc.ttl)
	for hash, item := range fc.items {
		if item.SentAt.Before(cutoff) {
			delete(fc.items, hash)
		}
	}
}

// Len returns the number of cached entries.
func (fc *FileCache) Len() int {
	fc.mu.RLock()
	defer fc.mu.RUnlock()
	return len(fc.items)
}
