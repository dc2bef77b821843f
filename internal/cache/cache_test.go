package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSetGet(t *testing.T) {
	c := New()

	c.Set("k", "v", time.Minute)
	v, ok := c.Get("k")
	assert.True(t, ok)
	assert.Equal(t, "v", v)

	_, ok = c.Get("missing")
	assert.False(t, ok)
}

func TestExpiredEntryIsMiss(t *testing.T) {
	c := New()

	c.Set("k", "v", -time.Second)
	_, ok := c.Get("k")
	assert.False(t, ok)
}

func TestCleanupRemovesExpired(t *testing.T) {
	c := New()
	c.Set("stale", "v", -time.Second)
	c.Set("fresh", "v", time.Minute)

	c.cleanup()
	assert.Equal(t, 1, c.Len())
}

func TestKeyStableAndDistinct(t *testing.T) {
	assert.Equal(t, Key("title", "content"), Key("title", "content"))
	assert.NotEqual(t, Key("title", "content"), Key("title", "other"))
	// The separator keeps (ab, c) and (a, bc) apart.
	assert.NotEqual(t, Key("ab", "c"), Key("a", "bc"))
}
