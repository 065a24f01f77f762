package game

import (
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// CacheSchemaVersion is the current version of the cache schema.
// Increment this when the cached data structure changes to auto-invalidate old entries
const CacheSchemaVersion = "1.0"

type cachedCharacterEntry struct {
	Version     string    `json:"version"`
	CharacterID string    `json:"character_id"`
	CachedAt    time.Time `json:"cached_at"`
}

// characterCache maps user ids to character ids. A user owns one character
// for the account's lifetime, so entries only go stale on expiry.
type characterCache struct {
	lru *expirable.LRU[string, *cachedCharacterEntry]
}

func newCharacterCache(size int, ttl time.Duration) *characterCache {
	return &characterCache{
		lru: expirable.NewLRU[string, *cachedCharacterEntry](size, nil, ttl),
	}
}

// Get returns the cached character id, dropping entries of an older schema
func (c *characterCache) Get(userID string) (string, bool) {
	entry, found := c.lru.Get(userID)
	if !found {
		return "", false
	}
	if entry.Version != CacheSchemaVersion {
		c.lru.Remove(userID)
		return "", false
	}
	return entry.CharacterID, true
}

func (c *characterCache) Set(userID, characterID string) {
	c.lru.Add(userID, &cachedCharacterEntry{
		Version:     CacheSchemaVersion,
		CharacterID: characterID,
		CachedAt:    time.Now(),
	})
}

func (c *characterCache) Invalidate(userID string) {
	c.lru.Remove(userID)
}

func (c *characterCache) Len() int {
	return c.lru.Len()
}
