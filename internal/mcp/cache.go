package mcp

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// responseCache keeps rendered tool responses for repeated requests. A nil
// cache stores nothing.
type responseCache struct {
	lru *expirable.LRU[string, string]
}

func newResponseCache(size int, ttl time.Duration) *responseCache {
	if size <= 0 {
		size = 256
	}
	return &responseCache{lru: expirable.NewLRU[string, string](size, nil, ttl)}
}

// cacheKey hashes the tool name and its arguments. encoding/json sorts map
// keys, so equal arguments produce equal keys.
func cacheKey(tool string, args map[string]interface{}) string {
	raw, err := json.Marshal(args)
	if err != nil {
		return ""
	}
	h := sha256.New()
	h.Write([]byte(tool))
	h.Write([]byte{0})
	h.Write(raw)
	return hex.EncodeToString(h.Sum(nil))
}

func (c *responseCache) get(key string) (string, bool) {
	if c == nil || key == "" {
		return "", false
	}
	return c.lru.Get(key)
}

func (c *responseCache) add(key, response string) {
	if c == nil || key == "" {
		return
	}
	c.lru.Add(key, response)
}

// Len returns the number of cached responses
func (c *responseCache) Len() int {
	if c == nil {
		return 0
	}
	return c.lru.Len()
}
