package translate

import (
	"context"
	"sync"
	"time"
)

// TokenTTL is how long an issued Azure access token is reused.
const TokenTTL = 8 * time.Minute

// TokenCache reuses a bearer token until its expiry. Token holds the mutex
// while fetching, so a single authentication call is in flight at a time.
type TokenCache struct {
	mu     sync.Mutex
	fetch  func(ctx context.Context) (string, error)
	ttl    time.Duration
	now    func() time.Time
	token  string
	expiry time.Time
}

// NewTokenCache returns a cache that obtains tokens through fetch and keeps
// each one for ttl.
func NewTokenCache(fetch func(ctx context.Context) (string, error), ttl time.Duration) *TokenCache {
	return &TokenCache{fetch: fetch, ttl: ttl, now: time.Now}
}

// Token returns the cached token, fetching a new one when it is missing or
// expired. A failed fetch leaves the cache empty.
func (c *TokenCache) Token(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.token != "" && c.now().Before(c.expiry) {
		return c.token, nil
	}

	token, err := c.fetch(ctx)
	if err != nil {
		c.token = ""
		return "", err
	}
	c.token = token
	c.expiry = c.now().Add(c.ttl)
	return token, nil
}

// Invalidate drops the cached token.
func (c *TokenCache) Invalidate() {
	c.mu.Lock()
	c.token = ""
	c.expiry = time.Time{}
	c.mu.Unlock()
}

// Expiry returns the expiry of the cached token, zero when empty.
func (c *TokenCache) Expiry() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.token == "" {
		return time.Time{}
	}
	return c.expiry
}
