package console

import (
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"sync"
	"time"
)

const defaultChartCacheLimit = 128

// ChartKey identifies a rendered chart: its type plus a digest of the spec.
type ChartKey struct {
	Type   string
	Digest string
}

// RenderCache memoizes rendered chart HTML.
type RenderCache interface {
	GetOrRender(key ChartKey, render func() (string, error)) (string, error)
}

// ChartCache keeps rendered dashboard charts for a TTL. It holds at most
// limit entries, evicting the one closest to expiry, and drops everything
// when a dashboard refresh event arrives. A zero TTL disables caching.
type ChartCache struct {
	ttl     time.Duration
	limit   int
	now     func() time.Time
	mu      sync.Mutex
	entries map[ChartKey]cachedChart
}

type cachedChart struct {
	html    string
	expires time.Time
}

// ChartCacheOption customizes a ChartCache.
type ChartCacheOption func(*ChartCache)

// ChartCacheLimit bounds the number of cached charts. Values below one keep the default.
func ChartCacheLimit(n int) ChartCacheOption {
	return func(c *ChartCache) {
		if n > 0 {
			c.limit = n
		}
	}
}

// NewChartCache builds a cache with the provided TTL.
func NewChartCache(ttl time.Duration, options ...ChartCacheOption) *ChartCache {
	c := &ChartCache{
		ttl:     ttl,
		limit:   defaultChartCacheLimit,
		now:     time.Now,
		entries: make(map[ChartKey]cachedChart),
	}
	for _, opt := range options {
		opt(c)
	}
	return c
}

// GetOrRender returns a cached chart or renders and stores a new one.
// Render errors are not cached.
func (c *ChartCache) GetOrRender(key ChartKey, render func() (string, error)) (string, error) {
	if html, ok := c.get(key); ok {
		return html, nil
	}
	html, err := render()
	if err != nil {
		return "", err
	}
	c.set(key, html)
	return html, nil
}

// Purge drops cached charts of chartType, or every chart when chartType is
// empty, and returns how many were removed.
func (c *ChartCache) Purge(chartType string) int {
	if c == nil {
		return 0
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	removed := 0
	for key := range c.entries {
		if chartType == "" || key.Type == chartType {
			delete(c.entries, key)
			removed++
		}
	}
	return removed
}

// InvalidateOn purges the cache whenever hub publishes a dashboard refresh or
// a reservation list refresh. The returned func stops listening.
func (c *ChartCache) InvalidateOn(hub *BroadcastHub) (stop func()) {
	events, cancel := hub.Subscribe()
	done := make(chan struct{})
	go func() {
		defer close(done)
		for event := range events {
			if invalidatesCharts(event) {
				c.Purge("")
			}
		}
	}()
	var once sync.Once
	return func() {
		once.Do(func() {
			cancel()
			<-done
		})
	}
}

func invalidatesCharts(event ConsoleEvent) bool {
	switch event.Kind {
	case EventDashboardRefresh:
		return true
	case EventListRefresh:
		return event.List == ListReservations || event.List == ListHostReservations
	}
	return false
}

// Len returns the number of cached entries, expired ones included.
func (c *ChartCache) Len() int {
	if c == nil {
		return 0
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *ChartCache) get(key ChartKey) (string, bool) {
	if c == nil || c.ttl <= 0 {
		return "", false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.entries[key]
	if !ok {
		return "", false
	}
	if c.now().After(entry.expires) {
		delete(c.entries, key)
		return "", false
	}
	return entry.html, true
}

func (c *ChartCache) set(key ChartKey, html string) {
	if c == nil || c.ttl <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.entries[key]; !exists && len(c.entries) >= c.limit {
		c.evictLocked()
	}
	c.entries[key] = cachedChart{html: html, expires: c.now().Add(c.ttl)}
}

// evictLocked removes expired entries, or the soonest to expire when none are.
func (c *ChartCache) evictLocked() {
	now := c.now()
	var (
		victim ChartKey
		oldest time.Time
		found  bool
	)
	for key, entry := range c.entries {
		if now.After(entry.expires) {
			delete(c.entries, key)
			continue
		}
		if !found || entry.expires.Before(oldest) {
			victim, oldest, found = key, entry.expires, true
		}
	}
	if len(c.entries) >= c.limit && found {
		delete(c.entries, victim)
	}
}

// chartDigest returns a deterministic hash for a chart specification.
func chartDigest(spec ChartSpec) string {
	b, err := json.Marshal(spec)
	if err != nil {
		return "invalid"
	}
	sum := sha1.Sum(b)
	return hex.EncodeToString(sum[:])
}
