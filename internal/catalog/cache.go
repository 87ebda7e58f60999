package catalog

import (
	"context"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"golang.org/x/sync/singleflight"
)

const (
	defaultCacheTTL  = 5 * time.Minute
	defaultLoadLimit = 15 * time.Second
)

// CachedSource keeps loaded resources in memory for a TTL and collapses
// concurrent loads of the same resource into one upstream call. The shared
// call is detached from any single caller and bounded by loadLimit; each
// caller stops waiting when its own context ends.
type CachedSource struct {
	next      Source
	ttl       time.Duration
	loadLimit time.Duration
	now       func() time.Time
	group     singleflight.Group

	lookups        metric.Int64Counter
	lookupsEnabled bool

	mu    sync.RWMutex
	items map[string]cacheEntry
}

type cacheEntry struct {
	municipalities []Municipality
	shops          []Shop
	expires        time.Time
}

// NewCachedSource wraps next. A non-positive ttl selects the default of five minutes.
func NewCachedSource(next Source, ttl time.Duration) *CachedSource {
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}
	lookups, err := otel.GetMeterProvider().Meter(tracerName).Int64Counter(
		"catalog.cache.lookups",
		metric.WithDescription("Count of catalog cache lookups by result"),
	)
	return &CachedSource{
		next:           next,
		ttl:            ttl,
		loadLimit:      defaultLoadLimit,
		now:            time.Now,
		lookups:        lookups,
		lookupsEnabled: err == nil,
		items:          map[string]cacheEntry{},
	}
}

// Municipalities implements Source.
func (c *CachedSource) Municipalities(ctx context.Context) ([]Municipality, error) {
	const key = "municipalities"
	if entry, ok := c.cached(ctx, key); ok {
		return cloneMunicipalities(entry.municipalities), nil
	}
	v, err := c.load(ctx, key, func(ctx context.Context) (any, error) {
		list, err := c.next.Municipalities(ctx)
		if err != nil {
			return nil, err
		}
		c.store(key, cacheEntry{municipalities: list})
		return list, nil
	})
	if err != nil {
		return nil, err
	}
	return cloneMunicipalities(v.([]Municipality)), nil
}

// Shops implements Source.
func (c *CachedSource) Shops(ctx context.Context, municipalityID string) ([]Shop, error) {
	key := "shops|" + municipalityID
	if entry, ok := c.cached(ctx, key); ok {
		return cloneShops(entry.shops), nil
	}
	v, err := c.load(ctx, key, func(ctx context.Context) (any, error) {
		list, err := c.next.Shops(ctx, municipalityID)
		if err != nil {
			return nil, err
		}
		c.store(key, cacheEntry{shops: list})
		return list, nil
	})
	if err != nil {
		return nil, err
	}
	return cloneShops(v.([]Shop)), nil
}

func (c *CachedSource) load(ctx context.Context, key string, fn func(context.Context) (any, error)) (any, error) {
	ch := c.group.DoChan(key, func() (any, error) {
		loadCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.loadLimit)
		defer cancel()
		return fn(loadCtx)
	})
	select {
	case res := <-ch:
		return res.Val, res.Err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Purge drops every cached entry.
func (c *CachedSource) Purge() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = map[string]cacheEntry{}
}

func (c *CachedSource) cached(ctx context.Context, key string) (cacheEntry, bool) {
	now := c.now()
	c.mu.RLock()
	entry, ok := c.items[key]
	c.mu.RUnlock()
	hit := ok && !now.After(entry.expires)
	c.count(ctx, key, hit)
	if !hit {
		return cacheEntry{}, false
	}
	return entry, true
}

func (c *CachedSource) count(ctx context.Context, key string, hit bool) {
	if !c.lookupsEnabled {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	resource, _, _ := strings.Cut(key, "|")
	c.lookups.Add(ctx, 1, metric.WithAttributes(
		attribute.String("resource", resource),
		attribute.String("result", result),
	))
}

func (c *CachedSource) store(key string, entry cacheEntry) {
	c.mu.Lock()
	defer c.mu.Unlock()
	entry.expires = c.now().Add(c.ttl)
	c.items[key] = entry
}

func cloneMunicipalities(src []Municipality) []Municipality {
	out := make([]Municipality, len(src))
	for i, m := range src {
		m.Categories = append([]string(nil), m.Categories...)
		out[i] = m
	}
	return out
}

func cloneShops(src []Shop) []Shop {
	out := make([]Shop, len(src))
	for i, s := range src {
		s.Products = append([]Product(nil), s.Products...)
		out[i] = s
	}
	return out
}
