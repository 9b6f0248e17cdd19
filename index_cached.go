package shortcodes

import (
	"context"
	"time"

	"github.com/patrickmn/go-cache"
)

// CachedIndex keeps recently used mappings of another Index in memory.
// Mappings never change once stored, so cached entries cannot go stale;
// ttl only bounds memory use. Only successful lookups are cached.
type CachedIndex struct {
	Index
	cache *cache.Cache
}

var _ Index = &CachedIndex{}

// NewCachedIndex wraps i. Entries expire ttl after they were last stored.
func NewCachedIndex(i Index, ttl time.Duration) *CachedIndex {
	return &CachedIndex{
		Index: i,
		cache: cache.New(ttl, 2*ttl),
	}
}

func (c *CachedIndex) Lookup(ctx context.Context, code string) (Mapping, error) {
	if v, ok := c.cache.Get(code); ok {
		return v.(Mapping), nil
	}

	m, err := c.Index.Lookup(ctx, code)
	if err != nil {
		return Mapping{}, err
	}

	c.cache.SetDefault(code, m)
	return m, nil
}
