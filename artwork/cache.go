package artwork

import (
	"context"
	"log/slog"
	"sync"

	"github.com/golang/groupcache/lru"
	"golang.org/x/sync/singleflight"
)

// FetchFunc returns raw, undecoded artwork bytes.
type FetchFunc func(ctx context.Context) ([]byte, error)

// Cache keeps recently processed covers in memory, bounded by the size of
// their JPEG encodings, and collapses concurrent fetches for the same key.
type Cache struct {
	opts   Options
	covers *CoverStore

	group singleflight.Group

	mu       sync.Mutex
	lru      *lru.Cache
	size     int
	maxBytes int
}

func NewCache(maxBytes int, opts Options, covers *CoverStore) *Cache {
	c := &Cache{
		opts:     opts.withDefaults(),
		covers:   covers,
		lru:      lru.New(0),
		maxBytes: maxBytes,
	}
	c.lru.OnEvicted = func(_ lru.Key, value interface{}) {
		c.size -= len(value.(*Artwork).JPEG)
	}
	return c
}

// Get returns the processed artwork for key, calling fetch at most once
// across concurrent callers on a miss.
func (c *Cache) Get(ctx context.Context, key string, fetch FetchFunc) (*Artwork, error) {
	if art, ok := c.lookup(key); ok {
		return art, nil
	}

	result, err, shared := c.group.Do(key, func() (interface{}, error) {
		if art, ok := c.lookup(key); ok {
			return art, nil
		}
		raw, err := fetch(ctx)
		if err != nil {
			return nil, err
		}
		art, err := Process(raw, c.opts)
		if err != nil {
			return nil, err
		}
		c.store(key, art)
		if c.covers != nil {
			if err := c.covers.Save(art); err != nil {
				slog.Warn("Failed to save cover", slog.String("error", err.Error()))
			}
		}
		return art, nil
	})
	if err != nil {
		return nil, err
	}
	if shared {
		slog.Debug("Shared artwork fetch", slog.String("key", key))
	}
	return result.(*Artwork), nil
}

func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lru.Len()
}

func (c *Cache) lookup(key string) (*Artwork, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.lru.Get(key)
	if !ok {
		return nil, false
	}
	return v.(*Artwork), true
}

func (c *Cache) store(key string, art *Artwork) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.maxBytes <= 0 {
		return
	}
	if _, ok := c.lru.Get(key); ok {
		return
	}
	c.lru.Add(key, art)
	c.size += len(art.JPEG)
	for c.size > c.maxBytes && c.lru.Len() > 1 {
		c.lru.RemoveOldest()
	}
}
