package cache

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// Backend is the key/value store behind the coordinator. The service
// runs on the in-process backend by default and on Redis when
// REDIS_ADDR is set.
type Backend interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
	DeleteByPrefix(ctx context.Context, prefix string) error
}

// Coordinator caches read results under composite keys with a TTL,
// collapses concurrent loads of the same key, and exposes prefix
// invalidation for mutation paths.
type Coordinator struct {
	backend Backend
	ttl     time.Duration
	group   singleflight.Group

	mu    sync.Mutex
	locks map[string]*keyLock
}

// keyLock is reference-counted so the coordinator can drop a key's
// mutex once the last holder releases it; the lock map stays bounded by
// the number of in-flight toggles, not by every key ever seen.
type keyLock struct {
	sync.Mutex
	refs int
}

func New(backend Backend, ttl time.Duration) *Coordinator {
	return &Coordinator{
		backend: backend,
		ttl:     ttl,
		locks:   map[string]*keyLock{},
	}
}

func Key(parts ...string) string {
	return strings.Join(parts, ":")
}

// GetJSON serves dest from cache, or runs load once per key (other
// concurrent callers wait and share the result) and stores the outcome.
func (c *Coordinator) GetJSON(ctx context.Context, key string, dest any, load func(context.Context) (any, error)) error {
	if b, ok, err := c.backend.Get(ctx, key); err == nil && ok {
		if json.Unmarshal(b, dest) == nil {
			return nil
		}
	}

	v, err, _ := c.group.Do(key, func() (any, error) {
		fresh, err := load(ctx)
		if err != nil {
			return nil, err
		}
		b, err := json.Marshal(fresh)
		if err != nil {
			return nil, err
		}
		_ = c.backend.Set(ctx, key, b, c.ttl)
		return b, nil
	})
	if err != nil {
		return err
	}
	return json.Unmarshal(v.([]byte), dest)
}

// Invalidate drops every key family named by the given prefixes.
// Mutations call this with the broadest relevant family.
func (c *Coordinator) Invalidate(ctx context.Context, prefixes ...string) {
	for _, p := range prefixes {
		_ = c.backend.DeleteByPrefix(ctx, p)
	}
}

// ToggleBool serializes concurrent toggles on the same key, flips the
// cached value optimistically, runs mutate, and restores the previous
// cached value if the mutation fails. Flipping twice restores the
// original state.
func (c *Coordinator) ToggleBool(ctx context.Context, key string, mutate func(context.Context) (bool, error)) (bool, error) {
	l := c.lockKey(key)
	defer c.unlockKey(key, l)

	prev, had, _ := c.backend.Get(ctx, key)
	if had {
		var cur bool
		if json.Unmarshal(prev, &cur) == nil {
			if b, err := json.Marshal(!cur); err == nil {
				_ = c.backend.Set(ctx, key, b, c.ttl)
			}
		}
	}

	v, err := mutate(ctx)
	if err != nil {
		if had {
			_ = c.backend.Set(ctx, key, prev, c.ttl)
		} else {
			_ = c.backend.Delete(ctx, key)
		}
		return false, err
	}

	if b, merr := json.Marshal(v); merr == nil {
		_ = c.backend.Set(ctx, key, b, c.ttl)
	}
	return v, nil
}

func (c *Coordinator) lockKey(key string) *keyLock {
	c.mu.Lock()
	l, ok := c.locks[key]
	if !ok {
		l = &keyLock{}
		c.locks[key] = l
	}
	l.refs++
	c.mu.Unlock()

	l.Lock()
	return l
}

func (c *Coordinator) unlockKey(key string, l *keyLock) {
	l.Unlock()

	c.mu.Lock()
	l.refs--
	if l.refs == 0 {
		delete(c.locks, key)
	}
	c.mu.Unlock()
}
