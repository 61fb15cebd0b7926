// Package cache provides a small LRU cache with per-entry expiry, used to
// time-box read-side results. It is an explicit component with injected
// capacity and expiry so TTL behavior stays testable.
package cache

import (
	"errors"
	"math/rand"
	"time"

	lru "github.com/hnlq715/golang-lru"
)

type JitterFn func() time.Duration
type SetFn func() (v interface{}, err error)

// Params controls a Cache.
type Params struct {
	// User-visible name to give this cache.
	Name string
	// Size is the maximal number of entries to hold.
	Size int
	// Expiry is how long entries stay valid before eviction.
	Expiry time.Duration
	// JitterFn is the interval to jitter around expiry.
	JitterFn JitterFn
}

type Cache interface {
	Name() string
	GetOrSet(k interface{}, setFn SetFn) (v interface{}, err error)
}

var ErrCacheItemNotFound = errors.New("cache item not found")

type GetSetCache struct {
	p      *Params
	lru    *lru.Cache
	locker *ChanLocker
}

func NewCache(size int, expiry time.Duration, jitterFn JitterFn) *GetSetCache {
	return NewCacheByParams(&Params{Size: size, Expiry: expiry, JitterFn: jitterFn})
}

func NewCacheByParams(p *Params) *GetSetCache {
	c, err := lru.New(p.Size)
	if err != nil {
		panic(err)
	}
	if p.JitterFn == nil {
		p.JitterFn = func() time.Duration { return 0 }
	}
	return &GetSetCache{
		lru:    c,
		locker: NewChanLocker(),
		p:      p,
	}
}

// GetOrSet returns the cached value for k, or runs setFn to produce it.
// Concurrent misses for the same key run setFn once; the losers wait and
// read the winner's value.
func (c *GetSetCache) GetOrSet(k interface{}, setFn SetFn) (v interface{}, err error) {
	if v, ok := c.lru.Get(k); ok {
		return v, nil
	}
	acquired := c.locker.Lock(k, func() {
		v, err = setFn()
		if err != nil {
			return
		}
		c.lru.AddEx(k, v, c.p.Expiry+c.p.JitterFn())
	})
	if acquired {
		return v, err
	}

	// someone else got the lock first and should have inserted something
	if v, ok := c.lru.Get(k); ok {
		return v, nil
	}

	// someone else acquired the lock, but no key was found
	// (most likely this value doesn't exist or the upstream fetch failed)
	return nil, ErrCacheItemNotFound
}

func (c *GetSetCache) Name() string { return c.p.Name }

func NewJitterFn(jitter time.Duration) JitterFn {
	return func() time.Duration {
		n := rand.Intn(int(jitter)) //nolint:gosec
		return time.Duration(n)
	}
}

// NoCache never stores anything; GetOrSet always calls setFn.
var NoCache Cache = &noCache{}

type noCache struct{}

func (m *noCache) Name() string { return "no-cache" }

func (m *noCache) GetOrSet(_ interface{}, setFn SetFn) (v interface{}, err error) {
	return setFn()
}
