// Package cache provides the small in-process TTL cache the drivers use for
// patron profiles and organisation unit trees.
package cache

import (
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// Cache stores values under string keys with a per-entry lifetime.
type Cache interface {
	Get(key string) (any, bool)
	Put(key string, val any, ttl time.Duration)
	Delete(key string)
}

type entry struct {
	val     any
	expires time.Time
}

type lruCache struct {
	lru *expirable.LRU[string, entry]
}

// New returns an LRU-backed cache holding at most size entries. Entries
// expire individually by the TTL given at Put time.
func New(size int) Cache {
	return &lruCache{lru: expirable.NewLRU[string, entry](size, nil, 0)}
}

func (c *lruCache) Get(key string) (any, bool) {
	e, ok := c.lru.Get(key)
	if !ok {
		return nil, false
	}
	if !e.expires.IsZero() && time.Now().After(e.expires) {
		c.lru.Remove(key)
		return nil, false
	}
	return e.val, true
}

func (c *lruCache) Put(key string, val any, ttl time.Duration) {
	e := entry{val: val}
	if ttl > 0 {
		e.expires = time.Now().Add(ttl)
	}
	c.lru.Add(key, e)
}

func (c *lruCache) Delete(key string) {
	c.lru.Remove(key)
}
