// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package arz

import "github.com/golang/groupcache/lru"

// CachePolicy bounds how many decoded records a [Reader] keeps.
type CachePolicy struct {
	// Capacity is the number of records kept. Zero keeps every record
	// that has been decoded; otherwise the least recently used record
	// is evicted when the cache is full.
	Capacity int

	// OnEvict is called with the record index when a record leaves the
	// cache through eviction or [Reader.Discard].
	OnEvict func(index int)
}

// recordCache is not safe for concurrent use; a Reader is used by one
// goroutine at a time.
type recordCache struct {
	cache *lru.Cache
}

func newRecordCache(policy CachePolicy) *recordCache {
	cache := lru.New(max(policy.Capacity, 0))
	if policy.OnEvict != nil {
		cache.OnEvicted = func(key lru.Key, _ interface{}) {
			policy.OnEvict(key.(int))
		}
	}
	return &recordCache{cache: cache}
}

func (c *recordCache) get(index int) (*Record, bool) {
	value, ok := c.cache.Get(index)
	if !ok {
		return nil, false
	}
	return value.(*Record), true
}

func (c *recordCache) add(index int, record *Record) {
	c.cache.Add(index, record)
}

func (c *recordCache) remove(index int) {
	c.cache.Remove(index)
}

func (c *recordCache) len() int {
	return c.cache.Len()
}
