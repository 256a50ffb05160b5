// Package cache implements the concurrency-safe memoizing store for
// compiled kernels.
//
// A Cache is shared process-wide per execution context: otherwise-unrelated
// operator instances whose descriptors, attributes and post-ops coincide
// get the same compiled kernel back. Entries live for the lifetime of the
// cache; there is no eviction.
package cache

import (
	"sync"
	"time"

	"github.com/wutthichai46/openvino/instrument"
	"github.com/wutthichai46/openvino/types/xsync"
)

// Key identifies a compiled kernel. Two keys are equal iff Equal says so;
// Hash must be consistent with Equal (equal keys hash alike). Hash
// collisions between unequal keys are handled by bucketing.
type Key interface {
	Hash() uint64
	Equal(other Key) bool
}

// Cache memoizes kernel builds by Key.
//
// At most one build executes per distinct key, even under concurrent
// callers: the first caller runs the build, concurrent callers for the same
// key block until it completes and share the result. Distinct keys build
// independently and concurrently. A failed build leaves no entry behind;
// its error propagates to every caller that waited on it.
//
// Build functions must not re-enter the same cache for the same key, or
// they deadlock on their own latch.
type Cache[V any] struct {
	hook instrument.Hook

	mu      sync.Mutex
	buckets map[uint64][]*entry[V]
}

type entry[V any] struct {
	key   Key
	done  *xsync.Latch
	value V
	err   error
}

// New returns an empty cache reporting to hook. A nil hook disables
// reporting.
func New[V any](hook instrument.Hook) *Cache[V] {
	if hook == nil {
		hook = instrument.Nop{}
	}
	return &Cache[V]{
		hook:    hook,
		buckets: make(map[uint64][]*entry[V]),
	}
}

// GetOrCreate returns the value cached under key, building it with build if
// absent. created reports whether this call performed the build. If the
// build fails, the error is returned as-is (to this caller and any
// concurrent waiter) and the cache keeps no entry for the key.
func (c *Cache[V]) GetOrCreate(key Key, build func() (V, error)) (value V, created bool, err error) {
	hash := key.Hash()

	c.mu.Lock()
	for _, e := range c.buckets[hash] {
		if e.key.Equal(key) {
			c.mu.Unlock()
			c.hook.CacheHit()
			e.done.Wait()
			return e.value, false, e.err
		}
	}
	e := &entry[V]{key: key, done: xsync.NewLatch()}
	c.buckets[hash] = append(c.buckets[hash], e)
	c.mu.Unlock()

	c.hook.CacheMiss()
	start := time.Now()
	e.value, e.err = build()
	c.hook.KernelBuilt(time.Since(start), e.err)
	if e.err != nil {
		c.remove(hash, e)
	}
	e.done.Trigger()

	return e.value, e.err == nil, e.err
}

// Len returns the number of live entries.
func (c *Cache[V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, bucket := range c.buckets {
		n += len(bucket)
	}
	return n
}

func (c *Cache[V]) remove(hash uint64, victim *entry[V]) {
	c.mu.Lock()
	defer c.mu.Unlock()
	bucket := c.buckets[hash]
	for i, e := range bucket {
		if e == victim {
			c.buckets[hash] = append(bucket[:i], bucket[i+1:]...)
			break
		}
	}
	if len(c.buckets[hash]) == 0 {
		delete(c.buckets, hash)
	}
}
