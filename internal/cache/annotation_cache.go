// Package cache holds the process-lifetime annotation cache. Nothing here
// is persisted; the cache is rebuilt from source documents on demand.
package cache

import (
	"container/list"
	"sync"

	"github.com/flanksource/commons/logger"

	"github.com/flanksource/colorize/models"
)

// DefaultCapacity bounds each partition to this many documents unless a
// capacity is configured. It caps memory for workspaces with many
// open/visited files while keeping hot documents warm.
const DefaultCapacity = 100

// AnnotationCache remembers computed line-annotation maps per document so
// that re-opening or re-focusing a document is free when nothing changed.
//
// It holds two independent partitions keyed by the document's dirty flag:
// a dirty buffer's annotations are invalidated by content edits, a saved
// buffer's by external file changes, and mixing them produces stale
// highlights after save/undo cycles. A document whose dirty state flips is
// read and written under the new partition; the old partition's entry is
// left in place until evicted or cleared (see Orchestrator lookup order).
//
// Each partition is LRU-bounded: the order list runs from
// least-recently-used at the front to most-recently-used at the back, and
// every key in a partition's map appears exactly once in its order list.
// The map and list are only ever mutated together.
type AnnotationCache struct {
	mu       sync.Mutex
	capacity int
	dirty    partition
	saved    partition

	evictions uint64
}

type partition struct {
	entries map[models.DocKey]*list.Element
	order   *list.List
}

type cacheEntry struct {
	key         models.DocKey
	annotations models.LineAnnotations
}

// Stats is a point-in-time snapshot of cache occupancy.
type Stats struct {
	DirtyLen  int
	SavedLen  int
	Capacity  int
	Evictions uint64
}

// NewAnnotationCache creates a cache with the given per-partition capacity.
// A capacity <= 0 falls back to DefaultCapacity.
func NewAnnotationCache(capacity int) *AnnotationCache {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &AnnotationCache{
		capacity: capacity,
		dirty:    newPartition(),
		saved:    newPartition(),
	}
}

func newPartition() partition {
	return partition{
		entries: make(map[models.DocKey]*list.Element),
		order:   list.New(),
	}
}

// Get returns the cached annotation map for the key in the partition
// selected by isDirty. Absence is not an error: the second return is false
// on a miss. A hit promotes the key to most-recently-used and returns a
// snapshot the caller may mutate freely.
func (c *AnnotationCache) Get(key models.DocKey, isDirty bool) (models.LineAnnotations, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	p := c.partition(isDirty)
	elem, ok := p.entries[key]
	if !ok {
		return nil, false
	}
	p.order.MoveToBack(elem)
	return elem.Value.(*cacheEntry).annotations.Clone(), true
}

// Put stores a snapshot of the annotation map under the key in the
// partition selected by isDirty, evicting that partition's
// least-recently-used entry first when it is full and the key is new. The
// entry is promoted to most-recently-used.
func (c *AnnotationCache) Put(key models.DocKey, isDirty bool, annotations models.LineAnnotations) {
	c.mu.Lock()
	defer c.mu.Unlock()

	p := c.partition(isDirty)
	if elem, ok := p.entries[key]; ok {
		elem.Value.(*cacheEntry).annotations = annotations.Clone()
		p.order.MoveToBack(elem)
		return
	}

	if p.order.Len() >= c.capacity {
		c.evictLocked(p)
	}
	p.entries[key] = p.order.PushBack(&cacheEntry{key: key, annotations: annotations.Clone()})
}

// Invalidate removes the key from one partition only: content edits
// invalidate a dirty entry, external file changes a saved one. The opposite
// partition's entry is deliberately left in place (see package comment).
func (c *AnnotationCache) Invalidate(key models.DocKey, isDirty bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	p := c.partition(isDirty)
	if elem, ok := p.entries[key]; ok {
		p.order.Remove(elem)
		delete(p.entries, key)
	}
}

// Delete removes the key from both partitions, e.g. when a document closes.
func (c *AnnotationCache) Delete(key models.DocKey) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, p := range []partition{c.dirty, c.saved} {
		if elem, ok := p.entries[key]; ok {
			p.order.Remove(elem)
			delete(p.entries, key)
		}
	}
}

// Clear empties both partitions and both order lists.
func (c *AnnotationCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.dirty = newPartition()
	c.saved = newPartition()
	logger.Debugf("annotation cache cleared")
}

// Stats reports current occupancy and the total evictions so far.
func (c *AnnotationCache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Stats{
		DirtyLen:  c.dirty.order.Len(),
		SavedLen:  c.saved.order.Len(),
		Capacity:  c.capacity,
		Evictions: c.evictions,
	}
}

func (c *AnnotationCache) partition(isDirty bool) partition {
	if isDirty {
		return c.dirty
	}
	return c.saved
}

// evictLocked removes the least-recently-used entry, keeping the map and
// order list consistent.
func (c *AnnotationCache) evictLocked(p partition) {
	front := p.order.Front()
	if front == nil {
		return
	}
	entry := front.Value.(*cacheEntry)
	p.order.Remove(front)
	delete(p.entries, entry.key)
	c.evictions++
	logger.Debugf("evicted %s from annotation cache", entry.key)
}
