// Onionr - P2P Anonymous Storage Network
// Copyright (C) 2025 Onionr contributors
//
// This file is part of Onionr.
//
// Onionr is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// Onionr is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with Onionr. If not, see <https://www.gnu.org/licenses/>.

package block

import (
	"container/list"
	"sync"
	"time"

	"github.com/InvisaMage/onionr/internal/metrics"
)

type cacheEntry struct {
	raw        []byte
	receivedAt time.Time
}

// Cache is the process-global block cache: an insertion-ordered
// sequence of hashes and a map hash->raw, evicted strictly FIFO once
// the total cached bytes exceed totalBudget.
type Cache struct {
	mu          sync.Mutex
	order       *list.List
	elemByHash  map[string]*list.Element
	entries     map[string]cacheEntry
	totalBytes  int
	totalBudget int
}

// NewCache returns an empty cache bounded by totalBudget bytes.
func NewCache(totalBudget int) *Cache {
	return &Cache{
		order:       list.New(),
		elemByHash:  make(map[string]*list.Element),
		entries:     make(map[string]cacheEntry),
		totalBudget: totalBudget,
	}
}

// Get returns the cached raw bytes and receipt time for hash, if
// present.
func (c *Cache) Get(hash string) ([]byte, time.Time, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[hash]
	return e.raw, e.receivedAt, ok
}

// Insert adds hash/raw to the cache if raw fits within the per-block
// threshold, then evicts head-of-order entries (oldest first) until
// the total cached size is back within budget.
func (c *Cache) Insert(hash string, raw []byte, perBlockThreshold int) {
	if len(raw) > perBlockThreshold {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[hash]; exists {
		return
	}

	elem := c.order.PushBack(hash)
	c.elemByHash[hash] = elem
	c.entries[hash] = cacheEntry{raw: raw, receivedAt: time.Now()}
	c.totalBytes += len(raw)

	for c.totalBytes > c.totalBudget && c.order.Len() > 0 {
		oldest := c.order.Front()
		oldestHash := oldest.Value.(string)
		c.totalBytes -= len(c.entries[oldestHash].raw)
		delete(c.entries, oldestHash)
		delete(c.elemByHash, oldestHash)
		c.order.Remove(oldest)
	}

	metrics.BlockCacheBytes.Set(float64(c.totalBytes))
}

// Remove evicts hash unconditionally, e.g. on block delete().
func (c *Cache) Remove(hash string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.elemByHash[hash]
	if !ok {
		return
	}
	c.totalBytes -= len(c.entries[hash].raw)
	delete(c.entries, hash)
	delete(c.elemByHash, hash)
	c.order.Remove(elem)
	metrics.BlockCacheBytes.Set(float64(c.totalBytes))
}

// TotalBytes returns the current cached size, for tests and metrics.
func (c *Cache) TotalBytes() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.totalBytes
}
