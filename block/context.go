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
	onionrcrypto "github.com/InvisaMage/onionr/crypto"
	"github.com/InvisaMage/onionr/crypto/keys"
)

// CoreContext threads the process-global singletons the original
// implementation kept as module state — active keypair, block cache,
// replay validator — through the block model explicitly, so tests can
// instantiate private instances instead of sharing global state (see
// the "process-global singletons" design note).
type CoreContext struct {
	Store    ByteStore
	Cache    *Cache
	Envelope *keys.Envelope
	Replay   *onionrcrypto.ReplayValidator
	Forward  onionrcrypto.ForwardEncrypter

	// BlockCacheBytes is the per-block cache eligibility threshold
	// (allocations.blockCache); BlockCacheTotalBytes is the total
	// budget (allocations.block_cache_total).
	BlockCacheBytes      int
	BlockCacheTotalBytes int
}

// NewCoreContext builds a CoreContext over the given byte store with
// the given active identity. cacheBytes/cacheTotalBytes of 0 fall back to the spec's
// documented defaults.
func NewCoreContext(store ByteStore, envelope *keys.Envelope, cacheBytes, cacheTotalBytes int) *CoreContext {
	if cacheBytes <= 0 {
		cacheBytes = 500000
	}
	if cacheTotalBytes <= 0 {
		cacheTotalBytes = 50000000
	}
	return &CoreContext{
		Store:                store,
		Cache:                NewCache(cacheTotalBytes),
		Envelope:             envelope,
		Replay:               onionrcrypto.NewReplayValidator(onionrcrypto.ReplayWindow),
		Forward:              keys.NewForwardChannel(),
		BlockCacheBytes:      cacheBytes,
		BlockCacheTotalBytes: cacheTotalBytes,
	}
}

// Close releases the context's background resources (the replay
// validator's GC goroutine).
func (c *CoreContext) Close() {
	if c.Replay != nil {
		c.Replay.Close()
	}
}
