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

package config

// Recognized dotted paths used by the core, per spec section 6.
const (
	KeyHideCreatedBlocks  = "general.hide_created_blocks"
	KeySecurityLevel      = "general.security_level"
	KeyTorV3Onions        = "tor.v3onions"
	KeyTorSocksPort       = "tor.socksport"
	KeyTorControlPort     = "tor.controlPort"
	KeyTorControlPassword = "tor.controlpassword"
	KeyBlockCache         = "allocations.blockCache"
	KeyBlockCacheTotal    = "allocations.block_cache_total"
	KeyPluginsEnabled     = "plugins.enabled"
)

// Default values for the recognized paths, applied lazily by callers
// via Get(key, default, save) rather than eagerly on load — matching
// the original implementation's per-call config.get(key, default).
const (
	DefaultBlockCacheBytes      = 500000   // allocations.blockCache
	DefaultBlockCacheTotalBytes = 50000000 // allocations.block_cache_total
	DefaultBootstrapTimeoutSecs = 300      // bootstrap_timeout
)
