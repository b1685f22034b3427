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

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// BlockOperations tracks block-store operations.
	BlockOperations = promauto.With(Registry).NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "block",
			Name:      "operations_total",
			Help:      "Total number of block operations",
		},
		[]string{"operation"}, // parse/save/delete/cache_hit/cache_evict
	)

	// BlockInvalid tracks blocks rejected during parsing/validation.
	BlockInvalid = promauto.With(Registry).NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "block",
			Name:      "invalid_total",
			Help:      "Total number of blocks deleted for failing to parse or validate",
		},
		[]string{"reason"},
	)

	// BlockCacheBytes reports current cache occupancy.
	BlockCacheBytes = promauto.With(Registry).NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "block",
			Name:      "cache_bytes",
			Help:      "Total bytes currently resident in the block cache",
		},
	)

	// NetBootstrapAttempts tracks transport bootstrap attempts.
	NetBootstrapAttempts = promauto.With(Registry).NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "net",
			Name:      "bootstrap_attempts_total",
			Help:      "Total number of anonymizing transport bootstrap attempts",
		},
		[]string{"result"}, // ready/failed
	)

	// BootstrapRendezvous tracks ephemeral rendezvous sessions.
	BootstrapRendezvous = promauto.With(Registry).NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "bootstrap",
			Name:      "rendezvous_total",
			Help:      "Total number of bootstrap rendezvous sessions by outcome",
		},
		[]string{"result"}, // completed/timeout/invalid
	)
)
