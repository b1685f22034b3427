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

package crypto

import (
	"crypto/rand"
	"encoding/base64"
	"sync"
	"time"
)

// ReplayWindow is the wall-clock interval during which an encrypted
// block must carry a valid rply proof, keyed to receipt time rather
// than the author-claimed time field.
const ReplayWindow = 60 * time.Second

// ReplayValidator checks a block's rply proof against receipt time and
// guards against the proof being reused. It mirrors the nonce-cache
// idiom used elsewhere in this codebase: a map of seen proofs pruned by
// a background ticker, protected by a mutex rather than sync.Map since
// the GC pass needs to range and delete together.
type ReplayValidator struct {
	mu   sync.Mutex
	seen map[string]time.Time
	ttl  time.Duration

	stop chan struct{}
	once sync.Once
}

// NewReplayValidator starts a validator whose seen-proof table is
// pruned every ttl/2 (minimum one second).
func NewReplayValidator(ttl time.Duration) *ReplayValidator {
	if ttl <= 0 {
		ttl = ReplayWindow
	}
	rv := &ReplayValidator{
		seen: make(map[string]time.Time),
		ttl:  ttl,
		stop: make(chan struct{}),
	}
	go rv.gcLoop()
	return rv
}

func (rv *ReplayValidator) gcLoop() {
	interval := rv.ttl / 2
	if interval < time.Second {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			rv.prune()
		case <-rv.stop:
			return
		}
	}
}

func (rv *ReplayValidator) prune() {
	cutoff := time.Now().Add(-rv.ttl)
	rv.mu.Lock()
	defer rv.mu.Unlock()
	for proof, seenAt := range rv.seen {
		if seenAt.Before(cutoff) {
			delete(rv.seen, proof)
		}
	}
}

// Close stops the background GC goroutine. Safe to call more than once.
func (rv *ReplayValidator) Close() {
	rv.once.Do(func() { close(rv.stop) })
}

// InWindow reports whether a block received at receiptTime falls
// within the replay window. The gate is keyed to receipt time, not the
// block's claimed time field: this is intentional, since trusting the
// claimed time would let an attacker replay old blocks by forging it.
func InWindow(receiptTime time.Time) bool {
	return time.Since(receiptTime) < ReplayWindow
}

// Validate checks an rply proof for a block received within the replay
// window. A proof is valid the first time it is seen and invalid
// (including empty/malformed) thereafter or if it fails to decode.
// Callers outside the replay window should not call Validate at all —
// per spec, blocks outside the window skip replay validation entirely.
func (rv *ReplayValidator) Validate(rply string) bool {
	if rply == "" {
		return false
	}
	raw, err := base64.StdEncoding.DecodeString(rply)
	if err != nil || len(raw) == 0 {
		return false
	}

	rv.mu.Lock()
	defer rv.mu.Unlock()
	if _, dup := rv.seen[rply]; dup {
		return false
	}
	rv.seen[rply] = time.Now()
	return true
}

// NewReplayProof mints a fresh, unique rply proof suitable for a block
// being authored now.
func NewReplayProof() (string, error) {
	b := make([]byte, 24)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(b), nil
}
