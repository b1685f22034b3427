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

// Package bootstrap implements the ephemeral hidden-service rendezvous
// used to exchange a durable onion address between two peers that have
// never spoken before.
package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/InvisaMage/onionr/internal/logger"
	"github.com/InvisaMage/onionr/internal/metrics"
)

// SessionStore is the process-wide key-value store that stashes a
// rendezvous address under a random session id.
type SessionStore struct {
	mu      sync.RWMutex
	entries map[string]string
}

// NewSessionStore returns an empty store.
func NewSessionStore() *SessionStore {
	return &SessionStore{entries: make(map[string]string)}
}

// Put stashes address under a fresh UUID and returns that session id.
func (s *SessionStore) Put(address string) string {
	id := uuid.NewString()
	s.mu.Lock()
	s.entries[id] = address
	s.mu.Unlock()
	return id
}

// Get returns the address stashed under id, if any.
func (s *SessionStore) Get(id string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	addr, ok := s.entries[id]
	return addr, ok
}

// hardenHeaders is the shared header-hardening hook every rendezvous
// response passes through.
func hardenHeaders(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("Cache-Control", "no-store")
		w.Header().Set("Referrer-Policy", "no-referrer")
		next(w, r)
	}
}

// Server is the single-use rendezvous HTTP server: it accepts exactly
// one successful POST /bs/<address> then stops itself.
type Server struct {
	sessions *SessionStore
	log      logger.Logger

	httpSrv  *http.Server
	stopOnce sync.Once
	done     chan struct{}

	mu        sync.Mutex
	succeeded bool
	address   string
}

// NewServer builds a rendezvous server bound to sessions. The listen
// address is supplied later to Serve.
func NewServer(sessions *SessionStore) *Server {
	return &Server{
		sessions: sessions,
		log:      logger.GetDefaultLogger(),
		done:     make(chan struct{}),
	}
}

func (s *Server) mux() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ping", hardenHeaders(s.handlePing))
	mux.HandleFunc("/bs/", hardenHeaders(s.handleBootstrap))
	return mux
}

func (s *Server) handlePing(w http.ResponseWriter, r *http.Request) {
	fmt.Fprint(w, "pong!")
}

func (s *Server) handleBootstrap(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	s.mu.Lock()
	if s.succeeded {
		s.mu.Unlock()
		// Only a single successful post completes the rendezvous;
		// further posts hit a stopped server.
		w.WriteHeader(http.StatusGone)
		return
	}
	s.mu.Unlock()

	address := strings.TrimPrefix(r.URL.Path, "/bs/")
	if !ValidOnionAddress(address) {
		metrics.BootstrapRendezvous.WithLabelValues("invalid").Inc()
		w.Write(nil)
		return
	}

	s.mu.Lock()
	s.succeeded = true
	s.address = address
	s.mu.Unlock()

	fmt.Fprint(w, "success")
	metrics.BootstrapRendezvous.WithLabelValues("completed").Inc()

	go s.Stop()
}

// Serve runs the server on listenAddr until the first successful
// rendezvous POST, the timeout elapses, or ctx is cancelled. It returns
// the peer address posted back, or an error on timeout/cancellation.
func (s *Server) Serve(ctx context.Context, listenAddr string, timeout time.Duration) (string, error) {
	s.httpSrv = &http.Server{
		Addr:              listenAddr,
		Handler:           s.mux(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- s.httpSrv.ListenAndServe()
	}()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-s.done:
		s.mu.Lock()
		addr := s.address
		s.mu.Unlock()
		return addr, nil
	case <-timer.C:
		metrics.BootstrapRendezvous.WithLabelValues("timeout").Inc()
		s.Stop()
		return "", fmt.Errorf("bootstrap: rendezvous timed out after %s", timeout)
	case <-ctx.Done():
		s.Stop()
		return "", ctx.Err()
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			return "", fmt.Errorf("bootstrap: rendezvous server: %w", err)
		}
		// A successful post shuts the server down, which can end
		// ListenAndServe before s.done is closed.
		s.mu.Lock()
		addr, ok := s.address, s.succeeded
		s.mu.Unlock()
		if ok {
			return addr, nil
		}
		return "", fmt.Errorf("bootstrap: rendezvous server stopped early")
	}
}

// Stop shuts the HTTP server down; safe to call multiple times.
func (s *Server) Stop() {
	s.stopOnce.Do(func() {
		if s.httpSrv != nil {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = s.httpSrv.Shutdown(shutdownCtx)
		}
		close(s.done)
	})
}
