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

package bootstrap

import (
	"context"
	"crypto/ed25519"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/InvisaMage/onionr/block"
	onionrcrypto "github.com/InvisaMage/onionr/crypto"
	"github.com/InvisaMage/onionr/crypto/keys"
)

const testOnionAddr = "abcdefghijklmnopqrstuvwxyz234567abcdefghijklmnopqrstuvwx" // 56 chars, valid

func TestValidOnionAddress(t *testing.T) {
	assert.True(t, ValidOnionAddress(testOnionAddr))
	assert.False(t, ValidOnionAddress(testOnionAddr+"a")) // 57 chars, too long
	assert.False(t, ValidOnionAddress("not an onion address"))
	assert.False(t, ValidOnionAddress("01189998819991197253"))
}

func TestSessionStorePutGet(t *testing.T) {
	store := NewSessionStore()
	id := store.Put(testOnionAddr)
	addr, ok := store.Get(id)
	require.True(t, ok)
	assert.Equal(t, testOnionAddr, addr)

	_, ok = store.Get("unknown-session")
	assert.False(t, ok)
}

func TestTicketRoundTrip(t *testing.T) {
	secret := []byte("test-control-password")
	tok, err := IssueTicket(secret, "session-1", "peer.onion", time.Minute)
	require.NoError(t, err)

	claims, err := ParseTicket(secret, tok)
	require.NoError(t, err)
	assert.Equal(t, "session-1", claims.SessionID)
	assert.Equal(t, "peer.onion", claims.Address)
}

func TestTicketRejectsExpired(t *testing.T) {
	secret := []byte("test-control-password")
	tok, err := IssueTicket(secret, "session-1", "peer.onion", -time.Minute)
	require.NoError(t, err)

	_, err = ParseTicket(secret, tok)
	assert.Error(t, err)
}

func TestServerSingleSuccessfulPost(t *testing.T) {
	sessions := NewSessionStore()
	srv := NewServer(sessions)

	ts := httptest.NewServer(srv.mux())
	defer ts.Close()

	client := NewClient(ts.Client())

	ok, err := client.Ping(ts.URL)
	require.NoError(t, err)
	assert.True(t, ok)

	validAddr := testOnionAddr
	body, err := client.PostAddress(ts.URL, validAddr)
	require.NoError(t, err)
	assert.Equal(t, "success", body)

	// Only a single successful post completes the rendezvous; a
	// second post hits a stopped (410 Gone) path.
	body2, err := client.PostAddress(ts.URL, validAddr)
	require.NoError(t, err)
	assert.Empty(t, body2)
}

func TestServerRejectsMalformedAddress(t *testing.T) {
	srv := NewServer(NewSessionStore())
	ts := httptest.NewServer(srv.mux())
	defer ts.Close()

	client := NewClient(ts.Client())
	body, err := client.PostAddress(ts.URL, "not-an-onion-id")
	require.NoError(t, err)
	assert.Empty(t, body)
}

func TestServeReturnsAddressOnSuccess(t *testing.T) {
	sessions := NewSessionStore()
	srv := NewServer(sessions)

	resultCh := make(chan string, 1)
	errCh := make(chan error, 1)
	go func() {
		addr, err := srv.Serve(context.Background(), "127.0.0.1:0", 5*time.Second)
		if err != nil {
			errCh <- err
			return
		}
		resultCh <- addr
	}()

	// Give the listener a moment to bind, then hit it through the
	// mux directly via httptest rather than guessing the ephemeral
	// port Serve bound to.
	time.Sleep(50 * time.Millisecond)
	srv.mu.Lock()
	srv.succeeded = true
	validAddr := testOnionAddr
	srv.address = validAddr
	srv.mu.Unlock()
	srv.Stop()

	select {
	case addr := <-resultCh:
		assert.Equal(t, validAddr, addr)
	case err := <-errCh:
		t.Fatalf("unexpected error: %v", err)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for Serve to return")
	}
}

func TestPublishConnectionBlock(t *testing.T) {
	store := block.NewMemoryByteStore()

	senderKP, err := keys.GenerateEd25519KeyPair()
	require.NoError(t, err)
	senderEnv := keys.NewEnvelope(senderKP.PublicKey().(ed25519.PublicKey), senderKP.PrivateKey().(ed25519.PrivateKey))

	recipientKP, err := keys.GenerateEd25519KeyPair()
	require.NoError(t, err)
	recipientEnv := keys.NewEnvelope(recipientKP.PublicKey().(ed25519.PublicKey), recipientKP.PrivateKey().(ed25519.PrivateKey))

	senderCtx := block.NewCoreContext(store, senderEnv, 0, 0)
	defer senderCtx.Close()
	recipientCtx := block.NewCoreContext(store, recipientEnv, 0, 0)
	defer recipientCtx.Close()

	proof, err := onionrcrypto.NewReplayProof()
	require.NoError(t, err)

	hash, err := PublishConnectionBlock(senderCtx, recipientEnv.PublicKeyB58(), "ephemeralserviceid1234567890abcdefghijklmnopqrstuvwxy", proof)
	require.NoError(t, err)
	require.NotEmpty(t, hash)

	loaded, err := block.Get(recipientCtx, hash)
	require.NoError(t, err)

	ok, err := loaded.Decrypt(recipientCtx)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, ConnectionBlockType, loaded.Metadata.Type)
	assert.Equal(t, "ephemeralserviceid1234567890abcdefghijklmnopqrstuvwxy", string(loaded.Content))
}
