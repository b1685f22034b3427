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

// Package keymanager stores local Onionr identity keypairs in a flat
// newline-delimited file and tracks which pair is active.
package keymanager

import (
	"bufio"
	"crypto/ed25519"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"

	onionrcrypto "github.com/InvisaMage/onionr/crypto"
	"github.com/InvisaMage/onionr/crypto/keys"
	"github.com/InvisaMage/onionr/crypto/storage"
	"github.com/InvisaMage/onionr/internal/logger"
)

var (
	// ErrInvalidPubkey is raised by addKey when pub is supplied without
	// a matching priv, or the pair is malformed.
	ErrInvalidPubkey = errors.New("keymanager: invalid public key")
	// ErrKeyExists is raised by addKey on a duplicate public key.
	ErrKeyExists = errors.New("keymanager: key already exists")
	// ErrKeyNotKnown is raised by removeKey/changeActiveKey for a
	// public key absent from the store (getPrivkey returns "" instead).
	ErrKeyNotKnown = errors.New("keymanager: key not known")
)

// record is one pub,priv line. Keys are base58 text and therefore
// never contain '\n' or ',' — the wire format has no escaping and
// relies on that.
type record struct {
	pub, priv string
}

// Manager owns the local keys.txt file and the process's active
// identity pointer, serialized behind a mutex since both are shared
// process-global state per the concurrency model.
type Manager struct {
	mu     sync.Mutex
	path   string
	active *record

	// decoded caches every base58-decoded keypair this process has
	// touched, keyed by its base58 public key, so repeated Active()
	// calls skip re-decoding.
	decoded onionrcrypto.KeyStorage
}

// New opens (without requiring it to exist) the key file at
// <dataDir>/keys.txt.
func New(dataDir string) *Manager {
	return &Manager{
		path:    filepath.Join(dataDir, "keys.txt"),
		decoded: storage.NewMemoryKeyStorage(),
	}
}

func (m *Manager) readAll() ([]record, error) {
	f, err := os.Open(m.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	defer f.Close()

	var out []record
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		parts := strings.SplitN(line, ",", 2)
		if len(parts) != 2 {
			continue
		}
		out = append(out, record{pub: parts[0], priv: parts[1]})
	}
	return out, scanner.Err()
}

func (m *Manager) writeAll(records []record) error {
	if dir := filepath.Dir(m.path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return err
		}
	}
	var sb strings.Builder
	for _, r := range records {
		sb.WriteString(r.pub)
		sb.WriteByte(',')
		sb.WriteString(r.priv)
		sb.WriteByte('\n')
	}
	return os.WriteFile(m.path, []byte(sb.String()), 0600)
}

// AddKey appends pub,priv to the key file, generating a fresh Ed25519
// pair when both are empty. Returns the pair actually stored.
func (m *Manager) AddKey(pub, priv string) (string, string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if pub == "" && priv == "" {
		kp, err := keys.GenerateEd25519KeyPair()
		if err != nil {
			return "", "", err
		}
		edPub := kp.PublicKey().(ed25519.PublicKey)
		edPriv := kp.PrivateKey().(ed25519.PrivateKey)
		pub = keys.EncodePublicKey(edPub)
		priv = keys.EncodePrivateKey(edPriv)
	}
	if pub == "" || priv == "" {
		return "", "", ErrInvalidPubkey
	}
	if strings.ContainsAny(pub, ",\n") || strings.ContainsAny(priv, ",\n") {
		return "", "", ErrInvalidPubkey
	}

	records, err := m.readAll()
	if err != nil {
		return "", "", err
	}
	for _, r := range records {
		if r.pub == pub {
			return "", "", ErrKeyExists
		}
	}
	records = append(records, record{pub: pub, priv: priv})
	if err := m.writeAll(records); err != nil {
		return "", "", err
	}
	return pub, priv, nil
}

// RemoveKey rewrites the file without the line whose pub matches.
func (m *Manager) RemoveKey(pub string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	records, err := m.readAll()
	if err != nil {
		return err
	}
	out := records[:0]
	found := false
	for _, r := range records {
		if r.pub == pub {
			found = true
			continue
		}
		out = append(out, r)
	}
	if !found {
		return ErrKeyNotKnown
	}
	if m.active != nil && m.active.pub == pub {
		m.active = nil
	}
	_ = m.decoded.Delete(pub)
	return m.writeAll(out)
}

// GetPubkeyList returns the public key (first field) of every record.
func (m *Manager) GetPubkeyList() ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	records, err := m.readAll()
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(records))
	for _, r := range records {
		out = append(out, r.pub)
	}
	return out, nil
}

// GetPrivkey returns the private key paired with pub, or "" if not
// found.
func (m *Manager) GetPrivkey(pub string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	records, err := m.readAll()
	if err != nil {
		return "", err
	}
	for _, r := range records {
		if r.pub == pub {
			return r.priv, nil
		}
	}
	return "", nil
}

// ChangeActiveKey requires pub to be present in the store, then
// mutates the in-process active identity pointer.
func (m *Manager) ChangeActiveKey(pub string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	records, err := m.readAll()
	if err != nil {
		return err
	}
	for _, r := range records {
		if r.pub == pub {
			rCopy := r
			m.active = &rCopy
			return nil
		}
	}
	return ErrKeyNotKnown
}

// Active returns the currently selected identity as an Envelope, or
// an OnionrError coded ErrCodeNotFound if no key has been activated yet.
func (m *Manager) Active() (*keys.Envelope, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.active == nil {
		return nil, logger.NewOnionrError(logger.ErrCodeNotFound, "no active key selected", nil)
	}

	if kp, err := m.decoded.Load(m.active.pub); err == nil {
		return keys.NewEnvelope(kp.PublicKey().(ed25519.PublicKey), kp.PrivateKey().(ed25519.PrivateKey)), nil
	}

	pub, err := keys.DecodePublicKey(m.active.pub)
	if err != nil {
		logger.Warn("keymanager: active public key failed to decode", logger.Error(err))
		return nil, logger.NewOnionrError(logger.ErrCodeCryptoError, "active public key is malformed", err)
	}
	priv, err := keys.DecodePrivateKey(m.active.priv)
	if err != nil {
		logger.Warn("keymanager: active private key failed to decode", logger.Error(err))
		return nil, logger.NewOnionrError(logger.ErrCodeCryptoError, "active private key is malformed", err)
	}

	if kp, err := keys.NewEd25519KeyPair(priv, m.active.pub); err == nil {
		_ = m.decoded.Store(m.active.pub, kp)
	}

	return keys.NewEnvelope(pub, priv), nil
}
