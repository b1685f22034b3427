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

// Package keys implements the Onionr block-model's cryptographic
// envelope: Ed25519 identity keys, asymmetric encryption targeting a
// peer's signing key, and a forward-secrecy overlay channel.
package keys

import (
	"crypto/ed25519"
	"fmt"

	"github.com/mr-tron/base58"
)

// Envelope bundles the operations the block model needs from the
// active local identity's private key: Sign (whose base58Out flag
// selects a base58-encoded or raw signature) and DecryptAsym (which
// takes a base58 packet). Encryption (EncryptAsym) and verification
// (Verify, VerifyEncoded) need no private key and are package-level
// functions.
type Envelope struct {
	active *ed25519KeyPair
}

// NewEnvelope wraps an already-generated Ed25519 key pair as the
// active identity for encrypt/decrypt/sign/verify operations.
func NewEnvelope(pub ed25519.PublicKey, priv ed25519.PrivateKey) *Envelope {
	return &Envelope{active: &ed25519KeyPair{publicKey: pub, privateKey: priv}}
}

// EncodePublicKey base58-encodes a raw Ed25519 public key for storage
// in a block header's signer field or a keys.txt line.
func EncodePublicKey(pub ed25519.PublicKey) string {
	return base58.Encode(pub)
}

// EncodeBytes base58-encodes arbitrary bytes, e.g. a detached
// signature destined for a block header's sig field.
func EncodeBytes(raw []byte) string {
	return base58.Encode(raw)
}

// DecodeBytes reverses EncodeBytes.
func DecodeBytes(encoded string) ([]byte, error) {
	raw, err := base58.Decode(encoded)
	if err != nil {
		return nil, fmt.Errorf("invalid base58 data: %w", err)
	}
	return raw, nil
}

// DecodePublicKey reverses EncodePublicKey.
func DecodePublicKey(encoded string) (ed25519.PublicKey, error) {
	raw, err := base58.Decode(encoded)
	if err != nil {
		return nil, fmt.Errorf("invalid base58 public key: %w", err)
	}
	if len(raw) != ed25519.PublicKeySize {
		return nil, fmt.Errorf("public key has wrong length: %d", len(raw))
	}
	return ed25519.PublicKey(raw), nil
}

// EncodePrivateKey base58-encodes a raw Ed25519 private key for
// storage in a keys.txt line.
func EncodePrivateKey(priv ed25519.PrivateKey) string {
	return base58.Encode(priv)
}

// DecodePrivateKey reverses EncodePrivateKey.
func DecodePrivateKey(encoded string) (ed25519.PrivateKey, error) {
	raw, err := base58.Decode(encoded)
	if err != nil {
		return nil, fmt.Errorf("invalid base58 private key: %w", err)
	}
	if len(raw) != ed25519.PrivateKeySize {
		return nil, fmt.Errorf("private key has wrong length: %d", len(raw))
	}
	return ed25519.PrivateKey(raw), nil
}

// Sign signs message with the active private key. If base58Out is
// true, the signature is returned base58-encoded.
func (e *Envelope) Sign(message []byte, base58Out bool) (string, []byte, error) {
	sig, err := e.active.Sign(message)
	if err != nil {
		return "", nil, err
	}
	if base58Out {
		return base58.Encode(sig), sig, nil
	}
	return "", sig, nil
}

// Verify checks a detached Ed25519 signature over message, given the
// signer's raw public key and raw signature bytes. VerifyEncoded is
// the form that takes base58 header fields.
func Verify(signerPub, message, signature []byte) bool {
	return ed25519.Verify(signerPub, message, signature)
}

// VerifyEncoded is the base58-input convenience form of Verify, used
// directly against block header fields.
func VerifyEncoded(signerPubB58 string, message []byte, signatureB58 string) bool {
	pub, err := DecodePublicKey(signerPubB58)
	if err != nil {
		return false
	}
	sig, err := base58.Decode(signatureB58)
	if err != nil {
		return false
	}
	return ed25519.Verify(pub, message, sig)
}

// EncryptAsym encrypts plaintext to recipientPubB58 using the
// Ed25519-to-X25519 bridge (EncryptWithEd25519Peer). Returns the sealed
// packet base58-encoded.
func EncryptAsym(recipientPubB58 string, plaintext []byte) (string, error) {
	recipientPub, err := DecodePublicKey(recipientPubB58)
	if err != nil {
		return "", err
	}
	packet, err := EncryptWithEd25519Peer(recipientPub, plaintext)
	if err != nil {
		return "", err
	}
	return base58.Encode(packet), nil
}

// DecryptAsym reverses EncryptAsym using the envelope's active private
// key.
func (e *Envelope) DecryptAsym(packetB58 string) ([]byte, error) {
	packet, err := base58.Decode(packetB58)
	if err != nil {
		return nil, fmt.Errorf("invalid base58 packet: %w", err)
	}
	return DecryptWithEd25519Peer(e.active.privateKey, packet)
}

// PublicKeyB58 returns the active identity's base58-encoded public key.
func (e *Envelope) PublicKeyB58() string {
	return EncodePublicKey(e.active.publicKey)
}

// PrivateKey exposes the active identity's raw private key, for
// callers (e.g. the forward-encryption channel) that need it directly.
func (e *Envelope) PrivateKey() ed25519.PrivateKey {
	return e.active.privateKey
}
