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

package keys

import (
	"crypto"
	"crypto/ecdh"

	onionrcrypto "github.com/InvisaMage/onionr/crypto"
)

// forwardInfo is the HPKE application-info label binding the forward
// channel to this codebase. exportCtx/exportLen are unused by Seal/Open
// (no secret is exported — the channel only ever seals application
// data) so they are passed as empty/zero.
var forwardInfo = []byte("onionr-forward-enc-v1")

type hpkeForward struct{}

// NewForwardChannel returns the default forward-secrecy channel used
// for metadata.forwardEnc, backed by HPKE over X25519.
func NewForwardChannel() onionrcrypto.ForwardEncrypter {
	return hpkeForward{}
}

// Seal converts the peer's Ed25519 public key to X25519 and HPKE-seals
// plaintext to it, same way EncryptWithEd25519Peer bridges the two curves.
func (hpkeForward) Seal(peerPub crypto.PublicKey, plaintext []byte) ([]byte, error) {
	peerX, err := convertEd25519PubToX25519(peerPub)
	if err != nil {
		return nil, err
	}
	peerPubKey, err := ecdh.X25519().NewPublicKey(peerX)
	if err != nil {
		return nil, err
	}
	packet, _, err := HPKESealAndExportToX25519Peer(peerPubKey, plaintext, forwardInfo, nil, 0)
	return packet, err
}

// Open converts the recipient's own Ed25519 private key to X25519 and
// HPKE-opens packet sealed by Seal.
func (hpkeForward) Open(ownPriv crypto.PrivateKey, packet []byte) ([]byte, error) {
	selfXPrivBytes, err := convertEd25519PrivToX25519(ownPriv)
	if err != nil {
		return nil, err
	}
	selfXPrivKey, err := ecdh.X25519().NewPrivateKey(selfXPrivBytes)
	if err != nil {
		return nil, err
	}
	plaintext, _, err := HPKEOpenAndExportWithX25519Priv(selfXPrivKey, packet, forwardInfo, nil, 0)
	return plaintext, err
}
