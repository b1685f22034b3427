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

import "crypto"

// ForwardEncrypter is the per-signer forward-secrecy channel overlaying
// the outer asym envelope (metadata.forwardEnc). Each Seal call is
// expected to generate a fresh key encapsulation, so compromise of one
// sealed body does not expose any other body sealed to the same peer.
// The concrete implementation lives in crypto/keys (NewForwardChannel)
// to avoid an import cycle with the HPKE helpers defined there.
type ForwardEncrypter interface {
	Seal(peerPub crypto.PublicKey, plaintext []byte) ([]byte, error)
	Open(ownPriv crypto.PrivateKey, packet []byte) ([]byte, error)
}
