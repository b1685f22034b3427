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
	"crypto/ed25519"

	"github.com/InvisaMage/onionr/crypto/keys"
)

func encodeSig(sig []byte) string {
	return keys.EncodeBytes(sig)
}

func encryptAsym(recipientPubB58 string, plaintext []byte) (string, error) {
	return keys.EncryptAsym(recipientPubB58, plaintext)
}

func decodeForForward(pubB58 string) (ed25519.PublicKey, error) {
	return keys.DecodePublicKey(pubB58)
}
