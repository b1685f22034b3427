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
	"github.com/InvisaMage/onionr/block"
)

// ConnectionBlockType is the block metadata type used to advertise an
// ephemeral rendezvous service id on the network.
const ConnectionBlockType = "con"

// PublishConnectionBlock signs and asym-encrypts a "con" block whose
// body is ephemeralServiceID, addressed to recipientPubB58. rply must
// be a fresh replay proof (onionrcrypto.NewReplayProof) so the
// recipient's replay window check passes on first receipt.
func PublishConnectionBlock(ctx *block.CoreContext, recipientPubB58, ephemeralServiceID, rply string) (string, error) {
	b, err := block.NewAsymEncrypted(ctx, recipientPubB58, ConnectionBlockType, "", []byte(ephemeralServiceID), false, rply)
	if err != nil {
		return "", err
	}
	return b.Save(ctx)
}
