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
	"encoding/json"
	"time"
)

// NewPlaintext builds an unsaved plaintext block. If sign is true it is
// signed over meta‖content with ctx's active identity.
func NewPlaintext(ctx *CoreContext, btype, parent string, content []byte, sign bool) (*Block, error) {
	meta := Metadata{Type: btype, Parent: parent}
	metaJSON, err := json.Marshal(meta)
	if err != nil {
		return nil, err
	}

	header := Header{
		Time:        time.Now().Unix(),
		EncryptType: EncryptNone,
		Meta:        metaJSON,
	}

	var signedData []byte
	if sign && ctx.Envelope != nil {
		signedData = signedRegion(metaJSON, content)
		_, sig, err := ctx.Envelope.Sign(signedData, false)
		if err != nil {
			return nil, err
		}
		header.Sig = encodeSig(sig)
		header.Signer = ctx.Envelope.PublicKeyB58()
	}

	return &Block{
		Header:     header,
		Metadata:   meta,
		Content:    content,
		Valid:      true,
		decrypted:  true,
		signedData: signedData,
	}, nil
}

// NewAsymEncrypted builds an unsaved block whose meta, body, and
// signature/signer triple are each independently asym-encrypted to
// recipientPubB58, per spec 4.1 decrypt() step 1 (which decrypts the
// same three fields separately).
func NewAsymEncrypted(ctx *CoreContext, recipientPubB58, btype, parent string, content []byte, forwardEnc bool, rply string) (*Block, error) {
	if forwardEnc && ctx.Forward != nil {
		recipientPub, err := decodeForForward(recipientPubB58)
		if err != nil {
			return nil, err
		}
		sealed, err := ctx.Forward.Seal(recipientPub, content)
		if err != nil {
			return nil, err
		}
		content = sealed
	}

	meta := Metadata{Type: btype, Parent: parent, Rply: rply, ForwardEnc: forwardEnc}
	metaJSON, err := json.Marshal(meta)
	if err != nil {
		return nil, err
	}

	signed := signedRegion(metaJSON, content)
	_, sig, err := ctx.Envelope.Sign(signed, false)
	if err != nil {
		return nil, err
	}
	sigBlob, err := json.Marshal(struct {
		Sig    string `json:"sig"`
		Signer string `json:"signer"`
	}{Sig: encodeSig(sig), Signer: ctx.Envelope.PublicKeyB58()})
	if err != nil {
		return nil, err
	}

	metaPacket, err := encryptAsym(recipientPubB58, metaJSON)
	if err != nil {
		return nil, err
	}
	bodyPacket, err := encryptAsym(recipientPubB58, content)
	if err != nil {
		return nil, err
	}
	sigPacket, err := encryptAsym(recipientPubB58, sigBlob)
	if err != nil {
		return nil, err
	}

	header := Header{
		Time:        time.Now().Unix(),
		EncryptType: EncryptAsym,
	}

	return &Block{
		Header:      header,
		Content:     packSealedLayer(metaPacket, bodyPacket, sigPacket),
		isEncrypted: true,
		Valid:       true,
	}, nil
}

// Save computes the block's hash via ctx.Store.InsertBlock, stamps the
// receipt time, and inserts it into the cache when size permits.
func (b *Block) Save(ctx *CoreContext) (string, error) {
	raw, err := Serialize(b.Header, b.Content)
	if err != nil {
		return "", err
	}

	hash, receivedAt, err := ctx.Store.InsertBlock(raw)
	if err != nil {
		return "", err
	}

	b.Hash = hash
	b.Raw = raw
	b.Date = receivedAt

	if ctx.Cache != nil {
		ctx.Cache.Insert(hash, raw, ctx.BlockCacheBytes)
	}
	return hash, nil
}

// Delete removes the block's raw bytes from the store and evicts it
// from the cache.
func (b *Block) Delete(ctx *CoreContext) error {
	if b.Hash == "" {
		return nil
	}
	if ctx.Cache != nil {
		ctx.Cache.Remove(b.Hash)
	}
	return ctx.Store.RemoveBlock(b.Hash)
}
