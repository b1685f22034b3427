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
	"fmt"

	onionrcrypto "github.com/InvisaMage/onionr/crypto"
	"github.com/InvisaMage/onionr/crypto/keys"
	"github.com/InvisaMage/onionr/internal/logger"
	"github.com/InvisaMage/onionr/internal/metrics"
)

// decryptedLayer is the plaintext produced by opening an asym-encrypted
// block: the inner meta object, the body, and the authenticated signer
// identity, each sealed separately to the recipient per spec 4.1 step 1.
type decryptedLayer struct {
	Meta      json.RawMessage `json:"meta"`
	Body      []byte          `json:"body"`
	Signature string          `json:"sig"`
	Signer    string          `json:"signer"`
}

// Decrypt attempts to open an asym-encrypted block using ctx's active
// identity. It is idempotent: a second call on an already-opened block
// returns true immediately without redoing any work.
//
// On success, header.Signer is rebound to the authenticated signer
// decrypted from the envelope (not the cleartext header, which carries
// no signer for encrypted blocks), metadata is replaced with the
// decrypted object, and signedData is recomputed as json(metadata) ‖
// decrypted body.
//
// Decryption and replay failures are recovered locally: every
// decrypted field is left empty and false/ErrReplayAttack is returned,
// never exposing partial plaintext.
func (b *Block) Decrypt(ctx *CoreContext) (bool, error) {
	if b.decrypted {
		return true, nil
	}
	if b.Header.EncryptType != EncryptAsym {
		return false, ErrNotEncrypted
	}

	sealed, err := unpackSealedLayer(b.Content)
	if err != nil {
		logger.Warn("block: sealed layer has malformed syntax", logger.String("hash", b.Hash), logger.Error(err))
		metrics.BlockInvalid.WithLabelValues("decrypt_syntax").Inc()
		return false, nil
	}

	opened, err := openSealedLayer(ctx.Envelope, sealed)
	if err != nil {
		logger.Debug("block: sealed layer did not open under active identity", logger.String("hash", b.Hash))
		metrics.BlockInvalid.WithLabelValues("decrypt_crypto").Inc()
		return false, nil
	}

	var meta Metadata
	if len(opened.Meta) > 0 {
		if err := json.Unmarshal(opened.Meta, &meta); err != nil {
			logger.Warn("block: decrypted metadata is not valid JSON", logger.String("hash", b.Hash), logger.Error(err))
			metrics.BlockInvalid.WithLabelValues("decrypt_meta_json").Inc()
			return false, nil
		}
	}

	if onionrcrypto.InWindow(b.Date) {
		if ctx.Replay == nil || !ctx.Replay.Validate(meta.Rply) {
			b.zeroDecryptedState()
			logger.Warn("block: rejecting replayed or unverifiable block", logger.String("hash", b.Hash))
			metrics.BlockInvalid.WithLabelValues("replay").Inc()
			return false, ErrReplayAttack
		}
	}

	body := opened.Body
	if meta.ForwardEnc && ctx.Forward != nil && ctx.Envelope != nil {
		if plain, ferr := ctx.Forward.Open(ctx.Envelope.PrivateKey(), body); ferr == nil {
			body = plain
		} else {
			// Swallow the forward-decryption error without revealing
			// content: the outer layer already verified, so the body
			// is cleared rather than erroring the whole decrypt.
			body = nil
		}
	}

	b.Metadata = meta
	b.Content = body
	b.Header.Signer = opened.Signer
	b.Header.Sig = opened.Signature
	metaJSON, _ := json.Marshal(meta)
	b.signedData = signedRegion(metaJSON, body)
	b.decrypted = true

	return true, nil
}

func (b *Block) zeroDecryptedState() {
	b.Metadata = Metadata{}
	b.Header.Signer = ""
	b.Header.Sig = ""
	b.signedData = nil
	b.Content = nil
}

// unpackSealedLayer splits the body into the three independently
// sealed fields the sender produced: meta, body, and a signature+signer
// pair. The wire form is three base58 packets separated by '|', which
// asym-encrypted blocks never otherwise contain since packets are
// base58 alphanumeric text.
func unpackSealedLayer(content []byte) ([3]string, error) {
	var parts [3]string
	raw := string(content)
	start := 0
	field := 0
	for i := 0; i <= len(raw); i++ {
		if i == len(raw) || raw[i] == '|' {
			if field >= 3 {
				return parts, fmt.Errorf("%w: too many sealed fields", ErrParseFailure)
			}
			parts[field] = raw[start:i]
			field++
			start = i + 1
		}
	}
	if field != 3 {
		return parts, fmt.Errorf("%w: expected 3 sealed fields, got %d", ErrParseFailure, field)
	}
	return parts, nil
}

// packSealedLayer is the Encrypt-side counterpart of unpackSealedLayer.
func packSealedLayer(metaPacket, bodyPacket, sigPacket string) []byte {
	return []byte(metaPacket + "|" + bodyPacket + "|" + sigPacket)
}

func openSealedLayer(env *keys.Envelope, sealed [3]string) (decryptedLayer, error) {
	var out decryptedLayer

	meta, err := env.DecryptAsym(sealed[0])
	if err != nil {
		return out, err
	}
	body, err := env.DecryptAsym(sealed[1])
	if err != nil {
		return out, err
	}
	sigBlob, err := env.DecryptAsym(sealed[2])
	if err != nil {
		return out, err
	}

	var sigEnv struct {
		Sig    string `json:"sig"`
		Signer string `json:"signer"`
	}
	if err := json.Unmarshal(sigBlob, &sigEnv); err != nil {
		return out, err
	}

	out.Meta = meta
	out.Body = body
	out.Signature = sigEnv.Sig
	out.Signer = sigEnv.Signer
	return out, nil
}

// VerifySig returns Ed25519 verification of signedData under signer
// with signature, as recorded on the block (after decryption for
// encrypted blocks, directly from the header for plaintext ones).
func (b *Block) VerifySig() bool {
	if b.Header.Sig == "" || b.Header.Signer == "" {
		return false
	}
	return keys.VerifyEncoded(b.Header.Signer, b.signedData, b.Header.Sig)
}

// IsSigner reports whether verification succeeds using a
// caller-supplied public key rather than the block's own header.signer.
func (b *Block) IsSigner(pubB58 string) bool {
	if b.Header.Sig == "" {
		return false
	}
	return keys.VerifyEncoded(pubB58, b.signedData, b.Header.Sig)
}
