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

// Package block implements the Onionr block model: the on-wire/at-rest
// object format, its validation rules, parent-chain reassembly, and the
// process-global block cache.
package block

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/InvisaMage/onionr/internal/logger"
)

// EncryptType values for header.encryptType.
const (
	EncryptNone = ""
	EncryptAsym = "asym"
	EncryptSym  = "sym" // reserved, never implemented; decrypt fails cleanly.
)

// Errors surfaced by the block model. Decryption/signature failures
// are deliberately NOT in this list — those are recovered locally
// (return false/empty) to avoid side-channel content disclosure; only
// failures meant to propagate to a caller for logging get a sentinel.
var (
	ErrParseFailure = errors.New("block: malformed header or body")
	ErrReplayAttack = errors.New("block: replay window violation")
	ErrNotEncrypted = errors.New("block: decrypt called on a non-asym block")
)

// Header is the always-plaintext top-level envelope.
type Header struct {
	Sig         string          `json:"sig,omitempty"`
	Signer      string          `json:"signer,omitempty"`
	Time        int64           `json:"time"`
	EncryptType string          `json:"encryptType"`
	Meta        json.RawMessage `json:"meta"`
}

// Metadata is the (possibly encrypted) inner metadata object.
type Metadata struct {
	Type       string `json:"type,omitempty"`
	Parent     string `json:"parent,omitempty"`
	Rply       string `json:"rply,omitempty"`
	ForwardEnc bool   `json:"forwardEnc,omitempty"`
}

// Block is the atomic content-addressed network object.
type Block struct {
	Hash     string
	Raw      []byte
	Header   Header
	Metadata Metadata
	Content  []byte

	Date  time.Time // receipt time from the byte-store, not author-claimed.
	Valid bool

	isEncrypted bool
	decrypted   bool
	signedData  []byte // meta ‖ content, computed per spec 4.1.
}

// splitHeader splits raw at the first newline and parses the prefix as
// a Header. The suffix (body) is returned unparsed.
func splitHeader(raw []byte) (Header, []byte, error) {
	idx := bytes.IndexByte(raw, '\n')
	if idx < 0 {
		logger.Warn("block: rejecting raw bytes with no header separator")
		return Header{}, nil, fmt.Errorf("%w: no header separator", ErrParseFailure)
	}
	var h Header
	if err := json.Unmarshal(raw[:idx], &h); err != nil {
		logger.Warn("block: header is not valid JSON", logger.Error(err))
		return Header{}, nil, fmt.Errorf("%w: %v", ErrParseFailure, err)
	}
	return h, raw[idx+1:], nil
}

// plaintextMetadata parses header.Meta as a Metadata object, returning
// ok=false if it looks encrypted (not a JSON object) rather than
// erroring — callers use this to distinguish plaintext from encrypted
// blocks without needing the encryptType tag.
func plaintextMetadata(h Header) (Metadata, bool) {
	var m Metadata
	if len(h.Meta) == 0 {
		return m, true
	}
	if err := json.Unmarshal(h.Meta, &m); err != nil {
		return Metadata{}, false
	}
	return m, true
}

// newFromRaw parses raw into a Block without touching the byte store.
// This is the single entry point referenced by the spec as update():
// on failure the caller is expected to delete the offending bytes.
func newFromRaw(hash string, raw []byte, receivedAt time.Time) (*Block, error) {
	header, body, err := splitHeader(raw)
	if err != nil {
		return nil, err
	}

	b := &Block{
		Hash:   hash,
		Raw:    raw,
		Header: header,
		Date:   receivedAt,
	}

	switch header.EncryptType {
	case EncryptAsym, EncryptSym:
		b.isEncrypted = true
		b.Content = body
		// meta stays the opaque blob in header.Meta until decrypt().
	default:
		meta, ok := plaintextMetadata(header)
		if !ok {
			logger.Warn("block: plaintext metadata is not valid JSON", logger.String("hash", hash))
			return nil, fmt.Errorf("%w: metadata is not valid JSON", ErrParseFailure)
		}
		b.Metadata = meta
		b.Content = body
		b.isEncrypted = false
		b.decrypted = true // nothing to decrypt; already "opened".
	}

	signed := header.Sig != ""
	if signed && !b.isEncrypted {
		b.signedData = signedRegion(header.Meta, body)
	}

	b.Valid = true
	return b, nil
}

// signedRegion is meta ‖ content with no separator, exactly as spec
// 3/4.1 define the signed region.
func signedRegion(meta json.RawMessage, content []byte) []byte {
	out := make([]byte, 0, len(meta)+len(content))
	out = append(out, meta...)
	out = append(out, content...)
	return out
}

// IsSigned reports whether the header carries a non-empty signature.
func (b *Block) IsSigned() bool {
	return b.Header.Sig != ""
}

// IsEncrypted reports whether this block's outer layer is asym- or
// sym-encrypted (sym is always opaque — it is never implemented).
func (b *Block) IsEncrypted() bool {
	return b.isEncrypted
}

// Decrypted reports whether decrypt() has already succeeded (or the
// block was never encrypted in the first place).
func (b *Block) Decrypted() bool {
	return b.decrypted
}

// Serialize reproduces the wire form header_json\nbody.
func Serialize(header Header, body []byte) ([]byte, error) {
	headerJSON, err := json.Marshal(header)
	if err != nil {
		return nil, err
	}
	out := make([]byte, 0, len(headerJSON)+1+len(body))
	out = append(out, headerJSON...)
	out = append(out, '\n')
	out = append(out, body...)
	return out, nil
}
