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

import "encoding/base64"

// MergeChain walks child.Metadata.Parent up to limit steps, base64
// decoding each block's content and concatenating child-first
// (root-last). It stops at a null parent, an already-visited hash
// (cycle), or an unparseable parent, inspecting at most limit+1 blocks.
func MergeChain(ctx *CoreContext, child *Block, limit int) ([]byte, error) {
	var out []byte
	seen := make(map[string]bool)
	cur := child

	for steps := 0; cur != nil && steps <= limit; steps++ {
		if seen[cur.Hash] {
			break
		}
		seen[cur.Hash] = true

		decoded, err := base64.StdEncoding.DecodeString(string(cur.Content))
		if err != nil {
			break
		}
		out = append(out, decoded...)

		if cur.Metadata.Parent == "" || cur.Metadata.Parent == cur.Hash {
			break
		}
		next, err := Get(ctx, cur.Metadata.Parent)
		if err != nil || !next.Valid {
			break
		}
		cur = next
	}

	return out, nil
}
