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

// QueryOptions filters a getBlocks call. Signer accepts single or set
// (match-any); zero-value fields are wildcards.
type QueryOptions struct {
	Type    string
	Signer  []string
	Signed  *bool
	Parent  string
	Reverse bool
	Limit   int
}

// Get loads a single block by hash, preferring the cache.
func Get(ctx *CoreContext, hash string) (*Block, error) {
	if ctx.Cache != nil {
		if raw, receivedAt, ok := ctx.Cache.Get(hash); ok {
			return newFromRaw(hash, raw, receivedAt)
		}
	}

	raw, receivedAt, err := ctx.Store.GetBlockData(hash)
	if err != nil {
		return nil, err
	}
	b, err := newFromRaw(hash, raw, receivedAt)
	if err != nil {
		if rmErr := ctx.Store.RemoveBlock(hash); rmErr != nil {
			return nil, rmErr
		}
		return nil, err
	}
	if ctx.Cache != nil {
		ctx.Cache.Insert(hash, raw, ctx.BlockCacheBytes)
	}
	return b, nil
}

// GetBlocks filters the store per spec 4.1: type narrows via the
// store's GetBlocksByType; every remaining predicate is applied after
// loading each candidate block. The note in the design section about
// an undefined relevant_Blocks variable is NOT reproduced here — the
// limit check below is the corrected len(relevant) < limit behavior.
func GetBlocks(ctx *CoreContext, opts QueryOptions) ([]*Block, error) {
	hashes, err := ctx.Store.GetBlocksByType(opts.Type)
	if err != nil {
		return nil, err
	}

	var relevant []*Block
	for _, hash := range hashes {
		b, err := Get(ctx, hash)
		if err != nil {
			continue
		}
		if !matchesQuery(b, opts) {
			continue
		}
		relevant = append(relevant, b)
		if opts.Limit > 0 && len(relevant) >= opts.Limit {
			break
		}
	}

	if opts.Reverse {
		for i, j := 0, len(relevant)-1; i < j; i, j = i+1, j-1 {
			relevant[i], relevant[j] = relevant[j], relevant[i]
		}
	}

	return relevant, nil
}

func matchesQuery(b *Block, opts QueryOptions) bool {
	if opts.Signed != nil && b.IsSigned() != *opts.Signed {
		return false
	}
	if len(opts.Signer) > 0 && !containsString(opts.Signer, b.Header.Signer) {
		return false
	}
	if opts.Parent != "" && b.Metadata.Parent != opts.Parent {
		return false
	}
	return true
}

func containsString(set []string, v string) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}
