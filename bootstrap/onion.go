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

import "regexp"

// onionV3Pattern matches a bare v3 onion address: 56 base32 characters.
// Callers pass the address without the ".onion" suffix (per the POST
// /bs/<address> route), so the suffix is not part of the pattern.
var onionV3Pattern = regexp.MustCompile(`^[a-z2-7]{56}$`)

// ValidOnionAddress reports whether addr is a well-formed v3 onion id.
func ValidOnionAddress(addr string) bool {
	return onionV3Pattern.MatchString(addr)
}
