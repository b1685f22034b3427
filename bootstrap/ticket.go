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
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TicketClaims binds a rendezvous session id to the requesting onion
// address, so a peer handed this ticket carries a self-verifying
// credential rather than a bare session token.
type TicketClaims struct {
	SessionID string `json:"sid"`
	Address   string `json:"addr"`
	jwt.RegisteredClaims
}

// IssueTicket signs a short-lived ticket for sessionID/address, valid
// for ttl, using secret (the control-port password bytes, which only
// this node and its rendezvous peer ever see in plaintext).
func IssueTicket(secret []byte, sessionID, address string, ttl time.Duration) (string, error) {
	claims := TicketClaims{
		SessionID: sessionID,
		Address:   address,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(secret)
	if err != nil {
		return "", fmt.Errorf("bootstrap: issue ticket: %w", err)
	}
	return signed, nil
}

// ParseTicket verifies and decodes a ticket previously produced by
// IssueTicket, rejecting expired or mis-signed tokens.
func ParseTicket(secret []byte, tokenStr string) (*TicketClaims, error) {
	claims := &TicketClaims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("bootstrap: parse ticket: %w", err)
	}
	if !token.Valid {
		return nil, fmt.Errorf("bootstrap: ticket invalid")
	}
	return claims, nil
}
