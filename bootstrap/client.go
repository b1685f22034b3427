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
	"io"
	"net/http"
	"time"
)

// Client posts this node's durable address back to a peer's ephemeral
// rendezvous service. httpClient is injectable so tests and SOCKS-proxied
// production use share the same call path.
type Client struct {
	HTTPClient *http.Client
}

// NewClient returns a Client with a sane default timeout. Pass an
// *http.Client wrapping a SOCKS5 dialer (the transport's socksport) for
// production use against a .onion rendezvous host.
func NewClient(httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{HTTPClient: httpClient}
}

// PostAddress POSTs myAddress to the rendezvous service at
// rendezvousBaseURL + "/bs/" + myAddress, returning the response body
// ("success" on completion, empty on rejection).
func (c *Client) PostAddress(rendezvousBaseURL, myAddress string) (string, error) {
	url := fmt.Sprintf("%s/bs/%s", rendezvousBaseURL, myAddress)
	resp, err := c.HTTPClient.Post(url, "text/plain", nil)
	if err != nil {
		return "", fmt.Errorf("bootstrap: post address: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("bootstrap: read response: %w", err)
	}
	return string(body), nil
}

// Ping checks liveness of a rendezvous host before posting.
func (c *Client) Ping(rendezvousBaseURL string) (bool, error) {
	resp, err := c.HTTPClient.Get(rendezvousBaseURL + "/ping")
	if err != nil {
		return false, fmt.Errorf("bootstrap: ping: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return false, err
	}
	return string(body) == "pong!", nil
}
