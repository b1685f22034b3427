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
	"bufio"
	"fmt"
	"net"
	"net/textproto"
	"strings"
	"time"
)

// HiddenServicePublisher is anything that can stand up and tear down an
// ephemeral v3 hidden service, authenticated by the transport's
// control-port password. ControlPortClient is the real implementation;
// tests substitute a fake.
type HiddenServicePublisher interface {
	AddOnion(targetPort, hsPort int) (onionID string, err error)
	DelOnion(onionID string) error
	Close() error
}

// ControlPortClient speaks the Tor control port's line-oriented
// protocol directly over TCP: AUTHENTICATE with the control password,
// then ADD_ONION / DEL_ONION for ephemeral-service lifecycle.
type ControlPortClient struct {
	conn net.Conn
	tp   *textproto.Reader
}

// DialControlPort connects to the control port on loopback and
// authenticates with password (the plaintext value persisted at
// tor.controlpassword).
func DialControlPort(controlPort int, password string) (*ControlPortClient, error) {
	conn, err := net.DialTimeout("tcp", fmt.Sprintf("127.0.0.1:%d", controlPort), 5*time.Second)
	if err != nil {
		return nil, fmt.Errorf("bootstrap: dial control port: %w", err)
	}
	c := &ControlPortClient{
		conn: conn,
		tp:   textproto.NewReader(bufio.NewReader(conn)),
	}
	if err := c.authenticate(password); err != nil {
		conn.Close()
		return nil, err
	}
	return c, nil
}

// command sends cmd and reads the reply, which may span several
// "250-key=value" continuation lines terminated by a final "250 …"
// line per the control-port protocol. It returns all lines joined by
// "\n" so callers can scan the whole reply for a field.
func (c *ControlPortClient) command(cmd string) (string, error) {
	if _, err := fmt.Fprintf(c.conn, "%s\r\n", cmd); err != nil {
		return "", fmt.Errorf("bootstrap: control port write: %w", err)
	}

	var lines []string
	for {
		line, err := c.tp.ReadLine()
		if err != nil {
			return "", fmt.Errorf("bootstrap: control port read: %w", err)
		}
		if !strings.HasPrefix(line, "250") {
			return "", fmt.Errorf("bootstrap: control port error: %s", line)
		}
		lines = append(lines, line)
		if strings.HasPrefix(line, "250 ") {
			break
		}
	}
	return strings.Join(lines, "\n"), nil
}

func (c *ControlPortClient) authenticate(password string) error {
	_, err := c.command(fmt.Sprintf(`AUTHENTICATE "%s"`, password))
	return err
}

// AddOnion creates a fresh ephemeral v3 service whose virtual hsPort
// forwards to 127.0.0.1:targetPort, returning the bare onion id
// (without the ".onion" suffix).
func (c *ControlPortClient) AddOnion(targetPort, hsPort int) (string, error) {
	line, err := c.command(fmt.Sprintf("ADD_ONION NEW:BEST Flags=DiscardPK Port=%d,127.0.0.1:%d", hsPort, targetPort))
	if err != nil {
		return "", err
	}
	const marker = "ServiceID="
	idx := strings.Index(line, marker)
	if idx == -1 {
		return "", fmt.Errorf("bootstrap: ADD_ONION reply missing ServiceID: %s", line)
	}
	id := line[idx+len(marker):]
	if nl := strings.IndexByte(id, '\n'); nl != -1 {
		id = id[:nl]
	}
	id = strings.TrimSpace(id)
	if !ValidOnionAddress(id) {
		return "", fmt.Errorf("bootstrap: control port returned malformed onion id %q", id)
	}
	return id, nil
}

// DelOnion tears down a service previously created with AddOnion.
func (c *ControlPortClient) DelOnion(onionID string) error {
	_, err := c.command("DEL_ONION " + onionID)
	return err
}

// Close releases the control connection.
func (c *ControlPortClient) Close() error {
	return c.conn.Close()
}
