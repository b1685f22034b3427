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

package netcontroller

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"net"
	"os/exec"
	"path/filepath"
	"strings"
)

// AllocatePort binds an OS-chosen ephemeral port on loopback, reads the
// assigned port, closes the socket, and returns it. There is a small
// TOCTOU window before the real listener rebinds it; accepted per spec.
func AllocatePort() (int, error) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return 0, fmt.Errorf("allocate port: %w", err)
	}
	defer l.Close()
	return l.Addr().(*net.TCPAddr).Port, nil
}

// GenerateControlPassword returns a fresh 50-byte random token,
// base64-encoded, suitable for persisting as tor.controlpassword.
func GenerateControlPassword() (string, error) {
	buf := make([]byte, 50)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate control password: %w", err)
	}
	return base64.StdEncoding.EncodeToString(buf), nil
}

// HashControlPassword invokes "<torBin> --hash-password <password>" and
// returns the first stdout line that does not contain "warn".
func HashControlPassword(torBin, password string) (string, error) {
	out, err := exec.Command(torBin, "--hash-password", password).CombinedOutput()
	if err != nil {
		return "", fmt.Errorf("hash control password: %w", err)
	}
	for _, line := range strings.Split(string(out), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if strings.Contains(strings.ToLower(line), "warn") {
			continue
		}
		return line, nil
	}
	return "", fmt.Errorf("hash control password: no usable output line")
}

// TorrcParams is every value needed to synthesize a torrc.
type TorrcParams struct {
	DataDir            string
	SocksPort          int
	ControlPort        int
	HashedControlPass  string
	LongLivedHS        bool // general.security_level == 0
	V3Onions           bool
	HiddenServiceAPIIP string
	HiddenServicePort  int
}

// SynthesizeTorrc renders the torrc text described in spec 4.4. The
// hidden-service stanza is emitted only when LongLivedHS is set; a v2
// request with LongLivedHS is rendered with its version line commented
// out rather than omitted, to document the intentional choice.
func SynthesizeTorrc(p TorrcParams) string {
	var b strings.Builder

	fmt.Fprintf(&b, "SocksPort %d OnionTrafficOnly\n", p.SocksPort)
	fmt.Fprintf(&b, "DataDirectory %s\n", filepath.Join(p.DataDir, "tordata")+string(filepath.Separator))
	b.WriteString("CookieAuthentication 1\n")
	fmt.Fprintf(&b, "ControlPort %d\n", p.ControlPort)
	fmt.Fprintf(&b, "HashedControlPassword %s\n", p.HashedControlPass)

	if p.LongLivedHS {
		fmt.Fprintf(&b, "HiddenServiceDir %s\n", filepath.Join(p.DataDir, "hs")+string(filepath.Separator))
		if p.V3Onions {
			b.WriteString("HiddenServiceVersion 3\n")
		} else {
			b.WriteString("# HiddenServiceVersion 2\n")
		}
		fmt.Fprintf(&b, "HiddenServicePort 80 %s:%d\n", p.HiddenServiceAPIIP, p.HiddenServicePort)
	}

	return b.String()
}
