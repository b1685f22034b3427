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
	"context"
	"encoding/base64"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/InvisaMage/onionr/config"
)

func TestAllocatePortReturnsNonZeroEphemeralPorts(t *testing.T) {
	p1, err := AllocatePort()
	require.NoError(t, err)
	assert.NotZero(t, p1)

	p2, err := AllocatePort()
	require.NoError(t, err)
	assert.NotZero(t, p2)
}

func TestGenerateControlPasswordIsBase64AndUnique(t *testing.T) {
	a, err := GenerateControlPassword()
	require.NoError(t, err)
	b, err := GenerateControlPassword()
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
	assert.NotEmpty(t, a)

	raw, err := base64.StdEncoding.DecodeString(a)
	require.NoError(t, err)
	assert.Len(t, raw, 50)
}

func TestSynthesizeTorrcOmitsHiddenServiceByDefault(t *testing.T) {
	out := SynthesizeTorrc(TorrcParams{
		DataDir:           "/tmp/onionr-test",
		SocksPort:         9050,
		ControlPort:       9051,
		HashedControlPass: "16:ABCDEF",
		LongLivedHS:       false,
	})

	assert.Contains(t, out, "SocksPort 9050 OnionTrafficOnly")
	assert.Contains(t, out, "ControlPort 9051")
	assert.Contains(t, out, "CookieAuthentication 1")
	assert.Contains(t, out, "HashedControlPassword 16:ABCDEF")
	assert.NotContains(t, out, "HiddenServiceDir")
}

func TestSynthesizeTorrcEmitsHiddenServiceAtSecurityLevelZero(t *testing.T) {
	out := SynthesizeTorrc(TorrcParams{
		DataDir:            "/tmp/onionr-test",
		SocksPort:          9050,
		ControlPort:        9051,
		HashedControlPass:  "16:ABCDEF",
		LongLivedHS:        true,
		V3Onions:           true,
		HiddenServiceAPIIP: "127.0.0.1",
		HiddenServicePort:  8080,
	})

	assert.Contains(t, out, "HiddenServiceDir")
	assert.Contains(t, out, "HiddenServiceVersion 3")
	assert.Contains(t, out, "HiddenServicePort 80 127.0.0.1:8080")
	assert.False(t, strings.Contains(out, "# HiddenServiceVersion"))
}

func TestSynthesizeTorrcCommentsOutV2Version(t *testing.T) {
	out := SynthesizeTorrc(TorrcParams{
		LongLivedHS: true,
		V3Onions:    false,
	})
	assert.Contains(t, out, "# HiddenServiceVersion 2")
}

func TestControllerStopToleratesMissingPIDFile(t *testing.T) {
	dir := t.TempDir()
	c := New(config.New(), dir, "tor")
	require.NoError(t, c.Stop())
	assert.Equal(t, Stopped, c.State())
}

func TestControllerStartFailsFastOnMissingBinary(t *testing.T) {
	dir := t.TempDir()
	c := New(config.New(), dir, "onionr-nonexistent-transport-binary")
	err := c.Start(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNetworkStartupFailure)
	assert.Equal(t, Stopped, c.State())
}
