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

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoreSetGetIsSet(t *testing.T) {
	s := New()

	require.NoError(t, s.Set("a.b.c", float64(1), false))
	assert.Equal(t, float64(1), s.Get("a.b.c", nil, false))
	assert.True(t, s.IsSet("a.b.c"))

	require.NoError(t, s.Set("a.b.c", nil, false))
	assert.False(t, s.IsSet("a.b.c"))
}

func TestStoreGetDefault(t *testing.T) {
	s := New()
	assert.Equal(t, "fallback", s.Get("missing.path", "fallback", false))
	assert.False(t, s.IsSet("missing.path"))

	assert.Equal(t, "fallback", s.Get("missing.path", "fallback", true))
	assert.True(t, s.IsSet("missing.path"))
}

func TestStorePersistence(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")

	s := LoadFile(path)
	require.NoError(t, s.Set("x.y", float64(1), true))

	reloaded := LoadFile(path)
	assert.Equal(t, float64(1), reloaded.Get("x.y", nil, false))
}

func TestLoadFileToleratesMissingOrMalformed(t *testing.T) {
	dir := t.TempDir()

	missing := LoadFile(filepath.Join(dir, "does-not-exist.json"))
	assert.False(t, missing.IsSet("anything"))

	malformedPath := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(malformedPath, []byte("{not json"), 0644))
	malformed := LoadFile(malformedPath)
	assert.False(t, malformed.IsSet("anything"))
}
