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

func TestLoadDotEnvTolertesMissingFile(t *testing.T) {
	err := LoadDotEnv(filepath.Join(t.TempDir(), "does-not-exist.env"))
	require.NoError(t, err)
}

func TestLoadDotEnvSeedsUnsetVariable(t *testing.T) {
	os.Unsetenv("ONIONR_TEST_DOTENV_VAR")
	defer os.Unsetenv("ONIONR_TEST_DOTENV_VAR")

	path := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(path, []byte("ONIONR_TEST_DOTENV_VAR=from-file\n"), 0600))

	require.NoError(t, LoadDotEnv(path))
	assert.Equal(t, "from-file", os.Getenv("ONIONR_TEST_DOTENV_VAR"))
}

func TestDataDirPrefersOnionrHomeOverDataDir(t *testing.T) {
	os.Setenv("ONIONR_HOME", "/tmp/onionr-home")
	os.Setenv("DATA_DIR", "/tmp/data-dir")
	defer os.Unsetenv("ONIONR_HOME")
	defer os.Unsetenv("DATA_DIR")

	assert.Equal(t, "/tmp/onionr-home", DataDir())
}

func TestDataDirFallsBackToDefault(t *testing.T) {
	os.Unsetenv("ONIONR_HOME")
	os.Unsetenv("DATA_DIR")

	assert.Equal(t, "./data/", DataDir())
}
