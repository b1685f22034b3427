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

package keymanager

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/InvisaMage/onionr/internal/logger"
)

func TestAddKeyGeneratesFreshPair(t *testing.T) {
	m := New(t.TempDir())

	pub, priv, err := m.AddKey("", "")
	require.NoError(t, err)
	assert.NotEmpty(t, pub)
	assert.NotEmpty(t, priv)

	list, err := m.GetPubkeyList()
	require.NoError(t, err)
	assert.Contains(t, list, pub)
}

func TestAddKeyRejectsDuplicate(t *testing.T) {
	m := New(t.TempDir())
	pub, priv, err := m.AddKey("", "")
	require.NoError(t, err)

	_, _, err = m.AddKey(pub, priv)
	assert.ErrorIs(t, err, ErrKeyExists)
}

func TestKeyFileRoundTrip(t *testing.T) {
	// Testable property 9.
	m := New(t.TempDir())
	pub, priv, err := m.AddKey("", "")
	require.NoError(t, err)

	list, err := m.GetPubkeyList()
	require.NoError(t, err)
	assert.Contains(t, list, pub)

	got, err := m.GetPrivkey(pub)
	require.NoError(t, err)
	assert.Equal(t, priv, got)

	require.NoError(t, m.RemoveKey(pub))

	list, err = m.GetPubkeyList()
	require.NoError(t, err)
	assert.NotContains(t, list, pub)
}

func TestRemoveUnknownKeyErrors(t *testing.T) {
	m := New(t.TempDir())
	err := m.RemoveKey("nonexistent")
	assert.ErrorIs(t, err, ErrKeyNotKnown)
}

func TestChangeActiveKeyRequiresPresence(t *testing.T) {
	m := New(t.TempDir())
	err := m.ChangeActiveKey("nonexistent")
	assert.ErrorIs(t, err, ErrKeyNotKnown)

	pub, _, err := m.AddKey("", "")
	require.NoError(t, err)
	require.NoError(t, m.ChangeActiveKey(pub))

	env, err := m.Active()
	require.NoError(t, err)
	assert.Equal(t, pub, env.PublicKeyB58())
}

func TestAddKeyToleratesAbsentFile(t *testing.T) {
	dir := t.TempDir()
	m := New(dir + "/does-not-exist-yet")
	_, _, err := m.AddKey("", "")
	require.NoError(t, err)
}

func TestActiveReusesDecodedKeyOnRepeatedCalls(t *testing.T) {
	m := New(t.TempDir())
	pub, _, err := m.AddKey("", "")
	require.NoError(t, err)
	require.NoError(t, m.ChangeActiveKey(pub))

	first, err := m.Active()
	require.NoError(t, err)
	second, err := m.Active()
	require.NoError(t, err)

	assert.Equal(t, first.PublicKeyB58(), second.PublicKeyB58())
	assert.Equal(t, first.PrivateKey(), second.PrivateKey())
}

func TestRemoveKeyEvictsDecodedCache(t *testing.T) {
	m := New(t.TempDir())
	pub, _, err := m.AddKey("", "")
	require.NoError(t, err)
	require.NoError(t, m.ChangeActiveKey(pub))
	_, err = m.Active()
	require.NoError(t, err)

	require.NoError(t, m.RemoveKey(pub))
	_, err = m.Active()
	assert.Error(t, err)
}

func TestActiveWithNoSelectionReturnsCodedError(t *testing.T) {
	m := New(t.TempDir())

	_, err := m.Active()
	require.Error(t, err)

	var onionrErr *logger.OnionrError
	require.ErrorAs(t, err, &onionrErr)
	assert.Equal(t, logger.ErrCodeNotFound, onionrErr.Code)
}
