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

package plugin

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/InvisaMage/onionr/config"
)

type fakeHandler struct {
	enableErr    error
	enableCalls  int
	disableCalls int
	startCalls   int
	stopCalls    int
}

func (f *fakeHandler) OnEnable() error  { f.enableCalls++; return f.enableErr }
func (f *fakeHandler) OnDisable() error { f.disableCalls++; return nil }
func (f *fakeHandler) OnStart() error   { f.startCalls++; return nil }
func (f *fakeHandler) OnStop() error    { f.stopCalls++; return nil }

func TestSanitizeName(t *testing.T) {
	assert.True(t, SanitizeName("my_plugin_1"))
	assert.False(t, SanitizeName("../etc/passwd"))
	assert.False(t, SanitizeName("has space"))
	assert.False(t, SanitizeName(""))
}

func TestEnableDisableLifecycle(t *testing.T) {
	cfg := config.New()
	mgr := NewManager(cfg, t.TempDir(), nil)

	h := &fakeHandler{}
	Register("testplugin", h)

	require.NoError(t, mgr.Enable("testplugin"))
	assert.Equal(t, 1, h.enableCalls)
	assert.Equal(t, 1, h.startCalls)

	enabled := cfg.GetOrDefault(config.KeyPluginsEnabled, []interface{}{}).([]interface{})
	require.Len(t, enabled, 1)
	assert.Equal(t, "testplugin", enabled[0])

	require.NoError(t, mgr.Disable("testplugin"))
	assert.Equal(t, 1, h.disableCalls)
	assert.Equal(t, 1, h.stopCalls)

	enabled = cfg.GetOrDefault(config.KeyPluginsEnabled, []interface{}{}).([]interface{})
	assert.Len(t, enabled, 0)
}

func TestEnableLeavesPluginDisabledOnImportFailure(t *testing.T) {
	cfg := config.New()
	mgr := NewManager(cfg, t.TempDir(), nil)

	h := &fakeHandler{enableErr: errors.New("boom")}
	Register("failing", h)

	err := mgr.Enable("failing")
	require.Error(t, err)

	enabled := cfg.GetOrDefault(config.KeyPluginsEnabled, []interface{}{}).([]interface{})
	assert.Len(t, enabled, 0)
}

func TestDiscoverSkipsUnsanitizedNames(t *testing.T) {
	dir := t.TempDir()
	pluginsDir := filepath.Join(dir, "plugins")
	require.NoError(t, os.MkdirAll(filepath.Join(pluginsDir, "good_plugin"), 0700))
	require.NoError(t, os.MkdirAll(filepath.Join(pluginsDir, "bad plugin"), 0700))
	require.NoError(t, os.WriteFile(filepath.Join(pluginsDir, "notadir"), []byte("x"), 0600))

	mgr := NewManager(config.New(), dir, nil)
	names, err := mgr.Discover()
	require.NoError(t, err)
	assert.Equal(t, []string{"good_plugin"}, names)
}

func TestDiscoverToleratesMissingPluginsDir(t *testing.T) {
	mgr := NewManager(config.New(), t.TempDir(), nil)
	names, err := mgr.Discover()
	require.NoError(t, err)
	assert.Empty(t, names)
}

func TestReloadRestartsEnabledPlugins(t *testing.T) {
	cfg := config.New()
	mgr := NewManager(cfg, t.TempDir(), nil)

	h := &fakeHandler{}
	Register("reloadme", h)

	require.NoError(t, mgr.Enable("reloadme"))
	require.NoError(t, mgr.Reload())

	assert.Equal(t, 2, h.startCalls)
	assert.Equal(t, 1, h.stopCalls)
}

func TestLoadManifestDefaultsNameFromDirectory(t *testing.T) {
	dir := t.TempDir()
	pluginDir := filepath.Join(dir, "plugins", "greeter")
	require.NoError(t, os.MkdirAll(pluginDir, 0700))
	require.NoError(t, os.WriteFile(filepath.Join(pluginDir, "plugin.yaml"), []byte("version: 1.0.0\n"), 0600))

	m, err := LoadManifest(dir, "greeter")
	require.NoError(t, err)
	assert.Equal(t, "greeter", m.Name)
	assert.Equal(t, "1.0.0", m.Version)
}

func TestLoadManifestRejectsUnsanitizedName(t *testing.T) {
	_, err := LoadManifest(t.TempDir(), "../evil")
	assert.Error(t, err)
}

func TestEventBusPublishWithNoListeners(t *testing.T) {
	bus := NewEventBus()
	assert.Equal(t, 0, bus.ConnectionCount())
	bus.Publish(Event{Type: EventStarted, Plugin: "noop"})
	bus.Close()
}
