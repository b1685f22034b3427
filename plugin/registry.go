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

// Package plugin implements discovery, lifecycle management, and the
// event surface that out-of-process and in-process plugins attach to.
package plugin

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sync"

	"github.com/InvisaMage/onionr/config"
)

var namePattern = regexp.MustCompile(`^[0-9a-zA-Z_]+$`)

// SanitizeName reports whether name is a safe plugin directory name.
func SanitizeName(name string) bool {
	return name != "" && namePattern.MatchString(name)
}

// LifecycleHandler receives a plugin's enable/disable/start/stop
// events. A Go plugin registers its handler via Register during
// package init, so the core never imports plugin implementations.
type LifecycleHandler interface {
	OnEnable() error
	OnDisable() error
	OnStart() error
	OnStop() error
}

var (
	registryMu sync.Mutex
	handlers   = make(map[string]LifecycleHandler)
)

// Register attaches handler to name so future Enable/Disable/Start/Stop
// calls dispatch to it. Called from a plugin package's init().
func Register(name string, handler LifecycleHandler) {
	registryMu.Lock()
	defer registryMu.Unlock()
	handlers[name] = handler
}

func lookupHandler(name string) (LifecycleHandler, bool) {
	registryMu.Lock()
	defer registryMu.Unlock()
	h, ok := handlers[name]
	return h, ok
}

// Manager drives plugin discovery and lifecycle against the node's
// config store, persisting the enabled set at plugins.enabled.
type Manager struct {
	mu      sync.Mutex
	cfg     *config.Store
	dataDir string
	started map[string]bool
	events  *EventBus
}

// NewManager returns a Manager rooted at <dataDir>/plugins.
func NewManager(cfg *config.Store, dataDir string, events *EventBus) *Manager {
	return &Manager{
		cfg:     cfg,
		dataDir: dataDir,
		started: make(map[string]bool),
		events:  events,
	}
}

func (m *Manager) pluginsDir() string {
	return filepath.Join(m.dataDir, "plugins")
}

// Discover lists sanitized plugin names present under the plugins
// directory. Non-matching entries are silently skipped.
func (m *Manager) Discover() ([]string, error) {
	entries, err := os.ReadDir(m.pluginsDir())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("plugin: discover: %w", err)
	}

	var names []string
	for _, e := range entries {
		if !e.IsDir() || !SanitizeName(e.Name()) {
			continue
		}
		names = append(names, e.Name())
	}
	return names, nil
}

func (m *Manager) enabledList() []string {
	raw := m.cfg.GetOrDefault(config.KeyPluginsEnabled, []interface{}{})
	items, _ := raw.([]interface{})
	out := make([]string, 0, len(items))
	for _, it := range items {
		if s, ok := it.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

func (m *Manager) saveEnabledList(names []string) error {
	values := make([]interface{}, len(names))
	for i, n := range names {
		values[i] = n
	}
	return m.cfg.Set(config.KeyPluginsEnabled, values, true)
}

func containsName(list []string, name string) bool {
	for _, n := range list {
		if n == name {
			return true
		}
	}
	return false
}

// Enable imports (looks up the registered handler for) name and fires
// its enable event; on success it is appended to plugins.enabled and
// its start event fires too. Import failure during enable leaves the
// plugin in the disabled state — nothing is persisted.
func (m *Manager) Enable(name string) error {
	if !SanitizeName(name) {
		return fmt.Errorf("plugin: invalid name %q", name)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	enabled := m.enabledList()
	if containsName(enabled, name) {
		return nil
	}

	handler, ok := lookupHandler(name)
	if !ok {
		return fmt.Errorf("plugin: %q is not registered", name)
	}
	if err := handler.OnEnable(); err != nil {
		return fmt.Errorf("plugin: enable %q: %w", name, err)
	}

	if err := m.saveEnabledList(append(enabled, name)); err != nil {
		return err
	}
	if m.events != nil {
		m.events.Publish(Event{Type: EventEnabled, Plugin: name})
	}

	return m.startLocked(name, handler)
}

// Disable removes name from plugins.enabled and fires disable then
// stop.
func (m *Manager) Disable(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	enabled := m.enabledList()
	remaining := make([]string, 0, len(enabled))
	found := false
	for _, n := range enabled {
		if n == name {
			found = true
			continue
		}
		remaining = append(remaining, n)
	}
	if !found {
		return nil
	}
	if err := m.saveEnabledList(remaining); err != nil {
		return err
	}

	handler, ok := lookupHandler(name)
	if ok {
		if err := handler.OnDisable(); err != nil {
			return fmt.Errorf("plugin: disable %q: %w", name, err)
		}
	}
	if m.events != nil {
		m.events.Publish(Event{Type: EventDisabled, Plugin: name})
	}
	return m.stopLocked(name, handler)
}

// Reload iterates plugins.enabled, stopping then starting each.
func (m *Manager) Reload() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, name := range m.enabledList() {
		handler, ok := lookupHandler(name)
		if !ok {
			continue
		}
		if m.started[name] {
			if err := m.stopLocked(name, handler); err != nil {
				return err
			}
		}
		if err := m.startLocked(name, handler); err != nil {
			return err
		}
	}
	return nil
}

// Start dispatches the start lifecycle event for name, caching that it
// has been started so repeated calls are no-ops.
func (m *Manager) Start(name string) error {
	handler, ok := lookupHandler(name)
	if !ok {
		return fmt.Errorf("plugin: %q is not registered", name)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.startLocked(name, handler)
}

// Stop dispatches the stop lifecycle event for name.
func (m *Manager) Stop(name string) error {
	handler, _ := lookupHandler(name)
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stopLocked(name, handler)
}

func (m *Manager) startLocked(name string, handler LifecycleHandler) error {
	if m.started[name] {
		return nil
	}
	if handler != nil {
		if err := handler.OnStart(); err != nil {
			return fmt.Errorf("plugin: start %q: %w", name, err)
		}
	}
	m.started[name] = true
	if m.events != nil {
		m.events.Publish(Event{Type: EventStarted, Plugin: name})
	}
	return nil
}

func (m *Manager) stopLocked(name string, handler LifecycleHandler) error {
	if !m.started[name] {
		return nil
	}
	if handler != nil {
		if err := handler.OnStop(); err != nil {
			return fmt.Errorf("plugin: stop %q: %w", name, err)
		}
	}
	delete(m.started, name)
	if m.events != nil {
		m.events.Publish(Event{Type: EventStopped, Plugin: name})
	}
	return nil
}
