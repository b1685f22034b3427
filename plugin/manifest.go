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
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Manifest describes a plugin directory's plugin.yaml.
type Manifest struct {
	Name        string   `yaml:"name"`
	Version     string   `yaml:"version"`
	Description string   `yaml:"description,omitempty"`
	Events      []string `yaml:"events,omitempty"`
}

// LoadManifest reads <dataDir>/plugins/<name>/plugin.yaml.
func LoadManifest(dataDir, name string) (*Manifest, error) {
	if !SanitizeName(name) {
		return nil, fmt.Errorf("plugin: invalid name %q", name)
	}
	path := filepath.Join(dataDir, "plugins", name, "plugin.yaml")
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("plugin: load manifest for %q: %w", name, err)
	}

	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("plugin: parse manifest for %q: %w", name, err)
	}
	if m.Name == "" {
		m.Name = name
	}
	return &m, nil
}
