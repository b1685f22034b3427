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
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/InvisaMage/onionr/internal/logger"
)

// LoadFile loads a dotted-path config store backed by path
// (<dataDir>/config.json). Per spec 4.6, loading is silently tolerant
// of a missing or malformed file: the Store simply starts empty rather
// than erroring, since the config tree persists nothing essential that
// isn't rebuilt by the components that own each path.
func LoadFile(path string) *Store {
	s := &Store{tree: make(map[string]interface{}), path: path}

	data, err := os.ReadFile(path)
	if err != nil {
		return s
	}

	var tree map[string]interface{}
	if err := json.Unmarshal(data, &tree); err != nil {
		logger.Warn("config: ignoring malformed config file", logger.String("path", path), logger.Error(err))
		return s
	}

	s.tree = tree
	return s
}

// Save flushes the tree to its backing file as pretty-printed JSON
// (indent 2). A Store with no backing path (s.path == "") is a no-op,
// which lets tests build throwaway in-memory stores.
func (s *Store) Save() error {
	s.mu.RLock()
	path := s.path
	data, err := json.MarshalIndent(s.tree, "", "  ")
	s.mu.RUnlock()
	if err != nil {
		return err
	}
	if path == "" {
		return nil
	}

	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return err
		}
	}
	return os.WriteFile(path, data, 0644)
}

// Path returns the backing file path, or "" for an unbacked Store.
func (s *Store) Path() string {
	return s.path
}
