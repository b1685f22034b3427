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

package main

import (
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/InvisaMage/onionr/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect and edit the dotted-path config store",
}

var configGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Print the value at a dotted config path",
	Args:  cobra.ExactArgs(1),
	RunE:  runConfigGet,
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <json-value>",
	Short: "Set a dotted config path to a JSON-decoded value and persist it",
	Example: `  onionr config set general.security_level 1
  onionr config set tor.socksport 9050`,
	Args: cobra.ExactArgs(2),
	RunE: runConfigSet,
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "Print the full config tree as JSON",
	RunE:  runConfigList,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configGetCmd, configSetCmd, configListCmd)
}

func configPath() string {
	return filepath.Join(dataDir, "config.json")
}

func runConfigGet(cmd *cobra.Command, args []string) error {
	store := config.LoadFile(configPath())
	v := store.GetOrDefault(args[0], nil)
	if v == nil {
		fmt.Printf("%s is not set\n", args[0])
		return nil
	}
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	var value interface{}
	if err := json.Unmarshal([]byte(args[1]), &value); err != nil {
		return fmt.Errorf("config set: %q is not valid JSON: %w", args[1], err)
	}

	store := config.LoadFile(configPath())
	if err := store.Set(args[0], value, true); err != nil {
		return fmt.Errorf("config set: %w", err)
	}
	fmt.Printf("%s = %s\n", args[0], args[1])
	return nil
}

func runConfigList(cmd *cobra.Command, args []string) error {
	store := config.LoadFile(configPath())
	out, err := json.MarshalIndent(store.Snapshot(), "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}
