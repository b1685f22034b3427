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
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/InvisaMage/onionr/config"
	"github.com/InvisaMage/onionr/plugin"
)

var pluginCmd = &cobra.Command{
	Use:   "plugin",
	Short: "Discover and manage plugins under <data-dir>/plugins",
}

var pluginListCmd = &cobra.Command{
	Use:   "list",
	Short: "List plugins present on disk and their manifests",
	RunE:  runPluginList,
}

var pluginEnableCmd = &cobra.Command{
	Use:   "enable <name>",
	Short: "Enable a registered plugin and persist it to plugins.enabled",
	Args:  cobra.ExactArgs(1),
	RunE:  runPluginEnable,
}

var pluginDisableCmd = &cobra.Command{
	Use:   "disable <name>",
	Short: "Disable a plugin",
	Args:  cobra.ExactArgs(1),
	RunE:  runPluginDisable,
}

func init() {
	rootCmd.AddCommand(pluginCmd)
	pluginCmd.AddCommand(pluginListCmd, pluginEnableCmd, pluginDisableCmd)
}

func pluginManager() *plugin.Manager {
	cfgStore := config.LoadFile(filepath.Join(dataDir, "config.json"))
	return plugin.NewManager(cfgStore, dataDir, nil)
}

func runPluginList(cmd *cobra.Command, args []string) error {
	mgr := pluginManager()
	names, err := mgr.Discover()
	if err != nil {
		return fmt.Errorf("plugin list: %w", err)
	}
	if len(names) == 0 {
		fmt.Println("no plugins found")
		return nil
	}
	for _, name := range names {
		m, err := plugin.LoadManifest(dataDir, name)
		if err != nil {
			fmt.Printf("%s (no manifest: %v)\n", name, err)
			continue
		}
		fmt.Printf("%s\tv%s\t%s\n", m.Name, m.Version, m.Description)
	}
	return nil
}

func runPluginEnable(cmd *cobra.Command, args []string) error {
	mgr := pluginManager()
	if err := mgr.Enable(args[0]); err != nil {
		return fmt.Errorf("plugin enable: %w", err)
	}
	fmt.Printf("enabled plugin: %s\n", args[0])
	return nil
}

func runPluginDisable(cmd *cobra.Command, args []string) error {
	mgr := pluginManager()
	if err := mgr.Disable(args[0]); err != nil {
		return fmt.Errorf("plugin disable: %w", err)
	}
	fmt.Printf("disabled plugin: %s\n", args[0])
	return nil
}
