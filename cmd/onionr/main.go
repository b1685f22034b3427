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
	"os"

	"github.com/spf13/cobra"

	"github.com/InvisaMage/onionr/config"
)

// dataDir is the resolved node home directory, shared by every
// subcommand. Flag takes precedence over ONIONR_HOME/DATA_DIR.
var dataDir string

var rootCmd = &cobra.Command{
	Use:   "onionr",
	Short: "Onionr CLI - anonymous peer-to-peer content-addressed storage",
	Long: `Onionr is an anonymous, peer-to-peer content-addressed storage and
messaging network built on signed, optionally encrypted blocks relayed
over Tor hidden services.

This CLI manages a node's local identity keys, configuration, Tor
transport lifecycle, bootstrap rendezvous, block store, and plugins.`,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	// Best effort: a committed .env in the working directory seeds
	// ONIONR_HOME/DATA_DIR/ONIONR_ENV for local development without
	// overriding whatever the operator's shell already exports.
	_ = config.LoadDotEnv(".env")

	rootCmd.CompletionOptions.DisableDefaultCmd = true
	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", config.DataDir(), "node data directory (defaults to ONIONR_HOME or DATA_DIR)")

	// Note: subcommands are registered in their respective files:
	// - key.go: keyCmd
	// - config.go: configCmd
	// - net.go: netCmd
	// - bootstrap.go: bootstrapCmd
	// - block.go: blockCmd
	// - plugin.go: pluginCmd
	// - status.go: statusCmd
}
