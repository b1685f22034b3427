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

	"github.com/spf13/cobra"

	"github.com/InvisaMage/onionr/block"
	"github.com/InvisaMage/onionr/keymanager"
)

var blockCmd = &cobra.Command{
	Use:   "block",
	Short: "Create and inspect blocks",
	Long: `The block subcommands operate against an in-memory byte store scoped
to this single CLI invocation by default — the durable byte-store is an
external collaborator (see onionrstorage) and is out of scope here. Pass
--pg-host to back the store with PostgreSQL instead, for a store that
survives the invocation.`,
}

var blockCreateCmd = &cobra.Command{
	Use:   "create <type> <content>",
	Short: "Sign (and, with --recipient, asym-encrypt) a new block",
	Args:  cobra.ExactArgs(2),
	RunE:  runBlockCreate,
}

var (
	blockParent    string
	blockRecipient string

	blockPGHost     string
	blockPGPort     int
	blockPGUser     string
	blockPGPassword string
	blockPGDatabase string
)

func init() {
	rootCmd.AddCommand(blockCmd)
	blockCmd.AddCommand(blockCreateCmd)

	blockCreateCmd.Flags().StringVar(&blockParent, "parent", "", "parent block hash")
	blockCreateCmd.Flags().StringVar(&blockRecipient, "recipient", "", "base58 recipient public key; encrypts the block if set")

	blockCreateCmd.Flags().StringVar(&blockPGHost, "pg-host", "", "PostgreSQL host; when set, the block is stored durably instead of in-memory")
	blockCreateCmd.Flags().IntVar(&blockPGPort, "pg-port", 5432, "PostgreSQL port")
	blockCreateCmd.Flags().StringVar(&blockPGUser, "pg-user", "onionr", "PostgreSQL user")
	blockCreateCmd.Flags().StringVar(&blockPGPassword, "pg-password", "", "PostgreSQL password")
	blockCreateCmd.Flags().StringVar(&blockPGDatabase, "pg-database", "onionr", "PostgreSQL database name")
}

func runBlockCreate(cmd *cobra.Command, args []string) error {
	mgr := keymanager.New(dataDir)
	envelope, err := mgr.Active()
	if err != nil {
		return fmt.Errorf("block create: %w", err)
	}

	var store block.ByteStore
	if blockPGHost != "" {
		pg, err := block.NewPGByteStore(cmd.Context(), &block.PGConfig{
			Host:     blockPGHost,
			Port:     blockPGPort,
			User:     blockPGUser,
			Password: blockPGPassword,
			Database: blockPGDatabase,
			SSLMode:  "disable",
		})
		if err != nil {
			return fmt.Errorf("block create: %w", err)
		}
		defer pg.Close()
		store = pg
	} else {
		store = block.NewMemoryByteStore()
	}

	ctx := block.NewCoreContext(store, envelope, 0, 0)
	defer ctx.Close()

	btype, content := args[0], []byte(args[1])

	var b *block.Block
	if blockRecipient != "" {
		b, err = block.NewAsymEncrypted(ctx, blockRecipient, btype, blockParent, content, false, "")
	} else {
		b, err = block.NewPlaintext(ctx, btype, blockParent, content, true)
	}
	if err != nil {
		return fmt.Errorf("block create: %w", err)
	}

	hash, err := b.Save(ctx)
	if err != nil {
		return fmt.Errorf("block create: %w", err)
	}
	fmt.Printf("created block: %s\n", hash)
	return nil
}
