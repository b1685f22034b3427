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

	"github.com/InvisaMage/onionr/keymanager"
)

var keyCmd = &cobra.Command{
	Use:   "key",
	Short: "Manage local identity keypairs",
}

var keyAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a keypair, generating a fresh Ed25519 pair if none is given",
	Example: `  # Generate and store a fresh identity
  onionr key add

  # Import an existing pair
  onionr key add --pub <base58> --priv <base58>`,
	RunE: runKeyAdd,
}

var keyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List known public keys",
	RunE:  runKeyList,
}

var keyRemoveCmd = &cobra.Command{
	Use:   "remove <pubkey>",
	Short: "Remove a keypair by its public key",
	Args:  cobra.ExactArgs(1),
	RunE:  runKeyRemove,
}

var keyActivateCmd = &cobra.Command{
	Use:   "activate <pubkey>",
	Short: "Select the active identity for signing operations",
	Args:  cobra.ExactArgs(1),
	RunE:  runKeyActivate,
}

var (
	keyAddPub  string
	keyAddPriv string
)

func init() {
	rootCmd.AddCommand(keyCmd)
	keyCmd.AddCommand(keyAddCmd, keyListCmd, keyRemoveCmd, keyActivateCmd)

	keyAddCmd.Flags().StringVar(&keyAddPub, "pub", "", "base58-encoded public key (omit to generate)")
	keyAddCmd.Flags().StringVar(&keyAddPriv, "priv", "", "base58-encoded private key (omit to generate)")
}

func runKeyAdd(cmd *cobra.Command, args []string) error {
	mgr := keymanager.New(dataDir)
	pub, _, err := mgr.AddKey(keyAddPub, keyAddPriv)
	if err != nil {
		return fmt.Errorf("add key: %w", err)
	}
	fmt.Printf("added key: %s\n", pub)
	return nil
}

func runKeyList(cmd *cobra.Command, args []string) error {
	mgr := keymanager.New(dataDir)
	pubs, err := mgr.GetPubkeyList()
	if err != nil {
		return fmt.Errorf("list keys: %w", err)
	}
	if len(pubs) == 0 {
		fmt.Println("no keys found")
		return nil
	}
	for _, p := range pubs {
		fmt.Println(p)
	}
	return nil
}

func runKeyRemove(cmd *cobra.Command, args []string) error {
	mgr := keymanager.New(dataDir)
	if err := mgr.RemoveKey(args[0]); err != nil {
		return fmt.Errorf("remove key: %w", err)
	}
	fmt.Printf("removed key: %s\n", args[0])
	return nil
}

func runKeyActivate(cmd *cobra.Command, args []string) error {
	// ChangeActiveKey only mutates the in-process active pointer; a
	// long-running node process (not this one-shot CLI invocation) is
	// what actually observes the switch for signing operations.
	mgr := keymanager.New(dataDir)
	if err := mgr.ChangeActiveKey(args[0]); err != nil {
		return fmt.Errorf("activate key: %w", err)
	}
	fmt.Printf("activated key: %s\n", args[0])
	return nil
}
