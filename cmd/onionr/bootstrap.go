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
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/InvisaMage/onionr/block"
	"github.com/InvisaMage/onionr/bootstrap"
	onionrcrypto "github.com/InvisaMage/onionr/crypto"
	"github.com/InvisaMage/onionr/keymanager"
)

var bootstrapCmd = &cobra.Command{
	Use:   "bootstrap",
	Short: "Rendezvous with a peer to exchange durable onion addresses",
}

var bootstrapServeCmd = &cobra.Command{
	Use:   "serve <listen-addr>",
	Short: "Run the single-use rendezvous server and print the peer address it receives",
	Args:  cobra.ExactArgs(1),
	RunE:  runBootstrapServe,
}

var bootstrapPostCmd = &cobra.Command{
	Use:   "post <rendezvous-base-url> <my-address>",
	Short: "POST this node's durable address to a peer's rendezvous service",
	Args:  cobra.ExactArgs(2),
	RunE:  runBootstrapPost,
}

var bootstrapPublishCmd = &cobra.Command{
	Use:   "publish <recipient-pubkey> <ephemeral-service-id>",
	Short: "Sign and asym-encrypt a connection block advertising an ephemeral service id",
	RunE:  runBootstrapPublish,
	Args:  cobra.ExactArgs(2),
}

var bootstrapTimeout time.Duration

func init() {
	rootCmd.AddCommand(bootstrapCmd)
	bootstrapCmd.AddCommand(bootstrapServeCmd, bootstrapPostCmd, bootstrapPublishCmd)

	bootstrapServeCmd.Flags().DurationVar(&bootstrapTimeout, "timeout", 300*time.Second, "rendezvous timeout")
}

func runBootstrapServe(cmd *cobra.Command, args []string) error {
	sessions := bootstrap.NewSessionStore()
	srv := bootstrap.NewServer(sessions)

	fmt.Printf("listening on %s for a single rendezvous POST (timeout %s)...\n", args[0], bootstrapTimeout)
	addr, err := srv.Serve(context.Background(), args[0], bootstrapTimeout)
	if err != nil {
		return fmt.Errorf("bootstrap serve: %w", err)
	}
	fmt.Printf("rendezvous complete: peer address = %s\n", addr)
	return nil
}

func runBootstrapPost(cmd *cobra.Command, args []string) error {
	client := bootstrap.NewClient(nil)
	resp, err := client.PostAddress(args[0], args[1])
	if err != nil {
		return fmt.Errorf("bootstrap post: %w", err)
	}
	fmt.Printf("rendezvous response: %s\n", resp)
	return nil
}

func runBootstrapPublish(cmd *cobra.Command, args []string) error {
	mgr := keymanager.New(dataDir)
	envelope, err := mgr.Active()
	if err != nil {
		return fmt.Errorf("bootstrap publish: %w", err)
	}

	store := block.NewMemoryByteStore()
	ctx := block.NewCoreContext(store, envelope, 0, 0)
	defer ctx.Close()

	rply, err := onionrcrypto.NewReplayProof()
	if err != nil {
		return fmt.Errorf("bootstrap publish: %w", err)
	}

	hash, err := bootstrap.PublishConnectionBlock(ctx, args[0], args[1], rply)
	if err != nil {
		return fmt.Errorf("bootstrap publish: %w", err)
	}
	fmt.Printf("published connection block: %s\n", hash)
	return nil
}
