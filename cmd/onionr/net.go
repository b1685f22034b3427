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
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/InvisaMage/onionr/config"
	"github.com/InvisaMage/onionr/netcontroller"
)

var netCmd = &cobra.Command{
	Use:   "net",
	Short: "Manage the anonymizing transport (Tor) lifecycle",
}

var netStartCmd = &cobra.Command{
	Use:   "start",
	Short: "Synthesize a torrc, launch the transport, and block until bootstrap or Ctrl-C",
	RunE:  runNetStart,
}

var (
	netTorBin string
	netHSPort int
)

func init() {
	rootCmd.AddCommand(netCmd)
	netCmd.AddCommand(netStartCmd)

	netStartCmd.Flags().StringVar(&netTorBin, "tor-bin", "tor", "path to the tor binary")
	netStartCmd.Flags().IntVar(&netHSPort, "hs-port", 80, "virtual hidden service port, forwarded to the local API")
}

func runNetStart(cmd *cobra.Command, args []string) error {
	cfgStore := config.LoadFile(filepath.Join(dataDir, "config.json"))
	ctrl := netcontroller.New(cfgStore, dataDir, netTorBin)
	ctrl.HSPort = netHSPort

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Println("starting transport, waiting for bootstrap...")
	if err := ctrl.Start(ctx); err != nil {
		return fmt.Errorf("net start: %w", err)
	}
	if err := cfgStore.Save(); err != nil {
		return fmt.Errorf("net start: persist config: %w", err)
	}

	fmt.Printf("bootstrapped: state=%s onion=%s\n", ctrl.State(), ctrl.OwnID())

	<-ctx.Done()
	fmt.Println("stopping transport...")
	return ctrl.Stop()
}
