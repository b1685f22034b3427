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

// Package netcontroller owns the lifecycle of the anonymizing transport
// (Tor) subprocess: torrc synthesis, port allocation, bootstrap
// detection, onion-address discovery, and clean shutdown.
package netcontroller

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/InvisaMage/onionr/config"
	"github.com/InvisaMage/onionr/internal/logger"
	"github.com/InvisaMage/onionr/internal/metrics"
)

// State is a step of the controller's lifecycle state machine.
type State int

const (
	Init State = iota
	Configuring
	Starting
	Bootstrapping
	Ready
	Stopping
	Stopped
)

func (s State) String() string {
	switch s {
	case Init:
		return "init"
	case Configuring:
		return "configuring"
	case Starting:
		return "starting"
	case Bootstrapping:
		return "bootstrapping"
	case Ready:
		return "ready"
	case Stopping:
		return "stopping"
	case Stopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// ErrNetworkStartupFailure is fatal at process level per spec 7: the
// transport binary is missing, too old, or never reached 100% bootstrap.
var ErrNetworkStartupFailure = errors.New("netcontroller: network startup failure")

const minTorSubVersion = "0.2."

// Controller owns one transport subprocess for the life of the node.
// It is not safe to run two Controllers against the same DataDir.
type Controller struct {
	TorBin  string
	DataDir string
	APIIP   string
	HSPort  int

	cfg *config.Store
	log logger.Logger

	mu         sync.Mutex
	state      State
	cmd        *exec.Cmd
	readyState bool
	hostname   string
}

// New returns a controller bound to cfg and dataDir. torBin is usually
// "tor" and is resolved via PATH at Start time.
func New(cfg *config.Store, dataDir, torBin string) *Controller {
	if torBin == "" {
		torBin = "tor"
	}
	return &Controller{
		TorBin:  torBin,
		DataDir: dataDir,
		APIIP:   "127.0.0.1",
		cfg:     cfg,
		log:     logger.GetDefaultLogger(),
		state:   Init,
	}
}

func (c *Controller) setState(s State) {
	c.mu.Lock()
	c.state = s
	c.mu.Unlock()
}

// State returns the controller's current lifecycle state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Ready reports whether bootstrap reached 100%.
func (c *Controller) Ready() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.readyState
}

// OwnID returns the discovered onion hostname, or "" if unknown.
func (c *Controller) OwnID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hostname
}

func (c *Controller) pidFilePath() string {
	return filepath.Join(c.DataDir, "torPid.txt")
}

func (c *Controller) hostnamePath() string {
	return filepath.Join(c.DataDir, "hs", "hostname")
}

// Start synthesizes the torrc, spawns the transport, and blocks until
// bootstrap completes or fails. ctx cancellation during bootstrap (e.g.
// on keyboard interrupt) returns a graceful failure, not a panic.
func (c *Controller) Start(ctx context.Context) error {
	c.setState(Configuring)

	if _, err := exec.LookPath(c.TorBin); err != nil {
		metrics.NetBootstrapAttempts.WithLabelValues("failed").Inc()
		c.setState(Stopped)
		return fmt.Errorf("%w: transport binary %q not found", ErrNetworkStartupFailure, c.TorBin)
	}

	if err := c.checkVersion(); err != nil {
		metrics.NetBootstrapAttempts.WithLabelValues("failed").Inc()
		c.setState(Stopped)
		return err
	}

	torrcPath, err := c.writeTorrc()
	if err != nil {
		c.setState(Stopped)
		return err
	}

	c.setState(Starting)
	cmd := exec.CommandContext(ctx, c.TorBin, "-f", torrcPath)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		c.setState(Stopped)
		return fmt.Errorf("netcontroller: stdout pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		c.setState(Stopped)
		return fmt.Errorf("netcontroller: start transport: %w", err)
	}

	c.mu.Lock()
	c.cmd = cmd
	c.mu.Unlock()

	if err := c.writePIDFile(cmd.Process.Pid); err != nil {
		c.log.Warn("failed to write transport pid file", logger.Error(err))
	}

	c.setState(Bootstrapping)
	if err := c.watchBootstrap(ctx, stdout); err != nil {
		metrics.NetBootstrapAttempts.WithLabelValues("failed").Inc()
		c.setState(Stopped)
		_ = c.killTor()
		return err
	}

	c.mu.Lock()
	c.readyState = true
	c.mu.Unlock()
	c.setState(Ready)
	metrics.NetBootstrapAttempts.WithLabelValues("ready").Inc()

	c.discoverHostname()
	return nil
}

// watchBootstrap runs one errgroup goroutine that streams stdout lines
// looking for "Bootstrapped 100" and races it against ctx cancellation.
// The child process is not waited on here; an early exit shows up as
// stdout ending before bootstrap completes, which fails the watch.
func (c *Controller) watchBootstrap(ctx context.Context, stdout io.Reader) error {
	g, gctx := errgroup.WithContext(ctx)
	bootstrapped := make(chan struct{})

	g.Go(func() error {
		scanner := bufio.NewScanner(stdout)
		for scanner.Scan() {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}
			line := scanner.Text()
			c.log.Debug("transport output", logger.String("line", line))
			if strings.Contains(line, "Bootstrapped 100") {
				close(bootstrapped)
				return nil
			}
		}
		if err := scanner.Err(); err != nil {
			return fmt.Errorf("%w: reading transport stdout: %v", ErrNetworkStartupFailure, err)
		}
		return fmt.Errorf("%w: transport stdout ended before bootstrap completed (stray instance or permissions)", ErrNetworkStartupFailure)
	})

	done := make(chan error, 1)
	go func() { done <- g.Wait() }()

	select {
	case <-ctx.Done():
		return fmt.Errorf("%w: interrupted during bootstrap", ErrNetworkStartupFailure)
	case <-bootstrapped:
		return nil
	case err := <-done:
		return err
	}
}

func (c *Controller) checkVersion() error {
	out, err := exec.Command(c.TorBin, "--version").CombinedOutput()
	if err != nil {
		return fmt.Errorf("%w: transport version check: %v", ErrNetworkStartupFailure, err)
	}
	if strings.Contains(string(out), minTorSubVersion) {
		return fmt.Errorf("%w: transport version below 0.3 is unsupported", ErrNetworkStartupFailure)
	}
	return nil
}

func (c *Controller) writeTorrc() (string, error) {
	socksPort, err := AllocatePort()
	if err != nil {
		return "", err
	}
	controlPort, err := AllocatePort()
	if err != nil {
		return "", err
	}
	password, err := GenerateControlPassword()
	if err != nil {
		return "", err
	}

	_ = c.cfg.Set(config.KeyTorSocksPort, socksPort, false)
	_ = c.cfg.Set(config.KeyTorControlPort, controlPort, false)
	_ = c.cfg.Set(config.KeyTorControlPassword, password, true)

	hashed, err := HashControlPassword(c.TorBin, password)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrNetworkStartupFailure, err)
	}

	longLived := c.cfg.GetOrDefault(config.KeySecurityLevel, float64(1)) == float64(0)
	v3, _ := c.cfg.GetOrDefault(config.KeyTorV3Onions, true).(bool)

	params := TorrcParams{
		DataDir:            c.DataDir,
		SocksPort:          socksPort,
		ControlPort:        controlPort,
		HashedControlPass:  hashed,
		LongLivedHS:        longLived,
		V3Onions:           v3,
		HiddenServiceAPIIP: c.APIIP,
		HiddenServicePort:  c.HSPort,
	}

	if err := os.MkdirAll(c.DataDir, 0700); err != nil {
		return "", fmt.Errorf("netcontroller: create data dir: %w", err)
	}
	torrcPath := filepath.Join(c.DataDir, "torrc")
	if err := os.WriteFile(torrcPath, []byte(SynthesizeTorrc(params)), 0600); err != nil {
		return "", fmt.Errorf("netcontroller: write torrc: %w", err)
	}
	return torrcPath, nil
}

func (c *Controller) writePIDFile(pid int) error {
	return os.WriteFile(c.pidFilePath(), []byte(strconv.Itoa(pid)), 0600)
}

func (c *Controller) discoverHostname() {
	data, err := os.ReadFile(c.hostnamePath())
	if err != nil {
		return
	}
	c.mu.Lock()
	c.hostname = strings.TrimSpace(string(data))
	c.mu.Unlock()
}

// Stop reads the PID file, signals the transport to terminate, and
// removes the PID file. Permission errors (Windows) and process-gone
// errors are tolerated rather than surfaced.
func (c *Controller) Stop() error {
	c.setState(Stopping)
	defer c.setState(Stopped)

	if err := c.killTor(); err != nil {
		return err
	}
	return nil
}

func (c *Controller) killTor() error {
	data, err := os.ReadFile(c.pidFilePath())
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("netcontroller: read pid file: %w", err)
	}

	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err == nil {
		if proc, findErr := os.FindProcess(pid); findErr == nil {
			if sigErr := proc.Signal(syscall.SIGTERM); sigErr != nil &&
				!errors.Is(sigErr, os.ErrProcessDone) &&
				!errors.Is(sigErr, syscall.ESRCH) &&
				!errors.Is(sigErr, syscall.EPERM) {
				c.log.Warn("failed to signal transport process", logger.Error(sigErr))
			}
		}
	}

	if rmErr := os.Remove(c.pidFilePath()); rmErr != nil && !os.IsNotExist(rmErr) {
		if !errors.Is(rmErr, os.ErrPermission) {
			return fmt.Errorf("netcontroller: remove pid file: %w", rmErr)
		}
	}
	return nil
}
