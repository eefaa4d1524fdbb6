// Package config holds the bridge's runtime configuration.
//
// Configuration is an explicit value threaded into the components that need
// it. The CLI layer fills it from flags and, for the Ultimate address, from
// the C64_ULTIMATE_IP environment variable; nothing in the core reads process
// environment or other ambient state.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"
)

// Config controls where the bridge finds its peers.
type Config struct {
	// SocketPath is the control process's unix socket.
	SocketPath string

	// UltimateAddr, when set, short-circuits LAN discovery entirely.
	// Host or host:port.
	UltimateAddr string

	// DiscoveryTimeout bounds the single UDP receive during detection.
	DiscoveryTimeout time.Duration

	// RuntimeDir is where per-command redirection sockets are created.
	RuntimeDir string
}

func Default() Config {
	return Config{
		SocketPath:       "/tmp/idunmm-lua",
		DiscoveryTimeout: 500 * time.Millisecond,
		RuntimeDir:       fmt.Sprintf("/run/user/%d", os.Getuid()),
	}
}

func (c *Config) Validate() error {
	if c.SocketPath == "" {
		c.SocketPath = "/tmp/idunmm-lua"
	}
	if c.DiscoveryTimeout <= 0 {
		c.DiscoveryTimeout = 500 * time.Millisecond
	}
	if c.RuntimeDir == "" {
		c.RuntimeDir = fmt.Sprintf("/run/user/%d", os.Getuid())
	}
	if strings.ContainsAny(c.UltimateAddr, " \t\r\n") {
		return fmt.Errorf("ultimate address must not contain whitespace: %q", c.UltimateAddr)
	}
	return nil
}
