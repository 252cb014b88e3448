// This Source Code Form is subject to the terms of the MIT License.
// If a copy of the MIT License was not distributed with this
// file, you can obtain one at https://opensource.org/licenses/MIT.
//
// Copyright (c) DUSK NETWORK. All rights reserved.

// Package config loads the node and client's TOML configuration file into
// a single process-wide Config, exposed as a package-level singleton
// (holding the defaults until Load replaces it) reachable through Get.
package config

import (
	"sync"

	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"
)

// MempoolConfig bounds the in-memory transaction pool.
type MempoolConfig struct {
	MaxTransactions int `toml:"maxTransactions"`
	MaxBacklog      int `toml:"maxBacklog"`
}

// ClientConfig points the client at a node's websocket feed.
type ClientConfig struct {
	NodeAddress string `toml:"nodeAddress"`
	Identity    string `toml:"identity"`
}

// LoggingConfig controls level, output format, and optional
// lumberjack-backed file rotation.
type LoggingConfig struct {
	Level      string `toml:"level"`
	Output     string `toml:"output"`
	File       string `toml:"file"`
	MaxSizeMB  int    `toml:"maxSizeMB"`
	MaxBackups int    `toml:"maxBackups"`
	MaxAgeDays int    `toml:"maxAgeDays"`
	Compress   bool   `toml:"compress"`
}

// MetricsConfig controls the node's /metrics endpoint.
type MetricsConfig struct {
	ListenAddress string `toml:"listenAddress"`
}

// Config is the full process configuration, decoded from a single TOML
// file shared by cmd/node and cmd/client.
type Config struct {
	Mempool MempoolConfig `toml:"mempool"`
	Client  ClientConfig  `toml:"client"`
	Logging LoggingConfig `toml:"logging"`
	Metrics MetricsConfig `toml:"metrics"`
}

func defaultConfig() Config {
	return Config{
		Mempool: MempoolConfig{
			MaxTransactions: 32768,
			MaxBacklog:      16,
		},
		Client: ClientConfig{
			NodeAddress: "ws://127.0.0.1:8080/stream",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Output: "stdout",
		},
		Metrics: MetricsConfig{
			ListenAddress: ":9091",
		},
	}
}

var (
	mu      sync.Mutex
	current = defaultConfig()
)

// Load decodes the TOML file at path over the default configuration and
// installs it as the package-wide singleton. An empty path leaves the
// defaults in place.
func Load(path string) error {
	mu.Lock()
	defer mu.Unlock()

	cfg := defaultConfig()
	if path == "" {
		current = cfg
		return nil
	}

	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return errors.Wrapf(err, "config: decoding %s", path)
	}
	current = cfg
	return nil
}

// Get returns the current process configuration.
func Get() Config {
	mu.Lock()
	defer mu.Unlock()
	return current
}
