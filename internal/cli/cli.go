// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package cli holds the start-up steps shared by the commands.
package cli

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/relabs-tech/gnss_driver/internal/config"
)

// DefaultConfigPath is read when -config is not given.
const DefaultConfigPath = "gps_config.txt"

// LoadConfig initializes the global configuration. A missing default file
// falls back to built-in defaults; any other problem is fatal.
func LoadConfig(path string) {
	err := config.InitGlobal(path)
	switch {
	case err == nil:
		log.Printf("loaded configuration from %s", path)
	case errors.Is(err, os.ErrNotExist) && path == DefaultConfigPath:
		log.Printf("no %s found, using default configuration", path)
	default:
		log.Fatalf("failed to load config: %v", err)
	}
}

// SignalContext is cancelled on SIGINT or SIGTERM.
func SignalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}
