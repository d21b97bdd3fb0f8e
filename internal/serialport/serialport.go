// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package serialport owns the GNSS receiver's serial connection and frames
// its byte stream into lines.
package serialport

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"
)

const (
	DefaultPort    = "/dev/ttyUSB0"
	DefaultBaud    = 4800
	DefaultTimeout = 3 * time.Second
)

// Backend names accepted in Config.Backend.
const (
	BackendJacobsa = "jacobsa"
	BackendBugst   = "bugst"
)

// Config describes how to open the receiver.
type Config struct {
	Port    string
	Baud    int
	Timeout time.Duration // read timeout; a read with no data returns ErrTimeout
	Backend string        // "jacobsa" (default), "bugst" or "sim"
}

// ConnectError is returned when the device cannot be opened at all.
type ConnectError struct {
	Port string
	Err  error
}

func (e *ConnectError) Error() string {
	return fmt.Sprintf("serial: cannot open %s: %v", e.Port, e.Err)
}

func (e *ConnectError) Unwrap() error { return e.Err }

// Port is an open receiver connection.
type Port struct {
	*LineReader
	name   string
	closer io.Closer
}

// Open binds the device with the configured baud rate and read timeout.
func Open(cfg Config) (*Port, error) {
	if cfg.Port == "" {
		cfg.Port = DefaultPort
	}
	if cfg.Baud <= 0 {
		cfg.Baud = DefaultBaud
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}

	var (
		rwc io.ReadWriteCloser
		err error
	)
	switch strings.ToLower(strings.TrimSpace(cfg.Backend)) {
	case "", BackendJacobsa:
		rwc, err = openJacobsa(cfg)
	case BackendBugst:
		rwc, err = openBugst(cfg)
	case BackendSim:
		rwc, err = openSim(cfg)
	default:
		err = fmt.Errorf("unknown serial backend %q", cfg.Backend)
	}
	if err != nil {
		return nil, &ConnectError{Port: cfg.Port, Err: err}
	}
	return &Port{LineReader: NewLineReader(rwc), name: cfg.Port, closer: rwc}, nil
}

// Name returns the device path.
func (p *Port) Name() string { return p.name }

// Close releases the device. It is safe to call more than once.
func (p *Port) Close() error {
	if p.closer == nil {
		return nil
	}
	err := p.closer.Close()
	p.closer = nil
	if err != nil && !errors.Is(err, io.ErrClosedPipe) {
		return fmt.Errorf("serial: close %s: %w", p.name, err)
	}
	return nil
}
