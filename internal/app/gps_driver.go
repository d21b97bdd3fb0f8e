// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync/atomic"

	"github.com/relabs-tech/gnss_driver/internal/gps"
	"github.com/relabs-tech/gnss_driver/internal/serialport"
)

// State is a GPS driver lifecycle state.
type State int32

const (
	StateIdle State = iota
	StateConnecting
	StateStreaming
	StateShuttingDown
	StateStopped
	StateFatalError
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateConnecting:
		return "connecting"
	case StateStreaming:
		return "streaming"
	case StateShuttingDown:
		return "shutting-down"
	case StateStopped:
		return "stopped"
	case StateFatalError:
		return "fatal-error"
	default:
		return fmt.Sprintf("state(%d)", int32(s))
	}
}

// LineSource is a timeout-bounded line reader owned by the driver.
// ReadLine returns serialport.ErrTimeout when no line arrived in time and a
// *serialport.DecodeError for frames that are not text.
type LineSource interface {
	ReadLine() ([]byte, error)
	Close() error
}

// Opener opens the line source. Errors are treated as connection failures.
type Opener func() (LineSource, error)

// FixSink receives assembled fixes in arrival order.
type FixSink interface {
	Publish(rec gps.FixRecord) error
}

// Stats counts what the driver saw while streaming.
type Stats struct {
	Lines           uint64
	Fixes           uint64
	Malformed       uint64
	DecodeErrors    uint64
	Timeouts        uint64
	PublishFailures uint64
}

// Driver reads the receiver, converts every position-fix sentence and hands
// the result to the sink. One goroutine owns the source for its lifetime.
type Driver struct {
	open Opener
	proc *gps.Processor
	sink FixSink

	state    atomic.Int32
	stopping atomic.Bool
	stats    Stats
}

// NewDriver builds a driver; proc may be nil for the defaults.
func NewDriver(open Opener, proc *gps.Processor, sink FixSink) *Driver {
	if proc == nil {
		proc = gps.NewProcessor()
	}
	return &Driver{open: open, proc: proc, sink: sink}
}

// State returns the current lifecycle state.
func (d *Driver) State() State { return State(d.state.Load()) }

// Stats returns a copy of the counters. Only meaningful once Run returned.
func (d *Driver) Stats() Stats { return d.stats }

// Stop asks Run to shut down at its next check point, at most one read
// timeout away.
func (d *Driver) Stop() { d.stopping.Store(true) }

func (d *Driver) setState(s State) {
	prev := State(d.state.Swap(int32(s)))
	if prev != s {
		log.Printf("gps: state %s -> %s", prev, s)
	}
}

// Run connects and streams until ctx is cancelled or Stop is called, which
// returns nil. A connection failure returns a *serialport.ConnectError; any
// other unclassified failure is returned as well. The source is closed on
// every path.
func (d *Driver) Run(ctx context.Context) (err error) {
	d.setState(StateConnecting)
	src, err := d.open()
	if err != nil {
		d.setState(StateFatalError)
		var ce *serialport.ConnectError
		if !errors.As(err, &ce) {
			err = &serialport.ConnectError{Err: err}
		}
		log.Printf("gps: ERROR %v", err)
		return err
	}

	defer func() {
		if cerr := src.Close(); cerr != nil {
			log.Printf("gps: WARN %v", cerr)
		}
		if err != nil {
			d.setState(StateFatalError)
			log.Printf("gps: ERROR %v", err)
			return
		}
		d.setState(StateStopped)
		s := d.stats
		log.Printf("gps: stopped after %d lines, %d fixes, %d malformed, %d decode errors, %d timeouts, %d publish failures",
			s.Lines, s.Fixes, s.Malformed, s.DecodeErrors, s.Timeouts, s.PublishFailures)
	}()

	d.setState(StateStreaming)
	for {
		if ctx.Err() != nil || d.stopping.Load() {
			d.setState(StateShuttingDown)
			return nil
		}
		if err := d.step(src); err != nil {
			return err
		}
	}
}

// step handles one read. It returns only unclassified errors.
func (d *Driver) step(src LineSource) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("gps: unexpected failure while processing line: %v", r)
		}
	}()

	line, err := src.ReadLine()
	var decodeErr *serialport.DecodeError
	switch {
	case err == nil:
	case errors.Is(err, serialport.ErrTimeout):
		d.stats.Timeouts++
		return nil
	case errors.As(err, &decodeErr):
		d.stats.DecodeErrors++
		log.Printf("gps: WARN failed to decode serial data: %v", err)
		return nil
	default:
		return fmt.Errorf("gps: serial read: %w", err)
	}

	d.stats.Lines++
	rec, err := d.proc.Process(string(line))
	switch {
	case err == nil:
	case errors.Is(err, gps.ErrNotTarget):
		return nil
	case errors.Is(err, gps.ErrMalformed):
		d.stats.Malformed++
		log.Printf("gps: WARN error processing GPS data %q: %v", string(line), err)
		return nil
	default:
		return err
	}

	d.stats.Fixes++
	if err := d.sink.Publish(rec); err != nil {
		d.stats.PublishFailures++
		log.Printf("gps: WARN %v", err)
	}
	return nil
}
