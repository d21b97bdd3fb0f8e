// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package serialport

import (
	"io"

	jserial "github.com/jacobsa/go-serial/serial"
	bserial "go.bug.st/serial"
)

// maxInterCharTimeoutMS is the largest VTIME the termios backend can express.
const maxInterCharTimeoutMS = 25500

// jacobsaOptions maps Config onto go-serial's termios options. With
// MinimumReadSize 0 a read returns (0, io.EOF) once the timeout passes with
// no data, which LineReader reports as ErrTimeout.
func jacobsaOptions(cfg Config) jserial.OpenOptions {
	ms := uint(cfg.Timeout.Milliseconds())
	// VTIME has 100 ms resolution.
	ms = (ms + 99) / 100 * 100
	if ms < 100 {
		ms = 100
	}
	if ms > maxInterCharTimeoutMS {
		ms = maxInterCharTimeoutMS
	}
	return jserial.OpenOptions{
		PortName:              cfg.Port,
		BaudRate:              uint(cfg.Baud),
		DataBits:              8,
		StopBits:              1,
		ParityMode:            jserial.PARITY_NONE,
		MinimumReadSize:       0,
		InterCharacterTimeout: ms,
	}
}

func openJacobsa(cfg Config) (io.ReadWriteCloser, error) {
	return jserial.Open(jacobsaOptions(cfg))
}

func openBugst(cfg Config) (io.ReadWriteCloser, error) {
	p, err := bserial.Open(cfg.Port, &bserial.Mode{
		BaudRate: cfg.Baud,
		DataBits: 8,
		Parity:   bserial.NoParity,
		StopBits: bserial.OneStopBit,
	})
	if err != nil {
		return nil, err
	}
	// On timeout Read returns (0, nil).
	if err := p.SetReadTimeout(cfg.Timeout); err != nil {
		_ = p.Close()
		return nil, err
	}
	return p, nil
}

// ListPorts returns the serial devices visible to the host.
func ListPorts() ([]string, error) {
	return bserial.GetPortsList()
}
