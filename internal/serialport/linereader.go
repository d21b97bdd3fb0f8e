// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package serialport

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"unicode/utf8"
)

// MaxLineLength bounds a single frame. NMEA allows 82 characters; anything
// far longer is line noise.
const MaxLineLength = 1024

const readChunk = 256

// ErrTimeout means the read timeout passed without a complete line.
// It is not a failure; the caller simply tries again.
var ErrTimeout = errors.New("serial: read timeout")

// DecodeError reports a frame that is not valid text. The frame has already
// been discarded and the connection is still usable.
type DecodeError struct {
	Frame  []byte
	Reason string
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("serial: cannot decode %d-byte frame: %s", len(e.Frame), e.Reason)
}

// LineReader splits a timeout-bounded byte stream into newline-terminated
// frames. Bytes that arrive without a newline are kept for the next call.
type LineReader struct {
	r     io.Reader
	buf   []byte
	chunk []byte
}

// NewLineReader wraps r. A Read that returns no bytes, with a nil error or
// io.EOF, is treated as a timeout.
func NewLineReader(r io.Reader) *LineReader {
	return &LineReader{r: r, chunk: make([]byte, readChunk)}
}

// ReadLine returns the next frame including its trailing newline.
func (l *LineReader) ReadLine() ([]byte, error) {
	for {
		if line, ok := l.next(); ok {
			if !utf8.Valid(line) {
				return nil, &DecodeError{Frame: line, Reason: "invalid utf-8"}
			}
			return line, nil
		}
		if len(l.buf) > MaxLineLength {
			frame := l.buf
			l.buf = nil
			return nil, &DecodeError{Frame: frame, Reason: "frame exceeds maximum length"}
		}

		n, err := l.r.Read(l.chunk)
		if n > 0 {
			l.buf = append(l.buf, l.chunk[:n]...)
		}
		switch {
		case err == nil || errors.Is(err, io.EOF):
			if n == 0 {
				return nil, ErrTimeout
			}
		default:
			return nil, err
		}
	}
}

// Buffered reports how many bytes of an incomplete frame are held.
func (l *LineReader) Buffered() int { return len(l.buf) }

func (l *LineReader) next() ([]byte, bool) {
	i := bytes.IndexByte(l.buf, '\n')
	if i < 0 {
		return nil, false
	}
	line := make([]byte, i+1)
	copy(line, l.buf[:i+1])
	rest := copy(l.buf, l.buf[i+1:])
	l.buf = l.buf[:rest]
	return line, true
}
