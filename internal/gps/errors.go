// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package gps

import (
	"errors"
	"fmt"
)

// ErrNotTarget is returned for lines that are not the position-fix sentence.
// Other sentence types are expected on the wire, so callers should ignore it.
var ErrNotTarget = errors.New("gps: not a target sentence")

// ErrMalformed matches any *MalformedError through errors.Is.
var ErrMalformed = errors.New("gps: malformed sentence")

// MalformedError reports a target sentence whose fields are missing,
// non-numeric or out of range. Index is the offending field position, or -1
// when the problem is not tied to a single field (e.g. checksum).
type MalformedError struct {
	Index int
	Value string
	Err   error
}

func (e *MalformedError) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("gps: malformed sentence: %v", e.Err)
	}
	return fmt.Sprintf("gps: malformed sentence: field %d (%q): %v", e.Index, e.Value, e.Err)
}

func (e *MalformedError) Unwrap() error { return e.Err }

func (e *MalformedError) Is(target error) bool { return target == ErrMalformed }

func malformed(index int, value string, err error) *MalformedError {
	return &MalformedError{Index: index, Value: value, Err: err}
}
