// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package gps

import (
	"errors"
	"fmt"
	"strings"

	nmea "github.com/adrianmo/go-nmea"
)

// DefaultSentenceID identifies the GPS position-fix sentence.
const DefaultSentenceID = "$GPGGA"

// GGA field positions.
const (
	fieldTime      = 1
	fieldLatitude  = 2
	fieldLatHemi   = 3
	fieldLongitude = 4
	fieldLonHemi   = 5
	fieldHDOP      = 8
	fieldAltitude  = 9

	ggaMinFields = fieldAltitude + 1
)

// Sentence is one accepted target line split on commas.
type Sentence struct {
	Raw    string
	Fields []string
}

// Parser recognizes the target sentence among everything the receiver emits.
type Parser struct {
	// Identifier is the substring a line must contain, e.g. "$GPGGA" or "$GNGGA".
	Identifier string
	// VerifyChecksum rejects lines whose "*hh" trailer is missing or wrong.
	VerifyChecksum bool
}

// NewParser returns a Parser for the GPS GGA sentence without checksum checks.
func NewParser() *Parser {
	return &Parser{Identifier: DefaultSentenceID}
}

// Parse strips whitespace and splits a target line into fields.
// Lines that do not carry the identifier yield ErrNotTarget.
func (p *Parser) Parse(line string) (Sentence, error) {
	line = strings.TrimSpace(line)
	id := p.Identifier
	if id == "" {
		id = DefaultSentenceID
	}
	at := strings.Index(line, id)
	if at < 0 {
		return Sentence{}, ErrNotTarget
	}
	if p.VerifyChecksum {
		// The identifier may be configured without its leading '$'.
		start := strings.LastIndexByte(line[:at+1], '$')
		if start < 0 {
			return Sentence{}, malformed(-1, line, errors.New("missing '$' frame start"))
		}
		if err := verifyChecksum(line[start:]); err != nil {
			return Sentence{}, malformed(-1, line, err)
		}
	}
	return Sentence{Raw: line, Fields: strings.Split(line, ",")}, nil
}

// verifyChecksum checks a "$...*hh" frame.
func verifyChecksum(frame string) error {
	star := strings.LastIndexByte(frame, '*')
	if star < 0 {
		return errors.New("missing checksum")
	}
	got := strings.ToUpper(strings.TrimSpace(frame[star+1:]))
	if len(got) < 2 {
		return errors.New("short checksum")
	}
	want := nmea.Checksum(frame[1:star])
	if got[:2] != want {
		return fmt.Errorf("checksum mismatch: got %s want %s", got[:2], want)
	}
	return nil
}

// GGAFields is the fixed-arity view of a GGA sentence used by the converters.
type GGAFields struct {
	Time      string
	Latitude  string
	LatHemi   string
	Longitude string
	LonHemi   string
	HDOP      string
	Altitude  string
}

// GGA narrows a sentence to the fields the fix needs. A sentence cut short
// reports the first missing position.
func (s Sentence) GGA() (GGAFields, error) {
	if len(s.Fields) < ggaMinFields {
		return GGAFields{}, malformed(len(s.Fields), "", fmt.Errorf("sentence has %d fields, need %d", len(s.Fields), ggaMinFields))
	}
	f := s.Fields
	return GGAFields{
		Time:      f[fieldTime],
		Latitude:  f[fieldLatitude],
		LatHemi:   f[fieldLatHemi],
		Longitude: f[fieldLongitude],
		LonHemi:   f[fieldLonHemi],
		HDOP:      f[fieldHDOP],
		Altitude:  f[fieldAltitude],
	}, nil
}
