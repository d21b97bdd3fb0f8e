// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package gps

import "errors"

// Processor turns one raw line into a fix record. It holds no per-line state,
// so consecutive calls never share intermediate values.
type Processor struct {
	Parser  *Parser
	FrameID string
}

// NewProcessor returns a Processor with the default parser and frame id.
func NewProcessor() *Processor {
	return &Processor{Parser: NewParser(), FrameID: DefaultFrameID}
}

// Process runs parse, time decode, coordinate conversion and assembly.
// It returns ErrNotTarget for unrelated lines and a *MalformedError for
// target sentences that cannot be converted.
func (p *Processor) Process(line string) (FixRecord, error) {
	parser := p.Parser
	if parser == nil {
		parser = NewParser()
	}
	s, err := parser.Parse(line)
	if err != nil {
		return FixRecord{}, err
	}
	f, err := s.GGA()
	if err != nil {
		return FixRecord{}, err
	}

	utc, err := parseField(fieldTime, f.Time)
	if err != nil {
		return FixRecord{}, err
	}
	if err := CheckUTC(utc); err != nil {
		return FixRecord{}, malformed(fieldTime, f.Time, err)
	}
	t := DecodeUTC(utc)

	geo, err := geodetic(f)
	if err != nil {
		return FixRecord{}, err
	}

	// Altitude is checked before projecting so a truncated sentence reports
	// the altitude field rather than a UTM failure.
	if _, err := parseField(fieldAltitude, f.Altitude); err != nil {
		return FixRecord{}, err
	}

	utm, err := ToUTM(geo)
	if err != nil {
		return FixRecord{}, malformed(fieldLatitude, f.Latitude, err)
	}

	frameID := p.FrameID
	if frameID == "" {
		frameID = DefaultFrameID
	}
	return Assemble(s, f, t, geo, utm, frameID)
}

func geodetic(f GGAFields) (GeodeticPoint, error) {
	latRaw, err := parseField(fieldLatitude, f.Latitude)
	if err != nil {
		return GeodeticPoint{}, err
	}
	lat, err := DegMinToDecimal(latRaw, f.LatHemi, AxisLatitude)
	if err != nil {
		if errors.Is(err, ErrHemisphere) {
			return GeodeticPoint{}, malformed(fieldLatHemi, f.LatHemi, err)
		}
		return GeodeticPoint{}, malformed(fieldLatitude, f.Latitude, err)
	}

	lonRaw, err := parseField(fieldLongitude, f.Longitude)
	if err != nil {
		return GeodeticPoint{}, err
	}
	lon, err := DegMinToDecimal(lonRaw, f.LonHemi, AxisLongitude)
	if err != nil {
		if errors.Is(err, ErrHemisphere) {
			return GeodeticPoint{}, malformed(fieldLonHemi, f.LonHemi, err)
		}
		return GeodeticPoint{}, malformed(fieldLongitude, f.Longitude, err)
	}
	return GeodeticPoint{Latitude: lat, Longitude: lon}, nil
}
