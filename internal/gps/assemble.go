// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package gps

import (
	"errors"
	"math"
	"strconv"
	"strings"
)

// Assemble validates the remaining numeric fields and builds the fix record.
func Assemble(s Sentence, f GGAFields, t DecodedTime, geo GeodeticPoint, utm UTMPoint, frameID string) (FixRecord, error) {
	alt, err := parseField(fieldAltitude, f.Altitude)
	if err != nil {
		return FixRecord{}, err
	}
	hdop, err := parseField(fieldHDOP, f.HDOP)
	if err != nil {
		return FixRecord{}, err
	}
	if hdop < 0 {
		return FixRecord{}, malformed(fieldHDOP, f.HDOP, errors.New("negative hdop"))
	}

	return FixRecord{
		Timestamp:   t,
		FrameID:     frameID,
		Latitude:    geo.Latitude,
		Longitude:   geo.Longitude,
		Altitude:    alt,
		UTM:         utm,
		HDOP:        hdop,
		RawSentence: s.Raw,
	}, nil
}

// parseField reads a finite float, reporting failures against the field index.
func parseField(index int, value string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		var numErr *strconv.NumError
		if errors.As(err, &numErr) {
			err = numErr.Err
		}
		return 0, malformed(index, value, err)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, malformed(index, value, errors.New("not a finite number"))
	}
	return v, nil
}
