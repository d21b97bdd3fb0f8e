// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package gps

import (
	"errors"
	"fmt"
	"math"

	UTM "github.com/im7mortal/UTM"
)

// ErrHemisphere is wrapped by DegMinToDecimal when the hemisphere letter does
// not belong to the axis.
var ErrHemisphere = errors.New("bad hemisphere")

// Axis selects which hemisphere letters and range apply to a coordinate.
type Axis int

const (
	AxisLatitude Axis = iota
	AxisLongitude
)

func (a Axis) String() string {
	if a == AxisLongitude {
		return "longitude"
	}
	return "latitude"
}

// DegMinToDecimal converts an NMEA (d)ddmm.mmmm value plus its hemisphere
// letter to signed decimal degrees.
func DegMinToDecimal(value float64, hemisphere string, axis Axis) (float64, error) {
	if math.IsNaN(value) || math.IsInf(value, 0) || value < 0 {
		return 0, fmt.Errorf("invalid %s %v", axis, value)
	}

	degrees := math.Trunc(value / 100)
	minutes := value - degrees*100
	if minutes >= 60 {
		return 0, fmt.Errorf("%s minutes %.4f out of range", axis, minutes)
	}
	decimal := degrees + minutes/60

	var negative bool
	switch axis {
	case AxisLatitude:
		switch hemisphere {
		case "N":
		case "S":
			negative = true
		default:
			return 0, fmt.Errorf("%w: latitude %q, want N or S", ErrHemisphere, hemisphere)
		}
		if decimal > 90 {
			return 0, fmt.Errorf("latitude %.6f out of range", decimal)
		}
	case AxisLongitude:
		switch hemisphere {
		case "E":
		case "W":
			negative = true
		default:
			return 0, fmt.Errorf("%w: longitude %q, want E or W", ErrHemisphere, hemisphere)
		}
		if decimal > 180 {
			return 0, fmt.Errorf("longitude %.6f out of range", decimal)
		}
	}

	if negative {
		decimal = -decimal
	}
	return decimal, nil
}

// ToUTM projects a WGS84 point onto UTM. Latitudes outside the UTM band
// range (80°S to 84°N) are rejected.
func ToUTM(p GeodeticPoint) (UTMPoint, error) {
	// northern=true makes the library report "N"/"S" instead of the band
	// letter. With false it still applies the southern false northing.
	easting, northing, zone, letter, err := UTM.FromLatLon(p.Latitude, p.Longitude, false)
	if err != nil {
		return UTMPoint{}, fmt.Errorf("utm: %w", err)
	}
	return UTMPoint{
		Easting:  easting,
		Northing: northing,
		Zone:     zone,
		Letter:   letter,
	}, nil
}
