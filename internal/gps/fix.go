// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package gps

// DefaultFrameID is the frame identifier stamped on every published fix.
const DefaultFrameID = "GPS1_Frame"

// DecodedTime is a time of day since midnight UTC.
//
// Nanoseconds keeps the receiver driver's historical scaling: the fractional
// part of the seconds value multiplied by 1e7 and truncated, so one unit is
// effectively 100 ns. Consumers that compare against recorded data rely on it.
type DecodedTime struct {
	Seconds     int64 `json:"secs"`
	Nanoseconds int64 `json:"nsecs"`
}

// GeodeticPoint is a WGS84 latitude/longitude in signed decimal degrees.
type GeodeticPoint struct {
	Latitude  float64 `json:"lat"` // negative south
	Longitude float64 `json:"lon"` // negative west
}

// UTMPoint is a projected UTM coordinate.
type UTMPoint struct {
	Easting  float64 `json:"easting"`  // meters
	Northing float64 `json:"northing"` // meters
	Zone     int     `json:"zone"`     // 1..60
	Letter   string  `json:"letter"`   // latitude band
}

// FixRecord is one resolved position fix, the unit published on the bus.
type FixRecord struct {
	Timestamp   DecodedTime `json:"timestamp"`
	FrameID     string      `json:"frame_id"`
	Latitude    float64     `json:"latitude"`  // decimal degrees
	Longitude   float64     `json:"longitude"` // decimal degrees
	Altitude    float64     `json:"altitude"`  // meters, as reported
	UTM         UTMPoint    `json:"utm"`
	HDOP        float64     `json:"hdop"`
	RawSentence string      `json:"raw_sentence"` // original line, verbatim
}
