// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package gps

import (
	"errors"
	"math"
)

const subSecondScale = 1e7

// CheckUTC reports whether value is a usable hhmmss.sss time of day.
// A leap second (ss = 60) is accepted.
func CheckUTC(value float64) error {
	if value < 0 {
		return errors.New("negative time")
	}
	hours := math.Trunc(value / 10000)
	minutes := math.Trunc((value - hours*10000) / 100)
	seconds := value - hours*10000 - minutes*100
	switch {
	case hours >= 24:
		return errors.New("hours out of range")
	case minutes >= 60:
		return errors.New("minutes out of range")
	case seconds >= 61:
		return errors.New("seconds out of range")
	}
	return nil
}

// DecodeUTC splits a hhmmss.sss value into seconds since midnight and the
// truncated sub-second remainder.
func DecodeUTC(value float64) DecodedTime {
	hours := math.Trunc(value / 10000)
	minutes := math.Trunc((value - hours*10000) / 100)
	seconds := value - hours*10000 - minutes*100

	total := hours*3600 + minutes*60 + seconds
	return DecodedTime{
		Seconds:     int64(total),
		Nanoseconds: int64(math.Mod(total*subSecondScale, subSecondScale)),
	}
}
