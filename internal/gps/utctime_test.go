package gps

import "testing"

func TestDecodeUTC(t *testing.T) {
	tests := []struct {
		value float64
		secs  int64
		nsecs int64
	}{
		{123519.00, 45319, 0},
		{123519.5, 45319, 5000000},
		{123519.25, 45319, 2500000},
		{0, 0, 0},
		{59.75, 59, 7500000},
		{235959, 86399, 0},
		{100000, 36000, 0},
	}
	for _, tc := range tests {
		got := DecodeUTC(tc.value)
		if got.Seconds != tc.secs || got.Nanoseconds != tc.nsecs {
			t.Fatalf("DecodeUTC(%v) = %+v, want {%d %d}", tc.value, got, tc.secs, tc.nsecs)
		}
	}
}

func TestDecodeUTC_SubSecondRange(t *testing.T) {
	for _, v := range []float64{0.999, 123519.875, 235959.99, 10203.125} {
		got := DecodeUTC(v)
		if got.Nanoseconds < 0 || got.Nanoseconds >= 1e7 {
			t.Fatalf("DecodeUTC(%v): nanoseconds %d outside [0, 1e7)", v, got.Nanoseconds)
		}
	}
}

func TestCheckUTC(t *testing.T) {
	for _, v := range []float64{0, 123519.00, 235959.99, 235960.5} {
		if err := CheckUTC(v); err != nil {
			t.Fatalf("CheckUTC(%v): unexpected err %v", v, err)
		}
	}
	for _, v := range []float64{-0.5, -123519.5, 240000, 126000, 123561} {
		if err := CheckUTC(v); err == nil {
			t.Fatalf("CheckUTC(%v): expected error", v)
		}
	}
}
