package serialport

import (
	"errors"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/relabs-tech/gnss_driver/internal/gps"
)

func TestSimSentence_ParsesAsFix(t *testing.T) {
	ts := time.Date(2026, 3, 1, 12, 35, 19, 500000000, time.UTC)
	line := simSentence(ts, 0)
	if !strings.HasSuffix(line, "\r\n") {
		t.Fatalf("expected CRLF terminated sentence, got %q", line)
	}

	proc := &gps.Processor{Parser: &gps.Parser{Identifier: gps.DefaultSentenceID, VerifyChecksum: true}}
	rec, err := proc.Process(line)
	if err != nil {
		t.Fatalf("simulated sentence rejected: %v (%q)", err, line)
	}
	if rec.Timestamp.Seconds != 45319 || rec.Timestamp.Nanoseconds != 5000000 {
		t.Fatalf("timestamp %+v", rec.Timestamp)
	}
	if math.Abs(rec.Latitude-simBaseLat) > 1e-5 || math.Abs(rec.Longitude-(simBaseLon+0.0003)) > 1e-5 {
		t.Fatalf("position %.6f %.6f", rec.Latitude, rec.Longitude)
	}
	if rec.UTM.Zone != 32 {
		t.Fatalf("utm zone %d", rec.UTM.Zone)
	}
}

func TestDegToNMEA(t *testing.T) {
	tests := []struct {
		v        float64
		pos, neg string
		digits   int
		want     string
		wantHemi string
	}{
		{48.1173, "N", "S", 2, "4807.0380", "N"},
		{-11.516666666666667, "E", "W", 3, "01131.0000", "W"},
		{-33.8688, "N", "S", 2, "3352.1280", "S"},
		{9.9999999999, "E", "W", 3, "01000.0000", "E"},
	}
	for _, tc := range tests {
		got, hemi := degToNMEA(tc.v, tc.pos, tc.neg, tc.digits)
		if got != tc.want || hemi != tc.wantHemi {
			t.Fatalf("degToNMEA(%v) = %s %s, want %s %s", tc.v, got, hemi, tc.want, tc.wantHemi)
		}
	}
}

func TestOpen_SimBackend(t *testing.T) {
	port, err := Open(Config{Backend: BackendSim, Timeout: 100 * time.Millisecond})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer port.Close()

	line, err := port.ReadLine()
	if err != nil {
		t.Fatalf("first read: %v", err)
	}
	if !strings.HasPrefix(string(line), "$GPGGA,") {
		t.Fatalf("unexpected line %q", line)
	}

	start := time.Now()
	if _, err := port.ReadLine(); !errors.Is(err, ErrTimeout) {
		t.Fatalf("expected ErrTimeout before the next fix is due, got %v", err)
	}
	if elapsed := time.Since(start); elapsed > 500*time.Millisecond {
		t.Fatalf("timeout took %v", elapsed)
	}

	if err := port.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if err := port.Close(); err != nil {
		t.Fatalf("second close: %v", err)
	}
}
