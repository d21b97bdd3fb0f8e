// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package serialport

import (
	"fmt"
	"io"
	"math"
	"sync"
	"time"

	nmea "github.com/adrianmo/go-nmea"
)

// BackendSim produces synthetic GGA sentences instead of opening a device.
const BackendSim = "sim"

// Simulated receiver defaults: 1 Hz fixes wandering around Munich.
const (
	simInterval = time.Second
	simBaseLat  = 48.1173
	simBaseLon  = 11.5167
	simBaseAlt  = 545.4
)

// simPort emits one GGA line per interval and honours the read timeout like a
// real port: a Read with nothing due inside the timeout returns (0, nil).
type simPort struct {
	start    time.Time
	interval time.Duration
	timeout  time.Duration

	mu      sync.Mutex
	next    time.Time
	pending []byte
	closed  chan struct{}
	once    sync.Once
}

func openSim(cfg Config) (io.ReadWriteCloser, error) {
	now := time.Now()
	return &simPort{
		start:    now,
		interval: simInterval,
		timeout:  cfg.Timeout,
		next:     now,
		closed:   make(chan struct{}),
	}, nil
}

func (s *simPort) Read(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.pending) == 0 {
		wait := time.Until(s.next)
		if wait > s.timeout {
			wait = s.timeout
		}
		if wait > 0 {
			timer := time.NewTimer(wait)
			select {
			case <-s.closed:
				timer.Stop()
				return 0, io.ErrClosedPipe
			case <-timer.C:
			}
		}
		if time.Now().Before(s.next) {
			return 0, nil
		}
		s.pending = []byte(simSentence(s.next.UTC(), s.next.Sub(s.start).Seconds()))
		s.next = s.next.Add(s.interval)
	}

	n := copy(p, s.pending)
	s.pending = s.pending[n:]
	return n, nil
}

func (s *simPort) Write(p []byte) (int, error) { return len(p), nil }

func (s *simPort) Close() error {
	s.once.Do(func() { close(s.closed) })
	return nil
}

// simSentence builds a checksummed GGA for time t, elapsed seconds into the run.
func simSentence(t time.Time, elapsed float64) string {
	lat := simBaseLat + 0.0002*math.Sin(elapsed/30)
	lon := simBaseLon + 0.0003*math.Cos(elapsed/45)
	alt := simBaseAlt + 1.5*math.Sin(elapsed/20)
	hdop := 0.9 + 0.2*math.Abs(math.Sin(elapsed/10))

	latStr, latHemi := degToNMEA(lat, "N", "S", 2)
	lonStr, lonHemi := degToNMEA(lon, "E", "W", 3)
	payload := fmt.Sprintf("GPGGA,%02d%02d%02d.%02d,%s,%s,%s,%s,1,08,%.1f,%.1f,M,46.9,M,,",
		t.Hour(), t.Minute(), t.Second(), t.Nanosecond()/1e7,
		latStr, latHemi, lonStr, lonHemi, hdop, alt)
	return fmt.Sprintf("$%s*%s\r\n", payload, nmea.Checksum(payload))
}

// degToNMEA formats decimal degrees as (d)ddmm.mmmm with a hemisphere letter.
func degToNMEA(v float64, pos, neg string, degDigits int) (string, string) {
	hemi := pos
	if v < 0 {
		hemi = neg
		v = -v
	}
	deg := math.Floor(v)
	minutes := math.Round((v-deg)*60*1e4) / 1e4
	if minutes >= 60 {
		deg++
		minutes -= 60
	}
	return fmt.Sprintf("%0*d%07.4f", degDigits, int(deg), minutes), hemi
}
