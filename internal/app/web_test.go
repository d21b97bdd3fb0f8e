package app

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/relabs-tech/gnss_driver/internal/gps"
)

type fakeMessage struct {
	payload []byte
}

func (m fakeMessage) Duplicate() bool   { return false }
func (m fakeMessage) Qos() byte         { return 0 }
func (m fakeMessage) Retained() bool    { return false }
func (m fakeMessage) Topic() string     { return "gps" }
func (m fakeMessage) MessageID() uint16 { return 1 }
func (m fakeMessage) Payload() []byte   { return m.payload }
func (m fakeMessage) Ack()              {}

func sampleFix(t *testing.T) gps.FixRecord {
	t.Helper()
	rec, err := gps.NewProcessor().Process(goodGGA)
	if err != nil {
		t.Fatalf("process: %v", err)
	}
	return rec
}

func TestFixHub_HandleLatest(t *testing.T) {
	hub := NewFixHub()

	rr := httptest.NewRecorder()
	hub.HandleLatest(rr, httptest.NewRequest(http.MethodGet, "/api/fix", nil))
	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 before any fix, got %d", rr.Code)
	}

	want := sampleFix(t)
	payload, _ := json.Marshal(want)
	hub.MessageHandler()(nil, fakeMessage{payload: payload})
	hub.MessageHandler()(nil, fakeMessage{payload: []byte("not json")})

	rr = httptest.NewRecorder()
	hub.HandleLatest(rr, httptest.NewRequest(http.MethodGet, "/api/fix", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	var got gps.FixRecord
	if err := json.Unmarshal(rr.Body.Bytes(), &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got != want {
		t.Fatalf("got %+v want %+v", got, want)
	}
}

func TestFixHub_HandleStream(t *testing.T) {
	hub := NewFixHub()
	mux := http.NewServeMux()
	hub.Routes(mux)
	srv := httptest.NewServer(mux)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/fix"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	want := sampleFix(t)
	// The handler subscribes after the upgrade; keep offering the fix until
	// the stream delivers it.
	got := make(chan gps.FixRecord, 1)
	go func() {
		var rec gps.FixRecord
		if err := conn.ReadJSON(&rec); err == nil {
			got <- rec
		}
	}()
	deadline := time.After(2 * time.Second)
	tick := time.NewTicker(20 * time.Millisecond)
	defer tick.Stop()
	for {
		select {
		case rec := <-got:
			if rec != want {
				t.Fatalf("got %+v want %+v", rec, want)
			}
			return
		case <-tick.C:
			hub.Update(want)
		case <-deadline:
			t.Fatalf("no fix received over websocket")
		}
	}
}

func TestConsole_FixHandler(t *testing.T) {
	var out bytes.Buffer
	payload, _ := json.Marshal(sampleFix(t))
	fixHandler(&out)(nil, fakeMessage{payload: payload})
	fixHandler(&out)(nil, fakeMessage{payload: []byte("{")})

	line := out.String()
	for _, want := range []string{"t=45319.0000000", "frame=GPS1_Frame", "lat=48.117300", "lon=11.516667", "utm=32U"} {
		if !strings.Contains(line, want) {
			t.Fatalf("console line %q missing %q", line, want)
		}
	}
	if strings.Count(line, "\n") != 1 {
		t.Fatalf("expected one line of output, got %q", line)
	}
}
