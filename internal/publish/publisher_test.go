package publish

import (
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/relabs-tech/gnss_driver/internal/gps"
)

type fakeToken struct {
	err  error
	done chan struct{}
}

func newDoneToken(err error) *fakeToken {
	t := &fakeToken{err: err, done: make(chan struct{})}
	close(t.done)
	return t
}

func (t *fakeToken) Wait() bool { <-t.done; return true }

func (t *fakeToken) WaitTimeout(d time.Duration) bool {
	select {
	case <-t.done:
		return true
	case <-time.After(d):
		return false
	}
}

func (t *fakeToken) Done() <-chan struct{} { return t.done }
func (t *fakeToken) Error() error          { return t.err }

type fakeClient struct {
	mu       sync.Mutex
	topics   []string
	payloads [][]byte
	block    chan struct{} // when set, each Publish waits on it
}

func (c *fakeClient) Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token {
	if c.block != nil {
		<-c.block
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.topics = append(c.topics, topic)
	c.payloads = append(c.payloads, payload.([]byte))
	return newDoneToken(nil)
}

func (c *fakeClient) sent() [][]byte {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([][]byte(nil), c.payloads...)
}

func TestPublisher_DeliversInOrder(t *testing.T) {
	client := &fakeClient{}
	p := New(client, Options{Topic: "gps"})
	for i := 0; i < 5; i++ {
		rec := gps.FixRecord{Timestamp: gps.DecodedTime{Seconds: int64(i)}, FrameID: gps.DefaultFrameID}
		if err := p.Publish(rec); err != nil {
			t.Fatalf("publish %d: %v", i, err)
		}
	}
	p.Close()

	sent := client.sent()
	if len(sent) != 5 {
		t.Fatalf("expected 5 messages, got %d", len(sent))
	}
	for i, payload := range sent {
		var rec gps.FixRecord
		if err := json.Unmarshal(payload, &rec); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		if rec.Timestamp.Seconds != int64(i) {
			t.Fatalf("message %d carries seconds=%d", i, rec.Timestamp.Seconds)
		}
		if client.topics[i] != "gps" {
			t.Fatalf("topic %q", client.topics[i])
		}
	}
}

func TestPublisher_PayloadSchema(t *testing.T) {
	client := &fakeClient{}
	p := New(client, Options{})
	rec := gps.FixRecord{
		Timestamp:   gps.DecodedTime{Seconds: 45319},
		FrameID:     gps.DefaultFrameID,
		Latitude:    48.1173,
		UTM:         gps.UTMPoint{Zone: 32, Letter: "U"},
		RawSentence: "$GPGGA,123519",
	}
	if err := p.Publish(rec); err != nil {
		t.Fatalf("publish: %v", err)
	}
	p.Close()

	var m map[string]interface{}
	if err := json.Unmarshal(client.sent()[0], &m); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	for _, key := range []string{"timestamp", "frame_id", "latitude", "longitude", "altitude", "utm", "hdop", "raw_sentence"} {
		if _, ok := m[key]; !ok {
			t.Fatalf("payload missing %q: %v", key, m)
		}
	}
	if m["frame_id"] != gps.DefaultFrameID {
		t.Fatalf("frame_id %v", m["frame_id"])
	}
}

func TestPublisher_DropsWhenQueueFull(t *testing.T) {
	client := &fakeClient{block: make(chan struct{})}
	p := New(client, Options{QueueDepth: 1, EnqueueTimeout: 20 * time.Millisecond})

	// The first record is taken by the sender and blocks inside Publish on
	// the client; the second fills the queue.
	if err := p.Publish(gps.FixRecord{}); err != nil {
		t.Fatalf("first publish: %v", err)
	}
	deadline := time.Now().Add(time.Second)
	for {
		err := p.Publish(gps.FixRecord{})
		if errors.Is(err, ErrQueueFull) {
			break
		}
		if err != nil {
			t.Fatalf("unexpected err: %v", err)
		}
		if time.Now().After(deadline) {
			t.Fatalf("queue never filled")
		}
	}

	start := time.Now()
	if err := p.Publish(gps.FixRecord{}); !errors.Is(err, ErrQueueFull) {
		t.Fatalf("expected ErrQueueFull, got %v", err)
	}
	if waited := time.Since(start); waited > 500*time.Millisecond {
		t.Fatalf("publish blocked for %v", waited)
	}

	close(client.block)
	p.Close()
}

func TestPublisher_PublishAfterClose(t *testing.T) {
	p := New(&fakeClient{}, Options{})
	p.Close()
	p.Close()
	if err := p.Publish(gps.FixRecord{}); !errors.Is(err, ErrClosed) {
		t.Fatalf("expected ErrClosed, got %v", err)
	}
}

func TestPublisher_BrokerErrorDoesNotStopSender(t *testing.T) {
	client := &erroringClient{}
	p := New(client, Options{})
	for i := 0; i < 3; i++ {
		if err := p.Publish(gps.FixRecord{}); err != nil {
			t.Fatalf("publish: %v", err)
		}
	}
	p.Close()
	if client.calls != 3 {
		t.Fatalf("expected 3 publish attempts, got %d", client.calls)
	}
}

type erroringClient struct {
	calls int
}

func (c *erroringClient) Publish(string, byte, bool, interface{}) mqtt.Token {
	c.calls++
	return newDoneToken(errors.New("not connected"))
}
