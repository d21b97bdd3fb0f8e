// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/gorilla/websocket"

	"github.com/relabs-tech/gnss_driver/internal/config"
	"github.com/relabs-tech/gnss_driver/internal/gps"
	"github.com/relabs-tech/gnss_driver/internal/publish"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for local development
	},
}

const wsWriteTimeout = 5 * time.Second

// FixHub keeps the latest fix and fans new ones out to websocket clients.
type FixHub struct {
	mu      sync.RWMutex
	last    gps.FixRecord
	haveFix bool
	subs    map[chan gps.FixRecord]struct{}
}

func NewFixHub() *FixHub {
	return &FixHub{subs: make(map[chan gps.FixRecord]struct{})}
}

// Update stores rec and offers it to every subscriber. Slow subscribers miss
// fixes rather than stall the MQTT callback.
func (h *FixHub) Update(rec gps.FixRecord) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.last = rec
	h.haveFix = true
	for ch := range h.subs {
		select {
		case ch <- rec:
		default:
		}
	}
}

// Latest returns the most recent fix, if any.
func (h *FixHub) Latest() (gps.FixRecord, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.last, h.haveFix
}

func (h *FixHub) subscribe() chan gps.FixRecord {
	ch := make(chan gps.FixRecord, 8)
	h.mu.Lock()
	h.subs[ch] = struct{}{}
	h.mu.Unlock()
	return ch
}

func (h *FixHub) unsubscribe(ch chan gps.FixRecord) {
	h.mu.Lock()
	delete(h.subs, ch)
	h.mu.Unlock()
}

// MessageHandler feeds the hub from the GPS topic.
func (h *FixHub) MessageHandler() mqtt.MessageHandler {
	return func(_ mqtt.Client, msg mqtt.Message) {
		var rec gps.FixRecord
		if err := json.Unmarshal(msg.Payload(), &rec); err != nil {
			log.Printf("web: MQTT payload unmarshal error: %v", err)
			return
		}
		h.Update(rec)
	}
}

// HandleLatest serves the latest fix as JSON.
func (h *FixHub) HandleLatest(w http.ResponseWriter, r *http.Request) {
	rec, ok := h.Latest()
	if !ok {
		http.Error(w, "no data yet", http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(rec); err != nil {
		log.Printf("web: json encode error: %v", err)
	}
}

// HandleStream pushes every new fix over a websocket.
func (h *FixHub) HandleStream(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("web: websocket upgrade error: %v", err)
		return
	}
	defer conn.Close()

	ch := h.subscribe()
	defer h.unsubscribe(ch)

	// Reader goroutine only detects the client going away.
	gone := make(chan struct{})
	go func() {
		defer close(gone)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					log.Printf("web: websocket error: %v", err)
				}
				return
			}
		}
	}()

	if rec, ok := h.Latest(); ok {
		if err := writeFix(conn, rec); err != nil {
			return
		}
	}
	for {
		select {
		case <-gone:
			return
		case <-r.Context().Done():
			return
		case rec := <-ch:
			if err := writeFix(conn, rec); err != nil {
				log.Printf("web: websocket write error: %v", err)
				return
			}
		}
	}
}

func writeFix(conn *websocket.Conn, rec gps.FixRecord) error {
	_ = conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
	return conn.WriteJSON(rec)
}

// Routes registers the fix endpoints.
func (h *FixHub) Routes(mux *http.ServeMux) {
	mux.HandleFunc("/api/fix", h.HandleLatest)
	mux.HandleFunc("/ws/fix", h.HandleStream)
}

// RunWeb serves the latest fix and a live fix stream fed from MQTT.
func RunWeb(ctx context.Context) error {
	cfg := config.Get()
	hub := NewFixHub()

	// 1) Connect to MQTT broker
	client, err := publish.Connect(cfg.MQTTBroker, cfg.MQTTClientIDWeb)
	if err != nil {
		return err
	}
	defer client.Disconnect(250)

	// 2) Subscribe to the fix topic
	token := client.Subscribe(cfg.TopicGPS, 0, hub.MessageHandler())
	token.Wait()
	if token.Error() != nil {
		return token.Error()
	}
	log.Printf("web: subscribed to MQTT topic %s", cfg.TopicGPS)

	// 3) HTTP endpoints
	mux := http.NewServeMux()
	hub.Routes(mux)
	srv := &http.Server{Addr: fmt.Sprintf(":%d", cfg.WebServerPort), Handler: mux}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	log.Printf("web: server listening on %s", srv.Addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
