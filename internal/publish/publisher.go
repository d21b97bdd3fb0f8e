// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package publish hands fix records to the MQTT bus through a bounded queue.
package publish

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/relabs-tech/gnss_driver/internal/gps"
)

const (
	DefaultQueueDepth     = 10
	DefaultEnqueueTimeout = 100 * time.Millisecond
	DefaultPublishTimeout = 2 * time.Second
)

var (
	// ErrQueueFull means the record was dropped because the bus fell behind.
	ErrQueueFull = errors.New("publish: queue full, fix dropped")
	// ErrClosed is returned by Publish after Close.
	ErrClosed = errors.New("publish: publisher closed")
)

// Client is the part of mqtt.Client the publisher needs.
type Client interface {
	Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token
}

// Options tune the publisher. Zero values select the defaults.
type Options struct {
	Topic          string
	QoS            byte
	Retained       bool
	QueueDepth     int
	EnqueueTimeout time.Duration // how long Publish may wait on a full queue
	PublishTimeout time.Duration // how long the sender waits for one broker ack
}

// Publisher serializes fixes to JSON and delivers them in order from a single
// sender goroutine.
type Publisher struct {
	client Client
	opts   Options
	queue  chan []byte

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
}

// New starts a publisher on client.
func New(client Client, opts Options) *Publisher {
	if opts.Topic == "" {
		opts.Topic = "gps"
	}
	if opts.QueueDepth <= 0 {
		opts.QueueDepth = DefaultQueueDepth
	}
	if opts.EnqueueTimeout <= 0 {
		opts.EnqueueTimeout = DefaultEnqueueTimeout
	}
	if opts.PublishTimeout <= 0 {
		opts.PublishTimeout = DefaultPublishTimeout
	}
	p := &Publisher{
		client: client,
		opts:   opts,
		queue:  make(chan []byte, opts.QueueDepth),
	}
	p.wg.Add(1)
	go p.run()
	return p
}

// Publish enqueues one record. It blocks at most EnqueueTimeout when the
// queue is full and then drops the record with ErrQueueFull.
func (p *Publisher) Publish(rec gps.FixRecord) error {
	payload, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("publish: marshal fix: %w", err)
	}

	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrClosed
	}

	select {
	case p.queue <- payload:
		return nil
	default:
	}

	timer := time.NewTimer(p.opts.EnqueueTimeout)
	defer timer.Stop()
	select {
	case p.queue <- payload:
		return nil
	case <-timer.C:
		return ErrQueueFull
	}
}

// Close stops accepting records and waits for queued ones to be sent.
func (p *Publisher) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	close(p.queue)
	p.mu.Unlock()
	p.wg.Wait()
}

func (p *Publisher) run() {
	defer p.wg.Done()
	for payload := range p.queue {
		token := p.client.Publish(p.opts.Topic, p.opts.QoS, p.opts.Retained, payload)
		if !token.WaitTimeout(p.opts.PublishTimeout) {
			log.Printf("publish: WARN timed out after %s waiting for broker on %s", p.opts.PublishTimeout, p.opts.Topic)
			continue
		}
		if err := token.Error(); err != nil {
			log.Printf("publish: WARN publish error on %s: %v", p.opts.Topic, err)
		}
	}
}
