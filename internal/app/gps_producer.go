// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"context"
	"log"

	"github.com/relabs-tech/gnss_driver/internal/config"
	"github.com/relabs-tech/gnss_driver/internal/gps"
	"github.com/relabs-tech/gnss_driver/internal/publish"
	"github.com/relabs-tech/gnss_driver/internal/serialport"
)

// RunGPSProducer opens the GPS serial port, converts GGA sentences into fix
// records and publishes them as JSON on the configured MQTT topic until ctx
// is cancelled.
func RunGPSProducer(ctx context.Context) error {
	cfg := config.Get()

	// ---- 1) Connect to MQTT broker ----
	client, err := publish.Connect(cfg.MQTTBroker, cfg.MQTTClientIDGPS)
	if err != nil {
		return err
	}
	defer client.Disconnect(250)

	pub := publish.New(client, publish.Options{
		Topic:          cfg.TopicGPS,
		QueueDepth:     cfg.PublishQueueDepth,
		EnqueueTimeout: cfg.PublishEnqueueTimeout(),
	})
	defer pub.Close()

	// ---- 2) Serial port and sentence pipeline ----
	serialCfg := serialport.Config{
		Port:    cfg.GPSSerialPort,
		Baud:    cfg.GPSBaudRate,
		Timeout: cfg.ReadTimeout(),
		Backend: cfg.GPSSerialBackend,
	}
	open := func() (LineSource, error) {
		log.Printf("gps: connecting to serial port %s at %d baud (%s backend)", serialCfg.Port, serialCfg.Baud, cfg.GPSSerialBackend)
		port, err := serialport.Open(serialCfg)
		if err != nil {
			return nil, err
		}
		log.Printf("gps: serial port %s opened", port.Name())
		return port, nil
	}
	proc := &gps.Processor{
		Parser: &gps.Parser{
			Identifier:     cfg.GPSSentenceID,
			VerifyChecksum: cfg.GPSVerifyChecksum,
		},
		FrameID: cfg.GPSFrameID,
	}

	// ---- 3) Stream until shutdown ----
	drv := NewDriver(open, proc, pub)
	return drv.Run(ctx)
}
