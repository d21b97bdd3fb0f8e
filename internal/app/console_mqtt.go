// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/relabs-tech/gnss_driver/internal/config"
	"github.com/relabs-tech/gnss_driver/internal/gps"
	"github.com/relabs-tech/gnss_driver/internal/publish"
)

// formatFix renders one fix as a console line.
func formatFix(f gps.FixRecord) string {
	return fmt.Sprintf(
		"[GPS ]  t=%d.%07d frame=%s lat=%.6f lon=%.6f alt=%.1fm hdop=%.1f utm=%d%s %.2fE %.2fN",
		f.Timestamp.Seconds, f.Timestamp.Nanoseconds, f.FrameID,
		f.Latitude, f.Longitude, f.Altitude, f.HDOP,
		f.UTM.Zone, f.UTM.Letter, f.UTM.Easting, f.UTM.Northing,
	)
}

// fixHandler decodes fix payloads and writes them to out.
func fixHandler(out io.Writer) mqtt.MessageHandler {
	return func(_ mqtt.Client, msg mqtt.Message) {
		var f gps.FixRecord
		if err := json.Unmarshal(msg.Payload(), &f); err != nil {
			log.Printf("console: gps unmarshal error: %v", err)
			return
		}
		fmt.Fprintln(out, formatFix(f))
	}
}

// RunConsoleMQTT prints every fix published on the GPS topic until ctx is done.
func RunConsoleMQTT(ctx context.Context, out io.Writer) error {
	cfg := config.Get()

	client, err := publish.Connect(cfg.MQTTBroker, cfg.MQTTClientIDConsole)
	if err != nil {
		return err
	}
	defer client.Disconnect(250)

	token := client.Subscribe(cfg.TopicGPS, 0, fixHandler(out))
	token.Wait()
	if token.Error() != nil {
		return token.Error()
	}
	log.Printf("console: subscribed to %s", cfg.TopicGPS)

	<-ctx.Done()
	log.Println("console: shutting down")
	return nil
}
