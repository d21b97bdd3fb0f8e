// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/relabs-tech/gnss_driver/internal/app"
	"github.com/relabs-tech/gnss_driver/internal/cli"
	"github.com/relabs-tech/gnss_driver/internal/serialport"
)

func main() {
	configPath := flag.String("config", cli.DefaultConfigPath, "configuration file (KEY=VALUE or .yaml)")
	listPorts := flag.Bool("list-ports", false, "list serial ports and exit")
	flag.Parse()

	if *listPorts {
		ports, err := serialport.ListPorts()
		if err != nil {
			log.Fatalf("fatal: list serial ports: %v", err)
		}
		for _, p := range ports {
			fmt.Println(p)
		}
		return
	}

	log.Println("starting GNSS driver (NMEA GGA → MQTT)")
	cli.LoadConfig(*configPath)

	ctx, stop := cli.SignalContext()
	defer stop()

	if err := app.RunGPSProducer(ctx); err != nil {
		stop()
		log.Printf("fatal: %v", err)
		os.Exit(1)
	}
	log.Println("GNSS driver shut down")
}
