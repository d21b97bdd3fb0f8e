// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package main

import (
	"flag"
	"log"
	"os"

	"github.com/relabs-tech/gnss_driver/internal/app"
	"github.com/relabs-tech/gnss_driver/internal/cli"
)

func main() {
	configPath := flag.String("config", cli.DefaultConfigPath, "configuration file (KEY=VALUE or .yaml)")
	flag.Parse()

	log.Println("starting GNSS fix console (MQTT subscriber)")
	cli.LoadConfig(*configPath)

	ctx, stop := cli.SignalContext()
	defer stop()

	if err := app.RunConsoleMQTT(ctx, os.Stdout); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}
