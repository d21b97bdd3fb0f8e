// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package config

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all application configuration values.
type Config struct {
	// GPS receiver
	GPSSerialPort     string `yaml:"gps_serial_port"`
	GPSBaudRate       int    `yaml:"gps_baud_rate"`
	GPSReadTimeoutMS  int    `yaml:"gps_read_timeout_ms"`
	GPSSerialBackend  string `yaml:"gps_serial_backend"` // "jacobsa", "bugst" or "sim"
	GPSSentenceID     string `yaml:"gps_sentence_id"`
	GPSFrameID        string `yaml:"gps_frame_id"`
	GPSVerifyChecksum bool   `yaml:"gps_verify_checksum"`

	// MQTT
	MQTTBroker          string `yaml:"mqtt_broker"`
	MQTTClientIDGPS     string `yaml:"mqtt_client_id_gps"`
	MQTTClientIDConsole string `yaml:"mqtt_client_id_console"`
	MQTTClientIDWeb     string `yaml:"mqtt_client_id_web"`

	// Topics
	TopicGPS string `yaml:"topic_gps"`

	// Publishing
	PublishQueueDepth       int `yaml:"publish_queue_depth"`
	PublishEnqueueTimeoutMS int `yaml:"publish_enqueue_timeout_ms"`

	// Web Server
	WebServerPort int `yaml:"web_server_port"`
}

// Default returns the configuration used when no file overrides a value.
func Default() *Config {
	return &Config{
		GPSSerialPort:           "/dev/ttyUSB0",
		GPSBaudRate:             4800,
		GPSReadTimeoutMS:        3000,
		GPSSerialBackend:        "jacobsa",
		GPSSentenceID:           "$GPGGA",
		GPSFrameID:              "GPS1_Frame",
		MQTTBroker:              "tcp://localhost:1883",
		MQTTClientIDGPS:         "gnss-gps-driver",
		MQTTClientIDConsole:     "gnss-console-subscriber",
		MQTTClientIDWeb:         "gnss-web-subscriber",
		TopicGPS:                "gps",
		PublishQueueDepth:       10,
		PublishEnqueueTimeoutMS: 100,
		WebServerPort:           8080,
	}
}

// ReadTimeout is GPSReadTimeoutMS as a duration.
func (c *Config) ReadTimeout() time.Duration {
	return time.Duration(c.GPSReadTimeoutMS) * time.Millisecond
}

// PublishEnqueueTimeout is PublishEnqueueTimeoutMS as a duration.
func (c *Config) PublishEnqueueTimeout() time.Duration {
	return time.Duration(c.PublishEnqueueTimeoutMS) * time.Millisecond
}

// Package-level unexported variables for the singleton:
//   - globalConfig: only reachable through InitGlobal and Get.
//   - configOnce: ensures InitGlobal only loads once.
//   - configMu: protects globalConfig for concurrent readers.
var (
	globalConfig *Config
	configOnce   sync.Once
	configMu     sync.RWMutex
)

// Load reads a configuration file on top of Default. Files ending in .yaml or
// .yml are parsed as YAML, anything else as KEY=VALUE lines.
func Load(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}

	cfg := Default()
	switch strings.ToLower(filepath.Ext(configPath)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("invalid yaml config: %w", err)
		}
	default:
		if err := cfg.parseKeyValue(string(data)); err != nil {
			return nil, err
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) parseKeyValue(data string) error {
	scanner := bufio.NewScanner(strings.NewReader(data))
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())

		// Skip empty lines and comments
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		// Parse KEY=VALUE
		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			return fmt.Errorf("invalid config line %d: %q", lineNum, line)
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])

		if err := c.setValue(key, value); err != nil {
			return fmt.Errorf("config line %d: %w", lineNum, err)
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("error reading config file: %w", err)
	}
	return nil
}

// setValue sets a config value based on the key.
func (c *Config) setValue(key, value string) error {
	switch key {
	// GPS receiver
	case "GPS_SERIAL_PORT":
		c.GPSSerialPort = value
	case "GPS_BAUD_RATE":
		rate, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid GPS_BAUD_RATE %q: %w", value, err)
		}
		c.GPSBaudRate = rate
	case "GPS_READ_TIMEOUT_MS":
		ms, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid GPS_READ_TIMEOUT_MS %q: %w", value, err)
		}
		c.GPSReadTimeoutMS = ms
	case "GPS_SERIAL_BACKEND":
		c.GPSSerialBackend = strings.ToLower(value)
	case "GPS_SENTENCE_ID":
		c.GPSSentenceID = value
	case "GPS_FRAME_ID":
		c.GPSFrameID = value
	case "GPS_VERIFY_CHECKSUM":
		v, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid GPS_VERIFY_CHECKSUM %q: %w", value, err)
		}
		c.GPSVerifyChecksum = v

	// MQTT
	case "MQTT_BROKER":
		c.MQTTBroker = value
	case "MQTT_CLIENT_ID_GPS":
		c.MQTTClientIDGPS = value
	case "MQTT_CLIENT_ID_CONSOLE":
		c.MQTTClientIDConsole = value
	case "MQTT_CLIENT_ID_WEB":
		c.MQTTClientIDWeb = value

	// Topics
	case "TOPIC_GPS":
		c.TopicGPS = value

	// Publishing
	case "PUBLISH_QUEUE_DEPTH":
		depth, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid PUBLISH_QUEUE_DEPTH %q: %w", value, err)
		}
		c.PublishQueueDepth = depth
	case "PUBLISH_ENQUEUE_TIMEOUT_MS":
		ms, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid PUBLISH_ENQUEUE_TIMEOUT_MS %q: %w", value, err)
		}
		c.PublishEnqueueTimeoutMS = ms

	// Web Server
	case "WEB_SERVER_PORT":
		port, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid WEB_SERVER_PORT %q: %w", value, err)
		}
		c.WebServerPort = port

	default:
		return fmt.Errorf("unknown config key: %q", key)
	}

	return nil
}

// validate checks that values are usable.
func (c *Config) validate() error {
	if c.GPSSerialPort == "" {
		return fmt.Errorf("GPS_SERIAL_PORT is required")
	}
	if c.GPSBaudRate <= 0 {
		return fmt.Errorf("GPS_BAUD_RATE must be positive, got %d", c.GPSBaudRate)
	}
	if c.GPSReadTimeoutMS < 100 {
		return fmt.Errorf("GPS_READ_TIMEOUT_MS must be at least 100, got %d", c.GPSReadTimeoutMS)
	}
	c.GPSSerialBackend = strings.ToLower(strings.TrimSpace(c.GPSSerialBackend))
	switch c.GPSSerialBackend {
	case "jacobsa", "bugst", "sim":
	default:
		return fmt.Errorf("GPS_SERIAL_BACKEND must be jacobsa, bugst or sim, got %q", c.GPSSerialBackend)
	}
	if c.GPSSentenceID == "" {
		return fmt.Errorf("GPS_SENTENCE_ID is required")
	}
	if c.MQTTBroker == "" {
		return fmt.Errorf("MQTT_BROKER is required")
	}
	if c.TopicGPS == "" {
		return fmt.Errorf("TOPIC_GPS is required")
	}
	if c.PublishQueueDepth <= 0 {
		return fmt.Errorf("PUBLISH_QUEUE_DEPTH must be positive, got %d", c.PublishQueueDepth)
	}
	if c.PublishEnqueueTimeoutMS <= 0 {
		return fmt.Errorf("PUBLISH_ENQUEUE_TIMEOUT_MS must be positive, got %d", c.PublishEnqueueTimeoutMS)
	}
	return nil
}

// InitGlobal initializes the global configuration from file.
// Uses sync.Once so only the first call loads; later calls are no-ops.
func InitGlobal(configPath string) error {
	var err error
	configOnce.Do(func() {
		configMu.Lock()
		defer configMu.Unlock()
		globalConfig, err = Load(configPath)
	})
	return err
}

// Get returns the global configuration instance, or Default when InitGlobal
// has not loaded one.
func Get() *Config {
	configMu.RLock()
	defer configMu.RUnlock()
	if globalConfig == nil {
		return Default()
	}
	return globalConfig
}
