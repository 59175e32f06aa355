// Package config loads the host tool's connection profile
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"bitwire/host/serial"
)

// Config is the host-side connection profile. Durations are in
// milliseconds in the JSON form.
type Config struct {
	Device            string `json:"device"`
	Baud              int    `json:"baud"`
	ReadTimeoutMs     int    `json:"read_timeout_ms"`
	ResponseTimeoutMs int    `json:"response_timeout_ms"`
	HandshakeRetries  int    `json:"handshake_retries"`
}

// Default returns a profile with every field defaulted
func Default() *Config {
	var c Config
	applyDefaults(&c)
	return &c
}

// Load parses a JSON profile and fills in missing values with defaults
func Load(jsonData []byte) (*Config, error) {
	var c Config
	if err := json.Unmarshal(jsonData, &c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	applyDefaults(&c)

	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// LoadFile reads and parses a JSON profile
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	return Load(data)
}

// applyDefaults fills in missing configuration values
func applyDefaults(c *Config) {
	if c.Device == "" {
		c.Device = "/dev/ttyUSB0"
	}
	if c.Baud == 0 {
		c.Baud = serial.DefaultBaud
	}
	if c.ReadTimeoutMs == 0 {
		c.ReadTimeoutMs = 100
	}
	if c.ResponseTimeoutMs == 0 {
		c.ResponseTimeoutMs = 500
	}
	if c.HandshakeRetries == 0 {
		c.HandshakeRetries = 3
	}
}

// Validate rejects values no port or client can use
func (c *Config) Validate() error {
	if c.Baud < 0 {
		return fmt.Errorf("invalid baud rate %d", c.Baud)
	}
	if c.ReadTimeoutMs < 0 || c.ResponseTimeoutMs < 0 {
		return fmt.Errorf("timeouts must not be negative")
	}
	if c.HandshakeRetries < 0 {
		return fmt.Errorf("invalid handshake retries %d", c.HandshakeRetries)
	}
	return nil
}

// Serial returns the port configuration
func (c *Config) Serial() *serial.Config {
	return &serial.Config{
		Device:      c.Device,
		Baud:        c.Baud,
		ReadTimeout: time.Duration(c.ReadTimeoutMs) * time.Millisecond,
	}
}

// ResponseTimeout is how long the client waits for each reply byte
func (c *Config) ResponseTimeout() time.Duration {
	return time.Duration(c.ResponseTimeoutMs) * time.Millisecond
}
