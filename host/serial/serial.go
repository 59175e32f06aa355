// Package serial opens the host side of the link to a bitwire device
package serial

import (
	"io"
	"time"
)

// Port represents a serial port interface
// This abstraction allows for different implementations:
// - Native serial (using github.com/tarm/serial)
// - In-process emulator pipes (for -sim and tests)
type Port interface {
	io.ReadWriteCloser

	// Flush discards bytes received but not yet read
	Flush() error
}

// Config holds serial port configuration
type Config struct {
	// Device path (e.g., "/dev/ttyUSB0", "COM3")
	Device string

	// Baud rate; the firmware's UART runs at 115200
	Baud int

	// ReadTimeout bounds a single Read call (0 = blocking). A Read that
	// times out returns 0, nil.
	ReadTimeout time.Duration
}

// DefaultBaud is the firmware UART rate
const DefaultBaud = 115200

// DefaultConfig returns the configuration matching the reference firmware
func DefaultConfig(device string) *Config {
	return &Config{
		Device:      device,
		Baud:        DefaultBaud,
		ReadTimeout: 100 * time.Millisecond,
	}
}
