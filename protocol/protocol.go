// Package protocol implements the Binary Bitbang raw-wire byte protocol
package protocol

// Version represents the bitwire firmware version
const Version = "0.1.0"

// Idle mode bytes
const (
	IdleReset    = 0x00 // Handshake byte, also exits raw-wire mode
	EnterRawWire = 0x05 // Switches from idle to raw-wire mode

	// HandshakeThreshold is the number of IdleReset bytes that trigger a BBIO1 banner
	HandshakeThreshold = 20
)

// Banners are sent as plain ASCII with no terminator
const (
	BannerBBIO = "BBIO1"
	BannerRaw  = "RAW1"
)

// Reply bytes
const (
	Ack     = 0x01
	BitLow  = 0x00
	BitHigh = 0x01
)

// MaxBulk is the largest number of bytes or pulses a single bulk opcode can carry
const MaxBulk = 16
