//go:build rp2040 || rp2350

package main

import (
	"machine"
	"runtime"
)

// UARTChannel is the host link. TinyGo buffers received bytes from the RX
// interrupt; ReadByte polls that buffer until a byte shows up.
type UARTChannel struct {
	uart *machine.UART
}

// NewUARTChannel wraps a configured UART
func NewUARTChannel(uart *machine.UART) *UARTChannel {
	return &UARTChannel{uart: uart}
}

// ReadByte blocks until a byte is received. There is no timeout.
func (c *UARTChannel) ReadByte() (byte, error) {
	for c.uart.Buffered() == 0 {
		runtime.Gosched()
	}
	return c.uart.ReadByte()
}

// WriteByte transmits one byte
func (c *UARTChannel) WriteByte(b byte) error {
	return c.uart.WriteByte(b)
}

// WriteString transmits a banner
func (c *UARTChannel) WriteString(s string) (int, error) {
	return c.uart.Write([]byte(s))
}
