//go:build rp2040 || rp2350

package main

import (
	"machine"

	"bitwire/core"
)

// InitUSBDebug routes core debug output to the USB CDC console
// (machine.Serial on RP2 boards) and enables it
func InitUSBDebug() {
	if err := machine.Serial.Configure(machine.UARTConfig{}); err != nil {
		return
	}

	core.SetDebugWriter(func(s string) {
		_, _ = machine.Serial.Write([]byte(s))
		_, _ = machine.Serial.Write([]byte("\r\n"))
	})
	core.SetDebugEnabled(true)
}
