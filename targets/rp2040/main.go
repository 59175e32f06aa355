//go:build rp2040 || rp2350

package main

import (
	"machine"
	"time"

	"bitwire/core"
)

// Wiring. The data line needs a pull-up; the internal one is enabled, add
// an external resistor for long wires.
const (
	clockPin = machine.GPIO3
	dataPin  = machine.GPIO4
	linkBaud = 115200
)

func main() {
	// Debug console on USB CDC, kept off the protocol UART
	InitUSBDebug()

	link := machine.UART0
	if err := link.Configure(machine.UARTConfig{
		BaudRate: linkBaud,
		TX:       machine.UART0_TX_PIN,
		RX:       machine.UART0_RX_PIN,
	}); err != nil {
		halt("uart configure failed: " + err.Error())
	}

	clock := clockPin
	clock.Configure(machine.PinConfig{Mode: machine.PinOutput})
	clock.Low()

	data := NewOpenDrainPin(dataPin)
	data.High()

	session := core.NewSession(NewUARTChannel(link), clock, data, core.SpinDelay{})
	core.DebugPrintln("bitwire ready, waiting for host")

	// Run only returns on a fault: the UART channel never fails
	err := core.NewController(session).Run()
	core.DumpTrace()
	halt(err.Error())
}

// halt reports why the device stopped and never returns. The protocol link
// stays silent until a hardware reset.
func halt(reason string) {
	for {
		core.DebugPrintln("halted: " + reason)
		time.Sleep(5 * time.Second)
	}
}
