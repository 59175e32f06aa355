//go:build rp2040 || rp2350

package main

import "machine"

// OpenDrainPin emulates an open-drain output on RP2 GPIO, which has no
// open-drain mode: High switches the pin to an input with pull-up so the
// peer may pull the line low, Low drives it low as an output.
type OpenDrainPin struct {
	pin machine.Pin
}

// NewOpenDrainPin configures pin released (input with pull-up)
func NewOpenDrainPin(pin machine.Pin) *OpenDrainPin {
	p := &OpenDrainPin{pin: pin}
	p.High()
	return p
}

// High releases the line
func (p *OpenDrainPin) High() {
	p.pin.Configure(machine.PinConfig{Mode: machine.PinInputPullup})
}

// Low drives the line low. The output latch is cleared before the pin is
// switched to output so no high glitch reaches the wire.
func (p *OpenDrainPin) Low() {
	p.pin.Low()
	p.pin.Configure(machine.PinConfig{Mode: machine.PinOutput})
}

// Get reads the line level
func (p *OpenDrainPin) Get() bool {
	return p.pin.Get()
}
