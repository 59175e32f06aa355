package core

import "tinygo.org/x/drivers"

var _ drivers.SPI = (*Bus)(nil)

// Bus is the two-wire raw-wire interface: a clock output, a bidirectional
// data line and the delay source that times them. All wire activity of the
// dispatcher goes through a Bus.
type Bus struct {
	clock DigitalOutput
	data  DataLine
	delay Delayer
}

// NewBus bundles the lines and delay source. It does not touch the lines.
func NewBus(clock DigitalOutput, data DataLine, delay Delayer) *Bus {
	return &Bus{clock: clock, data: data, delay: delay}
}

// Send clocks one byte out, LSB first
func (b *Bus) Send(v byte) {
	WriteByte(v, b.clock, b.data, b.delay)
}

// Receive clocks one byte in, LSB first
func (b *Bus) Receive() byte {
	return ReadByte(b.clock, b.data, b.delay)
}

// Pulse produces one clock pulse with no data activity
func (b *Bus) Pulse() {
	state := disableInterrupts()
	defer restoreInterrupts(state)

	b.clock.High()
	b.delay.DelayMicroseconds(bitDelayUS)
	b.clock.Low()
	b.delay.DelayMicroseconds(bitDelayUS)
}

// Sample releases data, pulses the clock once and returns the data level
// seen while the clock was high
func (b *Bus) Sample() bool {
	state := disableInterrupts()
	defer restoreInterrupts(state)

	b.data.High()
	b.clock.High()
	b.delay.DelayMicroseconds(bitDelayUS)
	level := b.data.Get()
	b.clock.Low()
	b.delay.DelayMicroseconds(bitDelayUS)
	return level
}

// SetClock drives the clock line to a static level
func (b *Bus) SetClock(high bool) {
	setLine(b.clock, high)
}

// SetData drives the data line to a static level
func (b *Bus) SetData(high bool) {
	setLine(b.data, high)
}

// Tx matches drivers.SPI, so drivers written against that interface can run
// over the raw-wire lines; the dispatcher itself uses Send and Receive. The
// bus is half duplex: all of w is written first, then len(r) bytes are read.
// Nil or empty slices skip a phase. No error is ever returned.
func (b *Bus) Tx(w, r []byte) error {
	for _, v := range w {
		b.Send(v)
	}
	for i := range r {
		r[i] = b.Receive()
	}
	return nil
}

// Transfer writes v and then reads one byte back
func (b *Bus) Transfer(v byte) (byte, error) {
	b.Send(v)
	return b.Receive(), nil
}
