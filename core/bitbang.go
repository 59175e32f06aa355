package core

// Bit-bang primitives for the raw-wire bus. Both transfer exactly one byte,
// least significant bit first, and block for 8 bit periods. The peer samples
// data while the clock is high.

// bitDelayUS is the hold time between line transitions
const bitDelayUS = 1

// WriteByte clocks v out on data, LSB first. Each bit: set data, setup
// delay, clock high, delay, clock low, delay.
func WriteByte(v byte, clock DigitalOutput, data DigitalOutput, d Delayer) {
	state := disableInterrupts()
	defer restoreInterrupts(state)

	for i := 0; i < 8; i++ {
		setLine(data, v&0x01 == 1)
		d.DelayMicroseconds(bitDelayUS)
		clock.High()
		d.DelayMicroseconds(bitDelayUS)
		clock.Low()
		d.DelayMicroseconds(bitDelayUS)
		v >>= 1
	}
}

// ReadByte releases data and clocks in 8 bits. Each bit is sampled while
// clock is high and shifted in from the top, so the first bit on the wire
// ends up as bit 0 and the transfer is wire compatible with WriteByte.
func ReadByte(clock DigitalOutput, data DataLine, d Delayer) byte {
	state := disableInterrupts()
	defer restoreInterrupts(state)

	data.High()

	var v byte
	for i := 0; i < 8; i++ {
		clock.High()
		d.DelayMicroseconds(bitDelayUS)
		v >>= 1
		if data.Get() {
			v |= 0x80
		}
		clock.Low()
		d.DelayMicroseconds(bitDelayUS)
	}
	return v
}
