package core

// DigitalOutput is a line the core can drive.
// TinyGo's machine.Pin satisfies it once configured as an output.
type DigitalOutput interface {
	// High drives the line high (or releases it, for open-drain lines)
	High()

	// Low drives the line low
	Low()
}

// DigitalInput is a line the core can sample
type DigitalInput interface {
	// Get reads the current line level
	Get() bool
}

// DataLine is a bidirectional line. On open-drain hardware High releases
// the line so a peer, helped by a pull-up, may drive it.
type DataLine interface {
	DigitalOutput
	DigitalInput
}

// Delayer provides blocking microsecond waits. Implementations must
// busy-wait: yielding to a scheduler breaks the per-bit timing budget.
type Delayer interface {
	DelayMicroseconds(us uint32)
}

// setLine drives out high or low
func setLine(out DigitalOutput, high bool) {
	if high {
		out.High()
	} else {
		out.Low()
	}
}
