package core

// DebugWriter is a function type for writing debug messages
type DebugWriter func(string)

// TraceEvent captures a protocol event for post-mortem analysis
type TraceEvent struct {
	EventType uint8 // Event type code
	Value     byte  // Command byte, banner initial, etc.
	Seq       uint32
}

// Event type codes
const (
	EvtCommand      = 1 // Raw-wire command byte received
	EvtBanner       = 2 // Banner sent (Value is its first character)
	EvtEnterRawWire = 3 // Idle -> raw-wire
	EvtExitRawWire  = 4 // Raw-wire -> idle
	EvtFault        = 5 // Unknown opcode
)

const (
	TraceRingSize = 32 // Keep last 32 events for post-mortem
)

var (
	// debugPrintln is the global debug print function (set by platform code)
	debugPrintln DebugWriter = func(s string) {}

	// debugEnabled controls whether DebugPrintln produces output
	debugEnabled bool = false

	traceRing     [TraceRingSize]TraceEvent
	traceRingHead uint8
	traceSeq      uint32
)

// SetDebugWriter sets the platform-specific debug output function.
// It must not write to the protocol channel.
func SetDebugWriter(writer DebugWriter) {
	debugPrintln = writer
}

// SetDebugEnabled enables or disables debug output
func SetDebugEnabled(enabled bool) {
	debugEnabled = enabled
}

// DebugPrintln writes a debug message when debug output is enabled
func DebugPrintln(msg string) {
	if debugEnabled && debugPrintln != nil {
		debugPrintln(msg)
	}
}

// recordEvent stores an event in the ring buffer. It never blocks.
func recordEvent(eventType uint8, value byte) {
	traceSeq++
	idx := traceRingHead
	traceRing[idx] = TraceEvent{
		EventType: eventType,
		Value:     value,
		Seq:       traceSeq,
	}
	traceRingHead = (idx + 1) % TraceRingSize
}

// TraceEvents returns the recorded events, oldest first
func TraceEvents() []TraceEvent {
	events := make([]TraceEvent, 0, TraceRingSize)
	start := traceRingHead
	for i := uint8(0); i < TraceRingSize; i++ {
		evt := traceRing[(start+i)%TraceRingSize]
		if evt.EventType == 0 {
			continue // Empty slot
		}
		events = append(events, evt)
	}
	return events
}

// DumpTrace writes the ring buffer through the debug writer regardless of
// the enable flag. Targets call it after a fault.
func DumpTrace() {
	if debugPrintln == nil {
		return
	}

	debugPrintln("[TRACE] === Trace Ring Dump ===")
	for _, evt := range TraceEvents() {
		var name string
		switch evt.EventType {
		case EvtCommand:
			name = "CMD"
		case EvtBanner:
			name = "BANNER"
		case EvtEnterRawWire:
			name = "ENTER_RAW"
		case EvtExitRawWire:
			name = "EXIT_RAW"
		case EvtFault:
			name = "FAULT!"
		default:
			name = "UNKNOWN"
		}

		debugPrintln("[TRACE] #" + itoa(int(evt.Seq)) + " " + name + " 0x" + hex8(evt.Value))
	}
	debugPrintln("[TRACE] === End Dump ===")
}

// ClearTrace clears the trace buffer
func ClearTrace() {
	for i := range traceRing {
		traceRing[i] = TraceEvent{}
	}
	traceRingHead = 0
	traceSeq = 0
}
