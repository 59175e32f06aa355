// Package sim simulates the two-wire raw-wire bus for tests and for running
// the firmware core off-target. The data line is open drain: its level is
// the wired-AND of the device and peer drivers, idling high through the
// pull-up. The peer samples the line on every rising clock edge and can be
// loaded with bits it drives back for the device to read.
package sim

import "sync"

// EventKind identifies a recorded line or timing event
type EventKind uint8

const (
	ClockHigh EventKind = iota + 1
	ClockLow
	DataHigh
	DataLow
	DataRead
	Delay
)

func (k EventKind) String() string {
	switch k {
	case ClockHigh:
		return "clk=1"
	case ClockLow:
		return "clk=0"
	case DataHigh:
		return "dat=1"
	case DataLow:
		return "dat=0"
	case DataRead:
		return "read"
	case Delay:
		return "delay"
	}
	return "?"
}

// Event is one recorded action. Value is the microsecond count for Delay
// and the sampled level (0/1) for DataRead.
type Event struct {
	Kind  EventKind
	Value uint32
}

// Wire is the simulated bus shared by the device-side pins and the peer
type Wire struct {
	mu sync.Mutex

	clock     bool
	device    bool // device driver: true releases the line
	peer      bool // peer driver: true releases the line
	replies   []bool
	samples   []bool
	rising    int
	falling   int
	elapsedUS uint64
	events    []Event
}

// NewWire returns a bus with clock low and data released
func NewWire() *Wire {
	return &Wire{device: true, peer: true}
}

// Clock returns the device's clock output
func (w *Wire) Clock() *Clock { return &Clock{w: w} }

// Data returns the device's data line
func (w *Wire) Data() *Data { return &Data{w: w} }

// Delay returns a delay source that records instead of sleeping
func (w *Wire) Delay() *Timer { return &Timer{w: w} }

// QueueBits loads bits the peer will drive, one per rising clock edge.
// When the queue is empty the peer releases the line.
func (w *Wire) QueueBits(bits ...bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.replies = append(w.replies, bits...)
}

// QueueByte loads a byte for the peer to drive, LSB first
func (w *Wire) QueueByte(b byte) {
	bits := make([]bool, 8)
	for i := range bits {
		bits[i] = b&(1<<uint(i)) != 0
	}
	w.QueueBits(bits...)
}

// Samples returns every level the peer sampled, in order
func (w *Wire) Samples() []bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]bool(nil), w.samples...)
}

// SampledBytes groups the peer's samples into bytes, LSB first. A trailing
// partial byte is dropped.
func (w *Wire) SampledBytes() []byte {
	samples := w.Samples()
	out := make([]byte, 0, len(samples)/8)
	for i := 0; i+8 <= len(samples); i += 8 {
		var b byte
		for bit := 0; bit < 8; bit++ {
			if samples[i+bit] {
				b |= 1 << uint(bit)
			}
		}
		out = append(out, b)
	}
	return out
}

// Edges returns the number of rising and falling clock edges
func (w *Wire) Edges() (rising, falling int) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.rising, w.falling
}

// ClockLevel returns the clock line level
func (w *Wire) ClockLevel() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.clock
}

// DataLevel returns the data line level
func (w *Wire) DataLevel() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.level()
}

// Elapsed returns the total simulated delay in microseconds
func (w *Wire) Elapsed() uint64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.elapsedUS
}

// Events returns a copy of the recorded event log
func (w *Wire) Events() []Event {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]Event(nil), w.events...)
}

// Reset clears the logs, counters and reply queue. Line levels are kept.
func (w *Wire) Reset() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.replies = nil
	w.samples = nil
	w.events = nil
	w.rising, w.falling = 0, 0
	w.elapsedUS = 0
}

func (w *Wire) level() bool {
	return w.device && w.peer
}

func (w *Wire) setClock(high bool) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if high {
		w.events = append(w.events, Event{Kind: ClockHigh})
	} else {
		w.events = append(w.events, Event{Kind: ClockLow})
	}

	switch {
	case high && !w.clock:
		w.rising++
		w.peer = true
		if len(w.replies) > 0 {
			w.peer = w.replies[0]
			w.replies = w.replies[1:]
		}
		w.samples = append(w.samples, w.level())
	case !high && w.clock:
		w.falling++
	}
	w.clock = high
}

func (w *Wire) setData(high bool) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if high {
		w.events = append(w.events, Event{Kind: DataHigh})
	} else {
		w.events = append(w.events, Event{Kind: DataLow})
	}
	w.device = high
}

func (w *Wire) readData() bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	level := w.level()
	var v uint32
	if level {
		v = 1
	}
	w.events = append(w.events, Event{Kind: DataRead, Value: v})
	return level
}

func (w *Wire) delay(us uint32) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.elapsedUS += uint64(us)
	w.events = append(w.events, Event{Kind: Delay, Value: us})
}

// Clock is the device's clock output
type Clock struct{ w *Wire }

func (c *Clock) High() { c.w.setClock(true) }
func (c *Clock) Low()  { c.w.setClock(false) }

// Data is the device's open-drain data line
type Data struct{ w *Wire }

func (d *Data) High()     { d.w.setData(true) }
func (d *Data) Low()      { d.w.setData(false) }
func (d *Data) Get() bool { return d.w.readData() }

// Timer records microsecond waits on the wire's timeline
type Timer struct{ w *Wire }

func (d *Timer) DelayMicroseconds(us uint32) { d.w.delay(us) }
