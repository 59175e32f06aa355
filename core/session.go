package core

import "io"

// Channel is the byte stream to the host. ReadByte blocks until a byte
// arrives; there is no timeout.
type Channel interface {
	io.ByteReader
	io.ByteWriter
	io.StringWriter
}

// Session owns every resource of a running device: the host channel and the
// raw-wire bus. It is created once and handed to a Controller, which lends it
// to the dispatcher. It must not be shared between goroutines.
type Session struct {
	ch  Channel
	bus *Bus
}

// NewSession bundles the channel, the two lines and the delay source
func NewSession(ch Channel, clock DigitalOutput, data DataLine, delay Delayer) *Session {
	return &Session{
		ch:  ch,
		bus: NewBus(clock, data, delay),
	}
}

// Channel returns the host byte stream
func (s *Session) Channel() Channel { return s.ch }

// Bus returns the raw-wire bus
func (s *Session) Bus() *Bus { return s.bus }

// reply writes a single byte to the host
func (s *Session) reply(b byte) error {
	return s.ch.WriteByte(b)
}

// banner writes an ASCII banner with no terminator
func (s *Session) banner(text string) error {
	recordEvent(EvtBanner, text[0])
	_, err := s.ch.WriteString(text)
	return err
}

// StreamChannel adapts an io.ReadWriter (pipe, serial port) to a Channel
type StreamChannel struct {
	rw  io.ReadWriter
	buf [1]byte
}

// NewStreamChannel wraps rw
func NewStreamChannel(rw io.ReadWriter) *StreamChannel {
	return &StreamChannel{rw: rw}
}

// ReadByte blocks until one byte is read. Reads returning no data and no
// error (serial read timeouts) are retried.
func (c *StreamChannel) ReadByte() (byte, error) {
	for {
		n, err := c.rw.Read(c.buf[:])
		if n == 1 {
			return c.buf[0], nil
		}
		if err != nil {
			return 0, err
		}
	}
}

// WriteByte writes one byte
func (c *StreamChannel) WriteByte(b byte) error {
	c.buf[0] = b
	_, err := c.rw.Write(c.buf[:])
	return err
}

// WriteString writes s in a single Write call
func (c *StreamChannel) WriteString(s string) (int, error) {
	return c.rw.Write([]byte(s))
}
