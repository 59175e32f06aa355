package core

import (
	"bytes"
	"errors"
	"io"
	"testing"

	"bitwire/core/sim"
	"bitwire/protocol"
)

func TestRawWireExit(t *testing.T) {
	s, ch, _ := newTestSession(0x00, 0x42)

	if err := NewRawWire(s).Run(); err != nil {
		t.Fatalf("Expected clean exit, got %v", err)
	}
	if ch.out.String() != "BBIO1" {
		t.Errorf("Expected BBIO1, got %q", ch.out.String())
	}
	if len(ch.in) != 1 {
		t.Errorf("Dispatcher must stop reading after exit, %d bytes left", len(ch.in))
	}
}

func TestRawWireReannounce(t *testing.T) {
	s, ch, _ := newTestSession(0x01, 0x01, 0x00)

	if err := NewRawWire(s).Run(); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if ch.out.String() != "RAW1RAW1BBIO1" {
		t.Errorf("Expected RAW1RAW1BBIO1, got %q", ch.out.String())
	}
}

func TestRawWireReadByte(t *testing.T) {
	s, ch, wire := newTestSession(0x06, 0x06, 0x00)
	wire.QueueByte(0xA5)
	wire.QueueByte(0x3C)

	if err := NewRawWire(s).Run(); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	expected := append([]byte{0xA5, 0x3C}, "BBIO1"...)
	if !bytes.Equal(ch.out.Bytes(), expected) {
		t.Errorf("Expected %v, got %v", expected, ch.out.Bytes())
	}
}

func TestRawWireReadBit(t *testing.T) {
	testCases := []struct {
		name  string
		queue []bool
		reply byte
	}{
		{"peer low", []bool{false}, 0x00},
		{"peer high", []bool{true}, 0x01},
		{"released", nil, 0x01},
	}

	for _, tc := range testCases {
		s, ch, wire := newTestSession(0x07)
		// A driven-low data line must be released before sampling
		wire.Data().Low()
		wire.QueueBits(tc.queue...)

		_, err := NewRawWire(s).Execute(protocol.CmdReadBit)
		if err != nil {
			t.Fatalf("%s: Execute failed: %v", tc.name, err)
		}
		if !bytes.Equal(ch.out.Bytes(), []byte{tc.reply}) {
			t.Errorf("%s: expected reply 0x%02X, got %v", tc.name, tc.reply, ch.out.Bytes())
		}

		rising, falling := wire.Edges()
		if rising != 1 || falling != 1 {
			t.Errorf("%s: expected one clock pulse, got %d/%d", tc.name, rising, falling)
		}
	}
}

func TestRawWireClockTick(t *testing.T) {
	s, ch, wire := newTestSession()

	if _, err := NewRawWire(s).Execute(protocol.CmdClockTick); err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if !bytes.Equal(ch.out.Bytes(), []byte{protocol.Ack}) {
		t.Errorf("Expected single ack, got %v", ch.out.Bytes())
	}

	rising, falling := wire.Edges()
	if rising != 1 || falling != 1 {
		t.Errorf("Expected 1 rising and 1 falling edge, got %d/%d", rising, falling)
	}
	if wire.Elapsed() != 2 {
		t.Errorf("Expected 2us of delay, got %d", wire.Elapsed())
	}
	if !wire.DataLevel() {
		t.Error("Clock tick must not touch the data line")
	}
}

func TestRawWireSetLinesIdempotent(t *testing.T) {
	testCases := []struct {
		cmd   byte
		clock bool
		level bool
	}{
		{0x0A, true, false},
		{0x0B, true, true},
		{0x0C, false, false},
		{0x0D, false, true},
	}

	for _, tc := range testCases {
		s, ch, wire := newTestSession(tc.cmd, tc.cmd)
		rw := NewRawWire(s)

		for i := 0; i < 2; i++ {
			cmd, _ := ch.ReadByte()
			if _, err := rw.Execute(cmd); err != nil {
				t.Fatalf("0x%02X: Execute failed: %v", tc.cmd, err)
			}

			var got bool
			if tc.clock {
				got = wire.ClockLevel()
			} else {
				got = wire.DataLevel()
			}
			if got != tc.level {
				t.Errorf("0x%02X pass %d: expected line %v, got %v", tc.cmd, i, tc.level, got)
			}
		}

		if !bytes.Equal(ch.out.Bytes(), []byte{0x01, 0x01}) {
			t.Errorf("0x%02X: expected two acks, got %v", tc.cmd, ch.out.Bytes())
		}
	}
}

func TestRawWireBulkWrite(t *testing.T) {
	for n := 1; n <= protocol.MaxBulk; n++ {
		payload := make([]byte, n)
		for i := range payload {
			payload[i] = byte(i*37 + n)
		}

		cmd, err := protocol.BulkWrite(n)
		if err != nil {
			t.Fatalf("BulkWrite(%d): %v", n, err)
		}
		s, ch, wire := newTestSession(payload...)

		if _, err := NewRawWire(s).Execute(cmd); err != nil {
			t.Fatalf("N=%d: Execute failed: %v", n, err)
		}

		if !bytes.Equal(ch.out.Bytes(), repeat(protocol.Ack, n+1)) {
			t.Errorf("N=%d: expected %d acks, got %v", n, n+1, ch.out.Bytes())
		}
		if !bytes.Equal(wire.SampledBytes(), payload) {
			t.Errorf("N=%d: peer sampled %v, expected %v", n, wire.SampledBytes(), payload)
		}
		if len(ch.in) != 0 {
			t.Errorf("N=%d: %d payload bytes left unread", n, len(ch.in))
		}
	}
}

// lockstepChannel checks that a byte is only read once every earlier byte
// has been acknowledged
type lockstepChannel struct {
	t     *testing.T
	in    []byte
	reads int
	acks  int
}

func (c *lockstepChannel) ReadByte() (byte, error) {
	if len(c.in) == 0 {
		return 0, io.EOF
	}
	// The command byte itself plus one ack per payload byte already read
	if c.reads > 0 && c.acks != c.reads {
		c.t.Errorf("Read %d issued with only %d acks sent", c.reads+1, c.acks)
	}
	b := c.in[0]
	c.in = c.in[1:]
	c.reads++
	return b, nil
}

func (c *lockstepChannel) WriteByte(b byte) error {
	c.acks++
	return nil
}

func (c *lockstepChannel) WriteString(s string) (int, error) { return len(s), nil }

func TestRawWireBulkWriteLockstep(t *testing.T) {
	wire := sim.NewWire()
	ch := &lockstepChannel{t: t, in: []byte{0x13, 1, 2, 3, 4, 0x00}}
	s := NewSession(ch, wire.Clock(), wire.Data(), wire.Delay())

	if err := NewRawWire(s).Run(); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if ch.acks != 5 {
		t.Errorf("Expected 5 acks, got %d", ch.acks)
	}
}

func TestRawWireBulkClock(t *testing.T) {
	for n := 1; n <= protocol.MaxBulk; n++ {
		cmd, _ := protocol.BulkClock(n)
		s, ch, wire := newTestSession()

		if _, err := NewRawWire(s).Execute(cmd); err != nil {
			t.Fatalf("N=%d: Execute failed: %v", n, err)
		}

		rising, falling := wire.Edges()
		if rising != n || falling != n {
			t.Errorf("N=%d: expected %d edge pairs, got %d/%d", n, n, rising, falling)
		}
		if !bytes.Equal(ch.out.Bytes(), []byte{protocol.Ack}) {
			t.Errorf("N=%d: expected a single ack, got %v", n, ch.out.Bytes())
		}
	}
}

func TestRawWireConfigNoops(t *testing.T) {
	for _, base := range []byte{protocol.CmdPeripherals, protocol.CmdSpeed, protocol.CmdMode} {
		for low := byte(0); low < 16; low++ {
			s, ch, wire := newTestSession()

			if _, err := NewRawWire(s).Execute(base | low); err != nil {
				t.Fatalf("0x%02X: Execute failed: %v", base|low, err)
			}
			if !bytes.Equal(ch.out.Bytes(), []byte{protocol.Ack}) {
				t.Errorf("0x%02X: expected ack, got %v", base|low, ch.out.Bytes())
			}
			if len(wire.Events()) != 0 {
				t.Errorf("0x%02X: expected no wire activity, got %v", base|low, wire.Events())
			}
		}
	}
}

func TestRawWireUnknownOpcodeFaults(t *testing.T) {
	for _, cmd := range []byte{0x05, 0x08, 0x0E, 0x30, 0xFF} {
		s, ch, _ := newTestSession(0x01, cmd, 0x01, 0x00)

		err := NewRawWire(s).Run()

		var fault *FaultError
		if !errors.As(err, &fault) {
			t.Fatalf("0x%02X: expected FaultError, got %v", cmd, err)
		}
		if fault.Opcode != cmd {
			t.Errorf("Expected opcode 0x%02X in fault, got 0x%02X", cmd, fault.Opcode)
		}
		if !errors.Is(err, ErrUnknownOpcode) {
			t.Errorf("0x%02X: fault must wrap ErrUnknownOpcode", cmd)
		}

		// Only the reannounce before the fault is answered
		if ch.out.String() != "RAW1" {
			t.Errorf("0x%02X: expected no reply after fault, got %q", cmd, ch.out.String())
		}
		if len(ch.in) != 2 {
			t.Errorf("0x%02X: dispatcher kept reading after fault", cmd)
		}
	}
}

func TestRawWireChannelError(t *testing.T) {
	s, _, _ := newTestSession(0x01)

	if err := NewRawWire(s).Run(); err != io.EOF {
		t.Errorf("Expected io.EOF from exhausted channel, got %v", err)
	}
}
