package core

import (
	"bytes"
	"io"

	"bitwire/core/sim"
)

// scriptChannel replays a fixed input and captures everything written.
// ReadByte returns io.EOF once the script is exhausted.
type scriptChannel struct {
	in  []byte
	out bytes.Buffer
}

func (c *scriptChannel) ReadByte() (byte, error) {
	if len(c.in) == 0 {
		return 0, io.EOF
	}
	b := c.in[0]
	c.in = c.in[1:]
	return b, nil
}

func (c *scriptChannel) WriteByte(b byte) error {
	return c.out.WriteByte(b)
}

func (c *scriptChannel) WriteString(s string) (int, error) {
	return c.out.WriteString(s)
}

// newTestSession returns a session over a simulated wire fed with input
func newTestSession(input ...byte) (*Session, *scriptChannel, *sim.Wire) {
	wire := sim.NewWire()
	ch := &scriptChannel{in: input}
	return NewSession(ch, wire.Clock(), wire.Data(), wire.Delay()), ch, wire
}

func repeat(b byte, n int) []byte {
	return bytes.Repeat([]byte{b}, n)
}

func concat(parts ...[]byte) []byte {
	var out []byte
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}
