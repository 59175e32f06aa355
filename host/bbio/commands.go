package bbio

import (
	"bytes"
	"fmt"
	"time"

	"github.com/golang/glog"

	"bitwire/protocol"
)

// Handshake sends bursts of HandshakeThreshold null bytes until the device
// answers BBIO1. A device in raw-wire mode exits on the first null, so a
// completed handshake always leaves the device idle. Extra banners caused
// by the device's counter wrapping are discarded.
func (c *Client) Handshake() error {
	nulls := bytes.Repeat([]byte{protocol.IdleReset}, protocol.HandshakeThreshold)
	attempts := c.retries
	if attempts < 1 {
		attempts = 1
	}

	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		c.drain(c.quiet())
		if err = c.send(nulls...); err != nil {
			return err
		}
		if err = c.waitBanner(protocol.BannerBBIO); err == nil {
			if extra := c.drain(c.quiet()); extra > 0 {
				glog.V(2).Infof("discarded %d bytes after handshake", extra)
			}
			c.mode = ModeIdle
			glog.Infof("device answered %s", protocol.BannerBBIO)
			return nil
		}
		glog.Warningf("handshake attempt %d/%d: %v", attempt, attempts, err)
	}

	c.mode = ModeUnknown
	return fmt.Errorf("handshake failed after %d attempts: %w", attempts, err)
}

// EnterRawWire switches an idle device to raw-wire mode, running the
// handshake first if the mode is not known
func (c *Client) EnterRawWire() error {
	switch c.mode {
	case ModeRawWire:
		return nil
	case ModeUnknown:
		if err := c.Handshake(); err != nil {
			return err
		}
	}

	if err := c.send(protocol.EnterRawWire); err != nil {
		return err
	}
	if err := c.expectBanner(protocol.BannerRaw); err != nil {
		c.mode = ModeUnknown
		return fmt.Errorf("enter raw-wire: %w", err)
	}
	c.mode = ModeRawWire
	glog.Infof("device entered raw-wire mode")
	return nil
}

// Exit leaves raw-wire mode
func (c *Client) Exit() error {
	if err := c.command(protocol.CmdExit); err != nil {
		return err
	}
	if err := c.expectBanner(protocol.BannerBBIO); err != nil {
		c.mode = ModeUnknown
		return fmt.Errorf("exit raw-wire: %w", err)
	}
	c.mode = ModeIdle
	return nil
}

// Reannounce asks the device to repeat its raw-wire banner
func (c *Client) Reannounce() error {
	if err := c.command(protocol.CmdReannounce); err != nil {
		return err
	}
	return c.expectBanner(protocol.BannerRaw)
}

// ReadByte clocks one byte in from the peer
func (c *Client) ReadByte() (byte, error) {
	if err := c.command(protocol.CmdReadByte); err != nil {
		return 0, err
	}
	b, err := c.recv()
	if err != nil {
		return 0, fmt.Errorf("read byte: %w", err)
	}
	return b, nil
}

// ReadBytes reads n bytes, one command per byte
func (c *Client) ReadBytes(n int) ([]byte, error) {
	out := make([]byte, 0, n)
	for i := 0; i < n; i++ {
		b, err := c.ReadByte()
		if err != nil {
			return out, err
		}
		out = append(out, b)
	}
	return out, nil
}

// ReadBit pulses the clock once and returns the sampled data level
func (c *Client) ReadBit() (bool, error) {
	if err := c.command(protocol.CmdReadBit); err != nil {
		return false, err
	}
	b, err := c.recv()
	if err != nil {
		return false, fmt.Errorf("read bit: %w", err)
	}
	switch b {
	case protocol.BitHigh:
		return true, nil
	case protocol.BitLow:
		return false, nil
	}
	return false, fmt.Errorf("read bit: %w: 0x%02X", ErrBadAck, b)
}

// ClockTick produces one clock pulse
func (c *Client) ClockTick() error {
	if err := c.command(protocol.CmdClockTick); err != nil {
		return err
	}
	return c.expectAck("clock tick")
}

// ClockTicks produces n clock pulses, split into bulk commands of at most
// MaxBulk pulses
func (c *Client) ClockTicks(n int) error {
	for n > 0 {
		chunk := n
		if chunk > protocol.MaxBulk {
			chunk = protocol.MaxBulk
		}
		cmd, err := protocol.BulkClock(chunk)
		if err != nil {
			return err
		}
		if err := c.command(cmd); err != nil {
			return err
		}
		if err := c.expectAck("bulk clock"); err != nil {
			return err
		}
		n -= chunk
	}
	return nil
}

// SetClock drives the clock line to a static level
func (c *Client) SetClock(high bool) error {
	if err := c.command(protocol.SetClock(high)); err != nil {
		return err
	}
	return c.expectAck("set clock")
}

// SetData drives the data line to a static level
func (c *Client) SetData(high bool) error {
	if err := c.command(protocol.SetData(high)); err != nil {
		return err
	}
	return c.expectAck("set data")
}

// Write clocks p out LSB first using bulk write commands of at most
// MaxBulk bytes. Each byte is sent only after the previous one was
// acknowledged. It returns the number of bytes the device acknowledged.
func (c *Client) Write(p []byte) (int, error) {
	written := 0
	for len(p) > 0 {
		chunk := p
		if len(chunk) > protocol.MaxBulk {
			chunk = chunk[:protocol.MaxBulk]
		}

		cmd, err := protocol.BulkWrite(len(chunk))
		if err != nil {
			return written, err
		}
		if err := c.command(cmd); err != nil {
			return written, err
		}
		if err := c.expectAck("bulk write"); err != nil {
			return written, err
		}

		for _, b := range chunk {
			if err := c.send(b); err != nil {
				return written, err
			}
			if err := c.expectAck("bulk write byte"); err != nil {
				return written, err
			}
			written++
		}
		p = p[len(chunk):]
	}
	return written, nil
}

// Tx writes all of w and then reads len(r) bytes, like core.Bus.Tx
func (c *Client) Tx(w, r []byte) error {
	if _, err := c.Write(w); err != nil {
		return err
	}
	got, err := c.ReadBytes(len(r))
	copy(r, got)
	return err
}

// ConfigurePeripherals sends the peripherals opcode. The firmware
// acknowledges it without changing anything.
func (c *Client) ConfigurePeripherals(flags uint8) error {
	return c.configure(protocol.Peripherals(flags), "peripherals")
}

// SetSpeed sends the speed opcode (acknowledged, no effect)
func (c *Client) SetSpeed(speed uint8) error {
	return c.configure(protocol.Speed(speed), "speed")
}

// SetWireMode sends the configure-mode opcode (acknowledged, no effect)
func (c *Client) SetWireMode(mode uint8) error {
	return c.configure(protocol.Mode(mode), "mode")
}

func (c *Client) configure(cmd byte, what string) error {
	if err := c.command(cmd); err != nil {
		return err
	}
	return c.expectAck(what)
}

// command sends a raw-wire opcode. It refuses to send anything the device
// would decode as unknown, since that halts the device.
func (c *Client) command(cmd byte) error {
	if c.mode != ModeRawWire {
		return ErrNotRawWire
	}
	if protocol.Decode(cmd).Op == protocol.OpUnknown {
		return fmt.Errorf("refusing to send unknown opcode 0x%02X", cmd)
	}
	glog.V(2).Infof("raw-wire %v (0x%02X)", protocol.Decode(cmd).Op, cmd)
	return c.send(cmd)
}

// waitBanner reads until the most recent bytes equal banner
func (c *Client) waitBanner(banner string) error {
	var seen []byte
	for {
		b, err := c.recv()
		if err != nil {
			return fmt.Errorf("waiting for %q: %w", banner, err)
		}
		seen = append(seen, b)
		if bytes.HasSuffix(seen, []byte(banner)) {
			return nil
		}
	}
}

func (c *Client) quiet() time.Duration {
	return c.timeout / 5
}
