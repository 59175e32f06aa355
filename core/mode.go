package core

import "bitwire/protocol"

// Mode is the active protocol mode
type Mode uint8

const (
	ModeIdle Mode = iota
	ModeRawWire
)

func (m Mode) String() string {
	if m == ModeRawWire {
		return "raw-wire"
	}
	return "idle"
}

// Controller is the top-level loop. In idle mode it answers the binary
// bitbang handshake and enters raw-wire mode on request.
type Controller struct {
	s     *Session
	raw   *RawWire
	mode  Mode
	count uint8 // IdleReset bytes seen in idle mode, modulo the threshold
}

// NewController takes ownership of s
func NewController(s *Session) *Controller {
	return &Controller{
		s:    s,
		raw:  NewRawWire(s),
		mode: ModeIdle,
	}
}

// Mode returns the active mode
func (c *Controller) Mode() Mode { return c.mode }

// Count returns the idle handshake counter
func (c *Controller) Count() uint8 { return c.count }

// Run processes bytes forever. It only returns when the channel fails or
// the dispatcher faults.
func (c *Controller) Run() error {
	ch := c.s.Channel()
	for {
		b, err := ch.ReadByte()
		if err != nil {
			return err
		}
		if err := c.Step(b); err != nil {
			return err
		}
	}
}

// Step handles one byte received in idle mode. The handshake counter only
// moves on IdleReset bytes: other bytes neither count nor reset it. Entering
// raw-wire mode blocks in the dispatcher until the host exits it.
func (c *Controller) Step(b byte) error {
	switch b {
	case protocol.IdleReset:
		c.count++
		if c.count == protocol.HandshakeThreshold {
			c.count = 0
			return c.s.banner(protocol.BannerBBIO)
		}

	case protocol.EnterRawWire:
		if err := c.s.banner(protocol.BannerRaw); err != nil {
			return err
		}

		c.mode = ModeRawWire
		recordEvent(EvtEnterRawWire, b)
		if err := c.raw.Run(); err != nil {
			return err
		}
		c.mode = ModeIdle
		recordEvent(EvtExitRawWire, 0)
	}
	return nil
}
