package core

import "bitwire/protocol"

// RawWire executes raw-wire commands from the host until it is told to exit.
// Every recognized command is acknowledged before the next one is read.
type RawWire struct {
	s *Session
}

// NewRawWire borrows s for the lifetime of the dispatcher
func NewRawWire(s *Session) *RawWire {
	return &RawWire{s: s}
}

// Run reads and executes commands. It returns nil after the exit command,
// a *FaultError on an unknown opcode, or the channel's error.
func (r *RawWire) Run() error {
	ch := r.s.Channel()
	for {
		cmd, err := ch.ReadByte()
		if err != nil {
			return err
		}

		exit, err := r.Execute(cmd)
		if err != nil {
			return err
		}
		if exit {
			return nil
		}
	}
}

// Execute runs a single command byte. Bulk writes read their payload from
// the channel in lock-step with the acks.
func (r *RawWire) Execute(cmd byte) (exit bool, err error) {
	recordEvent(EvtCommand, cmd)

	bus := r.s.Bus()
	c := protocol.Decode(cmd)

	switch c.Op {
	case protocol.OpExit:
		return true, r.s.banner(protocol.BannerBBIO)

	case protocol.OpReannounce:
		return false, r.s.banner(protocol.BannerRaw)

	case protocol.OpReadByte:
		return false, r.s.reply(bus.Receive())

	case protocol.OpReadBit:
		if bus.Sample() {
			return false, r.s.reply(protocol.BitHigh)
		}
		return false, r.s.reply(protocol.BitLow)

	case protocol.OpClockTick:
		bus.Pulse()
		return false, r.s.reply(protocol.Ack)

	case protocol.OpSetClock:
		bus.SetClock(c.Arg == 1)
		return false, r.s.reply(protocol.Ack)

	case protocol.OpSetData:
		bus.SetData(c.Arg == 1)
		return false, r.s.reply(protocol.Ack)

	case protocol.OpBulkWrite:
		return false, r.bulkWrite(int(c.Arg))

	case protocol.OpBulkClock:
		for i := 0; i < int(c.Arg); i++ {
			bus.Pulse()
		}
		return false, r.s.reply(protocol.Ack)

	case protocol.OpPeripherals, protocol.OpSpeed, protocol.OpMode:
		// Accepted for host compatibility, no hardware effect
		return false, r.s.reply(protocol.Ack)
	}

	recordEvent(EvtFault, cmd)
	return false, &FaultError{Opcode: cmd}
}

// bulkWrite acks the command, then reads, sends and acks n bytes one at a time
func (r *RawWire) bulkWrite(n int) error {
	if err := r.s.reply(protocol.Ack); err != nil {
		return err
	}

	ch := r.s.Channel()
	bus := r.s.Bus()
	for i := 0; i < n; i++ {
		v, err := ch.ReadByte()
		if err != nil {
			return err
		}
		bus.Send(v)
		if err := r.s.reply(protocol.Ack); err != nil {
			return err
		}
	}
	return nil
}
