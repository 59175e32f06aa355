package protocol

import "errors"

// ErrBulkCount is returned by the bulk encoders for counts outside 1..MaxBulk
var ErrBulkCount = errors.New("bulk count out of range 1..16")

// Raw-wire opcodes. Exact values are matched before the masked ranges.
const (
	CmdExit       = 0x00
	CmdReannounce = 0x01
	CmdReadByte   = 0x06
	CmdReadBit    = 0x07
	CmdClockTick  = 0x09

	CmdSetClock = 0x0A // | value
	CmdSetData  = 0x0C // | value

	CmdBulkWrite   = 0x10 // | (count-1)
	CmdBulkClock   = 0x20 // | (count-1)
	CmdPeripherals = 0x40 // | flags
	CmdSpeed       = 0x60 // | speed
	CmdMode        = 0x80 // | mode
)

const (
	maskLine  = 0xFE
	maskRange = 0xF0
	maskArg   = 0x0F
)

// Op is a decoded raw-wire operation
type Op uint8

const (
	OpUnknown Op = iota
	OpExit
	OpReannounce
	OpReadByte
	OpReadBit
	OpClockTick
	OpSetClock
	OpSetData
	OpBulkWrite
	OpBulkClock
	OpPeripherals
	OpSpeed
	OpMode
)

var opNames = [...]string{
	OpUnknown:     "unknown",
	OpExit:        "exit",
	OpReannounce:  "reannounce",
	OpReadByte:    "read_byte",
	OpReadBit:     "read_bit",
	OpClockTick:   "clock_tick",
	OpSetClock:    "set_clock",
	OpSetData:     "set_data",
	OpBulkWrite:   "bulk_write",
	OpBulkClock:   "bulk_clock",
	OpPeripherals: "peripherals",
	OpSpeed:       "speed",
	OpMode:        "mode",
}

func (o Op) String() string {
	if int(o) < len(opNames) {
		return opNames[o]
	}
	const digits = "0123456789ABCDEF"
	return "op(0x" + string([]byte{digits[o>>4&0x0F], digits[o&0x0F]}) + ")"
}

// Command is a raw-wire command byte split into its operation and argument.
//
// Arg meaning depends on Op:
//   - OpSetClock, OpSetData: 1 for high, 0 for low
//   - OpBulkWrite, OpBulkClock: the count, 1..16
//   - OpPeripherals, OpSpeed, OpMode: the low nibble, unused by the firmware
type Command struct {
	Op  Op
	Arg uint8
	Raw byte
}

// Decode splits a raw-wire command byte. Exact opcodes are checked before
// masked ranges so 0x06, 0x07 and 0x09 never fall into a range, and 0x08
// is unknown. Unmatched bytes decode to OpUnknown.
func Decode(cmd byte) Command {
	c := Command{Raw: cmd}
	switch cmd {
	case CmdExit:
		c.Op = OpExit
		return c
	case CmdReannounce:
		c.Op = OpReannounce
		return c
	case CmdReadByte:
		c.Op = OpReadByte
		return c
	case CmdReadBit:
		c.Op = OpReadBit
		return c
	case CmdClockTick:
		c.Op = OpClockTick
		return c
	}

	switch {
	case cmd&maskLine == CmdSetClock:
		c.Op, c.Arg = OpSetClock, cmd&0x01
	case cmd&maskLine == CmdSetData:
		c.Op, c.Arg = OpSetData, cmd&0x01
	case cmd&maskRange == CmdBulkWrite:
		c.Op, c.Arg = OpBulkWrite, cmd&maskArg+1
	case cmd&maskRange == CmdBulkClock:
		c.Op, c.Arg = OpBulkClock, cmd&maskArg+1
	case cmd&maskRange == CmdPeripherals:
		c.Op, c.Arg = OpPeripherals, cmd&maskArg
	case cmd&maskRange == CmdSpeed:
		c.Op, c.Arg = OpSpeed, cmd&maskArg
	case cmd&maskRange == CmdMode:
		c.Op, c.Arg = OpMode, cmd&maskArg
	default:
		c.Op = OpUnknown
	}
	return c
}

// SetClock returns the opcode that drives the clock line high or low
func SetClock(high bool) byte {
	if high {
		return CmdSetClock | 0x01
	}
	return CmdSetClock
}

// SetData returns the opcode that drives the data line high or low
func SetData(high bool) byte {
	if high {
		return CmdSetData | 0x01
	}
	return CmdSetData
}

// BulkWrite returns the opcode for a bulk write of n bytes (1..16)
func BulkWrite(n int) (byte, error) {
	if n < 1 || n > MaxBulk {
		return 0, ErrBulkCount
	}
	return CmdBulkWrite | byte(n-1), nil
}

// BulkClock returns the opcode for n clock pulses (1..16)
func BulkClock(n int) (byte, error) {
	if n < 1 || n > MaxBulk {
		return 0, ErrBulkCount
	}
	return CmdBulkClock | byte(n-1), nil
}

// Peripherals returns the configure-peripherals opcode carrying flags in the low nibble
func Peripherals(flags uint8) byte { return CmdPeripherals | flags&maskArg }

// Speed returns the configure-speed opcode
func Speed(speed uint8) byte { return CmdSpeed | speed&maskArg }

// Mode returns the configure-mode opcode
func Mode(mode uint8) byte { return CmdMode | mode&maskArg }
