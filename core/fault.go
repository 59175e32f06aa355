package core

import "errors"

// ErrUnknownOpcode is the cause of every raw-wire fault
var ErrUnknownOpcode = errors.New("unknown raw-wire opcode")

// FaultError reports the command byte that stopped the dispatcher. A fault
// is fatal: the device sends nothing more and waits for a hardware reset.
type FaultError struct {
	Opcode byte
}

func (e *FaultError) Error() string {
	return "raw-wire fault: unknown opcode 0x" + hex8(e.Opcode)
}

func (e *FaultError) Unwrap() error {
	return ErrUnknownOpcode
}
