//go:build tinygo

package core

import "runtime/interrupt"

// disableInterrupts masks interrupts for the duration of a bit transfer.
// UART bytes arriving meanwhile wait in the hardware FIFO.
func disableInterrupts() interrupt.State {
	return interrupt.Disable()
}

// restoreInterrupts restores the interrupt state
func restoreInterrupts(state interrupt.State) {
	interrupt.Restore(state)
}
