//go:build !tinygo

package core

import "sync/atomic"

// irqState stands in for interrupt.State when running under regular Go
type irqState uintptr

// irqMasked counts open disableInterrupts sections. Nothing is masked on a
// hosted OS; the count lets tests see which wire actions are guarded.
var irqMasked atomic.Int32

// disableInterrupts has nothing to mask on a hosted OS
func disableInterrupts() irqState {
	irqMasked.Add(1)
	return 0
}

// restoreInterrupts pairs with disableInterrupts
func restoreInterrupts(irqState) {
	irqMasked.Add(-1)
}
