//go:build tinygo

package core

import (
	"time"

	"tinygo.org/x/drivers/delay"
)

// SpinDelay busy-waits using cycle counted loops
type SpinDelay struct{}

// DelayMicroseconds spins for us microseconds
func (SpinDelay) DelayMicroseconds(us uint32) {
	delay.Sleep(time.Duration(us) * time.Microsecond)
}
