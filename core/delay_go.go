//go:build !tinygo

package core

import "time"

// SpinDelay busy-waits on the monotonic clock (regular Go implementation)
type SpinDelay struct{}

// DelayMicroseconds spins for at least us microseconds
func (SpinDelay) DelayMicroseconds(us uint32) {
	deadline := time.Now().Add(time.Duration(us) * time.Microsecond)
	for time.Now().Before(deadline) {
	}
}
