// Package emulator runs the firmware core in-process against a simulated
// wire, exposing the device end of the link as a serial.Port.
package emulator

import (
	"errors"
	"io"
	"sync"

	"github.com/golang/glog"

	"bitwire/core"
	"bitwire/core/sim"
	"bitwire/host/serial"
)

// Emulator is a simulated device. The firmware loop runs on its own
// goroutine and owns the session; the host only touches Port and Wire.
type Emulator struct {
	wire *sim.Wire
	ctrl *core.Controller
	port *pipePort

	devIn  *io.PipeReader // host -> device
	devOut *io.PipeWriter // device -> host

	done   chan struct{}
	halted chan struct{}
	err    error
}

// Start builds the simulated hardware and starts the firmware loop
func Start() *Emulator {
	hostToDevR, hostToDevW := io.Pipe()
	devToHostR, devToHostW := io.Pipe()

	wire := sim.NewWire()
	rw := struct {
		io.Reader
		io.Writer
	}{hostToDevR, devToHostW}
	session := core.NewSession(core.NewStreamChannel(rw), wire.Clock(), wire.Data(), wire.Delay())

	e := &Emulator{
		wire:   wire,
		ctrl:   core.NewController(session),
		port:   &pipePort{r: devToHostR, w: hostToDevW},
		devIn:  hostToDevR,
		devOut: devToHostW,
		done:   make(chan struct{}),
		halted: make(chan struct{}),
	}
	go e.run()
	return e
}

func (e *Emulator) run() {
	defer close(e.done)

	e.err = e.ctrl.Run()

	var fault *core.FaultError
	if errors.As(e.err, &fault) {
		// Like the hardware, stop answering but keep draining input so the
		// host sees silence rather than a blocked write.
		glog.Warningf("emulated device halted: %v", e.err)
		close(e.halted)
		_, _ = io.Copy(io.Discard, e.devIn)
	}
	_ = e.devOut.Close()
}

// Port returns the host end of the link
func (e *Emulator) Port() serial.Port { return e.port }

// Wire returns the simulated bus, for inspecting what the device clocked
// out and for loading replies from the peer
func (e *Emulator) Wire() *sim.Wire { return e.wire }

// Close disconnects the host end and waits for the firmware loop to stop.
// It returns the error that ended the loop, or nil for a clean disconnect.
func (e *Emulator) Close() error {
	_ = e.port.Close()
	<-e.done
	if errors.Is(e.err, io.EOF) || errors.Is(e.err, io.ErrClosedPipe) {
		return nil
	}
	return e.err
}

// Halted reports whether the device stopped on a fault
func (e *Emulator) Halted() bool {
	select {
	case <-e.halted:
		return true
	default:
		return false
	}
}

// pipePort is the host's serial.Port over the emulator pipes
type pipePort struct {
	r *io.PipeReader
	w *io.PipeWriter

	closeOnce sync.Once
}

func (p *pipePort) Read(b []byte) (int, error)  { return p.r.Read(b) }
func (p *pipePort) Write(b []byte) (int, error) { return p.w.Write(b) }
func (p *pipePort) Flush() error                { return nil }

func (p *pipePort) Close() error {
	p.closeOnce.Do(func() {
		_ = p.w.Close()
		_ = p.r.Close()
	})
	return nil
}
