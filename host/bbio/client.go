// Package bbio is the host side of the binary bitbang raw-wire protocol.
// A Client drives one device over a byte stream, following the protocol's
// strict lock-step: every command waits for its reply before the next one
// is sent.
package bbio

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/golang/glog"

	"bitwire/protocol"
)

// Errors returned by Client
var (
	ErrTimeout    = errors.New("timed out waiting for device")
	ErrBadBanner  = errors.New("unexpected banner")
	ErrBadAck     = errors.New("unexpected acknowledgment")
	ErrNotRawWire = errors.New("device is not in raw-wire mode")
	ErrClosed     = errors.New("client closed")
)

// Mode is the device mode as tracked by the client
type Mode uint8

const (
	ModeUnknown Mode = iota
	ModeIdle
	ModeRawWire
)

func (m Mode) String() string {
	switch m {
	case ModeIdle:
		return "idle"
	case ModeRawWire:
		return "raw-wire"
	}
	return "unknown"
}

// Option configures a Client
type Option func(*Client)

// WithTimeout sets how long the client waits for each reply
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

// WithHandshakeRetries sets how many times Handshake resends the null burst
func WithHandshakeRetries(n int) Option {
	return func(c *Client) { c.retries = n }
}

// Client talks to one device
type Client struct {
	rw      io.ReadWriter
	timeout time.Duration
	retries int
	mode    Mode

	rx      chan byte
	stop    chan struct{}
	readErr error
}

// NewClient starts reading from rw in the background. The device mode is
// unknown until Handshake succeeds.
func NewClient(rw io.ReadWriter, opts ...Option) *Client {
	c := &Client{
		rw:      rw,
		timeout: 500 * time.Millisecond,
		retries: 3,
		rx:      make(chan byte, 256),
		stop:    make(chan struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}

	go c.readLoop()
	return c
}

// Mode returns the device mode as last observed
func (c *Client) Mode() Mode { return c.mode }

// Close stops the reader and closes rw if it is an io.Closer
func (c *Client) Close() error {
	select {
	case <-c.stop:
		return nil
	default:
	}
	close(c.stop)
	if closer, ok := c.rw.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}

// readLoop forwards received bytes to rx. Reads returning 0, nil are
// serial read timeouts and are retried.
func (c *Client) readLoop() {
	defer close(c.rx)

	buf := make([]byte, 64)
	for {
		n, err := c.rw.Read(buf)
		for _, b := range buf[:n] {
			if glog.V(3) {
				glog.Infof("RX 0x%02X", b)
			}
			select {
			case c.rx <- b:
			case <-c.stop:
				return
			}
		}
		if err != nil {
			c.readErr = err
			return
		}
	}
}

func (c *Client) send(p ...byte) error {
	if glog.V(3) {
		glog.Infof("TX % X", p)
	}
	if _, err := c.rw.Write(p); err != nil {
		return fmt.Errorf("write: %w", err)
	}
	return nil
}

func (c *Client) recv() (byte, error) {
	timer := time.NewTimer(c.timeout)
	defer timer.Stop()

	select {
	case b, ok := <-c.rx:
		if !ok {
			if c.readErr != nil {
				return 0, fmt.Errorf("read: %w", c.readErr)
			}
			return 0, ErrClosed
		}
		return b, nil
	case <-timer.C:
		return 0, ErrTimeout
	}
}

func (c *Client) recvN(n int) ([]byte, error) {
	out := make([]byte, n)
	for i := range out {
		b, err := c.recv()
		if err != nil {
			return out[:i], err
		}
		out[i] = b
	}
	return out, nil
}

// expectBanner reads len(banner) bytes and compares them
func (c *Client) expectBanner(banner string) error {
	got, err := c.recvN(len(banner))
	if err != nil {
		return fmt.Errorf("waiting for %q: %w", banner, err)
	}
	if string(got) != banner {
		return fmt.Errorf("%w: expected %q, got %q", ErrBadBanner, banner, got)
	}
	return nil
}

func (c *Client) expectAck(what string) error {
	b, err := c.recv()
	if err != nil {
		return fmt.Errorf("%s: %w", what, err)
	}
	if b != protocol.Ack {
		return fmt.Errorf("%s: %w: 0x%02X", what, ErrBadAck, b)
	}
	return nil
}

// drain discards bytes until the line stays quiet for d
func (c *Client) drain(d time.Duration) int {
	n := 0
	for {
		select {
		case _, ok := <-c.rx:
			if !ok {
				return n
			}
			n++
		case <-time.After(d):
			return n
		}
	}
}
