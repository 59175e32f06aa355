package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/abiosoft/ishell"
	"github.com/golang/glog"

	"bitwire/host/bbio"
	"bitwire/host/config"
	"bitwire/host/emulator"
	"bitwire/host/serial"
	"bitwire/protocol"
)

var (
	configPath = flag.String("config", "", "JSON connection profile")
	device     = flag.String("device", "", "Serial device path (overrides config)")
	baud       = flag.Int("baud", 0, "Baud rate (overrides config)")
	timeout    = flag.Duration("timeout", 0, "Reply timeout (overrides config)")
	simulate   = flag.Bool("sim", false, "Talk to an in-process emulated device instead of a serial port")
)

func main() {
	flag.Parse()
	defer glog.Flush()

	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	port, cleanup, err := openPort(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer cleanup()

	client := bbio.NewClient(port,
		bbio.WithTimeout(cfg.ResponseTimeout()),
		bbio.WithHandshakeRetries(cfg.HandshakeRetries))
	defer client.Close()

	shell := ishell.New()
	shell.Println("bitwire host " + protocol.Version + " - binary bitbang raw-wire client")
	registerCommands(shell, client)
	shell.Run()
}

func loadConfig() (*config.Config, error) {
	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.LoadFile(*configPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if *device != "" {
		cfg.Device = *device
	}
	if *baud != 0 {
		cfg.Baud = *baud
	}
	if *timeout != 0 {
		cfg.ResponseTimeoutMs = int(*timeout / time.Millisecond)
	}
	return cfg, cfg.Validate()
}

func openPort(cfg *config.Config) (serial.Port, func(), error) {
	if *simulate {
		emu := emulator.Start()
		glog.Info("using emulated device")
		return emu.Port(), func() {
			if err := emu.Close(); err != nil {
				glog.Warningf("emulator stopped: %v", err)
			}
		}, nil
	}

	port, err := serial.Open(cfg.Serial())
	if err != nil {
		return nil, nil, err
	}
	if err := port.Flush(); err != nil {
		glog.Warningf("flush %s: %v", cfg.Device, err)
	}
	glog.Infof("opened %s at %d baud", cfg.Device, cfg.Baud)
	return port, func() { _ = port.Close() }, nil
}

func registerCommands(shell *ishell.Shell, client *bbio.Client) {
	simple := func(name, help string, fn func() error) {
		shell.AddCmd(&ishell.Cmd{
			Name: name,
			Help: help,
			Func: func(c *ishell.Context) {
				if err := fn(); err != nil {
					c.Err(err)
					return
				}
				c.Println("ok")
			},
		})
	}

	simple("handshake", "send the null burst until the device answers BBIO1", client.Handshake)
	simple("enter", "enter raw-wire mode", client.EnterRawWire)
	simple("leave", "leave raw-wire mode (sends 0x00)", client.Exit)
	simple("announce", "ask the device to repeat RAW1", client.Reannounce)
	simple("tick", "one clock pulse", client.ClockTick)

	shell.AddCmd(&ishell.Cmd{
		Name: "mode",
		Help: "show the tracked device mode",
		Func: func(c *ishell.Context) {
			c.Println(client.Mode())
		},
	})

	shell.AddCmd(&ishell.Cmd{
		Name: "write",
		Help: "write <byte>... : clock bytes out LSB first (hex, e.g. 0xA5 or a5)",
		Func: func(c *ishell.Context) {
			data, err := parseBytes(c.Args)
			if err != nil {
				c.Err(err)
				return
			}
			n, err := client.Write(data)
			if err != nil {
				c.Err(fmt.Errorf("wrote %d of %d bytes: %w", n, len(data), err))
				return
			}
			c.Printf("wrote %d bytes\n", n)
		},
	})

	shell.AddCmd(&ishell.Cmd{
		Name: "read",
		Help: "read [count] : clock bytes in",
		Func: func(c *ishell.Context) {
			n, err := parseCount(c.Args, 1)
			if err != nil {
				c.Err(err)
				return
			}
			data, err := client.ReadBytes(n)
			if err != nil {
				c.Err(err)
				return
			}
			c.Printf("% X\n", data)
		},
	})

	shell.AddCmd(&ishell.Cmd{
		Name: "bit",
		Help: "sample the data line once",
		Func: func(c *ishell.Context) {
			bit, err := client.ReadBit()
			if err != nil {
				c.Err(err)
				return
			}
			if bit {
				c.Println(1)
			} else {
				c.Println(0)
			}
		},
	})

	shell.AddCmd(&ishell.Cmd{
		Name: "clock",
		Help: "clock <count> : clock pulses without data",
		Func: func(c *ishell.Context) {
			n, err := parseCount(c.Args, 1)
			if err != nil {
				c.Err(err)
				return
			}
			if err := client.ClockTicks(n); err != nil {
				c.Err(err)
				return
			}
			c.Println("ok")
		},
	})

	lineCmd := func(name, help string, set func(bool) error) {
		shell.AddCmd(&ishell.Cmd{
			Name: name,
			Help: help + " <0|1>",
			Func: func(c *ishell.Context) {
				high, err := parseLevel(c.Args)
				if err != nil {
					c.Err(err)
					return
				}
				if err := set(high); err != nil {
					c.Err(err)
					return
				}
				c.Println("ok")
			},
		})
	}
	lineCmd("setclk", "drive the clock line", client.SetClock)
	lineCmd("setdat", "drive the data line", client.SetData)

	nibbleCmd := func(name, help string, set func(uint8) error) {
		shell.AddCmd(&ishell.Cmd{
			Name: name,
			Help: help + " <0-15> (accepted, no effect on this firmware)",
			Func: func(c *ishell.Context) {
				n, err := parseCount(c.Args, 0)
				if err != nil || n > 15 {
					c.Err(fmt.Errorf("expected a value 0-15"))
					return
				}
				if err := set(uint8(n)); err != nil {
					c.Err(err)
					return
				}
				c.Println("ok")
			},
		})
	}
	nibbleCmd("peripherals", "configure peripherals", client.ConfigurePeripherals)
	nibbleCmd("speed", "configure speed", client.SetSpeed)
	nibbleCmd("wiremode", "configure wire mode", client.SetWireMode)
}

// parseBytes parses hex byte arguments with or without a 0x prefix
func parseBytes(args []string) ([]byte, error) {
	if len(args) == 0 {
		return nil, fmt.Errorf("no bytes given")
	}
	out := make([]byte, 0, len(args))
	for _, arg := range args {
		v, err := strconv.ParseUint(strings.TrimPrefix(strings.ToLower(arg), "0x"), 16, 8)
		if err != nil {
			return nil, fmt.Errorf("invalid byte %q: %w", arg, err)
		}
		out = append(out, byte(v))
	}
	return out, nil
}

// parseCount parses an optional decimal count argument
func parseCount(args []string, def int) (int, error) {
	if len(args) == 0 {
		return def, nil
	}
	n, err := strconv.Atoi(args[0])
	if err != nil || n < 0 {
		return 0, fmt.Errorf("invalid count %q", args[0])
	}
	return n, nil
}

func parseLevel(args []string) (bool, error) {
	if len(args) != 1 {
		return false, fmt.Errorf("expected 0 or 1")
	}
	switch args[0] {
	case "0", "low":
		return false, nil
	case "1", "high":
		return true, nil
	}
	return false, fmt.Errorf("invalid level %q", args[0])
}
