package core

import (
	"strings"
	"testing"
)

func TestTraceRingWraps(t *testing.T) {
	ClearTrace()
	defer ClearTrace()

	for i := 0; i < TraceRingSize+5; i++ {
		recordEvent(EvtCommand, byte(i))
	}

	events := TraceEvents()
	if len(events) != TraceRingSize {
		t.Fatalf("Expected %d events, got %d", TraceRingSize, len(events))
	}
	if events[0].Value != 5 {
		t.Errorf("Expected oldest surviving event value 5, got %d", events[0].Value)
	}
	for i := 1; i < len(events); i++ {
		if events[i].Seq != events[i-1].Seq+1 {
			t.Errorf("Events out of order at %d: %d after %d", i, events[i].Seq, events[i-1].Seq)
		}
	}
}

func TestDumpTraceAfterFault(t *testing.T) {
	ClearTrace()
	defer ClearTrace()

	var lines []string
	SetDebugWriter(func(s string) { lines = append(lines, s) })
	defer SetDebugWriter(func(string) {})

	s, _, _ := newTestSession(0x05, 0x09, 0xEE)
	if err := NewController(s).Run(); err == nil {
		t.Fatal("Expected fault")
	}
	DumpTrace()

	dump := strings.Join(lines, "\n")
	for _, want := range []string{"ENTER_RAW", "CMD 0x09", "CMD 0xEE", "FAULT! 0xEE"} {
		if !strings.Contains(dump, want) {
			t.Errorf("Dump missing %q:\n%s", want, dump)
		}
	}
}

func TestDebugPrintlnDisabled(t *testing.T) {
	var got []string
	SetDebugWriter(func(s string) { got = append(got, s) })
	defer SetDebugWriter(func(string) {})

	DebugPrintln("hidden")
	SetDebugEnabled(true)
	DebugPrintln("shown")
	SetDebugEnabled(false)

	if len(got) != 1 || got[0] != "shown" {
		t.Errorf("Expected only the enabled message, got %v", got)
	}
}

func TestStrutil(t *testing.T) {
	testCases := map[int]string{0: "0", 7: "7", 42: "42", -15: "-15", 1000000: "1000000"}
	for in, want := range testCases {
		if got := itoa(in); got != want {
			t.Errorf("itoa(%d): expected %q, got %q", in, want, got)
		}
	}

	if hex8(0x0A) != "0A" || hex8(0xFF) != "FF" || hex8(0x00) != "00" {
		t.Errorf("hex8 formatting wrong: %s %s %s", hex8(0x0A), hex8(0xFF), hex8(0x00))
	}
}

func TestFaultErrorMessage(t *testing.T) {
	err := &FaultError{Opcode: 0x3F}
	if !strings.Contains(err.Error(), "0x3F") {
		t.Errorf("Expected opcode in message, got %q", err.Error())
	}
}
