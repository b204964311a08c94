package serial

import (
	"log/slog"

	"github.com/dotmatrix-emu/dotmatrix/dotmatrix/addr"
)

// Bus is the minimal interface the tap needs to poll the serial registers.
type Bus interface {
	Read(address uint16) byte
	Write(address uint16, value byte)
}

// Tap implements the harness side of the serial port: the core never
// transmits, it just leaves SB/SC in memory, and test ROMs report by writing
// a byte to SB and 0x81 to SC. The tap polls for that handshake, consumes the
// data byte as ASCII and clears the control register.
//
// Handy for the blargg suites, which print their PASS/FAIL verdict this way.
type Tap struct {
	bus    Bus
	logger *slog.Logger

	output []byte
	line   []byte
}

// NewTap creates a tap over the given bus.
func NewTap(bus Bus) *Tap {
	return &Tap{
		bus:    bus,
		logger: slog.Default(),
	}
}

// Poll consumes at most one pending serial byte. Call it once per driver
// iteration.
func (t *Tap) Poll() {
	if t.bus.Read(addr.SC) != 0x81 {
		return
	}

	b := t.bus.Read(addr.SB)
	t.bus.Write(addr.SC, 0x00)

	t.output = append(t.output, b)

	// buffer until newline for readable logs
	if b == 0 || b == '\n' || b == '\r' {
		if len(t.line) > 0 {
			t.logger.Info("serial", "line", string(t.line))
			t.line = t.line[:0]
		}
		return
	}
	t.line = append(t.line, b)
}

// Output returns everything consumed so far as text.
func (t *Tap) Output() string {
	return string(t.output)
}

// Reset discards any consumed output.
func (t *Tap) Reset() {
	t.output = t.output[:0]
	t.line = t.line[:0]
}
