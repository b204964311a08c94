package frontend

import (
	"log/slog"

	"github.com/dotmatrix-emu/dotmatrix/dotmatrix"
	"github.com/dotmatrix-emu/dotmatrix/dotmatrix/serial"
)

// Headless runs the emulator without any display, tapping the serial port.
// Used for batch runs and the conformance suites.
type Headless struct {
	dmg *dotmatrix.DMG
	tap *serial.Tap
}

// NewHeadless creates a headless runner over the given system.
func NewHeadless(dmg *dotmatrix.DMG) *Headless {
	return &Headless{
		dmg: dmg,
		tap: serial.NewTap(dmg.MMU()),
	}
}

// Run executes the given number of frames, polling the serial tap after
// every instruction.
func (h *Headless) Run(frames int) {
	for i := 0; i < frames; i++ {
		start := h.dmg.Cycles()
		for h.dmg.Cycles()-start < dotmatrix.CyclesPerFrame {
			h.dmg.Step()
			h.tap.Poll()
		}

		if (i+1)%60 == 0 {
			slog.Info("Frame progress", "completed", i+1, "total", frames)
		}
	}
}

// SerialOutput returns everything the ROM wrote to the serial port.
func (h *Headless) SerialOutput() string {
	return h.tap.Output()
}
