// Package dotmatrix implements the core of a DMG (original Game Boy)
// emulator: CPU, bus, PPU and timer advancing in lockstep by machine cycles.
package dotmatrix

import (
	"log/slog"
	"os"

	"github.com/dotmatrix-emu/dotmatrix/dotmatrix/cpu"
	"github.com/dotmatrix-emu/dotmatrix/dotmatrix/memory"
	"github.com/dotmatrix-emu/dotmatrix/dotmatrix/video"
)

// CyclesPerFrame is the length of one full frame: 154 scanlines of 114
// machine cycles. It is a bookkeeping threshold for the presentation layer,
// not something the core observes.
const CyclesPerFrame = 17556

// DMG wires the four hardware units together and drives them in lockstep.
type DMG struct {
	cpu *cpu.CPU
	ppu *video.PPU
	mmu *memory.MMU

	cycles       uint64
	frameCycles  int
	frames       uint64
	instructions uint64
}

func newWithMMU(mmu *memory.MMU) *DMG {
	return &DMG{
		mmu: mmu,
		cpu: cpu.New(mmu),
		ppu: video.New(mmu),
	}
}

// New creates a DMG with no game loaded.
func New() *DMG {
	return newWithMMU(memory.New())
}

// NewWithCartridge creates a DMG with the given cartridge inserted.
func NewWithCartridge(cart *memory.Cartridge) *DMG {
	return newWithMMU(memory.NewWithCartridge(cart))
}

// NewWithFile creates a DMG and loads the ROM image at the given path.
func NewWithFile(path string) (*DMG, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cart := memory.NewCartridgeWithData(data)
	slog.Info("Loaded ROM", "path", path, "bytes", len(data), "title", cart.Title())

	return NewWithCartridge(cart), nil
}

// Step runs one driver iteration: the CPU retires one instruction (or
// services an interrupt, or idles while halted), then the PPU and timer are
// advanced by the cycles it took. Returns that cycle count.
func (d *DMG) Step() int {
	cycles := d.cpu.Step()
	d.ppu.Tick(cycles, true)
	d.mmu.Timer().Tick(cycles)

	d.cycles += uint64(cycles)
	d.frameCycles += cycles
	d.instructions++

	return cycles
}

// RunFrame steps until one frame worth of cycles has elapsed.
func (d *DMG) RunFrame() {
	for d.frameCycles < CyclesPerFrame {
		d.Step()
	}
	d.frameCycles -= CyclesPerFrame
	d.frames++
}

// Framebuffer returns the last published frame, by reference. Only read it
// between driver iterations.
func (d *DMG) Framebuffer() *video.FrameBuffer {
	return d.ppu.Framebuffer()
}

// CPU exposes the processor, mainly for debugging and tests.
func (d *DMG) CPU() *cpu.CPU {
	return d.cpu
}

// MMU exposes the bus, mainly for the serial tap and tests.
func (d *DMG) MMU() *memory.MMU {
	return d.mmu
}

// ButtonOn marks a host button as pressed.
func (d *DMG) ButtonOn(b cpu.Button) {
	d.cpu.ButtonOn(b)
}

// ButtonOff marks a host button as released.
func (d *DMG) ButtonOff(b cpu.Button) {
	d.cpu.ButtonOff(b)
}

// FrameCount returns the number of completed frames.
func (d *DMG) FrameCount() uint64 {
	return d.frames
}

// InstructionCount returns the number of driver iterations.
func (d *DMG) InstructionCount() uint64 {
	return d.instructions
}

// Cycles returns the total machine cycles elapsed.
func (d *DMG) Cycles() uint64 {
	return d.cycles
}
