package cpu

import (
	"github.com/dotmatrix-emu/dotmatrix/dotmatrix/addr"
	"github.com/dotmatrix-emu/dotmatrix/dotmatrix/bit"
)

// Bus provides the interface for component communication.
type Bus interface {
	Read(address uint16) byte
	Write(address uint16, value byte)
}

// Flag is one of the 4 possible flags used in the flag register (low part of AF).
type Flag uint8

const (
	zeroFlag      Flag = 0x80
	subFlag       Flag = 0x40
	halfCarryFlag Flag = 0x20
	carryFlag     Flag = 0x10
)

const baseInterruptAddress uint16 = 0x40

// Button is a bitmask position in the host-facing button state.
type Button uint8

const (
	ButtonA      Button = 0x01
	ButtonB      Button = 0x02
	ButtonSelect Button = 0x04
	ButtonStart  Button = 0x08
	ButtonRight  Button = 0x10
	ButtonLeft   Button = 0x20
	ButtonUp     Button = 0x40
	ButtonDown   Button = 0x80
)

// CPU is the main struct holding the LR35902 state.
type CPU struct {
	// registers
	a  uint8
	f  uint8
	b  uint8
	c  uint8
	d  uint8
	e  uint8
	h  uint8
	l  uint8
	sp uint16
	pc uint16

	// interrupt master enable, modelled as a two-step latch: EI sets the
	// pending bit, which is promoted to enabled at the start of the next
	// step, so the first interrupt can be serviced once the instruction
	// following EI has retired
	imeEnabled bool
	imePending bool

	halted  bool
	stopped bool

	// haltBug is latched when HALT executes with IME disabled while an
	// interrupt is pending; the next opcode byte is fetched twice
	haltBug bool

	// buttons holds the host button state, bit set = pressed. Mutated by
	// ButtonOn/ButtonOff; sampled at the start of every step. Hosts driving
	// input from another goroutine must serialise against Step themselves.
	buttons uint8

	currentOpcode uint8
	cycles        uint64

	bus Bus
}

func initializeMemory(bus Bus) {
	bus.Write(addr.P1, 0xCF)
	bus.Write(addr.SB, 0x00)
	bus.Write(addr.SC, 0x7E)
	bus.Write(addr.TIMA, 0x00)
	bus.Write(addr.TMA, 0x00)
	bus.Write(addr.TAC, 0x00)
	bus.Write(addr.LCDC, 0x91)
	bus.Write(addr.STAT, 0x00)
	bus.Write(addr.SCY, 0x00)
	bus.Write(addr.SCX, 0x00)
	bus.Write(addr.LY, 0x00)
	bus.Write(addr.LYC, 0x00)
	bus.Write(addr.BGP, 0xFC)
	bus.Write(addr.OBP0, 0xFF)
	bus.Write(addr.OBP1, 0xFF)
	bus.Write(addr.WY, 0x00)
	bus.Write(addr.WX, 0x00)
	bus.Write(addr.BOOT, 0x01)
	bus.Write(addr.IE, 0x00)

	// sound block post-boot values; the registers sit in RAM but are not driven
	bus.Write(addr.NR10, 0x80)
	bus.Write(addr.NR11, 0xBF)
	bus.Write(addr.NR12, 0xF3)
	bus.Write(addr.NR14, 0xBF)
	bus.Write(addr.NR21, 0x3F)
	bus.Write(addr.NR22, 0x00)
	bus.Write(addr.NR24, 0xBF)
	bus.Write(addr.NR30, 0x7F)
	bus.Write(addr.NR31, 0xFF)
	bus.Write(addr.NR32, 0x9F)
	bus.Write(addr.NR34, 0xBF)
	bus.Write(addr.NR41, 0xFF)
	bus.Write(addr.NR42, 0x00)
	bus.Write(addr.NR43, 0x00)
	bus.Write(addr.NR44, 0xBF)
	bus.Write(addr.NR50, 0x77)
	bus.Write(addr.NR51, 0xF3)
	bus.Write(addr.NR52, 0xF1)
}

// New returns a CPU in the post-boot state, as if the internal boot ROM had
// just handed over control.
func New(bus Bus) *CPU {
	initializeMemory(bus)

	cpu := &CPU{
		bus: bus,
	}

	cpu.setAF(0x01B0)
	cpu.setBC(0x0013)
	cpu.setDE(0x00D8)
	cpu.setHL(0x014D)
	cpu.sp = 0xFFFE
	cpu.pc = 0x0100

	return cpu
}

// ButtonOn marks a button as pressed.
func (c *CPU) ButtonOn(b Button) {
	c.buttons |= uint8(b)
}

// ButtonOff marks a button as released.
func (c *CPU) ButtonOff(b Button) {
	c.buttons &^= uint8(b)
}

// Step performs one iteration of the CPU: refresh the joypad matrix, service
// at most one pending interrupt, then retire one instruction (or idle one
// cycle while halted). Returns the machine cycles consumed.
func (c *CPU) Step() int {
	c.refreshJoypad()

	serviced := c.handleInterrupts()

	if c.halted {
		c.cycles++
		return 1
	}

	// promote the EI latch before the fetch; interrupt arbitration has
	// already run for this step, so servicing starts with the next step
	if c.imePending {
		c.imePending = false
		c.imeEnabled = true
	}

	opcode := c.bus.Read(c.pc)
	c.pc++
	if c.haltBug {
		// the opcode byte is re-fetched exactly once
		c.pc--
		c.haltBug = false
	}
	c.currentOpcode = opcode

	var cycles int
	if opcode == 0xCB {
		cb := c.bus.Read(c.pc)
		c.pc++
		cycles = c.executeCB(cb)
	} else {
		cycles = opcodes[opcode](c)
	}

	if serviced {
		cycles += 2
	}
	c.cycles += uint64(cycles)

	return cycles
}

// refreshJoypad exposes the selected half of the button matrix in the low
// nibble of P1. A set select bit 5 maps the directional half (upper nibble of
// the mask), a set bit 4 the action half; 0 means pressed on the wire, so the
// mask is inverted.
func (c *CPU) refreshJoypad() {
	p1 := c.bus.Read(addr.P1)
	switch {
	case bit.IsSet(5, p1):
		c.bus.Write(addr.P1, (p1&0xF0)|((^c.buttons>>4)&0x0F))
	case bit.IsSet(4, p1):
		c.bus.Write(addr.P1, (p1&0xF0)|(^c.buttons&0x0F))
	case p1 == 0x03:
		c.bus.Write(addr.P1, 0xFF)
	}
}

// handleInterrupts wakes the CPU when any enabled interrupt is pending and,
// if the master enable is set, services the lowest-indexed one: disable IME,
// acknowledge the IF bit, push PC and jump to the handler. Returns whether an
// interrupt was serviced (worth 2 extra cycles on the instruction that
// follows in the same step).
func (c *CPU) handleInterrupts() bool {
	irq := c.bus.Read(addr.IF) & c.bus.Read(addr.IE) & 0x1F

	if irq == 0 {
		return false
	}

	c.halted = false

	if !c.imeEnabled {
		return false
	}

	for i := uint8(0); i < 5; i++ {
		if !bit.IsSet(i, irq) {
			continue
		}

		c.imeEnabled = false
		c.bus.Write(addr.IF, bit.Clear(i, c.bus.Read(addr.IF)))

		c.pushStack(c.pc)
		// handlers sit 8 bytes apart: 0x40, 0x48, 0x50, 0x58, 0x60
		c.pc = baseInterruptAddress + uint16(i)*8
		return true
	}

	return false
}

// readImmediate returns the byte at PC and increments it. Known as 'n' in
// mnemonics; some opcodes use it as a parameter.
func (c *CPU) readImmediate() uint8 {
	n := c.bus.Read(c.pc)
	c.pc++
	return n
}

// readImmediateWord returns the two bytes at PC and PC+1 (little endian) and
// increments PC twice. Known as 'nn' in mnemonics.
func (c *CPU) readImmediateWord() uint16 {
	low := c.readImmediate()
	high := c.readImmediate()
	return bit.Combine(high, low)
}

// readSignedImmediate returns the byte at PC as a signed offset ('e' in
// mnemonics) and increments PC.
func (c *CPU) readSignedImmediate() int8 {
	return int8(c.readImmediate())
}

func (c *CPU) setFlag(flag Flag) {
	c.f |= uint8(flag)
}

func (c *CPU) resetFlag(flag Flag) {
	c.f &^= uint8(flag)
}

func (c *CPU) isSetFlag(flag Flag) bool {
	return c.f&uint8(flag) != 0
}

// flagToBit will return 1 if the passed flag is set, 0 otherwise.
func (c *CPU) flagToBit(flag Flag) uint8 {
	if c.isSetFlag(flag) {
		return 1
	}

	return 0
}

func (c *CPU) setFlagToCondition(flag Flag, condition bool) {
	if condition {
		c.setFlag(flag)
	} else {
		c.resetFlag(flag)
	}
}

func (c *CPU) setBC(value uint16) {
	c.b = bit.High(value)
	c.c = bit.Low(value)
}

func (c *CPU) getBC() uint16 {
	return bit.Combine(c.b, c.c)
}

func (c *CPU) setDE(value uint16) {
	c.d = bit.High(value)
	c.e = bit.Low(value)
}

func (c *CPU) getDE() uint16 {
	return bit.Combine(c.d, c.e)
}

func (c *CPU) setHL(value uint16) {
	c.h = bit.High(value)
	c.l = bit.Low(value)
}

func (c *CPU) getHL() uint16 {
	return bit.Combine(c.h, c.l)
}

func (c *CPU) setAF(value uint16) {
	c.a = bit.High(value)
	// the low 4 bits of F are hardwired to 0
	c.f = bit.Low(value) & 0xF0
}

func (c *CPU) getAF() uint16 {
	return bit.Combine(c.a, c.f)
}

// Getter methods for register display and debugging.
func (c *CPU) GetA() uint8       { return c.a }
func (c *CPU) GetF() uint8       { return c.f }
func (c *CPU) GetB() uint8       { return c.b }
func (c *CPU) GetC() uint8       { return c.c }
func (c *CPU) GetD() uint8       { return c.d }
func (c *CPU) GetE() uint8       { return c.e }
func (c *CPU) GetH() uint8       { return c.h }
func (c *CPU) GetL() uint8       { return c.l }
func (c *CPU) GetSP() uint16     { return c.sp }
func (c *CPU) GetPC() uint16     { return c.pc }
func (c *CPU) GetCycles() uint64 { return c.cycles }
func (c *CPU) GetIME() bool      { return c.imeEnabled }
func (c *CPU) IsHalted() bool    { return c.halted }
