package cpu

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dotmatrix-emu/dotmatrix/dotmatrix/memory"
)

// runAt writes the program into work RAM, points PC at it and executes one
// step, returning the cycles the instruction took.
func runAt(cpu *CPU, mmu *memory.MMU, program ...byte) int {
	base := uint16(0xC000)
	for i, b := range program {
		mmu.Write(base+uint16(i), b)
	}
	cpu.pc = base
	return cpu.Step()
}

func TestInstructionTiming(t *testing.T) {
	testCases := []struct {
		desc    string
		setup   func(*CPU)
		program []byte
		cycles  int
	}{
		{desc: "NOP", program: []byte{0x00}, cycles: 1},
		{desc: "LD BC,nn", program: []byte{0x01, 0x34, 0x12}, cycles: 3},
		{desc: "LD (nn),SP", program: []byte{0x08, 0x00, 0xD0}, cycles: 5},
		{desc: "INC (HL)", setup: func(c *CPU) { c.setHL(0xD000) }, program: []byte{0x34}, cycles: 3},
		{desc: "LD r,r", program: []byte{0x41}, cycles: 1},
		{desc: "LD r,(HL)", setup: func(c *CPU) { c.setHL(0xD000) }, program: []byte{0x46}, cycles: 2},
		{desc: "ADD A,n", program: []byte{0xC6, 0x01}, cycles: 2},
		{desc: "JR taken", program: []byte{0x18, 0x05}, cycles: 3},
		{desc: "JR NZ not taken", setup: func(c *CPU) { c.setFlag(zeroFlag) }, program: []byte{0x20, 0x05}, cycles: 2},
		{desc: "JR NZ taken", setup: func(c *CPU) { c.resetFlag(zeroFlag) }, program: []byte{0x20, 0x05}, cycles: 3},
		{desc: "JP nn", program: []byte{0xC3, 0x00, 0xD0}, cycles: 4},
		{desc: "JP Z not taken", setup: func(c *CPU) { c.resetFlag(zeroFlag) }, program: []byte{0xCA, 0x00, 0xD0}, cycles: 3},
		{desc: "CALL nn", program: []byte{0xCD, 0x00, 0xD0}, cycles: 6},
		{desc: "CALL NC not taken", setup: func(c *CPU) { c.setFlag(carryFlag) }, program: []byte{0xD4, 0x00, 0xD0}, cycles: 3},
		{desc: "RET", setup: func(c *CPU) { c.pushStack(0xC123) }, program: []byte{0xC9}, cycles: 4},
		{desc: "RET Z taken", setup: func(c *CPU) { c.setFlag(zeroFlag); c.pushStack(0xC123) }, program: []byte{0xC8}, cycles: 5},
		{desc: "RET Z not taken", setup: func(c *CPU) { c.resetFlag(zeroFlag) }, program: []byte{0xC8}, cycles: 2},
		{desc: "RST", program: []byte{0xFF}, cycles: 4},
		{desc: "PUSH", program: []byte{0xC5}, cycles: 4},
		{desc: "POP", program: []byte{0xC1}, cycles: 3},
		{desc: "LDH (n),A", program: []byte{0xE0, 0x80}, cycles: 3},
		{desc: "ADD SP,n", program: []byte{0xE8, 0x01}, cycles: 4},
		{desc: "LD HL,SP+n", program: []byte{0xF8, 0x01}, cycles: 3},
		{desc: "JP (HL)", setup: func(c *CPU) { c.setHL(0xC100) }, program: []byte{0xE9}, cycles: 1},
		{desc: "CB register op", program: []byte{0xCB, 0x11}, cycles: 2},
		{desc: "CB (HL) op", setup: func(c *CPU) { c.setHL(0xD000) }, program: []byte{0xCB, 0x16}, cycles: 4},
		{desc: "CB BIT (HL)", setup: func(c *CPU) { c.setHL(0xD000) }, program: []byte{0xCB, 0x46}, cycles: 3},
	}
	for _, tC := range testCases {
		t.Run(tC.desc, func(t *testing.T) {
			mmu := memory.New()
			cpu := New(mmu)
			if tC.setup != nil {
				tC.setup(cpu)
			}
			assert.Equal(t, tC.cycles, runAt(cpu, mmu, tC.program...))
		})
	}
}

func TestIllegalOpcodePanics(t *testing.T) {
	illegal := []byte{0xD3, 0xDB, 0xDD, 0xE3, 0xE4, 0xEB, 0xEC, 0xED, 0xF4, 0xFC, 0xFD}

	for _, opcode := range illegal {
		mmu := memory.New()
		cpu := New(mmu)
		mmu.Write(0xC000, opcode)
		cpu.pc = 0xC000

		assert.PanicsWithError(t, (&UnknownOpcodeError{Opcode: opcode, PC: 0xC000}).Error(), func() {
			cpu.Step()
		})
	}
}
