package memory

import (
	"fmt"
	"log/slog"

	"github.com/dotmatrix-emu/dotmatrix/dotmatrix/addr"
	"github.com/dotmatrix-emu/dotmatrix/dotmatrix/bit"
	"github.com/dotmatrix-emu/dotmatrix/dotmatrix/timer"
)

type memRegion uint8

const (
	regionROM memRegion = iota
	regionVRAM
	regionExtRAM
	regionWRAM
	regionEcho
	regionOAM
	regionIO
)

// MMU allows access to all memory mapped I/O and data/registers: the 64 KiB
// address space, the cartridge controller, and the timer registers.
type MMU struct {
	cart      *Cartridge
	mbc       MBC
	memory    []byte
	timer     *timer.Timer
	regionMap [256]memRegion
}

// New creates a new memory unit with no game loaded. Equivalent to turning on
// the console without a cartridge in.
func New() *MMU {
	mmu := &MMU{
		memory: make([]byte, 0x10000),
		cart:   NewCartridge(),
	}
	mmu.mbc = NewNoMBC(mmu.cart.data)
	mmu.timer = timer.New(func() { mmu.RequestInterrupt(addr.TimerInterrupt) })
	initRegionMap(mmu)
	return mmu
}

// NewWithCartridge creates a new memory unit with the provided cartridge
// loaded. An unsupported controller code falls back to no banking; anything
// that relies on bank switching is undefined from there on.
func NewWithCartridge(cart *Cartridge) *MMU {
	mmu := New()
	mmu.cart = cart

	switch cart.mbcType {
	case NoMBCType:
		mmu.mbc = NewNoMBC(cart.data)
	case MBC1Type:
		mmu.mbc = NewMBC1(cart.data)
	case MBC3Type:
		mmu.mbc = NewMBC3(cart.data)
	default:
		slog.Error("Unsupported cartridge type, running without banking",
			"type", fmt.Sprintf("0x%02X", cart.cartType),
			"title", cart.Title())
		mmu.mbc = NewNoMBC(cart.data)
	}

	return mmu
}

func initRegionMap(m *MMU) {
	for i := 0x00; i <= 0x7F; i++ {
		m.regionMap[i] = regionROM
	}
	for i := 0x80; i <= 0x9F; i++ {
		m.regionMap[i] = regionVRAM
	}
	for i := 0xA0; i <= 0xBF; i++ {
		m.regionMap[i] = regionExtRAM
	}
	for i := 0xC0; i <= 0xDF; i++ {
		m.regionMap[i] = regionWRAM
	}
	for i := 0xE0; i <= 0xFD; i++ {
		m.regionMap[i] = regionEcho
	}
	// OAM plus the unused area up to 0xFEFF
	m.regionMap[0xFE] = regionOAM
	// IO + HRAM + IE
	m.regionMap[0xFF] = regionIO
}

// Timer returns the timer unit owned by this MMU. The system driver advances
// it by the cycles each instruction took.
func (m *MMU) Timer() *timer.Timer {
	return m.timer
}

// RequestInterrupt sets the interrupt flag (IF register) bit of the chosen
// interrupt to 1.
func (m *MMU) RequestInterrupt(interrupt addr.Interrupt) {
	m.Write(addr.IF, m.Read(addr.IF)|uint8(interrupt))
}

func (m *MMU) ReadBit(index uint8, address uint16) bool {
	return bit.IsSet(index, m.Read(address))
}

// ReadIO reads the I/O register at 0xFF00+reg.
func (m *MMU) ReadIO(reg uint8) byte {
	return m.Read(0xFF00 + uint16(reg))
}

// WriteIO writes the I/O register at 0xFF00+reg.
func (m *MMU) WriteIO(reg uint8, value byte) {
	m.Write(0xFF00+uint16(reg), value)
}

func (m *MMU) Read(address uint16) byte {
	switch m.regionMap[address>>8] {
	case regionROM:
		return m.mbc.Read(address)
	case regionVRAM, regionWRAM, regionExtRAM, regionOAM:
		return m.memory[address]
	case regionEcho:
		return m.memory[address-0x2000]
	case regionIO:
		switch address {
		case addr.DIV, addr.TIMA, addr.TMA, addr.TAC:
			return m.timer.Read(address)
		case addr.IF:
			// the upper 3 bits are unused and always read as 1
			return m.memory[address] | 0xE0
		}
		return m.memory[address]
	default:
		panic(fmt.Sprintf("Attempted read at unmapped address: 0x%X", address))
	}
}

func (m *MMU) Write(address uint16, value byte) {
	switch m.regionMap[address>>8] {
	case regionROM:
		// ROM is never mutated, only the controller latches are
		m.mbc.Write(address, value)
	case regionVRAM, regionWRAM, regionExtRAM, regionOAM:
		m.memory[address] = value
	case regionEcho:
		m.memory[address-0x2000] = value
	case regionIO:
		switch address {
		case addr.DIV, addr.TIMA, addr.TMA, addr.TAC:
			m.timer.Write(address, value)
			return
		case addr.IF:
			m.memory[address] = value | 0xE0
			return
		case addr.DMA:
			// OAM DMA: synchronously copy 160 bytes from value<<8 into OAM.
			// The source read goes through the normal path so banked ROM
			// resolves correctly.
			source := uint16(value) << 8
			for i := uint16(0); i < 0xA0; i++ {
				m.memory[addr.OAMStart+i] = m.Read(source + i)
			}
			m.memory[address] = value
			return
		}
		m.memory[address] = value
	default:
		panic(fmt.Sprintf("Attempted write at unmapped address: 0x%X", address))
	}
}
