package video

import (
	"github.com/dotmatrix-emu/dotmatrix/dotmatrix/addr"
	"github.com/dotmatrix-emu/dotmatrix/dotmatrix/bit"
)

// Bus provides the interface the PPU needs for register and VRAM/OAM access.
type Bus interface {
	Read(address uint16) byte
	Write(address uint16, value byte)
	RequestInterrupt(interrupt addr.Interrupt)
}

// Mode is one of the four states of the scanline machine.
type Mode uint8

const (
	// OAMScan selects the sprites for the upcoming line.
	OAMScan Mode = iota
	// PixelTransfer composes the line into the backbuffer.
	PixelTransfer
	// HBlank pads each visible line out to its full duration.
	HBlank
	// VBlank spans lines 144-153; the frame is published on entry.
	VBlank
)

// State durations in machine cycles. A visible line is OAM + transfer +
// hblank = 114 cycles; a full frame of 154 lines is 17,556 cycles.
const (
	oamCycles      = 20
	transferCycles = 63
	hblankCycles   = 31
	scanlineCycles = 114

	visibleLines = 144
	lastLine     = 153
)

// statMode maps a Mode to the value of the low 2 bits of STAT.
var statMode = [4]uint8{
	OAMScan:       2,
	PixelTransfer: 3,
	HBlank:        0,
	VBlank:        1,
}

// statSourceBit maps a Mode to the STAT interrupt-source enable bit that
// gates its entry interrupt. PixelTransfer has no source.
var statSourceBit = [4]uint8{
	OAMScan:       5,
	PixelTransfer: 0xFF,
	HBlank:        3,
	VBlank:        4,
}

// PPU is the scanline machine. It is advanced by the machine cycles each CPU
// instruction took and renders through the bus into an indexed backbuffer,
// published to the framebuffer at the start of every vertical blank.
type PPU struct {
	bus Bus

	mode       Mode
	modeTicks  int
	ly         uint8
	sprites    spriteList
	backbuffer [FramebufferWidth * FramebufferHeight]uint8

	framebuffer *FrameBuffer
}

// New returns a PPU starting at the top of the frame.
func New(bus Bus) *PPU {
	return &PPU{
		bus:         bus,
		mode:        OAMScan,
		framebuffer: NewFrameBuffer(),
	}
}

// Framebuffer returns the last published frame, by reference.
func (p *PPU) Framebuffer() *FrameBuffer {
	return p.framebuffer
}

// Mode returns the current state of the scanline machine.
func (p *PPU) Mode() Mode {
	return p.mode
}

// Line returns the current LY.
func (p *PPU) Line() uint8 {
	return p.ly
}

// Tick advances the scanline machine by the given machine cycles. Rendering
// into the backbuffer only happens when render is set; the state machine and
// its interrupts run either way.
func (p *PPU) Tick(cycles int, render bool) {
	lcdc := p.bus.Read(addr.LCDC)
	if !bit.IsSet(7, lcdc) {
		// LCD off: hold the machine at the top of the frame
		p.mode = OAMScan
		p.modeTicks = 0
		p.setLY(0)
		stat := p.bus.Read(addr.STAT)
		p.bus.Write(addr.STAT, stat&^uint8(0x03))
		return
	}

	p.compareLYC()

	p.modeTicks += cycles

	for {
		switch p.mode {
		case OAMScan:
			if p.modeTicks < oamCycles {
				return
			}
			p.modeTicks -= oamCycles
			p.selectSprites()
			p.setMode(PixelTransfer)
		case PixelTransfer:
			if p.modeTicks < transferCycles {
				return
			}
			p.modeTicks -= transferCycles
			if render {
				p.renderScanline()
			}
			p.setMode(HBlank)
		case HBlank:
			if p.modeTicks < hblankCycles {
				return
			}
			p.modeTicks -= hblankCycles
			p.setLY(p.ly + 1)
			if p.ly < visibleLines {
				p.setMode(OAMScan)
			} else {
				p.publishFrame()
				p.bus.RequestInterrupt(addr.VBlankInterrupt)
				p.setMode(VBlank)
			}
		case VBlank:
			if p.modeTicks < scanlineCycles {
				return
			}
			p.modeTicks -= scanlineCycles
			if p.ly >= lastLine {
				p.setLY(0)
				p.setMode(OAMScan)
			} else {
				p.setLY(p.ly + 1)
			}
		}
	}
}

func (p *PPU) setLY(line uint8) {
	p.ly = line
	p.bus.Write(addr.LY, line)
}

// setMode updates the low 2 bits of STAT and raises IF.LCDC when the entered
// mode's interrupt source is enabled.
func (p *PPU) setMode(mode Mode) {
	p.mode = mode

	stat := p.bus.Read(addr.STAT)
	p.bus.Write(addr.STAT, (stat&^uint8(0x03))|statMode[mode])

	if source := statSourceBit[mode]; source != 0xFF && bit.IsSet(source, stat) {
		p.bus.RequestInterrupt(addr.LCDSTATInterrupt)
	}
}

// compareLYC maintains the LYC-equal bit of STAT and raises IF.LCDC on its
// rising edge when the LYC interrupt source is enabled.
func (p *PPU) compareLYC() {
	stat := p.bus.Read(addr.STAT)
	equal := p.ly == p.bus.Read(addr.LYC)
	wasEqual := bit.IsSet(2, stat)

	if equal {
		stat = bit.Set(2, stat)
	} else {
		stat = bit.Clear(2, stat)
	}
	p.bus.Write(addr.STAT, stat)

	if equal && !wasEqual && bit.IsSet(6, stat) {
		p.bus.RequestInterrupt(addr.LCDSTATInterrupt)
	}
}

// publishFrame maps the indexed backbuffer through the shade palette into
// the framebuffer. Called once per frame, on vertical blank entry.
func (p *PPU) publishFrame() {
	out := p.framebuffer.buffer
	for i, index := range p.backbuffer {
		out[i] = palette[index&0x03]
	}
}

// selectSprites scans the 40 OAM entries for sprites crossing the current
// line and keeps at most 10, ordered by X.
func (p *PPU) selectSprites() {
	p.sprites.clear()

	lcdc := p.bus.Read(addr.LCDC)
	height := 8
	if bit.IsSet(2, lcdc) {
		height = 16
	}

	line := int(p.ly) + 16

	for i := 0; i < 40; i++ {
		base := addr.OAMStart + uint16(i*4)
		y := int(p.bus.Read(base))
		x := p.bus.Read(base + 1)

		if x == 0 || x >= 168 || y >= 160 || line < y || line >= y+height {
			continue
		}

		tile := p.bus.Read(base + 2)
		attr := p.bus.Read(base + 3)
		if height == 16 {
			tile &= 0xFE
		}

		row := line - y
		if attr&0x40 != 0 {
			// vertical flip
			row = height - 1 - row
		}

		data := addr.TileData0 + uint16(tile)*16 + uint16(row)*2
		p.sprites.insert(Sprite{
			X:    x,
			Low:  p.bus.Read(data),
			High: p.bus.Read(data + 1),
			Attr: attr,
		})
	}
}
