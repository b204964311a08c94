package video

import (
	"github.com/dotmatrix-emu/dotmatrix/dotmatrix/addr"
	"github.com/dotmatrix-emu/dotmatrix/dotmatrix/bit"
)

// renderScanline composes background, window and sprites for the current LY
// into the backbuffer. Pixels are stored as 2-bit indices already resolved
// through BGP/OBP0/OBP1; the shade mapping happens once at publish time.
func (p *PPU) renderScanline() {
	lcdc := p.bus.Read(addr.LCDC)
	scy := p.bus.Read(addr.SCY)
	scx := p.bus.Read(addr.SCX)
	winY := p.bus.Read(addr.WY)
	winX := p.bus.Read(addr.WX)
	bgp := p.bus.Read(addr.BGP)
	obp0 := p.bus.Read(addr.OBP0)
	obp1 := p.bus.Read(addr.OBP1)

	windowEnabled := bit.IsSet(5, lcdc)
	bgEnabled := bit.IsSet(0, lcdc)
	spritesEnabled := bit.IsSet(1, lcdc)

	y := int(p.ly)
	row := p.backbuffer[y*FramebufferWidth : (y+1)*FramebufferWidth]

	for x := 0; x < FramebufferWidth; x++ {
		var raw uint8
		var index uint8

		switch {
		case windowEnabled && int(winX) <= x+7 && y >= int(winY):
			tx := x + 7 - int(winX)
			ty := y - int(winY)
			raw = p.sampleTile(lcdc, bit.IsSet(6, lcdc), tx, ty)
			index = bgp >> (2 * raw) & 0x03
		case bgEnabled:
			tx := (x + int(scx)) & 0xFF
			ty := (y + int(scy)) & 0xFF
			raw = p.sampleTile(lcdc, bit.IsSet(3, lcdc), tx, ty)
			index = bgp >> (2 * raw) & 0x03
		}

		if spritesEnabled {
			for i := range p.sprites.all() {
				s := &p.sprites.sprites[i]
				left := int(s.X) - 8
				if x < left || x >= left+8 {
					continue
				}

				value := s.pixel(x - left)
				if value == 0 {
					continue
				}

				// the sprite owns the pixel; it shows only above colour-0
				// background or when its priority bit says "above BG"
				if s.Attr&0x80 == 0 || raw == 0 {
					obp := obp0
					if s.Attr&0x10 != 0 {
						obp = obp1
					}
					index = obp >> (2 * value) & 0x03
				}
				break
			}
		}

		row[x] = index
	}
}

// sampleTile resolves one background or window pixel: tile index from the
// selected map, tile data through unsigned (0x8000) or signed (0x9000)
// addressing per LCDC bit 4.
func (p *PPU) sampleTile(lcdc uint8, highMap bool, tx, ty int) uint8 {
	mapBase := addr.TileMap0
	if highMap {
		mapBase = addr.TileMap1
	}

	tileIndex := p.bus.Read(mapBase + uint16(ty/8)*32 + uint16(tx/8))

	var tileAddr uint16
	if bit.IsSet(4, lcdc) {
		tileAddr = addr.TileData0 + uint16(tileIndex)*16
	} else {
		tileAddr = uint16(int(addr.TileData2) + int(int8(tileIndex))*16)
	}

	low := p.bus.Read(tileAddr + uint16(ty%8)*2)
	high := p.bus.Read(tileAddr + uint16(ty%8)*2 + 1)

	index := uint8(7 - tx%8)
	return ((low >> index) & 1) | ((high>>index)&1)<<1
}
