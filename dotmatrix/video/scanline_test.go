package video

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dotmatrix-emu/dotmatrix/dotmatrix/addr"
	"github.com/dotmatrix-emu/dotmatrix/dotmatrix/memory"
)

// identity palettes keep colour indices unchanged so assertions stay readable
const identityPalette = 0xE4 // 11 10 01 00

func newRenderPPU() (*PPU, *memory.MMU) {
	ppu, mmu := newTestPPU()
	mmu.Write(addr.BGP, identityPalette)
	mmu.Write(addr.OBP0, identityPalette)
	mmu.Write(addr.OBP1, identityPalette)
	return ppu, mmu
}

// fillTile writes a solid tile whose every pixel has the given colour value.
func fillTile(mmu *memory.MMU, tile int, value uint8) {
	var low, high uint8
	if value&1 != 0 {
		low = 0xFF
	}
	if value&2 != 0 {
		high = 0xFF
	}
	base := addr.TileData0 + uint16(tile)*16
	for row := uint16(0); row < 8; row++ {
		mmu.Write(base+row*2, low)
		mmu.Write(base+row*2+1, high)
	}
}

func TestBackgroundRendering(t *testing.T) {
	t.Run("renders the mapped tile", func(t *testing.T) {
		ppu, mmu := newRenderPPU()

		fillTile(mmu, 1, 3)
		mmu.Write(addr.TileMap0, 0x01) // top-left map entry

		ppu.ly = 0
		ppu.renderScanline()

		// the first tile column comes from tile 1, the rest from tile 0
		assert.Equal(t, uint8(3), ppu.backbuffer[0])
		assert.Equal(t, uint8(3), ppu.backbuffer[7])
		assert.Equal(t, uint8(0), ppu.backbuffer[8])
	})

	t.Run("resolves through BGP", func(t *testing.T) {
		ppu, mmu := newRenderPPU()

		fillTile(mmu, 1, 1)
		mmu.Write(addr.TileMap0, 0x01)
		mmu.Write(addr.BGP, 0xC0) // colour 1 -> shade 0, colour 3 -> shade 3

		ppu.ly = 0
		ppu.renderScanline()

		assert.Equal(t, uint8(0), ppu.backbuffer[0])
	})

	t.Run("horizontal scroll offsets the map", func(t *testing.T) {
		ppu, mmu := newRenderPPU()

		fillTile(mmu, 1, 2)
		mmu.Write(addr.TileMap0, 0x01)
		mmu.Write(addr.SCX, 4)

		ppu.ly = 0
		ppu.renderScanline()

		// with SCX=4 only the first 4 screen pixels still cover tile 1
		assert.Equal(t, uint8(2), ppu.backbuffer[0])
		assert.Equal(t, uint8(2), ppu.backbuffer[3])
		assert.Equal(t, uint8(0), ppu.backbuffer[4])
	})

	t.Run("signed tile addressing", func(t *testing.T) {
		ppu, mmu := newRenderPPU()
		mmu.Write(addr.LCDC, 0x81) // bit 4 clear: signed addressing from 0x9000

		// tile 0xFF sits at 0x9000 - 16 = 0x8FF0
		for row := uint16(0); row < 8; row++ {
			mmu.Write(0x8FF0+row*2, 0xFF)
		}
		mmu.Write(addr.TileMap0, 0xFF)

		ppu.ly = 0
		ppu.renderScanline()

		assert.Equal(t, uint8(1), ppu.backbuffer[0])
	})

	t.Run("disabled background leaves colour 0", func(t *testing.T) {
		ppu, mmu := newRenderPPU()
		mmu.Write(addr.LCDC, 0x90) // bit 0 clear

		fillTile(mmu, 0, 3)

		ppu.ly = 0
		ppu.renderScanline()

		assert.Equal(t, uint8(0), ppu.backbuffer[0])
	})
}

func TestWindowRendering(t *testing.T) {
	ppu, mmu := newRenderPPU()
	mmu.Write(addr.LCDC, 0xB1) // window enabled, low window map

	fillTile(mmu, 1, 3)
	fillTile(mmu, 2, 1)
	mmu.Write(addr.TileMap0, 0x01)   // map entry (0,0): tile 1
	mmu.Write(addr.TileMap0+1, 0x02) // map entry (1,0): tile 2

	mmu.Write(addr.WX, 87) // window starts at screen x = 80
	mmu.Write(addr.WY, 0)

	ppu.ly = 0
	ppu.renderScanline()

	// left of the window: background tile 1
	assert.Equal(t, uint8(3), ppu.backbuffer[0])
	// inside the window the first window column samples the map from (0, 0)
	assert.Equal(t, uint8(3), ppu.backbuffer[80])
	assert.Equal(t, uint8(1), ppu.backbuffer[88])
}

func TestSpriteRendering(t *testing.T) {
	// enables sprite compositing (off in the post-boot LCDC value) and sets
	// up one solid sprite line with colour value 2 across all 8 pixels
	spriteLine := func(ppu *PPU, mmu *memory.MMU, x uint8, attr uint8) {
		mmu.Write(addr.LCDC, mmu.Read(addr.LCDC)|0x02)
		ppu.sprites.clear()
		ppu.sprites.insert(Sprite{X: x, Low: 0x00, High: 0xFF, Attr: attr})
	}

	t.Run("draws above colour-0 background", func(t *testing.T) {
		ppu, mmu := newRenderPPU()

		spriteLine(ppu, mmu, 8, 0)
		ppu.ly = 0
		ppu.renderScanline()

		assert.Equal(t, uint8(2), ppu.backbuffer[0])
		assert.Equal(t, uint8(2), ppu.backbuffer[7])
		assert.Equal(t, uint8(0), ppu.backbuffer[8])
	})

	t.Run("behind-BG sprite hides under non-zero background", func(t *testing.T) {
		ppu, mmu := newRenderPPU()

		fillTile(mmu, 1, 1)
		mmu.Write(addr.TileMap0, 0x01)

		spriteLine(ppu, mmu, 8, 0x80)
		ppu.ly = 0
		ppu.renderScanline()

		// tile 1 only covers the first 8 pixels; the sprite covers them too
		assert.Equal(t, uint8(1), ppu.backbuffer[0])
	})

	t.Run("behind-BG sprite shows over colour-0 background", func(t *testing.T) {
		ppu, mmu := newRenderPPU()

		spriteLine(ppu, mmu, 8, 0x80)
		ppu.ly = 0
		ppu.renderScanline()

		assert.Equal(t, uint8(2), ppu.backbuffer[0])
	})

	t.Run("transparent pixels do not block later sprites", func(t *testing.T) {
		ppu, mmu := newRenderPPU()
		mmu.Write(addr.LCDC, 0x93)

		ppu.sprites.clear()
		// first sprite is fully transparent, second is solid at the same spot
		ppu.sprites.insert(Sprite{X: 8, Low: 0x00, High: 0x00, Attr: 0})
		ppu.sprites.insert(Sprite{X: 8, Low: 0xFF, High: 0x00, Attr: 0})

		ppu.ly = 0
		ppu.renderScanline()

		assert.Equal(t, uint8(1), ppu.backbuffer[0])
	})

	t.Run("horizontal flip mirrors the line", func(t *testing.T) {
		ppu, mmu := newRenderPPU()
		mmu.Write(addr.LCDC, 0x93)

		ppu.sprites.clear()
		// leftmost pixel only: bit 7 of the low byte
		ppu.sprites.insert(Sprite{X: 8, Low: 0x80, High: 0x00, Attr: 0})
		ppu.ly = 0
		ppu.renderScanline()
		assert.Equal(t, uint8(1), ppu.backbuffer[0])
		assert.Equal(t, uint8(0), ppu.backbuffer[7])

		ppu.sprites.clear()
		ppu.sprites.insert(Sprite{X: 8, Low: 0x80, High: 0x00, Attr: 0x20})
		ppu.renderScanline()
		assert.Equal(t, uint8(0), ppu.backbuffer[0])
		assert.Equal(t, uint8(1), ppu.backbuffer[7])
	})

	t.Run("OBP1 palette selection", func(t *testing.T) {
		ppu, mmu := newRenderPPU()
		mmu.Write(addr.OBP1, 0x00) // everything maps to shade 0

		spriteLine(ppu, mmu, 8, 0x10)
		ppu.ly = 0
		ppu.renderScanline()

		assert.Equal(t, uint8(0), ppu.backbuffer[0])
	})

	t.Run("sprites disabled by LCDC bit 1", func(t *testing.T) {
		ppu, mmu := newRenderPPU()

		spriteLine(ppu, mmu, 8, 0)
		mmu.Write(addr.LCDC, 0x91) // OBJ enable bit clear again
		ppu.ly = 0
		ppu.renderScanline()

		assert.Equal(t, uint8(0), ppu.backbuffer[0])
	})
}
