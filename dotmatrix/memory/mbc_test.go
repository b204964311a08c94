package memory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// makeROM builds an image of the given bank count with the header type code
// set and the first byte of every bank stamped with its bank number.
func makeROM(cartType uint8, banks int) []byte {
	data := make([]byte, banks*0x4000)
	data[cartridgeTypeAddress] = cartType
	for bank := 0; bank < banks; bank++ {
		data[bank<<14] = byte(bank)
	}
	return data
}

func TestCartridgeTypeDetection(t *testing.T) {
	testCases := []struct {
		desc     string
		cartType uint8
		want     MBCType
	}{
		{desc: "no controller", cartType: 0x00, want: NoMBCType},
		{desc: "MBC1", cartType: 0x01, want: MBC1Type},
		{desc: "MBC1 with RAM and battery", cartType: 0x03, want: MBC1Type},
		{desc: "MBC3 with RTC", cartType: 0x0F, want: MBC3Type},
		{desc: "MBC3", cartType: 0x13, want: MBC3Type},
		{desc: "unknown", cartType: 0x05, want: MBCUnknownType},
	}
	for _, tC := range testCases {
		t.Run(tC.desc, func(t *testing.T) {
			cart := NewCartridgeWithData(makeROM(tC.cartType, 2))
			assert.Equal(t, tC.want, cart.Type())
		})
	}
}

func TestMBC1Banking(t *testing.T) {
	t.Run("bank 1 is selected at reset", func(t *testing.T) {
		mbc := NewMBC1(makeROM(0x01, 64))
		assert.Equal(t, uint8(0x01), mbc.Read(0x4000))
		assert.Equal(t, uint8(0x00), mbc.Read(0x0000))
	})

	t.Run("low register selects the bank", func(t *testing.T) {
		mbc := NewMBC1(makeROM(0x01, 64))
		mbc.Write(0x2000, 0x05)
		assert.Equal(t, uint8(0x05), mbc.Read(0x4000))
	})

	t.Run("banks 0x00 0x20 0x40 0x60 are bumped", func(t *testing.T) {
		mbc := NewMBC1(makeROM(0x01, 128))

		mbc.Write(0x2000, 0x00)
		assert.Equal(t, uint8(0x01), mbc.Read(0x4000))

		// with the upper register set, a low write of 0x20 lands on bank
		// 0x20 and must resolve against physical bank 0x21
		mbc.Write(0x4000, 0x01)
		mbc.Write(0x2000, 0x20)
		assert.Equal(t, uint8(0x21), mbc.Read(0x4000))
	})

	t.Run("upper register ORs into bits 5-6 in mode 0", func(t *testing.T) {
		mbc := NewMBC1(makeROM(0x01, 128))
		mbc.Write(0x2000, 0x01)
		mbc.Write(0x4000, 0x01)
		assert.Equal(t, uint8(0x21), mbc.Read(0x4000))
	})

	t.Run("upper register replaces the low 2 bits in mode 1", func(t *testing.T) {
		mbc := NewMBC1(makeROM(0x01, 128))
		mbc.Write(0x2000, 0x05)
		mbc.Write(0x6000, 0x01)
		mbc.Write(0x4000, 0x02)
		assert.Equal(t, uint8(0x06), mbc.Read(0x4000))
	})

	t.Run("out of range banks wrap around the image", func(t *testing.T) {
		mbc := NewMBC1(makeROM(0x01, 4))
		mbc.Write(0x2000, 0x05) // bank 5 of a 4-bank image
		assert.Equal(t, uint8(0x01), mbc.Read(0x4000))
	})

	t.Run("writes never mutate the ROM image", func(t *testing.T) {
		rom := makeROM(0x01, 4)
		snapshot := make([]byte, len(rom))
		copy(snapshot, rom)

		mbc := NewMBC1(rom)
		for _, addr := range []uint16{0x0000, 0x1FFF, 0x2000, 0x3FFF, 0x4000, 0x5FFF, 0x6000, 0x7FFF} {
			mbc.Write(addr, 0xAA)
		}

		assert.Equal(t, snapshot, rom)
	})
}

func TestMBC3Banking(t *testing.T) {
	// MBC3 shares the MBC1 protocol for bank selection
	mbc := NewMBC3(makeROM(0x13, 64))

	mbc.Write(0x2000, 0x0A)
	assert.Equal(t, uint8(0x0A), mbc.Read(0x4000))

	// quirk bump with the upper register set, as on MBC1
	mbc.Write(0x4000, 0x01)
	mbc.Write(0x2000, 0x20)
	assert.Equal(t, uint8(0x21), mbc.Read(0x4000))
}

func TestNoMBC(t *testing.T) {
	rom := makeROM(0x00, 2)
	rom[0x4123] = 0x42

	mbc := NewNoMBC(rom)
	assert.Equal(t, uint8(0x42), mbc.Read(0x4123))

	mbc.Write(0x2000, 0x02)
	assert.Equal(t, uint8(0x42), mbc.Read(0x4123))
}

func TestUnsupportedCartridgeFallsBack(t *testing.T) {
	rom := makeROM(0x05, 2) // MBC2, not supported
	rom[0x0150] = 0x42

	mmu := NewWithCartridge(NewCartridgeWithData(rom))
	require.NotNil(t, mmu)

	// runs without banking
	assert.Equal(t, uint8(0x42), mmu.Read(0x0150))
	assert.Equal(t, uint8(0x01), mmu.Read(0x4000))
}
