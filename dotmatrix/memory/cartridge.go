package memory

const titleLength = 11

const (
	titleAddress         = 0x134
	cartridgeTypeAddress = 0x147
	romSizeAddress       = 0x148
	ramSizeAddress       = 0x149
	versionNumberAddress = 0x14C
)

// MBCType identifies the memory bank controller on the cartridge.
type MBCType int

const (
	NoMBCType MBCType = iota
	MBC1Type
	MBC3Type
	MBCUnknownType
)

// Cartridge is a read-only ROM image plus the header fields decoded from it.
type Cartridge struct {
	data     []byte
	title    string
	mbcType  MBCType
	cartType uint8
	romSize  uint8
	ramSize  uint8
	version  uint8
}

// NewCartridge creates an empty 32 KiB cartridge, useful for tests that poke
// code straight into RAM. Equivalent to powering on without a game inserted.
func NewCartridge() *Cartridge {
	return &Cartridge{
		data: make([]byte, 0x8000),
	}
}

// NewCartridgeWithData initializes a Cartridge from a ROM image. The byte at
// 0x147 selects the controller: 0x00 none, 0x01-0x03 MBC1, 0x0F-0x13 MBC3.
// Anything else is reported as MBCUnknownType; the MMU falls back to no
// banking for those.
func NewCartridgeWithData(data []byte) *Cartridge {
	cart := &Cartridge{
		data:     make([]byte, len(data)),
		title:    string(data[titleAddress : titleAddress+titleLength]),
		cartType: data[cartridgeTypeAddress],
		romSize:  data[romSizeAddress],
		ramSize:  data[ramSizeAddress],
		version:  data[versionNumberAddress],
	}
	copy(cart.data, data)

	switch {
	case cart.cartType == 0x00:
		cart.mbcType = NoMBCType
	case cart.cartType >= 0x01 && cart.cartType <= 0x03:
		cart.mbcType = MBC1Type
	case cart.cartType >= 0x0F && cart.cartType <= 0x13:
		cart.mbcType = MBC3Type
	default:
		cart.mbcType = MBCUnknownType
	}

	return cart
}

// Title returns the game title from the header, trimmed of padding NULs.
func (c *Cartridge) Title() string {
	for i := 0; i < len(c.title); i++ {
		if c.title[i] == 0 {
			return c.title[:i]
		}
	}
	return c.title
}

// Type returns the detected controller kind.
func (c *Cartridge) Type() MBCType {
	return c.mbcType
}

// ReadByte reads a byte from the ROM image. The caller must make sure the
// offset is valid for the cartridge.
func (c *Cartridge) ReadByte(offset uint32) uint8 {
	return c.data[offset]
}

// Size returns the length of the ROM image in bytes.
func (c *Cartridge) Size() int {
	return len(c.data)
}
