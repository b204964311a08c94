package video

// Sprite is one entry selected for the current scanline: its raw OAM X
// position, the two bytes of tile-line pixel data for the row the scanline
// crosses, and the attribute byte.
type Sprite struct {
	X    uint8
	Low  uint8
	High uint8
	Attr uint8
}

// pixel returns the 2-bit colour value of the sprite column px (0 =
// leftmost), honouring the horizontal-flip attribute. 0 is transparent.
func (s *Sprite) pixel(px int) uint8 {
	index := uint8(7 - px)
	if s.Attr&0x20 != 0 {
		index = uint8(px)
	}

	return ((s.Low >> index) & 1) | ((s.High>>index)&1)<<1
}

// maxScanlineSprites is the hardware limit of sprites emitted per scanline.
const maxScanlineSprites = 10

// spriteList is a fixed-capacity buffer ordered by X ascending with stable
// OAM-order tie breaking: entries are insertion-sorted as OAM is scanned, and
// anything pushed past the capacity falls off the tail. No allocation happens
// per scanline.
type spriteList struct {
	sprites [maxScanlineSprites]Sprite
	count   int
}

func (l *spriteList) clear() {
	l.count = 0
}

// insert places the sprite after every existing entry with X <= its own, so
// earlier OAM indices win ties.
func (l *spriteList) insert(s Sprite) {
	pos := l.count
	for pos > 0 && l.sprites[pos-1].X > s.X {
		pos--
	}

	if pos >= maxScanlineSprites {
		return
	}

	end := l.count
	if end >= maxScanlineSprites {
		end = maxScanlineSprites - 1
	}
	copy(l.sprites[pos+1:end+1], l.sprites[pos:end])
	l.sprites[pos] = s

	if l.count < maxScanlineSprites {
		l.count++
	}
}

func (l *spriteList) all() []Sprite {
	return l.sprites[:l.count]
}
