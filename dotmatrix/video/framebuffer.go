package video

const (
	// FramebufferWidth is the horizontal resolution of the LCD.
	FramebufferWidth = 160
	// FramebufferHeight is the vertical resolution of the LCD.
	FramebufferHeight = 144
)

// palette maps a 2-bit colour index to the shade byte published in the
// framebuffer, lightest first.
var palette = [4]byte{0xFF, 0xAA, 0x85, 0x00}

// FrameBuffer holds one published 160x144 frame, row-major from the top-left,
// one shade byte per pixel in {0x00, 0x85, 0xAA, 0xFF}. It is stable between
// vertical blank entries; the host must only read it between driver steps.
type FrameBuffer struct {
	buffer []byte
}

// NewFrameBuffer creates an LCD-sized frame buffer.
func NewFrameBuffer() *FrameBuffer {
	return &FrameBuffer{
		buffer: make([]byte, FramebufferWidth*FramebufferHeight),
	}
}

// GetPixel returns the shade at (x, y).
func (fb *FrameBuffer) GetPixel(x, y int) byte {
	return fb.buffer[y*FramebufferWidth+x]
}

// ToSlice exposes the underlying pixel data by reference.
func (fb *FrameBuffer) ToSlice() []byte {
	return fb.buffer
}
