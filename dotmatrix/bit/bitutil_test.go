package bit

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCombine(t *testing.T) {
	assert.Equal(t, uint16(0x1234), Combine(0x12, 0x34))
	assert.Equal(t, uint8(0x12), High(0x1234))
	assert.Equal(t, uint8(0x34), Low(0x1234))
}

func TestBitManipulation(t *testing.T) {
	testCases := []struct {
		desc  string
		index uint8
		in    uint8
		set   uint8
		clear uint8
	}{
		{desc: "bit 0", index: 0, in: 0b1010, set: 0b1011, clear: 0b1010},
		{desc: "bit 1", index: 1, in: 0b1010, set: 0b1010, clear: 0b1000},
		{desc: "bit 7", index: 7, in: 0x00, set: 0x80, clear: 0x00},
	}
	for _, tC := range testCases {
		t.Run(tC.desc, func(t *testing.T) {
			assert.Equal(t, tC.set, Set(tC.index, tC.in))
			assert.Equal(t, tC.clear, Clear(tC.index, tC.in))
		})
	}

	assert.True(t, IsSet(3, 0b1000))
	assert.False(t, IsSet(2, 0b1000))
	assert.Equal(t, uint8(1), GetBitValue(3, 0b1000))
	assert.Equal(t, uint8(0), GetBitValue(0, 0b1000))
}
