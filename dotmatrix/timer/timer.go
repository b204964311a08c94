package timer

import (
	"github.com/dotmatrix-emu/dotmatrix/dotmatrix/addr"
	"github.com/dotmatrix-emu/dotmatrix/dotmatrix/bit"
)

// tacRate maps the TAC input clock select (bits 1-0) to a log2-style rate
// selector: TIMA ticks once every 1<<(20-rate) machine cycles.
//
//	00 -> 256 cycles (4096 Hz)
//	01 ->   4 cycles (262144 Hz)
//	10 ->  16 cycles (65536 Hz)
//	11 ->  64 cycles (16384 Hz)
var tacRate = [4]uint{12, 18, 16, 14}

// DIV ticks once every 64 machine cycles (16384 Hz).
const divPeriod = 64

// Timer implements the DIV and TIMA dividers. It is advanced by the system
// driver with the machine cycles each instruction took; TIMA overflow raises
// IF.TIMA through the requestInterrupt callback and reloads from TMA.
type Timer struct {
	divClock   int // cycle accumulator for DIV
	timerClock int // cycle accumulator for TIMA

	div  byte
	tima byte
	tma  byte
	tac  byte

	requestInterrupt func()
}

// New returns a Timer. The passed function is invoked on each TIMA overflow
// and should set IF.TIMA.
func New(requestInterrupt func()) *Timer {
	return &Timer{
		requestInterrupt: requestInterrupt,
	}
}

// Tick advances the timer by the given amount of machine cycles.
func (t *Timer) Tick(cycles int) {
	t.divClock += cycles
	if t.divClock >= divPeriod {
		t.div += byte(t.divClock / divPeriod)
		t.divClock %= divPeriod
	}

	// TIMA only counts while TAC bit 2 is set
	if !bit.IsSet(2, t.tac) {
		return
	}

	t.timerClock += cycles
	period := 1 << (20 - tacRate[t.tac&0x03])
	for t.timerClock >= period {
		t.timerClock -= period
		t.tima++
		if t.tima == 0 {
			t.tima = t.tma
			if t.requestInterrupt != nil {
				t.requestInterrupt()
			}
		}
	}
}

func (t *Timer) Read(address uint16) byte {
	switch address {
	case addr.DIV:
		return t.div
	case addr.TIMA:
		return t.tima
	case addr.TMA:
		return t.tma
	case addr.TAC:
		return t.tac
	default:
		return 0xFF
	}
}

func (t *Timer) Write(address uint16, value byte) {
	switch address {
	case addr.DIV:
		// any write resets the divider
		t.div = 0
		t.divClock = 0
	case addr.TIMA:
		t.tima = value
	case addr.TMA:
		t.tma = value
	case addr.TAC:
		t.tac = value
	}
}
