// Package timer implements the DMG's DIV/TIMA/TMA/TAC timer peripheral.
package timer

import (
	"github.com/aarnes/dmgcore/addr"
	"github.com/aarnes/dmgcore/bit"
)

// bitForClockSelect maps TAC's low two bits to the system-counter bit whose
// falling edge increments TIMA (the DMG's documented "ANDed falling edge
// detector" design: 4096 Hz -> bit 7, 262144 Hz -> bit 1, 65536 Hz -> bit 3,
// 16384 Hz -> bit 5, all relative to a 1.048576 MHz M-cycle counter).
var bitForClockSelect = [4]uint8{7, 1, 3, 5}

// Timer tracks DIV, TIMA, TMA and TAC and raises the Timer interrupt on
// TIMA overflow.
type Timer struct {
	systemCounter uint16
	lastEdgeBit   bool
	overflowDelay int // M-cycles remaining before TMA reload takes effect
	pendingIRQ    bool

	tima, tma, tac byte

	raiseIRQ func()
}

// New returns a timer wired to call raiseIRQ on TIMA overflow.
func New(raiseIRQ func()) *Timer {
	return &Timer{raiseIRQ: raiseIRQ}
}

// Seed initializes the internal divider counter, as the CPU's post-BIOS
// register state implies a non-zero DIV value at the moment the ROM takes
// over.
func (t *Timer) Seed(value uint16) {
	t.systemCounter = value
	t.lastEdgeBit = false
	t.overflowDelay = 0
	t.pendingIRQ = false
}

// Tick advances the timer by the given number of M-cycles.
func (t *Timer) Tick(cycles int) {
	if t.overflowDelay > 0 {
		t.overflowDelay -= cycles
		if t.overflowDelay <= 0 {
			t.tima = t.tma
			t.pendingIRQ = true
			t.overflowDelay = 0
		}
	}

	if t.pendingIRQ {
		if t.raiseIRQ != nil {
			t.raiseIRQ()
		}
		t.pendingIRQ = false
	}

	for i := 0; i < cycles; i++ {
		t.systemCounter++

		if t.overflowDelay > 0 {
			continue
		}

		if t.tac&0x04 == 0 {
			t.lastEdgeBit = false
			continue
		}

		bitPos := bitForClockSelect[t.tac&0x03]
		edgeBit := bit.IsSet16(bitPos, t.systemCounter)

		if t.lastEdgeBit && !edgeBit {
			if t.tima == 0xFF {
				t.tima = 0x00
				t.overflowDelay = 1
			} else {
				t.tima++
			}
		}
		t.lastEdgeBit = edgeBit
	}
}

// Read returns the value of one of DIV/TIMA/TMA/TAC.
func (t *Timer) Read(address uint16) byte {
	switch address {
	case addr.DIV:
		return byte(t.systemCounter >> 6)
	case addr.TIMA:
		return t.tima
	case addr.TMA:
		return t.tma
	case addr.TAC:
		return t.tac | 0xF8
	default:
		return 0xFF
	}
}

// Write updates DIV/TIMA/TMA/TAC. Any write to DIV resets the full
// internal divider, not just the visible high byte.
func (t *Timer) Write(address uint16, value byte) {
	switch address {
	case addr.DIV:
		t.systemCounter = 0
	case addr.TIMA:
		t.tima = value
	case addr.TMA:
		t.tma = value
	case addr.TAC:
		t.tac = value
	}
}
