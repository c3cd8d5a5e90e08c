// Package serial implements a minimal DMG serial port with no link-cable
// peer attached. It exists so ROMs that probe SC for transfer completion
// don't spin forever, and so outgoing bytes are visible for debugging.
package serial

import (
	"log/slog"

	"github.com/aarnes/dmgcore/addr"
	"github.com/aarnes/dmgcore/bit"
)

// cyclesPerByte approximates the DMG's internal serial clock: one bit
// every 512 CPU cycles (T-cycles), 8 bits per byte; expressed here in
// M-cycles (divide by 4) since the rest of the core accounts in M-cycles.
const cyclesPerByte = 4096 / 4

// Port is a no-peer serial device mapped at SB/SC. Every transfer it
// starts completes on its own after cyclesPerByte M-cycles, returning
// 0xFF on SB (hardware's documented behavior when nothing answers) and
// raising the Serial interrupt.
type Port struct {
	raiseIRQ func()
	sb, sc   byte
	active   bool
	countdown int
	line     []byte
	logger   *slog.Logger
}

// New returns a serial port that calls raiseIRQ when a transfer completes.
func New(raiseIRQ func()) *Port {
	p := &Port{raiseIRQ: raiseIRQ, logger: slog.Default()}
	p.Reset()
	return p
}

// Reset restores the port to its power-on state.
func (p *Port) Reset() {
	p.sb = 0x00
	p.sc = 0x7E
	p.active = false
	p.countdown = 0
	p.line = p.line[:0]
}

// Read returns the current value of SB or SC.
func (p *Port) Read(address uint16) byte {
	switch address {
	case addr.SB:
		return p.sb
	case addr.SC:
		return p.sc
	default:
		return 0xFF
	}
}

// Write updates SB or SC, possibly starting a transfer.
func (p *Port) Write(address uint16, value byte) {
	switch address {
	case addr.SB:
		p.sb = value
	case addr.SC:
		p.sc = value
		p.maybeStartTransfer()
	}
}

// Tick advances any in-flight transfer by the given number of M-cycles.
func (p *Port) Tick(cycles int) {
	if !p.active {
		return
	}
	p.countdown -= cycles
	if p.countdown <= 0 {
		p.complete()
	}
}

func (p *Port) maybeStartTransfer() {
	if p.active {
		return
	}
	// a transfer starts when bit 7 (start) and bit 0 (internal clock) of SC are both set.
	if !bit.IsSet(7, p.sc) || !bit.IsSet(0, p.sc) {
		return
	}

	b := p.sb
	if b == 0 || b == '\n' || b == '\r' {
		if len(p.line) > 0 {
			p.logger.Debug("serial", "line", string(p.line))
			p.line = p.line[:0]
		}
	} else {
		p.line = append(p.line, b)
	}

	p.active = true
	p.countdown = cyclesPerByte
}

func (p *Port) complete() {
	p.sb = 0xFF // no peer answered
	p.sc = bit.Clear(7, p.sc)
	p.active = false
	p.countdown = 0
	if p.raiseIRQ != nil {
		p.raiseIRQ()
	}
}
