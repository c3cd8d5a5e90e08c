// Package video implements the DMG's pixel processing unit: the scanline
// mode state machine, background/window/sprite rendering, and the LCD
// status registers.
package video

import (
	"github.com/aarnes/dmgcore/addr"
	"github.com/aarnes/dmgcore/bit"
	"github.com/aarnes/dmgcore/interrupt"
)

// Mode is the PPU's current rendering stage; the numeric values match
// STAT's bits 1-0.
type Mode byte

const (
	ModeHBlank  Mode = 0
	ModeVBlank  Mode = 1
	ModeOAMScan Mode = 2
	ModeDrawing Mode = 3
)

// M-cycle durations for each stage of a scanline, per the documented DMG
// timings (the reference implementation expresses these in T-cycles;
// divided by 4 here since the rest of this core accounts in M-cycles).
const (
	oamScanCycles  = 20
	drawingCycles  = 43
	hblankCycles   = 51
	lineCycles     = oamScanCycles + drawingCycles + hblankCycles // 114
	vblankLines    = 10
)

// VideoMemory is the raw, ungated view of VRAM and OAM the PPU needs for
// its own tile/sprite fetches. The bus implements this; unlike the bus's
// CPU-facing Read8/Write8, these accessors are never blocked by PPU mode -
// the PPU always sees its own memory.
type VideoMemory interface {
	VRAM(address uint16) byte
	OAM(address uint16) byte
}

// PPU renders DMG frames scanline by scanline and drives the VBlank/STAT
// interrupts.
type PPU struct {
	mem  VideoMemory
	irq  *interrupt.Controller
	fb   *FrameBuffer
	present func(*FrameBuffer)

	mode   Mode
	ly     byte
	cycles int

	windowLine  int
	prevStatLine bool

	lcdc, stat, scx, scy, lyc, bgp, obp0, obp1, wx, wy byte

	bgColorIndex [Width]byte // BG/window color index for the line being drawn, for sprite priority
}

// NewPPU returns a PPU wired to mem for tile/sprite data, irq for
// interrupt signalling, and present (may be nil) called once per frame
// with the completed framebuffer.
func NewPPU(mem VideoMemory, irq *interrupt.Controller, present func(*FrameBuffer)) *PPU {
	p := &PPU{
		mem:     mem,
		irq:     irq,
		fb:      NewFrameBuffer(),
		present: present,
		mode:    ModeOAMScan,
		stat:    byte(ModeOAMScan),
		lcdc:    0x91,
		bgp:     0xFC,
		obp0:    0xFF,
		obp1:    0xFF,
	}
	return p
}

// Mode returns the PPU's current mode, used by the bus to gate VRAM/OAM
// access.
func (p *PPU) Mode() Mode {
	return p.mode
}

// SetPresentCallback sets (or replaces) the function called once per
// completed frame with the rendered framebuffer.
func (p *PPU) SetPresentCallback(present func(*FrameBuffer)) {
	p.present = present
}

// FrameBuffer returns the framebuffer being rendered into.
func (p *PPU) FrameBuffer() *FrameBuffer {
	return p.fb
}

// Tick advances the PPU by the given number of M-cycles.
func (p *PPU) Tick(cycles int) {
	if !bit.IsSet(7, p.lcdc) {
		p.ly = 0
		p.cycles = 0
		p.windowLine = 0
		p.setMode(ModeHBlank)
		return
	}

	p.cycles += cycles

	switch p.mode {
	case ModeOAMScan:
		if p.cycles >= oamScanCycles {
			p.cycles -= oamScanCycles
			p.setMode(ModeDrawing)
		}
	case ModeDrawing:
		if p.cycles >= drawingCycles {
			p.cycles -= drawingCycles
			p.renderScanline()
			p.setMode(ModeHBlank)
		}
	case ModeHBlank:
		if p.cycles >= hblankCycles {
			p.cycles -= hblankCycles
			p.setLY(p.ly + 1)
			if p.ly == 144 {
				p.setMode(ModeVBlank)
				p.windowLine = 0
				p.irq.Raise(addr.VBlank)
				if p.present != nil {
					p.present(p.fb)
				}
			} else {
				p.setMode(ModeOAMScan)
			}
		}
	case ModeVBlank:
		if p.cycles >= lineCycles {
			p.cycles -= lineCycles
			if p.ly == 153 {
				p.setLY(0)
				p.setMode(ModeOAMScan)
			} else {
				p.setLY(p.ly + 1)
			}
		}
	}
}

func (p *PPU) setMode(mode Mode) {
	p.mode = mode
	p.stat = (p.stat &^ 0x03) | byte(mode)
	p.refreshStatIRQ()
}

func (p *PPU) setLY(line byte) {
	p.ly = line
	p.stat = bit.SetIf(2, p.stat, p.ly == p.lyc)
	p.refreshStatIRQ()
}

// refreshStatIRQ implements the hardware's combined STAT interrupt line:
// it raises LCD-STAT on a false-to-true transition of the OR of every
// currently-enabled, currently-true source, not on each source
// independently - so two sources becoming true in the same tick only
// raises one interrupt, and a source that's already true does not
// re-raise until the line drops and rises again.
func (p *PPU) refreshStatIRQ() {
	now := p.statLineActive()
	if now && !p.prevStatLine {
		p.irq.Raise(addr.LCDSTAT)
	}
	p.prevStatLine = now
}

func (p *PPU) statLineActive() bool {
	hblank := p.mode == ModeHBlank && bit.IsSet(3, p.stat)
	vblank := p.mode == ModeVBlank && bit.IsSet(4, p.stat)
	oam := p.mode == ModeOAMScan && bit.IsSet(5, p.stat)
	lyc := bit.IsSet(2, p.stat) && bit.IsSet(6, p.stat)
	return hblank || vblank || oam || lyc
}

// ReadRegister reads one of the PPU's MMIO registers.
func (p *PPU) ReadRegister(address uint16) byte {
	switch address {
	case addr.LCDC:
		return p.lcdc
	case addr.STAT:
		return p.stat | 0x80
	case addr.SCY:
		return p.scy
	case addr.SCX:
		return p.scx
	case addr.LY:
		return p.ly
	case addr.LYC:
		return p.lyc
	case addr.BGP:
		return p.bgp
	case addr.OBP0:
		return p.obp0
	case addr.OBP1:
		return p.obp1
	case addr.WY:
		return p.wy
	case addr.WX:
		return p.wx
	default:
		return 0xFF
	}
}

// WriteRegister writes one of the PPU's MMIO registers.
func (p *PPU) WriteRegister(address uint16, value byte) {
	switch address {
	case addr.LCDC:
		wasOn := bit.IsSet(7, p.lcdc)
		p.lcdc = value
		if wasOn && !bit.IsSet(7, p.lcdc) {
			p.ly = 0
			p.cycles = 0
			p.setMode(ModeHBlank)
		}
	case addr.STAT:
		// bits 0-2 are read-only (mode + coincidence flag); only the
		// interrupt-source enable bits (3-6) are writable.
		p.stat = (p.stat & 0x07) | (value &^ 0x07)
		p.refreshStatIRQ()
	case addr.SCY:
		p.scy = value
	case addr.SCX:
		p.scx = value
	case addr.LY:
		p.setLY(0)
	case addr.LYC:
		p.lyc = value
		p.stat = bit.SetIf(2, p.stat, p.ly == p.lyc)
		p.refreshStatIRQ()
	case addr.BGP:
		p.bgp = value
	case addr.OBP0:
		p.obp0 = value
	case addr.OBP1:
		p.obp1 = value
	case addr.WY:
		p.wy = value
	case addr.WX:
		p.wx = value
	}
}

func (p *PPU) renderScanline() {
	p.drawBackground()
	p.drawWindow()
	p.drawSprites()
}
