// Package memory implements the DMG's address bus: region routing, the
// BIOS overlay, OAM DMA, and CPU-visibility gating of VRAM/OAM while the
// PPU owns them.
package memory

import (
	"log/slog"

	"github.com/aarnes/dmgcore/addr"
	"github.com/aarnes/dmgcore/input"
	"github.com/aarnes/dmgcore/interrupt"
	"github.com/aarnes/dmgcore/serial"
	"github.com/aarnes/dmgcore/timer"
	"github.com/aarnes/dmgcore/video"
)

type region uint8

const (
	regionROM region = iota
	regionVRAM
	regionExtRAM
	regionWRAM
	regionEcho
	regionOAM
	regionUnusable
	regionIO
	regionHRAM
)

var regionMap [256]region

func init() {
	for i := 0x00; i <= 0x7F; i++ {
		regionMap[i] = regionROM
	}
	for i := 0x80; i <= 0x9F; i++ {
		regionMap[i] = regionVRAM
	}
	for i := 0xA0; i <= 0xBF; i++ {
		regionMap[i] = regionExtRAM
	}
	for i := 0xC0; i <= 0xDF; i++ {
		regionMap[i] = regionWRAM
	}
	for i := 0xE0; i <= 0xFD; i++ {
		regionMap[i] = regionEcho
	}
	regionMap[0xFE] = regionOAM // 0xFEA0-0xFEFF (unusable) handled by address range
	regionMap[0xFF] = regionIO  // 0xFF80-0xFFFE (HRAM) handled by address range
}

// Bus wires the CPU to every memory-mapped component: cartridge ROM/RAM,
// work RAM, VRAM/OAM (owned by the PPU), and the I/O register block.
type Bus struct {
	mbc  MBC
	vram [0x2000]byte
	wram [0x2000]byte
	oam  [0xA0]byte
	hram [0x7F]byte

	bios       []byte
	biosActive bool

	ppu    *video.PPU
	timer  *timer.Timer
	serial *serial.Port
	input  *input.Controller
	irq    *interrupt.Controller

	logger *slog.Logger
}

// NewBus wires a bus around mbc (the cartridge's banking controller) and
// freshly constructed peripherals. bios may be nil, in which case the CPU
// must be initialized directly to its post-boot-ROM register state.
func NewBus(mbc MBC, bios []byte) *Bus {
	irq := interrupt.New()
	b := &Bus{
		mbc:        mbc,
		bios:       bios,
		biosActive: len(bios) > 0,
		irq:        irq,
	}
	b.timer = timer.New(func() { irq.Raise(addr.Timer) })
	b.serial = serial.New(func() { irq.Raise(addr.Serial) })
	b.input = input.New(func() { irq.Raise(addr.Joypad) })
	b.ppu = video.NewPPU(b, irq, nil)
	b.logger = slog.Default()
	return b
}

// Interrupts returns the bus's interrupt controller, for the CPU to
// consult between instructions.
func (b *Bus) Interrupts() *interrupt.Controller { return b.irq }

// PPU returns the bus's PPU, for the host to read the framebuffer from and
// to set a present callback on.
func (b *Bus) PPU() *video.PPU { return b.ppu }

// Input returns the bus's joypad controller, for the host to report button
// state through.
func (b *Bus) Input() *input.Controller { return b.input }

// Timer returns the bus's timer peripheral, mostly so the machine can seed
// its post-BIOS divider value.
func (b *Bus) Timer() *timer.Timer { return b.timer }

// Tick advances every cycle-driven peripheral by the given number of
// M-cycles. The CPU calls this once per instruction with the M-cycle count
// the instruction reported, per the core's peripherals-after-instruction
// ordering contract.
func (b *Bus) Tick(cycles int) {
	b.ppu.Tick(cycles)
	b.timer.Tick(cycles)
	b.serial.Tick(cycles)
}

// Read8 reads one byte as visible to the CPU: VRAM/OAM reads return 0xFF
// while the PPU has exclusive ownership of them (modes 3 and 2
// respectively).
func (b *Bus) Read8(address uint16) byte {
	if b.biosActive && address < 0x0100 {
		return b.bios[address]
	}

	switch regionMap[address>>8] {
	case regionROM:
		return b.mbc.Read(address)
	case regionVRAM:
		if b.ppu.Mode() == video.ModeDrawing {
			return 0xFF
		}
		return b.vram[address-0x8000]
	case regionExtRAM:
		return b.mbc.Read(address)
	case regionWRAM:
		return b.wram[address-0xC000]
	case regionEcho:
		return b.wram[address-0xE000]
	case regionOAM:
		if address > 0xFE9F {
			return 0x00 // unusable range
		}
		if b.ppu.Mode() == video.ModeOAMScan || b.ppu.Mode() == video.ModeDrawing {
			return 0xFF
		}
		return b.oam[address-0xFE00]
	case regionIO:
		if address >= 0xFF80 && address <= 0xFFFE {
			return b.hram[address-0xFF80]
		}
		return b.readIO(address)
	default:
		return 0xFF
	}
}

// Write8 writes one byte as visible to the CPU, subject to the same
// VRAM/OAM gating as Read8.
func (b *Bus) Write8(address uint16, value byte) {
	switch regionMap[address>>8] {
	case regionROM:
		b.mbc.Write(address, value)
	case regionVRAM:
		if b.ppu.Mode() == video.ModeDrawing {
			return
		}
		b.vram[address-0x8000] = value
	case regionExtRAM:
		b.mbc.Write(address, value)
	case regionWRAM:
		b.wram[address-0xC000] = value
	case regionEcho:
		b.wram[address-0xE000] = value
	case regionOAM:
		if address > 0xFE9F {
			return
		}
		if b.ppu.Mode() == video.ModeOAMScan || b.ppu.Mode() == video.ModeDrawing {
			return
		}
		b.oam[address-0xFE00] = value
	case regionIO:
		if address >= 0xFF80 && address <= 0xFFFE {
			b.hram[address-0xFF80] = value
			return
		}
		b.writeIO(address, value)
	}
}

// Read16 and Write16 are little-endian helpers built on Read8/Write8, used
// by the CPU for 16-bit loads, PUSH/POP, and vector fetches.
func (b *Bus) Read16(address uint16) uint16 {
	lo := b.Read8(address)
	hi := b.Read8(address + 1)
	return uint16(hi)<<8 | uint16(lo)
}

func (b *Bus) Write16(address uint16, value uint16) {
	b.Write8(address, byte(value))
	b.Write8(address+1, byte(value>>8))
}

func (b *Bus) readIO(address uint16) byte {
	switch {
	case address == addr.P1:
		return b.input.Read()
	case address == addr.SB || address == addr.SC:
		return b.serial.Read(address)
	case address == addr.DIV || address == addr.TIMA || address == addr.TMA || address == addr.TAC:
		return b.timer.Read(address)
	case address == addr.IF:
		return b.irq.ReadIF()
	case address == addr.IE:
		return b.irq.ReadIE()
	case address >= addr.LCDC && address <= addr.WX:
		return b.ppu.ReadRegister(address)
	default:
		b.logger.Debug("read from unmapped I/O register", "addr", address)
		return 0xFF
	}
}

func (b *Bus) writeIO(address uint16, value byte) {
	switch {
	case address == addr.P1:
		b.input.Write(value)
	case address == addr.SB || address == addr.SC:
		b.serial.Write(address, value)
	case address == addr.DIV || address == addr.TIMA || address == addr.TMA || address == addr.TAC:
		b.timer.Write(address, value)
	case address == addr.IF:
		b.irq.WriteIF(value)
	case address == addr.IE:
		b.irq.WriteIE(value)
	case address == addr.DMA:
		b.runDMA(value)
	case address == addr.BootROMDisable:
		b.biosActive = false
	case address >= addr.LCDC && address <= addr.WX:
		b.ppu.WriteRegister(address, value)
	default:
		b.logger.Warn("write to unmapped I/O register", "addr", address, "value", value)
	}
}

// runDMA copies 160 bytes from value<<8 into OAM, as a real transfer would;
// this core does not model the CPU-stall/bus-conflict side effects of DMA,
// only its data-movement result.
func (b *Bus) runDMA(value byte) {
	source := uint16(value) << 8
	for i := uint16(0); i < 0xA0; i++ {
		b.oam[i] = b.Read8(source + i)
	}
}

// VRAM implements video.VideoMemory: the PPU's own tile/sprite fetches
// always see real VRAM, never the 0xFF the CPU gets while modes 2/3 are
// active.
func (b *Bus) VRAM(address uint16) byte {
	return b.vram[address-0x8000]
}

// OAM implements video.VideoMemory. address is an offset within OAM
// (0x00-0x9F), not an absolute bus address.
func (b *Bus) OAM(address uint16) byte {
	return b.oam[address]
}
