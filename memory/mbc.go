package memory

import "fmt"

// MBC abstracts the cartridge's banking hardware. The DMG core ships only
// a flat-ROM implementation; bank-switching controllers (MBC1 and later)
// are a documented extension point - NewMBC1 et al. would implement this
// same interface and slot into NewBus without any bus-level changes.
type MBC interface {
	Read(address uint16) byte
	Write(address uint16, value byte)
}

// flatROM is the MBC for "ROM ONLY" cartridges (cartridge type 0x00): the
// full image is addressable at 0x0000-0x7FFF with no bank switching, and
// external RAM, if present, is a flat array with no banking either.
type flatROM struct {
	rom []byte
	ram [0x2000]byte
}

// NewFlatROM returns an MBC for cartridges that need no bank switching.
func NewFlatROM(rom []byte) MBC {
	return &flatROM{rom: rom}
}

// flatROMCartTypes lists the header cartridge-type bytes that need no bank
// controller: the full image already fits in the fixed 0x0000-0x7FFF
// window. 0x00 is ROM ONLY; 0x08/0x09 add static (non-banked) cartridge
// RAM, which flatROM already backs with its own RAM array.
var flatROMCartTypes = map[byte]bool{0x00: true, 0x08: true, 0x09: true}

// NewMBC selects a banking controller for cart's declared cartridge type.
// Only flat, non-banked cartridges are supported; anything that names a
// bank controller (MBC1 and later) fails here rather than silently
// running with bank switches wired to nothing. A banked MBC (MBC1, ...)
// slots in by adding its cartridge-type bytes to a case here and
// returning a type that implements MBC from mbc.go.
func NewMBC(cart *Cartridge) (MBC, error) {
	if !flatROMCartTypes[cart.CartType] {
		return nil, fmt.Errorf("cartridge type 0x%02X requires bank switching, which is not implemented", cart.CartType)
	}
	return NewFlatROM(cart.data), nil
}

func (m *flatROM) Read(address uint16) byte {
	switch {
	case address < 0x8000:
		if int(address) < len(m.rom) {
			return m.rom[address]
		}
		return 0xFF
	case address >= 0xA000 && address < 0xC000:
		return m.ram[address-0xA000]
	default:
		return 0xFF
	}
}

func (m *flatROM) Write(address uint16, value byte) {
	if address >= 0xA000 && address < 0xC000 {
		m.ram[address-0xA000] = value
	}
	// writes into ROM space are no-ops: there's no bank register to latch.
}
