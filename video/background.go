package video

import (
	"github.com/aarnes/dmgcore/addr"
	"github.com/aarnes/dmgcore/bit"
)

// paletteColor extracts the shade assigned to a two-bit color index by a
// palette register (BGP/OBP0/OBP1 all pack four shades, two bits each).
func paletteColor(palette byte, colorIndex byte) Shade {
	return (palette >> (colorIndex * 2)) & 0x03
}

// tileRowAddress resolves the VRAM address of a tile row, honoring
// LCDC bit 4's signed/unsigned tile indexing mode.
func tileRowAddress(signedMode bool, tileIndex byte, rowInTile int) uint16 {
	if signedMode {
		offset := int(int8(tileIndex)) * 16
		return uint16(int(addr.TileData2) + offset + rowInTile*2)
	}
	return addr.TileData0 + uint16(int(tileIndex)*16+rowInTile*2)
}

func (p *PPU) drawBackground() {
	line := int(p.ly)

	if !bit.IsSet(0, p.lcdc) {
		// BG disabled: DMG still shows color 0 of BGP, and that counts as
		// "transparent" for sprite priority purposes.
		color := paletteColor(p.bgp, 0)
		for x := 0; x < Width; x++ {
			p.fb.Set(x, line, color)
			p.bgColorIndex[x] = 0
		}
		return
	}

	signedMode := !bit.IsSet(4, p.lcdc)
	tileMapBase := addr.TileMap0
	if bit.IsSet(3, p.lcdc) {
		tileMapBase = addr.TileMap1
	}

	scrolledY := (line + int(p.scy)) & 0xFF
	tileRow := (scrolledY / 8) * 32
	rowInTile := scrolledY % 8

	for x := 0; x < Width; x++ {
		scrolledX := (x + int(p.scx)) & 0xFF
		tileCol := scrolledX / 8
		colInTile := scrolledX % 8

		tileIndex := p.mem.VRAM(tileMapBase + uint16(tileRow+tileCol))
		tileAddr := tileRowAddress(signedMode, tileIndex, rowInTile)

		low := p.mem.VRAM(tileAddr)
		high := p.mem.VRAM(tileAddr + 1)
		colorIndex := pixelColorIndex(low, high, 7-colInTile)

		p.bgColorIndex[x] = colorIndex
		p.fb.Set(x, line, paletteColor(p.bgp, colorIndex))
	}
}

func (p *PPU) drawWindow() {
	if !bit.IsSet(5, p.lcdc) {
		return
	}

	wx := int(p.wx) - 7
	wy := int(p.wy)
	line := int(p.ly)

	if wy > line || wx > Width-1 {
		return
	}

	signedMode := !bit.IsSet(4, p.lcdc)
	tileMapBase := addr.TileMap0
	if bit.IsSet(6, p.lcdc) {
		tileMapBase = addr.TileMap1
	}

	tileRow := (p.windowLine / 8) * 32
	rowInTile := p.windowLine % 8

	for screenX := 0; screenX < Width; screenX++ {
		if screenX < wx {
			continue
		}
		windowX := screenX - wx
		tileCol := windowX / 8
		colInTile := windowX % 8

		tileIndex := p.mem.VRAM(tileMapBase + uint16(tileRow+tileCol))
		tileAddr := tileRowAddress(signedMode, tileIndex, rowInTile)

		low := p.mem.VRAM(tileAddr)
		high := p.mem.VRAM(tileAddr + 1)
		colorIndex := pixelColorIndex(low, high, 7-colInTile)

		p.bgColorIndex[screenX] = colorIndex
		p.fb.Set(screenX, line, paletteColor(p.bgp, colorIndex))
	}

	p.windowLine++
}

// pixelColorIndex combines the low/high bit-plane bytes of a tile row into
// a two-bit color index for the pixel at bitIndex (7=leftmost).
func pixelColorIndex(low, high byte, bitIndex int) byte {
	idx := byte(0)
	if bit.IsSet(uint8(bitIndex), low) {
		idx |= 1
	}
	if bit.IsSet(uint8(bitIndex), high) {
		idx |= 2
	}
	return idx
}
