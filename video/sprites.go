package video

import (
	"github.com/aarnes/dmgcore/addr"
	"github.com/aarnes/dmgcore/bit"
)

const (
	maxSpritesPerLine = 10
	spriteCount       = 40
	spriteBytes       = 4
)

type spriteAttrs struct {
	y, x, tile, flags byte
	oamIndex          int
}

func (s spriteAttrs) yFlip() bool     { return bit.IsSet(6, s.flags) }
func (s spriteAttrs) xFlip() bool     { return bit.IsSet(5, s.flags) }
func (s spriteAttrs) behindBG() bool  { return bit.IsSet(7, s.flags) }
func (s spriteAttrs) usesOBP1() bool  { return bit.IsSet(4, s.flags) }

// scanSprites returns every sprite that covers the scanline at ly, in
// hardware priority order (lowest X first, OAM index breaking ties),
// capped at the DMG's 10-sprites-per-line limit.
func (p *PPU) scanSprites(ly int, height int) []spriteAttrs {
	var visible []spriteAttrs

	for i := 0; i < spriteCount; i++ {
		base := uint16(i * spriteBytes)
		s := spriteAttrs{
			y:        p.mem.OAM(base),
			x:        p.mem.OAM(base + 1),
			tile:     p.mem.OAM(base + 2),
			flags:    p.mem.OAM(base + 3),
			oamIndex: i,
		}

		top := int(s.y) - 16
		if ly < top || ly >= top+height {
			continue
		}

		visible = append(visible, s)
		if len(visible) == maxSpritesPerLine {
			break
		}
	}

	// stable insertion sort by X ascending; OAM scan order already breaks
	// ties by index, and sort.Slice isn't stable, so this is done by hand.
	for i := 1; i < len(visible); i++ {
		for j := i; j > 0 && visible[j].x < visible[j-1].x; j-- {
			visible[j], visible[j-1] = visible[j-1], visible[j]
		}
	}

	return visible
}

func (p *PPU) drawSprites() {
	if !bit.IsSet(1, p.lcdc) {
		return
	}

	line := int(p.ly)
	height := 8
	if bit.IsSet(2, p.lcdc) {
		height = 16
	}

	sprites := p.scanSprites(line, height)

	// draw in reverse priority order so the highest-priority sprite (lowest
	// X, then lowest OAM index) ends up on top when sprites overlap.
	for i := len(sprites) - 1; i >= 0; i-- {
		p.drawSprite(sprites[i], line, height)
	}
}

func (p *PPU) drawSprite(s spriteAttrs, line int, height int) {
	screenY := line - (int(s.y) - 16)
	if s.yFlip() {
		screenY = height - 1 - screenY
	}

	tile := s.tile
	if height == 16 {
		tile &^= 0x01
		if screenY >= 8 {
			tile |= 0x01
			screenY -= 8
		}
	}

	tileAddr := addr.TileData0 + uint16(tile)*16 + uint16(screenY)*2
	low := p.mem.VRAM(tileAddr)
	high := p.mem.VRAM(tileAddr + 1)

	palette := p.obp0
	if s.usesOBP1() {
		palette = p.obp1
	}

	screenXBase := int(s.x) - 8
	for col := 0; col < 8; col++ {
		screenX := screenXBase + col
		if screenX < 0 || screenX >= Width {
			continue
		}

		bitIndex := 7 - col
		if s.xFlip() {
			bitIndex = col
		}

		colorIndex := pixelColorIndex(low, high, bitIndex)
		if colorIndex == 0 {
			continue // color 0 is always transparent for sprites
		}

		if s.behindBG() && p.bgColorIndex[screenX] != 0 {
			continue
		}

		p.fb.Set(screenX, line, paletteColor(palette, colorIndex))
	}
}
