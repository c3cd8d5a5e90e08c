package video

import (
	"testing"

	"github.com/aarnes/dmgcore/addr"
	"github.com/aarnes/dmgcore/interrupt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeMemory struct {
	vram [0x2000]byte
	oam  [0xA0]byte
}

func (f *fakeMemory) VRAM(address uint16) byte { return f.vram[address-0x8000] }
func (f *fakeMemory) OAM(address uint16) byte  { return f.oam[address] }

func TestPPU_frameCyclePacing(t *testing.T) {
	mem := &fakeMemory{}
	irq := interrupt.New()

	frames := 0
	ppu := NewPPU(mem, irq, func(*FrameBuffer) { frames++ })
	ppu.WriteRegister(addr.LCDC, 0x91)
	irq.WriteIE(byte(addr.VBlank))

	const cyclesPerFrame = 17556
	for i := 0; i < cyclesPerFrame; i++ {
		ppu.Tick(1)
	}

	assert.Equal(t, 1, frames)
	assert.Equal(t, byte(0), ppu.ReadRegister(addr.LY))
	assert.Equal(t, ModeOAMScan, ppu.Mode())

	source, ok := irq.Pending()
	require.True(t, ok)
	assert.Equal(t, addr.VBlank, source)
}

func TestPPU_writeToLYResetsIt(t *testing.T) {
	mem := &fakeMemory{}
	irq := interrupt.New()
	ppu := NewPPU(mem, irq, nil)
	ppu.WriteRegister(addr.LCDC, 0x91)

	ppu.setLY(42)
	require.Equal(t, byte(42), ppu.ReadRegister(addr.LY))

	ppu.WriteRegister(addr.LY, 0xFF)
	assert.Equal(t, byte(0), ppu.ReadRegister(addr.LY))
}

func TestPPU_modeSequencePerScanline(t *testing.T) {
	mem := &fakeMemory{}
	irq := interrupt.New()
	ppu := NewPPU(mem, irq, nil)
	ppu.WriteRegister(addr.LCDC, 0x91)

	assert.Equal(t, ModeOAMScan, ppu.Mode())

	ppu.Tick(oamScanCycles)
	assert.Equal(t, ModeDrawing, ppu.Mode())

	ppu.Tick(drawingCycles)
	assert.Equal(t, ModeHBlank, ppu.Mode())

	ppu.Tick(hblankCycles)
	assert.Equal(t, ModeOAMScan, ppu.Mode())
	assert.Equal(t, byte(1), ppu.ReadRegister(addr.LY))
}

func TestPPU_statLYCInterruptFiresOnce(t *testing.T) {
	mem := &fakeMemory{}
	irq := interrupt.New()
	ppu := NewPPU(mem, irq, nil)
	ppu.WriteRegister(addr.LCDC, 0x91)
	ppu.WriteRegister(addr.LYC, 1)
	ppu.WriteRegister(addr.STAT, 0x40) // enable LYC=LY interrupt source
	irq.WriteIE(byte(addr.LCDSTAT))

	for i := 0; i < lineCycles; i++ {
		ppu.Tick(1)
	}
	assert.True(t, irq.AnyPending())

	irq.Clear(addr.LCDSTAT)
	for i := 0; i < lineCycles; i++ {
		ppu.Tick(1)
	}
	_, ok := irq.Pending()
	assert.False(t, ok, "STAT must not re-raise while LY stays equal to LYC")
}

func TestPixelColorIndex(t *testing.T) {
	// low=0b10000000, high=0b00000000 -> leftmost pixel is color index 1
	assert.Equal(t, byte(1), pixelColorIndex(0x80, 0x00, 7))
	// low=0, high=0x80 -> color index 2
	assert.Equal(t, byte(2), pixelColorIndex(0x00, 0x80, 7))
	// both bits set -> color index 3
	assert.Equal(t, byte(3), pixelColorIndex(0x80, 0x80, 7))
}
