package cpu

import (
	"testing"

	"github.com/aarnes/dmgcore/addr"
	"github.com/aarnes/dmgcore/interrupt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// flatBus is a 64KB byte-array bus, enough to drive the CPU in isolation
// without the full memory-mapped bus's region gating.
type flatBus struct {
	mem [0x10000]byte
}

func (b *flatBus) Read8(address uint16) byte       { return b.mem[address] }
func (b *flatBus) Write8(address uint16, v byte)   { b.mem[address] = v }
func (b *flatBus) Read16(address uint16) uint16    { return uint16(b.mem[address]) | uint16(b.mem[address+1])<<8 }
func (b *flatBus) Write16(address uint16, v uint16) {
	b.mem[address] = byte(v)
	b.mem[address+1] = byte(v >> 8)
}
func (b *flatBus) Tick(cycles int) {}

func newTestCPU() (*CPU, *flatBus, *interrupt.Controller) {
	bus := &flatBus{}
	irq := interrupt.New()
	c := New(bus, irq)
	return c, bus, irq
}

func TestCPU_flagRegisterMasking(t *testing.T) {
	c, _, _ := newTestCPU()

	for x := 0; x < 256; x++ {
		c.reg.setAF(uint16(x) << 8)
		assert.Equal(t, byte(x), c.reg.a)

		c.reg.setAF(uint16(x))
		assert.Equal(t, byte(x)&0xF0, c.reg.f, "F must mask out the low nibble")
	}
}

func TestCPU_pushPopRoundTrip(t *testing.T) {
	c, _, _ := newTestCPU()
	c.reg.sp = 0xFFFE

	for _, pair := range []uint16{0x0000, 0x1234, 0xBEEF, 0xFFF0} {
		c.push16(pair)
		got := c.pop16()
		assert.Equal(t, pair, got)
	}
}

func TestCPU_popAFMasksLowNibble(t *testing.T) {
	c, _, _ := newTestCPU()
	c.reg.sp = 0xFFFE

	c.push16(0x12FF)
	c.writeRP2(rp2AF, c.pop16())

	assert.Equal(t, byte(0), c.reg.f&0x0F)
}

func TestCPU_addFlagArithmetic(t *testing.T) {
	c, bus, _ := newTestCPU()
	c.reg.a = 0x3A
	c.reg.b = 0xC6
	c.reg.f = 0
	bus.mem[0x0100] = 0x80 // ADD A,B
	c.reg.pc = 0x0100

	cycles, err := c.step()
	require.NoError(t, err)
	assert.Equal(t, 1, cycles)
	assert.Equal(t, byte(0x00), c.reg.a)
	assert.Equal(t, byte(0xB0), c.reg.f)
}

func TestCPU_daaAfterBCDAdd(t *testing.T) {
	c, bus, _ := newTestCPU()
	c.reg.a = 0x45
	c.reg.b = 0x38
	c.reg.f = 0
	bus.mem[0x0100] = 0x80 // ADD A,B
	bus.mem[0x0101] = 0x27 // DAA
	c.reg.pc = 0x0100

	_, err := c.step()
	require.NoError(t, err)
	assert.Equal(t, byte(0x7D), c.reg.a)

	_, err = c.step()
	require.NoError(t, err)
	assert.Equal(t, byte(0x83), c.reg.a)
	assert.False(t, c.reg.flag(FlagZ))
	assert.False(t, c.reg.flag(FlagH))
	assert.False(t, c.reg.flag(FlagC))
}

func TestCPU_bitResSet(t *testing.T) {
	c, bus, _ := newTestCPU()
	c.reg.a = 0xFE
	bus.mem[0x0100] = 0xCB
	bus.mem[0x0101] = 0x47 // BIT 0,A
	bus.mem[0x0102] = 0xCB
	bus.mem[0x0103] = 0xC7 // SET 0,A
	bus.mem[0x0104] = 0xCB
	bus.mem[0x0105] = 0xBF // RES 7,A
	c.reg.pc = 0x0100

	_, err := c.step()
	require.NoError(t, err)
	assert.True(t, c.reg.flag(FlagZ))
	assert.False(t, c.reg.flag(FlagN))
	assert.True(t, c.reg.flag(FlagH))

	_, err = c.step()
	require.NoError(t, err)
	assert.Equal(t, byte(0xFF), c.reg.a)

	_, err = c.step()
	require.NoError(t, err)
	assert.Equal(t, byte(0x7F), c.reg.a)
}

func TestCPU_interruptVectoring(t *testing.T) {
	c, bus, irq := newTestCPU()
	c.ime = true
	irq.WriteIE(0x01)
	irq.WriteIF(0x01)
	c.reg.pc = 0x2000
	c.reg.sp = 0xDFF0

	cycles, err := c.step()
	require.NoError(t, err)

	assert.Equal(t, 5, cycles)
	assert.False(t, c.ime)
	assert.Equal(t, uint16(0xDFEE), c.reg.sp)
	assert.Equal(t, byte(0x00), bus.mem[0xDFEE])
	assert.Equal(t, byte(0x20), bus.mem[0xDFEF])
	assert.Equal(t, uint16(0x0040), c.reg.pc)
	assert.False(t, irq.AnyPending())
}

func TestCPU_pcAdvancesByEncodedLength(t *testing.T) {
	testCases := []struct {
		desc   string
		opcode []byte
		wantPC uint16
	}{
		{desc: "single-byte NOP", opcode: []byte{0x00}, wantPC: 0x0101},
		{desc: "8-bit immediate LD B,d8", opcode: []byte{0x06, 0x42}, wantPC: 0x0102},
		{desc: "16-bit immediate LD BC,d16", opcode: []byte{0x01, 0x34, 0x12}, wantPC: 0x0103},
		{desc: "CB-prefixed BIT 0,A", opcode: []byte{0xCB, 0x47}, wantPC: 0x0102},
	}

	for _, tC := range testCases {
		t.Run(tC.desc, func(t *testing.T) {
			c, bus, _ := newTestCPU()
			copy(bus.mem[0x0100:], tC.opcode)
			c.reg.pc = 0x0100

			_, err := c.step()
			require.NoError(t, err)
			assert.Equal(t, tC.wantPC, c.reg.pc)
		})
	}
}

func TestCPU_illegalInstruction(t *testing.T) {
	c, bus, _ := newTestCPU()
	bus.mem[0x0100] = 0xD3
	c.reg.pc = 0x0100

	_, err := c.step()
	require.Error(t, err)

	var illegal *IllegalInstruction
	require.ErrorAs(t, err, &illegal)
	assert.Equal(t, byte(0xD3), illegal.Opcode)
}

func TestCPU_eiTakesEffectAfterNextInstruction(t *testing.T) {
	c, bus, irq := newTestCPU()
	bus.mem[0x0100] = 0xFB // EI
	bus.mem[0x0101] = 0x00 // NOP
	c.reg.pc = 0x0100

	_, err := c.step()
	require.NoError(t, err)
	assert.False(t, c.ime, "IME must not be set immediately after EI")

	_, err = c.step()
	require.NoError(t, err)
	assert.True(t, c.ime, "IME takes effect once the instruction after EI commits")

	_ = irq
	_ = addr.VBlank
}

func TestCPU_haltWakesOnPendingInterrupt(t *testing.T) {
	c, bus, irq := newTestCPU()
	bus.mem[0x0100] = 0x76 // HALT
	c.reg.pc = 0x0100
	c.ime = false

	_, err := c.step()
	require.NoError(t, err)
	assert.True(t, c.halted)

	irq.WriteIE(0x01)
	irq.WriteIF(0x01)

	_, err = c.step()
	require.NoError(t, err)
	assert.False(t, c.halted)
}
