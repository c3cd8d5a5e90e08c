package interrupt

import (
	"testing"

	"github.com/aarnes/dmgcore/addr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestController_priorityOrder(t *testing.T) {
	c := New()
	c.WriteIE(0xFF)

	c.Raise(addr.Timer)
	c.Raise(addr.VBlank)
	c.Raise(addr.Joypad)

	source, ok := c.Pending()
	require.True(t, ok)
	assert.Equal(t, addr.VBlank, source, "VBlank has the lowest bit and must win")

	c.Clear(addr.VBlank)
	source, ok = c.Pending()
	require.True(t, ok)
	assert.Equal(t, addr.Timer, source)
}

func TestController_maskedByIE(t *testing.T) {
	c := New()
	c.Raise(addr.Serial)

	_, ok := c.Pending()
	assert.False(t, ok, "a raised source with its IE bit clear must not be pending")

	c.WriteIE(byte(addr.Serial))
	_, ok = c.Pending()
	assert.True(t, ok)
}

func TestController_ifUpperBitsAlwaysSet(t *testing.T) {
	c := New()
	c.WriteIF(0x00)
	assert.Equal(t, byte(0xE0), c.ReadIF())
}

func TestController_anyPending(t *testing.T) {
	c := New()
	assert.False(t, c.AnyPending())

	c.WriteIE(byte(addr.Joypad))
	assert.False(t, c.AnyPending())

	c.Raise(addr.Joypad)
	assert.True(t, c.AnyPending())
}
