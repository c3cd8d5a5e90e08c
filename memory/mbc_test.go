package memory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlatROM_readsROMAndExternalRAM(t *testing.T) {
	rom := make([]byte, 0x8000)
	rom[0x0000] = 0x11
	rom[0x7FFF] = 0x22

	mbc := NewFlatROM(rom)
	assert.Equal(t, byte(0x11), mbc.Read(0x0000))
	assert.Equal(t, byte(0x22), mbc.Read(0x7FFF))

	mbc.Write(0xA000, 0x55)
	assert.Equal(t, byte(0x55), mbc.Read(0xA000))

	mbc.Write(0x0000, 0xFF) // writes into ROM space are no-ops
	assert.Equal(t, byte(0x11), mbc.Read(0x0000))
}

func TestFlatROM_readBeyondImageReturns0xFF(t *testing.T) {
	mbc := NewFlatROM(make([]byte, 0x100))
	assert.Equal(t, byte(0xFF), mbc.Read(0x7FFF))
}

func TestNewMBC_selectsFlatROMForROMOnlyAndStaticRAMTypes(t *testing.T) {
	for _, cartType := range []byte{0x00, 0x08, 0x09} {
		rom := validHeaderROM("TESTGAME")
		rom[cartTypeAddress] = cartType
		rom[headerChecksumAddress] = recomputeHeaderChecksum(rom)

		cart, err := NewCartridge(rom)
		require.NoError(t, err)

		mbc, err := NewMBC(cart)
		require.NoError(t, err)
		assert.IsType(t, &flatROM{}, mbc)
	}
}

func TestNewMBC_rejectsBankedCartridgeTypes(t *testing.T) {
	rom := validHeaderROM("TESTGAME")
	rom[cartTypeAddress] = 0x01 // MBC1
	rom[headerChecksumAddress] = recomputeHeaderChecksum(rom)

	cart, err := NewCartridge(rom)
	require.NoError(t, err)

	_, err = NewMBC(cart)
	require.Error(t, err)
}
