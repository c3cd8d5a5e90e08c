package memory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validHeaderROM(title string) []byte {
	rom := make([]byte, 0x8000)
	copy(rom[logoAddress:], nintendoLogo[:])
	copy(rom[titleAddress:], []byte(title))
	rom[cartTypeAddress] = 0x00
	rom[romSizeAddress] = 0x00
	rom[ramSizeAddress] = 0x00
	rom[headerChecksumAddress] = recomputeHeaderChecksum(rom)

	return rom
}

// recomputeHeaderChecksum reapplies spec's header-checksum algorithm,
// for tests that mutate header bytes covered by the checksum after
// validHeaderROM has already computed it.
func recomputeHeaderChecksum(rom []byte) byte {
	var checksum byte
	for i := titleAddress; i < headerChecksumAddress; i++ {
		checksum = checksum - rom[i] - 1
	}
	return checksum
}

func TestNewCartridge_validHeader(t *testing.T) {
	rom := validHeaderROM("TESTGAME")
	cart, err := NewCartridge(rom)
	require.NoError(t, err)
	assert.Equal(t, "TESTGAME", cart.Title)
}

func TestNewCartridge_logoMismatch(t *testing.T) {
	rom := validHeaderROM("TESTGAME")
	rom[logoAddress] ^= 0xFF

	_, err := NewCartridge(rom)
	require.Error(t, err)

	var invalid *InvalidCartridge
	require.ErrorAs(t, err, &invalid)
}

func TestNewCartridge_headerChecksumMismatch(t *testing.T) {
	rom := validHeaderROM("TESTGAME")
	rom[headerChecksumAddress] ^= 0xFF

	_, err := NewCartridge(rom)
	require.Error(t, err)
}

func TestNewCartridge_titleStopsAtNullByte(t *testing.T) {
	rom := validHeaderROM("AB\x00ZZZZZ")
	cart, err := NewCartridge(rom)
	require.NoError(t, err)
	assert.Equal(t, "AB", cart.Title)
}
