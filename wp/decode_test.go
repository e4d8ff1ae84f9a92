package wp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spiflash/flashcore/chip"
	"github.com/spiflash/flashcore/flasherr"
)

const w25q128Features = chip.FeatWrsrWren | chip.FeatWrsrExt | chip.FeatStatusReg2 | chip.FeatQeSR2 |
	chip.FeatWpTB | chip.FeatWpSEC | chip.FeatWpCMP | chip.FeatWpSRL | chip.FeatWpVolatile

// S4: SR1=0x1C (BP2=BP1=BP0=1), SR2=0, TB=0 decodes to the top half of a
// 16 MiB chip protected, despite BP=7 conventionally meaning "whole chip".
func TestDecodeS4TopHalfProtected(t *testing.T) {
	const totalSize = 16 * 1024 * 1024
	got, err := Decode(0x1C, 0x00, totalSize, chip.DecoderSpi25Standard, w25q128Features)
	require.NoError(t, err)
	assert.Equal(t, Range{Start: 0x800000, End: 0x1000000}, got)
}

func TestDecodeNoProtection(t *testing.T) {
	got, err := Decode(0x00, 0x00, 16*1024*1024, chip.DecoderSpi25Standard, w25q128Features)
	require.NoError(t, err)
	assert.Equal(t, None, got)
	assert.False(t, got.IsProtected())
}

func TestDecodeBottomProtection(t *testing.T) {
	const totalSize = 16 * 1024 * 1024
	// BP=1, TB=1: protect the bottom N/64.
	got, err := Decode(0x04|0x20, 0x00, totalSize, chip.DecoderSpi25Standard, w25q128Features)
	require.NoError(t, err)
	assert.Equal(t, Range{Start: 0, End: totalSize / 64}, got)
}

func TestDecodeCmpInversion(t *testing.T) {
	const totalSize = 16 * 1024 * 1024
	plain, err := Decode(0x04, 0x00, totalSize, chip.DecoderSpi25Standard, w25q128Features)
	require.NoError(t, err)
	inverted, err := Decode(0x04, 0x40, totalSize, chip.DecoderSpi25Standard, w25q128Features)
	require.NoError(t, err)
	assert.Equal(t, plain.Start, inverted.End)
	assert.Equal(t, uint32(0), inverted.Start)
}

// TestDecode64KBlockFamily covers DecoderSpi25_64KBlock's fixed absolute
// table, which — unlike DecoderSpi25Standard — does not scale with chip
// size and maps bp==7 directly to the whole chip rather than aliasing
// bp==6's value.
func TestDecode64KBlockFamily(t *testing.T) {
	const totalSize = 16 * 1024 * 1024
	features := chip.FeatWpTB | chip.FeatWpCMP

	got, err := Decode(0x04, 0x00, totalSize, chip.DecoderSpi25_64KBlock, features) // bp=1
	require.NoError(t, err)
	assert.Equal(t, Range{Start: totalSize - 64*1024, End: totalSize}, got)

	got, err = Decode(0x1C, 0x00, totalSize, chip.DecoderSpi25_64KBlock, features) // bp=7
	require.NoError(t, err)
	assert.Equal(t, Range{Start: 0, End: totalSize}, got, "bp=7 covers the whole chip, unlike the standard family's alias")
}

// TestDecodeUnsupportedFamilyRejected covers §9's resolution of the WP
// family open question: a chip whose WpDecoder tag names a decoder this
// package has no table for is refused, not silently decoded through the
// wrong table.
func TestDecodeUnsupportedFamilyRejected(t *testing.T) {
	_, err := Decode(0x04, 0x00, 16*1024*1024, chip.RangeDecoder("unknown-family"), w25q128Features)
	require.Error(t, err)
	var famErr *flasherr.WpUnsupportedFamily
	assert.ErrorAs(t, err, &famErr)
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	const totalSize = 16 * 1024 * 1024
	want := Range{Start: 0, End: totalSize / 64}
	sr1, sr2, err := Encode(want, totalSize, chip.DecoderSpi25Standard, w25q128Features)
	require.NoError(t, err)
	got, err := Decode(sr1, sr2, totalSize, chip.DecoderSpi25Standard, w25q128Features)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestEncodeUnrepresentableRange(t *testing.T) {
	const totalSize = 16 * 1024 * 1024
	_, _, err := Encode(Range{Start: 100, End: 12345}, totalSize, chip.DecoderSpi25Standard, w25q128Features)
	assert.Error(t, err)
}

func TestEncodeUnsupportedFamilyRejected(t *testing.T) {
	_, _, err := Encode(Range{Start: 0, End: 100}, 16*1024*1024, chip.RangeDecoder("unknown-family"), w25q128Features)
	require.Error(t, err)
	var famErr *flasherr.WpUnsupportedFamily
	assert.ErrorAs(t, err, &famErr)
}

func TestListRangesDeduplicated(t *testing.T) {
	const totalSize = 16 * 1024 * 1024
	ranges, err := ListRanges(totalSize, chip.DecoderSpi25Standard, w25q128Features)
	require.NoError(t, err)
	seen := make(map[Range]bool)
	for _, r := range ranges {
		assert.False(t, seen[r], "duplicate range %v in ListRanges output", r)
		seen[r] = true
	}
	assert.Contains(t, ranges, None)
}

func TestListRangesUnsupportedFamilyRejected(t *testing.T) {
	_, err := ListRanges(16*1024*1024, chip.RangeDecoder("unknown-family"), w25q128Features)
	require.Error(t, err)
	var famErr *flasherr.WpUnsupportedFamily
	assert.ErrorAs(t, err, &famErr)
}

func TestModeFromBits(t *testing.T) {
	assert.Equal(t, Disabled, ModeFromBits(false, false))
	assert.Equal(t, Hardware, ModeFromBits(false, true))
	assert.Equal(t, PowerCycle, ModeFromBits(true, false))
	assert.Equal(t, Permanent, ModeFromBits(true, true))
	assert.False(t, Disabled.HwEnforced())
	assert.True(t, Hardware.HwEnforced())
}

func TestCheckWPS(t *testing.T) {
	assert.NoError(t, CheckWPS(0x80, false))
	assert.NoError(t, CheckWPS(0x00, true))
	assert.Error(t, CheckWPS(0x80, true))
}
