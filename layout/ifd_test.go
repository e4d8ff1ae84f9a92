package layout

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildIfdFixture lays out the §8 scenario S5 image: descriptor
// [0,0xFFF], bios [0x1000,0x7FFFFF], me [0x800000,0xFFFFFF], FRBA=0x40, NR=3.
// Bytes beyond the NR=3 region table (reserved space) are left zeroed rather
// than filled with the 0xFFFFFFFF sentinel, so the test only passes if
// ParseIfd actually bounds its scan to NR and never reads past it.
func buildIfdFixture() []byte {
	data := make([]byte, 0x1000)
	binary.LittleEndian.PutUint32(data[ifdSignatureOffset:], ifdSignature)

	flmap0 := uint32(3<<24) | uint32(0x04<<16) // NR=3, FRBA field 0x04 -> FRBA=0x40
	binary.LittleEndian.PutUint32(data[ifdFlmap0Offset:], flmap0)

	binary.LittleEndian.PutUint32(data[0x40:], 0x00000000)          // descriptor: base=0,limit field 0 -> 0xFFF
	binary.LittleEndian.PutUint32(data[0x44:], (0x07FF<<16)|0x0001) // bios
	binary.LittleEndian.PutUint32(data[0x48:], (0x0FFF<<16)|0x0800) // me
	return data
}

func TestParseIfdS5(t *testing.T) {
	data := buildIfdFixture()
	require.True(t, HasIfd(data))

	l, err := ParseIfd(data)
	require.NoError(t, err)
	require.Len(t, l.Regions, 3)

	assert.Equal(t, "descriptor", l.Regions[0].Name)
	assert.Equal(t, uint32(0), l.Regions[0].Start)
	assert.Equal(t, uint32(0xFFF), l.Regions[0].End)
	assert.True(t, l.Regions[0].Readonly)
	assert.True(t, l.Regions[0].Dangerous)

	assert.Equal(t, "bios", l.Regions[1].Name)
	assert.Equal(t, uint32(0x1000), l.Regions[1].Start)
	assert.Equal(t, uint32(0x7FFFFF), l.Regions[1].End)
	assert.False(t, l.Regions[1].Dangerous)

	assert.Equal(t, "me", l.Regions[2].Name)
	assert.Equal(t, uint32(0x800000), l.Regions[2].Start)
	assert.Equal(t, uint32(0xFFFFFF), l.Regions[2].End)
	assert.True(t, l.Regions[2].Dangerous)
}

// A zeroed region-table entry decodes to a valid-looking base=0, limit=0xFFF
// region rather than tripping the old 0xFFFFFFFF/base>limit heuristics, so
// this only passes if ParseIfd stops at NR instead of scanning all sixteen
// slots.
func TestParseIfdStopsAtNR(t *testing.T) {
	data := make([]byte, 0x1000)
	binary.LittleEndian.PutUint32(data[ifdSignatureOffset:], ifdSignature)

	flmap0 := uint32(2<<24) | uint32(0x04<<16) // NR=2, FRBA=0x40
	binary.LittleEndian.PutUint32(data[ifdFlmap0Offset:], flmap0)

	binary.LittleEndian.PutUint32(data[0x40:], 0x00000000)          // descriptor
	binary.LittleEndian.PutUint32(data[0x44:], (0x07FF<<16)|0x0001) // bios
	// slots beyond NR (index 2 onward) are left zeroed, which freg would
	// otherwise decode as a present region [0, 0xFFF].

	l, err := ParseIfd(data)
	require.NoError(t, err)
	require.Len(t, l.Regions, 2)
	assert.Equal(t, "descriptor", l.Regions[0].Name)
	assert.Equal(t, "bios", l.Regions[1].Name)
}

func TestParseIfdRejectsMissingSignature(t *testing.T) {
	data := make([]byte, 0x1000)
	_, err := ParseIfd(data)
	assert.Error(t, err)
}
