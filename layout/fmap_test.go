package layout

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildFmapFixture() []byte {
	data := make([]byte, 0x1000)
	for i := range data {
		data[i] = 0xFF
	}

	const off = 0x100
	copy(data[off:], fmapSignature)
	data[off+8] = 1 // ver_major
	data[off+9] = 0 // ver_minor
	binary.LittleEndian.PutUint64(data[off+10:], 0)
	binary.LittleEndian.PutUint32(data[off+18:], 0x1000)
	copy(data[off+22:], []byte("TEST_FMAP\x00"))
	binary.LittleEndian.PutUint16(data[off+54:], 2)

	area0 := off + fmapHeaderSize
	binary.LittleEndian.PutUint32(data[area0:], 0x000)
	binary.LittleEndian.PutUint32(data[area0+4:], 0x200)
	copy(data[area0+8:], []byte("RO_SECTION\x00"))
	binary.LittleEndian.PutUint16(data[area0+40:], 0x02) // RO bit

	area1 := area0 + fmapAreaSize
	binary.LittleEndian.PutUint32(data[area1:], 0x200)
	binary.LittleEndian.PutUint32(data[area1+4:], 0xE00)
	copy(data[area1+8:], []byte("RW_SECTION\x00"))
	binary.LittleEndian.PutUint16(data[area1+40:], 0)

	return data
}

func TestParseFmap(t *testing.T) {
	data := buildFmapFixture()
	require.True(t, HasFmap(data))
	assert.Equal(t, 0x100, FindFmap(data))

	l, err := ParseFmap(data)
	require.NoError(t, err)
	require.Len(t, l.Regions, 2)

	assert.Equal(t, "RO_SECTION", l.Regions[0].Name)
	assert.Equal(t, uint32(0), l.Regions[0].Start)
	assert.Equal(t, uint32(0x1FF), l.Regions[0].End)
	assert.True(t, l.Regions[0].Readonly)

	assert.Equal(t, "RW_SECTION", l.Regions[1].Name)
	assert.False(t, l.Regions[1].Readonly)
}

func TestParseFmapRejectsUnsupportedVersion(t *testing.T) {
	data := buildFmapFixture()
	data[0x100+8] = 2 // ver_major
	_, err := ParseFmap(data)
	assert.Error(t, err)
}
