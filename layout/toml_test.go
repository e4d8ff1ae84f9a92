package layout

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleLayout = `
[layout]
name = "My BIOS"
chip_size = "16 MiB"

[[region]]
name = "descriptor"
start = "0x000000"
end = "0x000FFF"
readonly = true

[[region]]
name = "bios"
start = "0x001000"
end = "0x7FFFFF"
`

func TestParseTomlLayout(t *testing.T) {
	l, err := ParseToml([]byte(sampleLayout))
	require.NoError(t, err)
	assert.Equal(t, "My BIOS", l.Name)
	assert.Equal(t, uint32(16*1024*1024), l.Size)
	require.Len(t, l.Regions, 2)
	assert.True(t, l.Regions[0].Readonly)
}

func TestParseTomlRejectsOverlap(t *testing.T) {
	const overlapping = `
[[region]]
name = "a"
start = "0x0000"
end = "0x1FFF"

[[region]]
name = "b"
start = "0x1000"
end = "0x2FFF"
`
	_, err := ParseToml([]byte(overlapping))
	assert.Error(t, err)
}

func TestParseTomlRejectsDuplicateName(t *testing.T) {
	const dup = `
[[region]]
name = "a"
start = "0x0000"
end = "0x0FFF"

[[region]]
name = "a"
start = "0x1000"
end = "0x1FFF"
`
	_, err := ParseToml([]byte(dup))
	assert.Error(t, err)
}

func TestParseTomlRejectsOutOfBounds(t *testing.T) {
	const oob = `
[layout]
chip_size = "4 KiB"

[[region]]
name = "a"
start = "0x0000"
end = "0x1FFF"
`
	_, err := ParseToml([]byte(oob))
	assert.Error(t, err)
}

func TestSerializeTomlRoundTrip(t *testing.T) {
	l, err := ParseToml([]byte(sampleLayout))
	require.NoError(t, err)

	data, err := SerializeToml(l)
	require.NoError(t, err)

	reparsed, err := ParseToml(data)
	require.NoError(t, err)
	assert.Equal(t, l.Regions, reparsed.Regions)
	assert.Equal(t, l.Size, reparsed.Size)
}
