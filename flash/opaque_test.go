package flash

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeOpaque is a minimal in-memory programmer.OpaqueMaster, standing in
// for a controller like an MTD device that exposes read/write/erase at an
// address without any SPI protocol underneath.
type fakeOpaque struct {
	data []byte
}

func newFakeOpaque(size int) *fakeOpaque {
	data := make([]byte, size)
	for i := range data {
		data[i] = 0xFF
	}
	return &fakeOpaque{data: data}
}

func (f *fakeOpaque) Size() int64 { return int64(len(f.data)) }

func (f *fakeOpaque) Read(addr uint32, buf []byte) error {
	copy(buf, f.data[addr:])
	return nil
}

func (f *fakeOpaque) Write(addr uint32, data []byte) error {
	copy(f.data[addr:], data)
	return nil
}

func (f *fakeOpaque) Erase(addr uint32, length uint32) error {
	for i := addr; i < addr+length; i++ {
		f.data[i] = 0xFF
	}
	return nil
}

func TestWriteOpaqueReadRoundTrip(t *testing.T) {
	m := newFakeOpaque(4096)
	data := []byte{0xDE, 0xAD, 0xBE, 0xEF}

	require.NoError(t, WriteOpaque(m, 0x100, data, false, nil))

	out := make([]byte, len(data))
	require.NoError(t, ReadOpaque(m, 0x100, out, nil))
	assert.Equal(t, data, out)
}

func TestWriteOpaqueEraseStaysWithinWrittenRange(t *testing.T) {
	m := newFakeOpaque(4096)
	require.NoError(t, m.Write(0x100, []byte{0x01, 0x02, 0x03, 0x04}))

	require.NoError(t, WriteOpaque(m, 0x100, []byte{0xAA, 0xAA}, false, nil))
	assert.Equal(t, []byte{0xAA, 0xAA, 0x03, 0x04}, m.data[0x100:0x104], "erase covers only the written bytes; the rest is untouched")
}

func TestOpaqueRangeOutOfBoundsRejected(t *testing.T) {
	m := newFakeOpaque(4096)
	out := make([]byte, 16)
	err := ReadOpaque(m, 4090, out, nil)
	assert.Error(t, err)
}

func TestOpaqueVerifyDetectsMismatch(t *testing.T) {
	m := newFakeOpaque(4096)
	require.NoError(t, WriteOpaque(m, 0, []byte{0x01, 0x02, 0x03}, false, nil))
	err := VerifyOpaque(m, 0, []byte{0x01, 0xFF, 0x03})
	assert.Error(t, err)
}

func TestBackendDispatchesOpaque(t *testing.T) {
	m := newFakeOpaque(4096)
	b := Backend{Opaque: m}

	require.NoError(t, b.Write(0x10, []byte{0x42}, false, nil))
	out := make([]byte, 1)
	require.NoError(t, b.Read(0x10, out, nil))
	assert.Equal(t, byte(0x42), out[0])
	assert.NoError(t, b.Verify(0x10, []byte{0x42}))
}

func TestBackendDispatchesSpi(t *testing.T) {
	f, ctx := testContext(t)
	ctx.NoErase = true
	b := Backend{Spi: &SpiBackend{Programmer: f, Context: ctx}}

	require.NoError(t, b.Write(0, []byte{0x7E}, false, nil))
	out := make([]byte, 1)
	require.NoError(t, b.Read(0, out, nil))
	assert.Equal(t, byte(0x7E), out[0])
}
