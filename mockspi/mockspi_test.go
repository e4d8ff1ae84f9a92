package mockspi

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spiflash/flashcore/spi"
)

func TestReadWriteErase(t *testing.T) {
	f := New(64*1024, 0xEF, 0x4018)

	buf := make([]byte, 3)
	addr := uint32(0)
	require.NoError(t, f.Execute(&spi.Command{Opcode: spi.OpRDID, ReadBuf: buf}))
	assert.Equal(t, byte(0xEF), buf[0])

	data := []byte{0x01, 0x02, 0x03}
	require.NoError(t, f.Execute(&spi.Command{Opcode: spi.OpPP, Address: &addr, WriteData: data}))

	readback := make([]byte, 3)
	require.NoError(t, f.Execute(&spi.Command{Opcode: spi.OpREAD, Address: &addr, ReadBuf: readback}))
	assert.Equal(t, data, readback)

	require.NoError(t, f.Execute(&spi.Command{Opcode: spi.OpSE4K, Address: &addr}))
	require.NoError(t, f.Execute(&spi.Command{Opcode: spi.OpREAD, Address: &addr, ReadBuf: readback}))
	assert.Equal(t, []byte{0xFF, 0xFF, 0xFF}, readback)
}

func TestProgramOnlyClearsBits(t *testing.T) {
	f := New(4096, 0xEF, 0x4018)
	addr := uint32(0)
	require.NoError(t, f.Execute(&spi.Command{Opcode: spi.OpPP, Address: &addr, WriteData: []byte{0x0F}}))
	require.NoError(t, f.Execute(&spi.Command{Opcode: spi.OpPP, Address: &addr, WriteData: []byte{0xF0}}))
	readback := make([]byte, 1)
	require.NoError(t, f.Execute(&spi.Command{Opcode: spi.OpREAD, Address: &addr, ReadBuf: readback}))
	assert.Equal(t, byte(0x00), readback[0])
}

func TestFailNextTransient(t *testing.T) {
	f := New(4096, 0xEF, 0x4018)
	f.FailNextTransient = 1
	addr := uint32(0)
	buf := make([]byte, 1)
	err := f.Execute(&spi.Command{Opcode: spi.OpREAD, Address: &addr, ReadBuf: buf})
	assert.Error(t, err)
	err = f.Execute(&spi.Command{Opcode: spi.OpREAD, Address: &addr, ReadBuf: buf})
	assert.NoError(t, err)
}

func TestUnsupportedOpcode(t *testing.T) {
	f := New(4096, 0xEF, 0x4018)
	err := f.Execute(&spi.Command{Opcode: 0xAB})
	assert.Error(t, err)
}
