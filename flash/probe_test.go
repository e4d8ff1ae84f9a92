package flash

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spiflash/flashcore/chip"
	"github.com/spiflash/flashcore/mockspi"
)

// TestProbeS1 reproduces §8 scenario S1: RDID response EF 40 18 identifies
// "W25Q128.V" and addresses it in 3-byte mode (its size sits exactly at the
// 16 MiB boundary, not past it).
func TestProbeS1(t *testing.T) {
	f := mockspi.New(16*1024*1024, chip.MfgWinbond, 0x4018)
	ctx, err := Probe(f, chip.StaticDatabase(), "")
	require.NoError(t, err)
	assert.Equal(t, "W25Q128.V", ctx.Chip.Name)
	assert.Equal(t, ThreeByte, ctx.AddressMode)
	assert.False(t, ctx.FourByteMode())
}

func TestProbeChipNotFound(t *testing.T) {
	f := mockspi.New(1024, 0xAA, 0xBBCC)
	_, err := Probe(f, chip.StaticDatabase(), "")
	assert.Error(t, err)
}

func TestProbeChipMismatch(t *testing.T) {
	f := mockspi.New(16*1024*1024, chip.MfgWinbond, 0x4018)
	_, err := Probe(f, chip.StaticDatabase(), "W25Q32JV")
	assert.Error(t, err)
}
