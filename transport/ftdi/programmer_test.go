package ftdi

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/spiflash/flashcore/spi"
)

func TestCapabilitiesSingleWireOnly(t *testing.T) {
	p := &Programmer{}
	caps := p.Capabilities()
	assert.Equal(t, []spi.IoMode{spi.Single}, caps.SupportedIoModes)
	assert.Equal(t, 256, caps.MaxWriteLen)
}

func TestProbeOpcodeAcceptsEverything(t *testing.T) {
	p := &Programmer{}
	assert.True(t, p.ProbeOpcode(0x9F))
	assert.True(t, p.ProbeOpcode(0xFF))
}

func TestDelayUsSleepsApproximately(t *testing.T) {
	p := &Programmer{}
	start := time.Now()
	p.DelayUs(1000)
	assert.GreaterOrEqual(t, time.Since(start), time.Millisecond)
}

func TestExecuteRejectsNonSingleIoMode(t *testing.T) {
	p := &Programmer{}
	err := p.Execute(&spi.Command{Opcode: 0x9F, IoMode: spi.QuadIO})
	assert.Error(t, err)
}
