package ftdi

import (
	"time"

	"periph.io/x/conn/v3/gpio"
	periphspi "periph.io/x/conn/v3/spi"

	"github.com/spiflash/flashcore/flasherr"
	"github.com/spiflash/flashcore/programmer"
	"github.com/spiflash/flashcore/spi"
)

// maxFtdiTx is the largest single MPSSE transaction the FT2232H's buffer
// comfortably supports (FTDI AN_108).
const maxFtdiTx = 65536

// Programmer implements programmer.Programmer over a periph.io SPI
// connection, grounded in the teacher's Flash.tx CS-toggling pattern.
// It only drives single-wire SPI: the FT2232H's MPSSE engine has no dual
// or quad I/O mode, so Execute rejects commands requesting one.
type Programmer struct {
	conn periphspi.Conn
	cs   gpio.PinIO
}

var _ programmer.Programmer = (*Programmer)(nil)

// Capabilities reports the FT2232H's practical limits: single-wire I/O
// only, and a transaction size capped by the MPSSE command buffer.
func (p *Programmer) Capabilities() programmer.Capabilities {
	return programmer.Capabilities{
		MaxReadLen:       maxFtdiTx - 5, // opcode + 4-byte address, worst case
		MaxWriteLen:      256,           // page program is the only bulk write opcode
		SupportedIoModes: []spi.IoMode{spi.Single},
	}
}

// ProbeOpcode accepts every opcode; the FTDI MPSSE engine has no
// opcode-level restriction, unlike an embedded flash controller.
func (p *Programmer) ProbeOpcode(byte) bool { return true }

// DelayUs blocks the calling goroutine for us microseconds.
func (p *Programmer) DelayUs(us uint32) {
	time.Sleep(time.Duration(us) * time.Microsecond)
}

// Execute performs cmd over the SPI connection, asserting CS for the
// duration of the transaction per the teacher's Flash.tx pattern.
func (p *Programmer) Execute(cmd *spi.Command) error {
	if cmd.IoMode != spi.Single {
		return &flasherr.IoModeNotSupported{Mode: cmd.IoMode}
	}

	addrBytes := cmd.AddressWidth.Bytes()
	dummyBytes := cmd.DummyCycles / 8
	payloadLen := len(cmd.WriteData)
	if len(cmd.ReadBuf) > payloadLen {
		payloadLen = len(cmd.ReadBuf)
	}

	buf := make([]byte, 1+addrBytes+dummyBytes+payloadLen)
	buf[0] = cmd.Opcode
	if cmd.Address != nil {
		cmd.AddressWidth.Encode(*cmd.Address, buf[1:1+addrBytes])
	}
	off := 1 + addrBytes + dummyBytes
	if len(cmd.WriteData) > 0 {
		copy(buf[off:], cmd.WriteData)
	}

	if err := p.tx(buf); err != nil {
		return &flasherr.TransportError{Kind: flasherr.Transient, Detail: "SPI transaction", Err: err}
	}

	if len(cmd.ReadBuf) > 0 {
		copy(cmd.ReadBuf, buf[off:off+len(cmd.ReadBuf)])
	}
	return nil
}

// tx wraps a full-duplex SPI exchange with CS assertion, exactly as the
// teacher's Flash.tx does.
func (p *Programmer) tx(buf []byte) (err error) {
	if err = p.cs.Out(gpio.Low); err != nil {
		return err
	}
	defer func() {
		if csErr := p.cs.Out(gpio.High); csErr != nil && err == nil {
			err = csErr
		}
	}()
	err = p.conn.Tx(buf, buf)
	return
}
