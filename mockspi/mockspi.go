// Package mockspi provides an in-memory programmer.Programmer test double
// for exercising the protocol, erase, wp, and flash packages without real
// hardware, grounded in rflasher-core's flash/operations.rs MockFlash.
package mockspi

import (
	"sync"

	"github.com/spiflash/flashcore/flasherr"
	"github.com/spiflash/flashcore/programmer"
	"github.com/spiflash/flashcore/spi"
)

// Op records one logged transaction for test assertions.
type Op struct {
	Opcode byte
	Addr   uint32
	Length int
}

// Flash simulates a SPI NOR flash chip's memory and status registers.
// Erased bytes read as 0xFF; page programs only clear bits (AND), matching
// real flash semantics; erase opcodes set their target region back to
// 0xFF.
type Flash struct {
	mu sync.Mutex

	memory []byte
	sr1    byte
	sr2    byte
	sr3    byte

	mfg byte
	dev uint16

	caps programmer.Capabilities

	// EraseSizes maps an erase opcode to the byte length it clears. Unset
	// opcodes fail with UnsupportedOpcode.
	EraseSizes map[byte]uint32

	// FailNextTransient, if > 0, makes the next N Execute calls fail with
	// a Transient TransportError before clearing, for retry testing.
	FailNextTransient int

	Reads  []Op
	Writes []Op
	Erases []Op

	busyUntilCall int // Execute call count at which WIP clears; 0 = never busy
	callCount     int
}

// New creates an all-0xFF flash of the given size, reporting the given
// JEDEC manufacturer/device bytes from RDID.
func New(size int, mfg byte, dev uint16) *Flash {
	f := &Flash{
		memory: make([]byte, size),
		mfg:    mfg,
		dev:    dev,
		caps: programmer.Capabilities{
			MaxReadLen:  4096,
			MaxWriteLen: 256,
		},
		EraseSizes: map[byte]uint32{
			spi.OpSE4K:  4096,
			spi.OpBE32K: 32 * 1024,
			spi.OpBE64K: 64 * 1024,
			spi.OpCE60:  uint32(size),
			spi.OpCEC7:  uint32(size),
		},
	}
	for i := range f.memory {
		f.memory[i] = 0xFF
	}
	return f
}

// WithContents seeds a byte range of the simulated memory.
func (f *Flash) WithContents(addr uint32, data []byte) *Flash {
	copy(f.memory[addr:], data)
	return f
}

// Contents returns a copy of the simulated memory.
func (f *Flash) Contents() []byte {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]byte, len(f.memory))
	copy(out, f.memory)
	return out
}

// Capabilities implements programmer.Programmer.
func (f *Flash) Capabilities() programmer.Capabilities { return f.caps }

// ProbeOpcode implements programmer.Programmer; mockspi accepts every
// opcode it has logic for and rejects the rest.
func (f *Flash) ProbeOpcode(opcode byte) bool {
	switch opcode {
	case spi.OpRDID, spi.OpRDSR, spi.OpRDSR2, spi.OpRDSR3,
		spi.OpWRSR, spi.OpWRSR2, spi.OpWRSR3,
		spi.OpWREN, spi.OpWRDI, spi.OpEWSR,
		spi.OpREAD, spi.OpREAD4B, spi.OpFastRead, spi.OpFastRead4B, spi.OpPP, spi.OpPP4B,
		spi.OpEN4B, spi.OpEX4B, spi.OpRSTEN, spi.OpRST:
		return true
	default:
		_, ok := f.EraseSizes[opcode]
		return ok
	}
}

// DelayUs is a no-op: the mock has no real polling latency to simulate.
func (f *Flash) DelayUs(uint32) {}

// Execute implements programmer.Programmer.
func (f *Flash) Execute(cmd *spi.Command) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.callCount++
	if f.FailNextTransient > 0 {
		f.FailNextTransient--
		return &flasherr.TransportError{Kind: flasherr.Transient, Detail: "mock induced failure"}
	}

	switch cmd.Opcode {
	case spi.OpRDID:
		buf := cmd.ReadBuf
		if len(buf) > 0 {
			buf[0] = f.mfg
		}
		if len(buf) > 2 {
			buf[1] = byte(f.dev >> 8)
			buf[2] = byte(f.dev)
		}
		return nil

	case spi.OpRDSR:
		if len(cmd.ReadBuf) > 0 {
			cmd.ReadBuf[0] = f.statusWIP()
		}
		return nil
	case spi.OpRDSR2:
		if len(cmd.ReadBuf) > 0 {
			cmd.ReadBuf[0] = f.sr2
		}
		return nil
	case spi.OpRDSR3:
		if len(cmd.ReadBuf) > 0 {
			cmd.ReadBuf[0] = f.sr3
		}
		return nil

	case spi.OpWREN:
		f.sr1 |= spi.SR1WEL
		return nil
	case spi.OpWRDI, spi.OpEWSR:
		f.sr1 &^= spi.SR1WEL
		return nil

	case spi.OpWRSR:
		if len(cmd.WriteData) > 0 {
			f.sr1 = cmd.WriteData[0]
		}
		if len(cmd.WriteData) > 1 {
			f.sr2 = cmd.WriteData[1]
		}
		f.sr1 &^= spi.SR1WEL
		return nil
	case spi.OpWRSR2:
		if len(cmd.WriteData) > 0 {
			f.sr2 = cmd.WriteData[0]
		}
		return nil
	case spi.OpWRSR3:
		if len(cmd.WriteData) > 0 {
			f.sr3 = cmd.WriteData[0]
		}
		return nil

	case spi.OpREAD, spi.OpREAD4B, spi.OpFastRead, spi.OpFastRead4B:
		addr := addrOf(cmd)
		n := len(cmd.ReadBuf)
		f.Reads = append(f.Reads, Op{Opcode: cmd.Opcode, Addr: addr, Length: n})
		if n > 0 && int(addr)+n <= len(f.memory) {
			copy(cmd.ReadBuf, f.memory[addr:int(addr)+n])
		}
		return nil

	case spi.OpPP, spi.OpPP4B:
		addr := addrOf(cmd)
		data := cmd.WriteData
		f.Writes = append(f.Writes, Op{Opcode: cmd.Opcode, Addr: addr, Length: len(data)})
		if int(addr)+len(data) <= len(f.memory) {
			for i, b := range data {
				f.memory[int(addr)+i] &= b
			}
		}
		f.sr1 &^= spi.SR1WEL
		return nil

	case spi.OpEN4B, spi.OpEX4B, spi.OpRSTEN, spi.OpRST:
		return nil

	default:
		if size, ok := f.EraseSizes[cmd.Opcode]; ok {
			addr := addrOf(cmd)
			f.Erases = append(f.Erases, Op{Opcode: cmd.Opcode, Addr: addr, Length: int(size)})
			end := int(addr) + int(size)
			if end > len(f.memory) {
				end = len(f.memory)
			}
			for i := int(addr); i < end; i++ {
				f.memory[i] = 0xFF
			}
			f.sr1 &^= spi.SR1WEL
			return nil
		}
		return &flasherr.UnsupportedOpcode{Opcode: cmd.Opcode}
	}
}

func (f *Flash) statusWIP() byte {
	return f.sr1 &^ spi.SR1WIP // the mock never reports busy; writes/erases complete synchronously
}

func addrOf(cmd *spi.Command) uint32 {
	if cmd.Address == nil {
		return 0
	}
	return *cmd.Address
}
