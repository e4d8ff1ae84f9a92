// Package programmer defines the capability and execution contract the
// flashcore core consumes from a concrete SPI transport, plus the opaque
// variant for controllers that bypass raw SPI entirely.
package programmer

import (
	"github.com/spiflash/flashcore/spi"
)

// Features is a bitset of capabilities a Programmer advertises.
type Features uint32

const (
	FeatFourByteAddr Features = 1 << iota
	FeatDualInput
	FeatDualOutput
	FeatQuadInput
	FeatQuadOutput
	FeatQPI
)

// Has reports whether all bits in want are set.
func (f Features) Has(want Features) bool { return f&want == want }

// Capabilities describes what a Programmer supports, queried once by the
// protocol layer at context construction (§9 "Capability polymorphism").
type Capabilities struct {
	MaxReadLen        int
	MaxWriteLen       int
	SupportedFeatures Features
	SupportedIoModes  []spi.IoMode
}

// SupportsIoMode reports whether mode appears in the capability set.
func (c Capabilities) SupportsIoMode(mode spi.IoMode) bool {
	for _, m := range c.SupportedIoModes {
		if m == mode {
			return true
		}
	}
	return false
}

// Programmer executes one SpiCommand at a time, synchronously with respect
// to the caller. Implementations are single-threaded: callers hold a
// Programmer by exclusive reference for the duration of an operation.
type Programmer interface {
	// Capabilities returns the programmer's capability descriptor.
	Capabilities() Capabilities
	// Execute performs a single SpiCommand and fills cmd.ReadBuf in place.
	Execute(cmd *spi.Command) error
	// ProbeOpcode reports whether opcode is allowed on this programmer.
	// Most programmers accept everything; restricted backends (e.g. an
	// Intel internal flash controller) override this.
	ProbeOpcode(opcode byte) bool
	// DelayUs blocks the calling goroutine for the given microseconds.
	DelayUs(us uint32)
}

// OpaqueMaster is the interface exposed by controllers that do not expose
// raw SPI access, only address-level read/write/erase. The orchestrator
// treats an OpaqueMaster as a pre-built backend, bypassing probe, the
// SPI25 protocol layer, and the write-protection decoder entirely.
type OpaqueMaster interface {
	Size() int64
	Read(addr uint32, buf []byte) error
	Write(addr uint32, data []byte) error
	Erase(addr uint32, length uint32) error
}
