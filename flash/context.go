// Package flash orchestrates read/write/erase/verify operations over a
// probed chip: chunking, retry/backoff, region masking, and layout-aware
// bulk operations. It is the top-level entry point consumers of flashcore
// use; everything below it (protocol, erase, wp, layout) is reachable but
// not meant to be driven directly once a Context exists.
package flash

import (
	"github.com/spiflash/flashcore/chip"
	"github.com/spiflash/flashcore/layout"
	"github.com/spiflash/flashcore/programmer"
)

// AddressMode is the chip's current addressing width.
type AddressMode int

const (
	ThreeByte AddressMode = iota
	FourByte
)

// ProgressEvent reports chunked-operation progress to a caller-supplied
// sink (§4.5); Sink may be nil, in which case no events are emitted.
type ProgressEvent struct {
	Done, Total uint32
}

// Sink receives ProgressEvents. A nil Sink is valid and simply means no
// caller wants progress reporting.
type Sink func(ProgressEvent)

// Context is the runtime state for an attached chip: the descriptor,
// current addressing mode, an optional layout, and the write policy flags.
// It does not record the chip's write-protection state; wp.ReadStatus reads
// that from the chip on demand. Created by Probe; consumed by every operation in this
// package; holds no ownership over the transport (passed by exclusive
// reference per operation, per §3's ownership model).
type Context struct {
	Chip           *chip.Descriptor
	AddressMode    AddressMode
	UseNative4B    bool // true if the chip has native 4-byte opcodes, vs. an EN4B/EX4B mode switch
	Layout         *layout.Layout
	NoErase        bool // §4.5 --no-erase: skip the pre-write erase plan
	Verify         bool // §4.5 verify flag, default on
	AllowDangerous bool
}

// FourByteMode reports whether the context is currently addressing with
// 4-byte opcodes/address phases.
func (c *Context) FourByteMode() bool { return c.AddressMode == FourByte }

// IsValidRange reports whether [addr, addr+length) lies within the chip.
func (c *Context) IsValidRange(addr, length uint32) bool {
	end := uint64(addr) + uint64(length)
	return end <= uint64(c.Chip.TotalSize)
}

// SetLayout attaches l to the context for subsequent region-masked and
// layout-aware operations.
func (c *Context) SetLayout(l *layout.Layout) { c.Layout = l }

// maxReadChunk bounds a single Read/Write chunk by both the
// programmer's capability and a chip-level cap — §4.5's
// min(programmer.max_read_len, chip.max_read_chunk). The core has no
// separate per-chip chunk cap beyond the programmer's own, so this
// reduces to the programmer capability alone; kept as a named helper so a
// future chip-level cap has one place to plug in.
func maxReadChunk(caps programmer.Capabilities) int {
	if caps.MaxReadLen <= 0 {
		return 256
	}
	return caps.MaxReadLen
}
