package flash

import (
	"github.com/spiflash/flashcore/flasherr"
	"github.com/spiflash/flashcore/programmer"
)

// ReadOpaque fills out with bytes from addr, driving m directly rather than
// going through Probe/Context at all — §6.2/§9's opaque backend bypasses
// §4.2-§4.6 (protocol, erase planning, write protection) entirely, since an
// OpaqueMaster already does its own chunking and addressing underneath.
func ReadOpaque(m programmer.OpaqueMaster, addr uint32, out []byte, sink Sink) error {
	total := uint32(len(out))
	if err := validOpaqueRange(m, addr, total); err != nil {
		return err
	}
	if err := m.Read(addr, out); err != nil {
		return err
	}
	if sink != nil {
		sink(ProgressEvent{Done: total, Total: total})
	}
	return nil
}

// WriteOpaque programs data at addr via m. Unless noErase is set, it erases
// [addr, addr+len(data)) first — an OpaqueMaster advertises its own erase
// granularity internally, so no erase plan is computed here, unlike Write's
// SPI path.
func WriteOpaque(m programmer.OpaqueMaster, addr uint32, data []byte, noErase bool, sink Sink) error {
	total := uint32(len(data))
	if err := validOpaqueRange(m, addr, total); err != nil {
		return err
	}
	if !noErase {
		if err := m.Erase(addr, total); err != nil {
			return err
		}
	}
	if err := m.Write(addr, data); err != nil {
		return err
	}
	if sink != nil {
		sink(ProgressEvent{Done: total, Total: total})
	}
	return nil
}

// EraseOpaque erases [addr, addr+length) via m.
func EraseOpaque(m programmer.OpaqueMaster, addr, length uint32) error {
	if err := validOpaqueRange(m, addr, length); err != nil {
		return err
	}
	return m.Erase(addr, length)
}

// VerifyOpaque reads [addr, addr+len(expected)) via m and compares it
// byte-for-byte, reusing the same mismatch-reporting Verify does.
func VerifyOpaque(m programmer.OpaqueMaster, addr uint32, expected []byte) error {
	got := make([]byte, len(expected))
	if err := ReadOpaque(m, addr, got, nil); err != nil {
		return err
	}
	return compareVerify(expected, got)
}

func validOpaqueRange(m programmer.OpaqueMaster, addr, length uint32) error {
	if uint64(addr)+uint64(length) > uint64(m.Size()) {
		return &flasherr.RangeOutOfBounds{Start: addr, Length: length, ChipSize: uint32(m.Size())}
	}
	return nil
}

// SpiBackend pairs the raw-SPI Programmer with the Context probe produced
// for it — the half of Backend that goes through §4.2-§4.6.
type SpiBackend struct {
	Programmer programmer.Programmer
	Context    *Context
}

// Backend is the sum type §9 ("Two backends") describes: a flash operation
// is driven either through the SPI protocol/probe/erase-planner/WP stack via
// Spi, or directly through a pre-built OpaqueMaster via Opaque, which
// bypasses all of that. Exactly one field is set; orchestration dispatches
// on which.
type Backend struct {
	Spi    *SpiBackend
	Opaque programmer.OpaqueMaster
}

// Read dispatches to the SPI or opaque Read path depending on which backend
// is populated.
func (b Backend) Read(addr uint32, out []byte, sink Sink) error {
	if b.Opaque != nil {
		return ReadOpaque(b.Opaque, addr, out, sink)
	}
	return Read(b.Spi.Programmer, b.Spi.Context, addr, out, sink)
}

// Write dispatches to the SPI or opaque Write path. noErase only applies to
// the opaque path's own erase-before-write step; the SPI path's erase
// behavior is controlled by its Context.NoErase.
func (b Backend) Write(addr uint32, data []byte, noErase bool, sink Sink) error {
	if b.Opaque != nil {
		return WriteOpaque(b.Opaque, addr, data, noErase, sink)
	}
	return Write(b.Spi.Programmer, b.Spi.Context, addr, data, sink)
}

// Erase dispatches to the SPI or opaque Erase path.
func (b Backend) Erase(addr, length uint32) error {
	if b.Opaque != nil {
		return EraseOpaque(b.Opaque, addr, length)
	}
	return Erase(b.Spi.Programmer, b.Spi.Context, addr, length)
}

// Verify dispatches to the SPI or opaque Verify path.
func (b Backend) Verify(addr uint32, expected []byte) error {
	if b.Opaque != nil {
		return VerifyOpaque(b.Opaque, addr, expected)
	}
	return Verify(b.Spi.Programmer, b.Spi.Context, addr, expected)
}
