package flash

import (
	"bytes"
	"errors"

	"go.uber.org/multierr"

	"github.com/spiflash/flashcore/chip"
	"github.com/spiflash/flashcore/erase"
	"github.com/spiflash/flashcore/flasherr"
	"github.com/spiflash/flashcore/programmer"
	"github.com/spiflash/flashcore/protocol"
)

const (
	maxRetries  = 3
	maxPageSize = 256
)

// retryChunk runs fn up to maxRetries+1 times, retrying only on a transient
// TransportError, backing off 1ms * 2^attempt between attempts (§4.5).
func retryChunk(p programmer.Programmer, fn func() error) error {
	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		err := fn()
		if err == nil {
			return nil
		}
		lastErr = err

		var te *flasherr.TransportError
		if !errors.As(err, &te) || te.Kind != flasherr.Transient {
			return err
		}
		if attempt < maxRetries {
			p.DelayUs(uint32(1000 * (1 << attempt)))
		}
	}
	return lastErr
}

// Read fills out with bytes from [addr, addr+len(out)), chunked by the
// programmer's capability, with per-chunk retry and progress reporting.
func Read(p programmer.Programmer, c *Context, addr uint32, out []byte, sink Sink) error {
	total := uint32(len(out))
	if !c.IsValidRange(addr, total) {
		return &flasherr.RangeOutOfBounds{Start: addr, Length: total, ChipSize: c.Chip.TotalSize}
	}

	chunkSize := maxReadChunk(p.Capabilities())
	var done uint32
	for done < total {
		n := uint32(chunkSize)
		if remaining := total - done; n > remaining {
			n = remaining
		}
		cur := addr + done
		buf := out[done : done+n]
		if err := retryChunk(p, func() error {
			return protocol.Read(p, c.Chip.Features, c.FourByteMode(), cur, buf)
		}); err != nil {
			return err
		}
		done += n
		if sink != nil {
			sink(ProgressEvent{Done: done, Total: total})
		}
	}
	return nil
}

// Write programs data at addr. Unless c.NoErase, it erases the target
// range first — using the exact-range planner when the range is
// erase-aligned, or falling back to the region-aware read-modify-write
// planner when it isn't and a Layout is attached (§4.4's region supplement,
// e.g. a mid-block FMAP region reflash). Writes proceed in ≤256-byte
// page-aligned chunks that never cross a page boundary. If c.Verify, the
// written range is read back and compared.
func Write(p programmer.Programmer, c *Context, addr uint32, data []byte, sink Sink) error {
	total := uint32(len(data))
	if !c.IsValidRange(addr, total) {
		return &flasherr.RangeOutOfBounds{Start: addr, Length: total, ChipSize: c.Chip.TotalSize}
	}
	if err := c.checkRegionMask(addr, total); err != nil {
		return err
	}

	if !c.NoErase {
		if err := eraseForWrite(p, c, addr, total); err != nil {
			return err
		}
	}

	if err := writeChunks(p, c, addr, data, sink); err != nil {
		return err
	}

	if c.Verify {
		readback := make([]byte, total)
		if err := Read(p, c, addr, readback, nil); err != nil {
			return err
		}
		if err := compareVerify(data, readback); err != nil {
			return err
		}
	}
	return nil
}

// eraseForWrite plans and runs the pre-write erase for [addr, addr+length).
// When the range is exactly aligned to the chip's smallest erase block, it
// uses the exact-range planner (erase.Plan). When it isn't — e.g. a write
// that reflashes part of a layout region without touching the whole erase
// block it lives in — and a Layout is attached, it falls back to
// erase.PlanRegion/ExecuteRegion, which preserves the bytes outside
// [addr, addr+length) that share an erase block with it by reading them
// back before erasing and restoring them after. With no Layout attached, an
// unaligned range is still rejected: there is nothing to scope the
// read-modify-write to.
func eraseForWrite(p programmer.Programmer, c *Context, addr, length uint32) error {
	ops, err := erase.Plan(c.Chip.EraseBlocks, addr, addr+length, c.Chip.TotalSize)
	if err == nil {
		return erase.Execute(p, c.FourByteMode(), ops)
	}

	var unaligned *flasherr.UnalignedRange
	if !errors.As(err, &unaligned) || c.Layout == nil {
		return err
	}

	blocks, err := erase.PlanRegion(c.Chip.EraseBlocks, addr, addr+length)
	if err != nil {
		return err
	}
	read := func(a uint32, buf []byte) error { return Read(p, c, a, buf, nil) }
	write := func(a uint32, buf []byte) error { return writeChunks(p, c, a, buf, nil) }
	return erase.ExecuteRegion(p, c.FourByteMode(), blocks, addr, addr+length, read, write)
}

// writeChunks programs data at addr in ≤256-byte page-aligned chunks that
// never cross a page boundary, with per-chunk retry and progress reporting.
// Shared by Write's main program loop and eraseForWrite's region
// read-modify-write restore step.
func writeChunks(p programmer.Programmer, c *Context, addr uint32, data []byte, sink Sink) error {
	total := uint32(len(data))
	var done uint32
	for done < total {
		cur := addr + done
		pageOffset := cur % uint32(maxPageSize)
		n := uint32(maxPageSize) - pageOffset
		if remaining := total - done; n > remaining {
			n = remaining
		}
		chunk := data[done : done+n]

		if err := retryChunk(p, func() error {
			return protocol.PageProgram(p, c.FourByteMode(), cur, chunk, c.pageTimeoutUs())
		}); err != nil {
			return err
		}

		done += n
		if sink != nil {
			sink(ProgressEvent{Done: done, Total: total})
		}
	}
	return nil
}

// Erase runs the erase plan for [addr, addr+length) to completion.
func Erase(p programmer.Programmer, c *Context, addr, length uint32) error {
	if !c.IsValidRange(addr, length) {
		return &flasherr.RangeOutOfBounds{Start: addr, Length: length, ChipSize: c.Chip.TotalSize}
	}
	if err := c.checkRegionMask(addr, length); err != nil {
		return err
	}
	ops, err := erase.Plan(c.Chip.EraseBlocks, addr, addr+length, c.Chip.TotalSize)
	if err != nil {
		return err
	}
	return erase.Execute(p, c.FourByteMode(), ops)
}

// Verify reads [addr, addr+len(expected)) and compares it byte-for-byte.
func Verify(p programmer.Programmer, c *Context, addr uint32, expected []byte) error {
	got := make([]byte, len(expected))
	if err := Read(p, c, addr, got, nil); err != nil {
		return err
	}
	return compareVerify(expected, got)
}

func compareVerify(want, got []byte) error {
	if bytes.Equal(want, got) {
		return nil
	}
	count := 0
	first := uint32(0)
	found := false
	for i := range want {
		if want[i] != got[i] {
			count++
			if !found {
				first = uint32(i)
				found = true
			}
		}
	}
	return &flasherr.VerifyFailed{FirstMismatchOffset: first, MismatchCount: count}
}

// pageTimeoutUs bounds how long a single page-program poll may take before
// reporting ProgramTimeout: the 3 ms page-program bound of §5 for
// page-granular chips, and 50 ms for byte- and bit-granular chips.
func (c *Context) pageTimeoutUs() uint32 {
	switch c.Chip.WriteGranularity {
	case chip.GranularityByte, chip.GranularityBit:
		return 50_000
	default:
		return 3_000
	}
}

// WriteByLayout writes data to every included region of the attached
// layout in turn, aggregating per-region failures with multierr instead of
// aborting on the first region's error, so a multi-region flash attempt
// reports a complete picture (SPEC_FULL.md §2b, grounded in
// rflasher-core's region-scoped bulk operations).
func WriteByLayout(p programmer.Programmer, c *Context, data map[string][]byte, sink Sink) error {
	if c.Layout == nil {
		return &flasherr.RegionUnknown{Name: "<no layout attached>"}
	}
	var errs error
	for name, payload := range data {
		r, err := c.ResolveRegion(name)
		if err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		if uint32(len(payload)) != r.Size() {
			errs = multierr.Append(errs, &flasherr.VerifyFailed{FirstMismatchOffset: r.Start, MismatchCount: len(payload)})
			continue
		}
		if err := Write(p, c, r.Start, payload, sink); err != nil {
			errs = multierr.Append(errs, err)
		}
	}
	return errs
}

// ReadByLayout reads every named region into the returned map, aggregating
// per-region failures.
func ReadByLayout(p programmer.Programmer, c *Context, names []string, sink Sink) (map[string][]byte, error) {
	if c.Layout == nil {
		return nil, &flasherr.RegionUnknown{Name: "<no layout attached>"}
	}
	out := make(map[string][]byte, len(names))
	var errs error
	for _, name := range names {
		r, err := c.ResolveRegion(name)
		if err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		buf := make([]byte, r.Size())
		if err := Read(p, c, r.Start, buf, sink); err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		out[name] = buf
	}
	return out, errs
}

// EraseByLayout erases every named region, aggregating per-region failures.
func EraseByLayout(p programmer.Programmer, c *Context, names []string) error {
	if c.Layout == nil {
		return &flasherr.RegionUnknown{Name: "<no layout attached>"}
	}
	var errs error
	for _, name := range names {
		r, err := c.ResolveRegion(name)
		if err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		if err := Erase(p, c, r.Start, r.Size()); err != nil {
			errs = multierr.Append(errs, err)
		}
	}
	return errs
}

// VerifyByLayout reads and compares every named region against expected,
// aggregating per-region failures.
func VerifyByLayout(p programmer.Programmer, c *Context, expected map[string][]byte) error {
	if c.Layout == nil {
		return &flasherr.RegionUnknown{Name: "<no layout attached>"}
	}
	var errs error
	for name, want := range expected {
		r, err := c.ResolveRegion(name)
		if err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		if uint32(len(want)) != r.Size() {
			errs = multierr.Append(errs, &flasherr.VerifyFailed{FirstMismatchOffset: r.Start, MismatchCount: len(want)})
			continue
		}
		if err := Verify(p, c, r.Start, want); err != nil {
			errs = multierr.Append(errs, err)
		}
	}
	return errs
}
