package erase

import (
	"github.com/spiflash/flashcore/flasherr"
	"github.com/spiflash/flashcore/programmer"
	"github.com/spiflash/flashcore/protocol"
	"github.com/spiflash/flashcore/spi"
)

// eraseTimeoutUs returns the outer polling bound for a block of the given
// size, per §5's per-operation timeout table (sector erase 400ms, larger
// blocks scaled up, chip erase 10s).
func eraseTimeoutUs(blockSize uint32) uint32 {
	switch {
	case blockSize <= 4*1024:
		return 400_000
	case blockSize <= 32*1024:
		return 1_000_000
	case blockSize <= 64*1024:
		return 2_000_000
	default:
		return 10_000_000
	}
}

// Execute runs a plan produced by Plan, issuing WREN + erase opcode + poll
// for each op in order. A single op failure aborts the plan; the count of
// already-completed ops is reported in the returned EraseFailed.
func Execute(p programmer.Programmer, fourByteMode bool, ops []Op) error {
	for i, op := range ops {
		var err error
		if op.Opcode == spi.OpCE60 || op.Opcode == spi.OpCEC7 {
			err = protocol.EraseChip(p, op.Opcode, eraseTimeoutUs(op.Size))
		} else {
			err = protocol.EraseBlock(p, op.Opcode, op.Addr, fourByteMode, eraseTimeoutUs(op.Size))
		}
		if err != nil {
			return &flasherr.EraseFailed{Addr: op.Addr, Opcode: op.Opcode, ErasedPrefix: i, Err: err}
		}
	}
	return nil
}

// ReadWriteFunc is the subset of the read/write orchestration erase needs
// for the preserve step of an unaligned region block, supplied by the
// flash package to avoid a circular import.
type ReadWriteFunc func(addr uint32, buf []byte) error

// ExecuteRegion erases [regionStart, regionEnd) by planning with PlanRegion
// and, for each block that extends beyond the region, reading the
// out-of-region bytes before erasing and writing them back afterward —
// the read-modify-write pattern of §4.4's region-aware supplement,
// grounded in rflasher-core's erase_block_with_preserve.
func ExecuteRegion(p programmer.Programmer, fourByteMode bool, blocks []BlockInfo, regionStart, regionEnd uint32, read, write ReadWriteFunc) error {
	for i, info := range blocks {
		if !info.RegionUnaligned {
			if err := protocol.EraseBlock(p, info.Block.Opcode, info.Start, fourByteMode, eraseTimeoutUs(info.Block.Size)); err != nil {
				return &flasherr.EraseFailed{Addr: info.Start, Opcode: info.Block.Opcode, ErasedPrefix: i, Err: err}
			}
			continue
		}

		backup := make([]byte, info.End-info.Start)
		for i := range backup {
			backup[i] = 0xFF
		}

		if regionStart > info.Start {
			n := regionStart - info.Start
			if err := read(info.Start, backup[:n]); err != nil {
				return err
			}
		}
		if info.End > regionEnd {
			start := regionEnd
			relStart := start - info.Start
			if err := read(start, backup[relStart:]); err != nil {
				return err
			}
		}

		if err := protocol.EraseBlock(p, info.Block.Opcode, info.Start, fourByteMode, eraseTimeoutUs(info.Block.Size)); err != nil {
			return &flasherr.EraseFailed{Addr: info.Start, Opcode: info.Block.Opcode, ErasedPrefix: i, Err: err}
		}

		if regionStart > info.Start {
			n := regionStart - info.Start
			if err := write(info.Start, backup[:n]); err != nil {
				return err
			}
		}
		if info.End > regionEnd {
			start := regionEnd
			relStart := start - info.Start
			if err := write(start, backup[relStart:]); err != nil {
				return err
			}
		}
	}
	return nil
}
