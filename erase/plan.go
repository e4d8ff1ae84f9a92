// Package erase computes and executes block-erase plans: the greedy
// minimal-operation-count planner of §4.4, and a layout-aware
// read-modify-write variant for regions that don't align to any erase
// block boundary.
package erase

import (
	"sort"

	"github.com/spiflash/flashcore/chip"
	"github.com/spiflash/flashcore/flasherr"
)

// Op is one planned erase operation: an opcode and the absolute address it
// targets. A chip-erase opcode (block size equal to the chip's total size)
// carries an address of 0 and is only ever the sole op in a plan.
type Op struct {
	Opcode byte
	Addr   uint32
	Size   uint32
}

// Plan computes the minimal-count sequence of erase operations covering
// exactly [start, end) using blocks, an ascending-by-size erase-block menu.
// The range must be aligned to the smallest block size in blocks; chipSize
// enables the whole-chip shortcut when [start,end) == [0, chipSize).
//
// Algorithm per §4.4: greedy from largest block to smallest. At each step,
// among all block sizes that fit aligned within the remaining range at the
// current cursor, pick the largest; advance the cursor past it. Tie-break
// is automatic since the cursor always advances to the lowest unerased
// address first.
func Plan(blocks []chip.EraseBlock, start, end, chipSize uint32) ([]Op, error) {
	if end <= start {
		return nil, &flasherr.UnalignedRange{Start: start, End: end}
	}
	if len(blocks) == 0 {
		return nil, &flasherr.UnalignedRange{Start: start, End: end}
	}

	sorted := make([]chip.EraseBlock, len(blocks))
	copy(sorted, blocks)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Size < sorted[j].Size })

	minSize := sorted[0].Size
	if start%minSize != 0 || (end-start)%minSize != 0 {
		return nil, &flasherr.UnalignedRange{Start: start, End: end, RequiredAlign: minSize}
	}

	if start == 0 && end == chipSize {
		for _, eb := range sorted {
			if eb.Size == chipSize {
				return []Op{{Opcode: eb.Opcode, Addr: 0, Size: chipSize}}, nil
			}
		}
	}

	var ops []Op
	cursor := start
	for cursor < end {
		remaining := end - cursor
		best, ok := bestBlockAt(sorted, cursor, remaining, chipSize)
		if !ok {
			return nil, &flasherr.UnalignedRange{Start: start, End: end, RequiredAlign: minSize}
		}
		ops = append(ops, Op{Opcode: best.Opcode, Addr: cursor, Size: best.Size})
		cursor += best.Size
	}
	return ops, nil
}

// bestBlockAt returns the largest block in blocks (excluding any
// whole-chip entry, handled separately by Plan) that is aligned at addr and
// fits within the remaining byte count.
func bestBlockAt(blocks []chip.EraseBlock, addr, remaining, chipSize uint32) (chip.EraseBlock, bool) {
	var best chip.EraseBlock
	found := false
	for _, eb := range blocks {
		if eb.Size >= chipSize {
			continue // whole-chip erase never appears in a multi-op plan
		}
		if addr%eb.Size != 0 {
			continue
		}
		if eb.Size > remaining {
			continue
		}
		if !found || eb.Size > best.Size {
			best = eb
			found = true
		}
	}
	return best, found
}

// TotalSize sums the erased byte count of a plan, for progress reporting.
func TotalSize(ops []Op) uint32 {
	var total uint32
	for _, op := range ops {
		total += op.Size
	}
	return total
}
