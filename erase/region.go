package erase

import (
	"github.com/spiflash/flashcore/chip"
	"github.com/spiflash/flashcore/flasherr"
)

// BlockInfo describes one erase block touched while covering a region,
// including whether the block extends past the region's own boundaries.
type BlockInfo struct {
	Start           uint32
	End             uint32 // exclusive
	Block           chip.EraseBlock
	RegionUnaligned bool
}

// PlanRegion computes the erase blocks needed to cover [regionStart,
// regionEnd), including any block that extends beyond the region, so the
// caller can preserve the extra bytes with a read-modify-write.
//
// Grounded in rflasher-core's plan_erase_for_region: starts from the
// erase-block boundary at or before regionStart and walks forward, at each
// position picking the largest block aligned there that either fits
// within what remains of the region or is the smallest available size.
func PlanRegion(blocks []chip.EraseBlock, regionStart, regionEnd uint32) ([]BlockInfo, error) {
	minSize := smallestBlockSize(blocks)
	if minSize == 0 {
		return nil, &flasherr.UnalignedRange{Start: regionStart, End: regionEnd}
	}

	cursor := (regionStart / minSize) * minSize
	var out []BlockInfo
	for cursor < regionEnd {
		remaining := uint32(0)
		if regionEnd > cursor {
			remaining = regionEnd - cursor
		}

		eb, ok := bestRegionBlockAt(blocks, cursor, remaining, minSize)
		if !ok {
			return nil, &flasherr.UnalignedRange{Start: regionStart, End: regionEnd, RequiredAlign: minSize}
		}

		blockEnd := cursor + eb.Size
		out = append(out, BlockInfo{
			Start:           cursor,
			End:             blockEnd,
			Block:           eb,
			RegionUnaligned: cursor < regionStart || blockEnd > regionEnd,
		})
		cursor = blockEnd
	}
	return out, nil
}

// bestRegionBlockAt picks the largest block aligned at addr that either
// fits within remaining or is the chip's smallest block (which is always
// eligible, since it's the fallback granularity for the tail of a region).
func bestRegionBlockAt(blocks []chip.EraseBlock, addr, remaining, minSize uint32) (chip.EraseBlock, bool) {
	var best chip.EraseBlock
	found := false
	for _, eb := range blocks {
		if addr%eb.Size != 0 {
			continue
		}
		if eb.Size > remaining && eb.Size != minSize {
			continue
		}
		if !found || eb.Size > best.Size {
			best = eb
			found = true
		}
	}
	return best, found
}

func smallestBlockSize(blocks []chip.EraseBlock) uint32 {
	var min uint32
	for _, eb := range blocks {
		if min == 0 || eb.Size < min {
			min = eb.Size
		}
	}
	return min
}
