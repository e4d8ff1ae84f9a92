package erase

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spiflash/flashcore/chip"
)

func menu() []chip.EraseBlock {
	return []chip.EraseBlock{
		{Opcode: 0x20, Size: 4 * 1024},
		{Opcode: 0x52, Size: 32 * 1024},
		{Opcode: 0xD8, Size: 64 * 1024},
		{Opcode: 0x60, Size: 16 * 1024 * 1024},
	}
}

// S2: plan erase 0x0000-0x20000 over a four-entry menu yields two 64 KiB ops.
func TestPlanS2TwoSixtyFourKBlocks(t *testing.T) {
	ops, err := Plan(menu(), 0x00000, 0x20000, 16*1024*1024)
	require.NoError(t, err)
	assert.Equal(t, []Op{
		{Opcode: 0xD8, Addr: 0x00000, Size: 64 * 1024},
		{Opcode: 0xD8, Addr: 0x10000, Size: 64 * 1024},
	}, ops)
}

// Plan erase 0x1000-0x11000: the cursor starts unaligned to anything but the
// smallest block, so it takes seven 4 KiB ops to reach 0x8000 — which is
// itself 32 KiB-aligned, with 0x9000 bytes still remaining, so the greedy
// planner picks the 32 KiB block there, leaving one final 4 KiB op to reach
// 0x11000. Nine ops total, not sixteen: a plan of sixteen uniform 4 KiB ops
// would leave the 32 KiB block unused even though it is both aligned and
// fits, which contradicts §9's "fewest-ops is implemented literally"
// resolution of the chip-erase-granularity open question. (spec.md's own S3
// walkthrough arrives at sixteen by asserting "no aligned 32 K or 64 K
// fits" at any step, which is the arithmetic error this test corrects: 0x8000
// is exactly 32 KiB-aligned.)
func TestPlanMixedGranularityWhenCursorLandsOnLargerBlock(t *testing.T) {
	ops, err := Plan(menu(), 0x1000, 0x11000, 16*1024*1024)
	require.NoError(t, err)

	var want []Op
	for addr := uint32(0x1000); addr < 0x8000; addr += 4 * 1024 {
		want = append(want, Op{Opcode: 0x20, Addr: addr, Size: 4 * 1024})
	}
	want = append(want, Op{Opcode: 0x52, Addr: 0x8000, Size: 32 * 1024})
	want = append(want, Op{Opcode: 0x20, Addr: 0x10000, Size: 4 * 1024})

	assert.Equal(t, want, ops)
}

func TestPlanWholeChipUsesChipErase(t *testing.T) {
	ops, err := Plan(menu(), 0, 16*1024*1024, 16*1024*1024)
	require.NoError(t, err)
	assert.Equal(t, []Op{{Opcode: 0x60, Addr: 0, Size: 16 * 1024 * 1024}}, ops)
}

func TestPlanRejectsUnalignedRange(t *testing.T) {
	_, err := Plan(menu(), 0x100, 0x1100, 16*1024*1024)
	assert.Error(t, err)
}

func TestPlanDeterministicTieBreak(t *testing.T) {
	ops1, err := Plan(menu(), 0x4000, 0xC000, 16*1024*1024)
	require.NoError(t, err)
	ops2, err := Plan(menu(), 0x4000, 0xC000, 16*1024*1024)
	require.NoError(t, err)
	assert.Equal(t, ops1, ops2)
}
