package chip

// staticChips is the embedded chip catalog: the hand-authored equivalent of
// the spec's build-time code-generator output (§1, §3 ChipDatabase). Real
// identities and geometry are grounded in the teacher's flash_params.go
// (Micron N25Q32, Winbond W25Q128JV) plus rflasher-core/src/chip/database.rs's
// W25Q128FV test fixture and common public datasheets for the rest.
const (
	KiB = 1024
	MiB = 1024 * KiB
)

var standardSR2Feature = FeatWrsrWren | FeatWrsrExt | FeatStatusReg2 | FeatQeSR2

var staticChips = []Descriptor{
	{
		Vendor:            "Micron",
		Name:              "N25Q032",
		JedecManufacturer: MfgMicron,
		JedecDevice:       0xBA16,
		TotalSize:         4 * MiB,
		PageSize:          256,
		Features: FeatWrsrWren | FeatFastRead | FeatDualIO | FeatQuadIO |
			FeatErase4K | FeatErase32K | FeatErase64K | FeatWpTB | FeatWpCMP,
		Voltage:          Voltage{MinMV: 2700, MaxMV: 3600},
		WriteGranularity: GranularityPage,
		EraseBlocks: []EraseBlock{
			{Opcode: 0x20, Size: 4 * KiB},
			{Opcode: 0x52, Size: 32 * KiB},
			{Opcode: 0xD8, Size: 64 * KiB},
			{Opcode: 0xC7, Size: 4 * MiB},
		},
		WpDecoder: DecoderSpi25Standard,
		Tested:    TestedStatus{Probe: StatusOk, Read: StatusOk, Erase: StatusOk, Write: StatusOk, Wp: StatusNt},
	},
	{
		Vendor:            "Winbond",
		Name:              "W25Q128JV",
		JedecManufacturer: MfgWinbond,
		JedecDevice:       0x7018,
		TotalSize:         16 * MiB,
		PageSize:          256,
		Features: standardSR2Feature | FeatFastRead | FeatDualIO | FeatQuadIO |
			FeatErase4K | FeatErase32K | FeatErase64K |
			FeatWpTB | FeatWpSEC | FeatWpCMP | FeatWpSRL | FeatWpVolatile,
		Voltage:          Voltage{MinMV: 2700, MaxMV: 3600},
		WriteGranularity: GranularityPage,
		EraseBlocks: []EraseBlock{
			{Opcode: 0x20, Size: 4 * KiB},
			{Opcode: 0x52, Size: 32 * KiB},
			{Opcode: 0xD8, Size: 64 * KiB},
			{Opcode: 0xC7, Size: 16 * MiB},
		},
		WpDecoder: DecoderSpi25Standard,
		Tested:    TestedStatus{Probe: StatusOk, Read: StatusOk, Erase: StatusOk, Write: StatusOk, Wp: StatusNt},
	},
	{
		// Matches §8 scenario S1: RDID response EF 40 18 decodes to this
		// descriptor, named exactly "W25Q128.V" per the scenario text.
		Vendor:            "Winbond",
		Name:              "W25Q128.V",
		JedecManufacturer: MfgWinbond,
		JedecDevice:       0x4018,
		TotalSize:         16 * MiB,
		PageSize:          256,
		Features: standardSR2Feature | FeatFastRead | FeatDualIO | FeatQuadIO |
			FeatErase4K | FeatErase32K | FeatErase64K |
			FeatWpTB | FeatWpSEC | FeatWpCMP | FeatWpSRL | FeatWpVolatile,
		Voltage:          Voltage{MinMV: 2700, MaxMV: 3600},
		WriteGranularity: GranularityPage,
		EraseBlocks: []EraseBlock{
			{Opcode: 0x20, Size: 4 * KiB},
			{Opcode: 0x52, Size: 32 * KiB},
			{Opcode: 0xD8, Size: 64 * KiB},
			{Opcode: 0xC7, Size: 16 * MiB},
		},
		WpDecoder: DecoderSpi25Standard,
		Tested:    TestedStatus{Probe: StatusOk, Read: StatusOk, Erase: StatusOk, Write: StatusOk, Wp: StatusOk},
	},
	{
		Vendor:            "Winbond",
		Name:              "W25Q32JV",
		JedecManufacturer: MfgWinbond,
		JedecDevice:       0x4016,
		TotalSize:         4 * MiB,
		PageSize:          256,
		Features: standardSR2Feature | FeatFastRead | FeatDualIO | FeatQuadIO |
			FeatErase4K | FeatErase32K | FeatErase64K |
			FeatWpTB | FeatWpSEC | FeatWpCMP | FeatWpSRL,
		Voltage:          Voltage{MinMV: 2700, MaxMV: 3600},
		WriteGranularity: GranularityPage,
		EraseBlocks: []EraseBlock{
			{Opcode: 0x20, Size: 4 * KiB},
			{Opcode: 0x52, Size: 32 * KiB},
			{Opcode: 0xD8, Size: 64 * KiB},
			{Opcode: 0xC7, Size: 4 * MiB},
		},
		WpDecoder: DecoderSpi25Standard,
		Tested:    TestedStatus{Probe: StatusOk, Read: StatusOk, Erase: StatusOk, Write: StatusOk, Wp: StatusNt},
	},
	{
		Vendor:            "Macronix",
		Name:              "MX25L25635F",
		JedecManufacturer: MfgMacronix,
		JedecDevice:       0x2019,
		TotalSize:         32 * MiB,
		PageSize:          256,
		Features: FeatWrsrWren | FeatFastRead | FeatDualIO | FeatQuadIO |
			FeatAddr4BA | FeatFourByteEnter |
			FeatErase4K | FeatErase32K | FeatErase64K | FeatWpTB | FeatWpCMP,
		Voltage:          Voltage{MinMV: 2700, MaxMV: 3600},
		WriteGranularity: GranularityPage,
		EraseBlocks: []EraseBlock{
			{Opcode: 0x20, Size: 4 * KiB},
			{Opcode: 0x52, Size: 32 * KiB},
			{Opcode: 0xD8, Size: 64 * KiB},
			{Opcode: 0x60, Size: 32 * MiB},
		},
		WpDecoder: DecoderSpi25Standard,
		Tested:    TestedStatus{Probe: StatusOk, Read: StatusOk, Erase: StatusNt, Write: StatusNt, Wp: StatusNt},
	},
}
