package chip

// Features is a bitset of capabilities a flash chip exposes, consumed by
// the SPI25 protocol layer and the write-protection decoder. Supplemented
// beyond the distilled spec's literal list per rflasher-core's richer
// bitflags::Features set (WRSR_EWSR, FOUR_BYTE_ENTER/NATIVE, WP_SRL/BP3/WPS,
// ...), since a real chip database needs all of them to describe real
// parts accurately.
type Features uint32

const (
	FeatWrsrWren Features = 1 << iota
	FeatWrsrEwsr          // use EWSR (0x50) instead of WREN before WRSR
	FeatWrsrExt           // WRSR writes SR1+SR2 together
	FeatFastRead
	FeatDualIO
	FeatQuadIO
	FeatAddr4BA        // supports 4-byte addressing at all
	FeatFourByteEnter  // EN4B/EX4B (0xB7/0xE9) switches addressing mode
	FeatFourByteNative // has native 4-byte opcodes (0x13, 0x12, ...) without a mode switch
	FeatOTP
	FeatSecurityReg
	FeatWriteByte // byte-granularity writes (vs page-only)
	FeatErase4K
	FeatErase32K
	FeatErase64K
	FeatStatusReg2
	FeatStatusReg3
	FeatQeSR2
	FeatDeepPowerDown
	FeatWpTB  // top/bottom protect bit available
	FeatWpSEC // sector vs block protect-granularity bit available
	FeatWpCMP // complement bit available
	FeatWpSRL // status-register-lock bit present
	FeatWpVolatile
	FeatWpBP3 // fourth block-protect bit
	FeatWpWPS // per-sector write-protect-selection mode present
)

// Has reports whether all bits in want are set in f.
func (f Features) Has(want Features) bool { return f&want == want }
