package wp

import "github.com/spiflash/flashcore/flasherr"

// Mode is the hardware write-protection state derived from the SRP
// (Status Register Protect) and SRL (Status Register Lock) bits.
type Mode int

const (
	Disabled Mode = iota
	Hardware
	PowerCycle
	Permanent
)

func (m Mode) String() string {
	switch m {
	case Hardware:
		return "hardware"
	case PowerCycle:
		return "power-cycle"
	case Permanent:
		return "permanent"
	default:
		return "disabled"
	}
}

// HwEnforced reports whether the status register is under any hardware or
// latched lock (as opposed to freely software-writable).
func (m Mode) HwEnforced() bool { return m != Disabled }

// ModeFromBits derives the write-protect mode from the SRL (status
// register lock, typically SR2 bit 0) and SRP (status register protect,
// SR1 bit 7) values, per the (SRL,SRP) state table of §4.6:
//
//	(0,0) Disabled   (0,1) Hardware
//	(1,0) PowerCycle (1,1) Permanent
func ModeFromBits(srl, srp bool) Mode {
	switch {
	case !srl && !srp:
		return Disabled
	case !srl && srp:
		return Hardware
	case srl && !srp:
		return PowerCycle
	default:
		return Permanent
	}
}

// CheckWPS reports WpUnsupportedState if sr3's WPS bit is set on a chip
// advertising wp_wps: per-sector protect-selection mode moves write
// protection out of the BP/TB/CMP model this decoder implements, so
// Decode's result would be meaningless while WPS is active.
func CheckWPS(sr3 byte, hasWPS bool) error {
	const wpsBit = 0x80
	if hasWPS && sr3&wpsBit != 0 {
		return &flasherr.WpUnsupportedState{Detail: "WPS per-sector protection mode is active"}
	}
	return nil
}
