package wp

import (
	"github.com/spiflash/flashcore/chip"
	"github.com/spiflash/flashcore/flasherr"
	"github.com/spiflash/flashcore/programmer"
	"github.com/spiflash/flashcore/protocol"
	"github.com/spiflash/flashcore/spi"
)

// Status bundles everything the CLI's "wp status" command needs: the
// current protected range, the lock mode, and whether it's hardware
// enforced.
type Status struct {
	Range    Range
	Mode     Mode
	SR1, SR2 byte
}

// ReadStatus reads SR1/SR2(/SR3) and decodes the current protection state.
func ReadStatus(p programmer.Programmer, d *chip.Descriptor) (Status, error) {
	sr1, err := protocol.ReadStatus(p, 1, d.Features)
	if err != nil {
		return Status{}, err
	}
	sr2, err := protocol.ReadStatus(p, 2, d.Features)
	if err != nil {
		return Status{}, err
	}
	sr3, err := protocol.ReadStatus(p, 3, d.Features)
	if err != nil {
		return Status{}, err
	}
	if err := CheckWPS(sr3, d.Features.Has(chip.FeatWpWPS)); err != nil {
		return Status{}, err
	}

	rng, err := Decode3(sr1, sr2, sr3, d.TotalSize, d.WpDecoder, d.Features)
	if err != nil {
		return Status{}, err
	}
	srl := d.Features.Has(chip.FeatWpSRL) && sr2&spi.SR2SRP1 != 0
	srp := sr1&spi.SR1SRP0 != 0
	mode := ModeFromBits(srl, srp)

	return Status{Range: rng, Mode: mode, SR1: sr1, SR2: sr2}, nil
}

// EnableHardware sets SRP (SR1 bit 7) to move protection into Hardware
// mode (protection becomes effective once WP# is asserted), without
// touching the BP/TB/CMP range bits.
func EnableHardware(p programmer.Programmer, d *chip.Descriptor, volatile bool) error {
	sr1, err := protocol.ReadStatus(p, 1, d.Features)
	if err != nil {
		return err
	}
	sr1 |= spi.SR1SRP0
	return protocol.WriteStatus(p, d.Features, []byte{sr1}, volatile)
}

// Disable clears the BP bits, SRP and, on chips that have it, SRL, leaving
// no range protected and the status register freely software-writable.
func Disable(p programmer.Programmer, d *chip.Descriptor, volatile bool) error {
	sr1, err := protocol.ReadStatus(p, 1, d.Features)
	if err != nil {
		return err
	}
	sr1 &^= spi.SR1SRP0 | spi.SR1BP0 | spi.SR1BP1 | spi.SR1BP2

	if d.Features.Has(chip.FeatWpSRL) {
		sr2, err := protocol.ReadStatus(p, 2, d.Features)
		if err != nil {
			return err
		}
		sr2 &^= spi.SR2SRP1
		return protocol.WriteStatus(p, d.Features, []byte{sr1, sr2}, volatile)
	}
	return protocol.WriteStatus(p, d.Features, []byte{sr1}, volatile)
}

// SetRange encodes want and writes the resulting BP/TB/CMP bits to SR1/SR2,
// preserving every other bit (lock bits, status bits) already present.
// Rejects with WpHwLocked if the register is already SRP-protected and the
// caller didn't ask for a volatile write.
func SetRange(p programmer.Programmer, d *chip.Descriptor, want Range, volatile bool) error {
	sr1, err := protocol.ReadStatus(p, 1, d.Features)
	if err != nil {
		return err
	}
	if sr1&spi.SR1SRP0 != 0 && !volatile {
		return &flasherr.WpHwLocked{}
	}

	bpBits, sr2Bits, err := Encode(want, d.TotalSize, d.WpDecoder, d.Features)
	if err != nil {
		return err
	}

	newSR1 := (sr1 &^ (spi.SR1BP0 | spi.SR1BP1 | spi.SR1BP2 | spi.SR1TB)) | bpBits
	if d.Features.Has(chip.FeatStatusReg2) {
		sr2, err := protocol.ReadStatus(p, 2, d.Features)
		if err != nil {
			return err
		}
		newSR2 := (sr2 &^ spi.SR2CMP) | sr2Bits
		return protocol.WriteStatus(p, d.Features, []byte{newSR1, newSR2}, volatile)
	}
	return protocol.WriteStatus(p, d.Features, []byte{newSR1}, volatile)
}

// SetRegion is SetRange's convenience form for protecting exactly
// [start, start+length).
func SetRegion(p programmer.Programmer, d *chip.Descriptor, start, length uint32, volatile bool) error {
	return SetRange(p, d, Range{Start: start, End: start + length}, volatile)
}
