package flash

import (
	"github.com/spiflash/flashcore/chip"
	"github.com/spiflash/flashcore/flasherr"
	"github.com/spiflash/flashcore/programmer"
	"github.com/spiflash/flashcore/protocol"
)

// Probe reads the JEDEC ID, looks it up in db, and constructs a Context.
// If expectedName is non-empty and disagrees with the identified chip,
// Probe fails with ChipMismatch rather than silently using the wrong
// descriptor (§4.3).
func Probe(p programmer.Programmer, db *chip.Database, expectedName string) (*Context, error) {
	mfg, dev, err := protocol.ReadJedecID(p)
	if err != nil {
		return nil, err
	}

	d, ok := db.FindByJedecID(mfg, dev)
	if !ok {
		return nil, &flasherr.ChipNotFound{Manufacturer: mfg, Device: dev}
	}
	if expectedName != "" && expectedName != d.Name {
		return nil, &flasherr.ChipMismatch{Expected: expectedName, Found: d.Name}
	}

	ctx := &Context{
		Chip:   d,
		Verify: true,
	}

	if d.RequiresFourByteAddr() {
		ctx.AddressMode = FourByte
		ctx.UseNative4B = d.Features.Has(chip.FeatFourByteNative)
		if !ctx.UseNative4B && d.Features.Has(chip.FeatFourByteEnter) {
			if err := protocol.EnterFourByteMode(p); err != nil {
				return nil, err
			}
		}
	} else {
		ctx.AddressMode = ThreeByte
	}

	return ctx, nil
}
