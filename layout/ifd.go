package layout

import (
	"encoding/binary"

	"github.com/spiflash/flashcore/flasherr"
)

const (
	ifdSignatureOffset = 16
	ifdSignature       = 0x0FF0A55A
	ifdFlmap0Offset    = 20
	ifdMaxRegions      = 16
)

// ifdRegionNames maps region index to canonical name, per Intel's
// published flash descriptor region table (§4.7), ported from
// rflasher-core's IFD_REGION_NAMES.
var ifdRegionNames = [ifdMaxRegions]string{
	"descriptor", "bios", "me", "gbe", "platform", "devexp", "bios2", "ec",
	"ie", "10gbe", "oprom", "region11", "region12", "region13", "region14", "ptt",
}

var ifdDangerousRegions = map[string]bool{"descriptor": true, "me": true, "ptt": true}
var ifdReadonlyRegions = map[string]bool{"descriptor": true}

// HasIfd reports whether data's first 4 KiB carry a valid IFD signature.
func HasIfd(data []byte) bool {
	return len(data) >= ifdFlmap0Offset+4 &&
		binary.LittleEndian.Uint32(data[ifdSignatureOffset:]) == ifdSignature
}

// freg returns (base, limit) decoded from one Flash Region register per
// §4.7's literal bit layout: BASE = bits 0-14 << 12, LIMIT = ((bits
// 16-30)+1) << 12 - 1.
func freg(reg uint32) (base, limit uint32) {
	base = (reg & 0x7FFF) << 12
	limit = (((reg>>16)&0x7FFF)+1)<<12 - 1
	return base, limit
}

// ParseIfd parses an Intel Flash Descriptor from the first 4 KiB (or more)
// of a flash image, per §4.7.
func ParseIfd(data []byte) (*Layout, error) {
	if !HasIfd(data) {
		return nil, &flasherr.LayoutParseError{Source: "ifd", Detail: "signature 0x0FF0A55A not found at offset 16"}
	}

	flmap0 := binary.LittleEndian.Uint32(data[ifdFlmap0Offset:])
	frba := int((flmap0 >> 12) & 0xFF0)
	nr := int((flmap0 >> 24) & 0x07)

	if nr > ifdMaxRegions {
		nr = ifdMaxRegions
	}
	if frba+nr*4 > len(data) {
		return nil, &flasherr.LayoutParseError{Source: "ifd", Detail: "region table extends past image bounds"}
	}

	l := &Layout{Source: SourceIfd, Name: "Intel Flash Descriptor"}
	for i := 0; i < nr; i++ {
		name := ifdRegionNames[i]
		off := frba + i*4
		reg := binary.LittleEndian.Uint32(data[off:])
		base, limit := freg(reg)
		if limit < base {
			continue // region absent (BASE > LIMIT)
		}
		l.AddRegion(Region{
			Name:      name,
			Start:     base,
			End:       limit,
			Readonly:  ifdReadonlyRegions[name],
			Dangerous: ifdDangerousRegions[name],
		})
	}
	l.SortByAddress()
	return l, nil
}
