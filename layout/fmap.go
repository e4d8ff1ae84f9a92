package layout

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/spiflash/flashcore/flasherr"
)

const (
	fmapHeaderSize  = 56
	fmapAreaSize    = 42
	fmapNameLen     = 32
	fmapReadonlyBit = 0x02 // FMAP_AREA_RO per §4.8's literal "bit 1"
)

var fmapSignature = []byte("__FMAP__")

// FindFmap searches data for the FMAP signature at any 8-byte-aligned
// offset, per §4.8. Returns -1 if not found.
func FindFmap(data []byte) int {
	if len(data) < fmapHeaderSize {
		return -1
	}
	for off := 0; off+fmapHeaderSize <= len(data); off += 8 {
		if bytes.Equal(data[off:off+8], fmapSignature) {
			return off
		}
	}
	return -1
}

// HasFmap reports whether data contains the FMAP signature at an
// 8-byte-aligned offset; it does not check the header or areas.
func HasFmap(data []byte) bool { return FindFmap(data) >= 0 }

// ParseFmap locates and parses an FMAP structure anywhere in data.
func ParseFmap(data []byte) (*Layout, error) {
	off := FindFmap(data)
	if off < 0 {
		return nil, &flasherr.LayoutParseError{Source: "fmap", Detail: "signature __FMAP__ not found"}
	}
	return ParseFmapAt(data, off)
}

// ParseFmapAt parses an FMAP structure known to start at offset.
func ParseFmapAt(data []byte, offset int) (*Layout, error) {
	d := data[offset:]
	if len(d) < fmapHeaderSize || !bytes.Equal(d[0:8], fmapSignature) {
		return nil, &flasherr.LayoutParseError{Source: "fmap", Detail: "signature __FMAP__ not found at given offset"}
	}

	verMajor, verMinor := d[8], d[9]
	if verMajor != 1 {
		return nil, &flasherr.UnsupportedFmapVersion{Major: verMajor, Minor: verMinor}
	}

	nameBytes := d[22:54]
	nareas := int(binary.LittleEndian.Uint16(d[54:56]))

	required := fmapHeaderSize + nareas*fmapAreaSize
	if len(d) < required {
		return nil, &flasherr.LayoutParseError{Source: "fmap", Detail: "area table extends past image bounds"}
	}

	l := &Layout{
		Source: SourceFmap,
		Name:   fmt.Sprintf("FMAP: %s (v%d.%d)", fmapString(nameBytes), verMajor, verMinor),
	}

	for i := 0; i < nareas; i++ {
		off := fmapHeaderSize + i*fmapAreaSize
		area := d[off : off+fmapAreaSize]

		start := binary.LittleEndian.Uint32(area[0:4])
		size := binary.LittleEndian.Uint32(area[4:8])
		name := fmapString(area[8:40])
		flags := binary.LittleEndian.Uint16(area[40:42])

		if size == 0 {
			continue
		}

		l.AddRegion(Region{
			Name:     name,
			Start:    start,
			End:      start + size - 1,
			Readonly: flags&fmapReadonlyBit != 0,
		})
	}

	l.SortByAddress()
	return l, nil
}

func fmapString(b []byte) string {
	if i := bytes.IndexByte(b, 0); i >= 0 {
		b = b[:i]
	}
	return string(b)
}
