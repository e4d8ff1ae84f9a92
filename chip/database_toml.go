package chip

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// dbFile mirrors the runtime-loadable text format of §6.3: a list of
// vendors, each with a list of chips. Concretely backed by TOML per
// SPEC_FULL.md §2b, unifying with the user-layout format's parser.
type dbFile struct {
	Vendor []vendorDef `toml:"vendor"`
}

type vendorDef struct {
	Name           string    `toml:"name"`
	ManufacturerID string    `toml:"manufacturer_id"`
	Chip           []chipDef `toml:"chip"`
}

type chipDef struct {
	Name             string       `toml:"name"`
	DeviceID         string       `toml:"device_id"`
	TotalSize        string       `toml:"total_size"`
	Features         []string     `toml:"features"`
	VoltageMinMV     uint16       `toml:"voltage_min_mv"`
	VoltageMaxMV     uint16       `toml:"voltage_max_mv"`
	WriteGranularity string       `toml:"write_granularity"`
	EraseBlocks      []eraseDef   `toml:"erase_blocks"`
	WpDecoder        string       `toml:"wp_decoder"`
	Tested           testedDef    `toml:"tested"`
}

type eraseDef struct {
	Opcode string `toml:"opcode"`
	Size   string `toml:"size"`
}

type testedDef struct {
	Probe string `toml:"probe"`
	Read  string `toml:"read"`
	Erase string `toml:"erase"`
	Write string `toml:"write"`
	Wp    string `toml:"wp"`
}

var featureNames = map[string]Features{
	"wrsr_wren":        FeatWrsrWren,
	"wrsr_ewsr":        FeatWrsrEwsr,
	"wrsr_ext":         FeatWrsrExt,
	"fast_read":        FeatFastRead,
	"dual_io":          FeatDualIO,
	"quad_io":          FeatQuadIO,
	"addr_4ba":         FeatAddr4BA,
	"four_byte_enter":  FeatFourByteEnter,
	"four_byte_native": FeatFourByteNative,
	"otp":              FeatOTP,
	"security_reg":     FeatSecurityReg,
	"write_byte":       FeatWriteByte,
	"erase_4k":         FeatErase4K,
	"erase_32k":        FeatErase32K,
	"erase_64k":        FeatErase64K,
	"status_reg_2":     FeatStatusReg2,
	"status_reg_3":     FeatStatusReg3,
	"qe_sr2":           FeatQeSR2,
	"deep_power_down":  FeatDeepPowerDown,
	"wp_tb":            FeatWpTB,
	"wp_sec":           FeatWpSEC,
	"wp_cmp":           FeatWpCMP,
	"wp_srl":           FeatWpSRL,
	"wp_volatile":      FeatWpVolatile,
	"wp_bp3":           FeatWpBP3,
	"wp_wps":           FeatWpWPS,
}

// LoadSupplementaryDatabase parses the §6.3 text format (TOML) from r and
// returns the descriptors it defines. Callers pass the result to Merged to
// combine with the embedded static table.
func LoadSupplementaryDatabase(r io.Reader) ([]*Descriptor, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("chip database: read: %w", err)
	}

	var f dbFile
	if err := toml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("chip database: parse TOML: %w", err)
	}

	var out []*Descriptor
	for _, v := range f.Vendor {
		mfg, err := parseHexByte(v.ManufacturerID)
		if err != nil {
			return nil, fmt.Errorf("chip database: vendor %q: manufacturer_id: %w", v.Name, err)
		}
		for _, c := range v.Chip {
			d, err := c.toDescriptor(v.Name, mfg)
			if err != nil {
				return nil, fmt.Errorf("chip database: chip %q: %w", c.Name, err)
			}
			out = append(out, d)
		}
	}
	return out, nil
}

func (c chipDef) toDescriptor(vendor string, mfg byte) (*Descriptor, error) {
	dev, err := parseHexU16(c.DeviceID)
	if err != nil {
		return nil, fmt.Errorf("device_id: %w", err)
	}
	size, err := parseSize(c.TotalSize)
	if err != nil {
		return nil, fmt.Errorf("total_size: %w", err)
	}

	var feats Features
	for _, name := range c.Features {
		bit, ok := featureNames[name]
		if !ok {
			return nil, fmt.Errorf("unknown feature %q", name)
		}
		feats |= bit
	}

	var blocks []EraseBlock
	for _, eb := range c.EraseBlocks {
		op, err := parseHexByte(eb.Opcode)
		if err != nil {
			return nil, fmt.Errorf("erase_blocks: opcode: %w", err)
		}
		sz, err := parseSize(eb.Size)
		if err != nil {
			return nil, fmt.Errorf("erase_blocks: size: %w", err)
		}
		blocks = append(blocks, EraseBlock{Opcode: op, Size: sz})
	}

	wg := GranularityPage
	switch c.WriteGranularity {
	case "", "page":
		wg = GranularityPage
	case "byte":
		wg = GranularityByte
	case "bit":
		wg = GranularityBit
	default:
		return nil, fmt.Errorf("write_granularity: unknown value %q", c.WriteGranularity)
	}

	decoder := RangeDecoder(c.WpDecoder)
	if decoder == "" {
		decoder = DecoderSpi25Standard
	}

	minV, maxV := c.VoltageMinMV, c.VoltageMaxMV
	if minV == 0 {
		minV = 2700
	}
	if maxV == 0 {
		maxV = 3600
	}

	return &Descriptor{
		Vendor:            vendor,
		Name:              c.Name,
		JedecManufacturer: mfg,
		JedecDevice:       dev,
		TotalSize:         size,
		Features:          feats,
		Voltage:           Voltage{MinMV: minV, MaxMV: maxV},
		WriteGranularity:  wg,
		EraseBlocks:       blocks,
		WpDecoder:         decoder,
		Tested: TestedStatus{
			Probe: parseTestStatus(c.Tested.Probe),
			Read:  parseTestStatus(c.Tested.Read),
			Erase: parseTestStatus(c.Tested.Erase),
			Write: parseTestStatus(c.Tested.Write),
			Wp:    parseTestStatus(c.Tested.Wp),
		},
	}, nil
}

func parseTestStatus(s string) TestStatus {
	switch strings.ToLower(s) {
	case "ok":
		return StatusOk
	case "bad":
		return StatusBad
	case "dep":
		return StatusDep
	default:
		return StatusNt
	}
}

func parseHexByte(s string) (byte, error) {
	v, err := parseHexUint(s, 8)
	return byte(v), err
}

func parseHexU16(s string) (uint16, error) {
	v, err := parseHexUint(s, 16)
	return uint16(v), err
}

func parseHexUint(s string, bits int) (uint64, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "0x")
	s = strings.TrimPrefix(s, "0X")
	return strconv.ParseUint(s, 16, bits)
}

// parseSize parses human-readable sizes like "16 MiB", "4 KiB", "256", or
// "0x1000", grounded in rflasher-core/src/layout/toml.rs's parse_size.
func parseSize(s string) (uint32, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty size")
	}
	fields := strings.Fields(s)
	numStr := fields[0]
	unit := "b"
	if len(fields) > 1 {
		unit = strings.ToLower(fields[1])
	} else {
		// Allow a bare "4096" or suffix glued to the number, e.g. "4KiB".
		for i, r := range numStr {
			if !(r >= '0' && r <= '9') && !(i == 1 && (r == 'x' || r == 'X')) {
				unit = strings.ToLower(numStr[i:])
				numStr = numStr[:i]
				break
			}
		}
	}

	var n uint64
	var err error
	if strings.HasPrefix(numStr, "0x") || strings.HasPrefix(numStr, "0X") {
		n, err = strconv.ParseUint(numStr[2:], 16, 64)
	} else {
		n, err = strconv.ParseUint(numStr, 10, 64)
	}
	if err != nil {
		return 0, fmt.Errorf("invalid numeric size %q: %w", s, err)
	}

	switch unit {
	case "b", "":
		// no scaling
	case "kib", "kb", "k":
		n *= 1024
	case "mib", "mb", "m":
		n *= 1024 * 1024
	default:
		return 0, fmt.Errorf("unknown size unit %q", unit)
	}
	return uint32(n), nil
}
