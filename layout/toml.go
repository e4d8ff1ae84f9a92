package layout

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"github.com/spiflash/flashcore/flasherr"
)

// tomlFile mirrors the §4.9 text format: a `[layout]` table plus repeated
// `[[region]]` tables.
type tomlFile struct {
	Layout tomlMeta     `toml:"layout"`
	Region []tomlRegion `toml:"region"`
}

type tomlMeta struct {
	Name     string `toml:"name"`
	ChipSize string `toml:"chip_size"`
}

type tomlRegion struct {
	Name      string `toml:"name"`
	Start     any    `toml:"start"` // integer, or a decimal/0x-hex string
	End       any    `toml:"end"`
	Readonly  bool   `toml:"readonly"`
	Dangerous bool   `toml:"dangerous"`
}

// ParseToml parses a user-authored TOML layout per §4.9, validating that
// regions lie within the declared chip size, do not overlap, and have
// unique names.
func ParseToml(data []byte) (*Layout, error) {
	var f tomlFile
	if err := toml.Unmarshal(data, &f); err != nil {
		return nil, &flasherr.LayoutParseError{Source: "toml", Detail: "parse", Err: err}
	}

	l := &Layout{Source: SourceToml, Name: f.Layout.Name}
	if f.Layout.ChipSize != "" {
		size, err := parseTomlSize(f.Layout.ChipSize)
		if err != nil {
			return nil, &flasherr.LayoutParseError{Source: "toml", Detail: "layout.chip_size", Err: err}
		}
		l.Size = size
	}

	seen := make(map[string]bool)
	for _, rd := range f.Region {
		start, err := parseTomlAddr(rd.Start)
		if err != nil {
			return nil, &flasherr.LayoutParseError{Source: "toml", Detail: fmt.Sprintf("region %q: start", rd.Name), Err: err}
		}
		end, err := parseTomlAddr(rd.End)
		if err != nil {
			return nil, &flasherr.LayoutParseError{Source: "toml", Detail: fmt.Sprintf("region %q: end", rd.Name), Err: err}
		}
		if rd.Name == "" {
			return nil, &flasherr.LayoutValidation{Region: "", Detail: "region name must not be empty"}
		}
		if seen[rd.Name] {
			return nil, &flasherr.LayoutValidation{Region: rd.Name, Detail: "duplicate region name"}
		}
		if end < start {
			return nil, &flasherr.LayoutValidation{Region: rd.Name, Detail: "end precedes start"}
		}
		if l.Size != 0 && end >= l.Size {
			return nil, &flasherr.LayoutValidation{Region: rd.Name, Detail: "region extends past declared chip_size"}
		}
		seen[rd.Name] = true
		l.AddRegion(Region{Name: rd.Name, Start: start, End: end, Readonly: rd.Readonly, Dangerous: rd.Dangerous})
	}

	l.SortByAddress()
	if err := checkOverlaps(l.Regions); err != nil {
		return nil, err
	}
	return l, nil
}

// checkOverlaps assumes regions is sorted ascending by Start.
func checkOverlaps(regions []Region) error {
	for i := 1; i < len(regions); i++ {
		if regions[i].Start <= regions[i-1].End {
			return &flasherr.LayoutValidation{
				Region: regions[i].Name,
				Detail: fmt.Sprintf("overlaps region %q", regions[i-1].Name),
			}
		}
	}
	return nil
}

// SerializeToml renders l back to the §4.9 text format, round-tripping
// through ParseToml. Not part of the distilled spec's literal interface —
// a supplement so the CLI's "layout convert" command can write a discovered
// layout out as an editable file (§2b).
func SerializeToml(l *Layout) ([]byte, error) {
	f := tomlFile{Layout: tomlMeta{Name: l.Name}}
	if l.Size != 0 {
		switch {
		case l.Size%(1024*1024) == 0:
			f.Layout.ChipSize = fmt.Sprintf("%d MiB", l.Size/(1024*1024))
		case l.Size%1024 == 0:
			f.Layout.ChipSize = fmt.Sprintf("%d KiB", l.Size/1024)
		default:
			f.Layout.ChipSize = fmt.Sprintf("%d B", l.Size)
		}
	}
	for _, r := range l.Regions {
		f.Region = append(f.Region, tomlRegion{
			Name:      r.Name,
			Start:     fmt.Sprintf("0x%X", r.Start),
			End:       fmt.Sprintf("0x%X", r.End),
			Readonly:  r.Readonly,
			Dangerous: r.Dangerous,
		})
	}
	return toml.Marshal(f)
}

func parseTomlAddr(v any) (uint32, error) {
	if n, ok := v.(int64); ok {
		if n < 0 || n > 0xFFFFFFFF {
			return 0, fmt.Errorf("address %d out of range", n)
		}
		return uint32(n), nil
	}
	s, ok := v.(string)
	if !ok {
		return 0, fmt.Errorf("address must be an integer or a string, got %T", v)
	}
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		v, err := strconv.ParseUint(s[2:], 16, 32)
		return uint32(v), err
	}
	v, err := strconv.ParseUint(s, 10, 32)
	return uint32(v), err
}

// parseTomlSize parses a "N B|KiB|MiB" chip-size string per §4.9.
func parseTomlSize(s string) (uint32, error) {
	s = strings.TrimSpace(s)
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return 0, fmt.Errorf("empty chip_size")
	}
	n, err := strconv.ParseUint(fields[0], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid chip_size number %q: %w", fields[0], err)
	}
	unit := "b"
	if len(fields) > 1 {
		unit = strings.ToLower(fields[1])
	}
	switch unit {
	case "b":
	case "kib":
		n *= 1024
	case "mib":
		n *= 1024 * 1024
	default:
		return 0, fmt.Errorf("unknown chip_size unit %q", unit)
	}
	return uint32(n), nil
}
