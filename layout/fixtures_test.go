package layout

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
)

// TestLoadFixturesFromAferoFS exercises the IFD/FMAP/TOML parsers against
// image files read from an in-memory filesystem, the way a CLI command
// reading a dumped flash image or a user-authored layout file off disk
// would, without touching the real filesystem.
func TestLoadFixturesFromAferoFS(t *testing.T) {
	fs := afero.NewMemMapFs()

	require.NoError(t, afero.WriteFile(fs, "/images/ifd.bin", buildIfdFixture(), 0o644))
	require.NoError(t, afero.WriteFile(fs, "/images/fmap.bin", buildFmapFixture(), 0o644))
	require.NoError(t, afero.WriteFile(fs, "/layouts/user.toml", []byte(`
[[region]]
name = "bootloader"
start = "0x0"
end = "0xFFFF"
readonly = true

[[region]]
name = "app"
start = "0x10000"
end = "0x1FFFFF"
`), 0o644))

	ifdBytes, err := afero.ReadFile(fs, "/images/ifd.bin")
	require.NoError(t, err)
	ifdLayout, err := ParseIfd(ifdBytes)
	require.NoError(t, err)
	require.Len(t, ifdLayout.Regions, 3)

	fmapBytes, err := afero.ReadFile(fs, "/images/fmap.bin")
	require.NoError(t, err)
	fmapLayout, err := ParseFmap(fmapBytes)
	require.NoError(t, err)
	require.NotEmpty(t, fmapLayout.Regions)

	tomlBytes, err := afero.ReadFile(fs, "/layouts/user.toml")
	require.NoError(t, err)
	tomlLayout, err := ParseToml(tomlBytes)
	require.NoError(t, err)
	require.Len(t, tomlLayout.Regions, 2)
}
