// Command flashctl is the full-featured CLI over the flashcore core: probe,
// read, write, erase, verify, write-protection, and layout conversion. It
// supersedes cmd/gice's single-chip demo with the complete §6 command
// surface, built on cobra/pflag instead of a flat flag.FlagSet switch.
package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spiflash/flashcore/chip"
	"github.com/spiflash/flashcore/flash"
	"github.com/spiflash/flashcore/programmer"
	"github.com/spiflash/flashcore/transport/ftdi"
)

var (
	flagChipName string
	flagVerbose  bool
	flagMTDPath  string

	log *zap.SugaredLogger
)

// opaqueDevice is the subset of programmer.OpaqueMaster plus Close that
// openMTD's two platform variants return.
type opaqueDevice interface {
	programmer.OpaqueMaster
	Close() error
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "flashctl",
		Short:         "Probe, read, write, erase, and verify a SPI NOR flash chip",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg := zap.NewDevelopmentConfig()
			if !flagVerbose {
				cfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
			}
			l, err := cfg.Build()
			if err != nil {
				return fmt.Errorf("build logger: %w", err)
			}
			log = l.Sugar()
			return nil
		},
	}
	root.PersistentFlags().StringVar(&flagChipName, "chip", "", "expected chip name; probe fails with a mismatch error if the attached chip differs")
	root.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "enable debug logging")
	root.PersistentFlags().StringVar(&flagMTDPath, "mtd", "", "drive an opaque MTD character device (e.g. /dev/mtd0) instead of probing a chip over SPI (§9 opaque backend)")

	root.AddCommand(
		newProbeCmd(),
		newReadCmd(),
		newWriteCmd(),
		newEraseCmd(),
		newVerifyCmd(),
		newWpCmd(),
		newLayoutCmd(),
	)
	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// openContext attaches to the FTDI rig, probes the chip, and attaches a
// layout if layoutPath is non-empty.
func openContext(layoutPath string) (*flash.Context, *ftdi.Programmer, error) {
	d, err := ftdi.NewDevice()
	if err != nil {
		return nil, nil, fmt.Errorf("open FTDI device: %w", err)
	}
	p := d.Programmer()

	ctx, err := flash.Probe(p, chip.StaticDatabase(), flagChipName)
	if err != nil {
		return nil, nil, fmt.Errorf("probe: %w", err)
	}
	log.Infow("probed chip", "name", ctx.Chip.Name, "size", ctx.Chip.TotalSize, "addressMode", ctx.AddressMode)

	if layoutPath != "" {
		l, err := loadLayout(layoutPath)
		if err != nil {
			return nil, nil, fmt.Errorf("load layout: %w", err)
		}
		ctx.SetLayout(l)
	}

	return ctx, p, nil
}

// openBackend picks the SPI or opaque backend per §9's "two backends" split,
// dispatching on --mtd: with it set, operations drive an MTD character
// device directly (bypassing probe, protocol, erase planning, and WP
// entirely); without it, operations go through the usual FTDI probe and
// Context. The returned close func must be called when done; region
// resolution (resolveSpan's --region path) is only available on the SPI
// backend, since an opaque device carries no chip descriptor or layout of
// its own.
func openBackend(layoutPath string) (flash.Backend, func() error, *flash.Context, error) {
	if flagMTDPath != "" {
		dev, err := openMTD(flagMTDPath)
		if err != nil {
			return flash.Backend{}, nil, nil, err
		}
		log.Infow("opened opaque mtd device", "path", flagMTDPath, "size", dev.Size())
		return flash.Backend{Opaque: dev}, dev.Close, nil, nil
	}

	ctx, p, err := openContext(layoutPath)
	if err != nil {
		return flash.Backend{}, nil, nil, err
	}
	return flash.Backend{Spi: &flash.SpiBackend{Programmer: p, Context: ctx}}, func() error { return nil }, ctx, nil
}

// parseUint32 parses a single address or size token, accepting any base
// strconv.ParseUint(0, ...) recognizes.
func parseUint32(s string) (uint32, error) {
	v, err := strconv.ParseUint(s, 0, 32)
	if err != nil {
		return 0, fmt.Errorf("%q: %w", s, err)
	}
	return uint32(v), nil
}

// progressSink logs coarse progress for a long-running operation at debug
// level; flashctl has no progress bar, just -v visibility.
func progressSink(op string) flash.Sink {
	return func(ev flash.ProgressEvent) {
		log.Debugw(op+" progress", "done", ev.Done, "total", ev.Total)
	}
}

// parseRange parses a "START+LENGTH" spec, e.g. "0x10000+0x1000". Both
// fields accept any base strconv.ParseUint(0, ...) recognizes (0x, 0o, 0b,
// or plain decimal).
func parseRange(spec string) (addr, length uint32, err error) {
	start, lenStr, ok := strings.Cut(spec, "+")
	if !ok {
		return 0, 0, fmt.Errorf("range %q must be START+LENGTH (e.g. 0x10000+0x1000)", spec)
	}
	a, err := strconv.ParseUint(start, 0, 32)
	if err != nil {
		return 0, 0, fmt.Errorf("range %q: bad start: %w", spec, err)
	}
	l, err := strconv.ParseUint(lenStr, 0, 32)
	if err != nil {
		return 0, 0, fmt.Errorf("range %q: bad length: %w", spec, err)
	}
	return uint32(a), uint32(l), nil
}
