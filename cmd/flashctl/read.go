package main

import (
	"encoding/hex"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/spiflash/flashcore/flash"
)

func newReadCmd() *cobra.Command {
	var (
		outFile    string
		regionName string
		layoutPath string
	)
	cmd := &cobra.Command{
		Use:   "read [START+LENGTH]",
		Short: "Read a range (or a named layout region) into a file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			backend, closeFn, ctx, err := openBackend(layoutPath)
			if err != nil {
				return err
			}
			defer closeFn()

			var addr, length uint32
			if ctx != nil {
				addr, length, err = resolveSpan(ctx, args, regionName)
			} else {
				if regionName != "" {
					return fmt.Errorf("--region is not supported with --mtd; an opaque device carries no layout")
				}
				addr, length, err = resolveRange(args)
			}
			if err != nil {
				return err
			}

			data := make([]byte, length)
			if err := backend.Read(addr, data, progressSink("read")); err != nil {
				return fmt.Errorf("read: %w", err)
			}

			if outFile == "" {
				fmt.Println(hex.Dump(data))
				return nil
			}
			return os.WriteFile(outFile, data, 0o644)
		},
	}
	cmd.Flags().StringVarP(&outFile, "output", "o", "", "output file (default: hexdump to stdout)")
	cmd.Flags().StringVar(&regionName, "region", "", "read a named layout region instead of START+LENGTH")
	cmd.Flags().StringVar(&layoutPath, "layout", "", "layout file (TOML) to resolve --region against")
	return cmd
}

// resolveSpan resolves either a positional RANGE argument or a --region
// flag to a concrete (addr, length) span. Exactly one of the two must be
// given.
func resolveSpan(ctx *flash.Context, args []string, regionName string) (addr, length uint32, err error) {
	switch {
	case regionName != "" && len(args) > 0:
		return 0, 0, fmt.Errorf("specify either a RANGE argument or --region, not both")
	case regionName != "":
		r, err := ctx.ResolveRegion(regionName)
		if err != nil {
			return 0, 0, err
		}
		return r.Start, r.Size(), nil
	case len(args) == 1:
		return parseRange(args[0])
	default:
		return 0, 0, fmt.Errorf("specify a START+LENGTH range or --region")
	}
}

// resolveRange resolves a single positional RANGE argument with no region
// support — the opaque (--mtd) backend path, which has no layout to resolve
// a region name against.
func resolveRange(args []string) (addr, length uint32, err error) {
	if len(args) != 1 {
		return 0, 0, fmt.Errorf("specify a START+LENGTH range")
	}
	return parseRange(args[0])
}
