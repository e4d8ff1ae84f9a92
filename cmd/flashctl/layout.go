package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/spiflash/flashcore/layout"
)

// loadLayout reads a layout from disk, auto-detecting IFD, FMAP, or TOML by
// content (IFD/FMAP are binary images; anything else is treated as TOML).
func loadLayout(path string) (*layout.Layout, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return parseLayoutBytes(data)
}

func parseLayoutBytes(data []byte) (*layout.Layout, error) {
	switch {
	case layout.HasIfd(data):
		return layout.ParseIfd(data)
	case layout.HasFmap(data):
		return layout.ParseFmap(data)
	default:
		return layout.ParseToml(data)
	}
}

func newLayoutCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "layout",
		Short: "Inspect and convert flash layout metadata (IFD, FMAP, TOML)",
	}
	root.AddCommand(newLayoutShowCmd(), newLayoutConvertCmd())
	return root
}

func newLayoutShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show FILE",
		Short: "Print the regions found in a layout file or flash image",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			l, err := loadLayout(args[0])
			if err != nil {
				return fmt.Errorf("load layout: %w", err)
			}
			fmt.Printf("source: %s\n", l.Source)
			if l.Name != "" {
				fmt.Printf("name:   %s\n", l.Name)
			}
			for _, r := range l.Regions {
				flags := describeFlags(r.Readonly, r.Dangerous)
				fmt.Printf("  %-16s [0x%06X, 0x%06X]  %6d bytes  %s\n", r.Name, r.Start, r.End, r.Size(), flags)
			}
			return nil
		},
	}
}

func newLayoutConvertCmd() *cobra.Command {
	var outFile string
	cmd := &cobra.Command{
		Use:   "convert FILE",
		Short: "Convert an IFD or FMAP layout image to a TOML layout file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			l, err := loadLayout(args[0])
			if err != nil {
				return fmt.Errorf("load layout: %w", err)
			}
			if l.Source == layout.SourceToml {
				return fmt.Errorf("%s is already a TOML layout", args[0])
			}

			out, err := layout.SerializeToml(l)
			if err != nil {
				return fmt.Errorf("serialize toml: %w", err)
			}

			if outFile == "" {
				outFile = strings.TrimSuffix(args[0], filepath.Ext(args[0])) + ".toml"
			}
			if err := os.WriteFile(outFile, out, 0o644); err != nil {
				return fmt.Errorf("write %s: %w", outFile, err)
			}
			fmt.Printf("wrote %s\n", outFile)
			return nil
		},
	}
	cmd.Flags().StringVarP(&outFile, "output", "o", "", "output TOML path (default: FILE with a .toml extension)")
	return cmd
}

func describeFlags(readonly, dangerous bool) string {
	var parts []string
	if readonly {
		parts = append(parts, "readonly")
	}
	if dangerous {
		parts = append(parts, "dangerous")
	}
	if len(parts) == 0 {
		return ""
	}
	return "[" + strings.Join(parts, ",") + "]"
}
