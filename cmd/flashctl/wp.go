package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/spiflash/flashcore/wp"
)

func newWpCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "wp",
		Short: "Inspect and change write-protection status",
	}
	root.AddCommand(newWpStatusCmd(), newWpEnableCmd(), newWpDisableCmd(), newWpSetRangeCmd(), newWpSetRegionCmd())
	return root
}

func newWpStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Print the decoded protected range and lock mode",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, p, err := openContext("")
			if err != nil {
				return err
			}
			st, err := wp.ReadStatus(p, ctx.Chip)
			if err != nil {
				return fmt.Errorf("wp status: %w", err)
			}
			fmt.Printf("mode:      %s (hardware enforced: %v)\n", st.Mode, st.Mode.HwEnforced())
			if st.Range.IsProtected() {
				fmt.Printf("protected: [0x%X, 0x%X) (%d bytes)\n", st.Range.Start, st.Range.End, st.Range.Size())
			} else {
				fmt.Println("protected: none")
			}
			fmt.Printf("SR1:       0x%02X\n", st.SR1)
			fmt.Printf("SR2:       0x%02X\n", st.SR2)
			return nil
		},
	}
}

func newWpEnableCmd() *cobra.Command {
	var volatile bool
	cmd := &cobra.Command{
		Use:   "enable",
		Short: "Set SRP to move protection into hardware mode",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, p, err := openContext("")
			if err != nil {
				return err
			}
			if err := wp.EnableHardware(p, ctx.Chip, volatile); err != nil {
				return fmt.Errorf("wp enable: %w", err)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&volatile, "volatile", false, "write with the volatile (EWSR) status-register latch instead of WREN")
	return cmd
}

func newWpDisableCmd() *cobra.Command {
	var volatile bool
	cmd := &cobra.Command{
		Use:   "disable",
		Short: "Clear the BP and SRP/SRL bits, leaving no range protected and the status register freely writable",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, p, err := openContext("")
			if err != nil {
				return err
			}
			if err := wp.Disable(p, ctx.Chip, volatile); err != nil {
				return fmt.Errorf("wp disable: %w", err)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&volatile, "volatile", false, "write with the volatile (EWSR) status-register latch instead of WREN")
	return cmd
}

func newWpSetRangeCmd() *cobra.Command {
	var volatile bool
	cmd := &cobra.Command{
		Use:   "set-range START END",
		Short: "Protect the exact [START, END) range representable by this chip's BP table",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			start, err := parseUint32(args[0])
			if err != nil {
				return err
			}
			end, err := parseUint32(args[1])
			if err != nil {
				return err
			}
			ctx, p, err := openContext("")
			if err != nil {
				return err
			}
			if err := wp.SetRange(p, ctx.Chip, wp.Range{Start: start, End: end}, volatile); err != nil {
				return fmt.Errorf("wp set-range: %w", err)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&volatile, "volatile", false, "write with the volatile (EWSR) status-register latch instead of WREN")
	return cmd
}

func newWpSetRegionCmd() *cobra.Command {
	var (
		volatile   bool
		layoutPath string
	)
	cmd := &cobra.Command{
		Use:   "set-region NAME",
		Short: "Protect exactly the named layout region",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if layoutPath == "" {
				return fmt.Errorf("--layout is required to resolve a region name")
			}
			ctx, p, err := openContext(layoutPath)
			if err != nil {
				return err
			}
			r, err := ctx.ResolveRegion(args[0])
			if err != nil {
				return err
			}
			if err := wp.SetRegion(p, ctx.Chip, r.Start, r.Size(), volatile); err != nil {
				return fmt.Errorf("wp set-region: %w", err)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&volatile, "volatile", false, "write with the volatile (EWSR) status-register latch instead of WREN")
	cmd.Flags().StringVar(&layoutPath, "layout", "", "layout file (TOML) naming the region")
	return cmd
}

