package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newProbeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "probe",
		Short: "Identify the attached chip and print its descriptor",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, _, err := openContext("")
			if err != nil {
				return err
			}
			mode := "3-byte"
			if ctx.FourByteMode() {
				mode = "4-byte"
			}
			fmt.Printf("%s\n", ctx.Chip.String())
			fmt.Printf("addressing:    %s\n", mode)
			fmt.Printf("size:          0x%X (%d bytes)\n", ctx.Chip.TotalSize, ctx.Chip.TotalSize)
			fmt.Printf("page size:     %d\n", ctx.Chip.PageSize)
			fmt.Printf("erase blocks:  %v\n", ctx.Chip.EraseBlocks)
			return nil
		},
	}
}
