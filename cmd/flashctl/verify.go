package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func newVerifyCmd() *cobra.Command {
	var (
		inFile     string
		regionName string
		layoutPath string
	)
	cmd := &cobra.Command{
		Use:   "verify [START+LENGTH]",
		Short: "Compare a range (or a named layout region) against a file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if inFile == "" {
				return fmt.Errorf("--input is required")
			}
			expected, err := os.ReadFile(inFile)
			if err != nil {
				return fmt.Errorf("read input file: %w", err)
			}

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
			if uint32(len(expected)) != length {
				return fmt.Errorf("input file is %d bytes, range is %d bytes", len(expected), length)
			}

			if err := backend.Verify(addr, expected); err != nil {
				return fmt.Errorf("verify: %w", err)
			}
			fmt.Println("verify OK")
			return nil
		},
	}
	cmd.Flags().StringVarP(&inFile, "input", "i", "", "file to compare against")
	cmd.Flags().StringVar(&regionName, "region", "", "verify a named layout region instead of START+LENGTH")
	cmd.Flags().StringVar(&layoutPath, "layout", "", "layout file (TOML) to resolve --region against")
	return cmd
}
