package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func newWriteCmd() *cobra.Command {
	var (
		inFile         string
		regionName     string
		layoutPath     string
		noErase        bool
		noVerify       bool
		allowDangerous bool
	)
	cmd := &cobra.Command{
		Use:   "write [START+LENGTH]",
		Short: "Write a file's contents to a range (or a named layout region)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if inFile == "" {
				return fmt.Errorf("--input is required")
			}
			data, err := os.ReadFile(inFile)
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
				ctx.NoErase = noErase
				ctx.Verify = !noVerify
				ctx.AllowDangerous = allowDangerous
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
			if uint32(len(data)) != length {
				return fmt.Errorf("input file is %d bytes, range is %d bytes", len(data), length)
			}

			if err := backend.Write(addr, data, noErase, progressSink("write")); err != nil {
				return fmt.Errorf("write: %w", err)
			}
			if ctx == nil && !noVerify {
				if err := backend.Verify(addr, data); err != nil {
					return fmt.Errorf("verify: %w", err)
				}
			}
			log.Infow("write complete", "addr", addr, "length", length)
			return nil
		},
	}
	cmd.Flags().StringVarP(&inFile, "input", "i", "", "input file")
	cmd.Flags().StringVar(&regionName, "region", "", "write a named layout region instead of START+LENGTH")
	cmd.Flags().StringVar(&layoutPath, "layout", "", "layout file (TOML) to resolve --region against")
	cmd.Flags().BoolVar(&noErase, "no-erase", false, "skip the pre-write erase plan")
	cmd.Flags().BoolVar(&noVerify, "no-verify", false, "skip the post-write verify read-back")
	cmd.Flags().BoolVar(&allowDangerous, "allow-dangerous", false, "permit writes to regions flagged dangerous by the layout")
	return cmd
}
