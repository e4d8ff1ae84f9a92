package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newEraseCmd() *cobra.Command {
	var (
		regionName     string
		layoutPath     string
		allowDangerous bool
	)
	cmd := &cobra.Command{
		Use:   "erase [START+LENGTH]",
		Short: "Erase a range (or a named layout region)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			backend, closeFn, ctx, err := openBackend(layoutPath)
			if err != nil {
				return err
			}
			defer closeFn()

			var addr, length uint32
			if ctx != nil {
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

			if err := backend.Erase(addr, length); err != nil {
				return fmt.Errorf("erase: %w", err)
			}
			log.Infow("erase complete", "addr", addr, "length", length)
			return nil
		},
	}
	cmd.Flags().StringVar(&regionName, "region", "", "erase a named layout region instead of START+LENGTH")
	cmd.Flags().StringVar(&layoutPath, "layout", "", "layout file (TOML) to resolve --region against")
	cmd.Flags().BoolVar(&allowDangerous, "allow-dangerous", false, "permit erasing regions flagged dangerous by the layout")
	return cmd
}
