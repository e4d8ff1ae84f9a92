package main

import (
	"flag"
	"io"
	"os"

	"github.com/spiflash/flashcore/chip"
	"github.com/spiflash/flashcore/flash"
	"github.com/spiflash/flashcore/transport/ftdi"
)

func writeCommand(args []string) {
	fs := flag.NewFlagSet("write", flag.ExitOnError)
	var (
		filename string
		noErase  bool
		noVerify bool
	)
	fs.StringVar(&filename, "f", "", "input file")
	fs.BoolVar(&noErase, "no-erase", false, "skip the pre-write erase plan")
	fs.BoolVar(&noVerify, "no-verify", false, "skip the post-write verify read-back")
	fs.Parse(args)

	if filename == "" {
		fatalUsage("input file is required")
	}

	data, err := readAll(filename)
	if err != nil {
		fatalf("failed to read input file: %v", err)
	}

	d, err := ftdi.NewDevice()
	if err != nil {
		fatalf("%v", err)
	}
	p := d.Programmer()

	ctx, err := flash.Probe(p, chip.StaticDatabase(), "")
	if err != nil {
		fatalf("probe failed: %v", err)
	}
	ctx.NoErase = noErase
	ctx.Verify = !noVerify

	if err := flash.Write(p, ctx, 0, data, nil); err != nil {
		fatalf("write flash failed: %v", err)
	}
}

func readAll(filename string) ([]byte, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}
