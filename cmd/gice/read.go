package main

import (
	"encoding/hex"
	"flag"
	"fmt"
	"os"

	"github.com/spiflash/flashcore/chip"
	"github.com/spiflash/flashcore/flash"
	"github.com/spiflash/flashcore/transport/ftdi"
)

func readCommand(args []string) {
	fs := flag.NewFlagSet("read", flag.ExitOnError)
	var (
		nread   int
		idOnly  bool
		outFile string
	)
	fs.IntVar(&nread, "n", 256, "number of bytes to read")
	fs.BoolVar(&idOnly, "id", false, "just print the JEDEC ID and matched chip")
	fs.StringVar(&outFile, "o", "", "output file (default: hexdump)")
	fs.Parse(args)

	d, err := ftdi.NewDevice()
	if err != nil {
		fatalf("%v", err)
	}
	p := d.Programmer()

	ctx, err := flash.Probe(p, chip.StaticDatabase(), "")
	if err != nil {
		fatalf("probe failed: %v", err)
	}
	if idOnly {
		fmt.Printf("%02X%04X\t%s\n", ctx.Chip.JedecManufacturer, ctx.Chip.JedecDevice, ctx.Chip.Name)
		return
	}

	data := make([]byte, nread)
	if err := flash.Read(p, ctx, 0, data, nil); err != nil {
		fatalf("read flash failed: %v", err)
	}
	if outFile == "" {
		fmt.Println(hex.Dump(data))
		return
	}
	if err := os.WriteFile(outFile, data, 0644); err != nil {
		fmt.Fprintln(os.Stderr, "write file failed:", err)
	}
}
