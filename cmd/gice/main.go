// Command gice is a minimal, directly-wired demonstration of the FTDI
// transport and the flashcore core: probe, read, and write against a
// single chip attached to an FT2232H rig. It exposes none of the layout,
// write-protection, or region-masking surface — flashctl is the supported
// CLI for that.
package main

import (
	"fmt"
	"os"
)

func fatalf(format string, a ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", a...)
	os.Exit(1)
}

func fatalUsage(format string, a ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", a...)
	os.Exit(2)
}

func usage() {
	fmt.Fprint(os.Stderr, `Usage:
	gice <command> [arguments]

Commands:
	info	 print attached FT2232H device information
	read	 read flash memory
	write	 write flash memory
`)
	os.Exit(2)
}

func main() {
	if len(os.Args) < 2 {
		usage()
	}

	switch cmd, args := os.Args[1], os.Args[2:]; cmd {
	case "info":
		infoCommand()
	case "read":
		readCommand(args)
	case "write":
		writeCommand(args)
	case "help":
		usage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %q\n", cmd)
		usage()
	}
}
