//go:build linux

package main

import "github.com/spiflash/flashcore/transport/mtd"

func openMTD(path string) (opaqueDevice, error) {
	return mtd.Open(path)
}
