//go:build !linux

package main

import "fmt"

func openMTD(path string) (opaqueDevice, error) {
	return nil, fmt.Errorf("--mtd %q: MTD character devices are Linux-only", path)
}
