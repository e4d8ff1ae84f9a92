//go:build linux

// Package mtd adapts a Linux MTD character device (/dev/mtdN) to
// flashcore's programmer.OpaqueMaster contract. An MTD device already
// exposes read/write/erase at an address — the kernel driver underneath it
// may be SPI NOR, parallel NOR, or something else entirely — so it bypasses
// flashcore's own SPI25 protocol, probe, and write-protection layers per
// §6.2/§9's "two backends" split.
//
// Grounded in platinasystems-goes' flash_eraseall command, which drives the
// same MEMGETINFO/MEMERASE ioctls directly against an MTD device node.
package mtd

import (
	"fmt"
	"os"
	"syscall"
	"unsafe"

	"github.com/spiflash/flashcore/flasherr"
	"github.com/spiflash/flashcore/programmer"
)

const (
	memGetInfo = 0x80204d01
	memErase   = 0x40084d02
)

// info mirrors struct mtd_info_user from <mtd/mtd-abi.h>, the fields
// MEMGETINFO fills in.
type info struct {
	Type      byte
	Flags     uint32
	Size      uint32
	EraseSize uint32
	WriteSize uint32
	OobSize   uint32
	Padding   uint64
}

// eraseInfo mirrors struct erase_info_user, MEMERASE's argument.
type eraseInfo struct {
	Start  uint32
	Length uint32
}

// Device drives an open MTD character device. It implements
// programmer.OpaqueMaster.
type Device struct {
	f         *os.File
	size      uint32
	eraseSize uint32
}

var _ programmer.OpaqueMaster = (*Device)(nil)

// Open opens the MTD device node at path (typically /dev/mtdN) and reads
// its geometry via MEMGETINFO.
func Open(path string) (*Device, error) {
	f, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return nil, fmt.Errorf("open mtd device %s: %w", path, err)
	}

	var mi info
	if _, _, errno := syscall.Syscall(syscall.SYS_IOCTL, f.Fd(), uintptr(memGetInfo), uintptr(unsafe.Pointer(&mi))); errno != 0 {
		f.Close()
		return nil, fmt.Errorf("MEMGETINFO on %s: %w", path, errno)
	}
	if mi.EraseSize == 0 {
		f.Close()
		return nil, fmt.Errorf("mtd device %s reports a zero erase size", path)
	}

	return &Device{f: f, size: mi.Size, eraseSize: mi.EraseSize}, nil
}

// Close releases the underlying device node.
func (d *Device) Close() error { return d.f.Close() }

// Size returns the device's total byte size, as reported by MEMGETINFO.
func (d *Device) Size() int64 { return int64(d.size) }

// Read fills buf from addr via a positioned read, the same contract a raw
// SPI Programmer's protocol.Read gives flashcore's orchestration layer.
func (d *Device) Read(addr uint32, buf []byte) error {
	n, err := d.f.ReadAt(buf, int64(addr))
	if err != nil {
		return &flasherr.TransportError{Kind: flasherr.Permanent, Detail: "mtd read", Err: err}
	}
	if n != len(buf) {
		return &flasherr.TransportError{Kind: flasherr.Permanent, Detail: "mtd short read", Err: fmt.Errorf("got %d of %d bytes", n, len(buf))}
	}
	return nil
}

// Write programs data at addr via a positioned write. Unlike the SPI25
// page-program path, the MTD driver underneath handles page chunking
// itself; the device must already be erased, same as raw NAND/NOR.
func (d *Device) Write(addr uint32, data []byte) error {
	n, err := d.f.WriteAt(data, int64(addr))
	if err != nil {
		return &flasherr.TransportError{Kind: flasherr.Permanent, Detail: "mtd write", Err: err}
	}
	if n != len(data) {
		return &flasherr.TransportError{Kind: flasherr.Permanent, Detail: "mtd short write", Err: fmt.Errorf("wrote %d of %d bytes", n, len(data))}
	}
	return nil
}

// Erase erases [addr, addr+length) one MEMERASE ioctl per erase block, the
// same loop flash_eraseall runs over the whole device.
func (d *Device) Erase(addr uint32, length uint32) error {
	if addr%d.eraseSize != 0 || length%d.eraseSize != 0 {
		return &flasherr.UnalignedRange{Start: addr, End: addr + length, RequiredAlign: d.eraseSize}
	}
	for off := addr; off < addr+length; off += d.eraseSize {
		ei := eraseInfo{Start: off, Length: d.eraseSize}
		if _, _, errno := syscall.Syscall(syscall.SYS_IOCTL, d.f.Fd(), uintptr(memErase), uintptr(unsafe.Pointer(&ei))); errno != 0 {
			return &flasherr.EraseFailed{Addr: off, Opcode: 0xFF, Err: errno}
		}
	}
	return nil
}
