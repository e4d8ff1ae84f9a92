// Package protocol implements the JEDEC SPI25 command sequences (§4.2):
// pure functions over a programmer.Programmer that hold no state of their
// own, translating a high-level intent into one or more spi.Command
// executions.
//
// Grounded in rflasher-core/src/protocol/spi25.rs, with the gaps that
// source leaves unfilled closed per the specification: JEP106 continuation
// handling in ReadJedecID, feature-gated status-register-2/3 reads,
// exponential-backoff polling, and a volatile write-status path using
// EWSR (0x50) instead of a hardcoded WREN.
package protocol

import (
	"fmt"

	"github.com/spiflash/flashcore/chip"
	"github.com/spiflash/flashcore/flasherr"
	"github.com/spiflash/flashcore/programmer"
	"github.com/spiflash/flashcore/spi"
)

// maxJep106Banks bounds the continuation-byte scan in ReadJedecID; JEP106
// publishes manufacturer IDs across at most this many banks.
const maxJep106Banks = 16

// ReadJedecID issues RDID and returns (manufacturer, device). Continuation
// bytes (0x7F) preceding the real manufacturer ID, per JEP106, are skipped.
func ReadJedecID(p programmer.Programmer) (mfg byte, dev uint16, err error) {
	buf := make([]byte, 3+maxJep106Banks)
	cmd := spi.ReadReg(spi.OpRDID, buf)
	if err := p.Execute(&cmd); err != nil {
		return 0, 0, fmt.Errorf("read jedec id: %w", err)
	}

	i := 0
	for i < maxJep106Banks && buf[i] == spi.JEP106Continuation {
		i++
	}
	if i >= maxJep106Banks {
		return 0, 0, &flasherr.ChipNotFound{}
	}
	mfg = buf[i]
	dev = uint16(buf[i+1])<<8 | uint16(buf[i+2])
	return mfg, dev, nil
}

// ReadStatus reads status register n (1, 2, or 3). For n > 1, if the chip's
// feature set lacks the corresponding status_reg_N flag, it returns 0
// without issuing any transaction (§4.2).
func ReadStatus(p programmer.Programmer, n int, features chip.Features) (byte, error) {
	var opcode byte
	switch n {
	case 1:
		opcode = spi.OpRDSR
	case 2:
		if !features.Has(chip.FeatStatusReg2) {
			return 0, nil
		}
		opcode = spi.OpRDSR2
	case 3:
		if !features.Has(chip.FeatStatusReg3) {
			return 0, nil
		}
		opcode = spi.OpRDSR3
	default:
		return 0, fmt.Errorf("read status: invalid register number %d", n)
	}

	buf := make([]byte, 1)
	cmd := spi.ReadReg(opcode, buf)
	if err := p.Execute(&cmd); err != nil {
		return 0, fmt.Errorf("read status register %d: %w", n, err)
	}
	return buf[0], nil
}

// WriteEnable issues WREN (0x06).
func WriteEnable(p programmer.Programmer) error {
	cmd := spi.Simple(spi.OpWREN)
	return p.Execute(&cmd)
}

// WriteDisable issues WRDI (0x04).
func WriteDisable(p programmer.Programmer) error {
	cmd := spi.Simple(spi.OpWRDI)
	return p.Execute(&cmd)
}

// pollSchedule returns the exponential-backoff delay, in microseconds, for
// the given zero-based poll attempt: starts at 10us, doubles, caps at 1ms
// (§5).
func pollSchedule(attempt int) uint32 {
	const start, cap_ = 10, 1000
	d := start << attempt
	if d > cap_ || d < start {
		return cap_
	}
	return uint32(d)
}

// WaitReady polls RDSR until the BUSY bit clears, using the exponential
// backoff schedule of §5, failing with Timeout once timeoutUs elapses.
func WaitReady(p programmer.Programmer, timeoutUs uint32) error {
	var elapsed uint32
	for attempt := 0; ; attempt++ {
		status, err := ReadStatus(p, 1, 0)
		if err != nil {
			return err
		}
		if status&spi.SR1WIP == 0 {
			return nil
		}
		if elapsed >= timeoutUs {
			return &flasherr.Timeout{Operation: "wait_ready", ElapsedUs: uint64(elapsed)}
		}
		delay := pollSchedule(attempt)
		p.DelayUs(delay)
		elapsed += delay
	}
}

// WriteStatus writes 1-3 status register bytes. A volatile write, or any
// write on a chip that has wrsr_ewsr but not wrsr_wren, is preceded by EWSR
// (0x50); a non-volatile write on a wrsr_wren chip is preceded by WREN
// (§4.2). A chip advertising neither enable path rejects the write rather
// than sending an unguarded WRSR.
func WriteStatus(p programmer.Programmer, features chip.Features, values []byte, volatile bool) error {
	switch {
	case !features.Has(chip.FeatWrsrWren) && !features.Has(chip.FeatWrsrEwsr):
		return &flasherr.UnsupportedOpcode{Opcode: spi.OpWRSR}
	case volatile || !features.Has(chip.FeatWrsrWren):
		cmd := spi.Simple(spi.OpEWSR)
		if err := p.Execute(&cmd); err != nil {
			return fmt.Errorf("write status: EWSR: %w", err)
		}
	default:
		if err := WriteEnable(p); err != nil {
			return fmt.Errorf("write status: WREN: %w", err)
		}
	}

	cmd := spi.WriteReg(spi.OpWRSR, values)
	if err := p.Execute(&cmd); err != nil {
		return fmt.Errorf("write status: WRSR: %w", err)
	}
	if volatile {
		return nil // volatile writes take effect immediately, no polling needed
	}
	return WaitReady(p, 100_000)
}

// addressWidthFor returns the address width matching the caller's current
// addressing mode: 4-byte when fourByteMode is set, 3-byte otherwise. It
// does not look at the address or the chip's features; the mode itself is
// chosen by flash.Probe.
func addressWidthFor(fourByteMode bool) spi.AddressWidth {
	if fourByteMode {
		return spi.Address4Byte
	}
	return spi.Address3Byte
}

// Read fills buf starting at addr, choosing FAST_READ (8 dummy cycles) when
// fast_read is set, and the 4-byte address opcode variant when the context
// is in 4-byte addressing mode. It never chunks beyond buf's length; callers
// needing chunking by the programmer's max_read_len use flash.Read.
func Read(p programmer.Programmer, features chip.Features, fourByteMode bool, addr uint32, buf []byte) error {
	opcode := byte(spi.OpREAD)
	dummy := 0
	if features.Has(chip.FeatFastRead) {
		opcode = spi.OpFastRead
		dummy = 8
	}
	if fourByteMode {
		if opcode == spi.OpFastRead {
			opcode = spi.OpFastRead4B
		} else {
			opcode = spi.OpREAD4B
		}
	}
	cmd := spi.Read(opcode, addr, addressWidthFor(fourByteMode), buf)
	cmd.DummyCycles = dummy
	if err := p.Execute(&cmd); err != nil {
		return fmt.Errorf("read at 0x%X: %w", addr, err)
	}
	return nil
}

// PageProgram writes data (must not cross a 256-byte page boundary) to
// addr, issuing WREN, PP, and polling wait_ready.
func PageProgram(p programmer.Programmer, fourByteMode bool, addr uint32, data []byte, timeoutUs uint32) error {
	if err := WriteEnable(p); err != nil {
		return fmt.Errorf("page program: WREN: %w", err)
	}
	opcode := byte(spi.OpPP)
	if fourByteMode {
		opcode = spi.OpPP4B
	}
	cmd := spi.Write(opcode, addr, addressWidthFor(fourByteMode), data)
	if err := p.Execute(&cmd); err != nil {
		return fmt.Errorf("page program at 0x%X: %w", addr, err)
	}
	if err := WaitReady(p, timeoutUs); err != nil {
		return &flasherr.ProgramTimeout{Addr: addr}
	}
	return nil
}

// EraseBlock issues WREN followed by the erase opcode at addr (3- or
// 4-byte, chip-erase opcodes take no address — see EraseChip), then polls
// wait_ready.
func EraseBlock(p programmer.Programmer, opcode byte, addr uint32, fourByteMode bool, timeoutUs uint32) error {
	if err := WriteEnable(p); err != nil {
		return fmt.Errorf("erase: WREN: %w", err)
	}
	cmd := spi.Erase(opcode, addr, addressWidthFor(fourByteMode))
	if err := p.Execute(&cmd); err != nil {
		return fmt.Errorf("erase at 0x%X: %w", addr, err)
	}
	return WaitReady(p, timeoutUs)
}

// EraseChip issues WREN followed by the whole-chip erase opcode (no
// address phase), then polls wait_ready against the chip-erase timeout.
func EraseChip(p programmer.Programmer, opcode byte, timeoutUs uint32) error {
	if err := WriteEnable(p); err != nil {
		return fmt.Errorf("chip erase: WREN: %w", err)
	}
	cmd := spi.Simple(opcode)
	if err := p.Execute(&cmd); err != nil {
		return fmt.Errorf("chip erase: %w", err)
	}
	return WaitReady(p, timeoutUs)
}

// EnterFourByteMode issues EN4B (0xB7).
func EnterFourByteMode(p programmer.Programmer) error {
	cmd := spi.Simple(spi.OpEN4B)
	return p.Execute(&cmd)
}

// ExitFourByteMode issues EX4B (0xE9).
func ExitFourByteMode(p programmer.Programmer) error {
	cmd := spi.Simple(spi.OpEX4B)
	return p.Execute(&cmd)
}

// SoftwareReset issues RSTEN then RST, each followed by the chip's
// reset-recovery delay. Not part of the distilled spec's literal interface
// (§4.2 supplement grounded in rflasher-core/src/protocol/spi25.rs's
// software_reset). Nothing in this module calls it; it is exported for
// callers that need to return a chip to a known state.
func SoftwareReset(p programmer.Programmer) error {
	cmd := spi.Simple(spi.OpRSTEN)
	if err := p.Execute(&cmd); err != nil {
		return fmt.Errorf("software reset: RSTEN: %w", err)
	}
	p.DelayUs(50)
	cmd = spi.Simple(spi.OpRST)
	if err := p.Execute(&cmd); err != nil {
		return fmt.Errorf("software reset: RST: %w", err)
	}
	p.DelayUs(100)
	return nil
}

// CheckWEL reports whether the Write Enable Latch is set.
func CheckWEL(p programmer.Programmer) (bool, error) {
	status, err := ReadStatus(p, 1, 0)
	if err != nil {
		return false, err
	}
	return status&spi.SR1WEL != 0, nil
}

// IsBusy reports whether a write or erase operation is in progress.
func IsBusy(p programmer.Programmer) (bool, error) {
	status, err := ReadStatus(p, 1, 0)
	if err != nil {
		return false, err
	}
	return status&spi.SR1WIP != 0, nil
}
