package spi

// Standard JEDEC SPI25 opcodes, grounded in JESD216 and common manufacturer
// datasheets (Micron N25Q32, Winbond W25Q128 — see the teacher's doc.go).

const (
	// Write control
	OpWREN = 0x06 // Write Enable
	OpWRDI = 0x04 // Write Disable
	OpEWSR = 0x50 // Enable Write Status Register (volatile, legacy SST)

	// Status register
	OpRDSR  = 0x05 // Read Status Register 1
	OpRDSR2 = 0x35 // Read Status Register 2
	OpRDSR3 = 0x15 // Read Status Register 3
	OpWRSR  = 0x01 // Write Status Register 1 (or 1+2, chip-dependent)
	OpWRSR2 = 0x31 // Write Status Register 2
	OpWRSR3 = 0x11 // Write Status Register 3

	// Identification
	OpRDID = 0x9F // Read JEDEC ID
	OpRES  = 0xAB // Release from Deep Power Down / Read Electronic Signature

	// Read - 3-byte address
	OpREAD     = 0x03
	OpFastRead = 0x0B

	// Read - 4-byte address
	OpREAD4B     = 0x13
	OpFastRead4B = 0x0C

	// Page program
	OpPP   = 0x02
	OpPP4B = 0x12

	// Erase - 3-byte address
	OpSE4K  = 0x20 // Sector Erase 4KB
	OpBE32K = 0x52 // Block Erase 32KB
	OpBE64K = 0xD8 // Block Erase 64KB
	OpCE60  = 0x60 // Chip Erase
	OpCEC7  = 0xC7 // Chip Erase (alternate)

	// Erase - 4-byte address
	OpSE4K4B  = 0x21
	OpBE32K4B = 0x5C
	OpBE64K4B = 0xDC

	// 4-byte addressing mode control
	OpEN4B = 0xB7
	OpEX4B = 0xE9

	// Power management
	OpDP = 0xB9 // Deep Power Down

	// Software reset
	OpRSTEN = 0x66
	OpRST   = 0x99

	// Status register bits
	SR1WIP  = 0x01 // Write In Progress
	SR1WEL  = 0x02 // Write Enable Latch
	SR1BP0  = 0x04
	SR1BP1  = 0x08
	SR1BP2  = 0x10
	SR1TB   = 0x20
	SR1SEC  = 0x40
	SR1SRP0 = 0x80

	SR2SRP1 = 0x01
	SR2QE   = 0x02
	SR2CMP  = 0x40
	SR2SUS  = 0x80

	// JEP106 continuation-code byte: present at the start of RDID output
	// for manufacturers whose ID lives past bank 1.
	JEP106Continuation = 0x7F
)
