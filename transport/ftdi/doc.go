// References:
//
// FTDI (https://ftdichip.com/document/application-notes/)
//   - [FTDI-AN_108]: Command Processor for MPSSE and MCU Host Bus Emulation Modes
//   - [FTDI-AN_114]: Interfacing FT2232H Hi-Speed Devices To SPI Bus
//   - [FTDI-AN_135]: FTDI MPSSE Basics
//   - [FTDI-DS_FT2232H]: FT2232H Hi-Speed Dual USB UART/FIFO IC Data Sheet
//
// FPGA
//   - [Lattice-EB82]: iCEstick User Manual
//   - [iCEBreaker]: iCEBreaker FPGA hardware reference
//
// SPI Flash
//   - [N25Q32]: N25Q032A Micron Serial NOR Flash Memory datasheet
//   - [W25Q128]: W25Q128JV-DTR Winbond Serial Flash Memory datasheet
package ftdi
