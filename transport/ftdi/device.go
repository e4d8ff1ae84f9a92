// Package ftdi adapts an FT2232H/FT232H MPSSE SPI connection to
// flashcore's programmer.Programmer contract, so the core's protocol,
// erase, wp, and flash packages can drive a real chip over the same
// FTDI-based rig the teacher's cmd/gice CLI uses.
package ftdi

import (
	"errors"
	"fmt"
	"sync/atomic"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/physic"
	periphspi "periph.io/x/conn/v3/spi"
	"periph.io/x/host/v3"
	"periph.io/x/host/v3/ftdi"
)

// Device owns an FT2232H's MPSSE SPI connection and the chip-select line
// wired to the flash chip's CS pin. ADBUS4 is used for CS, matching the
// iCEBreaker/icestorm wiring the teacher's rig targets. NewDevice is the
// only constructor and always uses ADBUS4; no other chip-select pin can be
// chosen.
type Device struct {
	FTDI *ftdi.FT232H

	cs    gpio.PinIO
	clock physic.Frequency
	conn  periphspi.Conn
}

var hostInitialized atomic.Bool

// NewDevice finds the first FT2232H on the bus and opens an MPSSE/SPI
// connection at 30 MHz, mode 0 — the FTDI MPSSE engine only supports SPI
// modes 0 and 2 (AN_114 §1.2), and mode 0 is common to every chip this
// package targets.
func NewDevice() (*Device, error) {
	if hostInitialized.CompareAndSwap(false, true) {
		if _, err := host.Init(); err != nil {
			return nil, fmt.Errorf("host initialization failed: %w", err)
		}
	}

	d := &Device{
		clock: 30 * physic.MegaHertz, // AN_135 3.2.1 Divisors
	}
	if err := d.findFT2232H(); err != nil {
		return nil, err
	}
	d.cs = d.FTDI.D4
	if err := d.connectSPI(); err != nil {
		return nil, err
	}
	return d, nil
}

func (d *Device) findFT2232H() error {
	const (
		vendorID  = 0x0403
		productID = 0x6010
	)

	info := ftdi.Info{}
	for _, dev := range ftdi.All() {
		dev.Info(&info)
		if info.VenID != vendorID || info.DevID != productID {
			continue
		}
		if ft, ok := dev.(*ftdi.FT232H); ok {
			d.FTDI = ft
			return nil
		}
	}
	return errors.New("FT2232H device not found")
}

func (d *Device) connectSPI() (err error) {
	if d.FTDI == nil {
		return errors.New("FT2232H device not found")
	}
	port, err := d.FTDI.SPI()
	if err != nil {
		return fmt.Errorf("failed to get SPI port: %w", err)
	}
	d.conn, err = port.Connect(d.clock, periphspi.Mode0, 8)
	return err
}

// Programmer wraps d as a flashcore programmer.Programmer.
func (d *Device) Programmer() *Programmer {
	return &Programmer{conn: d.conn, cs: d.cs}
}
