// Package aht20 provides a driver for the AHT20 temperature/humidity sensor.
//
//	d := aht20.New(machine.I2C0)
//	d.Configure(aht20.Config{})
//	t, rh := d.ReadClimate() // NaN, NaN on failure
//
// NOTE: I2C.Tx MUST perform a write followed by a repeated-start read when both
// w and r are provided, without releasing the bus.
package aht20

import (
	"errors"
	"math"
	"time"

	"tinygo.org/x/drivers"
)

// I2C address.
const Address = 0x38

// Commands and status bits (per datasheet/common driver practice).
const (
	cmdTrigger    = 0xAC
	cmdInitialize = 0xBE
	cmdSoftReset  = 0xBA
	cmdStatus     = 0x71

	statusBusy       = 0x80
	statusCalibrated = 0x08
)

// Errors returned by the driver.
var (
	ErrTimeout  = errors.New("aht20: timeout")
	ErrNotReady = errors.New("aht20: not ready")
	ErrProtocol = errors.New("aht20: protocol error")
)

// Config controls non-hardware behaviour. All fields are optional.
type Config struct {
	// Address defaults to 0x38 if zero.
	Address uint16
	// Conversion is the wait between trigger and the first collect. Default 80 ms.
	Conversion time.Duration
	// PollInterval is the wait between collects while the device is busy.
	// Default 15 ms.
	PollInterval time.Duration
	// Attempts bounds the number of collects per measurement. Default 10.
	Attempts int
	// Sleep is the wait primitive. Default time.Sleep.
	Sleep func(time.Duration)
}

// Device wraps an I2C connection to an AHT20 device.
type Device struct {
	bus drivers.I2C
	cfg Config
	buf [7]byte

	last Sample
}

// New creates a new AHT20 connection. The I2C bus must already be configured.
// This function only creates the Device object; it does not touch the device.
func New(bus drivers.I2C) *Device {
	d := &Device{bus: bus}
	d.cfg = withDefaults(Config{})
	return d
}

func withDefaults(c Config) Config {
	if c.Address == 0 {
		c.Address = Address
	}
	if c.Conversion <= 0 {
		c.Conversion = 80 * time.Millisecond
	}
	if c.PollInterval <= 0 {
		c.PollInterval = 15 * time.Millisecond
	}
	if c.Attempts <= 0 {
		c.Attempts = 10
	}
	if c.Sleep == nil {
		c.Sleep = time.Sleep
	}
	return c
}

// Configure applies cfg and calibrates the device unless it reports it is
// already calibrated.
func (d *Device) Configure(cfg Config) error {
	d.cfg = withDefaults(cfg)

	st, err := d.Status()
	if err == nil && st&statusCalibrated != 0 {
		return nil
	}
	if err := d.bus.Tx(d.cfg.Address, []byte{cmdInitialize, 0x08, 0x00}, nil); err != nil {
		return err
	}
	d.cfg.Sleep(10 * time.Millisecond)
	return nil
}

// Reset issues a soft reset. Give the device ~20ms afterwards before using.
func (d *Device) Reset() error {
	return d.bus.Tx(d.cfg.Address, []byte{cmdSoftReset}, nil)
}

// Status reads the status byte.
func (d *Device) Status() (byte, error) {
	data := d.buf[:1]
	if err := d.bus.Tx(d.cfg.Address, []byte{cmdStatus}, data); err != nil {
		return 0, err
	}
	return data[0], nil
}

// Trigger starts a measurement without waiting for it.
func (d *Device) Trigger() error {
	return d.bus.Tx(d.cfg.Address, []byte{cmdTrigger, 0x33, 0x00}, nil)
}

// Collect reads one finished measurement. It returns ErrNotReady while the
// device is converting and ErrProtocol on a CRC mismatch.
func (d *Device) Collect(out *Sample) error {
	data := d.buf[:]
	if err := d.bus.Tx(d.cfg.Address, nil, data); err != nil {
		return err
	}
	if data[0]&statusBusy != 0 || data[0]&statusCalibrated == 0 {
		return ErrNotReady
	}
	if crc8(data[:6]) != data[6] {
		return ErrProtocol
	}
	s := Sample{
		RawHumidity: uint32(data[1])<<12 | uint32(data[2])<<4 | uint32(data[3])>>4,
		RawTemp:     uint32(data[3]&0x0F)<<16 | uint32(data[4])<<8 | uint32(data[5]),
	}
	d.last = s
	if out != nil {
		*out = s
	}
	return nil
}

// Read runs a full measurement: trigger, wait for conversion, then collect
// until ready or Attempts is exhausted.
func (d *Device) Read() (Sample, error) {
	if err := d.Trigger(); err != nil {
		return Sample{}, err
	}
	d.cfg.Sleep(d.cfg.Conversion)
	var s Sample
	for i := 0; i < d.cfg.Attempts; i++ {
		switch err := d.Collect(&s); err {
		case nil:
			return s, nil
		case ErrNotReady:
			d.cfg.Sleep(d.cfg.PollInterval)
		default:
			return Sample{}, err
		}
	}
	return Sample{}, ErrTimeout
}

// ReadClimate measures once and returns °C and %RH, or NaN for both when the
// measurement fails.
func (d *Device) ReadClimate() (tempC, rh float32) {
	s, err := d.Read()
	if err != nil {
		nan := float32(math.NaN())
		return nan, nan
	}
	return s.Celsius(), s.RelHumidity()
}

// Last returns the most recent successful sample.
func (d *Device) Last() Sample { return d.last }

// Sample holds raw 20-bit readings.
type Sample struct {
	RawHumidity uint32
	RawTemp     uint32
}

func (s Sample) RelHumidity() float32 {
	return float32(s.RawHumidity) * 100 / 0x100000
}

func (s Sample) Celsius() float32 {
	return float32(s.RawTemp)*200/0x100000 - 50
}

// DeciRelHumidity returns tenths of %RH.
func (s Sample) DeciRelHumidity() int32 {
	return int32(s.RawHumidity) * 1000 / 0x100000
}

// DeciCelsius returns tenths of °C.
func (s Sample) DeciCelsius() int32 {
	return int32(s.RawTemp)*2000/0x100000 - 500
}

// crc8 is CRC-8/NRSC-5 as used by the AHT2x family (poly 0x31, init 0xFF).
func crc8(b []byte) byte {
	crc := byte(0xFF)
	for _, v := range b {
		crc ^= v
		for i := 0; i < 8; i++ {
			if crc&0x80 != 0 {
				crc = crc<<1 ^ 0x31
			} else {
				crc <<= 1
			}
		}
	}
	return crc
}
