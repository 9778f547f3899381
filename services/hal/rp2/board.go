//go:build rp2040 || rp2350

// Package rp2 brings up the ARTIE board on an RP2040 from a types.Config.
package rp2

import (
	"machine"

	"github.com/jangala-dev/tinygo-uartx/uartx"
	"tinygo.org/x/drivers/dht"

	"artie-go/drivers/aht20"
	"artie-go/errcode"
	"artie-go/services/hal"
	"artie-go/types"
)

const i2cHz = 100_000

// Open configures every peripheral named in cfg and returns the board.
func Open(cfg types.Config) (hal.Board, error) {
	p := cfg.Pins
	var b hal.Board

	port, err := openPort(cfg.Serial)
	if err != nil {
		return b, err
	}
	b.Port = port

	var i2c *machine.I2C
	if cfg.Sensors.Climate == types.ClimateAHT20 || cfg.Display.UsesI2C() {
		id := cfg.Sensors.I2C
		if cfg.Display.UsesI2C() {
			id = string(cfg.Display.Bus)
		}
		if i2c, err = openI2C(id, p.SDA, p.SCL); err != nil {
			return b, err
		}
	}

	if cfg.Display.UsesI2C() {
		b.Display, err = newI2CLCD(i2c, cfg.Display.Addr, cfg.Display.Cols, cfg.Display.Rows)
	} else {
		b.Display, err = newGPIOLCD(p.LCDD, p.LCDEN, p.LCDRS, cfg.Display.Cols, cfg.Display.Rows)
	}
	if err != nil {
		return b, errcode.Wrap(errcode.Error, "display", err)
	}

	green, err := newPWMLevel(p.Green)
	if err != nil {
		return b, errcode.Wrap(errcode.UnknownPin, "rgb.green", err)
	}
	b.Indicator = hal.Indicator{Red: newOut(p.Red), Green: green, Blue: newOut(p.Blue)}

	b.Buzzer = newPiezo(p.Piezo)
	if b.Servo, err = newServo(p.Servo); err != nil {
		return b, errcode.Wrap(errcode.UnknownPin, "servo", err)
	}

	switch cfg.Sensors.Climate {
	case types.ClimateDHT11:
		b.Climate = newDHT(p.DHT, dht.DHT11)
	case types.ClimateDHT22:
		b.Climate = newDHT(p.DHT, dht.DHT22)
	case types.ClimateAHT20:
		d := aht20.New(i2c)
		if err := d.Configure(aht20.Config{}); err != nil {
			return b, errcode.Wrap(errcode.Error, "aht20", err)
		}
		b.Climate = d
	default:
		return b, errcode.New(errcode.Unsupported, "climate", string(cfg.Sensors.Climate))
	}

	machine.InitADC()
	b.Light = newADCLight(p.Light)
	b.Button = newIn(p.Button)
	return b, nil
}

func openI2C(id string, sda, scl int) (*machine.I2C, error) {
	var hw *machine.I2C
	switch id {
	case "i2c0":
		hw = machine.I2C0
	case "i2c1":
		hw = machine.I2C1
	default:
		return nil, errcode.New(errcode.InvalidParams, "i2c", "unknown bus "+id)
	}
	if err := hw.Configure(machine.I2CConfig{
		SDA:       machine.Pin(sda),
		SCL:       machine.Pin(scl),
		Frequency: i2cHz,
	}); err != nil {
		return nil, errcode.Wrap(errcode.UnknownPin, "i2c", err)
	}
	return hw, nil
}

// ---- serial ----

func openPort(sc types.SerialConfig) (hal.Port, error) {
	var hw *uartx.UART
	switch sc.Transport {
	case types.TransportUSB:
		return machine.Serial, nil
	case types.TransportUART0:
		hw = uartx.UART0
	case types.TransportUART1:
		hw = uartx.UART1
	default:
		return nil, errcode.New(errcode.Unsupported, "serial", string(sc.Transport))
	}
	if err := hw.Configure(uartx.UARTConfig{
		BaudRate: sc.Baud,
		TX:       machine.Pin(sc.TX),
		RX:       machine.Pin(sc.RX),
	}); err != nil {
		return nil, errcode.Wrap(errcode.InvalidParams, "serial", err)
	}
	return &uartPort{u: hw}, nil
}

// uartPort adapts uartx to hal.Port.
type uartPort struct {
	u   *uartx.UART
	one [1]byte
}

func (p *uartPort) Buffered() int               { return p.u.Buffered() }
func (p *uartPort) Write(b []byte) (int, error) { return p.u.Write(b) }

func (p *uartPort) ReadByte() (byte, error) {
	n, err := p.u.Read(p.one[:])
	if err != nil {
		return 0, err
	}
	if n == 0 {
		return 0, errcode.New(errcode.Error, "serial", "rx empty")
	}
	return p.one[0], nil
}
