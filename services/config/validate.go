package config

import (
	"strconv"

	"artie-go/errcode"
	"artie-go/types"
)

// RP2040 user GPIO range and ADC-capable pins.
const (
	maxGPIO     = 29
	adcFirstPin = 26

	minFrame = 16
	maxFrame = 4096
)

// Validate checks ranges and pin assignments.
func Validate(c types.Config) error {
	switch c.Serial.Transport {
	case types.TransportUSB:
	case types.TransportUART0, types.TransportUART1:
		if err := pinInRange("serial.tx", c.Serial.TX); err != nil {
			return err
		}
		if err := pinInRange("serial.rx", c.Serial.RX); err != nil {
			return err
		}
	default:
		return invalid("serial.transport: unknown " + strconv.Quote(string(c.Serial.Transport)))
	}
	if c.Serial.Baud == 0 {
		return invalid("serial.baud: must be positive")
	}
	if c.Frame.Capacity < minFrame || c.Frame.Capacity > maxFrame {
		return invalid("frame.capacity: out of range")
	}
	if c.Sensors.IntervalMs == 0 {
		return invalid("sensors.interval_ms: must be positive")
	}
	switch c.Sensors.Climate {
	case types.ClimateDHT11, types.ClimateDHT22:
	case types.ClimateAHT20:
		if c.Sensors.I2C != "i2c0" && c.Sensors.I2C != "i2c1" {
			return invalid("sensors.i2c: unknown " + strconv.Quote(c.Sensors.I2C))
		}
	default:
		return invalid("sensors.climate: unknown " + strconv.Quote(string(c.Sensors.Climate)))
	}
	switch c.Display.Bus {
	case types.DisplayGPIO:
	case types.DisplayI2C0, types.DisplayI2C1:
		if c.Sensors.Climate == types.ClimateAHT20 && string(c.Display.Bus) != c.Sensors.I2C {
			return invalid("display.bus: must share " + c.Sensors.I2C + " with the climate sensor")
		}
	default:
		return invalid("display.bus: unknown " + strconv.Quote(string(c.Display.Bus)))
	}
	if c.Display.Cols < 1 || c.Display.Cols > 40 || c.Display.Rows < 2 || c.Display.Rows > 4 {
		return invalid("display: unsupported geometry")
	}
	return checkPins(c)
}

// checkPins rejects out-of-range and doubly assigned pins among those the
// configuration actually uses.
func checkPins(c types.Config) error {
	p := c.Pins
	type use struct {
		name string
		pin  int
	}
	uses := []use{
		{"red", p.Red}, {"green", p.Green}, {"blue", p.Blue},
		{"button", p.Button}, {"servo", p.Servo}, {"piezo", p.Piezo},
		{"light", p.Light},
	}
	if !c.Display.UsesI2C() {
		uses = append(uses, use{"lcd_rs", p.LCDRS}, use{"lcd_en", p.LCDEN})
		for i, d := range p.LCDD {
			uses = append(uses, use{"lcd_d" + strconv.Itoa(i+4), d})
		}
	}
	if c.Sensors.Climate == types.ClimateAHT20 || c.Display.UsesI2C() {
		uses = append(uses, use{"sda", p.SDA}, use{"scl", p.SCL})
	}
	if c.Sensors.Climate != types.ClimateAHT20 {
		uses = append(uses, use{"dht", p.DHT})
	}
	if c.Serial.Transport != types.TransportUSB {
		uses = append(uses, use{"serial.tx", c.Serial.TX}, use{"serial.rx", c.Serial.RX})
	}

	owner := make(map[int]string, len(uses))
	for _, u := range uses {
		if err := pinInRange("pins."+u.name, u.pin); err != nil {
			return err
		}
		if prev, ok := owner[u.pin]; ok {
			return invalid("pins." + u.name + ": GP" + strconv.Itoa(u.pin) + " already used by " + prev)
		}
		owner[u.pin] = u.name
	}
	if p.Light < adcFirstPin {
		return errcode.New(errcode.UnknownPin, "config", "pins.light: GP"+strconv.Itoa(p.Light)+" is not ADC capable")
	}
	return nil
}

func pinInRange(name string, pin int) error {
	if pin < 0 || pin > maxGPIO {
		return errcode.New(errcode.UnknownPin, "config", name+": GP"+strconv.Itoa(pin)+" out of range")
	}
	return nil
}

func invalid(msg string) error {
	return errcode.New(errcode.InvalidParams, "config", msg)
}
