//go:build rp2040 || rp2350

package rp2

import (
	"machine"
	"math"
	"time"

	"tinygo.org/x/drivers/buzzer"
	"tinygo.org/x/drivers/dht"
	"tinygo.org/x/drivers/hd44780"
	"tinygo.org/x/drivers/hd44780i2c"
	"tinygo.org/x/drivers/servo"
)

// ---- display ----

// gpioLCD is a parallel HD44780 in 4-bit mode.
type gpioLCD struct {
	d    hd44780.Device
	cols int
}

func newGPIOLCD(data [4]int, en, rs, cols, rows int) (*gpioLCD, error) {
	pins := make([]machine.Pin, len(data))
	for i, n := range data {
		pins[i] = machine.Pin(n)
	}
	d, err := hd44780.NewGPIO4Bit(pins, machine.Pin(en), machine.Pin(rs), machine.NoPin)
	if err != nil {
		return nil, err
	}
	if err := d.Configure(hd44780.Config{Width: int16(cols), Height: int16(rows)}); err != nil {
		return nil, err
	}
	return &gpioLCD{d: d, cols: cols}, nil
}

func (l *gpioLCD) Clear() { l.d.ClearDisplay() }

func (l *gpioLCD) Print(row int, text string) {
	l.d.SetCursor(0, uint8(row))
	l.d.Write([]byte(clip(text, l.cols)))
	l.d.Display()
}

// i2cLCD is an HD44780 behind a PCF8574 backpack.
type i2cLCD struct {
	d    hd44780i2c.Device
	cols int
}

func newI2CLCD(bus *machine.I2C, addr uint8, cols, rows int) (*i2cLCD, error) {
	d := hd44780i2c.New(bus, addr)
	if err := d.Configure(hd44780i2c.Config{Width: uint8(cols), Height: uint8(rows)}); err != nil {
		return nil, err
	}
	return &i2cLCD{d: d, cols: cols}, nil
}

func (l *i2cLCD) Clear() { l.d.ClearDisplay() }

func (l *i2cLCD) Print(row int, text string) {
	l.d.SetCursor(0, uint8(row))
	l.d.Print([]byte(clip(text, l.cols)))
}

func clip(s string, n int) string {
	if len(s) > n {
		return s[:n]
	}
	return s
}

// ---- buzzer ----

// piezo bit-bangs tones; Tone blocks for the tone duration.
type piezo struct{ d buzzer.Device }

func newPiezo(n int) *piezo {
	p := machine.Pin(n)
	p.Configure(machine.PinConfig{Mode: machine.PinOutput})
	d := buzzer.New(p)
	d.BPM = 60 // one beat per second: durations are in seconds
	return &piezo{d: d}
}

func (p *piezo) Tone(hz uint16, d time.Duration) {
	_ = p.d.Tone(float64(hz), d.Seconds())
}

func (p *piezo) Off() { _ = p.d.Off() }

// ---- servo ----

type hobbyServo struct{ s servo.Servo }

func newServo(n int) (*hobbyServo, error) {
	pin := machine.Pin(n)
	ctrl, err := pwmFor(pin)
	if err != nil {
		return nil, err
	}
	s, err := servo.New(ctrl, pin)
	if err != nil {
		return nil, err
	}
	return &hobbyServo{s: s}, nil
}

func (s *hobbyServo) SetAngle(deg int) { _ = s.s.SetAngle(deg) }

// ---- climate ----

type dhtClimate struct{ d dht.Device }

func newDHT(n int, model dht.DeviceType) *dhtClimate {
	d := dht.New(machine.Pin(n), model)
	d.Configure(dht.UpdatePolicy{UpdateAutomatically: false})
	return &dhtClimate{d: d}
}

func (c *dhtClimate) ReadClimate() (float32, float32) {
	nan := float32(math.NaN())
	if err := c.d.ReadMeasurements(); err != nil {
		return nan, nan
	}
	t, h, err := c.d.Measurements()
	if err != nil {
		return nan, nan
	}
	return float32(t) / 10, float32(h) / 10
}
