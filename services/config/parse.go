package config

import (
	"github.com/buger/jsonparser"

	"artie-go/errcode"
	"artie-go/types"
)

// Defaults is the configuration used for any key a document leaves out.
func Defaults() types.Config {
	return types.Config{
		Serial: types.SerialConfig{Transport: types.TransportUSB, Baud: 115200, TX: 0, RX: 1},
		Frame:  types.FrameConfig{Capacity: 512},
		Sensors: types.SensorsConfig{
			IntervalMs: 2000,
			Climate:    types.ClimateDHT11,
			I2C:        "i2c0",
		},
		Pins: types.PinMap{
			Red: 2, Green: 3, Blue: 4,
			DHT: 5, Button: 6, Servo: 7, Piezo: 8, Light: 26,
			SDA: 20, SCL: 21,
			LCDRS: 12, LCDEN: 13, LCDD: [4]int{14, 15, 16, 17},
		},
		Display: types.DisplayConfig{
			Bus: types.DisplayGPIO, Addr: 0x27,
			Cols: 16, Rows: 2,
			Splash:   "ARTIE V2.2",
			Waiting:  "WAITING PC...",
			SettleMs: 1000,
		},
	}
}

type fieldFunc func(key string, v []byte, vt jsonparser.ValueType) error

// Parse decodes a JSON document over Defaults and validates the result.
// Unknown keys are ignored; a key of the wrong type is an error.
func Parse(raw []byte) (types.Config, error) {
	c := Defaults()
	err := jsonparser.ObjectEach(raw, func(key, v []byte, vt jsonparser.ValueType, _ int) error {
		switch k := string(key); k {
		case "serial":
			return object(k, v, vt, func(key string, v []byte, vt jsonparser.ValueType) error {
				return parseSerialField(&c.Serial, key, v, vt)
			})
		case "frame":
			return object(k, v, vt, func(key string, v []byte, vt jsonparser.ValueType) error {
				if key == "capacity" {
					return intField(&c.Frame.Capacity, k, key, v, vt)
				}
				return nil
			})
		case "sensors":
			return object(k, v, vt, func(key string, v []byte, vt jsonparser.ValueType) error {
				switch key {
				case "interval_ms":
					return uintField(&c.Sensors.IntervalMs, k, key, v, vt)
				case "climate":
					var s string
					err := strField(&s, k, key, v, vt)
					c.Sensors.Climate = types.ClimateModel(s)
					return err
				case "i2c":
					return strField(&c.Sensors.I2C, k, key, v, vt)
				}
				return nil
			})
		case "pins":
			return object(k, v, vt, func(key string, v []byte, vt jsonparser.ValueType) error {
				if key == "lcd_d" {
					return pinArray(&c.Pins.LCDD, v, vt)
				}
				if p := pinRef(&c.Pins, key); p != nil {
					return intField(p, k, key, v, vt)
				}
				return nil
			})
		case "display":
			return object(k, v, vt, func(key string, v []byte, vt jsonparser.ValueType) error {
				switch key {
				case "bus":
					var b string
					err := strField(&b, k, key, v, vt)
					c.Display.Bus = types.DisplayBus(b)
					return err
				case "addr":
					var n int
					if err := intField(&n, k, key, v, vt); err != nil {
						return err
					}
					if n < 0x08 || n > 0x77 {
						return errcode.New(errcode.InvalidParams, "config", "display.addr: out of range")
					}
					c.Display.Addr = uint8(n)
					return nil
				case "cols":
					return intField(&c.Display.Cols, k, key, v, vt)
				case "rows":
					return intField(&c.Display.Rows, k, key, v, vt)
				case "splash":
					return strField(&c.Display.Splash, k, key, v, vt)
				case "waiting":
					return strField(&c.Display.Waiting, k, key, v, vt)
				case "settle_ms":
					return uintField(&c.Display.SettleMs, k, key, v, vt)
				}
				return nil
			})
		case "verbose":
			if vt != jsonparser.Boolean {
				return typeErr("", k, "boolean")
			}
			b, err := jsonparser.ParseBoolean(v)
			c.Verbose = b
			return err
		}
		return nil
	})
	if err != nil {
		if errcode.Of(err) == errcode.Error {
			err = errcode.Wrap(errcode.InvalidParams, "config", err)
		}
		return types.Config{}, err
	}
	if err := Validate(c); err != nil {
		return types.Config{}, err
	}
	return c, nil
}

func parseSerialField(s *types.SerialConfig, key string, v []byte, vt jsonparser.ValueType) error {
	switch key {
	case "transport":
		var t string
		err := strField(&t, "serial", key, v, vt)
		s.Transport = types.Transport(t)
		return err
	case "baud":
		return uintField(&s.Baud, "serial", key, v, vt)
	case "tx":
		return intField(&s.TX, "serial", key, v, vt)
	case "rx":
		return intField(&s.RX, "serial", key, v, vt)
	}
	return nil
}

func pinRef(p *types.PinMap, key string) *int {
	switch key {
	case "red":
		return &p.Red
	case "green":
		return &p.Green
	case "blue":
		return &p.Blue
	case "dht":
		return &p.DHT
	case "button":
		return &p.Button
	case "servo":
		return &p.Servo
	case "piezo":
		return &p.Piezo
	case "light":
		return &p.Light
	case "sda":
		return &p.SDA
	case "scl":
		return &p.SCL
	case "lcd_rs":
		return &p.LCDRS
	case "lcd_en":
		return &p.LCDEN
	}
	return nil
}

func pinArray(dst *[4]int, v []byte, vt jsonparser.ValueType) error {
	if vt != jsonparser.Array {
		return typeErr("pins", "lcd_d", "array")
	}
	var out [4]int
	n := 0
	var ferr error
	_, err := jsonparser.ArrayEach(v, func(value []byte, dt jsonparser.ValueType, _ int, _ error) {
		if ferr != nil {
			return
		}
		if n >= len(out) {
			ferr = errcode.New(errcode.InvalidParams, "config", "pins.lcd_d: want 4 pins")
			return
		}
		ferr = intField(&out[n], "pins", "lcd_d", value, dt)
		n++
	})
	if err != nil {
		return err
	}
	if ferr != nil {
		return ferr
	}
	if n != len(out) {
		return errcode.New(errcode.InvalidParams, "config", "pins.lcd_d: want 4 pins")
	}
	*dst = out
	return nil
}

// -----------------------------------------------------------------------------
// Field helpers
// -----------------------------------------------------------------------------

func object(section string, v []byte, vt jsonparser.ValueType, fn fieldFunc) error {
	if vt != jsonparser.Object {
		return typeErr("", section, "object")
	}
	return jsonparser.ObjectEach(v, func(key, fv []byte, ft jsonparser.ValueType, _ int) error {
		return fn(string(key), fv, ft)
	})
}

func intField(dst *int, section, key string, v []byte, vt jsonparser.ValueType) error {
	if vt != jsonparser.Number {
		return typeErr(section, key, "integer")
	}
	n, err := jsonparser.ParseInt(v)
	if err != nil {
		return errcode.Wrap(errcode.InvalidParams, "config", err)
	}
	*dst = int(n)
	return nil
}

func uintField(dst *uint32, section, key string, v []byte, vt jsonparser.ValueType) error {
	var n int
	if err := intField(&n, section, key, v, vt); err != nil {
		return err
	}
	if n < 0 || int64(n) > 0xFFFFFFFF {
		return errcode.New(errcode.InvalidParams, "config", path(section, key)+": out of range")
	}
	*dst = uint32(n)
	return nil
}

func strField(dst *string, section, key string, v []byte, vt jsonparser.ValueType) error {
	if vt != jsonparser.String {
		return typeErr(section, key, "string")
	}
	s, err := jsonparser.ParseString(v)
	if err != nil {
		return errcode.Wrap(errcode.InvalidParams, "config", err)
	}
	*dst = s
	return nil
}

func typeErr(section, key, want string) error {
	return errcode.New(errcode.InvalidParams, "config", path(section, key)+": want "+want)
}

func path(section, key string) string {
	if section == "" {
		return key
	}
	return section + "." + key
}
