package types

import "time"

// Config is the board configuration published retained on "config/artie".

type Config struct {
	Serial  SerialConfig  `json:"serial"`
	Frame   FrameConfig   `json:"frame"`
	Sensors SensorsConfig `json:"sensors"`
	Pins    PinMap        `json:"pins"`
	Display DisplayConfig `json:"display"`
	Verbose bool          `json:"verbose"`
}

// Transport selects the serial link carrying the protocol.
type Transport string

const (
	TransportUSB   Transport = "usb"
	TransportUART0 Transport = "uart0"
	TransportUART1 Transport = "uart1"
)

type SerialConfig struct {
	Transport Transport `json:"transport"`
	Baud      uint32    `json:"baud"`
	TX        int       `json:"tx"` // UART transports only
	RX        int       `json:"rx"`
}

type FrameConfig struct {
	Capacity int `json:"capacity"` // bytes, including the terminator slot
}

// ClimateModel names the temperature/humidity sensor fitted.
type ClimateModel string

const (
	ClimateDHT11 ClimateModel = "dht11"
	ClimateDHT22 ClimateModel = "dht22"
	ClimateAHT20 ClimateModel = "aht20"
)

type SensorsConfig struct {
	IntervalMs uint32       `json:"interval_ms"`
	Climate    ClimateModel `json:"climate"`
	I2C        string       `json:"i2c"` // aht20 only: "i2c0" | "i2c1"
}

// Interval returns the sampling interval.
func (s SensorsConfig) Interval() time.Duration {
	return time.Duration(s.IntervalMs) * time.Millisecond
}

// PinMap uses RP2040 GP numbering.
type PinMap struct {
	Red    int    `json:"red"`
	Green  int    `json:"green"` // PWM
	Blue   int    `json:"blue"`
	DHT    int    `json:"dht"`
	Button int    `json:"button"`
	Servo  int    `json:"servo"` // PWM
	Piezo  int    `json:"piezo"`
	Light  int    `json:"light"` // ADC-capable pin (26..29)
	SDA    int    `json:"sda"`
	SCL    int    `json:"scl"`
	LCDRS  int    `json:"lcd_rs"`
	LCDEN  int    `json:"lcd_en"`
	LCDD   [4]int `json:"lcd_d"` // D4..D7
}

// DisplayBus selects how the HD44780 is wired: parallel 4-bit on the LCD
// pins, or a PCF8574 backpack on one of the I2C buses.
type DisplayBus string

const (
	DisplayGPIO DisplayBus = "gpio"
	DisplayI2C0 DisplayBus = "i2c0"
	DisplayI2C1 DisplayBus = "i2c1"
)

type DisplayConfig struct {
	Bus      DisplayBus `json:"bus"`
	Addr     uint8      `json:"addr"` // backpack address, I2C only
	Cols     int        `json:"cols"`
	Rows     int        `json:"rows"`
	Splash   string     `json:"splash"`
	Waiting  string     `json:"waiting"`
	SettleMs uint32     `json:"settle_ms"`
}

// UsesI2C reports whether the display sits on an I2C bus.
func (d DisplayConfig) UsesI2C() bool { return d.Bus == DisplayI2C0 || d.Bus == DisplayI2C1 }

// Settle returns how long the splash stays up after READY.
func (d DisplayConfig) Settle() time.Duration {
	return time.Duration(d.SettleMs) * time.Millisecond
}
