// Package hal defines the driver surface the firmware core talks to.
//
// Every actuator and sensor is a small interface so the scheduler, dispatcher
// and sampler can run unchanged on the RP2040 (package rp2), in the host
// simulator and in tests (package fake).
package hal

import "time"

// Port is the byte link carrying the protocol. Buffered must not block.
type Port interface {
	Buffered() int
	ReadByte() (byte, error)
	Write(p []byte) (int, error)
}

// Display is a character display addressed by row.
type Display interface {
	Clear()
	// Print writes text at column 0 of row. Drivers clip to the display width.
	Print(row int, text string)
}

// DigitalOut is a push-pull output pin.
type DigitalOut interface {
	Set(high bool)
}

// DigitalIn is an input pin.
type DigitalIn interface {
	Get() bool
}

// AnalogOut is a PWM output driven with an 8-bit duty (0..255).
type AnalogOut interface {
	SetLevel(duty uint8)
}

// Buzzer generates a tone. Tone may return before d has elapsed (hardware
// tone generators) or block for d (bit-banged piezos); callers own the pacing.
type Buzzer interface {
	Tone(hz uint16, d time.Duration)
	Off()
}

// Servo positions a hobby servo.
type Servo interface {
	SetAngle(deg int)
}

// Climate reads temperature (°C) and relative humidity (%RH).
// A failed read yields NaN for the affected value.
type Climate interface {
	ReadClimate() (tempC, rh float32)
}

// LightSensor returns a 10-bit light level (0..1023).
type LightSensor interface {
	Level() uint16
}

// Indicator is the RGB LED: red and blue are on/off, green is PWM.
type Indicator struct {
	Red   DigitalOut
	Green AnalogOut
	Blue  DigitalOut
}

// Board groups the drivers of one device.
type Board struct {
	Port      Port
	Display   Display
	Indicator Indicator
	Buzzer    Buzzer
	Servo     Servo
	Climate   Climate
	Light     LightSensor
	Button    DigitalIn
}

// Servo geometry shared by drivers and the action tables.
const (
	ServoMin    = 0
	ServoMax    = 180
	ServoCentre = 90
)
