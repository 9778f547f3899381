package types

// ------------------------
// Temperature, humidity, light, button
// ------------------------

// SensorReading is one telemetry sample.
type SensorReading struct {
	Temperature float32 `json:"temp"`  // °C
	Humidity    float32 `json:"humid"` // %RH
	Light       uint16  `json:"light"` // 10-bit ADC count
	Button      bool    `json:"btn"`   // true when the input reads high
}
