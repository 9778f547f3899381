// Package sensors implements time-gated sampling of the climate sensor, the
// light sensor and the button.
package sensors

import (
	"math"
	"time"

	"artie-go/errcode"
	"artie-go/services/hal"
	"artie-go/types"
)

// DefaultInterval is the minimum time between two samples.
const DefaultInterval = 2000 * time.Millisecond

// Gate holds the time of the last sampling attempt.
type Gate struct {
	Last time.Time
}

// Due reports whether interval has elapsed since the last attempt.
func (g *Gate) Due(now time.Time, interval time.Duration) bool {
	return now.Sub(g.Last) >= interval
}

// Sampler reads every sensor when the gate allows it.
type Sampler struct {
	interval time.Duration
	climate  hal.Climate
	light    hal.LightSensor
	button   hal.DigitalIn

	lastErr   error
	discarded uint32
}

// NewSampler returns a sampler over the board's sensors. interval <= 0 uses
// DefaultInterval.
func NewSampler(b hal.Board, interval time.Duration) *Sampler {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Sampler{
		interval: interval,
		climate:  b.Climate,
		light:    b.Light,
		button:   b.Button,
	}
}

func (s *Sampler) Interval() time.Duration { return s.interval }

// MaybeSample reads the sensors once the interval has elapsed since
// gate.Last. The gate is advanced before anything is read, so a failed
// attempt still consumes the interval. A reading whose temperature or
// humidity is NaN is discarded.
func (s *Sampler) MaybeSample(gate *Gate, now time.Time) (types.SensorReading, bool) {
	if !gate.Due(now, s.interval) {
		return types.SensorReading{}, false
	}
	gate.Last = now

	t, h := s.climate.ReadClimate()
	if isNaN(t) || isNaN(h) {
		s.discarded++
		s.lastErr = errcode.New(errcode.SensorInvalid, "sample", "climate read failed")
		return types.SensorReading{}, false
	}
	s.lastErr = nil
	return types.SensorReading{
		Temperature: t,
		Humidity:    h,
		Light:       s.light.Level(),
		Button:      s.button.Get(),
	}, true
}

// LastErr describes why the most recent attempt produced no reading, or nil.
func (s *Sampler) LastErr() error { return s.lastErr }

// Discarded counts attempts dropped for invalid climate data.
func (s *Sampler) Discarded() uint32 { return s.discarded }

func isNaN(f float32) bool { return math.IsNaN(float64(f)) }
