//go:build linux

package main

import "math"

// Light thresholds on the 10-bit reading. The LDR divider reads high in the
// dark.
const (
	lightDark   = 600
	lightBright = 150
)

// discomfortIndex is Thom's index in °F from °C and %RH, to one decimal.
func discomfortIndex(tempC, rh float32) float64 {
	t, h := float64(tempC), float64(rh)/100
	di := 1.8*t - 0.55*(1-h)*(1.8*t-26) + 32
	return math.Round(di*10) / 10
}

func weatherStatus(di float64) string {
	switch {
	case di < 68:
		return "pleasant"
	case di < 75:
		return "moderate"
	case di < 80:
		return "uncomfortable"
	default:
		return "dangerous"
	}
}

func lightStatus(level uint16) string {
	switch {
	case level >= lightDark:
		return "dark"
	case level <= lightBright:
		return "bright"
	default:
		return "normal"
	}
}

// lightWatch reports when the room turns dark or bright.
type lightWatch struct {
	last string
}

func newLightWatch() *lightWatch { return &lightWatch{last: "normal"} }

// observe returns the new status and true when it changed to dark or bright.
func (w *lightWatch) observe(level uint16) (string, bool) {
	s := lightStatus(level)
	changed := s != w.last && s != "normal"
	w.last = s
	return s, changed
}
