//go:build linux

package main

import "testing"

func TestDiscomfortIndex(t *testing.T) {
	tests := []struct {
		temp, rh float32
		di       float64
		status   string
	}{
		{22.5, 41, 67.8, "pleasant"},
		{25, 50, 71.8, "moderate"},
		{27, 70, 76.9, "uncomfortable"},
		{30, 80, 82.9, "dangerous"},
	}
	for _, tc := range tests {
		di := discomfortIndex(tc.temp, tc.rh)
		if di != tc.di {
			t.Errorf("discomfortIndex(%v, %v) = %v, want %v", tc.temp, tc.rh, di, tc.di)
		}
		if s := weatherStatus(di); s != tc.status {
			t.Errorf("weatherStatus(%v) = %q, want %q", di, s, tc.status)
		}
	}
}

func TestWeatherStatus_Bounds(t *testing.T) {
	for di, want := range map[float64]string{
		67.9: "pleasant",
		68:   "moderate",
		74.9: "moderate",
		75:   "uncomfortable",
		79.9: "uncomfortable",
		80:   "dangerous",
	} {
		if got := weatherStatus(di); got != want {
			t.Errorf("weatherStatus(%v) = %q, want %q", di, got, want)
		}
	}
}

func TestLightStatus(t *testing.T) {
	for level, want := range map[uint16]string{
		0:    "bright",
		150:  "bright",
		151:  "normal",
		599:  "normal",
		600:  "dark",
		1023: "dark",
	} {
		if got := lightStatus(level); got != want {
			t.Errorf("lightStatus(%d) = %q, want %q", level, got, want)
		}
	}
}

func TestLightWatch(t *testing.T) {
	w := newLightWatch()
	steps := []struct {
		level   uint16
		status  string
		changed bool
	}{
		{300, "normal", false},
		{700, "dark", true},
		{800, "dark", false},
		{300, "normal", false},
		{100, "bright", true},
		{700, "dark", true},
	}
	for i, st := range steps {
		s, changed := w.observe(st.level)
		if s != st.status || changed != st.changed {
			t.Fatalf("step %d: observe(%d) = %q,%v want %q,%v", i, st.level, s, changed, st.status, st.changed)
		}
	}
}
