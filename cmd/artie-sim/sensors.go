//go:build linux

package main

import (
	"math"
	"sync"
)

// scriptedClimate drifts the temperature between bounds and fails every
// FailEach-th read.
type scriptedClimate struct {
	mu    sync.Mutex
	s     SensorScript
	temp  float32
	dir   float32
	reads int
}

func newScriptedClimate(s SensorScript) *scriptedClimate {
	return &scriptedClimate{s: s, temp: s.TempC, dir: 1}
}

func (c *scriptedClimate) ReadClimate() (float32, float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.reads++
	if c.s.FailEach > 0 && c.reads%c.s.FailEach == 0 {
		nan := float32(math.NaN())
		return nan, nan
	}
	t := c.temp
	c.temp += c.dir * c.s.DriftC
	if c.temp > c.s.MaxC || c.temp < c.s.MinC {
		c.dir = -c.dir
		c.temp = t
	}
	return t, c.s.Humidity
}

// scriptedButton reads pressed on every n-th read.
type scriptedButton struct {
	mu    sync.Mutex
	n     int
	reads int
}

func (b *scriptedButton) Get() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.reads++
	return b.n > 0 && b.reads%b.n == 0
}
