//go:build linux

package main

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// SimConfig is the simulator's YAML configuration. Board wiring comes from
// the embedded device config named by Device; this file only describes the
// host side and the simulated environment.
type SimConfig struct {
	Device  string        `yaml:"device"`
	Link    string        `yaml:"link"` // "pty" or "stdio"
	IdleMS  int           `yaml:"idle_ms"`
	Logging LoggingConfig `yaml:"logging"`
	Sensors SensorScript  `yaml:"sensors"`
	Buzzer  BuzzerConfig  `yaml:"buzzer"`
}

type LoggingConfig struct {
	Level string `yaml:"level"`
}

// SensorScript drives the simulated sensors.
type SensorScript struct {
	TempC     float32 `yaml:"temp_c"`
	Humidity  float32 `yaml:"humidity"`
	DriftC    float32 `yaml:"drift_c"` // added to the temperature on every read
	MinC      float32 `yaml:"min_c"`   // drift reverses at the bounds
	MaxC      float32 `yaml:"max_c"`
	Light     uint16  `yaml:"light"`      // 0..1023
	FailEach  int     `yaml:"fail_each"`  // every Nth climate read fails; 0 never
	PressEach int     `yaml:"press_each"` // button reads pressed every Nth read; 0 never
}

type BuzzerConfig struct {
	// Blocking makes tones take real time, like the bit-banged piezo.
	Blocking bool `yaml:"blocking"`
}

const (
	LinkPTY   = "pty"
	LinkStdio = "stdio"
)

// DefaultSimConfig returns a fully-populated SimConfig with defaults.
func DefaultSimConfig() SimConfig {
	return SimConfig{
		Device:  "pico",
		Link:    LinkPTY,
		IdleMS:  1,
		Logging: LoggingConfig{Level: "info"},
		Sensors: SensorScript{
			TempC:    22.5,
			Humidity: 41,
			DriftC:   0.1,
			MinC:     18,
			MaxC:     28,
			Light:    512,
		},
	}
}

// LoadSimConfig reads and parses a YAML config file over the defaults.
// Unknown fields are rejected.
func LoadSimConfig(path string) (SimConfig, error) {
	if path == "" {
		return SimConfig{}, errors.New("config path is empty")
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return SimConfig{}, fmt.Errorf("read config file: %w", err)
	}
	return parseSimConfig(b)
}

func parseSimConfig(b []byte) (SimConfig, error) {
	cfg := DefaultSimConfig()

	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)

	if err := dec.Decode(&cfg); err != nil {
		return SimConfig{}, fmt.Errorf("decode config yaml: %w", err)
	}
	// Ensure there's no trailing garbage (only whitespace/comments are allowed after the document).
	if err := dec.Decode(&struct{}{}); err == nil {
		return SimConfig{}, fmt.Errorf("decode config yaml: unexpected trailing document")
	}
	return cfg, nil
}

// Validate checks the config after flag overrides.
func (c SimConfig) Validate() error {
	if c.Device == "" {
		return errors.New("device is required")
	}
	switch c.Link {
	case LinkPTY, LinkStdio:
	default:
		return fmt.Errorf("link: must be %q or %q, got %q", LinkPTY, LinkStdio, c.Link)
	}
	if c.IdleMS < 0 {
		return errors.New("idle_ms: must not be negative")
	}
	if _, err := parseLogLevel(c.Logging.Level); err != nil {
		return fmt.Errorf("logging.level: %w", err)
	}
	s := c.Sensors
	if s.Light > 1023 {
		return fmt.Errorf("sensors.light: %d exceeds 1023", s.Light)
	}
	if s.Humidity < 0 || s.Humidity > 100 {
		return fmt.Errorf("sensors.humidity: %v out of range", s.Humidity)
	}
	if s.MinC > s.MaxC {
		return errors.New("sensors: min_c above max_c")
	}
	if s.FailEach < 0 || s.PressEach < 0 {
		return errors.New("sensors: fail_each and press_each must not be negative")
	}
	return nil
}
