package config

import (
	"context"

	"artie-go/bus"
	"artie-go/errcode"
	"artie-go/types"
)

// -----------------------------------------------------------------------------
// String constants (live in flash, not RAM)
// -----------------------------------------------------------------------------

const (
	serviceName  = "config"
	configPrefix = "config"
	configKey    = "artie"
	CtxDeviceKey = "device" // context key used for device ID
)

// Topic carries the retained board configuration.
var Topic = bus.T(configPrefix, configKey)

// EmbeddedConfigLookup allows overriding how configs are resolved.
var EmbeddedConfigLookup = func(device string) ([]byte, bool) {
	b, ok := embeddedConfigs[device]
	return b, ok
}

// Load resolves and parses the embedded configuration for device.
func Load(device string) (types.Config, error) {
	raw, ok := EmbeddedConfigLookup(device)
	if !ok || len(raw) == 0 {
		return types.Config{}, errcode.New(errcode.InvalidParams, "config", "no embedded config for device: "+device)
	}
	return Parse(raw)
}

// -----------------------------------------------------------------------------
// Config Service
// -----------------------------------------------------------------------------

type ConfigService struct {
	Name string
}

func NewConfigService() *ConfigService {
	return &ConfigService{Name: serviceName}
}

// Publish loads the device config named in ctx and publishes it retained on
// Topic.
func (s *ConfigService) Publish(ctx context.Context, conn *bus.Connection) error {
	device, _ := ctx.Value(CtxDeviceKey).(string)
	if device == "" {
		return errcode.New(errcode.InvalidParams, "config", "missing device ID in context")
	}
	cfg, err := Load(device)
	if err != nil {
		return err
	}
	conn.Publish(conn.NewMessage(Topic, cfg, true))
	return nil
}

// Start launches the config publisher in a goroutine. A failure is published
// retained on config/error so waiting subscribers can fall back.
func (s *ConfigService) Start(ctx context.Context, conn *bus.Connection) {
	go func() {
		if err := s.Publish(ctx, conn); err != nil {
			conn.Publish(conn.NewMessage(bus.T(configPrefix, "error"), err, true))
		}
	}()
}
