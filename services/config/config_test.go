// config/config_test.go
package config

import (
	"context"
	"strings"
	"testing"
	"time"

	"artie-go/bus"
	"artie-go/errcode"
	"artie-go/types"
)

func TestEmbeddedConfigs_Parse(t *testing.T) {
	for device := range embeddedConfigs {
		if _, err := Load(device); err != nil {
			t.Errorf("embedded config %q: %v", device, err)
		}
	}
}

func TestLoad_PicoMatchesDefaults(t *testing.T) {
	got, err := Load("pico")
	if err != nil {
		t.Fatal(err)
	}
	if got != Defaults() {
		t.Fatalf("pico config\n got %+v\nwant %+v", got, Defaults())
	}
}

func TestLoad_PicoUART(t *testing.T) {
	got, err := Load("pico-uart")
	if err != nil {
		t.Fatal(err)
	}
	if got.Serial.Transport != types.TransportUART0 || got.Serial.TX != 0 || got.Serial.RX != 1 {
		t.Fatalf("serial %+v", got.Serial)
	}
	if got.Sensors.Climate != types.ClimateAHT20 || got.Pins.SDA != 20 || got.Pins.SCL != 21 {
		t.Fatalf("sensors %+v pins %+v", got.Sensors, got.Pins)
	}
	if !got.Verbose {
		t.Fatal("verbose not set")
	}
	// Untouched sections keep their defaults.
	if got.Frame.Capacity != 512 || got.Display.Splash != "ARTIE V2.2" {
		t.Fatalf("defaults lost: frame %+v display %+v", got.Frame, got.Display)
	}
}

func TestSelectedDevice_IsEmbedded(t *testing.T) {
	if _, ok := embeddedConfigs[SelectedDevice]; !ok {
		t.Fatalf("selected device %q has no embedded config", SelectedDevice)
	}
	if _, err := Load(SelectedDevice); err != nil {
		t.Fatalf("Load(%q): %v", SelectedDevice, err)
	}
}

func TestConfig_PublishSelectedDevice(t *testing.T) {
	b := bus.NewBus(4)
	conn := b.NewConnection("test")
	ctx := context.WithValue(context.Background(), CtxDeviceKey, SelectedDevice)
	if err := NewConfigService().Publish(ctx, conn); err != nil {
		t.Fatal(err)
	}
	sub := conn.Subscribe(Topic)
	defer conn.Unsubscribe(sub)
	select {
	case m := <-sub.Channel():
		want, _ := Load(SelectedDevice)
		if got, ok := m.Payload.(types.Config); !ok || got != want {
			t.Fatalf("payload %+v", m.Payload)
		}
	case <-time.After(time.Second):
		t.Fatal("no retained config")
	}
}

func TestLoad_UnknownDevice(t *testing.T) {
	if _, err := Load("nope"); errcode.Of(err) != errcode.InvalidParams {
		t.Fatalf("err=%v", err)
	}
}

func TestParse_Overrides(t *testing.T) {
	c, err := Parse([]byte(`{
		"frame": {"capacity": 128},
		"sensors": {"interval_ms": 500, "climate": "dht22"},
		"pins": {"lcd_d": [18, 19, 20, 21], "light": 27},
		"display": {"cols": 20, "rows": 4, "waiting": "HELLO"},
		"future": {"ignored": true}
	}`))
	if err != nil {
		t.Fatal(err)
	}
	if c.Frame.Capacity != 128 || c.Sensors.Interval() != 500*time.Millisecond || c.Sensors.Climate != types.ClimateDHT22 {
		t.Fatalf("config %+v", c)
	}
	if c.Pins.LCDD != [4]int{18, 19, 20, 21} || c.Pins.Light != 27 {
		t.Fatalf("pins %+v", c.Pins)
	}
	if c.Display.Cols != 20 || c.Display.Rows != 4 || c.Display.Waiting != "HELLO" || c.Display.Settle() != time.Second {
		t.Fatalf("display %+v", c.Display)
	}
}

func TestParse_Rejects(t *testing.T) {
	tests := []struct {
		name string
		in   string
		code errcode.Code
		msg  string
	}{
		{"not json", `nope`, errcode.InvalidParams, ""},
		{"section type", `{"serial": 5}`, errcode.InvalidParams, "serial: want object"},
		{"field type", `{"serial": {"baud": "fast"}}`, errcode.InvalidParams, "serial.baud: want integer"},
		{"verbose type", `{"verbose": "yes"}`, errcode.InvalidParams, "verbose: want boolean"},
		{"transport", `{"serial": {"transport": "spi"}}`, errcode.InvalidParams, "serial.transport"},
		{"zero baud", `{"serial": {"baud": 0}}`, errcode.InvalidParams, "serial.baud"},
		{"negative interval", `{"sensors": {"interval_ms": -1}}`, errcode.InvalidParams, "out of range"},
		{"tiny frame", `{"frame": {"capacity": 4}}`, errcode.InvalidParams, "frame.capacity"},
		{"climate", `{"sensors": {"climate": "bme280"}}`, errcode.InvalidParams, "sensors.climate"},
		{"aht20 bus", `{"sensors": {"climate": "aht20", "i2c": "i2c7"}}`, errcode.InvalidParams, "sensors.i2c"},
		{"lcd_d short", `{"pins": {"lcd_d": [1, 2, 3]}}`, errcode.InvalidParams, "want 4 pins"},
		{"lcd_d long", `{"pins": {"lcd_d": [1, 9, 10, 11, 18]}}`, errcode.InvalidParams, "want 4 pins"},
		{"pin range", `{"pins": {"red": 30}}`, errcode.UnknownPin, "pins.red"},
		{"light not adc", `{"pins": {"light": 22}}`, errcode.UnknownPin, "not ADC capable"},
		{"duplicate pin", `{"pins": {"servo": 2}}`, errcode.InvalidParams, "already used by red"},
		{"uart pin clash", `{"serial": {"transport": "uart0", "tx": 2, "rx": 1}}`, errcode.InvalidParams, "already used"},
		{"display bus", `{"display": {"bus": "spi"}}`, errcode.InvalidParams, "display.bus"},
		{"display addr", `{"display": {"bus": "i2c0", "addr": 200}}`, errcode.InvalidParams, "display.addr"},
		{"display bus mismatch", `{"sensors": {"climate": "aht20", "i2c": "i2c0"}, "display": {"bus": "i2c1"}}`, errcode.InvalidParams, "must share i2c0"},
		{"display geometry", `{"display": {"rows": 1}}`, errcode.InvalidParams, "display"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse([]byte(tc.in))
			if err == nil {
				t.Fatal("expected error")
			}
			if c := errcode.Of(err); c != tc.code {
				t.Fatalf("code %q, want %q (err %v)", c, tc.code, err)
			}
			if tc.msg != "" && !strings.Contains(err.Error(), tc.msg) {
				t.Fatalf("error %q does not mention %q", err, tc.msg)
			}
		})
	}
}

func TestParse_DHTPinIgnoredForAHT20(t *testing.T) {
	// GP5 is the default DHT pin; with an AHT20 fitted it is free.
	_, err := Parse([]byte(`{"sensors": {"climate": "aht20"}, "pins": {"servo": 5, "sda": 0, "scl": 1}}`))
	if err != nil {
		t.Fatal(err)
	}
}

func TestConfig_PublishEmbedded_Retained(t *testing.T) {
	// Override lookup for this test.
	oldLookup := EmbeddedConfigLookup
	EmbeddedConfigLookup = func(device string) ([]byte, bool) {
		if device != "pico" {
			return nil, false
		}
		return []byte(`{"sensors": {"interval_ms": 750}, "verbose": true}`), true
	}
	t.Cleanup(func() { EmbeddedConfigLookup = oldLookup })

	b := bus.NewBus(16)
	conn := b.NewConnection("test-config")
	svc := NewConfigService()

	ctx := context.WithValue(context.Background(), CtxDeviceKey, "pico")
	svc.Start(ctx, conn)

	// Subscribe; the retained message arrives whether or not the publisher ran first.
	sub := conn.Subscribe(bus.Topic{configPrefix, "#"})

	select {
	case m := <-sub.Channel():
		if !m.Retained {
			t.Fatal("config message not retained")
		}
		cfg, ok := m.Payload.(types.Config)
		if !ok {
			t.Fatalf("payload type %T", m.Payload)
		}
		if cfg.Sensors.IntervalMs != 750 || !cfg.Verbose {
			t.Fatalf("config %+v", cfg)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for config")
	}
}

func TestConfig_PublishMissingDevice(t *testing.T) {
	b := bus.NewBus(4)
	conn := b.NewConnection("test-config")
	svc := NewConfigService()

	if err := svc.Publish(context.Background(), conn); errcode.Of(err) != errcode.InvalidParams {
		t.Fatalf("err=%v", err)
	}

	ctx := context.WithValue(context.Background(), CtxDeviceKey, "unknown-board")
	svc.Start(ctx, conn)
	sub := conn.Subscribe(bus.T(configPrefix, "error"))
	select {
	case m := <-sub.Channel():
		if _, ok := m.Payload.(error); !ok {
			t.Fatalf("payload %T", m.Payload)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for config/error")
	}
}

func TestParse_I2CDisplayFreesLCDPins(t *testing.T) {
	c, err := Parse([]byte(`{"display": {"bus": "i2c0", "addr": 63}, "pins": {"sda": 12, "scl": 13}}`))
	if err != nil {
		t.Fatal(err)
	}
	if !c.Display.UsesI2C() || c.Display.Addr != 0x3F {
		t.Fatalf("display %+v", c.Display)
	}
}
