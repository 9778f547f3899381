//go:build rp2040 || rp2350

package main

import (
	"context"
	"runtime"
	"time"

	"artie-go/bus"
	"artie-go/services/config"
	"artie-go/services/hal/rp2"
	"artie-go/services/scheduler"
	"artie-go/types"
	"artie-go/x/timex"
)

func main() {
	ctx := context.WithValue(context.Background(), config.CtxDeviceKey, config.SelectedDevice)

	b := bus.NewBus(4)
	mainConn := b.NewConnection("main")

	config.NewConfigService().Start(ctx, mainConn)
	cfg := awaitConfig(mainConn)

	board, err := rp2.Open(cfg)
	if err != nil {
		// Nothing can be reported over a link that failed to open; park.
		for {
			println("[main] board bring-up failed:", err.Error())
			time.Sleep(5 * time.Second)
		}
	}

	var conn *bus.Connection
	if cfg.Verbose && cfg.Serial.Transport != types.TransportUSB {
		// Allow USB CDC to enumerate before we print.
		time.Sleep(2 * time.Second)
		conn = b.NewConnection("scheduler")
		go monitor(b.NewConnection("monitor"))
		println("[main] protocol on", string(cfg.Serial.Transport), "baud", cfg.Serial.Baud)
	}

	loop := scheduler.New(scheduler.Options{
		Board:         board,
		Clock:         timex.System{},
		FrameCapacity: cfg.Frame.Capacity,
		Interval:      cfg.Sensors.Interval(),
		Display:       cfg.Display,
		Conn:          conn,
		Idle:          runtime.Gosched,
	})
	loop.Boot()
	_ = loop.Run(context.Background())
}

// awaitConfig takes the retained board config, falling back to defaults if
// the embedded document is missing or invalid.
func awaitConfig(conn *bus.Connection) types.Config {
	sub := conn.Subscribe(bus.T("config", "+"))
	defer conn.Unsubscribe(sub)

	timeout := time.After(time.Second)
	for {
		select {
		case m := <-sub.Channel():
			switch p := m.Payload.(type) {
			case types.Config:
				return p
			case error:
				println("[config]", p.Error(), "- using defaults")
				return config.Defaults()
			}
		case <-timeout:
			println("[config] timed out - using defaults")
			return config.Defaults()
		}
	}
}
