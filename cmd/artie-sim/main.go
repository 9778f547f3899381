//go:build linux

// artie-sim runs the ARTIE firmware core on Linux. The protocol is served on
// a pseudo-terminal (or stdio) so host software can talk to it exactly as it
// would to the board, while actuator activity is logged.
//
// Usage:
//
//	artie-sim -config sim.yaml [-device pico] [-link pty|stdio] [-log-level debug]
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"artie-go/bus"
	"artie-go/services/config"
	"artie-go/services/hal"
	"artie-go/services/hal/fake"
	"artie-go/services/hal/hostio"
	"artie-go/services/scheduler"
	"artie-go/types"
	"artie-go/x/timex"
)

func main() {
	var (
		configPath = flag.String("config", "", "path to YAML config file")
		device     = flag.String("device", "", "embedded board config to use (overrides config)")
		link       = flag.String("link", "", "serial link: pty or stdio (overrides config)")
		logLevel   = flag.String("log-level", "", "log level: error, warn, info, debug (overrides config)")
	)
	flag.Parse()

	cfg := DefaultSimConfig()
	if *configPath != "" {
		var err error
		if cfg, err = LoadSimConfig(*configPath); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
	}
	if *device != "" {
		cfg.Device = *device
	}
	if *link != "" {
		cfg.Link = *link
	}
	if *logLevel != "" {
		cfg.Logging.Level = *logLevel
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	level, _ := parseLogLevel(cfg.Logging.Level)
	var logOut io.Writer = os.Stdout
	if cfg.Link == LinkStdio {
		logOut = os.Stderr
	}
	logger := setupLogger(level, logOut)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("simulator stopped", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, sc SimConfig, logger *slog.Logger) error {
	b := bus.NewBus(16)
	mainConn := b.NewConnection("main")

	boardCfg, err := loadBoardConfig(ctx, sc.Device, mainConn)
	if err != nil {
		return err
	}

	port, closePort, err := openLink(sc.Link, logger)
	if err != nil {
		return err
	}
	defer closePort()

	board := simBoard(sc, boardCfg, port, logger)

	go monitor(ctx, b.NewConnection("monitor"), logger)

	loop := scheduler.New(scheduler.Options{
		Board:         board,
		Clock:         timex.System{},
		FrameCapacity: boardCfg.Frame.Capacity,
		Interval:      boardCfg.Sensors.Interval(),
		Display:       boardCfg.Display,
		Conn:          b.NewConnection("scheduler"),
		Idle:          func() { time.Sleep(time.Duration(sc.IdleMS) * time.Millisecond) },
	})

	logger.Info("booting", "device", sc.Device, "interval", boardCfg.Sensors.Interval(), "frame_capacity", boardCfg.Frame.Capacity)
	loop.Boot()
	err = loop.Run(ctx)
	s := loop.Stats()
	logger.Info("shutdown", "frames", s.Frames, "overflows", s.Overflows)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// loadBoardConfig publishes the embedded config on the bus and takes it
// back from the retained topic, as the firmware does.
func loadBoardConfig(ctx context.Context, device string, conn *bus.Connection) (types.Config, error) {
	ctx = context.WithValue(ctx, config.CtxDeviceKey, device)
	if err := config.NewConfigService().Publish(ctx, conn); err != nil {
		return types.Config{}, fmt.Errorf("board config: %w", err)
	}
	sub := conn.Subscribe(config.Topic)
	defer conn.Unsubscribe(sub)
	m := <-sub.Channel()
	cfg, ok := m.Payload.(types.Config)
	if !ok {
		return types.Config{}, fmt.Errorf("board config: unexpected payload %T", m.Payload)
	}
	return cfg, nil
}

func openLink(link string, logger *slog.Logger) (hal.Port, func(), error) {
	switch link {
	case LinkStdio:
		return hostio.Stdio(), func() {}, nil
	default:
		pty, err := hostio.OpenPTY()
		if err != nil {
			return nil, nil, fmt.Errorf("open pty: %w", err)
		}
		logger.Info("serial link ready", "path", pty.SlavePath)
		return pty.Port(), func() { pty.Close() }, nil
	}
}

// simBoard wires a fake board to the real link and the scripted sensors.
func simBoard(sc SimConfig, cfg types.Config, port hal.Port, logger *slog.Logger) hal.Board {
	rig := fake.NewRig(timex.System{})
	rig.Journal.Discard = true
	rig.Journal.OnEntry = func(entry string) {
		if rest, ok := strings.CutPrefix(entry, "display.print "); ok {
			row, text, _ := strings.Cut(rest, " ")
			logger.Info("lcd", "row", row, "text", text)
			return
		}
		logger.Debug("actuator", "op", entry)
	}
	rig.Display = fake.NewDisplay(cfg.Display.Cols, cfg.Display.Rows, rig.Journal)
	rig.Buzzer.Blocking = sc.Buzzer.Blocking
	rig.Light.Set(sc.Sensors.Light)

	board := rig.Board()
	board.Port = port
	board.Climate = newScriptedClimate(sc.Sensors)
	board.Button = &scriptedButton{n: sc.Sensors.PressEach}
	return board
}

func monitor(ctx context.Context, conn *bus.Connection, logger *slog.Logger) {
	sub := conn.Subscribe(scheduler.TopicAll)
	defer conn.Disconnect()
	for {
		select {
		case <-ctx.Done():
			return
		case m, ok := <-sub.Channel():
			if !ok {
				return
			}
			switch p := m.Payload.(type) {
			case types.Ack:
				logger.Info("ack", "seq", p.Seq)
			case types.SensorReading:
				logger.Info("telemetry", "temp", p.Temperature, "humid", p.Humidity, "light", p.Light, "btn", p.Button)
			case scheduler.Drop:
				logger.Warn("dropped", "code", p.Code, "error", p.Err)
			}
		}
	}
}
