//go:build rp2040 || rp2350

// cmd/boardtest/main.go
//
// boardtest cycles every output of an ARTIE board and samples the sensors,
// printing a pass/fail line per cycle. It does not speak the line protocol.
package main

import (
	"fmt"
	"time"

	"artie-go/services/config"
	"artie-go/services/dispatch"
	"artie-go/services/expression"
	"artie-go/services/hal"
	"artie-go/services/hal/rp2"
	"artie-go/services/sensors"
	"artie-go/types"
	"artie-go/x/timex"
)

// ---------- Configuration ----------

const (
	// Allow USB CDC to enumerate before we print.
	settle = 3 * time.Second

	// Sequencing timing
	dwellMood   = 1 * time.Second
	dwellAction = 500 * time.Millisecond
	dwellCycle  = 3 * time.Second

	// Cycles: 0 = loop forever
	cyclesToRun = 0
)

var (
	moods   = []expression.Mood{expression.MoodHappy, expression.MoodAngry, expression.MoodSad, expression.MoodNeutral, expression.MoodUnknown}
	actions = []expression.Action{expression.ActionNod, expression.ActionShake, expression.ActionScan}
)

// ---------- Minimal output to console + protocol UART ----------

type out struct {
	port hal.Port // nil when the protocol link is the USB console
}

func (o *out) println(a ...any) {
	line := fmt.Sprintln(a...)
	print(line)
	if o.port != nil {
		_, _ = o.port.Write([]byte(line))
	}
}

func (o *out) printf(format string, a ...any) {
	line := fmt.Sprintf(format, a...)
	print(line)
	if o.port != nil {
		_, _ = o.port.Write([]byte(line))
	}
}

// ---------- Helpers ----------

func ledFlashPassFail(ind hal.Indicator, pass bool) {
	off := func() { ind.Red.Set(false); ind.Green.SetLevel(0); ind.Blue.Set(false) }
	if pass {
		// Double short green
		for i := 0; i < 2; i++ {
			ind.Green.SetLevel(255)
			time.Sleep(120 * time.Millisecond)
			off()
			time.Sleep(120 * time.Millisecond)
		}
		return
	}
	// Long red
	ind.Red.Set(true)
	time.Sleep(800 * time.Millisecond)
	off()
}

func runCycle(o *out, b hal.Board, disp *dispatch.Dispatcher, p *expression.Player, s *sensors.Sampler) bool {
	for _, m := range moods {
		disp.Show("MOOD", m.String())
		fx := expression.MoodEffects(m)
		p.ShowColor(b.Indicator, fx.Color)
		p.PlayTones(b.Buzzer, fx.Tones)
		o.printf("[mood] %-8s rgb=%d,%d,%d tones=%d\n", m, fx.Color.R, fx.Color.G, fx.Color.B, len(fx.Tones))
		time.Sleep(dwellMood)
	}
	for _, a := range actions {
		disp.Show("ACTION", a.String())
		p.RunServo(b.Servo, expression.ActionSteps(a))
		o.printf("[action] %s\n", a)
		time.Sleep(dwellAction)
	}

	var gate sensors.Gate // zero time: due immediately
	r, ok := s.MaybeSample(&gate, time.Now())
	if !ok {
		o.println("[sensors] FAIL", s.LastErr().Error())
		disp.Show("SENSORS", "FAIL")
		return false
	}
	o.printf("[sensors] temp=%.1fC humid=%.1f%% light=%d btn=%v\n", r.Temperature, r.Humidity, r.Light, r.Button)
	disp.Show(fmt.Sprintf("%.1fC %.0f%%", r.Temperature, r.Humidity), fmt.Sprintf("L%d B%v", r.Light, r.Button))
	return true
}

func main() {
	time.Sleep(settle)
	o := &out{}

	cfg, err := config.Load(config.SelectedDevice)
	if err != nil {
		o.println("[config]", err.Error(), "- using defaults")
		cfg = config.Defaults()
	}
	board, err := rp2.Open(cfg)
	if err != nil {
		for {
			o.println("[boardtest] bring-up failed:", err.Error())
			time.Sleep(5 * time.Second)
		}
	}
	if cfg.Serial.Transport != types.TransportUSB {
		o.port = board.Port
	}

	player := expression.NewPlayer(timex.System{})
	disp := dispatch.New(board, player)
	sampler := sensors.NewSampler(board, cfg.Sensors.Interval())

	passed, failed := 0, 0
	for cycle := 1; cyclesToRun == 0 || cycle <= cyclesToRun; cycle++ {
		o.printf("[boardtest] cycle %d\n", cycle)
		pass := runCycle(o, board, disp, player, sampler)
		verdict := "PASS"
		if pass {
			passed++
		} else {
			failed++
			verdict = "FAIL"
		}
		ledFlashPassFail(board.Indicator, pass)
		o.printf("[boardtest] cycle %d %s (pass=%d fail=%d)\n", cycle, verdict, passed, failed)
		time.Sleep(dwellCycle)
	}
}
