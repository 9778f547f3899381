// Package scheduler runs the firmware's cooperative main loop.
//
// One goroutine owns all protocol state. Each Tick drains the serial port
// through the framer, dispatching every complete command before the next
// byte is read, then gives the sensor sampler a chance to run. Nothing in
// the loop is concurrent; the bus only carries diagnostics out of it.
package scheduler

import (
	"context"
	"time"

	"artie-go/bus"
	"artie-go/errcode"
	"artie-go/services/dispatch"
	"artie-go/services/expression"
	"artie-go/services/hal"
	"artie-go/services/protocol"
	"artie-go/services/sensors"
	"artie-go/types"
	"artie-go/x/timex"
)

// Diagnostic topics. Events are published non-retained.
var (
	TopicAck       = bus.T("artie", "ack")
	TopicTelemetry = bus.T("artie", "telemetry")
	TopicDrop      = bus.T("artie", "drop")
	TopicAll       = bus.T("artie", "#")
)

// Drop describes input or a sample that produced no output. It is published
// on TopicDrop/<code>.
type Drop struct {
	Code errcode.Code
	Err  error
}

// Options configure a Loop. Board and Clock are required.
type Options struct {
	Board         hal.Board
	Clock         timex.Clock
	FrameCapacity int           // protocol.DefaultCapacity if zero
	Interval      time.Duration // sensors.DefaultInterval if zero
	Display       types.DisplayConfig

	// Conn, when set, receives diagnostic events.
	Conn *bus.Connection
	// Idle, when set, runs after an iteration that read no input.
	Idle func()
}

// state is everything the loop carries between iterations.
type state struct {
	framer *protocol.Framer
	gate   sensors.Gate
}

type Loop struct {
	board   hal.Board
	clk     timex.Clock
	disp    *dispatch.Dispatcher
	sampler *sensors.Sampler
	display types.DisplayConfig
	conn    *bus.Connection
	idle    func()

	st  state
	out []byte
}

func New(o Options) *Loop {
	l := &Loop{
		board:   o.Board,
		clk:     o.Clock,
		disp:    dispatch.New(o.Board, expression.NewPlayer(o.Clock)),
		sampler: sensors.NewSampler(o.Board, o.Interval),
		display: o.Display,
		conn:    o.Conn,
		idle:    o.Idle,
		out:     make([]byte, 0, 96),
	}
	l.st.framer = protocol.NewFramer(o.FrameCapacity)
	l.st.gate.Last = o.Clock.Now()
	return l
}

// Boot shows the splash text, centres the servo, announces READY, holds for
// the settle time and then shows the waiting text. The sampling interval
// restarts when Boot returns.
func (l *Loop) Boot() {
	if l.display.Splash != "" {
		l.disp.Show(l.display.Splash, "")
	}
	l.board.Servo.SetAngle(hal.ServoCentre)
	l.write(protocol.AppendBoot(l.out[:0]))
	if d := l.display.Settle(); d > 0 {
		l.clk.Sleep(d)
	}
	if l.display.Waiting != "" {
		l.disp.Show(l.display.Waiting, "")
	}
	l.st.gate.Last = l.clk.Now()
}

// Tick runs one loop iteration and reports whether any input was read.
func (l *Loop) Tick() bool {
	read := false
	port := l.board.Port
	for port.Buffered() > 0 {
		b, err := port.ReadByte()
		if err != nil {
			break
		}
		read = true
		if l.st.framer.Feed(b) == protocol.FrameComplete {
			l.handleFrame()
		}
	}

	discarded := l.sampler.Discarded()
	if r, ok := l.sampler.MaybeSample(&l.st.gate, l.clk.Now()); ok {
		l.write(protocol.AppendTelemetry(l.out[:0], r))
		l.publish(TopicTelemetry, r)
	} else if l.sampler.Discarded() != discarded {
		l.drop(l.sampler.LastErr())
	}
	return read
}

// Run ticks until ctx is cancelled.
func (l *Loop) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		if !l.Tick() && l.idle != nil {
			l.idle()
		}
	}
}

// Stats exposes framer counters.
func (l *Loop) Stats() protocol.FramerStats { return l.st.framer.Stats() }

func (l *Loop) handleFrame() {
	f := l.st.framer
	if f.Truncated() {
		l.drop(errcode.New(errcode.FrameOverflow, "frame", "input exceeded frame capacity"))
	}
	cmd, err := protocol.Decode(f.Frame())
	if err != nil {
		l.drop(err)
		return
	}
	ack := l.disp.Dispatch(cmd)
	l.write(protocol.AppendAck(l.out[:0], ack))
	l.publish(TopicAck, ack)
}

// write sends one line. Serial writes are fire and forget.
func (l *Loop) write(line []byte) {
	_, _ = l.board.Port.Write(line)
	l.out = line[:0]
}

func (l *Loop) drop(err error) {
	c := errcode.Of(err)
	l.publish(TopicDrop.Append(string(c)), Drop{Code: c, Err: err})
}

func (l *Loop) publish(t bus.Topic, payload any) {
	if l.conn == nil {
		return
	}
	l.conn.Publish(l.conn.NewMessage(t, payload, false))
}
