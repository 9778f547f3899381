package scheduler

import (
	"context"
	"reflect"
	"strings"
	"testing"
	"time"

	"artie-go/bus"
	"artie-go/errcode"
	"artie-go/services/hal/fake"
	"artie-go/types"
	"artie-go/x/timex"
)

var t0 = time.Unix(1_700_000_000, 0)

type harness struct {
	loop *Loop
	rig  *fake.Rig
	clk  *timex.Manual
	conn *bus.Connection
	sub  *bus.Subscription
}

func newHarness(t *testing.T, capacity int) *harness {
	t.Helper()
	clk := timex.NewManual(t0)
	rig := fake.NewRig(clk)
	b := bus.NewBus(32)
	conn := b.NewConnection("test")
	sub := conn.Subscribe(TopicAll)
	t.Cleanup(conn.Disconnect)
	loop := New(Options{
		Board:         rig.Board(),
		Clock:         clk,
		FrameCapacity: capacity,
		Display: types.DisplayConfig{
			Splash: "ARTIE V2.2", Waiting: "WAITING PC...", SettleMs: 1000,
		},
		Conn: conn,
	})
	return &harness{loop: loop, rig: rig, clk: clk, conn: conn, sub: sub}
}

func (h *harness) events() []*bus.Message {
	var out []*bus.Message
	for {
		select {
		case m := <-h.sub.Channel():
			out = append(out, m)
		default:
			return out
		}
	}
}

func TestBoot(t *testing.T) {
	h := newHarness(t, 0)
	h.loop.Boot()

	want := []string{
		"display.clear",
		"display.print 0 ARTIE V2.2",
		"servo 90",
		`tx {"status":"READY"}`,
		"display.clear",
		"display.print 0 WAITING PC...",
	}
	if got := h.rig.Journal.Entries(); !reflect.DeepEqual(got, want) {
		t.Fatalf("journal\n got %q\nwant %q", got, want)
	}
	if got := h.clk.Total(); got != time.Second {
		t.Fatalf("settle %v, want 1s", got)
	}

	// The sampling interval restarts after boot.
	h.rig.Journal.Reset()
	h.clk.Advance(1999 * time.Millisecond)
	h.loop.Tick()
	if lines := h.rig.Port.TakeLines(); len(lines) != 1 {
		t.Fatalf("lines %q, want only READY", lines)
	}
	h.clk.Advance(time.Millisecond)
	h.loop.Tick()
	if lines := h.rig.Port.TakeLines(); len(lines) != 1 || !strings.HasPrefix(lines[0], `{"type":"SENSOR"`) {
		t.Fatalf("lines %q, want one telemetry line", lines)
	}
}

func TestTick_HappyNodCommand(t *testing.T) {
	h := newHarness(t, 0)
	h.rig.Port.Inject([]byte(`{"seq":7,"l1":"HI","l2":"BOB","mood":"happy","act":"nod"}` + "\n"))

	if !h.loop.Tick() {
		t.Fatal("Tick reported no input")
	}

	want := []string{
		"display.clear",
		"display.print 0 HI",
		"display.print 1 BOB",
		"rgb.red 0",
		"rgb.green 255",
		"rgb.blue 0",
		"tone 523 100ms",
		"tone 659 100ms",
		"tone 784 150ms",
		"tone.off",
		"servo 70",
		"servo 110",
		"servo 70",
		"servo 110",
		"servo 90",
		`tx {"res":"ACK","seq":7}`,
	}
	got := h.rig.Journal.Entries()
	// Dispatch takes 1.1s, so no telemetry yet.
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("journal\n got %q\nwant %q", got, want)
	}

	ev := h.events()
	if len(ev) != 1 || ev[0].Payload != (types.Ack{Seq: 7}) {
		t.Fatalf("bus events %+v", ev)
	}
}

func TestTick_DefaultsCommand(t *testing.T) {
	h := newHarness(t, 0)
	h.rig.Port.Inject([]byte("{\"seq\":9}\n"))
	h.loop.Tick()

	if h.rig.Display.Clears() != 0 {
		t.Fatal("display touched")
	}
	if len(h.rig.Servo.Angles()) != 0 {
		t.Fatal("servo moved")
	}
	if tones := h.rig.Buzzer.Tones(); len(tones) != 1 || tones[0].Hz != 880 {
		t.Fatalf("tones %v", tones)
	}
	if lines := h.rig.Port.Lines(); !reflect.DeepEqual(lines, []string{`{"res":"ACK","seq":9}`}) {
		t.Fatalf("lines %q", lines)
	}
}

func TestTick_MalformedFrameThenRecovery(t *testing.T) {
	h := newHarness(t, 0)
	h.rig.Port.Inject([]byte("{\"seq\":1,\"mood\":\n{\"seq\":2}\n"))
	h.loop.Tick()

	if lines := h.rig.Port.Lines(); !reflect.DeepEqual(lines, []string{`{"res":"ACK","seq":2}`}) {
		t.Fatalf("lines %q", lines)
	}
	ev := h.events()
	if len(ev) != 2 {
		t.Fatalf("events %d, want drop + ack", len(ev))
	}
	if !reflect.DeepEqual(ev[0].Topic, TopicDrop.Append(string(errcode.DecodeError))) {
		t.Fatalf("first event topic %v", ev[0].Topic)
	}
	if d, ok := ev[0].Payload.(Drop); !ok || d.Code != errcode.DecodeError {
		t.Fatalf("drop payload %+v", ev[0].Payload)
	}
}

func TestTick_LooseJSONIsNotAcknowledged(t *testing.T) {
	h := newHarness(t, 0)
	h.rig.Port.Inject([]byte("{\"seq\":11,}\n{\"seq\":12}}\n{\"seq\":13}garbage\n{\"seq\":14,\"x\":01}\n{\"seq\":15}\n"))
	h.loop.Tick()

	if lines := h.rig.Port.Lines(); !reflect.DeepEqual(lines, []string{`{"res":"ACK","seq":15}`}) {
		t.Fatalf("lines %q", lines)
	}
	drops := 0
	for _, m := range h.events() {
		if d, ok := m.Payload.(Drop); ok && d.Code == errcode.DecodeError {
			drops++
		}
	}
	if drops != 4 {
		t.Fatalf("decode drops %d, want 4", drops)
	}
}

func TestTick_OverflowDropsFrameAndRecovers(t *testing.T) {
	h := newHarness(t, 32)
	long := `{"seq":5,"l1":"` + strings.Repeat("A", 64) + `","l2":"B"}` + "\n"
	h.rig.Port.Inject([]byte(long + "{\"seq\":6}\n"))
	h.loop.Tick()

	if lines := h.rig.Port.Lines(); !reflect.DeepEqual(lines, []string{`{"res":"ACK","seq":6}`}) {
		t.Fatalf("lines %q", lines)
	}
	var codes []errcode.Code
	for _, m := range h.events() {
		if d, ok := m.Payload.(Drop); ok {
			codes = append(codes, d.Code)
		}
	}
	if !reflect.DeepEqual(codes, []errcode.Code{errcode.FrameOverflow, errcode.DecodeError}) {
		t.Fatalf("drop codes %v", codes)
	}
	if s := h.loop.Stats(); s.Frames != 2 || s.Overflows != 1 {
		t.Fatalf("stats %+v", s)
	}
}

func TestTick_FrameSplitAcrossTicks(t *testing.T) {
	h := newHarness(t, 0)
	h.rig.Port.Inject([]byte(`{"seq":3,`))
	h.loop.Tick()
	if len(h.rig.Port.Lines()) != 0 {
		t.Fatal("ack before frame completed")
	}
	h.rig.Port.Inject([]byte(`"mood":"x"}` + "\n"))
	h.loop.Tick()
	if lines := h.rig.Port.Lines(); !reflect.DeepEqual(lines, []string{`{"res":"ACK","seq":3}`}) {
		t.Fatalf("lines %q", lines)
	}
}

func TestTick_TelemetryInterval(t *testing.T) {
	h := newHarness(t, 0)
	telemetry := func() int {
		n := 0
		for _, l := range h.rig.Port.TakeLines() {
			if strings.HasPrefix(l, `{"type":"SENSOR"`) {
				n++
			}
		}
		return n
	}

	h.clk.Advance(2500 * time.Millisecond)
	h.loop.Tick()
	if n := telemetry(); n != 1 {
		t.Fatalf("first reading: %d lines", n)
	}
	h.clk.Advance(2500 * time.Millisecond)
	h.loop.Tick()
	if n := telemetry(); n != 1 {
		t.Fatalf("second reading: %d lines", n)
	}
	h.clk.Advance(500 * time.Millisecond)
	h.loop.Tick()
	if n := telemetry(); n != 0 {
		t.Fatalf("third reading 500ms later: %d lines", n)
	}
}

func TestTick_TelemetryFormat(t *testing.T) {
	h := newHarness(t, 0)
	h.rig.Button.Drive(true)
	h.clk.Advance(2 * time.Second)
	if h.loop.Tick() {
		t.Fatal("Tick reported input on an idle port")
	}
	want := []string{`{"type":"SENSOR","temp":22.5,"humid":41,"light":512,"btn":1}`}
	if got := h.rig.Port.Lines(); !reflect.DeepEqual(got, want) {
		t.Fatalf("lines %q, want %q", got, want)
	}
}

func TestTick_SamplerWaitsForDispatch(t *testing.T) {
	h := newHarness(t, 0)
	h.clk.Advance(1900 * time.Millisecond)
	h.rig.Port.Inject([]byte(`{"seq":4,"mood":"happy","act":"nod"}` + "\n"))
	h.loop.Tick()

	lines := h.rig.Port.Lines()
	if len(lines) != 2 || lines[0] != `{"res":"ACK","seq":4}` || !strings.HasPrefix(lines[1], `{"type":"SENSOR"`) {
		t.Fatalf("lines %q, want ack then telemetry", lines)
	}
}

func TestTick_InvalidSampleIsSilent(t *testing.T) {
	h := newHarness(t, 0)
	h.rig.Climate.Script(fake.Failed())
	h.clk.Advance(2 * time.Second)
	h.loop.Tick()

	if lines := h.rig.Port.Lines(); len(lines) != 0 {
		t.Fatalf("lines %q", lines)
	}
	ev := h.events()
	if len(ev) != 1 {
		t.Fatalf("events %d", len(ev))
	}
	if d, ok := ev[0].Payload.(Drop); !ok || d.Code != errcode.SensorInvalid {
		t.Fatalf("payload %+v", ev[0].Payload)
	}
}

func TestRun_StopsOnCancel(t *testing.T) {
	clk := timex.NewManual(t0)
	rig := fake.NewRig(clk)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	idles := 0
	loop := New(Options{
		Board: rig.Board(),
		Clock: clk,
		Idle: func() {
			idles++
			clk.Advance(time.Second)
			if idles == 5 {
				cancel()
			}
		},
	})
	rig.Port.Inject([]byte("{\"seq\":1,\"mood\":\"none\"}\n"))

	if err := loop.Run(ctx); err != context.Canceled {
		t.Fatalf("Run returned %v", err)
	}
	if idles != 5 {
		t.Fatalf("idle ran %d times", idles)
	}
	lines := rig.Port.Lines()
	if len(lines) == 0 || lines[0] != `{"res":"ACK","seq":1}` {
		t.Fatalf("lines %q", lines)
	}
	// 5 idle seconds at a 2s interval: readings at t=2s and t=4s.
	var n int
	for _, l := range lines[1:] {
		if strings.HasPrefix(l, `{"type":"SENSOR"`) {
			n++
		}
	}
	if n != 2 {
		t.Fatalf("telemetry lines %d, want 2", n)
	}
}

func TestLoop_WithoutBus(t *testing.T) {
	clk := timex.NewManual(t0)
	rig := fake.NewRig(clk)
	loop := New(Options{Board: rig.Board(), Clock: clk})
	rig.Port.Inject([]byte("garbage\n"))
	loop.Tick()
	if len(rig.Port.Lines()) != 0 {
		t.Fatal("garbage produced output")
	}
}
