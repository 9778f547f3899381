package sensors

import (
	"testing"
	"time"

	"artie-go/errcode"
	"artie-go/services/hal/fake"
	"artie-go/types"
)

var t0 = time.Unix(1000, 0)

func ms(n int) time.Duration { return time.Duration(n) * time.Millisecond }

func TestMaybeSample_Gating(t *testing.T) {
	rig := fake.NewRig(nil)
	s := NewSampler(rig.Board(), 0)
	gate := &Gate{Last: t0}

	steps := []struct {
		at   time.Duration
		want bool
	}{
		{ms(0), false},
		{ms(1999), false},
		{ms(2500), true},
		{ms(5000), true}, // 2500 ms after the previous reading
		{ms(5500), false},
		{ms(7000), true},
	}
	for _, st := range steps {
		_, ok := s.MaybeSample(gate, t0.Add(st.at))
		if ok != st.want {
			t.Fatalf("at %v: sampled=%v, want %v", st.at, ok, st.want)
		}
	}
	if gate.Last != t0.Add(ms(7000)) {
		t.Fatalf("gate.Last=%v", gate.Last.Sub(t0))
	}
	if rig.Climate.Reads() != 3 {
		t.Fatalf("climate reads %d, want 3", rig.Climate.Reads())
	}
}

func TestMaybeSample_Reading(t *testing.T) {
	rig := fake.NewRig(nil)
	rig.Light.Set(777)
	rig.Button.Drive(true)
	s := NewSampler(rig.Board(), ms(100))
	gate := &Gate{Last: t0}

	r, ok := s.MaybeSample(gate, t0.Add(ms(100)))
	if !ok {
		t.Fatal("expected a reading")
	}
	want := types.SensorReading{Temperature: 22.5, Humidity: 41, Light: 777, Button: true}
	if r != want {
		t.Fatalf("got %+v, want %+v", r, want)
	}
}

func TestMaybeSample_ButtonPolarity(t *testing.T) {
	rig := fake.NewRig(nil)
	s := NewSampler(rig.Board(), ms(10))
	gate := &Gate{Last: t0}

	for i, high := range []bool{true, false} {
		rig.Button.Drive(high)
		r, ok := s.MaybeSample(gate, t0.Add(ms(10*(i+1))))
		if !ok {
			t.Fatalf("step %d: no reading", i)
		}
		if r.Button != high {
			t.Fatalf("input high=%v: pressed=%v", high, r.Button)
		}
	}
}

func TestMaybeSample_DiscardsInvalidButConsumesInterval(t *testing.T) {
	rig := fake.NewRig(nil)
	rig.Climate.Script(fake.Failed(), fake.ClimateSample{TempC: 20, RH: 50})
	s := NewSampler(rig.Board(), ms(2000))
	gate := &Gate{Last: t0}

	if _, ok := s.MaybeSample(gate, t0.Add(ms(2000))); ok {
		t.Fatal("NaN reading must be discarded")
	}
	if errcode.Of(s.LastErr()) != errcode.SensorInvalid {
		t.Fatalf("LastErr=%v", s.LastErr())
	}
	if s.Discarded() != 1 {
		t.Fatalf("discarded=%d", s.Discarded())
	}
	// The failed attempt advanced the gate.
	if _, ok := s.MaybeSample(gate, t0.Add(ms(3000))); ok {
		t.Fatal("sampled before the interval elapsed")
	}
	r, ok := s.MaybeSample(gate, t0.Add(ms(4000)))
	if !ok || r.Temperature != 20 || r.Humidity != 50 {
		t.Fatalf("recovery: ok=%v r=%+v", ok, r)
	}
	if s.LastErr() != nil {
		t.Fatalf("LastErr after success: %v", s.LastErr())
	}
}

func TestMaybeSample_HumidityOnlyNaN(t *testing.T) {
	rig := fake.NewRig(nil)
	nan := fake.Failed().RH
	rig.Climate.Script(fake.ClimateSample{TempC: 21, RH: nan})
	s := NewSampler(rig.Board(), ms(1))
	if _, ok := s.MaybeSample(&Gate{Last: t0}, t0.Add(ms(1))); ok {
		t.Fatal("reading with NaN humidity must be discarded")
	}
}
