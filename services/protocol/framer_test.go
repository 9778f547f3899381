package protocol

import (
	"bytes"
	"testing"
)

func feed(f *Framer, s string) (events []FrameEvent) {
	for i := 0; i < len(s); i++ {
		events = append(events, f.Feed(s[i]))
	}
	return events
}

func TestFramer_CompletesOnDelimiter(t *testing.T) {
	f := NewFramer(16)
	if f.State() != StateIdle {
		t.Fatalf("initial state %v, want idle", f.State())
	}
	ev := feed(f, "abc")
	for i, e := range ev {
		if e != FrameNone {
			t.Fatalf("event[%d]=%v, want none", i, e)
		}
	}
	if f.State() != StateAccumulating || f.Frame() != nil {
		t.Fatalf("open frame: state=%v frame=%q", f.State(), f.Frame())
	}
	if e := f.Feed('\n'); e != FrameComplete {
		t.Fatalf("delimiter event %v, want complete", e)
	}
	if got := string(f.Frame()); got != "abc" {
		t.Fatalf("frame %q, want %q", got, "abc")
	}
	if f.Truncated() {
		t.Fatal("unexpected truncation")
	}
}

func TestFramer_NextFeedStartsFreshFrame(t *testing.T) {
	f := NewFramer(16)
	feed(f, "first\n")
	feed(f, "2nd\n")
	if got := string(f.Frame()); got != "2nd" {
		t.Fatalf("frame %q, want %q", got, "2nd")
	}
	if s := f.Stats(); s.Frames != 2 || s.Overflows != 0 {
		t.Fatalf("stats %+v", s)
	}
}

func TestFramer_EmptyFrame(t *testing.T) {
	f := NewFramer(16)
	if e := f.Feed('\n'); e != FrameComplete {
		t.Fatalf("event %v, want complete", e)
	}
	if f.Frame() == nil || len(f.Frame()) != 0 {
		t.Fatalf("frame %q, want empty non-nil", f.Frame())
	}
}

func TestFramer_OverflowKeepsCapacityMinusOne(t *testing.T) {
	const capacity = 8
	f := NewFramer(capacity)
	in := "0123456789AB"
	ev := feed(f, in)

	for i, e := range ev {
		want := FrameNone
		if i >= capacity-1 {
			want = FrameOverflow
		}
		if e != want {
			t.Fatalf("event[%d]=%v, want %v", i, e, want)
		}
	}
	if f.Len() != capacity-1 {
		t.Fatalf("len %d, want %d", f.Len(), capacity-1)
	}
	if !f.Truncated() {
		t.Fatal("expected truncation")
	}
	if e := f.Feed('\n'); e != FrameComplete {
		t.Fatalf("delimiter after overflow: %v", e)
	}
	if got := string(f.Frame()); got != in[:capacity-1] {
		t.Fatalf("frame %q, want %q", got, in[:capacity-1])
	}
	if s := f.Stats(); s.Frames != 1 || s.Overflows != 1 {
		t.Fatalf("stats %+v", s)
	}

	// Recovery: the following frame is whole again.
	feed(f, "ok\n")
	if f.Truncated() || string(f.Frame()) != "ok" {
		t.Fatalf("after recovery: truncated=%v frame=%q", f.Truncated(), f.Frame())
	}
}

func TestFramer_DefaultCapacity(t *testing.T) {
	f := NewFramer(0)
	if f.Capacity() != DefaultCapacity {
		t.Fatalf("capacity %d, want %d", f.Capacity(), DefaultCapacity)
	}
	long := bytes.Repeat([]byte{'x'}, 600)
	for _, b := range long {
		f.Feed(b)
	}
	f.Feed('\n')
	if len(f.Frame()) != DefaultCapacity-1 {
		t.Fatalf("frame len %d, want %d", len(f.Frame()), DefaultCapacity-1)
	}
}

func TestFramer_Reset(t *testing.T) {
	f := NewFramer(16)
	feed(f, "partial")
	f.Reset()
	if f.State() != StateIdle || f.Len() != 0 {
		t.Fatalf("after reset: state=%v len=%d", f.State(), f.Len())
	}
	feed(f, "x\n")
	if string(f.Frame()) != "x" {
		t.Fatalf("frame %q", f.Frame())
	}
}
