// Package protocol implements the line protocol spoken over the serial link:
// framing of inbound bytes, command decoding and the encoding of every
// device → host message.
package protocol

// Delimiter terminates every frame in both directions.
const Delimiter = '\n'

// DefaultCapacity is the frame buffer size, including the terminator slot.
const DefaultCapacity = 512

// FrameEvent is the outcome of feeding one byte.
type FrameEvent uint8

const (
	FrameNone     FrameEvent = iota // byte buffered, frame still open
	FrameComplete                   // delimiter seen, Frame() is valid
	FrameOverflow                   // byte discarded: buffer full
)

func (e FrameEvent) String() string {
	switch e {
	case FrameComplete:
		return "complete"
	case FrameOverflow:
		return "overflow"
	default:
		return "none"
	}
}

// FrameState is the framer's position in Idle → Accumulating → Complete.
type FrameState uint8

const (
	StateIdle FrameState = iota
	StateAccumulating
	StateComplete
)

// FramerStats counts completed frames and frames that lost bytes.
type FramerStats struct {
	Frames    uint32
	Overflows uint32
}

// Framer accumulates bytes into one newline-terminated frame at a time.
// At most Capacity-1 bytes are kept per frame; the rest are discarded until
// the delimiter arrives. There is no timeout on an open frame.
type Framer struct {
	buf       []byte
	n         int
	state     FrameState
	truncated bool
	stats     FramerStats
}

// NewFramer returns a framer holding up to capacity-1 bytes per frame.
// capacity < 2 falls back to DefaultCapacity.
func NewFramer(capacity int) *Framer {
	if capacity < 2 {
		capacity = DefaultCapacity
	}
	return &Framer{buf: make([]byte, capacity)}
}

// Feed pushes one byte.
func (f *Framer) Feed(b byte) FrameEvent {
	if f.state == StateComplete {
		f.begin()
	}
	if b == Delimiter {
		f.state = StateComplete
		f.stats.Frames++
		if f.truncated {
			f.stats.Overflows++
		}
		return FrameComplete
	}
	if f.n >= len(f.buf)-1 {
		f.truncated = true
		f.state = StateAccumulating
		return FrameOverflow
	}
	f.buf[f.n] = b
	f.n++
	f.state = StateAccumulating
	return FrameNone
}

// Frame returns the completed frame without its delimiter. The slice aliases
// the internal buffer and is valid until the next Feed or Reset. It is nil
// unless the framer is in StateComplete.
func (f *Framer) Frame() []byte {
	if f.state != StateComplete {
		return nil
	}
	return f.buf[:f.n]
}

// Truncated reports whether the current frame has lost bytes to overflow.
func (f *Framer) Truncated() bool { return f.truncated }

// Len is the number of bytes buffered for the current frame.
func (f *Framer) Len() int { return f.n }

// Capacity is the configured buffer size.
func (f *Framer) Capacity() int { return len(f.buf) }

func (f *Framer) State() FrameState { return f.state }

func (f *Framer) Stats() FramerStats { return f.stats }

// Reset drops any partial or completed frame.
func (f *Framer) Reset() { f.begin() }

func (f *Framer) begin() {
	f.n = 0
	f.truncated = false
	f.state = StateIdle
}
