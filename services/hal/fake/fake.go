// Package fake provides in-memory drivers for tests and the host simulator.
// Every fake can log into a shared Journal so tests can assert the order of
// side effects across devices.
package fake

import (
	"bytes"
	"errors"
	"math"
	"strconv"
	"sync"
	"time"

	"artie-go/services/hal"
	"artie-go/x/timex"
)

// ErrEmpty is returned by Port.ReadByte when nothing is buffered.
var ErrEmpty = errors.New("fake: rx empty")

// ---------------------------------------------------------------------------
// Journal
// ---------------------------------------------------------------------------

// Journal is an ordered record of driver activity.
type Journal struct {
	mu      sync.Mutex
	entries []string
	// OnEntry, when set, observes every entry as it is recorded.
	OnEntry func(entry string)
	// Discard stops entries being kept; OnEntry still sees them.
	Discard bool
}

func (j *Journal) add(entry string) {
	if j == nil {
		return
	}
	j.mu.Lock()
	if !j.Discard {
		j.entries = append(j.entries, entry)
	}
	fn := j.OnEntry
	j.mu.Unlock()
	if fn != nil {
		fn(entry)
	}
}

// Entries returns a copy of everything recorded so far.
func (j *Journal) Entries() []string {
	j.mu.Lock()
	defer j.mu.Unlock()
	return append([]string(nil), j.entries...)
}

// Reset forgets recorded entries.
func (j *Journal) Reset() {
	j.mu.Lock()
	j.entries = nil
	j.mu.Unlock()
}

// ---------------------------------------------------------------------------
// Port
// ---------------------------------------------------------------------------

// Port is a loopback serial port: tests Inject host bytes and read back what
// the firmware wrote.
type Port struct {
	mu  sync.Mutex
	rx  []byte
	tx  bytes.Buffer
	j   *Journal
	out []string
}

func NewPort(j *Journal) *Port { return &Port{j: j} }

// Inject queues bytes as if the host had sent them.
func (p *Port) Inject(b []byte) {
	p.mu.Lock()
	p.rx = append(p.rx, b...)
	p.mu.Unlock()
}

func (p *Port) Buffered() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.rx)
}

func (p *Port) ReadByte() (byte, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.rx) == 0 {
		return 0, ErrEmpty
	}
	c := p.rx[0]
	p.rx = p.rx[1:]
	return c, nil
}

func (p *Port) Write(b []byte) (int, error) {
	p.mu.Lock()
	p.tx.Write(b)
	var done []string
	for {
		i := bytes.IndexByte(p.tx.Bytes(), '\n')
		if i < 0 {
			break
		}
		line := string(p.tx.Next(i + 1))
		done = append(done, line[:len(line)-1])
	}
	p.out = append(p.out, done...)
	p.mu.Unlock()
	for _, l := range done {
		p.j.add("tx " + l)
	}
	return len(b), nil
}

// Lines returns the complete lines written so far.
func (p *Port) Lines() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.out...)
}

// TakeLines returns and clears the complete lines written so far.
func (p *Port) TakeLines() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := p.out
	p.out = nil
	return out
}

// ---------------------------------------------------------------------------
// Display
// ---------------------------------------------------------------------------

type Display struct {
	mu     sync.Mutex
	Cols   int
	rows   []string
	clears int
	j      *Journal
}

func NewDisplay(cols, rows int, j *Journal) *Display {
	return &Display{Cols: cols, rows: make([]string, rows), j: j}
}

func (d *Display) Clear() {
	d.mu.Lock()
	for i := range d.rows {
		d.rows[i] = ""
	}
	d.clears++
	d.mu.Unlock()
	d.j.add("display.clear")
}

func (d *Display) Print(row int, text string) {
	if d.Cols > 0 && len(text) > d.Cols {
		text = text[:d.Cols]
	}
	d.mu.Lock()
	if row >= 0 && row < len(d.rows) {
		d.rows[row] = text
	}
	d.mu.Unlock()
	d.j.add("display.print " + strconv.Itoa(row) + " " + text)
}

// Row returns what is shown on row.
func (d *Display) Row(row int) string {
	d.mu.Lock()
	defer d.mu.Unlock()
	if row < 0 || row >= len(d.rows) {
		return ""
	}
	return d.rows[row]
}

// Clears counts Clear calls.
func (d *Display) Clears() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.clears
}

// ---------------------------------------------------------------------------
// Pins
// ---------------------------------------------------------------------------

// Pin is a digital pin usable as input or output.
type Pin struct {
	mu    sync.Mutex
	Name  string
	level bool
	j     *Journal
}

func NewPin(name string, j *Journal) *Pin { return &Pin{Name: name, j: j} }

func (p *Pin) Set(high bool) {
	p.mu.Lock()
	p.level = high
	p.mu.Unlock()
	v := "0"
	if high {
		v = "1"
	}
	p.j.add(p.Name + " " + v)
}

func (p *Pin) Get() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.level
}

// Drive sets an input level without journaling (test stimulus).
func (p *Pin) Drive(high bool) {
	p.mu.Lock()
	p.level = high
	p.mu.Unlock()
}

// PWM is an 8-bit analog output.
type PWM struct {
	mu    sync.Mutex
	Name  string
	level uint8
	j     *Journal
}

func NewPWM(name string, j *Journal) *PWM { return &PWM{Name: name, j: j} }

func (p *PWM) SetLevel(duty uint8) {
	p.mu.Lock()
	p.level = duty
	p.mu.Unlock()
	p.j.add(p.Name + " " + strconv.Itoa(int(duty)))
}

func (p *PWM) Level() uint8 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.level
}

// ---------------------------------------------------------------------------
// Buzzer + servo
// ---------------------------------------------------------------------------

// Tone is one recorded buzzer request.
type Tone struct {
	Hz uint16
	D  time.Duration
}

// Buzzer records tones. When Blocking is set and Clock is non-nil, Tone
// sleeps for the tone duration like a bit-banged piezo.
type Buzzer struct {
	mu       sync.Mutex
	Clock    timex.Clock
	Blocking bool
	tones    []Tone
	offs     int
	j        *Journal
}

func NewBuzzer(clk timex.Clock, j *Journal) *Buzzer { return &Buzzer{Clock: clk, j: j} }

func (b *Buzzer) Tone(hz uint16, d time.Duration) {
	b.mu.Lock()
	b.tones = append(b.tones, Tone{Hz: hz, D: d})
	b.mu.Unlock()
	b.j.add("tone " + strconv.Itoa(int(hz)) + " " + d.String())
	if b.Blocking && b.Clock != nil {
		b.Clock.Sleep(d)
	}
}

func (b *Buzzer) Off() {
	b.mu.Lock()
	b.offs++
	b.mu.Unlock()
	b.j.add("tone.off")
}

func (b *Buzzer) Tones() []Tone {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]Tone(nil), b.tones...)
}

func (b *Buzzer) Offs() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.offs
}

type Servo struct {
	mu     sync.Mutex
	angles []int
	j      *Journal
}

func NewServo(j *Journal) *Servo { return &Servo{j: j} }

func (s *Servo) SetAngle(deg int) {
	s.mu.Lock()
	s.angles = append(s.angles, deg)
	s.mu.Unlock()
	s.j.add("servo " + strconv.Itoa(deg))
}

// Angles returns every angle written, in order.
func (s *Servo) Angles() []int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]int(nil), s.angles...)
}

// ---------------------------------------------------------------------------
// Sensors
// ---------------------------------------------------------------------------

// ClimateSample is one scripted climate read. Use NaN to model a failed read.
type ClimateSample struct {
	TempC, RH float32
}

// Climate replays scripted samples, then repeats the last one.
type Climate struct {
	mu     sync.Mutex
	script []ClimateSample
	last   ClimateSample
	reads  int
}

func NewClimate(tempC, rh float32) *Climate {
	return &Climate{last: ClimateSample{TempC: tempC, RH: rh}}
}

// Script queues samples returned by subsequent reads.
func (c *Climate) Script(s ...ClimateSample) {
	c.mu.Lock()
	c.script = append(c.script, s...)
	c.mu.Unlock()
}

func (c *Climate) ReadClimate() (float32, float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.reads++
	if len(c.script) > 0 {
		c.last = c.script[0]
		c.script = c.script[1:]
	}
	return c.last.TempC, c.last.RH
}

// Reads counts ReadClimate calls.
func (c *Climate) Reads() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.reads
}

// Failed is a climate sample modelling a failed read.
func Failed() ClimateSample {
	nan := float32(math.NaN())
	return ClimateSample{TempC: nan, RH: nan}
}

// Light returns a settable level.
type Light struct {
	mu    sync.Mutex
	level uint16
}

func NewLight(level uint16) *Light { return &Light{level: level} }

func (l *Light) Level() uint16 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.level
}

func (l *Light) Set(level uint16) {
	l.mu.Lock()
	l.level = level
	l.mu.Unlock()
}

// ---------------------------------------------------------------------------
// Rig
// ---------------------------------------------------------------------------

// Rig is a complete fake board sharing one journal.
type Rig struct {
	Journal *Journal
	Port    *Port
	Display *Display
	Red     *Pin
	Green   *PWM
	Blue    *Pin
	Buzzer  *Buzzer
	Servo   *Servo
	Climate *Climate
	Light   *Light
	Button  *Pin
}

// NewRig builds a 16x2 fake board. clk paces a blocking buzzer if enabled.
func NewRig(clk timex.Clock) *Rig {
	j := &Journal{}
	return &Rig{
		Journal: j,
		Port:    NewPort(j),
		Display: NewDisplay(16, 2, j),
		Red:     NewPin("rgb.red", j),
		Green:   NewPWM("rgb.green", j),
		Blue:    NewPin("rgb.blue", j),
		Buzzer:  NewBuzzer(clk, j),
		Servo:   NewServo(j),
		Climate: NewClimate(22.5, 41),
		Light:   NewLight(512),
		Button:  NewPin("button", nil),
	}
}

// Board exposes the rig through the hal interfaces.
func (r *Rig) Board() hal.Board {
	return hal.Board{
		Port:      r.Port,
		Display:   r.Display,
		Indicator: hal.Indicator{Red: r.Red, Green: r.Green, Blue: r.Blue},
		Buzzer:    r.Buzzer,
		Servo:     r.Servo,
		Climate:   r.Climate,
		Light:     r.Light,
		Button:    r.Button,
	}
}
