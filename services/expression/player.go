package expression

import (
	"artie-go/services/hal"
	"artie-go/x/mathx"
	"artie-go/x/timex"
)

// Player runs step sequences synchronously against a clock.
type Player struct {
	clk timex.Clock
}

func NewPlayer(clk timex.Clock) *Player { return &Player{clk: clk} }

// ShowColor drives the indicator for c.
func (p *Player) ShowColor(ind hal.Indicator, c Color) {
	r, g, b := c.Levels()
	ind.Red.Set(r)
	ind.Green.SetLevel(g)
	ind.Blue.Set(b)
}

// PlayTones plays each step and waits out its span measured from the step
// start, so a buzzer that blocks for the tone itself does not stretch the
// sequence. The buzzer is silenced at the end, even for an empty sequence.
func (p *Player) PlayTones(bz hal.Buzzer, steps []ToneStep) {
	for _, st := range steps {
		start := p.clk.Now()
		bz.Tone(st.Hz, st.Duration)
		if rem := st.Span() - p.clk.Now().Sub(start); rem > 0 {
			p.clk.Sleep(rem)
		}
	}
	bz.Off()
}

// RunServo writes each angle and holds it.
func (p *Player) RunServo(sv hal.Servo, steps []ServoStep) {
	for _, st := range steps {
		sv.SetAngle(mathx.Clamp(st.Angle, hal.ServoMin, hal.ServoMax))
		if st.Hold > 0 {
			p.clk.Sleep(st.Hold)
		}
	}
}
