// Package dispatch applies a decoded command to the outputs.
package dispatch

import (
	"artie-go/services/expression"
	"artie-go/services/hal"
	"artie-go/types"
)

// Dispatcher drives the display, indicator, buzzer and servo of one board.
type Dispatcher struct {
	board  hal.Board
	player *expression.Player
}

func New(b hal.Board, p *expression.Player) *Dispatcher {
	return &Dispatcher{board: b, player: p}
}

// Dispatch runs every side effect of cmd in order: display, colour, tones,
// motion. It returns once all of them have completed.
func (d *Dispatcher) Dispatch(cmd types.Command) types.Ack {
	if cmd.HasLines() {
		d.board.Display.Clear()
		d.board.Display.Print(0, cmd.Line1.Value)
		d.board.Display.Print(1, cmd.Line2.Value)
	}

	fx := expression.MoodEffects(expression.ParseMood(cmd.Mood))
	d.player.ShowColor(d.board.Indicator, fx.Color)
	d.player.PlayTones(d.board.Buzzer, fx.Tones)

	d.player.RunServo(d.board.Servo, expression.ActionSteps(expression.ParseAction(cmd.Action)))

	return types.Ack{Seq: cmd.Seq}
}

// Show writes two lines to the display without touching other outputs.
func (d *Dispatcher) Show(line1, line2 string) {
	d.board.Display.Clear()
	d.board.Display.Print(0, line1)
	if line2 != "" {
		d.board.Display.Print(1, line2)
	}
}
