package expression

import (
	"time"

	"artie-go/services/hal"
)

// Action is the closed set of servo gestures.
type Action uint8

const (
	ActionNone Action = iota
	ActionNod
	ActionShake
	ActionScan
	actionCount
)

var actionNames = [actionCount]string{
	ActionNone:  "none",
	ActionNod:   "nod",
	ActionShake: "shake",
	ActionScan:  "scan",
}

// ParseAction maps a wire string to an Action; unrecognised strings are ActionNone.
func ParseAction(s string) Action {
	for a := ActionNod; a < actionCount; a++ {
		if actionNames[a] == s {
			return a
		}
	}
	return ActionNone
}

func (a Action) String() string {
	if a >= actionCount {
		return actionNames[ActionNone]
	}
	return actionNames[a]
}

// ServoStep moves the servo to Angle and holds for Hold.
type ServoStep struct {
	Angle int
	Hold  time.Duration
}

// swing alternates between two angles n times, then returns to centre.
func swing(lo, hi, n int, holdMs int) []ServoStep {
	hold := time.Duration(holdMs) * time.Millisecond
	steps := make([]ServoStep, 0, 2*n+1)
	for i := 0; i < n; i++ {
		steps = append(steps, ServoStep{lo, hold}, ServoStep{hi, hold})
	}
	return append(steps, ServoStep{Angle: hal.ServoCentre})
}

var actionTable = [actionCount][]ServoStep{
	ActionNone:  nil,
	ActionNod:   swing(70, 110, 2, 150),
	ActionShake: swing(45, 135, 3, 100),
	ActionScan:  swing(60, 120, 1, 500),
}

// ActionSteps returns the servo sequence for a. Every non-empty sequence ends
// at the centre angle. The returned slice is shared and must not be modified.
func ActionSteps(a Action) []ServoStep {
	if a >= actionCount {
		return nil
	}
	return actionTable[a]
}
