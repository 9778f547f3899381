//go:build rp2040 || rp2350

package rp2

import (
	"machine"

	"artie-go/x/mathx"
)

// Local interface to avoid depending on an unexported concrete type in
// machine. It also satisfies servo.PWM.
type pwmCtrl interface {
	Configure(cfg machine.PWMConfig) error
	Channel(pin machine.Pin) (uint8, error)
	Top() uint32
	Set(channel uint8, value uint32)
}

// Select controller handle for a given slice number (0..7).
func pwmGroupBySlice(slice uint8) pwmCtrl {
	switch slice {
	case 0:
		return machine.PWM0
	case 1:
		return machine.PWM1
	case 2:
		return machine.PWM2
	case 3:
		return machine.PWM3
	case 4:
		return machine.PWM4
	case 5:
		return machine.PWM5
	case 6:
		return machine.PWM6
	default:
		return machine.PWM7
	}
}

func pwmFor(pin machine.Pin) (pwmCtrl, error) {
	slice, err := machine.PWMPeripheral(pin)
	if err != nil {
		return nil, err
	}
	return pwmGroupBySlice(slice), nil
}

func periodFromHz(hz uint64) uint64 {
	return uint64(1e9) / mathx.Max(hz, 1)
}

// pwmLevel drives one PWM channel with an 8-bit duty.
type pwmLevel struct {
	ctrl pwmCtrl
	ch   uint8
}

const ledPWMHz = 1000

func newPWMLevel(n int) (*pwmLevel, error) {
	pin := machine.Pin(n)
	ctrl, err := pwmFor(pin)
	if err != nil {
		return nil, err
	}
	if err := ctrl.Configure(machine.PWMConfig{Period: periodFromHz(ledPWMHz)}); err != nil {
		return nil, err
	}
	ch, err := ctrl.Channel(pin)
	if err != nil {
		return nil, err
	}
	return &pwmLevel{ctrl: ctrl, ch: ch}, nil
}

func (p *pwmLevel) SetLevel(duty uint8) {
	p.ctrl.Set(p.ch, p.ctrl.Top()*uint32(duty)/255)
}
