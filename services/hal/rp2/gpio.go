//go:build rp2040 || rp2350

package rp2

import (
	"machine"

	"artie-go/x/mathx"
)

type outPin struct{ p machine.Pin }

func newOut(n int) outPin {
	p := machine.Pin(n)
	p.Configure(machine.PinConfig{Mode: machine.PinOutput})
	p.Low()
	return outPin{p}
}

func (o outPin) Set(high bool) { o.p.Set(high) }

// inPin reads an externally pulled input. No internal pull is enabled.
type inPin struct{ p machine.Pin }

func newIn(n int) inPin {
	p := machine.Pin(n)
	p.Configure(machine.PinConfig{Mode: machine.PinInput})
	return inPin{p}
}

func (i inPin) Get() bool { return i.p.Get() }

// adcLight scales the 16-bit ADC reading to 10 bits.
type adcLight struct{ a machine.ADC }

func newADCLight(n int) adcLight {
	a := machine.ADC{Pin: machine.Pin(n)}
	a.Configure(machine.ADCConfig{})
	return adcLight{a}
}

func (l adcLight) Level() uint16 {
	return mathx.MapU16(l.a.Get(), 0, 0xFFFF, 0, 1023)
}
