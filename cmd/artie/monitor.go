//go:build rp2040 || rp2350

package main

import (
	"runtime"

	"artie-go/bus"
	"artie-go/errcode"
	"artie-go/services/scheduler"
	"artie-go/types"
)

// monitor prints diagnostic events to the USB console. It only runs when the
// protocol is on a UART, so logs never interleave with frames.
func monitor(conn *bus.Connection) {
	sub := conn.Subscribe(scheduler.TopicAll)
	for m := range sub.Channel() {
		switch p := m.Payload.(type) {
		case types.Ack:
			println("[loop] ack seq", int(p.Seq))
		case types.SensorReading:
			println("[loop] telemetry light", p.Light, "btn", p.Button)
			printMem()
		case scheduler.Drop:
			msg := ""
			if p.Err != nil && errcode.Of(p.Err) != errcode.FrameOverflow {
				msg = p.Err.Error()
			}
			println("[loop] drop", string(p.Code), msg)
		default:
			printTopicWith("[monitor] <-", m.Topic)
		}
	}
}

func printTopicWith(prefix string, t bus.Topic) {
	print(prefix)
	print(" ")
	for i, tok := range t {
		if i > 0 {
			print("/")
		}
		switch v := tok.(type) {
		case string:
			print(v)
		case int:
			print(v)
		default:
			print("?")
		}
	}
	println()
}

// printMem prints a compact snapshot of TinyGo runtime memory stats.
// Uses builtin println to avoid fmt overhead/allocations.
func printMem() {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)

	println(
		"[mem]",
		"alloc:", uint32(ms.Alloc),
		"heapInuse:", uint32(ms.HeapInuse),
		"mallocs:", uint32(ms.Mallocs),
		"frees:", uint32(ms.Frees),
	)
}
