//go:build linux

// artie-ctl is an interactive console for an ARTIE device (or artie-sim).
//
// Usage:
//
//	artie-ctl -port /dev/ttyACM0 [-baud 115200] [-timeout 5s]
//
// Example session:
//
//	> send l1=HELLO l2="BIG WORLD" mood=happy act=nod
//	ack    seq=1
package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"time"

	"artie-go/services/hal/hostio"
	"artie-go/services/protocol"
	"artie-go/types"
)

func main() {
	var (
		portPath = flag.String("port", "/dev/ttyACM0", "serial device or simulator pty")
		baud     = flag.Uint("baud", 115200, "baud rate")
		timeout  = flag.Duration("timeout", 5*time.Second, "how long to wait for an ack")
	)
	flag.Parse()

	f, err := hostio.OpenSerial(*portPath, uint32(*baud))
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	defer f.Close()

	acks := make(chan int64, 16)
	go readDevice(f, acks)

	var seq int64
	nextSeq := func() int64 { seq++; return seq }

	in := bufio.NewScanner(os.Stdin)
	fmt.Print("> ")
	for in.Scan() {
		req, err := parseLine(in.Text(), nextSeq)
		switch {
		case err != nil:
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
		case req.quit:
			return
		case req.help:
			fmt.Println(helpText)
		case req.line != nil:
			if _, err := f.Write(req.line); err != nil {
				fmt.Fprintf(os.Stderr, "error: write: %v\n", err)
				os.Exit(1)
			}
			if req.wait && !awaitAck(acks, req.seq, *timeout) {
				fmt.Fprintf(os.Stderr, "warning: no ack for seq %d after %v\n", req.seq, *timeout)
			}
		}
		fmt.Print("> ")
	}
}

// readDevice prints every device line, forwards ack sequence numbers and
// announces when the room turns dark or bright.
func readDevice(f *os.File, acks chan<- int64) {
	sc := bufio.NewScanner(f)
	watch := newLightWatch()
	for sc.Scan() {
		line := sc.Bytes()
		fmt.Println("\r" + describe(line))
		r, err := protocol.ParseReply(line)
		if err != nil {
			continue
		}
		switch r.Kind {
		case types.ReplyAck:
			select {
			case acks <- r.Ack.Seq:
			default:
			}
		case types.ReplyTelemetry:
			if s, changed := watch.observe(r.Reading.Light); changed {
				fmt.Println("\r! light changed to " + s)
			}
		}
	}
	if err := sc.Err(); err != nil {
		fmt.Fprintf(os.Stderr, "error: read: %v\n", err)
	}
	os.Exit(1)
}

// awaitAck waits for seq, discarding stale acks.
func awaitAck(acks <-chan int64, seq int64, timeout time.Duration) bool {
	deadline := time.After(timeout)
	for {
		select {
		case got := <-acks:
			if got == seq {
				return true
			}
		case <-deadline:
			return false
		}
	}
}
