//go:build linux

package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/shlex"

	"artie-go/services/protocol"
	"artie-go/types"
)

// request is one parsed REPL line.
type request struct {
	quit bool
	help bool
	line []byte // wire line to send, delimiter included
	seq  int64  // ack to wait for; valid when wait is set
	wait bool
}

// parseLine turns a REPL line into a request. nextSeq supplies the sequence
// number when a send omits seq.
func parseLine(input string, nextSeq func() int64) (request, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return request{}, nil
	}
	verb, rest, _ := strings.Cut(input, " ")
	switch verb {
	case "quit", "exit":
		return request{quit: true}, nil
	case "help", "?":
		return request{help: true}, nil
	case "raw":
		rest = strings.TrimSpace(rest)
		if rest == "" {
			return request{}, errors.New("raw: missing payload")
		}
		return request{line: append([]byte(rest), protocol.Delimiter)}, nil
	case "send":
		args, err := shlex.Split(rest)
		if err != nil {
			return request{}, fmt.Errorf("send: %w", err)
		}
		cmd, err := buildCommand(args, nextSeq)
		if err != nil {
			return request{}, err
		}
		return request{line: protocol.AppendCommand(nil, cmd), seq: cmd.Seq, wait: true}, nil
	default:
		return request{}, fmt.Errorf("unknown command %q (try help)", verb)
	}
}

// buildCommand reads key=value arguments. Unset mood and act take the
// protocol defaults.
func buildCommand(args []string, nextSeq func() int64) (types.Command, error) {
	cmd := types.Command{Mood: types.DefaultMood, Action: types.DefaultAction}
	seqSet := false
	for _, a := range args {
		k, v, ok := strings.Cut(a, "=")
		if !ok {
			return types.Command{}, fmt.Errorf("send: %q is not key=value", a)
		}
		switch k {
		case "seq":
			n, err := strconv.ParseInt(v, 10, 64)
			if err != nil {
				return types.Command{}, fmt.Errorf("send: seq: %w", err)
			}
			cmd.Seq, seqSet = n, true
		case "l1":
			cmd.Line1 = types.Some(v)
		case "l2":
			cmd.Line2 = types.Some(v)
		case "mood":
			cmd.Mood = v
		case "act":
			cmd.Action = v
		default:
			return types.Command{}, fmt.Errorf("send: unknown key %q", k)
		}
	}
	if !seqSet {
		cmd.Seq = nextSeq()
	}
	return cmd, nil
}

// describe renders a device line for the console.
func describe(line []byte) string {
	r, err := protocol.ParseReply(line)
	if err != nil {
		return "? " + string(line)
	}
	switch r.Kind {
	case types.ReplyBoot:
		return "boot   " + r.Status
	case types.ReplyAck:
		return "ack    seq=" + strconv.FormatInt(r.Ack.Seq, 10)
	default:
		btn := 0
		if r.Reading.Button {
			btn = 1
		}
		di := discomfortIndex(r.Reading.Temperature, r.Reading.Humidity)
		return fmt.Sprintf("sensor temp=%.1f°C humid=%.1f%% light=%d btn=%d | di=%.1f %s, %s",
			r.Reading.Temperature, r.Reading.Humidity, r.Reading.Light, btn,
			di, weatherStatus(di), lightStatus(r.Reading.Light))
	}
}

const helpText = `commands:
  send [seq=N] [l1=TEXT l2=TEXT] [mood=happy|angry|sad|neutral] [act=nod|shake|scan|none]
  raw <json>      send a line as-is
  help            show this text
  quit            exit`
