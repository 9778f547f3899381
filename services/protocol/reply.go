package protocol

import (
	"github.com/buger/jsonparser"

	"artie-go/errcode"
	"artie-go/types"
)

const opReply = "parse_reply"

// ParseReply classifies and decodes one device → host line (without the
// delimiter). It is used by host tooling; the firmware never parses replies.
func ParseReply(line []byte) (types.Reply, error) {
	var (
		r           types.Reply
		status, res string
		typ         string
	)
	err := jsonparser.ObjectEach(line, func(key, value []byte, vt jsonparser.ValueType, _ int) error {
		var err error
		switch string(key) {
		case "status":
			status, err = jsonparser.ParseString(value)
		case "res":
			res, err = jsonparser.ParseString(value)
		case "type":
			typ, err = jsonparser.ParseString(value)
		case "seq":
			r.Ack.Seq, err = jsonparser.ParseInt(value)
		case "temp":
			r.Reading.Temperature, err = parseFloat32(value, vt)
		case "humid":
			r.Reading.Humidity, err = parseFloat32(value, vt)
		case "light":
			var n int64
			n, err = jsonparser.ParseInt(value)
			r.Reading.Light = uint16(n)
		case "btn":
			var n int64
			n, err = jsonparser.ParseInt(value)
			r.Reading.Button = n != 0
		}
		return err
	})
	if err != nil {
		return types.Reply{}, errcode.Wrap(errcode.DecodeError, opReply, err)
	}
	switch {
	case status != "":
		r.Kind = types.ReplyBoot
		r.Status = status
	case res == "ACK":
		r.Kind = types.ReplyAck
	case typ == "SENSOR":
		r.Kind = types.ReplyTelemetry
	default:
		return types.Reply{}, errcode.New(errcode.DecodeError, opReply, "unrecognised message")
	}
	return r, nil
}

func parseFloat32(value []byte, vt jsonparser.ValueType) (float32, error) {
	if vt == jsonparser.Null {
		return 0, nil
	}
	f, err := jsonparser.ParseFloat(value)
	return float32(f), err
}
