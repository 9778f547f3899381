package protocol

import (
	"github.com/buger/jsonparser"

	"artie-go/errcode"
	"artie-go/types"
)

const opDecode = "decode"

// Decode parses one frame into a Command.
//
// The frame must hold a JSON object. Recognised keys are seq (integer),
// l1, l2, mood and act (strings); others are ignored and a null value counts
// as absent. Absent seq, mood and act take their defaults. Any syntax error,
// non-object frame or wrongly typed field rejects the whole frame with an
// errcode.DecodeError.
func Decode(frame []byte) (types.Command, error) {
	if err := checkFrame(frame); err != nil {
		return types.Command{}, err
	}
	cmd := types.Command{
		Mood:   types.DefaultMood,
		Action: types.DefaultAction,
	}
	err := jsonparser.ObjectEach(frame, func(key, value []byte, vt jsonparser.ValueType, _ int) error {
		if vt == jsonparser.Null {
			return nil
		}
		switch string(key) {
		case "seq":
			if vt != jsonparser.Number {
				return errcode.New(errcode.DecodeError, opDecode, "seq: not a number")
			}
			n, err := jsonparser.ParseInt(value)
			if err != nil {
				return errcode.Wrap(errcode.DecodeError, opDecode, err)
			}
			cmd.Seq = n
		case "l1":
			s, err := stringField("l1", value, vt)
			if err != nil {
				return err
			}
			cmd.Line1 = types.Some(s)
		case "l2":
			s, err := stringField("l2", value, vt)
			if err != nil {
				return err
			}
			cmd.Line2 = types.Some(s)
		case "mood":
			s, err := stringField("mood", value, vt)
			if err != nil {
				return err
			}
			cmd.Mood = s
		case "act":
			s, err := stringField("act", value, vt)
			if err != nil {
				return err
			}
			cmd.Action = s
		}
		return nil
	})
	if err != nil {
		if errcode.Of(err) != errcode.DecodeError {
			err = errcode.Wrap(errcode.DecodeError, opDecode, err)
		}
		return types.Command{}, err
	}
	return cmd, nil
}

func stringField(name string, value []byte, vt jsonparser.ValueType) (string, error) {
	if vt != jsonparser.String {
		return "", errcode.New(errcode.DecodeError, opDecode, name+": not a string")
	}
	s, err := jsonparser.ParseString(value)
	if err != nil {
		return "", errcode.Wrap(errcode.DecodeError, opDecode, err)
	}
	return s, nil
}
