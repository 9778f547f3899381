package protocol

import (
	"github.com/buger/jsonparser"

	"artie-go/errcode"
)

// checkFrame rejects anything that is not exactly one well-formed JSON object
// optionally surrounded by whitespace. jsonparser locates values by scanning
// for delimiters, so number grammar, string escapes, dangling commas and
// trailing bytes are checked here before any field is read.
func checkFrame(frame []byte) error {
	value, vt, end, err := jsonparser.Get(frame)
	if err != nil {
		return errcode.Wrap(errcode.DecodeError, opDecode, err)
	}
	if vt != jsonparser.Object {
		return errcode.New(errcode.DecodeError, opDecode, "not an object")
	}
	for _, c := range frame[end:] {
		if !isSpace(c) {
			return errcode.New(errcode.DecodeError, opDecode, "trailing bytes after object")
		}
	}
	if danglingComma(value) {
		return errcode.New(errcode.DecodeError, opDecode, "trailing comma")
	}
	if err := checkValue(value, vt); err != nil {
		if errcode.Of(err) != errcode.DecodeError {
			err = errcode.Wrap(errcode.DecodeError, opDecode, err)
		}
		return err
	}
	return nil
}

func checkValue(value []byte, vt jsonparser.ValueType) error {
	switch vt {
	case jsonparser.Object:
		return jsonparser.ObjectEach(value, func(_, v []byte, t jsonparser.ValueType, _ int) error {
			return checkValue(v, t)
		})
	case jsonparser.Array:
		var first error
		_, err := jsonparser.ArrayEach(value, func(v []byte, t jsonparser.ValueType, _ int, err error) {
			if first != nil {
				return
			}
			if err != nil {
				first = err
				return
			}
			first = checkValue(v, t)
		})
		if err != nil {
			return err
		}
		return first
	case jsonparser.String:
		for _, c := range value {
			if c < 0x20 {
				return errcode.New(errcode.DecodeError, opDecode, "control byte in string")
			}
		}
		_, err := jsonparser.ParseString(value)
		return err
	case jsonparser.Number:
		if !validNumber(value) {
			return errcode.New(errcode.DecodeError, opDecode, "bad number "+string(value))
		}
		return nil
	case jsonparser.Boolean, jsonparser.Null:
		return nil
	}
	return errcode.New(errcode.DecodeError, opDecode, "unknown value")
}

// validNumber matches the JSON number grammar: -?(0|[1-9]\d*)(\.\d+)?([eE][+-]?\d+)?
func validNumber(b []byte) bool {
	i, n := 0, len(b)
	if i < n && b[i] == '-' {
		i++
	}
	switch {
	case i < n && b[i] == '0':
		i++
	case i < n && b[i] >= '1' && b[i] <= '9':
		i = digits(b, i)
	default:
		return false
	}
	if i < n && b[i] == '.' {
		j := digits(b, i+1)
		if j == i+1 {
			return false
		}
		i = j
	}
	if i < n && (b[i] == 'e' || b[i] == 'E') {
		i++
		if i < n && (b[i] == '+' || b[i] == '-') {
			i++
		}
		j := digits(b, i)
		if j == i {
			return false
		}
		i = j
	}
	return i == n
}

func digits(b []byte, i int) int {
	for i < len(b) && b[i] >= '0' && b[i] <= '9' {
		i++
	}
	return i
}

// danglingComma reports a ',' directly followed (after whitespace) by '}' or
// ']' outside of string literals.
func danglingComma(b []byte) bool {
	inStr, esc := false, false
	for i := 0; i < len(b); i++ {
		c := b[i]
		if inStr {
			switch {
			case esc:
				esc = false
			case c == '\\':
				esc = true
			case c == '"':
				inStr = false
			}
			continue
		}
		switch c {
		case '"':
			inStr = true
		case ',':
			j := i + 1
			for j < len(b) && isSpace(b[j]) {
				j++
			}
			if j < len(b) && (b[j] == '}' || b[j] == ']') {
				return true
			}
		}
	}
	return false
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\r' || c == '\n'
}
