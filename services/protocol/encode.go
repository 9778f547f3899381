package protocol

import (
	"math"
	"strconv"

	"artie-go/types"
)

// Device → host messages. Each Append* writes one complete line including
// the delimiter. Key order is fixed.

// AppendBoot writes {"status":"READY"}.
func AppendBoot(dst []byte) []byte {
	dst = append(dst, `{"status":"READY"}`...)
	return append(dst, Delimiter)
}

// AppendAck writes {"res":"ACK","seq":N}.
func AppendAck(dst []byte, a types.Ack) []byte {
	dst = append(dst, `{"res":"ACK","seq":`...)
	dst = strconv.AppendInt(dst, a.Seq, 10)
	return append(dst, '}', Delimiter)
}

// AppendTelemetry writes {"type":"SENSOR","temp":T,"humid":H,"light":L,"btn":0|1}.
func AppendTelemetry(dst []byte, r types.SensorReading) []byte {
	dst = append(dst, `{"type":"SENSOR","temp":`...)
	dst = appendFloat(dst, r.Temperature)
	dst = append(dst, `,"humid":`...)
	dst = appendFloat(dst, r.Humidity)
	dst = append(dst, `,"light":`...)
	dst = strconv.AppendUint(dst, uint64(r.Light), 10)
	dst = append(dst, `,"btn":`...)
	if r.Button {
		dst = append(dst, '1')
	} else {
		dst = append(dst, '0')
	}
	return append(dst, '}', Delimiter)
}

// AppendCommand writes a host → device command line. Unset display lines
// are omitted.
func AppendCommand(dst []byte, c types.Command) []byte {
	dst = append(dst, `{"seq":`...)
	dst = strconv.AppendInt(dst, c.Seq, 10)
	if c.Line1.Set {
		dst = append(dst, `,"l1":`...)
		dst = appendString(dst, c.Line1.Value)
	}
	if c.Line2.Set {
		dst = append(dst, `,"l2":`...)
		dst = appendString(dst, c.Line2.Value)
	}
	dst = append(dst, `,"mood":`...)
	dst = appendString(dst, c.Mood)
	dst = append(dst, `,"act":`...)
	dst = appendString(dst, c.Action)
	return append(dst, '}', Delimiter)
}

// appendFloat writes the shortest float32 representation; non-finite values
// become null.
func appendFloat(dst []byte, f float32) []byte {
	v := float64(f)
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return append(dst, "null"...)
	}
	return strconv.AppendFloat(dst, v, 'f', -1, 32)
}

const hexDigits = "0123456789abcdef"

// appendString writes s as a JSON string. Bytes >= 0x80 pass through.
func appendString(dst []byte, s string) []byte {
	dst = append(dst, '"')
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '"' || c == '\\':
			dst = append(dst, '\\', c)
		case c == '\n':
			dst = append(dst, '\\', 'n')
		case c == '\r':
			dst = append(dst, '\\', 'r')
		case c == '\t':
			dst = append(dst, '\\', 't')
		case c < 0x20:
			dst = append(dst, '\\', 'u', '0', '0', hexDigits[c>>4], hexDigits[c&0xF])
		default:
			dst = append(dst, c)
		}
	}
	return append(dst, '"')
}
