package types

// ------------------------
// Host → device
// ------------------------

// Text is an optional string field. Set is false when the key was absent
// (or null) in the frame.
type Text struct {
	Value string
	Set   bool
}

// Some returns a present Text.
func Some(s string) Text { return Text{Value: s, Set: true} }

// Command is one decoded host request.
type Command struct {
	Seq    int64  `json:"seq"`
	Line1  Text   `json:"l1"`
	Line2  Text   `json:"l2"`
	Mood   string `json:"mood"` // default "neutral"
	Action string `json:"act"`  // default "none"
}

// Defaults applied by the decoder for absent fields.
const (
	DefaultMood   = "neutral"
	DefaultAction = "none"
)

// HasLines reports whether both display lines were supplied.
func (c Command) HasLines() bool { return c.Line1.Set && c.Line2.Set }

// ------------------------
// Device → host
// ------------------------

// Ack is emitted after a command's side effects have completed.
type Ack struct {
	Seq int64 `json:"seq"`
}

// ReplyKind classifies a device → host line.
type ReplyKind uint8

const (
	ReplyUnknown ReplyKind = iota
	ReplyBoot
	ReplyAck
	ReplyTelemetry
)

func (k ReplyKind) String() string {
	switch k {
	case ReplyBoot:
		return "boot"
	case ReplyAck:
		return "ack"
	case ReplyTelemetry:
		return "telemetry"
	default:
		return "unknown"
	}
}

// Reply is a parsed device → host line (host tooling only).
type Reply struct {
	Kind    ReplyKind
	Status  string        // boot
	Ack     Ack           // ack
	Reading SensorReading // telemetry
}
