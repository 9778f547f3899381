package expression

import "time"

// Mood is the closed set of emotional states a command can carry.
type Mood uint8

const (
	MoodUnknown Mood = iota
	MoodHappy
	MoodAngry
	MoodSad
	MoodNeutral
	moodCount
)

var moodNames = [moodCount]string{
	MoodUnknown: "unknown",
	MoodHappy:   "happy",
	MoodAngry:   "angry",
	MoodSad:     "sad",
	MoodNeutral: "neutral",
}

// ParseMood maps a wire string to a Mood. Anything unrecognised, including
// "unknown" itself and the empty string, is MoodUnknown.
func ParseMood(s string) Mood {
	for m := MoodHappy; m < moodCount; m++ {
		if moodNames[m] == s {
			return m
		}
	}
	return MoodUnknown
}

func (m Mood) String() string {
	if m >= moodCount {
		return moodNames[MoodUnknown]
	}
	return moodNames[m]
}

// Color is an RGB intensity triple.
type Color struct{ R, G, B uint8 }

// drive threshold for the on/off red and blue channels
const channelOnAbove = 127

// Levels converts a color into pin drive: red and blue are on only above the
// threshold, green keeps its intensity for PWM.
func (c Color) Levels() (red bool, green uint8, blue bool) {
	return c.R > channelOnAbove, c.G, c.B > channelOnAbove
}

// ToneStep is one note. The step occupies Duration+Rest before the next one.
type ToneStep struct {
	Hz       uint16
	Duration time.Duration
	Rest     time.Duration
}

// Span is the time the step holds the sequence.
func (s ToneStep) Span() time.Duration { return s.Duration + s.Rest }

// MoodEffect is everything a mood drives.
type MoodEffect struct {
	Color Color
	Tones []ToneStep
}

func tone(hz uint16, durMs, restMs int) ToneStep {
	return ToneStep{
		Hz:       hz,
		Duration: time.Duration(durMs) * time.Millisecond,
		Rest:     time.Duration(restMs) * time.Millisecond,
	}
}

var moodTable = [moodCount]MoodEffect{
	MoodUnknown: {Color: Color{0, 0, 0}},
	MoodHappy: {
		Color: Color{0, 255, 0},
		Tones: []ToneStep{tone(523, 100, 50), tone(659, 100, 50), tone(784, 150, 50)}, // C5 E5 G5
	},
	MoodAngry: {
		Color: Color{255, 0, 0},
		Tones: []ToneStep{tone(150, 100, 0), tone(100, 100, 0)},
	},
	MoodSad: {
		Color: Color{0, 0, 255},
		Tones: []ToneStep{tone(440, 300, 50), tone(349, 400, 50)}, // A4 F4
	},
	MoodNeutral: {
		Color: Color{255, 255, 255},
		Tones: []ToneStep{tone(880, 50, 10)},
	},
}

// MoodEffects returns the effect for m. Out-of-range values get the
// MoodUnknown effect. The returned slices are shared and must not be modified.
func MoodEffects(m Mood) MoodEffect {
	if m >= moodCount {
		m = MoodUnknown
	}
	return moodTable[m]
}
