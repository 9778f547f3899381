package mathx

import "testing"

func TestClamp(t *testing.T) {
	cases := []struct{ v, lo, hi, want int }{
		{90, 0, 180, 90},
		{-5, 0, 180, 0},
		{200, 0, 180, 180},
		{50, 180, 0, 50}, // swapped bounds
	}
	for _, c := range cases {
		if got := Clamp(c.v, c.lo, c.hi); got != c.want {
			t.Errorf("Clamp(%d,%d,%d) = %d, want %d", c.v, c.lo, c.hi, got, c.want)
		}
	}
	if Max(3, 7) != 7 || Max(uint64(0), 1) != 1 {
		t.Fatal("Max")
	}
}

func TestMapU16(t *testing.T) {
	cases := []struct{ x, want uint16 }{
		{0, 0},
		{65535, 1023},
		{32768, 511},
	}
	for _, c := range cases {
		if got := MapU16(c.x, 0, 65535, 0, 1023); got != c.want {
			t.Errorf("MapU16(%d) = %d, want %d", c.x, got, c.want)
		}
	}
	if got := MapU16(5, 3, 3, 10, 20); got != 10 {
		t.Errorf("degenerate input range: got %d", got)
	}
}
