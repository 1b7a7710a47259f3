package utils

import (
	"math"
	"testing"
)

func TestHaversine(t *testing.T) {
	// Downtown LA to Santa Monica pier, roughly 23 km
	d := Haversine(34.0522, -118.2437, 34.0094, -118.4973)
	if d < 22 || d > 25 {
		t.Fatalf("expected ~23 km, got %.2f", d)
	}
	if Haversine(34.0, -118.0, 34.0, -118.0) != 0 {
		t.Fatal("distance to self should be zero")
	}
}

func TestClamp(t *testing.T) {
	cases := []struct{ in, want int }{
		{-5, 0}, {0, 0}, {42, 42}, {100, 100}, {150, 100},
	}
	for _, c := range cases {
		if got := Clamp(c.in, 0, 100); got != c.want {
			t.Errorf("Clamp(%d) = %d, want %d", c.in, got, c.want)
		}
	}
}

func TestRoundToAndLerp(t *testing.T) {
	if got := RoundTo(3.14159, 2); got != 3.14 {
		t.Errorf("RoundTo = %v", got)
	}
	if got := Lerp(10, 20, 0.25); math.Abs(got-12.5) > 1e-9 {
		t.Errorf("Lerp = %v", got)
	}
}
