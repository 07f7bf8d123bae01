package valve

import (
	"errors"
	"math"
	"testing"
)

func TestBypass(t *testing.T) {
	tests := []struct {
		name         string
		bypass, main float64
		d            int
		want         float64
	}{
		{"two of five machines", 2, 3, 0, 40},
		{"thirds", 1, 2, 3, 33.333},
		{"all bypass", 4, 0, 0, 100},
		{"no bypass", 0, 4, 0, 0},
		{"flow rates", 7.5, 22.5, 1, 25},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Bypass(tc.bypass, tc.main, tc.d)
			if err != nil {
				t.Fatalf("Bypass error: %v", err)
			}
			if got != tc.want {
				t.Errorf("Bypass(%v, %v, %d) = %v, want %v", tc.bypass, tc.main, tc.d, got, tc.want)
			}
		})
	}
}

func TestBypass_Invalid(t *testing.T) {
	tests := []struct {
		name         string
		bypass, main float64
	}{
		{"zero total", 0, 0},
		{"negative bypass", -1, 3},
		{"negative main", 1, -3},
		{"NaN", math.NaN(), 1},
		{"infinite", 1, math.Inf(1)},
		{"total overflows", 1e308, 1e308},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := Bypass(tc.bypass, tc.main, 0); !errors.Is(err, ErrInvalidBypass) {
				t.Errorf("error = %v, want ErrInvalidBypass", err)
			}
		})
	}
}
