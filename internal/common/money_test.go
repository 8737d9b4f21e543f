package common

import "testing"

func TestFloorRound(t *testing.T) {
	cases := []struct {
		in   float64
		want float64
	}{
		{10.999, 10.99},
		{10.991, 10.99},
		{10.99, 10.99},
		{0.009, 0.00},
		{1234.5678, 1234.56},
		{100, 100},
		{991.9578, 991.95},
	}
	for _, c := range cases {
		if got := FloorRound(c.in); got != c.want {
			t.Errorf("FloorRound(%v) = %v, want %v", c.in, got, c.want)
		}
	}
}

func TestFloorRoundNeverExceedsInput(t *testing.T) {
	inputs := []float64{0.01, 0.015, 3.14159, 99.999, 1e6 + 0.555, 7.77}
	for _, x := range inputs {
		got := FloorRound(x)
		if got > x {
			t.Errorf("FloorRound(%v) = %v exceeds input", x, got)
		}
	}
}

func TestFloorRoundIdempotent(t *testing.T) {
	inputs := []float64{10.999, 0.01, 55.5555, 991.9578}
	for _, x := range inputs {
		once := FloorRound(x)
		twice := FloorRound(once)
		if once != twice {
			t.Errorf("FloorRound not idempotent for %v: %v != %v", x, once, twice)
		}
	}
}

func TestRound2(t *testing.T) {
	if got := Round2(33.335); got != 33.34 {
		t.Errorf("Round2(33.335) = %v, want 33.34", got)
	}
	if got := Round2(66.664); got != 66.66 {
		t.Errorf("Round2(66.664) = %v, want 66.66", got)
	}
}
