package physics

import (
	"math"
	"testing"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestClamp(t *testing.T) {
	tests := []struct {
		name     string
		v        float64
		lo       float64
		hi       float64
		expected float64
	}{
		{"below range", -1, 0, 1, 0},
		{"above range", 2, 0, 1, 1},
		{"inside range", 0.5, 0, 1, 0.5},
		{"at lower bound", 0, 0, 1, 0},
		{"at upper bound", 1, 0, 1, 1},
		{"negative range", -5, -3, -1, -3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Clamp(tt.v, tt.lo, tt.hi)
			if result != tt.expected {
				t.Errorf("Clamp(%v, %v, %v) = %v, want %v", tt.v, tt.lo, tt.hi, result, tt.expected)
			}
		})
	}
}

func TestMoveToward(t *testing.T) {
	tests := []struct {
		name     string
		v        float64
		target   float64
		step     float64
		expected float64
	}{
		{"step toward positive", 0, 10, 3, 3},
		{"step toward negative", 0, -10, 3, -3},
		{"overshoot clamps to target", 9, 10, 5, 10},
		{"already at target", 4, 4, 1, 4},
		{"zero step is a no-op", 2, 10, 0, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := MoveToward(tt.v, tt.target, tt.step)
			if !almostEqual(result, tt.expected) {
				t.Errorf("MoveToward(%v, %v, %v) = %v, want %v", tt.v, tt.target, tt.step, result, tt.expected)
			}
		})
	}
}

func TestApproach(t *testing.T) {
	// Two half-steps must land where one full step lands.
	full := Approach(0, 1, 4, 0.5)
	half := Approach(Approach(0, 1, 4, 0.25), 1, 4, 0.25)
	if !almostEqual(full, half) {
		t.Errorf("Approach is not frame-rate independent: full=%v half=%v", full, half)
	}

	// Never overshoots.
	v := 0.0
	for i := 0; i < 1000; i++ {
		v = Approach(v, 1, 10, 0.016)
		if v > 1 {
			t.Fatalf("Approach overshot target: %v", v)
		}
	}
	if v < 0.999 {
		t.Errorf("Approach did not converge, got %v", v)
	}
}

func TestWrapAngle(t *testing.T) {
	tests := []struct {
		name     string
		in       float64
		expected float64
	}{
		{"zero", 0, 0},
		{"pi stays pi", math.Pi, math.Pi},
		{"wraps past pi", math.Pi + 0.5, -math.Pi + 0.5},
		{"wraps below -pi", -math.Pi - 0.5, math.Pi - 0.5},
		{"full turn", 2 * math.Pi, 0},
		{"multiple turns", 5 * math.Pi, math.Pi},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := WrapAngle(tt.in)
			if !almostEqual(result, tt.expected) {
				t.Errorf("WrapAngle(%v) = %v, want %v", tt.in, result, tt.expected)
			}
		})
	}
}

func TestSign(t *testing.T) {
	if Sign(3.2) != 1 || Sign(-0.1) != -1 || Sign(0) != 0 {
		t.Errorf("Sign returned wrong values: %v %v %v", Sign(3.2), Sign(-0.1), Sign(0))
	}
}
