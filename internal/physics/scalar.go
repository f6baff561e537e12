package physics

import "math"

// Clamp limits v to the range [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Clamp01 limits v to [0, 1].
func Clamp01(v float64) float64 {
	return Clamp(v, 0, 1)
}

// Lerp returns a + (b-a)*t without clamping t.
func Lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

// MoveToward moves v toward target by at most step, never overshooting.
func MoveToward(v, target, step float64) float64 {
	if step <= 0 {
		return v
	}
	d := target - v
	if math.Abs(d) <= step {
		return target
	}
	return v + math.Copysign(step, d)
}

// Approach exponentially smooths v toward target. rate is the smoothing
// rate per second; dt the elapsed time. Frame-rate independent: equal
// wall-clock time yields equal convergence regardless of tick length.
func Approach(v, target, rate, dt float64) float64 {
	if rate <= 0 || dt <= 0 {
		return v
	}
	return Lerp(v, target, 1-math.Exp(-rate*dt))
}

// WrapAngle normalizes an angle to (-pi, pi].
func WrapAngle(a float64) float64 {
	wrapped := math.Mod(a+math.Pi, 2*math.Pi)
	if wrapped < 0 {
		wrapped += 2 * math.Pi
	}
	return wrapped - math.Pi
}

// Sign returns -1, 0 or 1 matching the sign of v.
func Sign(v float64) float64 {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	default:
		return 0
	}
}
