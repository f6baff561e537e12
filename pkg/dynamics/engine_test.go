package dynamics

import (
	"math"
	"testing"
)

func TestEngineForcePositiveAtLaunch(t *testing.T) {
	v, _ := newTestVehicle(t)

	v.input = InputState{Throttle: 1}
	drive, brake := v.engineForces()

	if drive <= 0 {
		t.Errorf("launch drive force = %v, want > 0", drive)
	}
	if brake != 0 {
		t.Errorf("launch brake force = %v, want 0", brake)
	}
}

func TestEngineForceZeroWhileShifting(t *testing.T) {
	v, _ := newTestVehicle(t)

	v.input = InputState{Throttle: 1}
	v.state.shifting = true
	drive, _ := v.engineForces()

	if drive != 0 {
		t.Errorf("drive force %v during shift, want 0", drive)
	}
}

func TestEngineForceZeroInNeutral(t *testing.T) {
	v, _ := newTestVehicle(t)

	v.input = InputState{Throttle: 1}
	v.state.gear = 0
	drive, _ := v.engineForces()

	if drive != 0 {
		t.Errorf("drive force %v in neutral, want 0", drive)
	}
}

func TestReverseForceHalvedAndInverted(t *testing.T) {
	v, _ := newTestVehicle(t)

	v.input = InputState{Throttle: 1}
	v.state.gear = 1
	forward, _ := v.engineForces()

	v.state.gear = -1
	reverse, _ := v.engineForces()

	if reverse >= 0 {
		t.Fatalf("reverse force %v, want negative", reverse)
	}
	// Reverse ratio differs from first gear, so compare against the
	// ratio-adjusted forward force.
	ratioAdj := forward / v.cfg.GearRatios[0] * v.cfg.ratioFor(-1)
	want := -ratioAdj * v.cfg.ReverseForce
	if math.Abs(reverse-want) > math.Abs(want)*1e-6 {
		t.Errorf("reverse force = %v, want %v", reverse, want)
	}
}

func TestPowerCurveFallsOffTowardTopSpeed(t *testing.T) {
	v, _ := newTestVehicle(t)

	v.state.speed = 0
	atRest := v.powerCurve()
	v.state.speed = v.cfg.TopSpeed * 0.9
	nearTop := v.powerCurve()
	v.state.speed = v.cfg.TopSpeed
	atTop := v.powerCurve()

	if atRest != 1 {
		t.Errorf("power at rest = %v, want 1", atRest)
	}
	if !(nearTop < atRest && nearTop > atTop) {
		t.Errorf("power curve not monotonic: %v, %v, %v", atRest, nearTop, atTop)
	}
	if atTop != 0 {
		t.Errorf("power at top speed = %v, want 0", atTop)
	}
}

func TestNitroRaisesEffectiveTopSpeed(t *testing.T) {
	v, _ := newTestVehicle(t)

	v.state.speed = v.cfg.TopSpeed
	if v.powerCurve() != 0 {
		t.Fatal("expected zero power at the unboosted ceiling")
	}

	v.state.nitroActive = true
	if v.powerCurve() <= 0 {
		t.Error("nitro did not raise the effective top speed ceiling")
	}
}

func TestTorqueCurvePeaksAndFloors(t *testing.T) {
	v, _ := newTestVehicle(t)

	v.state.rpm = v.cfg.Redline * v.cfg.TorquePeakFrac
	atPeak := v.torqueCurve()
	if math.Abs(atPeak-1) > 1e-9 {
		t.Errorf("torque at peak = %v, want 1", atPeak)
	}

	v.state.rpm = v.cfg.IdleRPM
	offPeak := v.torqueCurve()
	if offPeak < v.cfg.TorqueFloor {
		t.Errorf("torque %v below the floor %v", offPeak, v.cfg.TorqueFloor)
	}
	if offPeak >= atPeak {
		t.Error("torque off the peak not below the peak")
	}
}

func TestHandbrakeForcesFixedBrakeValue(t *testing.T) {
	v, _ := newTestVehicle(t)

	v.input = InputState{Handbrake: true, Brake: 0.1}
	_, brake := v.engineForces()

	if brake != v.cfg.HandbrakeForce {
		t.Errorf("handbrake brake force = %v, want %v", brake, v.cfg.HandbrakeForce)
	}
}

func TestNormalBrakingProportionalPlusSupplement(t *testing.T) {
	v, _ := newTestVehicle(t)

	v.input = InputState{Brake: 0.5}
	_, brake := v.engineForces()

	want := 0.5*v.cfg.MaxBrakeForce + v.cfg.BrakeSupplement
	if brake != want {
		t.Errorf("brake force = %v, want %v", brake, want)
	}
}

func TestCoastingAppliesEngineBrake(t *testing.T) {
	v, _ := newTestVehicle(t)

	v.state.speed = v.cfg.TopSpeed / 2
	v.input = InputState{}
	_, brake := v.engineForces()

	if brake <= 0 {
		t.Error("no engine-brake drag while coasting")
	}
	if brake > v.cfg.EngineBrakeDrag {
		t.Errorf("coasting drag %v above the configured maximum %v", brake, v.cfg.EngineBrakeDrag)
	}
}

func TestSkillSpeedMultiplierScalesForce(t *testing.T) {
	v, _ := newTestVehicle(t)

	v.input = InputState{Throttle: 1}
	v.state.skillSpeed = 1
	base, _ := v.engineForces()
	v.state.skillSpeed = 1.2
	boosted, _ := v.engineForces()

	if math.Abs(boosted-base*1.2) > base*1e-9 {
		t.Errorf("skill multiplier: got %v, want %v", boosted, base*1.2)
	}
}
