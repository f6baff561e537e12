package dynamics

import (
	"math"
	"testing"
)

func settleSteering(v *VehicleDynamics, ticks int) {
	for i := 0; i < ticks; i++ {
		v.updateSteering(testDt)
	}
}

func TestSteeringAuthorityDropsWithSpeed(t *testing.T) {
	v, _ := newTestVehicle(t)
	v.input = InputState{Steer: 1}

	v.state.speed = v.cfg.LowSpeedFloor + 1 // above the arcade boost band
	settleSteering(v, 300)
	slow := math.Abs(v.state.steerAngle)

	v.state.speed = v.cfg.SpeedAuthTop
	settleSteering(v, 300)
	fast := math.Abs(v.state.steerAngle)

	if fast >= slow {
		t.Errorf("steering authority at speed (%v) not below low-speed authority (%v)", fast, slow)
	}

	wantFast := v.cfg.MaxSteerAngle * v.cfg.HighSpeedSteer * v.cfg.HandlingStat
	if math.Abs(fast-wantFast) > 1e-3 {
		t.Errorf("high-speed angle = %v, want about %v", fast, wantFast)
	}
}

func TestSteeringLowSpeedBoost(t *testing.T) {
	v, _ := newTestVehicle(t)
	v.input = InputState{Steer: 0.5}

	v.state.speed = 1 // inside the boost band
	settleSteering(v, 300)
	boosted := math.Abs(v.state.steerTarget)

	v.state.speed = v.cfg.LowSpeedFloor + 2
	settleSteering(v, 300)
	unboosted := math.Abs(v.state.steerTarget)

	if boosted <= unboosted {
		t.Errorf("low-speed boost missing: %v <= %v", boosted, unboosted)
	}
}

func TestSteeringReturnToCenterFaster(t *testing.T) {
	v, _ := newTestVehicle(t)

	// Turn in from center for one tick.
	v.input = InputState{Steer: 1}
	v.updateSteering(testDt)
	turnIn := math.Abs(v.state.steerAngle)

	// Settle at full lock, then release for one tick.
	settleSteering(v, 300)
	locked := math.Abs(v.state.steerAngle)
	v.input = InputState{}
	v.updateSteering(testDt)
	returned := locked - math.Abs(v.state.steerAngle)

	// Rates differ, so equal-sized gaps close faster on release. Compare
	// fractional convergence per tick.
	turnFrac := turnIn / (locked)
	retFrac := returned / locked
	if retFrac <= turnFrac {
		t.Errorf("return-to-center (%v/tick) not faster than turn-in (%v/tick)", retFrac, turnFrac)
	}
}

func TestSteeringHandlingClamp(t *testing.T) {
	v, _ := newTestVehicle(t)
	v.input = InputState{Steer: 1}
	v.state.skillHandle = 100 // absurd skill multiplier

	v.updateSteering(testDt)

	max := v.cfg.MaxSteerAngle * 1.5
	if math.Abs(v.state.steerTarget) > max+1e-9 {
		t.Errorf("steer target %v beyond the hard clamp %v", v.state.steerTarget, max)
	}
}

func TestCountersteerBoostsAuthority(t *testing.T) {
	v, _ := newTestVehicle(t)
	v.input = InputState{Steer: 0.5}
	v.state.speed = 20

	v.state.counter = false
	v.updateSteering(testDt)
	plain := v.state.steerTarget

	v.state.counter = true
	v.updateSteering(testDt)
	boosted := v.state.steerTarget

	want := plain * (1 + v.cfg.CountersteerBoost)
	if math.Abs(boosted-want) > math.Abs(want)*1e-9 {
		t.Errorf("countersteer target = %v, want %v", boosted, want)
	}
}

func TestDamagePullShiftsTarget(t *testing.T) {
	v, _ := newTestVehicle(t)
	v.input = InputState{}
	v.state.speed = 20
	v.state.damagePull = 0.05

	v.updateSteering(testDt)

	if v.state.steerTarget != 0.05 {
		t.Errorf("steer target with pull = %v, want 0.05", v.state.steerTarget)
	}
}
