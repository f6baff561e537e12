package dynamics

import (
	"math"

	"github.com/tommytrillva/midnight-sub001/internal/physics"
)

// updateSteering maps steer input to a target wheel angle scaled by
// speed authority and the handling multiplier, adds the drift
// countersteer boost and the damage pull, then smooths the actual angle
// toward the target. Return-to-center is faster than turn-in.
func (v *VehicleDynamics) updateSteering(dt float64) {
	st := &v.state
	cfg := &v.cfg

	speed := math.Abs(st.speed)

	// Speed authority: full at rest, easing to the high-speed multiplier,
	// with an extra arcade boost below walking pace.
	ratio := physics.Clamp01(speed / math.Max(cfg.SpeedAuthTop, 1))
	authority := physics.Lerp(1, cfg.HighSpeedSteer, ratio*ratio)
	if speed < cfg.LowSpeedFloor {
		authority *= cfg.LowSpeedBoost
	}

	handling := physics.Clamp(cfg.HandlingStat*st.skillHandle, cfg.HandlingMin, cfg.HandlingMax)

	target := v.input.Steer * cfg.MaxSteerAngle * authority * handling

	if st.counter {
		target *= 1 + cfg.CountersteerBoost
	}
	target += st.damagePull

	target = physics.Clamp(target, -cfg.MaxSteerAngle*1.5, cfg.MaxSteerAngle*1.5)

	rate := cfg.SteerReleaseRate
	if v.input.Steer != 0 {
		rate = cfg.SteerAttackRate
	}
	st.steerTarget = target
	st.steerAngle = physics.Approach(st.steerAngle, target, rate, dt)
}
