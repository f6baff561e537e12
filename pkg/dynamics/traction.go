package dynamics

import (
	"math"

	"github.com/tommytrillva/midnight-sub001/internal/physics"
)

// updateTraction moves the axle grip coefficients toward their targets
// for the current drift/handbrake situation, applies the handbrake
// weight-transfer torque, and runs the yaw-rate traction control.
//
// Grip is shed at the attack rate and recovered at the slower release
// rate, so a pulled handbrake bites immediately while recovery eases in.
func (v *VehicleDynamics) updateTraction(dt float64) {
	st := &v.state
	cfg := &v.cfg

	targetFront := cfg.GripFront
	targetRear := cfg.GripRear
	shedding := false

	handbraking := v.input.Handbrake && math.Abs(st.speed) > cfg.HandbrakeFloor

	switch {
	case handbraking:
		targetRear = cfg.HandbrakeGripRear
		shedding = true

		// Weight transfer: yank the rear out in the steered direction,
		// harder the faster the car is going.
		st.controlTorque += v.input.Steer * math.Abs(st.speed) * cfg.WeightTransfer

	case st.driftState == Drifting:
		// More throttle loosens the rear further, widening the arc;
		// the front is boosted to keep countersteer effective.
		targetRear = physics.Lerp(cfg.DriftGripRear, cfg.HandbrakeGripRear, v.input.Throttle)
		targetFront = cfg.GripFront * cfg.DriftGripFrontMult
		shedding = true
	}

	rate := cfg.FrictionRelease
	if shedding {
		rate = cfg.FrictionAttack
	}
	st.gripFront = physics.Approach(st.gripFront, targetFront, rate, dt)
	st.gripRear = physics.Approach(st.gripRear, targetRear, rate, dt)

	// Yaw-rate traction control. Disabled while drifting or handbraking
	// so the slide stays free.
	if !handbraking && st.driftState != Drifting {
		if over := math.Abs(st.yawRate) - cfg.YawLimit; over > 0 {
			st.controlTorque -= physics.Sign(st.yawRate) * over * cfg.YawControl
		}
	}
}

// applyDownforce seeds this tick's effective grip from the smoothed
// baselines plus a speed-squared downforce gain; it only matters near
// the top end.
func (v *VehicleDynamics) applyDownforce() {
	st := &v.state
	ratio := physics.Clamp01(math.Abs(st.speed) / math.Max(v.cfg.TopSpeed, 1))
	gain := 1 + v.cfg.Downforce*ratio*ratio
	st.effFront = st.gripFront * gain
	st.effRear = st.gripRear * gain
}
