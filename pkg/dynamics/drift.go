package dynamics

import (
	"math"

	"github.com/tommytrillva/midnight-sub001/internal/physics"
)

// minSlipSpeed is the velocity floor below which the slip angle is
// treated as zero; near a standstill the velocity direction is noise.
const minSlipSpeed = 0.5

// updateDrift computes the slip angle and advances the drift state
// machine. Score accumulates while DRIFTING and is reported on a normal
// exit; a spin-out discards it.
func (v *VehicleDynamics) updateDrift(dt float64) {
	st := &v.state
	cfg := &v.cfg

	hdg := physics.HeadingVec(st.heading)
	if st.velocity.Length() < minSlipSpeed {
		st.slipAngle = 0
	} else {
		st.slipAngle = physics.AngleBetween(hdg, st.velocity.Normalized())
	}

	slip := math.Abs(st.slipAngle)
	speed := math.Abs(st.speed)

	// Countersteer: steering into the slide (same sign as the drift
	// direction) unlocks extra steering authority and yaw damping.
	st.counter = st.driftState == Drifting &&
		st.driftDir != 0 && physics.Sign(v.input.Steer) == st.driftDir

	switch st.driftState {
	case NotDrifting:
		if slip > cfg.DriftEntryAngle && speed > cfg.DriftMinSpeed {
			st.driftState = Drifting
			st.driftDir = physics.Sign(st.slipAngle)
			st.driftScore = 0
			v.emitDriftStarted()
		}

	case Drifting:
		switch {
		case slip > cfg.SpinOutAngle:
			// Terminal for this drift: the run's score is discarded.
			st.driftState = SpinOut
			st.driftScore = 0
			st.driftDir = 0
			v.emitSpinOut()

		case slip < cfg.DriftEntryAngle*cfg.DriftExitFactor || speed < cfg.DriftMinSpeed*0.8:
			st.driftState = NotDrifting
			st.driftDir = 0
			v.emitDriftEnded(st.driftScore)
			st.driftScore = 0

		default:
			st.driftScore += slip * speed * cfg.DriftScoreRate * dt
		}

	case SpinOut:
		// Recover once the slide has settled and yaw has calmed down.
		if slip < cfg.DriftEntryAngle*cfg.DriftExitFactor && math.Abs(st.yawRate) < cfg.YawLimit {
			st.driftState = NotDrifting
		}
	}
}
