package dynamics

import (
	"math"

	"github.com/tommytrillva/midnight-sub001/internal/physics"
)

// updateTransmission derives RPM from wheel speed and the current drive
// ratio, runs the shift dead zone, and fires automatic and manual shifts.
func (v *VehicleDynamics) updateTransmission(dt float64) {
	st := &v.state
	cfg := &v.cfg

	if st.shifting {
		st.shiftTimer -= dt
		frac := 1 - physics.Clamp01(st.shiftTimer/cfg.ShiftTime)
		st.rpm = physics.Lerp(st.shiftFrom, cfg.ShiftRPM, frac)
		if st.shiftTimer <= 0 {
			st.shifting = false
		}
	} else {
		ratio := cfg.ratioFor(st.gear)
		if ratio == 0 {
			// Neutral: engine settles to idle.
			st.rpm = physics.Approach(st.rpm, cfg.IdleRPM, 4, dt)
		} else {
			wheelRadPerSec := math.Abs(st.speed) / cfg.WheelRadius
			st.rpm = wheelRadPerSec * ratio * cfg.FinalDrive * 60 / (2 * math.Pi)
		}
	}
	st.rpm = physics.Clamp(st.rpm, cfg.IdleRPM, cfg.Redline+cfg.RPMBuffer)

	// Manual shifts win over the auto-shifter; both are rejected mid-shift.
	if v.input.ShiftUp {
		v.shiftTo(st.gear + 1)
	} else if v.input.ShiftDown {
		v.shiftTo(st.gear - 1)
	} else if !st.shifting && st.gear >= 1 {
		switch {
		case st.rpm >= cfg.Redline*cfg.ShiftUpFrac && st.gear < cfg.topGear() && v.input.Throttle > 0:
			v.shiftTo(st.gear + 1)
		case st.rpm <= cfg.Redline*cfg.ShiftDownFrac && st.gear > 1:
			v.shiftTo(st.gear - 1)
		}
	}
}

// shiftTo engages a gear if the request is legal: never mid-shift, never
// above the top gear, and below first only into reverse near a stop.
// Every accepted shift starts the clutch-out dead zone and emits a
// gear_shifted event.
func (v *VehicleDynamics) shiftTo(gear int) {
	st := &v.state
	cfg := &v.cfg

	if st.shifting {
		return
	}
	if gear > cfg.topGear() || gear == st.gear {
		return
	}
	if gear < 1 {
		// Reverse (via neutral) only near a stop, and never below -1.
		if gear < -1 || math.Abs(st.speed) > cfg.ReverseFloor {
			return
		}
	}

	st.gear = gear
	st.shifting = true
	st.shiftTimer = cfg.ShiftTime
	st.shiftFrom = st.rpm

	v.emitGearShift(gear)
}

// gearForceMult normalizes the active ratio against first gear so the
// engine force model peaks in first and tapers toward top gear.
func (v *VehicleDynamics) gearForceMult() float64 {
	first := v.cfg.GearRatios[0]
	ratio := v.cfg.ratioFor(v.state.gear)
	if ratio == 0 || first <= 0 {
		return 0
	}
	return physics.Clamp(ratio/first, 0.2, 1)
}
